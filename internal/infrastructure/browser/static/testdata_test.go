package static

const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1 id="heading">Hello World</h1>
</body>
</html>`

	ListHTML = `<!DOCTYPE html>
<html>
<head><title>Shopping</title></head>
<body>
	<ul id="list">
		<li class="item" data-price="3">apple</li>
		<li class="item" data-price="5">pear</li>
		<li class="item">plum</li>
	</ul>
	<div id="target"><span>gone soon</span></div>
	<script>document.title = "changed";</script>
</body>
</html>`
)
