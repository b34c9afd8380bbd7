package script

const ShopHTML = `<!DOCTYPE html>
<html>
<head><title>Shopping</title></head>
<body>
	<ul id="list">
		<li class="item">apple</li>
		<li class="item">pear</li>
	</ul>
	<div id="target">gone soon</div>
</body>
</html>`
