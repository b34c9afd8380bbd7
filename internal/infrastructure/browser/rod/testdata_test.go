package rod

// TestHTML templates for testing
const (
	BasicHTML = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Hello World</h1>
</body>
</html>`

	InteractiveHTML = `<!DOCTYPE html>
<html>
<head><title>Interactive</title></head>
<body>
	<button id="btn">Click Me</button>
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`

	WideHTML = `<!DOCTYPE html>
<html>
<body style="margin:0">
	<div style="width: 2400px; height: 600px; background: #336699;"></div>
</body>
</html>`
)
