package di

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pneuma/internal/infrastructure/env"
	"pneuma/internal/infrastructure/logger"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(env.KeyEngine, "static")
	t.Setenv(env.KeyHeadless, "false")
	t.Setenv(env.KeyTimeout, "1500")
	t.Setenv(env.KeyLogLevel, "debug")
	t.Setenv(env.KeyScreenshotMaxWidth, "640")

	cfg := ConfigFromEnv(&env.EnvService{})

	assert.Equal(t, "static", cfg.Engine)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 1500*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 640, cfg.ScreenshotMaxWidth)
}

func TestConfigFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{env.KeyEngine, env.KeyHeadless, env.KeyTimeout, env.KeyLogLevel} {
		t.Setenv(key, "")
	}

	cfg := ConfigFromEnv(&env.EnvService{})

	assert.Equal(t, "chromium", cfg.Engine)
	assert.True(t, cfg.Headless)
	assert.Zero(t, cfg.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestNewContainer_UnknownEngine(t *testing.T) {
	_, err := NewContainer(context.Background(), Config{Engine: "lynx", Log: logger.Config{Level: "error"}})
	assert.ErrorIs(t, err, ErrUnknownEngine)
}

func TestNewContainer_Static(t *testing.T) {
	ctx := context.Background()
	var exits []int

	c, err := NewContainer(ctx, Config{
		Engine: "static",
		Log:    logger.Config{Level: "error"},
		Exit:   func(code int) { exits = append(exits, code) },
	})
	require.NoError(t, err)
	defer c.Close(ctx)

	assert.Equal(t, "static", c.Engine.Name())

	res, err := c.Runner.Run(ctx, "main.js", `
		const page = pneuma.launch().newPage();
		page.goto("about:blank");
		pneuma.exit(4);
		page.evaluate((a, b) => a * b, 6, 7);
	`)
	require.NoError(t, err)
	assert.EqualValues(t, 42, res.Value)
	assert.Equal(t, []int{4}, exits)

	families, err := c.Registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "pneuma_broker_requests_total")
}

func TestNewContainer_ChromiumScenario(t *testing.T) {
	if _, ok := launcher.LookPath(); !ok {
		t.Skip("no Chromium binary found")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Scenario</title></head>
<body>
	<button id="btn">Click Me</button>
	<div id="result"></div>
	<script>
		document.getElementById('btn').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Clicked!';
		});
	</script>
</body>
</html>`)
	}))
	defer srv.Close()

	ctx := context.Background()
	c, err := NewContainer(ctx, Config{
		Engine:   "chromium",
		Headless: true,
		Timeout:  30 * time.Second,
		Log:      logger.Config{Level: "error"},
		Exit:     func(int) {},
	})
	require.NoError(t, err)
	defer c.Close(ctx)

	res, err := c.Runner.Run(ctx, "scenario.js", fmt.Sprintf(`
		const page = pneuma.open(%q);
		page.$("#btn").click();
		[page.title(), page.$("#result").textContent(), page.$("#missing"), page.screenshot().byteLength > 0];
	`, srv.URL))
	require.NoError(t, err)
	assert.Equal(t, []any{"Scenario", "Clicked!", nil, true}, res.Value)
}
