package automation

import (
	"context"
	"errors"
	"testing"

	"pneuma/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNamespace(t *testing.T) (*Namespace, *fakeBridge) {
	t.Helper()

	var g Guard
	bridge := newFakeBridge()
	ns, err := g.Load(bridge, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(g.Unload)

	return ns, bridge
}

func TestPage_Goto(t *testing.T) {
	ctx := context.Background()
	ns, bridge := newTestNamespace(t)
	page, err := ns.Launch(nil).NewPage(ctx)
	require.NoError(t, err)

	res, err := page.Goto(ctx, "https://example.com", Options{"timeout": 500})
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.Equal(t, "Fixture", res.Title())
	assert.Equal(t, "https://example.com", res.URL())
	assert.Equal(t, "fake", res.Engine())
	assert.Equal(t, []string{`{"timeout":500}`}, bridge.optsSeen)
}

func TestPage_Goto_EmptyOptions(t *testing.T) {
	ctx := context.Background()
	ns, bridge := newTestNamespace(t)
	page, err := ns.Launch(nil).NewPage(ctx)
	require.NoError(t, err)

	_, err = page.Goto(ctx, "https://example.com", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"{}"}, bridge.optsSeen)
}

func TestPage_Goto_NavigationFailed(t *testing.T) {
	ctx := context.Background()
	ns, bridge := newTestNamespace(t)
	page, err := ns.Launch(nil).NewPage(ctx)
	require.NoError(t, err)

	bridge.navigate = func(string, string) (string, error) {
		return `{"error":"DNS_FAILED"}`, nil
	}

	res, err := page.Goto(ctx, "https://nowhere.invalid", nil)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, "Navigation failed: DNS_FAILED", err.Error())
	assert.ErrorIs(t, err, ErrNavigation)
}

func TestPage_Goto_EmptyErrorIsSuccess(t *testing.T) {
	ctx := context.Background()
	ns, bridge := newTestNamespace(t)
	page, err := ns.Launch(nil).NewPage(ctx)
	require.NoError(t, err)

	for _, body := range []string{`{"ok":true,"error":""}`, `{"ok":true,"error":null}`} {
		bridge.navigate = func(string, string) (string, error) { return body, nil }

		res, err := page.Goto(ctx, "https://example.com", nil)
		require.NoError(t, err, body)
		assert.True(t, res.OK(), body)
	}
}

func TestPage_Goto_BoundaryFailures(t *testing.T) {
	ctx := context.Background()
	ns, bridge := newTestNamespace(t)
	page, err := ns.Launch(nil).NewPage(ctx)
	require.NoError(t, err)

	bridge.navigate = func(string, string) (string, error) { return "<html>", nil }
	_, err = page.Goto(ctx, "https://example.com", nil)
	assert.ErrorIs(t, err, ErrMalformedResult)

	closed := errors.New("broker request channel closed")
	bridge.navigate = func(string, string) (string, error) { return "", closed }
	_, err = page.Goto(ctx, "https://example.com", nil)
	assert.ErrorIs(t, err, closed)

	_, err = page.Goto(ctx, "https://example.com", Options{"bad": func() {}})
	assert.Error(t, err)
}

func TestPage_Query(t *testing.T) {
	ctx := context.Background()
	ns, _ := newTestNamespace(t)
	page, err := ns.Launch(nil).NewPage(ctx)
	require.NoError(t, err)

	el, err := page.Query(ctx, "#missing")
	assert.NoError(t, err)
	assert.Nil(t, el)

	el, err = page.Query(ctx, "#greeting")
	require.NoError(t, err)
	require.NotNil(t, el)
	assert.Equal(t, "#greeting", el.Selector())
	assert.Same(t, page, el.Page())
}

func TestPage_TitleAndContent(t *testing.T) {
	ctx := context.Background()
	ns, _ := newTestNamespace(t)
	page, err := ns.Launch(nil).NewPage(ctx)
	require.NoError(t, err)

	title, err := page.Title(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Fixture", title)

	content, err := page.Content(ctx)
	require.NoError(t, err)
	assert.Contains(t, content, "<title>Fixture</title>")
}

func TestPage_Screenshot_ReturnsRawBytes(t *testing.T) {
	ctx := context.Background()
	ns, bridge := newTestNamespace(t)
	page, err := ns.Launch(nil).NewPage(ctx)
	require.NoError(t, err)

	bridge.screenshot = []byte{0x89, 'P', 'N', 'G'}

	data, err := page.Screenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, bridge.screenshot, data)
	assert.Empty(t, bridge.scripts)
}
