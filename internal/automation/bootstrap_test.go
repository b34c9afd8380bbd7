package automation

import (
	"context"
	"testing"

	"pneuma/internal/domain/entity"
	"pneuma/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGuard_LoadTwiceInstallsOnce(t *testing.T) {
	var g Guard
	t.Cleanup(g.Unload)

	first := newFakeBridge()
	second := newFakeBridge()

	ns1, err := g.Load(first, logger.NewNop())
	require.NoError(t, err)
	ns2, err := g.Load(second, logger.NewNop())
	require.NoError(t, err)

	assert.Same(t, ns1, ns2)
	assert.True(t, g.Loaded())

	zap.L().Info("ambient")
	assert.Equal(t, []logLine{{entity.LogLevelInfo, "ambient"}}, first.logLines(), "console must be wrapped once")
	assert.Empty(t, second.logLines())

	_, err = ns2.Launch(nil).NewPage(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, first.pages)
	assert.EqualValues(t, 0, second.pages)
}

func TestGuard_MissingBinding(t *testing.T) {
	var g Guard
	t.Cleanup(g.Unload)

	before := zap.L()

	ns, err := g.Load(nil, logger.NewNop())
	assert.ErrorIs(t, err, ErrMissingBinding)
	assert.Nil(t, ns)
	assert.False(t, g.Loaded())
	assert.Same(t, before, zap.L(), "nothing may be installed")

	bridge := newFakeBridge()
	ns, err = g.Load(bridge, logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Version, ns.Version)
}

func TestGuard_TypedNilRejected(t *testing.T) {
	var g Guard
	t.Cleanup(g.Unload)

	var bridge *fakeBridge
	ns, err := g.Load(bridge, logger.NewNop())
	assert.ErrorIs(t, err, ErrMissingBinding)
	assert.Nil(t, ns)

	ns, err = g.Load(newFakeBridge(), nil)
	assert.ErrorIs(t, err, ErrMissingBinding)
	assert.Nil(t, ns)

	var log *logger.LoggerAdapter
	ns, err = g.Load(newFakeBridge(), log)
	assert.ErrorIs(t, err, ErrMissingBinding)
	assert.Nil(t, ns)
	assert.False(t, g.Loaded())
}

func TestGuard_UnloadRestoresAmbientLogger(t *testing.T) {
	var g Guard
	before := zap.L()

	_, err := g.Load(newFakeBridge(), logger.NewNop())
	require.NoError(t, err)
	assert.NotSame(t, before, zap.L())

	g.Unload()
	assert.Same(t, before, zap.L())
	assert.False(t, g.Loaded())
}

func TestMustBootstrap_PanicsWithoutBinding(t *testing.T) {
	Shutdown()
	t.Cleanup(Shutdown)

	assert.PanicsWithError(t, ErrMissingBinding.Error(), func() {
		MustBootstrap(nil, logger.NewNop())
	})

	bridge := newFakeBridge()
	ns := MustBootstrap(bridge, logger.NewNop())
	again, err := Bootstrap(newFakeBridge(), logger.NewNop())
	require.NoError(t, err)
	assert.Same(t, ns, again)
}

func TestNamespace_OpenAndExit(t *testing.T) {
	ctx := context.Background()
	ns, bridge := newTestNamespace(t)

	page, err := ns.Open(ctx, "https://example.com", Options{"waitUntil": "load"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.ID())
	assert.Equal(t, []string{"https://example.com"}, bridge.navigated)

	bridge.navigate = func(string, string) (string, error) { return `{"error":"TIMED_OUT"}`, nil }
	page, err = ns.Open(ctx, "https://slow.example", nil)
	assert.Nil(t, page)
	assert.EqualError(t, err, "Navigation failed: TIMED_OUT")

	browser := ns.Launch(Options{"headless": true})
	assert.Equal(t, Options{"headless": true}, browser.Options())
	require.NoError(t, browser.Close(ctx))
	assert.Equal(t, 1, bridge.closeCalls)

	ns.Exit(3)
	assert.Equal(t, []int{3}, bridge.exitCodes)
}
