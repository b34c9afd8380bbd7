package automation

import (
	"reflect"
	"sync"

	"pneuma/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Guard installs the namespace and the console redirection at most once.
type Guard struct {
	mu      sync.Mutex
	ns      *Namespace
	restore func()
}

// Load installs the automation surface on first use. Later calls return the
// installed namespace without touching anything, whatever bridge they pass.
// A nil bridge or logger, typed or not, fails before anything is installed.
func (g *Guard) Load(bridge output.BridgePort, log output.LoggerPort) (*Namespace, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ns != nil {
		return g.ns, nil
	}
	if isNil(bridge) || isNil(log) {
		return nil, ErrMissingBinding
	}

	console := NewConsole(bridge)
	ns := &Namespace{
		Version: Version,
		Console: console,
		bridge:  bridge,
		log:     log.Named("automation"),
	}

	g.restore = zap.ReplaceGlobals(zap.New(console.Core(zapcore.DebugLevel)))
	g.ns = ns

	ns.log.Debug("automation namespace installed", "version", ns.Version)
	return ns, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func (g *Guard) Loaded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ns != nil
}

// Unload restores the ambient logger and forgets the namespace.
func (g *Guard) Unload() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.restore != nil {
		g.restore()
		g.restore = nil
	}
	g.ns = nil
}

var process Guard

// Bootstrap loads the process-wide guard.
func Bootstrap(bridge output.BridgePort, log output.LoggerPort) (*Namespace, error) {
	return process.Load(bridge, log)
}

// MustBootstrap is Bootstrap for callers that cannot run without the bridge.
func MustBootstrap(bridge output.BridgePort, log output.LoggerPort) *Namespace {
	ns, err := Bootstrap(bridge, log)
	if err != nil {
		panic(err)
	}
	return ns
}

// Shutdown ends the process-wide lifecycle started by Bootstrap.
func Shutdown() {
	process.Unload()
}
