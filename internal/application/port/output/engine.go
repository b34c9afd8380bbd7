package output

import "context"

// EnginePort is a headless browsing engine that sits behind the bridge.
type EnginePort interface {
	Name() string
	NewPage(ctx context.Context) (EnginePage, error)
	Close() error
}

// EnginePage is a single browsing context owned by an engine.
type EnginePage interface {
	Navigate(ctx context.Context, url, optsJSON string) (string, error)
	Evaluate(ctx context.Context, script string) (string, error)
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}
