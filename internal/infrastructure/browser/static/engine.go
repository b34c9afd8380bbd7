// Package static is a headless engine without rendering: pages are fetched over HTTP,
// parsed with goquery and scripted through a goja runtime holding a small DOM.
package static

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"pneuma/internal/application/port/output"
)

const (
	EngineName = "static"

	defaultTimeout  = 30 * time.Second
	defaultMaxBytes = 10 << 20
	userAgent       = "pneuma-static/1.0"
)

var (
	ErrScreenshotUnsupported = errors.New("static engine cannot take screenshots")
	ErrEngineClosed          = errors.New("static engine is closed")
)

var _ output.EnginePort = (*Engine)(nil)

type Config struct {
	// Client performs page fetches. Defaults to a client with Timeout.
	Client *http.Client
	Timeout   time.Duration
	UserAgent string
	// MaxBodyBytes caps how much of a response is parsed.
	MaxBodyBytes int64
}

func DefaultConfig() Config {
	return Config{
		Timeout:      defaultTimeout,
		UserAgent:    userAgent,
		MaxBodyBytes: defaultMaxBytes,
	}
}

type Engine struct {
	cfg    Config
	client *http.Client
	log    output.LoggerPort

	mu     sync.Mutex
	closed bool
}

func New(cfg Config, log output.LoggerPort) *Engine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = userAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBytes
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Engine{
		cfg:    cfg,
		client: client,
		log:    log.Named("static"),
	}
}

func (e *Engine) Name() string {
	return EngineName
}

func (e *Engine) NewPage(ctx context.Context) (output.EnginePage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrEngineClosed
	}
	return newPage(e), nil
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	e.client.CloseIdleConnections()
	return nil
}
