package di

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"pneuma/internal/application/port/input"
	"pneuma/internal/application/port/output"
	"pneuma/internal/automation"
	"pneuma/internal/infrastructure/broker"
	"pneuma/internal/infrastructure/browser/rod"
	"pneuma/internal/infrastructure/browser/static"
	"pneuma/internal/infrastructure/env"
	"pneuma/internal/infrastructure/logger"
	"pneuma/internal/infrastructure/script"
	"pneuma/internal/usecase/runner"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var ErrUnknownEngine = errors.New("unknown engine")

type Container struct {
	Logger    *logger.LoggerAdapter
	Engine    output.EnginePort
	Broker    *broker.Broker
	Namespace *automation.Namespace
	Host      *script.Host
	Runner    input.ScriptRunner
	Registry  *prometheus.Registry
}

type Config struct {
	Engine             string
	Headless           bool
	BrowserBin         string
	ControlURL         string
	Timeout            time.Duration
	ScreenshotMaxWidth int
	Log                logger.Config
	// Exit replaces the default flush-and-exit used for script exit requests.
	Exit func(code int)
}

// ConfigFromEnv reads the PNEUMA_* keys. Flags may override the result.
func ConfigFromEnv(cfg output.ConfigPort) Config {
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.GetWithDefault(env.KeyLogLevel, logCfg.Level)
	logCfg.Dir = cfg.Get(env.KeyLogDir)

	return Config{
		Engine:             cfg.GetWithDefault(env.KeyEngine, rod.EngineName),
		Headless:           cfg.GetBool(env.KeyHeadless, true),
		BrowserBin:         cfg.Get(env.KeyBrowserBin),
		ControlURL:         cfg.Get(env.KeyControlURL),
		Timeout:            cfg.GetDuration(env.KeyTimeout, 0),
		ScreenshotMaxWidth: cfg.GetInt(env.KeyScreenshotMaxWidth, 0),
		Log:                logCfg,
	}
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	engine, err := newEngine(ctx, cfg, log)
	if err != nil {
		_ = log.Close()
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Container{
		Logger:   log,
		Engine:   engine,
		Registry: reg,
	}

	exit := cfg.Exit
	if exit == nil {
		exit = func(code int) {
			_ = log.Close()
			os.Exit(code)
		}
	}
	c.Broker = broker.Start(engine, broker.Config{Registerer: reg, Exit: exit}, log)

	ns, err := automation.Bootstrap(c.Broker, log)
	if err != nil {
		c.Close(ctx)
		return nil, fmt.Errorf("failed to bootstrap automation: %w", err)
	}
	c.Namespace = ns

	host, err := script.NewHost(ns, log)
	if err != nil {
		c.Close(ctx)
		return nil, fmt.Errorf("failed to create script host: %w", err)
	}
	c.Host = host
	c.Runner = runner.New(host, log, runner.Config{Timeout: cfg.Timeout})

	log.Debug("Container ready", "engine", engine.Name(), "session", c.Broker.Session())
	return c, nil
}

func newEngine(ctx context.Context, cfg Config, log output.LoggerPort) (output.EnginePort, error) {
	switch cfg.Engine {
	case rod.EngineName, "":
		browserCfg := rod.DefaultConfig()
		browserCfg.Headless = cfg.Headless
		browserCfg.BrowserBin = cfg.BrowserBin
		browserCfg.ControlURL = cfg.ControlURL
		if cfg.Timeout > 0 {
			browserCfg.Timeout = cfg.Timeout
		}
		if cfg.ScreenshotMaxWidth > 0 {
			browserCfg.ScreenshotMaxWidth = cfg.ScreenshotMaxWidth
		}
		engine, err := rod.NewEngine(ctx, browserCfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create browser: %w", err)
		}
		return engine, nil
	case static.EngineName:
		staticCfg := static.DefaultConfig()
		if cfg.Timeout > 0 {
			staticCfg.Timeout = cfg.Timeout
		}
		return static.New(staticCfg, log), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, cfg.Engine)
}

// Close tears the container down in reverse order of construction.
func (c *Container) Close(ctx context.Context) {
	if c.Namespace != nil {
		automation.Shutdown()
	}
	if c.Broker != nil {
		if err := c.Broker.Shutdown(ctx); err != nil {
			c.Logger.Warn("Broker shutdown failed", "error", err)
		}
	}
	if c.Logger != nil {
		_ = c.Logger.Close()
	}
}
