package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pneuma/internal/application/port/input"
	"pneuma/internal/application/port/output"
	"pneuma/internal/automation"
)

var _ input.ScriptRunner = (*UseCase)(nil)

type Config struct {
	// Timeout bounds a single run. Zero leaves it to the caller's context.
	Timeout time.Duration
}

type UseCase struct {
	host    output.ScriptHostPort
	logger  output.LoggerPort
	timeout time.Duration
}

func New(host output.ScriptHostPort, logger output.LoggerPort, cfg Config) *UseCase {
	return &UseCase{
		host:    host,
		logger:  logger.Named("runner"),
		timeout: cfg.Timeout,
	}
}

func (uc *UseCase) Run(ctx context.Context, name, source string) (*input.RunResult, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("run %s: %w", name, automation.ErrEmptyScript)
	}
	return uc.run(ctx, name, func(ctx context.Context) (any, error) {
		return uc.host.RunScript(ctx, name, source)
	})
}

func (uc *UseCase) Eval(ctx context.Context, expression string) (*input.RunResult, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, fmt.Errorf("eval: %w", automation.ErrEmptyScript)
	}
	return uc.run(ctx, "<eval>", func(ctx context.Context) (any, error) {
		return uc.host.Eval(ctx, expression)
	})
}

func (uc *UseCase) run(ctx context.Context, name string, fn func(context.Context) (any, error)) (*input.RunResult, error) {
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	log := uc.logger.WithField("script", name)
	log.Debug("Script started")

	start := time.Now()
	value, err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("Script timed out", "timeout", uc.timeout, "duration", elapsed)
		} else {
			log.Error("Script failed", "error", err, "duration", elapsed)
		}
		return nil, err
	}

	log.Info("Script finished", "duration", elapsed)
	return &input.RunResult{Value: value, Duration: elapsed}, nil
}
