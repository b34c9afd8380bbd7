package input

import (
	"context"
	"time"
)

type RunResult struct {
	// Value is the exported completion value of the script; nil for undefined or null.
	Value    any
	Duration time.Duration
}

type ScriptRunner interface {
	Run(ctx context.Context, name, source string) (*RunResult, error)
	Eval(ctx context.Context, expression string) (*RunResult, error)
}
