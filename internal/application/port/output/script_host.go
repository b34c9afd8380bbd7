package output

import "context"

// ScriptHostPort runs JavaScript against the automation namespace.
type ScriptHostPort interface {
	RunScript(ctx context.Context, name, source string) (any, error)
	Eval(ctx context.Context, expression string) (any, error)
}
