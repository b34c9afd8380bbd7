package automation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"pneuma/internal/application/port/output"
	"pneuma/internal/domain/entity"

	"github.com/tidwall/gjson"
	"github.com/ysmood/gson"
)

// Script is a function source plus the arguments bound to it. The function is
// compiled into a self-invoking expression and run inside the page, so it must be
// self-contained: only Args are visible to it, never variables of the caller.
type Script struct {
	Source string
	Args   []any
}

func Func(source string, args ...any) Script {
	return Script{Source: source, Args: args}
}

// Compile renders the script as `(<source>)(<arg>,...)` with every argument
// encoded as a JSON literal.
func (s Script) Compile() (string, error) {
	src := strings.Trim(s.Source, "\t\n\v\f\r ;")
	if src == "" {
		return "", ErrEmptyScript
	}

	literals := make([]string, len(s.Args))
	for i, arg := range s.Args {
		lit, err := encodeArg(arg)
		if err != nil {
			return "", fmt.Errorf("%w: argument %d: %v", ErrUnencodableArgument, i, err)
		}
		literals[i] = lit
	}

	var sb strings.Builder
	sb.Grow(len(src) + 4 + len(literals)*8)
	sb.WriteByte('(')
	sb.WriteString(src)
	sb.WriteString(")(")
	sb.WriteString(strings.Join(literals, ","))
	sb.WriteByte(')')
	return sb.String(), nil
}

func encodeArg(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// encoding/json escapes U+2028 and U+2029, so the literal is also valid JS source.
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func decodeResult(raw string) (gson.JSON, error) {
	if !gjson.Valid(raw) {
		return gson.New(nil), fmt.Errorf("%w: %s", ErrMalformedResult, preview(raw))
	}
	return gson.New(gjson.Parse(raw).Value()), nil
}

func evaluate(ctx context.Context, bridge output.BridgePort, page entity.PageID, s Script) (gson.JSON, error) {
	text, err := s.Compile()
	if err != nil {
		return gson.New(nil), err
	}

	raw, err := bridge.Evaluate(ctx, page, text)
	if err != nil {
		return gson.New(nil), &EvaluationError{Page: page, Err: err}
	}

	return decodeResult(raw)
}

func preview(s string) string {
	const max = 120
	if len(s) > max {
		return fmt.Sprintf("%q...", s[:max])
	}
	return fmt.Sprintf("%q", s)
}
