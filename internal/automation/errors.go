package automation

import (
	"errors"
	"fmt"

	"pneuma/internal/domain/entity"
)

var (
	ErrMissingBinding      = errors.New("automation: bridge binding is not installed")
	ErrNavigation          = errors.New("navigation failed")
	ErrMalformedResult     = errors.New("malformed evaluation result")
	ErrUnencodableArgument = errors.New("argument cannot be encoded as JSON")
	ErrEmptyScript         = errors.New("script source is empty")
)

// NavigationError carries the boundary-supplied reason verbatim.
type NavigationError struct {
	Reason string
}

func (e *NavigationError) Error() string {
	return "Navigation failed: " + e.Reason
}

func (e *NavigationError) Is(target error) bool {
	return target == ErrNavigation
}

// EvaluationError is returned when the boundary itself rejects an evaluate call,
// including scripts that throw inside the page.
type EvaluationError struct {
	Page entity.PageID
	Err  error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluate on page %s: %v", e.Page, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}
