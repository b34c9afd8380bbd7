package output

import (
	"context"

	"pneuma/internal/domain/entity"
)

// BridgePort is the primitive surface the engine boundary provides. Only copyable
// data crosses it: strings, byte slices and integers.
type BridgePort interface {
	CreatePage(ctx context.Context) (entity.PageID, error)
	// Navigate returns a JSON object; a non-empty "error" field signals failure.
	Navigate(ctx context.Context, page entity.PageID, url, optsJSON string) (string, error)
	// Evaluate runs script in the page and returns the JSON encoding of its value.
	Evaluate(ctx context.Context, page entity.PageID, script string) (string, error)
	Screenshot(ctx context.Context, page entity.PageID) ([]byte, error)
	CloseBrowser(ctx context.Context) error

	Log(level entity.LogLevel, msg string)
	Exit(code int)
}
