package automation

import (
	"context"
	"fmt"

	"pneuma/internal/application/port/output"
)

// Browser is a page factory for one engine session. The boundary owns the session;
// Close is best effort and does not invalidate Page values held by callers.
type Browser struct {
	bridge  output.BridgePort
	log     output.LoggerPort
	options Options
}

// Options returns the bag given to Launch.
func (b *Browser) Options() Options {
	return b.options
}

func (b *Browser) NewPage(ctx context.Context) (*Page, error) {
	id, err := b.bridge.CreatePage(ctx)
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	b.log.Debug("page created", "page", id.String())
	return newPage(id, b.bridge, b.log), nil
}

func (b *Browser) Close(ctx context.Context) error {
	if err := b.bridge.CloseBrowser(ctx); err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}
