package automation

import (
	"context"

	"pneuma/internal/application/port/output"
)

const Version = "0.3.0"

// Namespace is the public automation surface installed by the bootstrap guard.
type Namespace struct {
	Version string
	Console *Console

	bridge output.BridgePort
	log    output.LoggerPort
}

// Launch returns a Browser. The engine session already exists behind the bridge,
// so nothing crosses the boundary here.
func (n *Namespace) Launch(opts Options) *Browser {
	return &Browser{
		bridge:  n.bridge,
		log:     n.log,
		options: opts,
	}
}

// Open launches a browser, creates one page and navigates it to url.
func (n *Namespace) Open(ctx context.Context, url string, opts Options) (*Page, error) {
	page, err := n.Launch(opts).NewPage(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := page.Goto(ctx, url, opts); err != nil {
		return nil, err
	}
	return page, nil
}

// Exit asks the boundary to terminate the process. Nothing is cleaned up first.
func (n *Namespace) Exit(code int) {
	n.bridge.Exit(code)
}
