package automation

import (
	"context"
	"encoding/json"
	"fmt"

	"pneuma/internal/application/port/output"
	"pneuma/internal/domain/entity"

	"github.com/tidwall/gjson"
	"github.com/ysmood/gson"
)

// Options is an open option bag forwarded to the boundary as JSON.
type Options map[string]any

func (o Options) encode() (string, error) {
	if len(o) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("encode options: %w", err)
	}
	return string(data), nil
}

const (
	titleScript   = `() => document.title`
	contentScript = `() => document.documentElement ? document.documentElement.outerHTML : ""`
	existsScript  = `(selector) => document.querySelector(selector) !== null`
)

// Page is a browsing context living on the boundary side. It holds nothing but its id.
type Page struct {
	id     entity.PageID
	bridge output.BridgePort
	log    output.LoggerPort
}

func newPage(id entity.PageID, bridge output.BridgePort, log output.LoggerPort) *Page {
	return &Page{
		id:     id,
		bridge: bridge,
		log:    log.WithField("page", id.String()),
	}
}

func (p *Page) ID() entity.PageID {
	return p.id
}

func (p *Page) Goto(ctx context.Context, url string, opts Options) (*entity.NavigationResult, error) {
	optsJSON, err := opts.encode()
	if err != nil {
		return nil, err
	}

	raw, err := p.bridge.Navigate(ctx, p.id, url, optsJSON)
	if err != nil {
		return nil, fmt.Errorf("navigate %s: %w", url, err)
	}
	if !gjson.Valid(raw) {
		return nil, fmt.Errorf("navigate %s: %w: %s", url, ErrMalformedResult, preview(raw))
	}

	if reason := gjson.Get(raw, "error"); reason.Exists() && reason.Type != gjson.Null && reason.String() != "" {
		p.log.Debug("navigation reported failure", "url", url, "error", reason.String())
		return nil, &NavigationError{Reason: reason.String()}
	}

	p.log.Debug("navigated", "url", url)
	return &entity.NavigationResult{Meta: gson.New(gjson.Parse(raw).Value())}, nil
}

// Evaluate runs a self-contained function source with JSON-encoded args in the page.
func (p *Page) Evaluate(ctx context.Context, source string, args ...any) (entity.EvaluationResult, error) {
	return p.Run(ctx, Func(source, args...))
}

func (p *Page) Run(ctx context.Context, s Script) (entity.EvaluationResult, error) {
	return evaluate(ctx, p.bridge, p.id, s)
}

// Query resolves selector once to check it exists. A miss returns nil and no error.
func (p *Page) Query(ctx context.Context, selector string) (*ElementHandle, error) {
	res, err := p.Evaluate(ctx, existsScript, selector)
	if err != nil {
		return nil, err
	}
	if !res.Bool() {
		return nil, nil
	}
	return &ElementHandle{page: p, selector: selector}, nil
}

// Screenshot returns the boundary's raw image bytes.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	data, err := p.bridge.Screenshot(ctx, p.id)
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return data, nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	res, err := p.Evaluate(ctx, titleScript)
	if err != nil {
		return "", err
	}
	return res.Str(), nil
}

func (p *Page) Content(ctx context.Context) (string, error) {
	res, err := p.Evaluate(ctx, contentScript)
	if err != nil {
		return "", err
	}
	return res.Str(), nil
}
