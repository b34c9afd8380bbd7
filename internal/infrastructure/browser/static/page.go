package static

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"pneuma/internal/application/port/output"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
	"github.com/tidwall/gjson"
	"github.com/ysmood/gson"
)

const blankURL = "about:blank"

var _ output.EnginePage = (*page)(nil)

type page struct {
	engine *Engine
	vm     *goja.Runtime
	dom    *dom
	url    string
	closed bool
}

func newPage(e *Engine) *page {
	p := &page{engine: e}
	p.load(blankURL, emptyDocument())
	return p
}

func emptyDocument() *goquery.Document {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader("<html><head></head><body></body></html>"))
	return doc
}

// load gives the page a fresh global scope over doc, like a browser does on navigation.
func (p *page) load(rawURL string, doc *goquery.Document) {
	p.url = rawURL
	p.vm = goja.New()
	p.dom = newDOM(p.vm, doc, rawURL)
	p.dom.install()
}

func (p *page) Navigate(ctx context.Context, rawURL, optsJSON string) (string, error) {
	if p.closed {
		return "", errors.New("page is closed")
	}

	if rawURL == blankURL {
		p.load(blankURL, emptyDocument())
		return p.metadata(http.StatusOK), nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return failure("UNSUPPORTED_SCHEME"), nil
	}

	if ms := gjson.Get(optsJSON, "timeout").Int(); ms > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", p.engine.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := p.engine.client.Do(req)
	if err != nil {
		reason := classify(err)
		p.engine.log.Info("navigation failed", "url", rawURL, "reason", reason)
		return failure(reason), nil
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, p.engine.cfg.MaxBodyBytes))
	if err != nil {
		if reason := classify(err); reason == "TIMED_OUT" {
			return failure(reason), nil
		}
		return "", fmt.Errorf("parse document: %w", err)
	}

	p.load(resp.Request.URL.String(), doc)
	p.engine.log.Debug("navigated", "url", p.url, "status", resp.StatusCode)
	return p.metadata(resp.StatusCode), nil
}

func (p *page) metadata(status int) string {
	return gson.New(map[string]any{
		"ok":     true,
		"engine": EngineName,
		"url":    p.url,
		"status": status,
		"title":  p.dom.title(),
	}).JSON("", "")
}

func failure(reason string) string {
	return gson.New(map[string]any{"ok": false, "error": reason}).JSON("", "")
}

// classify maps transport errors onto the reasons scripts see in the navigation error.
func classify(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.As(err, &dnsErr):
		return "DNS_FAILED"
	case errors.Is(err, syscall.ECONNREFUSED):
		return "CONNECTION_REFUSED"
	case errors.Is(err, context.DeadlineExceeded):
		return "TIMED_OUT"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "TIMED_OUT"
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}

// Evaluate runs script in the page runtime and returns the JSON of its completion value.
func (p *page) Evaluate(ctx context.Context, script string) (string, error) {
	if p.closed {
		return "", errors.New("page is closed")
	}

	vm := p.vm
	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ctx.Err())
	})
	defer func() {
		stop()
		vm.ClearInterrupt()
	}()

	value, err := vm.RunString(script)
	if err != nil {
		return "", evalError(err)
	}

	if promise, ok := value.Export().(*goja.Promise); ok {
		switch promise.State() {
		case goja.PromiseStateFulfilled:
			value = promise.Result()
		case goja.PromiseStateRejected:
			return "", fmt.Errorf("promise rejected: %s", promise.Result().String())
		default:
			return "", errors.New("promise did not settle")
		}
	}

	return p.stringify(value)
}

func (p *page) stringify(value goja.Value) (string, error) {
	if value == nil || goja.IsUndefined(value) {
		return "null", nil
	}

	stringify, ok := goja.AssertFunction(p.vm.Get("JSON").ToObject(p.vm).Get("stringify"))
	if !ok {
		return "", errors.New("JSON.stringify is not callable")
	}

	out, err := stringify(goja.Undefined(), value)
	if err != nil {
		return "", evalError(err)
	}
	if goja.IsUndefined(out) {
		return "null", nil
	}
	return out.String(), nil
}

func evalError(err error) error {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		return fmt.Errorf("script error: %s", exc.Value().String())
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("script interrupted: %v", interrupted.Value())
	}
	return err
}

func (p *page) Screenshot(context.Context) ([]byte, error) {
	return nil, ErrScreenshotUnsupported
}

func (p *page) Close() error {
	p.closed = true
	p.vm.Interrupt("page closed")
	return nil
}
