package broker

import (
	"context"
	"errors"
	"sync"

	"pneuma/internal/application/port/output"
)

var _ output.EnginePort = (*fakeEngine)(nil)

type fakeEngine struct {
	mu         sync.Mutex
	newPageErr error
	closeErr   error
	pages      []*fakePage
	closeCalls int
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) NewPage(context.Context) (output.EnginePage, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.newPageErr != nil {
		return nil, e.newPageErr
	}
	p := &fakePage{}
	e.pages = append(e.pages, p)
	return p, nil
}

func (e *fakeEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeCalls++
	return e.closeErr
}

func (e *fakeEngine) closed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closeCalls
}

type fakePage struct {
	mu      sync.Mutex
	urls    []string
	scripts []string
	closed  bool
}

func (p *fakePage) Navigate(_ context.Context, url, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.urls = append(p.urls, url)
	return `{"ok":true,"engine":"fake","url":"` + url + `"}`, nil
}

func (p *fakePage) Evaluate(_ context.Context, script string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts = append(p.scripts, script)
	if script == "throw" {
		return "", errors.New("script threw")
	}
	return "42", nil
}

func (p *fakePage) Screenshot(context.Context) ([]byte, error) {
	return []byte("img"), nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
