package automation

import (
	"context"
	"errors"
	"sync"

	"pneuma/internal/application/port/output"
	"pneuma/internal/domain/entity"

	"github.com/dop251/goja"
)

// documentFixture is a tiny stand-in for a page document: selectors are looked up in
// a plain object so tests can add or remove nodes between calls.
const documentFixture = `
var nodes = {
	"#greeting": { textContent: "Hello", clicks: 0, click: function () { this.clicks++; } },
};
var document = {
	title: "Fixture",
	documentElement: { outerHTML: "<html><head><title>Fixture</title></head><body></body></html>" },
	querySelector: function (selector) {
		return Object.prototype.hasOwnProperty.call(nodes, selector) ? nodes[selector] : null;
	},
};
`

type logLine struct {
	level entity.LogLevel
	msg   string
}

var _ output.BridgePort = (*fakeBridge)(nil)

// fakeBridge runs evaluate scripts in goja against documentFixture.
type fakeBridge struct {
	mu sync.Mutex
	vm *goja.Runtime

	navigate    func(url, optsJSON string) (string, error)
	evaluateErr error
	rawResult   string
	screenshot  []byte

	pages      entity.PageID
	scripts    []string
	navigated  []string
	optsSeen   []string
	logs       []logLine
	closeCalls int
	exitCodes  []int
}

func newFakeBridge() *fakeBridge {
	vm := goja.New()
	if _, err := vm.RunString(documentFixture); err != nil {
		panic(err)
	}
	return &fakeBridge{
		vm: vm,
		navigate: func(url, _ string) (string, error) {
			return `{"ok":true,"engine":"fake","url":"` + url + `","title":"Fixture"}`, nil
		},
	}
}

func (f *fakeBridge) run(js string) goja.Value {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, err := f.vm.RunString(js)
	if err != nil {
		panic(err)
	}
	return v
}

func (f *fakeBridge) CreatePage(context.Context) (entity.PageID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages++
	return f.pages, nil
}

func (f *fakeBridge) Navigate(_ context.Context, _ entity.PageID, url, optsJSON string) (string, error) {
	f.mu.Lock()
	f.navigated = append(f.navigated, url)
	f.optsSeen = append(f.optsSeen, optsJSON)
	nav := f.navigate
	f.mu.Unlock()
	return nav(url, optsJSON)
}

func (f *fakeBridge) Evaluate(_ context.Context, _ entity.PageID, script string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scripts = append(f.scripts, script)
	if f.evaluateErr != nil {
		return "", f.evaluateErr
	}
	if f.rawResult != "" {
		return f.rawResult, nil
	}

	v, err := f.vm.RunString(script)
	if err != nil {
		return "", err
	}
	stringify, ok := goja.AssertFunction(f.vm.Get("JSON").ToObject(f.vm).Get("stringify"))
	if !ok {
		return "", errors.New("JSON.stringify missing")
	}
	out, err := stringify(goja.Undefined(), v)
	if err != nil {
		return "", err
	}
	if goja.IsUndefined(out) {
		return "null", nil
	}
	return out.String(), nil
}

func (f *fakeBridge) Screenshot(context.Context, entity.PageID) ([]byte, error) {
	return f.screenshot, nil
}

func (f *fakeBridge) CloseBrowser(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	return nil
}

func (f *fakeBridge) Log(level entity.LogLevel, msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, logLine{level: level, msg: msg})
}

func (f *fakeBridge) Exit(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exitCodes = append(f.exitCodes, code)
}

func (f *fakeBridge) lastScript() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.scripts) == 0 {
		return ""
	}
	return f.scripts[len(f.scripts)-1]
}

func (f *fakeBridge) logLines() []logLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]logLine(nil), f.logs...)
}
