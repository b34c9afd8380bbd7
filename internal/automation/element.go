package automation

import "context"

const (
	clickScript = `(selector) => {
	const el = document.querySelector(selector);
	if (el === null) {
		return false;
	}
	el.click();
	return true;
}`
	textContentScript = `(selector) => {
	const el = document.querySelector(selector);
	return el === null ? null : el.textContent;
}`
)

// ElementHandle is a (page, selector) pair. Every call resolves the selector against
// the current document; a node that disappeared yields no result instead of an error.
type ElementHandle struct {
	page     *Page
	selector string
}

func (e *ElementHandle) Page() *Page {
	return e.page
}

func (e *ElementHandle) Selector() string {
	return e.selector
}

func (e *ElementHandle) Click(ctx context.Context) error {
	res, err := e.page.Evaluate(ctx, clickScript, e.selector)
	if err != nil {
		return err
	}
	if !res.Bool() {
		e.page.log.Debug("click target missing", "selector", e.selector)
	}
	return nil
}

// TextContent reports ok == false when the selector no longer matches.
func (e *ElementHandle) TextContent(ctx context.Context) (string, bool, error) {
	res, err := e.page.Evaluate(ctx, textContentScript, e.selector)
	if err != nil {
		return "", false, err
	}
	if res.Nil() {
		return "", false, nil
	}
	return res.Str(), true, nil
}
