package static

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dop251/goja"
)

// dom exposes a read-mostly subset of the document API to the page runtime.
// Element objects wrap a single node and read it on every access.
type dom struct {
	vm  *goja.Runtime
	doc *goquery.Document
	url string
}

func newDOM(vm *goja.Runtime, doc *goquery.Document, url string) *dom {
	return &dom{vm: vm, doc: doc, url: url}
}

func (d *dom) install() {
	document := d.vm.NewObject()
	d.getter(document, "title", func() goja.Value { return d.vm.ToValue(d.title()) })
	d.getter(document, "URL", func() goja.Value { return d.vm.ToValue(d.url) })
	d.getter(document, "documentElement", func() goja.Value { return d.element(d.doc.Find("html").First()) })
	d.getter(document, "body", func() goja.Value { return d.element(d.doc.Find("body").First()) })
	d.selectors(document, d.doc.Selection)

	location := d.vm.NewObject()
	_ = location.Set("href", d.url)

	window := d.vm.GlobalObject()
	_ = window.Set("document", document)
	_ = window.Set("location", location)
	_ = window.Set("window", window)
}

func (d *dom) title() string {
	return strings.TrimSpace(d.doc.Find("title").First().Text())
}

func (d *dom) selectors(obj *goja.Object, root *goquery.Selection) {
	_ = obj.Set("querySelector", func(selector string) goja.Value {
		return d.element(root.Find(selector).First())
	})
	_ = obj.Set("querySelectorAll", func(selector string) goja.Value {
		found := root.Find(selector)
		items := make([]any, 0, found.Length())
		found.Each(func(_ int, s *goquery.Selection) {
			items = append(items, d.element(s))
		})
		return d.vm.NewArray(items...)
	})
}

func (d *dom) element(sel *goquery.Selection) goja.Value {
	if sel.Length() == 0 {
		return goja.Null()
	}

	el := d.vm.NewObject()
	d.getter(el, "tagName", func() goja.Value {
		return d.vm.ToValue(strings.ToUpper(goquery.NodeName(sel)))
	})
	d.getter(el, "id", func() goja.Value { return d.vm.ToValue(sel.AttrOr("id", "")) })
	d.getter(el, "textContent", func() goja.Value { return d.vm.ToValue(sel.Text()) })
	d.getter(el, "innerHTML", func() goja.Value {
		html, _ := sel.Html()
		return d.vm.ToValue(html)
	})
	d.getter(el, "outerHTML", func() goja.Value {
		html, _ := goquery.OuterHtml(sel)
		return d.vm.ToValue(html)
	})

	_ = el.Set("getAttribute", func(name string) goja.Value {
		if v, ok := sel.Attr(name); ok {
			return d.vm.ToValue(v)
		}
		return goja.Null()
	})
	// Page scripts never run here, so there are no listeners to dispatch to.
	_ = el.Set("click", func() {})
	_ = el.Set("remove", func() { sel.Remove() })
	d.selectors(el, sel)

	return el
}

func (d *dom) getter(obj *goja.Object, name string, get func() goja.Value) {
	fn := d.vm.ToValue(func(goja.FunctionCall) goja.Value { return get() })
	_ = obj.DefineAccessorProperty(name, fn, nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
}
