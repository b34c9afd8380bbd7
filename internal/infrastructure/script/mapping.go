package script

import (
	"fmt"

	"pneuma/internal/automation"

	"github.com/dop251/goja"
)

// mapping is the JS face of an automation type. Keys become properties of the
// object handed to scripts; Go funcs returning an error throw on failure.
type mapping map[string]any

func (h *Host) object(m mapping) *goja.Object {
	obj := h.vm.NewObject()
	for k, v := range m {
		if err := obj.Set(k, h.vm.ToValue(v)); err != nil {
			panic(h.vm.NewGoError(fmt.Errorf("mapping %q: %w", k, err)))
		}
	}
	return obj
}

func mapNamespace(h *Host, ns *automation.Namespace) mapping {
	return mapping{
		"version": ns.Version,
		"launch": func(opts goja.Value) *goja.Object {
			return h.object(mapBrowser(h, ns.Launch(exportOptions(opts))))
		},
		"open": func(url string, opts goja.Value) (*goja.Object, error) {
			p, err := ns.Open(h.context(), url, exportOptions(opts))
			if err != nil {
				return nil, err
			}
			return h.object(mapPage(h, p)), nil
		},
		"exit": func(code goja.Value) {
			ns.Exit(int(exportInt(code)))
		},
	}
}

func mapBrowser(h *Host, b *automation.Browser) mapping {
	return mapping{
		"newPage": func() (*goja.Object, error) {
			p, err := b.NewPage(h.context())
			if err != nil {
				return nil, err
			}
			return h.object(mapPage(h, p)), nil
		},
		"close": func() error {
			return b.Close(h.context())
		},
	}
}

func mapPage(h *Host, p *automation.Page) mapping {
	return mapping{
		"id": uint32(p.ID()),
		"goto": func(url string, opts goja.Value) (any, error) {
			res, err := p.Goto(h.context(), url, exportOptions(opts))
			if err != nil {
				return nil, err
			}
			return res.Meta.Val(), nil
		},
		"evaluate": func(fn goja.Value, args ...goja.Value) (any, error) {
			if !gojaValueExists(fn) {
				return nil, automation.ErrEmptyScript
			}
			res, err := p.Evaluate(h.context(), fn.String(), exportArgs(args)...)
			if err != nil {
				return nil, err
			}
			return res.Val(), nil
		},
		"$": func(selector string) (goja.Value, error) {
			el, err := p.Query(h.context(), selector)
			if err != nil {
				return nil, err
			}
			// A miss is null in the script, not an empty handle.
			if el == nil {
				return goja.Null(), nil
			}
			return h.object(mapElement(h, el)), nil
		},
		"screenshot": func() (*goja.ArrayBuffer, error) {
			data, err := p.Screenshot(h.context())
			if err != nil {
				return nil, err
			}
			ab := h.vm.NewArrayBuffer(data)
			return &ab, nil
		},
		"title": func() (string, error) {
			return p.Title(h.context())
		},
		"content": func() (string, error) {
			return p.Content(h.context())
		},
	}
}

func mapElement(h *Host, el *automation.ElementHandle) mapping {
	return mapping{
		"selector": el.Selector(),
		"click": func() error {
			return el.Click(h.context())
		},
		"textContent": func() (goja.Value, error) {
			text, ok, err := el.TextContent(h.context())
			if err != nil {
				return nil, err
			}
			if !ok {
				return goja.Null(), nil
			}
			return h.vm.ToValue(text), nil
		},
	}
}

func mapConsole(h *Host, c *automation.Console) mapping {
	return mapping{
		"log":   func(args ...goja.Value) { c.Log(consoleArgs(h.vm, args)...) },
		"info":  func(args ...goja.Value) { c.Log(consoleArgs(h.vm, args)...) },
		"warn":  func(args ...goja.Value) { c.Warn(consoleArgs(h.vm, args)...) },
		"error": func(args ...goja.Value) { c.Error(consoleArgs(h.vm, args)...) },
		"debug": func(args ...goja.Value) { c.Debug(consoleArgs(h.vm, args)...) },
	}
}
