package script

import (
	"pneuma/internal/automation"

	"github.com/dop251/goja"
)

// gojaValueExists reports whether v is neither nil, undefined nor null.
func gojaValueExists(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}

func exportArg(v goja.Value) any {
	if !gojaValueExists(v) {
		return nil
	}
	return v.Export()
}

// exportArgs keeps undefined and null arguments as nil so positions are preserved.
func exportArgs(values []goja.Value) []any {
	args := make([]any, 0, len(values))
	for _, v := range values {
		args = append(args, exportArg(v))
	}
	return args
}

func exportOptions(v goja.Value) automation.Options {
	if opts, ok := exportArg(v).(map[string]any); ok {
		return automation.Options(opts)
	}
	return nil
}

func exportInt(v goja.Value) int64 {
	if !gojaValueExists(v) {
		return 0
	}
	return v.ToInteger()
}

// consoleArgs formats each argument with the runtime's own string conversion.
// Plain objects and arrays go through JSON.stringify.
func consoleArgs(vm *goja.Runtime, values []goja.Value) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = consoleString(vm, v)
	}
	return args
}

func consoleString(vm *goja.Runtime, v goja.Value) string {
	if v == nil {
		return "undefined"
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}
	if _, isFunc := goja.AssertFunction(obj); isFunc {
		return obj.String()
	}
	switch obj.ClassName() {
	case "Object", "Array":
		if s, ok := stringifyJSON(vm, obj); ok {
			return s
		}
	}
	return obj.String()
}

// stringifyJSON reports false for cyclic values and anything JSON.stringify drops.
func stringifyJSON(vm *goja.Runtime, obj *goja.Object) (string, bool) {
	stringify, ok := goja.AssertFunction(vm.Get("JSON").ToObject(vm).Get("stringify"))
	if !ok {
		return "", false
	}
	res, err := stringify(goja.Undefined(), obj)
	if err != nil || !gojaValueExists(res) {
		return "", false
	}
	return res.String(), true
}
