// Package script runs JavaScript against the automation namespace in a goja runtime.
package script

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pneuma/internal/application/port/output"
	"pneuma/internal/automation"

	"github.com/dop251/goja"
)

// installedFlag marks a runtime that already carries the pneuma globals.
const installedFlag = "__pneuma_installed"

var _ output.ScriptHostPort = (*Host)(nil)

var ErrPromisePending = errors.New("script promise did not settle")

// Error is an exception thrown by a script. Errors returned by Go bindings stay
// reachable through Unwrap.
type Error struct {
	Script  string
	Message string
	err     error
}

func (e *Error) Error() string {
	return e.Script + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.err
}

// Host owns one goja runtime. Scripts run one at a time.
type Host struct {
	mu  sync.Mutex
	vm  *goja.Runtime
	ns  *automation.Namespace
	log output.LoggerPort
	ctx context.Context
}

func NewHost(ns *automation.Namespace, log output.LoggerPort) (*Host, error) {
	h := &Host{
		vm:  goja.New(),
		ns:  ns,
		log: log.Named("script-host"),
		ctx: context.Background(),
	}
	if err := h.Install(); err != nil {
		return nil, err
	}
	return h, nil
}

// Install puts pneuma and console on the global object. Once a runtime carries
// the flag, later calls leave it untouched.
func (h *Host) Install() error {
	global := h.vm.GlobalObject()
	if flag := global.Get(installedFlag); flag != nil && flag.ToBoolean() {
		h.log.Debug("runtime already installed")
		return nil
	}

	if err := global.Set("pneuma", h.object(mapNamespace(h, h.ns))); err != nil {
		return fmt.Errorf("install pneuma: %w", err)
	}
	if err := global.Set("console", h.object(mapConsole(h, h.ns.Console))); err != nil {
		return fmt.Errorf("install console: %w", err)
	}
	if err := global.DefineDataProperty(installedFlag, h.vm.ToValue(true), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE); err != nil {
		return fmt.Errorf("install flag: %w", err)
	}

	h.log.Debug("runtime installed", "version", h.ns.Version)
	return nil
}

func (h *Host) context() context.Context {
	return h.ctx
}

// RunScript compiles and runs src. A promise completion value is unwrapped once
// the job queue drains. Cancelling ctx interrupts the runtime.
func (h *Host) RunScript(ctx context.Context, name, src string) (any, error) {
	prog, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.ctx = ctx
	stop := context.AfterFunc(ctx, func() {
		h.vm.Interrupt(ctx.Err())
	})
	defer func() {
		stop()
		h.vm.ClearInterrupt()
		h.ctx = context.Background()
	}()

	value, err := h.vm.RunProgram(prog)
	if err != nil {
		return nil, h.scriptError(ctx, name, err)
	}

	if promise, ok := value.Export().(*goja.Promise); ok {
		switch promise.State() {
		case goja.PromiseStateFulfilled:
			value = promise.Result()
		case goja.PromiseStateRejected:
			return nil, fmt.Errorf("%s: promise rejected: %s", name, promise.Result().String())
		default:
			return nil, fmt.Errorf("%s: %w", name, ErrPromisePending)
		}
	}

	return exportArg(value), nil
}

// Eval runs a single expression.
func (h *Host) Eval(ctx context.Context, expression string) (any, error) {
	return h.RunScript(ctx, "<eval>", expression)
}

func (h *Host) scriptError(ctx context.Context, name string, err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s interrupted: %w", name, ctxErr)
		}
		return fmt.Errorf("%s interrupted: %v", name, interrupted.Value())
	}

	var exc *goja.Exception
	if errors.As(err, &exc) {
		h.log.Debug("script threw", "script", name, "error", exc.Error())
		return &Error{Script: name, Message: exc.Value().String(), err: exc}
	}
	return fmt.Errorf("%s: %w", name, err)
}
