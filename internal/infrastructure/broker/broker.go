package broker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"pneuma/internal/application/port/output"
	"pneuma/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ErrClosed           = errors.New("broker request channel closed")
	ErrUnknownPage      = errors.New("unknown page")
	ErrEngineClosed     = errors.New("engine is closed")
	ErrPageIDsExhausted = errors.New("page ids exhausted")
)

var _ output.BridgePort = (*Broker)(nil)

type Config struct {
	// Registerer receives the broker metrics; nil leaves them unregistered.
	Registerer prometheus.Registerer
	// Exit terminates the process on behalf of scripts. Defaults to os.Exit.
	Exit func(code int)
}

// Broker serves the bridge primitives from a single goroutine that owns the engine.
// Requests from any number of callers are handled one at a time, in arrival order.
type Broker struct {
	engine    output.EnginePort
	log       output.LoggerPort
	scriptLog output.LoggerPort
	metrics   *Metrics
	exit      func(int)
	session   string

	requests chan request
	done     chan struct{}

	// owned by the loop goroutine
	pages        map[entity.PageID]output.EnginePage
	lastPage     entity.PageID
	engineClosed bool

	exitOnce sync.Once
}

// Start launches the service loop. Call Shutdown to stop it.
func Start(engine output.EnginePort, cfg Config, log output.LoggerPort) *Broker {
	exit := cfg.Exit
	if exit == nil {
		exit = os.Exit
	}

	session := uuid.NewString()
	b := &Broker{
		engine:    engine,
		log:       log.Named("broker").WithFields(map[string]any{"session": session, "engine": engine.Name()}),
		scriptLog: log.Named("script"),
		metrics:   NewMetrics(cfg.Registerer),
		exit:      exit,
		session:   session,
		requests:  make(chan request),
		done:      make(chan struct{}),
		pages:     make(map[entity.PageID]output.EnginePage),
	}

	go b.loop()
	return b
}

func (b *Broker) Session() string {
	return b.session
}

func (b *Broker) CreatePage(ctx context.Context) (entity.PageID, error) {
	res := b.roundTrip(ctx, request{op: opCreatePage})
	return res.page, res.err
}

func (b *Broker) Navigate(ctx context.Context, page entity.PageID, url, optsJSON string) (string, error) {
	res := b.roundTrip(ctx, request{op: opNavigate, page: page, url: url, opts: optsJSON})
	return res.text, res.err
}

func (b *Broker) Evaluate(ctx context.Context, page entity.PageID, script string) (string, error) {
	res := b.roundTrip(ctx, request{op: opEvaluate, page: page, script: script})
	return res.text, res.err
}

func (b *Broker) Screenshot(ctx context.Context, page entity.PageID) ([]byte, error) {
	res := b.roundTrip(ctx, request{op: opScreenshot, page: page})
	return res.data, res.err
}

func (b *Broker) CloseBrowser(ctx context.Context) error {
	return b.roundTrip(ctx, request{op: opCloseBrowser}).err
}

func (b *Broker) Log(level entity.LogLevel, msg string) {
	switch level {
	case entity.LogLevelWarn:
		b.scriptLog.Warn(msg)
	case entity.LogLevelError:
		b.scriptLog.Error(msg)
	default:
		b.scriptLog.Info(msg)
	}
}

func (b *Broker) Exit(code int) {
	b.exitOnce.Do(func() {
		b.log.Info("exit requested", "exit_code", code)
		b.exit(code)
	})
}

// Shutdown stops the service loop, closing the engine if it is still open.
// It is safe to call more than once.
func (b *Broker) Shutdown(ctx context.Context) error {
	err := b.roundTrip(ctx, request{op: opShutdown}).err
	if errors.Is(err, ErrClosed) {
		err = nil
	}

	select {
	case <-b.done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

// Done is closed once the service loop has exited.
func (b *Broker) Done() <-chan struct{} {
	return b.done
}

func (b *Broker) roundTrip(ctx context.Context, req request) response {
	req.ctx = ctx
	req.reply = make(chan response, 1)

	select {
	case b.requests <- req:
	case <-b.done:
		return response{err: ErrClosed}
	case <-ctx.Done():
		return response{err: ctx.Err()}
	}

	select {
	case res := <-req.reply:
		return res
	case <-ctx.Done():
		return response{err: ctx.Err()}
	}
}

func (b *Broker) loop() {
	defer close(b.done)
	b.log.Info("service loop started")

	for {
		req := <-b.requests
		if stop := b.handle(req); stop {
			break
		}
	}

	if !b.engineClosed {
		if err := b.closeEngine(); err != nil {
			b.log.Warn("engine close during service shutdown failed", "error", err)
		}
	}
	b.log.Info("service loop exited")
}

func (b *Broker) handle(req request) bool {
	start := time.Now()
	stop := false

	var res response
	switch req.op {
	case opCreatePage:
		res.page, res.err = b.createPage(req.ctx)
	case opNavigate:
		b.log.Info("navigate", "page", req.page.String(), "url", req.url, "opts_len", len(req.opts))
		page, err := b.page(req.page)
		if err != nil {
			res.err = err
			break
		}
		res.text, res.err = page.Navigate(req.ctx, req.url, req.opts)
	case opEvaluate:
		b.log.Debug("evaluate", "page", req.page.String(), "script_len", len(req.script))
		page, err := b.page(req.page)
		if err != nil {
			res.err = err
			break
		}
		res.text, res.err = page.Evaluate(req.ctx, req.script)
	case opScreenshot:
		b.log.Info("screenshot", "page", req.page.String())
		page, err := b.page(req.page)
		if err != nil {
			res.err = err
			break
		}
		res.data, res.err = page.Screenshot(req.ctx)
	case opCloseBrowser:
		b.log.Info("close browser")
		res.err = b.closeEngine()
	case opShutdown:
		b.log.Info("shutdown, exiting service loop")
		if !b.engineClosed {
			res.err = b.closeEngine()
		}
		stop = true
	default:
		res.err = fmt.Errorf("unsupported broker operation %d", req.op)
	}

	b.metrics.observe(req.op, start, res.err)
	req.reply <- res
	return stop
}

func (b *Broker) createPage(ctx context.Context) (entity.PageID, error) {
	if b.engineClosed {
		return 0, ErrEngineClosed
	}
	if b.lastPage == math.MaxUint32 {
		return 0, ErrPageIDsExhausted
	}

	page, err := b.engine.NewPage(ctx)
	if err != nil {
		return 0, fmt.Errorf("engine new page: %w", err)
	}

	b.lastPage++
	b.pages[b.lastPage] = page
	b.metrics.pagesOpen.Set(float64(len(b.pages)))
	b.log.Info("page created", "page", b.lastPage.String())
	return b.lastPage, nil
}

func (b *Broker) page(id entity.PageID) (output.EnginePage, error) {
	if b.engineClosed {
		return nil, ErrEngineClosed
	}
	page, ok := b.pages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, id)
	}
	return page, nil
}

func (b *Broker) closeEngine() error {
	if b.engineClosed {
		return nil
	}

	for id, page := range b.pages {
		if err := page.Close(); err != nil {
			b.log.Warn("page close failed", "page", id.String(), "error", err)
		}
		delete(b.pages, id)
	}
	b.metrics.pagesOpen.Set(0)

	if err := b.engine.Close(); err != nil {
		return fmt.Errorf("close engine: %w", err)
	}
	b.engineClosed = true
	return nil
}
