// Package server exposes the script runner over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"pneuma/internal/application/port/input"
	"pneuma/internal/application/port/output"
	"pneuma/internal/automation"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAddr stays clear of the browser's remote debugging port.
const DefaultAddr = "127.0.0.1:3000"

const (
	defaultMaxBodySize = 1 << 20
	shutdownTimeout    = 10 * time.Second
)

type Config struct {
	Addr        string
	MaxBodySize int64
	// LogLevel and LogJSON configure the request logger.
	LogLevel string
	LogJSON  bool
}

type Server struct {
	runner   input.ScriptRunner
	gatherer prometheus.Gatherer
	log      output.LoggerPort
	cfg      Config
	router   chi.Router
}

type runResponse struct {
	ID         string `json:"id"`
	Value      any    `json:"value,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func New(runner input.ScriptRunner, gatherer prometheus.Gatherer, log output.LoggerPort, cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	s := &Server{
		runner:   runner,
		gatherer: gatherer,
		log:      log.Named("server"),
		cfg:      cfg,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(httplog.NewLogger("pneuma", httplog.Options{
		JSON:     s.cfg.LogJSON,
		LogLevel: s.cfg.LogLevel,
		Concise:  true,
	})))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "ok")
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Post("/run", s.handleRun)
	r.Post("/eval", s.handleEval)
	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight runs.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("Server stopped")
	return nil
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "request.js"
	}
	s.serve(w, r, func(ctx context.Context, body string) (*input.RunResult, error) {
		return s.runner.Run(ctx, name, body)
	})
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, s.runner.Eval)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, run func(context.Context, string) (*input.RunResult, error)) {
	id := uuid.NewString()
	httplog.LogEntrySetField(r.Context(), "run_id", id)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, runResponse{ID: id, Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, runResponse{ID: id, Error: err.Error()})
		return
	}

	res, err := run(r.Context(), string(body))
	switch {
	case errors.Is(err, automation.ErrEmptyScript):
		writeJSON(w, http.StatusBadRequest, runResponse{ID: id, Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusGatewayTimeout, runResponse{ID: id, Error: err.Error()})
	case err != nil:
		s.log.Debug("Run failed", "run_id", id, "error", err)
		writeJSON(w, http.StatusUnprocessableEntity, runResponse{ID: id, Error: err.Error()})
	default:
		writeJSON(w, http.StatusOK, runResponse{
			ID:         id,
			Value:      res.Value,
			DurationMS: res.Duration.Milliseconds(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
