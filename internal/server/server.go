// Package server exposes the engine over HTTP.
//
// Every request that touches the engine or its store is posted onto the
// engine loop, so HTTP handlers never race the animation tick.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/cardspace/pkg/engine"
	"github.com/matzehuels/cardspace/pkg/errors"
)

// maxBody caps request bodies; a full dataset import is the largest.
const maxBody = 32 << 20

// Server is the HTTP surface of one engine loop.
type Server struct {
	loop     *engine.Loop
	logger   *log.Logger
	gatherer prometheus.Gatherer
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGatherer serves g on /metrics instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		if g != nil {
			s.gatherer = g
		}
	}
}

// New creates a server for loop. The loop must be running before requests
// arrive.
func New(loop *engine.Loop, opts ...Option) *Server {
	s := &Server{
		loop:     loop,
		logger:   log.Default(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SetHeader("Cache-Control", "no-store"))

		r.Route("/entities", func(r chi.Router) {
			r.Get("/", s.handleListEntities)
			r.Post("/", s.handleCreateEntity)
			r.Get("/{id}", s.handleGetEntity)
			r.Get("/{id}/links", s.handleLinks)
			r.Delete("/{id}", s.handleDeleteEntity)
			r.Put("/{id}/edit", s.handleEdit)
		})

		r.Post("/mode/{mode}", s.handleMode)
		r.Post("/recolor/{scheme}", s.handleRecolor)
		r.Post("/frames/{key}/select", s.handleSelectFrame)
		r.Post("/regions/{name}/pick", s.handlePickRegion)
		r.Post("/pointer/{phase}", s.handlePointer)
		r.Post("/keys/{key}", s.handleKey)
		r.Post("/focus/{id}", s.handleFocus)
		r.Post("/back", s.handleBack)

		r.Get("/scene", s.handleScene)
		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", addr)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "shutdown")
	}
	return nil
}

// =============================================================================
// Plumbing
// =============================================================================

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"dur", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

// do runs fn on the engine loop and writes its error, if any. It reports
// whether fn succeeded.
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func(*engine.Engine) error) bool {
	if err := s.loop.Do(r.Context(), fn); err != nil {
		s.writeError(w, err)
		return false
	}
	return true
}

// entityID returns the {id} path parameter, writing a 400 when it is not a
// usable entity id.
func (s *Server) entityID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateEntityID(id); err != nil {
		s.writeError(w, err)
		return "", false
	}
	return id, true
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "read request body")
	}
	return body, nil
}

func decode(r *http.Request, v any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.ErrCodeMalformedInput, err, "request body is not valid JSON")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// statusOf maps an error code to an HTTP status.
func statusOf(code errors.Code) int {
	switch code {
	case errors.ErrCodeMissingEntity, errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeMalformedInput:
		return http.StatusBadRequest
	case errors.ErrCodeResolutionMiss:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeBackend:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if err == context.Canceled || err == context.DeadlineExceeded {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "UNAVAILABLE", Message: "engine is not running"})
		return
	}
	code := errors.GetCode(err)
	status := statusOf(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Error: string(code), Message: errors.UserMessage(err)})
}
