package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/vango-dev/inplace/internal/errors"
	"github.com/vango-dev/inplace/pkg/app"
	"github.com/vango-dev/inplace/pkg/component"
	"github.com/vango-dev/inplace/pkg/dom"
	"github.com/vango-dev/inplace/pkg/instrument"
	"github.com/vango-dev/inplace/pkg/reconcile"
	"github.com/vango-dev/inplace/pkg/snapshot"
)

// Config configures a Server.
type Config struct {
	Logger  *slog.Logger
	Metrics *instrument.Metrics
	Tracer  trace.Tracer

	// SlotClass is the placeholder class used by the document.
	SlotClass string

	// StrictSlots fails mounts on placeholder/child count mismatch.
	StrictSlots bool

	// Store enables the /snapshots endpoints when set.
	Store snapshot.Store

	// WriteTimeout bounds each WebSocket write.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// CheckOrigin validates WebSocket origins. nil allows same-origin only.
	CheckOrigin func(r *http.Request) bool
}

// Option configures a Server.
type Option func(*Config)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithMetrics enables metrics and the /metrics endpoint.
func WithMetrics(m *instrument.Metrics) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithTracer sets the tracer used for mounts and reconciliations.
func WithTracer(t trace.Tracer) Option {
	return func(c *Config) { c.Tracer = t }
}

// WithSlotClass sets the placeholder class.
func WithSlotClass(class string) Option {
	return func(c *Config) { c.SlotClass = class }
}

// WithStrictSlots sets slot mismatch handling.
func WithStrictSlots(strict bool) Option {
	return func(c *Config) { c.StrictSlots = strict }
}

// WithStore enables snapshot endpoints backed by store.
func WithStore(store snapshot.Store) Option {
	return func(c *Config) { c.Store = store }
}

// WithCheckOrigin sets the WebSocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(c *Config) { c.CheckOrigin = fn }
}

// Server owns one mounted App and serves it.
type Server struct {
	config Config
	logger *slog.Logger

	mu      sync.Mutex
	doc     *dom.Document
	page    *html.Node
	app     *app.App
	pending []Update

	clientsMu sync.Mutex
	clients   map[string]*client

	upgrader   websocket.Upgrader
	router     chi.Router
	httpServer *http.Server
}

// Update is the result of one reconciliation.
type Update struct {
	Source  string            `json:"source"`
	Patches []reconcile.Patch `json:"patches"`
	Drift   int               `json:"drift,omitempty"`
}

// New mounts an App over state into a fresh page and builds the router.
func New(state map[string]any, opts ...Option) (*Server, error) {
	cfg := Config{
		StrictSlots:     true,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Tracer == nil {
		cfg.Tracer = instrument.Tracer("")
	}

	s := &Server{
		config:  cfg,
		logger:  cfg.Logger,
		doc:     dom.NewDocument(dom.WithSlotClass(cfg.SlotClass)),
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}

	page, err := dom.ParseDocument(pageShell)
	if err != nil {
		return nil, errors.New(errors.CodeServeFailed).Wrap(err)
	}
	s.page = page

	env := component.NewEnv(s.doc,
		component.WithLogger(cfg.Logger),
		component.WithMetrics(cfg.Metrics),
		component.WithTracer(cfg.Tracer),
		component.WithStrictSlots(cfg.StrictSlots),
		component.WithOnPatch(s.onPatch),
	)
	s.app = app.New(state, app.WithLogger(cfg.Logger))
	if _, err := s.app.Bootstrap(page, env); err != nil {
		return nil, err
	}

	s.router = s.routes()
	return s, nil
}

// App returns the served app. Callers must not use it concurrently with
// requests.
func (s *Server) App() *app.App { return s.app }

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get("/fragment", s.handleFragment)
	r.Get("/state", s.handleState)
	r.Post("/events", s.handleEvent)
	r.Get("/ws", s.handleWebSocket)

	if s.config.Metrics != nil {
		r.Handle("/metrics", s.config.Metrics.Handler())
	}
	if s.config.Store != nil {
		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Post("/", s.handleSaveSnapshot)
			r.Get("/{id}", s.handleGetSnapshot)
		})
	}
	return r
}

// onPatch runs under s.mu, inside the handler that caused the change.
func (s *Server) onPatch(source component.Component, res reconcile.Result) {
	u := Update{Source: source.Name(), Patches: res.Patches, Drift: res.Drift}
	s.pending = append(s.pending, u)

	markup, err := dom.Render(s.app.Element())
	if err != nil {
		s.logger.Error("render failed", "error", err)
		return
	}
	s.broadcast(Message{Type: MessagePatch, Update: &u, HTML: markup})
}

// Markup returns the current markup of the app root.
func (s *Server) Markup() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dom.Render(s.app.Element())
}

// MarkupIndent returns the markup of the app root with one element per
// line.
func (s *Server) MarkupIndent(indent string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return dom.RenderIndent(s.app.Element(), indent)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.New(errors.CodeServeFailed).Wrap(err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every WebSocket client and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.closeClients()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Code: errors.CodeOf(err), Message: err.Error()})
}
