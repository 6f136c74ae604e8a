// Package api serves the paket catalog over HTTP.
//
// GET /listpaket forwards the query to the module's provider, runs the
// module's engine over the returned catalog and answers with the key=value
// envelope expected by the SMS gateway, as text/plain.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"paketetl/internal/datasource"
	"paketetl/internal/engine"
)

// DefaultRequestTimeout bounds one request when Config leaves it zero.
const DefaultRequestTimeout = 30 * time.Second

// Module pairs a configured engine with the source it reads from.
type Module struct {
	Engine *engine.Engine
	Source datasource.Source
}

// Config configures a Server.
type Config struct {
	Logger         zerolog.Logger
	RequestTimeout time.Duration
	// Metrics is mounted at /metrics when non-nil.
	Metrics http.Handler
}

// Server routes requests to modules by name (case-insensitive).
type Server struct {
	cfg      Config
	modules  map[string]Module
	validate *validator.Validate
}

// NewServer returns a Server for mods.
func NewServer(cfg Config, mods ...Module) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	s := &Server{
		cfg:      cfg,
		modules:  make(map[string]Module, len(mods)),
		validate: newValidator(),
	}
	for _, m := range mods {
		s.modules[strings.ToLower(m.Engine.Name())] = m
	}
	return s
}

// Router wires middleware and routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(requestID(s.cfg.Logger))
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", handleHealthz)
	r.Get("/listpaket", s.handleListPaket)
	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics)
	}
	return r
}

func (s *Server) module(name string) (Module, bool) {
	m, ok := s.modules[strings.ToLower(name)]
	return m, ok
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
