// Package server serves diagram previews over HTTP.
//
// The server renders with the same renderer and pipeline as the
// preprocessor, so an editor or a browser can show a chapter as mdBook
// would without running a book build:
//
//	GET  /health    liveness and backend name
//	POST /render    diagram source in, flattened views out (JSON)
//	POST /preview   markdown chapter in, HTML page out
//	GET  /metrics   Prometheus metrics
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/matzehuels/mdbook-svg/pkg/errors"
	"github.com/matzehuels/mdbook-svg/pkg/pipeline"
	"github.com/matzehuels/mdbook-svg/pkg/renderer"
	"github.com/matzehuels/mdbook-svg/pkg/theme"
)

const (
	// maxBodyBytes bounds request bodies.
	maxBodyBytes = 4 << 20

	shutdownTimeout = 5 * time.Second
)

// Options configure the server.
type Options struct {
	// Marker selects diagram fences in previewed markdown.
	Marker string

	// Theme rewrites placeholder colors in rendered SVG. Optional.
	Theme *theme.Rewriter

	// Workers bounds concurrent renders per preview.
	Workers int

	// Gatherer is served at /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Server is the preview HTTP server.
type Server struct {
	router   chi.Router
	renderer renderer.Renderer
	runner   *pipeline.Runner
	markdown goldmark.Markdown
	opts     Options
	log      *log.Logger
}

// New creates and configures the server. A nil logger selects the
// default logger.
func New(r renderer.Renderer, opts Options, logger *log.Logger) (*Server, error) {
	if err := errors.ValidateMarker(opts.Marker); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		renderer: r,
		runner:   pipeline.NewRunner(r, logger),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		opts: opts,
		log:  logger,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(instrument(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Post("/preview", s.handlePreview)
	if s.opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))
	}

	s.router = r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info("serving previews", "addr", addr, "backend", s.renderer.Backend())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return ctx.Err()
}
