package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yarenty/modelmux/internal/dispatcher"
	"github.com/yarenty/modelmux/internal/metrics"
	"github.com/yarenty/modelmux/internal/profiler"
	"github.com/yarenty/modelmux/internal/provider"
)

// Proxy is the HTTP server exposing the OpenAI-compatible surface backed by
// a Vertex AI Claude deployment.
type Proxy struct {
	router *chi.Mux
	server *http.Server
}

var _ http.Handler = (*Proxy)(nil)

// Deps bundles the components the router wires into request handlers.
type Deps struct {
	Provider   provider.LlmProviderBackend
	Profiler   *profiler.ClientProfiler
	Dispatcher *dispatcher.Dispatcher
	Metrics    *metrics.Metrics
	Now        func() int64
}

// New builds a Proxy router. allowedOrigins configures the CORS policy; pass
// nil or an empty slice to allow any origin.
func New(deps Deps, allowedOrigins []string) (*Proxy, error) {
	if deps.Provider == nil {
		return nil, fmt.Errorf("proxy: Provider is required")
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	chatHandler := NewChatHandler(deps.Provider, deps.Profiler, deps.Dispatcher, deps.Metrics, deps.Now)
	modelsHandler := NewModelsHandler(deps.Provider, deps.Now)
	healthHandler := NewHealthHandler(deps.Metrics)

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewCollector(deps.Metrics))

	logger := slog.Default()

	r := chi.NewRouter()
	r.Use(Recovery)
	r.Use(Logging(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}))

	r.Post("/v1/chat/completions", chatHandler.ServeHTTP)
	r.Get("/v1/models", modelsHandler.ServeHTTP)
	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &Proxy{router: r}, nil
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.router.ServeHTTP(w, r)
}

// Start starts the HTTP server in the background and returns immediately.
// Startup errors (port in use, permission denied) are returned immediately.
// Runtime errors are sent to the returned channel. The caller must call
// Shutdown to stop the server.
func (p *Proxy) Start(ctx context.Context, address string) (<-chan error, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}

	p.server = &http.Server{
		Handler:      p,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute, // long enough for SSE streams
		IdleTimeout:  90 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)

	go func() {
		err := p.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return errCh, nil
}

// Shutdown performs a graceful shutdown of the HTTP server.
func (p *Proxy) Shutdown(ctx context.Context) error {
	if p.server == nil {
		return nil
	}

	if err := p.server.Shutdown(ctx); err != nil {
		_ = p.server.Close()
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	return nil
}
