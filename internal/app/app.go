package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yarenty/modelmux/internal/dispatcher"
	"github.com/yarenty/modelmux/internal/metrics"
	"github.com/yarenty/modelmux/internal/profiler"
	"github.com/yarenty/modelmux/internal/provider"
	"github.com/yarenty/modelmux/internal/proxy"
	"github.com/yarenty/modelmux/internal/tokensource"
)

// App orchestrates the lifecycle of the proxy server and its dependencies.
type App struct {
	cfg     *Config
	proxy   *proxy.Proxy
	metrics *metrics.Metrics
}

// New creates a new App instance, resolving the provider, token source,
// profiler, dispatcher and metrics from the validated config.
func New(cfg *Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	prov, err := provider.NewVertexProvider(cfg.Provider.VertexConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve provider: %w", err)
	}

	ts, err := newTokenSource(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token source: %w", err)
	}

	m := metrics.New()

	profilerOpts := []profiler.Option{profiler.WithBufferMinBytes(cfg.Streaming.BufferMinBytes)}
	if len(cfg.Streaming.CollapseHeaders) > 0 {
		profilerOpts = append(profilerOpts, profiler.WithCollapseHeaders(cfg.Streaming.CollapseHeaders))
	}
	cp := profiler.NewClientProfiler(cfg.Streaming.Mode, profilerOpts...)

	d := dispatcher.New(&http.Client{Timeout: DefaultConfigDispatcherTimeout}, ts, dispatcher.Config{
		RetryEnabled: cfg.Retry.Enabled,
		MaxAttempts:  cfg.Retry.MaxAttempts,
	})
	d.OnRetry = func() { m.RecordRetryAttempt() }
	d.OnQuotaError = func() { m.RecordQuotaError() }

	proxyServer, err := proxy.New(proxy.Deps{
		Provider:   prov,
		Profiler:   cp,
		Dispatcher: d,
		Metrics:    m,
		Now:        func() int64 { return time.Now().Unix() },
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create proxy: %w", err)
	}

	return &App{
		cfg:     cfg,
		proxy:   proxyServer,
		metrics: m,
	}, nil
}

// Start starts all services and blocks until shutdown is triggered.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	address := a.cfg.Server.Host + ":" + strconv.FormatUint(uint64(a.cfg.Server.Port), 10)
	var shutdownFuncs []func(context.Context) error

	slog.InfoContext(gCtx, "starting proxy server", "address", address)
	proxyErrCh, err := a.proxy.Start(gCtx, address)
	if err != nil {
		return fmt.Errorf("proxy startup failed: %w", err)
	}
	shutdownFuncs = append(shutdownFuncs, a.proxy.Shutdown)

	g.Go(func() error {
		select {
		case err := <-proxyErrCh:
			if err != nil {
				slog.ErrorContext(gCtx, "proxy runtime error", "error", err)
				return fmt.Errorf("proxy: %w", err)
			}
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	slog.InfoContext(gCtx, "application ready", "address", address)

	runtimeErr := g.Wait()

	slog.InfoContext(gCtx, "shutting down services")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown.Timeout)
	defer cancel()

	var errs []error
	if runtimeErr != nil {
		errs = append(errs, fmt.Errorf("runtime: %w", runtimeErr))
	}

	for i := len(shutdownFuncs) - 1; i >= 0; i-- {
		if err := shutdownFuncs[i](shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "service shutdown failed", "error", err)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	slog.Info("application stopped")
	return nil
}

// newTokenSource resolves the secret from the configured TokenStore and
// wraps it in a tokensource.TokenSource matching the configured strategy.
func newTokenSource(cfg AuthConfig) (*tokensource.TokenSource, error) {
	store, err := cfg.NewTokenStore()
	if err != nil {
		return nil, fmt.Errorf("failed to create token store: %w", err)
	}

	secret, err := store.Read(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read stored secret: %w", err)
	}

	switch cfg.Strategy {
	case provider.AuthStrategyGCPServiceAccount:
		key, err := tokensource.ParseServiceAccountKey([]byte(secret))
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account key: %w", err)
		}
		return tokensource.NewGCP(key)
	case provider.AuthStrategyStaticBearer:
		return tokensource.NewStatic(secret), nil
	default:
		return nil, fmt.Errorf("unsupported auth strategy: %s", cfg.Strategy)
	}
}
