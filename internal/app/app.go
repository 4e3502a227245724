// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bissquit/cryptodefi/internal/config"
	"github.com/bissquit/cryptodefi/internal/feed"
	"github.com/bissquit/cryptodefi/internal/identity"
	"github.com/bissquit/cryptodefi/internal/market"
	"github.com/bissquit/cryptodefi/internal/pkg/ctxlog"
	"github.com/bissquit/cryptodefi/internal/pkg/httputil"
	"github.com/bissquit/cryptodefi/internal/pkg/metrics"
	"github.com/bissquit/cryptodefi/internal/preferences"
	"github.com/bissquit/cryptodefi/internal/storage"
	"github.com/bissquit/cryptodefi/internal/storage/memory"
	"github.com/bissquit/cryptodefi/internal/storage/sqlite"
	"github.com/bissquit/cryptodefi/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const restoreTimeout = 5 * time.Second

type store interface {
	storage.Store
	Ping(ctx context.Context) error
}

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	store         store
	sqlite        *sqlite.Store
	session       *identity.Session
	feeds         *feed.Handler
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)
	slog.SetDefault(logger)

	app := &App{
		config: cfg,
		logger: logger,
	}

	if err := app.openStore(); err != nil {
		return nil, err
	}

	accounts, err := identity.DemoAccounts()
	if err != nil {
		app.closeStore()
		return nil, fmt.Errorf("load demo accounts: %w", err)
	}

	app.session = identity.NewSession(app.store, accounts, identity.Config{
		LoginDelay:  cfg.Auth.LoginDelay,
		SignupDelay: cfg.Auth.SignupDelay,
	})

	restoreCtx, restoreCancel := context.WithTimeout(context.Background(), restoreTimeout)
	app.session.Restore(restoreCtx)
	restoreCancel()

	metricsCtx, metricsCancel := context.WithCancel(context.Background())
	app.metricsCancel = metricsCancel

	if app.sqlite != nil {
		go app.collectStoreMetrics(metricsCtx)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           app.setupRouter(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	// Shutdown waits for active connections, so open feed streams must end first.
	app.server.RegisterOnShutdown(app.feeds.Close)

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

func (a *App) openStore() error {
	switch a.config.Storage.Driver {
	case config.StorageMemory:
		a.store = memory.New()
		a.logger.Warn("using in-memory storage: session and preferences are lost on restart")
	default:
		ctx, cancel := context.WithTimeout(context.Background(), a.config.Storage.BusyTimeout+5*time.Second)
		defer cancel()

		s, err := sqlite.Open(ctx, sqlite.Config{
			Path:        a.config.Storage.Path,
			BusyTimeout: a.config.Storage.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		a.store = s
		a.sqlite = s
		a.logger.Info("storage opened", "driver", config.StorageSQLite, "path", a.config.Storage.Path)
	}
	return nil
}

func (a *App) closeStore() {
	if a.sqlite == nil {
		return
	}
	if err := a.sqlite.Close(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
	}
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	// Start metrics server in background
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	// Start main server
	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	// Handlers may still be running when Shutdown times out.
	a.feeds.Close()
	a.closeStore()

	return errors.Join(errs...)
}

func (a *App) collectStoreMetrics(ctx context.Context) {
	// Collect immediately on start
	metrics.RecordStorePoolMetrics(a.sqlite.Stats())

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordStorePoolMetrics(a.sqlite.Stats())
		case <-ctx.Done():
			return
		}
	}
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

// Session returns the process-wide session.
func (a *App) Session() *identity.Session {
	return a.session
}

func (a *App) setupRouter() *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		http.ServeFile(w, r, "api/openapi/openapi.yaml")
	})

	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>CryptoDeFi API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        SwaggerUIBundle({
            url: "/api/openapi.yaml",
            dom_id: '#swagger-ui',
            presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
            layout: "BaseLayout"
        });
    </script>
</body>
</html>`))
	})

	catalog := market.DefaultCatalog()
	prefsService := preferences.NewService(a.store)
	views := market.NewViews(catalog, prefsService, a.session)

	identityHandler := identity.NewHandler(a.session, identity.RateLimit{
		PerSecond: a.config.Auth.RateLimit,
		Burst:     a.config.Auth.RateBurst,
	})
	marketHandler := market.NewHandler(views, a.session)
	prefsHandler := preferences.NewHandler(prefsService, a.session)
	a.feeds = feed.NewHandler(a.session, catalog)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(a.config.Server.RequestTimeout))

			identityHandler.RegisterRoutes(r)
			marketHandler.RegisterRoutes(r)
			prefsHandler.RegisterRoutes(r)
		})

		// Feed streams stay open until the client leaves, so no request timeout.
		a.feeds.RegisterRoutes(r)
	})

	return r
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.store.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Storage unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, version.Get())
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
