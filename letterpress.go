// Package letterpress is the server side of a newsletter editor: a JSON API
// over a SQLite store of newsletters and their posts, plus the HTML export
// of a newsletter as a standalone email document.
package letterpress

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// App is the central letterpress application. It wires together the store,
// export cache, handlers and middleware.
type App struct {
	Config  Config
	Echo    *echo.Echo
	Metrics *echo.Echo // nil when Config.MetricsAddr is empty
	Store   *Store
	Cache   *ExportCache

	logger        zerolog.Logger
	registry      *prometheus.Registry
	exportsTotal  *prometheus.CounterVec
	uploadLimiter *RateLimiter
	ownsStore     bool
	ready         bool
}

// New creates a letterpress App. Call Setup (or Start) before serving.
func New(cfg Config, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		ownsStore: true,
	}
	a.logger = NewLogger(cfg)

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Setup opens the store (unless one was supplied with WithStore) and
// installs middleware and routes. It is idempotent.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if err := a.Config.validate(); err != nil {
		return err
	}
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("letterpress: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}

	a.Cache = NewExportCache(a.Store, a.Config.ExportCacheTTL, a.Config.ExportLang)
	a.uploadLimiter = NewRateLimiter(a.Config.UploadRateLimit, a.Config.UploadRateWindow)

	if a.Config.MetricsAddr != "" {
		a.setupMetrics()
	}
	a.setupMiddleware()
	a.setupRoutes()

	a.ready = true
	return nil
}

func (a *App) setupMetrics() {
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	a.exportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "letterpress",
		Name:      "exports_total",
		Help:      "Rendered newsletter exports by destination.",
	}, []string{"destination"})
	a.registry.MustRegister(a.exportsTotal)

	a.Metrics = echo.New()
	a.Metrics.HideBanner = true
	a.Metrics.HidePort = true
	a.Metrics.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: a.registry,
	}))
}

func (a *App) countExport(destination string) {
	if a.exportsTotal != nil {
		a.exportsTotal.WithLabelValues(destination).Inc()
	}
}

// Start sets the app up and serves until the server is shut down. The
// metrics listener, when configured, runs alongside.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}

	if a.Metrics != nil {
		go func() {
			a.logger.Info().Str("addr", a.Config.MetricsAddr).Msg("metrics listening")
			if err := a.Metrics.Start(a.Config.MetricsAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	a.logger.Info().Str("addr", a.Config.Addr).Str("env", a.Config.Env).Msg("letterpress listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops both listeners.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Metrics != nil {
		errs = append(errs, a.Metrics.Shutdown(ctx))
	}
	errs = append(errs, a.Echo.Shutdown(ctx))
	return errors.Join(errs...)
}

// Close releases resources. A store passed in with WithStore is left open.
func (a *App) Close() error {
	if a.uploadLimiter != nil {
		a.uploadLimiter.Close()
	}
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/healthz", a.handleHealth)

	api := e.Group("/api")

	api.GET("/newsletters", a.handleListNewsletters)
	api.POST("/newsletters", a.handleCreateNewsletter)
	api.GET("/newsletters/:id", a.handleGetNewsletter)
	api.PUT("/newsletters/:id", a.handleUpdateNewsletter)
	api.DELETE("/newsletters/:id", a.handleDeleteNewsletter)
	api.POST("/newsletters/:id/duplicate", a.handleDuplicateNewsletter)

	api.POST("/newsletters/:id/posts", a.handleCreatePost)
	api.PUT("/posts/:id", a.handleUpdatePost)
	api.DELETE("/posts/:id", a.handleDeletePost)
	api.POST("/posts/:id/move", a.handleMovePost)

	api.GET("/newsletters/:id/export", a.handleExport)
	api.POST("/newsletters/:id/export", a.handleExportFile)

	api.GET("/workspace", a.handleWorkspace)

	images := api.Group("", a.uploadLimiter.Middleware())
	images.POST("/images", a.handleImageUpload)
	images.POST("/image-to-base64", a.handleImageToBase64)
}
