// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bansi-007/dialogflow-cx-usecase/internal/bot"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/buildinfo"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/config"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/ctxutil"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/library"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/logger"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/metrics"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/modules/account"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/modules/auth"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/modules/catalog"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/modules/help"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/modules/reservation"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/sentry"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/storage"
	"github.com/bansi-007/dialogflow-cx-usecase/internal/webhook"
)

// readinessTimeout bounds the /readyz store probe.
const readinessTimeout = 3 * time.Second

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	db             *storage.DB
	library        *library.Client
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	router         *bot.Router
	webhookHandler *webhook.Handler
	engine         *gin.Engine
	server         *http.Server
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	return initialize(ctx, cfg, log)
}

func initialize(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Application, error) {
	log = log.WithField("service", cfg.ServerName)
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog calls go through the ContextHandler too.
	slog.SetDefault(log.Logger)

	log.InfoContext(ctx, "Initializing application...", "version", buildinfo.String())
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	db, err := storage.Open(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("offline store: %w", err)
	}
	log.WithField("path", db.Path()).Info("Offline catalog loaded")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	client := library.NewClient(cfg.Library, db,
		library.WithMetrics(m),
		library.WithLogger(log),
	)
	if client.Offline() {
		log.Warn("Library API key missing or offline mode set; serving offline data")
	} else {
		log.WithField("base_url", cfg.Library.BaseURL).Info("Library API client ready")
	}

	router := NewRouter(client, log, m)

	webhookHandler := webhook.NewHandler(router,
		webhook.WithLogger(log),
		webhook.WithMetrics(m),
		webhook.WithTimeout(cfg.WebhookTimeout),
		webhook.WithAuthTargetPage(cfg.AuthTargetPage),
		webhook.WithDiagnosticErrors(cfg.DebugErrors),
	)
	if cfg.DebugErrors {
		log.Warn("Diagnostic error messages enabled; raw errors reach patrons")
	}

	app := &Application{
		cfg:            cfg,
		logger:         log,
		db:             db,
		library:        client,
		metrics:        m,
		registry:       registry,
		router:         router,
		webhookHandler: webhookHandler,
	}
	app.engine = app.routes()

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.engine,
		ReadHeaderTimeout: config.WebhookHTTPRead,
		ReadTimeout:       config.WebhookHTTPRead,
		WriteTimeout:      config.WebhookHTTPWrite,
		IdleTimeout:       config.WebhookHTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// Backend is the full library surface the handlers need.
type Backend interface {
	catalog.Backend
	account.Backend
	reservation.Backend
	auth.Backend
}

// NewRouter wires every domain handler and the resume registry into a router.
func NewRouter(backend Backend, log *logger.Logger, m *metrics.Metrics) *bot.Router {
	catalogHandler := catalog.NewHandler(backend, log)
	accountHandler := account.NewHandler(backend, log)
	reservationHandler := reservation.NewHandler(backend, log)
	helpHandler := help.NewHandler(log)

	authHandler := auth.NewHandler(backend, log, m)
	authHandler.Register(bot.TagAccountInfo, accountHandler.Info)
	authHandler.Register(bot.TagCheckouts, accountHandler.Checkouts)
	authHandler.Register(bot.TagRenew, accountHandler.Renew)
	authHandler.Register(bot.TagHolds, accountHandler.Holds)
	authHandler.Register(bot.TagFines, accountHandler.Fines)
	authHandler.Register(bot.TagBookRoom, reservationHandler.BookRoom)
	authHandler.Register(bot.TagRegisterEvent, reservationHandler.RegisterEvent)

	return bot.NewRouter(bot.Handlers{
		SearchBooks:      catalogHandler.Search,
		BookDetails:      catalogHandler.Details,
		AccountInfo:      accountHandler.Info,
		Checkouts:        accountHandler.Checkouts,
		Renew:            accountHandler.Renew,
		Holds:            accountHandler.Holds,
		Fines:            accountHandler.Fines,
		BookRoom:         reservationHandler.BookRoom,
		ReserveEquipment: reservationHandler.ReserveEquipment,
		RegisterEvent:    reservationHandler.RegisterEvent,
		Authenticate:     authHandler.Login,
		Help:             helpHandler.Help,
		Default:          helpHandler.Default,
	}, log, m, bot.LoggingMiddleware(log))
}

// routes builds the gin engine.
func (a *Application) routes() *gin.Engine {
	if a.cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if sentry.IsEnabled() {
		engine.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	engine.Use(securityHeadersMiddleware())
	engine.Use(loggingMiddleware(a.logger))

	engine.GET("/livez", a.livenessCheck)
	engine.HEAD("/livez", a.livenessCheck)
	engine.GET("/readyz", a.readinessCheck)
	engine.HEAD("/readyz", a.readinessCheck)
	engine.POST("/webhook", a.webhookHandler.Handle)
	engine.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsPassword != "", a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	return engine
}

// Handler exposes the HTTP handler, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.engine
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: offline store unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "offline store unavailable",
		})
		return
	}

	books, err := a.db.CountBooks(ctx)
	if err != nil {
		a.logger.WithError(err).Warn("Failed to count offline books")
	}

	mode := "online"
	if a.library.Offline() {
		mode = "offline"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ready",
		"library":       mode,
		"offline_books": books,
		"version":       buildinfo.String(),
	})
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
	case err := <-errCh:
		a.logger.WithError(err).Error("HTTP server error")
		_ = a.Shutdown(context.Background())
		return fmt.Errorf("http server: %w", err)
	}

	return a.Shutdown(context.Background())
}

// Shutdown stops accepting requests, drains in-flight turns and closes
// resources in dependency order.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	a.logger.Info("Closing resources...")
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "offline_store").Error("Component close error")
	}

	if sentry.IsEnabled() && !sentry.Flush(config.SentryFlush) {
		a.logger.Warn("Sentry flush timed out")
	}

	a.logger.Info("Shutdown complete")
	if err := a.logger.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("logger shutdown: %w", err)
	}
	return nil
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// requestIDHeaders are checked in order; a fresh UUID is minted if none is set.
var requestIDHeaders = []string{"X-Request-Id", "X-Cloud-Trace-Context", "X-Correlation-Id"}

// loggingMiddleware tags the request with a request id and logs it with
// status-based levels: 5xx=Error, 4xx=Warn, otherwise Debug.
func loggingMiddleware(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		var requestID string
		for _, h := range requestIDHeaders {
			if requestID = c.GetHeader(h); requestID != "" {
				break
			}
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-Id", requestID)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		status := c.Writer.Status()
		entry := log.WithRequestID(requestID).
			WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			WithField("client_ip", c.ClientIP())

		switch {
		case status >= 500:
			entry.Error("HTTP request failed")
		case status >= 400:
			entry.Warn("HTTP request rejected")
		default:
			entry.Debug("HTTP request completed")
		}
	}
}
