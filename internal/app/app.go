// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/garyellow/prep-library-bot/internal/bot"
	"github.com/garyellow/prep-library-bot/internal/buildinfo"
	"github.com/garyellow/prep-library-bot/internal/catalog"
	"github.com/garyellow/prep-library-bot/internal/config"
	apperrors "github.com/garyellow/prep-library-bot/internal/errors"
	"github.com/garyellow/prep-library-bot/internal/logger"
	"github.com/garyellow/prep-library-bot/internal/metrics"
	"github.com/garyellow/prep-library-bot/internal/r2client"
	"github.com/garyellow/prep-library-bot/internal/reply"
	"github.com/garyellow/prep-library-bot/internal/search"
	"github.com/garyellow/prep-library-bot/internal/sentry"
	"github.com/garyellow/prep-library-bot/internal/telegram"
	"github.com/garyellow/prep-library-bot/internal/webhook"
)

// LivenessBody is the body of GET /.
const LivenessBody = "Bot is running!"

// errPollingStopped is returned when the update stream ends while the app is still running.
var errPollingStopped = errors.New("telegram polling stopped unexpectedly")

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	catalog        *catalog.Catalog
	matcher        *search.Matcher
	poller         *telegram.Poller // telegram platform only
	webhookHandler *webhook.Handler // line platform only
	server         *http.Server
}

// Initialize creates and initializes a new application with all dependencies.
// A missing or unreadable catalog is not an error: the bot starts and answers
// every query with the not-found reply.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "prep-library-bot").WithField("platform", cfg.Platform)
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Set as default logger so package-level slog.*Context() calls pick up
	// chat, user and request IDs through the ContextHandler.
	slog.SetDefault(log.Logger)

	log.WithField("release", buildinfo.Release()).Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		Token:       cfg.SentryToken,
		Host:        cfg.SentryHost,
		Environment: cfg.SentryEnvironment,
		Release:     buildinfo.Release(),
		Platform:    cfg.Platform,
	}); err != nil {
		log.WithError(err).Warn("Sentry initialization failed, error reporting disabled")
	} else if sentry.IsEnabled() {
		log.WithField("host", cfg.SentryHost).Info("Sentry error reporting enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	if cfg.R2Enabled() {
		fetchCatalog(ctx, cfg, log)
	}

	cat := catalog.LoadOrUnavailable(cfg.CatalogPath, log)
	m.RecordCatalogLoad(cat.State().String(), cat.Len())

	matcher := search.NewMatcher(cat,
		search.WithThreshold(cfg.SearchScoreThreshold),
		search.WithMetrics(m),
	)

	app := &Application{
		cfg:      cfg,
		logger:   log,
		metrics:  m,
		registry: registry,
		catalog:  cat,
		matcher:  matcher,
	}

	if err := app.initTransport(); err != nil {
		return nil, err
	}

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router(),
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.HTTPWrite,
		IdleTimeout:       config.HTTPIdle,
	}

	log.WithField("searchable_titles", matcher.Len()).Info("Initialization complete")
	return app, nil
}

// fetchCatalog refreshes the local catalog file from R2. Failures keep
// whatever file is already on disk.
func fetchCatalog(ctx context.Context, cfg *config.Config, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(ctx, config.CatalogFetch)
	defer cancel()

	log = log.WithField("key", cfg.R2CatalogKey)

	client, err := r2client.New(ctx, r2client.Config{
		Endpoint:    cfg.R2Endpoint(),
		AccessKeyID: cfg.R2AccessKeyID,
		SecretKey:   cfg.R2SecretAccessKey,
		BucketName:  cfg.R2BucketName,
	})
	if err != nil {
		log.WithError(err).Warn("R2 client unavailable, using local catalog")
		return
	}

	start := time.Now()
	etag, err := client.FetchToFile(ctx, cfg.R2CatalogKey, cfg.CatalogPath)
	if apperrors.IsNotFound(err) {
		log.Warn("Catalog object not found in R2, using local catalog")
		return
	}
	if err != nil {
		log.WithError(err).Warn("Catalog download failed, using local catalog")
		return
	}
	log.WithField("etag", etag).
		WithField("path", cfg.CatalogPath).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("Catalog downloaded from R2")
}

// initTransport builds the chat adapter for the configured platform.
func (a *Application) initTransport() error {
	dispatcher := bot.NewDispatcher(a.cfg.Platform, a.logger, a.metrics)

	var opts []reply.Option
	if a.cfg.Platform == config.PlatformTelegram {
		opts = append(opts, reply.WithEscaper(telegram.EscapeMarkdown))
	}
	handler := bot.NewHandler(bot.HandlerConfig{
		Searcher:  a.matcher,
		Formatter: reply.NewFormatter(a.cfg.HowToDownloadURL, a.cfg.CommunityURL, opts...),
		Limit:     a.cfg.SearchResultLimit,
		Logger:    a.logger,
	})

	switch a.cfg.Platform {
	case config.PlatformTelegram:
		client, err := telegram.NewClient(a.cfg.TelegramToken, a.logger)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		a.poller = telegram.NewPoller(telegram.PollerConfig{
			Client:      client,
			Handler:     handler,
			Dispatcher:  dispatcher,
			Logger:      a.logger.WithModule("telegram"),
			PollTimeout: a.cfg.TelegramPollTimeout,
		})
	case config.PlatformLINE:
		client, err := webhook.NewClient(a.cfg.LineChannelToken)
		if err != nil {
			return fmt.Errorf("webhook: %w", err)
		}
		a.webhookHandler = webhook.NewHandler(webhook.HandlerConfig{
			ChannelSecret: a.cfg.LineChannelSecret,
			Client:        client,
			Handler:       handler,
			Dispatcher:    dispatcher,
			Metrics:       a.metrics,
			Logger:        a.logger.WithModule("webhook"),
		})
	default:
		return fmt.Errorf("unsupported platform %q", a.cfg.Platform)
	}
	return nil
}

// router builds the HTTP routes. POST /webhook exists only on the LINE platform.
func (a *Application) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/", a.rootCheck)
	router.HEAD("/", a.rootCheck)
	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsAuthEnabled(), a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))
	if a.webhookHandler != nil {
		router.POST("/webhook", a.webhookHandler.Handle)
	}
	return router
}

// rootCheck keeps hosting platforms that probe "/" satisfied.
func (a *Application) rootCheck(c *gin.Context) {
	c.String(http.StatusOK, LivenessBody)
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// readinessCheck reports the catalog state. A degraded catalog is still
// ready: the bot keeps answering, only without books.
func (a *Application) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"platform": a.cfg.Platform,
		"catalog": gin.H{
			"state":             a.catalog.State().String(),
			"books":             a.catalog.Len(),
			"searchable_titles": a.matcher.Len(),
		},
	})
}

// Run serves HTTP and, on Telegram, polls for updates until SIGINT/SIGTERM or
// ctx cancellation, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.serveHTTP()
	})

	if a.poller != nil {
		g.Go(func() error {
			if err := a.poller.Run(gctx); err != nil {
				return err
			}
			if gctx.Err() == nil {
				return errPollingStopped
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutting down...")
		return a.shutdown()
	})

	return g.Wait()
}

// serveHTTP runs the listener. On Telegram the listener only answers probes,
// so a bind failure is logged and polling carries on. On LINE the listener is
// the transport and its failure stops the application.
func (a *Application) serveHTTP() error {
	a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
	err := a.server.ListenAndServe()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	if a.webhookHandler == nil {
		a.logger.WithError(err).Error("HTTP server failed, continuing without liveness endpoint")
		return nil
	}
	return fmt.Errorf("http server: %w", err)
}

func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	if a.poller != nil {
		a.logger.Info("Waiting for Telegram updates to complete...")
		if err := a.poller.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Warn("Telegram poller shutdown timeout")
		}
	}
	if a.webhookHandler != nil {
		a.logger.Info("Waiting for webhook events to complete...")
		if err := a.webhookHandler.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
		}
	}

	if !sentry.Flush(config.SentryFlush) {
		a.logger.Warn("Sentry flush timed out")
	}

	a.logger.Info("Shutdown complete")
	return nil
}
