package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docarchive/docs"
	"docarchive/internal/app"
	"docarchive/internal/auth"
	"docarchive/internal/config"
	handlers "docarchive/internal/http/handler"
	"docarchive/internal/http/middleware"
	"docarchive/internal/logging"
	"docarchive/internal/metrics"
	"docarchive/internal/otel"
	"docarchive/internal/service"
)

// @title Document Archive API
// @version 1.0
// @description Personal PDF archive with tags, archive numbers and page thumbnails.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.New(cfg.Log, cfg.TimeZone)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize tracing")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	archive, err := app.Open(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open archive")
	}
	defer archive.Close()

	if err := archive.Migrate(ctx); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	archiveMetrics, err := metrics.NewArchive(prometheus.DefaultRegisterer)
	if err != nil {
		log.WithError(err).Fatal("failed to register archive metrics")
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.WithError(err).Fatal("failed to register http metrics")
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		log.WithError(err).Fatal("failed to configure authentication")
	}

	docSvc := service.NewDocumentService(archive.UnitOfWork, archive.Repos, archive.Store, service.Options{
		ThumbWidth:   cfg.Store.ThumbWidth,
		ThumbRows:    cfg.Store.ThumbRows,
		ThumbColumns: cfg.Store.ThumbColumns,
		Location:     cfg.TimeZone,
		Metrics:      archiveMetrics,
		Log:          log,
	})

	server := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.BodyLimitMB * 1024 * 1024,
	})

	server.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	server.Use(middleware.RequestID())
	server.Use(middleware.Logger(log))
	server.Use(httpMetrics.Handler())

	server.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.RegisterRoutes(server, archive.DB, docSvc, middleware.Auth(tokens, archive.Repos.Users))

	// Swagger UI with dynamic host and scheme
	server.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		_ = server.ShutdownWithTimeout(10 * time.Second)
	}()

	addr := ":" + cfg.Port
	log.WithField("addr", addr).Info("listening")
	if err := server.Listen(addr); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
