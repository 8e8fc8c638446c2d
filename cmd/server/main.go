package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Abraxas-365/seoqueue/pkg/config"
	"github.com/Abraxas-365/seoqueue/pkg/logx"
	"github.com/Abraxas-365/seoqueue/pkg/seojob/seojobapi"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

func main() {
	envFile := flag.String("env", ".env", "path to an env file")
	flag.Parse()

	logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv()))
	logx.Info("🚀 Starting SEO job queue server...")

	cfg, err := config.Load(*envFile)
	if err != nil {
		logx.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container := NewContainer(ctx, cfg)
	defer container.Cleanup()

	app := fiber.New(fiber.Config{
		AppName:               "SEO Job Queue",
		DisableStartupMessage: true,
		ErrorHandler:          seojobapi.ErrorHandler,
		IdleTimeout:           120 * time.Second,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(requestid.New(requestid.Config{
		Header:    "X-Request-ID",
		Generator: func() string { return "req-" + uuid.NewString() },
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.Server.CORSOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods:  "GET, POST, OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path} | ${ip} | ${reqHeader:X-Request-ID}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
	}))

	app.Get("/health", healthCheckHandler(container))
	app.Get("/", infoHandler(cfg))

	container.SEOJob.Handlers.RegisterRoutes(app)
	logx.Info("✓ SEO job routes registered")

	app.Use(notFoundHandler)

	container.StartBackgroundServices(ctx)
	startServer(ctx, app, cfg.Server.Port)
}

func healthCheckHandler(container *Container) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := fiber.Map{
			"status":  "healthy",
			"service": "seoqueue",
			"version": container.Config.Server.AppVersion,
			"store":   container.Config.SEOJob.Store,
		}

		if err := container.SEOJob.Ping(c.UserContext()); err != nil {
			health["db"] = "unhealthy"
			health["db_error"] = err.Error()
			health["status"] = "degraded"
		} else {
			health["db"] = "healthy"
		}

		if rdb := container.Infra.Redis; rdb != nil {
			if err := rdb.Ping(c.UserContext()).Err(); err != nil {
				health["redis"] = "unhealthy"
				health["status"] = "degraded"
			} else {
				health["redis"] = "healthy"
			}
		}

		if c.QueryBool("check_archive", false) && container.Infra.Archive != nil {
			if _, err := container.Infra.Archive.Exists(c.UserContext(), ".health-check"); err != nil {
				health["archive"] = "unhealthy"
				health["archive_error"] = err.Error()
			} else {
				health["archive"] = "healthy"
			}
		}

		status := fiber.StatusOK
		if health["status"] == "degraded" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

func infoHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service":     "seoqueue",
			"version":     cfg.Server.AppVersion,
			"description": "Generates SEO metadata for catalog records through a job queue",
			"generator":   cfg.Generator.Provider,
			"endpoints": fiber.Map{
				"health": "/health",
				"jobs":   "/api/v1/seo/jobs",
			},
		})
	}
}

func notFoundHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"code":       "NOT_FOUND",
		"message":    "The requested endpoint does not exist",
		"path":       c.Path(),
		"method":     c.Method(),
		"request_id": c.GetRespHeader("X-Request-ID"),
	})
}

// startServer listens until ctx is cancelled, then drains in-flight requests.
func startServer(ctx context.Context, app *fiber.App, port string) {
	go func() {
		logx.Info(strings.Repeat("=", 60))
		logx.Infof("🚀 Server listening on port %s", port)
		logx.Infof("💚 Health Check: http://localhost:%s/health", port)
		logx.Info(strings.Repeat("=", 60))

		if err := app.Listen(":" + port); err != nil {
			logx.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logx.Info("🛑 Shutting down gracefully...")

	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logx.Errorf("Server forced to shutdown: %v", err)
	}
	logx.Info("✅ Server exited successfully")
}
