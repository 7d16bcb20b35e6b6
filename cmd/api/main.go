package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/darkiku/RfsGov/config"
	"github.com/darkiku/RfsGov/db"
	"github.com/darkiku/RfsGov/internal/admin"
	"github.com/darkiku/RfsGov/internal/audit"
	authhandler "github.com/darkiku/RfsGov/internal/auth/handler"
	"github.com/darkiku/RfsGov/internal/auth/repository/postgres"
	"github.com/darkiku/RfsGov/internal/auth/service"
	"github.com/darkiku/RfsGov/internal/content"
	"github.com/darkiku/RfsGov/internal/middleware"
	"github.com/darkiku/RfsGov/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := obs.NewLogger()

	if err := obs.InitSentry(cfg.SentryDSN, cfg.Env); err != nil {
		logger.Warn("sentry init failed", map[string]any{"error": err.Error()})
	}
	defer obs.FlushSentry()

	obs.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPostgresPool(ctx, cfg.DBURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	authRepo := postgres.NewPostgresRepository(pool)
	auditSvc := audit.NewService(pool)
	adminRepo := admin.NewRepository(pool)
	contentRepo := content.NewRepository(pool)

	if err := admin.Bootstrap(ctx, adminRepo, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword, logger); err != nil {
		log.Fatalf("admin bootstrap failed: %v", err)
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.AccessExpiryMin)
	tracker := service.NewAttemptTracker(cfg.LoginMaxAttempts, time.Duration(cfg.LockoutMinutes)*time.Minute)
	authService := service.NewAuthService(
		authRepo, authRepo, tokens, tracker, auditSvc, logger,
		time.Duration(cfg.RefreshExpiryHours)*time.Hour,
	)
	authService.StartSweeper(ctx, time.Duration(cfg.SweepIntervalMin)*time.Minute)

	authHandler := authhandler.NewAuthHandler(authService)
	adminHandler := admin.NewHandler(adminRepo, authService, auditSvc, logger)
	contentHandler := content.NewHandler(contentRepo, auditSvc, logger)

	app := fiber.New(fiber.Config{
		AppName:      "rfs-portal",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	app.Use(middleware.Recover())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.SecurityHeaders())
	app.Use(obs.Instrument())

	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMin, cfg.GeneralRatePerMin)
	app.Use(limiter.Handler())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := pool.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(obs.Handler()))

	authhandler.RegisterRoutes(app, authHandler, tokens)
	admin.RegisterRoutes(app, adminHandler, tokens)
	content.RegisterRoutes(app, contentHandler, tokens)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down", nil)
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logger.Info("server starting", map[string]any{"port": cfg.Port, "env": cfg.Env})
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
