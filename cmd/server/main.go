package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quill/internal/config"
	"quill/internal/models"
	"quill/internal/observability"
	"quill/internal/server"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		observability.Logger.Error("Failed to load config", "error", err.Error())
		os.Exit(1)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "quill-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExport,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.SamplerRatio,
	})
	if err != nil {
		observability.Logger.Error("Failed to initialize tracing", "error", err.Error())
		os.Exit(1)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		observability.Logger.Error("Failed to create server", "error", err.Error())
		os.Exit(1)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Quill API",
		ErrorHandler: errorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	go func() {
		observability.Logger.Info("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			observability.Logger.Error("Server stopped", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	observability.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		observability.Logger.Error("Server forced to shutdown", "error", err.Error())
	}
	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("Error releasing server resources", "error", err.Error())
	}
	if err := shutdownTracing(ctx); err != nil {
		observability.Logger.Error("Error shutting down tracing", "error", err.Error())
	}
}

// errorHandler converts unhandled errors into the standard error envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	if fiberErr, ok := err.(*fiber.Error); ok {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	return models.RespondWithError(c, err)
}
