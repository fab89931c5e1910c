package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netbox-reconciler/core/loader"
	"netbox-reconciler/core/logger"
	"netbox-reconciler/core/middleware/auth"
	"netbox-reconciler/core/middleware/rayid"
	"netbox-reconciler/feature/inventory"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reconciler HTTP server",
	Long:  `Starts the HTTP server exposing POST /reconcile/:kind, GET /kinds and the run journal.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. Load Configuration
		cfg, err := loadConfig()
		if err != nil {
			return &ExitError{Code: ExitCommand, Err: err}
		}
		if err := cfg.Server.Validate(); err != nil {
			return &ExitError{Code: ExitCommand, Err: err}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 2. Logger, NetBox client, journal and archive
		a, err := newApp(ctx, cfg)
		if err != nil {
			return &ExitError{Code: ExitCommand, Err: err}
		}
		logg := a.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		if cfg.Server.ApiKey == "" {
			logg.Warn("No API key configured, the API is unauthenticated")
		}

		// 3. Fiber App
		app := newServer(a, cfg.Server.ApiKey, fiber.Config{
			DisableStartupMessage: true,
			ReadTimeout:           time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
			BodyLimit:             cfg.Server.BodyLimitBytes,
		})

		// 4. Start Server
		errCh := make(chan error, 1)
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("netbox", cfg.NetBox.URL))
			errCh <- app.Listen(":" + cfg.Server.Port)
		}()

		// 5. Graceful Shutdown
		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}
		logg.Info("Shutting down server...")
		return app.ShutdownWithTimeout(10 * time.Second)
	},
}

// newServer builds the Fiber app: ray IDs, request logging, public health
// check, API key auth and the feature routes.
func newServer(a *app, apiKey string, config fiber.Config) *fiber.App {
	app := fiber.New(config)

	// RayID first so every later log line carries it
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(a.logger, c)
		start := time.Now()
		err := c.Next()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			l.Error("Request error", append(fields, zap.Error(err))...)
		} else {
			l.Info("Request handled", fields...)
		}
		return err
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"journal": a.journal != nil,
			"archive": a.archiver != nil,
		})
	})

	app.Use(auth.New(auth.Config{ApiKey: apiKey, Skip: []string{"/health"}}))

	mgr := loader.NewManager(a.logger)
	mgr.Register(inventory.NewFeature(a.service, a.logger))
	if err := mgr.LoadAll(app); err != nil {
		a.logger.Error("Failed to load features", zap.Error(err))
	}
	return app
}

func init() {
	RootCmd.AddCommand(startCmd)
}
