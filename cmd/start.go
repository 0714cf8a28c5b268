package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"inventory-ledger/core/loader"
	"inventory-ledger/core/logger"
	"inventory-ledger/core/messaging"
	"inventory-ledger/core/middleware/auth"
	"inventory-ledger/core/middleware/rayid"

	"inventory-ledger/feature/actions"
	"inventory-ledger/feature/history"
	"inventory-ledger/feature/integrity"
	"inventory-ledger/feature/integrity/checks"
	"inventory-ledger/feature/webhooks"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "inventory-ledger/docs/swagger"
)

// @title Inventory Ledger API
// @version 1.0
// @description Reconciles inventory change notifications into a deduplicated ledger.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory ledger server",
	Long: `Starts the HTTP server and initializes all enabled features. When Pub/Sub
delivery is enabled, webhooks are also pulled from the configured subscription.`,
	RunE: runStart,
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	logg := rt.logger
	zap.ReplaceGlobals(logg)
	cfg := rt.cfg

	if err := migrateLedger(rt); err != nil {
		return err
	}

	// Without an archive failed deliveries are rejected and redelivered by the platform.
	if err := rt.withDeadLetters(ctx); err != nil {
		logg.Warn("Dead-letter storage unavailable, failed webhooks will be rejected", zap.Error(err))
	}

	webhookService := rt.webhookService()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             cfg.Server.BodyLimit(),
		ReadTimeout:           cfg.Server.ReadTimeout(),
	})

	mgr := loader.NewManager()
	mgr.Register(webhooks.NewFeature(webhookService))
	mgr.Register(actions.NewFeature(actions.NewService(rt.engine, logg)))
	mgr.Register(history.NewFeature(history.NewService(rt.store, cfg.Ledger.PageSize, logg)))

	var letters checks.Lister
	if rt.deadLetters != nil {
		letters = rt.deadLetters
	}
	mgr.Register(integrity.NewFeature(integrity.NewService(rt.db, letters, logg)))

	// RayID first so every log line can be traced
	app.Use(rayid.New())

	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})

	// Public routes
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := rt.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

	loaded, err := mgr.LoadAll(app)
	if err != nil {
		return fmt.Errorf("failed to load features: %w", err)
	}
	logg.Info("Features loaded", zap.Strings("features", loaded))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logg.Info("Starting server", zap.String("port", cfg.Server.Port))
		return app.Listen(":" + cfg.Server.Port)
	})

	if cfg.PubSub.Enabled {
		client, err := messaging.NewClient(ctx, cfg.PubSub)
		if err != nil {
			return err
		}
		defer client.Close()

		sub, err := messaging.Subscription(ctx, client, cfg.PubSub)
		if err != nil {
			return err
		}
		subscriber := webhooks.NewSubscriber(sub, webhookService, logg)
		g.Go(func() error {
			logg.Info("Receiving webhooks from Pub/Sub", zap.String("subscription", cfg.PubSub.Subscription))
			return subscriber.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logg.Info("Shutting down server...")
		return app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout())
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
