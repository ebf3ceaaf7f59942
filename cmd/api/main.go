package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"

	"github.com/Tiyas17/backend-ledger/internal/adapter/handler"
	"github.com/Tiyas17/backend-ledger/internal/adapter/middleware"
	"github.com/Tiyas17/backend-ledger/internal/adapter/storage"
	"github.com/Tiyas17/backend-ledger/internal/core/config"
	"github.com/Tiyas17/backend-ledger/internal/core/ledger"
	"github.com/Tiyas17/backend-ledger/internal/core/notifications"
	"github.com/Tiyas17/backend-ledger/internal/core/worker"
)

func main() {
	// 1. Load Config
	cfg := config.LoadConfig()

	// 2. Setup Logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 3. Connect to Database and apply migrations
	dbPool, err := storage.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("❌ Database connection failed", "error", err)
		os.Exit(1)
	}
	if err := storage.Migrate(cfg.DatabaseURL); err != nil {
		slog.Error("❌ Database migration failed", "error", err)
		os.Exit(1)
	}

	systemAccountID := uuid.Nil
	if cfg.SystemAccountID != "" {
		systemAccountID, err = uuid.Parse(cfg.SystemAccountID)
		if err != nil {
			slog.Error("❌ Invalid SYSTEM_ACCOUNT_ID", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Warn("⚠️ SYSTEM_ACCOUNT_ID is not set, system funding is disabled")
	}

	// 4. Setup Repos, Services & Handlers
	accountRepo := storage.NewAccountRepository(dbPool)
	ledgerStore := storage.NewLedgerStore(dbPool)
	notifyQueue := storage.NewNotificationQueue(dbPool, cfg.WebhookURL)

	ledgerSvc := ledger.NewService(ledgerStore, notifyQueue, systemAccountID)

	accountHandler := &handler.AccountHandler{Repo: accountRepo, Ledger: ledgerSvc}
	transferHandler := &handler.TransferHandler{Svc: ledgerSvc}

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	// 6. Routes
	api := app.Group("/v1")

	// Public
	api.Post("/accounts", accountHandler.CreateAccount)
	api.Post("/accounts/:id/keys", accountHandler.GenerateKey)

	// Protected
	private := api.Use(middleware.Protected(dbPool))
	private.Get("/accounts/:id/balance", accountHandler.GetBalance)
	private.Get("/accounts/:id/transactions", accountHandler.GetHistory)
	private.Post("/transfers", transferHandler.SubmitTransfer)
	private.Post("/transfers/system/initial-funds", transferHandler.SubmitSystemFunding)

	// 7. Start Workers
	sender := notifications.NewSender(cfg.WebhookSecret)
	worker.StartNotificationWorker(dbPool, sender)
	worker.StartReconciler(dbPool, cfg.ReconcileInterval, cfg.ReconcileMaxAge)

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("🚀 Server starting", "env", cfg.Env, "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("Server forced to shutdown", "error", err)
		}
	}()

	// Block here until we receive a stop signal
	<-stop
	slog.Info("🛑 Shutting down server...")

	// Tell Fiber to stop accepting new requests and finish active ones
	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}

	dbPool.Close()
	slog.Info("✅ Database connection closed")

	slog.Info("👋 Server exited successfully")
}
