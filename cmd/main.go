package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"vnpgate/internal/bootstrap"
	"vnpgate/internal/config"
	cronpkg "vnpgate/internal/cron"
	"vnpgate/internal/handler"
	"vnpgate/internal/middleware"
	"vnpgate/internal/notify"
	"vnpgate/internal/reconcile"
	"vnpgate/internal/repository"
	"vnpgate/internal/router"
	"vnpgate/internal/vnpay"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Signer (missing secret is fatal, not a per-request error) ---
	signer, err := vnpay.NewSigner(cfg.VNPay.HashSecret)
	if err != nil {
		logger.Fatal("VNPay signer misconfigured", zap.Error(err))
	}

	// --- Order ledger ---
	var (
		ledger       reconcile.Ledger
		orderStore   handler.OrderStore
		callbackRepo *repository.CallbackRepository
		scheduler    *cronpkg.Scheduler
	)
	if cfg.Database.Name != "" {
		db, err := config.NewDatabase(&cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := bootstrap.Migrate(db); err != nil {
			logger.Fatal("Failed to migrate database schema", zap.Error(err))
		}
		orderRepo := repository.NewOrderRepository(db)
		ledger = orderRepo
		orderStore = orderRepo
		callbackRepo = repository.NewCallbackRepository(db)

		scheduler, err = cronpkg.New(orderRepo, cfg.Order.SweepSpec, cfg.Order.ExpireAfter, logger)
		if err != nil {
			logger.Fatal("Failed to create scheduler", zap.Error(err))
		}
	} else {
		memory := reconcile.NewMemoryLedger()
		ledger = memory
		orderStore = memory
		logger.Warn("Running with in-memory order ledger; orders do not survive restarts")
	}

	// --- Callback deduper (Redis with in-memory fallback) ---
	deduper, dedupeErr := middleware.NewCallbackDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		10*time.Minute,
	)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for callback dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Engine, notifier, gateway query client ---
	engine := reconcile.NewEngine(signer, ledger, cfg.VNPay.FailOnReject, logger)
	notifier := notify.New(cfg.Notify.BotToken, cfg.Notify.ChatID, logger)
	queryClient := vnpay.NewQueryClient(cfg.VNPay.APIURL, cfg.VNPay.TmnCode, signer)

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	callbackHandler := handler.NewCallbackHandler(engine, callbackRepo, deduper, notifier, logger)
	orderHandler := handler.NewOrderHandler(orderStore, callbackRepo, queryClient, logger)
	router.Setup(e, callbackHandler, orderHandler, deduper)

	if scheduler != nil {
		scheduler.Start()
	}

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting vnpgate server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	if scheduler != nil {
		ctx := scheduler.Stop()
		<-ctx.Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
