package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Benediks/Sidaya/internal/config"
	"github.com/Benediks/Sidaya/internal/database"
	"github.com/Benediks/Sidaya/internal/logger"
	"github.com/Benediks/Sidaya/internal/router"
	"github.com/Benediks/Sidaya/internal/scheduler"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level, cfg.Log.Format))
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	db, err := database.Init(cfg.Database)
	if err != nil {
		baseLogger.Fatal("init database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db); err != nil {
			baseLogger.Error("close database", zap.Error(err))
		}
	}()

	if err := database.AutoMigrate(db); err != nil {
		baseLogger.Fatal("migrate database", zap.Error(err))
	}

	svc := router.NewServices(db, baseLogger)

	// bring cached availability in line before serving
	if _, err := svc.Inventory.RecalculateAllMenus(context.Background()); err != nil {
		baseLogger.Error("initial menu recalculation failed", zap.Error(err))
	}

	sched := scheduler.NewScheduler(cfg.Scheduler, svc.Inventory, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	engine := router.SetupRouter(cfg, svc, baseLogger)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
