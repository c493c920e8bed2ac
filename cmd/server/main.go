package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/retailshift/scheduler/internal/api"
	"github.com/retailshift/scheduler/internal/cron"
	"github.com/retailshift/scheduler/internal/logging"
	"github.com/retailshift/scheduler/internal/metrics"
	"github.com/retailshift/scheduler/internal/repository"
	"github.com/retailshift/scheduler/internal/repository/memory"
	"github.com/retailshift/scheduler/internal/repository/postgres"
	"github.com/retailshift/scheduler/internal/version"
)

func main() {
	logger, err := logging.New("")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, closeDB, err := openDatabase(logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer closeDB()

	store := version.New(db)
	reg := metrics.New()

	handlers := api.NewHandlers(db, store, logger, reg)
	e := api.NewRouter(handlers, reg)
	e.GET("/metrics", echo.WrapHandler(reg.Handler()))

	if os.Getenv("SCHEDULER_CRON_ENABLED") == "true" {
		scheduler, err := cron.New(db, store, logger, cron.DefaultConfig())
		if err != nil {
			logger.Fatal("failed to construct cron scheduler", zap.Error(err))
		}
		if err := scheduler.Start(); err != nil {
			logger.Fatal("failed to start cron scheduler", zap.Error(err))
		}
		defer scheduler.Stop()
	}

	addr := os.Getenv("SERVER_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	go func() {
		logger.Info("starting server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}

// openDatabase picks Postgres when DATABASE_URL is set and falls back to
// the in-memory store otherwise, matching the teacher's Phase-0 default.
func openDatabase(logger *zap.Logger) (repository.Database, func(), error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Info("DATABASE_URL not set; using in-memory repository")
		db := memory.NewDatabase(memory.NewStore())
		return db, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("connected to postgres")
	return db, func() { db.Close() }, nil
}
