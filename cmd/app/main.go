package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/config"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/db"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/economy"
	httpServer "github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/http"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/http/handlers"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/http/middleware"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/logger"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/repository"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/scheduler"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/service"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/store"
	"github.com/pr-poehali-dev/robot-tap-game-1-sub000/internal/ws"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	service.InitJWT(cfg.JWTSecret)

	ctx := context.Background()
	kvStore, closeStore, err := db.OpenStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open storage", "backend", cfg.StorageBackend, "error", err)
	}
	defer closeStore()

	users := repository.NewUserRepository(kvStore)
	txs := repository.NewTransactionRepository(kvStore)
	stats := store.New(users)
	clock := clockwork.NewRealClock()
	membership := repository.NewMembershipRepository(kvStore, clock)

	engine := economy.NewEngine(economy.Deps{
		Stats:        stats,
		Users:        users,
		Robots:       repository.NewRobotRepository(kvStore),
		Claims:       repository.NewClaimRepository(kvStore),
		Tasks:        repository.NewTaskRepository(kvStore),
		Transactions: txs,
		Flags:        membership,
	}, economy.WithClock(clock))

	sessions, err := scheduler.New(engine, cfg.EnergyTick)
	if err != nil {
		logger.Fatal("failed to create scheduler", "error", err)
	}
	sessions.Start()

	hub := ws.NewHub(engine, sessions)
	stats.OnChange(hub.Publish)

	withdrawals := service.NewWithdrawalService(stats, repository.NewWithdrawalRepository(kvStore), txs, engine.Clock())
	h := handlers.NewHandler(
		engine,
		users,
		service.NewAuthService(users, engine).WithClock(clock),
		withdrawals,
		service.NewAdminService(users, stats, membership, withdrawals, txs, clock),
	)

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := httpServer.NewRouter(httpServer.Server{
		Config:  cfg,
		Handler: h,
		Health:  handlers.NewHealthHandler(kvStore, cfg.StorageBackend, cfg.Version).WithSessions(sessions),
		Hub:     hub,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "storage", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if err := sessions.Shutdown(); err != nil {
		logger.Error("scheduler shutdown failed", "error", err)
	}

	logger.Info("server exited")
}
