package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/superhome-100/superhome-scheduler-sub001/internal/buoy"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/classroom"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/config"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/cutoff"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/db"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/logger"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/pool"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/reservation"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/server"
	"github.com/superhome-100/superhome-scheduler-sub001/internal/settings"
)

func main() {
	logger.Init()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.InitWithLevel(cfg.LogLevel)
	logger.Info("Starting scheduler", "tz", cfg.FacilityTZ, "lanes", cfg.PoolLanes, "rooms", cfg.ClassroomRooms)

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	buoyService := buoy.NewService(buoy.NewRepository(database))
	recomputeQueue := buoy.NewQueue(redisClient, buoyService, cfg.RecomputeInterval, cfg.RecomputeWindow)
	go recomputeQueue.Start(ctx)

	reservationService := reservation.NewService(
		reservation.NewRepository(database),
		settings.NewService(settings.NewRepository(database)),
		cutoff.NewPolicy(cutoff.RealClock{}, cfg.Location),
		pool.NewAllocator(cfg.PoolLanes),
		classroom.NewChecker(cfg.ClassroomRooms),
		recomputeQueue,
	)

	srv := server.New(ctx, cfg, server.Deps{
		Reservations: reservationService,
		Buoys:        buoyService,
		Health: server.HealthFunc(func(ctx context.Context) error {
			if err := database.PingContext(ctx); err != nil {
				return fmt.Errorf("database: %w", err)
			}
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		}),
	})

	serverErrChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
