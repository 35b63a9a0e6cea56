package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/id"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/otel"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/config"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/db"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/brain"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/clustering"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/lock"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/queue"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/search"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/service"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/worker"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeWorker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s\n", banner)

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger.Setup(cfg)

	slog.InfoContext(ctx, "opinion worker starting",
		"env", cfg.Env,
		"consumer_group", cfg.Pipeline.RedisGroup,
		"consumer_name", cfg.Pipeline.RedisConsumer)

	// Different node id than the server
	if err := id.Init(2); err != nil {
		slog.ErrorContext(ctx, "failed to initialize id generator", "error", err)
		os.Exit(1)
	}

	// Relinking in a separate process only makes sense against shared storage.
	if cfg.StoreDriver != config.StoreDriverPostgres {
		slog.ErrorContext(ctx, "worker requires STORE_DRIVER=postgres", "store", cfg.StoreDriver)
		os.Exit(1)
	}
	if !cfg.Pipeline.Enabled() {
		slog.ErrorContext(ctx, "worker requires REDIS_URL")
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}

	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)

	consumer, err := queue.NewRedisConsumer(ctx, redisClient, queue.ConsumerConfig{
		Stream:       cfg.Pipeline.RedisStream,
		Group:        cfg.Pipeline.RedisGroup,
		Consumer:     cfg.Pipeline.RedisConsumer,
		DLQStream:    cfg.Pipeline.RedisDLQStream,
		BatchSize:    1, // One room at a time
		Block:        5 * time.Second,
		RequeueDelay: time.Second,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create consumer", "error", err)
		os.Exit(1)
	}

	stores := store.NewStores(database.Queries())
	txRunner := store.NewTxRunner(database)

	oracles, err := brain.NewOracles(cfg, stores.OracleCalls())
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize oracles", "error", err)
		os.Exit(1)
	}

	// Relinks serialize with server ingestion through the shared lock;
	// config validation already rejects any other backend for the worker.
	locker := lock.NewRedisLocker(redisClient, cfg.Lock.TTL, cfg.Lock.Wait)

	services := service.NewServices(
		stores,
		txRunner,
		clustering.New(stores, txRunner, oracles),
		locker,
		search.NewService(nil, stores.Groups()),
		nil,
	)

	w := worker.New(consumer, services.Debate(), worker.Config{
		MaxAttempts:   3,
		SweepInterval: time.Minute,
		StaleAfter:    5 * time.Minute,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx)
	}()

	slog.InfoContext(ctx, "worker initialized and running")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w.Stop()

	select {
	case <-shutdownCtx.Done():
		slog.WarnContext(ctx, "shutdown timeout exceeded")
	case err := <-errCh:
		if err != nil {
			slog.ErrorContext(ctx, "worker error during shutdown", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(ctx, "worker shutdown complete")
}

const banner = `
  ___  ____ ___ _   _ ___ ___  _   _  __        _____  ____  _  _______ ____
 / _ \|  _ \_ _| \ | |_ _/ _ \| \ | | \ \      / / _ \|  _ \| |/ / ____|  _ \
| | | | |_) | ||  \| || | | | |  \| |  \ \ /\ / / | | | |_) | ' /|  _| | |_) |
| |_| |  __/| || |\  || | |_| | |\  |   \ V  V /| |_| |  _ <| . \| |___|  _ <
 \___/|_|  |___|_| \_|___\___/|_| \_|    \_/\_/  \___/|_| \_\_|\_\_____|_| \_\
`
