package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/id"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/logger"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/otel"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/config"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/core/db"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/brain"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/clustering"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/http/middleware"
	httprouter "github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/http/router"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/lock"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/queue"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/search"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/service"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store"
	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/store/memstore"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "opinion server starting", "env", cfg.Env, "store", cfg.StoreDriver)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	var (
		stores   store.Provider
		txRunner store.TxRunner
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		mem := memstore.New()
		stores, txRunner = mem, mem
		slog.WarnContext(ctx, "using in-memory store, data is lost on restart")
	default:
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()
		slog.InfoContext(ctx, "database connected")

		if cfg.AutoMigrate {
			if err := database.Migrate(ctx); err != nil {
				slog.ErrorContext(ctx, "failed to run migrations", "error", err)
				os.Exit(1)
			}
		}
		stores, txRunner = store.NewStores(database.Queries()), store.NewTxRunner(database)
	}

	var (
		redisClient *redis.Client
		producer    queue.Producer
	)
	if cfg.Pipeline.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Pipeline.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient = redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "redis connected", "stream", cfg.Pipeline.RedisStream)

		// The producer owns the client and closes it on shutdown.
		producer = queue.NewRedisProducer(redisClient, cfg.Pipeline.RedisStream, slog.Default())
		defer producer.Close()
	} else {
		slog.InfoContext(ctx, "redis not configured, async relink disabled")
	}

	var locker lock.Locker = lock.NewLocalLocker(cfg.Lock.Wait)
	if cfg.Lock.Backend == config.LockBackendRedis {
		locker = lock.NewRedisLocker(redisClient, cfg.Lock.TTL, cfg.Lock.Wait)
	}

	oracles, err := brain.NewOracles(cfg, stores.OracleCalls())
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize oracles", "error", err)
		os.Exit(1)
	}
	engine := clustering.New(stores, txRunner, oracles)

	var index search.Index
	if cfg.Meili.Enabled() {
		meili := search.NewMeili(cfg.Meili.URL, cfg.Meili.MasterKey)
		defer meili.Close()
		index = meili
	}
	searcher := search.NewService(index, stores.Groups())

	services := service.NewServices(stores, txRunner, engine, locker, searcher, producer)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		AdminAPIKey: cfg.AdminAPIKey,
	})

	return router
}

const banner = `
  ___  ____ ___ _   _ ___ ___  _   _
 / _ \|  _ \_ _| \ | |_ _/ _ \| \ | |
| | | | |_) | ||  \| || | | | |  \| |
| |_| |  __/| || |\  || | |_| | |\  |
 \___/|_|  |___|_| \_|___\___/|_| \_|
`
