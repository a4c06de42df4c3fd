package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"swipehire/internal/app"
	"swipehire/internal/config"
	"swipehire/internal/database"
	"swipehire/internal/domain/application"
	"swipehire/internal/domain/connection"
	"swipehire/internal/domain/job"
	apphttp "swipehire/internal/http"
	"swipehire/internal/http/handlers"
	httpmw "swipehire/internal/http/middleware"
	"swipehire/internal/http/response"
	"swipehire/internal/metrics"
	"swipehire/internal/notify"
	"swipehire/internal/observability"
	"swipehire/internal/realtime"
	"swipehire/internal/repository/memory"
	"swipehire/internal/repository/postgres"
	"swipehire/internal/security"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

type stores struct {
	jobs         job.Repository
	applications application.Repository
	connections  connection.Repository
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	redisClient := openRedis(cfg.RedisURL, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("redis close failed", slog.String("error", err.Error()))
			}
		}()
	}

	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	hub := notify.NewHub(cfg.SignalBuffer, collector)
	defer hub.Close()
	var publisher notify.Publisher = hub
	var deduper notify.Deduper = notify.NewMemoryDeduper()
	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	if redisClient != nil {
		bridge := notify.NewRedisBridge(redisClient, notify.DefaultRedisChannel, hub, logger)
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("signal bridge stopped, signals stay in this process", slog.String("error", err.Error()))
			}
		}()
		publisher = bridge
		deduper = notify.NewRedisDeduper(redisClient, "swipehire:signal")
		limiter = httpmw.NewRedisLimiter(redisClient, "swipehire:ratelimit")
	}
	notifier := notify.NewNotifier(publisher, deduper, notify.NotifierConfig{DedupeTTL: cfg.SignalDedupeTTL}, logger, collector)

	applicationService := app.NewApplicationService(repos.applications, repos.jobs, notifier, logger, collector)
	connectionService := app.NewConnectionService(repos.connections, notifier, logger, collector)
	jobService := app.NewJobService(repos.jobs, repos.applications, logger)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)
	sessions := realtime.NewServer(ctx, hub, logger, collector)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		ApplicationHandler: handlers.NewApplicationHandler(applicationService),
		ConnectionHandler:  handlers.NewConnectionHandler(connectionService),
		JobHandler:         handlers.NewJobHandler(jobService, cfg.InternalAPIKey),
		MetricsHandler:     handlers.NewMetricsHandler(collector),
		Realtime:           sessions,
		AuthMiddleware:     httpmw.NewAuthMiddleware(jwtProvider),
		Limiter:            limiter,
		ActionRateLimit:    cfg.ActionRateLimitPerMin,
		Metrics:            collector,
		Logger:             logger,
		RequestTimeout:     cfg.RequestTimeout,
	})
	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("API started", slog.String("addr", cfg.Addr()), slog.String("db_driver", cfg.DBDriver), slog.Bool("redis", redisClient != nil))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	sessions.Wait()
	notifier.Wait()
	logger.Info("API stopped")
	return nil
}

func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (stores, func(), error) {
	if cfg.DBDriver == config.DriverMemory {
		logger.Warn("using in-memory stores, state is lost on restart")
		return stores{
			jobs:         memory.NewJobRepository(),
			applications: memory.NewApplicationRepository(),
			connections:  memory.NewConnectionRepository(),
		}, func() {}, nil
	}

	db, err := database.Open(ctx, database.Config{
		Driver:          cfg.DBDriver,
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	}, logger)
	if err != nil {
		return stores{}, nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return stores{}, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Error("database close failed", slog.String("error", err.Error()))
		}
	}
	return sqlStores(db), closeDB, nil
}

func sqlStores(db *sql.DB) stores {
	return stores{
		jobs:         postgres.NewJobRepository(db),
		applications: postgres.NewApplicationRepository(db),
		connections:  postgres.NewConnectionRepository(db),
	}
}

// openRedis returns nil when Redis is not configured or unreachable; callers
// fall back to in-process signalling and limits.
func openRedis(url string, logger *slog.Logger) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Error("redis url parse failed", slog.String("error", err.Error()))
		return nil
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("redis ping failed", slog.String("error", err.Error()))
		_ = client.Close()
		return nil
	}
	return client
}
