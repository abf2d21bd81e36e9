// Package app wires the service together and owns its lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Haarush2006/OpsBoard-BE/internal/auth"
	"github.com/Haarush2006/OpsBoard-BE/internal/config"
	"github.com/Haarush2006/OpsBoard-BE/internal/event"
	handler "github.com/Haarush2006/OpsBoard-BE/internal/handler/http"
	"github.com/Haarush2006/OpsBoard-BE/internal/repository"
	"github.com/Haarush2006/OpsBoard-BE/internal/repository/postgres"
	redisrepo "github.com/Haarush2006/OpsBoard-BE/internal/repository/redis"
	"github.com/Haarush2006/OpsBoard-BE/internal/service"
	"github.com/Haarush2006/OpsBoard-BE/migrations"
	"github.com/Haarush2006/OpsBoard-BE/pkg/database"
	"github.com/Haarush2006/OpsBoard-BE/pkg/health"
	"github.com/Haarush2006/OpsBoard-BE/pkg/kafka"
	"github.com/Haarush2006/OpsBoard-BE/pkg/tracing"
)

// App holds the assembled service and its owned resources.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool        *pgxpool.Pool
	redisClient *goredis.Client
	producer    *kafka.Producer
	server      *http.Server

	shutdownTracing func(context.Context) error
}

// New builds the application: storage, stores, engine, HTTP surface.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: log}

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName:  cfg.ServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.Tracing.Endpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		Enabled:      cfg.Tracing.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.shutdownTracing = shutdownTracing

	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	a.pool = pool

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	users := postgres.NewUserRepository(pool)

	var sessions repository.RefreshTokenRepository
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		client, err := database.NewRedisClient(ctx, cfg.RedisDatabaseConfig())
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redisClient = client
		sessions = redisrepo.NewSessionStore(client)
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	default:
		sessions = postgres.NewRefreshTokenRepository(pool)
	}

	var emitter service.Events
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(kafka.DefaultProducerConfig(cfg.Kafka.Brokers), log)
		a.producer = producer
		emitter = event.NewEmitter(producer, log)
		healthHandler.RegisterNonCritical("kafka", producer.Ping)
	} else {
		emitter = event.NewEmitter(nil, log)
	}

	codec := auth.NewTokenCodec(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	svc := service.NewAuthService(users, sessions, codec, emitter, log, service.DefaultBcryptCost)

	router := handler.NewRouter(svc, healthHandler, log, handler.RouterConfig{
		ServiceName:    cfg.ServiceName,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimitRPS:   cfg.Rate.RequestsPerSecond,
		RateLimitBurst: cfg.Rate.Burst,
	})

	a.server = &http.Server{
		Addr:         cfg.ServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

// Run serves HTTP until the context is canceled, then shuts down in
// dependency order: listener first, then producer and storage.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.server.Addr, "session_store", a.cfg.Session.Store)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown", "error", err)
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("close kafka producer", "error", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("close redis client", "error", err)
		}
	}
	a.pool.Close()

	if a.shutdownTracing != nil {
		flushCtx, cancelFlush := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelFlush()
		if err := a.shutdownTracing(flushCtx); err != nil {
			a.logger.Error("shutdown tracing", "error", err)
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
