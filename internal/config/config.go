// Package config holds the service configuration, loaded from the
// environment.
package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/Haarush2006/OpsBoard-BE/pkg/config"
	"github.com/Haarush2006/OpsBoard-BE/pkg/database"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"auth-service"`

	Server   ServerConfig
	JWT      JWTConfig
	Session  SessionConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Tracing  TracingConfig
	CORS     CORSConfig
	Rate     RateLimitConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type JWTConfig struct {
	AccessSecret  string        `env:"AUTH_ACCESS_TOKEN_SECRET"`
	RefreshSecret string        `env:"AUTH_REFRESH_TOKEN_SECRET"`
	AccessExpiry  time.Duration `env:"AUTH_ACCESS_TOKEN_EXPIRY" envDefault:"15m"`
	RefreshExpiry time.Duration `env:"AUTH_REFRESH_TOKEN_EXPIRY" envDefault:"168h"`
}

type SessionConfig struct {
	// Store selects the refresh token backend: postgres or redis.
	Store string `env:"SESSION_STORE" envDefault:"postgres"`
}

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	DBName   string `env:"POSTGRES_DB" envDefault:"opsboard_auth"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	MaxConns int32  `env:"POSTGRES_MAX_CONNS" envDefault:"10"`
	MinConns int32  `env:"POSTGRES_MIN_CONNS" envDefault:"2"`
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type KafkaConfig struct {
	Enabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	Brokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
}

type TracingConfig struct {
	Enabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	Endpoint   string  `env:"TRACING_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	SampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	Burst             int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate enforces startup-fatal requirements. Missing signing secrets are
// tolerated only in development, where weak defaults are substituted.
func (c *Config) validate() error {
	if c.Environment == EnvDevelopment {
		if c.JWT.AccessSecret == "" {
			c.JWT.AccessSecret = "dev-access-secret-do-not-use-in-prod"
		}
		if c.JWT.RefreshSecret == "" {
			c.JWT.RefreshSecret = "dev-refresh-secret-do-not-use-in-prod"
		}
	}
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("AUTH_ACCESS_TOKEN_SECRET is required in %s", c.Environment)
	}
	if c.JWT.RefreshSecret == "" {
		return fmt.Errorf("AUTH_REFRESH_TOKEN_SECRET is required in %s", c.Environment)
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return fmt.Errorf("access and refresh signing secrets must differ")
	}

	switch c.Session.Store {
	case SessionStorePostgres, SessionStoreRedis:
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}

	return nil
}

// DatabaseConfig converts to the shared pool settings.
func (c *Config) DatabaseConfig() *database.PostgresConfig {
	return &database.PostgresConfig{
		Host:     c.Postgres.Host,
		Port:     c.Postgres.Port,
		User:     c.Postgres.User,
		Password: c.Postgres.Password,
		DBName:   c.Postgres.DBName,
		SSLMode:  c.Postgres.SSLMode,
		MaxConns: c.Postgres.MaxConns,
		MinConns: c.Postgres.MinConns,
	}
}

func (c *Config) RedisDatabaseConfig() database.RedisConfig {
	return database.RedisConfig{
		Host:     c.Redis.Host,
		Port:     c.Redis.Port,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	}
}

// ServerAddr returns the host:port the HTTP server binds to.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
