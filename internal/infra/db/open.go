package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"linkdeck/pkg/config"
)

// PoolConfig tunes the database/sql connection pool. Link reads and
// preview writes share one pool, so the defaults leave headroom for a
// burst of persistence jobs without starving the request path.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// PoolConfigFromEnv reads pool tuning from DB_* environment variables,
// falling back to defaults sized for a single API instance.
func PoolConfigFromEnv() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    config.GetEnvInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    config.GetEnvInt("DB_MAX_IDLE_CONNS", 10),
		ConnMaxLifetime: config.GetEnvDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		ConnMaxIdleTime: config.GetEnvDuration("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
	}
}

// Open connects to the Postgres instance named by DATABASE_URL, applies
// the pool configuration, and verifies the connection with a short ping.
func Open() (*sql.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	cfg := PoolConfigFromEnv()
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("database connection established",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	return pool, nil
}
