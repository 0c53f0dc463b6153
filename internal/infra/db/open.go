package db

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"engjobs/internal/observability/metrics"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// ConnectionConfig holds the pool limits applied to the shared *sql.DB.
type ConnectionConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig sizes the pool for one api plus one worker
// process against a small managed Postgres.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		MaxOpenConns:    25,
		MaxIdleConns:    10,
		ConnMaxLifetime: 1 * time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// Open connects to the DATABASE_URL Postgres through the pgx stdlib
// driver, applies the pool settings, and verifies the connection with a
// bounded ping. Startup cannot proceed without a database, so failures
// exit the process.
func Open() *sql.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	database, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal(err)
	}

	cfg := getConnectionConfigFromEnv()
	database.SetMaxOpenConns(cfg.MaxOpenConns)
	database.SetMaxIdleConns(cfg.MaxIdleConns)
	database.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	database.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	slog.Info("database connection pool configured",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		slog.Duration("conn_max_idle_time", cfg.ConnMaxIdleTime))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping database: %v", err)
	}

	slog.Info("database connection established successfully")
	return database
}

// envPositiveInt returns the env value when it parses as a positive
// integer, otherwise def.
func envPositiveInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	if val, err := strconv.Atoi(raw); err == nil && val > 0 {
		return val
	}
	return def
}

// envPositiveDuration returns the env value when it parses as a positive
// duration, otherwise def.
func envPositiveDuration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	if val, err := time.ParseDuration(raw); err == nil && val > 0 {
		return val
	}
	return def
}

// getConnectionConfigFromEnv overlays the DB_* pool variables on the
// defaults. Unparsable or non-positive values are ignored.
func getConnectionConfigFromEnv() ConnectionConfig {
	def := DefaultConnectionConfig()
	return ConnectionConfig{
		MaxOpenConns:    envPositiveInt("DB_MAX_OPEN_CONNS", def.MaxOpenConns),
		MaxIdleConns:    envPositiveInt("DB_MAX_IDLE_CONNS", def.MaxIdleConns),
		ConnMaxLifetime: envPositiveDuration("DB_CONN_MAX_LIFETIME", def.ConnMaxLifetime),
		ConnMaxIdleTime: envPositiveDuration("DB_CONN_MAX_IDLE_TIME", def.ConnMaxIdleTime),
	}
}

// ReportPoolStats periodically exports connection pool gauges until ctx is
// canceled. Run it in its own goroutine.
func ReportPoolStats(ctx context.Context, database *sql.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := database.Stats()
			metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
		}
	}
}
