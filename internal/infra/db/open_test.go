package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConnectionConfig(t *testing.T) {
	cfg := DefaultConnectionConfig()

	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 1*time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxIdleTime)
}

func TestGetConnectionConfigFromEnv(t *testing.T) {
	t.Run("no env yields defaults", func(t *testing.T) {
		for _, key := range []string{
			"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS",
			"DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME",
		} {
			t.Setenv(key, "")
		}

		assert.Equal(t, DefaultConnectionConfig(), getConnectionConfigFromEnv())
	})

	t.Run("all values overridden", func(t *testing.T) {
		t.Setenv("DB_MAX_OPEN_CONNS", "100")
		t.Setenv("DB_MAX_IDLE_CONNS", "50")
		t.Setenv("DB_CONN_MAX_LIFETIME", "2h")
		t.Setenv("DB_CONN_MAX_IDLE_TIME", "45m")

		cfg := getConnectionConfigFromEnv()
		assert.Equal(t, 100, cfg.MaxOpenConns)
		assert.Equal(t, 50, cfg.MaxIdleConns)
		assert.Equal(t, 2*time.Hour, cfg.ConnMaxLifetime)
		assert.Equal(t, 45*time.Minute, cfg.ConnMaxIdleTime)
	})

	t.Run("partial override keeps other defaults", func(t *testing.T) {
		t.Setenv("DB_MAX_OPEN_CONNS", "75")

		cfg := getConnectionConfigFromEnv()
		assert.Equal(t, 75, cfg.MaxOpenConns)
		assert.Equal(t, 10, cfg.MaxIdleConns)
		assert.Equal(t, 30*time.Minute, cfg.ConnMaxIdleTime)
	})

	t.Run("bad values are ignored", func(t *testing.T) {
		tests := []struct {
			name  string
			key   string
			value string
		}{
			{"non-numeric open conns", "DB_MAX_OPEN_CONNS", "many"},
			{"zero open conns", "DB_MAX_OPEN_CONNS", "0"},
			{"negative idle conns", "DB_MAX_IDLE_CONNS", "-5"},
			{"non-duration lifetime", "DB_CONN_MAX_LIFETIME", "forever"},
			{"zero lifetime", "DB_CONN_MAX_LIFETIME", "0s"},
			{"negative idle time", "DB_CONN_MAX_IDLE_TIME", "-10m"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Setenv(tt.key, tt.value)
				assert.Equal(t, DefaultConnectionConfig(), getConnectionConfigFromEnv())
			})
		}
	})
}

// Connection tests need a live Postgres; they run only when DATABASE_URL
// is present. A missing or bad DSN makes Open exit the process, so those
// paths are left to the deployment smoke tests.

func TestOpen_Connects(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}

	database := Open()
	defer func() { _ = database.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := database.PingContext(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpen_AppliesPoolSettings(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set")
	}

	t.Setenv("DB_MAX_OPEN_CONNS", "5")

	database := Open()
	defer func() { _ = database.Close() }()

	assert.Equal(t, 5, database.Stats().MaxOpenConnections)
}
