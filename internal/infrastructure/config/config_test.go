package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"MLD_APP_NAME":                os.Getenv("MLD_APP_NAME"),
		"MLD_APP_ENV":                 os.Getenv("MLD_APP_ENV"),
		"MLD_APP_PORT":                os.Getenv("MLD_APP_PORT"),
		"MLD_DATABASE_HOST":           os.Getenv("MLD_DATABASE_HOST"),
		"MLD_DATABASE_PORT":           os.Getenv("MLD_DATABASE_PORT"),
		"MLD_DATABASE_USER":           os.Getenv("MLD_DATABASE_USER"),
		"MLD_DATABASE_PASSWORD":       os.Getenv("MLD_DATABASE_PASSWORD"),
		"MLD_DATABASE_DBNAME":         os.Getenv("MLD_DATABASE_DBNAME"),
		"MLD_DATABASE_SSLMODE":        os.Getenv("MLD_DATABASE_SSLMODE"),
		"MLD_DATABASE_MAX_OPEN_CONNS": os.Getenv("MLD_DATABASE_MAX_OPEN_CONNS"),
		"MLD_DATABASE_MAX_IDLE_CONNS": os.Getenv("MLD_DATABASE_MAX_IDLE_CONNS"),
		"MLD_ACUMATICA_USERNAME":      os.Getenv("MLD_ACUMATICA_USERNAME"),
		"MLD_SPECFEED_PASSWORD":       os.Getenv("MLD_SPECFEED_PASSWORD"),
		"MLD_SYNC_CRON_SECRET":        os.Getenv("MLD_SYNC_CRON_SECRET"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "mld-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "mld", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 30, cfg.Acumatica.TimeoutSeconds)
		assert.Equal(t, 5, cfg.Acumatica.JobPollSeconds)
		assert.Equal(t, 300, cfg.Acumatica.JobTimeoutSeconds)
		assert.Equal(t, 60, cfg.SpecFeed.TimeoutSeconds)
		assert.Equal(t, 587, cfg.Mail.Port)
		assert.Equal(t, 3, cfg.Sync.StaleAfterDays)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		clearEnv()
		os.Setenv("MLD_APP_NAME", "mld-staging")
		os.Setenv("MLD_DATABASE_HOST", "db.internal")
		os.Setenv("MLD_ACUMATICA_USERNAME", "sync-user")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "mld-staging", cfg.App.Name)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, "sync-user", cfg.Acumatica.Username)
	})

	t.Run("production requires credentials and cron secret", func(t *testing.T) {
		clearEnv()
		os.Setenv("MLD_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)

		os.Setenv("MLD_DATABASE_PASSWORD", "prod-password")
		os.Setenv("MLD_DATABASE_SSLMODE", "require")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cron_secret")

		os.Setenv("MLD_SYNC_CRON_SECRET", "shZq6...")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	t.Run("builds a postgres DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "p@ss/word",
			DBName:   "mld",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "postgres://")
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "sslmode=disable")
		// special characters must be escaped
		assert.NotContains(t, dsn, "p@ss/word")
	})
}

func TestRedisConfigAddr(t *testing.T) {
	cfg := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.Addr())
}
