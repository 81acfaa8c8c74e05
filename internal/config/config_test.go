package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	if content == "" {
		return filepath.Join(tmpDir, "nonexistent.yaml")
	}
	configFile := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))
	return configFile
}

func TestLoadSyncWorkerConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError bool
		validate    func(*testing.T, *SyncWorkerConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
worker:
  pool_size: 8
  queue_size: 64
database:
  host: localhost
  port: 5433
  user: testuser
  password: testpass
  dbname: testdb
  sslmode: require
nats:
  url: "nats://localhost:4222"
  stream_name: "TEST_CHANGES"
  consumer_name: "test-consumer"
  ack_wait: "45s"
  max_deliver: 7
services:
  token_url: "http://token.local"
  sale_url: "http://sale.local"
  rate_url: "http://rate.local"
  timeout: "3s"
sync:
  graveyard_address: "0x000000000000000000000000000000000000dEaD"
  dedupe_window: "250ms"
  retry_max_attempts: 4
  retry_base_delay: "100ms"
`,
			validate: func(t *testing.T, cfg *SyncWorkerConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, 8, cfg.Worker.WorkerPoolSize)
				assert.Equal(t, 64, cfg.Worker.WorkerQueueSize)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5433, cfg.Database.Port)
				assert.Equal(t, "require", cfg.Database.SSLMode)
				assert.Equal(t, "TEST_CHANGES", cfg.NATS.StreamName)
				assert.Equal(t, "test-consumer", cfg.NATS.ConsumerName)
				assert.Equal(t, 45*time.Second, cfg.NATS.AckWait)
				assert.Equal(t, 7, cfg.NATS.MaxDeliver)
				assert.Equal(t, "http://token.local", cfg.Services.TokenURL)
				assert.Equal(t, "http://sale.local", cfg.Services.SaleURL)
				assert.Equal(t, "http://rate.local", cfg.Services.RateURL)
				assert.Equal(t, 3*time.Second, cfg.Services.Timeout)
				assert.Equal(t, "0x000000000000000000000000000000000000dEaD", cfg.Sync.GraveyardAddress)
				assert.Equal(t, 250*time.Millisecond, cfg.Sync.DedupeWindow)
				assert.Equal(t, 4, cfg.Sync.RetryMaxAttempts)
				assert.Equal(t, 100*time.Millisecond, cfg.Sync.RetryBaseDelay)
			},
		},
		{
			name: "config with defaults",
			configFile: `
database:
  host: localhost
  dbname: testdb
nats:
  url: "nats://localhost:4222"
sync:
  graveyard_address: "0x000000000000000000000000000000000000dEaD"
`,
			validate: func(t *testing.T, cfg *SyncWorkerConfig) {
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, "disable", cfg.Database.SSLMode)
				assert.Equal(t, 10, cfg.NATS.MaxReconnects)
				assert.Equal(t, "2s", cfg.NATS.ReconnectWait.String())
				assert.Equal(t, "MARKET_CHANGES", cfg.NATS.StreamName)
				assert.Equal(t, "sync-worker", cfg.NATS.ConsumerName)
				assert.Equal(t, "market", cfg.NATS.SubjectPrefix)
				assert.Equal(t, 60*time.Second, cfg.NATS.AckWait)
				assert.Equal(t, 5, cfg.NATS.MaxDeliver)
				assert.Equal(t, 20, cfg.Worker.WorkerPoolSize)
				assert.Equal(t, time.Second, cfg.Sync.DedupeWindow)
				assert.Equal(t, 10, cfg.Sync.RetryMaxAttempts)
				assert.Equal(t, time.Second, cfg.Sync.RetryBaseDelay)
				assert.Equal(t, 10*time.Second, cfg.Services.Timeout)
			},
		},
		{
			name: "missing graveyard address",
			configFile: `
database:
  host: localhost
`,
			expectError: true,
		},
		{
			name: "invalid yaml",
			configFile: `
				database:
				  host: localhost
				  port: invalid
			`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadSyncWorkerConfig(writeConfigFile(t, tt.configFile), t.TempDir())

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestLoadAPIConfig(t *testing.T) {
	configFile := writeConfigFile(t, `
server:
  port: 9090
database:
  host: db.local
  dbname: market
auth:
  jwt_public_key: "test-key"
  api_keys:
    - key-1
    - key-2
`)

	cfg, err := LoadAPIConfig(configFile, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10, cfg.Server.ReadTimeout)
	assert.Equal(t, 120, cfg.Server.IdleTimeout)
	assert.Equal(t, "db.local", cfg.Database.Host)
	assert.Equal(t, 30*time.Second, cfg.Query.RateCacheTTL)
	assert.Equal(t, "test-key", cfg.Auth.JWTPublicKey)
	assert.Equal(t, []string{"key-1", "key-2"}, cfg.Auth.APIKeys)
}

func TestLoadSweeperConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		configFile := writeConfigFile(t, `
database:
  host: db.local
  dbname: market
`)

		cfg, err := LoadSweeperConfig(configFile, t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, 5, cfg.Database.MaxOpenConns)
		assert.Equal(t, 2, cfg.Database.MaxIdleConns)
		assert.Equal(t, 10*time.Minute, cfg.OfferDriftSweeper.Interval)
		assert.Equal(t, 100, cfg.OfferDriftSweeper.BatchSize)
		assert.Equal(t, 4, cfg.OfferDriftSweeper.Worker.WorkerPoolSize)
	})

	t.Run("missing database host", func(t *testing.T) {
		configFile := writeConfigFile(t, `
database:
  dbname: market
`)

		cfg, err := LoadSweeperConfig(configFile, t.TempDir())
		assert.Error(t, err)
		assert.Nil(t, cfg)
	})
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		DBName:   "market",
		SSLMode:  "disable",
	}

	assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=market sslmode=disable", cfg.DSN())
}
