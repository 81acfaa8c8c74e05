package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // e.g. "5m", "1h"
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // e.g. "10m"
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	StreamName     string        `mapstructure:"stream_name"`
	ConsumerName   string        `mapstructure:"consumer_name"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
	AckWait        time.Duration `mapstructure:"ack_wait"`
	MaxDeliver     int           `mapstructure:"max_deliver"`
}

// ServicesConfig holds the base URLs of the marketplace domain services
type ServicesConfig struct {
	TokenURL      string        `mapstructure:"token_url"`
	SaleURL       string        `mapstructure:"sale_url"`
	AuctionURL    string        `mapstructure:"auction_url"`
	OfferURL      string        `mapstructure:"offer_url"`
	UserURL       string        `mapstructure:"user_url"`
	AssetURL      string        `mapstructure:"asset_url"`
	RateURL       string        `mapstructure:"rate_url"`
	APIKey        string        `mapstructure:"api_key"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxRetryDelay time.Duration `mapstructure:"max_retry_delay"`
}

// SyncConfig holds the aggregate rebuild configuration
type SyncConfig struct {
	// GraveyardAddress is the account treated as burned when counting editions
	GraveyardAddress string `mapstructure:"graveyard_address"`
	// DedupeWindow is how long a rebuild request waits for newer identical requests
	DedupeWindow time.Duration `mapstructure:"dedupe_window"`
	// RetryMaxAttempts caps the retries of a rebuild failing on transient contention
	RetryMaxAttempts int `mapstructure:"retry_max_attempts"`
	// RetryBaseDelay is the per-attempt upper bound increment of the randomized retry delay
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

// QueryConfig holds query engine configuration
type QueryConfig struct {
	RateCacheTTL time.Duration `mapstructure:"rate_cache_ttl"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
	// CORSAllowedOrigins restricts cross origin requests, empty allows every origin
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTPublicKey string   `mapstructure:"jwt_public_key"`
	APIKeys      []string `mapstructure:"api_keys"`
}

// WorkerConfig holds worker configuration
type WorkerConfig struct {
	WorkerPoolSize  int `mapstructure:"pool_size"`
	WorkerQueueSize int `mapstructure:"queue_size"`
}

// OfferDriftSweeperConfig holds configuration for the offer drift sweeper
type OfferDriftSweeperConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batch_size"`
	Worker    WorkerConfig  `mapstructure:"worker"`
}

// SyncWorkerConfig holds configuration for sync-worker
type SyncWorkerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Worker     WorkerConfig   `mapstructure:"worker"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Services   ServicesConfig `mapstructure:"services"`
	Sync       SyncConfig     `mapstructure:"sync"`
}

// APIConfig holds configuration for API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig   `mapstructure:"server"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Services   ServicesConfig `mapstructure:"services"`
	Query      QueryConfig    `mapstructure:"query"`
	Auth       AuthConfig     `mapstructure:"auth"`
}

// SweeperConfig holds configuration for the sweeper program
type SweeperConfig struct {
	BaseConfig        `mapstructure:",squash"`
	Database          DatabaseConfig          `mapstructure:"database"`
	NATS              NATSConfig              `mapstructure:"nats"`
	Services          ServicesConfig          `mapstructure:"services"`
	OfferDriftSweeper OfferDriftSweeperConfig `mapstructure:"offer_drift_sweeper"`
}

// LoadSyncWorkerConfig loads configuration for sync-worker
func LoadSyncWorkerConfig(configFile string, envPath string) (*SyncWorkerConfig, error) {
	v := configureViper("sync-worker", configFile, envPath)

	setDatabaseDefaults(v)
	setNATSDefaults(v, "sync-worker")
	setServicesDefaults(v)
	v.SetDefault("worker.pool_size", 20)
	v.SetDefault("worker.queue_size", 200)
	v.SetDefault("sync.dedupe_window", "1s")
	v.SetDefault("sync.retry_max_attempts", 10)
	v.SetDefault("sync.retry_base_delay", "1s")

	var config SyncWorkerConfig
	if err := readAndUnmarshal(v, &config); err != nil {
		return nil, err
	}

	if config.Sync.GraveyardAddress == "" {
		return nil, errors.New("sync.graveyard_address is required")
	}

	return &config, nil
}

// LoadAPIConfig loads configuration for API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("query.rate_cache_ttl", "30s")
	setDatabaseDefaults(v)
	setNATSDefaults(v, "api")
	setServicesDefaults(v)

	var config APIConfig
	if err := readAndUnmarshal(v, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadSweeperConfig loads configuration for the sweeper program
func LoadSweeperConfig(configFile string, envPath string) (*SweeperConfig, error) {
	v := configureViper("sweeper", configFile, envPath)

	setDatabaseDefaults(v)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	setNATSDefaults(v, "sweeper")
	setServicesDefaults(v)
	v.SetDefault("offer_drift_sweeper.interval", "10m")
	v.SetDefault("offer_drift_sweeper.batch_size", 100)
	v.SetDefault("offer_drift_sweeper.worker.pool_size", 4)
	v.SetDefault("offer_drift_sweeper.worker.queue_size", 16)

	var cfg SweeperConfig
	if err := readAndUnmarshal(v, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Host == "" {
		return nil, errors.New("database.host is required")
	}
	if cfg.Database.DBName == "" {
		return nil, errors.New("database.dbname is required")
	}

	return &cfg, nil
}

func setDatabaseDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
}

func setNATSDefaults(v *viper.Viper, connectionName string) {
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "MARKET_CHANGES")
	v.SetDefault("nats.consumer_name", "sync-worker")
	v.SetDefault("nats.subject_prefix", "market")
	v.SetDefault("nats.connection_name", connectionName)
	v.SetDefault("nats.ack_wait", "60s")
	v.SetDefault("nats.max_deliver", 5)
}

func setServicesDefaults(v *viper.Viper) {
	v.SetDefault("services.timeout", "10s")
	v.SetDefault("services.max_retry_delay", "30s")
}

// readAndUnmarshal reads the config file, tolerating a missing one, and decodes it into out
func readAndUnmarshal(v *viper.Viper, out any) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use environment variables
	}

	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("FF_MARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.ack_wait",
		"nats.max_deliver",
		// Domain services
		"services.token_url",
		"services.sale_url",
		"services.auction_url",
		"services.offer_url",
		"services.user_url",
		"services.asset_url",
		"services.rate_url",
		"services.api_key",
		"services.timeout",
		"services.max_retry_delay",
		// Sync
		"sync.graveyard_address",
		"sync.dedupe_window",
		"sync.retry_max_attempts",
		"sync.retry_base_delay",
		// Worker
		"worker.pool_size",
		"worker.queue_size",
		// Query
		"query.rate_cache_ttl",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		"server.cors_allowed_origins",
		// Auth
		"auth.jwt_public_key",
		"auth.api_keys",
		// Sweeper
		"offer_drift_sweeper.interval",
		"offer_drift_sweeper.batch_size",
		"offer_drift_sweeper.worker.pool_size",
		"offer_drift_sweeper.worker.queue_size",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
