package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Proxy        ProxyConfig        `mapstructure:"proxy"`
	Geo          GeoConfig          `mapstructure:"geo"`
	Embedding    EmbeddingConfig    `mapstructure:"embedding"`
	ContentStore ContentStoreConfig `mapstructure:"content_store"`
	Admin        AdminConfig        `mapstructure:"admin"`
	Search       SearchConfig       `mapstructure:"search"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit"`
	OTP          OTPConfig          `mapstructure:"otp"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	GinMode      string        `mapstructure:"gin_mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ProxyConfig holds scraping proxy configuration
type ProxyConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
}

// GeoConfig holds geocoding provider configuration
type GeoConfig struct {
	// APIKeys is the space-separated key pool; calls sample it uniformly.
	APIKeys  string `mapstructure:"api_keys"`
	Endpoint string `mapstructure:"endpoint"`
}

// EmbeddingConfig holds embedding provider configuration
type EmbeddingConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Endpoint  string `mapstructure:"endpoint"`
	CacheSize int    `mapstructure:"cache_size"`
}

// ContentStoreConfig holds content store connection configuration
type ContentStoreConfig struct {
	URL             string        `mapstructure:"url"`
	Key             string        `mapstructure:"key"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AdminConfig holds the admin API key
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// SearchConfig holds comparison request configuration
type SearchConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// RateLimitConfig holds per-IP rate limiting configuration
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// OTPConfig holds one-time code configuration
type OTPConfig struct {
	TTLMinutes int `mapstructure:"ttl_minutes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Format  string `mapstructure:"format"`
	File    string `mapstructure:"file"`
	NoColor bool   `mapstructure:"no_color"`
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

var globalConfig *Config

// Load loads the configuration from file, .env, and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// Load .env file
	if err := loadEnvFile(); err != nil {
		// .env is optional, log but don't fail
		log.Debug().Err(err).Msg(".env file not loaded")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvPrefix("COMPARE_SERVICE")

	// Bind env keys for nested config
	bindEnvVars(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	globalConfig = &cfg
	return &cfg, nil
}

// Validate reports every missing required variable in one error so an
// operator can fix the whole set at once.
func (c *Config) Validate() error {
	var missing []string

	if c.Proxy.APIKey == "" {
		missing = append(missing, "PROXY_API_KEY")
	}
	if strings.TrimSpace(c.Geo.APIKeys) == "" {
		missing = append(missing, "MAP_API_KEYS")
	}
	if c.Embedding.APIKey == "" {
		missing = append(missing, "EMBEDDING_API_KEY")
	}
	if c.ContentStore.URL == "" {
		missing = append(missing, "CONTENT_STORE_URL")
	}
	if c.Admin.APIKey == "" {
		missing = append(missing, "ADMIN_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// MapAPIKeys splits the configured key pool.
func (c *Config) MapAPIKeys() []string {
	return strings.Fields(c.Geo.APIKeys)
}

// SearchTimeout returns the per-request comparison deadline.
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// OTPTTL returns how long one-time codes stay valid.
func (c *Config) OTPTTL() time.Duration {
	return time.Duration(c.OTP.TTLMinutes) * time.Minute
}

// loadEnvFile loads a .env file from the usual locations
func loadEnvFile() error {
	envPaths := []string{
		".",
		"./config",
	}

	for _, path := range envPaths {
		envFile := fmt.Sprintf("%s/.env", path)
		if _, err := os.Stat(envFile); err == nil {
			if err := loadDotEnvFile(envFile); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("no .env file found")
}

// loadDotEnvFile reads a .env file and sets environment variables
func loadDotEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			// Remove quotes if present
			value = strings.Trim(value, "\"'")
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}

// bindEnvVars binds environment variables to config keys
func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.host", "HOST")
	v.BindEnv("server.gin_mode", "GIN_MODE")

	// Upstream collaborators
	v.BindEnv("proxy.api_key", "PROXY_API_KEY")
	v.BindEnv("proxy.endpoint", "PROXY_ENDPOINT")
	v.BindEnv("geo.api_keys", "MAP_API_KEYS")
	v.BindEnv("geo.endpoint", "GEOCODING_ENDPOINT")
	v.BindEnv("embedding.api_key", "EMBEDDING_API_KEY")
	v.BindEnv("embedding.endpoint", "EMBEDDING_ENDPOINT")

	// Content store
	v.BindEnv("content_store.url", "CONTENT_STORE_URL")
	v.BindEnv("content_store.key", "CONTENT_STORE_KEY")

	// Admin
	v.BindEnv("admin.api_key", "ADMIN_API_KEY")

	// Request behavior
	v.BindEnv("search.timeout_seconds", "SEARCH_TIMEOUT_SECONDS")
	v.BindEnv("rate_limit.requests_per_second", "RATE_LIMIT_RPS")
	v.BindEnv("rate_limit.burst", "RATE_LIMIT_BURST")
	v.BindEnv("otp.ttl_minutes", "OTP_TTL_MINUTES")

	// Logging
	v.BindEnv("logging.level", "LOG_LEVEL")
	v.BindEnv("logging.file", "LOG_FILE")

	// Telemetry
	v.BindEnv("telemetry.enabled", "OTEL_ENABLED")
	v.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	// Content store defaults
	v.SetDefault("content_store.max_connections", 25)
	v.SetDefault("content_store.min_connections", 5)
	v.SetDefault("content_store.max_conn_lifetime", 1*time.Hour)
	v.SetDefault("content_store.max_conn_idle_time", 30*time.Minute)

	// Search defaults
	v.SetDefault("search.timeout_seconds", 45)
	v.SetDefault("embedding.cache_size", 4096)

	// Rate limit defaults
	v.SetDefault("rate_limit.requests_per_second", 10)
	v.SetDefault("rate_limit.burst", 20)

	// OTP defaults
	v.SetDefault("otp.ttl_minutes", 10)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.no_color", false)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}
