package config

import (
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ieltsly/speaking-results/pkg/helper"
)

type (
	// GatewayConfig configures the results-gateway binary: the reverse
	// proxy in front of the scoring API plus the static front end.
	GatewayConfig struct {
		Port         int           `yaml:"port"`
		Upstream     string        `yaml:"upstream"`       // scoring API origin, e.g. https://scoring.example.com
		StaticDir    string        `yaml:"static_dir"`     // directory holding the front-end build
		IndexFile    string        `yaml:"index_file"`     // SPA entry page, served for non-/api paths
		NotFoundJSON bool          `yaml:"not_found_json"` // answer 404 JSON when no upstream is configured
		CORS         CORSConfig    `yaml:"cors"`
		Logger       LoggerConfig  `yaml:"logger"`
		Metrics      MetricsConfig `yaml:"metrics"`
	}

	// ClientConfig configures the results-cli binary and the core
	// resolution pipeline.
	ClientConfig struct {
		BaseURL           string        `yaml:"base_url"`
		Timeout           time.Duration `yaml:"timeout"`
		RetryAttempts     int           `yaml:"retry_attempts"`
		RetryInitialDelay time.Duration `yaml:"retry_initial_delay"`
		CacheMaxAge       time.Duration `yaml:"cache_max_age"`
		Store             StoreConfig   `yaml:"store"`
		Logger            LoggerConfig  `yaml:"logger"`
	}

	// CORSConfig lists the origins allowed to call the gateway.
	CORSConfig struct {
		AllowOrigins     []string `yaml:"allow_origins"`
		AllowMethods     []string `yaml:"allow_methods"`
		AllowHeaders     []string `yaml:"allow_headers"`
		AllowCredentials bool     `yaml:"allow_credentials"`
	}

	// StoreConfig selects and configures the key-value store backing
	// the result cache.
	StoreConfig struct {
		Type   string       `yaml:"type"` // "memory", "redis" or "sqlite"
		Redis  RedisConfig  `yaml:"redis"`
		SQLite SQLiteConfig `yaml:"sqlite"`
	}

	// RedisConfig carries the connection settings for a redis-backed store.
	RedisConfig struct {
		Addr     string        `yaml:"addr"`
		Username string        `yaml:"username"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		Prefix   string        `yaml:"prefix"`
		TTL      time.Duration `yaml:"ttl"` // safety expiry applied on top of cache max-age
	}

	// SQLiteConfig carries the settings for a sqlite-backed store.
	SQLiteConfig struct {
		Path string `yaml:"path"`
	}

	// MetricsConfig configures the Prometheus registry exposed on /metrics.
	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}

	// LoggerConfig represents the logger configuration
	LoggerConfig struct {
		Level      string `yaml:"level"`       // debug, info, warn, error
		Format     string `yaml:"format"`      // json, console
		Output     string `yaml:"output"`      // stdout, file
		FilePath   string `yaml:"file_path"`   // path to log file when output is file
		MaxSize    int    `yaml:"max_size"`    // max size of log file in MB
		MaxBackups int    `yaml:"max_backups"` // max number of backup files
		MaxAge     int    `yaml:"max_age"`     // max age of backup files in days
		Compress   bool   `yaml:"compress"`    // whether to compress backup files
		Color      bool   `yaml:"color"`       // whether to use color in console output
		Stacktrace bool   `yaml:"stacktrace"`  // whether to include stacktrace in error logs
		TimeZone   string `yaml:"time_zone"`   // time zone for log timestamps, e.g., "UTC", default is local
		TimeFormat string `yaml:"time_format"` // time format for log timestamps, default is "2006-01-02 15:04:05"
	}
)

type Type interface {
	GatewayConfig | ClientConfig
}

// LoadConfig loads configuration from a YAML file with environment variable support
func LoadConfig[T Type](filename string) (*T, string, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfgPath := helper.GetCfgPath(filename)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, cfgPath, err
	}

	// Resolve environment variables
	data = resolveEnv(data)
	var cfg T
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, cfgPath, err
	}

	if clientCfg, ok := any(&cfg).(*ClientConfig); ok {
		clientCfg.SetDefaults()
	}
	if gwCfg, ok := any(&cfg).(*GatewayConfig); ok {
		gwCfg.SetDefaults()
	}

	return &cfg, cfgPath, nil
}

// SetDefaults fills in the documented defaults for unset fields.
func (c *ClientConfig) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:3000/api"
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = 3
	}
	if c.RetryInitialDelay <= 0 {
		c.RetryInitialDelay = time.Second
	}
	if c.CacheMaxAge <= 0 {
		c.CacheMaxAge = 5 * time.Minute
	}
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
}

// SetDefaults fills in the documented defaults for unset fields.
func (c *GatewayConfig) SetDefaults() {
	if c.Port == 0 {
		c.Port = 3000
	}
	if c.IndexFile == "" {
		c.IndexFile = "index.html"
	}
	if len(c.CORS.AllowMethods) == 0 {
		c.CORS.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowHeaders) == 0 {
		c.CORS.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "User-Agent", "X-Requested-With"}
	}
}

// resolveEnv replaces environment variable placeholders in YAML content
func resolveEnv(content []byte) []byte {
	regex := regexp.MustCompile(`\$\{(\w+)(?::([^}]*))?\}`)

	return regex.ReplaceAllFunc(content, func(match []byte) []byte {
		matches := regex.FindSubmatch(match)
		envKey := string(matches[1])
		var defaultValue string

		if len(matches) > 2 {
			defaultValue = string(matches[2])
		}

		if value, exists := os.LookupEnv(envKey); exists {
			return []byte(value)
		}
		return []byte(defaultValue)
	})
}
