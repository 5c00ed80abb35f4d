package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Pipeline   PipelineConfig
	PortLookup PortLookupConfig
	Cache      CacheConfig
	Batch      BatchConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
	MaxBodyMB    int64         `mapstructure:"max_body_mb"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// PipelineConfig holds normalization settings.
type PipelineConfig struct {
	Schema             string  `mapstructure:"schema"`
	MappingsPath       string  `mapstructure:"mappings_path"`
	GrossWeightDivisor float64 `mapstructure:"gross_weight_divisor"`
}

// PortProviderConfig holds settings for a single port code provider.
type PortProviderConfig struct {
	Provider    string `mapstructure:"provider"`
	URL         string `mapstructure:"url"`
	MaxRetries  int    `mapstructure:"max_retries"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// PortLookupConfig holds port code resolution settings.
type PortLookupConfig struct {
	Primary   PortProviderConfig `mapstructure:"primary"`
	Secondary PortProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config, or nil if port lookup is disabled.
func (p *PortLookupConfig) PrimaryConfig() *PortProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return nil
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *PortLookupConfig) SecondaryConfig() *PortProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// CacheConfig holds the port code cache settings. An empty path disables the cache.
type CacheConfig struct {
	Path string        `mapstructure:"path"`
	TTL  time.Duration `mapstructure:"ttl"`
}

// BatchConfig holds batch normalization settings.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	MaxItems    int `mapstructure:"max_items"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the BKC_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BKC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.max_body_mb", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Pipeline defaults
	v.SetDefault("pipeline.schema", "extended")
	v.SetDefault("pipeline.mappings_path", "configs/mappings.yaml")
	v.SetDefault("pipeline.gross_weight_divisor", 0)

	// Port lookup defaults
	v.SetDefault("port_lookup.primary.provider", "")
	v.SetDefault("port_lookup.primary.url", "")
	v.SetDefault("port_lookup.primary.max_retries", 1)
	v.SetDefault("port_lookup.primary.timeout_secs", 10)
	v.SetDefault("port_lookup.secondary.provider", "")
	v.SetDefault("port_lookup.secondary.url", "")
	v.SetDefault("port_lookup.secondary.max_retries", 0)
	v.SetDefault("port_lookup.secondary.timeout_secs", 10)

	// Cache defaults
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.ttl", "720h")

	// Batch defaults
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("batch.max_items", 500)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                        "BKC_SERVER_PORT",
		"server.read_timeout":                "BKC_SERVER_READ_TIMEOUT",
		"server.write_timeout":               "BKC_SERVER_WRITE_TIMEOUT",
		"server.environment":                 "BKC_SERVER_ENVIRONMENT",
		"server.max_body_mb":                 "BKC_SERVER_MAX_BODY_MB",
		"log.level":                          "BKC_LOG_LEVEL",
		"log.format":                         "BKC_LOG_FORMAT",
		"pipeline.schema":                    "BKC_PIPELINE_SCHEMA",
		"pipeline.mappings_path":             "BKC_MAPPINGS_PATH",
		"pipeline.gross_weight_divisor":      "BKC_PIPELINE_GROSS_WEIGHT_DIVISOR",
		"port_lookup.primary.provider":       "BKC_PORT_LOOKUP_PRIMARY_PROVIDER",
		"port_lookup.primary.url":            "BKC_PORT_LOOKUP_PRIMARY_URL",
		"port_lookup.primary.max_retries":    "BKC_PORT_LOOKUP_PRIMARY_MAX_RETRIES",
		"port_lookup.primary.timeout_secs":   "BKC_PORT_LOOKUP_PRIMARY_TIMEOUT_SECS",
		"port_lookup.secondary.provider":     "BKC_PORT_LOOKUP_SECONDARY_PROVIDER",
		"port_lookup.secondary.url":          "BKC_PORT_LOOKUP_SECONDARY_URL",
		"port_lookup.secondary.max_retries":  "BKC_PORT_LOOKUP_SECONDARY_MAX_RETRIES",
		"port_lookup.secondary.timeout_secs": "BKC_PORT_LOOKUP_SECONDARY_TIMEOUT_SECS",
		"cache.path":                         "BKC_CACHE_PATH",
		"cache.ttl":                          "BKC_CACHE_TTL",
		"batch.concurrency":                  "BKC_BATCH_CONCURRENCY",
		"batch.max_items":                    "BKC_BATCH_MAX_ITEMS",
		"cors.allowed_origins":               "BKC_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BKC_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BKC_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
		MaxBodyMB:    v.GetInt64("server.max_body_mb"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Pipeline = PipelineConfig{
		Schema:             v.GetString("pipeline.schema"),
		MappingsPath:       v.GetString("pipeline.mappings_path"),
		GrossWeightDivisor: v.GetFloat64("pipeline.gross_weight_divisor"),
	}
	cfg.PortLookup = PortLookupConfig{
		Primary: PortProviderConfig{
			Provider:    v.GetString("port_lookup.primary.provider"),
			URL:         v.GetString("port_lookup.primary.url"),
			MaxRetries:  v.GetInt("port_lookup.primary.max_retries"),
			TimeoutSecs: v.GetInt("port_lookup.primary.timeout_secs"),
		},
		Secondary: PortProviderConfig{
			Provider:    v.GetString("port_lookup.secondary.provider"),
			URL:         v.GetString("port_lookup.secondary.url"),
			MaxRetries:  v.GetInt("port_lookup.secondary.max_retries"),
			TimeoutSecs: v.GetInt("port_lookup.secondary.timeout_secs"),
		},
	}
	cfg.Cache = CacheConfig{
		Path: v.GetString("cache.path"),
		TTL:  v.GetDuration("cache.ttl"),
	}
	cfg.Batch = BatchConfig{
		Concurrency: v.GetInt("batch.concurrency"),
		MaxItems:    v.GetInt("batch.max_items"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
