// Package config loads application configuration from config.yaml and the
// environment and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Google GoogleConfig `yaml:"google" mapstructure:"google"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// GoogleConfig holds Google Maps API credentials and limits.
type GoogleConfig struct {
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
	// RateLimit is the shared queries-per-second budget for all Maps API
	// calls made by this process.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SearchConfig holds search defaults and tuning.
type SearchConfig struct {
	DefaultRadius    int `yaml:"default_radius" mapstructure:"default_radius"`
	DefaultLimit     int `yaml:"default_limit" mapstructure:"default_limit"`
	OversampleFactor int `yaml:"oversample_factor" mapstructure:"oversample_factor"`
	CacheTTLHours    int `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// StoreConfig configures the response cache backend. An empty driver
// disables caching entirely.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the dashboard-facing API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
	// AllowedOrigins is the CORS allowlist for the dashboard UI.
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("PRESENCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. api_key defaults empty so the PRESENCE_GOOGLE_API_KEY env
	// var binds even without a config file.
	v.SetDefault("google.api_key", "")
	v.SetDefault("google.rate_limit", 10)
	v.SetDefault("search.default_radius", 5000)
	v.SetDefault("search.default_limit", 20)
	v.SetDefault("search.oversample_factor", 3)
	v.SetDefault("search.cache_ttl_hours", 24)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "presence-cache.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
