package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the catalog server.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Endpoint   EndpointConfig   `mapstructure:"endpoint"`
	Catalog    CatalogConfig    `mapstructure:"catalog"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// EndpointConfig describes the SPARQL query service.
type EndpointConfig struct {
	URL string `mapstructure:"url"`
	// UserAgent must identify the deployment; the Wikidata query service
	// rejects anonymous clients.
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CatalogConfig tunes the query/clean/rank pipeline.
type CatalogConfig struct {
	Limit    int           `mapstructure:"limit"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Scoring  ScoringConfig `mapstructure:"scoring"`
	Refresh  RefreshConfig `mapstructure:"refresh"`
}

// ScoringConfig weights the completeness score per populated field.
type ScoringConfig struct {
	Label       int `mapstructure:"label"`
	Description int `mapstructure:"description"`
	Website     int `mapstructure:"website"`
	License     int `mapstructure:"license"`
}

// RefreshConfig controls the background warm-refresh scheduler.
type RefreshConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	WarmSchedule  string `mapstructure:"warm_schedule"`
	PurgeSchedule string `mapstructure:"purge_schedule"`
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	// Driver is one of memory, database, redis.
	Driver string           `mapstructure:"driver"`
	Redis  RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig describes connection options for the supported databases.
// The database is only opened when the cache driver is "database".
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("KGCATALOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("endpoint.url", "https://query.wikidata.org/sparql")
	v.SetDefault("endpoint.user_agent", "kgcatalog/1.0 (https://github.com/stevehedden/kgcatalog)")
	v.SetDefault("endpoint.timeout", "60s")

	v.SetDefault("catalog.limit", 500)
	v.SetDefault("catalog.cache_ttl", "6h")
	v.SetDefault("catalog.scoring.label", 1)
	v.SetDefault("catalog.scoring.description", 1)
	v.SetDefault("catalog.scoring.website", 1)
	v.SetDefault("catalog.scoring.license", 1)
	v.SetDefault("catalog.refresh.enabled", true)
	v.SetDefault("catalog.refresh.warm_schedule", "@every 6h")
	v.SetDefault("catalog.refresh.purge_schedule", "@hourly")

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/kgcatalog.sqlite")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
