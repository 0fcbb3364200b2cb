package app

import (
	"strings"

	"github.com/stevehedden/kgcatalog/internal/cache"
	"github.com/stevehedden/kgcatalog/internal/catalog"
	"github.com/stevehedden/kgcatalog/internal/database"
	"github.com/stevehedden/kgcatalog/internal/sparql"
)

// ClientConfig converts the endpoint section into the SPARQL client representation.
func (c EndpointConfig) ClientConfig() sparql.Config {
	return sparql.Config{
		Endpoint:  strings.TrimSpace(c.URL),
		UserAgent: strings.TrimSpace(c.UserAgent),
		Timeout:   c.Timeout,
	}
}

// ServiceConfig converts the catalog section into the pipeline representation.
func (c CatalogConfig) ServiceConfig() catalog.Config {
	return catalog.Config{
		Limit: c.Limit,
		TTL:   c.CacheTTL,
		Weights: catalog.ScoringWeights{
			Label:       c.Scoring.Label,
			Description: c.Scoring.Description,
			Website:     c.Scoring.Website,
			License:     c.Scoring.License,
		},
	}
}

// RedisClientConfig converts the cache section into the cache package representation.
func (c CacheConfig) RedisClientConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Address:  strings.TrimSpace(c.Redis.Address),
		Username: strings.TrimSpace(c.Redis.Username),
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
		TLS:      c.Redis.TLS,
		Timeout:  c.Redis.Timeout,
	}
}

// DatabaseConfig converts the database section into the database package representation.
func (c DatabaseConfig) DatabaseConfig() database.Config {
	cfg := database.Config{
		Driver: strings.TrimSpace(c.Driver),
		Path:   strings.TrimSpace(c.Path),
		DSN:    strings.TrimSpace(c.DSN),
	}

	switch strings.ToLower(cfg.Driver) {
	case "postgres":
		cfg.Host = c.Postgres.Host
		cfg.Port = c.Postgres.Port
		cfg.Name = c.Postgres.Database
		cfg.User = c.Postgres.Username
		cfg.Password = c.Postgres.Password
	case "mysql":
		cfg.Host = c.MySQL.Host
		cfg.Port = c.MySQL.Port
		cfg.Name = c.MySQL.Database
		cfg.User = c.MySQL.Username
		cfg.Password = c.MySQL.Password
	}

	return cfg
}
