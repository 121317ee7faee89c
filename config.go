// Package bsets implements configuration loading for the engine and
// its peripheral subpackages.
//
// Config is loaded from YAML with environment-variable overrides,
// following the same layered-defaults pattern used throughout the
// corpus this engine was built alongside: typed nested structs per
// subsystem, a defaultConfig baseline, then env overrides on top.
package bsets

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level engine configuration.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Postgres PostgresConfig `yaml:"postgres"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Cache    CacheConfig    `yaml:"cache"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// EngineConfig controls the core scoring behavior.
type EngineConfig struct {
	SmoothingC      float64       `yaml:"smoothingC"`
	TopKDefault     int           `yaml:"topKDefault"`
	AttributionMode string        `yaml:"attributionMode"` // "present_only" or "include_absent"
	QueryTimeout    time.Duration `yaml:"queryTimeout"`
}

// ParsedAttributionMode resolves AttributionMode to its typed form,
// defaulting to PresentOnly for an empty or unrecognized value.
func (e EngineConfig) ParsedAttributionMode() AttributionMode {
	if e.AttributionMode == "include_absent" {
		return IncludeAbsent
	}
	return PresentOnly
}

// PostgresConfig holds connection parameters for an
// ingest.PostgresSource FeaturePairSource.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	Query           string        `yaml:"query"` // query yielding (item_id, feature) rows
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// KafkaConfig holds broker and topic settings for an
// ingest.KafkaSource FeaturePairSource.
type KafkaConfig struct {
	Brokers       []string `yaml:"brokers"`
	Topic         string   `yaml:"topic"`
	ConsumerGroup string   `yaml:"consumerGroup"`
}

// RedisConfig holds connection and TTL settings for the querycache
// subpackage.
type RedisConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	PoolSize  int           `yaml:"poolSize"`
	ResultTTL time.Duration `yaml:"resultTTL"`
}

// CacheConfig controls the on-disk binary and SQLite cache bundles.
type CacheConfig struct {
	BundlePath string `yaml:"bundlePath"`
	SQLitePath string `yaml:"sqlitePath"`
}

// MetricsConfig controls the Prometheus metrics registry.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// LoadConfig reads a YAML config file (if path is non-empty) and
// applies BSETS_*-prefixed environment-variable overrides on top of
// production-ready defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("bsets: reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("bsets: parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			SmoothingC:      DefaultSmoothingC,
			TopKDefault:     10,
			AttributionMode: "present_only",
			QueryTimeout:    5 * time.Second,
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "bsets",
			User:            "bsets",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{"localhost:9092"},
			Topic:         "feature-pairs",
			ConsumerGroup: "bsets-builder",
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			DB:        0,
			PoolSize:  10,
			ResultTTL: 60 * time.Second,
		},
		Cache: CacheConfig{
			BundlePath: "index.bsetscache",
			SQLitePath: "index.sqlite",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "bsets",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BSETS_SMOOTHING_C"); v != "" {
		if c, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Engine.SmoothingC = c
		}
	}
	if v := os.Getenv("BSETS_TOPK_DEFAULT"); v != "" {
		if k, err := strconv.Atoi(v); err == nil {
			cfg.Engine.TopKDefault = k
		}
	}
	if v := os.Getenv("BSETS_ATTRIBUTION_MODE"); v != "" {
		cfg.Engine.AttributionMode = v
	}
	if v := os.Getenv("BSETS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("BSETS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("BSETS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("BSETS_CACHE_BUNDLE_PATH"); v != "" {
		cfg.Cache.BundlePath = v
	}
}
