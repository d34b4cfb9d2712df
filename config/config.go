package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the dashboard.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
	Session   SessionConfig   `mapstructure:"session"`
	Chart     ChartConfig     `mapstructure:"chart"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Listen   string `mapstructure:"listen"`
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// IngestConfig bounds the ingestion stage.
type IngestConfig struct {
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
}

func (i IngestConfig) Validate() error {
	if i.MaxUploadBytes <= 0 {
		return fmt.Errorf("ingest.max_upload_bytes must be > 0")
	}
	if i.FetchTimeout <= 0 {
		return fmt.Errorf("ingest.fetch_timeout must be > 0")
	}
	return nil
}

// SessionConfig selects and configures the session store backend.
type SessionConfig struct {
	Store string        `mapstructure:"store"` // inmemory or redis
	TTL   time.Duration `mapstructure:"ttl"`
	Redis RedisConfig   `mapstructure:"redis"`
}

func (s SessionConfig) Validate() error {
	switch s.Store {
	case "inmemory":
	case "redis":
		if err := s.Redis.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("session.store must be inmemory or redis, got %q", s.Store)
	}
	if s.TTL <= 0 {
		return fmt.Errorf("session.ttl must be > 0")
	}
	return nil
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Validate() error {
	if strings.TrimSpace(r.Host) == "" {
		return fmt.Errorf("session.redis.host required")
	}
	if strings.TrimSpace(r.Port) == "" {
		return fmt.Errorf("session.redis.port required")
	}
	return nil
}

// Addr returns host:port for the redis client.
func (r RedisConfig) Addr() string { return fmt.Sprintf("%s:%s", r.Host, r.Port) }

// ChartConfig contains chart construction and rasterization settings.
type ChartConfig struct {
	TransitionMS int `mapstructure:"transition_ms"`
	PNGWidth     int `mapstructure:"png_width"`
	PNGHeight    int `mapstructure:"png_height"`
}

func (c ChartConfig) Validate() error {
	if c.PNGWidth <= 0 || c.PNGHeight <= 0 {
		return fmt.Errorf("chart.png_width and chart.png_height must be > 0")
	}
	return nil
}

// TelemetryConfig toggles the metrics endpoint.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig loads config from file, falling back to defaults and
// VIZBOARD_* environment variables when no file is present.
func LoadConfig(path string) *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("general.listen", ":8050")
	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("ingest.max_upload_bytes", int64(32<<20))
	v.SetDefault("ingest.fetch_timeout", 15*time.Second)
	v.SetDefault("session.store", "inmemory")
	v.SetDefault("session.ttl", 48*time.Hour)
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("chart.transition_ms", 500)
	v.SetDefault("chart.png_width", 960)
	v.SetDefault("chart.png_height", 540)
	v.SetDefault("telemetry.enabled", true)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("VIZBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Ingest.Validate(); err != nil {
		panic(err)
	}
	if err := config.Session.Validate(); err != nil {
		panic(err)
	}
	if err := config.Chart.Validate(); err != nil {
		panic(err)
	}
	return &config
}
