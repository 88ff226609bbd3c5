package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/mnemon/mnemon/internal/fsrs"
)

// Config holds all mnemon configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type ServerConfig struct {
	Bind string `mapstructure:"bind"`
	Port int    `mapstructure:"port"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// RetentionConfig exposes the model's policy constants. Leave zero to
// use the defaults the system was calibrated against.
type RetentionConfig struct {
	TargetRetention       float64 `mapstructure:"target_retention"`
	MaxIntervalDays       int     `mapstructure:"max_interval_days"`
	BaseStability         float64 `mapstructure:"base_stability"`
	LowRetentionThreshold float64 `mapstructure:"low_retention_threshold"`
	LowRetentionWeight    float64 `mapstructure:"low_retention_weight"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37780,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Retention: RetentionConfig{
			TargetRetention:       0.9,
			MaxIntervalDays:       365,
			BaseStability:         1.0,
			LowRetentionThreshold: 0.8,
			LowRetentionWeight:    0.3,
		},
	}
}

// Load reads configuration from an optional file plus MNEMON_* env
// overrides, falling back to Default for anything unset. With an empty
// configFile it searches the working directory and ~/.config/mnemon.
func Load(configFile string) (Config, error) {
	def := Default()

	v := viper.New()
	v.SetConfigType("toml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/mnemon")
	}

	v.SetDefault("server.bind", def.Server.Bind)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("retention.target_retention", def.Retention.TargetRetention)
	v.SetDefault("retention.max_interval_days", def.Retention.MaxIntervalDays)
	v.SetDefault("retention.base_stability", def.Retention.BaseStability)
	v.SetDefault("retention.low_retention_threshold", def.Retention.LowRetentionThreshold)
	v.SetDefault("retention.low_retention_weight", def.Retention.LowRetentionWeight)

	v.SetEnvPrefix("MNEMON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config in the search path is fine; anything else
		// (explicit file absent, parse failure) is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Retention.TargetRetention <= 0 || cfg.Retention.TargetRetention >= 1 {
		return Config{}, fmt.Errorf("retention.target_retention must be in (0,1), got %v", cfg.Retention.TargetRetention)
	}
	if cfg.Retention.MaxIntervalDays < 1 {
		return Config{}, fmt.Errorf("retention.max_interval_days must be >= 1, got %d", cfg.Retention.MaxIntervalDays)
	}

	return cfg, nil
}

// Params converts the retention section into model parameters.
func (c *Config) Params() fsrs.Params {
	p := fsrs.DefaultParams()
	if c.Retention.TargetRetention > 0 {
		p.TargetRetention = c.Retention.TargetRetention
	}
	if c.Retention.MaxIntervalDays > 0 {
		p.MaxIntervalDays = c.Retention.MaxIntervalDays
	}
	if c.Retention.BaseStability > 0 {
		p.BaseStability = c.Retention.BaseStability
	}
	if c.Retention.LowRetentionThreshold > 0 {
		p.LowRetentionThreshold = c.Retention.LowRetentionThreshold
	}
	if c.Retention.LowRetentionWeight > 0 {
		p.LowRetentionWeight = c.Retention.LowRetentionWeight
	}
	return p
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
