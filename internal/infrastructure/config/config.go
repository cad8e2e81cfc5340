package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`

	Engine EngineConfig `koanf:"engine"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// Attempt rate limiting per actor.
	AttemptsPerMinute int `koanf:"attempts_per_minute"`
	AttemptBurst      int `koanf:"attempt_burst"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxConns        int           `koanf:"max_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// EngineConfig carries the global crime-engine defaults. Per-guild
// admin settings start from these values.
type EngineConfig struct {
	BailMultiplier   float64       `koanf:"bail_multiplier" validate:"gte=0"`
	AllowBail        bool          `koanf:"allow_bail"`
	MinStealBalance  int64         `koanf:"min_steal_balance" validate:"gte=0"`
	MaxStealAmount   int64         `koanf:"max_steal_amount" validate:"gte=0"`
	EnableEvents     bool          `koanf:"enable_events"`
	NotifyCost       int64         `koanf:"notify_cost" validate:"gte=0"`
	PacingDelays     bool          `koanf:"pacing_delays"`
	ConfirmTimeout   time.Duration `koanf:"confirm_timeout"`
	JailbreakEnabled bool          `koanf:"jailbreak_enabled"`
}

// Load layers defaults, an optional YAML file and UCE_-prefixed
// environment variables, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:              8080,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			ShutdownTimeout:   30 * time.Second,
			AttemptsPerMinute: 30,
			AttemptBurst:      5,
		},
		Database: DatabaseConfig{
			MaxConns:        25,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Engine: EngineConfig{
			BailMultiplier:   0.35,
			AllowBail:        true,
			MinStealBalance:  100,
			MaxStealAmount:   1000,
			EnableEvents:     true,
			NotifyCost:       10000,
			PacingDelays:     true,
			ConfirmTimeout:   60 * time.Second,
			JailbreakEnabled: true,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path == "" {
		path = "configs/config.yaml"
	}
	// Config file is optional.
	_ = k.Load(file.Provider(path), yaml.Parser())

	// Double underscore separates nesting levels so keys that contain
	// underscores survive: UCE_ENGINE__ALLOW_BAIL -> engine.allow_bail.
	if err := k.Load(env.Provider("UCE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "UCE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(cfg.Engine); err != nil {
		return nil, fmt.Errorf("validating engine config: %w", err)
	}

	return &cfg, nil
}
