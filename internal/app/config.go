package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/sportsreel-backend/internal/data/db"
	"github.com/yungbote/sportsreel-backend/internal/jobs/retention"
	"github.com/yungbote/sportsreel-backend/internal/jobs/worker"
	"github.com/yungbote/sportsreel-backend/internal/modules/recommend"
	"github.com/yungbote/sportsreel-backend/internal/observability"
	"github.com/yungbote/sportsreel-backend/internal/platform/cachestore"
	"github.com/yungbote/sportsreel-backend/internal/platform/inference"
)

type HTTPConfig struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" validate:"required"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

type LogConfig struct {
	Mode  string `yaml:"mode" env:"LOG_MODE"`
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

type CacheConfig struct {
	Backend   string                 `yaml:"backend" env:"CACHE_BACKEND" validate:"oneof=redis badger"`
	BadgerDir string                 `yaml:"badger_dir" env:"BADGER_DIR"`
	Redis     cachestore.RedisConfig `yaml:"redis"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET_KEY"`
}

type Config struct {
	Env       string                   `yaml:"env" env:"APP_ENV"`
	HTTP      HTTPConfig               `yaml:"http"`
	Log       LogConfig                `yaml:"log"`
	Database  db.Config                `yaml:"database"`
	Cache     CacheConfig              `yaml:"cache"`
	Inference inference.Config         `yaml:"inference"`
	Recommend recommend.Config         `yaml:"recommend"`
	Worker    worker.Config            `yaml:"worker"`
	Retention retention.Config         `yaml:"retention"`
	Auth      AuthConfig               `yaml:"auth"`
	Otel      observability.OtelConfig `yaml:"otel"`
}

func DefaultConfig() Config {
	return Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{Mode: "development", Level: "info"},
		Database: db.Config{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "sportsreel",
			SSLMode: "disable",
			MaxOpen: 20,
		},
		Cache:     CacheConfig{Backend: "badger"},
		Inference: inference.DefaultConfig(),
		Recommend: recommend.DefaultConfig(),
		Worker:    worker.DefaultConfig(),
		Retention: retention.DefaultConfig(),
		Otel: observability.OtelConfig{
			ServiceName: "sportsreel-backend",
			SampleRatio: 1,
		},
	}
}

// LoadConfig layers defaults, an optional YAML file and the environment, then validates.
// path falls back to CONFIG_FILE.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
