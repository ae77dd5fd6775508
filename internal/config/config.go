package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds process-level settings and secrets, loaded from the
// environment (optionally seeded from a .env file).
type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`
	Port   string `env:"PORT" default:"8080"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	DeepSeekAPIKey string `env:"DEEPSEEK_API_KEY"`
	NaverUsername  string `env:"NAVER_USERNAME"`
	NaverPassword  string `env:"NAVER_PASSWORD"`

	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`

	// BotConfig is the path to the YAML bot configuration file.
	BotConfig string `env:"BOT_CONFIG" default:"config/config.yaml"`
}

// Load reads the environment into a Config and validates it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	required := map[string]string{
		"DATABASE_URL":     cfg.DatabaseURL,
		"REDIS_URL":        cfg.RedisURL,
		"DEEPSEEK_API_KEY": cfg.DeepSeekAPIKey,
		"NAVER_USERNAME":   cfg.NaverUsername,
		"NAVER_PASSWORD":   cfg.NaverPassword,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}
