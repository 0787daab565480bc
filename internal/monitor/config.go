package monitor

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ariabot/aria-backend/internal/pkg/logger"
	"github.com/ariabot/aria-backend/internal/utils"
)

// Config drives the monitoring scheduler. Loaded from an optional YAML file
// (MONITOR_CONFIG_PATH) with environment overrides on top.
type Config struct {
	EmailInterval  time.Duration `yaml:"email_interval"`
	SocialInterval time.Duration `yaml:"social_interval"`
	FetchLimit     int           `yaml:"fetch_limit"`
	UserParallel   int           `yaml:"user_parallel"`
	DefaultWake    string        `yaml:"default_wake"`
	DefaultSleep   string        `yaml:"default_sleep"`
}

func DefaultConfig() Config {
	return Config{
		EmailInterval:  5 * time.Minute,
		SocialInterval: 15 * time.Minute,
		FetchLimit:     20,
		UserParallel:   1,
		DefaultWake:    "08:00",
		DefaultSleep:   "21:00",
	}
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := DefaultConfig()

	if path := utils.GetEnv("MONITOR_CONFIG_PATH", "", log); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read monitor config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse monitor config: %w", err)
		}
	}

	if v := utils.GetEnvAsInt("MONITOR_EMAIL_INTERVAL_SECONDS", 0, log); v > 0 {
		cfg.EmailInterval = time.Duration(v) * time.Second
	}
	if v := utils.GetEnvAsInt("MONITOR_SOCIAL_INTERVAL_SECONDS", 0, log); v > 0 {
		cfg.SocialInterval = time.Duration(v) * time.Second
	}
	if v := utils.GetEnvAsInt("MONITOR_FETCH_LIMIT", 0, log); v > 0 {
		cfg.FetchLimit = v
	}
	if v := utils.GetEnvAsInt("MONITOR_USER_PARALLEL", 0, log); v > 0 {
		cfg.UserParallel = v
	}

	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 20
	}
	if cfg.UserParallel <= 0 {
		cfg.UserParallel = 1
	}
	return cfg, nil
}

func (c Config) intervalFor(source string) time.Duration {
	if source == "social" {
		return c.SocialInterval
	}
	return c.EmailInterval
}
