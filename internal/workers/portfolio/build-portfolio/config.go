package buildportfolio

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"portfolio-builder/internal/common/config"
)

type Config struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"` // 0 waits for the backend indefinitely
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL: config.DefaultBackendBaseURL,
		Timeout: 10 * time.Minute,
	}
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url must be an absolute http(s) URL: %q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, custom *Config) *Config {
	if custom != nil {
		return custom
	}
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}
	if appConfig.Backend.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(appConfig.Backend.BaseURL, "/")
	}
	cfg.Timeout = config.GetDuration(appConfig.Backend.Timeout)
	return cfg
}
