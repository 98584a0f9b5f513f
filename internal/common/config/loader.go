// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load reads configs/config.yaml, merges config.<env>.yaml on top and applies
// environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = EnvDevelopment
	}

	// 1. base config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// 2. environment overlay
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// Enable ENV override like BACKEND_BASE_URL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it during Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "portfolio-builder")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "")

	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.timeout", 600000)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cookie_name", "pb_session")
	v.SetDefault("server.read_timeout", 15000)
	v.SetDefault("server.write_timeout", 15000)

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl", 3600000)
	v.SetDefault("session.redis.address", "")
	v.SetDefault("session.redis.password", "")
	v.SetDefault("session.redis.db", 0)
	v.SetDefault("session.redis.key_prefix", "portfolio")

	v.SetDefault("gallery.registry_path", "")

	v.SetDefault("notifications.aws.region", "")
	v.SetDefault("notifications.email.enabled", false)
	v.SetDefault("notifications.email.from_email", "")
	v.SetDefault("notifications.email.to_email", "")
	v.SetDefault("notifications.sns.enabled", false)
	v.SetDefault("notifications.sns.topic_arn", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// loadEnvFile loads .env from the first location that has one.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env", // tests in test/e2e/
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills values that deployments commonly pass under
// shorter variable names.
func overrideEmptyConfig(cfg *Config) {
	if cfg.App.Environment == "" {
		if val := os.Getenv("APP_ENVIRONMENT"); val != "" {
			cfg.App.Environment = val
		}
	}
	if cfg.Backend.BaseURL == "" {
		if val := os.Getenv("PORTFOLIO_API_URL"); val != "" {
			cfg.Backend.BaseURL = val
		}
	}
	if cfg.Session.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Session.Redis.Address = val
		}
	}
	if cfg.Notifications.AWS.Region == "" {
		if val := os.Getenv("AWS_REGION"); val != "" {
			cfg.Notifications.AWS.Region = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Environment == "" {
		cfg.App.Environment = EnvDevelopment
	}

	// Production must name its backend explicitly; see validateConfig.
	if cfg.Backend.BaseURL == "" && !cfg.App.IsProduction() {
		cfg.Backend.BaseURL = DefaultBackendBaseURL
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.Timeout < 0 {
		cfg.Backend.Timeout = 0
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.CookieName == "" {
		cfg.Server.CookieName = "pb_session"
	}

	if cfg.Session.Store == "" {
		cfg.Session.Store = "memory"
	}
	if cfg.Session.TTL <= 0 {
		cfg.Session.TTL = 3600000
	}
	if cfg.Session.Redis.KeyPrefix == "" {
		cfg.Session.Redis.KeyPrefix = "portfolio"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required in %s", cfg.App.Environment)
	}
	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute http(s) URL, got %q", cfg.Backend.BaseURL)
	}

	switch cfg.Session.Store {
	case "memory":
	case "redis":
		if cfg.Session.Redis.Address == "" {
			return fmt.Errorf("session.redis.address is required when session.store is redis")
		}
	default:
		return fmt.Errorf("session.store must be memory or redis, got %q", cfg.Session.Store)
	}

	n := cfg.Notifications
	if n.Enabled() && n.AWS.Region == "" {
		return fmt.Errorf("notifications.aws.region is required when notifications are enabled")
	}
	if n.Email.Enabled && (n.Email.FromEmail == "" || n.Email.ToEmail == "") {
		return fmt.Errorf("notifications.email.from_email and to_email are required")
	}
	if n.SNS.Enabled && n.SNS.TopicARN == "" {
		return fmt.Errorf("notifications.sns.topic_arn is required")
	}

	return nil
}
