// internal/common/config/config.go
package config

import "time"

// DefaultBackendBaseURL is the local-development backend address used when
// backend.base_url is not configured outside production.
const DefaultBackendBaseURL = "http://localhost:8000"

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Backend       BackendConfig      `mapstructure:"backend"`
	Server        ServerConfig       `mapstructure:"server"`
	Session       SessionConfig      `mapstructure:"session"`
	Gallery       GalleryConfig      `mapstructure:"gallery"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// IsProduction reports whether the app runs with the production environment.
func (a AppConfig) IsProduction() bool {
	return a.Environment == EnvProduction
}

// BackendConfig points at the portfolio generation service.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds, 0 disables the client-side deadline
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	CookieName   string `mapstructure:"cookie_name"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

// SessionConfig controls where per-browser submission snapshots live.
type SessionConfig struct {
	Store string      `mapstructure:"store"` // memory | redis
	TTL   int         `mapstructure:"ttl"`   // milliseconds
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type GalleryConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}

// NotificationConfig holds settings for the notify-completion worker.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
}

// Enabled reports whether any completion channel is switched on.
func (n NotificationConfig) Enabled() bool {
	return n.Email.Enabled || n.SNS.Enabled
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
