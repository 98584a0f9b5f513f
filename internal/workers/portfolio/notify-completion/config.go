package notifycompletion

import (
	"fmt"
	"time"

	"portfolio-builder/internal/common/config"
)

type Config struct {
	EmailEnabled bool
	SNSEnabled   bool
	FromEmail    string
	ToEmail      string
	TopicARN     string
	AWSRegion    string
	Timeout      time.Duration
}

func LoadConfig(appConfig *config.Config) *Config {
	cfg := &Config{Timeout: 30 * time.Second}
	if appConfig == nil {
		return cfg
	}
	n := appConfig.Notifications
	cfg.EmailEnabled = n.Email.Enabled
	cfg.SNSEnabled = n.SNS.Enabled
	cfg.FromEmail = n.Email.FromEmail
	cfg.ToEmail = n.Email.ToEmail
	cfg.TopicARN = n.SNS.TopicARN
	cfg.AWSRegion = n.AWS.Region
	return cfg
}

// Enabled reports whether any channel is switched on.
func (c *Config) Enabled() bool {
	return c.EmailEnabled || c.SNSEnabled
}

func (c *Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.AWSRegion == "" {
		return fmt.Errorf("aws region is required when notifications are enabled")
	}
	if c.EmailEnabled && (c.FromEmail == "" || c.ToEmail == "") {
		return fmt.Errorf("from and to addresses are required for email notifications")
	}
	if c.SNSEnabled && c.TopicARN == "" {
		return fmt.Errorf("topic ARN is required for SNS notifications")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
