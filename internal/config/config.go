// internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	BaseURL     string
	LogLevel    string

	Onboarding OnboardingConfig
	Retention  RetentionConfig
	Mail       MailConfig

	RedisAddr string
	DedupeTTL time.Duration
	AMQPURL   string
}

type OnboardingConfig struct {
	Enabled  bool
	Interval time.Duration
}

type RetentionConfig struct {
	StartDelay time.Duration
	Interval   time.Duration
	SendDelay  time.Duration
}

type MailConfig struct {
	Provider       string
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

// LoadDotEnv loads a .env file if one exists. A missing file is reported but not fatal.
func LoadDotEnv(files ...string) error {
	return godotenv.Load(files...)
}

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: databaseURL(),
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		BaseURL:     strings.TrimRight(os.Getenv("APP_BASE_URL"), "/"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		AMQPURL:     os.Getenv("AMQP_URL"),
		Mail: MailConfig{
			Provider:       os.Getenv("MAIL_PROVIDER"),
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			FromEmail:      os.Getenv("MAIL_FROM_EMAIL"),
			FromName:       os.Getenv("MAIL_FROM_NAME"),
		},
	}

	var err error
	if cfg.Onboarding.Enabled, err = envBool("ONBOARDING_EMAILS_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Onboarding.Interval, err = envDuration("ONBOARDING_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.Retention.StartDelay, err = envDuration("RETENTION_START_DELAY", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Retention.Interval, err = envDuration("RETENTION_INTERVAL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.Retention.SendDelay, err = envDuration("RETENTION_SEND_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.DedupeTTL, err = envDuration("DEDUPE_TTL", 72*time.Hour); err != nil {
		return nil, err
	}

	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Mail.Provider == "" {
		cfg.Mail.Provider = "log"
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "Bakery HQ"
	}
}

// Validate checks the configuration for values the schedulers cannot run without.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL or DB_* variables are required")
	}
	if err := ValidateBaseURL(c.BaseURL); err != nil {
		return err
	}
	if c.Onboarding.Interval <= 0 {
		return fmt.Errorf("ONBOARDING_INTERVAL must be positive")
	}
	if c.Retention.Interval <= 0 {
		return fmt.Errorf("RETENTION_INTERVAL must be positive")
	}
	if c.Retention.SendDelay < 0 || c.Retention.StartDelay < 0 {
		return fmt.Errorf("retention delays cannot be negative")
	}
	switch c.Mail.Provider {
	case "log":
	case "sendgrid":
		if c.Mail.SendGridAPIKey == "" || c.Mail.FromEmail == "" {
			return fmt.Errorf("sendgrid provider requires SENDGRID_API_KEY and MAIL_FROM_EMAIL")
		}
	default:
		return fmt.Errorf("unsupported mail provider: %s", c.Mail.Provider)
	}
	return nil
}

// ValidateBaseURL requires an absolute http(s) URL with a host.
func ValidateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("APP_BASE_URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("APP_BASE_URL is not a valid URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("APP_BASE_URL must be an absolute http(s) URL, got %q", raw)
	}
	return nil
}

func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	user := os.Getenv("DB_USER")
	host := os.Getenv("DB_HOST")
	if user == "" || host == "" {
		return ""
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		user, os.Getenv("DB_PASSWORD"), host, port, os.Getenv("DB_NAME"),
	)
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
