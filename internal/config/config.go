// Package config provides configuration loading for upsend.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/text/language"
)

// Defaults.
const (
	DefaultLocale           = "en"
	DefaultToastDuration    = 5 * time.Second
	DefaultAlertTimeout     = 5 * time.Second
	DefaultSearchDebounce   = 150 * time.Millisecond
	DefaultProgressDuration = 600 * time.Millisecond
	DefaultLogLevel         = "info"

	dirName = ".upsend"
)

// Config holds upsend settings.
type Config struct {
	DBPath           string        `mapstructure:"db_path" yaml:"db_path"`
	Locale           string        `mapstructure:"locale" yaml:"locale"`
	SenderEmail      string        `mapstructure:"sender_email" yaml:"sender_email"`
	ToastDuration    time.Duration `mapstructure:"toast_duration" yaml:"toast_duration"`
	AlertTimeout     time.Duration `mapstructure:"alert_timeout" yaml:"alert_timeout"`
	SearchDebounce   time.Duration `mapstructure:"search_debounce" yaml:"search_debounce"`
	ProgressDuration time.Duration `mapstructure:"progress_duration" yaml:"progress_duration"`
	LogFile          string        `mapstructure:"log_file" yaml:"log_file"`
	LogLevel         string        `mapstructure:"log_level" yaml:"log_level"`
}

// NewConfig returns a Config with the non-path defaults filled in.
func NewConfig() *Config {
	return &Config{
		Locale:           DefaultLocale,
		ToastDuration:    DefaultToastDuration,
		AlertTimeout:     DefaultAlertTimeout,
		SearchDebounce:   DefaultSearchDebounce,
		ProgressDuration: DefaultProgressDuration,
		LogLevel:         DefaultLogLevel,
	}
}

// Dir returns ~/.upsend.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// ApplyDefaults fills unset fields. Paths default into dir. A zero
// SearchDebounce is a valid setting (report the term on every key) and is
// left alone; NewConfig carries its default.
func (c *Config) ApplyDefaults(dir string) {
	if c.DBPath == "" {
		c.DBPath = filepath.Join(dir, "upsend.db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(dir, "upsend.log")
	}
	if c.Locale == "" {
		c.Locale = DefaultLocale
	}
	if c.ToastDuration == 0 {
		c.ToastDuration = DefaultToastDuration
	}
	if c.AlertTimeout == 0 {
		c.AlertTimeout = DefaultAlertTimeout
	}
	if c.ProgressDuration == 0 {
		c.ProgressDuration = DefaultProgressDuration
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if _, err := language.Parse(c.Locale); err != nil {
		errs = append(errs, fmt.Errorf("locale %q: %w", c.Locale, err))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level %q: %w", c.LogLevel, err))
	}
	for name, d := range map[string]time.Duration{
		"toast_duration":    c.ToastDuration,
		"alert_timeout":     c.AlertTimeout,
		"search_debounce":   c.SearchDebounce,
		"progress_duration": c.ProgressDuration,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, d))
		}
	}

	return errors.Join(errs...)
}

// Dir returns the directory holding the database; onboarding state lives there too.
func (c *Config) Dir() string {
	return filepath.Dir(c.DBPath)
}
