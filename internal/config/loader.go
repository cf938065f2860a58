package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the config file looked up inside the upsend directory.
	ConfigFileName = "config.yaml"

	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "UPSEND"
)

var keys = []string{
	"db_path",
	"locale",
	"sender_email",
	"toast_duration",
	"alert_timeout",
	"search_debounce",
	"progress_duration",
	"log_file",
	"log_level",
}

// Loader handles loading configuration from files and environment.
type Loader struct {
	v        *viper.Viper
	dir      string
	envFiles []string
}

// NewLoader creates a loader rooted at dir, the directory holding the
// config file and the default database.
func NewLoader(dir string) *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	return &Loader{v: v, dir: dir, envFiles: []string{".env", ".env.local"}}
}

// Viper exposes the underlying instance so CLI flags can be bound to it.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads path (or dir/config.yaml when empty), merges .env files and
// UPSEND_* variables, applies defaults and validates. A missing default
// config file is not an error; a missing explicit one is.
func (l *Loader) Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(l.dir, ConfigFileName)
	}

	l.loadDotEnv()

	if _, err := os.Stat(path); err == nil {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, &LoadError{Path: path, Message: "failed to read config file", Err: err}
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Path: path, Message: "config file not found", Err: err}
	}

	cfg := NewConfig()
	if err := l.v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to parse config", Err: err}
	}

	cfg.ApplyDefaults(l.dir)

	if err := cfg.Validate(); err != nil {
		return nil, &LoadError{Path: path, Message: "configuration validation failed", Err: err}
	}

	return cfg, nil
}

// loadDotEnv loads .env files without overriding variables already set.
func (l *Loader) loadDotEnv() {
	for _, f := range l.envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func decodeHook(dc *mapstructure.DecoderConfig) {
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// LoadError represents an error that occurred while loading configuration.
type LoadError struct {
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
