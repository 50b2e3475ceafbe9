package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
)

const (
	EnvSettings       = "NOVAULT_SETTINGS"
	EnvSites          = "NOVAULT_SITES"
	EnvLock           = "NOVAULT_LOCK"
	EnvLogLevel       = "NOVAULT_LOG_LEVEL"
	EnvClipboardClear = "NOVAULT_CLIPBOARD_CLEAR"
	EnvSessionTTL     = "NOVAULT_SESSION_TTL"
	EnvStdin          = "NOVAULT_STDIN"

	appDir = "novault"
)

// Config holds everything the CLI needs that isn't part of the novault Settings.
type Config struct {
	SettingsPath   string        `validate:"required"`
	SitesPath      string        `validate:"required"`
	LockPath       string        `validate:"required"`
	LogLevel       string        `validate:"oneof=trace debug info warn error disabled"`
	ClipboardClear time.Duration `validate:"gt=0"`
	SessionTTL     time.Duration `validate:"gte=0"`
	// Stdin reads secrets as lines from standard input instead of the terminal.
	Stdin bool
	// Stdout prints passwords instead of copying them to the clipboard.
	Stdout bool
}

// DefaultConfig places files in the user's config directory.
func DefaultConfig() Config {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, appDir)
	return Config{
		SettingsPath:   filepath.Join(dir, "settings.yaml"),
		SitesPath:      filepath.Join(dir, "sites.yaml"),
		LockPath:       filepath.Join(dir, "novault.lock"),
		LogLevel:       "warn",
		ClipboardClear: 30 * time.Second,
	}
}

// FromEnv returns the DefaultConfig overlaid with any NOVAULT_* environment variables.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	for env, target := range map[string]*string{
		EnvSettings: &cfg.SettingsPath,
		EnvSites:    &cfg.SitesPath,
		EnvLock:     &cfg.LockPath,
	} {
		if v, ok := os.LookupEnv(env); ok {
			v = strings.TrimSpace(v)
			if v == "" {
				return Config{}, fmt.Errorf("%s: empty path", env)
			}
			*target = v
		}
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
	}

	if v, ok := os.LookupEnv(EnvClipboardClear); ok {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvClipboardClear, err)
		}
		cfg.ClipboardClear = d
	}

	if v, ok := os.LookupEnv(EnvSessionTTL); ok {
		d, err := parseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvSessionTTL, err)
		}
		cfg.SessionTTL = d
	}

	if v, ok := os.LookupEnv(EnvStdin); ok {
		b, err := parseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvStdin, err)
		}
		cfg.Stdin = b
	}

	return cfg, nil
}

// BindFlags registers a flag for each setting, using the current values as defaults.
// Call it after FromEnv so flags take precedence over the environment.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.SettingsPath, "settings", c.SettingsPath, "Path to the settings file")
	fs.StringVar(&c.SitesPath, "sites", c.SitesPath, "Path to the sites file")
	fs.StringVar(&c.LockPath, "lock", c.LockPath, "Path to the lock file, which is also the trigger for 'get --wait'")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (trace|debug|info|warn|error|disabled)")
	fs.DurationVar(&c.ClipboardClear, "clear-after", c.ClipboardClear, "How long a copied password stays in the clipboard")
	fs.DurationVar(&c.SessionTTL, "session-ttl", c.SessionTTL, "How long 'loop' keeps the master secret cached, 0 means until exit")
	fs.BoolVar(&c.Stdin, "stdin", c.Stdin, "Read secrets as lines from stdin instead of the terminal")
	fs.BoolVar(&c.Stdout, "stdout", c.Stdout, "Print passwords to stdout instead of copying them to the clipboard")
}

var validate = validator.New()

// Validate checks that every field has a usable value.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation error: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(msgs, "\n  - "))
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", e.Field(), e.Param(), e.Value())
	case "gt":
		return fmt.Sprintf("%s must be positive (got: %v)", e.Field(), e.Value())
	case "gte":
		return fmt.Sprintf("%s must not be negative (got: %v)", e.Field(), e.Value())
	default:
		return fmt.Sprintf("%s failed '%s' validation", e.Field(), e.Tag())
	}
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("not a duration")
	}
	if d < 0 {
		return 0, errors.New("must not be negative")
	}
	return d, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, errors.New("invalid boolean")
	}
}
