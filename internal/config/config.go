package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig mirrors internal/logging.RotationConfig in a
// viper/mapstructure-friendly shape.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size" yaml:"max_size"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Daily      bool   `mapstructure:"daily" yaml:"daily"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" yaml:"level"`
	Path       string            `mapstructure:"path" yaml:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation" yaml:"rotation"`
	Components map[string]string `mapstructure:"components" yaml:"components"`
}

// Config is treeward's full settings surface.
type Config struct {
	// Policy is the default checksum policy for status: "never",
	// "when_possibly_modified", or "always". verify always uses "always".
	Policy string `mapstructure:"policy" yaml:"policy"`
	// AllowInit is the default for update's --allow-init when the flag
	// isn't passed explicitly.
	AllowInit bool          `mapstructure:"allow_init" yaml:"allow_init"`
	Logging   LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// Load reads configuration from $XDG_CONFIG_HOME/treeward/config.yaml (or
// ~/.config/treeward/config.yaml), overlaid with TREEWARD_-prefixed
// environment variables. A missing config file is not an error: Load
// falls back to defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "treeward"))
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("determining home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "treeward"))

	v.SetEnvPrefix("TREEWARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Logging.Path == "" {
		cfg.Logging.Path = DefaultLogPath()
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("policy", DefaultPolicy)
	v.SetDefault("allow_init", DefaultAllowInit)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"planner": "info",
		"walker":  "info",
	})
}

// ConfigDir returns $XDG_CONFIG_HOME/treeward (or ~/.config/treeward).
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "treeward"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "treeward"), nil
}

// StateDir returns $XDG_STATE_HOME/treeward, where the log file lives.
func StateDir() string {
	return filepath.Join(xdg.StateHome, "treeward")
}

// DefaultLogPath returns StateDir()/treeward.log.
func DefaultLogPath() string {
	return filepath.Join(StateDir(), "treeward.log")
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return nil
}

// WriteDefault writes a default config.yaml if none exists yet. It is a
// no-op, not an error, if a config file is already present.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking config file: %w", err)
	}

	contents := fmt.Sprintf(`# treeward configuration

# Default checksum policy for status: never, when_possibly_modified, always
policy: %s

# Whether 'update' may initialize an untracked directory without --allow-init
allow_init: %t

logging:
  level: info
  path: ""
  rotation:
    max_size: 10MB
    max_age: 30
    max_backups: 5
    daily: true
  components:
    planner: info
    walker: info
`, DefaultPolicy, DefaultAllowInit)

	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
