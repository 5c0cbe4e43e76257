// Package config handles configuration for imeswitch: the application
// settings of the CLI and D-Bus hosts (AppConfig, TOML plus environment
// overrides) and the switcher settings tree (Source, YAML/TOML/JSON with
// slash-delimited lookup and hot reload).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "IMESWITCH_"

// AppConfig holds the host process configuration.
type AppConfig struct {
	// SchemaConfig is the switcher settings file (YAML, TOML or JSON).
	SchemaConfig string `toml:"schema_config" env:"SCHEMA_CONFIG"`

	// UserDB is the SQLite database holding per-user settings.
	UserDB string `toml:"user_db" env:"USER_DB"`

	// Watch reloads SchemaConfig when the file changes.
	Watch bool `toml:"watch" env:"WATCH"`

	Logging LoggingConfig `toml:"logging" envPrefix:"LOG_"`
	DBus    DBusConfig    `toml:"dbus" envPrefix:"DBUS_"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" env:"LEVEL"`

	// Format is "text" or "json".
	Format string `toml:"format" env:"FORMAT"`

	// Output is "stderr", "stdout" or "file".
	Output string `toml:"output" env:"OUTPUT"`

	// FilePath is used when Output is "file".
	FilePath string `toml:"file_path" env:"FILE"`
}

// DBusConfig configures the D-Bus front end.
type DBusConfig struct {
	// BusName is the well-known name requested on the session bus.
	BusName string `toml:"bus_name" env:"BUS_NAME"`
}

// DefaultAppConfig returns the defaults used when no file is present.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		SchemaConfig: filepath.Join(PlatformConfigDir(), "switcher.yaml"),
		UserDB:       filepath.Join(PlatformDataDir(), "user.db"),
		Watch:        true,
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Output:   "stderr",
			FilePath: filepath.Join(PlatformLogDir(), "imeswitch.log"),
		},
		DBus: DBusConfig{
			BusName: "org.imeswitch.Switcher",
		},
	}
}

// AppConfigPath returns the default application config path.
func AppConfigPath() string {
	return filepath.Join(PlatformConfigDir(), "imeswitch.toml")
}

// LoadAppConfig reads the TOML application config at path (the default path
// when empty), then applies IMESWITCH_* environment overrides. A missing file
// yields the defaults.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()

	if path == "" {
		path = AppConfigPath()
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides overlays IMESWITCH_* environment variables.
func (c *AppConfig) ApplyEnvOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *AppConfig) Validate() error {
	return ValidateAppConfig(c)
}

// EnsureDirectories creates the parent directories of every configured path.
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.UserDB),
	}
	if c.Logging.Output == "file" {
		dirs = append(dirs, filepath.Dir(c.Logging.FilePath))
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
