package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qpmx-labs/qpmx-setup/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Keys understood by the CLI.
const (
	KeyLogLevel       = "log_level"
	KeyColors         = "colors"
	KeyTargetDir      = "target_dir"
	KeyVariant        = "variant"
	KeyQbsPath        = "qbs.path"
	KeyQbsSettingsDir = "qbs.settings_dir"
	KeyQpmxPath       = "qpmx.path"
)

// Dir returns the path to the config directory (~/.qpmx/).
func Dir() string {
	if v := os.Getenv(branding.EnvVar("home")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.qpmx/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
// An empty path selects FilePath().
func Load(path string) error {
	if path == "" {
		path = FilePath()
	}
	viper.SetConfigFile(path)
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyLogLevel, "normal")
	viper.SetDefault(KeyColors, true)
	viper.SetDefault(KeyVariant, "link")
	viper.SetDefault(KeyQbsPath, "qbs")
	viper.SetDefault(KeyQpmxPath, branding.ToolName())

	if err := viper.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// GetBool returns a boolean config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = FilePath()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Reset clears all loaded settings. Used by tests.
func Reset() {
	viper.Reset()
}
