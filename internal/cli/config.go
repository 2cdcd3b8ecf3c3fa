package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fundiary/fundiary/internal/logging"
	"github.com/fundiary/fundiary/internal/paths"
	"github.com/fundiary/fundiary/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyLogLevel = "log_level"
)

// fileConfig holds the structure of config.yaml.
type fileConfig struct {
	Backend  string `yaml:"backend"`
	DataDir  string `yaml:"data_dir,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (fileConfig, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fileConfig{}, fmt.Errorf("create config dir: %w", err)
	}
	if err := writeConfigIfMissing(configDir); err != nil {
		return fileConfig{}, err
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyLogLevel, logging.DefaultLevel)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fileConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	return fileConfig{
		Backend:  v.GetString(cfgKeyBackend),
		DataDir:  v.GetString(cfgKeyDataDir),
		LogLevel: v.GetString(cfgKeyLogLevel),
	}, nil
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist.
func writeConfigIfMissing(configDir string) error {
	path := paths.ConfigFile(configDir)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&fileConfig{Backend: types.BackendSQLite, LogLevel: logging.DefaultLevel})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
