package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// GlobalConfigDir is the name of the global config directory in home
	GlobalConfigDir = ".neotask"

	// GlobalConfigFileName is the name of the global config file
	GlobalConfigFileName = "config.toml"
)

// GlobalConfig represents the user-level configuration from
// ~/.neotask/config.toml. The access token is deliberately not part of
// it; tokens come from the environment only.
type GlobalConfig struct {
	APIURL              string
	Org                 string
	PollIntervalSeconds int
	MaxWaitSeconds      int
}

// globalConfigFile represents the raw TOML structure for global config
type globalConfigFile struct {
	API      apiConfig      `toml:"api"`
	Defaults defaultsConfig `toml:"defaults"`
}

type apiConfig struct {
	URL string `toml:"url"`
}

type defaultsConfig struct {
	Org                 string `toml:"org"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	MaxWaitSeconds      int    `toml:"max_wait_seconds"`
}

// LoadGlobalConfig loads the global configuration from
// ~/.neotask/config.toml. Returns an empty config (not an error) if the
// file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	return LoadGlobalConfigFromDir(homeDir)
}

// LoadGlobalConfigFromDir loads global config using the specified
// directory as home. This is useful for testing.
func LoadGlobalConfigFromDir(homeDir string) (*GlobalConfig, error) {
	configPath := filepath.Join(homeDir, GlobalConfigDir, GlobalConfigFileName)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read global config: %w", err)
	}

	var rawConfig globalConfigFile
	if _, err := toml.Decode(string(data), &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse global config TOML: %w", err)
	}

	return &GlobalConfig{
		APIURL:              rawConfig.API.URL,
		Org:                 rawConfig.Defaults.Org,
		PollIntervalSeconds: rawConfig.Defaults.PollIntervalSeconds,
		MaxWaitSeconds:      rawConfig.Defaults.MaxWaitSeconds,
	}, nil
}
