package config

import (
	"os"
	"time"

	"github.com/neotask/neotask/internal/domain"
)

const (
	// TokenEnvVar supplies the access token. Its absence is a fatal
	// configuration error raised before any network call.
	TokenEnvVar = "PULUMI_ACCESS_TOKEN"

	// APIURLEnvVar overrides the API base URL, mainly for testing
	// against a local server.
	APIURLEnvVar = "NEOTASK_API_URL"
)

// ResolvedConfig represents the final merged configuration with all
// precedence rules applied. Precedence order (highest to lowest):
// 1. Environment (NEOTASK_API_URL for the base URL)
// 2. Global config (~/.neotask/config.toml)
// 3. Built-in defaults
//
// Command-line flags override these at the CLI layer. An empty APIURL
// means the client's production default; zero durations mean the
// poller's defaults.
type ResolvedConfig struct {
	APIURL       string
	Token        string
	DefaultOrg   string
	PollInterval time.Duration
	MaxWait      time.Duration
}

// Resolve loads the global config and merges it with the environment.
func Resolve() (*ResolvedConfig, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return ResolveWithHome(homeDir, os.Getenv)
}

// ResolveWithHome resolves config using a specified home directory and
// environment lookup. This is useful for testing.
func ResolveWithHome(homeDir string, getenv func(string) string) (*ResolvedConfig, error) {
	token := getenv(TokenEnvVar)
	if token == "" {
		return nil, domain.NewTokenMissingError(TokenEnvVar)
	}

	globalCfg, err := LoadGlobalConfigFromDir(homeDir)
	if err != nil {
		return nil, err
	}

	resolved := &ResolvedConfig{
		Token:      token,
		APIURL:     globalCfg.APIURL,
		DefaultOrg: globalCfg.Org,
	}

	if url := getenv(APIURLEnvVar); url != "" {
		resolved.APIURL = url
	}
	if globalCfg.PollIntervalSeconds > 0 {
		resolved.PollInterval = time.Duration(globalCfg.PollIntervalSeconds) * time.Second
	}
	if globalCfg.MaxWaitSeconds > 0 {
		resolved.MaxWait = time.Duration(globalCfg.MaxWaitSeconds) * time.Second
	}

	return resolved, nil
}
