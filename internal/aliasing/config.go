// Package aliasing provides SKU display-name aliasing for billing output.
//
// Raw SKU names in the billing system table are long machine identifiers
// (e.g. "PREMIUM_JOBS_SERVERLESS_COMPUTE_US_EAST_1"). Operators can map them
// to shorter display names in a config file; billing records are grouped by
// the aliased name so a renamed SKU still nets against its retractions.
package aliasing

import (
	"errors"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jobmon-io/jobmon/internal/config"
)

// Config holds SKU alias configuration loaded from .jobmon.yaml.
type Config struct {
	// SkuAliases maps raw SKU names to display names. Key is the raw name
	// as reported by the billing table, value is the display name.
	//nolint:tagliatelle // snake_case is intentional for YAML config files
	SkuAliases map[string]string `yaml:"sku_aliases"`
}

// DefaultConfigPath is the default location for the jobmon configuration file.
const DefaultConfigPath = ".jobmon.yaml"

// ConfigPathEnvVar is the environment variable name for a custom config path.
const ConfigPathEnvVar = "JOBMON_CONFIG_PATH"

// LoadConfig loads alias configuration from a YAML file at the given path.
//
// Behavior:
//   - Returns empty config (not error) if the file doesn't exist - aliases are optional
//   - Returns empty config + logs warning if the YAML is invalid (graceful degradation)
//   - Returns populated config on success
//
// Aliasing is an optional feature; the server must start without it.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		SkuAliases: make(map[string]string),
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config source
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Debug("Config file not found, continuing without SKU aliases",
				slog.String("path", path))

			return cfg, nil
		}

		slog.Warn("Failed to read config file, continuing without SKU aliases",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return cfg, nil
	}

	if len(data) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("Failed to parse config file, continuing without SKU aliases",
			slog.String("path", path),
			slog.String("error", err.Error()))

		return &Config{SkuAliases: make(map[string]string)}, nil
	}

	if cfg.SkuAliases == nil {
		cfg.SkuAliases = make(map[string]string)
	}

	return cfg, nil
}

// LoadConfigFromEnv loads config from the path in JOBMON_CONFIG_PATH, falling
// back to ".jobmon.yaml" in the current directory.
func LoadConfigFromEnv() (*Config, error) {
	path := config.GetEnvStr(ConfigPathEnvVar, DefaultConfigPath)

	return LoadConfig(path)
}
