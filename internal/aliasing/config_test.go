package aliasing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".jobmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("missing file yields empty config without error", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))

		require.NoError(t, err)
		assert.Empty(t, cfg.SkuAliases)
	})

	t.Run("empty file yields empty config", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfigFile(t, ""))

		require.NoError(t, err)
		assert.Empty(t, cfg.SkuAliases)
	})

	t.Run("invalid yaml degrades to empty config", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfigFile(t, "sku_aliases: [not a map"))

		require.NoError(t, err)
		assert.Empty(t, cfg.SkuAliases)
	})

	t.Run("valid aliases are loaded", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfigFile(t, `
sku_aliases:
  PREMIUM_JOBS_COMPUTE_US_EAST_1: "Jobs Compute"
  PREMIUM_SQL_PRO_COMPUTE_US_EAST_1: "SQL Pro"
`))

		require.NoError(t, err)
		assert.Len(t, cfg.SkuAliases, 2)
		assert.Equal(t, "Jobs Compute", cfg.SkuAliases["PREMIUM_JOBS_COMPUTE_US_EAST_1"])
	})
}

func TestLoadConfigFromEnv(t *testing.T) {
	path := writeConfigFile(t, "sku_aliases:\n  RAW: Display\n")
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadConfigFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "Display", cfg.SkuAliases["RAW"])
}

func TestResolver(t *testing.T) {
	t.Run("nil resolver is passthrough", func(t *testing.T) {
		var r *Resolver

		assert.Equal(t, "RAW_SKU", r.Resolve("RAW_SKU"))
		assert.Zero(t, r.Count())
	})

	t.Run("unmatched sku passes through", func(t *testing.T) {
		r := NewResolver(&Config{SkuAliases: map[string]string{"A": "Alpha"}})

		assert.Equal(t, "B", r.Resolve("B"))
	})

	t.Run("matched sku resolves to display name", func(t *testing.T) {
		r := NewResolver(&Config{SkuAliases: map[string]string{"A": "Alpha"}})

		assert.Equal(t, "Alpha", r.Resolve("A"))
		assert.Equal(t, 1, r.Count())
	})

	t.Run("blank entries are dropped", func(t *testing.T) {
		r := NewResolver(&Config{SkuAliases: map[string]string{
			"":  "Nameless",
			"B": "  ",
			"C": "Gamma",
		}})

		assert.Equal(t, 1, r.Count())
		assert.Equal(t, "Gamma", r.Resolve("C"))
	})
}
