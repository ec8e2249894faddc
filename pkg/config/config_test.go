package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_NewFileWritesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sunviewfinder.yaml")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "tile", cfg.Elevation.Strategy)
	assert.Equal(t, Distance(350), cfg.Grid.SpacingM)

	content, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "strategy:")
	assert.Contains(t, string(content), "# Options: tile, provider")
}

func TestLoad_ExistingFileOverridesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sunviewfinder.yaml")

	seed := "elevation:\n  strategy: provider\n  concurrency: 8\ngrid:\n  spacing: 500m\n"
	require.NoError(t, os.WriteFile(configPath, []byte(seed), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "provider", cfg.Elevation.Strategy)
	assert.Equal(t, 8, cfg.Elevation.Concurrency)
	assert.Equal(t, Distance(500), cfg.Grid.SpacingM)
	// Fields absent from the seeded file keep their defaults.
	assert.Equal(t, 0.5, cfg.Viewshed.HorizonMarginDeg)
}

func TestLoad_InvalidYAMLIsError(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sunviewfinder.yaml")

	require.NoError(t, os.WriteFile(configPath, []byte("elevation: [not a map]"), 0o644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestGenerateDefault(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "default_config.yaml")

	require.NoError(t, GenerateDefault(configPath))
	_, err := os.Stat(configPath)
	require.NoError(t, err)

	// Running again should not fail, nor touch the existing file.
	before, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.NoError(t, GenerateDefault(configPath))
	after, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestSave_RoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sunviewfinder.yaml")

	want := DefaultConfig()
	want.Elevation.Concurrency = 16
	require.NoError(t, Save(configPath, want))

	got, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, 16, got.Elevation.Concurrency)
}
