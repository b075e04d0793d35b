package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "lair.yml")

	archiveDir := filepath.Join(tmpDir, "archive")
	require.NoError(t, os.Mkdir(archiveDir, 0o755))

	validConfig := `version: "1"
root: ./data/lair
archive: ` + archiveDir + `
`
	err := os.WriteFile(configPath, []byte(validConfig), 0o644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "1", cfg.Version)
	assert.Equal(t, "./data/lair", cfg.Root)
	assert.Equal(t, archiveDir, cfg.Archive)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "lair.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultRoot, cfg.Root)
	assert.Equal(t, "1", cfg.Version)
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "lair.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("root: [unclosed"), 0o644))

	cfg, err := Load(configPath)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestValidate(t *testing.T) {
	t.Run("unsupported version", func(t *testing.T) {
		cfg := &Config{Version: "2", Root: "./lair"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported version")
	})

	t.Run("missing root", func(t *testing.T) {
		cfg := &Config{Version: "1"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "root is required")
	})

	t.Run("missing archive directory", func(t *testing.T) {
		cfg := &Config{Version: "1", Root: "./lair", Archive: "/nonexistent/archive"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "archive directory does not exist")
	})
}
