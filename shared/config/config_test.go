package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromMissingReturnsDefaults(t *testing.T) {
	cfg := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFromKeepsDefaultsForAbsentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"window_width": 1920, "inspector_addr": ""}`), 0644))

	cfg := LoadFrom(path)
	assert.Equal(t, int32(1920), cfg.WindowWidth)
	assert.Equal(t, int32(720), cfg.WindowHeight)
	assert.Empty(t, cfg.InspectorAddr)
	assert.Equal(t, 4096, cfg.LookupCapacity)
}

func TestLoadFromInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"window_width": "x"`), 0644))
	assert.Equal(t, DefaultConfig(), LoadFrom(path))
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.PipelinePath = "custom.yaml"
	cfg.RenderThreadChecks = false
	require.NoError(t, cfg.SaveTo(path))

	assert.Equal(t, cfg, LoadFrom(path))
}
