package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, 0.8, c.Simulation.CeilingRatio)
	assert.Equal(t, "sim_inhibit_", c.Simulation.OutputPrefix)
	assert.Equal(t, []string{"gene", "text"}, c.Simulation.TextCategories)
	assert.Equal(t, 11, c.Threshold.BlockSize)
	assert.Equal(t, 10.0, c.Threshold.Offset)
	assert.Equal(t, 3.0, c.Inpaint.Radius)
	assert.Equal(t, 2, c.Marker.MinThickness)
	assert.Equal(t, 4, c.Marker.MaxThickness)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
paths:
  image_dir: /data/images
simulation:
  ceiling_ratio: 0.5
  workers: 4
threshold:
  block_size: 15
marker:
  color: "#ff8800"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	c, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/images", c.Paths.ImageDir)
	assert.Equal(t, 0.5, c.Simulation.CeilingRatio)
	assert.Equal(t, 4, c.Simulation.Workers)
	assert.Equal(t, 15, c.Threshold.BlockSize)
	assert.Equal(t, 10.0, c.Threshold.Offset, "unset keys keep defaults")
	assert.Equal(t, "#ff8800", c.Marker.Color)
	assert.Equal(t, "./annotations", c.Paths.AnnotationDir)
	require.NoError(t, c.Validate())
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation: [1, 2"), 0644))
	_, err = LoadFromFile(path)
	assert.Error(t, err)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c := Default()
	c.Simulation.Seed = 99
	c.Paths.DebugDir = "/tmp/debug"
	require.NoError(t, c.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(envMap(map[string]string{
		"INHIBIT_SIM_IMAGE_DIR":       "/imgs",
		"INHIBIT_SIM_CEILING_RATIO":   "0.25",
		"INHIBIT_SIM_SEED":            "7",
		"INHIBIT_SIM_WORKERS":         " 3 ",
		"INHIBIT_SIM_TEXT_CATEGORIES": "gene, compound,,text",
		"INHIBIT_SIM_LOG_HUMAN":       "false",
		"INHIBIT_SIM_ENGINE":          "opencv",
	}))
	require.NoError(t, err)

	assert.Equal(t, "/imgs", c.Paths.ImageDir)
	assert.Equal(t, 0.25, c.Simulation.CeilingRatio)
	assert.Equal(t, int64(7), c.Simulation.Seed)
	assert.Equal(t, 3, c.Simulation.Workers)
	assert.Equal(t, []string{"gene", "compound", "text"}, c.Simulation.TextCategories)
	assert.False(t, c.Log.Human)
	assert.Equal(t, "opencv", c.Simulation.Engine)
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(envMap(map[string]string{
		"INHIBIT_SIM_WORKERS":    "many",
		"INHIBIT_SIM_BLOCK_SIZE": "x",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INHIBIT_SIM_WORKERS")
	assert.Contains(t, err.Error(), "INHIBIT_SIM_BLOCK_SIZE")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero ceiling", func(c *Config) { c.Simulation.CeilingRatio = 0 }},
		{"ceiling above one", func(c *Config) { c.Simulation.CeilingRatio = 1.5 }},
		{"no workers", func(c *Config) { c.Simulation.Workers = 0 }},
		{"empty prefix", func(c *Config) { c.Simulation.OutputPrefix = "" }},
		{"even block", func(c *Config) { c.Threshold.BlockSize = 10 }},
		{"zero radius", func(c *Config) { c.Inpaint.Radius = 0 }},
		{"inverted thickness", func(c *Config) { c.Marker.MinThickness, c.Marker.MaxThickness = 5, 2 }},
		{"bad color", func(c *Config) { c.Marker.Color = "not-a-color" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(c)
			assert.Error(t, c.Validate())
		})
	}
}
