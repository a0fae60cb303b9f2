package prismscene_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/prismscene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := prismscene.DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ms3.Vec{Z: 5}, cfg.CameraPosition())
	assert.Equal(t, "2012", cfg.Label.Text)
	assert.Equal(t, [3]float32{0, 0, -3}, cfg.Label.Position)
	_, err := cfg.NewLogger()
	assert.NoError(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	const doc = `
width = 1280
height = 720
camera = [1.0, 0.5, 8.0]
log_level = "debug"

[label]
text = "hello"
font = "fonts/helvetiker_regular.ttf"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	cfg, err := prismscene.LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1280, cfg.Width)
	assert.Equal(t, 720, cfg.Height)
	assert.Equal(t, ms3.Vec{X: 1, Y: 0.5, Z: 8}, cfg.CameraPosition())
	assert.Equal(t, "hello", cfg.Label.Text)
	assert.Equal(t, "fonts/helvetiker_regular.ttf", cfg.Label.Font)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unset keys keep their defaults.
	assert.Equal(t, float32(75), cfg.FOV)
	assert.Equal(t, float32(1), cfg.Label.Size)
	assert.Equal(t, [3]float32{0, 0, -3}, cfg.Label.Position)
}

func TestLoadConfigFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := prismscene.LoadConfigFile(filepath.Join(dir, "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("width = \"wide\""), 0o644))
	_, err = prismscene.LoadConfigFile(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte("fov = 200.0"), 0o644))
	_, err = prismscene.LoadConfigFile(invalid)
	assert.ErrorContains(t, err, "field of view")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*prismscene.Config)
	}{
		{"zero height", func(c *prismscene.Config) { c.Height = 0 }},
		{"negative fov", func(c *prismscene.Config) { c.FOV = -1 }},
		{"far before near", func(c *prismscene.Config) { c.Far = 0.01 }},
		{"camera on up axis", func(c *prismscene.Config) { c.Camera = [3]float32{0, 5, 0} }},
		{"label size", func(c *prismscene.Config) { c.Label.Size = 0 }},
		{"fps", func(c *prismscene.Config) { c.FPS = 0 }},
		{"fps too high", func(c *prismscene.Config) { c.FPS = 2e9 }},
		{"log level", func(c *prismscene.Config) { c.LogLevel = "chatty" }},
	}
	for _, test := range tests {
		cfg := prismscene.DefaultConfig()
		test.modify(&cfg)
		assert.Error(t, cfg.Validate(), test.name)
	}
}
