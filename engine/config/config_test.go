package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10, cfg.Scene.LightCount)
	assert.Equal(t, 12, cfg.Scene.RingCount)
	assert.Equal(t, float32(17), cfg.Scene.LightOrbit)
}

func TestDecodeMergesOverDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
[window]
width = 800
height = 600

[scene]
model = "meshes/bunny.obj"
show_boundaries = true

[log]
level = "debug"
`))
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, "oxy-view", cfg.Window.Title)
	assert.Equal(t, "meshes/bunny.obj", cfg.Scene.Model)
	assert.True(t, cfg.Scene.ShowBoundaries)
	assert.Equal(t, float32(1000), cfg.Camera.Far)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestDecodeRejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "[window]\nfullscreen = true\n",
		"zero width":    "[window]\nwidth = 0\n",
		"near past far": "[camera]\nnear = 10.0\nfar = 5.0\n",
		"present mode":  "[window]\npresent_mode = \"mailbox\"\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(src))
			assert.Error(t, err)
		})
	}

	_, err := Decode(strings.NewReader("[camera]\nnear = 0.0\n"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oxy-view.toml")
	require.NoError(t, os.WriteFile(path, []byte("[watch]\nenabled = false\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Watch.Enabled)
}
