// Package config loads the viewer settings from TOML.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Window configures the native window.
type Window struct {
	Title       string `toml:"title"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	PresentMode string `toml:"present_mode"`
}

// Camera configures the projection and the fly controller.
type Camera struct {
	FovDegrees     float32    `toml:"fov_degrees"`
	Near           float32    `toml:"near"`
	Far            float32    `toml:"far"`
	Position       [3]float32 `toml:"position"`
	TranslateSpeed float32    `toml:"translate_speed"`
	SlowSpeed      float32    `toml:"slow_speed"`
	RotateSpeed    float32    `toml:"rotate_speed"`
}

// Scene configures the demo scene. Model paths are OS paths, or embedded asset paths when they start with
// "models/" and no such file exists on disk.
type Scene struct {
	Model          string     `toml:"model"`
	Floor          string     `toml:"floor"`
	LightMesh      string     `toml:"light_mesh"`
	LightCount     int        `toml:"light_count"`
	LightRadius    float32    `toml:"light_radius"`
	LightOrbit     float32    `toml:"light_orbit"`
	LightSpeed     float32    `toml:"light_speed"`
	RingCount      int        `toml:"ring_count"`
	RingRadius     float32    `toml:"ring_radius"`
	Ambient        [3]float32 `toml:"ambient"`
	Channel        string     `toml:"channel"`
	ShowBoundaries bool       `toml:"show_boundaries"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
}

// Watch configures hot reload of the active model.
type Watch struct {
	Enabled bool `toml:"enabled"`
}

// Config is the full settings tree.
type Config struct {
	Window Window `toml:"window"`
	Camera Camera `toml:"camera"`
	Scene  Scene  `toml:"scene"`
	Log    Log    `toml:"log"`
	Watch  Watch  `toml:"watch"`
}

// Default returns the settings of the stock scene.
func Default() Config {
	return Config{
		Window: Window{
			Title:       "oxy-view",
			Width:       1280,
			Height:      720,
			PresentMode: "vsync",
		},
		Camera: Camera{
			FovDegrees:     45,
			Near:           0.1,
			Far:            1000,
			Position:       [3]float32{0, 5, 35},
			TranslateSpeed: 3,
			SlowSpeed:      1,
			RotateSpeed:    0.5,
		},
		Scene: Scene{
			Model:       "models/sphere.obj",
			Floor:       "models/floor.obj",
			LightMesh:   "models/point_light.obj",
			LightCount:  10,
			LightRadius: 10,
			LightOrbit:  17,
			LightSpeed:  0.0016,
			RingCount:   12,
			RingRadius:  15,
			Ambient:     [3]float32{0.2, 0.2, 0.2},
			Channel:     "composed",
		},
		Log:   Log{Level: "info"},
		Watch: Watch{Enabled: true},
	}
}

// Decode reads TOML from r over the defaults. Unknown keys are rejected.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Config: the merged settings
//   - error: a decode or validation error
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(r).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the file at path over the defaults. A missing file yields the defaults.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - Config: the merged settings
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the viewer cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	case c.Window.PresentMode != "vsync" && c.Window.PresentMode != "uncapped":
		return fmt.Errorf("%w: present_mode %q", ErrInvalid, c.Window.PresentMode)
	case c.Camera.FovDegrees <= 0 || c.Camera.FovDegrees >= 180:
		return fmt.Errorf("%w: fov_degrees %v", ErrInvalid, c.Camera.FovDegrees)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: near %v far %v", ErrInvalid, c.Camera.Near, c.Camera.Far)
	case c.Scene.LightCount < 0 || c.Scene.RingCount < 0:
		return fmt.Errorf("%w: negative light or ring count", ErrInvalid)
	case c.Scene.LightRadius <= 0:
		return fmt.Errorf("%w: light_radius %v", ErrInvalid, c.Scene.LightRadius)
	case c.Scene.Model == "" || c.Scene.Floor == "" || c.Scene.LightMesh == "":
		return fmt.Errorf("%w: empty model path", ErrInvalid)
	}
	return nil
}
