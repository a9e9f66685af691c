package config

import (
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/younwookim/skyview/internal/gfx"
	"github.com/younwookim/skyview/internal/infrastructure/picker"
)

// ViewerConfig is the root config for viewer.json / viewer.yaml
type ViewerConfig struct {
	Display DisplayConfig `json:"display" yaml:"display"`
	Camera  CameraConfig  `json:"camera" yaml:"camera"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Texture TextureConfig `json:"texture" yaml:"texture"`
	Skybox  SkyboxConfig  `json:"skybox" yaml:"skybox"`
	Demo    DemoConfig    `json:"demo" yaml:"demo"`
	Picker  PickerConfig  `json:"picker" yaml:"picker"`
}

type DisplayConfig struct {
	Title        string `json:"title" yaml:"title"`
	ScreenWidth  int    `json:"screenWidth" yaml:"screenWidth"`
	ScreenHeight int    `json:"screenHeight" yaml:"screenHeight"`
	Scale        int    `json:"scale" yaml:"scale"`
	Framerate    int    `json:"framerate" yaml:"framerate"`
}

// CameraConfig controls how input moves the skybox camera and zoom
type CameraConfig struct {
	LookSpeed float64 `json:"lookSpeed" yaml:"lookSpeed"` // degrees per second
	ZoomStep  float64 `json:"zoomStep" yaml:"zoomStep"`   // multiplier per key press or wheel notch
	MinZoom   float64 `json:"minZoom" yaml:"minZoom"`
	MaxZoom   float64 `json:"maxZoom" yaml:"maxZoom"`
	DragSpeed float64 `json:"dragSpeed" yaml:"dragSpeed"` // degrees per pixel of mouse drag, 0 disables
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"` // debug, info, warn, error
}

// SlogLevel parses Level. Empty means info.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if c.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return 0, errors.Wrapf(err, "log level %q", c.Level)
	}
	return lvl, nil
}

// TextureConfig holds defaults for textures opened in the viewer
type TextureConfig struct {
	MinFilter string `json:"minFilter" yaml:"minFilter"`
	MagFilter string `json:"magFilter" yaml:"magFilter"`
	Wrap      string `json:"wrap" yaml:"wrap"`
	Mipmaps   bool   `json:"mipmaps" yaml:"mipmaps"`
}

// Sampler converts the filter and wrap names into a gfx.Sampler.
func (c TextureConfig) Sampler() (gfx.Sampler, error) {
	s := gfx.DefaultSampler()
	var err error
	if c.MinFilter != "" {
		if s.MinFilter, err = gfx.ParseFilter(c.MinFilter); err != nil {
			return s, err
		}
	}
	if c.MagFilter != "" {
		if s.MagFilter, err = gfx.ParseFilter(c.MagFilter); err != nil {
			return s, err
		}
	}
	if c.Wrap != "" {
		w, err := gfx.ParseWrap(c.Wrap)
		if err != nil {
			return s, err
		}
		s.WrapS, s.WrapT, s.WrapR = w, w, w
	}
	return s, s.Validate()
}

// SkyboxConfig lists the cubemap faces in +X, -X, +Y, -Y, +Z, -Z order.
// Without a usable set of faces the viewer generates a procedural sky of
// Size pixels.
type SkyboxConfig struct {
	Faces   []string `json:"faces" yaml:"faces"`
	Size    int      `json:"size" yaml:"size"`
	Mipmaps bool     `json:"mipmaps" yaml:"mipmaps"`
}

type DemoConfig struct {
	Enabled           bool       `json:"enabled" yaml:"enabled"`
	Texture           string     `json:"texture" yaml:"texture"`
	DegreesPerSecond  float64    `json:"degreesPerSecond" yaml:"degreesPerSecond"`
	Axis              [3]float32 `json:"axis" yaml:"axis"`
	DestroyAfterTicks int        `json:"destroyAfterTicks" yaml:"destroyAfterTicks"`
}

// AxisVec returns Axis as a vector.
func (c DemoConfig) AxisVec() mgl32.Vec3 {
	return mgl32.Vec3(c.Axis)
}

type PickerConfig struct {
	StartDir   string `json:"startDir" yaml:"startDir"`
	Filters    string `json:"filters" yaml:"filters"` // picker.ParseFilters syntax
	ShowHidden bool   `json:"showHidden" yaml:"showHidden"`
}

// ParsedFilters parses Filters. Empty means images, then all files.
func (c PickerConfig) ParsedFilters() ([]picker.Filter, error) {
	if strings.TrimSpace(c.Filters) == "" {
		return []picker.Filter{picker.ImageFiles(), picker.AllFiles()}, nil
	}
	return picker.ParseFilters(c.Filters)
}

// Default returns the built-in configuration. Loaded files override it
// field by field.
func Default() *ViewerConfig {
	return &ViewerConfig{
		Display: DisplayConfig{
			Title:        "skyview",
			ScreenWidth:  480,
			ScreenHeight: 270,
			Scale:        2,
			Framerate:    60,
		},
		Camera: CameraConfig{
			LookSpeed: 90,
			ZoomStep:  1.25,
			MinZoom:   0.125,
			MaxZoom:   8,
			DragSpeed: 0.25,
		},
		Log: LogConfig{Level: "info"},
		Texture: TextureConfig{
			MinFilter: gfx.FilterLinear.String(),
			MagFilter: gfx.FilterLinear.String(),
			Wrap:      gfx.WrapRepeat.String(),
		},
		Skybox: SkyboxConfig{Size: 128},
		Demo: DemoConfig{
			Enabled:          true,
			DegreesPerSecond: 90,
			Axis:             [3]float32{0, 1, 0},
		},
		Picker: PickerConfig{StartDir: "."},
	}
}

// Validate checks values the viewer cannot recover from.
func (c *ViewerConfig) Validate() error {
	if c.Display.ScreenWidth <= 0 || c.Display.ScreenHeight <= 0 {
		return errors.Newf("display: invalid screen size %dx%d", c.Display.ScreenWidth, c.Display.ScreenHeight)
	}
	if c.Display.Scale <= 0 {
		return errors.Newf("display: invalid scale %d", c.Display.Scale)
	}
	if c.Display.Framerate <= 0 {
		return errors.Newf("display: invalid framerate %d", c.Display.Framerate)
	}
	if c.Camera.ZoomStep <= 1 || c.Camera.MinZoom <= 0 || c.Camera.MaxZoom < c.Camera.MinZoom {
		return errors.Newf("camera: invalid zoom step %g range [%g, %g]", c.Camera.ZoomStep, c.Camera.MinZoom, c.Camera.MaxZoom)
	}
	if c.Camera.DragSpeed < 0 {
		return errors.Newf("camera: invalid drag speed %g", c.Camera.DragSpeed)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return errors.Wrap(err, "log")
	}
	if _, err := c.Texture.Sampler(); err != nil {
		return errors.Wrap(err, "texture")
	}
	// A wrong face count is not fatal: the cubemap loader warns and the
	// viewer falls back to the procedural sky.
	if c.Skybox.Size <= 0 {
		return errors.Newf("skybox: invalid size %d", c.Skybox.Size)
	}
	if c.Demo.DestroyAfterTicks < 0 {
		return errors.Newf("demo: invalid destroyAfterTicks %d", c.Demo.DestroyAfterTicks)
	}
	if _, err := c.Picker.ParsedFilters(); err != nil {
		return errors.Wrap(err, "picker")
	}
	return nil
}
