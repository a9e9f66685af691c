package config

import (
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/skyview/internal/gfx"
)

func TestLoader_LoadAll(t *testing.T) {
	loader := NewLoader("../../../cmd/viewer/configs")

	cfg, err := loader.LoadAll()
	require.NoError(t, err)

	assert.Equal(t, 480, cfg.Display.ScreenWidth)
	assert.Equal(t, 270, cfg.Display.ScreenHeight)
	assert.Equal(t, 60, cfg.Display.Framerate)
	assert.Equal(t, 90.0, cfg.Camera.LookSpeed)
	assert.Equal(t, 0.25, cfg.Camera.DragSpeed)
	assert.Equal(t, 128, cfg.Skybox.Size)
	assert.Empty(t, cfg.Skybox.Faces)
	assert.True(t, cfg.Demo.Enabled)
	assert.Equal(t, 300, cfg.Demo.DestroyAfterTicks)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, cfg.Demo.AxisVec())

	s, err := cfg.Texture.Sampler()
	require.NoError(t, err)
	assert.Equal(t, gfx.FilterLinearMipmapLinear, s.MinFilter)
	assert.Equal(t, gfx.FilterLinear, s.MagFilter)

	filters, err := cfg.Picker.ParsedFilters()
	require.NoError(t, err)
	require.Len(t, filters, 2)
	assert.Equal(t, "Images", filters[0].Name)
	assert.Equal(t, "image/", filters[0].MIME)
}

func TestLoader_YAML(t *testing.T) {
	fsys := fstest.MapFS{
		"viewer.yaml": &fstest.MapFile{Data: []byte(`
display:
  screenWidth: 640
  screenHeight: 360
log:
  level: debug
texture:
  wrap: clamp_to_edge
skybox:
  faces: [px.png, nx.png, py.png, ny.png, pz.png, nz.png]
demo:
  axis: [1, 0, 0]
`)},
	}

	cfg, err := NewFSLoader(fsys, ".").Load("viewer.yaml")
	require.NoError(t, err)

	assert.Equal(t, 640, cfg.Display.ScreenWidth)
	assert.Equal(t, 2, cfg.Display.Scale, "unset fields keep defaults")
	assert.Equal(t, "skyview", cfg.Display.Title)
	assert.Len(t, cfg.Skybox.Faces, 6)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, cfg.Demo.AxisVec())

	lvl, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	s, err := cfg.Texture.Sampler()
	require.NoError(t, err)
	assert.Equal(t, gfx.WrapClampToEdge, s.WrapS)
	assert.Equal(t, gfx.WrapClampToEdge, s.WrapR)
}

func TestLoader_Errors(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.json":   &fstest.MapFile{Data: []byte(`{"display": `)},
		"viewer.toml":   &fstest.MapFile{Data: []byte(`title = "x"`)},
		"badfilter.yml": &fstest.MapFile{Data: []byte("texture:\n  minFilter: blurry\n")},
		"badmag.json":   &fstest.MapFile{Data: []byte(`{"texture": {"magFilter": "linear_mipmap_linear"}}`)},
		"badsize.json":  &fstest.MapFile{Data: []byte(`{"display": {"screenWidth": 0}}`)},
		"badlevel.json": &fstest.MapFile{Data: []byte(`{"log": {"level": "loud"}}`)},
		"badpick.json":  &fstest.MapFile{Data: []byte(`{"picker": {"filters": "nocolon"}}`)},
		"badsky.json":   &fstest.MapFile{Data: []byte(`{"skybox": {"size": 0}}`)},
		"badzoom.json":  &fstest.MapFile{Data: []byte(`{"camera": {"zoomStep": 1}}`)},
		"badfps.json":   &fstest.MapFile{Data: []byte(`{"display": {"framerate": 0}}`)},
		"baddrag.json":  &fstest.MapFile{Data: []byte(`{"camera": {"dragSpeed": -1}}`)},
	}
	loader := NewFSLoader(fsys, ".")

	tests := []string{"missing.json", "broken.json", "badfilter.yml", "badmag.json", "badsize.json", "badlevel.json", "badpick.json", "badsky.json", "badzoom.json", "badfps.json", "baddrag.json"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := loader.Load(name)
			assert.Nil(t, cfg)
			assert.Error(t, err)
		})
	}

	_, err := loader.Load("viewer.toml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestViewerConfig_FewFacesIsNotFatal(t *testing.T) {
	cfg := Default()
	cfg.Skybox.Faces = []string{"a.png", "b.png", "c.png"}
	assert.NoError(t, cfg.Validate())
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	s, err := cfg.Texture.Sampler()
	require.NoError(t, err)
	assert.Equal(t, gfx.DefaultSampler(), s)

	filters, err := cfg.Picker.ParsedFilters()
	require.NoError(t, err)
	assert.Equal(t, "Images", filters[0].Name)
	assert.Equal(t, "All", filters[1].Name)

	lvl, err := LogConfig{}.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}
