package texture

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/younwookim/skyview/internal/gfx"
	"github.com/younwookim/skyview/internal/gfx/gfxtest"
)

var faceColors = []color.RGBA{
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
	{255, 255, 0, 255},
	{0, 255, 255, 255},
	{255, 0, 255, 255},
}

func faces(size int) []image.Image {
	out := make([]image.Image, FaceCount)
	for i := range out {
		out[i] = solid(size, size, faceColors[i])
	}
	return out
}

func TestNewCubemap(t *testing.T) {
	dev := gfxtest.NewDevice()

	cube, err := NewCubemap(dev, faces(8), DefaultCubemapOptions())
	require.NoError(t, err)

	assert.True(t, cube.Valid())
	assert.Equal(t, 8, cube.Size())
	assert.Equal(t, gfx.FormatRGBA8, cube.Format())
	assert.Equal(t, 1, cube.MipLevels())

	rec := dev.Textures[cube.Handle()]
	require.NotNil(t, rec)
	assert.Equal(t, gfx.TextureCube, rec.Desc.Kind)
	assert.Equal(t, gfx.CubemapSampler(), rec.Sampler)
	for i, c := range faceColors {
		pix := rec.Uploaded[[2]int{i, 0}]
		require.Len(t, pix, 8*8*4, "face %s", Face(i))
		assert.Equal(t, []byte{c.R, c.G, c.B, c.A}, pix[:4], "face %s uploaded to its own layer", Face(i))
	}
	assert.Equal(t, 6, dev.Count("upload"))
}

func TestNewCubemap_Mipmaps(t *testing.T) {
	dev := gfxtest.NewDevice()
	opts := DefaultCubemapOptions()
	opts.Mipmaps = true

	cube, err := NewCubemap(dev, faces(16), opts)
	require.NoError(t, err)
	assert.Equal(t, 5, cube.MipLevels())
	assert.Equal(t, 6*5, dev.Count("upload"))
	assert.Len(t, dev.Textures[cube.Handle()].Uploaded[[2]int{5, 4}], 4)
}

func TestNewCubemap_AllGray(t *testing.T) {
	dev := gfxtest.NewDevice()
	gray := make([]image.Image, FaceCount)
	for i := range gray {
		gray[i] = image.NewGray(image.Rect(0, 0, 4, 4))
	}

	cube, err := NewCubemap(dev, gray, DefaultCubemapOptions())
	require.NoError(t, err)
	assert.Equal(t, gfx.FormatR8, cube.Format())

	mixed := faces(4)
	mixed[2] = image.NewGray(image.Rect(0, 0, 4, 4))
	cube, err = NewCubemap(dev, mixed, DefaultCubemapOptions())
	require.NoError(t, err)
	assert.Equal(t, gfx.FormatRGBA8, cube.Format())
}

func TestNewCubemap_InvalidFaces(t *testing.T) {
	tests := []struct {
		name  string
		faces func() []image.Image
		want  error
	}{
		{"five faces", func() []image.Image { return faces(4)[:5] }, ErrFaceCount},
		{"seven faces", func() []image.Image { return append(faces(4), solid(4, 4, color.White)) }, ErrFaceCount},
		{"nil face", func() []image.Image { f := faces(4); f[3] = nil; return f }, ErrFaceCount},
		{"size mismatch", func() []image.Image { f := faces(4); f[5] = solid(8, 8, color.White); return f }, ErrFaceSize},
		{"not square", func() []image.Image {
			f := make([]image.Image, FaceCount)
			for i := range f {
				f[i] = solid(8, 4, color.White)
			}
			return f
		}, ErrFaceSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := captureLog(t)
			dev := gfxtest.NewDevice()

			cube, err := NewCubemap(dev, tt.faces(), DefaultCubemapOptions())
			assert.Nil(t, cube)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, gfx.NoHandle, cube.Handle())
			assert.Equal(t, 0, dev.Count("create"), "no device resource is created")
			assert.Contains(t, logs.String(), "level=WARN")
		})
	}
}

func TestLoadCubemap_FewerThanSixPaths(t *testing.T) {
	logs := captureLog(t)
	dev := gfxtest.NewDevice()

	cube, err := LoadCubemap(dev, []string{"a.png", "b.png", "c.png"}, DefaultCubemapOptions())
	assert.Nil(t, cube)
	assert.ErrorIs(t, err, ErrFaceCount)
	assert.False(t, cube.Valid())
	assert.Empty(t, dev.Calls)
	assert.Contains(t, logs.String(), "cubemap: load aborted")
}

func TestLoadCubemap(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, FaceCount)
	for i := range paths {
		paths[i] = writePNG(t, dir, fmt.Sprintf("face%d.png", i), solid(4, 4, faceColors[i]))
	}

	dev := gfxtest.NewDevice()
	cube, err := LoadCubemap(dev, paths, DefaultCubemapOptions())
	require.NoError(t, err)
	assert.Equal(t, paths[0], cube.Label())

	rec := dev.Textures[cube.Handle()]
	for i, c := range faceColors {
		assert.Equal(t, []byte{c.R, c.G, c.B, c.A}, rec.Uploaded[[2]int{i, 0}][:4], "face order follows path order")
	}
}

func TestLoadCubemap_MissingFace(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, FaceCount)
	for i := range paths {
		paths[i] = writePNG(t, dir, fmt.Sprintf("face%d.png", i), solid(4, 4, faceColors[i]))
	}
	paths[4] = filepath.Join(dir, "nope.png")

	dev := gfxtest.NewDevice()
	_, err := LoadCubemap(dev, paths, DefaultCubemapOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "face +Z")
	assert.Equal(t, 0, dev.Count("create"))
}

func TestCubemap_UploadFailureCleansUp(t *testing.T) {
	dev := gfxtest.NewDevice()
	dev.FailUpload = errors.New("out of memory")
	dev.FailUploadAt = 4

	_, err := NewCubemap(dev, faces(4), DefaultCubemapOptions())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload layer 3 level 0")
	assert.Equal(t, 0, dev.Live())
}

func TestCubemap_ReleaseAndSampler(t *testing.T) {
	dev := gfxtest.NewDevice()
	cube, err := NewCubemap(dev, faces(2), DefaultCubemapOptions())
	require.NoError(t, err)

	s := gfx.CubemapSampler()
	s.MagFilter = gfx.FilterNearest
	require.NoError(t, cube.SetSampler(s))
	assert.Equal(t, s, cube.Sampler())

	cube.Release()
	cube.Release()
	assert.Equal(t, gfx.NoHandle, cube.Handle())
	assert.Equal(t, 1, dev.Count("delete"))
	assert.ErrorIs(t, cube.SetSampler(s), ErrReleased)
}

func TestFaceForDirection(t *testing.T) {
	tests := []struct {
		dir  mgl32.Vec3
		face Face
	}{
		{mgl32.Vec3{1, 0, 0}, FacePosX},
		{mgl32.Vec3{-1, 0, 0}, FaceNegX},
		{mgl32.Vec3{0, 1, 0}, FacePosY},
		{mgl32.Vec3{0, -1, 0}, FaceNegY},
		{mgl32.Vec3{0, 0, 1}, FacePosZ},
		{mgl32.Vec3{0, 0, -1}, FaceNegZ},
		{mgl32.Vec3{0.2, -0.9, 0.3}, FaceNegY},
		{mgl32.Vec3{0, 0, 0}, FacePosX},
	}

	for _, tt := range tests {
		t.Run(tt.face.String(), func(t *testing.T) {
			face, u, v := FaceForDirection(tt.dir)
			assert.Equal(t, tt.face, face)
			assert.GreaterOrEqual(t, u, float32(0))
			assert.LessOrEqual(t, u, float32(1))
			assert.GreaterOrEqual(t, v, float32(0))
			assert.LessOrEqual(t, v, float32(1))
		})
	}

	_, u, v := FaceForDirection(mgl32.Vec3{0, 0, 1})
	assert.Equal(t, float32(0.5), u)
	assert.Equal(t, float32(0.5), v)

	// +Z face: s follows +x, t follows -y.
	_, u, v = FaceForDirection(mgl32.Vec3{0.5, 0.5, 1})
	assert.Equal(t, float32(0.75), u)
	assert.Equal(t, float32(0.25), v)
}
