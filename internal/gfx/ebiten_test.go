package gfx

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEbitenDevice_Lifecycle(t *testing.T) {
	d := NewEbitenDevice()

	h, err := d.CreateTexture(TextureDesc{Label: "t", Kind: Texture2D, Width: 8, Height: 4, Format: FormatRGBA8, MipLevels: 4})
	require.NoError(t, err)
	assert.Equal(t, Handle(1), h)

	img, err := d.Image(h, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, img.Bounds().Dx())
	assert.Equal(t, 1, img.Bounds().Dy())

	require.NoError(t, d.UploadPixels(h, 0, 0, make([]byte, 8*4*4)))
	require.NoError(t, d.UploadPixels(h, 0, 1, make([]byte, 4*2*4)))

	s := CubemapSampler()
	require.NoError(t, d.SetSampler(h, s))
	got, ok := d.Sampler(h)
	require.True(t, ok)
	assert.Equal(t, s, got)

	d.DeleteTexture(h)
	_, ok = d.Sampler(h)
	assert.False(t, ok)

	stats := d.Stats()
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Deleted)
	assert.Equal(t, 0, stats.Live)
	assert.Equal(t, int64(8*4*4+4*2*4), stats.BytesUploaded)
}

func TestEbitenDevice_HandlesNeverReused(t *testing.T) {
	d := NewEbitenDevice()
	desc := TextureDesc{Width: 2, Height: 2, Format: FormatR8, MipLevels: 1}

	h1, err := d.CreateTexture(desc)
	require.NoError(t, err)
	d.DeleteTexture(h1)

	h2, err := d.CreateTexture(desc)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestEbitenDevice_Errors(t *testing.T) {
	d := NewEbitenDevice()

	_, err := d.CreateTexture(TextureDesc{Width: 0, Height: 2, MipLevels: 1})
	assert.ErrorIs(t, err, ErrInvalidSize)

	assert.ErrorIs(t, d.UploadPixels(99, 0, 0, nil), ErrUnknownHandle)
	assert.ErrorIs(t, d.SetSampler(99, DefaultSampler()), ErrUnknownHandle)
	d.DeleteTexture(99) // no-op

	h, err := d.CreateTexture(TextureDesc{Kind: TextureCube, Width: 4, Height: 4, Format: FormatRGB8, MipLevels: 1})
	require.NoError(t, err)

	assert.ErrorIs(t, d.UploadPixels(h, 6, 0, make([]byte, 48)), ErrLayerOutOfRange)
	assert.ErrorIs(t, d.UploadPixels(h, 0, 1, make([]byte, 12)), ErrLevelOutOfRange)
	assert.ErrorIs(t, d.UploadPixels(h, 5, 0, make([]byte, 47)), ErrPixelCount)
	assert.NoError(t, d.UploadPixels(h, 5, 0, make([]byte, 48)))

	bad := DefaultSampler()
	bad.MagFilter = FilterNearestMipmapNearest
	assert.Error(t, d.SetSampler(h, bad))

	_, err = d.Image(h, 0, 2)
	assert.ErrorIs(t, err, ErrLevelOutOfRange)
}

func TestEbitenDevice_Close(t *testing.T) {
	d := NewEbitenDevice()
	for i := 0; i < 3; i++ {
		_, err := d.CreateTexture(TextureDesc{Width: 1, Height: 1, Format: FormatRGBA8, MipLevels: 1})
		require.NoError(t, err)
	}

	d.Close()
	assert.Equal(t, 0, d.Stats().Live)
	assert.Equal(t, 3, d.Stats().Deleted)
}

func TestSelectLevel(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		levels int
		scale  float64
		want   int
	}{
		{"no mipmaps", FilterLinear, 8, 0.25, 0},
		{"magnified", FilterLinearMipmapLinear, 8, 2, 0},
		{"half", FilterLinearMipmapLinear, 8, 0.5, 1},
		{"between levels floors", FilterLinearMipmapLinear, 8, 0.3, 1},
		{"between levels rounds", FilterNearestMipmapNearest, 8, 0.3, 2},
		{"clamped", FilterLinearMipmapNearest, 3, 0.01, 2},
		{"single level", FilterLinearMipmapLinear, 1, 0.1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectLevel(tt.filter, tt.levels, tt.scale))
		})
	}
}

func TestEbitenMapping(t *testing.T) {
	s := Sampler{MinFilter: FilterNearestMipmapLinear, MagFilter: FilterLinear}
	assert.Equal(t, ebiten.FilterLinear, EbitenFilter(s, 2))
	assert.Equal(t, ebiten.FilterNearest, EbitenFilter(s, 0.5))

	assert.Equal(t, ebiten.AddressRepeat, EbitenAddress(Sampler{WrapS: WrapRepeat}))
	assert.Equal(t, ebiten.AddressClampToZero, EbitenAddress(Sampler{WrapS: WrapClampToBorder}))
	assert.Equal(t, ebiten.AddressUnsafe, EbitenAddress(Sampler{WrapS: WrapClampToEdge}))
}

func TestExpandRGBA(t *testing.T) {
	assert.Equal(t, []byte{1, 2, 3, 255, 4, 5, 6, 255}, ExpandRGBA(FormatRGB8, []byte{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, []byte{9, 9, 9, 255}, ExpandRGBA(FormatR8, []byte{9}))

	rgba := []byte{1, 2, 3, 4}
	assert.Equal(t, rgba, ExpandRGBA(FormatRGBA8, rgba))
}
