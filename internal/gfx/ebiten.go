package gfx

import (
	"log/slog"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/kamstrup/intmap"
	"github.com/loov/hrtime"
)

// Stats counts device activity since creation.
type Stats struct {
	Live          int
	Created       int
	Deleted       int
	BytesUploaded int64
	UploadTime    time.Duration
}

type ebitenTexture struct {
	desc    TextureDesc
	levels  [][]*ebiten.Image // [layer][level]
	sampler Sampler
}

// EbitenDevice implements Device with one ebiten.Image per layer and level.
// It must be used from the goroutine that runs the ebiten game loop.
type EbitenDevice struct {
	next     Handle
	textures *intmap.Map[Handle, *ebitenTexture]
	stats    Stats
}

// NewEbitenDevice creates an empty device.
func NewEbitenDevice() *EbitenDevice {
	return &EbitenDevice{
		next:     1, // 0 is NoHandle
		textures: intmap.New[Handle, *ebitenTexture](64),
	}
}

// CreateTexture implements Device.
func (d *EbitenDevice) CreateTexture(desc TextureDesc) (Handle, error) {
	if err := desc.Validate(); err != nil {
		return NoHandle, err
	}

	tex := &ebitenTexture{
		desc:    desc,
		levels:  make([][]*ebiten.Image, desc.Kind.Layers()),
		sampler: DefaultSampler(),
	}
	for layer := range tex.levels {
		tex.levels[layer] = make([]*ebiten.Image, desc.MipLevels)
		for level := range tex.levels[layer] {
			w, h := LevelSize(desc.Width, desc.Height, level)
			tex.levels[layer][level] = ebiten.NewImage(w, h)
		}
	}

	h := d.next
	d.next++
	d.textures.Put(h, tex)
	d.stats.Created++
	d.stats.Live++

	slog.Debug("gfx: texture created", "handle", h, "label", desc.Label, "kind", desc.Kind,
		"width", desc.Width, "height", desc.Height, "format", desc.Format, "levels", desc.MipLevels)
	return h, nil
}

// UploadPixels implements Device.
func (d *EbitenDevice) UploadPixels(h Handle, layer, level int, pix []byte) error {
	tex, ok := d.textures.Get(h)
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "upload to %d", h)
	}
	if layer < 0 || layer >= len(tex.levels) {
		return errors.Wrapf(ErrLayerOutOfRange, "layer %d of %d", layer, len(tex.levels))
	}
	if level < 0 || level >= tex.desc.MipLevels {
		return errors.Wrapf(ErrLevelOutOfRange, "level %d of %d", level, tex.desc.MipLevels)
	}

	w, hh := LevelSize(tex.desc.Width, tex.desc.Height, level)
	want := w * hh * tex.desc.Format.BytesPerPixel()
	if len(pix) != want {
		return errors.Wrapf(ErrPixelCount, "got %d bytes, want %d for %dx%d %s", len(pix), want, w, hh, tex.desc.Format)
	}

	start := hrtime.Now()
	tex.levels[layer][level].WritePixels(ExpandRGBA(tex.desc.Format, pix))
	d.stats.UploadTime += hrtime.Since(start)
	d.stats.BytesUploaded += int64(len(pix))
	return nil
}

// SetSampler implements Device.
func (d *EbitenDevice) SetSampler(h Handle, s Sampler) error {
	tex, ok := d.textures.Get(h)
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "sampler for %d", h)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	tex.sampler = s
	return nil
}

// DeleteTexture implements Device.
func (d *EbitenDevice) DeleteTexture(h Handle) {
	tex, ok := d.textures.Get(h)
	if !ok {
		return
	}
	for _, layer := range tex.levels {
		for _, img := range layer {
			img.Deallocate()
		}
	}
	d.textures.Del(h)
	d.stats.Deleted++
	d.stats.Live--
	slog.Debug("gfx: texture deleted", "handle", h, "label", tex.desc.Label)
}

// Close deletes every live texture.
func (d *EbitenDevice) Close() {
	var live []Handle
	d.textures.ForEach(func(h Handle, _ *ebitenTexture) bool {
		live = append(live, h)
		return true
	})
	if len(live) > 0 {
		slog.Warn("gfx: textures still live at close", "count", len(live))
	}
	for _, h := range live {
		d.DeleteTexture(h)
	}
}

// Stats returns a snapshot of device counters.
func (d *EbitenDevice) Stats() Stats {
	return d.stats
}

// Image returns the ebiten image backing one layer and level of h.
func (d *EbitenDevice) Image(h Handle, layer, level int) (*ebiten.Image, error) {
	tex, ok := d.textures.Get(h)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownHandle, "image for %d", h)
	}
	if layer < 0 || layer >= len(tex.levels) {
		return nil, errors.Wrapf(ErrLayerOutOfRange, "layer %d of %d", layer, len(tex.levels))
	}
	if level < 0 || level >= len(tex.levels[layer]) {
		return nil, errors.Wrapf(ErrLevelOutOfRange, "level %d of %d", level, len(tex.levels[layer]))
	}
	return tex.levels[layer][level], nil
}

// Sampler returns the sampling parameters configured for h.
func (d *EbitenDevice) Sampler(h Handle) (Sampler, bool) {
	tex, ok := d.textures.Get(h)
	if !ok {
		return Sampler{}, false
	}
	return tex.sampler, true
}

// DrawImage draws one layer of h onto dst scaled uniformly by scale,
// picking the mip level and filter from the texture's sampler.
func (d *EbitenDevice) DrawImage(dst *ebiten.Image, h Handle, layer int, x, y, scale float64) error {
	tex, ok := d.textures.Get(h)
	if !ok {
		return errors.Wrapf(ErrUnknownHandle, "draw %d", h)
	}
	level := SelectLevel(tex.sampler.MinFilter, tex.desc.MipLevels, scale)
	src, err := d.Image(h, layer, level)
	if err != nil {
		return err
	}

	// Level n is 2^n smaller, so scale it back up.
	levelScale := scale * float64(int(1)<<level)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(levelScale, levelScale)
	op.GeoM.Translate(x, y)
	op.Filter = EbitenFilter(tex.sampler, scale)
	dst.DrawImage(src, op)
	return nil
}

// SelectLevel picks the mip level to sample when a texture is drawn at scale.
func SelectLevel(minFilter Filter, levels int, scale float64) int {
	if !minFilter.UsesMipmaps() || levels <= 1 || scale >= 1 || scale <= 0 {
		return 0
	}
	lod := math.Log2(1 / scale)
	var level int
	switch minFilter {
	case FilterNearestMipmapNearest, FilterLinearMipmapNearest:
		level = int(math.Round(lod))
	default:
		// ebiten has no trilinear blend; take the sharper level.
		level = int(math.Floor(lod))
	}
	if level >= levels {
		level = levels - 1
	}
	return level
}

// EbitenFilter maps the sampler to ebiten's filter for a draw at scale.
func EbitenFilter(s Sampler, scale float64) ebiten.Filter {
	f := s.MagFilter
	if scale < 1 {
		f = s.MinFilter
	}
	if f.Linear() {
		return ebiten.FilterLinear
	}
	return ebiten.FilterNearest
}

// EbitenAddress maps the S wrap mode to ebiten's address mode.
// ebiten has a single mode for both axes and no mirrored repeat.
func EbitenAddress(s Sampler) ebiten.Address {
	switch s.WrapS {
	case WrapRepeat, WrapMirroredRepeat:
		return ebiten.AddressRepeat
	case WrapClampToBorder:
		return ebiten.AddressClampToZero
	default:
		return ebiten.AddressUnsafe
	}
}

// ExpandRGBA converts pix in format f into premultiplied RGBA8.
// RGBA8 input is returned as is.
func ExpandRGBA(f Format, pix []byte) []byte {
	switch f {
	case FormatRGB8:
		out := make([]byte, len(pix)/3*4)
		for i, j := 0, 0; i+2 < len(pix); i, j = i+3, j+4 {
			out[j] = pix[i]
			out[j+1] = pix[i+1]
			out[j+2] = pix[i+2]
			out[j+3] = 0xff
		}
		return out
	case FormatR8:
		out := make([]byte, len(pix)*4)
		for i, v := range pix {
			out[i*4] = v
			out[i*4+1] = v
			out[i*4+2] = v
			out[i*4+3] = 0xff
		}
		return out
	default:
		return pix
	}
}
