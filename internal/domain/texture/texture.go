// Package texture wraps device textures and cubemaps.
//
// Each Texture or Cubemap owns exactly one gfx.Handle. The handle is
// gfx.NoHandle only when construction failed or after Release. A failed
// construction logs a warning, deletes anything it already created on the
// device and returns the error.
package texture

import (
	"image"
	"log/slog"

	"github.com/cockroachdb/errors"
	"golang.org/x/image/draw"

	"github.com/younwookim/skyview/internal/gfx"
)

var (
	ErrReleased    = errors.New("texture: already released")
	ErrPixelLength = errors.New("texture: pixel data does not match size")
	ErrEmptyImage  = errors.New("texture: image has no pixels")
)

// Options control how a texture is created.
type Options struct {
	// Label names the resource in logs. Load defaults it to the file path.
	Label   string
	Sampler gfx.Sampler
	Mipmaps bool
}

// DefaultOptions returns linear filtering, repeat wrapping and no mipmaps.
func DefaultOptions() Options {
	return Options{Sampler: gfx.DefaultSampler()}
}

// Texture is a 2D device texture.
type Texture struct {
	dev       gfx.Device
	handle    gfx.Handle
	label     string
	width     int
	height    int
	format    gfx.Format
	mipLevels int
	sampler   gfx.Sampler
}

// Load decodes the image at path and creates a texture from it.
func Load(dev gfx.Device, path string, opts Options) (*Texture, error) {
	if opts.Label == "" {
		opts.Label = path
	}
	img, err := Decode(path)
	if err != nil {
		slog.Warn("texture: load aborted", "label", opts.Label, "err", err)
		return nil, err
	}
	return New(dev, img, opts)
}

// New creates a texture holding img. Gray images are stored as R8,
// everything else as RGBA8.
func New(dev gfx.Device, img image.Image, opts Options) (*Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		err := errors.Wrapf(ErrEmptyImage, "%q", opts.Label)
		slog.Warn("texture: construction aborted", "label", opts.Label, "err", err)
		return nil, err
	}
	format := formatOf(img)
	return build(dev, normalize(img, format), format, opts)
}

// FromPixels creates a texture from tightly packed pixels.
func FromPixels(dev gfx.Device, w, h int, format gfx.Format, pix []byte, opts Options) (*Texture, error) {
	bpp := format.BytesPerPixel()
	if bpp == 0 || w <= 0 || h <= 0 {
		err := errors.Wrapf(gfx.ErrInvalidSize, "%dx%d %s", w, h, format)
		slog.Warn("texture: construction aborted", "label", opts.Label, "err", err)
		return nil, err
	}
	if len(pix) != w*h*bpp {
		err := errors.Wrapf(ErrPixelLength, "got %d bytes, want %d", len(pix), w*h*bpp)
		slog.Warn("texture: construction aborted", "label", opts.Label, "err", err)
		return nil, err
	}
	return build(dev, imageOf(w, h, format, pix), format, opts)
}

func build(dev gfx.Device, img draw.Image, format gfx.Format, opts Options) (*Texture, error) {
	b := img.Bounds()
	levels := levelCount(b.Dx(), b.Dy(), opts.Mipmaps)
	desc := gfx.TextureDesc{
		Label:     opts.Label,
		Kind:      gfx.Texture2D,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Format:    format,
		MipLevels: levels,
	}

	chain := MipChain(img, levels)
	data := make([][][]byte, 1)
	for _, level := range chain {
		data[0] = append(data[0], pixelsOf(level, format))
	}

	h, err := create(dev, desc, data, opts.Sampler)
	if err != nil {
		slog.Warn("texture: construction aborted", "label", opts.Label, "err", err)
		return nil, err
	}

	return &Texture{
		dev:       dev,
		handle:    h,
		label:     opts.Label,
		width:     desc.Width,
		height:    desc.Height,
		format:    format,
		mipLevels: levels,
		sampler:   opts.Sampler,
	}, nil
}

// create allocates desc on dev, uploads data[layer][level] and applies
// the sampler. Anything created is deleted again on failure.
func create(dev gfx.Device, desc gfx.TextureDesc, data [][][]byte, sampler gfx.Sampler) (gfx.Handle, error) {
	h, err := dev.CreateTexture(desc)
	if err != nil {
		return gfx.NoHandle, errors.Wrapf(err, "create %s texture %dx%d", desc.Kind, desc.Width, desc.Height)
	}

	for layer, levels := range data {
		for level, pix := range levels {
			if err := dev.UploadPixels(h, layer, level, pix); err != nil {
				dev.DeleteTexture(h)
				return gfx.NoHandle, errors.Wrapf(err, "upload layer %d level %d", layer, level)
			}
		}
	}

	if err := dev.SetSampler(h, sampler); err != nil {
		dev.DeleteTexture(h)
		return gfx.NoHandle, errors.Wrap(err, "set sampler")
	}
	return h, nil
}

// Handle returns the device handle, or gfx.NoHandle after Release.
func (t *Texture) Handle() gfx.Handle {
	if t == nil {
		return gfx.NoHandle
	}
	return t.handle
}

// Valid reports whether the texture still owns a device resource.
func (t *Texture) Valid() bool { return t.Handle().Valid() }

func (t *Texture) Label() string        { return t.label }
func (t *Texture) Width() int           { return t.width }
func (t *Texture) Height() int          { return t.height }
func (t *Texture) Format() gfx.Format   { return t.format }
func (t *Texture) MipLevels() int       { return t.mipLevels }
func (t *Texture) Sampler() gfx.Sampler { return t.sampler }

// SetSampler changes the sampling parameters of a live texture.
func (t *Texture) SetSampler(s gfx.Sampler) error {
	if !t.Valid() {
		return ErrReleased
	}
	if err := t.dev.SetSampler(t.handle, s); err != nil {
		return errors.Wrapf(err, "texture %q", t.label)
	}
	t.sampler = s
	return nil
}

// Release deletes the device texture. It is safe to call more than once.
func (t *Texture) Release() {
	if !t.Valid() {
		return
	}
	t.dev.DeleteTexture(t.handle)
	t.handle = gfx.NoHandle
}
