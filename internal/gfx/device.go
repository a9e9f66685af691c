// Package gfx defines the immediate-mode GPU texture API used by the
// texture and cubemap wrappers, plus an ebiten-backed implementation.
//
// A Device hands out opaque Handles. The zero Handle never refers to a
// live resource, so wrappers use it to mean "not created" or "released".
package gfx

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Handle is an opaque identifier for a device-managed texture.
type Handle uint32

// NoHandle is the zero handle.
const NoHandle Handle = 0

// Valid reports whether h can refer to a live resource.
func (h Handle) Valid() bool { return h != NoHandle }

var (
	ErrUnknownHandle   = errors.New("gfx: unknown texture handle")
	ErrInvalidSize     = errors.New("gfx: invalid texture size")
	ErrInvalidFormat   = errors.New("gfx: unsupported pixel format")
	ErrPixelCount      = errors.New("gfx: pixel data does not match level size")
	ErrLayerOutOfRange = errors.New("gfx: layer out of range")
	ErrLevelOutOfRange = errors.New("gfx: mip level out of range")
)

// Kind is the texture target.
type Kind int

const (
	Texture2D Kind = iota
	TextureCube
)

// Layers returns the number of image layers a texture of this kind holds.
func (k Kind) Layers() int {
	if k == TextureCube {
		return 6
	}
	return 1
}

func (k Kind) String() string {
	switch k {
	case Texture2D:
		return "2D"
	case TextureCube:
		return "Cube"
	default:
		return "Unknown"
	}
}

// Format is the pixel layout of uploaded data.
type Format int

const (
	FormatRGBA8 Format = iota
	FormatRGB8
	FormatR8
)

// BytesPerPixel returns the size of one pixel, or 0 for an unknown format.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA8:
		return 4
	case FormatRGB8:
		return 3
	case FormatR8:
		return 1
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatRGB8:
		return "RGB8"
	case FormatR8:
		return "R8"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// TextureDesc describes a texture to create.
type TextureDesc struct {
	Label     string
	Kind      Kind
	Width     int
	Height    int
	Format    Format
	MipLevels int
}

// Validate checks the description before any device call is made.
func (d TextureDesc) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return errors.Wrapf(ErrInvalidSize, "%dx%d", d.Width, d.Height)
	}
	if d.Kind == TextureCube && d.Width != d.Height {
		return errors.Wrapf(ErrInvalidSize, "cube faces must be square, got %dx%d", d.Width, d.Height)
	}
	if d.Format.BytesPerPixel() == 0 {
		return errors.Wrapf(ErrInvalidFormat, "%s", d.Format)
	}
	if d.MipLevels < 1 || d.MipLevels > MaxMipLevels(d.Width, d.Height) {
		return errors.Wrapf(ErrLevelOutOfRange, "%d levels for %dx%d", d.MipLevels, d.Width, d.Height)
	}
	return nil
}

// LevelSize returns the dimensions of mip level n of a w x h texture.
func LevelSize(w, h, level int) (int, int) {
	w >>= level
	h >>= level
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// MaxMipLevels returns the length of a full mip chain for a w x h texture.
func MaxMipLevels(w, h int) int {
	n := 1
	for w > 1 || h > 1 {
		w >>= 1
		h >>= 1
		n++
	}
	return n
}

// Device is the graphics API consumed by the resource wrappers.
// All calls are synchronous and complete before returning.
type Device interface {
	// CreateTexture allocates storage for every layer and level of desc.
	CreateTexture(desc TextureDesc) (Handle, error)

	// UploadPixels replaces the contents of one layer/level. pix must hold
	// exactly width*height*BytesPerPixel bytes for that level.
	UploadPixels(h Handle, layer, level int, pix []byte) error

	// SetSampler configures filtering and addressing for h.
	SetSampler(h Handle, s Sampler) error

	// DeleteTexture frees h. Unknown handles are ignored.
	DeleteTexture(h Handle)
}
