// Package gfxtest provides an in-memory gfx.Device for tests.
package gfxtest

import (
	"github.com/cockroachdb/errors"

	"github.com/younwookim/skyview/internal/gfx"
)

// Call records one device call.
type Call struct {
	Op     string
	Handle gfx.Handle
	Layer  int
	Level  int
}

// Texture is the recorded state of one live texture.
type Texture struct {
	Desc     gfx.TextureDesc
	Sampler  gfx.Sampler
	Uploaded map[[2]int][]byte // [layer, level] -> pixels
}

// Device records calls and keeps texture state in memory.
// Set the Fail* fields to make the next matching call return an error.
type Device struct {
	FailCreate  error
	FailUpload  error
	FailSampler error

	// FailUploadAt fails only the n-th UploadPixels call (1-based) when FailUpload is set.
	FailUploadAt int

	Calls    []Call
	Textures map[gfx.Handle]*Texture

	next    gfx.Handle
	uploads int
}

// NewDevice creates an empty recording device.
func NewDevice() *Device {
	return &Device{
		Textures: make(map[gfx.Handle]*Texture),
		next:     1,
	}
}

func (d *Device) CreateTexture(desc gfx.TextureDesc) (gfx.Handle, error) {
	d.Calls = append(d.Calls, Call{Op: "create"})
	if d.FailCreate != nil {
		return gfx.NoHandle, d.FailCreate
	}
	if err := desc.Validate(); err != nil {
		return gfx.NoHandle, err
	}
	h := d.next
	d.next++
	d.Textures[h] = &Texture{
		Desc:     desc,
		Sampler:  gfx.DefaultSampler(),
		Uploaded: make(map[[2]int][]byte),
	}
	d.Calls[len(d.Calls)-1].Handle = h
	return h, nil
}

func (d *Device) UploadPixels(h gfx.Handle, layer, level int, pix []byte) error {
	d.Calls = append(d.Calls, Call{Op: "upload", Handle: h, Layer: layer, Level: level})
	d.uploads++
	if d.FailUpload != nil && (d.FailUploadAt == 0 || d.FailUploadAt == d.uploads) {
		return d.FailUpload
	}
	tex, ok := d.Textures[h]
	if !ok {
		return errors.Wrapf(gfx.ErrUnknownHandle, "upload to %d", h)
	}
	if layer < 0 || layer >= tex.Desc.Kind.Layers() {
		return gfx.ErrLayerOutOfRange
	}
	if level < 0 || level >= tex.Desc.MipLevels {
		return gfx.ErrLevelOutOfRange
	}
	w, hh := gfx.LevelSize(tex.Desc.Width, tex.Desc.Height, level)
	if len(pix) != w*hh*tex.Desc.Format.BytesPerPixel() {
		return gfx.ErrPixelCount
	}
	tex.Uploaded[[2]int{layer, level}] = append([]byte(nil), pix...)
	return nil
}

func (d *Device) SetSampler(h gfx.Handle, s gfx.Sampler) error {
	d.Calls = append(d.Calls, Call{Op: "sampler", Handle: h})
	if d.FailSampler != nil {
		return d.FailSampler
	}
	tex, ok := d.Textures[h]
	if !ok {
		return errors.Wrapf(gfx.ErrUnknownHandle, "sampler for %d", h)
	}
	if err := s.Validate(); err != nil {
		return err
	}
	tex.Sampler = s
	return nil
}

func (d *Device) DeleteTexture(h gfx.Handle) {
	d.Calls = append(d.Calls, Call{Op: "delete", Handle: h})
	delete(d.Textures, h)
}

// Count returns how many calls of op were made.
func (d *Device) Count(op string) int {
	n := 0
	for _, c := range d.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Live returns the number of textures not yet deleted.
func (d *Device) Live() int {
	return len(d.Textures)
}
