package texture

import (
	"image"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/errgroup"

	"github.com/younwookim/skyview/internal/gfx"
)

var (
	ErrFaceCount = errors.New("texture: cubemap needs exactly six faces")
	ErrFaceSize  = errors.New("texture: cubemap faces must be square and the same size")
)

// Face indexes a cubemap layer.
type Face int

const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// FaceCount is the number of layers in a cubemap.
const FaceCount = 6

func (f Face) String() string {
	switch f {
	case FacePosX:
		return "+X"
	case FaceNegX:
		return "-X"
	case FacePosY:
		return "+Y"
	case FaceNegY:
		return "-Y"
	case FacePosZ:
		return "+Z"
	case FaceNegZ:
		return "-Z"
	default:
		return "?"
	}
}

// DefaultCubemapOptions clamps on every axis and skips mipmaps.
func DefaultCubemapOptions() Options {
	return Options{Sampler: gfx.CubemapSampler()}
}

// Cubemap is a six-layer cube texture. Faces are stored in Face order.
type Cubemap struct {
	dev       gfx.Device
	handle    gfx.Handle
	label     string
	size      int
	format    gfx.Format
	mipLevels int
	sampler   gfx.Sampler
}

// LoadCubemap decodes the six face files, in Face order, and creates a
// cubemap. Faces are decoded concurrently and uploaded in order.
func LoadCubemap(dev gfx.Device, paths []string, opts Options) (*Cubemap, error) {
	if opts.Label == "" && len(paths) > 0 {
		opts.Label = paths[0]
	}
	if len(paths) != FaceCount {
		err := errors.Wrapf(ErrFaceCount, "got %d paths", len(paths))
		slog.Warn("cubemap: load aborted", "label", opts.Label, "err", err)
		return nil, err
	}

	faces := make([]image.Image, FaceCount)
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			img, err := Decode(path)
			if err != nil {
				return errors.Wrapf(err, "face %s", Face(i))
			}
			faces[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("cubemap: load aborted", "label", opts.Label, "err", err)
		return nil, err
	}

	return NewCubemap(dev, faces, opts)
}

// NewCubemap creates a cubemap from six decoded faces in Face order.
// The cube is stored as R8 only when every face is gray.
func NewCubemap(dev gfx.Device, faces []image.Image, opts Options) (*Cubemap, error) {
	size, err := checkFaces(faces)
	if err != nil {
		slog.Warn("cubemap: construction aborted", "label", opts.Label, "err", err)
		return nil, err
	}

	format := gfx.FormatR8
	for _, f := range faces {
		if formatOf(f) != gfx.FormatR8 {
			format = gfx.FormatRGBA8
			break
		}
	}

	levels := levelCount(size, size, opts.Mipmaps)
	data := make([][][]byte, FaceCount)
	for i, f := range faces {
		for _, level := range MipChain(normalize(f, format), levels) {
			data[i] = append(data[i], pixelsOf(level, format))
		}
	}

	desc := gfx.TextureDesc{
		Label:     opts.Label,
		Kind:      gfx.TextureCube,
		Width:     size,
		Height:    size,
		Format:    format,
		MipLevels: levels,
	}
	h, err := create(dev, desc, data, opts.Sampler)
	if err != nil {
		slog.Warn("cubemap: construction aborted", "label", opts.Label, "err", err)
		return nil, err
	}

	return &Cubemap{
		dev:       dev,
		handle:    h,
		label:     opts.Label,
		size:      size,
		format:    format,
		mipLevels: levels,
		sampler:   opts.Sampler,
	}, nil
}

func checkFaces(faces []image.Image) (int, error) {
	if len(faces) != FaceCount {
		return 0, errors.Wrapf(ErrFaceCount, "got %d faces", len(faces))
	}
	var size image.Point
	for i, f := range faces {
		if f == nil {
			return 0, errors.Wrapf(ErrFaceCount, "face %s is missing", Face(i))
		}
		s := f.Bounds().Size()
		if s.X <= 0 || s.X != s.Y {
			return 0, errors.Wrapf(ErrFaceSize, "face %s is %dx%d", Face(i), s.X, s.Y)
		}
		if i == 0 {
			size = s
		} else if s != size {
			return 0, errors.Wrapf(ErrFaceSize, "face %s is %dx%d, face %s is %dx%d",
				Face(i), s.X, s.Y, FacePosX, size.X, size.Y)
		}
	}
	return size.X, nil
}

// Handle returns the device handle, or gfx.NoHandle after Release.
func (c *Cubemap) Handle() gfx.Handle {
	if c == nil {
		return gfx.NoHandle
	}
	return c.handle
}

// Valid reports whether the cubemap still owns a device resource.
func (c *Cubemap) Valid() bool { return c.Handle().Valid() }

func (c *Cubemap) Label() string        { return c.label }
func (c *Cubemap) Size() int            { return c.size }
func (c *Cubemap) Format() gfx.Format   { return c.format }
func (c *Cubemap) MipLevels() int       { return c.mipLevels }
func (c *Cubemap) Sampler() gfx.Sampler { return c.sampler }

// SetSampler changes the sampling parameters of a live cubemap.
func (c *Cubemap) SetSampler(s gfx.Sampler) error {
	if !c.Valid() {
		return ErrReleased
	}
	if err := c.dev.SetSampler(c.handle, s); err != nil {
		return errors.Wrapf(err, "cubemap %q", c.label)
	}
	c.sampler = s
	return nil
}

// Release deletes the device cubemap. It is safe to call more than once.
func (c *Cubemap) Release() {
	if !c.Valid() {
		return
	}
	c.dev.DeleteTexture(c.handle)
	c.handle = gfx.NoHandle
}

// FaceForDirection returns the face a direction vector samples and the
// face coordinates in [0,1], using the usual cube-map selection rules.
// The zero vector maps to the centre of +X.
func FaceForDirection(dir mgl32.Vec3) (Face, float32, float32) {
	x, y, z := dir.X(), dir.Y(), dir.Z()
	ax, ay, az := abs32(x), abs32(y), abs32(z)

	var face Face
	var sc, tc, ma float32
	switch {
	case ax == 0 && ay == 0 && az == 0:
		return FacePosX, 0.5, 0.5
	case ax >= ay && ax >= az:
		ma = ax
		if x > 0 {
			face, sc, tc = FacePosX, -z, -y
		} else {
			face, sc, tc = FaceNegX, z, -y
		}
	case ay >= az:
		ma = ay
		if y > 0 {
			face, sc, tc = FacePosY, x, z
		} else {
			face, sc, tc = FaceNegY, x, -z
		}
	default:
		ma = az
		if z > 0 {
			face, sc, tc = FacePosZ, x, -y
		} else {
			face, sc, tc = FaceNegZ, -x, -y
		}
	}
	return face, (sc/ma + 1) / 2, (tc/ma + 1) / 2
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
