package texture

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/cockroachdb/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/younwookim/skyview/internal/gfx"
)

// Decode reads an image file in any registered format
// (PNG, JPEG, GIF, BMP, TIFF, WebP).
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open texture %q", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode texture %q", path)
	}
	return img, nil
}

// formatOf picks the device format used to store img.
func formatOf(img image.Image) gfx.Format {
	if _, ok := img.(*image.Gray); ok {
		return gfx.FormatR8
	}
	return gfx.FormatRGBA8
}

// normalize converts img into *image.RGBA or *image.Gray anchored at the origin.
func normalize(img image.Image, format gfx.Format) draw.Image {
	b := img.Bounds()
	rect := image.Rect(0, 0, b.Dx(), b.Dy())

	if format == gfx.FormatR8 {
		if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) && g.Stride == b.Dx() {
			return g
		}
		dst := image.NewGray(rect)
		draw.Draw(dst, rect, img, b.Min, draw.Src)
		return dst
	}

	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Stride == 4*b.Dx() {
		return rgba
	}
	dst := image.NewRGBA(rect)
	draw.Draw(dst, rect, img, b.Min, draw.Src)
	return dst
}

// pixelsOf returns tightly packed pixels of a normalized image in format.
func pixelsOf(img draw.Image, format gfx.Format) []byte {
	switch im := img.(type) {
	case *image.Gray:
		return im.Pix
	case *image.RGBA:
		if format != gfx.FormatRGB8 {
			return im.Pix
		}
		out := make([]byte, 0, len(im.Pix)/4*3)
		for i := 0; i+3 < len(im.Pix); i += 4 {
			out = append(out, im.Pix[i], im.Pix[i+1], im.Pix[i+2])
		}
		return out
	}
	return nil
}

// imageOf wraps raw pixels in an image so they can be scaled.
// RGB8 data is widened to opaque RGBA.
func imageOf(w, h int, format gfx.Format, pix []byte) draw.Image {
	rect := image.Rect(0, 0, w, h)
	switch format {
	case gfx.FormatR8:
		return &image.Gray{Pix: pix, Stride: w, Rect: rect}
	case gfx.FormatRGB8:
		return &image.RGBA{Pix: gfx.ExpandRGBA(format, pix), Stride: 4 * w, Rect: rect}
	default:
		return &image.RGBA{Pix: pix, Stride: 4 * w, Rect: rect}
	}
}
