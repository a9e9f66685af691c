package texture

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/younwookim/skyview/internal/gfx"
)

// MipChain returns levels images: img itself followed by successively
// halved copies, never smaller than 1x1. img must be a normalized
// *image.RGBA or *image.Gray.
func MipChain(img draw.Image, levels int) []draw.Image {
	if levels < 1 {
		levels = 1
	}
	b := img.Bounds()
	chain := make([]draw.Image, 0, levels)
	chain = append(chain, img)

	prev := img
	for level := 1; level < levels; level++ {
		w, h := gfx.LevelSize(b.Dx(), b.Dy(), level)
		rect := image.Rect(0, 0, w, h)

		var dst draw.Image
		if _, ok := img.(*image.Gray); ok {
			dst = image.NewGray(rect)
		} else {
			dst = image.NewRGBA(rect)
		}
		// Scale from the previous level so each step is a 2:1 reduction.
		draw.BiLinear.Scale(dst, rect, prev, prev.Bounds(), draw.Src, nil)
		chain = append(chain, dst)
		prev = dst
	}
	return chain
}

// levelCount returns the number of levels to allocate for a w x h texture.
func levelCount(w, h int, mipmaps bool) int {
	if !mipmaps {
		return 1
	}
	return gfx.MaxMipLevels(w, h)
}
