package viewer

import (
	"image"
	"image/color"

	"github.com/younwookim/skyview/internal/domain/texture"
)

var (
	colorZenith  = color.RGBA{40, 80, 170, 255}
	colorHorizon = color.RGBA{170, 200, 235, 255}
	colorGround  = color.RGBA{70, 60, 50, 255}
	colorGrid    = color.RGBA{255, 255, 255, 255}
)

// faceTint marks each side face so the camera direction is readable.
var faceTint = map[texture.Face]color.RGBA{
	texture.FacePosX: {255, 120, 120, 255},
	texture.FaceNegX: {120, 255, 120, 255},
	texture.FacePosZ: {255, 255, 120, 255},
	texture.FaceNegZ: {120, 255, 255, 255},
}

// proceduralFaces builds a gradient sky used when no face images are
// configured or they fail to load. Side faces fade from zenith to horizon
// top to bottom and carry a tinted grid; +Y is the zenith and -Y the ground.
func proceduralFaces(size int) []image.Image {
	faces := make([]image.Image, texture.FaceCount)
	for i := range faces {
		face := texture.Face(i)
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				img.SetRGBA(x, y, skyColor(face, x, y, size))
			}
		}
		faces[i] = img
	}
	return faces
}

func skyColor(face texture.Face, x, y, size int) color.RGBA {
	switch face {
	case texture.FacePosY:
		return colorZenith
	case texture.FaceNegY:
		if onGrid(x, y, size) {
			return lerp(colorGround, colorGrid, 0.2)
		}
		return colorGround
	}
	c := lerp(colorZenith, colorHorizon, float64(y)/float64(max(size-1, 1)))
	if onGrid(x, y, size) {
		c = lerp(c, faceTint[face], 0.6)
	}
	return c
}

// onGrid draws eight cells per face edge.
func onGrid(x, y, size int) bool {
	cell := max(size/8, 1)
	return x%cell == 0 || y%cell == 0
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(p, q uint8) uint8 {
		return uint8(float64(p) + (float64(q)-float64(p))*t + 0.5)
	}
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}
