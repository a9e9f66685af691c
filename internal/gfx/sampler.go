package gfx

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Filter selects how texels are combined when sampling.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterNearestMipmapNearest
	FilterLinearMipmapNearest
	FilterNearestMipmapLinear
	FilterLinearMipmapLinear
)

var filterNames = map[Filter]string{
	FilterNearest:              "nearest",
	FilterLinear:               "linear",
	FilterNearestMipmapNearest: "nearest_mipmap_nearest",
	FilterLinearMipmapNearest:  "linear_mipmap_nearest",
	FilterNearestMipmapLinear:  "nearest_mipmap_linear",
	FilterLinearMipmapLinear:   "linear_mipmap_linear",
}

func (f Filter) String() string {
	if s, ok := filterNames[f]; ok {
		return s
	}
	return "unknown"
}

// UsesMipmaps reports whether the filter reads levels other than 0.
func (f Filter) UsesMipmaps() bool {
	return f >= FilterNearestMipmapNearest && f <= FilterLinearMipmapLinear
}

// Linear reports whether texels within a level are blended.
func (f Filter) Linear() bool {
	switch f {
	case FilterLinear, FilterLinearMipmapNearest, FilterLinearMipmapLinear:
		return true
	}
	return false
}

// ParseFilter converts a config name into a Filter.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range filterNames {
		if name == s {
			return f, nil
		}
	}
	return FilterNearest, errors.Newf("gfx: unknown filter %q", s)
}

// Wrap selects how coordinates outside [0,1] are resolved.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
	WrapClampToBorder
	WrapMirroredRepeat
)

var wrapNames = map[Wrap]string{
	WrapRepeat:         "repeat",
	WrapClampToEdge:    "clamp_to_edge",
	WrapClampToBorder:  "clamp_to_border",
	WrapMirroredRepeat: "mirrored_repeat",
}

func (w Wrap) String() string {
	if s, ok := wrapNames[w]; ok {
		return s
	}
	return "unknown"
}

// ParseWrap converts a config name into a Wrap.
func ParseWrap(s string) (Wrap, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for w, name := range wrapNames {
		if name == s {
			return w, nil
		}
	}
	return WrapRepeat, errors.Newf("gfx: unknown wrap mode %q", s)
}

// Sampler holds the per-texture sampling parameters.
type Sampler struct {
	MinFilter Filter
	MagFilter Filter
	WrapS     Wrap
	WrapT     Wrap
	WrapR     Wrap
}

// DefaultSampler is used when callers do not configure one.
func DefaultSampler() Sampler {
	return Sampler{
		MinFilter: FilterLinear,
		MagFilter: FilterLinear,
		WrapS:     WrapRepeat,
		WrapT:     WrapRepeat,
		WrapR:     WrapRepeat,
	}
}

// CubemapSampler clamps on every axis so face seams do not bleed.
func CubemapSampler() Sampler {
	return Sampler{
		MinFilter: FilterLinear,
		MagFilter: FilterLinear,
		WrapS:     WrapClampToEdge,
		WrapT:     WrapClampToEdge,
		WrapR:     WrapClampToEdge,
	}
}

// Validate rejects magnification filters that would read mip levels.
func (s Sampler) Validate() error {
	if s.MagFilter.UsesMipmaps() {
		return errors.Newf("gfx: mag filter %s cannot use mipmaps", s.MagFilter)
	}
	if _, ok := filterNames[s.MinFilter]; !ok {
		return errors.Newf("gfx: unknown min filter %d", int(s.MinFilter))
	}
	if _, ok := filterNames[s.MagFilter]; !ok {
		return errors.Newf("gfx: unknown mag filter %d", int(s.MagFilter))
	}
	for _, w := range []Wrap{s.WrapS, s.WrapT, s.WrapR} {
		if _, ok := wrapNames[w]; !ok {
			return errors.Newf("gfx: unknown wrap mode %d", int(w))
		}
	}
	return nil
}
