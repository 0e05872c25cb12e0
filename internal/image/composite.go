package image

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// BlendMode specifies how a foreground is combined with a background.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendOverlay
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "normal"
	case BlendMultiply:
		return "multiply"
	case BlendScreen:
		return "screen"
	case BlendOverlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// ParseBlendMode maps a blend mode name to a BlendMode. An empty name is
// BlendNormal.
func ParseBlendMode(s string) (BlendMode, error) {
	if s == "" {
		return BlendNormal, nil
	}
	for _, m := range []BlendMode{BlendNormal, BlendMultiply, BlendScreen, BlendOverlay} {
		if m.String() == s {
			return m, nil
		}
	}
	return BlendNormal, fmt.Errorf("unknown blend mode %q", s)
}

// Composite blends src over dst in place. src is aligned to dst's origin and
// its alpha, scaled by opacity, controls how much of the blended color is
// used.
func Composite(dst *image.RGBA, src image.Image, mode BlendMode, opacity float64) {
	sb := src.Bounds()
	db := dst.Bounds()
	w := min(sb.Dx(), db.Dx())
	h := min(sb.Dy(), db.Dy())

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			s := src.At(sb.Min.X+x, sb.Min.Y+y)
			i := dst.PixOffset(db.Min.X+x, db.Min.Y+y)
			d := color.RGBA{R: dst.Pix[i], G: dst.Pix[i+1], B: dst.Pix[i+2], A: dst.Pix[i+3]}
			out := blend(d, s, mode, opacity)
			dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = out.R, out.G, out.B, out.A
		}
	}
}

// blend performs the blend operation between two colors.
func blend(dst color.RGBA, src color.Color, mode BlendMode, opacity float64) color.RGBA {
	sr, sg, sb, sa := src.RGBA()
	if sa == 0 {
		return dst
	}
	// Un-premultiply the source so blend math runs on straight color.
	sf := [3]float64{
		float64(sr) / float64(sa),
		float64(sg) / float64(sa),
		float64(sb) / float64(sa),
	}
	df := [4]float64{
		float64(dst.R) / 255, float64(dst.G) / 255, float64(dst.B) / 255, float64(dst.A) / 255,
	}

	var rf [3]float64
	for i := 0; i < 3; i++ {
		switch mode {
		case BlendMultiply:
			rf[i] = sf[i] * df[i]
		case BlendScreen:
			rf[i] = 1 - (1-sf[i])*(1-df[i])
		case BlendOverlay:
			if df[i] < 0.5 {
				rf[i] = 2 * sf[i] * df[i]
			} else {
				rf[i] = 1 - 2*(1-sf[i])*(1-df[i])
			}
		default:
			rf[i] = sf[i]
		}
	}

	alpha := float64(sa) / 65535 * opacity
	return color.RGBA{
		R: unit8(rf[0]*alpha + df[0]*(1-alpha)),
		G: unit8(rf[1]*alpha + df[1]*(1-alpha)),
		B: unit8(rf[2]*alpha + df[2]*(1-alpha)),
		A: unit8(alpha + df[3]*(1-alpha)),
	}
}

func unit8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
