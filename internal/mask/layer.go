// Package mask implements the paintable removal mask: a transparent RGBA
// buffer the size of the source image whose alpha marks pixels to erase.
package mask

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"magic-eraser/pkg/geometry"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

var (
	// ErrNotInitialized is returned by operations that need pixels before
	// Initialize has been called.
	ErrNotInitialized = errors.New("mask layer not initialized")

	// ErrCorruptSnapshot is returned when a snapshot cannot be decoded.
	ErrCorruptSnapshot = errors.New("corrupt mask snapshot")
)

// Layer is a mask surface in canvas space. The zero value is an
// uninitialized layer on which painting is a no-op.
type Layer struct {
	img *image.RGBA
}

// New returns an uninitialized layer.
func New() *Layer {
	return &Layer{}
}

// Initialize allocates a fully transparent w×h buffer, discarding any
// previous contents.
func (l *Layer) Initialize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid mask size %dx%d", width, height)
	}
	l.img = image.NewRGBA(image.Rect(0, 0, width, height))
	return nil
}

// Release drops the pixel buffer.
func (l *Layer) Release() {
	l.img = nil
}

// Initialized reports whether the layer has a buffer.
func (l *Layer) Initialized() bool {
	return l.img != nil
}

// Bounds returns the layer rectangle, empty when uninitialized.
func (l *Layer) Bounds() image.Rectangle {
	if l.img == nil {
		return image.Rectangle{}
	}
	return l.img.Bounds()
}

// Size returns the layer dimensions as floats.
func (l *Layer) Size() geometry.Size {
	return geometry.SizeOf(l.Bounds())
}

// Clear makes every pixel fully transparent.
func (l *Layer) Clear() {
	if l.img == nil {
		return
	}
	clear(l.img.Pix)
}

// AlphaAt returns the alpha at (x, y), or 0 outside the layer.
func (l *Layer) AlphaAt(x, y int) uint8 {
	if l.img == nil || !(image.Point{X: x, Y: y}).In(l.img.Rect) {
		return 0
	}
	return l.img.Pix[l.img.PixOffset(x, y)+3]
}

// IsEmpty reports whether no pixel has been painted.
func (l *Layer) IsEmpty() bool {
	if l.img == nil {
		return true
	}
	for i := 3; i < len(l.img.Pix); i += 4 {
		if l.img.Pix[i] != 0 {
			return false
		}
	}
	return true
}

// Blend composites a solid color source-over into rect, weighting each pixel
// by coverage (one byte per pixel, row stride stride, origin at rect.Min)
// and by opacity in [0,1]. rect is clipped to the layer.
func (l *Layer) Blend(rect image.Rectangle, coverage []uint8, stride int, c color.RGBA, opacity float64) {
	if l.img == nil || opacity <= 0 {
		return
	}
	clipped := rect.Intersect(l.img.Rect)
	if clipped.Empty() {
		return
	}
	op := uint32(geometry.Clamp(opacity, 0, 1)*255 + 0.5)
	r, g, b := uint32(c.R), uint32(c.G), uint32(c.B)

	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		row := (y-rect.Min.Y)*stride - rect.Min.X
		i := l.img.PixOffset(clipped.Min.X, y)
		for x := clipped.Min.X; x < clipped.Max.X; x, i = x+1, i+4 {
			cov := uint32(coverage[row+x])
			if cov == 0 {
				continue
			}
			a := cov * op / 255
			ia := 255 - a
			p := l.img.Pix[i : i+4 : i+4]
			p[0] = uint8((r*a + uint32(p[0])*ia + 127) / 255)
			p[1] = uint8((g*a + uint32(p[1])*ia + 127) / 255)
			p[2] = uint8((b*a + uint32(p[2])*ia + 127) / 255)
			p[3] = uint8((255*a + uint32(p[3])*ia + 127) / 255)
		}
	}
}

// Render draws the mask over dst through a canvas-to-dst transform.
func (l *Layer) Render(dst draw.Image, canvasToDst geometry.AffineTransform) {
	if l.img == nil {
		return
	}
	xdraw.ApproxBiLinear.Transform(dst, f64.Aff3(canvasToDst.Aff3()), l.img, l.img.Rect, xdraw.Over, nil)
}

// ComposeForExport returns a copy of the mask scaled to width×height.
func (l *Layer) ComposeForExport(width, height int) (*image.RGBA, error) {
	if l.img == nil {
		return nil, ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid export size %dx%d", width, height)
	}
	return scaleRGBA(l.img, width, height), nil
}

// scaleRGBA resamples src into a new width×height image with an affine
// scale. Equal sizes produce a plain copy.
func scaleRGBA(src image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	sb := src.Bounds()
	if sb.Dx() == width && sb.Dy() == height {
		draw.Draw(dst, dst.Rect, src, sb.Min, draw.Src)
		return dst
	}
	sx := float64(width) / float64(sb.Dx())
	sy := float64(height) / float64(sb.Dy())
	s2d := geometry.Scale(sx, sy).Compose(geometry.Translation(-float64(sb.Min.X), -float64(sb.Min.Y)))
	xdraw.BiLinear.Transform(dst, f64.Aff3(s2d.Aff3()), src, sb, xdraw.Src, nil)
	return dst
}

// Scale resamples any mask image to width×height.
func Scale(src image.Image, width, height int) *image.RGBA {
	return scaleRGBA(src, width, height)
}
