package brush

import (
	"image"
	"image/color"
	"math"

	"magic-eraser/internal/mask"
	"magic-eraser/pkg/geometry"

	"github.com/gogpu/gg"
)

// Renderer draws dabs and capsules onto a mask layer. Each call only
// touches the bounding box of the segment it draws.
//
// A Renderer is not safe for concurrent use. The editor session only calls
// it while holding its own lock.
type Renderer struct {
	layer    *mask.Layer
	settings Settings
	color    color.RGBA
	last     *geometry.Point2D
	drawn    bool
}

// NewRenderer creates a renderer with default settings.
func NewRenderer(layer *mask.Layer) *Renderer {
	r := &Renderer{layer: layer}
	r.SetSettings(DefaultSettings())
	return r
}

// SetSettings replaces the brush settings.
func (r *Renderer) SetSettings(s Settings) {
	r.settings = s.Normalize()
	r.color = r.settings.RGBA()
}

// Settings returns the current brush settings.
func (r *Renderer) Settings() Settings {
	return r.settings
}

// Active reports whether a stroke has a last point to continue from.
func (r *Renderer) Active() bool {
	return r.last != nil
}

// BeginStroke draws a single dab at p and starts a stroke there.
func (r *Renderer) BeginStroke(p geometry.Point2D) {
	r.paint(p, p)
	r.last = &p
}

// ContinueStroke draws a round-capped segment of the brush width from
// from to to.
func (r *Renderer) ContinueStroke(from, to geometry.Point2D) {
	r.paint(from, to)
	r.last = &to
}

// StrokeTo continues the stroke to p, or starts a fresh dab when there is
// no last point.
func (r *Renderer) StrokeTo(p geometry.Point2D) {
	if r.last == nil {
		r.BeginStroke(p)
		return
	}
	r.ContinueStroke(*r.last, p)
}

// Lift forgets the last point so the next StrokeTo starts a new dab.
func (r *Renderer) Lift() {
	r.last = nil
}

// EndStroke finishes the stroke and reports whether any pixels were drawn
// since the last EndStroke.
func (r *Renderer) EndStroke() bool {
	drawn := r.drawn
	r.last = nil
	r.drawn = false
	return drawn
}

func (r *Renderer) paint(from, to geometry.Point2D) {
	if !r.layer.Initialized() || r.settings.Opacity <= 0 {
		return
	}
	radius := r.settings.Radius()
	rect := image.Rect(
		int(math.Floor(math.Min(from.X, to.X)-radius-1)),
		int(math.Floor(math.Min(from.Y, to.Y)-radius-1)),
		int(math.Ceil(math.Max(from.X, to.X)+radius+1)),
		int(math.Ceil(math.Max(from.Y, to.Y)+radius+1)),
	).Intersect(r.layer.Bounds())
	if rect.Empty() {
		return
	}
	cov := capsuleCoverage(rect, from, to, radius)
	if cov == nil {
		return
	}
	r.layer.Blend(rect, cov, rect.Dx(), r.color, r.settings.Alpha())
	r.drawn = true
}

// capsuleCoverage rasterizes the union of two end discs and the joining
// round-capped line into a scratch context covering rect, returning one
// coverage byte per pixel.
func capsuleCoverage(rect image.Rectangle, from, to geometry.Point2D, radius float64) []uint8 {
	w, h := rect.Dx(), rect.Dy()
	dc := gg.NewContext(w, h)
	defer dc.Close()

	ox, oy := float64(rect.Min.X), float64(rect.Min.Y)
	dc.SetRGBA(1, 1, 1, 1)
	dc.DrawCircle(from.X-ox, from.Y-oy, radius)
	if err := dc.Fill(); err != nil {
		return nil
	}
	if from != to {
		dc.DrawCircle(to.X-ox, to.Y-oy, radius)
		if err := dc.Fill(); err != nil {
			return nil
		}
		dc.SetLineWidth(2 * radius)
		dc.SetLineCap(gg.LineCapRound)
		dc.DrawLine(from.X-ox, from.Y-oy, to.X-ox, to.Y-oy)
		if err := dc.Stroke(); err != nil {
			return nil
		}
	}

	rgba, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil
	}
	cov := make([]uint8, w*h)
	for i := range cov {
		cov[i] = rgba.Pix[i*4+3]
	}
	return cov
}
