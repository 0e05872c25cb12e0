package editor

import (
	"image"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"magic-eraser/internal/viewport"
	"magic-eraser/pkg/geometry"
)

// Render draws the visible layers into dst, which represents the container
// with its top-left at the origin. The mask is omitted while a result is
// shown.
func (s *Session) Render(dst *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.base == nil {
		return
	}
	b := dst.Bounds()
	container := geometry.NewRect(float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy()))
	tr := viewport.ViewTransform(container, s.view.View(), s.layer.Size())

	src := s.base
	if s.mode.ViewingResult() && s.result != nil {
		src = s.result
	}
	sb := src.Bounds()
	// Results may come back at a different size than the canvas.
	fit := geometry.Scale(
		float64(s.layer.Bounds().Dx())/float64(sb.Dx()),
		float64(s.layer.Bounds().Dy())/float64(sb.Dy()),
	).Compose(geometry.Translation(-float64(sb.Min.X), -float64(sb.Min.Y)))
	xdraw.ApproxBiLinear.Transform(dst, f64.Aff3(tr.Compose(fit).Aff3()), src, sb, xdraw.Over, nil)

	if !s.mode.ViewingResult() {
		s.layer.Render(dst, tr)
	}
}
