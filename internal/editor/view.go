package editor

import (
	"magic-eraser/internal/viewport"
	"magic-eraser/pkg/geometry"
)

// SetContainer records the on-screen rectangle the canvas is laid out in.
// The first non-empty container after a load fits the image to it.
func (s *Session) SetContainer(r geometry.Rect) {
	s.update(func() []event {
		if r == s.view.Container() {
			return nil
		}
		s.view.SetContainer(r)
		if s.fitPending && !r.Size().IsEmpty() {
			s.fitPending = false
			s.view.Refit()
		}
		return []event{{typ: EventViewChanged, data: s.view.View()}}
	})
}

// View returns the current view state.
func (s *Session) View() viewport.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.View()
}

// SetView replaces the view state, clamping the scale.
func (s *Session) SetView(v viewport.ViewState) {
	s.update(func() []event {
		s.view.SetView(v)
		return []event{{typ: EventViewChanged, data: s.view.View()}}
	})
}

// FitToView scales the image to fit the container and recenters it.
func (s *Session) FitToView() viewport.ViewState {
	var v viewport.ViewState
	s.update(func() []event {
		s.fitPending = false
		v = s.view.Refit()
		return []event{{typ: EventViewChanged, data: v}}
	})
	return v
}

// ResetView returns to 100% with no offset.
func (s *Session) ResetView() {
	s.update(func() []event {
		return []event{{typ: EventViewChanged, data: s.view.ResetView()}}
	})
}

// Zoom changes the scale by delta around the container center.
func (s *Session) Zoom(delta float64) bool {
	changed := false
	s.update(func() []event {
		if changed = s.view.Zoom(delta); !changed {
			return nil
		}
		return []event{{typ: EventViewChanged, data: s.view.View()}}
	})
	return changed
}

// ZoomAt changes the scale by delta keeping the image point under the
// screen point p fixed.
func (s *Session) ZoomAt(delta float64, p geometry.Point2D) bool {
	changed := false
	s.update(func() []event {
		local := p.Sub(s.view.Container().TopLeft())
		if changed = s.view.ZoomAt(delta, local); !changed {
			return nil
		}
		return []event{{typ: EventViewChanged, data: s.view.View()}}
	})
	return changed
}

// WheelZoom applies one wheel notch at screen point p. Positive steps zoom
// in. The step size depends on the current scale.
func (s *Session) WheelZoom(steps float64, p geometry.Point2D) bool {
	if steps == 0 {
		return false
	}
	delta := viewport.WheelStep(s.View().Scale)
	if steps < 0 {
		delta = -delta
	}
	return s.ZoomAt(delta, p)
}

// ScreenToCanvas maps a screen point to image coordinates.
func (s *Session) ScreenToCanvas(p geometry.Point2D) geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.ScreenToCanvas(p)
}

// CanvasToScreen maps an image point to screen coordinates.
func (s *Session) CanvasToScreen(p geometry.Point2D) geometry.Point2D {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.CanvasToScreen(p)
}
