package editor

import (
	"image"

	eimage "magic-eraser/internal/image"
	"magic-eraser/internal/mask"
)

// Asset returns the loaded image asset, or nil.
func (s *Session) Asset() *eimage.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.asset
}

// Image returns the current base layer, which differs from the asset once
// a result has been applied.
func (s *Session) Image() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.base
}

// HasMask reports whether any mask pixel is painted.
func (s *Session) HasMask() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer.Initialized() && !s.layer.IsEmpty()
}

// MaskAlphaAt returns the mask alpha at an image pixel.
func (s *Session) MaskAlphaAt(x, y int) uint8 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer.AlphaAt(x, y)
}

// GetMaskSnapshot returns a copy of the mask that is independent of later
// edits.
func (s *Session) GetMaskSnapshot() (mask.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer.Snapshot()
}

// ExportMaskScaledTo returns the mask resampled to width×height, as used to
// apply one mask to images of other sizes.
func (s *Session) ExportMaskScaledTo(width, height int) (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layer.ComposeForExport(width, height)
}

// InpaintMask returns the white-on-black mask at the base image resolution.
func (s *Session) InpaintMask() (*image.RGBA, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.base == nil {
		return nil, ErrNoImage
	}
	b := s.base.Bounds()
	return s.layer.ExportForInpaint(b.Dx(), b.Dy())
}
