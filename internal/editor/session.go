// Package editor ties the viewport, mask, brush and history together into
// the interactive mask-authoring session driven by pointer input.
package editor

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/sirupsen/logrus"

	"magic-eraser/internal/brush"
	"magic-eraser/internal/history"
	eimage "magic-eraser/internal/image"
	"magic-eraser/internal/mask"
	"magic-eraser/internal/viewport"
	"magic-eraser/pkg/geometry"
)

var (
	ErrNoImage   = errors.New("no image loaded")
	ErrStaleLoad = errors.New("image load superseded")
	ErrDisabled  = errors.New("editor is disabled")
	ErrNoResult  = errors.New("no result image")
)

// Options configures a Session.
type Options struct {
	HistoryCapacity int
	FitPadding      float64
	Brush           brush.Settings
}

// DefaultOptions returns the stock session configuration.
func DefaultOptions() Options {
	return Options{
		HistoryCapacity: history.DefaultCapacity,
		Brush:           brush.DefaultSettings(),
	}
}

// LoadToken identifies one image load. Only the most recently issued token
// may complete.
type LoadToken struct {
	ID  string
	seq uint64
}

type dragState struct {
	active bool
	last   geometry.Point2D
}

// Session is the editor for one image at a time. All methods are safe to
// call from multiple goroutines; listeners run on the calling goroutine
// after the session lock is released.
type Session struct {
	mu sync.Mutex

	asset  *eimage.Asset
	base   image.Image
	result image.Image

	layer    *mask.Layer
	renderer *brush.Renderer
	history  *history.Stack
	view     *viewport.Controller
	mode     viewport.Mode

	disabled   bool
	drawing    bool
	drag       dragState
	loadSeq    uint64
	fitPending bool

	lmu       sync.RWMutex
	listeners map[EventType][]Listener

	log *logrus.Entry
}

// NewSession creates an empty session. A zero Brush uses the defaults.
func NewSession(opts Options) *Session {
	if opts.Brush == (brush.Settings{}) {
		opts.Brush = brush.DefaultSettings()
	}
	layer := mask.New()
	renderer := brush.NewRenderer(layer)
	renderer.SetSettings(opts.Brush)

	view := viewport.NewController()
	view.SetPadding(opts.FitPadding)

	return &Session{
		layer:     layer,
		renderer:  renderer,
		history:   history.New(opts.HistoryCapacity),
		view:      view,
		mode:      viewport.NewMode(),
		listeners: make(map[EventType][]Listener),
		log:       logrus.WithField("component", "editor"),
	}
}

// BeginLoad starts loading an image and invalidates any load in flight.
func (s *Session) BeginLoad(id string) LoadToken {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadSeq++
	return LoadToken{ID: id, seq: s.loadSeq}
}

// CompleteLoad installs a decoded asset if tok is still the latest load.
// Completions of superseded loads return ErrStaleLoad and change nothing.
func (s *Session) CompleteLoad(tok LoadToken, asset *eimage.Asset) error {
	if asset == nil || asset.Image == nil {
		return ErrNoImage
	}
	var err error
	s.update(func() []event {
		if tok.seq != s.loadSeq {
			s.log.WithFields(logrus.Fields{"id": tok.ID, "latest": s.loadSeq}).Debug("Discarding stale image load")
			err = ErrStaleLoad
			return nil
		}
		var evs []event
		evs, err = s.install(asset)
		return evs
	})
	return err
}

// LoadImage loads asset immediately.
func (s *Session) LoadImage(asset *eimage.Asset) error {
	id := ""
	if asset != nil {
		id = asset.ID
	}
	return s.CompleteLoad(s.BeginLoad(id), asset)
}

func (s *Session) install(asset *eimage.Asset) ([]event, error) {
	b := asset.Image.Bounds()
	if err := s.layer.Initialize(b.Dx(), b.Dy()); err != nil {
		return nil, fmt.Errorf("failed to initialize mask: %w", err)
	}
	s.renderer.EndStroke()
	s.drawing = false
	s.drag = dragState{}

	s.asset = asset
	s.base = asset.Image
	s.result = nil
	s.mode.ExitResult()

	snap, err := s.layer.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot mask: %w", err)
	}
	s.history.Reset(history.Entry{Image: s.base, Mask: snap})

	s.view.SetCanvasSize(asset.Size())
	if s.view.Container().Size().IsEmpty() {
		s.view.ResetView()
		s.fitPending = true
	} else {
		s.view.Refit()
		s.fitPending = false
	}

	s.log.WithFields(logrus.Fields{
		"id":     asset.ID,
		"name":   asset.Name,
		"width":  b.Dx(),
		"height": b.Dy(),
	}).Debug("Image loaded")

	return []event{
		{typ: EventImageLoaded},
		{typ: EventResultChanged},
		{typ: EventMaskChanged},
		{typ: EventHistoryChanged},
		{typ: EventToolChanged, data: s.mode.Tool()},
		{typ: EventViewChanged, data: s.view.View()},
	}, nil
}

// Unload releases the image and its buffers.
func (s *Session) Unload() {
	s.update(func() []event {
		s.loadSeq++
		s.renderer.EndStroke()
		s.layer.Release()
		s.history.Clear()
		s.asset, s.base, s.result = nil, nil, nil
		s.drawing = false
		s.drag = dragState{}
		s.mode.ExitResult()
		return []event{{typ: EventImageLoaded}, {typ: EventMaskChanged}, {typ: EventHistoryChanged}}
	})
}

// PointerDown starts a stroke or a pan at a screen point. It returns false
// when the gesture was ignored.
func (s *Session) PointerDown(p geometry.Point2D) bool {
	handled := false
	s.update(func() []event {
		if s.asset == nil {
			return nil
		}
		if s.mode.Tool() == viewport.ToolPan {
			s.drag = dragState{active: true, last: p}
			handled = true
			return nil
		}
		if !s.canDraw() {
			return nil
		}
		cp := s.view.ScreenToCanvas(p)
		if !s.inCanvas(cp) {
			return nil
		}
		s.drawing = true
		s.renderer.BeginStroke(cp)
		handled = true
		return []event{{typ: EventMaskChanged}}
	})
	return handled
}

// PointerMove continues the active gesture.
func (s *Session) PointerMove(p geometry.Point2D) {
	s.update(func() []event {
		switch {
		case s.drag.active:
			d := p.Sub(s.drag.last)
			s.drag.last = p
			if d.X == 0 && d.Y == 0 {
				return nil
			}
			s.view.Pan(d.X, d.Y)
			return []event{{typ: EventViewChanged, data: s.view.View()}}
		case s.drawing:
			if !s.canDraw() {
				return nil
			}
			cp := s.view.ScreenToCanvas(p)
			if !s.inCanvas(cp) {
				if !s.renderer.Active() {
					return nil
				}
				// Finish the segment up to the edge, then start fresh on
				// re-entry.
				s.renderer.StrokeTo(cp)
				s.renderer.Lift()
				return []event{{typ: EventMaskChanged}}
			}
			s.renderer.StrokeTo(cp)
			return []event{{typ: EventMaskChanged}}
		}
		return nil
	})
}

// PointerUp ends the active gesture. A finished stroke that painted
// something becomes a history entry.
func (s *Session) PointerUp(geometry.Point2D) {
	s.update(s.endGesture)
}

// PointerLeave behaves like PointerUp for a pointer leaving the canvas.
func (s *Session) PointerLeave() {
	s.update(s.endGesture)
}

func (s *Session) endGesture() []event {
	if s.drag.active {
		s.drag = dragState{}
		return nil
	}
	return s.finishStroke()
}

func (s *Session) finishStroke() []event {
	if !s.drawing {
		return nil
	}
	s.drawing = false
	if !s.renderer.EndStroke() {
		return nil
	}
	return s.pushHistory()
}

func (s *Session) pushHistory() []event {
	snap, err := s.layer.Snapshot()
	if err != nil {
		s.log.WithError(err).Warn("Failed to snapshot mask")
		return []event{{typ: EventWarning, data: err}}
	}
	s.history.Push(history.Entry{Image: s.base, Mask: snap})
	return []event{{typ: EventHistoryChanged}}
}

func (s *Session) canDraw() bool {
	return !s.disabled && s.mode.CanDraw() && s.layer.Initialized()
}

func (s *Session) inCanvas(p geometry.Point2D) bool {
	size := s.layer.Size()
	return p.X >= 0 && p.Y >= 0 && p.X <= size.Width && p.Y <= size.Height
}

// SetDisabled blocks drawing and history changes while an external request
// is in flight.
func (s *Session) SetDisabled(disabled bool) {
	s.update(func() []event {
		if s.disabled == disabled {
			return nil
		}
		evs := s.finishStroke()
		s.disabled = disabled
		return append(evs, event{typ: EventDisabledChanged, data: disabled})
	})
}

// Disabled reports whether the session is disabled.
func (s *Session) Disabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disabled
}

// Undo restores the previous history entry. If the entry cannot be restored
// the session keeps its current state, a warning is emitted and the error is
// returned.
func (s *Session) Undo() error {
	return s.step(s.history.Undo, "undo")
}

// Redo restores the next history entry.
func (s *Session) Redo() error {
	return s.step(s.history.Redo, "redo")
}

func (s *Session) step(move func(func(history.Entry) error) (bool, error), op string) error {
	var err error
	s.update(func() []event {
		if s.disabled {
			err = ErrDisabled
			return nil
		}
		evs := s.finishStroke()
		moved, applyErr := move(s.apply)
		if applyErr != nil {
			err = fmt.Errorf("%s: %w", op, applyErr)
			s.log.WithError(applyErr).Warnf("Failed to %s, keeping current mask", op)
			return append(evs, event{typ: EventWarning, data: err})
		}
		if !moved {
			return evs
		}
		return append(evs,
			event{typ: EventMaskChanged},
			event{typ: EventResultChanged},
			event{typ: EventHistoryChanged})
	})
	return err
}

func (s *Session) apply(e history.Entry) error {
	if err := s.layer.Restore(e.Mask); err != nil {
		return err
	}
	if e.Image != nil {
		s.base = e.Image
	}
	return nil
}

// CanUndo reports whether Undo would move.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether Redo would move.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// ResetMask clears the mask and records the cleared state.
func (s *Session) ResetMask() error {
	var err error
	s.update(func() []event {
		if s.asset == nil {
			err = ErrNoImage
			return nil
		}
		if s.disabled {
			err = ErrDisabled
			return nil
		}
		evs := s.finishStroke()
		s.layer.Clear()
		evs = append(evs, event{typ: EventMaskChanged})
		return append(evs, s.pushHistory()...)
	})
	return err
}

// SetTool switches the editing tool. While a result is shown the choice is
// remembered and takes effect when the result is hidden.
func (s *Session) SetTool(t viewport.Tool) {
	s.update(func() []event {
		evs := s.finishStroke()
		s.drag = dragState{}
		if !s.mode.SetTool(t) {
			return evs
		}
		return append(evs, event{typ: EventToolChanged, data: s.mode.Tool()})
	})
}

// Tool returns the effective tool.
func (s *Session) Tool() viewport.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode.Tool()
}

// SetBrushSettings replaces the brush used for subsequent dabs.
func (s *Session) SetBrushSettings(bs brush.Settings) {
	s.update(func() []event {
		s.renderer.SetSettings(bs)
		return []event{{typ: EventBrushChanged}}
	})
}

// BrushSettings returns the normalized brush settings.
func (s *Session) BrushSettings() brush.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renderer.Settings()
}

// ShowResult overlays a processed image and switches to viewing it.
func (s *Session) ShowResult(img image.Image) {
	s.update(func() []event {
		evs := s.finishStroke()
		s.result = img
		evs = append(evs, event{typ: EventResultChanged})
		if s.mode.EnterResult() {
			evs = append(evs, event{typ: EventToolChanged, data: s.mode.Tool()})
		}
		return evs
	})
}

// HideResult returns to editing with the tool used before the result was
// shown. The result image is kept.
func (s *Session) HideResult() {
	s.update(func() []event {
		if !s.mode.ExitResult() {
			return nil
		}
		return []event{{typ: EventResultChanged}, {typ: EventToolChanged, data: s.mode.Tool()}}
	})
}

// ViewingResult reports whether the result overlay is shown.
func (s *Session) ViewingResult() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode.ViewingResult()
}

// Result returns the last processed image, if any.
func (s *Session) Result() image.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// ApplyResult makes img the new base layer, clears the mask and records
// both in history so the change can be undone. img is resized to the
// canvas when its size differs.
func (s *Session) ApplyResult(img image.Image) error {
	if img == nil {
		return ErrNoResult
	}
	var err error
	s.update(func() []event {
		if s.asset == nil {
			err = ErrNoImage
			return nil
		}
		evs := s.finishStroke()
		size := s.layer.Bounds()
		if img.Bounds().Size() != size.Size() {
			img = eimage.Resize(img, size.Dx(), size.Dy())
		}
		s.base = img
		s.result = nil
		s.mode.ExitResult()
		s.layer.Clear()
		evs = append(evs,
			event{typ: EventResultChanged},
			event{typ: EventMaskChanged},
			event{typ: EventToolChanged, data: s.mode.Tool()})
		return append(evs, s.pushHistory()...)
	})
	return err
}
