package editor

import (
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"magic-eraser/internal/history"
	"magic-eraser/internal/mask"
	"magic-eraser/internal/viewport"
)

// ErrStateMismatch is returned when restoring state saved for another image.
var ErrStateMismatch = errors.New("state belongs to a different image")

// State is everything needed to resume editing an image later.
type State struct {
	AssetID string
	Base    image.Image
	Result  image.Image
	Mask    mask.Snapshot
	History []history.Entry
	Index   int
	View    viewport.ViewState
}

// SaveState captures the session for the loaded image.
func (s *Session) SaveState() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.asset == nil {
		return State{}, ErrNoImage
	}
	snap, err := s.layer.Snapshot()
	if err != nil {
		return State{}, fmt.Errorf("failed to save mask: %w", err)
	}
	entries, index := s.history.Export()
	return State{
		AssetID: s.asset.ID,
		Base:    s.base,
		Result:  s.result,
		Mask:    snap,
		History: entries,
		Index:   index,
		View:    s.view.View(),
	}, nil
}

// RestoreState applies a saved state to the loaded image. A mask that
// cannot be decoded is skipped with a warning; the rest of the state is
// still restored and the error is returned.
func (s *Session) RestoreState(st State) error {
	var err error
	s.update(func() []event {
		if s.asset == nil {
			err = ErrNoImage
			return nil
		}
		if st.AssetID != "" && st.AssetID != s.asset.ID {
			err = ErrStateMismatch
			return nil
		}
		evs := s.finishStroke()

		if st.Base != nil {
			s.base = st.Base
		}
		s.result = st.Result
		if len(st.History) > 0 {
			s.history.Import(st.History, st.Index)
		}
		if st.View.Scale > 0 {
			s.view.SetView(st.View)
			s.fitPending = false
		}
		evs = append(evs,
			event{typ: EventResultChanged},
			event{typ: EventHistoryChanged},
			event{typ: EventViewChanged, data: s.view.View()})

		if !st.Mask.IsZero() {
			if restoreErr := s.layer.Restore(st.Mask); restoreErr != nil {
				err = fmt.Errorf("failed to restore mask: %w", restoreErr)
				s.log.WithFields(logrus.Fields{"id": s.asset.ID}).WithError(restoreErr).Warn("Saved mask is unreadable, keeping current mask")
				return append(evs, event{typ: EventWarning, data: err})
			}
		}
		return append(evs, event{typ: EventMaskChanged})
	})
	return err
}
