package editor

// EventType identifies session change notifications.
type EventType int

const (
	EventImageLoaded EventType = iota
	EventViewChanged
	EventMaskChanged
	EventHistoryChanged
	EventToolChanged
	EventBrushChanged
	EventResultChanged
	EventDisabledChanged
	EventWarning
)

func (e EventType) String() string {
	switch e {
	case EventImageLoaded:
		return "image-loaded"
	case EventViewChanged:
		return "view-changed"
	case EventMaskChanged:
		return "mask-changed"
	case EventHistoryChanged:
		return "history-changed"
	case EventToolChanged:
		return "tool-changed"
	case EventBrushChanged:
		return "brush-changed"
	case EventResultChanged:
		return "result-changed"
	case EventDisabledChanged:
		return "disabled-changed"
	case EventWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Listener is called when an event occurs. data depends on the event:
// ViewState for EventViewChanged, viewport.Tool for EventToolChanged,
// error for EventWarning, nil otherwise.
type Listener func(data any)

type event struct {
	typ  EventType
	data any
}

// On registers a listener for the specified event type.
func (s *Session) On(typ EventType, listener Listener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners[typ] = append(s.listeners[typ], listener)
}

// emit triggers all listeners for the event. Must be called without s.mu
// held so listeners may call back into the session.
func (s *Session) emit(e event) {
	s.lmu.RLock()
	listeners := s.listeners[e.typ]
	s.lmu.RUnlock()

	for _, listener := range listeners {
		listener(e.data)
	}
}

// update runs fn under the session lock and then emits what it returns.
func (s *Session) update(fn func() []event) {
	s.mu.Lock()
	events := fn()
	s.mu.Unlock()
	for _, e := range events {
		s.emit(e)
	}
}
