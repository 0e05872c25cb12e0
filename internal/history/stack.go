// Package history provides a bounded linear undo/redo stack of editor
// snapshots.
package history

import (
	"image"

	"magic-eraser/internal/mask"
)

// DefaultCapacity is the number of entries kept before the oldest is evicted.
const DefaultCapacity = 20

// Entry is one restorable editor state. Image is the base image layer at
// that point; it is treated as immutable and shared between entries.
type Entry struct {
	Image image.Image
	Mask  mask.Snapshot
}

// Stack holds entries and a pointer to the current one.
type Stack struct {
	entries  []Entry
	index    int
	capacity int
}

// New creates an empty stack. A capacity below 1 uses DefaultCapacity.
func New(capacity int) *Stack {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Stack{index: -1, capacity: capacity}
}

// Push discards everything after the current entry, appends e and makes it
// current. The oldest entry is evicted when over capacity.
func (s *Stack) Push(e Entry) {
	if s.index < len(s.entries)-1 {
		clear(s.entries[s.index+1:])
		s.entries = s.entries[:s.index+1]
	}
	s.entries = append(s.entries, e)
	s.index++

	if len(s.entries) > s.capacity {
		s.entries[0] = Entry{}
		s.entries = s.entries[1:]
		s.index--
	}
}

// Reset empties the stack and pushes initial as the only entry.
func (s *Stack) Reset(initial Entry) {
	s.Clear()
	s.Push(initial)
}

// Clear removes all entries.
func (s *Stack) Clear() {
	s.entries = nil
	s.index = -1
}

// CanUndo reports whether there is an entry before the current one.
func (s *Stack) CanUndo() bool {
	return s.index > 0
}

// CanRedo reports whether there is an entry after the current one.
func (s *Stack) CanRedo() bool {
	return s.index < len(s.entries)-1
}

// Undo applies the previous entry and moves to it. The pointer only moves
// when apply succeeds. moved is false when there is nothing to undo.
func (s *Stack) Undo(apply func(Entry) error) (moved bool, err error) {
	if !s.CanUndo() {
		return false, nil
	}
	return s.step(-1, apply)
}

// Redo applies the next entry and moves to it.
func (s *Stack) Redo(apply func(Entry) error) (moved bool, err error) {
	if !s.CanRedo() {
		return false, nil
	}
	return s.step(1, apply)
}

func (s *Stack) step(delta int, apply func(Entry) error) (bool, error) {
	target := s.index + delta
	if err := apply(s.entries[target]); err != nil {
		return false, err
	}
	s.index = target
	return true, nil
}

// Current returns the current entry.
func (s *Stack) Current() (Entry, bool) {
	if s.index < 0 {
		return Entry{}, false
	}
	return s.entries[s.index], true
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Index returns the current position, -1 when empty.
func (s *Stack) Index() int {
	return s.index
}

// Capacity returns the maximum number of entries.
func (s *Stack) Capacity() int {
	return s.capacity
}

// Export returns a copy of the entries and the current index.
func (s *Stack) Export() ([]Entry, int) {
	return append([]Entry(nil), s.entries...), s.index
}

// Import replaces the stack contents. Entries beyond capacity are dropped
// from the front and index is clamped into range.
func (s *Stack) Import(entries []Entry, index int) {
	if over := len(entries) - s.capacity; over > 0 {
		entries = entries[over:]
		index -= over
	}
	s.entries = append([]Entry(nil), entries...)
	switch {
	case len(s.entries) == 0:
		s.index = -1
	case index < 0:
		s.index = 0
	case index >= len(s.entries):
		s.index = len(s.entries) - 1
	default:
		s.index = index
	}
}
