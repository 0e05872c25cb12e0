// Package project keeps the set of images open in one editing session,
// along with each image's saved editor state and processing results.
package project

import (
	"errors"
	"fmt"
	"image"
	"slices"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"magic-eraser/internal/editor"
	eimage "magic-eraser/internal/image"
)

// ErrUnknownImage is returned for an image ID not in the project.
var ErrUnknownImage = errors.New("unknown image")

// ResultKind identifies which operation produced a result.
type ResultKind int

const (
	ResultInpaint ResultKind = iota
	ResultBackgroundRemoved
	ResultBackgroundReplaced
	ResultBackgroundBlurred
)

func (k ResultKind) String() string {
	switch k {
	case ResultInpaint:
		return "inpaint"
	case ResultBackgroundRemoved:
		return "background-removed"
	case ResultBackgroundReplaced:
		return "background"
	case ResultBackgroundBlurred:
		return "blur"
	default:
		return "unknown"
	}
}

// Result is one processed image.
type Result struct {
	Kind    ResultKind
	Image   image.Image
	Created time.Time
}

type entry struct {
	asset      *eimage.Asset
	state      *editor.State
	results    map[ResultKind]Result
	processing map[ResultKind]bool
}

// Item is a read-only view of one project image.
type Item struct {
	Asset      *eimage.Asset
	HasState   bool
	Results    int
	Processing bool
}

// Manager owns the project images and swaps them in and out of a single
// editor session.
type Manager struct {
	mu      sync.Mutex
	session *editor.Session
	order   []string
	entries map[string]*entry
	current string
	now     func() time.Time
	log     *logrus.Entry
}

// NewManager creates an empty project driving session.
func NewManager(session *editor.Session) *Manager {
	return &Manager{
		session: session,
		entries: make(map[string]*entry),
		now:     time.Now,
		log:     logrus.WithField("component", "project"),
	}
}

// Add appends images to the project. The first image added to an empty
// project is selected.
func (m *Manager) Add(assets ...*eimage.Asset) error {
	m.mu.Lock()
	m.addLocked(assets)
	selectFirst := m.current == "" && len(m.order) > 0
	first := ""
	if selectFirst {
		first = m.order[0]
	}
	m.mu.Unlock()

	if selectFirst {
		return m.Select(first)
	}
	return nil
}

// BeginOpen reserves the session for images that are still being decoded.
// Selecting or opening another image before AddLoaded is called supersedes
// the reservation.
func (m *Manager) BeginOpen(name string) editor.LoadToken {
	return m.session.BeginLoad(name)
}

// AddLoaded appends decoded images and shows the first of them if tok is
// still the latest load. When the load was superseded the images are kept
// in the project, the session is left alone and editor.ErrStaleLoad is
// returned.
func (m *Manager) AddLoaded(tok editor.LoadToken, assets ...*eimage.Asset) error {
	if len(assets) == 0 {
		return nil
	}
	m.mu.Lock()
	m.addLocked(assets)
	m.mu.Unlock()

	return m.activate(assets[0].ID, func(a *eimage.Asset) error {
		return m.session.CompleteLoad(tok, a)
	})
}

func (m *Manager) addLocked(assets []*eimage.Asset) {
	for _, a := range assets {
		if _, ok := m.entries[a.ID]; ok {
			continue
		}
		m.entries[a.ID] = &entry{
			asset:      a,
			results:    make(map[ResultKind]Result),
			processing: make(map[ResultKind]bool),
		}
		m.order = append(m.order, a.ID)
	}
}

// Remove drops an image and everything stored for it. Removing the current
// image selects the first remaining one.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	if _, ok := m.entries[id]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownImage, id)
	}
	delete(m.entries, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	wasCurrent := m.current == id
	next := ""
	if wasCurrent {
		m.current = ""
		if len(m.order) > 0 {
			next = m.order[0]
		}
	}
	m.mu.Unlock()

	if !wasCurrent {
		return nil
	}
	if next == "" {
		m.session.Unload()
		return nil
	}
	return m.Select(next)
}

// Select saves the state of the current image and loads image id into the
// session, restoring its saved state if there is one. Session calls are made
// without holding the manager lock so session listeners may query it.
func (m *Manager) Select(id string) error {
	return m.activate(id, m.session.LoadImage)
}

func (m *Manager) activate(id string, load func(*eimage.Asset) error) error {
	m.mu.Lock()
	incoming, ok := m.entries[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownImage, id)
	}
	if id == m.current {
		m.mu.Unlock()
		return nil
	}
	outgoing := m.entries[m.current]
	m.mu.Unlock()

	if outgoing != nil {
		m.store(outgoing)
	}

	// Listeners fired by the load see the new current image.
	m.mu.Lock()
	prev := m.current
	m.current = id
	m.mu.Unlock()

	if err := load(incoming.asset); err != nil {
		m.mu.Lock()
		m.current = prev
		m.mu.Unlock()
		return fmt.Errorf("failed to load %s: %w", incoming.asset.Name, err)
	}

	m.mu.Lock()
	state := incoming.state
	m.mu.Unlock()

	if state == nil {
		return nil
	}
	if err := m.session.RestoreState(*state); err != nil {
		m.log.WithError(err).WithField("image", incoming.asset.Name).Warn("Failed to restore editor state")
		return err
	}
	return nil
}

// SaveCurrent stores the session state of the current image.
func (m *Manager) SaveCurrent() {
	m.mu.Lock()
	e := m.entries[m.current]
	m.mu.Unlock()
	if e != nil {
		m.store(e)
	}
}

func (m *Manager) store(e *entry) {
	st, err := m.session.SaveState()
	if err != nil {
		m.log.WithError(err).Debug("Nothing to save for current image")
		return
	}
	if st.AssetID != e.asset.ID {
		return
	}
	m.mu.Lock()
	e.state = &st
	m.mu.Unlock()
}

// Current returns the selected image, or nil.
func (m *Manager) Current() *eimage.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[m.current]; ok {
		return e.asset
	}
	return nil
}

// CurrentID returns the selected image ID, or "".
func (m *Manager) CurrentID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Images lists the project images in insertion order.
func (m *Manager) Images() []Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]Item, 0, len(m.order))
	for _, id := range m.order {
		e := m.entries[id]
		busy := false
		for _, p := range e.processing {
			busy = busy || p
		}
		items = append(items, Item{
			Asset:      e.asset,
			HasState:   e.state != nil,
			Results:    len(e.results),
			Processing: busy,
		})
	}
	return items
}

// Len returns the number of images.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order)
}

// SetResult stores a processed image for id.
func (m *Manager) SetResult(id string, kind ResultKind, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownImage, id)
	}
	e.results[kind] = Result{Kind: kind, Image: img, Created: m.now()}
	e.processing[kind] = false
	return nil
}

// Result returns the stored result of one kind.
func (m *Manager) Result(id string, kind ResultKind) (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return Result{}, false
	}
	r, ok := e.results[kind]
	return r, ok
}

// LatestResult returns the most recently produced result of any kind.
func (m *Manager) LatestResult(id string) (Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return Result{}, false
	}
	var latest Result
	found := false
	for _, r := range e.results {
		if !found || r.Created.After(latest.Created) {
			latest, found = r, true
		}
	}
	return latest, found
}

// ClearResults forgets every result stored for id.
func (m *Manager) ClearResults(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownImage, id)
	}
	clear(e.results)
	return nil
}

// SetProcessing marks an operation on id as running or finished.
func (m *Manager) SetProcessing(id string, kind ResultKind, busy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		e.processing[kind] = busy
	}
}

// Processing reports whether an operation on id is running.
func (m *Manager) Processing(id string, kind ResultKind) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		return e.processing[kind]
	}
	return false
}

// Reset removes every image and unloads the session.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.order = nil
	clear(m.entries)
	m.current = ""
	m.mu.Unlock()
	m.session.Unload()
}
