// Package overlay tracks the single open popover of the search bar and
// resolves pointer-down events against its bounds.
package overlay

import "sync"

// Panel identifies a popover.
type Panel string

const (
	None     Panel = ""
	Location Panel = "location"
	Calendar Panel = "calendar"
	Times    Panel = "times"
	Options  Panel = "options"
)

// Valid reports whether p names a known panel or None.
func (p Panel) Valid() bool {
	switch p {
	case None, Location, Calendar, Times, Options:
		return true
	}
	return false
}

// Point is a pointer position in page coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the rendered box of a popover.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether pt lies inside r, edges included.
func (r Rect) Contains(pt Point) bool {
	return pt.X >= r.X && pt.X <= r.X+r.Width &&
		pt.Y >= r.Y && pt.Y <= r.Y+r.Height
}

// Result describes what one pointer-down event did.
type Result struct {
	Closed Panel `json:"closed,omitempty"`
	Opened Panel `json:"opened,omitempty"`
}

// Manager holds the open panel and its bounds.
type Manager struct {
	mu     sync.Mutex
	open   Panel
	bounds Rect
}

func NewManager() *Manager {
	return &Manager{}
}

// Current returns the open panel, or None.
func (m *Manager) Current() Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Open shows p, replacing whatever was open. Opening None closes.
func (m *Manager) Open(p Panel, bounds Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = p
	m.bounds = bounds
}

// SetBounds records the rendered box of the open panel.
func (m *Manager) SetBounds(bounds Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open != None {
		m.bounds = bounds
	}
}

// Close hides the open panel.
func (m *Manager) Close() Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

func (m *Manager) closeLocked() Panel {
	closed := m.open
	m.open = None
	m.bounds = Rect{}
	return closed
}

// PointerDown handles one pointer-down event. An outside click closes the
// open panel first; the open request is then honoured unless it targets
// the panel this same event just closed, so clicking a trigger toggles.
func (m *Manager) PointerDown(pt Point, request Panel) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res Result
	if m.open != None && !m.bounds.Contains(pt) {
		res.Closed = m.closeLocked()
	}

	if request == None || request == res.Closed || request == m.open {
		return res
	}
	m.open = request
	m.bounds = Rect{}
	res.Opened = request
	return res
}
