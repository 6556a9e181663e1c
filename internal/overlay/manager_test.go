package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var box = Rect{X: 100, Y: 100, Width: 200, Height: 150}

func TestRect_Contains(t *testing.T) {
	tests := []struct {
		name string
		pt   Point
		want bool
	}{
		{"inside", Point{150, 150}, true},
		{"top left edge", Point{100, 100}, true},
		{"bottom right edge", Point{300, 250}, true},
		{"left of box", Point{99, 150}, false},
		{"below box", Point{150, 251}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, box.Contains(tt.pt))
		})
	}
}

func TestManager_PointerDown(t *testing.T) {
	tests := []struct {
		name     string
		open     Panel
		pt       Point
		request  Panel
		want     Result
		wantOpen Panel
	}{
		{
			name:     "open from nothing",
			open:     None,
			pt:       Point{10, 10},
			request:  Calendar,
			want:     Result{Opened: Calendar},
			wantOpen: Calendar,
		},
		{
			name:     "outside click closes",
			open:     Calendar,
			pt:       Point{10, 10},
			request:  None,
			want:     Result{Closed: Calendar},
			wantOpen: None,
		},
		{
			name:     "inside click keeps panel",
			open:     Calendar,
			pt:       Point{150, 150},
			request:  None,
			want:     Result{},
			wantOpen: Calendar,
		},
		{
			name:     "trigger of the open panel toggles it closed",
			open:     Calendar,
			pt:       Point{10, 10},
			request:  Calendar,
			want:     Result{Closed: Calendar},
			wantOpen: None,
		},
		{
			name:     "other trigger swaps panels",
			open:     Calendar,
			pt:       Point{10, 10},
			request:  Options,
			want:     Result{Closed: Calendar, Opened: Options},
			wantOpen: Options,
		},
		{
			name:     "inside request for same panel is a no-op",
			open:     Times,
			pt:       Point{150, 150},
			request:  Times,
			want:     Result{},
			wantOpen: Times,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager()
			m.Open(tt.open, box)

			got := m.PointerDown(tt.pt, tt.request)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOpen, m.Current())
		})
	}
}

func TestManager_BoundsTracking(t *testing.T) {
	m := NewManager()
	m.PointerDown(Point{}, Location)
	assert.Equal(t, Location, m.Current())

	res := m.PointerDown(Point{5, 5}, None)
	assert.Equal(t, Location, res.Closed)

	m.Open(Options, Rect{})
	m.SetBounds(box)
	res = m.PointerDown(Point{150, 150}, None)
	assert.Equal(t, Result{}, res)
	assert.True(t, Location.Valid())
	assert.False(t, Panel("map").Valid())
}

func TestManager_Close(t *testing.T) {
	m := NewManager()
	assert.Equal(t, None, m.Close())

	m.Open(Times, box)
	assert.Equal(t, Times, m.Close())
	assert.Equal(t, None, m.Current())

	m.SetBounds(box)
	res := m.PointerDown(Point{150, 150}, None)
	assert.Equal(t, Result{}, res, "bounds are ignored while nothing is open")
}
