// Package slider models the before/after comparison slider: a split position
// in [0,100] driven by pointer, touch and arrow keys.
package slider

import "math"

const (
	Min = 0.0
	Max = 100.0
	// KeyStep is the change applied per arrow key press.
	KeyStep = 5.0
	// DefaultPosition centres the split.
	DefaultPosition = 50.0
)

// Key identifies the keys the slider reacts to.
type Key int

const (
	KeyLeft Key = iota + 1
	KeyRight
)

// Rect is the horizontal extent of the slider container in client pixels.
type Rect struct {
	Left  float64
	Width float64
}

// Slider holds the split position and whether a drag is in progress.
// The zero value is not centred; use New.
type Slider struct {
	position float64
	dragging bool
}

func New(initial float64) *Slider {
	return &Slider{position: clamp(initial)}
}

func (s *Slider) Position() float64 { return s.position }

func (s *Slider) Dragging() bool { return s.dragging }

// PositionAt converts a client x coordinate into a clamped percentage. A
// container without width leaves the current position in place.
func (s *Slider) PositionAt(clientX float64, rect Rect) float64 {
	if rect.Width <= 0 || math.IsNaN(clientX) {
		return s.position
	}
	return clamp((clientX - rect.Left) / rect.Width * 100)
}

// PointerDown starts a drag and jumps the split to the pointer.
func (s *Slider) PointerDown(clientX float64, rect Rect) {
	s.dragging = true
	s.position = s.PositionAt(clientX, rect)
}

// PointerMove follows the pointer while dragging and is ignored otherwise.
func (s *Slider) PointerMove(clientX float64, rect Rect) {
	if !s.dragging {
		return
	}
	s.position = s.PositionAt(clientX, rect)
}

// PointerUp ends the drag.
func (s *Slider) PointerUp() { s.dragging = false }

// Release is the document-level pointer-up/touch-end listener. It ends a drag
// even when the pointer was released outside the container.
func (s *Slider) Release() { s.dragging = false }

func (s *Slider) TouchStart(clientX float64, rect Rect) { s.PointerDown(clientX, rect) }
func (s *Slider) TouchMove(clientX float64, rect Rect)  { s.PointerMove(clientX, rect) }
func (s *Slider) TouchEnd()                             { s.PointerUp() }

// KeyDown applies one fixed step regardless of drag state. It reports whether
// the key was handled.
func (s *Slider) KeyDown(key Key) bool {
	switch key {
	case KeyLeft:
		s.position = clamp(s.position - KeyStep)
	case KeyRight:
		s.position = clamp(s.position + KeyStep)
	default:
		return false
	}
	return true
}

// ClipInset is the share of the top image hidden from the right edge, in percent.
func (s *Slider) ClipInset() float64 { return Max - s.position }

// ARIA are the accessibility attributes of the slider handle.
type ARIA struct {
	Role     string
	ValueMin int
	ValueMax int
	ValueNow int
}

func (s *Slider) ARIA() ARIA {
	return ARIA{Role: "slider", ValueMin: int(Min), ValueMax: int(Max), ValueNow: int(math.Round(s.position))}
}

func clamp(v float64) float64 {
	if math.IsNaN(v) || v < Min {
		return Min
	}
	if v > Max {
		return Max
	}
	return v
}
