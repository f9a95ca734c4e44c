package slider

import (
	"math"
	"testing"
)

func TestPositionAlwaysWithinBounds(t *testing.T) {
	rect := Rect{Left: 120, Width: 480}
	xs := []float64{-1e9, -500, 0, 119.9, 120, 240, 360, 599.999, 600, 601, 5000, 1e12, math.Inf(1), math.Inf(-1)}

	s := New(DefaultPosition)
	s.PointerDown(300, rect)
	for _, x := range xs {
		s.PointerMove(x, rect)
		if p := s.Position(); p < Min || p > Max || math.IsNaN(p) {
			t.Fatalf("clientX=%v produced position %v outside [0,100]", x, p)
		}
	}
}

func TestPointerConversion(t *testing.T) {
	rect := Rect{Left: 100, Width: 200}
	s := New(DefaultPosition)

	s.PointerDown(150, rect)
	if got := s.Position(); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
	if got := s.ClipInset(); got != 75 {
		t.Fatalf("expected clip inset 75, got %v", got)
	}

	s.PointerMove(50, rect)
	if got := s.Position(); got != 0 {
		t.Fatalf("expected clamp to 0, got %v", got)
	}
	s.PointerMove(900, rect)
	if got := s.Position(); got != 100 {
		t.Fatalf("expected clamp to 100, got %v", got)
	}
}

func TestMoveIgnoredWhenNotDragging(t *testing.T) {
	rect := Rect{Left: 0, Width: 100}
	s := New(40)
	s.PointerMove(90, rect)
	if s.Position() != 40 {
		t.Fatalf("move without drag must not change position, got %v", s.Position())
	}
}

func TestZeroWidthContainerKeepsPosition(t *testing.T) {
	s := New(30)
	s.PointerDown(500, Rect{Left: 0, Width: 0})
	if s.Position() != 30 {
		t.Fatalf("expected position kept, got %v", s.Position())
	}
}

func TestReleaseOutsideEndsDrag(t *testing.T) {
	rect := Rect{Left: 0, Width: 100}
	s := New(DefaultPosition)
	s.TouchStart(10, rect)
	s.TouchMove(-40, rect)
	if !s.Dragging() {
		t.Fatalf("expected dragging during touch move")
	}
	s.Release()
	if s.Dragging() {
		t.Fatalf("global release must clear dragging")
	}
	s.PointerMove(80, rect)
	if s.Position() != 0 {
		t.Fatalf("expected position to stay after release, got %v", s.Position())
	}
}

func TestKeyboardSteps(t *testing.T) {
	starts := []float64{0, 2.5, 37, 50, 97, 100}
	for _, p := range starts {
		for n := 0; n <= 25; n++ {
			right := New(p)
			left := New(p)
			for i := 0; i < n; i++ {
				right.KeyDown(KeyRight)
				left.KeyDown(KeyLeft)
			}
			if want := math.Min(100, p+5*float64(n)); right.Position() != want {
				t.Fatalf("right x%d from %v: got %v want %v", n, p, right.Position(), want)
			}
			if want := math.Max(0, p-5*float64(n)); left.Position() != want {
				t.Fatalf("left x%d from %v: got %v want %v", n, p, left.Position(), want)
			}
		}
	}
}

func TestKeyboardIndependentOfDrag(t *testing.T) {
	s := New(50)
	s.PointerDown(50, Rect{Left: 0, Width: 100})
	if !s.KeyDown(KeyRight) || s.Position() != 55 {
		t.Fatalf("expected key step while dragging, got %v", s.Position())
	}
	if s.KeyDown(Key(99)) {
		t.Fatalf("unknown key must not be handled")
	}
}

func TestARIA(t *testing.T) {
	s := New(62.6)
	got := s.ARIA()
	want := ARIA{Role: "slider", ValueMin: 0, ValueMax: 100, ValueNow: 63}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}
