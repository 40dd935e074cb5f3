package player

import (
	"math"

	"github.com/samber/lo"
)

// Bounds is the horizontal extent of a slider control, in whatever unit pointer positions use.
type Bounds struct {
	Left  float64
	Width float64
}

// Fraction converts a pointer x position into [0,1] relative to b. Positions outside the
// control clamp to the nearest end.
func (b Bounds) Fraction(x float64) float64 {
	if b.Width <= 0 || math.IsNaN(x) {
		return 0
	}
	return lo.Clamp((x-b.Left)/b.Width, 0, 1)
}

// Gesture tracks one press-drag-release interaction over a slider.
//
// Press starts the drag and applies immediately. Move events are accepted from anywhere
// (the pointer may leave the control) and ignored unless a drag is active.
type Gesture struct {
	dragging bool
	bounds   Bounds
	apply    func(fraction float64)
}

func newGesture(apply func(float64)) *Gesture {
	return &Gesture{apply: apply}
}

// Press begins a drag over a control occupying b.
func (g *Gesture) Press(x float64, b Bounds) {
	g.dragging = true
	g.bounds = b
	g.apply(b.Fraction(x))
}

// Move updates the drag position.
func (g *Gesture) Move(x float64) {
	if !g.dragging {
		return
	}
	g.apply(g.bounds.Fraction(x))
}

// Release ends the drag.
func (g *Gesture) Release() {
	g.dragging = false
}

// Dragging reports whether a drag is in progress.
func (g *Gesture) Dragging() bool {
	return g.dragging
}
