// Package gesture turns raw pointer presses into clicks, double-clicks and
// drag selections. Terminals report button presses only, so click counting
// happens here.
package gesture

import "time"

// Defaults for click sequence detection.
const (
	DefaultClickTime     = 400 * time.Millisecond
	DefaultClickDistance = 1
)

// Tracker counts clicks that belong to the same sequence.
type Tracker struct {
	maxTime     time.Duration
	maxDistance int

	lastX, lastY int
	lastTime     time.Time
	lastCount    int
}

// NewTracker creates a click tracker. Zero values select the defaults.
func NewTracker(maxTime time.Duration, maxDistance int) *Tracker {
	if maxTime <= 0 {
		maxTime = DefaultClickTime
	}
	if maxDistance <= 0 {
		maxDistance = DefaultClickDistance
	}
	return &Tracker{maxTime: maxTime, maxDistance: maxDistance}
}

// Press records a press at (x, y) and returns the click count: 1, 2 or 3.
// The count wraps back to 1 after a triple click.
func (t *Tracker) Press(x, y int, at time.Time) int {
	if at.IsZero() {
		at = time.Now()
	}
	if t.inSequence(x, y, at) {
		t.lastCount++
		if t.lastCount > 3 {
			t.lastCount = 1
		}
	} else {
		t.lastCount = 1
	}
	t.lastX, t.lastY, t.lastTime = x, y, at
	return t.lastCount
}

func (t *Tracker) inSequence(x, y int, at time.Time) bool {
	if t.lastCount == 0 || t.lastTime.IsZero() {
		return false
	}
	// Clock skew starts a new sequence.
	elapsed := at.Sub(t.lastTime)
	if elapsed < 0 || elapsed > t.maxTime {
		return false
	}
	return abs(x-t.lastX)+abs(y-t.lastY) <= t.maxDistance
}

// Reset forgets the current sequence.
func (t *Tracker) Reset() {
	t.lastCount = 0
	t.lastTime = time.Time{}
}

// Drag follows a press-move-release sequence.
type Drag struct {
	active bool
	moved  bool

	StartX, StartY int
	X, Y           int
}

// Press starts a drag at (x, y).
func (d *Drag) Press(x, y int) {
	*d = Drag{active: true, StartX: x, StartY: y, X: x, Y: y}
}

// Move updates the drag position and reports whether a drag is active.
func (d *Drag) Move(x, y int) bool {
	if !d.active {
		return false
	}
	if x != d.StartX || y != d.StartY {
		d.moved = true
	}
	d.X, d.Y = x, y
	return true
}

// Release ends the drag and reports whether the pointer moved, which tells
// a selection apart from a click.
func (d *Drag) Release(x, y int) (moved bool) {
	if !d.active {
		return false
	}
	d.Move(x, y)
	d.active = false
	return d.moved
}

// Active reports whether a drag is in progress.
func (d *Drag) Active() bool {
	return d.active
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
