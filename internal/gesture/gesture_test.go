package gesture

import (
	"testing"
	"time"
)

func TestTrackerCounts(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		x, y   int
		offset time.Duration
		want   int
	}{
		{"first", 5, 5, 0, 1},
		{"double", 5, 5, 100 * time.Millisecond, 2},
		{"triple nearby", 6, 5, 200 * time.Millisecond, 3},
		{"wraps", 6, 5, 300 * time.Millisecond, 1},
		{"too far", 20, 5, 350 * time.Millisecond, 1},
		{"too slow", 20, 5, 2 * time.Second, 1},
		{"clock skew", 20, 5, time.Second, 1},
	}

	tr := NewTracker(0, 0)
	for _, tt := range tests {
		if got := tr.Press(tt.x, tt.y, base.Add(tt.offset)); got != tt.want {
			t.Errorf("%s: Press = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestTrackerReset(t *testing.T) {
	now := time.Now()
	tr := NewTracker(time.Second, 1)
	tr.Press(0, 0, now)
	tr.Reset()
	if got := tr.Press(0, 0, now.Add(time.Millisecond)); got != 1 {
		t.Errorf("Press after Reset = %d, want 1", got)
	}
}

func TestDrag(t *testing.T) {
	var d Drag
	if d.Move(1, 1) {
		t.Error("Move without Press should report inactive")
	}

	d.Press(2, 3)
	if !d.Active() {
		t.Fatal("drag not active after Press")
	}
	if d.Release(2, 3) {
		t.Error("release in place should not count as moved")
	}

	d.Press(2, 3)
	d.Move(8, 3)
	if !d.Release(9, 3) {
		t.Error("release after motion should count as moved")
	}
	if d.X != 9 || d.Y != 3 || d.StartX != 2 {
		t.Errorf("drag = %+v", d)
	}
	if d.Active() {
		t.Error("drag still active after Release")
	}
}
