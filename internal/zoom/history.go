package zoom

import "errors"

// ErrEmptyHistory is returned when popping an empty history.
var ErrEmptyHistory = errors.New("zoom: history is empty")

// History is a LIFO stack of view snapshots. Snapshots are the serialized
// markup of a view and are never modified once pushed.
type History struct {
	snapshots []string
}

// Push saves a snapshot.
func (h *History) Push(snapshot string) {
	h.snapshots = append(h.snapshots, snapshot)
}

// Pop removes and returns the most recent snapshot.
func (h *History) Pop() (string, error) {
	if len(h.snapshots) == 0 {
		return "", ErrEmptyHistory
	}
	last := h.snapshots[len(h.snapshots)-1]
	h.snapshots[len(h.snapshots)-1] = ""
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return last, nil
}

// Len returns the stack depth.
func (h *History) Len() int {
	return len(h.snapshots)
}
