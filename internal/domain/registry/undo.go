package registry

import "sync"

// MaxUndoDepth bounds the undo history
const MaxUndoDepth = 100

// UndoStack records labels of undoable edits. Loading a session resets it
// since no edit survives a workspace teardown.
type UndoStack struct {
	mu    sync.Mutex
	edits []string
}

// NewUndoStack creates an empty stack
func NewUndoStack() *UndoStack {
	return &UndoStack{}
}

// Push records an edit, dropping the oldest when full
func (u *UndoStack) Push(label string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.edits) == MaxUndoDepth {
		u.edits = u.edits[1:]
	}
	u.edits = append(u.edits, label)
}

// Pop removes the most recent edit
func (u *UndoStack) Pop() (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(u.edits) == 0 {
		return "", false
	}
	last := u.edits[len(u.edits)-1]
	u.edits = u.edits[:len(u.edits)-1]
	return last, true
}

// Len returns the number of recorded edits
func (u *UndoStack) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.edits)
}

// Reset clears the history
func (u *UndoStack) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.edits = nil
}
