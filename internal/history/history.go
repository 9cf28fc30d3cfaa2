// Package history implements snapshot-based undo/redo for the
// annotation collection. Entries are full deep copies of the
// collection, never diffs.
package history

import "github.com/VitalyVorobyev/imageannotation/internal/shape"

// Stack pairs an undo and a redo stack of collection snapshots with an
// open-operation flag. Every user-visible operation contributes
// exactly one undo entry: Begin captures the pre-operation state, End
// closes the operation, and intermediate mutations such as per-event
// drag updates add nothing.
type Stack struct {
	undo [][]shape.Shape
	redo [][]shape.Shape
	open bool
}

func New() *Stack {
	return &Stack{}
}

// Begin opens an operation, pushing a deep copy of the current state
// onto the undo stack and discarding all redo entries. A Begin while
// an operation is already open is ignored so compound gestures cannot
// double-push.
func (st *Stack) Begin(current []shape.Shape) {
	if st.open {
		return
	}
	st.open = true
	st.undo = append(st.undo, shape.CloneAll(current))
	st.redo = nil
}

// End closes the open operation. The live state itself is the "after"
// image, so nothing is pushed.
func (st *Stack) End() {
	st.open = false
}

// Cancel closes the open operation without touching either stack. The
// caller is expected to have restored the pre-gesture state, which
// makes the snapshot Begin pushed equal to the live state; undoing
// through it later is a harmless no-op step.
func (st *Stack) Cancel() {
	st.open = false
}

// Undo moves the current state onto the redo stack and returns the
// most recent undo snapshot. With an empty undo stack it reports
// false and changes nothing.
func (st *Stack) Undo(current []shape.Shape) ([]shape.Shape, bool) {
	if len(st.undo) == 0 {
		return nil, false
	}
	st.redo = append(st.redo, shape.CloneAll(current))
	top := st.undo[len(st.undo)-1]
	st.undo = st.undo[:len(st.undo)-1]
	return top, true
}

// Redo is the mirror of Undo. With an empty redo stack it reports
// false and changes nothing.
func (st *Stack) Redo(current []shape.Shape) ([]shape.Shape, bool) {
	if len(st.redo) == 0 {
		return nil, false
	}
	st.undo = append(st.undo, shape.CloneAll(current))
	top := st.redo[len(st.redo)-1]
	st.redo = st.redo[:len(st.redo)-1]
	return top, true
}

func (st *Stack) CanUndo() bool {
	return len(st.undo) > 0
}

func (st *Stack) CanRedo() bool {
	return len(st.redo) > 0
}

// Reset drops both stacks, for example when a new image or an imported
// bundle replaces the whole annotation set.
func (st *Stack) Reset() {
	st.undo = nil
	st.redo = nil
	st.open = false
}
