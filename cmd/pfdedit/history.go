package main

import (
	"reflect"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

const maxUndoLevels = 50

// history keeps scene snapshots for undo and redo. Snapshots are taken
// before a structural edit; restoring one rebuilds the scene from it.
type history struct {
	undo []*diagram.Snapshot
	redo []*diagram.Snapshot
}

// record saves the state before an edit and clears the redo stack.
func (h *history) record(snap *diagram.Snapshot) {
	h.undo = push(h.undo, snap)
	h.redo = nil
}

// Undo returns the snapshot to restore, stashing current for redo.
func (h *history) Undo(current *diagram.Snapshot) (*diagram.Snapshot, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	snap := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = push(h.redo, current)
	return snap, true
}

// Redo returns the snapshot to restore, stashing current for undo.
func (h *history) Redo(current *diagram.Snapshot) (*diagram.Snapshot, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	snap := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = push(h.undo, current)
	return snap, true
}

func (h *history) reset() {
	h.undo = nil
	h.redo = nil
}

func push(stack []*diagram.Snapshot, snap *diagram.Snapshot) []*diagram.Snapshot {
	stack = append(stack, snap)
	if len(stack) > maxUndoLevels {
		stack = stack[1:]
	}
	return stack
}

func snapshotsEqual(a, b *diagram.Snapshot) bool {
	return reflect.DeepEqual(a, b)
}
