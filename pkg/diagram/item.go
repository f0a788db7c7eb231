// Package diagram provides the scene graph of a process-flow diagram:
// nodes, grips, connecting lines, labels, the gestures that edit them and
// the snapshot codec that persists them.
//
// All mutation happens on the caller's goroutine. A Scene is not safe for
// concurrent use; hosts deliver events from a single event loop.
package diagram

import (
	"errors"
	"fmt"
)

// ItemID is a stable identity assigned when an item is created.
// IDs increase monotonically within a scene and are never reused.
type ItemID uint64

// NoItem is the zero ItemID; it never names an item.
const NoItem ItemID = 0

// Kind identifies the variant of a scene item.
type Kind int

const (
	KindNode Kind = iota
	KindLine
	KindLabel
	KindResizeGrip
	KindConnectionGrip
)

func (k Kind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindLine:
		return "line"
	case KindLabel:
		return "label"
	case KindResizeGrip:
		return "resize-grip"
	case KindConnectionGrip:
		return "connection-grip"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Item is implemented by every object that lives in a scene.
type Item interface {
	ID() ItemID
	Kind() Kind
	// Contains reports whether the scene point p hits the item.
	Contains(p Point) bool
}

var (
	// ErrNotFound is returned when an ItemID does not name a live item.
	ErrNotFound = errors.New("item not found")
	// ErrNotRemovable is returned when removing an item owned by a node.
	ErrNotRemovable = errors.New("item cannot be removed on its own")
	// ErrInvalidSnapshot wraps snapshot validation failures.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// StructureError reports a snapshot reference to an id that is absent or
// inconsistent. Loading fails instead of dropping the dangling reference.
type StructureError struct {
	ID       ItemID // the missing or inconsistent id
	Kind     Kind   // what the id was expected to name
	Referrer ItemID // the item holding the reference
	Reason   string
}

func (e *StructureError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "missing"
	}
	if e.Referrer != NoItem {
		return fmt.Sprintf("snapshot structure: %s %d referenced by %d: %s", e.Kind, e.ID, e.Referrer, reason)
	}
	return fmt.Sprintf("snapshot structure: %s %d: %s", e.Kind, e.ID, reason)
}
