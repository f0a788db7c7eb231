package diagram

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// SnapshotVersion is the snapshot format written by Serialize.
const SnapshotVersion = 1

// Snapshot is the persistent form of a scene. It records structure and
// geometry only; selection, hover and gesture state are not saved.
type Snapshot struct {
	Version int                  `json:"version" validate:"eq=1"`
	NextID  ItemID               `json:"next_id"`
	Order   []ItemID             `json:"order" validate:"dive,required"`
	Nodes   map[ItemID]NodeState `json:"nodes" validate:"dive"`
	Lines   map[ItemID]LineState `json:"lines" validate:"dive"`
}

// NodeState is the saved form of a node. Width and Height are the exact
// extents; Pos is the centre in scene coordinates.
type NodeState struct {
	ID       ItemID              `json:"id" validate:"required"`
	Type     string              `json:"type" validate:"required"`
	Width    float64             `json:"width" validate:"gt=0"`
	Height   float64             `json:"height" validate:"gt=0"`
	Pos      Point               `json:"pos"`
	Rotation float64             `json:"rotation" validate:"gte=0,lt=360"`
	Label    *LabelState         `json:"label,omitempty"`
	Grips    [NumSlots]GripState `json:"grips" validate:"dive"`
}

// GripState records the ids of the two grips in one slot and the line bound
// to the connection grip, if any.
type GripState struct {
	ID     ItemID `json:"id" validate:"required"`
	Resize ItemID `json:"resize" validate:"required"`
	Slot   Slot   `json:"slot" validate:"gte=0,lt=4"`
	Line   ItemID `json:"line,omitempty"`
}

// LabelState is the saved form of a label.
type LabelState struct {
	ID   ItemID `json:"id" validate:"required"`
	Text string `json:"text"`
	Pos  Point  `json:"pos"`
}

// LineState is the saved form of a permanent line.
type LineState struct {
	ID    ItemID        `json:"id" validate:"required"`
	Start EndpointState `json:"start"`
	End   EndpointState `json:"end"`
}

// EndpointState is the saved form of a line end. A grip end is named by
// the node and slot of its connection grip.
type EndpointState struct {
	Kind  string `json:"kind" validate:"oneof=free grip line"`
	Node  ItemID `json:"node,omitempty" validate:"required_if=Kind grip"`
	Slot  Slot   `json:"slot,omitempty" validate:"gte=0,lt=4"`
	Line  ItemID `json:"line,omitempty" validate:"required_if=Kind line"`
	Index int    `json:"index,omitempty" validate:"gte=0,lte=100"`
	Point Point  `json:"point"`
}

var validate = validator.New()

// Serialize captures the scene's structure. Temporary lines of a connect
// gesture in progress are left out.
func (s *Scene) Serialize() *Snapshot {
	snap := &Snapshot{
		Version: SnapshotVersion,
		NextID:  s.nextID,
		Order:   []ItemID{},
		Nodes:   map[ItemID]NodeState{},
		Lines:   map[ItemID]LineState{},
	}
	for _, id := range s.order {
		switch v := s.items[id].(type) {
		case *Node:
			snap.Order = append(snap.Order, id)
			snap.Nodes[id] = nodeState(v)
		case *Line:
			if v.temporary {
				continue
			}
			snap.Order = append(snap.Order, id)
			snap.Lines[id] = LineState{
				ID:    id,
				Start: s.endpointState(v.start),
				End:   s.endpointState(v.end),
			}
		}
	}
	return snap
}

func nodeState(n *Node) NodeState {
	st := NodeState{
		ID:       n.id,
		Type:     n.shape,
		Width:    n.width,
		Height:   n.height,
		Pos:      n.pos,
		Rotation: n.rotation,
	}
	if n.label != nil {
		st.Label = &LabelState{ID: n.label.id, Text: n.label.text, Pos: n.label.pos}
	}
	for i := range st.Grips {
		gs := GripState{Slot: Slot(i)}
		if g := n.conn[i]; g != nil {
			gs.ID = g.id
			if l := g.Line(); l != nil && !l.temporary {
				gs.Line = l.id
			}
		}
		if g := n.resize[i]; g != nil {
			gs.Resize = g.id
		}
		st.Grips[i] = gs
	}
	return st
}

func (s *Scene) endpointState(ep Endpoint) EndpointState {
	switch ep.Kind {
	case EndGrip:
		if g, ok := s.connectionGrip(ep.Grip); ok {
			return EndpointState{Kind: EndGrip.String(), Node: g.node.id, Slot: g.slot}
		}
	case EndLine:
		return EndpointState{Kind: EndLine.String(), Line: ep.Line, Index: ep.Index}
	}
	return EndpointState{Kind: EndFree.String(), Point: ep.Point}
}

// Deserialize rebuilds a scene from a snapshot. The snapshot is validated
// first; any id that is referenced but absent, or any grip and line that
// disagree about their binding, fails the load with a *StructureError.
func Deserialize(snap *Snapshot, opts ...Option) (*Scene, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	if err := validate.Struct(snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if err := checkIDs(snap); err != nil {
		return nil, err
	}

	s := NewScene(opts...)
	s.nextID = snap.NextID

	for _, id := range snap.Order {
		st, ok := snap.Nodes[id]
		if !ok {
			continue
		}
		n, err := s.loadNode(st)
		if err != nil {
			return nil, err
		}
		s.items[n.id] = n
	}

	// First pass: create every line so line-to-line references resolve
	// regardless of z-order.
	for _, id := range snap.Order {
		if _, ok := snap.Lines[id]; !ok {
			continue
		}
		s.items[id] = &Line{id: id, scene: s}
	}
	// Second pass: bind endpoints and derive the mid-line lists.
	for _, id := range snap.Order {
		st, ok := snap.Lines[id]
		if !ok {
			continue
		}
		l := s.items[id].(*Line)
		var err error
		if l.start, err = s.loadEndpoint(st.Start, id); err != nil {
			return nil, err
		}
		if l.end, err = s.loadEndpoint(st.End, id); err != nil {
			return nil, err
		}
		if l.start.Kind == EndFree && l.end.Kind == EndFree {
			return nil, &StructureError{ID: id, Kind: KindLine, Reason: "both ends free"}
		}
		for _, ep := range []Endpoint{l.start, l.end} {
			if ep.Kind == EndLine {
				ref := s.items[ep.Line].(*Line)
				ref.mid = append(ref.mid, id)
			}
		}
	}

	s.order = slices.Clone(snap.Order)
	if err := s.checkBindings(snap); err != nil {
		return nil, err
	}

	for _, l := range s.Lines() {
		l.Update(nil)
	}
	// Lines attached to other lines may have been routed against a path
	// that was still empty.
	for _, l := range s.Lines() {
		l.Update(nil)
	}
	s.log.Debug("scene loaded",
		zap.Int("nodes", len(snap.Nodes)),
		zap.Int("lines", len(snap.Lines)),
		zap.Uint64("next_id", uint64(s.nextID)))
	return s, nil
}

// checkIDs verifies the map keys, the uniqueness of every id and the
// z-order, before anything is built.
func checkIDs(snap *Snapshot) error {
	seen := make(map[ItemID]bool)
	claim := func(id ItemID, kind Kind, owner ItemID) error {
		if seen[id] {
			return &StructureError{ID: id, Kind: kind, Referrer: owner, Reason: "duplicate id"}
		}
		if id > snap.NextID {
			return &StructureError{ID: id, Kind: kind, Referrer: owner, Reason: "id beyond next_id"}
		}
		seen[id] = true
		return nil
	}

	for key, n := range snap.Nodes {
		if key != n.ID {
			return &StructureError{ID: key, Kind: KindNode, Reason: fmt.Sprintf("key does not match id %d", n.ID)}
		}
		if err := claim(n.ID, KindNode, NoItem); err != nil {
			return err
		}
		for i, g := range n.Grips {
			if g.Slot != Slot(i) {
				return &StructureError{ID: g.ID, Kind: KindConnectionGrip, Referrer: n.ID, Reason: "slot out of place"}
			}
			if err := claim(g.ID, KindConnectionGrip, n.ID); err != nil {
				return err
			}
			if err := claim(g.Resize, KindResizeGrip, n.ID); err != nil {
				return err
			}
		}
		if n.Label != nil {
			if err := claim(n.Label.ID, KindLabel, n.ID); err != nil {
				return err
			}
		}
	}
	for key, l := range snap.Lines {
		if key != l.ID {
			return &StructureError{ID: key, Kind: KindLine, Reason: fmt.Sprintf("key does not match id %d", l.ID)}
		}
		if err := claim(l.ID, KindLine, NoItem); err != nil {
			return err
		}
	}

	inOrder := make(map[ItemID]bool, len(snap.Order))
	for _, id := range snap.Order {
		if inOrder[id] {
			return &StructureError{ID: id, Reason: "listed twice in order"}
		}
		inOrder[id] = true
		_, isNode := snap.Nodes[id]
		_, isLine := snap.Lines[id]
		if !isNode && !isLine {
			return &StructureError{ID: id, Kind: KindNode, Reason: "order names no node or line"}
		}
	}
	if len(inOrder) != len(snap.Nodes)+len(snap.Lines) {
		for id := range snap.Nodes {
			if !inOrder[id] {
				return &StructureError{ID: id, Kind: KindNode, Reason: "missing from order"}
			}
		}
		for id := range snap.Lines {
			if !inOrder[id] {
				return &StructureError{ID: id, Kind: KindLine, Reason: "missing from order"}
			}
		}
	}
	return nil
}

func (s *Scene) loadNode(st NodeState) (*Node, error) {
	icon, ok := s.icons.Icon(st.Type)
	if !ok {
		return nil, fmt.Errorf("%w: node %d: %w: %q", ErrInvalidSnapshot, st.ID, ErrUnknownShape, st.Type)
	}
	n := newNode(st.ID, st.Type, icon, st.Pos)
	n.scene = s
	n.width = st.Width
	n.height = st.Height
	n.rotation = st.Rotation
	for i, gs := range st.Grips {
		n.conn[i] = &ConnectionGrip{id: gs.ID, node: n, slot: Slot(i), line: gs.Line}
		n.resize[i] = &ResizeGrip{id: gs.Resize, node: n, slot: Slot(i)}
		s.items[gs.ID] = n.conn[i]
		s.items[gs.Resize] = n.resize[i]
	}
	n.gripsAdded = true
	if st.Label != nil {
		n.label = &Label{id: st.Label.ID, node: n, text: st.Label.Text, pos: st.Label.Pos}
		s.items[n.label.id] = n.label
	}
	return n, nil
}

func (s *Scene) loadEndpoint(st EndpointState, owner ItemID) (Endpoint, error) {
	switch st.Kind {
	case "grip":
		n, ok := s.Node(st.Node)
		if !ok {
			return Endpoint{}, &StructureError{ID: st.Node, Kind: KindNode, Referrer: owner}
		}
		return GripEnd(n.conn[st.Slot].id), nil
	case "line":
		if st.Line == owner {
			return Endpoint{}, &StructureError{ID: st.Line, Kind: KindLine, Referrer: owner, Reason: "attached to itself"}
		}
		if _, ok := s.line(st.Line); !ok {
			return Endpoint{}, &StructureError{ID: st.Line, Kind: KindLine, Referrer: owner}
		}
		return LineEnd(st.Line, st.Index), nil
	}
	return FreeEnd(st.Point), nil
}

// checkBindings makes sure every grip's line reference and every line's
// grip endpoint point at each other.
func (s *Scene) checkBindings(snap *Snapshot) error {
	for _, st := range snap.Nodes {
		for _, gs := range st.Grips {
			if gs.Line == NoItem {
				continue
			}
			l, ok := s.line(gs.Line)
			if !ok {
				return &StructureError{ID: gs.Line, Kind: KindLine, Referrer: gs.ID}
			}
			if !l.boundTo(gs.ID) {
				return &StructureError{ID: gs.Line, Kind: KindLine, Referrer: gs.ID, Reason: "line does not end on grip"}
			}
		}
	}
	bound := make(map[ItemID]ItemID)
	for _, l := range s.Lines() {
		for _, ep := range []Endpoint{l.start, l.end} {
			if ep.Kind != EndGrip {
				continue
			}
			if prev, dup := bound[ep.Grip]; dup {
				return &StructureError{ID: ep.Grip, Kind: KindConnectionGrip, Referrer: l.id,
					Reason: fmt.Sprintf("already bound to line %d", prev)}
			}
			bound[ep.Grip] = l.id
			g, _ := s.connectionGrip(ep.Grip)
			if g.line != l.id {
				return &StructureError{ID: ep.Grip, Kind: KindConnectionGrip, Referrer: l.id, Reason: "grip does not reference line"}
			}
		}
	}
	return nil
}

func (l *Line) boundTo(grip ItemID) bool {
	return (l.start.Kind == EndGrip && l.start.Grip == grip) ||
		(l.end.Kind == EndGrip && l.end.Grip == grip)
}

// IsStructureError reports whether err is or wraps a *StructureError.
func IsStructureError(err error) bool {
	var se *StructureError
	return errors.As(err, &se)
}
