package diagram

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrUnknownShape is returned by AddNode for a type the icon provider lacks.
var ErrUnknownShape = errors.New("unknown shape type")

// Scene owns every node and line of one diagram, tracks selection and hover,
// and routes pointer gestures to the item that captured them.
type Scene struct {
	nextID  ItemID
	items   map[ItemID]Item
	order   []ItemID // top-level z-order, bottom first: nodes and lines
	icons   IconProvider
	log     *zap.Logger
	gesture gesture
	hovered *Node
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger used for gesture and structure diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIcons sets the icon provider consulted by AddNode.
func WithIcons(p IconProvider) Option {
	return func(s *Scene) {
		if p != nil {
			s.icons = p
		}
	}
}

// NewScene creates an empty scene.
func NewScene(opts ...Option) *Scene {
	s := &Scene{
		items: make(map[ItemID]Item),
		icons: DefaultIcons(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scene) allocID() ItemID {
	s.nextID++
	return s.nextID
}

// reserveID makes sure id is never handed out again.
func (s *Scene) reserveID(id ItemID) {
	if id > s.nextID {
		s.nextID = id
	}
}

// LastID returns the most recently assigned id.
func (s *Scene) LastID() ItemID { return s.nextID }

// Item returns the live item named by id.
func (s *Scene) Item(id ItemID) (Item, bool) {
	it, ok := s.items[id]
	return it, ok
}

// Node returns the node named by id.
func (s *Scene) Node(id ItemID) (*Node, bool) {
	n, ok := s.items[id].(*Node)
	return n, ok
}

// Line returns the permanent line named by id.
func (s *Scene) Line(id ItemID) (*Line, bool) {
	l, ok := s.line(id)
	if !ok || l.temporary {
		return nil, false
	}
	return l, true
}

func (s *Scene) line(id ItemID) (*Line, bool) {
	l, ok := s.items[id].(*Line)
	return l, ok
}

func (s *Scene) connectionGrip(id ItemID) (*ConnectionGrip, bool) {
	g, ok := s.items[id].(*ConnectionGrip)
	return g, ok
}

// Nodes returns the nodes in z-order, bottom first.
func (s *Scene) Nodes() []*Node {
	var out []*Node
	for _, id := range s.order {
		if n, ok := s.items[id].(*Node); ok {
			out = append(out, n)
		}
	}
	return out
}

// Lines returns the permanent lines in z-order, bottom first.
func (s *Scene) Lines() []*Line {
	var out []*Line
	for _, id := range s.order {
		if l, ok := s.items[id].(*Line); ok && !l.temporary {
			out = append(out, l)
		}
	}
	return out
}

// Len returns the number of live items, grips and labels included.
func (s *Scene) Len() int { return len(s.items) }

func (s *Scene) link(it Item) {
	s.items[it.ID()] = it
	s.order = append(s.order, it.ID())
}

func (s *Scene) unlink(id ItemID) {
	s.order = removeID(s.order, id)
}

func (s *Scene) newLine(start, end Endpoint, temporary bool) *Line {
	l := &Line{id: s.allocID(), scene: s, start: start, end: end, temporary: temporary}
	s.link(l)
	return l
}

// AddNode creates a node of the given shape type centred at pos, adds it on
// top of the z-order and gives it its grips.
func (s *Scene) AddNode(shape string, pos Point) (*Node, error) {
	icon, ok := s.icons.Icon(shape)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, shape)
	}
	n := newNode(s.allocID(), shape, icon, pos)
	s.attachNode(n)
	s.log.Debug("node added", zap.Uint64("id", uint64(n.id)), zap.String("type", shape))
	return n, nil
}

func (s *Scene) attachNode(n *Node) {
	n.scene = s
	s.link(n)
	n.addGrips()
}

// AddLabel gives the node a label at the node's bottom-left corner. If the
// node already has one, its text is replaced.
func (s *Scene) AddLabel(nodeID ItemID, text string) (*Label, error) {
	n, ok := s.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("add label to %d: %w", nodeID, ErrNotFound)
	}
	if n.label != nil {
		n.label.text = text
		return n.label, nil
	}
	l := &Label{
		id:   s.allocID(),
		node: n,
		text: text,
		pos:  Point{-n.width / 2, n.height / 2},
	}
	n.label = l
	s.items[l.id] = l
	return l, nil
}

// RemoveItem deletes a node, line or label. Removing a node removes its
// grips, its label and every line bound to its grips. Removing a line
// releases its grips and turns lines attached to its path into lines
// ending at a free point where the attachment was. Grips cannot be removed
// on their own.
func (s *Scene) RemoveItem(id ItemID) error {
	it, ok := s.items[id]
	if !ok {
		return fmt.Errorf("remove %d: %w", id, ErrNotFound)
	}
	s.CancelGesture()
	switch v := it.(type) {
	case *Node:
		s.removeNode(v)
	case *Line:
		s.removeLine(v)
	case *Label:
		v.node.label = nil
		delete(s.items, v.id)
	default:
		return fmt.Errorf("remove %s %d: %w", it.Kind(), id, ErrNotRemovable)
	}
	return nil
}

func (s *Scene) removeNode(n *Node) {
	for _, g := range n.conn {
		if l := g.Line(); l != nil {
			s.removeLine(l)
		}
		delete(s.items, g.id)
	}
	for _, g := range n.resize {
		delete(s.items, g.id)
	}
	if n.label != nil {
		delete(s.items, n.label.id)
	}
	if s.hovered == n {
		s.hovered = nil
	}
	s.unlink(n.id)
	delete(s.items, n.id)
	s.log.Debug("node removed", zap.Uint64("id", uint64(n.id)))
}

func (s *Scene) removeLine(l *Line) {
	if _, ok := s.items[l.id]; !ok {
		return
	}
	for _, ep := range []Endpoint{l.start, l.end} {
		switch ep.Kind {
		case EndGrip:
			if g, ok := s.connectionGrip(ep.Grip); ok && g.line == l.id {
				g.line = NoItem
			}
		case EndLine:
			if ref, ok := s.line(ep.Line); ok {
				ref.mid = removeID(ref.mid, l.id)
			}
		}
	}
	s.unlink(l.id)
	delete(s.items, l.id)

	mids := l.mid
	l.mid = nil
	for _, id := range mids {
		m, ok := s.line(id)
		if !ok {
			continue
		}
		m.collapseRef(l.id, EndLine)
		if m.start.Kind == EndFree && m.end.Kind == EndFree {
			s.removeLine(m)
			continue
		}
		m.Update(nil)
	}
	s.log.Debug("line removed", zap.Uint64("id", uint64(l.id)), zap.Int("detached", len(mids)))
}

// ItemsAt returns every item hit by p, topmost first. A node's grips and
// label are above the node itself; connection grips win over resize grips.
func (s *Scene) ItemsAt(p Point) []Item {
	var out []Item
	for i := len(s.order) - 1; i >= 0; i-- {
		switch v := s.items[s.order[i]].(type) {
		case *Node:
			for _, g := range v.conn {
				if g.Contains(p) {
					out = append(out, g)
				}
			}
			for _, g := range v.resize {
				if g.Contains(p) {
					out = append(out, g)
				}
			}
			if v.label != nil && v.label.Contains(p) {
				out = append(out, v.label)
			}
			if v.Contains(p) {
				out = append(out, v)
			}
		case *Line:
			if v.Contains(p) {
				out = append(out, v)
			}
		}
	}
	return out
}

// ItemAt returns the topmost item hit by p, or nil.
func (s *Scene) ItemAt(p Point) Item {
	return s.topmostExcept(p)
}

func (s *Scene) topmostExcept(p Point, skip ...Item) Item {
next:
	for _, it := range s.ItemsAt(p) {
		for _, sk := range skip {
			if it == sk {
				continue next
			}
		}
		return it
	}
	return nil
}

// Hovered returns the node currently under the pointer, or nil.
func (s *Scene) Hovered() *Node { return s.hovered }

func (s *Scene) setHovered(n *Node) {
	if s.hovered == n {
		return
	}
	if s.hovered != nil {
		s.hovered.SetHovered(false)
	}
	s.hovered = n
	if n != nil {
		n.SetHovered(true)
	}
}

// ownerNode returns the node an item belongs to.
func ownerNode(it Item) *Node {
	switch v := it.(type) {
	case *Node:
		return v
	case *ConnectionGrip:
		return v.node
	case *ResizeGrip:
		return v.node
	case *Label:
		return v.node
	}
	return nil
}

// Paint calls the painter for every top-level item in z-order, bottom first.
// Line paths are recomputed synchronously on every geometry change, so
// nothing painted here is stale.
func (s *Scene) Paint(p Painter) {
	for _, id := range s.order {
		switch v := s.items[id].(type) {
		case *Node:
			p.PaintNode(v)
		case *Line:
			p.PaintLine(v)
		}
	}
}

// Bounds returns the smallest rectangle enclosing every node and line.
// The zero Rect is returned for an empty scene.
func (s *Scene) Bounds() Rect {
	first := true
	var minX, minY, maxX, maxY float64
	grow := func(p Point) {
		if first {
			minX, minY, maxX, maxY = p.X, p.Y, p.X, p.Y
			first = false
			return
		}
		minX, minY = min(minX, p.X), min(minY, p.Y)
		maxX, maxY = max(maxX, p.X), max(maxY, p.Y)
	}
	for _, id := range s.order {
		switch v := s.items[id].(type) {
		case *Node:
			for _, c := range []Point{{-v.width / 2, -v.height / 2}, {v.width / 2, -v.height / 2}, {-v.width / 2, v.height / 2}, {v.width / 2, v.height / 2}} {
				grow(v.MapToScene(c))
			}
		case *Line:
			for _, p := range v.path {
				grow(p)
			}
		}
	}
	if first {
		return Rect{}
	}
	return Rect{(minX + maxX) / 2, (minY + maxY) / 2, maxX - minX, maxY - minY}
}
