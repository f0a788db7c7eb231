package diagram

import "go.uber.org/zap"

// Button identifies a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// Modifiers is a bit set of keyboard modifiers held during a pointer event.
type Modifiers int

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// PointerEvent is a press, move or release in scene coordinates.
type PointerEvent struct {
	Pos    Point
	Button Button
	Mods   Modifiers
}

// gesture receives every move and the release of one press once it has
// captured the pointer.
type gesture interface {
	move(p Point)
	release(p Point)
	cancel()
}

// pressHandler starts the gesture for a press on an item of one kind.
// A nil gesture means the press does not capture the pointer.
type pressHandler func(s *Scene, it Item, ev PointerEvent) gesture

var pressHandlers = map[Kind]pressHandler{
	KindConnectionGrip: pressConnectionGrip,
	KindResizeGrip:     pressResizeGrip,
	KindLabel:          pressLabel,
	KindNode:           pressNode,
	KindLine:           pressLine,
}

// Capturing reports whether a gesture holds the pointer.
func (s *Scene) Capturing() bool { return s.gesture != nil }

// Press routes a pointer press to the topmost item under it.
func (s *Scene) Press(ev PointerEvent) {
	if s.gesture != nil || ev.Button != ButtonLeft {
		return
	}
	it := s.ItemAt(ev.Pos)
	if it == nil {
		if ev.Mods&ModShift == 0 {
			s.ClearSelection()
		}
		s.endLabelEdits(nil)
		return
	}
	s.endLabelEdits(it)
	if h := pressHandlers[it.Kind()]; h != nil {
		s.gesture = h(s, it, ev)
	}
}

// Move routes a pointer move to the captured gesture, or updates hover.
func (s *Scene) Move(ev PointerEvent) {
	if s.gesture != nil {
		s.gesture.move(ev.Pos)
		return
	}
	s.setHovered(ownerNode(s.ItemAt(ev.Pos)))
}

// Release ends the captured gesture.
func (s *Scene) Release(ev PointerEvent) {
	if s.gesture == nil {
		return
	}
	g := s.gesture
	s.gesture = nil
	g.release(ev.Pos)
	s.setHovered(ownerNode(s.ItemAt(ev.Pos)))
}

// DoubleClick starts in-place editing of the label under the pointer.
// It returns the label being edited, or nil.
func (s *Scene) DoubleClick(ev PointerEvent) *Label {
	if s.gesture != nil {
		return nil
	}
	l, ok := s.ItemAt(ev.Pos).(*Label)
	if !ok {
		return nil
	}
	l.BeginEdit()
	return l
}

// CancelGesture aborts the captured gesture without committing it.
func (s *Scene) CancelGesture() {
	if s.gesture == nil {
		return
	}
	g := s.gesture
	s.gesture = nil
	g.cancel()
}

// EditingLabel returns the label in editing mode, or nil.
func (s *Scene) EditingLabel() *Label {
	for _, n := range s.Nodes() {
		if n.label != nil && n.label.editing {
			return n.label
		}
	}
	return nil
}

// endLabelEdits commits every label edit except the one on keep.
func (s *Scene) endLabelEdits(keep Item) {
	for _, n := range s.Nodes() {
		if n.label != nil && Item(n.label) != keep {
			n.label.EndEdit(true)
		}
	}
}

// --- selection ---

// selectable is implemented by items that take part in selection.
type selectable interface {
	Item
	Selected() bool
	SetSelected(bool)
}

// SelectedItems returns selected nodes, lines and labels in z-order.
func (s *Scene) SelectedItems() []Item {
	var out []Item
	for _, id := range s.order {
		switch v := s.items[id].(type) {
		case *Node:
			if v.selected {
				out = append(out, v)
			}
			if v.label != nil && v.label.selected {
				out = append(out, v.label)
			}
		case *Line:
			if v.selected {
				out = append(out, v)
			}
		}
	}
	return out
}

// Select sets the selection state of a node, line or label.
func (s *Scene) Select(id ItemID, on bool) bool {
	it, ok := s.items[id].(selectable)
	if !ok {
		return false
	}
	it.SetSelected(on)
	return true
}

// ClearSelection deselects everything.
func (s *Scene) ClearSelection() {
	for _, it := range s.SelectedItems() {
		it.(selectable).SetSelected(false)
	}
}

// SelectAll selects every node and permanent line.
func (s *Scene) SelectAll() {
	for _, n := range s.Nodes() {
		n.selected = true
	}
	for _, l := range s.Lines() {
		l.selected = true
	}
}

// RotateSelected rotates every selected node by deg degrees.
func (s *Scene) RotateSelected(deg float64) {
	for _, it := range s.SelectedItems() {
		if n, ok := it.(*Node); ok {
			n.RotateBy(deg)
		}
	}
}

// DeleteSelected removes every selected item and returns how many went.
func (s *Scene) DeleteSelected() int {
	count := 0
	for _, it := range s.SelectedItems() {
		if _, live := s.items[it.ID()]; !live {
			continue
		}
		if err := s.RemoveItem(it.ID()); err == nil {
			count++
		}
	}
	return count
}

func (s *Scene) pick(it selectable, mods Modifiers) {
	switch {
	case mods&ModShift != 0:
		it.SetSelected(!it.Selected())
	case !it.Selected():
		s.ClearSelection()
		it.SetSelected(true)
	}
}

// --- gestures ---

func pressConnectionGrip(s *Scene, it Item, ev PointerEvent) gesture {
	g := it.(*ConnectionGrip)
	g.selected = true
	if !g.BeginConnect() {
		return &gripClick{grip: g}
	}
	return &connectGesture{grip: g, log: s.log}
}

// gripClick is a press on a connected grip: the grip is selected until
// release and nothing else happens.
type gripClick struct {
	grip *ConnectionGrip
}

func (c *gripClick) move(Point)    {}
func (c *gripClick) release(Point) { c.grip.selected = false }
func (c *gripClick) cancel()       { c.grip.selected = false }

type connectGesture struct {
	grip *ConnectionGrip
	log  *zap.Logger
}

func (c *connectGesture) move(p Point) { c.grip.UpdateConnect(p) }

func (c *connectGesture) release(p Point) {
	c.grip.EndConnect(p)
	c.grip.selected = false
}

func (c *connectGesture) cancel() {
	c.grip.CancelConnect()
	c.grip.selected = false
	c.log.Debug("connect gesture cancelled", zap.Uint64("grip", uint64(c.grip.id)))
}

func pressResizeGrip(s *Scene, it Item, ev PointerEvent) gesture {
	g := it.(*ResizeGrip)
	if !g.node.selected {
		s.pick(g.node, ev.Mods&^ModShift)
	}
	g.BeginDrag()
	return &resizeGesture{grip: g, start: ev.Pos}
}

type resizeGesture struct {
	grip  *ResizeGrip
	start Point
}

func (r *resizeGesture) move(p Point) {
	r.grip.Drag(p.Sub(r.start).Rotate(-r.grip.node.rotation))
}

func (r *resizeGesture) release(p Point) {
	r.move(p)
	r.grip.EndDrag()
}

func (r *resizeGesture) cancel() { r.grip.EndDrag() }

func pressNode(s *Scene, it Item, ev PointerEvent) gesture {
	n := it.(*Node)
	s.pick(n, ev.Mods)
	if !n.selected {
		return nil
	}
	return &moveGesture{scene: s, last: ev.Pos}
}

// moveGesture drags every selected node by the pointer's movement.
type moveGesture struct {
	scene *Scene
	last  Point
}

func (m *moveGesture) move(p Point) {
	d := p.Sub(m.last)
	m.last = p
	for _, it := range m.scene.SelectedItems() {
		if n, ok := it.(*Node); ok && n.movable {
			n.MoveBy(d)
		}
	}
}

func (m *moveGesture) release(p Point) { m.move(p) }
func (m *moveGesture) cancel()         {}

func pressLabel(s *Scene, it Item, ev PointerEvent) gesture {
	l := it.(*Label)
	s.pick(l, ev.Mods)
	if l.editing {
		return nil
	}
	return &labelGesture{label: l, last: ev.Pos}
}

type labelGesture struct {
	label *Label
	last  Point
}

func (g *labelGesture) move(p Point) {
	d := p.Sub(g.last).Rotate(-g.label.node.rotation)
	g.last = p
	g.label.MoveBy(d)
}

func (g *labelGesture) release(p Point) { g.move(p) }
func (g *labelGesture) cancel()         {}

func pressLine(s *Scene, it Item, ev PointerEvent) gesture {
	s.pick(it.(*Line), ev.Mods)
	return nil
}
