package diagram

import "math"

// Default and minimum node extents in scene units.
const (
	DefaultNodeWidth  = 100.0
	DefaultNodeHeight = 100.0
	MinExtent         = 10.0
)

// Node is a resizable, selectable shape. Its local origin is the centre of
// its bounding box; Pos is that centre in scene coordinates.
type Node struct {
	id       ItemID
	scene    *Scene
	shape    string
	icon     Icon
	width    float64
	height   float64
	pos      Point
	rotation float64 // degrees
	selected bool
	hovered  bool
	movable  bool
	label    *Label

	conn       [NumSlots]*ConnectionGrip
	resize     [NumSlots]*ResizeGrip
	gripsAdded bool
}

func newNode(id ItemID, shape string, icon Icon, pos Point) *Node {
	return &Node{
		id:      id,
		shape:   shape,
		icon:    icon,
		width:   DefaultNodeWidth,
		height:  DefaultNodeHeight,
		pos:     pos,
		movable: true,
	}
}

func (n *Node) ID() ItemID { return n.id }
func (n *Node) Kind() Kind { return KindNode }

// Type returns the shape type the node was created with.
func (n *Node) Type() string { return n.shape }

// Icon returns the rendering resource resolved for the node's type.
func (n *Node) Icon() Icon { return n.icon }

func (n *Node) Width() float64    { return n.width }
func (n *Node) Height() float64   { return n.height }
func (n *Node) Pos() Point        { return n.pos }
func (n *Node) Rotation() float64 { return n.rotation }
func (n *Node) Selected() bool    { return n.selected }
func (n *Node) Hovered() bool     { return n.hovered }

// Movable reports whether dragging the node body moves it. A node is not
// movable while one of its resize grips is being dragged.
func (n *Node) Movable() bool { return n.movable }

// Label returns the node's label, or nil.
func (n *Node) Label() *Label { return n.label }

// ConnectionGrip returns the connection grip in slot.
func (n *Node) ConnectionGrip(slot Slot) *ConnectionGrip {
	if !slot.Valid() {
		return nil
	}
	return n.conn[slot]
}

// ResizeGrip returns the resize grip in slot.
func (n *Node) ResizeGrip(slot Slot) *ResizeGrip {
	if !slot.Valid() {
		return nil
	}
	return n.resize[slot]
}

// ConnectionGrips returns the four connection grips in slot order.
func (n *Node) ConnectionGrips() [NumSlots]*ConnectionGrip { return n.conn }

// ResizeGrips returns the four resize grips in slot order.
func (n *Node) ResizeGrips() [NumSlots]*ResizeGrip { return n.resize }

// BoundingRect returns the node's extent in local coordinates.
func (n *Node) BoundingRect() Rect {
	return Rect{0, 0, n.width, n.height}
}

// MapToScene converts a local point to scene coordinates.
func (n *Node) MapToScene(local Point) Point {
	return n.pos.Add(local.Rotate(n.rotation))
}

// MapFromScene converts a scene point to local coordinates.
func (n *Node) MapFromScene(p Point) Point {
	return p.Sub(n.pos).Rotate(-n.rotation)
}

// Anchor returns the current local position of slot on the boundary.
func (n *Node) Anchor(slot Slot) Point {
	return Anchor(n.width, n.height, slot)
}

// Contains reports whether the scene point p lies inside the node's box.
func (n *Node) Contains(p Point) bool {
	return n.BoundingRect().Contains(n.MapFromScene(p))
}

// addGrips creates the four connection grips and four resize grips.
// It runs once, when the node first joins a scene.
func (n *Node) addGrips() {
	if n.gripsAdded {
		return
	}
	for i := range n.conn {
		n.conn[i] = &ConnectionGrip{id: n.scene.allocID(), node: n, slot: Slot(i)}
		n.scene.items[n.conn[i].id] = n.conn[i]
	}
	for i := range n.resize {
		n.resize[i] = &ResizeGrip{id: n.scene.allocID(), node: n, slot: Slot(i)}
		n.scene.items[n.resize[i].id] = n.resize[i]
	}
	n.gripsAdded = true
}

// Resize moves the edge at slot by delta, given in local coordinates.
// Only the component along the slot's axis is used. Top and left shrink the
// node for positive movement; bottom and right grow it. The extent never
// drops below MinExtent (or the current extent, if already smaller). The
// centre shifts by half the applied movement so the opposite edge stays put.
// Resize returns the movement actually applied.
func (n *Node) Resize(slot Slot, delta Point) Point {
	return n.resizeFrom(slot, delta, nil)
}

func (n *Node) resizeFrom(slot Slot, delta Point, driver *ResizeGrip) Point {
	if !slot.Valid() {
		return Point{}
	}
	d := slot.Axis().Mask(delta)
	sign := 1.0
	if !slot.Grows() {
		sign = -1
	}

	if d.X != 0 {
		floor := math.Min(MinExtent, n.width)
		w := n.width + sign*d.X
		if w < floor {
			w = floor
			d.X = sign * (w - n.width)
		}
		n.width = w
	}
	if d.Y != 0 {
		floor := math.Min(MinExtent, n.height)
		h := n.height + sign*d.Y
		if h < floor {
			h = floor
			d.Y = sign * (h - n.height)
		}
		n.height = h
	}
	if d == (Point{}) {
		return d
	}

	n.pos = n.pos.Add(d.Scale(0.5).Rotate(n.rotation))
	n.updateGrips(driver)
	return d
}

// updateGrips re-derives grip state after a geometry change and refreshes
// every line bound to the node. The driving resize grip keeps its
// compensation; every other resize grip snaps back to its anchor.
func (n *Node) updateGrips(driver *ResizeGrip) {
	for _, g := range n.resize {
		if g != nil && g != driver {
			g.comp = Point{}
		}
	}
	for _, g := range n.conn {
		if g == nil {
			continue
		}
		if l := g.Line(); l != nil {
			l.Update(nil)
		}
	}
}

// MoveTo places the node's centre at p.
func (n *Node) MoveTo(p Point) {
	if n.pos == p {
		return
	}
	n.pos = p
	n.updateGrips(nil)
}

// MoveBy translates the node by d.
func (n *Node) MoveBy(d Point) {
	n.MoveTo(n.pos.Add(d))
}

// SetRotation sets the rotation in degrees, normalised to [0, 360).
func (n *Node) SetRotation(deg float64) {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	// A tiny negative remainder rounds up to 360 when shifted.
	if deg >= 360 {
		deg = 0
	}
	if n.rotation == deg {
		return
	}
	n.rotation = deg
	n.updateGrips(nil)
}

// RotateBy adds deg degrees to the rotation.
func (n *Node) RotateBy(deg float64) {
	n.SetRotation(n.rotation + deg)
}

// SetSelected changes the selection state. Selection shows all grips.
func (n *Node) SetSelected(on bool) { n.selected = on }

// SetHovered changes the hover state. Hover shows grips without selection.
func (n *Node) SetHovered(on bool) { n.hovered = on }

// gripsShown reports whether the node itself requests visible grips.
func (n *Node) gripsShown() bool {
	return n.selected || n.hovered
}
