package diagram

import "go.uber.org/zap"

// Grip hit sizes in scene units.
const (
	ConnectionGripRadius = 10.0
	ResizeGripThickness  = 6.0
)

// ResizeGrip is a handle on one edge of a node that changes the node's
// extent along a single axis.
type ResizeGrip struct {
	id       ItemID
	node     *Node
	slot     Slot
	dragging bool
	applied  Point // movement applied to the node during this gesture
	comp     Point // requested movement the node could not absorb
}

func (g *ResizeGrip) ID() ItemID  { return g.id }
func (g *ResizeGrip) Kind() Kind  { return KindResizeGrip }
func (g *ResizeGrip) Node() *Node { return g.node }
func (g *ResizeGrip) Slot() Slot  { return g.slot }

// Axis returns the only direction the grip moves in.
func (g *ResizeGrip) Axis() Axis { return g.slot.Axis() }

// Dragging reports whether a resize gesture is in progress on the grip.
func (g *ResizeGrip) Dragging() bool { return g.dragging }

// Pos returns the grip position in the node's local coordinates.
func (g *ResizeGrip) Pos() Point {
	return g.node.Anchor(g.slot).Add(g.comp)
}

// ScenePos returns the grip position in scene coordinates.
func (g *ResizeGrip) ScenePos() Point {
	return g.node.MapToScene(g.Pos())
}

// Extent returns the grip's bar length and thickness. Vertical grips span
// the node's width, horizontal grips its height.
func (g *ResizeGrip) Extent() (length, thickness float64) {
	if g.Axis() == AxisVertical {
		return g.node.width, ResizeGripThickness
	}
	return g.node.height, ResizeGripThickness
}

// Contains reports whether p hits the grip's bar.
func (g *ResizeGrip) Contains(p Point) bool {
	local := g.node.MapFromScene(p).Sub(g.Pos())
	length, thick := g.Extent()
	if g.Axis() == AxisVertical {
		return Rect{0, 0, length, thick}.Contains(local)
	}
	return Rect{0, 0, thick, length}.Contains(local)
}

// Visible reports whether the grip should be drawn.
func (g *ResizeGrip) Visible() bool {
	return g.node.gripsShown() || g.dragging
}

// BeginDrag starts a resize gesture.
func (g *ResizeGrip) BeginDrag() {
	g.dragging = true
	g.applied = Point{}
	g.comp = Point{}
	g.node.movable = false
}

// Drag reports the movement since the gesture started, in the node's local
// coordinates. The orthogonal component is ignored. The increment since
// the previous Drag is forwarded to the node; whatever the node rejects is
// kept as compensation so the grip stays under the pointer.
func (g *ResizeGrip) Drag(delta Point) {
	if !g.dragging {
		g.BeginDrag()
	}
	want := g.Axis().Mask(delta)
	got := g.node.resizeFrom(g.slot, want.Sub(g.applied), g)
	g.applied = g.applied.Add(got)
	g.comp = want.Sub(g.applied)
}

// EndDrag finishes the gesture: the compensation is reset and the grip sits
// on the node's current anchor again.
func (g *ResizeGrip) EndDrag() {
	g.dragging = false
	g.applied = Point{}
	g.comp = Point{}
	g.node.movable = true
}

// ConnectOutcome describes how a connect gesture ended.
type ConnectOutcome int

const (
	ConnectCancelled ConnectOutcome = iota // released over nothing connectable
	ConnectRejected                        // released over a grip that already has a line
	ConnectedGrip                          // bound to another grip
	ConnectedLine                          // attached to the midpoint of a line
)

func (o ConnectOutcome) String() string {
	switch o {
	case ConnectCancelled:
		return "cancelled"
	case ConnectRejected:
		return "rejected"
	case ConnectedGrip:
		return "grip"
	case ConnectedLine:
		return "line"
	}
	return "unknown"
}

// Connected reports whether the gesture produced a line.
func (o ConnectOutcome) Connected() bool {
	return o == ConnectedGrip || o == ConnectedLine
}

// ConnectionGrip is a handle at one of a node's four anchors from which
// lines originate and on which they terminate.
type ConnectionGrip struct {
	id          ItemID
	node        *Node
	slot        Slot
	line        ItemID // weak; validated on every read
	selected    bool
	highlighted bool

	// connect gesture state, never persisted
	temp   *Line
	target Item
}

func (g *ConnectionGrip) ID() ItemID  { return g.id }
func (g *ConnectionGrip) Kind() Kind  { return KindConnectionGrip }
func (g *ConnectionGrip) Node() *Node { return g.node }
func (g *ConnectionGrip) Slot() Slot  { return g.slot }

// Pos returns the grip position in the node's local coordinates.
func (g *ConnectionGrip) Pos() Point {
	return g.node.Anchor(g.slot)
}

// ScenePos returns the grip position in scene coordinates.
func (g *ConnectionGrip) ScenePos() Point {
	return g.node.MapToScene(g.Pos())
}

// Contains reports whether p lies within the grip's circle.
func (g *ConnectionGrip) Contains(p Point) bool {
	return g.ScenePos().Dist(p) <= ConnectionGripRadius
}

// Line returns the bound line, or nil when the grip is unconnected.
func (g *ConnectionGrip) Line() *Line {
	if g.line == NoItem || g.node.scene == nil {
		return nil
	}
	l, ok := g.node.scene.line(g.line)
	if !ok {
		g.line = NoItem
		return nil
	}
	return l
}

// Connected reports whether a line is bound to the grip.
func (g *ConnectionGrip) Connected() bool { return g.Line() != nil }

func (g *ConnectionGrip) Selected() bool    { return g.selected }
func (g *ConnectionGrip) Highlighted() bool { return g.highlighted }

// Connecting reports whether a connect gesture started from this grip.
func (g *ConnectionGrip) Connecting() bool { return g.temp != nil }

// TempLine returns the in-progress line of an active connect gesture.
func (g *ConnectionGrip) TempLine() *Line { return g.temp }

// Visible reports whether the grip should be drawn. Grips of an unselected,
// unhovered node stay visible while selected, highlighted as a target or
// dragging a new line.
func (g *ConnectionGrip) Visible() bool {
	return g.node.gripsShown() || g.selected || g.highlighted || g.temp != nil
}

// BeginConnect starts a connect gesture by creating a temporary free line
// whose ends both sit on the grip. It does nothing if the grip already has
// a line or a gesture is running.
func (g *ConnectionGrip) BeginConnect() bool {
	s := g.node.scene
	if s == nil || g.temp != nil || g.Connected() {
		return false
	}
	p := g.ScenePos()
	g.temp = s.newLine(FreeEnd(p), FreeEnd(p), true)
	g.temp.Update(nil)
	return true
}

// UpdateConnect moves the free end of the temporary line to p and tracks the
// connect target under the pointer.
func (g *ConnectionGrip) UpdateConnect(p Point) {
	if g.temp == nil {
		return
	}
	s := g.node.scene
	g.temp.Update(&p)

	target := g.connectTarget(p)
	var over *Node
	if v, ok := target.(*ConnectionGrip); ok {
		over = v.node
	} else {
		over = ownerNode(s.topmostExcept(p, g, g.temp))
	}
	s.setHovered(over)

	if target != g.target {
		setHighlight(g.target, false)
		setHighlight(target, true)
		g.target = target
	}
}

// EndConnect resolves the gesture at p against connectTarget: a free grip
// binds both grips to the new line, a permanent line receives it on its
// path, and a grip that already has a line rejects the connection. With no
// valid target the temporary line is discarded.
func (g *ConnectionGrip) EndConnect(p Point) ConnectOutcome {
	temp := g.temp
	if temp == nil {
		return ConnectCancelled
	}
	s := g.node.scene
	g.temp = nil
	setHighlight(g.target, false)
	g.target = nil

	outcome := ConnectCancelled
	switch v := g.connectTarget(p).(type) {
	case *ConnectionGrip:
		if v.Connected() {
			outcome = ConnectRejected
			break
		}
		temp.start = GripEnd(g.id)
		temp.end = GripEnd(v.id)
		g.line = temp.id
		v.line = temp.id
		outcome = ConnectedGrip
	case *Line:
		temp.start = GripEnd(g.id)
		temp.end = LineEnd(v.id, FindIndex(v, p))
		v.mid = append(v.mid, temp.id)
		g.line = temp.id
		outcome = ConnectedLine
	}

	s.unlink(temp.id)
	if outcome.Connected() {
		temp.temporary = false
		s.link(temp)
		temp.Update(nil)
	} else {
		delete(s.items, temp.id)
	}
	s.log.Debug("connect gesture finished",
		zap.Uint64("grip", uint64(g.id)),
		zap.Uint64("line", uint64(temp.id)),
		zap.Stringer("outcome", outcome))
	return outcome
}

// CancelConnect aborts a running connect gesture and discards its line.
func (g *ConnectionGrip) CancelConnect() {
	if g.temp == nil {
		return
	}
	s := g.node.scene
	setHighlight(g.target, false)
	g.target = nil
	s.unlink(g.temp.id)
	delete(s.items, g.temp.id)
	g.temp = nil
}

// connectTarget returns what a connect gesture released at p would bind
// to. Connection grips win over lines, since a connected grip always lies
// under the end of its own line; otherwise the topmost permanent line is
// used. Items are examined topmost first.
func (g *ConnectionGrip) connectTarget(p Point) Item {
	var line *Line
	for _, it := range g.node.scene.ItemsAt(p) {
		switch v := it.(type) {
		case *ConnectionGrip:
			if v != g {
				return v
			}
		case *Line:
			if line == nil && !v.temporary {
				line = v
			}
		}
	}
	if line != nil {
		return line
	}
	return nil
}

func setHighlight(it Item, on bool) {
	switch v := it.(type) {
	case *ConnectionGrip:
		v.highlighted = on
	case *Line:
		v.highlighted = on
	}
}
