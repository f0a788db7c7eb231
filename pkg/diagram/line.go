package diagram

import "math"

// PathResolution is the number of steps a line's path is divided into for
// midpoint attachment. An index i names the point at arc-length fraction
// i/PathResolution.
const PathResolution = 100

// LineHitTolerance is how far from its path a line still accepts a hit.
const LineHitTolerance = 5.0

// EndpointKind says what a line end is attached to.
type EndpointKind int

const (
	EndFree EndpointKind = iota // a point in scene coordinates
	EndGrip                     // a connection grip
	EndLine                     // a point along another line
)

func (k EndpointKind) String() string {
	switch k {
	case EndFree:
		return "free"
	case EndGrip:
		return "grip"
	case EndLine:
		return "line"
	}
	return "invalid"
}

// Endpoint describes one end of a line.
type Endpoint struct {
	Kind  EndpointKind
	Grip  ItemID // EndGrip
	Line  ItemID // EndLine
	Index int    // EndLine: position along Line, 0..PathResolution
	Point Point  // EndFree
}

// FreeEnd returns an endpoint fixed at p.
func FreeEnd(p Point) Endpoint { return Endpoint{Kind: EndFree, Point: p} }

// GripEnd returns an endpoint bound to a connection grip.
func GripEnd(grip ItemID) Endpoint { return Endpoint{Kind: EndGrip, Grip: grip} }

// LineEnd returns an endpoint attached to another line at index.
func LineEnd(line ItemID, index int) Endpoint {
	return Endpoint{Kind: EndLine, Line: line, Index: index}
}

// Line connects two endpoints with an orthogonal path.
type Line struct {
	id          ItemID
	scene       *Scene
	start, end  Endpoint
	mid         []ItemID // lines attached to this line's path
	path        []Point
	temporary   bool
	selected    bool
	highlighted bool
}

func (l *Line) ID() ItemID { return l.id }
func (l *Line) Kind() Kind { return KindLine }

func (l *Line) Start() Endpoint { return l.start }
func (l *Line) End() Endpoint   { return l.end }

// Temporary reports whether the line belongs to a connect gesture in progress.
func (l *Line) Temporary() bool { return l.temporary }

func (l *Line) Selected() bool    { return l.selected }
func (l *Line) Highlighted() bool { return l.highlighted }

// SetSelected changes the selection state.
func (l *Line) SetSelected(on bool) { l.selected = on }

// MidLines returns the ids of lines attached to this line's path.
func (l *Line) MidLines() []ItemID {
	out := make([]ItemID, len(l.mid))
	copy(out, l.mid)
	return out
}

// Path returns the rendered path in scene coordinates.
func (l *Line) Path() []Point {
	out := make([]Point, len(l.path))
	copy(out, l.path)
	return out
}

// Contains reports whether p lies within LineHitTolerance of the path.
func (l *Line) Contains(p Point) bool {
	for i := 1; i < len(l.path); i++ {
		if segmentDistance(p, l.path[i-1], l.path[i]) <= LineHitTolerance {
			return true
		}
	}
	return false
}

// PointAt returns the point index/PathResolution of the way along the path.
func (l *Line) PointAt(index int) Point {
	if index < 0 {
		index = 0
	} else if index > PathResolution {
		index = PathResolution
	}
	return pointAtFraction(l.path, float64(index)/PathResolution)
}

// FindIndex returns the index of the path sample closest to p.
func FindIndex(l *Line, p Point) int {
	best, bestDist := 0, math.MaxFloat64
	for i := 0; i <= PathResolution; i++ {
		if d := l.PointAt(i).Dist(p); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Update recomputes the path from the live positions of the endpoints'
// referents. A non-nil override moves the line's free end (the end first,
// then the start) during a gesture; it is ignored when both ends are bound.
// Lines attached to this one are updated afterwards.
func (l *Line) Update(override *Point) {
	l.update(override, make(map[ItemID]bool))
}

func (l *Line) update(override *Point, seen map[ItemID]bool) {
	if seen[l.id] {
		return
	}
	seen[l.id] = true

	if override != nil {
		switch {
		case l.end.Kind == EndFree:
			l.end.Point = *override
		case l.start.Kind == EndFree:
			l.start.Point = *override
		}
	}

	s, sVert, sFixed := l.resolve(l.start, 0)
	e, eVert, eFixed := l.resolve(l.end, len(l.path)-1)
	switch {
	case !sFixed && eFixed:
		sVert = eVert
	case sFixed && !eFixed:
		eVert = sVert
	}
	l.path = route(s, sVert, e, eVert)

	for _, id := range l.mid {
		if m, ok := l.scene.line(id); ok {
			m.update(nil, seen)
		}
	}
}

// resolve returns the scene position of an endpoint, whether the path
// leaves it vertically, and whether that direction is fixed by a grip.
// Dangling references fall back to the last rendered point at pathIdx.
func (l *Line) resolve(ep Endpoint, pathIdx int) (Point, bool, bool) {
	last := func() Point {
		if pathIdx >= 0 && pathIdx < len(l.path) {
			return l.path[pathIdx]
		}
		return ep.Point
	}
	switch ep.Kind {
	case EndGrip:
		if g, ok := l.scene.connectionGrip(ep.Grip); ok {
			return g.ScenePos(), g.slot.Axis() == AxisVertical, true
		}
		return last(), false, false
	case EndLine:
		if ref, ok := l.scene.line(ep.Line); ok {
			return ref.PointAt(ep.Index), false, false
		}
		return last(), false, false
	}
	return ep.Point, false, false
}

// route builds an orthogonal path between s and e. A vertical end leaves
// its point along Y, a horizontal one along X.
func route(s Point, sVert bool, e Point, eVert bool) []Point {
	var pts []Point
	switch {
	case s == e:
		pts = []Point{s, e}
	case !sVert && !eVert:
		mx := (s.X + e.X) / 2
		pts = []Point{s, {mx, s.Y}, {mx, e.Y}, e}
	case sVert && eVert:
		my := (s.Y + e.Y) / 2
		pts = []Point{s, {s.X, my}, {e.X, my}, e}
	case !sVert && eVert:
		pts = []Point{s, {e.X, s.Y}, e}
	default:
		pts = []Point{s, {s.X, e.Y}, e}
	}
	return dedupe(pts)
}

func dedupe(pts []Point) []Point {
	out := pts[:1]
	for _, p := range pts[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	if len(out) == 1 {
		out = append(out, out[0])
	}
	return out
}

// collapseRef turns any endpoint referencing ref into a free point at its
// last resolved location.
func (l *Line) collapseRef(ref ItemID, kind EndpointKind) {
	if len(l.path) == 0 {
		l.Update(nil)
	}
	if l.start.Kind == kind && l.start.ref() == ref {
		l.start = FreeEnd(l.path[0])
	}
	if l.end.Kind == kind && l.end.ref() == ref {
		l.end = FreeEnd(l.path[len(l.path)-1])
	}
}

func (ep Endpoint) ref() ItemID {
	switch ep.Kind {
	case EndGrip:
		return ep.Grip
	case EndLine:
		return ep.Line
	}
	return NoItem
}

func removeID(ids []ItemID, id ItemID) []ItemID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
