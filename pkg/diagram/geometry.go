// Geometric primitives for the diagram scene.
// Provides points, centre-based rectangles, anchor slots and path sampling.

package diagram

import "math"

// Point represents a 2D coordinate.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point {
	return Point{x, y}
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Scale returns p*k.
func (p Point) Scale(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

// Len returns the distance of p from the origin.
func (p Point) Len() float64 {
	return math.Hypot(p.X, p.Y)
}

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 {
	return p.Sub(q).Len()
}

// Rotate rotates p about the origin by deg degrees (clockwise in screen space).
func (p Point) Rotate(deg float64) Point {
	if deg == 0 {
		return p
	}
	rad := deg * math.Pi / 180
	sin, cos := math.Sincos(rad)
	return Point{p.X*cos - p.Y*sin, p.X*sin + p.Y*cos}
}

// Rect represents an axis-aligned rectangle.
type Rect struct {
	X, Y float64 // Center
	W, H float64 // Full width and height
}

// Contains reports whether p lies inside or on the rectangle.
func (r Rect) Contains(p Point) bool {
	return math.Abs(p.X-r.X) <= r.W/2 && math.Abs(p.Y-r.Y) <= r.H/2
}

// Inflate grows the rectangle by d on every side.
func (r Rect) Inflate(d float64) Rect {
	return Rect{r.X, r.Y, r.W + 2*d, r.H + 2*d}
}

// Axis constrains grip movement.
type Axis int

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

// Mask keeps only the component of d along the axis.
func (a Axis) Mask(d Point) Point {
	if a == AxisHorizontal {
		return Point{d.X, 0}
	}
	return Point{0, d.Y}
}

// Slot identifies one of the four anchor positions on a node boundary.
type Slot int

const (
	SlotTop Slot = iota
	SlotLeft
	SlotBottom
	SlotRight
)

// NumSlots is the number of anchor slots per node.
const NumSlots = 4

var slotNames = [NumSlots]string{"top", "left", "bottom", "right"}

func (s Slot) String() string {
	if s.Valid() {
		return slotNames[s]
	}
	return "invalid"
}

// Valid reports whether s is one of the four slots.
func (s Slot) Valid() bool {
	return s >= SlotTop && s <= SlotRight
}

// Axis returns the movement axis of a resize grip in this slot.
func (s Slot) Axis() Axis {
	if s == SlotTop || s == SlotBottom {
		return AxisVertical
	}
	return AxisHorizontal
}

// Grows reports whether positive movement in this slot enlarges the node.
// Top and left are the "negative" sides.
func (s Slot) Grows() bool {
	return s == SlotBottom || s == SlotRight
}

// Anchor returns the boundary point for slot on a width x height box centred
// at the origin. Anchors are never cached; callers recompute after a resize.
func Anchor(width, height float64, slot Slot) Point {
	switch slot {
	case SlotTop:
		return Point{0, -height / 2}
	case SlotLeft:
		return Point{-width / 2, 0}
	case SlotBottom:
		return Point{0, height / 2}
	case SlotRight:
		return Point{width / 2, 0}
	}
	return Point{}
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return p.Dist(a.Add(ab.Scale(t)))
}

// pathLength returns the total length of a polyline.
func pathLength(path []Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i].Dist(path[i-1])
	}
	return total
}

// pointAtFraction walks a polyline by arc length and returns the point at
// fraction t in [0,1].
func pointAtFraction(path []Point, t float64) Point {
	if len(path) == 0 {
		return Point{}
	}
	if len(path) == 1 || t <= 0 {
		return path[0]
	}
	if t >= 1 {
		return path[len(path)-1]
	}
	target := pathLength(path) * t
	for i := 1; i < len(path); i++ {
		seg := path[i].Dist(path[i-1])
		if seg >= target {
			if seg == 0 {
				return path[i]
			}
			return path[i-1].Add(path[i].Sub(path[i-1]).Scale(target / seg))
		}
		target -= seg
	}
	return path[len(path)-1]
}
