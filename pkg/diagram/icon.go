package diagram

import "sort"

// Outline is the basic silhouette a painter draws for a node.
type Outline int

const (
	OutlineEllipse Outline = iota
	OutlineRect
	OutlineRoundedRect
	OutlineDiamond
	OutlineTriangle
)

// Icon is the rendering resource for one shape type.
type Icon struct {
	Name    string
	Outline Outline
}

// IconProvider resolves shape types to icons. The host owns the provider
// and its lifetime; the scene only looks icons up when nodes are created.
type IconProvider interface {
	Icon(shape string) (Icon, bool)
}

// IconCatalog is a fixed IconProvider keyed by shape type.
type IconCatalog map[string]Icon

// Icon implements IconProvider.
func (c IconCatalog) Icon(shape string) (Icon, bool) {
	icon, ok := c[shape]
	return icon, ok
}

// Shapes returns the catalogue's shape types in sorted order.
func (c IconCatalog) Shapes() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultIcons returns the built-in process-flow symbols.
func DefaultIcons() IconCatalog {
	return IconCatalog{
		"ellipse":        {Name: "ellipse", Outline: OutlineEllipse},
		"tank":           {Name: "tank", Outline: OutlineRect},
		"vessel":         {Name: "vessel", Outline: OutlineRoundedRect},
		"valve":          {Name: "valve", Outline: OutlineDiamond},
		"pump":           {Name: "pump", Outline: OutlineEllipse},
		"compressor":     {Name: "compressor", Outline: OutlineTriangle},
		"heat-exchanger": {Name: "heat-exchanger", Outline: OutlineRoundedRect},
	}
}

// Painter receives render callbacks from Scene.Paint. Grips and labels are
// reached through the node passed to PaintNode.
type Painter interface {
	PaintNode(n *Node)
	PaintLine(l *Line)
}
