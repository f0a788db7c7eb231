package diagram

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Components returns the groups of nodes joined by lines, directly or
// through lines attached to other lines. Each group is sorted by id and the
// groups are ordered by their smallest id. Unconnected nodes form groups
// of one.
func (s *Scene) Components() [][]ItemID {
	g := simple.NewUndirectedGraph()
	for _, n := range s.Nodes() {
		g.AddNode(simple.Node(n.id))
	}
	lines := s.Lines()
	for _, l := range lines {
		g.AddNode(simple.Node(l.id))
	}
	join := func(a, b ItemID) {
		if a == b || g.Node(int64(a)) == nil || g.Node(int64(b)) == nil {
			return
		}
		g.SetEdge(g.NewEdge(simple.Node(a), simple.Node(b)))
	}
	for _, l := range lines {
		for _, ep := range []Endpoint{l.start, l.end} {
			switch ep.Kind {
			case EndGrip:
				if grip, ok := s.connectionGrip(ep.Grip); ok {
					join(l.id, grip.node.id)
				}
			case EndLine:
				join(l.id, ep.Line)
			}
		}
	}

	var out [][]ItemID
	for _, cc := range topo.ConnectedComponents(g) {
		var group []ItemID
		for _, v := range cc {
			id := ItemID(v.ID())
			if _, ok := s.Node(id); ok {
				group = append(group, id)
			}
		}
		if len(group) == 0 {
			continue
		}
		slices.Sort(group)
		out = append(out, group)
	}
	slices.SortFunc(out, func(a, b []ItemID) int {
		switch {
		case a[0] < b[0]:
			return -1
		case a[0] > b[0]:
			return 1
		}
		return 0
	})
	return out
}
