package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// branched returns A and B joined by main, with C's top grip attached to the
// middle of main by branch.
func branched(t *testing.T) (s *Scene, a, b, c *Node, main, branch *Line) {
	t.Helper()
	s, a, b = twoNodes(t)
	connect(s, Pt(100, 50), Pt(250, 50))
	var err error
	c, err = s.AddNode("valve", Pt(175, 250))
	require.NoError(t, err)
	connect(s, Pt(175, 200), Pt(175, 50))
	lines := s.Lines()
	require.Len(t, lines, 2)
	return s, a, b, c, lines[0], lines[1]
}

func TestRemoveLineReleasesGrips(t *testing.T) {
	s, a, b := twoNodes(t)
	connect(s, Pt(100, 50), Pt(250, 50))
	l := s.Lines()[0]

	require.NoError(t, s.RemoveItem(l.ID()))
	assert.False(t, a.ConnectionGrip(SlotRight).Connected())
	assert.False(t, b.ConnectionGrip(SlotLeft).Connected())
	_, ok := s.Line(l.ID())
	assert.False(t, ok)

	// Both grips can start a new connection.
	connect(s, Pt(250, 50), Pt(100, 50))
	assert.Len(t, s.Lines(), 1)
}

func TestRemoveNodeRemovesBoundLines(t *testing.T) {
	s, a, b, c, main, branch := branched(t)

	require.NoError(t, s.RemoveItem(c.ID()))
	_, ok := s.Line(branch.ID())
	assert.False(t, ok)
	assert.Empty(t, main.MidLines())
	assert.True(t, a.ConnectionGrip(SlotRight).Connected())
	assert.True(t, b.ConnectionGrip(SlotLeft).Connected())

	require.NoError(t, s.RemoveItem(b.ID()))
	_, ok = s.Line(main.ID())
	assert.False(t, ok)
	assert.False(t, a.ConnectionGrip(SlotRight).Connected())
	assert.Equal(t, []*Node{a}, s.Nodes())
}

func TestRemoveLineFreesAttachedLines(t *testing.T) {
	s, _, _, c, main, branch := branched(t)
	attach := main.PointAt(50)

	require.NoError(t, s.RemoveItem(main.ID()))

	// The branch survives, ending where it used to touch main.
	got, ok := s.Line(branch.ID())
	require.True(t, ok)
	assert.Equal(t, FreeEnd(attach), got.End())
	assert.Equal(t, GripEnd(c.ConnectionGrip(SlotTop).ID()), got.Start())
	path := got.Path()
	assert.Equal(t, attach, path[len(path)-1])

	// Moving C keeps the free end fixed.
	c.MoveBy(Pt(30, 0))
	path = got.Path()
	assert.Equal(t, attach, path[len(path)-1])
	assert.Equal(t, Pt(205, 200), path[0])
}

func TestRemoveLineCascadesThroughFreeLines(t *testing.T) {
	s, _, _, _, main, branch := branched(t)

	// A line whose ends both hang on other lines disappears with them.
	l := s.newLine(LineEnd(main.ID(), 20), LineEnd(branch.ID(), 50), false)
	main.mid = append(main.mid, l.ID())
	branch.mid = append(branch.mid, l.ID())
	l.Update(nil)

	require.NoError(t, s.RemoveItem(main.ID()))
	_, ok := s.Line(l.ID())
	assert.True(t, ok, "still hangs on branch")

	require.NoError(t, s.RemoveItem(branch.ID()))
	_, ok = s.Line(l.ID())
	assert.False(t, ok)
	assert.Empty(t, s.Lines())
}

func TestRemoveDuringConnectCancelsGesture(t *testing.T) {
	s, a, b := twoNodes(t)
	s.Press(PointerEvent{Pos: Pt(100, 50)})
	s.Move(PointerEvent{Pos: Pt(200, 80)})
	require.True(t, s.Capturing())

	require.NoError(t, s.RemoveItem(a.ID()))
	assert.False(t, s.Capturing())
	assert.Equal(t, 9, s.Len())

	// A stray release after the removal is ignored.
	s.Release(PointerEvent{Pos: Pt(250, 50)})
	assert.False(t, b.ConnectionGrip(SlotLeft).Connected())
}
