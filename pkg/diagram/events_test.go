package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPressSelectsAndMovesNode(t *testing.T) {
	s, a, b := twoNodes(t)
	connect(s, Pt(100, 50), Pt(250, 50))
	l := s.Lines()[0]

	s.Press(PointerEvent{Pos: Pt(50, 50)})
	assert.True(t, a.Selected())
	assert.False(t, b.Selected())
	s.Move(PointerEvent{Pos: Pt(55, 60)})
	s.Move(PointerEvent{Pos: Pt(60, 70)})
	s.Release(PointerEvent{Pos: Pt(60, 70)})

	assert.Equal(t, Pt(60, 70), a.Pos())
	assert.Equal(t, Pt(300, 50), b.Pos())
	assert.Equal(t, Pt(110, 70), l.Path()[0])
}

func TestShiftTogglesSelection(t *testing.T) {
	s, a, b := twoNodes(t)

	s.Press(PointerEvent{Pos: Pt(50, 50)})
	s.Release(PointerEvent{Pos: Pt(50, 50)})
	s.Press(PointerEvent{Pos: Pt(300, 50), Mods: ModShift})
	s.Release(PointerEvent{Pos: Pt(300, 50)})
	assert.Equal(t, []Item{a, b}, s.SelectedItems())

	// Dragging either moves both.
	s.Press(PointerEvent{Pos: Pt(300, 50)})
	s.Move(PointerEvent{Pos: Pt(300, 80)})
	s.Release(PointerEvent{Pos: Pt(300, 80)})
	assert.Equal(t, Pt(50, 80), a.Pos())
	assert.Equal(t, Pt(300, 80), b.Pos())

	s.Press(PointerEvent{Pos: Pt(50, 80), Mods: ModShift})
	s.Release(PointerEvent{Pos: Pt(50, 80)})
	assert.Equal(t, []Item{b}, s.SelectedItems())

	s.Press(PointerEvent{Pos: Pt(175, 400)})
	assert.Empty(t, s.SelectedItems())
}

func TestNonLeftButtonIgnored(t *testing.T) {
	s, a, _ := twoNodes(t)
	s.Press(PointerEvent{Pos: Pt(50, 50), Button: ButtonRight})
	assert.False(t, a.Selected())
	assert.False(t, s.Capturing())
}

func TestHoverShowsGrips(t *testing.T) {
	s, a, b := twoNodes(t)
	g := a.ConnectionGrip(SlotTop)
	assert.False(t, g.Visible())

	s.Move(PointerEvent{Pos: Pt(40, 40)})
	assert.Same(t, a, s.Hovered())
	assert.True(t, a.Hovered())
	assert.True(t, g.Visible())
	assert.True(t, a.ResizeGrip(SlotTop).Visible())

	s.Move(PointerEvent{Pos: Pt(300, 50)})
	assert.False(t, a.Hovered())
	assert.True(t, b.Hovered())

	s.Move(PointerEvent{Pos: Pt(175, 400)})
	assert.Nil(t, s.Hovered())
	assert.False(t, g.Visible())
}

func TestSelectAllAndDelete(t *testing.T) {
	s, _, _ := twoNodes(t)
	connect(s, Pt(100, 50), Pt(250, 50))

	s.SelectAll()
	assert.Len(t, s.SelectedItems(), 3)

	assert.Equal(t, 2, s.DeleteSelected())
	assert.Empty(t, s.Nodes())
	assert.Empty(t, s.Lines())
	assert.Zero(t, s.Len())
}

func TestSelectAndClear(t *testing.T) {
	s, a, _ := twoNodes(t)
	assert.True(t, s.Select(a.ID(), true))
	assert.False(t, s.Select(a.ConnectionGrip(SlotTop).ID(), true))
	assert.Equal(t, []Item{a}, s.SelectedItems())

	s.ClearSelection()
	assert.Empty(t, s.SelectedItems())
}

func TestRotateSelected(t *testing.T) {
	s, a, b := twoNodes(t)
	s.Select(a.ID(), true)

	s.RotateSelected(1)
	s.RotateSelected(1)
	assert.Equal(t, 2.0, a.Rotation())
	assert.Equal(t, 0.0, b.Rotation())

	s.RotateSelected(-3)
	assert.Equal(t, 359.0, a.Rotation())
}

func TestLabelEditing(t *testing.T) {
	s, a, _ := twoNodes(t)
	l, err := s.AddLabel(a.ID(), "P-101")
	require.NoError(t, err)
	assert.Equal(t, Pt(-50, 50), l.Pos())
	assert.Equal(t, Pt(0, 100), l.ScenePos())

	w, _ := l.Size()
	assert.Equal(t, 35.0, w)

	got := s.DoubleClick(PointerEvent{Pos: Pt(10, 105)})
	require.Same(t, l, got)
	assert.True(t, l.Editing())
	assert.Same(t, l, s.EditingLabel())

	l.SetText("P-102")
	l.EndEdit(false)
	assert.Equal(t, "P-101", l.Text())
	assert.Nil(t, s.EditingLabel())

	s.DoubleClick(PointerEvent{Pos: Pt(10, 105)})
	l.SetText("P-102")
	// Pressing elsewhere commits the edit.
	s.Press(PointerEvent{Pos: Pt(175, 400)})
	assert.False(t, l.Editing())
	assert.Equal(t, "P-102", l.Text())

	// Adding a label again replaces the text of the existing one.
	again, err := s.AddLabel(a.ID(), "P-103")
	require.NoError(t, err)
	assert.Same(t, l, again)
	assert.Equal(t, "P-103", l.Text())
}

func TestLabelDrag(t *testing.T) {
	s, a, _ := twoNodes(t)
	l, err := s.AddLabel(a.ID(), "P-101")
	require.NoError(t, err)

	s.Press(PointerEvent{Pos: Pt(10, 105)})
	assert.True(t, l.Selected())
	s.Move(PointerEvent{Pos: Pt(20, 115)})
	s.Release(PointerEvent{Pos: Pt(20, 115)})

	assert.Equal(t, Pt(-40, 60), l.Pos())
	assert.Equal(t, Pt(50, 50), a.Pos())
}

func TestRemoveLabel(t *testing.T) {
	s, a, _ := twoNodes(t)
	l, err := s.AddLabel(a.ID(), "P-101")
	require.NoError(t, err)

	require.NoError(t, s.RemoveItem(l.ID()))
	assert.Nil(t, a.Label())
	_, ok := s.Item(l.ID())
	assert.False(t, ok)
}

func TestAddLabelMissingNode(t *testing.T) {
	s := NewScene()
	_, err := s.AddLabel(42, DefaultLabelText)
	assert.ErrorIs(t, err, ErrNotFound)
}
