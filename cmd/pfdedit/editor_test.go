package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
	"github.com/ha1tch/pfd-toolkit/pkg/pfdfile"
)

// testEditor returns an editor on an 80x24 simulation screen. Cell (x, y)
// of the canvas shows the scene point (10x+5, 20y+10).
func testEditor(t *testing.T) *Editor {
	t.Helper()
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	ed := NewEditor(cfg, zaptest.NewLogger(t))

	sc := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, sc.Init())
	sc.SetSize(80, 24)
	t.Cleanup(sc.Fini)
	ed.screen = sc
	return ed
}

func mouse(ed *Editor, x, y int, b tcell.ButtonMask) {
	ed.handleMouse(tcell.NewEventMouse(x, y+canvasTop, b, tcell.ModNone))
}

func key(ed *Editor, k tcell.Key, r rune) bool {
	return ed.handleKey(tcell.NewEventKey(k, r, tcell.ModNone))
}

func TestEditorDragNodeAndUndo(t *testing.T) {
	ed := testEditor(t)
	ed.addNode(diagram.Pt(205, 210))
	s := ed.scene()
	require.Len(t, s.Nodes(), 1)
	assert.True(t, ed.modified)

	mouse(ed, 20, 10, tcell.Button1)
	mouse(ed, 23, 10, tcell.Button1)
	mouse(ed, 23, 10, tcell.ButtonNone)
	assert.Equal(t, diagram.Pt(235, 210), s.Nodes()[0].Pos())

	key(ed, tcell.KeyRune, 'u')
	assert.Equal(t, diagram.Pt(205, 210), ed.scene().Nodes()[0].Pos())
	key(ed, tcell.KeyRune, 'u')
	assert.Empty(t, ed.scene().Nodes())
	key(ed, tcell.KeyRune, 'r')
	key(ed, tcell.KeyRune, 'r')
	assert.Equal(t, diagram.Pt(235, 210), ed.scene().Nodes()[0].Pos())
}

func TestEditorConnectByMouse(t *testing.T) {
	ed := testEditor(t)
	ed.addNode(diagram.Pt(205, 210))
	ed.addNode(diagram.Pt(505, 210))

	// Right grip of the first node to the left grip of the second.
	mouse(ed, 25, 10, tcell.Button1)
	mouse(ed, 35, 10, tcell.Button1)
	mouse(ed, 45, 10, tcell.Button1)
	mouse(ed, 45, 10, tcell.ButtonNone)
	require.Len(t, ed.scene().Lines(), 1)
	assert.Equal(t, diagram.EndGrip, ed.scene().Lines()[0].End().Kind)

	ed.undo()
	assert.Empty(t, ed.scene().Lines())
}

func TestEditorRotateAndDelete(t *testing.T) {
	ed := testEditor(t)
	ed.addNode(diagram.Pt(205, 210))

	key(ed, tcell.KeyRune, 'e')
	assert.Equal(t, 1.0, ed.scene().Nodes()[0].Rotation())
	key(ed, tcell.KeyRune, 'q')
	key(ed, tcell.KeyRune, 'q')
	assert.Equal(t, 359.0, ed.scene().Nodes()[0].Rotation())

	key(ed, tcell.KeyDelete, 0)
	assert.Empty(t, ed.scene().Nodes())
	assert.Contains(t, ed.message, "Deleted 1")
}

func TestEditorAddLabel(t *testing.T) {
	ed := testEditor(t)
	key(ed, tcell.KeyRune, 'l')
	assert.Equal(t, MsgError, ed.messageType)

	ed.addNode(diagram.Pt(205, 210))
	key(ed, tcell.KeyRune, 'l')
	l := ed.scene().EditingLabel()
	require.NotNil(t, l)

	for range diagram.DefaultLabelText {
		key(ed, tcell.KeyBackspace2, 0)
	}
	key(ed, tcell.KeyRune, 'P')
	key(ed, tcell.KeyRune, '1')
	key(ed, tcell.KeyEnter, 0)
	assert.Nil(t, ed.scene().EditingLabel())
	assert.Equal(t, "P1", ed.scene().Nodes()[0].Label().Text())

	ed.undo()
	assert.Nil(t, ed.scene().Nodes()[0].Label())
}

func TestEditorCancelledLabelCanBeUndone(t *testing.T) {
	ed := testEditor(t)
	ed.addNode(diagram.Pt(205, 210))
	key(ed, tcell.KeyRune, 'l')
	require.NotNil(t, ed.scene().EditingLabel())
	key(ed, tcell.KeyRune, 'x')
	key(ed, tcell.KeyEscape, 0)

	l := ed.scene().Nodes()[0].Label()
	require.NotNil(t, l)
	assert.Equal(t, diagram.DefaultLabelText, l.Text())

	ed.undo()
	assert.Nil(t, ed.scene().Nodes()[0].Label())
}

func TestEditorDrawNodeAwayFromOrigin(t *testing.T) {
	ed := testEditor(t)
	ed.addNode(diagram.Pt(405, 410))
	ed.scene().ClearSelection()
	ed.draw()

	sc := ed.screen.(tcell.SimulationScreen)
	cell := func(x, y int) rune {
		r, _, _, _ := sc.GetContent(x, y+canvasTop)
		return r
	}
	// The box spans x 355..455 and y 360..460, which is cells 35..45 and
	// rows 18..22; the status lines cover the bottom rows.
	assert.Equal(t, '█', cell(36, 18))
	assert.Equal(t, '█', cell(35, 19))
	assert.Equal(t, ' ', cell(38, 19))

	// Rotated by 45 degrees the top corner reaches y=339, above the
	// unrotated box.
	ed.scene().Nodes()[0].SetRotation(45)
	ed.draw()
	assert.Equal(t, '█', cell(40, 17))
	assert.Equal(t, ' ', cell(40, 16))
}

func TestEditorShapeKeysAndRightClick(t *testing.T) {
	ed := testEditor(t)
	shapes := diagram.DefaultIcons().Shapes()
	key(ed, tcell.KeyRune, '2')
	assert.Equal(t, shapes[1], ed.shape)

	mouse(ed, 10, 5, tcell.Button2)
	mouse(ed, 11, 5, tcell.Button2)
	mouse(ed, 11, 5, tcell.ButtonNone)
	require.Len(t, ed.scene().Nodes(), 1)
	assert.Equal(t, shapes[1], ed.scene().Nodes()[0].Type())
	assert.Equal(t, diagram.Pt(105, 110), ed.scene().Nodes()[0].Pos())
}

func TestEditorQuitNeedsConfirmation(t *testing.T) {
	ed := testEditor(t)
	assert.True(t, key(ed, tcell.KeyCtrlQ, 0))

	ed.addNode(diagram.Pt(0, 0))
	assert.False(t, key(ed, tcell.KeyCtrlQ, 0))
	assert.True(t, key(ed, tcell.KeyCtrlQ, 0))
}

func TestEditorTabs(t *testing.T) {
	ed := testEditor(t)
	ed.addNode(diagram.Pt(0, 0))
	key(ed, tcell.KeyCtrlT, 0)
	require.Len(t, ed.doc.Tabs, 2)
	assert.Equal(t, 1, ed.tab)
	assert.Empty(t, ed.scene().Nodes())

	key(ed, tcell.KeyTab, 0)
	assert.Equal(t, 0, ed.tab)
	assert.Len(t, ed.scene().Nodes(), 1)

	// The second title starts after " 1:main ".
	ed.handleMouse(tcell.NewEventMouse(len(tabTitle(0, "main"))+1, 0, tcell.Button1, tcell.ModNone))
	assert.Equal(t, 1, ed.tab)
}

func TestEditorSaveAndReload(t *testing.T) {
	ed := testEditor(t)
	ed.filename = filepath.Join(t.TempDir(), "plant.pfd")
	ed.addNode(diagram.Pt(205, 210))
	ed.save()
	assert.False(t, ed.modified)
	assert.Equal(t, MsgSuccess, ed.messageType)

	doc, err := pfdfile.Load(ed.filename)
	require.NoError(t, err)
	_, err = doc.Tabs[0].Scene.AddNode("pump", diagram.Pt(500, 0))
	require.NoError(t, err)
	require.NoError(t, pfdfile.Save(ed.filename, doc))

	ed.forceReload()
	assert.Len(t, ed.scene().Nodes(), 2)

	// Unsaved edits are never replaced by a reload.
	ed.addNode(diagram.Pt(800, 0))
	require.NoError(t, pfdfile.Save(ed.filename, pfdfile.NewDocument("other")))
	ed.reload()
	assert.Len(t, ed.scene().Nodes(), 3)
}

func TestEditorDraw(t *testing.T) {
	ed := testEditor(t)
	ed.addNode(diagram.Pt(205, 210))
	ed.draw()

	sc := ed.screen.(tcell.SimulationScreen)
	row := func(y int) string {
		var sb strings.Builder
		for x := 0; x < 80; x++ {
			r, _, _, _ := sc.GetContent(x, y)
			sb.WriteRune(r)
		}
		return sb.String()
	}
	assert.Contains(t, row(0), "1:main")
	// Top edge of the node at y=160 falls in canvas row 8.
	assert.Contains(t, row(8+canvasTop), "█")
	assert.Contains(t, row(10+canvasTop), "tank")
	assert.Contains(t, row(23), "nodes:1")
}
