package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

// canvasTop is the first screen row of the canvas; row 0 is the tab bar.
const canvasTop = 1

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	if l := ed.scene().EditingLabel(); l != nil {
		ed.handleLabelKey(l, ev)
		return false
	}

	if ev.Key() != tcell.KeyCtrlQ && ev.Key() != tcell.KeyCtrlC {
		ed.quitArmed = false
	}

	switch ev.Key() {
	case tcell.KeyCtrlQ, tcell.KeyCtrlC:
		if ed.modified && !ed.quitArmed {
			ed.quitArmed = true
			ed.showMessage("Unsaved changes; press again to quit", MsgError)
			return false
		}
		return true
	case tcell.KeyCtrlS:
		ed.save()
	case tcell.KeyCtrlR:
		ed.forceReload()
	case tcell.KeyCtrlZ:
		ed.undo()
	case tcell.KeyCtrlY:
		ed.redo()
	case tcell.KeyCtrlA:
		ed.scene().SelectAll()
	case tcell.KeyCtrlT:
		ed.addTab()
	case tcell.KeyTab:
		ed.switchTab(ed.tab + 1)
	case tcell.KeyBacktab:
		ed.switchTab(ed.tab - 1)
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.deleteSelected()
	case tcell.KeyEscape:
		if ed.scene().Capturing() {
			ed.scene().CancelGesture()
			ed.leftDown = false
			ed.before = nil
		} else {
			ed.scene().ClearSelection()
		}
	case tcell.KeyUp:
		ed.view.pan(0, -1)
	case tcell.KeyDown:
		ed.view.pan(0, 1)
	case tcell.KeyLeft:
		ed.view.pan(-1, 0)
	case tcell.KeyRight:
		ed.view.pan(1, 0)
	case tcell.KeyRune:
		ed.handleRune(ev.Rune())
	}
	return false
}

func (ed *Editor) handleRune(r rune) {
	switch r {
	case 'q', 'Q':
		ed.rotate(-ed.cfg.RotateStep)
	case 'e', 'E':
		ed.rotate(ed.cfg.RotateStep)
	case 'u':
		ed.undo()
	case 'r':
		ed.redo()
	case 'n':
		ed.addNode(ed.view.toScene(ed.lastCell[0], ed.lastCell[1]))
	case 'l':
		ed.addLabel()
	case 'f':
		ed.fitView()
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		shapes := diagram.DefaultIcons().Shapes()
		if i := int(r - '1'); i < len(shapes) {
			ed.shape = shapes[i]
			ed.showMessage("Shape: "+ed.shape, MsgInfo)
		}
	}
}

func (ed *Editor) handleLabelKey(l *diagram.Label, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		l.EndEdit(true)
		ed.commit(ed.before)
		ed.before = nil
	case tcell.KeyEscape:
		l.EndEdit(false)
		// A label added by addLabel stays with its default text.
		ed.commit(ed.before)
		ed.before = nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if r := []rune(l.Text()); len(r) > 0 {
			l.SetText(string(r[:len(r)-1]))
		}
	case tcell.KeyRune:
		l.SetText(l.Text() + string(ev.Rune()))
	}
}

func (ed *Editor) rotate(deg float64) {
	if len(ed.scene().SelectedItems()) == 0 {
		return
	}
	ed.edit(func(s *diagram.Scene) { s.RotateSelected(deg) })
}

func (ed *Editor) deleteSelected() {
	n := 0
	ed.edit(func(s *diagram.Scene) { n = s.DeleteSelected() })
	if n > 0 {
		ed.showMessage(fmt.Sprintf("Deleted %d item(s)", n), MsgSuccess)
	}
}

func (ed *Editor) addNode(p diagram.Point) {
	var err error
	ed.edit(func(s *diagram.Scene) {
		var n *diagram.Node
		if n, err = s.AddNode(ed.shape, p); err == nil {
			s.ClearSelection()
			s.Select(n.ID(), true)
		}
	})
	if err != nil {
		ed.showMessage(err.Error(), MsgError)
	}
}

// addLabel attaches a label to the single selected node and starts
// editing it.
func (ed *Editor) addLabel() {
	var node *diagram.Node
	for _, it := range ed.scene().SelectedItems() {
		if n, ok := it.(*diagram.Node); ok {
			if node != nil {
				node = nil
				break
			}
			node = n
		}
	}
	if node == nil {
		ed.showMessage("Select one node to label", MsgError)
		return
	}
	if node.Label() != nil {
		ed.showMessage("Node already has a label", MsgError)
		return
	}
	ed.before = ed.scene().Serialize()
	l, err := ed.scene().AddLabel(node.ID(), diagram.DefaultLabelText)
	if err != nil {
		ed.before = nil
		ed.showMessage(err.Error(), MsgError)
		return
	}
	l.BeginEdit()
}

func pointerMods(m tcell.ModMask) diagram.Modifiers {
	var out diagram.Modifiers
	if m&tcell.ModShift != 0 {
		out |= diagram.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= diagram.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= diagram.ModAlt
	}
	return out
}

// handleMouse turns tcell's button-state reports into press, move and
// release events for the scene.
func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	cx, cy := x, y-canvasTop
	p := ed.view.toScene(cx, cy)
	pe := diagram.PointerEvent{Pos: p, Button: diagram.ButtonLeft, Mods: pointerMods(ev.Modifiers())}
	buttons := ev.Buttons()
	left := buttons&tcell.Button1 != 0
	s := ed.scene()

	switch {
	case buttons&tcell.WheelUp != 0:
		ed.view.pan(0, -2)
		return
	case buttons&tcell.WheelDown != 0:
		ed.view.pan(0, 2)
		return
	}

	if cy < 0 && !ed.leftDown {
		if left {
			ed.clickTab(x)
		}
		return
	}
	ed.lastCell = [2]int{cx, cy}

	switch {
	case left && !ed.leftDown:
		ed.leftDown = true
		now := time.Now()
		double := now.Sub(ed.lastClick) < doubleClickWindow && ed.clickCell == [2]int{cx, cy}
		ed.lastClick, ed.clickCell = now, [2]int{cx, cy}
		if ed.before == nil || s.EditingLabel() == nil {
			ed.before = s.Serialize()
		}
		if double {
			if l := s.DoubleClick(pe); l != nil {
				ed.leftDown = false
				return
			}
		}
		s.Press(pe)
	case left:
		s.Move(pe)
	case ed.leftDown:
		ed.leftDown = false
		s.Release(pe)
		if s.EditingLabel() == nil {
			ed.commit(ed.before)
			ed.before = nil
		}
	case buttons&tcell.Button2 != 0:
		if !ed.rightDown {
			ed.rightDown = true
			ed.addNode(p)
		}
	default:
		ed.rightDown = false
		s.Move(pe)
	}
}

// clickTab switches to the tab whose title covers column x.
func (ed *Editor) clickTab(x int) {
	col := 0
	for i, t := range ed.doc.Tabs {
		w := len(tabTitle(i, t.Name))
		if x >= col && x < col+w {
			ed.switchTab(i)
			return
		}
		col += w
	}
}

func tabTitle(i int, name string) string {
	return fmt.Sprintf(" %d:%s ", i+1, name)
}
