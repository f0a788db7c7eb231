package main

import (
	"fmt"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
)

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()

	ed.drawTabs(w)
	cw, ch := ed.canvasSize()
	p := &termPainter{
		out:  offsetSetter{ed.screen, canvasTop},
		view: ed.view,
		w:    cw,
		h:    ch,
	}
	ed.scene().Paint(p)
	ed.drawStatusBar(w, h)
}

// offsetSetter shifts every cell down by dy rows.
type offsetSetter struct {
	out cellSetter
	dy  int
}

func (o offsetSetter) SetContent(x, y int, r rune, comb []rune, style tcell.Style) {
	o.out.SetContent(x, y+o.dy, r, comb, style)
}

func (ed *Editor) drawTabs(w int) {
	x := 0
	for i, t := range ed.doc.Tabs {
		style := styleTab
		if i == ed.tab {
			style = styleTabActive
		}
		title := tabTitle(i, t.Name)
		ed.drawString(x, 0, title, style)
		x += len(title)
		if x >= w {
			return
		}
	}
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	fileInfo := "[New]"
	if ed.filename != "" {
		fileInfo = filepath.Base(ed.filename)
	}
	if ed.modified {
		fileInfo += " *"
	}
	s := ed.scene()
	fileInfo += fmt.Sprintf("  %s  nodes:%d lines:%d sel:%d", ed.shape, len(s.Nodes()), len(s.Lines()), len(s.SelectedItems()))
	ed.drawString(1, y, fileInfo, styleStatus)

	if ed.message != "" {
		style := styleStatus
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess:
			style = styleMsgOK
		}
		ed.drawString(w-len([]rune(ed.message))-2, y, ed.message, style)
	}

	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		ed.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (ed *Editor) helpString() string {
	if ed.scene().EditingLabel() != nil {
		return "Type text  Enter:Confirm  Esc:Cancel"
	}
	return "n:Node 1-7:Shape l:Label q/e:Rotate Del:Delete u/r:Undo/Redo Tab:Next tab ^T:New tab ^S:Save ^Q:Quit"
}
