package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

// Colors
var (
	styleDefault   = tcell.StyleDefault
	styleNode      = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleNodeSel   = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleNodeHover = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleNodeType  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGrip      = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleGripOn    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleGripHot   = tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	styleResize    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleLine      = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleLineSel   = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleLineHot   = tcell.StyleDefault.Foreground(tcell.ColorOrange)
	styleLineTemp  = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)
	styleLabel     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleLabelSel  = tcell.StyleDefault.Reverse(true)
	styleStatus    = tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorWhite)
	styleHelp      = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleMsgError  = tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorRed).Bold(true)
	styleMsgOK     = tcell.StyleDefault.Background(tcell.ColorDarkBlue).Foreground(tcell.ColorGreen)
	styleTab       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleTabActive = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true).Underline(true)
)

// cellSetter is the part of tcell.Screen the painter draws through.
type cellSetter interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
}

// termPainter draws scene items as terminal cells. It implements
// diagram.Painter.
type termPainter struct {
	out  cellSetter
	view viewport
	w, h int // canvas size in cells
}

func (p *termPainter) set(x, y int, r rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return
	}
	p.out.SetContent(x, y, r, nil, style)
}

func (p *termPainter) text(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		p.set(x, y, r, style)
		x++
	}
}

// PaintNode fills the cells inside the node's outline, draws its border,
// type name, visible grips and label.
func (p *termPainter) PaintNode(n *diagram.Node) {
	style := styleNode
	switch {
	case n.Selected():
		style = styleNodeSel
	case n.Hovered():
		style = styleNodeHover
	}

	x0, y0, x1, y1 := p.cellBox(n)
	inside := func(x, y int) bool {
		return n.Contains(p.view.toScene(x, y))
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !inside(x, y) {
				continue
			}
			if inside(x-1, y) && inside(x+1, y) && inside(x, y-1) && inside(x, y+1) {
				p.set(x, y, ' ', styleDefault)
				continue
			}
			p.set(x, y, '█', style)
		}
	}

	cx, cy := p.view.toCell(n.Pos())
	name := n.Type()
	if width := x1 - x0 - 1; len(name) > width && width > 0 {
		name = name[:width]
	}
	p.text(cx-len(name)/2, cy, name, styleNodeType)

	for _, g := range n.ResizeGrips() {
		if !g.Visible() {
			continue
		}
		x, y := p.view.toCell(g.ScenePos())
		p.set(x, y, '■', styleResize)
	}
	for _, g := range n.ConnectionGrips() {
		if !g.Visible() {
			continue
		}
		x, y := p.view.toCell(g.ScenePos())
		switch {
		case g.Highlighted():
			p.set(x, y, '◉', styleGripHot)
		case g.Connected():
			p.set(x, y, '●', styleGripOn)
		default:
			p.set(x, y, '○', styleGrip)
		}
	}

	if l := n.Label(); l != nil {
		p.paintLabel(l)
	}
}

// cellBox returns the cell range covering the node's scene corners,
// rotation included.
func (p *termPainter) cellBox(n *diagram.Node) (x0, y0, x1, y1 int) {
	hw, hh := n.Width()/2, n.Height()/2
	corners := [4]diagram.Point{
		n.MapToScene(diagram.Pt(-hw, -hh)),
		n.MapToScene(diagram.Pt(hw, -hh)),
		n.MapToScene(diagram.Pt(hw, hh)),
		n.MapToScene(diagram.Pt(-hw, hh)),
	}
	x0, y0 = p.view.toCell(corners[0])
	x1, y1 = x0, y0
	for _, c := range corners[1:] {
		x, y := p.view.toCell(c)
		x0, x1 = min(x0, x), max(x1, x)
		y0, y1 = min(y0, y), max(y1, y)
	}
	return x0, y0, x1, y1
}

func (p *termPainter) paintLabel(l *diagram.Label) {
	x, y := p.view.toCell(l.ScenePos())
	text := l.Text()
	style := styleLabel
	if l.Selected() || l.Editing() {
		style = styleLabelSel
	}
	if l.Editing() {
		text += "_"
	}
	p.text(x, y, text, style)
}

// PaintLine draws each orthogonal segment of the line's path. Elbows get a
// corner mark.
func (p *termPainter) PaintLine(l *diagram.Line) {
	path := l.Path()
	if len(path) < 2 {
		return
	}
	style := styleLine
	switch {
	case l.Temporary():
		style = styleLineTemp
	case l.Highlighted():
		style = styleLineHot
	case l.Selected():
		style = styleLineSel
	}

	for i := 1; i < len(path); i++ {
		ax, ay := p.view.toCell(path[i-1])
		bx, by := p.view.toCell(path[i])
		switch {
		case ay == by:
			for x := min(ax, bx); x <= max(ax, bx); x++ {
				p.set(x, ay, '─', style)
			}
		case ax == bx:
			for y := min(ay, by); y <= max(ay, by); y++ {
				p.set(ax, y, '│', style)
			}
		default:
			// Off-axis after cell rounding; step horizontally then vertically.
			for x := min(ax, bx); x <= max(ax, bx); x++ {
				p.set(x, ay, '─', style)
			}
			for y := min(ay, by); y <= max(ay, by); y++ {
				p.set(bx, y, '│', style)
			}
		}
	}
	for _, pt := range path[1 : len(path)-1] {
		x, y := p.view.toCell(pt)
		p.set(x, y, '┼', style)
	}
}
