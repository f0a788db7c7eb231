package diagram

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// labelFace measures label text. Hosts may draw with any font; hit-testing
// uses this fixed metric so it does not depend on the renderer.
var labelFace font.Face = basicfont.Face7x13

// DefaultLabelText is the text of a freshly added label.
const DefaultLabelText = "abc"

// Label is an editable text attached to exactly one node. Its position is
// the top-left corner of the text box relative to the node's centre.
type Label struct {
	id       ItemID
	node     *Node
	text     string
	pos      Point
	selected bool
	editing  bool
	before   string // text when editing began
}

func (l *Label) ID() ItemID  { return l.id }
func (l *Label) Kind() Kind  { return KindLabel }
func (l *Label) Node() *Node { return l.node }
func (l *Label) Text() string {
	return l.text
}

// Pos returns the label's top-left corner relative to the node's centre.
func (l *Label) Pos() Point { return l.pos }

// ScenePos returns the label's top-left corner in scene coordinates.
func (l *Label) ScenePos() Point { return l.node.MapToScene(l.pos) }

func (l *Label) Selected() bool { return l.selected }
func (l *Label) Editing() bool  { return l.editing }

// SetSelected changes the selection state.
func (l *Label) SetSelected(on bool) { l.selected = on }

// Size returns the width and height of the label text box.
func (l *Label) Size() (w, h float64) {
	text := l.text
	if text == "" {
		text = " "
	}
	adv := font.MeasureString(labelFace, text)
	return float64(adv.Ceil()), float64(labelFace.Metrics().Height.Ceil())
}

// Contains reports whether p lies inside the text box.
func (l *Label) Contains(p Point) bool {
	w, h := l.Size()
	local := l.node.MapFromScene(p).Sub(l.pos)
	return local.X >= 0 && local.X <= w && local.Y >= 0 && local.Y <= h
}

// SetText replaces the label text.
func (l *Label) SetText(text string) { l.text = text }

// MoveTo places the label at pos relative to the node's centre.
func (l *Label) MoveTo(pos Point) { l.pos = pos }

// MoveBy translates the label by d in the node's local coordinates.
func (l *Label) MoveBy(d Point) { l.pos = l.pos.Add(d) }

// BeginEdit switches the label into in-place editing.
func (l *Label) BeginEdit() {
	if l.editing {
		return
	}
	l.editing = true
	l.before = l.text
}

// EndEdit leaves editing mode. With commit false the text reverts.
func (l *Label) EndEdit(commit bool) {
	if !l.editing {
		return
	}
	if !commit {
		l.text = l.before
	}
	l.editing = false
	l.before = ""
}
