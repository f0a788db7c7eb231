// Raster rendering of diagram scenes.
// Paints nodes, grips, labels and lines onto a gg context.

package render

import (
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

// Options configures raster rendering.
type Options struct {
	Padding   float64 // pixels around the scene bounds
	Scale     float64 // pixels per scene unit
	FontSize  float64
	LineWidth float64
	ShowGrips bool // draw grips on every node, not only selected or hovered ones
}

// DefaultOptions returns sensible defaults for PNG rendering.
func DefaultOptions() Options {
	return Options{
		Padding:   20,
		Scale:     1,
		FontSize:  12,
		LineWidth: 2,
	}
}

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func labelFont(size float64) (text.Face, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	return fontSource.Face(size), nil
}

// Painter draws scene items onto a gg context. It implements
// diagram.Painter; pass it to Scene.Paint.
type Painter struct {
	ctx    *gg.Context
	opts   Options
	origin diagram.Point // scene point drawn at (Padding, Padding)
	face   text.Face
	err    error // first failed fill or stroke
}

// Err returns the first drawing error seen by the painter.
func (p *Painter) Err() error { return p.err }

func (p *Painter) check(op string, err error) {
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", op, err)
	}
}

// NewPainter returns a painter that maps origin to the padded top-left
// corner of ctx.
func NewPainter(ctx *gg.Context, origin diagram.Point, opts Options) (*Painter, error) {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultOptions().FontSize
	}
	face, err := labelFont(opts.FontSize)
	if err != nil {
		return nil, fmt.Errorf("load label font: %w", err)
	}
	ctx.SetFont(face)
	return &Painter{ctx: ctx, opts: opts, origin: origin, face: face}, nil
}

// toImage converts a scene point to pixel coordinates.
func (p *Painter) toImage(pt diagram.Point) (float64, float64) {
	return (pt.X-p.origin.X)*p.opts.Scale + p.opts.Padding,
		(pt.Y-p.origin.Y)*p.opts.Scale + p.opts.Padding
}

// PaintNode draws the node outline in its local frame, then its grips and
// label.
func (p *Painter) PaintNode(n *diagram.Node) {
	c := p.ctx
	x, y := p.toImage(n.Pos())
	w, h := n.Width(), n.Height()

	c.Push()
	c.Translate(x, y)
	c.Scale(p.opts.Scale, p.opts.Scale)
	c.Rotate(n.Rotation() * math.Pi / 180)

	outline(c, n.Icon().Outline, w, h)
	c.SetRGB(0.96, 0.97, 1)
	p.check("fillpreserve", c.FillPreserve())
	switch {
	case n.Selected():
		c.SetRGB(0.1, 0.4, 0.9)
	case n.Hovered():
		c.SetRGB(0.3, 0.5, 0.8)
	default:
		c.SetRGB(0.15, 0.15, 0.2)
	}
	c.SetLineWidth(p.opts.LineWidth / p.opts.Scale)
	p.check("stroke", c.Stroke())

	for _, g := range n.ResizeGrips() {
		if !p.opts.ShowGrips && !g.Visible() {
			continue
		}
		length, thick := g.Extent()
		pos := g.Pos()
		if g.Axis() == diagram.AxisVertical {
			c.DrawRectangle(pos.X-length/2, pos.Y-thick/2, length, thick)
		} else {
			c.DrawRectangle(pos.X-thick/2, pos.Y-length/2, thick, length)
		}
		c.SetRGBA(0.5, 0.5, 0.5, 0.35)
		p.check("fill", c.Fill())
	}
	for _, g := range n.ConnectionGrips() {
		if !p.opts.ShowGrips && !g.Visible() {
			continue
		}
		pos := g.Pos()
		c.DrawCircle(pos.X, pos.Y, diagram.ConnectionGripRadius/2)
		switch {
		case g.Highlighted():
			c.SetRGB(1, 0.55, 0)
		case g.Selected():
			c.SetRGB(0.1, 0.4, 0.9)
		case g.Connected():
			c.SetRGB(0.2, 0.6, 0.2)
		default:
			c.SetRGB(1, 1, 1)
		}
		p.check("fillpreserve", c.FillPreserve())
		c.SetRGB(0.15, 0.15, 0.2)
		c.SetLineWidth(1 / p.opts.Scale)
		p.check("stroke", c.Stroke())
	}
	c.Pop()

	if l := n.Label(); l != nil {
		p.paintLabel(l)
	}
}

// paintLabel draws label text upright at the label's scene position. gg
// draws text in device space, so rotation only moves the anchor.
func (p *Painter) paintLabel(l *diagram.Label) {
	x, y := p.toImage(l.ScenePos())
	if l.Selected() || l.Editing() {
		w, h := p.ctx.MeasureString(l.Text())
		p.ctx.DrawRectangle(x-2, y-2, w+4, h+4)
		p.ctx.SetRGBA(0.1, 0.4, 0.9, 0.15)
		p.check("fill", p.ctx.Fill())
	}
	p.ctx.SetRGB(0.1, 0.1, 0.1)
	p.ctx.DrawStringAnchored(l.Text(), x, y, 0, 1)
}

// PaintLine draws the line's orthogonal path.
func (p *Painter) PaintLine(l *diagram.Line) {
	path := l.Path()
	if len(path) < 2 {
		return
	}
	c := p.ctx
	x, y := p.toImage(path[0])
	c.MoveTo(x, y)
	for _, pt := range path[1:] {
		x, y = p.toImage(pt)
		c.LineTo(x, y)
	}
	switch {
	case l.Highlighted():
		c.SetRGB(1, 0.55, 0)
	case l.Selected():
		c.SetRGB(0.1, 0.4, 0.9)
	default:
		c.SetRGB(0.2, 0.2, 0.25)
	}
	if l.Temporary() {
		c.SetDash(6, 4)
	}
	c.SetLineWidth(p.opts.LineWidth)
	p.check("stroke", c.Stroke())
	if l.Temporary() {
		c.SetDash()
	}
}

// outline adds the node silhouette centred on the origin to the path.
func outline(c *gg.Context, o diagram.Outline, w, h float64) {
	hw, hh := w/2, h/2
	switch o {
	case diagram.OutlineEllipse:
		c.DrawEllipse(0, 0, hw, hh)
	case diagram.OutlineDiamond:
		c.MoveTo(0, -hh)
		c.LineTo(hw, 0)
		c.LineTo(0, hh)
		c.LineTo(-hw, 0)
		c.ClosePath()
	case diagram.OutlineTriangle:
		c.MoveTo(-hw, hh)
		c.LineTo(0, -hh)
		c.LineTo(hw, hh)
		c.ClosePath()
	case diagram.OutlineRoundedRect:
		r := math.Min(hw, hh) * 0.3
		c.MoveTo(-hw+r, -hh)
		c.LineTo(hw-r, -hh)
		c.QuadraticTo(hw, -hh, hw, -hh+r)
		c.LineTo(hw, hh-r)
		c.QuadraticTo(hw, hh, hw-r, hh)
		c.LineTo(-hw+r, hh)
		c.QuadraticTo(-hw, hh, -hw, hh-r)
		c.LineTo(-hw, -hh+r)
		c.QuadraticTo(-hw, -hh, -hw+r, -hh)
		c.ClosePath()
	default:
		c.DrawRectangle(-hw, -hh, w, h)
	}
}

// Size returns the pixel size of a rendering of s.
func Size(s *diagram.Scene, opts Options) (int, int) {
	b := s.Bounds()
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(b.W*scale + 2*opts.Padding))
	h := int(math.Ceil(b.H*scale + 2*opts.Padding))
	return max(w, 1), max(h, 1)
}

func paintScene(s *diagram.Scene, opts Options) (*gg.Context, error) {
	w, h := Size(s, opts)
	ctx := gg.NewContext(w, h)
	ctx.ClearWithColor(gg.White)

	b := s.Bounds()
	origin := diagram.Pt(b.X-b.W/2, b.Y-b.H/2)
	p, err := NewPainter(ctx, origin, opts)
	if err != nil {
		ctx.Close()
		return nil, err
	}
	s.Paint(p)
	if err := p.Err(); err != nil {
		ctx.Close()
		return nil, err
	}
	return ctx, nil
}

// RenderImage paints s onto a new white image sized to its bounds.
func RenderImage(s *diagram.Scene, opts Options) (image.Image, error) {
	ctx, err := paintScene(s, opts)
	if err != nil {
		return nil, err
	}
	defer ctx.Close()
	return ctx.Image(), nil
}

// RenderPNG renders s and writes it as PNG.
func RenderPNG(s *diagram.Scene, w io.Writer, opts Options) error {
	ctx, err := paintScene(s, opts)
	if err != nil {
		return err
	}
	defer ctx.Close()
	return ctx.EncodePNG(w)
}
