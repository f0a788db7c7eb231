package pfdfile

import (
	"fmt"
	"strings"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

// GenerateDOT converts the connection graph of a scene to Graphviz DOT.
// Nodes keep their label text, or type and id when unlabelled. A line that
// other lines attach to is split at a junction point.
func GenerateDOT(s *diagram.Scene, title string) string {
	var sb strings.Builder

	sb.WriteString("graph PFD {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11, shape=box];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		sb.WriteString(fmt.Sprintf("    label=\"%s\";\n", escapeDOT(title)))
		sb.WriteString("\n")
	}

	for _, n := range s.Nodes() {
		label := fmt.Sprintf("%s %d", n.Type(), n.ID())
		if l := n.Label(); l != nil && l.Text() != "" {
			label = l.Text()
		}
		sb.WriteString(fmt.Sprintf("    n%d [label=\"%s\", shape=%s];\n", n.ID(), escapeDOT(label), dotShape(n.Icon().Outline)))
	}

	lines := s.Lines()
	for _, l := range lines {
		if len(l.MidLines()) > 0 {
			sb.WriteString(fmt.Sprintf("    j%d [shape=point];\n", l.ID()))
		}
	}
	sb.WriteString("\n")

	for _, l := range lines {
		from := dotTerminal(&sb, s, l, l.Start(), "s")
		to := dotTerminal(&sb, s, l, l.End(), "e")
		if len(l.MidLines()) > 0 {
			junction := fmt.Sprintf("j%d", l.ID())
			sb.WriteString(fmt.Sprintf("    %s -- %s;\n", from, junction))
			sb.WriteString(fmt.Sprintf("    %s -- %s;\n", junction, to))
			continue
		}
		sb.WriteString(fmt.Sprintf("    %s -- %s;\n", from, to))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// dotTerminal names the graph vertex a line end touches. Free ends get a
// point of their own, declared on the spot.
func dotTerminal(sb *strings.Builder, s *diagram.Scene, l *diagram.Line, ep diagram.Endpoint, suffix string) string {
	switch ep.Kind {
	case diagram.EndGrip:
		if it, ok := s.Item(ep.Grip); ok {
			if g, ok := it.(*diagram.ConnectionGrip); ok {
				return fmt.Sprintf("n%d", g.Node().ID())
			}
		}
	case diagram.EndLine:
		return fmt.Sprintf("j%d", ep.Line)
	}
	name := fmt.Sprintf("f%d%s", l.ID(), suffix)
	sb.WriteString(fmt.Sprintf("    %s [shape=point];\n", name))
	return name
}

func dotShape(o diagram.Outline) string {
	switch o {
	case diagram.OutlineEllipse:
		return "ellipse"
	case diagram.OutlineDiamond:
		return "diamond"
	case diagram.OutlineTriangle:
		return "triangle"
	case diagram.OutlineRoundedRect:
		return "box, style=rounded"
	}
	return "box"
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
