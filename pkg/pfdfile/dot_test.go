package pfdfile

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

func TestGenerateDOT(t *testing.T) {
	s := pumpLoop(t)
	nodes := s.Nodes()
	lines := s.Lines()
	require.Len(t, nodes, 3)
	require.Len(t, lines, 2)
	tank, pump, valve := nodes[0], nodes[1], nodes[2]
	main := lines[0]

	dot := GenerateDOT(s, `Feed "A"`)

	assert.True(t, strings.HasPrefix(dot, "graph PFD {\n"))
	assert.Contains(t, dot, `label="Feed \"A\""`)
	assert.Contains(t, dot, fmt.Sprintf(`n%d [label="T-100", shape=box];`, tank.ID()))
	assert.Contains(t, dot, fmt.Sprintf(`n%d [label="pump %d", shape=ellipse];`, pump.ID(), pump.ID()))
	assert.Contains(t, dot, fmt.Sprintf(`n%d [label="valve %d", shape=diamond];`, valve.ID(), valve.ID()))

	// The main line is split where the valve branch joins it.
	junction := fmt.Sprintf("j%d", main.ID())
	assert.Contains(t, dot, junction+" [shape=point];")
	assert.Contains(t, dot, fmt.Sprintf("n%d -- %s;", tank.ID(), junction))
	assert.Contains(t, dot, fmt.Sprintf("%s -- n%d;", junction, pump.ID()))
	assert.Contains(t, dot, fmt.Sprintf("n%d -- %s;", valve.ID(), junction))
}

func TestGenerateDOTFreeEnd(t *testing.T) {
	s := pumpLoop(t)
	main := s.Lines()[0]
	branch := s.Lines()[1]
	require.NoError(t, s.RemoveItem(main.ID()))

	dot := GenerateDOT(s, "")
	free := fmt.Sprintf("f%de", branch.ID())
	assert.Contains(t, dot, free+" [shape=point];")
	assert.Contains(t, dot, "-- "+free+";")
	assert.NotContains(t, dot, "labelloc")
}

func TestGenerateDOTEmpty(t *testing.T) {
	assert.Equal(t, "graph PFD {\n    rankdir=LR;\n    node [fontname=\"Helvetica\", fontsize=11, shape=box];\n\n\n}\n",
		GenerateDOT(diagram.NewScene(), ""))
}
