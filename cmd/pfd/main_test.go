package main

import (
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
	"github.com/ha1tch/pfd-toolkit/pkg/pfdfile"
)

func TestSwapExt(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plant.json", "plant.pfd"},
		{"dir/plant.PFD", "dir/plant.json"},
		{"plant.png", ""},
		{"plant", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, swapExt(tt.in), tt.in)
	}
}

func TestNewConvertValidate(t *testing.T) {
	color.NoColor = true
	dir := t.TempDir()
	pfd := filepath.Join(dir, "plant.pfd")

	rootCmd.SetArgs([]string{"new", pfd, "--tab", "feed,return"})
	require.NoError(t, rootCmd.Execute())

	doc, err := pfdfile.Load(pfd)
	require.NoError(t, err)
	assert.Equal(t, "plant", doc.Name)
	require.Len(t, doc.Tabs, 2)
	assert.Equal(t, "return", doc.Tabs[1].Name)

	_, err = doc.Tabs[0].Scene.AddNode("pump", diagram.Pt(0, 0))
	require.NoError(t, err)
	require.NoError(t, pfdfile.Save(pfd, doc))

	rootCmd.SetArgs([]string{"convert", pfd})
	require.NoError(t, rootCmd.Execute())
	js, err := pfdfile.Load(filepath.Join(dir, "plant.json"))
	require.NoError(t, err)
	require.Len(t, js.Tabs, 1)
	assert.Len(t, js.Tabs[0].Scene.Nodes(), 1)

	rootCmd.SetArgs([]string{"validate", pfd, filepath.Join(dir, "plant.json")})
	require.NoError(t, rootCmd.Execute())

	rootCmd.SetArgs([]string{"new", pfd})
	assert.Error(t, rootCmd.Execute())
}

func TestPickTab(t *testing.T) {
	doc := pfdfile.NewDocument("x")
	doc.AddTab("a", nil)
	tab, err := pickTab(doc, 0)
	require.NoError(t, err)
	assert.Equal(t, "a", tab.Name)
	_, err = pickTab(doc, 1)
	assert.Error(t, err)
}
