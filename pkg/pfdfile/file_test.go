package pfdfile

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

// pumpLoop builds a tank feeding a pump, with a valve teed into the line.
func pumpLoop(t *testing.T) *diagram.Scene {
	t.Helper()
	s := diagram.NewScene()
	tank, err := s.AddNode("tank", diagram.Pt(50, 50))
	require.NoError(t, err)
	_, err = s.AddNode("pump", diagram.Pt(300, 50))
	require.NoError(t, err)
	valve, err := s.AddNode("valve", diagram.Pt(175, 250))
	require.NoError(t, err)
	_, err = s.AddLabel(tank.ID(), "T-100")
	require.NoError(t, err)

	g := tank.ConnectionGrip(diagram.SlotRight)
	require.True(t, g.BeginConnect())
	require.Equal(t, diagram.ConnectedGrip, g.EndConnect(diagram.Pt(250, 50)))

	g = valve.ConnectionGrip(diagram.SlotTop)
	require.True(t, g.BeginConnect())
	require.Equal(t, diagram.ConnectedLine, g.EndConnect(diagram.Pt(175, 50)))
	return s
}

func TestDocumentRoundTrip(t *testing.T) {
	doc := NewDocument("plant")
	doc.AddTab("feed", pumpLoop(t))
	doc.AddTab("empty", nil)

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, doc))

	got, err := ReadDocumentBytes(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "plant", got.Name)
	require.Len(t, got.Tabs, 2)
	assert.Equal(t, "feed", got.Tabs[0].Name)
	assert.Equal(t, "empty", got.Tabs[1].Name)
	assert.Equal(t, doc.Tabs[0].Scene.Serialize(), got.Tabs[0].Scene.Serialize())
	assert.Empty(t, got.Tabs[1].Scene.Nodes())
}

func TestArchiveLayout(t *testing.T) {
	doc := NewDocument("plant")
	doc.AddTab("feed", pumpLoop(t))

	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, doc))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"meta.toml", "tabs/000.json"}, names)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	var meta bytes.Buffer
	_, err = meta.ReadFrom(rc)
	require.NoError(t, err)
	assert.Contains(t, meta.String(), "[document]")
	assert.Contains(t, meta.String(), doc.ID.String())
	assert.Contains(t, meta.String(), "[[tabs]]")
}

func TestReadDocumentErrors(t *testing.T) {
	write := func(entries map[string]string) []byte {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		for name, body := range entries {
			w, err := zw.Create(name)
			require.NoError(t, err)
			_, err = w.Write([]byte(body))
			require.NoError(t, err)
		}
		require.NoError(t, zw.Close())
		return buf.Bytes()
	}

	_, err := ReadDocumentBytes(write(map[string]string{"tabs/000.json": "{}"}))
	assert.ErrorIs(t, err, ErrNoMeta)

	_, err = ReadDocumentBytes(write(map[string]string{
		"meta.toml": "[document]\nversion = 9\nid = \"" + NewDocument("").ID.String() + "\"\n",
	}))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = ReadDocumentBytes(write(map[string]string{
		"meta.toml": "[document]\nversion = 1\nid = \"not-a-uuid\"\n",
	}))
	assert.Error(t, err)

	_, err = ReadDocumentBytes(write(map[string]string{
		"meta.toml": "[document]\nversion = 1\nid = \"" + NewDocument("").ID.String() + "\"\n\n[[tabs]]\nname = \"feed\"\nfile = \"tabs/000.json\"\n",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = ReadDocumentBytes([]byte("not a zip"))
	assert.Error(t, err)
}

func TestBrokenTabFailsDocument(t *testing.T) {
	doc := NewDocument("plant")
	doc.AddTab("feed", pumpLoop(t))
	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, doc))

	// Rewrite the tab with a snapshot that references a missing node.
	snap := doc.Tabs[0].Scene.Serialize()
	for id, l := range snap.Lines {
		if l.End.Kind == "grip" {
			l.End.Node = 999
			snap.Lines[id] = l
		}
	}
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	for _, f := range zr.File {
		w, err := zw.Create(f.Name)
		require.NoError(t, err)
		if strings.HasPrefix(f.Name, "tabs/") {
			_, err = w.Write(data)
			require.NoError(t, err)
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		var b bytes.Buffer
		_, err = b.ReadFrom(rc)
		rc.Close()
		require.NoError(t, err)
		_, err = w.Write(b.Bytes())
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	_, err = ReadDocumentBytes(out.Bytes())
	require.Error(t, err)
	assert.True(t, diagram.IsStructureError(err))
	assert.Contains(t, err.Error(), `tab "feed"`)
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	doc := NewDocument("plant")
	doc.AddTab("feed", pumpLoop(t))

	pfd := filepath.Join(dir, "plant.pfd")
	require.NoError(t, Save(pfd, doc))
	got, err := Load(pfd)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)

	js := filepath.Join(dir, "feed.json")
	require.NoError(t, Save(js, doc))
	got, err = Load(js)
	require.NoError(t, err)
	assert.Equal(t, "feed", got.Name)
	require.Len(t, got.Tabs, 1)
	assert.Equal(t, doc.Tabs[0].Scene.Serialize(), got.Tabs[0].Scene.Serialize())

	_, err = Load(filepath.Join(dir, "plant.svg"))
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, Save(filepath.Join(dir, "plant.svg"), doc), ErrUnsupported)
	assert.Error(t, Save(filepath.Join(dir, "none.json"), NewDocument("none")))

	require.NoError(t, os.WriteFile(js, []byte("{"), 0o644))
	_, err = Load(js)
	assert.Error(t, err)
}

func TestRemoveTab(t *testing.T) {
	doc := NewDocument("plant")
	doc.AddTab("a", nil)
	doc.AddTab("b", nil)

	require.NoError(t, doc.RemoveTab(0))
	require.Len(t, doc.Tabs, 1)
	assert.Equal(t, "b", doc.Tabs[0].Name)
	assert.Error(t, doc.RemoveTab(3))
}
