package pfdfile

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

// Run with: go test -fuzz=FuzzParseJSON -fuzztime=30s ./pkg/pfdfile/

// FuzzParseJSON feeds arbitrary bytes to the snapshot decoder. Anything it
// accepts must serialize and load again without error.
func FuzzParseJSON(f *testing.F) {
	f.Add([]byte(`{"version":1,"next_id":0,"order":[],"nodes":{},"lines":{}}`))
	f.Add([]byte(`{}`))
	f.Add([]byte(`[]`))
	f.Add([]byte(`null`))
	f.Add([]byte(``))
	f.Add([]byte(`{"version":2}`))
	f.Add([]byte(`{"version":1,"next_id":1,"order":[1],"nodes":{"1":{"id":1,"type":"pump","width":-5,"height":10}}}`))
	f.Add([]byte(`{"version":1,"next_id":3,"order":[3],"lines":{"3":{"id":3,"start":{"kind":"line","line":3},"end":{"kind":"free"}}}}`))

	s := diagram.NewScene()
	a, _ := s.AddNode("tank", diagram.Pt(0, 0))
	s.AddNode("pump", diagram.Pt(250, 0))
	s.AddLabel(a.ID(), "T-1")
	g := a.ConnectionGrip(diagram.SlotRight)
	if g.BeginConnect() {
		g.EndConnect(diagram.Pt(200, 0))
	}
	if data, err := ToJSON(s, false); err == nil {
		f.Add(data)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := ParseJSON(data)
		if err != nil {
			return
		}
		out, err := ToJSON(s, false)
		if err != nil {
			t.Fatalf("ToJSON after successful parse: %v", err)
		}
		if _, err := ParseJSON(out); err != nil {
			t.Fatalf("reparse: %v", err)
		}
		_ = GenerateDOT(s, "fuzz")
	})
}

// FuzzReadDocument feeds arbitrary archive bytes to the .pfd reader.
func FuzzReadDocument(f *testing.F) {
	var buf bytes.Buffer
	doc := NewDocument("seed")
	doc.AddTab("main", nil)
	if err := WriteDocument(&buf, doc); err == nil {
		f.Add(buf.Bytes())
	}

	buf.Reset()
	zw := zip.NewWriter(&buf)
	if w, err := zw.Create(metaName); err == nil {
		w.Write([]byte("[document]\nversion = 1\n"))
	}
	zw.Close()
	f.Add(buf.Bytes())

	f.Add([]byte{})
	f.Add([]byte("PK\x03\x04"))

	f.Fuzz(func(t *testing.T, data []byte) {
		doc, err := ReadDocumentBytes(data)
		if err != nil {
			return
		}
		var out bytes.Buffer
		if err := WriteDocument(&out, doc); err != nil {
			t.Fatalf("WriteDocument after successful read: %v", err)
		}
	})
}
