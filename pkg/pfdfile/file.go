package pfdfile

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
)

// FormatVersion is the .pfd archive layout written by WriteDocument.
const FormatVersion = 1

const metaName = "meta.toml"

var (
	// ErrNoMeta is returned for an archive without meta.toml.
	ErrNoMeta = errors.New("meta.toml not found in archive")
	// ErrUnsupported is returned for an unknown file extension or format version.
	ErrUnsupported = errors.New("unsupported document")
)

// Meta represents the meta.toml content.
type Meta struct {
	Document DocumentMeta `toml:"document"`
	Tabs     []TabMeta    `toml:"tabs"`
}

// DocumentMeta contains document metadata.
type DocumentMeta struct {
	Version int    `toml:"version"`
	ID      string `toml:"id"`
	Name    string `toml:"name"`
}

// TabMeta names one diagram tab and the archive entry holding its snapshot.
type TabMeta struct {
	Name string `toml:"name"`
	File string `toml:"file"`
}

// Tab is one named diagram of a document.
type Tab struct {
	Name  string
	Scene *diagram.Scene
}

// Document is an ordered set of diagram tabs with a stable identity.
type Document struct {
	ID   uuid.UUID
	Name string
	Tabs []*Tab
}

// NewDocument creates an empty document with a fresh id.
func NewDocument(name string) *Document {
	return &Document{ID: uuid.New(), Name: name}
}

// AddTab appends a tab. A nil scene gets an empty one.
func (d *Document) AddTab(name string, s *diagram.Scene) *Tab {
	if s == nil {
		s = diagram.NewScene()
	}
	t := &Tab{Name: name, Scene: s}
	d.Tabs = append(d.Tabs, t)
	return t
}

// RemoveTab deletes the tab at i.
func (d *Document) RemoveTab(i int) error {
	if i < 0 || i >= len(d.Tabs) {
		return fmt.Errorf("tab %d out of range (%d tabs)", i, len(d.Tabs))
	}
	d.Tabs = append(d.Tabs[:i], d.Tabs[i+1:]...)
	return nil
}

func tabEntry(i int) string {
	return fmt.Sprintf("tabs/%03d.json", i)
}

// WriteDocumentFile writes a document to a .pfd file.
func WriteDocumentFile(path string, d *Document) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteDocument(file, d); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteDocument writes a document to a writer in .pfd format.
func WriteDocument(w io.Writer, d *Document) error {
	zw := zip.NewWriter(w)

	meta := Meta{
		Document: DocumentMeta{Version: FormatVersion, ID: d.ID.String(), Name: d.Name},
	}
	for i, t := range d.Tabs {
		meta.Tabs = append(meta.Tabs, TabMeta{Name: t.Name, File: tabEntry(i)})
	}

	mw, err := zw.Create(metaName)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(mw).Encode(meta); err != nil {
		return fmt.Errorf("encode %s: %w", metaName, err)
	}

	for i, t := range d.Tabs {
		data, err := ToJSON(t.Scene, true)
		if err != nil {
			return fmt.Errorf("tab %q: %w", t.Name, err)
		}
		tw, err := zw.Create(tabEntry(i))
		if err != nil {
			return err
		}
		if _, err := tw.Write(data); err != nil {
			return err
		}
	}
	return zw.Close()
}

// ReadDocumentFile reads a document from a .pfd file.
func ReadDocumentFile(path string, opts ...diagram.Option) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	return ReadDocument(file, info.Size(), opts...)
}

// ReadDocumentBytes reads a document from bytes in .pfd format.
func ReadDocumentBytes(data []byte, opts ...diagram.Option) (*Document, error) {
	return ReadDocument(bytes.NewReader(data), int64(len(data)), opts...)
}

// ReadDocument reads a document from a reader containing .pfd format.
// Every tab must load; a single broken snapshot fails the whole document.
func ReadDocument(r io.ReaderAt, size int64, opts ...diagram.Option) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries[f.Name] = data
	}

	raw, ok := entries[metaName]
	if !ok {
		return nil, ErrNoMeta
	}
	var meta Meta
	if err := toml.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", metaName, err)
	}
	if meta.Document.Version != FormatVersion {
		return nil, fmt.Errorf("%w: format version %d", ErrUnsupported, meta.Document.Version)
	}
	id, err := uuid.Parse(meta.Document.ID)
	if err != nil {
		return nil, fmt.Errorf("document id: %w", err)
	}

	d := &Document{ID: id, Name: meta.Document.Name}
	for _, tm := range meta.Tabs {
		data, ok := entries[tm.File]
		if !ok {
			return nil, fmt.Errorf("tab %q: %s not found in archive", tm.Name, tm.File)
		}
		s, err := ParseJSON(data, opts...)
		if err != nil {
			return nil, fmt.Errorf("tab %q: %w", tm.Name, err)
		}
		d.AddTab(tm.Name, s)
	}
	return d, nil
}

// Load reads a .pfd document or a bare .json snapshot. A snapshot becomes a
// single-tab document named after the file.
func Load(path string, opts ...diagram.Option) (*Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pfd":
		return ReadDocumentFile(path, opts...)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		s, err := ParseJSON(data, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		d := NewDocument(name)
		d.AddTab(name, s)
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

// Save writes a document by extension. Saving to .json keeps only the
// first tab.
func Save(path string, d *Document) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pfd":
		return WriteDocumentFile(path, d)
	case ".json":
		if len(d.Tabs) == 0 {
			return fmt.Errorf("%s: document has no tabs", path)
		}
		data, err := ToJSON(d.Tabs[0].Scene, true)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0o644)
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, path)
}
