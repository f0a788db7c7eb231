// Command pfdedit is a terminal editor for process-flow diagrams.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ha1tch/pfd-toolkit/pkg/diagram"
	"github.com/ha1tch/pfd-toolkit/pkg/pfdfile"
)

// Editor holds all editor state
type Editor struct {
	screen tcell.Screen
	cfg    *Config
	log    *zap.Logger

	doc      *pfdfile.Document
	tab      int
	filename string
	modified bool
	shape    string // shape placed by the n key and right click

	view viewport
	hist history

	// Pointer state
	leftDown  bool
	rightDown bool
	lastCell  [2]int // canvas cell under the pointer
	lastClick time.Time
	clickCell [2]int
	before    *diagram.Snapshot // scene at the start of a gesture

	savedMod    time.Time // mod time of our own last write
	quitArmed   bool
	message     string
	messageType MessageType
}

// MessageType for status messages
type MessageType int

const (
	MsgInfo MessageType = iota
	MsgError
	MsgSuccess
)

const doubleClickWindow = 400 * time.Millisecond

// reloadRequest is posted by the file watcher.
type reloadRequest struct{}

func main() {
	flags := flagSet()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	cfgPath, _ := flags.GetString("config")
	cfg, err := LoadConfig(cfgPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ed := NewEditor(cfg, log)
	if flags.NArg() > 0 {
		ed.filename = flags.Arg(0)
		if _, err := os.Stat(ed.filename); err == nil {
			if err := ed.loadFile(ed.filename); err != nil {
				fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", ed.filename, err)
				os.Exit(1)
			}
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.Clear()
	ed.screen = screen

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Watch && ed.filename != "" {
		if err := watchFile(ctx, ed.filename, log, func() {
			screen.PostEvent(tcell.NewEventInterrupt(reloadRequest{}))
		}); err != nil {
			ed.showMessage(err.Error(), MsgError)
		}
	}

	ed.fitView()
	ed.run()

	cancel()
	screen.Fini()
}

// NewEditor returns an editor holding a new single-tab document.
func NewEditor(cfg *Config, log *zap.Logger) *Editor {
	ed := &Editor{
		cfg:   cfg,
		log:   log,
		shape: cfg.DefaultShape,
		view:  viewport{cellW: cfg.CellWidth, cellH: cfg.CellHeight},
	}
	ed.doc = pfdfile.NewDocument("untitled")
	ed.doc.AddTab("main", diagram.NewScene(diagram.WithLogger(log)))
	return ed
}

func newLogger(cfg *Config) (*zap.Logger, error) {
	if cfg.LogFile == "" {
		return zap.NewNop(), nil
	}
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	zc.OutputPaths = []string{cfg.LogFile}
	zc.ErrorOutputPaths = []string{cfg.LogFile}
	return zc.Build()
}

func (ed *Editor) run() {
	for {
		ed.draw()
		ed.screen.Show()

		switch ev := ed.screen.PollEvent().(type) {
		case *tcell.EventResize:
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(reloadRequest); ok {
				ed.reload()
			}
		case nil:
			return
		}
	}
}

// scene returns the scene of the active tab.
func (ed *Editor) scene() *diagram.Scene {
	return ed.doc.Tabs[ed.tab].Scene
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
}

// edit records the scene for undo, then applies fn.
func (ed *Editor) edit(fn func(s *diagram.Scene)) {
	before := ed.scene().Serialize()
	fn(ed.scene())
	ed.commit(before)
}

// commit pushes before onto the undo stack if the scene has changed since.
func (ed *Editor) commit(before *diagram.Snapshot) {
	if before == nil || snapshotsEqual(before, ed.scene().Serialize()) {
		return
	}
	ed.hist.record(before)
	ed.modified = true
}

func (ed *Editor) restore(snap *diagram.Snapshot) error {
	s, err := diagram.Deserialize(snap, diagram.WithLogger(ed.log))
	if err != nil {
		return err
	}
	ed.doc.Tabs[ed.tab].Scene = s
	ed.modified = true
	return nil
}

func (ed *Editor) undo() {
	snap, ok := ed.hist.Undo(ed.scene().Serialize())
	if !ok {
		ed.showMessage("Nothing to undo", MsgInfo)
		return
	}
	if err := ed.restore(snap); err != nil {
		ed.showMessage("Undo failed: "+err.Error(), MsgError)
		return
	}
	ed.showMessage("Undo", MsgInfo)
}

func (ed *Editor) redo() {
	snap, ok := ed.hist.Redo(ed.scene().Serialize())
	if !ok {
		ed.showMessage("Nothing to redo", MsgInfo)
		return
	}
	if err := ed.restore(snap); err != nil {
		ed.showMessage("Redo failed: "+err.Error(), MsgError)
		return
	}
	ed.showMessage("Redo", MsgInfo)
}

func (ed *Editor) switchTab(i int) {
	if len(ed.doc.Tabs) == 0 {
		return
	}
	i = (i%len(ed.doc.Tabs) + len(ed.doc.Tabs)) % len(ed.doc.Tabs)
	if i == ed.tab {
		return
	}
	ed.scene().CancelGesture()
	ed.tab = i
	ed.hist.reset()
	ed.leftDown = false
	ed.fitView()
	ed.showMessage("Tab: "+ed.doc.Tabs[i].Name, MsgInfo)
}

func (ed *Editor) addTab() {
	name := fmt.Sprintf("tab%d", len(ed.doc.Tabs)+1)
	ed.doc.AddTab(name, diagram.NewScene(diagram.WithLogger(ed.log)))
	ed.modified = true
	ed.switchTab(len(ed.doc.Tabs) - 1)
}

// canvasSize returns the canvas area in cells: the full screen minus the
// tab bar, help line and status line.
func (ed *Editor) canvasSize() (int, int) {
	if ed.screen == nil {
		return 80, 21
	}
	w, h := ed.screen.Size()
	return w, max(h-3, 1)
}

func (ed *Editor) fitView() {
	w, h := ed.canvasSize()
	s := ed.scene()
	if len(s.Nodes()) == 0 && len(s.Lines()) == 0 {
		ed.view.origin = diagram.Pt(0, 0)
		return
	}
	ed.view.fit(s.Bounds(), w, h)
}

// File operations

func (ed *Editor) loadFile(path string) error {
	doc, err := pfdfile.Load(path, diagram.WithLogger(ed.log))
	if err != nil {
		return err
	}
	if len(doc.Tabs) == 0 {
		doc.AddTab("main", diagram.NewScene(diagram.WithLogger(ed.log)))
	}
	ed.doc = doc
	ed.tab = 0
	ed.hist.reset()
	ed.modified = false
	ed.log.Info("loaded", zap.String("path", path), zap.Int("tabs", len(doc.Tabs)))
	return nil
}

// reload re-reads the open file after an external change. The open
// document is kept if it has unsaved edits or the file fails to load.
func (ed *Editor) reload() {
	if ed.filename == "" {
		return
	}
	if info, err := os.Stat(ed.filename); err == nil && info.ModTime().Equal(ed.savedMod) {
		return
	}
	if ed.modified {
		ed.showMessage("File changed on disk; save to overwrite or Ctrl+R to reload", MsgError)
		return
	}
	ed.forceReload()
}

func (ed *Editor) forceReload() {
	tab := ed.tab
	if err := ed.loadFile(ed.filename); err != nil {
		ed.showMessage("Reload failed: "+err.Error(), MsgError)
		return
	}
	if tab < len(ed.doc.Tabs) {
		ed.tab = tab
	}
	ed.showMessage("Reloaded "+filepath.Base(ed.filename), MsgSuccess)
}

func (ed *Editor) save() {
	if ed.filename == "" {
		ed.filename = "untitled.pfd"
	}
	if err := pfdfile.Save(ed.filename, ed.doc); err != nil {
		ed.showMessage("Save failed: "+err.Error(), MsgError)
		return
	}
	ed.modified = false
	if info, err := os.Stat(ed.filename); err == nil {
		ed.savedMod = info.ModTime()
	}
	ed.log.Info("saved", zap.String("path", ed.filename))
	msg := "Saved " + filepath.Base(ed.filename)
	if filepath.Ext(ed.filename) == ".json" && len(ed.doc.Tabs) > 1 {
		msg += " (first tab only)"
	}
	ed.showMessage(msg, MsgSuccess)
}
