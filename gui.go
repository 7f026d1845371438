//go:build gui

package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/metcalfc/zoom/internal/config"
	"github.com/metcalfc/zoom/internal/doc"
	"github.com/metcalfc/zoom/internal/layout"
	"github.com/metcalfc/zoom/internal/lookup"
	"github.com/metcalfc/zoom/internal/resolve"
	"github.com/metcalfc/zoom/internal/zoom"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	markerColor  = color.NRGBA{R: 0xFF, G: 0xAA, B: 0x00, A: 0xFF}
	blockColor   = color.NRGBA{R: 0x8B, G: 0xE9, B: 0xFD, A: 0xFF}
	blockBg      = color.NRGBA{R: 0x20, G: 0x28, B: 0x30, A: 0xFF}
	dismissColor = color.NRGBA{R: 0xFF, G: 0x55, B: 0x55, A: 0xFF}
	selectBg     = color.NRGBA{R: 0x50, G: 0xFA, B: 0x7B, A: 0x60}
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

// docView renders one controller's document in a monospace grid and feeds
// pointer and keyboard input back to it.
type docView struct {
	widget.BaseWidget

	ctrl   *zoom.Controller
	client zoom.Lookuper
	log    *slog.Logger

	doc     *doc.Document
	sel     *resolve.Selection
	dragAt  *resolve.Point
	scroll  int
	focused bool
	frame   int
	ticking bool

	onStatus func(string)
}

var (
	_ fyne.Scrollable     = (*docView)(nil)
	_ fyne.Tappable       = (*docView)(nil)
	_ fyne.DoubleTappable = (*docView)(nil)
	_ fyne.Draggable      = (*docView)(nil)
	_ fyne.Focusable      = (*docView)(nil)
	_ fyne.Shortcutable   = (*docView)(nil)
)

func newDocView(ctrl *zoom.Controller, client zoom.Lookuper, log *slog.Logger) *docView {
	v := &docView{ctrl: ctrl, client: client, log: log, doc: ctrl.Document()}
	v.ExtendBaseWidget(v)
	return v
}

func cellSize() fyne.Size {
	return fyne.MeasureText("M", theme.TextSize(), fyne.TextStyle{Monospace: true})
}

// point maps a widget position to layout space.
func (v *docView) point(pos fyne.Position) resolve.Point {
	cs := cellSize()
	return resolve.Point{X: int(pos.X / cs.Width), Y: int(pos.Y/cs.Height) + v.scroll}
}

func (v *docView) rows() int {
	if r := int(v.Size().Height / cellSize().Height); r > 0 {
		return r
	}
	return 1
}

func (v *docView) Resize(size fyne.Size) {
	v.BaseWidget.Resize(size)
	if cols := int(size.Width / cellSize().Width); cols > 0 {
		v.ctrl.Resize(cols)
	}
	v.Refresh()
}

// sync resets view state when the controller swapped its document.
func (v *docView) sync() {
	if d := v.ctrl.Document(); d != v.doc {
		v.doc = d
		v.sel = nil
		v.scroll = 0
	}
	limit := v.ctrl.Layout().Height() - v.rows()
	if v.scroll > limit {
		v.scroll = limit
	}
	if v.scroll < 0 {
		v.scroll = 0
	}
	v.Refresh()
}

func (v *docView) status(s string) {
	if v.onStatus != nil {
		v.onStatus(s)
	}
}

// Scrolled turns wheel motion into zoom triggers. Fyne reports scrolling
// up as a positive DY.
func (v *docView) Scrolled(ev *fyne.ScrollEvent) {
	delta := 0
	switch {
	case ev.Scrolled.DY > 0:
		delta = -1
	case ev.Scrolled.DY < 0:
		delta = 1
	}
	job := v.ctrl.Wheel(v.point(ev.Position), delta, v.sel)
	if job != nil {
		v.sel = nil
	}
	v.dispatch(job)
	v.sync()
}

func (v *docView) Tapped(ev *fyne.PointEvent) {
	v.sel = nil
	v.ctrl.Click(v.point(ev.Position))
	v.sync()
}

func (v *docView) DoubleTapped(ev *fyne.PointEvent) {
	v.dispatch(v.ctrl.DoubleClick(v.point(ev.Position), nil))
	v.sync()
}

func (v *docView) Dragged(ev *fyne.DragEvent) {
	p := v.point(ev.Position)
	if v.dragAt == nil {
		start := v.point(ev.Position.Subtract(ev.Dragged))
		v.dragAt = &start
	}
	l := v.ctrl.Layout()
	an, ao, ok1 := l.Locate(v.dragAt.X, v.dragAt.Y)
	fn, fo, ok2 := l.Locate(p.X, p.Y)
	if ok1 && ok2 && (an != fn || ao != fo) {
		v.sel = &resolve.Selection{
			Anchor: resolve.Pos{Node: an, Offset: ao},
			Focus:  resolve.Pos{Node: fn, Offset: fo},
		}
	}
	v.Refresh()
}

func (v *docView) DragEnd() {
	v.dragAt = nil
}

func (v *docView) FocusGained() {
	v.focused = true
	v.Refresh()
}

func (v *docView) FocusLost() {
	v.focused = false
	v.Refresh()
}

func (v *docView) TypedRune(r rune) {
	if v.ctrl.Mode() == zoom.Navigate {
		if r == 'b' {
			v.ctrl.ZoomOut()
			v.sync()
		}
		return
	}
	v.ctrl.Type(string(r))
	v.sel = nil
	v.sync()
}

func (v *docView) TypedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyUp:
		v.scroll--
	case fyne.KeyDown:
		v.scroll++
	case fyne.KeyPageUp:
		v.scroll -= v.rows()
	case fyne.KeyPageDown:
		v.scroll += v.rows()
	case fyne.KeyEscape:
		v.sel = nil
	case fyne.KeyBackspace:
		if v.ctrl.Mode() == zoom.Navigate {
			v.ctrl.ZoomOut()
		} else {
			v.ctrl.Backspace()
		}
	case fyne.KeyReturn, fyne.KeyEnter:
		v.ctrl.Type("\n")
	}
	v.sync()
}

// TypedShortcut handles paste. The clipboard is read as plain text.
func (v *docView) TypedShortcut(s fyne.Shortcut) {
	if _, ok := s.(*fyne.ShortcutPaste); !ok {
		return
	}
	v.ctrl.Paste(fyne.CurrentApp().Clipboard().Content())
	v.sync()
}

// dispatch runs job in a goroutine and hands the result back on the main
// goroutine.
func (v *docView) dispatch(job *zoom.Job) {
	if job == nil {
		return
	}
	v.status(fmt.Sprintf("looking up %q", job.Word))
	v.log.Debug("dispatch lookup", "mode", job.Mode.String(), "word", job.Word, "job", job.ID)
	go func() {
		body, err := job.Run(context.Background(), v.client)
		fyne.Do(func() {
			v.ctrl.Complete(job, body, err)
			if err != nil {
				v.status(fmt.Sprintf("lookup of %q failed", job.Word))
			} else if v.ctrl.Pending() == 0 {
				v.status("")
			}
			v.sync()
		})
	}()
	v.startSpinner()
}

func (v *docView) startSpinner() {
	if v.ticking {
		return
	}
	v.ticking = true
	go func() {
		t := time.NewTicker(100 * time.Millisecond)
		defer t.Stop()
		for range t.C {
			done := false
			fyne.DoAndWait(func() {
				if v.ctrl.Pending() == 0 {
					v.ticking = false
					done = true
				}
				v.frame = (v.frame + 1) % len(spinnerFrames)
				v.Refresh()
			})
			if done {
				return
			}
		}
	}()
}

func (v *docView) CreateRenderer() fyne.WidgetRenderer {
	return &docRenderer{v: v}
}

type docRenderer struct {
	v       *docView
	objects []fyne.CanvasObject
}

func (r *docRenderer) Layout(fyne.Size) {}

func (r *docRenderer) MinSize() fyne.Size {
	cs := cellSize()
	return fyne.NewSize(cs.Width*20, cs.Height*5)
}

func (r *docRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *docRenderer) Destroy() {}

// Refresh repaints the visible lines: background rectangles first, then one
// canvas.Text per box.
func (r *docRenderer) Refresh() {
	v := r.v
	cs := cellSize()
	l := v.ctrl.Layout()
	d := v.ctrl.Document()
	fg := theme.Color(theme.ColorNameForeground)

	var bg, fgObjs []fyne.CanvasObject
	for i := 0; i < v.rows(); i++ {
		row := v.scroll + i
		if row >= l.Height() {
			break
		}
		y := float32(i) * cs.Height
		for _, b := range l.Lines[row] {
			pos := fyne.NewPos(float32(b.Col)*cs.Width, y)
			size := fyne.NewSize(float32(b.Width)*cs.Width, cs.Height)

			text, c := b.Text, fg
			switch {
			case b.Kind == doc.KindLoading:
				text, c = spinnerFrames[v.frame], markerColor
			case b.Dismiss:
				c = dismissColor
			case b.Kind == doc.KindMarker:
				c = markerColor
			case b.Kind == doc.KindBlock:
				c = blockColor
			}
			if b.Kind == doc.KindBlock {
				bg = append(bg, rect(blockBg, pos, size))
			}
			if v.sel != nil && b.Kind != doc.KindBlock {
				if lo, hi, ok := v.sel.Span(d, b.Node); ok {
					lo, hi = max(lo, b.Start), min(hi, b.End)
					if lo < hi {
						at := pos.AddXY(float32(lo-b.Start)*cs.Width, 0)
						bg = append(bg, rect(selectBg, at, fyne.NewSize(float32(hi-lo)*cs.Width, cs.Height)))
					}
				}
			}

			t := canvas.NewText(text, c)
			t.TextStyle = fyne.TextStyle{Monospace: true, Bold: b.Kind == doc.KindMarker || b.Dismiss, Italic: b.Kind == doc.KindBlock}
			t.Move(pos)
			t.Resize(size)
			fgObjs = append(fgObjs, t)
		}
	}
	if caret, ok := r.caret(l, cs); ok {
		fgObjs = append(fgObjs, caret)
	}
	r.objects = append(bg, fgObjs...)
}

func (r *docRenderer) caret(l *layout.Layout, cs fyne.Size) (fyne.CanvasObject, bool) {
	v := r.v
	if !v.focused || v.ctrl.Mode() != zoom.Inline {
		return nil, false
	}
	x, y := 0, 0
	if node, off, ok := v.ctrl.Caret(); ok {
		found := false
		for row, line := range l.Lines {
			for _, b := range line {
				if b.Node != node || b.Dismiss {
					continue
				}
				if off >= b.Start && off <= b.End {
					x, y, found = b.Col+off-b.Start, row, true
				}
			}
		}
		if !found {
			return nil, false
		}
	}
	if y < v.scroll || y >= v.scroll+v.rows() {
		return nil, false
	}
	pos := fyne.NewPos(float32(x)*cs.Width, float32(y-v.scroll)*cs.Height)
	return rect(theme.Color(theme.ColorNamePrimary), pos, fyne.NewSize(2, cs.Height)), true
}

func rect(c color.Color, pos fyne.Position, size fyne.Size) fyne.CanvasObject {
	r := canvas.NewRectangle(c)
	r.Move(pos)
	r.Resize(size)
	return r
}

func newGUILogger(cfg *config.Config) *slog.Logger {
	if !cfg.Debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := os.OpenFile(cfg.DebugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open debug log: %v\n", err)
		os.Exit(1)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	modeName := flag.String("mode", zoom.Inline.String(), "Starting mode: inline or page")
	defineURL := flag.String("url", cfg.DefineURL, "Definition service base URL")
	showVersion := flag.Bool("v", false, "Show version information")
	showVersionLong := flag.Bool("version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Zoom - Semantic Zoom Reader (GUI)\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  zoom-gui [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("zoom-gui %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	mode, err := zoom.ParseMode(*modeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	src, err := loadInput(flag.Args(), os.Stdin, stdinIsTerminal())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := newGUILogger(cfg)
	client := lookup.New(*defineURL, cfg.Timeout)
	opts := zoom.Options{Debounce: cfg.Debounce, DiscardStale: cfg.DiscardStale, Logger: logger}

	a := app.New()
	w := a.NewWindow("zoom - " + src.Name)

	statusLabel := widget.NewLabel("")
	pageView := newDocView(zoom.New(zoom.Navigate, src.Markup, opts), client, logger)
	inlineView := newDocView(zoom.New(zoom.Inline, src.Text(), opts), client, logger)
	for _, v := range []*docView{pageView, inlineView} {
		v.onStatus = statusLabel.SetText
	}

	back := widget.NewButton("Back", func() {
		pageView.ctrl.ZoomOut()
		pageView.sync()
	})
	controlsLabel := widget.NewLabel("Wheel: zoom  Double-click: define inline  [x]: dismiss  B: back")
	controlsLabel.Alignment = fyne.TextAlignCenter

	tabs := container.NewAppTabs(
		container.NewTabItem("Page", container.NewBorder(container.NewHBox(back), nil, nil, nil, pageView)),
		container.NewTabItem("Inline", inlineView),
	)
	focus := func(i int) {
		if i == 0 {
			w.Canvas().Focus(pageView)
		} else {
			w.Canvas().Focus(inlineView)
		}
	}
	tabs.OnSelected = func(*container.TabItem) { focus(tabs.SelectedIndex()) }
	if mode == zoom.Inline {
		tabs.SelectIndex(1)
	}

	w.SetContent(container.NewBorder(statusLabel, controlsLabel, nil, nil, tabs))
	w.Resize(fyne.NewSize(800, 600))
	focus(tabs.SelectedIndex())
	w.ShowAndRun()
}
