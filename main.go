//go:build !gui

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/zoom/internal/config"
	"github.com/metcalfc/zoom/internal/doc"
	"github.com/metcalfc/zoom/internal/gesture"
	"github.com/metcalfc/zoom/internal/layout"
	"github.com/metcalfc/zoom/internal/lookup"
	"github.com/metcalfc/zoom/internal/reader"
	"github.com/metcalfc/zoom/internal/resolve"
	"github.com/metcalfc/zoom/internal/state"
	"github.com/metcalfc/zoom/internal/zoom"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// headerRows is the number of screen rows above the document.
const headerRows = 1

var (
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	busyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))
)

// Cell styles, indexed by cellStyle.
var cellStyles = [...]lipgloss.Style{
	plainCell:   lipgloss.NewStyle(),
	markerCell:  lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#FFAA00")),
	loadingCell: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")),
	blockCell:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#8BE9FD")).Background(lipgloss.Color("#202830")),
	dismissCell: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF5555")).Background(lipgloss.Color("#202830")),
	selectCell:  lipgloss.NewStyle().Reverse(true).Foreground(lipgloss.Color("#50FA7B")),
	caretCell:   lipgloss.NewStyle().Reverse(true),
}

type cellStyle uint8

const (
	plainCell cellStyle = iota
	markerCell
	loadingCell
	blockCell
	dismissCell
	selectCell
	caretCell
)

type keyMap struct {
	Quit     key.Binding
	QuitPage key.Binding
	Switch   key.Binding
	Back     key.Binding
	Clear    key.Binding
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Back, k.Up, k.Down, k.Clear, k.QuitPage, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.PageUp, k.PageDown}}
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		QuitPage: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Switch:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch mode")),
		Back:     key.NewBinding(key.WithKeys("b", "backspace"), key.WithHelp("b", "zoom out")),
		Clear:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		Up:       key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "scroll up")),
		Down:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "scroll down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "page down")),
	}
}

// forMode enables the bindings that make sense in mode. Inline mode takes
// plain keys as text input.
func (k keyMap) forMode(mode zoom.Mode) keyMap {
	page := mode == zoom.Navigate
	k.QuitPage.SetEnabled(page)
	k.Back.SetEnabled(page)
	return k
}

// pane is one controller with its view state.
type pane struct {
	ctrl   *zoom.Controller
	doc    *doc.Document
	sel    *resolve.Selection
	scroll int
}

// sync resets view state when the controller swapped its document.
func (p *pane) sync() {
	if d := p.ctrl.Document(); d != p.doc {
		p.doc = d
		p.sel = nil
		p.scroll = 0
	}
}

type lookupMsg struct {
	mode zoom.Mode
	job  *zoom.Job
	body string
	err  error
}

type model struct {
	panes  [2]*pane
	active zoom.Mode
	client zoom.Lookuper

	clicks *gesture.Tracker
	drag   *gesture.Drag

	spinner  spinner.Model
	spinning bool
	keys     keyMap
	help     help.Model

	name     string
	status   string
	width    int
	height   int
	quitting bool

	log *slog.Logger
	now func() time.Time
}

func newModel(src *reader.Source, mode zoom.Mode, client zoom.Lookuper, opts zoom.Options) model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Width == 0 {
		opts.Width = layout.DefaultWidth
	}
	page := &pane{ctrl: zoom.New(zoom.Navigate, src.Markup, opts)}
	inline := &pane{ctrl: zoom.New(zoom.Inline, src.Text(), opts)}
	page.sync()
	inline.sync()

	m := model{
		active:  mode,
		client:  client,
		clicks:  gesture.NewTracker(0, 0),
		drag:    &gesture.Drag{},
		spinner: spinner.New(spinner.WithSpinner(spinner.Line)),
		keys:    newKeyMap(),
		help:    help.New(),
		name:    src.Name,
		width:   opts.Width,
		height:  24,
		log:     opts.Logger,
		now:     time.Now,
	}
	m.panes[zoom.Navigate] = page
	m.panes[zoom.Inline] = inline
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) pane() *pane {
	return m.panes[m.active]
}

// rows is the number of document rows on screen.
func (m model) rows() int {
	if r := m.height - headerRows - 1; r > 0 {
		return r
	}
	return 1
}

func (m model) pending() int {
	return m.panes[zoom.Navigate].ctrl.Pending() + m.panes[zoom.Inline].ctrl.Pending()
}

// point maps a screen cell to layout space.
func (m model) point(x, y int) resolve.Point {
	return resolve.Point{X: x, Y: y - headerRows + m.pane().scroll}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		for _, p := range m.panes {
			p.ctrl.Resize(msg.Width)
		}
		m.clampScroll()
		return m, nil

	case lookupMsg:
		p := m.panes[msg.mode]
		p.ctrl.Complete(msg.job, msg.body, msg.err)
		p.sync()
		m.clampScroll()
		if msg.err != nil {
			m.status = fmt.Sprintf("lookup of %q failed", msg.job.Word)
		} else {
			m.status = ""
		}
		return m, nil

	case spinner.TickMsg:
		if m.pending() == 0 {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.pane()
	keys := m.keys.forMode(m.active)

	switch {
	case key.Matches(msg, keys.Quit), key.Matches(msg, keys.QuitPage):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Switch):
		if m.active == zoom.Navigate {
			m.active = zoom.Inline
		} else {
			m.active = zoom.Navigate
		}
		return m, nil
	case key.Matches(msg, keys.Clear):
		p.sel = nil
		return m, nil
	case key.Matches(msg, keys.Back):
		p.ctrl.ZoomOut()
		p.sync()
		return m, nil
	case key.Matches(msg, keys.Up):
		p.scroll--
	case key.Matches(msg, keys.Down):
		p.scroll++
	case key.Matches(msg, keys.PageUp):
		p.scroll -= m.rows()
	case key.Matches(msg, keys.PageDown):
		p.scroll += m.rows()
	default:
		if m.active == zoom.Inline {
			m.edit(msg)
		}
	}
	m.clampScroll()
	return m, nil
}

// edit applies a key to the inline editor.
func (m model) edit(msg tea.KeyMsg) {
	p := m.pane()
	switch {
	case msg.Paste:
		p.ctrl.Paste(string(msg.Runes))
	case msg.Type == tea.KeyRunes:
		p.ctrl.Type(string(msg.Runes))
	case msg.Type == tea.KeySpace:
		p.ctrl.Type(" ")
	case msg.Type == tea.KeyEnter:
		p.ctrl.Type("\n")
	case msg.Type == tea.KeyBackspace:
		p.ctrl.Backspace()
	default:
		return
	}
	p.sel = nil
}

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := m.pane()
	pt := m.point(msg.X, msg.Y)

	switch {
	case msg.Action == tea.MouseActionPress && (msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown):
		delta := 1
		if msg.Button == tea.MouseButtonWheelUp {
			delta = -1
		}
		job := p.ctrl.Wheel(pt, delta, p.sel)
		p.sync()
		if job != nil {
			p.sel = nil
			m.status = fmt.Sprintf("looking up %q", job.Word)
		}
		return m, m.dispatch(job)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if msg.Y < headerRows {
			return m, nil
		}
		switch m.clicks.Press(pt.X, pt.Y, m.now()) {
		case 1:
			p.sel = nil
			p.ctrl.Click(pt)
			p.sync()
			m.drag.Press(pt.X, pt.Y)
		case 2:
			m.drag.Release(pt.X, pt.Y)
			job := p.ctrl.DoubleClick(pt, nil)
			if job != nil {
				m.status = fmt.Sprintf("looking up %q", job.Word)
			}
			return m, m.dispatch(job)
		}
		return m, nil

	case msg.Action == tea.MouseActionMotion && m.drag.Active():
		m.drag.Move(pt.X, pt.Y)
		p.sel = m.selection()
		return m, nil

	case msg.Action == tea.MouseActionRelease:
		if m.drag.Release(pt.X, pt.Y) {
			p.sel = m.selection()
		}
		return m, nil
	}
	return m, nil
}

// selection converts the current drag into a document selection.
func (m model) selection() *resolve.Selection {
	l := m.pane().ctrl.Layout()
	an, ao, ok := l.Locate(m.drag.StartX, m.drag.StartY)
	if !ok {
		return nil
	}
	fn, fo, ok := l.Locate(m.drag.X, m.drag.Y)
	if !ok || (an == fn && ao == fo) {
		return nil
	}
	return &resolve.Selection{
		Anchor: resolve.Pos{Node: an, Offset: ao},
		Focus:  resolve.Pos{Node: fn, Offset: fo},
	}
}

// dispatch runs job off the event loop and starts the spinner.
func (m *model) dispatch(job *zoom.Job) tea.Cmd {
	if job == nil {
		return nil
	}
	m.log.Debug("dispatch lookup", "mode", job.Mode.String(), "word", job.Word, "job", job.ID)
	client := m.client
	run := func() tea.Msg {
		body, err := job.Run(context.Background(), client)
		return lookupMsg{mode: job.Mode, job: job, body: body, err: err}
	}
	if m.spinning {
		return run
	}
	m.spinning = true
	return tea.Batch(run, m.spinner.Tick)
}

func (m *model) clampScroll() {
	for _, p := range m.panes {
		limit := p.ctrl.Layout().Height() - m.rows()
		if p.scroll > limit {
			p.scroll = limit
		}
		if p.scroll < 0 {
			p.scroll = 0
		}
	}
}

// position is the view state saved on exit. The page row is only
// meaningful for the document as loaded, not a zoomed-in view.
func (m model) position() state.Position {
	pos := state.Position{Mode: m.active.String(), InlineRow: m.panes[zoom.Inline].scroll}
	if page := m.panes[zoom.Navigate]; page.ctrl.Depth() == 0 {
		pos.PageRow = page.scroll
	}
	return pos
}

// restore applies a saved position. keepMode leaves the starting mode alone.
func (m *model) restore(pos state.Position, keepMode bool) {
	if !keepMode {
		if mode, err := zoom.ParseMode(pos.Mode); err == nil {
			m.active = mode
		}
	}
	m.panes[zoom.Navigate].scroll = pos.PageRow
	m.panes[zoom.Inline].scroll = pos.InlineRow
	m.clampScroll()
}

// openStore returns the position store and the document key, or a nil store
// when positions cannot be kept.
func openStore(src *reader.Source, log *slog.Logger) (*state.Store, string) {
	if strings.TrimSpace(src.Markup) == "" {
		return nil, ""
	}
	store, err := state.NewStore()
	if err != nil {
		log.Warn("positions will not be saved", "error", err)
		return nil, ""
	}
	return store, state.Hash(src.Markup)
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")

	p := m.pane()
	l := p.ctrl.Layout()
	caret := m.caretCell(l)
	for i := 0; i < m.rows(); i++ {
		row := p.scroll + i
		if row < l.Height() {
			sb.WriteString(m.renderLine(l, row, caret))
		} else if row == caret.Y && caret.X >= 0 {
			sb.WriteString(cellStyles[caretCell].Render(" "))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(m.help.View(m.keys.forMode(m.active)))
	return sb.String()
}

func (m model) statusLine() string {
	p := m.pane()
	parts := []string{"zoom", m.name, p.ctrl.Mode().String()}
	if m.active == zoom.Navigate {
		parts = append(parts, fmt.Sprintf("depth %d", p.ctrl.Depth()))
	}
	line := statusStyle.Render(strings.Join(parts, " | "))
	switch {
	case m.status != "" && m.pending() > 0:
		line += busyStyle.Render(m.spinner.View() + " " + m.status)
	case m.status != "":
		line += failStyle.Render(m.status)
	}
	return line
}

// caretCell returns the screen position of the inline caret in layout
// space, or X = -1 when there is none.
func (m model) caretCell(l *layout.Layout) resolve.Point {
	none := resolve.Point{X: -1, Y: -1}
	p := m.pane()
	if m.active != zoom.Inline {
		return none
	}
	node, off, ok := p.ctrl.Caret()
	if !ok {
		if p.ctrl.Document().TextLen() == 0 {
			return resolve.Point{X: 0, Y: 0}
		}
		return none
	}
	after := none
	for y, line := range l.Lines {
		for _, b := range line {
			if b.Node != node || b.Dismiss {
				continue
			}
			if off >= b.Start && off < b.End {
				return resolve.Point{X: b.Col + (off-b.Start)*b.Width/max(b.End-b.Start, 1), Y: y}
			}
			if off == b.End {
				after = resolve.Point{X: b.Col + b.Width, Y: y}
			}
		}
	}
	return after
}

type cell struct {
	text  string
	style cellStyle
}

func (m model) renderLine(l *layout.Layout, row int, caret resolve.Point) string {
	p := m.pane()
	d := p.ctrl.Document()
	var cells []cell
	col := 0
	for _, b := range l.Lines[row] {
		base := styleFor(b)
		if b.Kind == doc.KindLoading {
			cells = append(cells, cell{m.spinner.View(), base})
			col += b.Width
			continue
		}
		lo, hi, selected := 0, 0, false
		if p.sel != nil && b.Kind != doc.KindBlock {
			lo, hi, selected = p.sel.Span(d, b.Node)
		}
		for i, r := range []rune(b.Text) {
			st := base
			if selected && b.Start+i >= lo && b.Start+i < hi {
				st = selectCell
			}
			if caret.Y == row && caret.X == col {
				st = caretCell
			}
			cells = append(cells, cell{string(r), st})
			col += lipgloss.Width(string(r))
		}
	}
	if caret.Y == row && caret.X >= col {
		cells = append(cells, cell{" ", caretCell})
	}
	return renderCells(cells)
}

func styleFor(b layout.Box) cellStyle {
	switch {
	case b.Dismiss:
		return dismissCell
	case b.Kind == doc.KindMarker:
		return markerCell
	case b.Kind == doc.KindBlock:
		return blockCell
	case b.Kind == doc.KindLoading:
		return loadingCell
	}
	return plainCell
}

// renderCells styles runs of equally styled cells together.
func renderCells(cells []cell) string {
	var sb, run strings.Builder
	for i, c := range cells {
		run.WriteString(c.text)
		if i == len(cells)-1 || cells[i+1].style != c.style {
			if c.style == plainCell {
				sb.WriteString(run.String())
			} else {
				sb.WriteString(cellStyles[c.style].Render(run.String()))
			}
			run.Reset()
		}
	}
	return sb.String()
}

func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	if !cfg.Debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := tea.LogToFile(cfg.DebugLog, "zoom")
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
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
	freshStart := flag.Bool("fresh", false, "Ignore the saved position")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Zoom - Semantic Zoom Reader\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  zoom [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nSupported formats: %s, plain text\n", strings.Join(reader.SupportedFormats(), ", "))
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  zoom notes.md              Open a file\n")
		fmt.Fprintf(os.Stderr, "  zoom -mode page book.epub  Open in page mode\n")
		fmt.Fprintf(os.Stderr, "  cat file.txt | zoom        Read from stdin\n")
		fmt.Fprintf(os.Stderr, "  zoom                       Start with an empty editor\n")
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  Wheel up       Page mode: open the definition of the word under the pointer\n")
		fmt.Fprintf(os.Stderr, "  Wheel down     Page mode: go back\n")
		fmt.Fprintf(os.Stderr, "  Wheel          Inline mode: define the word under the pointer in place\n")
		fmt.Fprintf(os.Stderr, "  Double-click   Inline mode: define the word in place\n")
		fmt.Fprintf(os.Stderr, "  Drag           Select text to look up instead of a single word\n")
		fmt.Fprintf(os.Stderr, "  [x]            Dismiss a definition\n")
		fmt.Fprintf(os.Stderr, "  TAB            Switch between page and inline mode\n")
	}
	flag.Parse()

	if *showVersion || *showVersionLong {
		fmt.Printf("zoom %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	mode, err := zoom.ParseMode(*modeName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	interactive := stdinIsTerminal()
	src, err := loadInput(flag.Args(), os.Stdin, interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open debug log: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	client := lookup.New(*defineURL, cfg.Timeout)
	m := newModel(src, mode, client, zoom.Options{
		Debounce:     cfg.Debounce,
		DiscardStale: cfg.DiscardStale,
		Logger:       logger,
	})

	modeSet := false
	flag.Visit(func(f *flag.Flag) { modeSet = modeSet || f.Name == "mode" })
	store, hash := openStore(src, logger)
	if store != nil && !*freshStart {
		if pos, ok := store.Get(hash); ok {
			m.restore(pos, modeSet)
		}
	}

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
	if !interactive {
		// stdin was consumed as the document; read keys from the terminal.
		opts = append(opts, tea.WithInputTTY())
	}
	p := tea.NewProgram(m, opts...)
	final, err := p.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if fm, ok := final.(model); ok && store != nil {
		if err := store.Set(hash, fm.position()); err != nil {
			logger.Warn("failed to save position", "error", err)
		}
	}
}
