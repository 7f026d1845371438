// Package zoom implements the interaction controller of the reader: it
// turns wheel and double-click gestures into lookups, splices results into
// the document, and keeps the history used to zoom back out.
//
// A Controller is driven from a single event loop. Trigger methods mutate
// the document synchronously and return a *Job when a lookup must be made;
// the caller runs the job elsewhere and reports back through Complete on
// the same loop. No method blocks and none is safe for concurrent use.
package zoom

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/metcalfc/zoom/internal/doc"
	"github.com/metcalfc/zoom/internal/layout"
	"github.com/metcalfc/zoom/internal/resolve"
)

// Mode selects where lookup results land.
type Mode uint8

const (
	// Navigate replaces the whole view with the result and pushes the old
	// view onto the history (page navigation).
	Navigate Mode = iota
	// Inline expands the word in place into a definition block (inline
	// annotation).
	Inline
)

// String returns a string representation of the mode.
func (m Mode) String() string {
	switch m {
	case Navigate:
		return "page"
	case Inline:
		return "inline"
	default:
		return "unknown"
	}
}

// ParseMode parses the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "page", "navigate", "a":
		return Navigate, nil
	case "inline", "annotate", "b":
		return Inline, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want page or inline)", s)
}

// State is the controller's interaction state: Idle or Busy.
type State interface {
	isState()
}

// Idle accepts new triggers.
type Idle struct{}

// Busy has an inline lookup in flight for Word.
type Busy struct {
	Word string
}

func (Idle) isState() {}
func (Busy) isState() {}

// Gating defaults.
const (
	DefaultDebounce = 300 * time.Millisecond
	// Wheel lookups need a word longer than two characters, double-click
	// lookups at least two.
	minWheelLen = 3
	minClickLen = 2
)

// Options configure a Controller.
type Options struct {
	// Debounce is the minimum time between accepted inline wheel triggers.
	Debounce time.Duration
	// DiscardStale drops navigation results that arrive after the user
	// zoomed out of the view that requested them. Off by default: a late
	// response is swapped into whatever is displayed.
	DiscardStale bool
	// Width is the initial layout width in cells.
	Width  int
	Logger *slog.Logger
	Now    func() time.Time
}

// Controller owns one view: its document, history and lookup state.
type Controller struct {
	mode  Mode
	state State

	// view is the markup of the current view in Navigate mode.
	view    string
	doc     *doc.Document
	history History

	width  int
	layout *layout.Layout
	laidAt uint64
	laidOf *doc.Document

	caret int

	nextID   uint64
	gen      uint64
	pending  map[uint64]*Job
	inflight *Job

	lastWheel    time.Time
	debounce     time.Duration
	discardStale bool

	log *slog.Logger
	now func() time.Time
}

// New creates a controller. In Navigate mode content is the initial view
// markup; in Inline mode it is the plain text of the editable region.
func New(mode Mode, content string, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Controller{
		mode:         mode,
		state:        Idle{},
		width:        opts.Width,
		pending:      make(map[uint64]*Job),
		debounce:     opts.Debounce,
		discardStale: opts.DiscardStale,
		log:          opts.Logger.With("mode", mode.String()),
		now:          opts.Now,
	}
	if mode == Navigate {
		c.setView(content)
	} else {
		c.doc = doc.New(content)
		c.caret = c.doc.TextLen()
	}
	return c
}

// Mode returns the controller's mode.
func (c *Controller) Mode() Mode { return c.mode }

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// Busy reports whether an inline lookup is in flight.
func (c *Controller) Busy() bool {
	_, busy := c.state.(Busy)
	return busy
}

// Document returns the current document. It is replaced, not mutated, when
// a navigation swaps the view.
func (c *Controller) Document() *doc.Document { return c.doc }

// View returns the markup of the current view (Navigate mode).
func (c *Controller) View() string { return c.view }

// Depth returns the history depth.
func (c *Controller) Depth() int { return c.history.Len() }

// Pending returns the number of lookups in flight.
func (c *Controller) Pending() int {
	if c.mode == Navigate {
		return len(c.pending)
	}
	if c.inflight != nil {
		return 1
	}
	return 0
}

// Resize sets the layout width in cells.
func (c *Controller) Resize(width int) {
	if width != c.width {
		c.width = width
		c.layout = nil
	}
}

// Layout returns the layout of the current document, rebuilding it when
// the document or width changed.
func (c *Controller) Layout() *layout.Layout {
	if c.layout == nil || c.laidOf != c.doc || c.laidAt != c.doc.Version() {
		c.layout = layout.Build(c.doc, c.width)
		c.laidOf = c.doc
		c.laidAt = c.doc.Version()
	}
	return c.layout
}

func (c *Controller) resolver() resolve.Resolver {
	return resolve.Resolver{Doc: c.doc, Layout: c.Layout()}
}

// Wheel handles a wheel gesture at p. deltaY follows the browser
// convention: negative scrolls up. A non-nil selection takes precedence
// over p when resolving the word.
func (c *Controller) Wheel(p resolve.Point, deltaY int, sel *resolve.Selection) *Job {
	if c.mode == Navigate {
		switch {
		case deltaY < 0:
			return c.zoomIn(p, sel)
		case deltaY > 0:
			c.ZoomOut()
		}
		return nil
	}

	if deltaY == 0 || c.Busy() {
		return nil
	}
	now := c.now()
	if !c.lastWheel.IsZero() && now.Sub(c.lastWheel) < c.debounce {
		c.log.Debug("wheel trigger debounced", "since_last", now.Sub(c.lastWheel))
		return nil
	}
	wc, ok := c.resolver().Resolve(p, sel, resolve.NonSpace)
	if !ok {
		return nil
	}
	job := c.annotate(wc, minWheelLen)
	if job != nil {
		c.lastWheel = now
	}
	return job
}

// DoubleClick handles a double-click at p. Only Inline mode reacts to it.
func (c *Controller) DoubleClick(p resolve.Point, sel *resolve.Selection) *Job {
	if c.mode != Inline || c.Busy() {
		return nil
	}
	wc, ok := c.resolver().Resolve(p, sel, resolve.WordChars)
	if !ok {
		return nil
	}
	return c.annotate(wc, minClickLen)
}

func (c *Controller) zoomIn(p resolve.Point, sel *resolve.Selection) *Job {
	wc, ok := c.resolver().Resolve(p, sel, resolve.NonSpace)
	if !ok {
		return nil
	}
	c.history.Push(c.view)
	job := c.newJob(wc)
	c.pending[job.ID] = job
	c.log.Debug("zoom in", "word", job.Word, "depth", c.history.Len(), "job", job.ID)
	return job
}

// ZoomOut restores the previous view. It reports whether there was one.
func (c *Controller) ZoomOut() bool {
	if c.mode != Navigate {
		return false
	}
	snapshot, err := c.history.Pop()
	if err != nil {
		return false
	}
	c.setView(snapshot)
	if c.discardStale {
		c.gen++
		clear(c.pending)
	}
	c.log.Debug("zoom out", "depth", c.history.Len())
	return true
}

func (c *Controller) annotate(wc resolve.WordContext, minLen int) *Job {
	if !wc.Ranged || utf8.RuneCountInString(wc.Word) < minLen {
		return nil
	}
	marker, err := c.doc.SplitText(wc.Node, wc.Start, wc.End)
	if err != nil {
		c.log.Warn("failed to mark word", "word", wc.Word, "error", err)
		return nil
	}
	loading, err := c.doc.InsertAfter(marker.ID, doc.Node{Kind: doc.KindLoading})
	if err != nil {
		// Unreachable: the marker was just inserted.
		c.log.Warn("failed to insert loading indicator", "error", err)
		_ = c.doc.Unwrap(marker.ID)
		return nil
	}

	job := c.newJob(wc)
	job.marker, job.loading = marker.ID, loading.ID
	c.inflight = job
	c.state = Busy{Word: job.Word}
	c.log.Debug("annotate", "word", job.Word, "job", job.ID)
	return job
}

func (c *Controller) newJob(wc resolve.WordContext) *Job {
	c.nextID++
	return &Job{
		ID:      c.nextID,
		Mode:    c.mode,
		Word:    wc.Word,
		Context: wc.Context,
		gen:     c.gen,
	}
}

// Complete finalizes job with the lookup result. Unknown or stale jobs are
// ignored. It always leaves the controller ready for new triggers.
func (c *Controller) Complete(job *Job, body string, err error) {
	if job == nil {
		return
	}
	if job.Mode == Navigate {
		c.completeNavigation(job, body, err)
		return
	}
	c.completeInline(job, body, err)
}

func (c *Controller) completeNavigation(job *Job, body string, err error) {
	_, known := c.pending[job.ID]
	delete(c.pending, job.ID)
	if c.discardStale && (!known || job.gen != c.gen) {
		c.log.Debug("dropping stale navigation", "word", job.Word, "job", job.ID)
		return
	}
	if err != nil {
		c.log.Warn("lookup failed", "word", job.Word, "error", err)
		return
	}
	c.setView(body)
}

func (c *Controller) completeInline(job *Job, body string, err error) {
	if c.inflight != job {
		return
	}
	defer func() {
		c.inflight = nil
		c.state = Idle{}
	}()

	if rmErr := c.doc.Remove(job.loading); rmErr != nil {
		c.log.Warn("loading indicator missing", "job", job.ID, "error", rmErr)
	}

	if err != nil {
		c.log.Warn("lookup failed", "word", job.Word, "error", err)
		if uwErr := c.doc.Unwrap(job.marker); uwErr != nil {
			c.log.Warn("failed to revert marker", "word", job.Word, "error", uwErr)
		}
		c.clampCaret()
		return
	}

	block, insErr := c.doc.InsertAfter(job.marker, doc.Node{
		Kind:       doc.KindBlock,
		Word:       job.Word,
		Definition: strings.TrimSpace(body),
		Handle:     uuid.NewString(),
	})
	if insErr != nil {
		c.log.Warn("marker vanished before the definition arrived", "word", job.Word, "error", insErr)
		return
	}
	id := block.ID
	if subErr := c.doc.Subscribe(id, func() { _ = c.doc.Remove(id) }); subErr != nil {
		c.log.Warn("failed to wire dismiss control", "error", subErr)
	}
}

// Dismiss activates the dismiss control of a definition block.
func (c *Controller) Dismiss(block int) bool {
	n, ok := c.doc.Node(block)
	if !ok || n.Kind != doc.KindBlock {
		return false
	}
	return c.doc.Activate(block)
}

// Click handles a single click: it activates a dismiss control under p or,
// in Inline mode, moves the caret there.
func (c *Controller) Click(p resolve.Point) bool {
	l := c.Layout()
	if b, ok := l.At(p.X, p.Y); ok && b.Dismiss {
		return c.Dismiss(b.Node)
	}
	if c.mode != Inline {
		return false
	}
	node, off, ok := l.Locate(p.X, p.Y)
	if !ok {
		return false
	}
	if abs, ok := c.doc.Offset(node, off); ok {
		c.caret = abs
	}
	return false
}

// Paste inserts the plain-text payload of a paste at the caret. The text is
// never interpreted as markup.
func (c *Controller) Paste(text string) {
	c.Type(text)
}

// Type inserts text at the caret (Inline mode).
func (c *Controller) Type(text string) {
	if c.mode != Inline || text == "" {
		return
	}
	c.clampCaret()
	c.caret = c.doc.InsertText(c.caret, text)
}

// Backspace deletes the character before the caret (Inline mode).
func (c *Controller) Backspace() {
	if c.mode != Inline {
		return
	}
	c.clampCaret()
	c.caret = c.doc.DeleteBefore(c.caret)
}

// Caret returns the caret as a node position, for rendering.
func (c *Controller) Caret() (node, offset int, ok bool) {
	if c.mode != Inline {
		return 0, 0, false
	}
	c.clampCaret()
	return c.doc.Locate(c.caret)
}

// CaretOffset returns the caret as an offset into the document text.
func (c *Controller) CaretOffset() int { return c.caret }

// SetCaret moves the caret to an offset into the document text.
func (c *Controller) SetCaret(abs int) {
	c.caret = abs
	c.clampCaret()
}

func (c *Controller) clampCaret() {
	if n := c.doc.TextLen(); c.caret > n {
		c.caret = n
	}
	if c.caret < 0 {
		c.caret = 0
	}
}

func (c *Controller) setView(markup string) {
	c.view = markup
	c.doc = doc.FromHTML(markup)
}
