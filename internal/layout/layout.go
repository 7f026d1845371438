// Package layout wraps a document into terminal cells.
//
// A Layout records one Box per contiguous run of a node on a line. Boxes are
// the rendered geometry the pointer resolver hit-tests against and the
// renderers draw from, so both always agree on where a character is.
package layout

import (
	"github.com/mattn/go-runewidth"

	"github.com/metcalfc/zoom/internal/doc"
)

// DefaultWidth is used when the view has not reported a size yet.
const DefaultWidth = 80

// LoadingGlyph is the placeholder text of a loading box. Renderers may draw
// any single-cell glyph in its place.
const LoadingGlyph = "~"

// DismissLabel is the text of a definition block's dismiss control.
const DismissLabel = "[x]"

// Box is a rectangle of cells on one line showing part of a node.
type Box struct {
	Node int
	Kind doc.Kind

	Row   int
	Col   int
	Width int

	// Start and End delimit the rune range of the node's text shown by the
	// box. For block boxes they index into the block label.
	Start int
	End   int
	Text  string

	// Dismiss marks the dismiss control of a definition block.
	Dismiss bool
}

// Contains reports whether the cell (x, y) is inside the box.
func (b Box) Contains(x, y int) bool {
	return y == b.Row && x >= b.Col && x < b.Col+b.Width
}

// Layout is the cell geometry of a document at a given width.
type Layout struct {
	Width int
	Lines [][]Box
}

// Build lays out d into lines of at most width cells.
func Build(d *doc.Document, width int) *Layout {
	if width <= 0 {
		width = DefaultWidth
	}
	b := &builder{l: &Layout{Width: width, Lines: [][]Box{nil}}}
	for _, n := range d.Nodes() {
		switch n.Kind {
		case doc.KindText, doc.KindMarker:
			b.flow(n.ID, n.Kind, []rune(n.Text))
		case doc.KindBreak:
			b.newline()
		case doc.KindLoading:
			if b.col+1 > width && b.col > 0 {
				b.newline()
			}
			b.put(n.ID, n.Kind, 0, []rune(LoadingGlyph)[0], false)
		case doc.KindBlock:
			if b.col > 0 {
				b.newline()
			}
			b.flow(n.ID, n.Kind, []rune(n.Label()+" "))
			if b.col+len(DismissLabel) > width && b.col > 0 {
				b.newline()
			}
			for i, r := range DismissLabel {
				b.put(n.ID, n.Kind, i, r, true)
			}
			// The separating line break after the block.
			b.newline()
		}
	}
	return b.l
}

// Height returns the number of lines.
func (l *Layout) Height() int {
	return len(l.Lines)
}

// At returns the box containing the cell (x, y).
func (l *Layout) At(x, y int) (Box, bool) {
	if y < 0 || y >= len(l.Lines) {
		return Box{}, false
	}
	for _, b := range l.Lines[y] {
		if b.Contains(x, y) {
			return b, true
		}
	}
	return Box{}, false
}

// Offset approximates the node-local rune offset under column x of box b
// by dividing the box's rendered width by its character count. It is a
// best-effort mapping: exact for single-width text and close otherwise.
func Offset(b Box, x int) int {
	n := b.End - b.Start
	if n <= 0 || b.Width <= 0 {
		return b.Start
	}
	off := b.Start + (x-b.Col)*n/b.Width
	if off < b.Start {
		off = b.Start
	}
	if off >= b.End {
		off = b.End - 1
	}
	return off
}

// Locate finds the text position nearest to (x, y) on line y among text and
// marker boxes. Points right of the last box map to the end of that box,
// which lets callers place a caret after the last character of a line.
func (l *Layout) Locate(x, y int) (node, offset int, ok bool) {
	if y < 0 || y >= len(l.Lines) {
		return 0, 0, false
	}
	var prev *Box
	for i := range l.Lines[y] {
		b := &l.Lines[y][i]
		if b.Kind != doc.KindText && b.Kind != doc.KindMarker {
			continue
		}
		if b.Contains(x, y) {
			return b.Node, Offset(*b, x), true
		}
		if x < b.Col {
			if prev == nil {
				return b.Node, b.Start, true
			}
			break
		}
		prev = b
	}
	if prev == nil {
		return 0, 0, false
	}
	return prev.Node, prev.End, true
}

type builder struct {
	l   *Layout
	col int
}

func (b *builder) newline() {
	b.l.Lines = append(b.l.Lines, nil)
	b.col = 0
}

// put places rune r (index i of the node text) at the cursor, extending the
// previous box when it is the same node and contiguous.
func (b *builder) put(node int, kind doc.Kind, i int, r rune, dismiss bool) {
	w := runewidth.RuneWidth(r)
	row := len(b.l.Lines) - 1
	line := b.l.Lines[row]
	if n := len(line); n > 0 {
		last := &line[n-1]
		if last.Node == node && last.Dismiss == dismiss && last.End == i && last.Col+last.Width == b.col {
			last.Width += w
			last.End++
			last.Text += string(r)
			b.col += w
			return
		}
	}
	b.l.Lines[row] = append(line, Box{
		Node:    node,
		Kind:    kind,
		Row:     row,
		Col:     b.col,
		Width:   w,
		Start:   i,
		End:     i + 1,
		Text:    string(r),
		Dismiss: dismiss,
	})
	b.col += w
}

// flow word-wraps runes onto lines. Words that do not fit move to the next
// line; words wider than a line are broken by character. Spaces that would
// overflow a line are consumed by the wrap.
func (b *builder) flow(node int, kind doc.Kind, runes []rune) {
	width := b.l.Width
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == '\n':
			b.newline()
			i++
		case r == ' ' || r == '\t':
			if b.col+1 > width {
				b.newline()
				for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t') {
					i++
				}
				continue
			}
			b.put(node, kind, i, ' ', false)
			i++
		default:
			j := i
			w := 0
			for j < len(runes) && runes[j] != ' ' && runes[j] != '\t' && runes[j] != '\n' {
				w += runewidth.RuneWidth(runes[j])
				j++
			}
			if b.col+w > width && b.col > 0 {
				b.newline()
			}
			for ; i < j; i++ {
				if rw := runewidth.RuneWidth(runes[i]); b.col+rw > width && b.col > 0 {
					b.newline()
				}
				b.put(node, kind, i, runes[i], false)
			}
		}
	}
}
