// Package resolve maps a pointer position or an active selection to the word
// under it and the text that surrounds it.
package resolve

import (
	"strings"
	"unicode"

	"github.com/metcalfc/zoom/internal/doc"
	"github.com/metcalfc/zoom/internal/layout"
)

// Boundary selects which characters belong to a word.
type Boundary uint8

const (
	// NonSpace expands across any run of non-whitespace characters.
	NonSpace Boundary = iota
	// WordChars expands across [A-Za-z0-9_] only.
	WordChars
)

func (b Boundary) in(r rune) bool {
	if b == WordChars {
		return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
	}
	return !unicode.IsSpace(r)
}

// Point is a cell coordinate in layout space.
type Point struct {
	X, Y int
}

// Pos is a rune position inside a node.
type Pos struct {
	Node   int
	Offset int
}

// Selection is a user selection between two positions. Both ends denote
// characters and are inclusive; Anchor is where the selection started.
type Selection struct {
	Anchor Pos
	Focus  Pos
}

// Ordered returns the selection ends in document order.
func (s Selection) Ordered(d *doc.Document) (start, end Pos, ok bool) {
	ai, fi := d.Index(s.Anchor.Node), d.Index(s.Focus.Node)
	if ai < 0 || fi < 0 {
		return Pos{}, Pos{}, false
	}
	if ai < fi || (ai == fi && s.Anchor.Offset <= s.Focus.Offset) {
		return s.Anchor, s.Focus, true
	}
	return s.Focus, s.Anchor, true
}

// Span returns the selected rune range [lo,hi) of one node.
func (s Selection) Span(d *doc.Document, node int) (lo, hi int, ok bool) {
	start, end, ok := s.Ordered(d)
	if !ok {
		return 0, 0, false
	}
	i := d.Index(node)
	si, ei := d.Index(start.Node), d.Index(end.Node)
	if i < si || i > ei {
		return 0, 0, false
	}
	n, _ := d.Node(node)
	if !n.Textual() {
		return 0, 0, false
	}
	lo, hi = 0, n.Len()
	if i == si {
		lo = clamp(start.Offset, 0, n.Len())
	}
	if i == ei {
		hi = clamp(end.Offset+1, 0, n.Len())
	}
	if lo >= hi {
		return 0, 0, false
	}
	return lo, hi, true
}

// Text returns the selected text.
func (s Selection) Text(d *doc.Document) string {
	var sb strings.Builder
	for _, n := range d.Nodes() {
		lo, hi, ok := s.Span(d, n.ID)
		if !ok {
			continue
		}
		if n.Kind == doc.KindBreak {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(string([]rune(n.Text)[lo:hi]))
	}
	return sb.String()
}

// WordContext is a resolved word with the text it was found in.
type WordContext struct {
	Word    string
	Context string

	// Node and [Start,End) locate Word inside its node when Ranged is set.
	Node   int
	Start  int
	End    int
	Ranged bool
}

// Resolver resolves points against a document and its layout.
type Resolver struct {
	Doc    *doc.Document
	Layout *layout.Layout
}

// Resolve produces the word at p. A non-empty selection takes precedence:
// its trimmed text is the word and the anchoring node's text the context.
// Otherwise the character under p is expanded to the given boundary.
func (r Resolver) Resolve(p Point, sel *Selection, b Boundary) (WordContext, bool) {
	if sel != nil {
		if wc, ok := r.fromSelection(*sel); ok {
			return wc, true
		}
	}
	return r.fromPoint(p, b)
}

func (r Resolver) fromSelection(sel Selection) (WordContext, bool) {
	raw := sel.Text(r.Doc)
	word := strings.TrimSpace(raw)
	if word == "" {
		return WordContext{}, false
	}
	anchor, ok := r.Doc.Node(sel.Anchor.Node)
	if !ok {
		return WordContext{}, false
	}
	wc := WordContext{Word: word, Context: anchor.Text, Node: anchor.ID}

	if sel.Anchor.Node == sel.Focus.Node && anchor.Kind == doc.KindText {
		lo, hi, ok := sel.Span(r.Doc, anchor.ID)
		if ok {
			lead := len([]rune(raw)) - len([]rune(strings.TrimLeftFunc(raw, unicode.IsSpace)))
			trail := len([]rune(raw)) - len([]rune(strings.TrimRightFunc(raw, unicode.IsSpace)))
			wc.Start, wc.End, wc.Ranged = lo+lead, hi-trail, true
		}
	}
	return wc, true
}

func (r Resolver) fromPoint(p Point, b Boundary) (WordContext, bool) {
	box, ok := r.Layout.At(p.X, p.Y)
	if !ok || (box.Kind != doc.KindText && box.Kind != doc.KindMarker) {
		return WordContext{}, false
	}
	n, ok := r.Doc.Node(box.Node)
	if !ok {
		return WordContext{}, false
	}

	runes := []rune(n.Text)
	off := layout.Offset(box, p.X)
	start, end := Expand(runes, off, b)
	word := strings.TrimSpace(string(runes[start:end]))
	if word == "" {
		return WordContext{}, false
	}
	return WordContext{
		Word:    word,
		Context: n.Text,
		Node:    n.ID,
		Start:   start,
		End:     end,
		Ranged:  n.Kind == doc.KindText,
	}, true
}

// Expand grows [off,off) left and right while characters satisfy b.
func Expand(runes []rune, off int, b Boundary) (start, end int) {
	off = clamp(off, 0, len(runes))
	start = off
	for start > 0 && b.in(runes[start-1]) {
		start--
	}
	end = off
	for end < len(runes) && b.in(runes[end]) {
		end++
	}
	return start, end
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
