// Package doc provides the in-memory document model the reader mutates.
//
// A Document is a flat, ordered list of nodes. Text and marker nodes carry
// readable text; loading and block nodes are decorations the interaction
// controller splices in around a word while it is being looked up.
package doc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind identifies what a node represents.
type Kind uint8

const (
	// KindText is plain document text.
	KindText Kind = iota
	// KindMarker is a highlighted word that was (or is being) looked up.
	KindMarker
	// KindLoading is the indicator shown while a lookup is in flight.
	KindLoading
	// KindBlock is a dismissible definition block.
	KindBlock
	// KindBreak is a hard line break.
	KindBreak
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMarker:
		return "marker"
	case KindLoading:
		return "loading"
	case KindBlock:
		return "block"
	case KindBreak:
		return "break"
	default:
		return "unknown"
	}
}

// Common errors for document mutations.
var (
	ErrNoNode     = errors.New("doc: no such node")
	ErrWrongKind  = errors.New("doc: wrong node kind")
	ErrBadRange   = errors.New("doc: range out of bounds")
	ErrEmptyRange = errors.New("doc: empty range")
)

// Node is a single document node.
type Node struct {
	ID   int
	Kind Kind

	// Text is the content of text and marker nodes.
	Text string

	// Word and Definition are set on block nodes.
	Word       string
	Definition string

	// Handle is a stable identifier for block nodes, usable by front ends
	// that keep their own widgets per block.
	Handle string
}

// Textual reports whether the node contributes to the document text.
func (n *Node) Textual() bool {
	return n.Kind == KindText || n.Kind == KindMarker || n.Kind == KindBreak
}

// Len returns the number of runes the node contributes to the document text.
func (n *Node) Len() int {
	switch n.Kind {
	case KindText, KindMarker:
		return utf8.RuneCountInString(n.Text)
	case KindBreak:
		return 1
	}
	return 0
}

func (n *Node) content() string {
	if n.Kind == KindBreak {
		return "\n"
	}
	return n.Text
}

// Label returns the visible text of a definition block.
func (n *Node) Label() string {
	return `"` + n.Word + `": ` + n.Definition
}

// Document is an ordered list of nodes with per-node event subscriptions.
//
// A Document is not safe for concurrent use; it is owned by a single UI
// event loop.
type Document struct {
	nodes   []*Node
	nextID  int
	version uint64
	subs    map[int][]func()
}

// New creates a document holding text as a single text node.
func New(text string) *Document {
	d := &Document{subs: make(map[int][]func())}
	if text != "" {
		d.Append(Node{Kind: KindText, Text: text})
	}
	return d
}

// Version increases on every mutation.
func (d *Document) Version() uint64 {
	return d.version
}

// Nodes returns the document nodes in order. The slice is a copy; the nodes
// are shared and must not be modified.
func (d *Document) Nodes() []*Node {
	out := make([]*Node, len(d.nodes))
	copy(out, d.nodes)
	return out
}

// Len returns the number of nodes.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Node returns the node with the given ID.
func (d *Document) Node(id int) (*Node, bool) {
	i := d.Index(id)
	if i < 0 {
		return nil, false
	}
	return d.nodes[i], true
}

// Index returns the position of the node with the given ID, or -1.
func (d *Document) Index(id int) int {
	for i, n := range d.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// Text returns the readable text of the document: text and marker content
// with breaks as newlines. Loading and block nodes are not part of it.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, n := range d.nodes {
		sb.WriteString(n.content())
	}
	return sb.String()
}

// Append adds a node at the end of the document and returns it.
func (d *Document) Append(n Node) *Node {
	nn := d.adopt(n)
	d.nodes = append(d.nodes, nn)
	d.version++
	return nn
}

// InsertAfter inserts n directly after the node with ID ref.
func (d *Document) InsertAfter(ref int, n Node) (*Node, error) {
	i := d.Index(ref)
	if i < 0 {
		return nil, fmt.Errorf("insert after %d: %w", ref, ErrNoNode)
	}
	nn := d.adopt(n)
	d.insertAt(i+1, nn)
	return nn, nil
}

func (d *Document) adopt(n Node) *Node {
	d.nextID++
	n.ID = d.nextID
	return &n
}

func (d *Document) insertAt(i int, n *Node) {
	d.nodes = append(d.nodes, nil)
	copy(d.nodes[i+1:], d.nodes[i:])
	d.nodes[i] = n
	d.version++
}

// Remove deletes the node with the given ID together with its subscriptions.
func (d *Document) Remove(id int) error {
	i := d.Index(id)
	if i < 0 {
		return fmt.Errorf("remove %d: %w", id, ErrNoNode)
	}
	d.nodes = append(d.nodes[:i], d.nodes[i+1:]...)
	delete(d.subs, id)
	d.version++
	return nil
}

// SplitText replaces the rune range [start,end) of a text node with a marker
// node holding the same text. The text before and after the range stays in
// text nodes on either side. It returns the marker.
func (d *Document) SplitText(id, start, end int) (*Node, error) {
	i := d.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("split %d: %w", id, ErrNoNode)
	}
	n := d.nodes[i]
	if n.Kind != KindText {
		return nil, fmt.Errorf("split %d (%s): %w", id, n.Kind, ErrWrongKind)
	}
	runes := []rune(n.Text)
	if start < 0 || end > len(runes) || start > end {
		return nil, fmt.Errorf("split %d [%d,%d) of %d: %w", id, start, end, len(runes), ErrBadRange)
	}
	if start == end {
		return nil, fmt.Errorf("split %d at %d: %w", id, start, ErrEmptyRange)
	}

	before, word, after := string(runes[:start]), string(runes[start:end]), string(runes[end:])
	marker := d.adopt(Node{Kind: KindMarker, Text: word})

	// Keep the original node for the leading text so its ID survives.
	pos := i
	if before != "" {
		n.Text = before
		pos = i + 1
	} else {
		d.nodes = append(d.nodes[:i], d.nodes[i+1:]...)
		delete(d.subs, n.ID)
	}
	d.insertAt(pos, marker)
	if after != "" {
		d.insertAt(pos+1, d.adopt(Node{Kind: KindText, Text: after}))
	}
	return marker, nil
}

// Unwrap turns a marker back into plain text and normalizes the document,
// so the surrounding text reads exactly as it did before SplitText.
func (d *Document) Unwrap(id int) error {
	i := d.Index(id)
	if i < 0 {
		return fmt.Errorf("unwrap %d: %w", id, ErrNoNode)
	}
	n := d.nodes[i]
	if n.Kind != KindMarker {
		return fmt.Errorf("unwrap %d (%s): %w", id, n.Kind, ErrWrongKind)
	}
	n.Kind = KindText
	d.version++
	d.Normalize()
	return nil
}

// Normalize merges adjacent text nodes and drops empty ones. The first node
// of a merged run keeps its ID.
func (d *Document) Normalize() {
	out := d.nodes[:0]
	for _, n := range d.nodes {
		if n.Kind == KindText {
			if n.Text == "" {
				delete(d.subs, n.ID)
				continue
			}
			if len(out) > 0 && out[len(out)-1].Kind == KindText {
				out[len(out)-1].Text += n.Text
				delete(d.subs, n.ID)
				continue
			}
		}
		out = append(out, n)
	}
	for i := len(out); i < len(d.nodes); i++ {
		d.nodes[i] = nil
	}
	d.nodes = out
	d.version++
}

// Subscribe registers fn to run when the node is activated. Subscriptions
// are dropped when the node is removed.
func (d *Document) Subscribe(id int, fn func()) error {
	if d.Index(id) < 0 {
		return fmt.Errorf("subscribe %d: %w", id, ErrNoNode)
	}
	d.subs[id] = append(d.subs[id], fn)
	return nil
}

// Activate runs the node's subscriptions. Handlers may remove the node.
// It reports whether any handler ran.
func (d *Document) Activate(id int) bool {
	fns := append([]func(){}, d.subs[id]...)
	for _, fn := range fns {
		fn()
	}
	return len(fns) > 0
}
