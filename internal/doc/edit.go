package doc

import (
	"strings"
	"unicode/utf8"
)

// Offset converts a node-local rune offset into an offset in Text().
func (d *Document) Offset(id, local int) (int, bool) {
	abs := 0
	for _, n := range d.nodes {
		if n.ID == id {
			if local < 0 || local > n.Len() {
				return 0, false
			}
			return abs + local, true
		}
		abs += n.Len()
	}
	return 0, false
}

// Locate converts an offset in Text() into a node and node-local offset.
// Positions on a boundary prefer a text node, so the result is a place
// where InsertText would write.
func (d *Document) Locate(abs int) (id, local int, ok bool) {
	pos := 0
	found := false
	for _, n := range d.nodes {
		l := n.Len()
		if abs >= pos && abs <= pos+l && n.Textual() && n.Kind != KindBreak {
			if n.Kind == KindText {
				return n.ID, abs - pos, true
			}
			if !found {
				id, local, found = n.ID, abs-pos, true
			}
		}
		pos += l
	}
	return id, local, found
}

// TextLen returns the rune length of Text().
func (d *Document) TextLen() int {
	total := 0
	for _, n := range d.nodes {
		total += n.Len()
	}
	return total
}

// InsertText writes s at offset abs of Text() into a text node and returns
// the offset just past the inserted text. When no text node touches abs, a
// new one is created after the decorations that follow the preceding node.
func (d *Document) InsertText(abs int, s string) int {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s == "" {
		return abs
	}
	if total := d.TextLen(); abs > total {
		abs = total
	}
	if abs < 0 {
		abs = 0
	}
	n := utf8.RuneCountInString(s)

	pos := 0
	at := 0 // insertion index for a fresh text node
	for i, node := range d.nodes {
		l := node.Len()
		if node.Kind == KindText && abs >= pos && abs <= pos+l {
			runes := []rune(node.Text)
			local := abs - pos
			node.Text = string(runes[:local]) + s + string(runes[local:])
			d.version++
			return abs + n
		}
		if pos+l <= abs && (node.Textual() || l == 0) {
			at = i + 1
		}
		pos += l
	}

	// Skip past decorations attached to the node before the caret.
	for at < len(d.nodes) && !d.nodes[at].Textual() {
		at++
	}
	d.insertAt(at, d.adopt(Node{Kind: KindText, Text: s}))
	return abs + n
}

// DeleteBefore removes the rune before offset abs when it belongs to a text
// node or is a break, and returns the new caret offset. Marker text is left
// untouched.
func (d *Document) DeleteBefore(abs int) int {
	if abs <= 0 {
		return 0
	}
	pos := 0
	for i, node := range d.nodes {
		l := node.Len()
		if abs > pos && abs <= pos+l {
			switch node.Kind {
			case KindText:
				runes := []rune(node.Text)
				local := abs - pos
				node.Text = string(runes[:local-1]) + string(runes[local:])
				d.version++
				if node.Text == "" {
					d.Normalize()
				}
				return abs - 1
			case KindBreak:
				d.nodes = append(d.nodes[:i], d.nodes[i+1:]...)
				d.version++
				d.Normalize()
				return abs - 1
			default:
				return abs
			}
		}
		pos += l
	}
	return abs
}
