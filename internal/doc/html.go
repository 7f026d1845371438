package doc

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var spaceRun = regexp.MustCompile(`\s+`)

// skipped elements never contribute text.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Title:    true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Template: true,
}

// blocks end their content with a paragraph break.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Section: true, atom.Article: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Ul: true, atom.Ol: true, atom.Blockquote: true, atom.Pre: true,
	atom.Tr: true, atom.Table: true, atom.Header: true, atom.Footer: true, atom.Dl: true,
	atom.Dt: true, atom.Dd: true, atom.Hr: true, atom.Figure: true,
}

// FromHTML builds a document from markup. Every HTML text node becomes one
// text node with whitespace collapsed the way a browser renders it, so a
// text node's content is the context a word inside it is looked up with.
// Block elements are separated by a blank line, <br> by a single break.
func FromHTML(markup string) *Document {
	d := New("")
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		d.Append(Node{Kind: KindText, Text: collapse(markup)})
		return d
	}

	pending := 0 // breaks owed before the next text
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text := collapse(n.Data)
			if strings.TrimSpace(text) == "" {
				// Whitespace between words of inline siblings still separates them.
				if text != "" && pending == 0 && d.Len() > 0 && !endsInSpace(d) {
					d.Append(Node{Kind: KindText, Text: " "})
				}
				return
			}
			if pending > 0 && d.Len() > 0 {
				for i := 0; i < pending; i++ {
					d.Append(Node{Kind: KindBreak})
				}
				text = strings.TrimLeft(text, " ")
			} else if d.Len() == 0 || endsInBreak(d) {
				text = strings.TrimLeft(text, " ")
			}
			pending = 0
			d.Append(Node{Kind: KindText, Text: text})
			return
		case html.ElementNode:
			if skipped[n.DataAtom] {
				return
			}
			if n.DataAtom == atom.Br {
				if d.Len() > 0 {
					d.Append(Node{Kind: KindBreak})
				}
				pending = 0
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blocks[n.DataAtom] {
			pending = 2
		}
	}
	walk(root)

	trimTrailing(d)
	return d
}

func collapse(s string) string {
	return spaceRun.ReplaceAllString(s, " ")
}

func endsInSpace(d *Document) bool {
	last := d.nodes[len(d.nodes)-1]
	return last.Kind != KindText || strings.HasSuffix(last.Text, " ")
}

func endsInBreak(d *Document) bool {
	return d.nodes[len(d.nodes)-1].Kind == KindBreak
}

func trimTrailing(d *Document) {
	for len(d.nodes) > 0 {
		last := d.nodes[len(d.nodes)-1]
		if last.Kind == KindBreak {
			d.nodes = d.nodes[:len(d.nodes)-1]
			continue
		}
		if last.Kind == KindText {
			last.Text = strings.TrimRight(last.Text, " ")
			if last.Text == "" {
				d.nodes = d.nodes[:len(d.nodes)-1]
				continue
			}
		}
		break
	}
	d.version++
}
