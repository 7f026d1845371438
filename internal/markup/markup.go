// Package markup converts between HTML and plain text.
package markup

import (
	"fmt"
	"html"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Text returns the text content of markup: the concatenation of every text
// node, the way a DOM's textContent reads. Tags are never interpreted as
// anything but structure, so the result is safe to show as plain text.
func Text(markup string) string {
	root, err := xhtml.Parse(strings.NewReader(markup))
	if err != nil {
		return markup
	}
	var sb strings.Builder
	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == xhtml.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return sb.String()
}

// Paragraphs turns plain text into escaped paragraph markup. Blank lines
// separate paragraphs; single newlines become <br>.
func Paragraphs(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var sb strings.Builder
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.Trim(para, "\n")
		if strings.TrimSpace(para) == "" {
			continue
		}
		lines := strings.Split(para, "\n")
		for i, l := range lines {
			lines[i] = html.EscapeString(l)
		}
		sb.WriteString("<p>")
		sb.WriteString(strings.Join(lines, "<br>"))
		sb.WriteString("</p>\n")
	}
	return sb.String()
}

// Body returns the rendered children of the document's <body>, dropping the
// head. Fragments come back unchanged apart from normalization.
func Body(markup string) (string, error) {
	root, err := xhtml.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("failed to parse markup: %w", err)
	}
	body := find(root, atom.Body)
	if body == nil {
		return "", nil
	}
	var sb strings.Builder
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := xhtml.Render(&sb, c); err != nil {
			return "", fmt.Errorf("failed to render markup: %w", err)
		}
	}
	return sb.String(), nil
}

func find(n *xhtml.Node, a atom.Atom) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := find(c, a); f != nil {
			return f
		}
	}
	return nil
}
