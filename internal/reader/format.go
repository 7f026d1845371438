// Package reader loads documents for the zoom views from plain text,
// Markdown, HTML and EPUB files.
package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/metcalfc/zoom/internal/doc"
	"github.com/metcalfc/zoom/internal/markup"
)

// Format defines a file format reader that renders a file to markup.
type Format interface {
	Name() string
	Extensions() []string
	Markup(filename string) (string, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Source is a loaded document.
type Source struct {
	Name string
	// Markup is the page shown by the page view.
	Markup string

	text string
}

// Text returns the plain text used to seed the inline view. Paragraph
// structure survives as newlines.
func (s *Source) Text() string {
	if s.text != "" {
		return s.text
	}
	return doc.FromHTML(s.Markup).Text()
}

// FromText wraps plain text, e.g. read from stdin.
func FromText(name, text string) *Source {
	return &Source{Name: name, Markup: markup.Paragraphs(text), text: text}
}

// Load reads a file, using a registered format or plain text fallback.
func Load(filename string) (*Source, error) {
	name := filepath.Base(filename)
	if f := lookup(filename); f != nil {
		m, err := f.Markup(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s file: %w", f.Name(), err)
		}
		return &Source{Name: name, Markup: m}, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return FromText(name, string(data)), nil
}

func lookup(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}
	return nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}
