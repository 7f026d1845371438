package reader

import (
	"os"

	"github.com/metcalfc/zoom/internal/markup"
)

// HTMLFormat implements Format for HTML files.
type HTMLFormat struct{}

func init() {
	Register(&HTMLFormat{})
}

func (f *HTMLFormat) Name() string         { return "HTML" }
func (f *HTMLFormat) Extensions() []string { return []string{".html", ".htm", ".xhtml"} }

func (f *HTMLFormat) Markup(filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return markup.Body(string(data))
}
