package reader

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"

	"github.com/metcalfc/zoom/internal/markup"
)

// EPUBFormat implements Format for EPUB files.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }
func (f *EPUBFormat) Markup(filename string) (string, error) {
	return MarkupFromEPUB(filename)
}

// MarkupFromEPUB joins the bodies of the spine documents of an EPUB file in
// reading order, one <div> per chapter. Unreadable spine items are skipped.
func MarkupFromEPUB(filename string) (string, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return "", fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return "", errors.New("no rootfiles found in epub")
	}

	var chapters []string
	for _, ref := range rc.Rootfiles[0].Spine.Itemrefs {
		if body := spineBody(ref.Item); body != "" {
			chapters = append(chapters, "<div>"+body+"</div>\n")
		}
	}
	if len(chapters) == 0 {
		return "", errNoChapters
	}
	return strings.Join(chapters, ""), nil
}

var errNoChapters = errors.New("epub has no readable chapters")

// spineBody returns the body markup of one spine document, or "" if it cannot
// be read or has no content.
func spineBody(item *epub.Item) string {
	if item == nil {
		return ""
	}
	r, err := item.Open()
	if err != nil {
		return ""
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return ""
	}
	body, err := markup.Body(string(data))
	if err != nil || strings.TrimSpace(body) == "" {
		return ""
	}
	return body
}
