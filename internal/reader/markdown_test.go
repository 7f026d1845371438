package reader

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
		not  []string
	}{
		{
			name: "headers and paragraphs",
			src:  "# Intro\n\nFirst paragraph.\n\n## Next\n\nSecond.",
			want: []string{"<h1>Intro</h1>", "<p>First paragraph.</p>", "<h2>Next</h2>", "<p>Second.</p>"},
		},
		{
			name: "gfm strikethrough",
			src:  "~~gone~~",
			want: []string{"<del>gone</del>"},
		},
		{
			name: "raw html omitted",
			src:  "<script>alert(1)</script>\n\ntext",
			want: []string{"<p>text</p>"},
			not:  []string{"<script>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderMarkdown([]byte(tt.src))
			if err != nil {
				t.Fatalf("RenderMarkdown: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output %q missing %q", got, w)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(got, n) {
					t.Errorf("output %q contains %q", got, n)
				}
			}
		})
	}
}

func TestMarkdownFormat(t *testing.T) {
	f := &MarkdownFormat{}
	if f.Name() != "Markdown" {
		t.Errorf("Name() = %q, want Markdown", f.Name())
	}
	if exts := f.Extensions(); len(exts) != 2 || exts[0] != ".md" {
		t.Errorf("Extensions() = %v", exts)
	}
}
