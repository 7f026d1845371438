package markup

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"paragraph", "<p>lasting a very short time</p>", "lasting a very short time"},
		{"nested", "<div>Some <span>nested</span> text.</div>", "Some nested text."},
		{"entities decoded", "<p>fish &amp; chips</p>", "fish & chips"},
		{"script dropped", "<p>ok</p><script>alert(1)</script>", "ok"},
		{"plain", "no markup", "no markup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.input); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParagraphs(t *testing.T) {
	got := Paragraphs("Hello <world>\nsecond line\n\n\nNext & last\n")
	want := "<p>Hello &lt;world&gt;<br>second line</p>\n<p>Next &amp; last</p>\n"
	if got != want {
		t.Errorf("Paragraphs() = %q, want %q", got, want)
	}
	if Paragraphs("  \n\n ") != "" {
		t.Error("blank input should produce no paragraphs")
	}
}

func TestBody(t *testing.T) {
	input := `<html><head><title>Chapter</title></head><body><h1>One</h1><p>Text</p></body></html>`
	got, err := Body(input)
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	if got != "<h1>One</h1><p>Text</p>" {
		t.Errorf("Body() = %q", got)
	}
	if strings.Contains(got, "Chapter") {
		t.Error("head content leaked into body")
	}
}
