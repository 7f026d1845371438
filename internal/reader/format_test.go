package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("plain text", func(t *testing.T) {
		content := "Hello world.\n\nSecond <paragraph>."
		path := filepath.Join(tmpDir, "test.txt")
		os.WriteFile(path, []byte(content), 0644)

		src, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if src.Name != "test.txt" {
			t.Errorf("Name = %q", src.Name)
		}
		if src.Text() != content {
			t.Errorf("Text() = %q, want %q", src.Text(), content)
		}
		want := "<p>Hello world.</p>\n<p>Second &lt;paragraph&gt;.</p>\n"
		if src.Markup != want {
			t.Errorf("Markup = %q, want %q", src.Markup, want)
		}
	})

	t.Run("markdown", func(t *testing.T) {
		path := filepath.Join(tmpDir, "test.md")
		os.WriteFile(path, []byte("# Title\n\nSome *emphasis* here.\n"), 0644)

		src, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !strings.Contains(src.Markup, "<h1>Title</h1>") || !strings.Contains(src.Markup, "<em>emphasis</em>") {
			t.Errorf("Markup = %q", src.Markup)
		}
		if got := src.Text(); got != "Title\n\nSome emphasis here." {
			t.Errorf("Text() = %q", got)
		}
	})

	t.Run("html", func(t *testing.T) {
		path := filepath.Join(tmpDir, "page.HTML")
		os.WriteFile(path, []byte("<html><head><title>T</title></head><body><p>body text</p></body></html>"), 0644)

		src, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if src.Markup != "<p>body text</p>" {
			t.Errorf("Markup = %q", src.Markup)
		}
	})

	t.Run("nonexistent file", func(t *testing.T) {
		if _, err := Load(filepath.Join(tmpDir, "nonexistent.txt")); err == nil {
			t.Error("expected error")
		}
		if _, err := Load(filepath.Join(tmpDir, "nonexistent.md")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestFromText(t *testing.T) {
	src := FromText("stdin", "line one\nline two")
	if src.Markup != "<p>line one<br>line two</p>\n" {
		t.Errorf("Markup = %q", src.Markup)
	}
	if src.Text() != "line one\nline two" {
		t.Errorf("Text() = %q", src.Text())
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	want := map[string]bool{
		"EPUB (.epub)":                false,
		"Markdown (.md, .markdown)":   false,
		"HTML (.html, .htm, .xhtml)": false,
	}
	for _, f := range formats {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("%s not registered: %v", name, formats)
		}
	}
}
