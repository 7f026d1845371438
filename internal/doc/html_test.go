package doc

import "testing"

func TestFromHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single paragraph",
			input: "<p>lasting a very short time</p>\n",
			want:  "lasting a very short time",
		},
		{
			name:  "paragraphs separated by blank line",
			input: "<p>First one.</p><p>Second   one.</p>",
			want:  "First one.\n\nSecond one.",
		},
		{
			name:  "inline elements keep spacing",
			input: "<p>This is the <b>first</b> paragraph.</p>",
			want:  "This is the first paragraph.",
		},
		{
			name:  "br is a single break",
			input: "line one<br>line two",
			want:  "line one\nline two",
		},
		{
			name:  "head and script skipped",
			input: "<html><head><title>T</title><style>p{}</style></head><body><script>x()</script><h1>Title</h1><p>Body</p></body></html>",
			want:  "Title\n\nBody",
		},
		{
			name:  "plain text",
			input: "just words",
			want:  "just words",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromHTML(tt.input).Text()
			if got != tt.want {
				t.Errorf("FromHTML(%q).Text() = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFromHTMLTextNodesAreContexts(t *testing.T) {
	d := FromHTML("<p>something <em>ephemeral</em> happened</p>")
	var texts []string
	for _, n := range d.Nodes() {
		if n.Kind == KindText {
			texts = append(texts, n.Text)
		}
	}
	want := []string{"something ", "ephemeral", " happened"}
	if len(texts) != len(want) {
		t.Fatalf("text nodes = %q, want %q", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("node %d = %q, want %q", i, texts[i], want[i])
		}
	}
}
