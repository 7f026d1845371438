package layout

import (
	"strings"
	"testing"

	"github.com/metcalfc/zoom/internal/doc"
)

// lineText reassembles the visible text of a line, padding gaps with spaces.
func lineText(line []Box) string {
	var sb strings.Builder
	col := 0
	for _, b := range line {
		sb.WriteString(strings.Repeat(" ", b.Col-col))
		sb.WriteString(b.Text)
		col = b.Col + b.Width
	}
	return sb.String()
}

func allLines(l *Layout) []string {
	var out []string
	for _, line := range l.Lines {
		out = append(out, lineText(line))
	}
	return out
}

func TestBuildWraps(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "hello world", 20, []string{"hello world"}},
		{"word wrap", "hello world again", 11, []string{"hello world", "again"}},
		{"long word broken", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"hard newline", "one\ntwo", 20, []string{"one", "two"}},
		{"wide runes", "日本語です", 6, []string{"日本語", "です"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := allLines(Build(doc.New(tt.text), tt.width))
			if len(got) != len(tt.want) {
				t.Fatalf("lines = %q, want %q", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuildZeroWidthUsesDefault(t *testing.T) {
	l := Build(doc.New("x"), 0)
	if l.Width != DefaultWidth {
		t.Errorf("Width = %d, want %d", l.Width, DefaultWidth)
	}
}

func TestBuildDecorations(t *testing.T) {
	d := doc.New("something ephemeral happened")
	marker, err := d.SplitText(d.Nodes()[0].ID, 10, 19)
	if err != nil {
		t.Fatalf("SplitText: %v", err)
	}
	if _, err := d.InsertAfter(marker.ID, doc.Node{Kind: doc.KindBlock, Word: "ephemeral", Definition: "lasting a very short time"}); err != nil {
		t.Fatalf("InsertAfter: %v", err)
	}

	l := Build(d, 80)
	got := allLines(l)
	want := []string{
		"something ephemeral",
		`"ephemeral": lasting a very short time [x]`,
		" happened",
	}
	if len(got) != len(want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}

	var dismiss *Box
	for i := range l.Lines[1] {
		if l.Lines[1][i].Dismiss {
			dismiss = &l.Lines[1][i]
		}
	}
	if dismiss == nil {
		t.Fatal("no dismiss box on the block line")
	}
	b, ok := l.At(dismiss.Col+1, 1)
	if !ok || !b.Dismiss {
		t.Errorf("At(dismiss) = %+v, %v", b, ok)
	}
}

func TestLoadingBox(t *testing.T) {
	d := doc.New("apple")
	marker, err := d.SplitText(d.Nodes()[0].ID, 0, 5)
	if err != nil {
		t.Fatalf("SplitText: %v", err)
	}
	loading, err := d.InsertAfter(marker.ID, doc.Node{Kind: doc.KindLoading})
	if err != nil {
		t.Fatalf("InsertAfter: %v", err)
	}

	l := Build(d, 80)
	b, ok := l.At(5, 0)
	if !ok || b.Node != loading.ID || b.Kind != doc.KindLoading || b.Width != 1 {
		t.Errorf("At(5,0) = %+v, %v; want loading box", b, ok)
	}
}

func TestOffset(t *testing.T) {
	b := Box{Col: 4, Width: 10, Start: 0, End: 10}
	tests := []struct {
		x    int
		want int
	}{
		{4, 0}, {5, 1}, {13, 9}, {0, 0}, {40, 9},
	}
	for _, tt := range tests {
		if got := Offset(b, tt.x); got != tt.want {
			t.Errorf("Offset(x=%d) = %d, want %d", tt.x, got, tt.want)
		}
	}

	// Double-width text: 3 runes in 6 cells.
	wide := Box{Col: 0, Width: 6, Start: 0, End: 3}
	if got := Offset(wide, 3); got != 1 {
		t.Errorf("Offset(wide, 3) = %d, want 1", got)
	}
}

func TestLocate(t *testing.T) {
	d := doc.New("hello world")
	id := d.Nodes()[0].ID
	l := Build(d, 80)

	node, off, ok := l.Locate(6, 0)
	if !ok || node != id || off != 6 {
		t.Errorf("Locate(6,0) = %d,%d,%v", node, off, ok)
	}
	node, off, ok = l.Locate(50, 0)
	if !ok || node != id || off != 11 {
		t.Errorf("Locate past end = %d,%d,%v; want end of text", node, off, ok)
	}
	if _, _, ok := l.Locate(0, 5); ok {
		t.Error("Locate below the layout should fail")
	}
}
