package resolve

import (
	"testing"

	"github.com/metcalfc/zoom/internal/doc"
	"github.com/metcalfc/zoom/internal/layout"
)

func resolverFor(d *doc.Document) Resolver {
	return Resolver{Doc: d, Layout: layout.Build(d, 80)}
}

func TestResolvePoint(t *testing.T) {
	const text = "something ephemeral happened, foo-bar baz_qux"
	tests := []struct {
		name     string
		x        int
		boundary Boundary
		want     string
		ok       bool
	}{
		{"middle of word", 12, NonSpace, "ephemeral", true},
		{"first char", 10, NonSpace, "ephemeral", true},
		{"punctuation kept for non-space", 25, NonSpace, "happened,", true},
		{"punctuation dropped for word chars", 25, WordChars, "happened", true},
		{"hyphen splits word chars", 31, WordChars, "foo", true},
		{"hyphen joins non-space", 31, NonSpace, "foo-bar", true},
		{"underscore is a word char", 40, WordChars, "baz_qux", true},
		{"past the text", 70, NonSpace, "", false},
	}

	r := resolverFor(doc.New(text))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wc, ok := r.Resolve(Point{X: tt.x, Y: 0}, nil, tt.boundary)
			if ok != tt.ok {
				t.Fatalf("Resolve ok = %v, want %v (wc=%+v)", ok, tt.ok, wc)
			}
			if !ok {
				return
			}
			if wc.Word != tt.want {
				t.Errorf("Word = %q, want %q", wc.Word, tt.want)
			}
			if wc.Context != text {
				t.Errorf("Context = %q, want the full text node", wc.Context)
			}
			if !wc.Ranged {
				t.Error("expected a ranged result on a text node")
			}
			if got := string([]rune(text)[wc.Start:wc.End]); got != tt.want {
				t.Errorf("range [%d,%d) = %q, want %q", wc.Start, wc.End, got, tt.want)
			}
		})
	}
}

func TestResolveOnWhitespaceTakesPrecedingWord(t *testing.T) {
	r := resolverFor(doc.New("one two"))
	wc, ok := r.Resolve(Point{X: 3, Y: 0}, nil, NonSpace)
	if !ok || wc.Word != "one" {
		t.Errorf("Resolve on space = %+v, %v; want \"one\"", wc, ok)
	}
}

func TestResolveNothingUnderPoint(t *testing.T) {
	r := resolverFor(doc.New("   "))
	if wc, ok := r.Resolve(Point{X: 1, Y: 0}, nil, NonSpace); ok {
		t.Errorf("whitespace resolved to %+v", wc)
	}
	if _, ok := r.Resolve(Point{X: 0, Y: 9}, nil, NonSpace); ok {
		t.Error("resolved a point below the document")
	}
}

func TestResolveMarkerIsNotRanged(t *testing.T) {
	d := doc.New("an apple a day")
	marker, err := d.SplitText(d.Nodes()[0].ID, 3, 8)
	if err != nil {
		t.Fatalf("SplitText: %v", err)
	}
	r := resolverFor(d)
	wc, ok := r.Resolve(Point{X: 4, Y: 0}, nil, NonSpace)
	if !ok || wc.Word != "apple" || wc.Node != marker.ID {
		t.Fatalf("Resolve in marker = %+v, %v", wc, ok)
	}
	if wc.Ranged {
		t.Error("marker words should not be ranged for replacement")
	}
}

func TestResolveSelection(t *testing.T) {
	const text = "the quick brown fox"
	d := doc.New(text)
	id := d.Nodes()[0].ID
	r := resolverFor(d)

	// Selection " quick " including surrounding spaces, dragged backwards.
	sel := &Selection{Anchor: Pos{Node: id, Offset: 9}, Focus: Pos{Node: id, Offset: 3}}
	wc, ok := r.Resolve(Point{X: 17, Y: 0}, sel, NonSpace)
	if !ok {
		t.Fatal("selection did not resolve")
	}
	if wc.Word != "quick" {
		t.Errorf("Word = %q, want %q", wc.Word, "quick")
	}
	if wc.Context != text {
		t.Errorf("Context = %q, want anchor node text", wc.Context)
	}
	if !wc.Ranged || string([]rune(text)[wc.Start:wc.End]) != "quick" {
		t.Errorf("range [%d,%d) ranged=%v does not cover the trimmed word", wc.Start, wc.End, wc.Ranged)
	}
}

func TestResolveBlankSelectionFallsBackToPoint(t *testing.T) {
	d := doc.New("alpha beta")
	id := d.Nodes()[0].ID
	r := resolverFor(d)

	sel := &Selection{Anchor: Pos{Node: id, Offset: 5}, Focus: Pos{Node: id, Offset: 5}}
	wc, ok := r.Resolve(Point{X: 7, Y: 0}, sel, NonSpace)
	if !ok || wc.Word != "beta" {
		t.Errorf("Resolve = %+v, %v; want point word", wc, ok)
	}
}

func TestSelectionAcrossNodes(t *testing.T) {
	d := doc.New("")
	a := d.Append(doc.Node{Kind: doc.KindText, Text: "first line"})
	d.Append(doc.Node{Kind: doc.KindBreak})
	b := d.Append(doc.Node{Kind: doc.KindText, Text: "second line"})

	sel := Selection{Anchor: Pos{Node: a.ID, Offset: 6}, Focus: Pos{Node: b.ID, Offset: 5}}
	if got, want := sel.Text(d), "line\nsecond"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}

	wc, ok := resolverFor(d).Resolve(Point{}, &sel, NonSpace)
	if !ok {
		t.Fatal("multi-node selection did not resolve")
	}
	if wc.Context != "first line" {
		t.Errorf("Context = %q, want anchor node", wc.Context)
	}
	if wc.Ranged {
		t.Error("multi-node selection should not be ranged")
	}
}

func TestExpand(t *testing.T) {
	runes := []rune("ab cd")
	tests := []struct {
		off        int
		start, end int
	}{
		{0, 0, 2}, {1, 0, 2}, {2, 0, 2}, {3, 3, 5}, {5, 3, 5}, {-1, 0, 2}, {99, 3, 5},
	}
	for _, tt := range tests {
		s, e := Expand(runes, tt.off, NonSpace)
		if s != tt.start || e != tt.end {
			t.Errorf("Expand(off=%d) = [%d,%d), want [%d,%d)", tt.off, s, e, tt.start, tt.end)
		}
	}
}
