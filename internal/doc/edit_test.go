package doc

import "testing"

func TestInsertText(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		at       int
		insert   string
		want     string
		wantNext int
	}{
		{"start", "world", 0, "hello ", "hello world", 6},
		{"middle", "helo", 3, "l", "hello", 4},
		{"end", "hello", 5, "!", "hello!", 6},
		{"past end clamps", "hi", 10, "!", "hi!", 3},
		{"crlf normalized", "a", 1, "\r\nb", "a\nb", 3},
		{"markup stays literal", "", 0, "<b>bold</b> text", "<b>bold</b> text", 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.text)
			next := d.InsertText(tt.at, tt.insert)
			if got := d.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
			if next != tt.wantNext {
				t.Errorf("next = %d, want %d", next, tt.wantNext)
			}
		})
	}
}

func TestInsertTextAroundMarker(t *testing.T) {
	d := New("apple")
	marker, err := d.SplitText(d.Nodes()[0].ID, 0, 5)
	if err != nil {
		t.Fatalf("SplitText: %v", err)
	}
	if _, err := d.InsertAfter(marker.ID, Node{Kind: KindBlock, Word: "apple", Definition: "a fruit"}); err != nil {
		t.Fatalf("InsertAfter: %v", err)
	}

	d.InsertText(5, " pie")
	if got, want := d.Text(), "apple pie"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	// The new text lands after the block, not between marker and block.
	if got := kinds(d); !equalKinds(got, []Kind{KindMarker, KindBlock, KindText}) {
		t.Errorf("kinds = %v", got)
	}
	if marker.Text != "apple" {
		t.Errorf("marker text changed to %q", marker.Text)
	}

	d.InsertText(0, "an ")
	if got, want := d.Text(), "an apple pie"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestDeleteBefore(t *testing.T) {
	d := New("abc")
	next := d.DeleteBefore(3)
	if next != 2 || d.Text() != "ab" {
		t.Errorf("DeleteBefore(3) = %d, text %q", next, d.Text())
	}
	if got := d.DeleteBefore(0); got != 0 {
		t.Errorf("DeleteBefore(0) = %d, want 0", got)
	}

	d = New("foo bar")
	if _, err := d.SplitText(d.Nodes()[0].ID, 4, 7); err != nil {
		t.Fatalf("SplitText: %v", err)
	}
	if got := d.DeleteBefore(7); got != 7 {
		t.Errorf("DeleteBefore inside marker moved caret to %d", got)
	}
	if d.Text() != "foo bar" {
		t.Errorf("marker text was edited: %q", d.Text())
	}
}

func TestOffsetAndLocate(t *testing.T) {
	d := New("")
	a := d.Append(Node{Kind: KindText, Text: "one "})
	m := d.Append(Node{Kind: KindMarker, Text: "two"})
	d.Append(Node{Kind: KindLoading})
	b := d.Append(Node{Kind: KindText, Text: " three"})

	if got, ok := d.Offset(m.ID, 1); !ok || got != 5 {
		t.Errorf("Offset(marker,1) = %d,%v want 5,true", got, ok)
	}
	if got, ok := d.Offset(b.ID, 0); !ok || got != 7 {
		t.Errorf("Offset(b,0) = %d,%v want 7,true", got, ok)
	}
	if _, ok := d.Offset(a.ID, 99); ok {
		t.Error("Offset past node length should fail")
	}

	id, local, ok := d.Locate(4)
	if !ok || id != a.ID || local != 4 {
		t.Errorf("Locate(4) = %d,%d,%v want text node end", id, local, ok)
	}
	id, local, ok = d.Locate(7)
	if !ok || id != b.ID || local != 0 {
		t.Errorf("Locate(7) = %d,%d,%v want start of trailing text", id, local, ok)
	}
	id, _, ok = d.Locate(6)
	if !ok || id != m.ID {
		t.Errorf("Locate(6) = %d,%v want marker", id, ok)
	}
}
