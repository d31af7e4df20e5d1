package render

import (
	"strings"
	"testing"

	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
)

func TestBuffer_SetStringAndClip(t *testing.T) {
	buf := NewBuffer(10, 2)
	buf.ClearDirty()

	n := buf.SetString(0, 0, "hello", backend.DefaultStyle())
	if n != 5 {
		t.Fatalf("SetString returned %d, want 5", n)
	}
	if got := buf.DirtyCount(); got != 5 {
		t.Errorf("DirtyCount = %d, want 5", got)
	}

	buf.PushClip(layout.NewRect(0, 1, 3, 1))
	buf.SetString(0, 1, "abcdef", backend.DefaultStyle())
	buf.SetString(0, 0, "zzz", backend.DefaultStyle())
	buf.PopClip()

	lines := strings.Split(buf.Text(), "\n")
	if lines[0] != "hello     " {
		t.Errorf("row 0 = %q, clip should have blocked the write", lines[0])
	}
	if lines[1] != "abc       " {
		t.Errorf("row 1 = %q", lines[1])
	}
}

func TestBuffer_SetStringClippedTruncates(t *testing.T) {
	buf := NewBuffer(8, 1)
	n := buf.SetStringClipped(0, 0, "truncate me", 6, backend.DefaultStyle())
	if n != 6 {
		t.Fatalf("wrote %d columns, want 6", n)
	}
	if got := buf.Text(); got != "trunc…  " {
		t.Errorf("got %q", got)
	}
}

func TestBuffer_WideRunes(t *testing.T) {
	buf := NewBuffer(4, 1)
	n := buf.SetString(0, 0, "日本", backend.DefaultStyle())
	if n != 4 {
		t.Fatalf("wide string advanced %d columns, want 4", n)
	}
	if c := buf.Get(1, 0); c.Rune != 0 {
		t.Errorf("continuation cell rune = %q, want 0", c.Rune)
	}
	if got := buf.Text(); got != "日本" {
		t.Errorf("Text() = %q", got)
	}
}

func TestBuffer_DimKeepsRunes(t *testing.T) {
	buf := NewBuffer(3, 1)
	style := backend.DefaultStyle().Foreground(backend.ColorRGB(200, 200, 200))
	buf.SetString(0, 0, "abc", style)
	buf.Dim(buf.Bounds())
	c := buf.Get(1, 0)
	if c.Rune != 'b' {
		t.Errorf("rune = %q, want b", c.Rune)
	}
	if c.Style == style {
		t.Error("style should change after Dim")
	}
}

func TestBuffer_ResizeClearsAndMarksDirty(t *testing.T) {
	buf := NewBuffer(2, 2)
	buf.SetString(0, 0, "xy", backend.DefaultStyle())
	buf.ClearDirty()
	buf.Resize(3, 1)
	if w, h := buf.Size(); w != 3 || h != 1 {
		t.Fatalf("Size = %dx%d", w, h)
	}
	if buf.DirtyCount() != 3 {
		t.Errorf("DirtyCount = %d, want 3", buf.DirtyCount())
	}
	if buf.Text() != "   " {
		t.Errorf("Text = %q, want blanks", buf.Text())
	}
}

func TestWrapSpans(t *testing.T) {
	line := []element.Span{{Text: "hello world foo"}}
	rows := wrapSpans(line, 5)
	var got []string
	for _, r := range rows {
		var sb strings.Builder
		for _, s := range r {
			sb.WriteString(s.Text)
		}
		got = append(got, sb.String())
	}
	want := []string{"hello", "world", "foo"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("wrap = %q, want %q", got, want)
	}
}

func TestVisibleOffset(t *testing.T) {
	tests := []struct {
		offset, selected, count, height, want int
	}{
		{0, 0, 10, 4, 0},
		{0, 5, 10, 4, 2},
		{6, 3, 10, 4, 3},
		{9, 9, 10, 4, 6},
		{3, 1, 3, 4, 0},
	}
	for _, tt := range tests {
		if got := visibleOffset(tt.offset, tt.selected, tt.count, tt.height); got != tt.want {
			t.Errorf("visibleOffset(%d,%d,%d,%d) = %d, want %d",
				tt.offset, tt.selected, tt.count, tt.height, got, tt.want)
		}
	}
}
