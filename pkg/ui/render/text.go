package render

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
)

// spanLines splits spans at newlines into rows of spans.
func spanLines(spans []element.Span) [][]element.Span {
	lines := [][]element.Span{nil}
	for _, s := range spans {
		parts := strings.Split(s.Text, "\n")
		for i, p := range parts {
			if i > 0 {
				lines = append(lines, nil)
			}
			if p != "" {
				seg := s
				seg.Text = p
				lines[len(lines)-1] = append(lines[len(lines)-1], seg)
			}
		}
	}
	return lines
}

// wrapSpans breaks one row of spans into rows no wider than width, at
// spaces where possible.
func wrapSpans(line []element.Span, width int) [][]element.Span {
	if width <= 0 || spansWidth(line) <= width {
		return [][]element.Span{line}
	}
	var out [][]element.Span
	var cur []element.Span
	curW := 0
	flush := func() {
		out = append(out, cur)
		cur, curW = nil, 0
	}
	for _, s := range line {
		for _, word := range splitKeepSpaces(s.Text) {
			ww := runewidth.StringWidth(word)
			if curW+ww > width && curW > 0 {
				flush()
				if strings.TrimSpace(word) == "" {
					continue
				}
			}
			for ww > width {
				head := runewidth.Truncate(word, width, "")
				cur = append(cur, element.Span{Text: head, Role: s.Role, Bold: s.Bold})
				flush()
				word = strings.TrimPrefix(word, head)
				ww = runewidth.StringWidth(word)
			}
			if word != "" {
				cur = append(cur, element.Span{Text: word, Role: s.Role, Bold: s.Bold})
				curW += ww
			}
		}
	}
	if len(cur) > 0 || len(out) == 0 {
		flush()
	}
	return out
}

// splitKeepSpaces splits s into alternating word and space runs.
func splitKeepSpaces(s string) []string {
	var out []string
	start := 0
	inSpace := false
	for i, r := range s {
		sp := r == ' '
		if i > 0 && sp != inSpace {
			out = append(out, s[start:i])
			start = i
		}
		inSpace = sp
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func spansWidth(spans []element.Span) int {
	w := 0
	for _, s := range spans {
		w += runewidth.StringWidth(s.Text)
	}
	return w
}

// alignOffset returns the column offset for content of width w in a row of
// width avail.
func alignOffset(align element.TextAlign, w, avail int) int {
	switch align {
	case element.AlignCenter:
		return max(0, (avail-w)/2)
	case element.AlignRight:
		return max(0, avail-w)
	default:
		return 0
	}
}

// padRight pads or truncates s to exactly width columns.
func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		return runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// visibleOffset keeps selected inside a window of height rows starting near
// offset.
func visibleOffset(offset, selected, count, height int) int {
	if height <= 0 {
		return 0
	}
	if selected >= 0 {
		if selected < offset {
			offset = selected
		}
		if selected >= offset+height {
			offset = selected - height + 1
		}
	}
	return layout.ClampOffset(offset, count, height)
}
