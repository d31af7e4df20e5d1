package render

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/lattice/pkg/ui/backend"
	"github.com/odvcencio/lattice/pkg/ui/element"
	"github.com/odvcencio/lattice/pkg/ui/layout"
	"github.com/odvcencio/lattice/pkg/ui/registry"
	"github.com/odvcencio/lattice/pkg/ui/theme"
)

// rows describes a selectable, scrolling run of rows shared by List, Tree,
// TableTree and FileBrowser.
type rows[Msg any] struct {
	bindings   *element.Bindings[Msg]
	count      int
	selected   int
	offset     int
	onNavigate func(element.Nav) Msg
	// activate maps an activated row to a message.
	activate   func(int) Msg
	clickFires bool // without auto-dispatch, a click on any row activates it
	onViewport func(int, int) Msg
	empty      string
	draw       func(i int, row layout.Rect, style backend.Style)
}

func (f *frame[Msg]) paintRows(spec rows[Msg], area layout.Rect) {
	b := spec.bindings
	f.reportViewport(b.Focus, area, spec.onViewport)

	focused := f.focused(b.Focus)
	body := area
	if spec.count > area.Height && area.Width > 1 {
		body.Width--
	}
	offset := visibleOffset(spec.offset, spec.selected, spec.count, body.Height)
	if spec.count == 0 && spec.empty != "" {
		f.buf.SetStringClipped(body.X, body.Y, spec.empty, body.Width, f.style(theme.RolePlaceholder))
	}

	for row := 0; row < body.Height; row++ {
		i := offset + row
		if i >= spec.count {
			break
		}
		rect := body.Row(row)
		style := f.style(theme.RoleNormal)
		if i == spec.selected {
			style = f.style(theme.RoleSelection)
			if focused {
				style = f.style(theme.RoleFocus)
			}
			f.buf.Fill(rect, ' ', style)
		}
		spec.draw(i, rect, style)
		f.addClick(rect, f.rowClick(spec, i))
	}
	if body.Width < area.Width {
		f.paintScrollbar(layout.NewRect(area.X+area.Width-1, area.Y, 1, area.Height), offset, spec.count)
	}

	f.addFocus(registry.FocusEntry[Msg]{
		ID:        b.Focus,
		Rect:      area,
		OnFocus:   b.OnFocus,
		OnBlur:    b.OnBlur,
		Translate: f.translator(b, spec.onNavigate, spec.count),
		OnChange: func(ch element.WidgetChange) (Msg, bool) {
			var zero Msg
			if ch.Submitted && spec.activate != nil {
				return spec.activate(ch.Index), true
			}
			return zero, false
		},
	})
	f.addScroll(area, func(delta int) element.Outcome[Msg] {
		switch {
		case spec.onNavigate != nil:
			return element.Emit(spec.onNavigate(deltaNav(delta)))
		case b.Focus != "":
			return element.Dispatch[Msg](element.WidgetEvent{
				ID: b.Focus, Action: element.WidgetScroll, Delta: delta, Count: spec.count,
			})
		}
		return element.Outcome[Msg]{}
	})
	f.addHover(area, b)
}

func (f *frame[Msg]) rowClick(spec rows[Msg], i int) func() element.Outcome[Msg] {
	id := spec.bindings.Focus
	return func() element.Outcome[Msg] {
		// Self-managed rows select on the first click and activate on a
		// click of the already selected row.
		if id != "" && spec.onNavigate == nil {
			return element.Dispatch[Msg](element.WidgetEvent{
				ID: id, Action: element.WidgetPick, Index: i, Count: spec.count,
			})
		}
		if spec.activate != nil && (spec.clickFires || i == spec.selected) {
			return element.Emit(spec.activate(i))
		}
		return element.Outcome[Msg]{}
	}
}

func (f *frame[Msg]) paintList(n *element.List[Msg], area layout.Rect) {
	f.paintRows(rows[Msg]{
		bindings:   &n.Bindings,
		count:      len(n.Items),
		selected:   n.Selected,
		offset:     n.Offset,
		onNavigate: n.OnNavigate,
		activate:   n.OnSelect,
		clickFires: true,
		onViewport: n.OnViewport,
		empty:      n.Empty,
		draw: func(i int, row layout.Rect, style backend.Style) {
			item := n.Items[i]
			if i != n.Selected {
				style = f.style(item.Role)
			}
			prefix := "  "
			if item.Marked {
				prefix = theme.Symbols.Marked + " "
			}
			detailW := 0
			if item.Detail != "" {
				detailW = min(runewidth.StringWidth(item.Detail)+1, row.Width/2)
				muted := style
				if i != n.Selected {
					muted = f.style(theme.RoleMuted)
				}
				f.buf.SetStringClipped(row.X+row.Width-detailW+1, row.Y, item.Detail, detailW-1, muted)
			}
			f.buf.SetStringClipped(row.X, row.Y, prefix+item.Label, row.Width-detailW, style)
		},
	}, area)
}

func treePrefix(depth int, expandable, expanded, marked bool) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", max(0, depth)))
	switch {
	case !expandable:
		b.WriteString(theme.Symbols.Leaf)
	case expanded:
		b.WriteString(theme.Symbols.Expanded)
	default:
		b.WriteString(theme.Symbols.Collapsed)
	}
	b.WriteByte(' ')
	if marked {
		b.WriteString(theme.Symbols.Marked + " ")
	}
	return b.String()
}

func (f *frame[Msg]) paintTree(n *element.Tree[Msg], area layout.Rect) {
	f.paintRows(rows[Msg]{
		bindings:   &n.Bindings,
		count:      len(n.Rows),
		selected:   n.Selected,
		offset:     n.Offset,
		onNavigate: n.OnNavigate,
		activate:   n.OnSelect,
		clickFires: true,
		onViewport: n.OnViewport,
		draw: func(i int, row layout.Rect, style backend.Style) {
			r := n.Rows[i]
			if i != n.Selected {
				style = f.style(r.Role)
			}
			text := treePrefix(r.Depth, r.Expandable, r.Expanded, r.Marked) + r.Label
			f.buf.SetStringClipped(row.X, row.Y, text, row.Width, style)
		},
	}, area)
}

func (f *frame[Msg]) paintTableTree(n *element.TableTree[Msg], area layout.Rect) {
	if area.Height < 2 || len(n.Columns) == 0 {
		return
	}
	header := area.Row(0)
	widths := make([]layout.Constraint, len(n.Columns))
	for i, c := range n.Columns {
		widths[i] = c.Width
	}
	// Columns are laid out against the body width so they stay aligned
	// when a scrollbar takes the last column.
	bodyW := area.Width
	if len(n.Rows) > area.Height-1 && bodyW > 1 {
		bodyW--
	}
	cols := layout.Split(layout.NewRect(area.X, area.Y, bodyW, 1), layout.Horizontal, widths)
	titleStyle := f.style(theme.RoleMuted).Bold(true)
	for i, c := range n.Columns {
		f.buf.SetStringClipped(cols[i].X, header.Y, c.Title, max(0, cols[i].Width-1), titleStyle)
	}

	f.paintRows(rows[Msg]{
		bindings:   &n.Bindings,
		count:      len(n.Rows),
		selected:   n.Selected,
		offset:     n.Offset,
		onNavigate: n.OnNavigate,
		activate:   n.OnSelect,
		clickFires: true,
		onViewport: n.OnViewport,
		draw: func(i int, row layout.Rect, style backend.Style) {
			r := n.Rows[i]
			if i != n.Selected {
				style = f.style(r.Role)
			}
			for c := range cols {
				if c >= len(r.Cells) {
					break
				}
				text := r.Cells[c]
				if c == 0 {
					text = treePrefix(r.Depth, r.Expandable, r.Expanded, r.Marked) + text
				}
				f.buf.SetStringClipped(cols[c].X, row.Y, text, max(0, cols[c].Width-1), style)
			}
		},
	}, layout.NewRect(area.X, area.Y+1, area.Width, area.Height-1))
}

func (f *frame[Msg]) paintFileBrowser(n *element.FileBrowser[Msg], area layout.Rect) {
	if area.Height < 2 {
		return
	}
	f.buf.SetStringClipped(area.X, area.Y, n.Dir, area.Width, f.style(theme.RoleAccent))
	f.paintRows(rows[Msg]{
		bindings:   &n.Bindings,
		count:      len(n.Entries),
		selected:   n.Selected,
		offset:     n.Offset,
		onNavigate: n.OnNavigate,
		activate:   n.OnOpen,
		onViewport: n.OnViewport,
		empty:      "(empty)",
		draw: func(i int, row layout.Rect, style backend.Style) {
			e := n.Entries[i]
			icon := theme.Symbols.File
			if e.IsDir {
				icon = theme.Symbols.Folder
				if i != n.Selected {
					style = f.style(theme.RoleInfo)
				}
			}
			sizeW := 0
			if !e.IsDir {
				size := formatSize(e.Size)
				sizeW = runewidth.StringWidth(size) + 1
				muted := style
				if i != n.Selected {
					muted = f.style(theme.RoleMuted)
				}
				if sizeW < row.Width/2 {
					f.buf.SetString(row.X+row.Width-sizeW+1, row.Y, size, muted)
				} else {
					sizeW = 0
				}
			}
			name := e.Name
			if e.IsDir {
				name += "/"
			}
			f.buf.SetStringClipped(row.X, row.Y, icon+" "+name, row.Width-sizeW, style)
		},
	}, layout.NewRect(area.X, area.Y+1, area.Width, area.Height-1))
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%c", float64(n)/float64(div), "KMGTPE"[exp])
}
