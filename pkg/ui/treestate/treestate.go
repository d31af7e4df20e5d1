// Package treestate tracks expansion, selection and scroll for tree-shaped
// widgets. The visible order is cached and rebuilt lazily after any change
// to expansion or shape.
package treestate

import (
	"github.com/odvcencio/lattice/pkg/ui/element"
)

// State is the navigation state of a tree keyed by K.
type State[K comparable] struct {
	roots    []K
	children func(K) []K

	expanded map[K]bool
	marked   map[K]bool

	selected    K
	hasSelected bool
	anchor      K
	hasAnchor   bool
	offset      int

	cache cache[K]
}

type cache[K comparable] struct {
	valid   bool
	order   []K
	index   map[K]int
	parent  map[K]K
	depth   map[K]int
	hasKids map[K]bool
}

// New creates state over roots whose children are produced by children.
func New[K comparable](roots []K, children func(K) []K) *State[K] {
	s := &State[K]{
		expanded: make(map[K]bool),
		marked:   make(map[K]bool),
	}
	s.SetTree(roots, children)
	return s
}

// SetTree replaces the tree shape. Expansion, marks and selection are kept
// for keys that still exist.
func (s *State[K]) SetTree(roots []K, children func(K) []K) {
	s.roots = roots
	s.children = children
	s.Invalidate()
}

// Invalidate drops the cached visible order. Call it when the children of
// any node change.
func (s *State[K]) Invalidate() {
	s.cache.valid = false
}

func (s *State[K]) build() *cache[K] {
	c := &s.cache
	if c.valid {
		return c
	}
	c.order = nil
	c.index = make(map[K]int)
	c.parent = make(map[K]K)
	c.depth = make(map[K]int)
	c.hasKids = make(map[K]bool)

	var walk func(k K, depth int)
	walk = func(k K, depth int) {
		if _, seen := c.index[k]; seen {
			return
		}
		c.index[k] = len(c.order)
		c.order = append(c.order, k)
		c.depth[k] = depth
		var kids []K
		if s.children != nil {
			kids = s.children(k)
		}
		c.hasKids[k] = len(kids) > 0
		if !s.expanded[k] {
			return
		}
		for _, child := range kids {
			c.parent[child] = k
			walk(child, depth+1)
		}
	}
	for _, r := range s.roots {
		walk(r, 0)
	}
	c.valid = true

	if s.hasSelected {
		if _, ok := c.index[s.selected]; !ok {
			s.hasSelected = false
		}
	}
	if !s.hasSelected && len(c.order) > 0 {
		s.selected, s.hasSelected = c.order[0], true
	}
	return c
}

// Visible returns the keys in display order.
func (s *State[K]) Visible() []K {
	return s.build().order
}

// Len returns the number of visible rows.
func (s *State[K]) Len() int {
	return len(s.build().order)
}

// Depth returns the nesting depth of a visible key.
func (s *State[K]) Depth(k K) int {
	return s.build().depth[k]
}

// Parent returns the parent of a visible key.
func (s *State[K]) Parent(k K) (K, bool) {
	p, ok := s.build().parent[k]
	return p, ok
}

// Expandable reports whether k has children.
func (s *State[K]) Expandable(k K) bool {
	return s.build().hasKids[k]
}

// Expanded reports whether k is expanded.
func (s *State[K]) Expanded(k K) bool {
	return s.expanded[k]
}

// Marked reports whether k is in the multi-selection.
func (s *State[K]) Marked(k K) bool {
	return s.marked[k]
}

// MarkedKeys returns the multi-selection in visible order.
func (s *State[K]) MarkedKeys() []K {
	var out []K
	for _, k := range s.build().order {
		if s.marked[k] {
			out = append(out, k)
		}
	}
	return out
}

// Selected returns the primary selection.
func (s *State[K]) Selected() (K, bool) {
	s.build()
	return s.selected, s.hasSelected
}

// SelectedIndex returns the visible index of the selection, or -1.
func (s *State[K]) SelectedIndex() int {
	c := s.build()
	if !s.hasSelected {
		return -1
	}
	return c.index[s.selected]
}

// Offset returns the scroll offset set by the last UpdateScroll.
func (s *State[K]) Offset() int {
	return s.offset
}

// Select makes k the primary selection if it is visible.
func (s *State[K]) Select(k K) bool {
	c := s.build()
	if _, ok := c.index[k]; !ok {
		return false
	}
	changed := !s.hasSelected || s.selected != k
	s.selected, s.hasSelected = k, true
	s.hasAnchor = false
	return changed
}

// SelectIndex selects the visible row at i.
func (s *State[K]) SelectIndex(i int) bool {
	c := s.build()
	if i < 0 || i >= len(c.order) {
		return false
	}
	return s.Select(c.order[i])
}

func (s *State[K]) moveTo(i int) bool {
	c := s.build()
	if len(c.order) == 0 {
		return false
	}
	i = min(max(i, 0), len(c.order)-1)
	return s.Select(c.order[i])
}

// Next moves the selection down one visible row.
func (s *State[K]) Next() bool {
	return s.moveTo(s.SelectedIndex() + 1)
}

// Prev moves the selection up one visible row.
func (s *State[K]) Prev() bool {
	i := s.SelectedIndex()
	if i <= 0 {
		return false
	}
	return s.moveTo(i - 1)
}

// ToParent selects the parent of the selection.
func (s *State[K]) ToParent() bool {
	if !s.hasSelected {
		return false
	}
	p, ok := s.Parent(s.selected)
	if !ok {
		return false
	}
	return s.Select(p)
}

// ExtendNext moves the selection down and marks every row between the
// range anchor and the new selection.
func (s *State[K]) ExtendNext() bool {
	return s.extend(1)
}

// ExtendPrev is ExtendNext upwards.
func (s *State[K]) ExtendPrev() bool {
	return s.extend(-1)
}

func (s *State[K]) extend(dir int) bool {
	c := s.build()
	if !s.hasSelected {
		return false
	}
	anchor := s.selected
	if s.hasAnchor {
		if _, ok := c.index[s.anchor]; ok {
			anchor = s.anchor
		}
	}
	i := c.index[s.selected] + dir
	if i < 0 || i >= len(c.order) {
		return false
	}
	s.selected = c.order[i]

	lo, hi := c.index[anchor], i
	if lo > hi {
		lo, hi = hi, lo
	}
	clear(s.marked)
	for _, k := range c.order[lo : hi+1] {
		s.marked[k] = true
	}
	s.anchor, s.hasAnchor = anchor, true
	return true
}

// ToggleMark flips the selection's membership in the multi-selection.
func (s *State[K]) ToggleMark() bool {
	if !s.hasSelected {
		return false
	}
	if s.marked[s.selected] {
		delete(s.marked, s.selected)
	} else {
		s.marked[s.selected] = true
	}
	s.anchor, s.hasAnchor = s.selected, true
	return true
}

// ClearMarks empties the multi-selection.
func (s *State[K]) ClearMarks() {
	clear(s.marked)
	s.hasAnchor = false
}

// Toggle expands or collapses the selection.
func (s *State[K]) Toggle() bool {
	if !s.hasSelected {
		return false
	}
	if s.expanded[s.selected] {
		return s.Collapse(s.selected)
	}
	return s.Expand(s.selected)
}

// Expand shows the children of k.
func (s *State[K]) Expand(k K) bool {
	if s.expanded[k] || !s.Expandable(k) {
		return false
	}
	s.expanded[k] = true
	s.Invalidate()
	return true
}

// Collapse hides the children of k. A selection inside the collapsed
// subtree moves to k.
func (s *State[K]) Collapse(k K) bool {
	if !s.expanded[k] {
		return false
	}
	if s.hasSelected && s.isAncestor(k, s.selected) {
		s.selected = k
	}
	delete(s.expanded, k)
	s.Invalidate()
	return true
}

func (s *State[K]) isAncestor(a, k K) bool {
	c := s.build()
	for {
		p, ok := c.parent[k]
		if !ok {
			return false
		}
		if p == a {
			return true
		}
		k = p
	}
}

// UpdateScroll keeps the selection at least scrollOff rows from either edge
// of a viewport of the given height and returns the new offset.
func (s *State[K]) UpdateScroll(viewport, scrollOff int) int {
	count := s.Len()
	if viewport <= 0 || count <= viewport {
		s.offset = 0
		return 0
	}
	sel := max(s.SelectedIndex(), 0)
	off := s.offset
	off = max(off, sel-(viewport-scrollOff-1))
	off = min(off, sel-scrollOff)
	s.offset = min(max(off, 0), count-viewport)
	return s.offset
}

// Navigate applies a navigation intent. Left collapses or climbs to the
// parent, right expands, enter toggles and space marks.
func (s *State[K]) Navigate(n element.Nav, page int) bool {
	switch n {
	case element.NavUp:
		return s.Prev()
	case element.NavDown:
		return s.Next()
	case element.NavExtendUp:
		return s.ExtendPrev()
	case element.NavExtendDown:
		return s.ExtendNext()
	case element.NavLeft:
		if s.hasSelected && s.expanded[s.selected] {
			return s.Collapse(s.selected)
		}
		return s.ToParent()
	case element.NavRight:
		if s.hasSelected {
			return s.Expand(s.selected)
		}
	case element.NavSelect:
		return s.Toggle()
	case element.NavToggle:
		return s.ToggleMark()
	case element.NavPageUp, element.NavPageDown, element.NavHome, element.NavEnd:
		return s.moveTo(element.Step(n, s.SelectedIndex(), s.Len(), page))
	}
	return false
}

// Rows renders the visible order as tree rows using label for text.
func (s *State[K]) Rows(label func(K) string) []element.TreeRow {
	c := s.build()
	rows := make([]element.TreeRow, len(c.order))
	for i, k := range c.order {
		rows[i] = element.TreeRow{
			Label:      label(k),
			Depth:      c.depth[k],
			Expandable: c.hasKids[k],
			Expanded:   s.expanded[k],
			Marked:     s.marked[k],
		}
	}
	return rows
}
