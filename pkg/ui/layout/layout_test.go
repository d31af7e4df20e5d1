package layout

import (
	"reflect"
	"testing"
)

func TestSizes(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		constraints []Constraint
		want        []int
	}{
		{"lengths only", 10, []Constraint{Length(3), Length(4)}, []int{3, 4}},
		{"length clipped", 5, []Constraint{Length(3), Length(4)}, []int{3, 2}},
		{"fill takes rest", 10, []Constraint{Length(3), Fill(1)}, []int{3, 7}},
		{"weighted fill", 10, []Constraint{Fill(1), Fill(3)}, []int{2, 8}},
		{"fill remainder to last", 10, []Constraint{Fill(1), Fill(1), Fill(1)}, []int{3, 3, 4}},
		{"min before fill", 10, []Constraint{Min(4), Fill(1)}, []int{4, 6}},
		{"min absorbs leftover", 10, []Constraint{Length(2), Min(3)}, []int{2, 8}},
		{"mins split leftover", 11, []Constraint{Min(1), Min(1)}, []int{5, 6}},
		{"zero space", 0, []Constraint{Length(3), Fill(1)}, []int{0, 0}},
		{"lengths served before mins", 4, []Constraint{Min(3), Length(3)}, []int{1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sizes(tt.total, tt.constraints)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sizes(%d, %v) = %v, want %v", tt.total, tt.constraints, got, tt.want)
			}
		})
	}
}

func TestSplitVerticalAndHorizontal(t *testing.T) {
	area := NewRect(2, 1, 20, 10)

	rows := Split(area, Vertical, []Constraint{Length(3), Fill(1)})
	if rows[0] != NewRect(2, 1, 20, 3) || rows[1] != NewRect(2, 4, 20, 7) {
		t.Errorf("vertical split = %v", rows)
	}

	cols := Split(area, Horizontal, []Constraint{Fill(1), Length(5)})
	if cols[0] != NewRect(2, 1, 15, 10) || cols[1] != NewRect(17, 1, 5, 10) {
		t.Errorf("horizontal split = %v", cols)
	}
}

func TestAlign(t *testing.T) {
	area := NewRect(0, 0, 20, 10)
	tests := []struct {
		a    Alignment
		want Rect
	}{
		{AlignFill, area},
		{AlignCenter, NewRect(5, 3, 10, 4)},
		{AlignTopLeft, NewRect(0, 0, 10, 4)},
		{AlignTop, NewRect(5, 0, 10, 4)},
		{AlignBottomRight, NewRect(10, 6, 10, 4)},
		{AlignLeft, NewRect(0, 3, 10, 4)},
	}
	for _, tt := range tests {
		if got := Align(area, tt.a, 10, 4); got != tt.want {
			t.Errorf("Align(%d) = %v, want %v", tt.a, got, tt.want)
		}
	}
	if got := Align(area, AlignCenter, 50, 0); got != area {
		t.Errorf("oversized box should clip to area, got %v", got)
	}
}

func TestRectHelpers(t *testing.T) {
	r := NewRect(1, 1, 4, 3)
	if !r.Contains(1, 1) || r.Contains(5, 1) || r.Contains(1, 4) {
		t.Error("Contains boundaries wrong")
	}
	if got := r.Shrink(1); got != NewRect(2, 2, 2, 1) {
		t.Errorf("Shrink = %v", got)
	}
	if got := r.Intersection(NewRect(3, 2, 10, 10)); got != NewRect(3, 2, 2, 2) {
		t.Errorf("Intersection = %v", got)
	}
	if !NewRect(0, 0, 0, 5).Empty() {
		t.Error("zero width rect should be empty")
	}
	if got := r.Row(2); got != NewRect(1, 3, 4, 1) {
		t.Errorf("Row = %v", got)
	}
}

func TestClampOffset(t *testing.T) {
	if ClampOffset(5, 3, 10) != 0 {
		t.Error("small lists always start at 0")
	}
	if ClampOffset(50, 20, 5) != 15 {
		t.Error("offset clamps to count-viewport")
	}
	if ClampOffset(-2, 20, 5) != 0 {
		t.Error("negative offset clamps to 0")
	}
}
