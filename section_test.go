package glyphatlas

import (
	"math"
	"testing"
)

func TestSection_BoundsRect(t *testing.T) {
	inf := float32(math.Inf(1))

	tests := []struct {
		name   string
		pos    Point
		bounds Point
		want   Rect
	}{
		{"zero is unbounded", Pt(3, 4), Pt(0, 0), InfiniteRect()},
		{"box from position", Pt(3, 4), Pt(5, 5), R(3, 4, 8, 9)},
		{"width only", Pt(3, 4), Pt(10, 0), R(3, -inf, 13, inf)},
		{"height only", Pt(3, 4), Pt(0, 10), R(-inf, 4, inf, 14)},
		{"infinite", Pt(3, 4), Pt(inf, inf), InfiniteRect()},
		{"negative", Pt(3, 4), Pt(-1, -1), InfiniteRect()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Section{Position: tt.pos, Bounds: tt.bounds}
			if got := s.boundsRect(); got != tt.want {
				t.Errorf("boundsRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSection_LayoutSection(t *testing.T) {
	s := Section{
		Text:     "abc",
		Position: Pt(1, 2),
		Bounds:   Pt(10, 20),
		Scale:    Pt(12, 14),
		Color:    RGBA(0.1, 0.2, 0.3, 0.4),
		Font:     3,
	}
	ls := s.layoutSection()

	if ls.Text != "abc" || ls.Font != 3 || ls.X != 1 || ls.Y != 2 || ls.ScaleX != 12 || ls.ScaleY != 14 {
		t.Errorf("layoutSection() = %+v", ls)
	}
	if ls.Color != [4]float32{0.1, 0.2, 0.3, 0.4} {
		t.Errorf("Color = %v", ls.Color)
	}
	if ls.Bounds.MinX != 1 || ls.Bounds.MaxX != 11 || ls.Bounds.MinY != 2 || ls.Bounds.MaxY != 22 {
		t.Errorf("Bounds = %+v", ls.Bounds)
	}
}
