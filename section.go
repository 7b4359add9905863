package glyphatlas

import (
	"math"

	"github.com/gogpu/glyphatlas/layout"
)

// FontID identifies a font registered with a Cache. Ids are assigned in
// registration order starting at 0.
type FontID uint32

// Section is a run of text queued for the next Update.
type Section struct {
	// Text is the UTF-8 text to draw. '\n' starts a new line.
	Text string

	// Position is the top-left corner of the first line, in pixels.
	Position Point

	// Bounds is the width and height of the box the text is clipped to,
	// starting at Position. Lines wrap at its right edge. A component that
	// is zero, negative or infinite leaves that axis unbounded.
	Bounds Point

	// Scale is the pixel height of the font on each axis. Different values
	// stretch the glyphs.
	Scale Point

	// Color is the text color, carried to every vertex of the section.
	Color Color

	// Font selects a registered font.
	Font FontID
}

// boundsRect returns the clip rectangle of s.
func (s Section) boundsRect() Rect {
	r := InfiniteRect()
	if w := s.Bounds.X; w > 0 && !math.IsInf(float64(w), 1) {
		r.Min.X, r.Max.X = s.Position.X, s.Position.X+w
	}
	if h := s.Bounds.Y; h > 0 && !math.IsInf(float64(h), 1) {
		r.Min.Y, r.Max.Y = s.Position.Y, s.Position.Y+h
	}
	return r
}

func (s Section) layoutSection() layout.Section {
	b := s.boundsRect()
	return layout.Section{
		Text:   s.Text,
		Font:   int(s.Font),
		X:      s.Position.X,
		Y:      s.Position.Y,
		ScaleX: s.Scale.X,
		ScaleY: s.Scale.Y,
		Color:  [4]float32{s.Color.R, s.Color.G, s.Color.B, s.Color.A},
		Bounds: layout.Box{MinX: b.Min.X, MinY: b.Min.Y, MaxX: b.Max.X, MaxY: b.Max.Y},
	}
}

// Vertex is the quad of one drawn glyph: a screen rectangle, the matching
// atlas rectangle in normalized texture coordinates, and the text color.
type Vertex struct {
	Min, Max     Point
	UVMin, UVMax Point
	Color        Color
}
