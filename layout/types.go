package layout

import (
	"image"
	"math"
)

// Box is an axis-aligned rectangle in screen space. Its edges may be
// infinite.
type Box struct {
	MinX, MinY, MaxX, MaxY float32
}

// Unbounded returns the box covering the whole plane.
func Unbounded() Box {
	inf := float32(math.Inf(1))
	return Box{MinX: -inf, MinY: -inf, MaxX: inf, MaxY: inf}
}

// Section is a run of text to lay out.
type Section struct {
	// Text is the UTF-8 text. '\n' starts a new line.
	Text string

	// Font is the id returned by Engine.AddFont.
	Font int

	// X, Y is the top-left corner of the first line.
	X, Y float32

	// ScaleX, ScaleY is the pixel height of the font on each axis.
	ScaleX, ScaleY float32

	// Color is straight-alpha RGBA.
	Color [4]float32

	// Bounds limits the section. Lines wrap at Bounds.MaxX and glyph quads
	// are clipped to it by the caller.
	Bounds Box
}

// ActionKind tells the caller what to do after Engine.Process.
type ActionKind int

const (
	// ActionDraw replaces the drawn quads with Action.Quads.
	ActionDraw ActionKind = iota

	// ActionRedraw keeps the quads of the previous draw.
	ActionRedraw

	// ActionResize asks for a larger atlas of at least Action.Suggested.
	ActionResize
)

// String returns the string representation of the action kind.
func (k ActionKind) String() string {
	switch k {
	case ActionDraw:
		return "Draw"
	case ActionRedraw:
		return "Redraw"
	case ActionResize:
		return "Resize"
	default:
		return "Unknown"
	}
}

// Action is the outcome of one Engine.Process cycle.
type Action struct {
	Kind ActionKind

	// Quads is set for ActionDraw, in section order.
	Quads []Quad

	// Suggested is set for ActionResize.
	Suggested image.Point
}

// Quad places one glyph.
type Quad struct {
	// Screen is the glyph rectangle in screen pixels.
	Screen image.Rectangle

	// Tex is the glyph rectangle in the atlas.
	Tex image.Rectangle

	// Color and Bounds are copied from the glyph's section.
	Color  [4]float32
	Bounds Box
}

// Target applies the texture writes of a cycle to the atlas.
type Target interface {
	// Clear zeroes the whole atlas. It comes before the uploads of a cycle
	// that repacked the atlas, so no texels of evicted glyphs remain.
	Clear()

	// Write copies one glyph bitmap into the atlas.
	Write(Upload)
}

// Upload is a glyph bitmap to copy into the atlas.
type Upload struct {
	// Rect is the destination in the atlas.
	Rect image.Rectangle

	// Pix holds one coverage byte per texel, Rect.Dx() bytes per row.
	Pix []byte
}
