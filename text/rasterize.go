package text

import (
	"image"
	"math"

	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// GlyphImage is a rasterized glyph.
type GlyphImage struct {
	// Mask is the coverage mask. Its bounds start at (0, 0) and its Pix
	// rows are tightly packed (Stride == width).
	Mask *image.Alpha

	// Offset is the position of the mask's top-left corner relative to the
	// whole-pixel pen position on the baseline.
	Offset image.Point
}

// Size returns the mask dimensions.
func (g *GlyphImage) Size() image.Point {
	return g.Mask.Rect.Size()
}

// Rasterizer renders glyph outlines to coverage masks.
// A Rasterizer reuses internal buffers and is not safe for concurrent use.
type Rasterizer struct {
	buf     sfnt.Buffer
	rast    vector.Rasterizer
	maxSize int
}

// NewRasterizer creates a Rasterizer producing masks of at most maxSize
// pixels on each side. A maxSize of 0 or less means no limit.
func NewRasterizer(maxSize int) *Rasterizer {
	return &Rasterizer{maxSize: maxSize}
}

// Rasterize renders glyph gid of source at ppem pixels per em.
//
// stretchX scales the outline horizontally (1 keeps the font's aspect) and
// offsetX shifts it right by a fraction of a pixel, for subpixel positioning.
// Glyphs without an outline, such as a space, return (nil, nil). A glyph
// whose mask would exceed the size limit returns ErrGlyphTooLarge before
// any mask is allocated.
func (r *Rasterizer) Rasterize(source *FontSource, gid GlyphID, ppem, stretchX, offsetX float64) (*GlyphImage, error) {
	if !(ppem > 0) || !(stretchX > 0) {
		return nil, nil
	}
	if ppem > maxFixed {
		return nil, ErrGlyphTooLarge
	}

	segments, err := source.sfnt.LoadGlyph(&r.buf, sfnt.GlyphIndex(gid), floatToFixed(ppem), nil)
	if err != nil {
		return nil, &FontError{Reason: "failed to load glyph", Err: err}
	}
	if len(segments) == 0 {
		return nil, nil
	}

	sx := float32(stretchX)
	ox := float32(offsetX)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X)/64*sx + ox, float32(p.Y) / 64
	}

	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for _, seg := range segments {
		for _, a := range seg.Args[:argCount(seg.Op)] {
			x, y := pt(a)
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}

	fw, fh := float64(maxX)-float64(minX), float64(maxY)-float64(minY)
	if math.IsInf(fw, 0) || math.IsInf(fh, 0) || math.IsNaN(fw+fh) ||
		(r.maxSize > 0 && (fw > float64(r.maxSize) || fh > float64(r.maxSize))) {
		return nil, ErrGlyphTooLarge
	}
	bounds := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	)
	if bounds.Empty() {
		return nil, nil
	}
	if r.maxSize > 0 && (bounds.Dx() > r.maxSize || bounds.Dy() > r.maxSize) {
		return nil, ErrGlyphTooLarge
	}

	w, h := bounds.Dx(), bounds.Dy()
	dx, dy := float32(-bounds.Min.X), float32(-bounds.Min.Y)
	r.rast.Reset(w, h)
	open := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			// vector.Rasterizer does not close contours on MoveTo.
			if open {
				r.rast.ClosePath()
			}
			open = true
			x, y := pt(seg.Args[0])
			r.rast.MoveTo(x+dx, y+dy)
		case sfnt.SegmentOpLineTo:
			x, y := pt(seg.Args[0])
			r.rast.LineTo(x+dx, y+dy)
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			r.rast.QuadTo(bx+dx, by+dy, cx+dx, cy+dy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			ex, ey := pt(seg.Args[2])
			r.rast.CubeTo(bx+dx, by+dy, cx+dx, cy+dy, ex+dx, ey+dy)
		}
	}
	if open {
		r.rast.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.rast.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	return &GlyphImage{Mask: mask, Offset: bounds.Min}, nil
}

// argCount returns how many of a segment's Args are used.
func argCount(op sfnt.SegmentOp) int {
	switch op {
	case sfnt.SegmentOpQuadTo:
		return 2
	case sfnt.SegmentOpCubeTo:
		return 3
	default:
		return 1
	}
}
