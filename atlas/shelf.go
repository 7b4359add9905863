package atlas

import "image"

// ShelfAllocator packs rectangles into horizontal shelves.
//
// Rectangles are placed left-to-right on a shelf whose height is set by the
// tallest rectangle placed on it so far. When a rectangle fits on no shelf a
// new one is opened below the last. Glyphs of one font size have similar
// heights, so shelves waste little space for text.
type ShelfAllocator struct {
	width   int
	height  int
	padding int
	shelves []shelf

	usedArea int
}

// shelf is a horizontal strip of the packing area.
type shelf struct {
	y      int // top edge
	height int // tallest rectangle so far
	x      int // next free column
}

// NewShelfAllocator creates an allocator for a width x height area.
// Padding texels are kept free to the right of and below every rectangle.
func NewShelfAllocator(width, height, padding int) *ShelfAllocator {
	return &ShelfAllocator{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// Allocate reserves a w x h rectangle and returns its position.
// It returns false when the rectangle does not fit anywhere.
func (a *ShelfAllocator) Allocate(w, h int) (image.Rectangle, bool) {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}, false
	}
	paddedW := w + a.padding
	paddedH := h + a.padding

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.x+paddedW > a.width {
			continue
		}
		if h > s.height {
			// Only the last shelf can grow, and only into free space below.
			if i != len(a.shelves)-1 || s.y+paddedH > a.height {
				continue
			}
			s.height = h
		}
		r := image.Rect(s.x, s.y, s.x+w, s.y+h)
		s.x += paddedW
		a.usedArea += w * h
		return r, true
	}

	newY := a.nextShelfY()
	if newY+paddedH > a.height || paddedW > a.width {
		return image.Rectangle{}, false
	}
	a.shelves = append(a.shelves, shelf{y: newY, height: h, x: paddedW})
	a.usedArea += w * h
	return image.Rect(0, newY, w, newY+h), true
}

func (a *ShelfAllocator) nextShelfY() int {
	if len(a.shelves) == 0 {
		return 0
	}
	last := a.shelves[len(a.shelves)-1]
	return last.y + last.height + a.padding
}

// Reset forgets every allocation.
func (a *ShelfAllocator) Reset() {
	a.shelves = a.shelves[:0]
	a.usedArea = 0
}

// Utilization returns the fraction of the area covered by allocations.
func (a *ShelfAllocator) Utilization() float64 {
	if a.width <= 0 || a.height <= 0 {
		return 0
	}
	return float64(a.usedArea) / float64(a.width*a.height)
}

// FitsAll reports whether every size in sizes can be packed, in order, into
// an empty width x height area with the given padding.
func FitsAll(width, height, padding int, sizes []image.Point) bool {
	trial := NewShelfAllocator(width, height, padding)
	for _, sz := range sizes {
		if _, ok := trial.Allocate(sz.X, sz.Y); !ok {
			return false
		}
	}
	return true
}
