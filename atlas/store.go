// Package atlas provides the CPU-side glyph texture used by glyphatlas.
//
// A Store holds a single-channel coverage image (one byte per texel, 0 is
// empty and 255 is fully covered) together with a dirty flag that tells the
// consumer whether the pixels changed since it last read them. The
// ShelfAllocator packs rectangles into a Store-sized area.
package atlas

import (
	"fmt"
	"image"
	"sync/atomic"
)

// Store is a single-channel coverage texture.
//
// Store is not safe for concurrent mutation; the owner serializes WriteBlock,
// Resize and Clear. ReadAndClearDirty and Dirty may run concurrently with
// each other because the dirty flag is atomic.
type Store struct {
	width  int
	height int
	pix    []byte

	dirty atomic.Bool
}

// NewStore creates a zeroed store with the given dimensions.
func NewStore(width, height int) (*Store, error) {
	if width <= 0 || height <= 0 {
		return nil, &SizeError{Width: width, Height: height}
	}
	return &Store{
		width:  width,
		height: height,
		pix:    make([]byte, width*height),
	}, nil
}

// Dimensions returns the width and height of the texture in texels.
func (s *Store) Dimensions() (width, height int) {
	return s.width, s.height
}

// Bounds returns the texture rectangle [0,width)x[0,height).
func (s *Store) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.width, s.height)
}

// WriteBlock copies a coverage bitmap into the texture at dst.
// The source rows are packed with a stride of dst.Dx(). The destination
// rectangle must lie inside the texture and src must hold at least
// dst.Dx()*dst.Dy() bytes; otherwise nothing is written and a
// *BoundsError is returned.
func (s *Store) WriteBlock(dst image.Rectangle, src []byte) error {
	if dst.Empty() {
		return nil
	}
	if !dst.In(s.Bounds()) {
		return &BoundsError{Rect: dst, Width: s.width, Height: s.height}
	}
	w, h := dst.Dx(), dst.Dy()
	if len(src) < w*h {
		return &BoundsError{Rect: dst, Width: s.width, Height: s.height, Short: true, SourceLen: len(src)}
	}

	for y := 0; y < h; y++ {
		off := (dst.Min.Y+y)*s.width + dst.Min.X
		copy(s.pix[off:off+w], src[y*w:(y+1)*w])
	}
	s.dirty.Store(true)
	return nil
}

// Resize reallocates the texture. Previous contents are discarded, the
// new texture is zeroed and marked dirty.
func (s *Store) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return &SizeError{Width: width, Height: height}
	}
	s.width = width
	s.height = height
	s.pix = make([]byte, width*height)
	s.dirty.Store(true)
	return nil
}

// Clear zeroes every texel and marks the texture dirty.
func (s *Store) Clear() {
	clear(s.pix)
	s.dirty.Store(true)
}

// ReadAndClearDirty returns the pixel buffer and whether it changed since
// the previous call, then clears the flag.
//
// The returned slice aliases the store; it is valid until the next
// WriteBlock, Resize or Clear.
func (s *Store) ReadAndClearDirty() (pix []byte, dirty bool) {
	return s.pix, s.dirty.Swap(false)
}

// Dirty reports whether the texture changed since the last
// ReadAndClearDirty without clearing the flag.
func (s *Store) Dirty() bool {
	return s.dirty.Load()
}

// Image returns a copy of the texture as an *image.Alpha.
func (s *Store) Image() *image.Alpha {
	img := image.NewAlpha(s.Bounds())
	copy(img.Pix, s.pix)
	return img
}

// BoundsError reports a write that does not fit the texture.
type BoundsError struct {
	Rect          image.Rectangle
	Width, Height int

	// Short is set when the rectangle fits but the source buffer holds
	// fewer than Rect.Dx()*Rect.Dy() bytes.
	Short     bool
	SourceLen int
}

func (e *BoundsError) Error() string {
	if e.Short {
		return fmt.Sprintf("atlas: source of %d bytes is too short for block %v", e.SourceLen, e.Rect)
	}
	return fmt.Sprintf("atlas: block %v outside %dx%d texture", e.Rect, e.Width, e.Height)
}

// SizeError reports invalid texture dimensions.
type SizeError struct {
	Width, Height int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("atlas: invalid texture size %dx%d", e.Width, e.Height)
}
