package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrGlyphTooLarge is returned when a glyph mask would exceed the
	// rasterizer's size limit.
	ErrGlyphTooLarge = errors.New("text: glyph too large")
)

// FontError represents a font-related error.
type FontError struct {
	Reason string
	Err    error
}

func (e *FontError) Error() string {
	if e.Err != nil {
		return "text: " + e.Reason + ": " + e.Err.Error()
	}
	return "text: " + e.Reason
}

func (e *FontError) Unwrap() error {
	return e.Err
}
