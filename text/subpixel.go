package text

import "math"

// SubpixelMode controls horizontal subpixel glyph positioning.
// With N divisions a glyph is rasterized up to N times, once per
// fractional pen offset k/N, so text at fractional positions keeps even
// spacing.
type SubpixelMode int

const (
	// SubpixelNone snaps glyphs to whole pixels.
	SubpixelNone SubpixelMode = 0

	// Subpixel4 uses 4 positions (0.0, 0.25, 0.5, 0.75).
	Subpixel4 SubpixelMode = 4

	// Subpixel10 uses 10 positions (0.0, 0.1, ..., 0.9).
	Subpixel10 SubpixelMode = 10
)

// String returns the string representation of the subpixel mode.
func (m SubpixelMode) String() string {
	switch m {
	case SubpixelNone:
		return "None"
	case Subpixel4:
		return "Subpixel4"
	case Subpixel10:
		return "Subpixel10"
	default:
		return "Unknown"
	}
}

// IsEnabled returns true if subpixel positioning is enabled.
func (m SubpixelMode) IsEnabled() bool {
	return m > 0
}

// Divisions returns the number of subpixel divisions (1 when disabled).
func (m SubpixelMode) Divisions() int {
	if m <= 0 {
		return 1
	}
	return int(m)
}

// Quantize splits pos into a whole pixel and a subpixel bin.
//
// With Subpixel4:
//   - 10.0 returns (10, 0)
//   - 10.3 returns (10, 1)
//   - 10.99 returns (10, 3)
//   - -0.5 returns (-1, 2)
//
// With SubpixelNone pos is rounded to the nearest pixel and bin is 0.
func Quantize(pos float64, mode SubpixelMode) (intPos int, bin uint8) {
	if !mode.IsEnabled() {
		return int(math.Floor(pos + 0.5)), 0
	}

	floor := math.Floor(pos)
	frac := pos - floor
	n := mode.Divisions()
	b := int(frac * float64(n))
	b = min(max(b, 0), n-1)
	return int(floor), uint8(b) //nolint:gosec // b is in [0, n-1] and n <= 255 in practice
}

// SubpixelOffset returns the fractional pen offset of a bin.
func SubpixelOffset(bin uint8, mode SubpixelMode) float64 {
	if !mode.IsEnabled() {
		return 0
	}
	return float64(bin) / float64(mode.Divisions())
}
