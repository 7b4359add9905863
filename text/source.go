package text

import (
	"bytes"
	"fmt"
	"math"
	"os"

	gotext "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// FontSource represents a loaded font file.
//
// The font is parsed twice at creation: once by golang.org/x/image for
// metrics and outlines, once by go-text/typesetting for shaping. Both parsed
// forms are read-only, so FontSource is safe for concurrent use.
// FontSource must not be copied after creation.
type FontSource struct {
	// addr is used for copy protection. It must point to the FontSource itself.
	addr *FontSource

	data   []byte
	sfnt   *opentype.Font
	shaped *gotext.Font
	name   string

	// unitHeight is ascent+descent in font units.
	unitHeight float64
	upem       int
}

// NewFontSource creates a FontSource from font data (TTF or OTF).
// The data slice is copied internally and can be reused after this call.
func NewFontSource(data []byte) (*FontSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)

	f, err := opentype.Parse(dataCopy)
	if err != nil {
		return nil, &FontError{Reason: "failed to parse font", Err: err}
	}

	face, err := gotext.ParseTTF(bytes.NewReader(dataCopy))
	if err != nil {
		return nil, &FontError{Reason: "failed to parse font for shaping", Err: err}
	}

	s := &FontSource{
		data:   dataCopy,
		sfnt:   f,
		shaped: face.Font,
		upem:   int(f.UnitsPerEm()),
	}
	s.addr = s
	s.name = extractFontName(f)

	// Metrics at ppem == upem are expressed in font units.
	m := s.metrics(float64(s.upem))
	s.unitHeight = m.Ascent + m.Descent

	return s, nil
}

// NewFontSourceFromFile loads a FontSource from a font file path.
func NewFontSourceFromFile(path string) (*FontSource, error) {
	// #nosec G304 -- Font file path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("text: failed to read font file: %w", err)
	}
	return NewFontSource(data)
}

// Name returns the font family name.
func (s *FontSource) Name() string {
	s.copyCheck()
	return s.name
}

// UnitsPerEm returns the font's design units per em.
func (s *FontSource) UnitsPerEm() int {
	s.copyCheck()
	return s.upem
}

// PPEMForHeight returns the ppem at which ascent minus descent of the font
// spans px pixels.
func (s *FontSource) PPEMForHeight(px float64) float64 {
	s.copyCheck()
	if s.unitHeight <= 0 {
		return px
	}
	return px * float64(s.upem) / s.unitHeight
}

// Metrics returns the font metrics at the given ppem.
func (s *FontSource) Metrics(ppem float64) FontMetrics {
	s.copyCheck()
	return s.metrics(ppem)
}

func (s *FontSource) metrics(ppem float64) FontMetrics {
	var buf sfnt.Buffer
	m, err := s.sfnt.Metrics(&buf, floatToFixed(ppem), font.HintingNone)
	if err != nil {
		return FontMetrics{}
	}
	ascent := fixedToFloat(m.Ascent)
	descent := fixedToFloat(m.Descent)
	return FontMetrics{
		Ascent:  ascent,
		Descent: descent,
		LineGap: max(fixedToFloat(m.Height)-ascent-descent, 0),
	}
}

// copyCheck panics if FontSource was copied by value.
func (s *FontSource) copyCheck() {
	if s.addr != s {
		panic("text: FontSource must not be copied by value")
	}
}

// extractFontName returns the family name, the full name, or a fallback.
func extractFontName(f *opentype.Font) string {
	for _, id := range []sfnt.NameID{sfnt.NameIDFamily, sfnt.NameIDFull} {
		if name, err := f.Name(nil, id); err == nil && name != "" {
			return name
		}
	}
	return "Unknown Font"
}

// FontMetrics holds font-level metrics at a specific size, in pixels.
type FontMetrics struct {
	// Ascent is the distance from the baseline to the top of the line.
	Ascent float64

	// Descent is the distance from the baseline to the bottom of the line
	// (positive).
	Descent float64

	// LineGap is the extra space between lines.
	LineGap float64
}

// LineHeight returns the baseline-to-baseline distance.
func (m FontMetrics) LineHeight() float64 {
	return m.Ascent + m.Descent + m.LineGap
}

// maxFixed is the largest value representable as fixed.Int26_6.
const maxFixed = math.MaxInt32 / 64

// floatToFixed converts a float64 size to fixed.Int26_6, saturating at the
// representable range. NaN converts to 0.
func floatToFixed(v float64) fixed.Int26_6 {
	if math.IsNaN(v) {
		return 0
	}
	return fixed.Int26_6(math.Round(min(max(v, -maxFixed), maxFixed) * 64))
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
