package text

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
)

// GlyphID is a unique identifier for a glyph within a font.
// Glyph 0 is the font's .notdef glyph, used for runes the font cannot map.
type GlyphID uint16

// ShapedGlyph is a glyph positioned by the shaper.
// Positions are in pixels relative to the start of the run on the baseline.
type ShapedGlyph struct {
	// GID is the glyph index in the font.
	GID GlyphID

	// Cluster is the index of the first rune of the glyph's cluster.
	Cluster int

	// X, Y are the pen position of the glyph including shaping offsets.
	X, Y float64

	// XAdvance is the horizontal advance to the next glyph.
	XAdvance float64
}

// Shaper converts text to positioned glyphs.
type Shaper interface {
	// Shape converts a single line of text into glyphs at ppem pixels per em.
	Shape(text string, source *FontSource, ppem float64) []ShapedGlyph
}

// GoTextShaper shapes text with the HarfBuzz port of go-text/typesetting,
// applying kerning, ligatures and complex script rules.
//
// GoTextShaper is safe for concurrent use. font.Face and HarfbuzzShaper
// carry mutable state, so a fresh face is created per call and shapers are
// pooled.
type GoTextShaper struct {
	shaperPool sync.Pool
}

// NewGoTextShaper creates a new GoTextShaper.
func NewGoTextShaper() *GoTextShaper {
	return &GoTextShaper{
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Shape implements the Shaper interface.
// It returns nil for empty text, a nil source or a non-positive ppem.
func (s *GoTextShaper) Shape(text string, source *FontSource, ppem float64) []ShapedGlyph {
	if text == "" || source == nil || !(ppem > 0) {
		return nil
	}

	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      font.NewFace(source.shaped),
		Size:      floatToFixed(ppem),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}

	hb := s.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.shaperPool.Put(hb)

	return convertGlyphs(output.Glyphs)
}

// detectScript returns the script of the first non-space rune.
// Mixed-script lines are shaped with that single script.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// convertGlyphs converts go-text glyphs to ShapedGlyph, accumulating the pen.
func convertGlyphs(glyphs []shaping.Glyph) []ShapedGlyph {
	if len(glyphs) == 0 {
		return nil
	}

	result := make([]ShapedGlyph, len(glyphs))
	var x float64
	for i, g := range glyphs {
		adv := fixedToFloat(g.Advance)
		result[i] = ShapedGlyph{
			GID:      GlyphID(uint16(g.GlyphID)), //nolint:gosec // glyph ids of TrueType fonts fit uint16
			Cluster:  g.TextIndex(),
			X:        x + fixedToFloat(g.XOffset),
			Y:        -fixedToFloat(g.YOffset),
			XAdvance: adv,
		}
		x += adv
	}
	return result
}
