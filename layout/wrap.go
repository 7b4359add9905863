package layout

import (
	"math"

	"github.com/gogpu/glyphatlas/text"
)

// breakClass is a simplified UAX #14 line breaking class.
type breakClass uint8

const (
	breakOther breakClass = iota
	breakSpace
	breakZero
	breakOpen
	breakClose
	breakHyphen
	breakIdeographic
)

func classifyRune(r rune) breakClass {
	switch r {
	case ' ', '\t':
		return breakSpace
	case '\u200B': // zero-width space
		return breakZero
	case '(', '[', '{', '\u201C', '\u2018':
		return breakOpen
	case ')', ']', '}', '\u201D', '\u2019':
		return breakClose
	case '-', '\u2010', '\u2013', '\u2014':
		return breakHyphen
	}
	if isCJKRune(r) {
		return breakIdeographic
	}
	return breakOther
}

// isCJKRune returns true if the rune is a CJK character that allows breaking.
func isCJKRune(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || // CJK Unified Ideographs
		(r >= 0x3400 && r <= 0x4DBF) || // CJK Extension A
		(r >= 0x20000 && r <= 0x2A6DF) || // CJK Extension B
		(r >= 0x3040 && r <= 0x309F) || // Hiragana
		(r >= 0x30A0 && r <= 0x30FF) || // Katakana
		(r >= 0xAC00 && r <= 0xD7AF) || // Hangul Syllables
		(r >= 0xFF00 && r <= 0xFFEF) // Fullwidth forms
}

// breakOpportunities returns, for each rune, whether a line may break
// before it. Index 0 is always false.
func breakOpportunities(runes []rune) []bool {
	breaks := make([]bool, len(runes))
	for i := 1; i < len(runes); i++ {
		prev, curr := classifyRune(runes[i-1]), classifyRune(runes[i])
		switch {
		case curr == breakClose || prev == breakOpen:
		case prev == breakZero, prev == breakSpace && curr != breakSpace:
			breaks[i] = true
		case prev == breakHyphen && curr != breakHyphen:
			breaks[i] = true
		case curr == breakIdeographic || prev == breakIdeographic:
			breaks[i] = true
		}
	}
	return breaks
}

// row is one visual line of shaped glyphs.
type row struct {
	glyphs []text.ShapedGlyph
	// startX is the shaped x of the row's left edge.
	startX float64
}

// wrapGlyphs splits the shaped glyphs of line into rows no wider than
// maxWidth, breaking at word boundaries. A word wider than maxWidth stays
// on its own row and overflows. Spaces at the end of a row may overflow.
// An empty line yields one empty row.
func wrapGlyphs(line string, glyphs []text.ShapedGlyph, maxWidth float64) []row {
	if len(glyphs) == 0 || math.IsInf(maxWidth, 1) || math.IsNaN(maxWidth) {
		return []row{{glyphs: glyphs}}
	}

	runes := []rune(line)
	breaks := breakOpportunities(runes)
	inRange := func(g text.ShapedGlyph) bool {
		return g.Cluster >= 0 && g.Cluster < len(runes)
	}

	var rows []row
	start, startX, lastBreak := 0, 0.0, -1
	for i := start; i < len(glyphs); i++ {
		g := glyphs[i]
		// Glyphs of one cluster never split.
		if i > start && g.Cluster != glyphs[i-1].Cluster && inRange(g) && breaks[g.Cluster] {
			lastBreak = i
		}
		if g.X+g.XAdvance-startX <= maxWidth || lastBreak <= start {
			continue
		}
		if inRange(g) && classifyRune(runes[g.Cluster]) == breakSpace {
			continue
		}
		rows = append(rows, row{glyphs: glyphs[start:lastBreak], startX: startX})
		start, startX = lastBreak, glyphs[lastBreak].X
		lastBreak = -1
		i = start
	}
	return append(rows, row{glyphs: glyphs[start:], startX: startX})
}
