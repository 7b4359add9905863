// Package cache provides a generic LRU cache.
//
// The layout engine keeps shaped lines here between update cycles, keyed by
// font, size and line text, so unchanged text is not shaped again:
//
//	lines := cache.New[lineKey, []text.ShapedGlyph](1024)
//	glyphs := lines.GetOrCreate(key, func() []text.ShapedGlyph {
//		return shaper.Shape(line, source, ppem)
//	})
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
