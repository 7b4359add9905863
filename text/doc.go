// Package text loads fonts, shapes strings and rasterizes glyphs for the
// glyph atlas.
//
// The pipeline is split the same way a renderer consumes it:
//
//   - FontSource: a parsed TTF/OTF font, shared and safe for concurrent use
//   - Shaper: converts a string into positioned glyphs (go-text/typesetting)
//   - Rasterizer: renders one glyph into a coverage mask (golang.org/x/image)
//
// Sizes are expressed in pixels per em (ppem). FontSource.PPEMForHeight
// converts a pixel line height into ppem.
//
// # Example usage
//
//	source, err := text.NewFontSource(goregular.TTF)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ppem := source.PPEMForHeight(24)
//
//	glyphs := text.NewGoTextShaper().Shape("Hello", source, ppem)
//	r := text.NewRasterizer(0)
//	for _, g := range glyphs {
//	    img, err := r.Rasterize(source, g.GID, ppem, 1, 0)
//	    ...
//	}
package text
