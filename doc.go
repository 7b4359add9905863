// Package glyphatlas maintains a glyph texture atlas for drawing text.
//
// # Overview
//
// A [Cache] accepts text sections, rasterizes the glyphs they need into a
// single one-byte-per-texel coverage texture, and produces a flat list of
// glyph quads ([Vertex]) with matching texture coordinates, clipped to each
// section's bounds. Uploading the texture and drawing the quads is left to
// the caller's renderer; color is carried per vertex.
//
// # Quick Start
//
//	c, err := glyphatlas.New(goregular.TTF)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Every frame:
//	c.Queue(glyphatlas.Section{
//	    Text:     "Hello",
//	    Position: glyphatlas.Pt(10, 10),
//	    Scale:    glyphatlas.Pt(16, 16),
//	    Color:    glyphatlas.White,
//	})
//	if c.Update() == layout.ActionResize {
//	    c.Update() // the atlas grew; lay out again
//	}
//	c.ViewTexture(func(pix []byte, w, h int, dirty bool) {
//	    if dirty {
//	        // upload pix as a w x h single-channel texture
//	    }
//	})
//	c.ViewVertices(func(vs []glyphatlas.Vertex) {
//	    // draw one textured quad per vertex
//	})
//
// # Update cycle
//
// Sections are transient: Update consumes every section queued since the
// previous Update, so a caller drawing the same text each frame queues it
// each frame. When nothing changed the outcome is a redraw and the vertex
// list is kept. When the glyphs do not fit, the atlas grows, its contents
// are discarded, and the next Update lays out the same sections again.
//
// # Coordinate System
//
// Screen coordinates are pixels with the origin at the top-left and Y
// increasing down. Texture coordinates are normalized to [0, 1].
//
// # Logging
//
// glyphatlas logs through log/slog and is silent by default. See
// [SetLogger] and [WithLogger].
package glyphatlas
