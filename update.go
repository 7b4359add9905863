package glyphatlas

import (
	"image"

	"github.com/gogpu/glyphatlas/layout"
)

// Update lays out the queued sections and brings the atlas and the vertex
// list up to date.
//
// The outcome is one of:
//   - layout.ActionDraw: new glyphs were written to the atlas as needed and
//     the vertex list was replaced.
//   - layout.ActionRedraw: nothing changed since the last drawing update;
//     the vertex list is kept.
//   - layout.ActionResize: the glyphs did not fit. The atlas was grown and
//     cleared, the vertex list is kept, and the queued sections are retained
//     for the next Update.
//
// Update always runs, even with nothing queued. Glyphs a font cannot map
// or that fail to rasterize are skipped.
func (c *Cache) Update() layout.ActionKind {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, h := c.store.Dimensions()
	action := c.engine.Process(image.Pt(w, h), atlasTarget{c})
	c.updates++

	switch action.Kind {
	case layout.ActionResize:
		c.grow(action.Suggested)
	case layout.ActionDraw:
		c.vertices = buildVertices(action.Quads, w, h)
		c.log.Debug("glyphatlas: vertices updated", "count", len(c.vertices), "quads", len(action.Quads))
	case layout.ActionRedraw:
	}
	return action.Kind
}

// atlasTarget applies engine writes to the store of a Cache whose lock is
// held.
type atlasTarget struct{ c *Cache }

func (t atlasTarget) Clear() {
	t.c.store.Clear()
	t.c.clears++
	t.c.log.Debug("glyphatlas: atlas cleared for repacking")
}

func (t atlasTarget) Write(u layout.Upload) {
	if err := t.c.store.WriteBlock(u.Rect, u.Pix); err != nil {
		t.c.rejected++
		t.c.log.Error("glyphatlas: rejected glyph upload", "err", err)
		return
	}
	t.c.uploads++
}

// grow resizes the atlas to at least suggested, never shrinking and never
// beyond MaxTextureSize. Caller must hold c.mu.
func (c *Cache) grow(suggested image.Point) {
	w, h := c.store.Dimensions()
	nw := min(max(suggested.X, w), c.cfg.MaxTextureSize)
	nh := min(max(suggested.Y, h), c.cfg.MaxTextureSize)
	if nw == w && nh == h {
		return
	}
	if err := c.store.Resize(nw, nh); err != nil {
		c.log.Error("glyphatlas: atlas resize failed", "err", err)
		return
	}
	c.resizes++
	c.log.Info("glyphatlas: atlas resized", "fromWidth", w, "fromHeight", h, "width", nw, "height", nh)
}

// buildVertices converts quads for a width x height atlas into clipped
// vertices, dropping those clipped away entirely.
func buildVertices(quads []layout.Quad, width, height int) []Vertex {
	vertices := make([]Vertex, 0, len(quads))
	fw, fh := float32(width), float32(height)
	for _, q := range quads {
		screen := R(
			float32(q.Screen.Min.X), float32(q.Screen.Min.Y),
			float32(q.Screen.Max.X), float32(q.Screen.Max.Y),
		)
		uv := R(
			float32(q.Tex.Min.X)/fw, float32(q.Tex.Min.Y)/fh,
			float32(q.Tex.Max.X)/fw, float32(q.Tex.Max.Y)/fh,
		)
		bounds := R(q.Bounds.MinX, q.Bounds.MinY, q.Bounds.MaxX, q.Bounds.MaxY)

		screen, uv, ok := Clip(screen, uv, bounds)
		if !ok {
			continue
		}
		vertices = append(vertices, Vertex{
			Min:   screen.Min,
			Max:   screen.Max,
			UVMin: uv.Min,
			UVMax: uv.Max,
			Color: Color{R: q.Color[0], G: q.Color[1], B: q.Color[2], A: q.Color[3]},
		})
	}
	return vertices
}
