// Package layout turns queued text sections into atlas uploads and glyph
// quads.
//
// An [Engine] owns the fonts, the shaping cache and the packing state of one
// atlas. Sections are queued with [Engine.Queue]; [Engine.Process] lays them
// out, rasterizes and packs the glyphs that are not yet in the atlas, writes
// each new glyph bitmap to a [Target] and reports the outcome as an
// [Action]:
//
//   - [ActionDraw]: the returned quads replace whatever was drawn before.
//   - [ActionRedraw]: the sections and the atlas are unchanged since the
//     last draw, so the previous quads are still valid.
//   - [ActionResize]: the glyphs do not fit. The caller grows the atlas to at
//     least [Action].Suggested and calls Process again; the queue is kept.
//
// The queue is cleared after every Draw or Redraw.
//
// When the glyphs of a frame no longer fit next to those of earlier frames,
// the packer starts over with the current frame only and the Target is
// cleared first. Glyphs that do not fit an atlas of the maximum size are
// dropped once and not retried until the atlas changes size.
//
// Layout is left-to-right. Lines break at '\n' and, when the section has a
// finite right bound, at word boundaries. Glyph pen positions are snapped to
// whole pixels vertically and to subpixel bins horizontally, and each
// distinct (font, glyph, scale, bin) is rasterized once.
package layout
