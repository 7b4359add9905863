package layout

import (
	"encoding/binary"
	"hash/fnv"
	"image"
	"log/slog"
	"maps"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/gogpu/glyphatlas/atlas"
	"github.com/gogpu/glyphatlas/internal/cache"
	"github.com/gogpu/glyphatlas/text"
)

// glyphKey identifies one rasterized glyph bitmap.
type glyphKey struct {
	font   int
	gid    text.GlyphID
	scaleX uint32 // math.Float32bits
	scaleY uint32
	bin    uint8
}

// lineKey identifies one shaped line.
type lineKey struct {
	font int
	ppem uint64 // math.Float64bits
	text string
}

// placement is a glyph positioned in the current frame.
type placement struct {
	key     glyphKey
	x, y    int // whole-pixel pen position on the baseline
	section int
}

// Engine lays out queued sections against one atlas.
//
// Engine is not safe for concurrent use.
type Engine struct {
	cfg    Config
	log    *slog.Logger
	fonts  []*text.FontSource
	raster *text.Rasterizer
	lines  *cache.Cache[lineKey, []text.ShapedGlyph]

	queue []Section

	dims   image.Point
	packer *atlas.ShelfAllocator
	// images holds rasterized glyphs; a nil value marks a glyph without
	// coverage or one that failed to rasterize.
	images map[glyphKey]*text.GlyphImage
	packed map[glyphKey]image.Rectangle
	// unfit holds glyphs dropped at the maximum atlas size. They stay out
	// of packing until the packer is reset.
	unfit map[glyphKey]struct{}
	// stale is set when the packer was reset while the atlas still holds
	// the texels of the glyphs it forgot.
	stale bool

	lastHash uint64
	drawn    bool
}

// NewEngine creates an Engine with no fonts.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:    cfg,
		log:    cfg.Logger,
		raster: text.NewRasterizer(cfg.MaxTextureSize),
		lines:  cache.New[lineKey, []text.ShapedGlyph](cfg.ShapingCacheSize),
		images: make(map[glyphKey]*text.GlyphImage),
		packed: make(map[glyphKey]image.Rectangle),
		unfit:  make(map[glyphKey]struct{}),
	}
}

// AddFont registers source and returns its id. Ids are assigned
// sequentially from 0.
func (e *Engine) AddFont(source *text.FontSource) int {
	e.fonts = append(e.fonts, source)
	return len(e.fonts) - 1
}

// Font returns the font registered under id.
func (e *Engine) Font(id int) (*text.FontSource, bool) {
	if id < 0 || id >= len(e.fonts) {
		return nil, false
	}
	return e.fonts[id], true
}

// FontCount returns the number of registered fonts.
func (e *Engine) FontCount() int {
	return len(e.fonts)
}

// Queue adds s to the next Process cycle. The text is normalized to NFC
// and a zero Bounds is replaced by Unbounded.
func (e *Engine) Queue(s Section) {
	s.Text = norm.NFC.String(s.Text)
	if s.Bounds == (Box{}) {
		s.Bounds = Unbounded()
	}
	e.queue = append(e.queue, s)
}

// Stats is a snapshot of engine state.
type Stats struct {
	Fonts         int
	Pending       int
	PackedGlyphs  int
	Utilization   float64
	ShapingHits   uint64
	ShapingMisses uint64
}

// Stats returns a snapshot of engine state.
func (e *Engine) Stats() Stats {
	cs := e.lines.Stats()
	s := Stats{
		Fonts:         len(e.fonts),
		Pending:       len(e.queue),
		PackedGlyphs:  len(e.packed),
		ShapingHits:   cs.Hits,
		ShapingMisses: cs.Misses,
	}
	if e.packer != nil {
		s.Utilization = e.packer.Utilization()
	}
	return s
}

// Process runs one cycle against an atlas of size dims.
//
// Every glyph bitmap that must be copied into the atlas is written to
// target before Process returns. When dims differ from the previous cycle
// the atlas is assumed to be empty and every glyph is uploaded again. When
// the glyphs of earlier cycles had to be evicted, target is cleared before
// the uploads. On ActionResize nothing is written and the queue is kept.
func (e *Engine) Process(dims image.Point, target Target) Action {
	if dims != e.dims || e.packer == nil {
		e.resetPacking(dims)
	}

	frame := e.layoutFrame()
	uploads, suggested, ok := e.pack(frame)
	if !ok {
		e.log.Info("layout: glyphs do not fit, requesting a larger atlas",
			"width", dims.X, "height", dims.Y,
			"suggestedWidth", suggested.X, "suggestedHeight", suggested.Y)
		return Action{Kind: ActionResize, Suggested: suggested}
	}

	if e.stale {
		target.Clear()
		e.stale = false
	}
	for _, u := range uploads {
		target.Write(u)
	}

	hash := hashSections(e.queue)
	action := Action{Kind: ActionRedraw}
	if len(uploads) > 0 || !e.drawn || hash != e.lastHash {
		action = Action{Kind: ActionDraw, Quads: e.quads(frame)}
		e.lastHash, e.drawn = hash, true
	}

	e.log.Debug("layout: processed",
		"sections", len(e.queue), "glyphs", len(frame),
		"uploads", len(uploads), "action", action.Kind.String())

	clear(e.queue)
	e.queue = e.queue[:0]
	return action
}

// resetPacking forgets every packed glyph and packs into a dims atlas.
func (e *Engine) resetPacking(dims image.Point) {
	e.dims = dims
	e.packer = atlas.NewShelfAllocator(dims.X, dims.Y, e.cfg.Padding)
	clear(e.packed)
	clear(e.unfit)
	e.stale = false
	e.drawn = false
}

// layoutFrame positions every glyph of the queued sections.
func (e *Engine) layoutFrame() []placement {
	var frame []placement
	for i, s := range e.queue {
		frame = e.layoutSection(frame, i, s)
	}
	return frame
}

func (e *Engine) layoutSection(frame []placement, idx int, s Section) []placement {
	source, ok := e.Font(s.Font)
	if !ok {
		e.log.Debug("layout: skipping section with unknown font", "font", s.Font)
		return frame
	}
	limit := float32(e.cfg.MaxTextureSize)
	if !(s.ScaleX > 0 && s.ScaleX <= limit) || !(s.ScaleY > 0 && s.ScaleY <= limit) {
		e.log.Debug("layout: skipping section with unusable scale", "scaleX", s.ScaleX, "scaleY", s.ScaleY)
		return frame
	}

	ppem := source.PPEMForHeight(float64(s.ScaleY))
	stretch := float64(s.ScaleX) / float64(s.ScaleY)
	metrics := source.Metrics(ppem)
	maxWidth := (float64(s.Bounds.MaxX) - float64(s.X)) / stretch

	key := glyphKey{
		font:   s.Font,
		scaleX: math.Float32bits(s.ScaleX),
		scaleY: math.Float32bits(s.ScaleY),
	}
	baseline := float64(s.Y) + metrics.Ascent
	for _, line := range strings.Split(s.Text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		for _, r := range wrapGlyphs(line, e.shapeLine(s.Font, source, ppem, line), maxWidth) {
			for _, g := range r.glyphs {
				if g.GID == 0 {
					continue
				}
				x, bin := text.Quantize(float64(s.X)+(g.X-r.startX)*stretch, e.cfg.Subpixel)
				key.gid, key.bin = g.GID, bin
				frame = append(frame, placement{
					key:     key,
					x:       x,
					y:       int(math.Floor(baseline + g.Y + 0.5)),
					section: idx,
				})
			}
			baseline += metrics.LineHeight()
		}
	}
	return frame
}

func (e *Engine) shapeLine(font int, source *text.FontSource, ppem float64, line string) []text.ShapedGlyph {
	if line == "" {
		return nil
	}
	key := lineKey{font: font, ppem: math.Float64bits(ppem), text: line}
	return e.lines.GetOrCreate(key, func() []text.ShapedGlyph {
		return e.cfg.Shaper.Shape(line, source, ppem)
	})
}

// glyphImage returns the bitmap for k, rasterizing it on first use.
func (e *Engine) glyphImage(k glyphKey) *text.GlyphImage {
	if img, ok := e.images[k]; ok {
		return img
	}

	source := e.fonts[k.font]
	scaleX, scaleY := math.Float32frombits(k.scaleX), math.Float32frombits(k.scaleY)
	img, err := e.raster.Rasterize(source,
		k.gid,
		source.PPEMForHeight(float64(scaleY)),
		float64(scaleX)/float64(scaleY),
		text.SubpixelOffset(k.bin, e.cfg.Subpixel))
	if err != nil {
		e.log.Debug("layout: skipping glyph", "font", k.font, "glyph", k.gid, "err", err)
		img = nil
	}
	e.images[k] = img
	return img
}

// frameGlyphs returns the distinct drawable glyphs of frame in first-use
// order.
func (e *Engine) frameGlyphs(frame []placement) []glyphKey {
	seen := make(map[glyphKey]struct{}, len(frame))
	keys := make([]glyphKey, 0, len(frame))
	for _, p := range frame {
		if _, dup := seen[p.key]; dup {
			continue
		}
		seen[p.key] = struct{}{}
		if e.glyphImage(p.key) != nil {
			keys = append(keys, p.key)
		}
	}
	return keys
}

// pack makes room in the atlas for every glyph of frame. It returns the
// uploads for newly packed glyphs, or ok == false with a suggested atlas
// size when the frame does not fit.
func (e *Engine) pack(frame []placement) (uploads []Upload, suggested image.Point, ok bool) {
	keys := e.frameGlyphs(frame)

	var missing []glyphKey
	for _, k := range keys {
		_, packed := e.packed[k]
		_, unfit := e.unfit[k]
		if !packed && !unfit {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil, image.Point{}, true
	}
	if uploads, ok := e.allocate(missing); ok {
		return uploads, image.Point{}, true
	}

	// The atlas is full of glyphs from earlier frames: start over with the
	// glyphs of this frame only.
	e.pruneImages(keys)
	if uploads, ok := e.allocate(keys); ok {
		e.log.Debug("layout: repacked atlas", "glyphs", len(keys))
		return uploads, image.Point{}, true
	}

	sizes := make([]image.Point, len(keys))
	for i, k := range keys {
		sizes[i] = e.images[k].Size()
	}
	if next := e.grow(sizes); next != e.dims {
		return nil, next, false
	}

	// Already at the maximum size: keep what fits.
	var dropped int
	for _, k := range keys {
		img := e.images[k]
		r, ok := e.packer.Allocate(img.Size().X, img.Size().Y)
		if !ok {
			e.unfit[k] = struct{}{}
			dropped++
			continue
		}
		e.packed[k] = r
		uploads = append(uploads, Upload{Rect: r, Pix: img.Mask.Pix})
	}
	e.log.Warn("layout: atlas at maximum size, dropping glyphs",
		"dropped", dropped, "width", e.dims.X, "height", e.dims.Y)
	return uploads, image.Point{}, true
}

// allocate packs keys in order. On failure the packer is reset and every
// packed glyph is forgotten, and the atlas is marked stale.
func (e *Engine) allocate(keys []glyphKey) ([]Upload, bool) {
	uploads := make([]Upload, 0, len(keys))
	for _, k := range keys {
		img := e.images[k]
		r, ok := e.packer.Allocate(img.Size().X, img.Size().Y)
		if !ok {
			e.packer.Reset()
			clear(e.packed)
			clear(e.unfit)
			e.stale = true
			e.drawn = false
			return nil, false
		}
		e.packed[k] = r
		uploads = append(uploads, Upload{Rect: r, Pix: img.Mask.Pix})
	}
	return uploads, true
}

// pruneImages drops rasterized glyphs not in keys.
func (e *Engine) pruneImages(keys []glyphKey) {
	keep := make(map[glyphKey]struct{}, len(keys))
	for _, k := range keys {
		keep[k] = struct{}{}
	}
	maps.DeleteFunc(e.images, func(k glyphKey, _ *text.GlyphImage) bool {
		_, ok := keep[k]
		return !ok
	})
}

// grow returns the smallest atlas reached by doubling the shorter side
// that fits sizes, or the maximum size if none does.
func (e *Engine) grow(sizes []image.Point) image.Point {
	limit := e.cfg.MaxTextureSize
	next := e.dims
	for next.X < limit || next.Y < limit {
		if (next.X <= next.Y && next.X < limit) || next.Y >= limit {
			next.X = min(max(next.X*2, 1), limit)
		} else {
			next.Y = min(max(next.Y*2, 1), limit)
		}
		if atlas.FitsAll(next.X, next.Y, e.cfg.Padding, sizes) {
			return next
		}
	}
	return next
}

// quads builds the draw list of frame. Glyphs dropped at maximum atlas size
// are skipped.
func (e *Engine) quads(frame []placement) []Quad {
	quads := make([]Quad, 0, len(frame))
	for _, p := range frame {
		img := e.images[p.key]
		tex, ok := e.packed[p.key]
		if img == nil || !ok {
			continue
		}
		s := e.queue[p.section]
		minPt := image.Pt(p.x, p.y).Add(img.Offset)
		quads = append(quads, Quad{
			Screen: image.Rectangle{Min: minPt, Max: minPt.Add(img.Size())},
			Tex:    tex,
			Color:  s.Color,
			Bounds: s.Bounds,
		})
	}
	return quads
}

// hashSections returns an FNV-1a hash of everything that affects layout.
func hashSections(sections []Section) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	writeU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[:4], v)
		_, _ = h.Write(buf[:4]) // fnv.Write never returns an error
	}
	writeF := func(f float32) { writeU32(math.Float32bits(f)) }

	for _, s := range sections {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s.Text)))
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(s.Text))
		writeU32(uint32(s.Font)) //nolint:gosec // font ids are small
		for _, f := range []float32{
			s.X, s.Y, s.ScaleX, s.ScaleY,
			s.Color[0], s.Color[1], s.Color[2], s.Color[3],
			s.Bounds.MinX, s.Bounds.MinY, s.Bounds.MaxX, s.Bounds.MaxY,
		} {
			writeF(f)
		}
	}
	return h.Sum64()
}
