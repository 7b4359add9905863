package glyphatlas

import (
	"fmt"
	"image"
	"log/slog"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/gogpu/glyphatlas/atlas"
	"github.com/gogpu/glyphatlas/layout"
	"github.com/gogpu/glyphatlas/text"
)

// Cache is a glyph atlas shared by the code that queues text and the code
// that draws it.
//
// Queue, Update and the AddFont methods take an exclusive lock. The texture
// and vertex readers take a shared lock and may run concurrently with each
// other. The slices handed to ViewTexture and ViewVertices callbacks are
// only valid inside the callback; use CopyTexture or Vertices to keep them.
type Cache struct {
	mu sync.RWMutex

	cfg      Config
	log      *slog.Logger
	store    *atlas.Store
	engine   *layout.Engine
	vertices []Vertex

	updates  uint64
	resizes  uint64
	clears   uint64
	uploads  uint64
	rejected uint64
}

// New creates a Cache and registers fontData as font 0.
func New(fontData []byte, opts ...Option) (*Cache, error) {
	c, err := NewEmpty(opts...)
	if err != nil {
		return nil, err
	}
	if _, err := c.AddFont(fontData); err != nil {
		return nil, err
	}
	return c, nil
}

// NewEmpty creates a Cache with no fonts.
func NewEmpty(opts ...Option) (*Cache, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(globalHandler{})
	}

	store, err := atlas.NewStore(cfg.InitialWidth, cfg.InitialHeight)
	if err != nil {
		return nil, err
	}

	return &Cache{
		cfg:   cfg,
		log:   log,
		store: store,
		engine: layout.NewEngine(layout.Config{
			Padding:          cfg.Padding,
			Subpixel:         cfg.Subpixel,
			MaxTextureSize:   cfg.MaxTextureSize,
			ShapingCacheSize: cfg.ShapingCacheSize,
			Logger:           log,
		}),
	}, nil
}

// AddFont parses a TrueType or OpenType font and registers it.
// The data is copied. On error the Cache is unchanged.
func (c *Cache) AddFont(data []byte) (FontID, error) {
	source, err := text.NewFontSource(data)
	if err != nil {
		return 0, err
	}
	return c.addSource(source), nil
}

// AddFontFile reads a font file and registers it.
func (c *Cache) AddFontFile(path string) (FontID, error) {
	source, err := text.NewFontSourceFromFile(path)
	if err != nil {
		return 0, fmt.Errorf("glyphatlas: %w", err)
	}
	return c.addSource(source), nil
}

func (c *Cache) addSource(source *text.FontSource) FontID {
	c.mu.Lock()
	id := FontID(c.engine.AddFont(source)) //nolint:gosec // font count stays far below 2^32
	c.mu.Unlock()

	c.log.Info("glyphatlas: font registered", "id", id, "name", source.Name())
	return id
}

// FontCount returns the number of registered fonts.
func (c *Cache) FontCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.engine.FontCount()
}

// FontName returns the family name of a registered font.
func (c *Cache) FontName(id FontID) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	source, ok := c.engine.Font(int(id))
	if !ok {
		return "", fmt.Errorf("%w: %d", ErrUnknownFont, id)
	}
	return source.Name(), nil
}

// Queue adds s to the next Update. Sections with invalid UTF-8, an
// unregistered font, or a scale that is not positive or exceeds the maximum
// texture size are ignored.
func (c *Cache) Queue(s Section) {
	if !utf8.ValidString(s.Text) {
		c.log.Debug("glyphatlas: ignoring section with invalid UTF-8")
		return
	}
	limit := float32(c.cfg.MaxTextureSize)
	if !(s.Scale.X > 0 && s.Scale.X <= limit) || !(s.Scale.Y > 0 && s.Scale.Y <= limit) {
		c.log.Debug("glyphatlas: ignoring section with unusable scale",
			"scaleX", s.Scale.X, "scaleY", s.Scale.Y, "max", c.cfg.MaxTextureSize)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if int(s.Font) >= c.engine.FontCount() {
		c.log.Debug("glyphatlas: ignoring section with unknown font", "font", s.Font)
		return
	}
	c.engine.Queue(s.layoutSection())
}

// TextureDimensions returns the current atlas size.
func (c *Cache) TextureDimensions() (width, height int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.store.Dimensions()
}

// ViewTexture calls fn with the atlas coverage bytes, one per texel in rows
// of width bytes, and whether they changed since the previous texture read.
// The dirty flag is cleared. fn must not retain pix or call methods of c
// that modify it.
func (c *Cache) ViewTexture(fn func(pix []byte, width, height int, dirty bool)) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pix, dirty := c.store.ReadAndClearDirty()
	w, h := c.store.Dimensions()
	fn(pix, w, h, dirty)
}

// CopyTexture appends the atlas coverage bytes to dst[:0] and reports
// whether they changed since the previous texture read. The dirty flag is
// cleared.
func (c *Cache) CopyTexture(dst []byte) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pix, dirty := c.store.ReadAndClearDirty()
	return append(dst[:0], pix...), dirty
}

// TextureImage returns a copy of the atlas as an image. The dirty flag is
// left alone.
func (c *Cache) TextureImage() *image.Alpha {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.store.Image()
}

// ViewVertices calls fn with the vertices of the last drawing update.
// fn must not retain or modify the slice.
func (c *Cache) ViewVertices(fn func([]Vertex)) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fn(c.vertices)
}

// Vertices returns a copy of the vertices of the last drawing update.
func (c *Cache) Vertices() []Vertex {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.vertices)
}

// Stats holds Cache counters.
type Stats struct {
	// Updates is the number of Update calls, Resizes how many of them grew
	// the atlas and Clears how many wiped it to repack glyphs.
	Updates, Resizes, Clears uint64

	// Uploads is the number of glyph bitmaps written to the atlas and
	// RejectedUploads the number refused for lying outside it.
	Uploads, RejectedUploads uint64

	Vertices     int
	Fonts        int
	PackedGlyphs int

	// Pending is the number of sections queued for the next Update.
	Pending int

	// TextureDirty reports whether the texture changed since it was last
	// read. Stats does not clear it.
	TextureDirty bool

	// AtlasUtilization is the fraction of the atlas covered by glyphs.
	AtlasUtilization float64

	ShapingHits, ShapingMisses uint64
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	es := c.engine.Stats()
	return Stats{
		Updates:          c.updates,
		Resizes:          c.resizes,
		Clears:           c.clears,
		Uploads:          c.uploads,
		RejectedUploads:  c.rejected,
		Vertices:         len(c.vertices),
		Fonts:            es.Fonts,
		PackedGlyphs:     es.PackedGlyphs,
		Pending:          es.Pending,
		TextureDirty:     c.store.Dirty(),
		AtlasUtilization: es.Utilization,
		ShapingHits:      es.ShapingHits,
		ShapingMisses:    es.ShapingMisses,
	}
}
