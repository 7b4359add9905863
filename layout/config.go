package layout

import (
	"log/slog"

	"github.com/gogpu/glyphatlas/text"
)

// Config configures an Engine. Zero fields take the documented defaults.
type Config struct {
	// Padding is the number of empty texels kept between packed glyphs.
	Padding int

	// Subpixel sets the horizontal subpixel bins. The zero value snaps
	// glyphs to whole pixels.
	Subpixel text.SubpixelMode

	// MaxTextureSize caps the atlas side in Resize suggestions.
	// Default: 4096.
	MaxTextureSize int

	// ShapingCacheSize is the number of shaped lines kept between cycles.
	// Default: 1024.
	ShapingCacheSize int

	// Shaper shapes lines. Default: text.NewGoTextShaper().
	Shaper text.Shaper

	// Logger receives engine diagnostics. Default: discard.
	Logger *slog.Logger
}

const (
	defaultMaxTextureSize   = 4096
	defaultShapingCacheSize = 1024
)

func (c Config) withDefaults() Config {
	c.Padding = max(c.Padding, 0)
	if c.MaxTextureSize <= 0 {
		c.MaxTextureSize = defaultMaxTextureSize
	}
	if c.ShapingCacheSize <= 0 {
		c.ShapingCacheSize = defaultShapingCacheSize
	}
	if c.Shaper == nil {
		c.Shaper = text.NewGoTextShaper()
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}
