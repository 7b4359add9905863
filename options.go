package glyphatlas

import (
	"log/slog"

	"github.com/gogpu/glyphatlas/text"
)

// Config holds the settings of a Cache.
type Config struct {
	// InitialWidth and InitialHeight are the atlas size before any growth.
	InitialWidth, InitialHeight int

	// MaxTextureSize caps each atlas side. Glyphs that do not fit an atlas
	// of this size are dropped.
	MaxTextureSize int

	// Padding is the number of empty texels kept between packed glyphs.
	Padding int

	// Subpixel sets horizontal subpixel positioning.
	Subpixel text.SubpixelMode

	// ShapingCacheSize is the number of shaped lines kept between updates.
	ShapingCacheSize int

	// Logger overrides the package-wide logger for one Cache.
	Logger *slog.Logger
}

// DefaultConfig returns the default Cache configuration.
func DefaultConfig() Config {
	return Config{
		InitialWidth:     256,
		InitialHeight:    256,
		MaxTextureSize:   4096,
		Padding:          1,
		Subpixel:         text.Subpixel4,
		ShapingCacheSize: 1024,
	}
}

// maxTextureLimit bounds MaxTextureSize so width*height fits comfortably
// in an int on 32-bit platforms.
const maxTextureLimit = 16384

// Validate checks that the configuration is valid.
func (c Config) Validate() error {
	if c.InitialWidth < 1 {
		return &ConfigError{Field: "InitialWidth", Reason: "must be at least 1"}
	}
	if c.InitialHeight < 1 {
		return &ConfigError{Field: "InitialHeight", Reason: "must be at least 1"}
	}
	if c.MaxTextureSize < 1 {
		return &ConfigError{Field: "MaxTextureSize", Reason: "must be at least 1"}
	}
	if c.MaxTextureSize > maxTextureLimit {
		return &ConfigError{Field: "MaxTextureSize", Reason: "must be at most 16384"}
	}
	if c.InitialWidth > c.MaxTextureSize || c.InitialHeight > c.MaxTextureSize {
		return &ConfigError{Field: "InitialWidth", Reason: "initial size must be at most MaxTextureSize"}
	}
	if c.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	switch c.Subpixel {
	case text.SubpixelNone, text.Subpixel4, text.Subpixel10:
	default:
		return &ConfigError{Field: "Subpixel", Reason: "must be SubpixelNone, Subpixel4 or Subpixel10"}
	}
	if c.ShapingCacheSize < 1 {
		return &ConfigError{Field: "ShapingCacheSize", Reason: "must be at least 1"}
	}
	return nil
}

// Option configures a Cache during creation.
//
// Example:
//
//	c, err := glyphatlas.New(fontData,
//		glyphatlas.WithInitialTextureSize(512, 512),
//		glyphatlas.WithSubpixelMode(text.SubpixelNone),
//	)
type Option func(*Config)

// WithInitialTextureSize sets the atlas size before any growth.
func WithInitialTextureSize(width, height int) Option {
	return func(c *Config) {
		c.InitialWidth = width
		c.InitialHeight = height
	}
}

// WithMaxTextureSize caps each atlas side.
func WithMaxTextureSize(size int) Option {
	return func(c *Config) {
		c.MaxTextureSize = size
	}
}

// WithPadding sets the empty texels kept between packed glyphs.
func WithPadding(padding int) Option {
	return func(c *Config) {
		c.Padding = padding
	}
}

// WithSubpixelMode sets horizontal subpixel positioning.
func WithSubpixelMode(mode text.SubpixelMode) Option {
	return func(c *Config) {
		c.Subpixel = mode
	}
}

// WithShapingCacheSize sets the number of shaped lines kept between updates.
func WithShapingCacheSize(n int) Option {
	return func(c *Config) {
		c.ShapingCacheSize = n
	}
}

// WithLogger sets the logger of one Cache. Without it the Cache logs through
// the package-wide logger installed by SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}
