package glyphatlas

import (
	"errors"

	"github.com/gogpu/glyphatlas/text"
)

var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = text.ErrEmptyFontData

	// ErrUnknownFont is returned for a FontID that was never registered.
	ErrUnknownFont = errors.New("glyphatlas: unknown font")
)

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "glyphatlas: invalid config." + e.Field + ": " + e.Reason
}
