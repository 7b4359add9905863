package script

import (
	"fmt"
	"strconv"

	"github.com/gogpu/glyphatlas"
	"github.com/gogpu/glyphatlas/layout"
)

// maxGrowRetries bounds the updates one update statement runs while the
// atlas keeps growing.
const maxGrowRetries = 16

// Defaults applied to text statements without the matching attribute.
var (
	DefaultSize  = glyphatlas.Pt(16, 16)
	DefaultColor = glyphatlas.White
)

// Loader returns the bytes of the font named by a font statement.
type Loader func(path string) ([]byte, error)

// Run executes s against c. Font statements are resolved with load. It
// returns the outcome of every Update call in order.
func (s *Script) Run(c *glyphatlas.Cache, load Loader) ([]layout.ActionKind, error) {
	var outcomes []layout.ActionKind
	for _, st := range s.Statements {
		switch {
		case st.Font != nil:
			data, err := load(string(st.Font.Path))
			if err != nil {
				return outcomes, fmt.Errorf("script: %s: %w", st.Pos, err)
			}
			if _, err := c.AddFont(data); err != nil {
				return outcomes, fmt.Errorf("script: %s: font %q: %w", st.Pos, st.Font.Path, err)
			}

		case st.Text != nil:
			section, err := st.Text.Section()
			if err != nil {
				return outcomes, fmt.Errorf("script: %s: %w", st.Pos, err)
			}
			c.Queue(section)

		case st.Update != nil:
			for range maxGrowRetries {
				kind := c.Update()
				outcomes = append(outcomes, kind)
				if kind != layout.ActionResize {
					break
				}
			}
		}
	}
	return outcomes, nil
}

// Section converts the statement to a section.
func (t *TextStmt) Section() (glyphatlas.Section, error) {
	s := glyphatlas.Section{
		Text:  string(t.Value),
		Scale: DefaultSize,
		Color: DefaultColor,
	}
	for _, a := range t.Attrs {
		switch {
		case a.At != nil:
			s.Position = glyphatlas.Pt(a.At.X, a.At.Y)
		case a.Size != nil:
			s.Scale = glyphatlas.Pt(a.Size.X, a.Size.X)
			if a.Size.Y != nil {
				s.Scale.Y = *a.Size.Y
			}
		case a.Bounds != nil:
			s.Bounds = glyphatlas.Pt(a.Bounds.X, a.Bounds.Y)
		case a.Color != nil:
			col, err := ParseColor(*a.Color)
			if err != nil {
				return s, err
			}
			s.Color = col
		case a.Font != nil:
			if *a.Font < 0 {
				return s, fmt.Errorf("negative font id %d", *a.Font)
			}
			s.Font = glyphatlas.FontID(*a.Font) //nolint:gosec // checked above
		}
	}
	return s, nil
}

// ParseColor parses #rgb, #rrggbb or #rrggbbaa.
func ParseColor(s string) (glyphatlas.Color, error) {
	if len(s) == 0 || s[0] != '#' {
		return glyphatlas.Color{}, fmt.Errorf("invalid color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return glyphatlas.Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return glyphatlas.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	channel := func(shift uint) float32 {
		return float32((v>>shift)&0xff) / 255
	}
	return glyphatlas.RGBA(channel(24), channel(16), channel(8), channel(0)), nil
}
