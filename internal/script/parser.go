// Package script parses and runs scene scripts, a small line-oriented
// language describing the fonts and text sections fed to a glyph atlas.
//
//	# comments start with '#'
//	font "fonts/Inter-Regular.ttf"
//	text "Hello,\nworld" at 10 20 size 24 color #ff8800
//	text "clipped" at 10 80 size 32 16 bounds 60 20 font 0
//	update
//
// Fonts get ids in declaration order. A text statement queues one section;
// update runs one atlas update, repeated while the atlas grows.
package script

import (
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// '#' starts a comment everywhere except right after the color
	// keyword, where it starts a hex color.
	scriptLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
			{Name: "Comment", Pattern: `#[^\n]*`},
			{Name: "ColorKeyword", Pattern: `color\b`, Action: lexer.Push("Color")},
			{Name: "Number", Pattern: `-?(?:\d+\.\d*|\.\d+|\d+)`},
			{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
			{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
			{Name: "Symbol", Pattern: `;`},
		},
		"Color": {
			{Name: "Whitespace", Pattern: `[ \t]+`},
			{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`, Action: lexer.Pop()},
		},
	})

	scriptParser = participle.MustBuild[Script](
		participle.Lexer(scriptLexer),
		participle.Elide("Whitespace", "Comment"),
		// 'font' starts both a statement and a text attribute.
		participle.UseLookahead(2),
	)
)

// Script is the root AST node of a scene script.
type Script struct {
	Statements []*Statement `parser:"( @@ ';'* )*"`
}

// Statement is one font, text or update statement.
type Statement struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Font   *FontStmt      `parser:"  @@"`
	Text   *TextStmt      `parser:"| @@"`
	Update *UpdateStmt    `parser:"| @@"`
}

// FontStmt registers a font.
type FontStmt struct {
	Path StringLiteral `parser:"'font' @String"`
}

// TextStmt queues a text section.
type TextStmt struct {
	Value StringLiteral `parser:"'text' @String"`
	Attrs []*Attr       `parser:"@@*"`
}

// Attr is one attribute of a text statement. Later attributes override
// earlier ones.
type Attr struct {
	At     *Pair   `parser:"  'at' @@"`
	Size   *Size   `parser:"| 'size' @@"`
	Bounds *Pair   `parser:"| 'bounds' @@"`
	Color  *string `parser:"| 'color' @Color"`
	Font   *int    `parser:"| 'font' @Number"`
}

// Pair is two numbers.
type Pair struct {
	X float32 `parser:"@Number"`
	Y float32 `parser:"@Number"`
}

// Size is a font pixel height, optionally followed by a separate vertical
// height.
type Size struct {
	X float32  `parser:"@Number"`
	Y *float32 `parser:"@Number?"`
}

// UpdateStmt runs one atlas update.
type UpdateStmt struct {
	Keyword string `parser:"@'update'"`
}

// StringLiteral is a quoted string with Go escapes.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a scene script.
func Parse(r io.Reader) (*Script, error) {
	return scriptParser.Parse("", r)
}

// ParseString parses a scene script from a string.
func ParseString(input string) (*Script, error) {
	return scriptParser.ParseString("", input)
}
