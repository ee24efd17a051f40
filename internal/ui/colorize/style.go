package colorize

import (
	"github.com/alecthomas/chroma/v2"

	"pcodestep/internal/stepper"
)

// tokenTypes maps categories onto chroma token types so stock chroma styles
// and formatters apply to p-code.
var tokenTypes = map[stepper.Category]chroma.TokenType{
	stepper.CategoryText:          chroma.Text,
	stepper.CategoryAddress:       chroma.LiteralNumberHex,
	stepper.CategoryRegister:      chroma.NameVariable,
	stepper.CategoryScalar:        chroma.LiteralNumberInteger,
	stepper.CategoryLocal:         chroma.NameOther,
	stepper.CategoryLineLabel:     chroma.NameLabel,
	stepper.CategoryMnemonic:      chroma.Keyword,
	stepper.CategoryUnimplemented: chroma.Error,
	stepper.CategoryRaw:           chroma.NameBuiltinPseudo,
	stepper.CategorySpace:         chroma.NameNamespace,
	stepper.CategoryUserop:        chroma.NameFunction,
	stepper.CategorySeparator:     chroma.Punctuation,
	stepper.CategoryIndent:        chroma.TextWhitespace,
}

// TokenType returns the chroma token type of cat.
func TokenType(cat stepper.Category) chroma.TokenType {
	if tt, ok := tokenTypes[cat]; ok {
		return tt
	}
	return chroma.Text
}

// StyleName names the chroma styles built from a palette. They are passed to
// the formatters directly and never registered.
const StyleName = "pcode-dark"

// pageBackground is the background of HTML output. Terminal output keeps the
// terminal's own background.
const pageBackground = "#1e1e1e"

// Style builds the chroma style of p for terminal output.
func (p Palette) Style() (*chroma.Style, error) {
	return chroma.NewStyle(StyleName, p.entries(""))
}

func (p Palette) pageStyle() (*chroma.Style, error) {
	return chroma.NewStyle(StyleName, p.entries(pageBackground))
}

func (p Palette) entries(background string) chroma.StyleEntries {
	entries := chroma.StyleEntries{
		chroma.Comment: "italic " + p.Color(stepper.CategoryText),
	}
	if background != "" {
		entries[chroma.Background] = "bg:" + background
	}
	for cat, tt := range tokenTypes {
		if c := p.Color(cat); c != "" {
			entries[tt] = c
		}
	}
	if p.Counter != "" {
		entries[chroma.LineHighlight] = "bg:" + p.Counter
	}
	entries[chroma.Error] = "bold " + p.Color(stepper.CategoryUnimplemented)
	return entries
}
