// Package colorize renders categorized p-code rows for a terminal or a web
// page. Colors come from an explicit Palette; nothing is read from the
// environment here.
package colorize

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/charmbracelet/lipgloss/v2"

	"pcodestep/internal/stepper"
)

// CounterMarker prefixes the row about to execute; other rows get the same
// width of blanks.
const CounterMarker = "▶ "

// getTerminalFormatter returns an appropriate terminal formatter
func getTerminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// getAssemblyLexer returns an appropriate assembly lexer with fallbacks
func getAssemblyLexer() chroma.Lexer {
	for _, name := range []string{"armasm", "gas", "nasm"} {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

// Tokens converts a row to chroma tokens. Rows without spans become a
// single comment token.
func Tokens(row stepper.Row) []chroma.Token {
	var spans stepper.Spans
	switch r := row.(type) {
	case stepper.OpRow:
		spans = r.Spans
	case stepper.LabelRow:
		spans = r.Spans
	default:
		return []chroma.Token{{Type: chroma.Comment, Value: row.Code()}}
	}
	tokens := make([]chroma.Token, 0, len(spans))
	for _, sp := range spans {
		tokens = append(tokens, chroma.Token{Type: TokenType(sp.Category), Value: sp.Text})
	}
	return tokens
}

func (p Palette) format(tokens []chroma.Token) (string, error) {
	style, err := p.Style()
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, style, chroma.Literator(tokens...)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Row renders one row with its counter gutter.
func (p Palette) Row(row stepper.Row) (string, error) {
	gutter := strings.Repeat(" ", len([]rune(CounterMarker)))
	if stepper.IsCurrent(row) {
		gutter = CounterMarker
	}
	if p.NoColor {
		return gutter + row.Code(), nil
	}
	if stepper.IsCurrent(row) {
		gutter = lipgloss.NewStyle().Foreground(lipgloss.Color(p.Counter)).Bold(true).Render(gutter)
	}
	text, err := p.format(Tokens(row))
	if err != nil {
		return "", err
	}
	return gutter + text, nil
}

// Rows renders rows one per line.
func (p Palette) Rows(rows []stepper.Row) (string, error) {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		line, err := p.Row(r)
		if err != nil {
			return "", fmt.Errorf("row %d: %w", r.Sequence(), err)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

// Instruction colors a disassembled instruction with chroma's assembly
// lexer under p's style.
func (p Palette) Instruction(text string) string {
	if p.NoColor {
		return text
	}
	lexer := getAssemblyLexer()
	if lexer == nil {
		return text
	}
	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return text
	}
	style, err := p.Style()
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := getTerminalFormatter().Format(&buf, style, iterator); err != nil {
		return text
	}
	return buf.String()
}

// HTML renders rows as an HTML fragment using CSS classes; the row about to
// execute is highlighted. Pair it with CSS.
func (p Palette) HTML(rows []stepper.Row) (string, error) {
	var tokens []chroma.Token
	var highlight [][2]int
	for i, r := range rows {
		if i > 0 {
			tokens = append(tokens, chroma.Token{Type: chroma.Text, Value: "\n"})
		}
		if stepper.IsCurrent(r) {
			highlight = append(highlight, [2]int{i + 1, i + 1})
		}
		tokens = append(tokens, Tokens(r)...)
	}
	tokens = append(tokens, chroma.Token{Type: chroma.Text, Value: "\n"})

	style, err := p.pageStyle()
	if err != nil {
		return "", err
	}
	formatter := html.New(html.WithClasses(!p.NoColor), html.HighlightLines(highlight))
	var buf strings.Builder
	if err := formatter.Format(&buf, style, chroma.Literator(tokens...)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// CSS returns the stylesheet for HTML output.
func (p Palette) CSS() (string, error) {
	style, err := p.pageStyle()
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err := html.New(html.WithClasses(true)).WriteCSS(&buf, style); err != nil {
		return "", err
	}
	return buf.String(), nil
}
