// Package styles holds the markdown styling of the pcodestep header panel.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Header is what the panel above the p-code shows.
type Header struct {
	Trace       string
	Time        string
	Thread      string
	State       string
	Instruction string
}

// Markdown renders h as markdown. An empty Instruction leaves out the
// instruction heading so the caller can print it colored below.
func (h Header) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", orDash(h.Trace))
	fmt.Fprintf(&b, "**time** `%s` **thread** `%s` *%s*\n\n", orDash(h.Time), orDash(h.Thread), h.State)
	if h.Instruction != "" {
		fmt.Fprintf(&b, "## `%s`\n", h.Instruction)
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// GetMarkdownRenderer returns a glamour TermRenderer for the header panel.
// Plain rendering uses glamour's notty style.
func GetMarkdownRenderer(width int, plain bool) (*glamour.TermRenderer, error) {
	style := glamour.WithStyles(HeaderStyle())
	if plain {
		style = glamour.WithStandardStyle("notty")
	}
	return glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(width),
	)
}

// Render renders h to the terminal, falling back to the raw markdown if
// glamour fails.
func (h Header) Render(width int, plain bool) string {
	md := h.Markdown()
	r, err := GetMarkdownRenderer(width, plain)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
