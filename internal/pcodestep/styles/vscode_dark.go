package styles

import (
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/x/exp/charmtone"
)

// VS Code Dark theme colors
const (
	VSCodeForeground = "#D4D4D4" // Default light gray text
	VSCodeInlineCode = "#EACD53" // Golden color for inline code
	VSCodeComment    = "#6A9955" // Green for comments
	VSCodeHeading    = "#569CD6" // Blue for headings
	VSCodeBackground = "#1E1E1E" // Editor background
	VSCodeSelection  = "#264F78" // Selection background
	VSCodeLineNumber = "#858585" // Line numbers (gray)
)

// Helper functions for style pointers
func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
func uintPtr(u uint) *uint       { return &u }

// HeaderStyle is the glamour style of the header panel above the p-code:
// VS Code dark text with charmtone accents for the trace title.
func HeaderStyle() ansi.StyleConfig {
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(VSCodeForeground),
			},
			Margin: uintPtr(0),
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       stringPtr(VSCodeHeading),
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           stringPtr(charmtone.Zest.Hex()),
				BackgroundColor: stringPtr(charmtone.Charple.Hex()),
				Bold:            boolPtr(true),
			},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(charmtone.Malibu.Hex()),
			},
		},
		Emph: ansi.StylePrimitive{
			Color:  stringPtr(VSCodeComment),
			Italic: boolPtr(true),
		},
		Strong: ansi.StylePrimitive{
			Bold:  boolPtr(true),
			Color: stringPtr(VSCodeForeground),
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(VSCodeInlineCode),
			},
		},
		Item: ansi.StylePrimitive{
			BlockPrefix: "• ",
		},
		Text: ansi.StylePrimitive{
			Color: stringPtr(VSCodeForeground),
		},
	}
}
