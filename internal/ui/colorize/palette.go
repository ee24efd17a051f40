package colorize

import (
	"fmt"
	"maps"
	"regexp"

	"github.com/charmbracelet/x/exp/charmtone"

	"pcodestep/internal/stepper"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Palette maps span categories to "#rrggbb" colors. Counter marks the row
// about to execute. With NoColor set every renderer emits plain text.
type Palette struct {
	Colors  map[stepper.Category]string
	Counter string
	NoColor bool
}

// DefaultPalette is the dark palette the TUI starts with.
func DefaultPalette() Palette {
	return Palette{
		Colors: map[stepper.Category]string{
			stepper.CategoryText:          "#D4D4D4",
			stepper.CategoryAddress:       charmtone.Malibu.Hex(),
			stepper.CategoryRegister:      "#9CDCFE",
			stepper.CategoryScalar:        "#B5CEA8",
			stepper.CategoryLocal:         charmtone.Cheeky.Hex(),
			stepper.CategoryLineLabel:     charmtone.Zest.Hex(),
			stepper.CategoryMnemonic:      "#569CD6",
			stepper.CategoryUnimplemented: "#F44747",
			stepper.CategoryRaw:           charmtone.Squid.Hex(),
			stepper.CategorySpace:         charmtone.Guac.Hex(),
			stepper.CategoryUserop:        "#DCDCAA",
			stepper.CategorySeparator:     "#D4D4D4",
		},
		Counter: charmtone.Charple.Hex(),
	}
}

// Color returns the color of cat, falling back to the text color.
func (p Palette) Color(cat stepper.Category) string {
	if c, ok := p.Colors[cat]; ok && c != "" {
		return c
	}
	return p.Colors[stepper.CategoryText]
}

// Override returns a copy of p with colors replaced. Keys are category class
// names such as "reg" or "usr".
func (p Palette) Override(colors map[string]string) (Palette, error) {
	out := p
	out.Colors = maps.Clone(p.Colors)
	if out.Colors == nil {
		out.Colors = make(map[stepper.Category]string)
	}
	for name, c := range colors {
		cat, ok := stepper.ParseCategory(name)
		if !ok {
			return p, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
		}
		if !hexColor.MatchString(c) {
			return p, fmt.Errorf("%w: %s: %q", ErrBadColor, name, c)
		}
		out.Colors[cat] = c
	}
	return out, nil
}

// WithCounter returns a copy of p with the counter color replaced.
func (p Palette) WithCounter(c string) (Palette, error) {
	if !hexColor.MatchString(c) {
		return p, fmt.Errorf("%w: counter: %q", ErrBadColor, c)
	}
	p.Counter = c
	return p, nil
}
