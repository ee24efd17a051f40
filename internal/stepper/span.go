package stepper

// Category tags a span of rendered p-code text with its syntactic role so a
// presentation layer can color it without re-parsing.
type Category int

const (
	CategoryText Category = iota
	CategoryAddress
	CategoryRegister
	CategoryScalar
	CategoryLocal
	CategoryLineLabel
	CategoryMnemonic
	CategoryUnimplemented
	CategoryRaw
	CategorySpace
	CategoryUserop
	CategorySeparator
	CategoryIndent
)

var categoryNames = [...]string{
	CategoryText:          "text",
	CategoryAddress:       "addr",
	CategoryRegister:      "reg",
	CategoryScalar:        "scalar",
	CategoryLocal:         "loc",
	CategoryLineLabel:     "lab",
	CategoryMnemonic:      "op",
	CategoryUnimplemented: "unimpl",
	CategoryRaw:           "raw",
	CategorySpace:         "space",
	CategoryUserop:        "usr",
	CategorySeparator:     "sep",
	CategoryIndent:        "indent",
}

// String returns the short class name of the category.
func (c Category) String() string {
	if c >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "text"
}

// Categories lists every category in declaration order.
func Categories() []Category {
	out := make([]Category, len(categoryNames))
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// ParseCategory maps a class name back to its category.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), true
		}
	}
	return CategoryText, false
}

// Span is a run of text in one category.
type Span struct {
	Category Category
	Text     string
}

// Spans is the categorized text of one row.
type Spans []Span

// String returns the plain text of the spans.
func (s Spans) String() string {
	n := 0
	for _, sp := range s {
		n += len(sp.Text)
	}
	b := make([]byte, 0, n)
	for _, sp := range s {
		b = append(b, sp.Text...)
	}
	return string(b)
}
