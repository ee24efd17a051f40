package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/v2/list"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	"pcodestep/internal/pcodestep/styles"
	"pcodestep/internal/stepper"
)

var uniqueHeaders = []string{"#", "unique", "ref", "bytes", "value", "type", "repr"}

func uniqueCells(i int, e stepper.UniqueEntry) []string {
	return []string{
		fmt.Sprint(i),
		e.Name(),
		e.Ref.String(),
		e.BytesString(),
		e.ValueString(),
		e.TypeName(),
		e.Repr,
	}
}

// uniquesTable renders the unique entries as a table.
func uniquesTable(entries []stepper.UniqueEntry, plain bool) string {
	t := table.New().Headers(uniqueHeaders...)
	for i, e := range entries {
		t.Row(uniqueCells(i, e)...)
	}
	if plain {
		return t.Border(lipgloss.ASCIIBorder()).String()
	}
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(styles.VSCodeHeading)).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(styles.VSCodeForeground)).Padding(0, 1)
	unknownStyle := cellStyle.Foreground(lipgloss.Color(styles.VSCodeLineNumber))
	return t.
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(styles.VSCodeLineNumber))).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row < len(entries) && !entries[row].Known():
				return unknownStyle
			}
			return cellStyle
		}).
		String()
}

// uniqueItem is a unique entry in the type assignment list.
type uniqueItem struct {
	index int
	entry stepper.UniqueEntry
}

func (i uniqueItem) FilterValue() string { return i.entry.Name() }

// Custom item delegate for the uniques list
type uniqueDelegate struct{}

func (d uniqueDelegate) Height() int                               { return 1 }
func (d uniqueDelegate) Spacing() int                              { return 0 }
func (d uniqueDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d uniqueDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(uniqueItem)
	if !ok {
		return
	}

	indicator := " "
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	if index == m.Index() {
		indicator = ">"
		nameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	}
	typ := i.entry.TypeName()
	if typ == "" {
		typ = "-"
	}
	fmt.Fprintf(w, " %s  %-12s %-10s %-8s %s",
		indicator,
		nameStyle.Render(i.entry.Name()),
		i.entry.Ref,
		typ,
		i.entry.ValueString())
	if i.entry.Repr != "" {
		fmt.Fprintf(w, " (%s)", i.entry.Repr)
	}
}

func uniqueItems(entries []stepper.UniqueEntry) []list.Item {
	items := make([]list.Item, 0, len(entries))
	for i, e := range entries {
		items = append(items, uniqueItem{index: i, entry: e})
	}
	return items
}
