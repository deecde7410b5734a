package ui

import (
	"fmt"
	"strings"

	"molecule-browser/internal/catalog"
)

const filterListHeight = 12

func (m Model) viewFilters() string {
	var b strings.Builder
	cur := m.currentField()

	var tabs []string
	for i, f := range catalog.Fields {
		label := f.String()
		if n := len(m.filters.draft.Values(f)); n > 0 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		if i == m.filters.field {
			tabs = append(tabs, pageActiveStyle.Render(label))
		} else {
			tabs = append(tabs, pageStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n\n")

	switch cur.Kind() {
	case catalog.KindExact:
		b.WriteString(subtleStyle.Render("Exact match on any selected value."))
	case catalog.KindSubstring:
		b.WriteString(subtleStyle.Render("Matches records containing any selected value."))
	case catalog.KindKeywords:
		b.WriteString(subtleStyle.Render("Matches activity text containing any keyword."))
	}
	b.WriteString("\n")

	if m.filters.typing {
		b.WriteString(m.filters.input.View())
		b.WriteString("\n")
	} else if q := m.filters.query[cur]; q != "" && cur.Kind() != catalog.KindKeywords {
		b.WriteString("Narrowed by: " + focusStyle.Render(q) + "\n")
	}
	b.WriteString("\n")

	rows := m.filterRows()
	if len(rows) == 0 {
		switch {
		case cur.Kind() == catalog.KindKeywords:
			b.WriteString(helpStyle.Render("No keywords. Press a to add one."))
		case m.optionsErr != nil:
			b.WriteString(errorStyle.Render("Options unavailable: " + describeError(m.optionsErr)))
		case len(m.options.For(cur)) == 0:
			b.WriteString(helpStyle.Render("No values available."))
		default:
			b.WriteString(helpStyle.Render("No values match."))
		}
		b.WriteString("\n")
	}

	start := 0
	if m.filters.cursor >= filterListHeight {
		start = m.filters.cursor - filterListHeight + 1
	}
	end := min(len(rows), start+filterListHeight)
	for i := start; i < end; i++ {
		row := rows[i]
		mark := "[ ]"
		if cur.Kind() == catalog.KindKeywords || m.isSelected(cur, row) {
			mark = markStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", mark, row)
		if i == m.filters.cursor && !m.filters.typing {
			b.WriteString(cursorBarStyle.Render(" ") + cursorLineStyle.Render(line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	if len(rows) > end {
		b.WriteString(subtleStyle.Render(fmt.Sprintf("  … %d more", len(rows)-end)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	var help string
	switch {
	case m.filters.typing:
		help = "Enter: done  •  Esc: stop editing"
	case cur.Kind() == catalog.KindKeywords:
		help = "a: add keyword  •  x: remove  •  X: clear field  •  Tab: next field  •  Enter: apply  •  c: clear all  •  Esc: cancel"
	default:
		help = "Space: toggle  •  /: narrow  •  X: clear field  •  Tab: next field  •  Enter: apply  •  c: clear all  •  Esc: cancel"
	}
	b.WriteString(renderFooter("", help))
	return b.String()
}
