package ui

import (
	"fmt"
	"strings"

	"molecule-browser/internal/catalog"
	"molecule-browser/internal/paging"
	"molecule-browser/internal/viewstate"
)

func (m Model) renderBrowseHeader() string {
	var b strings.Builder
	v := m.ctrl.Snapshot()

	if m.browse.searching {
		b.WriteString("Search: " + m.browse.searchInput.View())
	} else if term := m.ctrl.SearchTerm(); term != "" {
		b.WriteString("Search: " + focusStyle.Render(term))
		if d := m.ctrl.Draft(); d != term {
			b.WriteString(subtleStyle.Render(fmt.Sprintf("  (staged: %q)", d)))
		}
	} else {
		b.WriteString(subtleStyle.Render("Search: none (press / to search)"))
	}
	b.WriteString("\n")

	b.WriteString(m.filterSummary())
	b.WriteString("\n")

	count := fmt.Sprintf("%d of %d molecules", v.Matches, v.Total)
	if v.Nav.Visible() {
		count += fmt.Sprintf("  ·  page %d/%d", v.Nav.Current, v.Nav.Total)
	}
	if m.fromCache {
		count += "  ·  " + warnStyle.Render("cached "+m.snapshotAt.Local().Format("2006-01-02 15:04"))
	}
	b.WriteString(listHeaderStyle.Render(count))
	return b.String()
}

// filterSummary lists the applied constraints per field.
func (m Model) filterSummary() string {
	f := m.ctrl.Filters()
	if f.IsEmpty() {
		return subtleStyle.Render("Filters: none (f to edit)")
	}
	var parts []string
	for _, field := range catalog.Fields {
		vals := f.Values(field)
		if field.Kind() == catalog.KindKeywords {
			vals = catalog.Keywords(vals).Active()
		}
		if len(vals) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(vals, ", ")))
	}
	return "Filters: " + markStyle.Render(strings.Join(parts, "  │  "))
}

func (m *Model) updateBrowseViewport() {
	v := m.ctrl.Snapshot()
	lines, cursorLine := m.browseLines(v)
	m.viewport.SetContent(strings.Join(lines, "\n"))
	if cursorLine >= 0 {
		m.scrollTo(cursorLine)
	} else {
		m.viewport.GotoTop()
	}
}

// browseLines renders the current page and returns the line of the cursor,
// or -1 when no row is selectable.
func (m Model) browseLines(v viewstate.View) ([]string, int) {
	var lines []string
	if v.Status == viewstate.StatusFailed {
		lines = append(lines, errorStyle.Render("✗ Could not load molecules: "+describeError(v.Err)))
		if len(v.Items) > 0 {
			lines = append(lines, subtleStyle.Render("Showing the last loaded collection."), "")
		} else {
			lines = append(lines, helpStyle.Render("Press r to retry."))
			return lines, -1
		}
	}

	if len(v.Items) == 0 {
		switch v.Status {
		case viewstate.StatusLoading, viewstate.StatusIdle:
			lines = append(lines, m.spinner.View()+" Loading molecules…")
		case viewstate.StatusEmpty:
			if v.Total == 0 {
				lines = append(lines, warnStyle.Render("No molecules in the catalog yet."))
				lines = append(lines, helpStyle.Render("Press a to add one or u to upload a spreadsheet."))
			} else {
				lines = append(lines, warnStyle.Render("No molecules match the current search and filters."))
				lines = append(lines, helpStyle.Render("Press c to clear filters or / to change the search."))
			}
		}
		return lines, -1
	}
	if v.Status == viewstate.StatusLoading {
		lines = append(lines, m.spinner.View()+subtleStyle.Render(" Refreshing…"))
	}

	offset := len(lines)
	first := (v.Nav.Current-1)*m.ctrl.PageSize() + 1
	for i, r := range v.Items {
		lines = append(lines, m.renderRow(first+i, r, i == m.browse.cursor))
	}
	return lines, offset + m.browse.cursor
}

func (m Model) renderRow(n int, r catalog.Record, selected bool) string {
	name := r.Name
	if name == "" {
		name = "(unnamed)"
	}
	meta := strings.Join(nonEmpty(r.PlantName, r.Database, r.Origin), " · ")
	line := fmt.Sprintf("%4d  %-32s %s", n, truncate(name, 32), subtleStyle.Render(truncate(meta, 60)))
	if selected {
		width := m.viewport.Width
		if width <= 0 {
			width = 80
		}
		return cursorBarStyle.Render(" ") + cursorLineStyle.Width(width-1).Render(line)
	}
	return "  " + line
}

func (m Model) renderBrowseFooter() string {
	v := m.ctrl.Snapshot()
	var b strings.Builder
	if bar := renderPageBar(v.Window, v.Nav); bar != "" {
		b.WriteString(bar)
		b.WriteString("\n")
	}
	status := m.statusMsg
	if ml := m.metricsLine(); ml != "" {
		if status != "" {
			status += "  ·  "
		}
		status += ml
	}
	help := "↑/↓: move  •  ←/→: page  •  g/G: first/last  •  Enter: details  •  /: search"
	help2 := "f: filters  •  c: clear filters  •  r: refresh  •  a: add  •  u: upload  •  q: quit"
	if m.browse.searching {
		help = "Enter: submit search  •  Esc: stop editing"
		help2 = ""
	}
	if help2 == "" {
		b.WriteString(renderFooter(status, help))
	} else {
		b.WriteString(renderFooter(status, help, help2))
	}
	return b.String()
}

// renderPageBar draws prev, the page window and next. It is empty when
// there is at most one page.
func renderPageBar(window []paging.Item, nav paging.Nav) string {
	if !nav.Visible() {
		return ""
	}
	var parts []string
	if nav.CanPrev() {
		parts = append(parts, pageStyle.Render("‹ Prev"))
	} else {
		parts = append(parts, pageDisabledStyle.Render("‹ Prev"))
	}
	for _, it := range window {
		switch {
		case it.Ellipsis:
			parts = append(parts, pageDisabledStyle.Render(it.String()))
		case it.Page == nav.Current:
			parts = append(parts, pageActiveStyle.Render(it.String()))
		default:
			parts = append(parts, pageStyle.Render(it.String()))
		}
	}
	if nav.CanNext() {
		parts = append(parts, pageStyle.Render("Next ›"))
	} else {
		parts = append(parts, pageDisabledStyle.Render("Next ›"))
	}
	return strings.Join(parts, "")
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
