package ui

import "strings"

// setupScreen centers a boxed card with help underneath it.
func (m Model) setupScreen(card []string, help string) string {
	center := centeredStyle.Width(m.width)
	box := welcomeBoxStyle.Render(strings.Join(card, "\n"))
	return center.Render(box) + "\n\n" + center.Render(help)
}

func (m Model) viewWelcome() string {
	card := []string{
		titleStyle.Render(appTitle),
		subtitleStyle.Render("Search, filter and page through natural-product molecules"),
		"",
	}
	if m.cfg.Token == "" {
		card = append(card, warnStyle.Render("⚠ No token found (~/.molbrowse.yaml or MOLBROWSE_TOKEN)"))
	} else {
		card = append(card, okStyle.Render("✓ Token present"))
	}
	card = append(card, subtleStyle.Render("API: "+m.cfg.API.BaseURL))
	if m.hasConfig {
		card = append(card, subtleStyle.Render("Config: "+m.cfgPath))
	}
	if m.statusMsg != "" {
		card = append(card, subtleStyle.Render(m.statusMsg))
	}
	return m.setupScreen(card, renderFooter("", "Enter: continue  •  q: quit"))
}

func (m Model) viewTokenPrompt() string {
	card := []string{
		titleStyle.Render("API Token"),
		subtitleStyle.Render("Enter the bearer token for " + m.cfg.API.BaseURL),
		"",
		m.ti.View(),
	}
	if m.validateErr != nil {
		card = append(card, errorStyle.Render("✗ "+describeError(m.validateErr)))
	}
	return m.setupScreen(card, renderFooter(m.statusMsg, "Enter: confirm  •  Esc: back"))
}

func (m Model) viewValidating() string {
	card := []string{
		titleStyle.Render("Connecting"),
		"",
		m.spinner.View() + " " + subtitleStyle.Render("Loading molecules…"),
	}
	return m.setupScreen(card, renderFooter("", "q: quit"))
}
