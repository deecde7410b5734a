package ui

import (
	"fmt"
	"strings"
)

func (m Model) viewAdd() string {
	var b strings.Builder
	b.WriteString(listHeaderStyle.Render("Add molecule"))
	b.WriteString("\n")

	for i, f := range addFields {
		label := labelStyle.Render(f.label)
		if i == m.add.focus {
			label = labelStyle.Inherit(focusStyle).Render(f.label)
		}
		b.WriteString(label + m.add.inputs[i].View() + "\n")
		if msg, ok := m.add.errs[f.key]; ok {
			b.WriteString(labelStyle.Render("") + errorStyle.Render(msg) + "\n")
		}
	}

	if m.add.serverErr != nil {
		b.WriteString("\n" + errorStyle.Render("✗ "+describeError(m.add.serverErr)) + "\n")
	}
	if m.add.submitting {
		b.WriteString("\n" + m.spinner.View() + " Submitting…\n")
	}

	b.WriteString("\n")
	b.WriteString(renderFooter(m.statusMsg, "Tab/↓: next  •  Shift+Tab/↑: previous  •  Enter on last field or Ctrl+S: submit  •  Esc: cancel"))
	return b.String()
}

const maxRowErrors = 15

func (m Model) viewUpload() string {
	var b strings.Builder
	b.WriteString(listHeaderStyle.Render("Upload spreadsheet"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Columns: nome_molecula, smiles, referencia, nome_planta, database, origem, activity"))
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("File") + m.upload.input.View() + "\n\n")

	u := m.upload
	switch {
	case u.uploading:
		b.WriteString(m.spinner.View() + " Uploading " + u.path + "…\n")
	case u.message != "":
		b.WriteString(okStyle.Render("✓ "+u.message) + "\n")
	case u.ready():
		b.WriteString(okStyle.Render(fmt.Sprintf("✓ %s: %d row(s) checked", u.sheet.Name, len(u.sheet.Rows))) + "\n")
		b.WriteString(helpStyle.Render("Press Enter again to upload.") + "\n")
	}

	if u.err != nil && len(u.rowErrs) == 0 {
		b.WriteString(errorStyle.Render("✗ "+describeError(u.err)) + "\n")
	}
	if len(u.rowErrs) > 0 {
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %d row(s) rejected", len(u.rowErrs))) + "\n")
		for i, re := range u.rowErrs {
			if i == maxRowErrors {
				b.WriteString(subtleStyle.Render(fmt.Sprintf("  … %d more", len(u.rowErrs)-maxRowErrors)) + "\n")
				break
			}
			b.WriteString("  " + re.Error() + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(renderFooter(m.statusMsg, "Enter: check file, then Enter again to upload  •  Esc: back"))
	return b.String()
}
