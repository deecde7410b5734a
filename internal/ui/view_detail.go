package ui

import (
	"fmt"
	"strconv"
	"strings"
)

func (m Model) renderDetailHeader() string {
	name := m.detail.record.Name
	if name == "" {
		name = "(unnamed)"
	}
	return listHeaderStyle.Render(fmt.Sprintf("%s  ·  id %d", name, m.detail.record.ID))
}

func (m Model) detailStatus() string {
	switch {
	case m.detail.loading:
		return m.spinner.View() + " Loading computed properties…"
	case m.detail.err != nil:
		return "Could not load details: " + describeError(m.detail.err)
	}
	return ""
}

func (m Model) renderDetailBody() string {
	r := m.detail.record
	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			value = subtleStyle.Render("-")
		}
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}

	row("SMILES", r.SMILES)
	row("Plant", r.PlantName)
	row("Database", r.Database)
	row("Origin", r.Origin)
	row("Reference", r.Reference)
	row("Activity", r.Activity)

	b.WriteString("\n" + listHeaderStyle.Render("Identifiers") + "\n")
	row("Formula", optString(r.Formula))
	row("InChI", optString(r.InChI))
	row("InChIKey", optString(r.InChIKey))
	row("Murcko scaffold", optString(r.MurckoScaffold))

	b.WriteString("\n" + listHeaderStyle.Render("Descriptors") + "\n")
	row("MW (average)", optFloat(r.MWAverage, 3))
	row("MW (exact)", optFloat(r.MWExact, 4))
	row("LogP", optFloat(r.LogP, 2))
	row("TPSA", optFloat(r.TPSA, 2))
	row("H-bond donors", optInt(r.HBondDonors))
	row("H-bond acceptors", optInt(r.HBondAcceptors))
	row("Heavy atoms", optInt(r.HeavyAtomCount))
	row("Aromatic rings", optInt(r.AromaticRingCount))

	b.WriteString("\n" + listHeaderStyle.Render("Scores") + "\n")
	row("QED", optFloat(r.QEDScore, 3))
	row("NP-likeness", optFloat(r.NPLikenessScore, 3))

	return strings.TrimSuffix(b.String(), "\n")
}

func optString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func optFloat(p *float64, prec int) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', prec, 64)
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
