package ui

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"molecule-browser/internal/api"
	"molecule-browser/internal/ingest"
)

func fillAddForm(m *Model, vals ...string) {
	for i, v := range vals {
		m.add.inputs[i].SetValue(v)
	}
}

func TestAddFormValidatesLocally(t *testing.T) {
	src := &fakeSource{records: molecules(2)}
	m := browsing(t, src)
	m = press(m, "a")
	if m.state != stateAdd {
		t.Fatalf("expected stateAdd, got %v", m.state)
	}

	fillAddForm(&m, "Quercetin", "C C")
	m, cmd := step(m, createKeyMsg("ctrl+s"))
	if cmd != nil {
		t.Fatalf("invalid form must not submit")
	}
	if m.add.errs[ingest.ColReference] != "required" {
		t.Fatalf("expected reference required, got %v", m.add.errs)
	}
	if m.add.errs[ingest.ColSMILES] != "must not contain whitespace" {
		t.Fatalf("expected smiles whitespace error, got %v", m.add.errs)
	}
	if !strings.Contains(m.View(), "must not contain whitespace") {
		t.Fatalf("expected field error in view")
	}
	if len(src.created) != 0 {
		t.Fatalf("expected nothing sent")
	}
}

func TestAddFormSubmitsAndRefetches(t *testing.T) {
	src := &fakeSource{records: molecules(2)}
	m := browsing(t, src)
	m = press(m, "a")
	fillAddForm(&m, "Quercetin", "OC1=CC=CC=C1", "doi:10.1/x", "Allium cepa", "PubChem", "Bulb", "antioxidant")

	m, cmd := step(m, createKeyMsg("ctrl+s"))
	if !m.add.submitting {
		t.Fatalf("expected submitting")
	}
	listings := len(src.searches)
	m, cmd = step(m, collect(cmd)[1])
	if m.state != stateBrowse {
		t.Fatalf("expected browse after create, got %v", m.state)
	}
	if len(src.created) != 1 || src.created[0].Activity != "antioxidant" {
		t.Fatalf("unexpected created records %+v", src.created)
	}
	if !strings.Contains(m.statusMsg, "Created") {
		t.Fatalf("unexpected status %q", m.statusMsg)
	}
	_ = collect(cmd)
	if len(src.searches) <= listings {
		t.Fatalf("expected a refetch after create")
	}
}

func TestAddFormShowsServerFieldErrors(t *testing.T) {
	src := &fakeSource{
		records:   molecules(2),
		createErr: &api.APIError{Op: "molecules.create", Status: 400, Fields: map[string][]string{"smiles": {"Invalid SMILES."}}},
	}
	m := browsing(t, src)
	m = press(m, "a")
	fillAddForm(&m, "X", "XX", "ref", "plant", "db")

	m, cmd := step(m, createKeyMsg("ctrl+s"))
	m = feed(m, collect(cmd)...)
	if m.state != stateAdd {
		t.Fatalf("expected to stay on the form, got %v", m.state)
	}
	if m.add.errs["smiles"] != "Invalid SMILES." {
		t.Fatalf("unexpected field errors %v", m.add.errs)
	}
	if !strings.Contains(m.View(), "Invalid SMILES.") {
		t.Fatalf("expected server field error in view")
	}
}

func TestAddFormEnterAdvancesThenSubmits(t *testing.T) {
	m := browsing(t, &fakeSource{records: molecules(1)})
	m = press(m, "a", "enter", "enter")
	if m.add.focus != 2 {
		t.Fatalf("expected focus 2, got %d", m.add.focus)
	}
	m = press(m, "shift+tab")
	if m.add.focus != 1 {
		t.Fatalf("expected focus 1, got %d", m.add.focus)
	}
	m = press(m, "esc")
	if m.state != stateBrowse {
		t.Fatalf("expected esc to cancel")
	}
}

func writeSheet(t *testing.T, rows ...[]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	header := []any{"nome_molecula", "smiles", "referencia", "nome_planta", "database", "origem", "activity"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("header: %v", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "molecules.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestUploadRejectsInvalidRowsLocally(t *testing.T) {
	path := writeSheet(t,
		[]any{"Quercetin", "OC1=CC=CC=C1", "ref", "Allium cepa", "PubChem", "Bulb", "antioxidant"},
		[]any{"Rutin", "", "ref", "Ruta", "PubChem", "", ""},
	)
	src := &fakeSource{records: molecules(1)}
	m := browsing(t, src)
	m = press(m, "u")
	m.upload.input.SetValue(path)

	m, cmd := step(m, createKeyMsg("enter"))
	m = feed(m, collect(cmd)...)
	if len(m.upload.rowErrs) != 1 || m.upload.rowErrs[0].Row != 3 {
		t.Fatalf("expected row 3 rejected, got %+v", m.upload.rowErrs)
	}
	if !strings.Contains(m.View(), "row 3: smiles: required") {
		t.Fatalf("expected row error in view")
	}

	m, cmd = step(m, createKeyMsg("enter"))
	m = feed(m, collect(cmd)...)
	if len(src.uploaded) != 0 {
		t.Fatalf("invalid sheet must not be uploaded")
	}
}

func TestUploadValidSheetAfterConfirmation(t *testing.T) {
	path := writeSheet(t,
		[]any{"Quercetin", "OC1=CC=CC=C1", "ref", "Allium cepa", "PubChem", "Bulb", "antioxidant"},
	)
	src := &fakeSource{records: molecules(1), uploadMsg: "1 molecules created"}
	m := browsing(t, src)
	m = press(m, "u")
	m.upload.input.SetValue(path)

	m, cmd := step(m, createKeyMsg("enter"))
	m = feed(m, collect(cmd)...)
	if !m.upload.ready() {
		t.Fatalf("expected sheet ready, err=%v rows=%v", m.upload.err, m.upload.rowErrs)
	}
	if len(src.uploaded) != 0 {
		t.Fatalf("checking must not upload")
	}

	m, cmd = step(m, createKeyMsg("enter"))
	if !m.upload.uploading {
		t.Fatalf("expected upload in flight")
	}
	m, _ = step(m, collect(cmd)[1])
	if got := src.uploaded; len(got) != 1 || got[0] != "molecules.xlsx" {
		t.Fatalf("unexpected uploads %v", got)
	}
	if m.upload.message != "1 molecules created" {
		t.Fatalf("unexpected message %q", m.upload.message)
	}
	if !strings.Contains(m.View(), "1 molecules created") {
		t.Fatalf("expected confirmation in view")
	}
}

func TestUploadShowsServerRowErrors(t *testing.T) {
	path := writeSheet(t,
		[]any{"Quercetin", "OC1=CC=CC=C1", "ref", "Allium cepa", "PubChem", "", ""},
	)
	src := &fakeSource{
		records: molecules(1),
		uploadErr: &api.APIError{
			Op: "molecules.upload", Status: 400, Message: "Validation failed",
			Rows: []api.RowError{{Row: 2, Errors: map[string]string{"smiles": "invalid structure"}}},
		},
	}
	m := browsing(t, src)
	m = press(m, "u")
	m.upload.input.SetValue(path)
	m, cmd := step(m, createKeyMsg("enter"))
	m = feed(m, collect(cmd)...)
	m, cmd = step(m, createKeyMsg("enter"))
	m = feed(m, collect(cmd)...)

	if len(m.upload.rowErrs) != 1 || m.upload.rowErrs[0].Row != 2 {
		t.Fatalf("expected server row errors, got %+v", m.upload.rowErrs)
	}
	if !strings.Contains(m.View(), "row 2: smiles: invalid structure") {
		t.Fatalf("expected server row error in view")
	}
	if !strings.HasPrefix(m.statusMsg, "Upload failed") {
		t.Fatalf("unexpected status %q", m.statusMsg)
	}
}
