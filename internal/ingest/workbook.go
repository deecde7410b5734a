// Package ingest reads molecule spreadsheets for bulk upload and checks them
// locally before anything is sent to the server.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"molecule-browser/internal/catalog"
)

// ErrMissingColumns is wrapped by errors for sheets lacking a required column.
var ErrMissingColumns = errors.New("missing required columns")

// Column keys as the upload endpoint expects them in the header row.
const (
	ColName      = "nome_molecula"
	ColSMILES    = "smiles"
	ColReference = "referencia"
	ColPlant     = "nome_planta"
	ColDatabase  = "database"
	ColOrigin    = "origem"
	ColActivity  = "activity"
)

// RequiredColumns must all be present in the header row.
var RequiredColumns = []string{ColName, ColSMILES, ColReference, ColPlant, ColDatabase}

var aliases = map[string]string{
	"name":      ColName,
	"molecule":  ColName,
	"plant":     ColPlant,
	"plantname": ColPlant,
	"reference": ColReference,
	"origin":    ColOrigin,
}

// Row is one data row. Line is the 1-based spreadsheet row number.
type Row struct {
	Line   int
	Record catalog.NewRecord
}

// Sheet is the parsed first worksheet of a workbook.
type Sheet struct {
	Name string
	Rows []Row
}

func columnKey(header string) string {
	k := strings.ToLower(strings.TrimSpace(header))
	k = strings.ReplaceAll(k, " ", "_")
	if a, ok := aliases[strings.ReplaceAll(k, "_", "")]; ok {
		return a
	}
	return k
}

// ParseFile opens an .xlsx file from disk.
func ParseFile(path string) (Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sheet{}, err
	}
	defer f.Close()
	return ParseWorkbook(f)
}

// ParseWorkbook reads the first worksheet. Row 1 is the header; blank rows
// are skipped but keep their place in the numbering.
func ParseWorkbook(r io.Reader) (Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Sheet{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Sheet{}, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Sheet{}, fmt.Errorf("read rows from %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return Sheet{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(RequiredColumns, ", "))
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		k := columnKey(h)
		if _, dup := index[k]; !dup && k != "" {
			index[k] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return Sheet{}, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := Sheet{Name: sheets[0]}
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		out.Rows = append(out.Rows, Row{
			Line: i + 2,
			Record: catalog.NewRecord{
				Name:      cell(row, ColName),
				SMILES:    cell(row, ColSMILES),
				Reference: cell(row, ColReference),
				PlantName: cell(row, ColPlant),
				Database:  cell(row, ColDatabase),
				Origin:    cell(row, ColOrigin),
				Activity:  cell(row, ColActivity),
			},
		})
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// FieldErrors maps a column key to its validation message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return strings.Join(parts, "; ")
}

// Validate checks the fields the server requires. It returns nil when rec is
// acceptable.
func Validate(rec catalog.NewRecord) FieldErrors {
	fe := FieldErrors{}
	req := func(key, v string) {
		if strings.TrimSpace(v) == "" {
			fe[key] = "required"
		}
	}
	req(ColName, rec.Name)
	req(ColSMILES, rec.SMILES)
	req(ColReference, rec.Reference)
	req(ColPlant, rec.PlantName)
	req(ColDatabase, rec.Database)
	if s := strings.TrimSpace(rec.SMILES); s != "" && strings.ContainsAny(s, " \t") {
		fe[ColSMILES] = "must not contain whitespace"
	}
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// RowError reports the field errors of one spreadsheet row.
type RowError struct {
	Row    int
	Errors FieldErrors
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %s", e.Row, e.Errors.Error()) }

// Validate checks every row. An empty result means the sheet can be uploaded.
func (s Sheet) Validate() []RowError {
	var out []RowError
	if len(s.Rows) == 0 {
		return []RowError{{Row: 1, Errors: FieldErrors{"sheet": "no data rows"}}}
	}
	for _, r := range s.Rows {
		if fe := Validate(r.Record); fe != nil {
			out = append(out, RowError{Row: r.Line, Errors: fe})
		}
	}
	return out
}
