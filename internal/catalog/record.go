// Package catalog holds the molecule record model and the in-memory filter
// engine that narrows a fetched record collection.
package catalog

// Record is a compound as returned by the listing endpoint. Computed
// properties are optional and stay nil when the server omits them.
type Record struct {
	ID        int    `json:"id"`
	Name      string `json:"nome_molecula"`
	SMILES    string `json:"smiles"`
	Reference string `json:"referencia"`
	PlantName string `json:"nome_planta"`
	Database  string `json:"database"`
	Origin    string `json:"origem"`
	Activity  string `json:"activity"`

	// ---------- identifiers ----------
	Formula        *string `json:"formula_molecular,omitempty"`
	InChI          *string `json:"inchi,omitempty"`
	InChIKey       *string `json:"inchikey,omitempty"`
	MurckoScaffold *string `json:"murcko_scaffold,omitempty"`

	// ---------- physico-chemical ----------
	MWAverage         *float64 `json:"mw_average,omitempty"`
	MWExact           *float64 `json:"mw_exact,omitempty"`
	LogP              *float64 `json:"logp,omitempty"`
	TPSA              *float64 `json:"tpsa,omitempty"`
	HBondDonors       *int     `json:"h_bond_donors,omitempty"`
	HBondAcceptors    *int     `json:"h_bond_acceptors,omitempty"`
	HeavyAtomCount    *int     `json:"heavy_atom_count,omitempty"`
	AromaticRingCount *int     `json:"aromatic_ring_count,omitempty"`

	// ---------- scores ----------
	QEDScore        *float64 `json:"qed_score,omitempty"`
	NPLikenessScore *float64 `json:"np_likeness_score,omitempty"`
}

// NewRecord is the payload for submitting a compound.
type NewRecord struct {
	Name      string `json:"nome_molecula"`
	SMILES    string `json:"smiles"`
	Reference string `json:"referencia"`
	PlantName string `json:"nome_planta"`
	Database  string `json:"database"`
	Origin    string `json:"origem"`
	Activity  string `json:"activity"`
}

// Field names a filterable record attribute.
type Field int

const (
	FieldDatabase Field = iota
	FieldOrigin
	FieldPlantName
	FieldReference
	FieldActivity
)

// Fields lists every filterable field in display order.
var Fields = []Field{FieldDatabase, FieldOrigin, FieldPlantName, FieldReference, FieldActivity}

// FieldKind selects the matching rule used for a field.
type FieldKind int

const (
	KindExact FieldKind = iota
	KindSubstring
	KindKeywords
)

// Kind reports how values of f are matched.
func (f Field) Kind() FieldKind {
	switch f {
	case FieldDatabase:
		return KindExact
	case FieldOrigin, FieldPlantName, FieldReference:
		return KindSubstring
	case FieldActivity:
		return KindKeywords
	}
	panic("catalog: unknown field")
}

func (f Field) String() string {
	switch f {
	case FieldDatabase:
		return "Database"
	case FieldOrigin:
		return "Origin"
	case FieldPlantName:
		return "Plant"
	case FieldReference:
		return "Reference"
	case FieldActivity:
		return "Activity"
	}
	return "unknown"
}

// Value returns the raw record value for f.
func (f Field) Value(r Record) string {
	switch f {
	case FieldDatabase:
		return r.Database
	case FieldOrigin:
		return r.Origin
	case FieldPlantName:
		return r.PlantName
	case FieldReference:
		return r.Reference
	case FieldActivity:
		return r.Activity
	}
	return ""
}
