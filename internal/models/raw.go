package models

// Nested is one package's relationship sub-list before flattening. Entries
// do not carry the owning identifier yet.
type Nested struct {
	PkgID   string
	Entries []Record
}

// Raw is the decoded, not yet flattened content of one artifact
type Raw struct {
	Category Category
	Rows     map[Kind][]Record
	Nested   map[Kind][]Nested
	Rejected []Rejection
	// UnknownTables lists tables of a database artifact without a row constructor
	UnknownTables []string
}

// NewRaw creates an empty result for a category
func NewRaw(category Category) *Raw {
	return &Raw{
		Category: category,
		Rows:     make(map[Kind][]Record),
		Nested:   make(map[Kind][]Nested),
	}
}

// AddRow appends a top-level record
func (r *Raw) AddRow(kind Kind, rec Record) {
	r.Rows[kind] = append(r.Rows[kind], rec)
}

// AddNested appends the sub-list of one package
func (r *Raw) AddNested(kind Kind, pkgID string, entries []Record) {
	r.Nested[kind] = append(r.Nested[kind], Nested{PkgID: pkgID, Entries: entries})
}

// Reject records a record that could not be decoded
func (r *Raw) Reject(kind Kind, pkgID string, rec Record, err error) {
	r.Rejected = append(r.Rejected, NewRejection(r.Category, kind, pkgID, rec, err))
}

// Kinds returns every kind with at least one row or sub-list
func (r *Raw) Kinds() []Kind {
	var out []Kind
	for _, k := range AllKinds() {
		if len(r.Rows[k]) > 0 || len(r.Nested[k]) > 0 {
			out = append(out, k)
		}
	}
	return out
}

// AllKinds returns every entity kind in a stable order
func AllKinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := KindDBInfo; k <= KindUpdate; k++ {
		out = append(out, k)
	}
	return out
}
