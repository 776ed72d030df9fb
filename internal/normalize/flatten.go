// Package normalize turns decoded records into canonical entities: nested
// per-package lists are flattened into rows and each row is validated
// against its kind's required fields before construction.
package normalize

import (
	"maps"

	"github.com/ralt/rpmexplorer/internal/models"
)

// Flatten returns one row list per kind. Top-level rows pass through;
// every nested entry becomes its own row carrying the owning pkgId. Empty
// sub-lists contribute nothing.
func Flatten(raw *models.Raw) map[models.Kind][]models.Record {
	out := make(map[models.Kind][]models.Record, len(raw.Rows)+len(raw.Nested))

	for kind, rows := range raw.Rows {
		out[kind] = append(out[kind], rows...)
	}

	for kind, lists := range raw.Nested {
		for _, list := range lists {
			for _, entry := range list.Entries {
				row := maps.Clone(entry)
				if row == nil {
					row = make(models.Record, 1)
				}
				row["pkgId"] = list.PkgID
				out[kind] = append(out[kind], row)
			}
		}
	}

	return out
}
