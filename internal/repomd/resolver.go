package repomd

import (
	"fmt"

	"github.com/ralt/rpmexplorer/internal/models"
	"github.com/sirupsen/logrus"
)

// Resolution is the working set of artifacts chosen from an index
type Resolution struct {
	Revision string
	Selected map[models.Category]Descriptor
	// Dropped holds alternatives that lost to a preferred representation
	Dropped []Descriptor
	// Unknown holds entries without a registered decoder
	Unknown []Descriptor
	// Filtered holds resolved entries excluded by the category allow-list
	Filtered []Descriptor
}

// Ordered returns the selected descriptors in a stable category order
func (r *Resolution) Ordered() []Descriptor {
	var out []Descriptor
	for _, c := range models.AllCategories {
		if d, ok := r.Selected[c]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Resolver applies the priority rules to an index
type Resolver struct {
	priorities models.Priorities
	supported  func(int) bool
	wants      func(models.Category) bool
}

// NewResolver creates a resolver from the run configuration
func NewResolver(config *models.Config) *Resolver {
	return &Resolver{
		priorities: config.Priorities(),
		supported:  config.SupportsDatabaseVersion,
		wants:      config.Wants,
	}
}

// ResolveFile parses the index at path and resolves it
func (r *Resolver) ResolveFile(path string) (*Resolution, error) {
	index, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	return r.Resolve(index)
}

// Resolve picks exactly one representation per logical category. The
// database form wins when its schema version is supported; otherwise the
// XML form is used. A database form with an unsupported version and no
// fallback fails the resolution.
func (r *Resolver) Resolve(index *Index) (*Resolution, error) {
	res := &Resolution{
		Revision: index.Revision,
		Selected: make(map[models.Category]Descriptor),
	}

	for _, desc := range index.Data {
		if desc.Category == models.CategoryUnknown {
			logrus.WithField("category", desc.Type).Warn("No decoder registered for category, skipping")
			res.Unknown = append(res.Unknown, desc)
			continue
		}
		if !r.wants(desc.Category) {
			logrus.Debugf("Category %s excluded by allow-list", desc.Type)
			res.Filtered = append(res.Filtered, desc)
			continue
		}
		res.Selected[desc.Category] = desc
	}

	for _, p := range r.priorities {
		preferred, hasPreferred := res.Selected[p.Preferred]
		fallback, hasFallback := res.Selected[p.Fallback]

		if !hasPreferred {
			continue
		}

		if p.VersionChecked && !r.usable(preferred) {
			if !hasFallback {
				return nil, &models.PipelineError{
					Type:     models.ErrUnsupportedSchema,
					Category: preferred.Type,
					Err:      fmt.Errorf("%w: %s", models.ErrUnsupportedSchemaVersion, describeVersion(preferred)),
				}
			}
			logrus.WithFields(logrus.Fields{
				"category": preferred.Type,
				"version":  describeVersion(preferred),
			}).Warn("Database version unsupported, using XML form")
			delete(res.Selected, p.Preferred)
			res.Dropped = append(res.Dropped, preferred)
			continue
		}

		if hasFallback {
			logrus.Debugf("Using %s over %s", preferred.Type, fallback.Type)
			delete(res.Selected, p.Fallback)
			res.Dropped = append(res.Dropped, fallback)
		}
	}

	return res, nil
}

func (r *Resolver) usable(desc Descriptor) bool {
	return desc.DatabaseVersion != nil && r.supported(*desc.DatabaseVersion)
}

func describeVersion(desc Descriptor) string {
	if desc.DatabaseVersion == nil {
		return "no database_version declared"
	}
	return fmt.Sprintf("database_version %d", *desc.DatabaseVersion)
}
