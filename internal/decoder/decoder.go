// Package decoder turns materialized artifacts into raw records, choosing
// the XML or relational path per category.
package decoder

import (
	"context"
	"errors"

	"github.com/ralt/rpmexplorer/internal/materialize"
	"github.com/ralt/rpmexplorer/internal/models"
)

// Decoder is the interface every category decoder implements
type Decoder interface {
	// Decode reads the working file of artifact
	Decode(ctx context.Context, artifact *materialize.Artifact) (*models.Raw, error)
}

var errNoDecoder = errors.New("no decoder registered")

// Registry maps each category to its decoder. It is built once and not
// modified afterwards.
type Registry struct {
	decoders map[models.Category]Decoder
}

// NewRegistry creates the dispatch table for every known category
func NewRegistry() *Registry {
	return &Registry{decoders: map[models.Category]Decoder{
		models.CategoryPrimary:     &XMLDecoder{category: models.CategoryPrimary, doc: primaryDocument},
		models.CategoryFilelists:   &XMLDecoder{category: models.CategoryFilelists, doc: filelistsDocument},
		models.CategoryOther:       &XMLDecoder{category: models.CategoryOther, doc: otherDocument},
		models.CategoryUpdateinfo:  &XMLDecoder{category: models.CategoryUpdateinfo, doc: updateinfoDocument},
		models.CategoryGroup:       NewCompsDecoder(models.CategoryGroup),
		models.CategoryGroupGz:     NewCompsDecoder(models.CategoryGroupGz),
		models.CategoryPrimaryDB:   NewSQLiteDecoder(models.CategoryPrimaryDB),
		models.CategoryFilelistsDB: NewSQLiteDecoder(models.CategoryFilelistsDB),
		models.CategoryOtherDB:     NewSQLiteDecoder(models.CategoryOtherDB),
	}}
}

// Get returns the decoder for a category
func (r *Registry) Get(category models.Category) (Decoder, bool) {
	d, ok := r.decoders[category]
	return d, ok
}

// Decode dispatches an artifact to its category decoder
func (r *Registry) Decode(ctx context.Context, artifact *materialize.Artifact) (*models.Raw, error) {
	d, ok := r.Get(artifact.Category())
	if !ok {
		return nil, &models.PipelineError{
			Type:     models.ErrUnknownCategory,
			Category: artifact.Descriptor.Type,
			Err:      errNoDecoder,
		}
	}
	return d.Decode(ctx, artifact)
}
