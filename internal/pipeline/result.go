package pipeline

import (
	"sort"

	"github.com/ralt/rpmexplorer/internal/materialize"
	"github.com/ralt/rpmexplorer/internal/models"
	"github.com/ralt/rpmexplorer/internal/repomd"
)

// Outcome is the per-category result of a run: built entities plus every
// record that was rejected on the way.
type Outcome struct {
	Category      models.Category
	Artifact      *materialize.Artifact
	Entities      map[models.Kind][]any
	Rejected      []models.Rejection
	UnknownTables []string
	Err           error
}

// Clean reports whether the category completed without failure or rejection
func (o *Outcome) Clean() bool {
	return o.Err == nil && len(o.Rejected) == 0
}

// Count returns the number of built entities across all kinds
func (o *Outcome) Count() int {
	n := 0
	for _, entities := range o.Entities {
		n += len(entities)
	}
	return n
}

// Collection gathers one entity kind across categories
type Collection struct {
	Kind     models.Kind
	Entities []any
}

// Result is the outcome of a full run
type Result struct {
	Resolution  *repomd.Resolution
	Categories  []*Outcome
	Collections map[models.Kind]*Collection
}

func newResult(resolution *repomd.Resolution) *Result {
	return &Result{
		Resolution:  resolution,
		Collections: make(map[models.Kind]*Collection),
	}
}

func (r *Result) add(outcome *Outcome) {
	r.Categories = append(r.Categories, outcome)
	for _, kind := range models.AllKinds() {
		entities := outcome.Entities[kind]
		if len(entities) == 0 {
			continue
		}
		c, ok := r.Collections[kind]
		if !ok {
			c = &Collection{Kind: kind}
			r.Collections[kind] = c
		}
		c.Entities = append(c.Entities, entities...)
	}
}

// Failed returns the categories that could not be ingested
func (r *Result) Failed() []*Outcome {
	var out []*Outcome
	for _, o := range r.Categories {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Rejected returns the total number of rejected records
func (r *Result) Rejected() int {
	n := 0
	for _, o := range r.Categories {
		n += len(o.Rejected)
	}
	return n
}

// Kinds returns the kinds present in the result in stable order
func (r *Result) Kinds() []models.Kind {
	var out []models.Kind
	for _, kind := range models.AllKinds() {
		if _, ok := r.Collections[kind]; ok {
			out = append(out, kind)
		}
	}
	return out
}

// Entities returns the entities of one kind with their concrete type.
// Entities of another type are skipped.
func Entities[T any](r *Result, kind models.Kind) []T {
	c, ok := r.Collections[kind]
	if !ok {
		return nil
	}
	out := make([]T, 0, len(c.Entities))
	for _, e := range c.Entities {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// LatestPackages returns the newest build of every package name and
// architecture, sorted by name.
func (r *Result) LatestPackages() []*models.Package {
	type key struct{ name, arch string }

	latest := make(map[key]*models.Package)
	for _, pkg := range Entities[*models.Package](r, models.KindPackages) {
		k := key{pkg.Name, pkg.Arch}
		if cur, ok := latest[k]; !ok || pkg.CompareEVR(*cur) > 0 {
			latest[k] = pkg
		}
	}

	out := make([]*models.Package, 0, len(latest))
	for _, pkg := range latest {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Arch < out[j].Arch
	})
	return out
}
