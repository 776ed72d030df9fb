package decoder

import (
	"context"
	"fmt"

	"github.com/ralt/rpmexplorer/internal/materialize"
	"github.com/ralt/rpmexplorer/internal/models"
	"github.com/ralt/rpmexplorer/internal/utils"
	"github.com/sirupsen/logrus"
)

// XMLDecoder streams an XML artifact one root child at a time and maps
// each child to records through a document layout.
type XMLDecoder struct {
	category models.Category
	doc      documentSpec
}

// Decode implements Decoder
func (d *XMLDecoder) Decode(ctx context.Context, artifact *materialize.Artifact) (*models.Raw, error) {
	return d.decodeFile(ctx, artifact.WorkPath)
}

func (d *XMLDecoder) decodeFile(ctx context.Context, path string) (*models.Raw, error) {
	r, err := utils.OpenReader(path)
	if err != nil {
		return nil, &models.PipelineError{
			Type:     models.ErrFileOp,
			Category: d.category.String(),
			Err:      fmt.Errorf("failed to open %s: %w", path, err),
		}
	}
	defer r.Close()

	raw := models.NewRaw(d.category)
	count := 0
	err = stream(ctx, r, d.doc.root, func(n *node) error {
		spec, ok := d.doc.record(n.XMLName.Local)
		if !ok {
			return nil
		}
		decodeRecord(spec, n, raw)
		count++
		return nil
	})
	if err != nil {
		return nil, &models.PipelineError{
			Type:     models.ErrDecode,
			Category: d.category.String(),
			Err:      fmt.Errorf("failed to decode %s: %w", path, err),
		}
	}

	logrus.WithFields(logrus.Fields{
		"category": d.category,
		"records":  count,
		"rejected": len(raw.Rejected),
	}).Debug("Decoded XML artifact")

	return raw, nil
}

func decodeRecord(spec recordSpec, n *node, raw *models.Raw) {
	var pkgID string
	if spec.key != nil {
		keyKind := spec.kind
		if keyKind == models.KindUnknown && len(spec.nested) > 0 {
			keyKind = spec.nested[0].kind
		}
		v, ok, err := spec.key.read(n, keyKind)
		if err != nil || !ok || v == "" {
			raw.Reject(keyKind, "", nil, &models.MissingFieldsError{Kind: keyKind, Missing: []string{spec.key.name}})
			return
		}
		pkgID = v.(string)
	}

	if spec.kind != models.KindUnknown {
		rec, err := extract(spec.fields, n, spec.kind)
		if err != nil {
			// sub-lists of a rejected package would point at nothing
			raw.Reject(spec.kind, pkgID, rec, err)
			return
		}
		raw.AddRow(spec.kind, rec)
	}

	for _, ns := range spec.nested {
		var items []*node
		if container := n.find(ns.path); container != nil {
			items = container.children(ns.list.element)
		}
		entries := make([]models.Record, 0, len(items))
		for _, item := range items {
			rec, err := extract(ns.list.fields, item, ns.kind)
			if err != nil {
				raw.Reject(ns.kind, pkgID, rec, err)
				continue
			}
			entries = append(entries, rec)
		}
		raw.AddNested(ns.kind, pkgID, entries)
	}
}
