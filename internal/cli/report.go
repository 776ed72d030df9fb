package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ralt/rpmexplorer/internal/models"
	"github.com/ralt/rpmexplorer/internal/pipeline"
	"github.com/ralt/rpmexplorer/internal/utils"
)

type rejectionReport struct {
	Kind   string `json:"kind"`
	PkgID  string `json:"pkgId,omitempty"`
	Reason string `json:"reason"`
}

type categoryReport struct {
	Category      string            `json:"category"`
	Href          string            `json:"href,omitempty"`
	Entities      int               `json:"entities"`
	Rejected      []rejectionReport `json:"rejected,omitempty"`
	UnknownTables []string          `json:"unknown_tables,omitempty"`
	Error         string            `json:"error,omitempty"`
}

type repoReport struct {
	Root        string           `json:"root"`
	Revision    string           `json:"revision,omitempty"`
	Unknown     []string         `json:"unknown_categories,omitempty"`
	Categories  []categoryReport `json:"categories,omitempty"`
	Collections map[string][]any `json:"collections,omitempty"`
	Error       string           `json:"error,omitempty"`
}

func newRepoReport(root string, result *pipeline.Result) *repoReport {
	report := &repoReport{
		Root:        root,
		Revision:    result.Resolution.Revision,
		Collections: make(map[string][]any),
	}

	for _, desc := range result.Resolution.Unknown {
		report.Unknown = append(report.Unknown, desc.Type)
	}

	for _, outcome := range result.Categories {
		cr := categoryReport{
			Category:      outcome.Category.String(),
			Entities:      outcome.Count(),
			UnknownTables: outcome.UnknownTables,
		}
		if outcome.Artifact != nil {
			cr.Href = outcome.Artifact.Descriptor.Href
		}
		if outcome.Err != nil {
			cr.Error = outcome.Err.Error()
		}
		for _, rej := range outcome.Rejected {
			cr.Rejected = append(cr.Rejected, rejectionReport{
				Kind:   rej.Kind.String(),
				PkgID:  rej.PkgID,
				Reason: rej.Err.Error(),
			})
		}
		report.Categories = append(report.Categories, cr)
	}

	for _, kind := range result.Kinds() {
		report.Collections[kind.String()] = result.Collections[kind].Entities
	}

	return report
}

func (r *repoReport) total() int {
	n := 0
	for _, entities := range r.Collections {
		n += len(entities)
	}
	return n
}

func writeJSON(path string, reports []*repoReport) error {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return err
	}
	return utils.WriteFile(path, append(data, '\n'), 0644)
}

func printLatest(w io.Writer, root string, packages []*models.Package) error {
	fmt.Fprintf(w, "# %s\n", root)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tNEVRA\tLOCATION")
	for _, pkg := range packages {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", pkg.Name, pkg.NEVRA(), pkg.LocationHref)
	}
	return tw.Flush()
}
