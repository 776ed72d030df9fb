// Package pipeline runs one ingestion of a repository: resolve the index,
// materialize and decode each selected artifact, flatten and build the
// canonical entities.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ralt/rpmexplorer/internal/decoder"
	"github.com/ralt/rpmexplorer/internal/materialize"
	"github.com/ralt/rpmexplorer/internal/models"
	"github.com/ralt/rpmexplorer/internal/normalize"
	"github.com/ralt/rpmexplorer/internal/repomd"
	"github.com/ralt/rpmexplorer/internal/scanner"
	"github.com/ralt/rpmexplorer/internal/signer"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Pipeline holds the immutable collaborators of one run
type Pipeline struct {
	config       *models.Config
	resolver     *repomd.Resolver
	materializer *materialize.Materializer
	decoders     *decoder.Registry
	verifier     signer.Verifier
}

// New validates config and builds a pipeline. A keyring path enables
// signature verification of the index.
func New(config *models.Config) (*Pipeline, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		config:       config,
		resolver:     repomd.NewResolver(config),
		materializer: materialize.NewMaterializer(config),
		decoders:     decoder.NewRegistry(),
	}

	if config.KeyringPath != "" {
		v, err := signer.NewGPGVerifier(config.KeyringPath)
		if err != nil {
			return nil, &models.PipelineError{
				Type: models.ErrSignature,
				Err:  fmt.Errorf("failed to initialize verifier: %w", err),
			}
		}
		p.verifier = v
		logrus.Info("Signature verification enabled")
	}

	return p, nil
}

// IndexPath returns the location of the repository index
func (p *Pipeline) IndexPath() string {
	return filepath.Join(p.config.RepoDir, scanner.RepodataDir, scanner.IndexName)
}

// Run ingests the repository. Index, signature and resolution problems
// abort the run; a failing artifact is recorded on its category outcome
// and the remaining categories continue.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	indexPath := p.IndexPath()

	if p.verifier != nil {
		if err := p.verifier.VerifyFile(indexPath, filepath.Join(filepath.Dir(indexPath), scanner.SignatureName)); err != nil {
			return nil, &models.PipelineError{Type: models.ErrSignature, Err: err}
		}
		logrus.Info("Index signature verified")
	}

	resolution, err := p.resolver.ResolveFile(indexPath)
	if err != nil {
		return nil, err
	}

	selected := resolution.Ordered()
	logrus.Infof("Resolved %d categories from %s", len(selected), indexPath)

	outcomes := make([]*Outcome, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Jobs)
	for i, desc := range selected {
		g.Go(func() error {
			outcomes[i] = p.ingest(gctx, desc)
			// only cancellation stops sibling categories
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := newResult(resolution)
	for _, outcome := range outcomes {
		result.add(outcome)
	}

	return result, nil
}

// ingest processes a single category to completion
func (p *Pipeline) ingest(ctx context.Context, desc repomd.Descriptor) *Outcome {
	logger := logrus.WithField("category", desc.Type)
	outcome := &Outcome{
		Category: desc.Category,
		Entities: make(map[models.Kind][]any),
	}

	artifact, err := p.materializer.Materialize(desc)
	if err != nil {
		logger.WithError(err).Error("Failed to materialize artifact")
		outcome.Err = err
		return outcome
	}
	outcome.Artifact = artifact

	raw, err := p.decoders.Decode(ctx, artifact)
	if err != nil {
		logger.WithError(err).Error("Failed to decode artifact")
		outcome.Err = err
		return outcome
	}
	outcome.UnknownTables = raw.UnknownTables
	outcome.Rejected = append(outcome.Rejected, raw.Rejected...)

	rows := normalize.Flatten(raw)
	for _, kind := range models.AllKinds() {
		for _, row := range rows[kind] {
			entity, err := normalize.Build(kind, row)
			if err != nil {
				pkgID, _ := row["pkgId"].(string)
				outcome.Rejected = append(outcome.Rejected, models.NewRejection(desc.Category, kind, pkgID, row, err))
				continue
			}
			outcome.Entities[kind] = append(outcome.Entities[kind], entity)
		}
	}

	for _, rej := range outcome.Rejected {
		logger.WithFields(logrus.Fields{
			"kind":  rej.Kind,
			"pkgId": rej.PkgID,
		}).Warnf("Rejected record: %v", rej.Err)
	}

	logger.WithFields(logrus.Fields{
		"entities": outcome.Count(),
		"rejected": len(outcome.Rejected),
		"copied":   artifact.Copied,
	}).Info("Category ingested")

	return outcome
}
