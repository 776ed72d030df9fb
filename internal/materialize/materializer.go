// Package materialize copies selected index artifacts into the working
// directory, decompressing archives on the way.
package materialize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ralt/rpmexplorer/internal/models"
	"github.com/ralt/rpmexplorer/internal/repomd"
	"github.com/ralt/rpmexplorer/internal/utils"
	"github.com/sirupsen/logrus"
)

// Artifact is a descriptor together with its local working form
type Artifact struct {
	Descriptor repomd.Descriptor
	SourcePath string
	WorkPath   string
	IsArchive  bool
	IsDatabase bool
	// Copied is false when the working file already existed
	Copied bool
	Stats  utils.CopyStats
}

// Category returns the resolved category of the artifact
func (a *Artifact) Category() models.Category {
	return a.Descriptor.Category
}

// Materializer writes one working file per category
type Materializer struct {
	repoDir   string
	workDir   string
	chunkSize int
	verify    bool
}

// NewMaterializer creates a materializer for the configured directories
func NewMaterializer(config *models.Config) *Materializer {
	return &Materializer{
		repoDir:   config.RepoDir,
		workDir:   config.WorkDir,
		chunkSize: config.ChunkSize,
		verify:    config.VerifyChecksums,
	}
}

// WorkName returns the working file name for a descriptor: the location's
// base name, without its outer extension when the file is an archive.
func WorkName(desc repomd.Descriptor) string {
	name := filepath.Base(desc.Href)
	if desc.IsArchive() {
		return utils.StripCodecExt(name)
	}
	return name
}

// Materialize makes the artifact available in the working directory. An
// existing working file is reused as is. A copy interrupted mid-stream
// leaves a partial file behind.
func (m *Materializer) Materialize(desc repomd.Descriptor) (*Artifact, error) {
	artifact := &Artifact{
		Descriptor: desc,
		SourcePath: filepath.Join(m.repoDir, desc.Href),
		WorkPath:   filepath.Join(m.workDir, WorkName(desc)),
		IsArchive:  desc.IsArchive(),
		IsDatabase: desc.IsDatabase(),
	}

	logger := logrus.WithFields(logrus.Fields{
		"category": desc.Type,
		"work":     artifact.WorkPath,
	})

	exists, err := utils.FileExists(artifact.WorkPath)
	if err != nil {
		return nil, fileOpError(desc, err)
	}
	if exists {
		logger.Debug("Working file already present, skipping copy")
		return artifact, nil
	}

	if m.verify {
		if err := utils.VerifyFileChecksum(artifact.SourcePath, desc.Checksum.Type, desc.Checksum.Value); err != nil {
			return nil, checksumError(desc, err)
		}
	}

	if err := utils.EnsureDir(m.workDir); err != nil {
		return nil, fileOpError(desc, err)
	}

	stats, err := m.copy(artifact)
	if err != nil {
		return nil, fileOpError(desc, err)
	}
	artifact.Copied = true
	artifact.Stats = stats

	if m.verify && artifact.IsArchive {
		open := desc.OpenChecksum
		if err := utils.VerifyFileChecksum(artifact.WorkPath, open.Type, open.Value); err != nil {
			os.Remove(artifact.WorkPath)
			return nil, checksumError(desc, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"bytes":  stats.Bytes,
		"chunks": stats.Chunks,
	}).Debug("Materialized artifact")

	return artifact, nil
}

func (m *Materializer) copy(artifact *Artifact) (utils.CopyStats, error) {
	var (
		src io.ReadCloser
		err error
	)
	if artifact.IsArchive {
		src, err = utils.OpenReader(artifact.SourcePath)
	} else {
		src, err = os.Open(artifact.SourcePath)
	}
	if err != nil {
		return utils.CopyStats{}, fmt.Errorf("failed to open source: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(artifact.WorkPath)
	if err != nil {
		return utils.CopyStats{}, fmt.Errorf("failed to create working file: %w", err)
	}

	stats, err := utils.CopyChunked(dst, src, m.chunkSize)
	if err != nil {
		dst.Close()
		return stats, fmt.Errorf("failed to copy %s: %w", artifact.SourcePath, err)
	}

	if err := dst.Close(); err != nil {
		return stats, fmt.Errorf("failed to close working file: %w", err)
	}

	return stats, nil
}

func fileOpError(desc repomd.Descriptor, err error) error {
	return &models.PipelineError{Type: models.ErrFileOp, Category: desc.Type, Err: err}
}

func checksumError(desc repomd.Descriptor, err error) error {
	return &models.PipelineError{Type: models.ErrChecksum, Category: desc.Type, Err: err}
}
