package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// FileSystemScanner implements Scanner interface for filesystem scanning
type FileSystemScanner struct{}

// NewFileSystemScanner creates a new filesystem scanner
func NewFileSystemScanner() *FileSystemScanner {
	return &FileSystemScanner{}
}

// Scan recursively scans a directory for repository roots. Repositories
// are not searched for nested repositories.
func (s *FileSystemScanner) Scan(ctx context.Context, dir string) ([]ScannedRepository, error) {
	var repos []ScannedRepository

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Check context cancellation
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Only directories can be repository roots
		if !d.IsDir() {
			return nil
		}

		repo, ok, err := s.Detect(path)
		if err != nil {
			logrus.Warnf("Failed to inspect %s: %v", path, err)
			return nil
		}
		if !ok {
			return nil
		}

		logrus.Debugf("Found repository: %s (signed: %t)", path, repo.Signed())
		repos = append(repos, repo)
		return filepath.SkipDir
	})

	if err != nil {
		return nil, fmt.Errorf("failed to scan directory: %w", err)
	}

	logrus.Infof("Found %d repositories in %s", len(repos), dir)
	return repos, nil
}

// Detect checks whether dir is a repository root
func (s *FileSystemScanner) Detect(dir string) (ScannedRepository, bool, error) {
	return DetectRepository(dir)
}
