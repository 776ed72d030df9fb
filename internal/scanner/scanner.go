package scanner

import "context"

// Well-known locations inside a repository root
const (
	RepodataDir   = "repodata"
	IndexName     = "repomd.xml"
	SignatureName = "repomd.xml.asc"
)

// ScannedRepository represents a repository root found during scanning
type ScannedRepository struct {
	Root      string
	IndexPath string
	// SignaturePath is empty when the index is unsigned
	SignaturePath string
	IndexSize     int64
}

// Signed reports whether a detached index signature was found
func (r ScannedRepository) Signed() bool {
	return r.SignaturePath != ""
}

// Scanner interface for discovering repositories
type Scanner interface {
	// Scan recursively scans a directory for repository roots
	Scan(ctx context.Context, dir string) ([]ScannedRepository, error)

	// Detect checks whether dir is a repository root
	Detect(dir string) (ScannedRepository, bool, error)
}
