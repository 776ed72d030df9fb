package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeIndex(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, RepodataDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, IndexName), []byte(content), 0644))
}

func TestScanFindsRepositories(t *testing.T) {
	tree := t.TempDir()
	fedora := filepath.Join(tree, "fedora", "39", "x86_64")
	epel := filepath.Join(tree, "epel", "9")
	bogus := filepath.Join(tree, "bogus")

	writeIndex(t, fedora, `<?xml version="1.0"?><repomd xmlns="http://linux.duke.edu/metadata/repo"/>`)
	writeIndex(t, epel, `<repomd/>`)
	require.NoError(t, os.WriteFile(filepath.Join(epel, RepodataDir, SignatureName), []byte("sig"), 0644))
	writeIndex(t, bogus, `not an index`)

	// a repository nested inside another one is not reported
	writeIndex(t, filepath.Join(fedora, "debug"), `<repomd/>`)

	repos, err := NewFileSystemScanner().Scan(context.Background(), tree)
	require.NoError(t, err)
	require.Len(t, repos, 2)

	byRoot := map[string]ScannedRepository{}
	for _, r := range repos {
		byRoot[r.Root] = r
	}

	require.Contains(t, byRoot, fedora)
	assert.False(t, byRoot[fedora].Signed())
	assert.Equal(t, filepath.Join(fedora, RepodataDir, IndexName), byRoot[fedora].IndexPath)

	require.Contains(t, byRoot, epel)
	assert.True(t, byRoot[epel].Signed())
	assert.Equal(t, int64(len(`<repomd/>`)), byRoot[epel].IndexSize)
}

func TestDetectRepository(t *testing.T) {
	dir := t.TempDir()

	_, ok, err := DetectRepository(dir)
	require.NoError(t, err)
	assert.False(t, ok)

	writeIndex(t, dir, `<repomd/>`)
	repo, ok, err := DetectRepository(dir)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, dir, repo.Root)
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSystemScanner().Scan(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
