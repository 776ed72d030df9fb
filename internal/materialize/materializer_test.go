package materialize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ralt/rpmexplorer/internal/models"
	"github.com/ralt/rpmexplorer/internal/repomd"
	"github.com/ralt/rpmexplorer/internal/testutil"
	"github.com/ralt/rpmexplorer/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const filelistsXML = `<?xml version="1.0" encoding="UTF-8"?>
<filelists xmlns="http://linux.duke.edu/metadata/filelists" packages="1">
  <package pkgid="abc" name="bash" arch="x86_64">
    <file type="dir">/etc/bash</file>
    <file>/usr/bin/bash</file>
  </package>
</filelists>
`

type fixture struct {
	config models.Config
	desc   repomd.Descriptor
}

func archiveFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()

	compressed, err := testutil.Compress([]byte(filelistsXML), "x.gz")
	require.NoError(t, err)

	href := "repodata/abc-filelists.xml.gz"
	require.NoError(t, utils.WriteFile(filepath.Join(root, href), compressed, 0644))

	sum, err := utils.CalculateChecksum(compressed, "sha256")
	require.NoError(t, err)
	openSum, err := utils.CalculateChecksum([]byte(filelistsXML), "sha256")
	require.NoError(t, err)
	openSize := int64(len(filelistsXML))

	config := models.DefaultConfig()
	config.RepoDir = root
	config.WorkDir = filepath.Join(root, "work")
	config.ChunkSize = 16
	require.NoError(t, config.Validate())

	return fixture{
		config: config,
		desc: repomd.Descriptor{
			Type:         "filelists",
			Category:     models.CategoryFilelists,
			Href:         href,
			Checksum:     repomd.Checksum{Type: "sha256", Value: sum},
			Size:         int64(len(compressed)),
			OpenChecksum: &repomd.Checksum{Type: "sha256", Value: openSum},
			OpenSize:     &openSize,
		},
	}
}

func TestWorkName(t *testing.T) {
	f := archiveFixture(t)
	assert.Equal(t, "abc-filelists.xml", WorkName(f.desc))

	plain := f.desc
	plain.OpenChecksum = nil
	plain.Href = "repodata/comps.xml"
	assert.Equal(t, "comps.xml", WorkName(plain))
}

func TestMaterializeArchive(t *testing.T) {
	f := archiveFixture(t)

	artifact, err := NewMaterializer(&f.config).Materialize(f.desc)
	require.NoError(t, err)

	assert.True(t, artifact.IsArchive)
	assert.False(t, artifact.IsDatabase)
	assert.True(t, artifact.Copied)
	assert.Equal(t, filepath.Join(f.config.WorkDir, "abc-filelists.xml"), artifact.WorkPath)
	assert.Equal(t, int64(len(filelistsXML)), artifact.Stats.Bytes)
	assert.Greater(t, artifact.Stats.Chunks, 1)

	got, err := os.ReadFile(artifact.WorkPath)
	require.NoError(t, err)
	assert.Equal(t, filelistsXML, string(got))
}

func TestMaterializeIsIdempotent(t *testing.T) {
	f := archiveFixture(t)
	m := NewMaterializer(&f.config)

	first, err := m.Materialize(f.desc)
	require.NoError(t, err)
	firstBytes, err := os.ReadFile(first.WorkPath)
	require.NoError(t, err)

	second, err := m.Materialize(f.desc)
	require.NoError(t, err)
	assert.False(t, second.Copied)
	assert.Zero(t, second.Stats.Chunks)

	secondBytes, err := os.ReadFile(second.WorkPath)
	require.NoError(t, err)
	assert.Equal(t, firstBytes, secondBytes)
}

func TestMaterializeRawCopy(t *testing.T) {
	f := archiveFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.config.RepoDir, "repodata", "comps.xml"), []byte("<comps/>"), 0644))

	desc := repomd.Descriptor{
		Type:     "group",
		Category: models.CategoryGroup,
		Href:     "repodata/comps.xml",
		Checksum: repomd.Checksum{Type: "sha256", Value: "ignored"},
	}

	artifact, err := NewMaterializer(&f.config).Materialize(desc)
	require.NoError(t, err)
	assert.False(t, artifact.IsArchive)

	got, err := os.ReadFile(artifact.WorkPath)
	require.NoError(t, err)
	assert.Equal(t, "<comps/>", string(got))
}

func TestMaterializeVerifiesChecksums(t *testing.T) {
	f := archiveFixture(t)
	f.config.VerifyChecksums = true

	_, err := NewMaterializer(&f.config).Materialize(f.desc)
	require.NoError(t, err)

	g := archiveFixture(t)
	g.config.VerifyChecksums = true
	g.desc.OpenChecksum = &repomd.Checksum{Type: "sha256", Value: "deadbeef"}

	_, err = NewMaterializer(&g.config).Materialize(g.desc)
	require.Error(t, err)
	errType, _ := models.ErrorTypeOf(err)
	assert.Equal(t, models.ErrChecksum, errType)

	exists, err := utils.FileExists(filepath.Join(g.config.WorkDir, "abc-filelists.xml"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMaterializeMissingSource(t *testing.T) {
	f := archiveFixture(t)
	f.desc.Href = "repodata/gone.xml.gz"

	_, err := NewMaterializer(&f.config).Materialize(f.desc)
	require.Error(t, err)
	errType, _ := models.ErrorTypeOf(err)
	assert.Equal(t, models.ErrFileOp, errType)
}
