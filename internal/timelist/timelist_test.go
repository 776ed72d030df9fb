package timelist

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ralt/rpmexplorer/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifest = `[Version]
2

[Files]
1700000000	d	4096	fedora/linux/releases/39
1700000001	f	3942	fedora/linux/releases/39/Everything/x86_64/os/repodata/repomd.xml
1700000002	f	1024	fedora/linux/releases/39/Everything/x86_64/os/repodata/abc-primary.xml.zst
1700000003	f	2048	fedora/linux/releases/39/Everything/x86_64/os/repodata/def-filelists.xml.gz
1700000004	f	4096	fedora/linux/releases/39/Everything/x86_64/os/repodata/ghi-comps.xml.xz
1700000005	l	12	fedora/linux/releases/39/Everything/x86_64/os/repodata/comps.xml
1700000006	f	5	fedora/linux/releases/39/Everything/x86_64/os/Packages/b/bash.rpm

[Checksums SHA1]
da39a3ee5e6b4b0d3255bfef95601890afd80709	fedora/linux/releases/39/Everything/x86_64/os/repodata/repomd.xml
[End]
trailing garbage is ignored
`

func TestParse(t *testing.T) {
	tl, err := Parse(strings.NewReader(manifest))
	require.NoError(t, err)

	assert.Equal(t, 2, tl.Version)
	require.Len(t, tl.Files, 7)
	assert.Equal(t, Entry{Timestamp: 1700000000, Type: TypeDirectory, Size: 4096, Path: "fedora/linux/releases/39"}, tl.Files[0])
	assert.Equal(t, TypeLink, tl.Files[5].Type)

	assert.Equal(t, "sha1", tl.ChecksumType)
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709",
		tl.Checksums["fedora/linux/releases/39/Everything/x86_64/os/repodata/repomd.xml"])
}

func TestRepodataFiles(t *testing.T) {
	tl, err := Parse(strings.NewReader(manifest))
	require.NoError(t, err)

	// links and files outside repodata are skipped
	assert.Len(t, tl.RepodataFiles(), 4)
	assert.Equal(t, map[string]int{"xml": 1, "zst": 1, "gz": 1, "xz": 1}, tl.Extensions())
	assert.Equal(t, []string{"fedora/linux/releases/39/Everything/x86_64/os"}, tl.Repositories())
}

func TestParseWithoutChecksums(t *testing.T) {
	tl, err := Parse(strings.NewReader("[Version]\n2\n[Files]\n1\tf\t0\ta/repodata/repomd.xml\n[End]\n"))
	require.NoError(t, err)
	assert.Len(t, tl.Files, 1)
	assert.Empty(t, tl.Checksums)
}

func TestParseUnsupportedVersion(t *testing.T) {
	_, err := Parse(strings.NewReader("[Version]\n3\n[Files]\n[End]\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedVersion))

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"files before version", "[Files]\n[End]\n", "cannot follow"},
		{"checksums before files", "[Version]\n2\n[Checksums SHA1]\n[End]\n", "cannot follow"},
		{"version without value", "[Version]\n[Files]\n[End]\n", "missing version"},
		{"unknown section", "[Version]\n2\n[Mirrors]\n", "unknown section"},
		{"bad type", "[Version]\n2\n[Files]\n1\tx\t0\tpath\n[End]\n", "invalid type"},
		{"bad size", "[Version]\n2\n[Files]\n1\tf\tbig\tpath\n[End]\n", "invalid size"},
		{"short row", "[Version]\n2\n[Files]\n1\tf\tpath\n[End]\n", "expected 4 columns"},
		{"data before header", "2\n", "outside of a section"},
		{"no end", "[Version]\n2\n[Files]\n", "missing [End]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseFileCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fullfiletimelist.gz")
	w, err := utils.CreateWriter(path)
	require.NoError(t, err)
	_, err = w.Write([]byte(manifest))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	tl, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, tl.Files, 7)
}

func TestVerify(t *testing.T) {
	root := t.TempDir()
	good := "a/repodata/repomd.xml"
	require.NoError(t, utils.WriteFile(filepath.Join(root, good), []byte("<repomd/>"), 0644))
	require.NoError(t, utils.WriteFile(filepath.Join(root, "a/repodata/stale.xml"), []byte("changed"), 0644))

	sum, err := utils.CalculateChecksum([]byte("<repomd/>"), "sha1")
	require.NoError(t, err)

	tl := &TimeList{
		ChecksumType: "sha1",
		Checksums: map[string]string{
			good:                   sum,
			"a/repodata/stale.xml": sum,
			"a/repodata/gone.xml":  sum,
		},
	}

	mismatches, err := tl.Verify(root)
	require.NoError(t, err)
	require.Len(t, mismatches, 2)
	assert.Equal(t, "a/repodata/gone.xml", mismatches[0].Path)
	assert.ErrorIs(t, mismatches[0].Err, fs.ErrNotExist)
	assert.Equal(t, "a/repodata/stale.xml", mismatches[1].Path)

	_, err = (&TimeList{}).Verify(root)
	assert.Error(t, err)
}
