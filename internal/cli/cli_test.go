package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

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

func writeRepo(t *testing.T, root string) {
	t.Helper()

	compressed, err := testutil.Compress([]byte(filelistsXML), "x.gz")
	require.NoError(t, err)
	require.NoError(t, utils.WriteFile(filepath.Join(root, "repodata", "abc-filelists.xml.gz"), compressed, 0644))

	index := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<repomd xmlns="http://linux.duke.edu/metadata/repo">
  <revision>42</revision>
  <data type="filelists">
    <checksum type="sha256">aa</checksum>
    <open-checksum type="sha256">bb</open-checksum>
    <location href="repodata/abc-filelists.xml.gz"/>
    <size>%d</size>
    <open-size>%d</open-size>
  </data>
  <data type="prestodelta">
    <checksum type="sha256">cc</checksum>
    <location href="repodata/prestodelta.xml.zst"/>
    <size>1</size>
  </data>
</repomd>
`, len(compressed), len(filelistsXML))
	require.NoError(t, utils.WriteFile(filepath.Join(root, "repodata", "repomd.xml"), []byte(index), 0644))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestIngestWritesJSON(t *testing.T) {
	tree := t.TempDir()
	writeRepo(t, filepath.Join(tree, "fedora", "x86_64"))

	work := filepath.Join(t.TempDir(), "work")
	jsonPath := filepath.Join(t.TempDir(), "out.json")

	_, err := execute(t, "ingest", "--repo-dir", tree, "--workdir", work, "--json", jsonPath)
	require.NoError(t, err)

	// the working directory is removed after the run
	_, err = os.Stat(work)
	assert.True(t, os.IsNotExist(err))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	var reports []struct {
		Root        string                      `json:"root"`
		Revision    string                      `json:"revision"`
		Unknown     []string                    `json:"unknown_categories"`
		Collections map[string][]map[string]any `json:"collections"`
	}
	require.NoError(t, json.Unmarshal(data, &reports))
	require.Len(t, reports, 1)

	report := reports[0]
	assert.Equal(t, filepath.Join(tree, "fedora", "x86_64"), report.Root)
	assert.Equal(t, "42", report.Revision)
	assert.Equal(t, []string{"prestodelta"}, report.Unknown)

	files := report.Collections["filelist"]
	require.Len(t, files, 2)
	assert.Equal(t, map[string]any{"pkgId": "abc", "filename": "/etc/bash", "filetype": "directory"}, files[0])
	assert.Equal(t, "file", files[1]["filetype"])
}

func TestIngestKeepWorkDir(t *testing.T) {
	tree := t.TempDir()
	writeRepo(t, tree)
	work := filepath.Join(t.TempDir(), "work")

	_, err := execute(t, "ingest", "--repo-dir", tree, "--workdir", work, "--keep-workdir")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(work, "root", "abc-filelists.xml"))
	assert.NoError(t, err)
}

func TestIngestConfigFile(t *testing.T) {
	tree := t.TempDir()
	writeRepo(t, tree)

	config := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(config, []byte(fmt.Sprintf("repo_dir: %s\ncategories: [bogus]\n", tree)), 0644))

	_, err := execute(t, "ingest", "--config", config, "--workdir", filepath.Join(t.TempDir(), "w"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")

	// flags win over the file
	_, err = execute(t, "ingest", "--config", config, "--categories", "filelists", "--workdir", filepath.Join(t.TempDir(), "w"))
	assert.NoError(t, err)
}

func TestIngestFailedCategory(t *testing.T) {
	tree := t.TempDir()
	writeRepo(t, tree)
	require.NoError(t, os.Remove(filepath.Join(tree, "repodata", "abc-filelists.xml.gz")))

	_, err := execute(t, "ingest", "--repo-dir", tree, "--workdir", filepath.Join(t.TempDir(), "w"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ingest")
}

func TestTimelistCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fullfiletimelist")
	require.NoError(t, os.WriteFile(path, []byte("[Version]\n2\n[Files]\n1\tf\t10\tpub/os/repodata/repomd.xml\n2\tf\t10\tpub/os/repodata/x-primary.xml.zst\n[End]\n"), 0644))

	out, err := execute(t, "timelist", path)
	require.NoError(t, err)
	assert.Contains(t, out, "pub/os\n")
	assert.Contains(t, out, "xml\t1\n")
	assert.Contains(t, out, "zst\t1\n")
}

func TestWorkSubdir(t *testing.T) {
	assert.Equal(t, "root", workSubdir("/srv/mirror", "/srv/mirror"))

	name := workSubdir("/srv/mirror", "/srv/mirror/fedora/39/x86_64")
	assert.True(t, strings.HasPrefix(name, "fedora_39_x86_64-"), name)
	assert.Equal(t, name, workSubdir("/srv/mirror", "/srv/mirror/fedora/39/x86_64"))

	nested := workSubdir("/m", "/m/a/b")
	flat := workSubdir("/m", "/m/a_b")
	assert.NotEqual(t, nested, flat)
	assert.NotEqual(t, "root", nested)
}

func TestIngestSiblingRepositoriesKeepTheirFiles(t *testing.T) {
	tree := t.TempDir()
	writeRepo(t, filepath.Join(tree, "a", "b"))
	writeRepo(t, filepath.Join(tree, "a_b"))

	// same artifact name in both, different content
	other := strings.Replace(filelistsXML, "/usr/bin/bash", "/usr/bin/sh", 1)
	compressed, err := testutil.Compress([]byte(other), "x.gz")
	require.NoError(t, err)
	require.NoError(t, utils.WriteFile(filepath.Join(tree, "a_b", "repodata", "abc-filelists.xml.gz"), compressed, 0644))
	index, err := os.ReadFile(filepath.Join(tree, "a_b", "repodata", "repomd.xml"))
	require.NoError(t, err)
	index = []byte(strings.Replace(string(index), fmt.Sprintf("<open-size>%d</open-size>", len(filelistsXML)),
		fmt.Sprintf("<open-size>%d</open-size>", len(other)), 1))
	require.NoError(t, os.WriteFile(filepath.Join(tree, "a_b", "repodata", "repomd.xml"), index, 0644))

	work := filepath.Join(t.TempDir(), "work")
	jsonPath := filepath.Join(t.TempDir(), "out.json")
	_, err = execute(t, "ingest", "--repo-dir", tree, "--workdir", work, "--keep-workdir", "--json", jsonPath)
	require.NoError(t, err)

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var reports []struct {
		Root        string                      `json:"root"`
		Collections map[string][]map[string]any `json:"collections"`
	}
	require.NoError(t, json.Unmarshal(data, &reports))
	require.Len(t, reports, 2)

	names := map[string]any{}
	for _, report := range reports {
		files := report.Collections["filelist"]
		require.Len(t, files, 2)
		names[report.Root] = files[1]["filename"]
	}
	assert.Equal(t, "/usr/bin/bash", names[filepath.Join(tree, "a", "b")])
	assert.Equal(t, "/usr/bin/sh", names[filepath.Join(tree, "a_b")])

	entries, err := os.ReadDir(work)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
