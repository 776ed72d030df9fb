package scanner

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// An index must mention its root element near the top of the file
var repomdMarker = []byte("<repomd")

// DetectRepository reports whether dir holds repodata/repomd.xml. The index
// header is checked so that stray files of the same name are ignored.
func DetectRepository(dir string) (ScannedRepository, bool, error) {
	indexPath := filepath.Join(dir, RepodataDir, IndexName)

	f, err := os.Open(indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ScannedRepository{}, false, nil
		}
		return ScannedRepository{}, false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return ScannedRepository{}, false, err
	}
	if !info.Mode().IsRegular() {
		return ScannedRepository{}, false, nil
	}

	// Read first 512 bytes for the root element
	header := make([]byte, 512)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ScannedRepository{}, false, err
	}
	if !bytes.Contains(header[:n], repomdMarker) {
		return ScannedRepository{}, false, nil
	}

	repo := ScannedRepository{
		Root:      dir,
		IndexPath: indexPath,
		IndexSize: info.Size(),
	}

	sigPath := filepath.Join(dir, RepodataDir, SignatureName)
	if _, err := os.Stat(sigPath); err == nil {
		repo.SignaturePath = sigPath
	}

	return repo, true, nil
}
