package utils

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
)

// Chunks lazily reads src in chunks of at most size bytes. The sequence
// ends when a read returns no data at end of stream; a read error is
// yielded once and ends the sequence. The yielded slice is reused between
// iterations.
func Chunks(src io.Reader, size int) iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		buf := make([]byte, size)
		for {
			n, err := src.Read(buf)
			if n > 0 {
				if !yield(buf[:n], nil) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(nil, err)
				}
				return
			}
		}
	}
}

// CopyStats describes a finished chunked copy
type CopyStats struct {
	Bytes  int64
	Chunks int
}

// CopyChunked writes every chunk of src to dst as soon as it is read.
// Peak memory is one chunk regardless of stream length.
func CopyChunked(dst io.Writer, src io.Reader, chunkSize int) (CopyStats, error) {
	var stats CopyStats
	for chunk, err := range Chunks(src, chunkSize) {
		if err != nil {
			return stats, fmt.Errorf("read chunk %d: %w", stats.Chunks, err)
		}
		n, err := dst.Write(chunk)
		stats.Bytes += int64(n)
		if err != nil {
			return stats, fmt.Errorf("write chunk %d: %w", stats.Chunks, err)
		}
		stats.Chunks++
	}
	return stats, nil
}

// WriteFile writes data to a file, creating directories as needed
func WriteFile(path string, data []byte, perm os.FileMode) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, perm)
}

// EnsureDir ensures a directory exists, creating it if necessary
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}
