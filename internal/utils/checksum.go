package utils

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// NewHash returns the hash for a repomd checksum type. "sha" is the legacy
// yum spelling of sha1.
func NewHash(hashType string) (hash.Hash, error) {
	switch strings.ToLower(hashType) {
	case "md5":
		return md5.New(), nil
	case "sha", "sha1":
		return sha1.New(), nil
	case "sha224":
		return sha256.New224(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha384":
		return sha512.New384(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum type %q", hashType)
	}
}

// CalculateChecksum calculates a specific checksum for data
func CalculateChecksum(data []byte, hashType string) (string, error) {
	h, err := NewHash(hashType)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileChecksum streams the file at path through the given hash
func FileChecksum(path, hashType string) (string, int64, error) {
	h, err := NewHash(hashType)
	if err != nil {
		return "", 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	n, err := io.Copy(h, f)
	if err != nil {
		return "", n, err
	}

	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// VerifyFileChecksum compares the file's digest with the expected value
func VerifyFileChecksum(path, hashType, expected string) error {
	sum, _, err := FileChecksum(path, hashType)
	if err != nil {
		return err
	}
	if !strings.EqualFold(sum, expected) {
		return fmt.Errorf("checksum mismatch for %s: expected %s got %s", path, expected, sum)
	}
	return nil
}
