// Package testutil holds fixtures shared by the package tests.
package testutil

import (
	"bytes"

	"github.com/ralt/rpmexplorer/internal/utils"
)

// Compress compresses data with the codec selected by name's suffix
func Compress(data []byte, name string) ([]byte, error) {
	var buf bytes.Buffer
	w, err := utils.NewWriter(&buf, name)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
