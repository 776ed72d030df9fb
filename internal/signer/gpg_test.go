package signer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repomd = `<?xml version="1.0" encoding="UTF-8"?>
<repomd xmlns="http://linux.duke.edu/metadata/repo"><revision>1</revision></repomd>
`

func newKey(t *testing.T) (*openpgp.Entity, string) {
	t.Helper()

	entity, err := openpgp.NewEntity("Repo Signing", "test", "repo@example.org", nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	require.NoError(t, err)
	require.NoError(t, entity.Serialize(w))
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "RPM-GPG-KEY-test")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
	return entity, path
}

func TestVerifyFile(t *testing.T) {
	entity, keyring := newKey(t)
	dir := t.TempDir()

	indexPath := filepath.Join(dir, "repomd.xml")
	require.NoError(t, os.WriteFile(indexPath, []byte(repomd), 0644))

	var sig bytes.Buffer
	require.NoError(t, openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader([]byte(repomd)), nil))
	require.NoError(t, os.WriteFile(indexPath+".asc", sig.Bytes(), 0644))

	v, err := NewGPGVerifier(keyring)
	require.NoError(t, err)
	require.NoError(t, v.VerifyFile(indexPath, indexPath+".asc"))

	require.NoError(t, os.WriteFile(indexPath, []byte(repomd+"<!-- tampered -->"), 0644))
	assert.Error(t, v.VerifyFile(indexPath, indexPath+".asc"))
}

func TestVerifyBinarySignature(t *testing.T) {
	entity, keyring := newKey(t)

	var sig bytes.Buffer
	require.NoError(t, openpgp.DetachSign(&sig, entity, bytes.NewReader([]byte(repomd)), nil))

	v, err := NewGPGVerifier(keyring)
	require.NoError(t, err)
	assert.NoError(t, v.VerifyDetached([]byte(repomd), sig.Bytes()))
}

func TestVerifyUnknownKey(t *testing.T) {
	_, keyring := newKey(t)
	other, _ := newKey(t)

	var sig bytes.Buffer
	require.NoError(t, openpgp.ArmoredDetachSign(&sig, other, bytes.NewReader([]byte(repomd)), nil))

	v, err := NewGPGVerifier(keyring)
	require.NoError(t, err)
	assert.Error(t, v.VerifyDetached([]byte(repomd), sig.Bytes()))
}

func TestNewGPGVerifierErrors(t *testing.T) {
	_, err := NewGPGVerifier("")
	assert.Error(t, err)

	_, err = NewGPGVerifier(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	garbage := filepath.Join(t.TempDir(), "garbage")
	require.NoError(t, os.WriteFile(garbage, []byte("not a key"), 0644))
	_, err = NewGPGVerifier(garbage)
	assert.Error(t, err)
}
