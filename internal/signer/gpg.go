package signer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/sirupsen/logrus"
)

// GPGVerifier implements Verifier using an OpenPGP keyring
type GPGVerifier struct {
	keyring openpgp.EntityList
}

// NewGPGVerifier creates a verifier from a public keyring file
func NewGPGVerifier(keyringPath string) (*GPGVerifier, error) {
	if keyringPath == "" {
		return nil, fmt.Errorf("keyring path is empty")
	}

	data, err := os.ReadFile(keyringPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}

	// Try to parse as armored keyring first
	keyring, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		// Try as binary keyring
		keyring, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("no keys found in keyring")
	}

	return &GPGVerifier{keyring: keyring}, nil
}

// VerifyDetached checks a detached signature
func (v *GPGVerifier) VerifyDetached(signed, signature []byte) error {
	var (
		signer *openpgp.Entity
		err    error
	)
	if bytes.HasPrefix(bytes.TrimSpace(signature), []byte("-----BEGIN")) {
		signer, err = openpgp.CheckArmoredDetachedSignature(v.keyring, bytes.NewReader(signed), bytes.NewReader(signature), nil)
	} else {
		signer, err = openpgp.CheckDetachedSignature(v.keyring, bytes.NewReader(signed), bytes.NewReader(signature), nil)
	}
	if err != nil {
		return fmt.Errorf("signature check failed: %w", err)
	}

	for name := range signer.Identities {
		logrus.Debugf("Good signature from %s", name)
		break
	}
	return nil
}

// VerifyFile checks the file at path against its detached signature
func (v *GPGVerifier) VerifyFile(path, sigPath string) error {
	signed, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	signature, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}

	return v.VerifyDetached(signed, signature)
}
