// Package signer checks detached OpenPGP signatures on repository indexes.
package signer

// Verifier checks repository metadata against trusted keys
type Verifier interface {
	// VerifyDetached checks signature over signed. The signature may be
	// armored or binary.
	VerifyDetached(signed, signature []byte) error

	// VerifyFile checks the file at path against the signature at sigPath
	VerifyFile(path, sigPath string) error
}
