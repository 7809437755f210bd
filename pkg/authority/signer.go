// Package authority implements the settlement-authority boundary: the
// principal permitted to finalize a market carries a secp256k1 key, signs the
// trial transcript hash, and the ledger admits settle/escalate calls only
// from the matching address.
package authority

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer holds the settlement authority's key and signs transcript hashes.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSigner parses a hex-encoded private key (with or without 0x prefix).
func NewSigner(privateKeyHex string) (*Signer, error) {
	if privateKeyHex == "" {
		return nil, errors.New("private key cannot be empty")
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// Address returns the authority's address.
func (s *Signer) Address() common.Address {
	return s.address
}

// Sign signs a transcript hash, producing a 65-byte [R || S || V] signature.
func (s *Signer) Sign(hash common.Hash) ([]byte, error) {
	sig, err := crypto.Sign(hash.Bytes(), s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign hash: %w", err)
	}
	return sig, nil
}

// RecoverSigner recovers the address that produced a signature over hash.
func RecoverSigner(hash common.Hash, sig []byte) (common.Address, error) {
	pubKey, err := crypto.SigToPub(hash.Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// Verify reports whether sig over hash was produced by expected.
func Verify(expected common.Address, hash common.Hash, sig []byte) bool {
	recovered, err := RecoverSigner(hash, sig)
	if err != nil {
		return false
	}
	return recovered == expected
}
