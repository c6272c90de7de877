package utils

import (
	"crypto/ecdsa"
	"encoding/hex"
	"strings"

	"github.com/crytic/contractops/failures"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ParsePrivateKey parses a hex-encoded secp256k1 key, with or without a 0x prefix, and returns it along with the
// address it controls. Keys shorter than 32 bytes are left-padded.
func ParsePrivateKey(s string) (*ecdsa.PrivateKey, common.Address, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if trimmed == "" {
		return nil, common.Address{}, &failures.CredentialError{Reason: "private key cannot be empty"}
	}
	if len(trimmed)%2 == 1 {
		trimmed = "0" + trimmed
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, common.Address{}, &failures.CredentialError{Reason: "private key must be hex encoded"}
	}
	if len(b) > 32 {
		return nil, common.Address{}, &failures.CredentialError{Reason: "private key must be at most 32 bytes"}
	}

	padded := make([]byte, 32)
	copy(padded[32-len(b):], b)
	key, err := crypto.ToECDSA(padded)
	if err != nil {
		return nil, common.Address{}, &failures.CredentialError{Reason: err.Error()}
	}
	return key, crypto.PubkeyToAddress(key.PublicKey), nil
}
