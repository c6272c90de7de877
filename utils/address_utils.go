package utils

import (
	"encoding/hex"
	"strings"

	"github.com/crytic/contractops/failures"
	"github.com/ethereum/go-ethereum/common"
)

// ValidateAddress checks that s is a 0x-prefixed, 20-byte hex address and returns it parsed. Surrounding whitespace
// is ignored. Checksums are not enforced.
func ValidateAddress(s string) (common.Address, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return common.Address{}, &failures.AddressFormatError{Input: s, Reason: "Address cannot be empty"}
	}
	if !strings.HasPrefix(trimmed, "0x") && !strings.HasPrefix(trimmed, "0X") {
		return common.Address{}, &failures.AddressFormatError{Input: s, Reason: "Address must start with 0x"}
	}
	if len(trimmed) != 2+2*common.AddressLength {
		return common.Address{}, &failures.AddressFormatError{Input: s, Reason: "Address must be 42 characters long (including 0x)"}
	}
	b, err := hex.DecodeString(trimmed[2:])
	if err != nil {
		return common.Address{}, &failures.AddressFormatError{Input: s, Reason: "Invalid address format: " + trimmed}
	}
	return common.BytesToAddress(b), nil
}

// ValidateOptionalAddress behaves like ValidateAddress but returns nil for an empty input.
func ValidateOptionalAddress(s string) (*common.Address, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	address, err := ValidateAddress(s)
	if err != nil {
		return nil, err
	}
	return &address, nil
}
