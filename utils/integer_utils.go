package utils

import (
	"math/big"
	"strings"

	"github.com/crytic/contractops/failures"
	"github.com/holiman/uint256"
)

// GetIntegerConstraints returns the inclusive minimum and maximum of a signed or unsigned integer of the given bit
// length.
func GetIntegerConstraints(signed bool, bitLength int) (*big.Int, *big.Int) {
	var min, max *big.Int
	if signed {
		// max = 2^(bitLength-1) - 1, min = -(2^(bitLength-1))
		max = new(big.Int).Lsh(big.NewInt(1), uint(bitLength-1))
		min = new(big.Int).Neg(max)
		max.Sub(max, big.NewInt(1))
	} else {
		max = new(big.Int).Lsh(big.NewInt(1), uint(bitLength))
		max.Sub(max, big.NewInt(1))
		min = big.NewInt(0)
	}
	return min, max
}

// IntegerFitsBitLength reports whether b is representable as an integer of the given signedness and bit length.
func IntegerFitsBitLength(b *big.Int, signed bool, bitLength int) bool {
	min, max := GetIntegerConstraints(signed, bitLength)
	return b.Cmp(min) >= 0 && b.Cmp(max) <= 0
}

// ParseBigInt parses a 0x-prefixed hex string or a decimal string, optionally negative.
func ParseBigInt(s string) (*big.Int, bool) {
	trimmed := strings.TrimSpace(s)
	negative := strings.HasPrefix(trimmed, "-")
	if negative {
		trimmed = trimmed[1:]
	}
	if trimmed == "" {
		return nil, false
	}

	base := 10
	if strings.HasPrefix(trimmed, "0x") || strings.HasPrefix(trimmed, "0X") {
		base = 16
		trimmed = trimmed[2:]
		if trimmed == "" {
			return nil, false
		}
	}
	n, ok := new(big.Int).SetString(trimmed, base)
	if !ok {
		return nil, false
	}
	if negative {
		n.Neg(n)
	}
	return n, true
}

// ParseUint256 parses a wei amount given as 0x-hex or decimal. The value must fit in 256 unsigned bits.
func ParseUint256(field string, s string) (*uint256.Int, error) {
	n, ok := ParseBigInt(s)
	if !ok || strings.HasPrefix(strings.TrimSpace(s), "-") {
		return nil, &failures.ValueFormatError{Field: field, Input: s, Reason: "expected a decimal or 0x-prefixed hex number"}
	}
	value, overflow := uint256.FromBig(n)
	if overflow {
		return nil, &failures.ValueFormatError{Field: field, Input: s, Reason: "value exceeds 256 bits"}
	}
	return value, nil
}

// ParseOptionalUint256 behaves like ParseUint256 but returns nil for an empty input.
func ParseOptionalUint256(field string, s string) (*uint256.Int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return ParseUint256(field, s)
}
