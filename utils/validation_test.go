package utils

import (
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/crytic/contractops/failures"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateAddress verifies well-formed addresses are accepted and each malformation is rejected.
func TestValidateAddress(t *testing.T) {
	valid := []string{
		"0x0000000000000000000000000000000000000000",
		"0xdAC17F958D2ee523a2206206994597C13D831ec7",
		"  0Xdac17f958d2ee523a2206206994597c13d831ec7 ",
	}
	for _, s := range valid {
		_, err := ValidateAddress(s)
		assert.NoError(t, err, s)
	}

	invalid := []string{
		"",
		"dac17f958d2ee523a2206206994597c13d831ec7",
		"0x1234",
		"0xdac17f958d2ee523a2206206994597c13d831ec7ff",
		"0xzac17f958d2ee523a2206206994597c13d831ec7",
	}
	for _, s := range invalid {
		_, err := ValidateAddress(s)
		var addrErr *failures.AddressFormatError
		assert.True(t, errors.As(err, &addrErr), s)
	}

	parsed, err := ValidateAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	require.NoError(t, err)
	assert.Equal(t, "0xdAC17F958D2ee523a2206206994597C13D831ec7", parsed.Hex())

	optional, err := ValidateOptionalAddress("")
	assert.NoError(t, err)
	assert.Nil(t, optional)
}

// TestValidateFunctionName verifies identifiers and full signatures are accepted.
func TestValidateFunctionName(t *testing.T) {
	for _, name := range []string{"balanceOf", "_internal", "transfer(address,uint256)", "swap((uint256,address)[],bytes)", "f()"} {
		assert.NoError(t, ValidateFunctionName(name), name)
	}
	for _, name := range []string{"", "1abc", "bad-name", "transfer(address", "transfer(address, uint256)", "f(()"} {
		assert.Error(t, ValidateFunctionName(name), name)
	}

	name, isSignature := SplitSignature("transfer(address,uint256)")
	assert.Equal(t, "transfer", name)
	assert.True(t, isSignature)
	name, isSignature = SplitSignature("balanceOf")
	assert.Equal(t, "balanceOf", name)
	assert.False(t, isSignature)
}

// TestParseUint256 verifies wei amounts parse from decimal and hex and that invalid amounts are rejected.
func TestParseUint256(t *testing.T) {
	v, err := ParseUint256("value", "1000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", v.Dec())

	v, err = ParseUint256("value", "0x0de0b6b3a7640000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", v.Dec())

	_, err = ParseUint256("value", "-1")
	assert.Error(t, err)
	_, err = ParseUint256("value", "abc")
	assert.Error(t, err)
	_, err = ParseUint256("value", "0x1"+strings.Repeat("0", 64))
	assert.Error(t, err)

	none, err := ParseOptionalUint256("value", " ")
	assert.NoError(t, err)
	assert.Nil(t, none)
}

// TestIntegerConstraints verifies bounds for signed and unsigned integers.
func TestIntegerConstraints(t *testing.T) {
	min, max := GetIntegerConstraints(false, 8)
	assert.EqualValues(t, 0, min.Int64())
	assert.EqualValues(t, 255, max.Int64())

	min, max = GetIntegerConstraints(true, 8)
	assert.EqualValues(t, -128, min.Int64())
	assert.EqualValues(t, 127, max.Int64())

	assert.True(t, IntegerFitsBitLength(big.NewInt(255), false, 8))
	assert.False(t, IntegerFitsBitLength(big.NewInt(256), false, 8))
	assert.False(t, IntegerFitsBitLength(big.NewInt(-1), false, 256))
	assert.True(t, IntegerFitsBitLength(big.NewInt(-128), true, 8))

	n, ok := ParseBigInt("-0x10")
	require.True(t, ok)
	assert.EqualValues(t, -16, n.Int64())
	_, ok = ParseBigInt("0x")
	assert.False(t, ok)
}

// TestParsePrivateKey verifies key parsing and sender derivation.
func TestParsePrivateKey(t *testing.T) {
	// Well-known development key #0 of hardhat/anvil
	key, address, err := ParsePrivateKey("0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
	require.NoError(t, err)
	assert.NotNil(t, key)
	assert.Equal(t, "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", address.Hex())

	_, _, err = ParsePrivateKey("")
	var credErr *failures.CredentialError
	assert.True(t, errors.As(err, &credErr))
	_, _, err = ParsePrivateKey("0xnothex")
	assert.Error(t, err)
}

// TestWriteFileAtomic verifies the target is replaced and no temporary files remain.
func TestWriteFileAtomic(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	target := filepath.Join(dir, "entry.json")

	require.NoError(t, WriteFileAtomic(target, []byte("first")))
	require.NoError(t, WriteFileAtomic(target, []byte("second")))

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
