package contractmeta

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trailer builds the CBOR metadata solc >= 0.6 appends: {"ipfs": <34 bytes>, "solc": <3 bytes>} plus the length.
func trailer(ipfs []byte, solc []byte) []byte {
	m := []byte{0xa2, 0x64, 'i', 'p', 'f', 's', 0x58, byte(len(ipfs))}
	m = append(m, ipfs...)
	m = append(m, 0x64, 's', 'o', 'l', 'c', 0x40|byte(len(solc)))
	m = append(m, solc...)
	return append(m, byte(len(m)>>8), byte(len(m)))
}

// TestDescribeReleaseMetadata verifies the version and hash are read from a release build trailer.
func TestDescribeReleaseMetadata(t *testing.T) {
	ipfs := bytes.Repeat([]byte{0x12}, 34)
	code := append([]byte{0x60, 0x80, 0x60, 0x40, 0x52, 0xfe}, trailer(ipfs, []byte{0, 8, 19})...)

	info := Describe(code)
	require.NotNil(t, info)
	assert.Equal(t, "0.8.19", info.SolcVersion)
	assert.Equal(t, "ipfs", info.HashType)
	assert.Equal(t, "0x"+string(bytes.Repeat([]byte("12"), 34)), info.MetadataHash)
	assert.False(t, info.Experimental)
}

// TestExtractWithoutMetadata verifies bytecode without a trailer yields nothing.
func TestExtractWithoutMetadata(t *testing.T) {
	assert.Nil(t, Extract(nil))
	assert.Nil(t, Extract([]byte{0x60, 0x80, 0x60, 0x40, 0x52}))
	assert.Nil(t, Describe([]byte{0x00, 0x00, 0x00}))
}

// TestCompilerVersionForms verifies both the byte form and the prerelease string form.
func TestCompilerVersionForms(t *testing.T) {
	version, ok := Metadata{"solc": []byte{0, 5, 17}}.CompilerVersion()
	require.True(t, ok)
	assert.Equal(t, "0.5.17", version.String())

	version, ok = Metadata{"solc": "0.8.21-nightly.2023.6.1+commit.abcdef12"}.CompilerVersion()
	require.True(t, ok)
	assert.Equal(t, "nightly.2023.6.1", version.Prerelease())

	_, ok = Metadata{"solc": []byte{1}}.CompilerVersion()
	assert.False(t, ok)
	_, ok = Metadata{}.CompilerVersion()
	assert.False(t, ok)
}
