// Package contractmeta reads the CBOR metadata trailer the Solidity compiler appends to deployed bytecode.
// Reference: https://docs.soliditylang.org/en/latest/metadata.html
package contractmeta

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Masterminds/semver"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/fxamacker/cbor"
)

// Metadata is the decoded CBOR map embedded at the end of contract bytecode.
type Metadata map[string]any

// metadataHashPrefixes are the map headers older compilers emit, used when the length trailer is missing.
var metadataHashPrefixes = [][]byte{
	{0xa1, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20},  // a1 65 "bzzr0" 0x58 0x20 (solc <= 0.5.8)
	{0xa2, 0x65, 98, 122, 122, 114, 48, 0x58, 0x20},  // a2 65 "bzzr0" 0x58 0x20 (solc >= 0.5.9)
	{0xa2, 0x65, 98, 122, 122, 114, 49, 0x58, 0x20},  // a2 65 "bzzr1" 0x58 0x20 (solc >= 0.5.11)
	{0xa2, 0x64, 0x69, 0x70, 0x66, 0x73, 0x58, 0x22}, // a2 64 "ipfs" 0x58 0x22 (solc >= 0.6.0)
}

// bytecodeHashKeys are the metadata keys that carry a bytecode hash, in lookup order.
var bytecodeHashKeys = [...]string{
	"ipfs",
	"bzzr1",
	"bzzr0",
}

// Extract returns the metadata embedded in bytecode, or nil when none can be decoded.
func Extract(bytecode []byte) Metadata {
	// Since solc 0.4.x the last two bytes hold the big-endian length of the CBOR map that precedes them.
	if len(bytecode) > 2 {
		length := int(binary.BigEndian.Uint16(bytecode[len(bytecode)-2:]))
		start := len(bytecode) - 2 - length
		if length > 0 && start >= 0 {
			if metadata, ok := decode(bytecode[start : len(bytecode)-2]); ok {
				return metadata
			}
		}
	}

	for _, prefix := range metadataHashPrefixes {
		offset := bytes.LastIndex(bytecode, prefix)
		if offset == -1 {
			continue
		}
		end := len(bytecode)
		if end-offset > 2 {
			end -= 2
		}
		if metadata, ok := decode(bytecode[offset:end]); ok {
			return metadata
		}
	}
	return nil
}

func decode(data []byte) (Metadata, bool) {
	var metadata Metadata
	if err := cbor.Unmarshal(data, &metadata); err != nil || len(metadata) == 0 {
		return nil, false
	}
	return metadata, true
}

// BytecodeHash returns the key and value of the bytecode hash entry, if any.
func (m Metadata) BytecodeHash() (string, []byte) {
	for _, key := range bytecodeHashKeys {
		if hash, ok := m[key].([]byte); ok {
			return key, hash
		}
	}
	return "", nil
}

// CompilerVersion returns the solc version recorded in the metadata. Release builds store three version bytes while
// prerelease builds store the full version string.
func (m Metadata) CompilerVersion() (*semver.Version, bool) {
	var raw string
	switch v := m["solc"].(type) {
	case []byte:
		if len(v) != 3 {
			return nil, false
		}
		raw = fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
	case string:
		raw = v
	default:
		return nil, false
	}
	version, err := semver.NewVersion(raw)
	if err != nil {
		return nil, false
	}
	return version, true
}

// Experimental reports whether the contract was compiled with experimental features enabled.
func (m Metadata) Experimental() bool {
	experimental, _ := m["experimental"].(bool)
	return experimental
}

// CompilerInfo is the summary of the metadata reported by contract inspection.
type CompilerInfo struct {
	SolcVersion  string `json:"solc_version,omitempty"`
	MetadataHash string `json:"metadata_hash,omitempty"`
	HashType     string `json:"hash_type,omitempty"`
	Experimental bool   `json:"experimental,omitempty"`
}

// Describe summarizes the metadata of bytecode. It returns nil when the bytecode carries no metadata.
func Describe(bytecode []byte) *CompilerInfo {
	metadata := Extract(bytecode)
	if metadata == nil {
		return nil
	}
	info := &CompilerInfo{Experimental: metadata.Experimental()}
	if version, ok := metadata.CompilerVersion(); ok {
		info.SolcVersion = version.String()
	}
	if key, hash := metadata.BytecodeHash(); hash != nil {
		info.HashType = key
		info.MetadataHash = hexutil.Encode(hash)
	}
	if info.SolcVersion == "" && info.MetadataHash == "" {
		return nil
	}
	return info
}
