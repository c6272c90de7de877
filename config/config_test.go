package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/contractops/failures"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultProjectConfig verifies the defaults validate and carry the documented networks.
func TestDefaultProjectConfig(t *testing.T) {
	cfg := GetDefaultProjectConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "ethereum", cfg.DefaultNetwork)
	assert.Len(t, cfg.Networks, 4)
	assert.EqualValues(t, 11155111, cfg.Networks["sepolia"].ChainID)
	assert.Equal(t, "0.1", cfg.Networks["arbitrum"].PriorityFeeGwei.String())
	assert.False(t, cfg.Security.AllowWriteOperations)
	assert.True(t, cfg.Security.RequireConfirmation)
}

// TestConfigFileRoundTrip verifies a written config reads back and a partial file keeps defaults.
func TestConfigFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := GetDefaultProjectConfig()
	cfg.Security.AllowWriteOperations = true
	cfg.Networks["ethereum"].MaxGasPriceGwei = decimal.RequireFromString("42.5")
	require.NoError(t, cfg.WriteToFile(path))

	read, err := ReadProjectConfigFromFile(path)
	require.NoError(t, err)
	assert.True(t, read.Security.AllowWriteOperations)
	assert.Equal(t, "42.5", read.Networks["ethereum"].MaxGasPriceGwei.String())

	partial := filepath.Join(dir, "partial.json")
	require.NoError(t, os.WriteFile(partial, []byte(`{"defaultNetwork":"sepolia","api":{"port":9000}}`), 0644))
	read, err = ReadProjectConfigFromFile(partial)
	require.NoError(t, err)
	assert.Equal(t, "sepolia", read.DefaultNetwork)
	assert.Equal(t, 9000, read.API.Port)
	assert.Equal(t, CacheBackendFile, read.AbiResolution.CacheBackend)
	assert.Len(t, read.Networks, 4)

	_, err = ReadProjectConfigFromFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

// TestValidateRejectsBadValues verifies each validation rule.
func TestValidateRejectsBadValues(t *testing.T) {
	mutations := map[string]func(*ProjectConfig){
		"unknown default network": func(c *ProjectConfig) { c.DefaultNetwork = "optimism" },
		"empty rpc url":           func(c *ProjectConfig) { c.Networks["polygon"].RPCURL = "" },
		"unknown cache backend":   func(c *ProjectConfig) { c.AbiResolution.CacheBackend = "s3" },
		"redis without address":   func(c *ProjectConfig) { c.AbiResolution.CacheBackend = CacheBackendRedis; c.AbiResolution.Redis.Addr = "" },
		"bad max value":           func(c *ProjectConfig) { c.Security.MaxTransactionValue = "lots" },
		"bad port":                func(c *ProjectConfig) { c.API.Port = 70000 },
	}
	for name, mutate := range mutations {
		cfg := GetDefaultProjectConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

// TestApplyEnvironment verifies API keys are taken from the environment and demo endpoints are reported.
func TestApplyEnvironment(t *testing.T) {
	t.Setenv(EnvEtherscanAPIKey, "explorer-key")
	t.Setenv(EnvAlchemyAPIKey, "")

	cfg := GetDefaultProjectConfig()
	demo := cfg.ApplyEnvironment()
	assert.Equal(t, "explorer-key", cfg.AbiResolution.APIKey)
	assert.Equal(t, []string{"arbitrum", "ethereum", "polygon", "sepolia"}, demo)

	t.Setenv(EnvAlchemyAPIKey, "alchemy-key")
	cfg = GetDefaultProjectConfig()
	cfg.AbiResolution.APIKey = "configured"
	cfg.Networks["sepolia"].RPCURL = "https://eth-sepolia.g.alchemy.com/v2/YOUR_API_KEY_HERE"
	assert.Empty(t, cfg.ApplyEnvironment())
	assert.Equal(t, "configured", cfg.AbiResolution.APIKey)
	assert.Equal(t, "https://eth-mainnet.g.alchemy.com/v2/alchemy-key", cfg.Networks["ethereum"].RPCURL)
	assert.Equal(t, "https://eth-sepolia.g.alchemy.com/v2/alchemy-key", cfg.Networks["sepolia"].RPCURL)
}

// TestLoadDotEnv verifies .env files populate the environment and a missing file is ignored.
func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CONTRACTOPS_PRIVATE_KEY=0xabc\n"), 0600))
	t.Setenv(EnvPrivateKey, "")
	require.NoError(t, os.Unsetenv(EnvPrivateKey))
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "0xabc", PrivateKeyFromEnvironment())
}

// TestWriteGate verifies writes are refused unless enabled and within the value ceiling.
func TestWriteGate(t *testing.T) {
	security := SecurityConfig{}
	err := security.CheckWrite(nil)
	var rejected *failures.WriteRejectedError
	require.True(t, errors.As(err, &rejected))
	assert.True(t, errors.Is(err, failures.ErrWritesDisabled))

	security.AllowWriteOperations = true
	assert.NoError(t, security.CheckWrite(uint256.NewInt(1_000_000)))

	security.MaxTransactionValue = "0x3e8"
	assert.NoError(t, security.CheckWrite(uint256.NewInt(1000)))
	assert.NoError(t, security.CheckWrite(nil))
	err = security.CheckWrite(uint256.NewInt(1001))
	require.True(t, errors.As(err, &rejected))
	assert.Contains(t, err.Error(), "1001 wei exceeds")
}
