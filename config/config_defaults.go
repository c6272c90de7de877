package config

import (
	"os"
	"path/filepath"

	"github.com/crytic/contractops/networks"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// appDirectoryName is the directory created under the user config and cache directories.
const appDirectoryName = "contractops"

// GetDefaultProjectConfig obtains a default configuration for a project.
func GetDefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		DefaultNetwork: "ethereum",
		Networks: map[string]*networks.NetworkProfile{
			"ethereum": {
				RPCURL:          "https://eth-mainnet.g.alchemy.com/v2/demo",
				ChainID:         1,
				DefaultGasLimit: 100000,
				MaxGasPriceGwei: decimal.NewFromInt(50),
				PriorityFeeGwei: decimal.NewFromInt(2),
				ExplorerURL:     "https://etherscan.io",
			},
			"sepolia": {
				RPCURL:          "https://eth-sepolia.g.alchemy.com/v2/demo",
				ChainID:         11155111,
				DefaultGasLimit: 100000,
				MaxGasPriceGwei: decimal.NewFromInt(20),
				PriorityFeeGwei: decimal.NewFromInt(1),
				ExplorerURL:     "https://sepolia.etherscan.io",
			},
			"polygon": {
				RPCURL:          "https://polygon-mainnet.g.alchemy.com/v2/demo",
				ChainID:         137,
				DefaultGasLimit: 100000,
				MaxGasPriceGwei: decimal.NewFromInt(500),
				PriorityFeeGwei: decimal.NewFromInt(30),
				ExplorerURL:     "https://polygonscan.com",
			},
			"arbitrum": {
				RPCURL:          "https://arb-mainnet.g.alchemy.com/v2/demo",
				ChainID:         42161,
				DefaultGasLimit: 100000,
				MaxGasPriceGwei: decimal.NewFromInt(5),
				PriorityFeeGwei: decimal.New(1, -1),
				ExplorerURL:     "https://arbiscan.io",
			},
		},
		AbiResolution: AbiResolutionConfig{
			CacheBackend:   CacheBackendFile,
			RequestTimeout: 30,
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "contractops:abi:",
			},
		},
		Security: SecurityConfig{
			AllowWriteOperations: false,
			RequireConfirmation:  true,
		},
		Logging: LoggingConfig{
			Level:                zerolog.InfoLevel,
			EnableConsoleLogging: true,
			MaxSizeMB:            10,
			MaxBackups:           5,
			MaxAgeDays:           30,
		},
		API: APIConfig{
			Port:         8080,
			ServeMetrics: true,
		},
		Telemetry: TelemetryConfig{
			ServiceName: appDirectoryName,
		},
	}
}

// DefaultConfigPath returns the path of the config file in the user config directory.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirectoryName, "config.json"), nil
}

// DefaultCacheDirectory returns the ABI cache directory in the user cache directory.
func DefaultCacheDirectory() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirectoryName, "abi-cache"), nil
}

// ResolvedCacheDirectory returns the configured cache directory, or the default one when none is set.
func (c *AbiResolutionConfig) ResolvedCacheDirectory() (string, error) {
	if c.CacheDirectory != "" {
		return c.CacheDirectory, nil
	}
	return DefaultCacheDirectory()
}
