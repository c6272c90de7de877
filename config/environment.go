package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Environment variables consulted by the configuration layer.
const (
	EnvAlchemyAPIKey   = "ALCHEMY_API_KEY"
	EnvEtherscanAPIKey = "ETHERSCAN_API_KEY"
	EnvPrivateKey      = "CONTRACTOPS_PRIVATE_KEY"
)

// demoKeyMarkers are the placeholder segments of RPC URLs that ALCHEMY_API_KEY replaces.
var demoKeyMarkers = []string{"YOUR_API_KEY_HERE", "/demo"}

// LoadDotEnv loads variables from the .env file at path into the process environment. A missing file is not an
// error, and variables already set are not overridden.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WithStack(err)
	}
	return errors.Wrapf(godotenv.Load(path), "failed to load %s", path)
}

// ApplyEnvironment fills API keys from the environment. It returns the names of networks that still use a demo RPC
// endpoint so callers can warn about them.
func (p *ProjectConfig) ApplyEnvironment() []string {
	if p.AbiResolution.APIKey == "" {
		p.AbiResolution.APIKey = os.Getenv(EnvEtherscanAPIKey)
	}

	alchemyKey := strings.TrimSpace(os.Getenv(EnvAlchemyAPIKey))
	var demoNetworks []string
	for _, name := range sortedNetworkNames(p) {
		profile := p.Networks[name]
		for _, marker := range demoKeyMarkers {
			if !strings.Contains(profile.RPCURL, marker) {
				continue
			}
			if alchemyKey == "" {
				demoNetworks = append(demoNetworks, name)
				break
			}
			if marker == "/demo" {
				profile.RPCURL = strings.Replace(profile.RPCURL, marker, "/"+alchemyKey, 1)
			} else {
				profile.RPCURL = strings.Replace(profile.RPCURL, marker, alchemyKey, 1)
			}
			break
		}
	}
	return demoNetworks
}

// PrivateKeyFromEnvironment returns the default signing key, if one is set.
func PrivateKeyFromEnvironment() string {
	return strings.TrimSpace(os.Getenv(EnvPrivateKey))
}
