// Package config defines the project configuration for contract operations, its defaults and its environment
// overrides.
package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/crytic/contractops/networks"
	"github.com/crytic/contractops/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Cache backends for the persistent ABI cache tier.
const (
	CacheBackendMemory = "memory"
	CacheBackendFile   = "file"
	CacheBackendBolt   = "bolt"
	CacheBackendRedis  = "redis"
)

type ProjectConfig struct {
	// DefaultNetwork is the network used when a request does not name one.
	DefaultNetwork string `json:"defaultNetwork"`

	// Networks maps network names to their connection profiles. A network listed in a config file replaces the
	// default profile of the same name.
	Networks map[string]*networks.NetworkProfile `json:"networks"`

	// AbiResolution describes how contract interfaces are looked up and cached.
	AbiResolution AbiResolutionConfig `json:"abiResolution"`

	// Security describes the administrative gate applied to state-changing operations.
	Security SecurityConfig `json:"security"`

	// Logging describes the configuration used for logging.
	Logging LoggingConfig `json:"logging"`

	// API describes the HTTP tool transport.
	API APIConfig `json:"api"`

	// Telemetry describes trace export.
	Telemetry TelemetryConfig `json:"telemetry"`
}

// AbiResolutionConfig describes the configuration options used by the ABI resolver.
type AbiResolutionConfig struct {
	// APIKey authenticates requests to the remote ABI service. It is filled from ETHERSCAN_API_KEY when empty.
	APIKey string `json:"apiKey"`

	// CacheBackend selects the persistent cache tier: "file", "bolt", "redis", or "memory" for no persistent tier.
	CacheBackend string `json:"cacheBackend"`

	// CacheDirectory is where the file and bolt backends keep their data. An empty value uses the user cache
	// directory.
	CacheDirectory string `json:"cacheDirectory"`

	// Redis configures the redis backend.
	Redis RedisConfig `json:"redis"`

	// RequestTimeout is the remote lookup timeout in seconds.
	RequestTimeout int `json:"requestTimeout"`
}

// RedisConfig describes the connection used by the redis cache backend.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

// SecurityConfig describes the write gate enforced before any transaction is sent.
type SecurityConfig struct {
	// AllowWriteOperations must be true for transactions to be sent at all.
	AllowWriteOperations bool `json:"allowWriteOperations"`

	// RequireConfirmation makes the CLI prompt before sending a transaction.
	RequireConfirmation bool `json:"requireConfirmation"`

	// MaxTransactionValue is the largest value in wei, decimal or 0x hex, a transaction may carry. An empty value
	// means no limit.
	MaxTransactionValue string `json:"maxTransactionValue"`
}

// LoggingConfig describes the configuration options used for logging
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// EnableConsoleLogging describes whether console logging is enabled
	EnableConsoleLogging bool `json:"enableConsoleLogging"`

	// LogDirectory describes the directory where structured log _files_ will be outputted. If the string is empty, then
	// no log files are kept
	LogDirectory string `json:"logDirectory"`

	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `json:"maxSizeMB"`

	// MaxBackups is the number of rotated files kept.
	MaxBackups int `json:"maxBackups"`

	// MaxAgeDays is the age after which rotated files are removed.
	MaxAgeDays int `json:"maxAgeDays"`

	// Compress gzips rotated files.
	Compress bool `json:"compress"`
}

// APIConfig describes the HTTP tool transport.
type APIConfig struct {
	// Port is the port the API server listens on.
	Port int `json:"port"`

	// ServeMetrics exposes prometheus metrics at /metrics.
	ServeMetrics bool `json:"serveMetrics"`
}

// TelemetryConfig describes OpenTelemetry trace export.
type TelemetryConfig struct {
	// OTLPEndpoint is the host:port of an OTLP/HTTP collector. Tracing is disabled when it is empty.
	OTLPEndpoint string `json:"otlpEndpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `json:"insecure"`

	// ServiceName is reported as the service.name resource attribute.
	ServiceName string `json:"serviceName"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path. Values missing from
// the file keep their defaults.
// Returns the ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string) (*ProjectConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	projectConfig := GetDefaultProjectConfig()
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}
	return utils.WriteFileAtomic(path, b)
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	if len(p.Networks) == 0 {
		return errors.Errorf("at least one network must be configured")
	}
	if _, ok := p.Networks[p.DefaultNetwork]; !ok {
		return errors.Errorf("default network '%s' is not configured", p.DefaultNetwork)
	}
	for name, profile := range p.Networks {
		if profile == nil {
			return errors.Errorf("network '%s' has no profile", name)
		}
		profile.Name = name
		if err := profile.Validate(); err != nil {
			return err
		}
	}

	switch p.AbiResolution.CacheBackend {
	case CacheBackendMemory, CacheBackendFile, CacheBackendBolt:
	case CacheBackendRedis:
		if strings.TrimSpace(p.AbiResolution.Redis.Addr) == "" {
			return errors.Errorf("the redis cache backend requires abiResolution.redis.addr")
		}
	default:
		return errors.Errorf("unknown cache backend '%s'", p.AbiResolution.CacheBackend)
	}
	if p.AbiResolution.RequestTimeout < 0 {
		return errors.Errorf("abiResolution.requestTimeout cannot be negative")
	}

	if _, err := p.Security.MaxValue(); err != nil {
		return err
	}

	if p.API.Port < 0 || p.API.Port > 65535 {
		return errors.Errorf("api port %d is out of range", p.API.Port)
	}
	return nil
}

// NetworkEndpointOverrides returns the configured ABI lookup URL of every network that sets one.
func (p *ProjectConfig) NetworkEndpointOverrides() map[string]string {
	overrides := make(map[string]string)
	for name, profile := range p.Networks {
		if profile != nil && profile.AbiLookupURL != "" {
			overrides[name] = profile.AbiLookupURL
		}
	}
	return overrides
}
