package logging

// Values for the "module" key of each package's sub-logger.
const (
	ENGINE_SERVICE  = "engine"
	ABI_SERVICE     = "abi"
	NETWORK_SERVICE = "networks"
	API_SERVICE     = "api"
	CLI_SERVICE     = "cli"
	METRICS_SERVICE = "metrics"
	TRACING_SERVICE = "tracing"
)
