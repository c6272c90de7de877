package cmd

// DefaultProjectConfigFilename describes the default config filename looked up in the working directory.
const DefaultProjectConfigFilename = "contractops.json"

// DefaultDotEnvFilename is loaded from the working directory before the configuration is read.
const DefaultDotEnvFilename = ".env"

// LogFileName is the name of the rotating log file kept in the configured log directory.
const LogFileName = "contractops.log"
