package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/contractops/config"
	"github.com/crytic/contractops/logging/colors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// loadProjectConfig resolves the project configuration for a command and navigates through the following
// possibilities:
// #1: If --config was used, read that file. A missing or unreadable file is an error.
// #2: Otherwise read contractops.json from the working directory, then the file in the user config directory.
// #3: If neither exists, use the default project configuration.
// Environment overrides and CLI flags are applied on top, and the result is validated.
func loadProjectConfig(cmd *cobra.Command) (*config.ProjectConfig, error) {
	err := config.LoadDotEnv(DefaultDotEnvFilename)
	if err != nil {
		return nil, err
	}

	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	var projectConfig *config.ProjectConfig

	// Possibility #1: --config was used
	if configFlagUsed {
		cmdLogger.Debug("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		projectConfig, err = config.ReadProjectConfigFromFile(configPath)
		if err != nil {
			return nil, err
		}
	} else {
		// Possibility #2: look in the usual places
		candidates, err := defaultConfigCandidates()
		if err != nil {
			return nil, err
		}
		for _, candidate := range candidates {
			if _, existenceError := os.Stat(candidate); existenceError != nil {
				continue
			}
			cmdLogger.Debug("Reading the configuration file at: ", colors.Bold, candidate, colors.Reset)
			projectConfig, err = config.ReadProjectConfigFromFile(candidate)
			if err != nil {
				return nil, err
			}
			break
		}

		// Possibility #3: nothing was found
		if projectConfig == nil {
			cmdLogger.Debug("No configuration file found, using the default project configuration")
			projectConfig = config.GetDefaultProjectConfig()
		}
	}

	err = updateProjectConfigWithRootFlags(cmd, projectConfig)
	if err != nil {
		return nil, err
	}

	for _, name := range projectConfig.ApplyEnvironment() {
		cmdLogger.Warn("Network ", colors.Bold, name, colors.Reset, " uses a demo RPC endpoint. Set ",
			config.EnvAlchemyAPIKey, " or configure networks.", name, ".rpcUrl")
	}

	err = projectConfig.Validate()
	if err != nil {
		return nil, err
	}
	return projectConfig, nil
}

// defaultConfigCandidates lists the config files tried when --config is not used, in order.
func defaultConfigCandidates() ([]string, error) {
	workingDirectory, err := os.Getwd()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	candidates := []string{filepath.Join(workingDirectory, DefaultProjectConfigFilename)}
	if userPath, err := config.DefaultConfigPath(); err == nil {
		candidates = append(candidates, userPath)
	}
	return candidates, nil
}

// updateProjectConfigWithRootFlags applies the persistent flags shared by every command.
func updateProjectConfigWithRootFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	if cmd.Flags().Changed("log-level") {
		levelName, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}
		level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelName)))
		if err != nil {
			return errors.Errorf("invalid log level '%s'", levelName)
		}
		projectConfig.Logging.Level = level
	}
	return nil
}
