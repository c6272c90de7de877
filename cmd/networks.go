package cmd

import (
	"github.com/crytic/contractops/networks"
	"github.com/spf13/cobra"
)

// networksCmd represents the command provider for listing networks
var networksCmd = &cobra.Command{
	Use:               "networks",
	Short:             "Lists the configured networks",
	Long:              `Lists the configured networks with their chain id and gas policy. With --check, each RPC endpoint is probed for its block height.`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunNetworks,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the networks command
	err := addNetworksFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the networks command", err)
	}

	// Add the networks command and its associated flags to the root command
	rootCmd.AddCommand(networksCmd)
}

// cmdRunNetworks executes the networks CLI command. Unreachable networks are reported in the listing rather than
// failing the command.
func cmdRunNetworks(cmd *cobra.Command, args []string) error {
	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return handleRunError("networks", err)
	}

	projectConfig, err := loadProjectConfig(cmd)
	if err != nil {
		return handleRunError("networks", err)
	}
	logFile, err := configureLogging(projectConfig.Logging)
	if err != nil {
		return handleRunError("networks", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	registry, err := networks.NewRegistry(projectConfig.Networks, projectConfig.DefaultNetwork, nil)
	if err != nil {
		return handleRunError("networks", err)
	}
	defer registry.Close()

	return printResult(map[string]any{"networks": registry.Describe(cmd.Context(), check)})
}
