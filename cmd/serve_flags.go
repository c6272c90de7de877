package cmd

import (
	"github.com/crytic/contractops/config"
	"github.com/spf13/cobra"
)

// addServeFlags adds the various flags for the serve command
func addServeFlags() error {
	serveCmd.Flags().Int("port", 0, "port to listen on (overrides api.port)")
	serveCmd.Flags().Bool("no-metrics", false, "do not expose /metrics")
	return nil
}

// updateProjectConfigWithServeFlags will update the given projectConfig with any CLI arguments that were provided
// to the serve command
func updateProjectConfigWithServeFlags(cmd *cobra.Command, projectConfig *config.ProjectConfig) error {
	if cmd.Flags().Changed("port") {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return err
		}
		projectConfig.API.Port = port
	}

	if cmd.Flags().Changed("no-metrics") {
		noMetrics, err := cmd.Flags().GetBool("no-metrics")
		if err != nil {
			return err
		}
		projectConfig.API.ServeMetrics = !noMetrics
	}
	return nil
}
