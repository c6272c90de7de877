package cmd

import (
	"github.com/crytic/contractops/api"
	"github.com/crytic/contractops/api/handlers"
	"github.com/spf13/cobra"
)

// serveCmd represents the command provider for the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves contract operations over HTTP",
	Long: `Serves every contract operation as a JSON endpoint until interrupted. Transactions sent through the API
are subject to the same write gate as the CLI, without the confirmation prompt.`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunServe,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the serve command
	err := addServeFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the serve command", err)
	}

	// Add the serve command and its associated flags to the root command
	rootCmd.AddCommand(serveCmd)
}

// cmdRunServe executes the serve CLI command. It returns once the server has shut down.
func cmdRunServe(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return handleRunError("serve", err)
	}
	defer s.Close()

	err = updateProjectConfigWithServeFlags(cmd, s.config)
	if err != nil {
		return handleRunError("serve", err)
	}

	deps := &handlers.Dependencies{
		Engine:   s.engine,
		Security: s.config.Security,
	}
	if s.config.API.ServeMetrics {
		deps.Metrics = s.recorder
	}
	if s.config.Security.AllowWriteOperations {
		cmdLogger.Warn("Write operations are enabled: POST /contract/send will sign and send transactions")
	}

	err = api.Start(cmd.Context(), deps, s.config.API.Port)
	if err != nil {
		return handleRunError("serve", err)
	}
	return nil
}
