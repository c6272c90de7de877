package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/crytic/contractops/logging"
	"github.com/crytic/contractops/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cmdLogger reports CLI progress on the console until the project configuration replaces the global logger.
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true).NewSubLogger("module", logging.CLI_SERVICE)

var rootCmd = &cobra.Command{
	Use:     "contractops",
	Short:   "Reads, simulates and sends EVM smart contract operations",
	Long:    "contractops inspects, calls, simulates and transacts with deployed EVM smart contracts across several networks",
	Version: version.GetInfo().Short(),
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "path to the project configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "overrides the configured log level (trace, debug, info, warn, error)")
}

// Execute runs the root command. An interrupt cancels the context handed to the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
