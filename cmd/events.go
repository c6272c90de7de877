package cmd

import (
	"github.com/crytic/contractops/engine"
	"github.com/spf13/cobra"
)

// eventsCmd represents the command provider for contract event logs
var eventsCmd = &cobra.Command{
	Use:   "events <address>",
	Short: "Lists the logs emitted by a contract",
	Long: `Lists the logs emitted by a contract in a block range. Blocks are given as decimal numbers, 0x hex,
or one of latest, earliest and pending.`,
	Args:              cmdValidateAddressArg,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunEvents,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the events command
	err := addEventsFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the events command", err)
	}

	// Add the events command and its associated flags to the root command
	rootCmd.AddCommand(eventsCmd)
}

// cmdRunEvents executes the events CLI command
func cmdRunEvents(cmd *cobra.Command, args []string) error {
	req := engine.EventsRequest{ContractAddress: args[0]}
	network, err := cmd.Flags().GetString("network")
	if err != nil {
		return handleRunError("events", err)
	}
	fromBlock, err := cmd.Flags().GetString("from-block")
	if err != nil {
		return handleRunError("events", err)
	}
	toBlock, err := cmd.Flags().GetString("to-block")
	if err != nil {
		return handleRunError("events", err)
	}
	req.Network = network
	req.FromBlock = engine.BlockRef(fromBlock)
	req.ToBlock = engine.BlockRef(toBlock)

	s, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return handleRunError("events", err)
	}
	defer s.Close()

	logs, err := s.engine.Events(cmd.Context(), req)
	if err != nil {
		return handleRunError("events", err)
	}
	return printResult(map[string]any{"events": logs, "count": len(logs)})
}
