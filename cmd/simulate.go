package cmd

import (
	"github.com/crytic/contractops/engine"
	"github.com/spf13/cobra"
)

// simulateCmd represents the command provider for transaction simulation
var simulateCmd = &cobra.Command{
	Use:   "simulate <address> <function>",
	Short: "Dry-runs a transaction without sending it",
	Long: `Estimates the gas of a transaction and executes it as a read-only call to report whether it would
succeed and what it would return. Nothing is signed or sent.`,
	Args:              cmdValidateFunctionArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunSimulate,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the simulate command
	err := addSimulateFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the simulate command", err)
	}

	// Add the simulate command and its associated flags to the root command
	rootCmd.AddCommand(simulateCmd)
}

// cmdRunSimulate executes the simulate CLI command. A transaction that would fail exits with
// ExitCodeOperationFailed after its simulation is printed.
func cmdRunSimulate(cmd *cobra.Command, args []string) error {
	estimate, err := estimateRequestFromFlags(cmd, args)
	if err != nil {
		return handleRunError("simulate", err)
	}

	s, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return handleRunError("simulate", err)
	}
	defer s.Close()

	err = registerAbiFlag(cmd.Context(), cmd, s.engine, estimate.ContractAddress, estimate.Network)
	if err != nil {
		return handleRunError("simulate", err)
	}

	result, err := s.engine.Simulate(cmd.Context(), engine.SimulateRequest{
		ContractAddress: estimate.ContractAddress,
		FunctionName:    estimate.FunctionName,
		Parameters:      estimate.Parameters,
		From:            estimate.From,
		Value:           estimate.Value,
		Network:         estimate.Network,
	})
	if err != nil {
		return handleRunError("simulate", err)
	}
	return finishCallResult(result)
}
