package cmd

import (
	"github.com/crytic/contractops/engine"
	"github.com/spf13/cobra"
)

// callCmd represents the command provider for read-only function calls
var callCmd = &cobra.Command{
	Use:               "call <address> <function>",
	Short:             "Calls a read-only contract function",
	Long:              `Calls a contract function without sending a transaction and prints the decoded result`,
	Args:              cmdValidateFunctionArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunCall,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the call command
	err := addCallFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the call command", err)
	}

	// Add the call command and its associated flags to the root command
	rootCmd.AddCommand(callCmd)
}

// cmdRunCall executes the call CLI command. A reverted call prints its result and exits with
// ExitCodeOperationFailed.
func cmdRunCall(cmd *cobra.Command, args []string) error {
	network, err := cmd.Flags().GetString("network")
	if err != nil {
		return handleRunError("call", err)
	}
	params, err := parseParams(cmd)
	if err != nil {
		return handleRunError("call", err)
	}

	s, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return handleRunError("call", err)
	}
	defer s.Close()

	err = registerAbiFlag(cmd.Context(), cmd, s.engine, args[0], network)
	if err != nil {
		return handleRunError("call", err)
	}

	result, err := s.engine.Call(cmd.Context(), engine.CallRequest{
		ContractAddress: args[0],
		FunctionName:    args[1],
		Parameters:      params,
		Network:         network,
	})
	if err != nil {
		return handleRunError("call", err)
	}
	return finishCallResult(result)
}
