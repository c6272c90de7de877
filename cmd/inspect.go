package cmd

import (
	"github.com/crytic/contractops/engine"
	"github.com/crytic/contractops/failures"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// inspectCmd represents the command provider for contract inspection
var inspectCmd = &cobra.Command{
	Use:               "inspect <address>",
	Short:             "Shows the code, interface and compiler metadata of a contract",
	Long:              `Shows whether a contract is deployed, its bytecode, its resolved ABI and the compiler metadata embedded in its bytecode`,
	Args:              cmdValidateAddressArg,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunInspect,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the inspect command
	err := addInspectFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the inspect command", err)
	}

	// Add the inspect command and its associated flags to the root command
	rootCmd.AddCommand(inspectCmd)
}

// cmdRunInspect executes the inspect CLI command. A contract without code is still printed, along with the error.
func cmdRunInspect(cmd *cobra.Command, args []string) error {
	network, err := cmd.Flags().GetString("network")
	if err != nil {
		return handleRunError("inspect", err)
	}

	s, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return handleRunError("inspect", err)
	}
	defer s.Close()

	info, err := s.engine.Inspect(cmd.Context(), engine.ContractInfoRequest{Address: args[0], Network: network})
	if err != nil && !errors.Is(err, failures.ErrContractNotDeployed) {
		return handleRunError("inspect", err)
	}
	if printErr := printResult(info); printErr != nil {
		return handleRunError("inspect", printErr)
	}
	if err != nil {
		return handleRunError("inspect", err)
	}
	return nil
}
