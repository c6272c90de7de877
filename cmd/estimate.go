package cmd

import (
	"github.com/crytic/contractops/engine"
	"github.com/spf13/cobra"
)

// estimateCmd represents the command provider for gas estimation
var estimateCmd = &cobra.Command{
	Use:   "estimate <address> [function]",
	Short: "Estimates the gas used by a transaction",
	Long: `Estimates the gas a transaction calling the given function would use.
Without a function, the estimate is for a plain value transfer.`,
	Args:              cmdValidateEstimateArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunEstimate,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the estimate command
	err := addEstimateFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the estimate command", err)
	}

	// Add the estimate command and its associated flags to the root command
	rootCmd.AddCommand(estimateCmd)
}

// cmdValidateEstimateArgs makes sure the contract address and, optionally, a function name were provided
func cmdValidateEstimateArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
		cmdLogger.Error("Failed to validate args to the estimate command", err)
		return err
	}
	return nil
}

// cmdRunEstimate executes the estimate CLI command
func cmdRunEstimate(cmd *cobra.Command, args []string) error {
	req, err := estimateRequestFromFlags(cmd, args)
	if err != nil {
		return handleRunError("estimate", err)
	}

	s, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return handleRunError("estimate", err)
	}
	defer s.Close()

	if req.FunctionName != "" {
		err = registerAbiFlag(cmd.Context(), cmd, s.engine, req.ContractAddress, req.Network)
		if err != nil {
			return handleRunError("estimate", err)
		}
	}

	gas, err := s.engine.Estimate(cmd.Context(), req)
	if err != nil {
		return handleRunError("estimate", err)
	}
	return printResult(map[string]uint64{"gas_estimate": gas})
}

func estimateRequestFromFlags(cmd *cobra.Command, args []string) (engine.EstimateRequest, error) {
	req := engine.EstimateRequest{ContractAddress: args[0]}
	if len(args) == 2 {
		req.FunctionName = args[1]
	}

	var err error
	if req.Network, err = cmd.Flags().GetString("network"); err != nil {
		return req, err
	}
	if req.From, err = cmd.Flags().GetString("from"); err != nil {
		return req, err
	}
	if req.Value, err = cmd.Flags().GetString("value"); err != nil {
		return req, err
	}
	req.Parameters, err = parseParams(cmd)
	return req, err
}
