package cmd

import (
	"github.com/crytic/contractops/logging/colors"
	"github.com/spf13/cobra"
)

// abiCmd groups the commands that manage contract interfaces
var abiCmd = &cobra.Command{
	Use:   "abi",
	Short: "Manages resolved contract interfaces",
	Long:  `Shows the interface resolved for a contract, or clears every cached interface`,
}

// abiShowCmd represents the command provider for printing a resolved interface
var abiShowCmd = &cobra.Command{
	Use:               "show <address>",
	Short:             "Prints the ABI resolved for a contract",
	Long:              `Prints the ABI resolved for a contract, looking it up remotely when it is not cached`,
	Args:              cmdValidateAddressArg,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunAbiShow,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// abiClearCmd represents the command provider for clearing the interface cache
var abiClearCmd = &cobra.Command{
	Use:               "clear",
	Short:             "Clears every cached ABI",
	Long:              `Clears every cache tier, including interfaces registered manually`,
	Args:              cobra.NoArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunAbiClear,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the abi commands
	err := addAbiFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the abi command", err)
	}

	// Add the abi commands to the root command
	abiCmd.AddCommand(abiShowCmd, abiClearCmd)
	rootCmd.AddCommand(abiCmd)
}

// cmdRunAbiShow executes the abi show CLI command
func cmdRunAbiShow(cmd *cobra.Command, args []string) error {
	network, err := cmd.Flags().GetString("network")
	if err != nil {
		return handleRunError("abi show", err)
	}

	s, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return handleRunError("abi show", err)
	}
	defer s.Close()

	desc, err := s.engine.ResolveABI(cmd.Context(), args[0], network)
	if err != nil {
		return handleRunError("abi show", err)
	}
	return printResult(desc)
}

// cmdRunAbiClear executes the abi clear CLI command
func cmdRunAbiClear(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return handleRunError("abi clear", err)
	}
	defer s.Close()

	err = s.engine.ClearABICache(cmd.Context())
	if err != nil {
		return handleRunError("abi clear", err)
	}
	cmdLogger.Info(colors.Bold, "ABI cache cleared", colors.Reset)
	return nil
}
