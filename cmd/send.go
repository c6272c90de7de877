package cmd

import (
	"fmt"
	"os"

	"github.com/crytic/contractops/cmd/exitcodes"
	"github.com/crytic/contractops/config"
	"github.com/crytic/contractops/engine"
	"github.com/crytic/contractops/logging/colors"
	"github.com/crytic/contractops/utils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// sendCmd represents the command provider for sending transactions
var sendCmd = &cobra.Command{
	Use:   "send <address> <function>",
	Short: "Signs and sends a transaction, then waits for its receipt",
	Long: `Signs a transaction calling the given function, sends it and waits for its receipt.
Sending requires security.allowWriteOperations in the project configuration. The signing key is read from
--private-key or from the ` + config.EnvPrivateKey + ` environment variable.`,
	Args:              cmdValidateFunctionArgs,
	ValidArgsFunction: cmdValidFlagArgs,
	RunE:              cmdRunSend,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the send command
	err := addSendFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the send command", err)
	}

	// Add the send command and its associated flags to the root command
	rootCmd.AddCommand(sendCmd)
}

// cmdRunSend executes the send CLI command. The write gate and the confirmation prompt run before the engine is
// asked to sign anything.
func cmdRunSend(cmd *cobra.Command, args []string) error {
	req, confirmed, err := sendRequestFromFlags(cmd, args)
	if err != nil {
		return handleRunError("send", err)
	}

	s, err := newSession(cmd.Context(), cmd)
	if err != nil {
		return handleRunError("send", err)
	}
	defer s.Close()

	value, err := utils.ParseOptionalUint256("value", req.Value)
	if err != nil {
		return handleRunError("send", err)
	}
	err = s.config.Security.CheckWrite(value)
	if err != nil {
		return handleRunError("send", err)
	}

	if s.config.Security.RequireConfirmation && !confirmed {
		network := req.Network
		if network == "" {
			network = s.config.DefaultNetwork
		}
		fmt.Fprintf(os.Stderr, "Send %s to %s on %s with value %s wei? (y/n): ", req.FunctionName, req.ContractAddress, network, valueOrZero(req.Value))
		var response string
		if _, err := fmt.Scan(&response); err != nil {
			cmdLogger.Error("Failed to scan input", err)
			return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
		}
		if response != "y" && response != "Y" {
			fmt.Fprintln(os.Stderr, "Operation canceled.")
			return nil
		}
	}

	err = registerAbiFlag(cmd.Context(), cmd, s.engine, req.ContractAddress, req.Network)
	if err != nil {
		return handleRunError("send", err)
	}

	record, err := s.engine.Send(cmd.Context(), req)
	if err != nil {
		return handleRunError("send", err)
	}
	cmdLogger.Info("Transaction confirmed: ", colors.Bold, record.Hash, colors.Reset)
	return printResult(record)
}

func sendRequestFromFlags(cmd *cobra.Command, args []string) (engine.SendRequest, bool, error) {
	req := engine.SendRequest{ContractAddress: args[0], FunctionName: args[1]}

	var err error
	if req.Network, err = cmd.Flags().GetString("network"); err != nil {
		return req, false, err
	}
	if req.Value, err = cmd.Flags().GetString("value"); err != nil {
		return req, false, err
	}
	if req.GasLimit, err = cmd.Flags().GetUint64("gas-limit"); err != nil {
		return req, false, err
	}
	if req.GasPrice, err = cmd.Flags().GetString("gas-price"); err != nil {
		return req, false, err
	}
	if req.PrivateKey, err = cmd.Flags().GetString("private-key"); err != nil {
		return req, false, err
	}
	if req.PrivateKey == "" {
		req.PrivateKey = config.PrivateKeyFromEnvironment()
	}
	if req.PrivateKey == "" {
		return req, false, errors.Errorf("no signing key: use --private-key or set %s", config.EnvPrivateKey)
	}
	if req.Parameters, err = parseParams(cmd); err != nil {
		return req, false, err
	}

	confirmed, err := cmd.Flags().GetBool("yes")
	return req, confirmed, err
}

func valueOrZero(value string) string {
	if value == "" {
		return "0"
	}
	return value
}
