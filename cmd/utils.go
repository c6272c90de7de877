package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/crytic/contractops/cmd/exitcodes"
	"github.com/crytic/contractops/contractabi"
	"github.com/crytic/contractops/engine"
	"github.com/crytic/contractops/failures"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cmdValidFlagArgs returns the flags that have not been used yet, for dynamic completion of commands that take
// no positional arguments.
func cmdValidFlagArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var unusedFlags []string
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			// Keep the "--" prefix so completion shows these are flags rather than positional arguments.
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateAddressArg makes sure exactly one positional argument, the contract address, was provided.
func cmdValidateAddressArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		err = fmt.Errorf("%s expects exactly one positional argument: the contract address", cmd.Name())
		cmdLogger.Error("Failed to validate args to the "+cmd.Name()+" command", err)
		return err
	}
	return nil
}

// cmdValidateFunctionArgs makes sure the contract address and function name were provided.
func cmdValidateFunctionArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(2)(cmd, args); err != nil {
		err = fmt.Errorf("%s expects exactly two positional arguments: the contract address and the function name", cmd.Name())
		cmdLogger.Error("Failed to validate args to the "+cmd.Name()+" command", err)
		return err
	}
	return nil
}

// handleRunError logs err on behalf of command and attaches the exit code matching its kind. Write gate
// rejections are left for main to print.
func handleRunError(command string, err error) error {
	var rejected *failures.WriteRejectedError
	if errors.As(err, &rejected) {
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeWriteRejected)
	}
	cmdLogger.Error("Failed to run the "+command+" command", err)
	return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeHandledError)
}

// printResult writes v to stdout as indented JSON. Logs go to stderr so the output stays machine readable.
func printResult(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return errors.WithStack(encoder.Encode(v))
}

// finishCallResult prints a call or simulation result and reports a failed result through the exit code.
func finishCallResult(result *engine.CallResult) error {
	if err := printResult(result); err != nil {
		return err
	}
	if !result.Success {
		return exitcodes.NewErrorWithExitCode(errors.Errorf("operation failed: %s", result.Error), exitcodes.ExitCodeOperationFailed)
	}
	return nil
}

// parseParams decodes the --params flag. Numbers keep their textual form so large integers are not rounded.
func parseParams(cmd *cobra.Command) (any, error) {
	raw, err := cmd.Flags().GetString("params")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.UseNumber()
	var params any
	if err := decoder.Decode(&params); err != nil {
		return nil, errors.Wrap(err, "--params must be a JSON array or object")
	}
	return params, nil
}

// readAbiFile parses an interface description from a file holding either a JSON ABI array or a compiler artifact
// with an "abi" field.
func readAbiFile(path string) (*contractabi.Description, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var artifact struct {
			Abi json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(trimmed, &artifact); err != nil {
			return nil, errors.Wrapf(err, "failed to parse %s", path)
		}
		if len(artifact.Abi) == 0 {
			return nil, errors.Errorf("%s has no abi field", path)
		}
		trimmed = artifact.Abi
	}
	desc, err := contractabi.Parse(trimmed)
	if err != nil {
		return nil, errors.WithMessagef(err, "invalid ABI in %s", path)
	}
	return desc, nil
}

// registerAbiFlag registers the description named by --abi-file, if the flag was used, for address on network.
func registerAbiFlag(ctx context.Context, cmd *cobra.Command, e *engine.Engine, address string, network string) error {
	if !cmd.Flags().Changed("abi-file") {
		return nil
	}
	path, err := cmd.Flags().GetString("abi-file")
	if err != nil {
		return err
	}
	desc, err := readAbiFile(path)
	if err != nil {
		return err
	}
	return e.RegisterABI(ctx, address, network, desc)
}

// addTargetFlags adds the flags shared by every command operating on a contract function.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().String("network", "", "network to use (defaults to the configured default network)")
	cmd.Flags().String("params", "", "function parameters as a JSON array, or an object keyed by parameter name")
	cmd.Flags().String("abi-file", "", "use the ABI in this file instead of looking it up")
}
