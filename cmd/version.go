package cmd

import (
	"fmt"

	"github.com/crytic/contractops/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command that displays build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Long: `Print the semantic version, git commit, build time and Go version of the contractops binary.
With --json the same information is printed as a JSON object.`,
	Args:          cobra.NoArgs,
	RunE:          cmdRunVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	versionCmd.Flags().Bool("json", false, "print the build information as JSON")
	rootCmd.AddCommand(versionCmd)
}

func cmdRunVersion(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	info := version.GetInfo()
	if asJSON {
		return printResult(info)
	}
	fmt.Print(info.String())
	return nil
}
