package cmd

// addInspectFlags adds the various flags for the inspect command
func addInspectFlags() error {
	inspectCmd.Flags().String("network", "", "network to use (defaults to the configured default network)")
	return nil
}
