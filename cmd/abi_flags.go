package cmd

// addAbiFlags adds the various flags for the abi commands
func addAbiFlags() error {
	abiShowCmd.Flags().String("network", "", "network to use (defaults to the configured default network)")
	return nil
}
