package cmd

// addNetworksFlags adds the various flags for the networks command
func addNetworksFlags() error {
	networksCmd.Flags().Bool("check", false, "probe each network's RPC endpoint")
	return nil
}
