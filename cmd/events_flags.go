package cmd

// addEventsFlags adds the various flags for the events command
func addEventsFlags() error {
	eventsCmd.Flags().String("network", "", "network to use (defaults to the configured default network)")

	// Block range
	eventsCmd.Flags().String("from-block", "", "first block of the range (defaults to 0)")
	eventsCmd.Flags().String("to-block", "", "last block of the range (defaults to latest)")
	return nil
}
