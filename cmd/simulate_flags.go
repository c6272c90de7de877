package cmd

// addSimulateFlags adds the various flags for the simulate command
func addSimulateFlags() error {
	addTargetFlags(simulateCmd)
	simulateCmd.Flags().String("from", "", "address the transaction is sent from")
	simulateCmd.Flags().String("value", "", "value in wei, decimal or 0x hex")
	return nil
}
