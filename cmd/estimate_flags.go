package cmd

// addEstimateFlags adds the various flags for the estimate command
func addEstimateFlags() error {
	addTargetFlags(estimateCmd)

	// Sender and value of the estimated transaction
	estimateCmd.Flags().String("from", "", "address the transaction is sent from")
	estimateCmd.Flags().String("value", "", "value in wei, decimal or 0x hex")
	return nil
}
