package cmd

// addSendFlags adds the various flags for the send command
func addSendFlags() error {
	addTargetFlags(sendCmd)

	// Signing
	sendCmd.Flags().String("private-key", "", "hex private key used to sign (prefer the environment variable)")

	// Transaction fields
	sendCmd.Flags().String("value", "", "value in wei, decimal or 0x hex")
	sendCmd.Flags().Uint64("gas-limit", 0, "gas limit (estimated when omitted)")
	sendCmd.Flags().String("gas-price", "", "legacy gas price in wei (the network fee policy is used when omitted)")

	// Confirmation
	sendCmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return nil
}
