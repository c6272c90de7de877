package cmd

// addCallFlags adds the various flags for the call command
func addCallFlags() error {
	addTargetFlags(callCmd)
	return nil
}
