package exitcodes

const (
	// ================================
	// Platform-universal exit codes
	// ================================

	// ExitCodeSuccess indicates no errors or failures had occurred.
	ExitCodeSuccess = 0

	// ExitCodeGeneralError indicates some type of general error occurred.
	ExitCodeGeneralError = 1

	// ================================
	// Application-specific exit codes
	// ================================
	// Note: Despite not being standardized, exit codes 3-5 are often used for common use cases, so we avoid them.

	// ExitCodeHandledError indicates the error was already logged by the command and does not need to be printed
	// again by main.
	ExitCodeHandledError = 2

	// ExitCodeOperationFailed indicates the engine returned a result whose success flag is false, e.g. a reverted
	// call. The result itself is still printed.
	ExitCodeOperationFailed = 6

	// ExitCodeWriteRejected indicates a transaction was refused by the configured write gate.
	ExitCodeWriteRejected = 7
)
