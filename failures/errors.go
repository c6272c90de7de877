// Package failures defines the error taxonomy surfaced by contract operations and translates raw RPC and ABI service
// failures into categorized, human-readable errors.
package failures

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var (
	// ErrSourceNotVerified is reported by the remote ABI service for contracts without verified source.
	ErrSourceNotVerified = errors.New("contract source code not verified")

	// ErrUnsupportedNetwork indicates no remote ABI endpoint is known for a network.
	ErrUnsupportedNetwork = errors.New("no ABI lookup endpoint for network")

	// ErrContractNotDeployed indicates there is no code at the target address.
	ErrContractNotDeployed = errors.New("contract not deployed")

	// ErrWritesDisabled indicates write operations were rejected before reaching the engine.
	ErrWritesDisabled = errors.New("write operations are disabled in configuration")
)

// AddressFormatError indicates a malformed contract or account address.
type AddressFormatError struct {
	Input  string
	Reason string
}

func (e *AddressFormatError) Error() string {
	return e.Reason
}

// FunctionNameError indicates a function reference that is neither an identifier nor a signature.
type FunctionNameError struct {
	Input  string
	Reason string
}

func (e *FunctionNameError) Error() string {
	return e.Reason
}

// UnknownNetworkError indicates a network name that has no configured profile.
type UnknownNetworkError struct {
	Name  string
	Known []string
}

func (e *UnknownNetworkError) Error() string {
	return fmt.Sprintf("Unsupported network: %s. Available networks: %s", e.Name, strings.Join(e.Known, ", "))
}

// InterfaceUnavailableError indicates no interface description could be resolved for a contract. Err is one of
// ErrSourceNotVerified, ErrUnsupportedNetwork or a *RemoteServiceError.
type InterfaceUnavailableError struct {
	Address string
	Network string
	Err     error
}

func (e *InterfaceUnavailableError) Error() string {
	var remoteErr *RemoteServiceError
	switch {
	case errors.As(e.Err, &remoteErr):
		return remoteErr.Message
	case errors.Is(e.Err, ErrSourceNotVerified):
		return fmt.Sprintf("Contract verification not found: The contract at %s is not verified on the block explorer. "+
			"Verified contracts are required for automatic ABI resolution; register the ABI manually instead.", e.Address)
	case errors.Is(e.Err, ErrUnsupportedNetwork):
		return fmt.Sprintf("ABI resolution is not supported for network '%s'. Register the ABI manually or configure "+
			"an ABI lookup URL for this network.", e.Network)
	case e.Err != nil:
		return fmt.Sprintf("ABI resolution error: %v", e.Err)
	default:
		return fmt.Sprintf("ABI unavailable for %s on %s", e.Address, e.Network)
	}
}

func (e *InterfaceUnavailableError) Unwrap() error {
	return e.Err
}

// FunctionNotFoundError indicates the requested function does not exist in the resolved description.
type FunctionNotFoundError struct {
	Name      string
	Available []string
}

func (e *FunctionNotFoundError) Error() string {
	return fmt.Sprintf("Function '%s' not found in contract ABI. Available functions: %s", e.Name, strings.Join(e.Available, ", "))
}

// AmbiguousFunctionError indicates that a bare function name matched several overloads and the supplied
// parameters did not narrow them to one.
type AmbiguousFunctionError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousFunctionError) Error() string {
	return fmt.Sprintf("Function '%s' is overloaded and the parameters do not select a single overload. "+
		"Use the full signature instead, one of: %s", e.Name, strings.Join(e.Candidates, ", "))
}

// ParameterFormatError indicates a parameter could not be converted to its declared type. Position is -1 when the
// failure concerns the parameter list as a whole.
type ParameterFormatError struct {
	Position int
	Name     string
	Type     string
	Reason   string
}

func (e *ParameterFormatError) Error() string {
	if e.Position < 0 && e.Name == "" {
		return fmt.Sprintf("Invalid parameters: %s", e.Reason)
	}
	label := fmt.Sprintf("#%d", e.Position)
	if e.Position < 0 {
		label = fmt.Sprintf("'%s'", e.Name)
	} else if e.Name != "" {
		label = fmt.Sprintf("#%d ('%s')", e.Position, e.Name)
	}
	return fmt.Sprintf("Invalid parameter %s of type %s: %s", label, e.Type, e.Reason)
}

// CredentialError indicates a signing key that could not be parsed.
type CredentialError struct {
	Reason string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("Invalid private key: %s", e.Reason)
}

// ValueFormatError indicates a wei amount or block number that could not be parsed.
type ValueFormatError struct {
	Field  string
	Input  string
	Reason string
}

func (e *ValueFormatError) Error() string {
	return fmt.Sprintf("Invalid %s '%s': %s", e.Field, e.Input, e.Reason)
}

// NetworkActionError is a categorized failure of an RPC action.
type NetworkActionError struct {
	Category NetworkCategory
	Message  string
	Cause    error
}

func (e *NetworkActionError) Error() string {
	return e.Message
}

func (e *NetworkActionError) Unwrap() error {
	return e.Cause
}

// RemoteServiceError is a categorized failure of the remote ABI service.
type RemoteServiceError struct {
	Category RemoteCategory
	Message  string
	Cause    error
}

func (e *RemoteServiceError) Error() string {
	return e.Message
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Cause
}

// ContractNotDeployedError indicates there is no code at the inspected address.
type ContractNotDeployedError struct {
	Address string
	Network string
}

func (e *ContractNotDeployedError) Error() string {
	return fmt.Sprintf("No contract found at address '%s' on network '%s'. The address may be incorrect, or the "+
		"contract may not be deployed yet.", e.Address, e.Network)
}

func (e *ContractNotDeployedError) Unwrap() error {
	return ErrContractNotDeployed
}

// ReceiptFailedError indicates a transaction was submitted but its receipt could not be obtained. The transaction
// may still be mined.
type ReceiptFailedError struct {
	TxHash common.Hash
	Cause  error
}

func (e *ReceiptFailedError) Error() string {
	return fmt.Sprintf("Transaction %s was submitted but its receipt could not be obtained: %v", e.TxHash.Hex(), e.Cause)
}

func (e *ReceiptFailedError) Unwrap() error {
	return e.Cause
}

// WriteRejectedError indicates a send was refused by the administrative write gate.
type WriteRejectedError struct {
	Reason string
}

func (e *WriteRejectedError) Error() string {
	return fmt.Sprintf("Write operation rejected: %s", e.Reason)
}

func (e *WriteRejectedError) Unwrap() error {
	return ErrWritesDisabled
}
