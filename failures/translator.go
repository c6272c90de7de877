package failures

import (
	"fmt"
	"strings"
)

// NetworkCategory classifies an RPC failure.
type NetworkCategory string

const (
	NetworkReverted          NetworkCategory = "reverted-execution"
	NetworkInsufficientFunds NetworkCategory = "insufficient-funds"
	NetworkGasTooLow         NetworkCategory = "gas-too-low"
	NetworkNonceTooLow       NetworkCategory = "nonce-too-low"
	NetworkUnderpriced       NetworkCategory = "underpriced-replacement"
	NetworkConnectivity      NetworkCategory = "connectivity"
	NetworkTimeout           NetworkCategory = "timeout"
	NetworkRateLimited       NetworkCategory = "rate-limited"
	NetworkUnsupportedMethod NetworkCategory = "unsupported-method"
	NetworkUnclassified      NetworkCategory = "unclassified"
)

// RemoteCategory classifies a remote ABI service failure.
type RemoteCategory string

const (
	RemoteNotFound     RemoteCategory = "not-found"
	RemoteRateLimited  RemoteCategory = "rate-limited"
	RemoteAuthFailure  RemoteCategory = "auth-failure"
	RemoteConnectivity RemoteCategory = "connectivity"
	RemoteTimeout      RemoteCategory = "timeout"
	RemoteUnclassified RemoteCategory = "unclassified"
)

type rule[C any] struct {
	patterns []string
	category C
	message  string
}

// Rules are evaluated in order against the lowercased failure text; the first match wins.
var networkRules = []rule[NetworkCategory]{
	{[]string{"execution reverted"}, NetworkReverted,
		"Transaction failed: The contract function reverted execution. This usually means the function's requirements were not met or an assertion failed."},
	{[]string{"insufficient funds"}, NetworkInsufficientFunds,
		"Transaction failed: Insufficient funds to cover gas costs. Make sure your account has enough native currency for gas fees."},
	{[]string{"gas required exceeds allowance", "intrinsic gas too low"}, NetworkGasTooLow,
		"Transaction failed: Gas limit too low. Try increasing the gas limit for this transaction."},
	{[]string{"nonce too low"}, NetworkNonceTooLow,
		"Transaction failed: Nonce too low. This usually means another transaction was already mined with this nonce."},
	{[]string{"replacement transaction underpriced"}, NetworkUnderpriced,
		"Transaction failed: Gas price too low to replace pending transaction. Increase the gas price."},
	{[]string{"connection refused", "network unreachable", "no such host"}, NetworkConnectivity,
		"Network error: Cannot connect to RPC endpoint. Check your internet connection and RPC URL configuration."},
	{[]string{"timeout", "deadline exceeded"}, NetworkTimeout,
		"Network error: Request timed out. The RPC endpoint may be overloaded or unreachable."},
	{[]string{"rate limit", "too many requests", "429"}, NetworkRateLimited,
		"Rate limit error: Too many requests to the RPC endpoint. Try again in a few moments or use a different endpoint."},
	{[]string{"method not found", "does not exist/is not available"}, NetworkUnsupportedMethod,
		"RPC error: The requested method is not supported by this RPC endpoint. Try using a different endpoint."},
}

var remoteRules = []rule[RemoteCategory]{
	{[]string{"404", "not found", "not verified"}, RemoteNotFound,
		"Contract verification not found: The contract at %s is not verified on the block explorer. Verified contracts are required for automatic ABI resolution."},
	{[]string{"rate limit", "429"}, RemoteRateLimited,
		"API rate limit: Too many requests to the ABI service. Try again in a few moments or provide your own ETHERSCAN_API_KEY."},
	{[]string{"invalid api key", "403"}, RemoteAuthFailure,
		"API authentication error: Invalid API key for the ABI service. Check your ETHERSCAN_API_KEY environment variable."},
	{[]string{"network", "connection"}, RemoteConnectivity,
		"Network error: Cannot connect to the ABI service. Check your internet connection."},
	{[]string{"timeout", "deadline exceeded"}, RemoteTimeout,
		"Timeout error: Request to the ABI service timed out. Try again in a few moments."},
}

func match[C any](rules []rule[C], text string) (rule[C], bool) {
	lowered := strings.ToLower(text)
	for _, r := range rules {
		for _, p := range r.patterns {
			if strings.Contains(lowered, p) {
				return r, true
			}
		}
	}
	return rule[C]{}, false
}

// TranslateNetworkError categorizes a raw RPC failure. A nil error yields nil. An error that is already a
// *NetworkActionError is returned unchanged.
func TranslateNetworkError(err error) *NetworkActionError {
	if err == nil {
		return nil
	}
	if existing, ok := err.(*NetworkActionError); ok {
		return existing
	}
	if r, ok := match(networkRules, err.Error()); ok {
		return &NetworkActionError{Category: r.category, Message: r.message, Cause: err}
	}
	return &NetworkActionError{
		Category: NetworkUnclassified,
		Message:  fmt.Sprintf("RPC error: %v", err),
		Cause:    err,
	}
}

// NewRemoteServiceError builds the error for an already-known category, e.g. when the failure was classified
// structurally rather than from its text.
func NewRemoteServiceError(category RemoteCategory, cause error, address string) *RemoteServiceError {
	for _, r := range remoteRules {
		if r.category != category {
			continue
		}
		msg := r.message
		if category == RemoteNotFound {
			msg = fmt.Sprintf(msg, address)
		}
		return &RemoteServiceError{Category: category, Message: msg, Cause: cause}
	}
	return &RemoteServiceError{
		Category: RemoteUnclassified,
		Message:  fmt.Sprintf("ABI resolution error: %v", cause),
		Cause:    cause,
	}
}

// TranslateRemoteServiceError categorizes a raw ABI service failure for the given contract address.
func TranslateRemoteServiceError(err error, address string) *RemoteServiceError {
	if err == nil {
		return nil
	}
	if existing, ok := err.(*RemoteServiceError); ok {
		return existing
	}
	if r, ok := match(remoteRules, err.Error()); ok {
		return NewRemoteServiceError(r.category, err, address)
	}
	return NewRemoteServiceError(RemoteUnclassified, err, address)
}
