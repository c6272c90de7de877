package networks

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// gweiScale converts gwei amounts into wei.
var gweiScale = decimal.New(1, 9)

// NetworkProfile describes how to reach one chain and the gas policy applied to transactions sent on it.
type NetworkProfile struct {
	// Name is the registry key of the profile. It is populated by the Registry.
	Name string `json:"-"`

	// RPCURL is the JSON-RPC endpoint used for every action on this network.
	RPCURL string `json:"rpcUrl"`

	// ChainID is the chain identifier used when signing transactions. A zero value asks the endpoint.
	ChainID uint64 `json:"chainId"`

	// DefaultGasLimit is the gas limit used for a transaction whose gas estimation failed.
	DefaultGasLimit uint64 `json:"defaultGasLimit"`

	// MaxGasPriceGwei is the gas price ceiling for transactions. A zero value defers to the endpoint's suggestion.
	MaxGasPriceGwei decimal.Decimal `json:"maxGasPriceGwei"`

	// PriorityFeeGwei is the priority fee (tip) for dynamic fee transactions. A zero value sends legacy
	// transactions.
	PriorityFeeGwei decimal.Decimal `json:"priorityFeeGwei"`

	// ExplorerURL is the block explorer base URL, used for display only.
	ExplorerURL string `json:"explorerUrl,omitempty"`

	// AbiLookupURL overrides the remote ABI service endpoint for this network.
	AbiLookupURL string `json:"abiLookupUrl,omitempty"`
}

// Validate checks the profile for values that cannot be used.
func (p *NetworkProfile) Validate() error {
	if strings.TrimSpace(p.RPCURL) == "" {
		return errors.Errorf("network '%s' has no rpcUrl", p.Name)
	}
	if p.MaxGasPriceGwei.IsNegative() {
		return errors.Errorf("network '%s' has a negative maxGasPriceGwei", p.Name)
	}
	if p.PriorityFeeGwei.IsNegative() {
		return errors.Errorf("network '%s' has a negative priorityFeeGwei", p.Name)
	}
	return nil
}

// MaxGasPrice returns the gas price ceiling in wei, or nil when none is configured.
func (p *NetworkProfile) MaxGasPrice() *big.Int {
	return gweiToWei(p.MaxGasPriceGwei)
}

// PriorityFee returns the priority fee in wei, or nil when none is configured.
func (p *NetworkProfile) PriorityFee() *big.Int {
	return gweiToWei(p.PriorityFeeGwei)
}

// ExplorerTxURL returns the explorer link for a transaction hash, or an empty string when no explorer is set.
func (p *NetworkProfile) ExplorerTxURL(hash string) string {
	if p.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(p.ExplorerURL, "/") + "/tx/" + hash
}

func gweiToWei(gwei decimal.Decimal) *big.Int {
	if !gwei.IsPositive() {
		return nil
	}
	return gwei.Mul(gweiScale).BigInt()
}

// WeiToGwei renders a wei amount in gwei.
func WeiToGwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -9).String()
}

// WeiToEther renders a wei amount in ether.
func WeiToEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}
