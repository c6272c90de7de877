package networks

import (
	"context"
	"sync"
)

// Status is the listing entry for one network.
type Status struct {
	Name            string  `json:"name"`
	ChainID         uint64  `json:"chain_id"`
	Default         bool    `json:"default"`
	DefaultGasLimit uint64  `json:"default_gas_limit"`
	MaxGasPriceGwei string  `json:"max_gas_price_gwei"`
	PriorityFeeGwei string  `json:"priority_fee_gwei"`
	ExplorerURL     string  `json:"explorer_url,omitempty"`
	BlockNumber     *uint64 `json:"block_number,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// Describe lists every network. When check is set, each network is probed concurrently and its block height or
// categorized connectivity failure is included.
func (r *Registry) Describe(ctx context.Context, check bool) []Status {
	statuses := make([]Status, len(r.names))
	var wg sync.WaitGroup
	for i, name := range r.names {
		profile := r.profiles[name]
		statuses[i] = Status{
			Name:            name,
			ChainID:         profile.ChainID,
			Default:         name == r.defaultNetwork,
			DefaultGasLimit: profile.DefaultGasLimit,
			MaxGasPriceGwei: profile.MaxGasPriceGwei.String(),
			PriorityFeeGwei: profile.PriorityFeeGwei.String(),
			ExplorerURL:     profile.ExplorerURL,
		}
		if !check {
			continue
		}
		wg.Add(1)
		go func(status *Status) {
			defer wg.Done()
			height, err := r.ValidateConnectivity(ctx, status.Name)
			if err != nil {
				status.Error = err.Error()
				return
			}
			status.BlockNumber = &height
		}(&statuses[i])
	}
	wg.Wait()
	return statuses
}
