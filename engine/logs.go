package engine

import (
	"context"
	"math/big"
	"strings"

	"github.com/crytic/contractops/failures"
	"github.com/crytic/contractops/utils"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Events returns the logs emitted by a contract in a block range. It does not wait for queued operations. Events
// are named only when the contract's interface is already held in memory; no lookup is triggered.
func (e *Engine) Events(ctx context.Context, req EventsRequest) ([]EventInfo, error) {
	address, err := utils.ValidateAddress(req.ContractAddress)
	if err != nil {
		return nil, err
	}
	network, err := e.registry.Resolve(req.Network)
	if err != nil {
		return nil, err
	}
	from, err := req.FromBlock.number("from_block", big.NewInt(0))
	if err != nil {
		return nil, err
	}
	to, err := req.ToBlock.number("to_block", nil)
	if err != nil {
		return nil, err
	}

	return execute(e, ctx, operation{name: OperationEvents, network: network}, func(ctx context.Context) ([]EventInfo, error) {
		conn, err := e.registry.Connection(ctx, network)
		if err != nil {
			return nil, err
		}
		logs, err := conn.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: from,
			ToBlock:   to,
			Addresses: []common.Address{address},
		})
		if err != nil {
			return nil, failures.TranslateNetworkError(err)
		}

		desc, known := e.resolver.Peek(ctx, address, network)
		out := make([]EventInfo, 0, len(logs))
		for _, log := range logs {
			info := EventInfo{
				Address:         strings.ToLower(log.Address.Hex()),
				Topics:          make([]string, len(log.Topics)),
				Data:            hexutil.Encode(log.Data),
				BlockNumber:     log.BlockNumber,
				TransactionHash: log.TxHash.Hex(),
				LogIndex:        log.Index,
			}
			for i, topic := range log.Topics {
				info.Topics[i] = topic.Hex()
			}
			if known && len(log.Topics) > 0 {
				if event, ok := desc.EventByTopic(log.Topics[0]); ok {
					info.Event = event.Name
				}
			}
			out = append(out, info)
		}
		return out, nil
	})
}
