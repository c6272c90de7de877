package engine

import (
	"context"
	"encoding/json"

	"github.com/crytic/contractops/contractmeta"
	"github.com/crytic/contractops/failures"
	"github.com/crytic/contractops/utils"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
)

var emptyInterface = json.RawMessage("[]")

// Inspect reports whether a contract is deployed, its code and its interface. A contract without code yields the
// partial info together with a *failures.ContractNotDeployedError. A failure to resolve the interface is not an
// error: the info is returned unverified with an empty interface.
func (e *Engine) Inspect(ctx context.Context, req ContractInfoRequest) (*ContractInfo, error) {
	address, err := utils.ValidateAddress(req.Address)
	if err != nil {
		return nil, err
	}
	network, err := e.registry.Resolve(req.Network)
	if err != nil {
		return nil, err
	}

	return execute(e, ctx, operation{name: OperationInspect, network: network, queued: true}, func(ctx context.Context) (*ContractInfo, error) {
		conn, err := e.registry.Connection(ctx, network)
		if err != nil {
			return nil, err
		}
		code, err := conn.CodeAt(ctx, address, nil)
		if err != nil {
			return nil, failures.TranslateNetworkError(err)
		}

		info := &ContractInfo{Address: address.Hex(), Network: network, Abi: emptyInterface}
		if len(code) == 0 {
			return info, &failures.ContractNotDeployedError{Address: address.Hex(), Network: network}
		}
		info.Deployed = true
		info.Bytecode = hexutil.Encode(code)
		info.Compiler = contractmeta.Describe(code)

		desc, err := e.resolver.Resolve(ctx, address, network)
		if err != nil {
			e.logger.Debug("No interface for ", address.Hex(), " on ", network, ": ", err.Error())
			info.AbiError = err.Error()
			return info, nil
		}
		raw, err := desc.MarshalJSON()
		if err != nil {
			return nil, errors.WithStack(err)
		}
		info.Abi = raw
		info.Verified = true
		return info, nil
	})
}
