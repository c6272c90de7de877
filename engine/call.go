package engine

import (
	"context"
	"fmt"

	"github.com/crytic/contractops/codec"
	"github.com/crytic/contractops/contractabi"
	"github.com/crytic/contractops/failures"
	"github.com/crytic/contractops/utils"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// preparedCall is a resolved function together with its encoded calldata.
type preparedCall struct {
	description *contractabi.Description
	function    *contractabi.Function
	calldata    []byte
}

// validateTarget checks the address, function reference and network of a request, in that order, and returns the
// parsed address and resolved network name.
func (e *Engine) validateTarget(address string, functionName string, network string) (common.Address, string, error) {
	target, err := utils.ValidateAddress(address)
	if err != nil {
		return common.Address{}, "", err
	}
	if err = utils.ValidateFunctionName(functionName); err != nil {
		return common.Address{}, "", err
	}
	resolved, err := e.registry.Resolve(network)
	if err != nil {
		return common.Address{}, "", err
	}
	return target, resolved, nil
}

// prepare resolves the interface of target, selects the referenced function and encodes params for it.
func (e *Engine) prepare(ctx context.Context, target common.Address, network string, functionName string, params any) (*preparedCall, error) {
	shape, ok := contractabi.ShapeOf(params)
	if !ok {
		return nil, errors.WithMessage(
			&failures.ParameterFormatError{Position: -1, Reason: "parameters must be an array or an object"},
			"Failed to encode function call",
		)
	}

	desc, err := e.resolver.Resolve(ctx, target, network)
	if err != nil {
		return nil, err
	}
	function, err := desc.SelectFunction(functionName, shape)
	if err != nil {
		return nil, err
	}
	calldata, err := codec.EncodeCall(function, params)
	if err != nil {
		return nil, errors.WithMessage(err, "Failed to encode function call")
	}
	return &preparedCall{description: desc, function: function, calldata: calldata}, nil
}

// asFailedResult converts failures that a read reports in its result rather than as an error.
func asFailedResult(err error) (*CallResult, bool) {
	var unavailableErr *failures.InterfaceUnavailableError
	var paramErr *failures.ParameterFormatError
	var networkErr *failures.NetworkActionError
	if errors.As(err, &unavailableErr) || errors.As(err, &paramErr) || errors.As(err, &networkErr) {
		return &CallResult{Success: false, Error: err.Error()}, true
	}
	return nil, false
}

// decodeOutput decodes return data, keeping the raw bytes when they cannot be decoded.
func decodeOutput(function *contractabi.Function, data []byte) (any, error) {
	decoded, err := codec.DecodeResult(function, data)
	if err != nil {
		return &RawResult{RawResult: hexutil.Encode(data), DecodeError: err.Error()}, err
	}
	return decoded, nil
}

func callMessage(from *common.Address, to common.Address, calldata []byte, value *uint256.Int) ethereum.CallMsg {
	msg := ethereum.CallMsg{To: &to, Data: calldata}
	if from != nil {
		msg.From = *from
	}
	if value != nil {
		msg.Value = value.ToBig()
	}
	return msg
}

// Call performs a read-only call. Validation and function lookup problems are returned as errors; interface
// resolution, encoding and network failures are reported in the result.
func (e *Engine) Call(ctx context.Context, req CallRequest) (*CallResult, error) {
	target, network, err := e.validateTarget(req.ContractAddress, req.FunctionName, req.Network)
	if err != nil {
		return nil, err
	}

	return execute(e, ctx, operation{name: OperationCall, network: network, queued: true}, func(ctx context.Context) (*CallResult, error) {
		prepared, err := e.prepare(ctx, target, network, req.FunctionName, req.Parameters)
		if err != nil {
			if failed, ok := asFailedResult(err); ok {
				return failed, nil
			}
			return nil, err
		}

		conn, err := e.registry.Connection(ctx, network)
		if err != nil {
			if failed, ok := asFailedResult(err); ok {
				return failed, nil
			}
			return nil, err
		}
		data, err := conn.CallContract(ctx, callMessage(nil, target, prepared.calldata, nil), nil)
		if err != nil {
			return &CallResult{Success: false, Error: failures.TranslateWithRevertReason(err, prepared.description.Errors()).Error()}, nil
		}

		decoded, err := decodeOutput(prepared.function, data)
		if err != nil {
			return &CallResult{Success: false, Result: decoded, Error: fmt.Sprintf("Failed to decode result: %v", err)}, nil
		}
		return &CallResult{Success: true, Result: decoded}, nil
	})
}

// transactionInputs are the validated parts of an estimate or a simulation.
type transactionInputs struct {
	target  common.Address
	network string
	from    *common.Address
	value   *uint256.Int
}

func (e *Engine) validateTransaction(address string, functionName string, from string, value string, network string) (*transactionInputs, error) {
	target, resolved, err := e.validateTarget(address, functionName, network)
	if err != nil {
		return nil, err
	}
	sender, err := utils.ValidateOptionalAddress(from)
	if err != nil {
		return nil, err
	}
	amount, err := utils.ParseOptionalUint256("value", value)
	if err != nil {
		return nil, err
	}
	return &transactionInputs{target: target, network: resolved, from: sender, value: amount}, nil
}

// Estimate returns the gas a transaction would use. An empty function name is a plain value transfer and costs
// PlainTransferGas without resolving any interface.
func (e *Engine) Estimate(ctx context.Context, req EstimateRequest) (uint64, error) {
	if req.FunctionName == "" {
		if _, err := utils.ValidateAddress(req.ContractAddress); err != nil {
			return 0, err
		}
		network, err := e.registry.Resolve(req.Network)
		if err != nil {
			return 0, err
		}
		return execute(e, ctx, operation{name: OperationEstimate, network: network}, func(context.Context) (uint64, error) {
			return PlainTransferGas, nil
		})
	}

	inputs, err := e.validateTransaction(req.ContractAddress, req.FunctionName, req.From, req.Value, req.Network)
	if err != nil {
		return 0, err
	}

	return execute(e, ctx, operation{name: OperationEstimate, network: inputs.network, queued: true}, func(ctx context.Context) (uint64, error) {
		prepared, err := e.prepare(ctx, inputs.target, inputs.network, req.FunctionName, req.Parameters)
		if err != nil {
			return 0, err
		}
		conn, err := e.registry.Connection(ctx, inputs.network)
		if err != nil {
			return 0, err
		}
		gas, err := conn.EstimateGas(ctx, callMessage(inputs.from, inputs.target, prepared.calldata, inputs.value))
		if err != nil {
			return 0, errors.WithMessage(failures.TranslateWithRevertReason(err, prepared.description.Errors()), "Gas estimation failed")
		}
		return gas, nil
	})
}

// Simulate estimates gas for a transaction and, if the estimate succeeds, performs it as a read-only call. A failed
// estimate is reported as a transaction that would revert, without attempting the call.
func (e *Engine) Simulate(ctx context.Context, req SimulateRequest) (*CallResult, error) {
	inputs, err := e.validateTransaction(req.ContractAddress, req.FunctionName, req.From, req.Value, req.Network)
	if err != nil {
		return nil, err
	}

	return execute(e, ctx, operation{name: OperationSimulate, network: inputs.network, queued: true}, func(ctx context.Context) (*CallResult, error) {
		prepared, err := e.prepare(ctx, inputs.target, inputs.network, req.FunctionName, req.Parameters)
		if err != nil {
			if failed, ok := asFailedResult(err); ok {
				return failed, nil
			}
			return nil, err
		}
		conn, err := e.registry.Connection(ctx, inputs.network)
		if err != nil {
			if failed, ok := asFailedResult(err); ok {
				return failed, nil
			}
			return nil, err
		}

		msg := callMessage(inputs.from, inputs.target, prepared.calldata, inputs.value)
		gas, err := conn.EstimateGas(ctx, msg)
		if err != nil {
			reason := failures.TranslateWithRevertReason(err, prepared.description.Errors()).Error()
			return &CallResult{
				Success: false,
				Result:  &Simulation{Simulated: true, GasEstimationFailed: true, Error: reason},
				Error:   "Gas estimation failed (transaction would likely revert): " + reason,
			}, nil
		}

		data, err := conn.CallContract(ctx, msg, nil)
		if err != nil {
			reason := failures.TranslateWithRevertReason(err, prepared.description.Errors()).Error()
			return &CallResult{
				Success: false,
				Result:  &Simulation{Simulated: true, Error: reason},
				Error:   "Transaction simulation failed: " + reason,
				GasUsed: &gas,
			}, nil
		}

		// An undecodable result still means the transaction would succeed.
		decoded, _ := decodeOutput(prepared.function, data)
		return &CallResult{
			Success: true,
			Result:  &Simulation{Simulated: true, Result: decoded, WouldSucceed: true},
			GasUsed: &gas,
		}, nil
	})
}
