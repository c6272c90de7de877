package engine

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/crytic/contractops/failures"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// revertError mimics an RPC error carrying revert data.
type revertError struct {
	data string
}

func (e *revertError) Error() string {
	return "execution reverted"
}

func (e *revertError) ErrorData() any {
	return e.data
}

func errorStringRevert(t *testing.T, reason string) string {
	stringType, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	packed, err := abi.Arguments{{Type: stringType}}.Pack(reason)
	require.NoError(t, err)
	return hexutil.Encode(append(common.FromHex("0x08c379a0"), packed...))
}

// TestInspectNotDeployed verifies an address without code is reported as not deployed and unverified.
func TestInspectNotDeployed(t *testing.T) {
	remote := &fakeRemote{abi: tokenAbi}
	e := newTestEngine(t, &fakeChain{}, remote)

	info, err := e.Inspect(context.Background(), ContractInfoRequest{Address: "0x0000000000000000000000000000000000000000"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, failures.ErrContractNotDeployed))
	var notDeployed *failures.ContractNotDeployedError
	require.True(t, errors.As(err, &notDeployed))
	assert.Equal(t, "ethereum", notDeployed.Network)

	require.NotNil(t, info)
	assert.False(t, info.Deployed)
	assert.False(t, info.Verified)
	assert.JSONEq(t, "[]", string(info.Abi))
	assert.Equal(t, 0, remote.count())
}

// TestInspectDeployed verifies code, interface and verification status are reported for a deployed contract.
func TestInspectDeployed(t *testing.T) {
	chain := &fakeChain{code: map[common.Address][]byte{tokenAddress: deployedCode}}
	remote := &fakeRemote{abi: tokenAbi}
	e := newTestEngine(t, chain, remote)

	info, err := e.Inspect(context.Background(), ContractInfoRequest{Address: strings.ToLower(tokenAddress.Hex())})
	require.NoError(t, err)
	assert.Equal(t, tokenAddress.Hex(), info.Address)
	assert.True(t, info.Deployed)
	assert.True(t, info.Verified)
	assert.Equal(t, hexutil.Encode(deployedCode), info.Bytecode)
	assert.Contains(t, string(info.Abi), "balanceOf")
	assert.Empty(t, info.AbiError)
	assert.Nil(t, info.Compiler)
}

// TestUnverifiedContract verifies an unverified contract is reported unverified by Inspect and as a failure result
// by Call, with one lookup per operation.
func TestUnverifiedContract(t *testing.T) {
	chain := &fakeChain{code: map[common.Address][]byte{tokenAddress: deployedCode}}
	remote := &fakeRemote{err: failures.ErrSourceNotVerified}
	e := newTestEngine(t, chain, remote)
	ctx := context.Background()

	info, err := e.Inspect(ctx, ContractInfoRequest{Address: tokenAddress.Hex()})
	require.NoError(t, err)
	assert.True(t, info.Deployed)
	assert.False(t, info.Verified)
	assert.JSONEq(t, "[]", string(info.Abi))
	assert.Contains(t, info.AbiError, "is not verified")
	assert.Equal(t, 1, remote.count())

	result, err := e.Call(ctx, CallRequest{
		ContractAddress: tokenAddress.Hex(),
		FunctionName:    "balanceOf",
		Parameters:      []any{holderAddress.Hex()},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, info.AbiError, result.Error)
	assert.Equal(t, 2, remote.count())
	assert.Empty(t, chain.calls)
}

// TestCallDecodesResult verifies calldata encoding and result decoding for a cached interface.
func TestCallDecodesResult(t *testing.T) {
	chain := &fakeChain{callResult: word(1000)}
	e := newTestEngine(t, chain, nil)
	registerToken(t, e, "")

	result, err := e.Call(context.Background(), CallRequest{
		ContractAddress: tokenAddress.Hex(),
		FunctionName:    "balanceOf",
		Parameters:      []any{holderAddress.Hex()},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "1000", result.Result)
	assert.Nil(t, result.GasUsed)

	require.Len(t, chain.calls, 1)
	expected := append(common.FromHex("0x70a08231"), common.LeftPadBytes(holderAddress.Bytes(), 32)...)
	assert.Equal(t, expected, chain.calls[0].Data)
	assert.Equal(t, tokenAddress, *chain.calls[0].To)
}

// TestCallEmptyResult verifies an empty response decodes to no value rather than an error.
func TestCallEmptyResult(t *testing.T) {
	e := newTestEngine(t, &fakeChain{}, nil)
	registerToken(t, e, "")

	result, err := e.Call(context.Background(), CallRequest{
		ContractAddress: tokenAddress.Hex(),
		FunctionName:    "balanceOf",
		Parameters:      []any{"0xAAAAaAAAaaaAaaaAAAAAAaAaaAaAAAaAaaaaaAaA"},
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Nil(t, result.Result)

	encoded, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"result":null}`, string(encoded))
}

// TestCallDecodeFailure verifies undecodable return data is preserved next to the decode error.
func TestCallDecodeFailure(t *testing.T) {
	e := newTestEngine(t, &fakeChain{callResult: []byte{1, 2, 3}}, nil)
	registerToken(t, e, "")

	result, err := e.Call(context.Background(), CallRequest{
		ContractAddress: tokenAddress.Hex(),
		FunctionName:    "balanceOf",
		Parameters:      []any{holderAddress.Hex()},
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.True(t, strings.HasPrefix(result.Error, "Failed to decode result: "))
	raw, ok := result.Result.(*RawResult)
	require.True(t, ok)
	assert.Equal(t, "0x010203", raw.RawResult)
	assert.NotEmpty(t, raw.DecodeError)
}

// TestCallFailures verifies which failures are errors and which are failure results.
func TestCallFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("validation errors", func(t *testing.T) {
		e := newTestEngine(t, &fakeChain{}, nil)
		registerToken(t, e, "")

		_, err := e.Call(ctx, CallRequest{ContractAddress: "0x1234", FunctionName: "balanceOf"})
		var addressErr *failures.AddressFormatError
		assert.True(t, errors.As(err, &addressErr))

		_, err = e.Call(ctx, CallRequest{ContractAddress: tokenAddress.Hex(), FunctionName: "1balance"})
		var nameErr *failures.FunctionNameError
		assert.True(t, errors.As(err, &nameErr))

		_, err = e.Call(ctx, CallRequest{ContractAddress: tokenAddress.Hex(), FunctionName: "balanceOf", Network: "goerli"})
		var networkErr *failures.UnknownNetworkError
		assert.True(t, errors.As(err, &networkErr))

		_, err = e.Call(ctx, CallRequest{ContractAddress: tokenAddress.Hex(), FunctionName: "totalSupply"})
		var notFound *failures.FunctionNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, []string{"balanceOf", "transfer"}, notFound.Available)
	})

	t.Run("encode failure", func(t *testing.T) {
		chain := &fakeChain{}
		e := newTestEngine(t, chain, nil)
		registerToken(t, e, "")

		result, err := e.Call(ctx, CallRequest{
			ContractAddress: tokenAddress.Hex(),
			FunctionName:    "balanceOf",
			Parameters:      []any{"not an address"},
		})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.True(t, strings.HasPrefix(result.Error, "Failed to encode function call: Invalid parameter #1 ('owner') of type address"), result.Error)
		assert.Empty(t, chain.calls)

		result, err = e.Call(ctx, CallRequest{
			ContractAddress: tokenAddress.Hex(),
			FunctionName:    "balanceOf",
			Parameters:      []any{holderAddress.Hex(), "1"},
		})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "expects 1 parameters, got 2")
	})

	t.Run("revert with reason", func(t *testing.T) {
		chain := &fakeChain{callErr: &revertError{data: errorStringRevert(t, "paused")}}
		e := newTestEngine(t, chain, nil)
		registerToken(t, e, "")

		result, err := e.Call(ctx, CallRequest{
			ContractAddress: tokenAddress.Hex(),
			FunctionName:    "balanceOf",
			Parameters:      map[string]any{"owner": holderAddress.Hex()},
		})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.True(t, strings.HasPrefix(result.Error, "Transaction failed: The contract function reverted execution."))
		assert.True(t, strings.HasSuffix(result.Error, "Revert reason: paused"))
	})

	t.Run("unsupported network for lookup", func(t *testing.T) {
		e := newTestEngine(t, &fakeChain{}, nil)

		result, err := e.Call(ctx, CallRequest{ContractAddress: tokenAddress.Hex(), FunctionName: "balanceOf"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "ABI resolution is not supported for network 'ethereum'")
	})
}

// TestEstimate verifies plain transfers short-circuit and contract calls are estimated by the network.
func TestEstimate(t *testing.T) {
	ctx := context.Background()
	chain := &fakeChain{estimate: 51234}
	remote := &fakeRemote{abi: tokenAbi}
	e := newTestEngine(t, chain, remote)

	gas, err := e.Estimate(ctx, EstimateRequest{ContractAddress: holderAddress.Hex()})
	require.NoError(t, err)
	assert.Equal(t, PlainTransferGas, gas)
	assert.Equal(t, 0, remote.count())
	assert.Empty(t, chain.estimates)

	_, err = e.Estimate(ctx, EstimateRequest{ContractAddress: "0xabc"})
	var addressErr *failures.AddressFormatError
	assert.True(t, errors.As(err, &addressErr))

	gas, err = e.Estimate(ctx, EstimateRequest{
		ContractAddress: tokenAddress.Hex(),
		FunctionName:    "transfer",
		Parameters:      []any{holderAddress.Hex(), "0x10"},
		From:            holderAddress.Hex(),
		Value:           "0",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 51234, gas)
	require.Len(t, chain.estimates, 1)
	assert.Equal(t, holderAddress, chain.estimates[0].From)
	assert.Equal(t, int64(0), chain.estimates[0].Value.Int64())

	chain.estimateErr = errors.New("gas required exceeds allowance (30000000)")
	_, err = e.Estimate(ctx, EstimateRequest{
		ContractAddress: tokenAddress.Hex(),
		FunctionName:    "transfer",
		Parameters:      []any{holderAddress.Hex(), 1},
	})
	require.Error(t, err)
	var networkErr *failures.NetworkActionError
	require.True(t, errors.As(err, &networkErr))
	assert.Equal(t, failures.NetworkGasTooLow, networkErr.Category)
	assert.True(t, strings.HasPrefix(err.Error(), "Gas estimation failed: "))
}

// TestSimulate verifies the three simulation envelopes.
func TestSimulate(t *testing.T) {
	ctx := context.Background()
	request := SimulateRequest{
		ContractAddress: tokenAddress.Hex(),
		FunctionName:    "transfer",
		Parameters:      []any{holderAddress.Hex(), "100"},
		From:            holderAddress.Hex(),
	}

	t.Run("would succeed", func(t *testing.T) {
		chain := &fakeChain{estimate: 45000, callResult: word(1)}
		e := newTestEngine(t, chain, nil)
		registerToken(t, e, "")

		result, err := e.Simulate(ctx, request)
		require.NoError(t, err)
		assert.True(t, result.Success)
		require.NotNil(t, result.GasUsed)
		assert.EqualValues(t, 45000, *result.GasUsed)
		assert.Equal(t, &Simulation{Simulated: true, Result: true, WouldSucceed: true}, result.Result)
	})

	t.Run("estimation fails", func(t *testing.T) {
		chain := &fakeChain{estimateErr: errors.New("execution reverted")}
		e := newTestEngine(t, chain, nil)
		registerToken(t, e, "")

		result, err := e.Simulate(ctx, request)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.True(t, strings.HasPrefix(result.Error, "Gas estimation failed (transaction would likely revert): Transaction failed:"))
		simulation, ok := result.Result.(*Simulation)
		require.True(t, ok)
		assert.True(t, simulation.Simulated)
		assert.True(t, simulation.GasEstimationFailed)
		assert.False(t, simulation.WouldSucceed)
		assert.Nil(t, result.GasUsed)
		assert.Empty(t, chain.calls)
	})

	t.Run("read fails", func(t *testing.T) {
		chain := &fakeChain{estimate: 45000, callErr: errors.New("connection refused")}
		e := newTestEngine(t, chain, nil)
		registerToken(t, e, "")

		result, err := e.Simulate(ctx, request)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.True(t, strings.HasPrefix(result.Error, "Transaction simulation failed: Network error:"))
		simulation, ok := result.Result.(*Simulation)
		require.True(t, ok)
		assert.False(t, simulation.WouldSucceed)
		assert.False(t, simulation.GasEstimationFailed)
		require.NotNil(t, result.GasUsed)
		assert.EqualValues(t, 45000, *result.GasUsed)
	})
}

// TestOperationsAreSerialized verifies queued operations never overlap.
func TestOperationsAreSerialized(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	chain := &fakeChain{callResult: word(1)}
	chain.onCall = func() {
		current := inFlight.Add(1)
		for {
			seen := maxInFlight.Load()
			if current <= seen || maxInFlight.CompareAndSwap(seen, current) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		inFlight.Add(-1)
	}
	e := newTestEngine(t, chain, nil)
	registerToken(t, e, "")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := e.Call(context.Background(), CallRequest{
				ContractAddress: tokenAddress.Hex(),
				FunctionName:    "balanceOf",
				Parameters:      []any{holderAddress.Hex()},
			})
			assert.NoError(t, err)
			assert.True(t, result.Success)
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, maxInFlight.Load())
	assert.Len(t, chain.calls, 8)
}

// TestQueueCancellationAndClose verifies a queued caller can give up, events bypass a busy queue, and a closed
// engine rejects work.
func TestQueueCancellationAndClose(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	chain := &fakeChain{}
	chain.onCall = func() {
		close(started)
		<-release
	}
	e := newTestEngine(t, chain, nil)
	registerToken(t, e, "")

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = e.Call(context.Background(), CallRequest{
			ContractAddress: tokenAddress.Hex(),
			FunctionName:    "balanceOf",
			Parameters:      []any{holderAddress.Hex()},
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := e.Call(ctx, CallRequest{
		ContractAddress: tokenAddress.Hex(),
		FunctionName:    "balanceOf",
		Parameters:      []any{holderAddress.Hex()},
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	logs, err := e.Events(context.Background(), EventsRequest{ContractAddress: tokenAddress.Hex()})
	require.NoError(t, err)
	assert.Empty(t, logs)

	close(release)
	<-done
	require.NoError(t, e.Close())

	_, err = e.Call(context.Background(), CallRequest{
		ContractAddress: tokenAddress.Hex(),
		FunctionName:    "balanceOf",
		Parameters:      []any{holderAddress.Hex()},
	})
	assert.ErrorIs(t, err, ErrEngineClosed)
}

// TestOperationCompletedEvents verifies outcomes published for finished operations.
func TestOperationCompletedEvents(t *testing.T) {
	chain := &fakeChain{callErr: errors.New("execution reverted")}
	e := newTestEngine(t, chain, nil)
	registerToken(t, e, "")

	var lock sync.Mutex
	var completed []OperationCompletedEvent
	e.OperationCompleted.Subscribe(func(event OperationCompletedEvent) error {
		lock.Lock()
		defer lock.Unlock()
		completed = append(completed, event)
		return nil
	})

	_, err := e.Call(context.Background(), CallRequest{
		ContractAddress: tokenAddress.Hex(),
		FunctionName:    "balanceOf",
		Parameters:      []any{holderAddress.Hex()},
	})
	require.NoError(t, err)
	_, err = e.Inspect(context.Background(), ContractInfoRequest{Address: tokenAddress.Hex()})
	require.Error(t, err)
	gas, err := e.Estimate(context.Background(), EstimateRequest{ContractAddress: holderAddress.Hex()})
	require.NoError(t, err)
	assert.Equal(t, PlainTransferGas, gas)

	lock.Lock()
	defer lock.Unlock()
	require.Len(t, completed, 3)
	assert.Equal(t, OperationCall, completed[0].Operation)
	assert.Equal(t, OutcomeFailure, completed[0].Outcome)
	assert.Equal(t, "ethereum", completed[0].Network)
	assert.Equal(t, OperationInspect, completed[1].Operation)
	assert.Equal(t, OutcomeError, completed[1].Outcome)
	assert.NotEqual(t, completed[0].JobID, completed[1].JobID)
	assert.Equal(t, OperationEstimate, completed[2].Operation)
	assert.Equal(t, OutcomeSuccess, completed[2].Outcome)
	assert.Equal(t, "ethereum", completed[2].Network)
}

// TestEvents verifies log conversion, block range defaults and event naming from the in-memory interface.
func TestEvents(t *testing.T) {
	ctx := context.Background()
	transferTopic := common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	chain := &fakeChain{logs: []types.Log{{
		Address:     tokenAddress,
		Topics:      []common.Hash{transferTopic, common.BytesToHash(holderAddress.Bytes())},
		Data:        word(5),
		BlockNumber: 77,
		TxHash:      common.HexToHash("0x01"),
		Index:       3,
	}}}
	e := newTestEngine(t, chain, nil)

	logs, err := e.Events(ctx, EventsRequest{ContractAddress: tokenAddress.Hex()})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Empty(t, logs[0].Event)
	assert.Equal(t, strings.ToLower(tokenAddress.Hex()), logs[0].Address)
	assert.Equal(t, transferTopic.Hex(), logs[0].Topics[0])
	assert.Equal(t, hexutil.Encode(word(5)), logs[0].Data)
	assert.EqualValues(t, 77, logs[0].BlockNumber)
	assert.EqualValues(t, 3, logs[0].LogIndex)

	require.Len(t, chain.filters, 1)
	assert.Equal(t, int64(0), chain.filters[0].FromBlock.Int64())
	assert.Nil(t, chain.filters[0].ToBlock)
	assert.Equal(t, []common.Address{tokenAddress}, chain.filters[0].Addresses)

	registerToken(t, e, "")
	logs, err = e.Events(ctx, EventsRequest{ContractAddress: tokenAddress.Hex(), FromBlock: "0x10", ToBlock: "200"})
	require.NoError(t, err)
	assert.Equal(t, "Transfer", logs[0].Event)
	assert.Equal(t, int64(16), chain.filters[1].FromBlock.Int64())
	assert.Equal(t, int64(200), chain.filters[1].ToBlock.Int64())

	_, err = e.Events(ctx, EventsRequest{ContractAddress: tokenAddress.Hex(), FromBlock: "yesterday"})
	var valueErr *failures.ValueFormatError
	require.True(t, errors.As(err, &valueErr))
	assert.Equal(t, "from_block", valueErr.Field)
}

// TestBlockRefJSON verifies block references accept numbers, strings and tags.
func TestBlockRefJSON(t *testing.T) {
	var req EventsRequest
	require.NoError(t, json.Unmarshal([]byte(`{"contract_address":"0x1","from_block":5,"to_block":"latest"}`), &req))
	assert.Equal(t, BlockRef("5"), req.FromBlock)
	assert.Equal(t, BlockRef("latest"), req.ToBlock)

	from, err := req.FromBlock.number("from_block", nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), from)
	to, err := req.ToBlock.number("to_block", big.NewInt(9))
	require.NoError(t, err)
	assert.Nil(t, to)

	earliest, err := BlockRef("earliest").number("from_block", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), earliest.Int64())
	pending, err := BlockRef("pending").number("to_block", nil)
	require.NoError(t, err)
	assert.Equal(t, rpc.PendingBlockNumber.Int64(), pending.Int64())

	_, err = BlockRef("-1").number("from_block", nil)
	assert.Error(t, err)
	assert.Error(t, json.Unmarshal([]byte(`{"from_block":true}`), &req))
}
