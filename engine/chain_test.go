package engine

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/crytic/contractops/contractabi"
	"github.com/crytic/contractops/contractabi/cache"
	"github.com/crytic/contractops/networks"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const tokenAbi = `[
	{"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
	{"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"error","name":"InsufficientBalance","inputs":[{"name":"available","type":"uint256"},{"name":"required","type":"uint256"}]}
]`

var (
	tokenAddress  = common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7")
	holderAddress = common.HexToAddress("0xAAAAaAAAaaaAaaaAAAAAAaAaaAaAAAaAaaaaaAaA")
	deployedCode  = common.FromHex("0x6080604052348015600f57600080fd5b50")
)

// fakeChain is an in-memory networks.Connection. Zero values answer with empty results.
type fakeChain struct {
	lock sync.Mutex

	code        map[common.Address][]byte
	callResult  []byte
	callErr     error
	estimate    uint64
	estimateErr error
	logs        []types.Log
	nonce       uint64
	suggested   *big.Int
	chainID     *big.Int
	sendErr     error
	// receiptMisses is the number of receipt queries answered with ethereum.NotFound before the receipt.
	receiptMisses int
	receiptErr    error
	blockTime     uint64

	// onCall runs at the start of every CallContract.
	onCall func()

	calls      []ethereum.CallMsg
	estimates  []ethereum.CallMsg
	filters    []ethereum.FilterQuery
	sent       []*types.Transaction
	chainIDHit int
}

func (f *fakeChain) CodeAt(_ context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.code[account], nil
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.onCall != nil {
		f.onCall()
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls = append(f.calls, msg)
	return f.callResult, f.callErr
}

func (f *fakeChain) EstimateGas(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.estimates = append(f.estimates, msg)
	return f.estimate, f.estimateErr
}

func (f *fakeChain) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.filters = append(f.filters, q)
	return f.logs, nil
}

func (f *fakeChain) BlockNumber(context.Context) (uint64, error) {
	return 100, nil
}

func (f *fakeChain) HeaderByNumber(_ context.Context, number *big.Int) (*types.Header, error) {
	return &types.Header{Number: number, Time: f.blockTime}, nil
}

func (f *fakeChain) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return f.nonce, nil
}

func (f *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	return f.suggested, nil
}

func (f *fakeChain) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeChain) TransactionReceipt(_ context.Context, hash common.Hash) (*types.Receipt, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	if f.receiptMisses > 0 {
		f.receiptMisses--
		return nil, ethereum.NotFound
	}
	return &types.Receipt{
		Status:            types.ReceiptStatusSuccessful,
		GasUsed:           21000,
		EffectiveGasPrice: big.NewInt(30_000_000_000),
		BlockNumber:       big.NewInt(1234),
		TxHash:            hash,
	}, nil
}

func (f *fakeChain) ChainID(context.Context) (*big.Int, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.chainIDHit++
	return f.chainID, nil
}

func (f *fakeChain) Close() {}

// fakeRemote serves a fixed ABI lookup response and counts lookups.
type fakeRemote struct {
	abi   string
	err   error
	lock  sync.Mutex
	calls int
}

func (f *fakeRemote) FetchABI(context.Context, string, common.Address) ([]byte, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.abi), nil
}

func (f *fakeRemote) count() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls
}

// newTestEngine creates an engine over two networks backed by chain. "ethereum" has a full gas policy and
// "local" has none, with no configured chain id.
func newTestEngine(t *testing.T, chain *fakeChain, remote *fakeRemote) *Engine {
	profiles := map[string]*networks.NetworkProfile{
		"ethereum": {
			RPCURL:          "http://eth.invalid",
			ChainID:         1,
			DefaultGasLimit: 100000,
			MaxGasPriceGwei: decimal.NewFromInt(50),
			PriorityFeeGwei: decimal.NewFromInt(2),
			ExplorerURL:     "https://etherscan.io",
		},
		"local": {
			RPCURL:          "http://local.invalid",
			DefaultGasLimit: 50000,
		},
	}
	dialer := func(context.Context, string) (networks.Connection, error) {
		return chain, nil
	}
	registry, err := networks.NewRegistry(profiles, "ethereum", dialer)
	require.NoError(t, err)

	tiers, err := cache.NewTieredCache(nil, nil, cache.NewMemoryStore())
	require.NoError(t, err)
	var lookup contractabi.RemoteLookup
	if remote != nil {
		lookup = remote
	}
	resolver := contractabi.NewResolver(tiers, lookup, "ethereum", nil)

	e := New(registry, resolver, WithReceiptPolling(time.Millisecond, 5*time.Second))
	t.Cleanup(func() {
		_ = e.Close()
	})
	return e
}

// registerToken registers the token interface for tokenAddress on network.
func registerToken(t *testing.T, e *Engine, network string) {
	desc, err := contractabi.Parse([]byte(tokenAbi))
	require.NoError(t, err)
	require.NoError(t, e.RegisterABI(context.Background(), tokenAddress.Hex(), network, desc))
}

func word(n int64) []byte {
	return common.LeftPadBytes(big.NewInt(n).Bytes(), 32)
}
