package engine

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/crytic/contractops/contractmeta"
	"github.com/crytic/contractops/failures"
	"github.com/crytic/contractops/utils"
	"github.com/ethereum/go-ethereum/rpc"
)

// PlainTransferGas is the cost reported for an estimate without a function, i.e. a plain value transfer.
const PlainTransferGas uint64 = 21000

// ContractInfoRequest asks for the code and interface of a contract.
type ContractInfoRequest struct {
	Address string `json:"address"`
	Network string `json:"network,omitempty"`
}

// ContractInfo describes a contract's deployment state and interface.
type ContractInfo struct {
	Address  string                     `json:"address"`
	Network  string                     `json:"network"`
	Deployed bool                       `json:"deployed"`
	Abi      json.RawMessage            `json:"abi"`
	Bytecode string                     `json:"bytecode,omitempty"`
	Verified bool                       `json:"verified"`
	Compiler *contractmeta.CompilerInfo `json:"compiler,omitempty"`
	// AbiError explains why the interface could not be resolved.
	AbiError string `json:"abi_error,omitempty"`
}

// CallRequest is a read-only function call.
type CallRequest struct {
	ContractAddress string `json:"contract_address"`
	FunctionName    string `json:"function_name"`
	Parameters      any    `json:"parameters"`
	Network         string `json:"network,omitempty"`
}

// EstimateRequest asks for the gas needed by a transaction. An empty FunctionName denotes a plain value transfer.
type EstimateRequest struct {
	ContractAddress string `json:"contract_address"`
	FunctionName    string `json:"function_name"`
	Parameters      any    `json:"parameters"`
	From            string `json:"from,omitempty"`
	Value           string `json:"value,omitempty"`
	Network         string `json:"network,omitempty"`
}

// SimulateRequest dry-runs a transaction: a gas estimate followed by a read-only call.
type SimulateRequest struct {
	ContractAddress string `json:"contract_address"`
	FunctionName    string `json:"function_name"`
	Parameters      any    `json:"parameters"`
	From            string `json:"from,omitempty"`
	Value           string `json:"value,omitempty"`
	Network         string `json:"network,omitempty"`
}

// SendRequest submits a signed transaction and waits for its receipt.
type SendRequest struct {
	ContractAddress string `json:"contract_address"`
	FunctionName    string `json:"function_name"`
	Parameters      any    `json:"parameters"`
	PrivateKey      string `json:"private_key"`
	Value           string `json:"value,omitempty"`
	GasLimit        uint64 `json:"gas_limit,omitempty"`
	GasPrice        string `json:"gas_price,omitempty"`
	Network         string `json:"network,omitempty"`
}

// EventsRequest asks for the logs emitted by a contract in a block range.
type EventsRequest struct {
	ContractAddress string   `json:"contract_address"`
	FromBlock       BlockRef `json:"from_block,omitempty"`
	ToBlock         BlockRef `json:"to_block,omitempty"`
	Network         string   `json:"network,omitempty"`
}

// CallResult is the outcome of a read or a simulation. Failures of the network action are reported here rather
// than as errors.
type CallResult struct {
	Success bool    `json:"success"`
	Result  any     `json:"result"`
	Error   string  `json:"error,omitempty"`
	GasUsed *uint64 `json:"gas_used,omitempty"`
}

// RawResult preserves return data that could not be decoded.
type RawResult struct {
	RawResult   string `json:"raw_result"`
	DecodeError string `json:"decode_error,omitempty"`
}

// Simulation is the Result of a simulated transaction.
type Simulation struct {
	Simulated           bool   `json:"simulated"`
	Result              any    `json:"result,omitempty"`
	WouldSucceed        bool   `json:"would_succeed"`
	GasEstimationFailed bool   `json:"gas_estimation_failed,omitempty"`
	Error               string `json:"error,omitempty"`
}

// TransactionRecord describes a transaction whose receipt was observed.
type TransactionRecord struct {
	Hash        string `json:"hash"`
	From        string `json:"from"`
	To          string `json:"to"`
	Value       string `json:"value"`
	ValueEther  string `json:"value_ether"`
	GasUsed     uint64 `json:"gas_used"`
	GasPrice    string `json:"gas_price"`
	FeeEther    string `json:"fee_ether"`
	BlockNumber uint64 `json:"block_number"`
	Timestamp   uint64 `json:"timestamp"`
	Status      bool   `json:"status"`
	TxType      string `json:"tx_type"`
	ExplorerURL string `json:"explorer_url,omitempty"`
}

// EventInfo is one log emitted by a contract.
type EventInfo struct {
	Address         string   `json:"address"`
	Topics          []string `json:"topics"`
	Data            string   `json:"data"`
	BlockNumber     uint64   `json:"block_number"`
	TransactionHash string   `json:"transaction_hash"`
	LogIndex        uint     `json:"log_index"`
	// Event is the name of the matching event when the contract's interface is already known.
	Event string `json:"event,omitempty"`
}

// BlockRef is a block given as a JSON number, a decimal or 0x hex string, or one of the tags "latest", "earliest"
// and "pending". The empty value means the default for the field.
type BlockRef string

func (b *BlockRef) UnmarshalJSON(data []byte) error {
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else if string(data) != "null" {
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return &failures.ValueFormatError{Field: "block", Input: string(data), Reason: "expected a number or a string"}
		}
		s = n.String()
	}
	*b = BlockRef(s)
	return nil
}

// number converts the reference to the form go-ethereum filter queries expect. nil stands for the latest block.
func (b BlockRef) number(field string, fallback *big.Int) (*big.Int, error) {
	s := strings.TrimSpace(string(b))
	switch strings.ToLower(s) {
	case "":
		return fallback, nil
	case "latest":
		return nil, nil
	case "earliest":
		return big.NewInt(0), nil
	case "pending":
		return big.NewInt(rpc.PendingBlockNumber.Int64()), nil
	}
	n, ok := utils.ParseBigInt(s)
	if !ok || n.Sign() < 0 || !n.IsUint64() {
		return nil, &failures.ValueFormatError{Field: field, Input: s, Reason: "expected a block number, 0x hex, or latest/earliest/pending"}
	}
	return n, nil
}
