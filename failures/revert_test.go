package failures

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dataError mimics the JSON-RPC error type returned by go-ethereum clients for reverted calls.
type dataError struct {
	msg  string
	data any
}

func (e *dataError) Error() string  { return e.msg }
func (e *dataError) ErrorData() any { return e.data }

func packRevert(t *testing.T, method abi.Method, args ...any) []byte {
	packed, err := method.Inputs.Pack(args...)
	require.NoError(t, err)
	return append(append([]byte{}, method.ID...), packed...)
}

// TestDecodeRevertReasonErrorString verifies Error(string) payloads decode to their message.
func TestDecodeRevertReasonErrorString(t *testing.T) {
	data := packRevert(t, errorStringMethod, "Ownable: caller is not the owner")
	reason, ok := DecodeRevertReason(data, nil)
	require.True(t, ok)
	assert.Equal(t, "Ownable: caller is not the owner", reason)
}

// TestDecodeRevertReasonPanic verifies Panic(uint256) payloads decode to a panic description.
func TestDecodeRevertReasonPanic(t *testing.T) {
	data := packRevert(t, panicMethod, big.NewInt(PanicCodeDivideByZero))
	reason, ok := DecodeRevertReason(data, nil)
	require.True(t, ok)
	assert.Equal(t, "panic: division by zero", reason)
}

// TestDecodeRevertReasonCustomError verifies custom errors from a description are matched by selector.
func TestDecodeRevertReasonCustomError(t *testing.T) {
	uintType, err := abi.NewType("uint256", "", nil)
	require.NoError(t, err)
	customErr := abi.NewError("InsufficientBalance", abi.Arguments{{Name: "available", Type: uintType}})

	payload, err := customErr.Inputs.Pack(big.NewInt(7))
	require.NoError(t, err)
	data := append(append([]byte{}, customErr.ID.Bytes()[:4]...), payload...)

	reason, ok := DecodeRevertReason(data, []abi.Error{customErr})
	require.True(t, ok)
	assert.Equal(t, "InsufficientBalance(7)", reason)

	_, ok = DecodeRevertReason([]byte{0x01, 0x02}, nil)
	assert.False(t, ok)
}

// TestTranslateWithRevertReason verifies the revert reason carried by an RPC error is appended to the message.
func TestTranslateWithRevertReason(t *testing.T) {
	data := packRevert(t, errorStringMethod, "not allowed")
	rpcErr := &dataError{msg: "execution reverted: not allowed", data: hexutil.Encode(data)}

	translated := TranslateWithRevertReason(rpcErr, nil)
	require.NotNil(t, translated)
	assert.Equal(t, NetworkReverted, translated.Category)
	assert.Contains(t, translated.Message, "Revert reason: not allowed")

	// Errors without data are translated normally
	plain := TranslateWithRevertReason(&dataError{msg: "execution reverted", data: nil}, nil)
	assert.NotContains(t, plain.Message, "Revert reason")
}
