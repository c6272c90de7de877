package failures

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// Solidity panic codes.
// Reference: https://docs.soliditylang.org/en/latest/control-structures.html#panic-via-assert-and-error-via-require
const (
	PanicCodeCompilerInserted              = 0x00
	PanicCodeAssertFailed                  = 0x01
	PanicCodeArithmeticUnderOverflow       = 0x11
	PanicCodeDivideByZero                  = 0x12
	PanicCodeEnumTypeConversionOutOfBounds = 0x21
	PanicCodeIncorrectStorageAccess        = 0x22
	PanicCodePopEmptyArray                 = 0x31
	PanicCodeOutOfBoundsArrayAccess        = 0x32
	PanicCodeAllocateTooMuchMemory         = 0x41
	PanicCodeCallUninitializedVariable     = 0x51
)

var (
	errorStringMethod = builtinRevertMethod("Error", "string")
	panicMethod       = builtinRevertMethod("Panic", "uint256")
)

func builtinRevertMethod(name string, argType string) abi.Method {
	t, err := abi.NewType(argType, "", nil)
	if err != nil {
		panic(err)
	}
	return abi.NewMethod(name, name, abi.Function, "", false, false, abi.Arguments{{Type: t}}, abi.Arguments{})
}

// RevertData returns the revert payload attached to an RPC error, if the node supplied one.
func RevertData(err error) ([]byte, bool) {
	var dataErr rpc.DataError
	if !errors.As(err, &dataErr) {
		return nil, false
	}
	switch data := dataErr.ErrorData().(type) {
	case string:
		decoded, decodeErr := hexutil.Decode(data)
		if decodeErr != nil || len(decoded) == 0 {
			return nil, false
		}
		return decoded, true
	case []byte:
		return data, len(data) > 0
	default:
		return nil, false
	}
}

// DecodeRevertReason interprets revert data as Error(string), Panic(uint256) or one of the given custom errors.
func DecodeRevertReason(data []byte, customErrors []abi.Error) (string, bool) {
	if len(data) < 4 {
		return "", false
	}
	selector, payload := data[:4], data[4:]

	if bytes.Equal(selector, errorStringMethod.ID) {
		values, err := errorStringMethod.Inputs.Unpack(payload)
		if err == nil && len(values) == 1 {
			if msg, ok := values[0].(string); ok {
				return msg, true
			}
		}
	}

	if bytes.Equal(selector, panicMethod.ID) && len(payload) == 32 {
		values, err := panicMethod.Inputs.Unpack(payload)
		if err == nil && len(values) == 1 {
			if code, ok := values[0].(*big.Int); ok {
				return PanicReason(code.Uint64()), true
			}
		}
	}

	for _, customErr := range customErrors {
		if !bytes.Equal(customErr.ID.Bytes()[:4], selector) {
			continue
		}
		values, err := customErr.Inputs.Unpack(payload)
		if err != nil {
			continue
		}
		args := make([]string, len(values))
		for i, v := range values {
			args[i] = fmt.Sprintf("%v", v)
		}
		return fmt.Sprintf("%s(%s)", customErr.Name, strings.Join(args, ", ")), true
	}
	return "", false
}

// PanicReason describes a Solidity panic code.
func PanicReason(code uint64) string {
	switch code {
	case PanicCodeCompilerInserted:
		return "panic: compiler inserted panic"
	case PanicCodeAssertFailed:
		return "panic: assertion failed"
	case PanicCodeArithmeticUnderOverflow:
		return "panic: arithmetic underflow or overflow"
	case PanicCodeDivideByZero:
		return "panic: division by zero"
	case PanicCodeEnumTypeConversionOutOfBounds:
		return "panic: enum access out of bounds"
	case PanicCodeIncorrectStorageAccess:
		return "panic: incorrect storage access"
	case PanicCodePopEmptyArray:
		return "panic: pop on empty array"
	case PanicCodeOutOfBoundsArrayAccess:
		return "panic: out of bounds array access"
	case PanicCodeAllocateTooMuchMemory:
		return "panic: overallocation of memory"
	case PanicCodeCallUninitializedVariable:
		return "panic: call on uninitialized variable"
	default:
		return fmt.Sprintf("unknown panic code(%v)", code)
	}
}

// TranslateWithRevertReason categorizes err like TranslateNetworkError and appends the decoded revert reason when
// the error carries revert data.
func TranslateWithRevertReason(err error, customErrors []abi.Error) *NetworkActionError {
	translated := TranslateNetworkError(err)
	if translated == nil {
		return nil
	}
	data, ok := RevertData(err)
	if !ok {
		return translated
	}
	reason, ok := DecodeRevertReason(data, customErrors)
	if !ok {
		return translated
	}
	return &NetworkActionError{
		Category: translated.Category,
		Message:  fmt.Sprintf("%s Revert reason: %s", translated.Message, reason),
		Cause:    translated.Cause,
	}
}
