package codec

import (
	"fmt"

	"github.com/crytic/contractops/contractabi"
	"github.com/crytic/contractops/failures"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

// EncodeCall converts params into calldata for f: the four byte selector followed by the packed arguments.
//
// params is nil, a positional []any, or a map[string]any keyed by input name. The parameter count is checked before
// any value is converted and the first conversion failure aborts the whole encoding.
func EncodeCall(f *contractabi.Function, params any) ([]byte, error) {
	method, err := f.Method()
	if err != nil {
		return nil, &failures.ParameterFormatError{Position: -1, Reason: err.Error()}
	}

	ordered, err := orderParameters(f, params)
	if err != nil {
		return nil, err
	}

	values := make([]any, len(method.Inputs))
	for i, input := range method.Inputs {
		paramErr := func(reason string) error {
			return &failures.ParameterFormatError{Position: i + 1, Name: input.Name, Type: input.Type.String(), Reason: reason}
		}
		t, err := FromABIType(input.Type)
		if err != nil {
			return nil, paramErr(err.Error())
		}
		values[i], err = t.FromJSON(ordered[i])
		if err != nil {
			return nil, paramErr(err.Error())
		}
	}

	packed, err := method.Inputs.Pack(values...)
	if err != nil {
		return nil, &failures.ParameterFormatError{Position: -1, Reason: err.Error()}
	}
	return append(append([]byte{}, method.ID...), packed...), nil
}

// orderParameters returns params as a positional list matching f's inputs.
func orderParameters(f *contractabi.Function, params any) ([]any, error) {
	switch p := params.(type) {
	case nil:
		return orderParameters(f, []any{})
	case []any:
		if len(p) != len(f.Inputs) {
			return nil, &failures.ParameterFormatError{
				Position: -1,
				Reason:   fmt.Sprintf("function '%s' expects %d parameters, got %d", f.Signature(), len(f.Inputs), len(p)),
			}
		}
		return p, nil
	case map[string]any:
		ordered := make([]any, len(f.Inputs))
		for i, input := range f.Inputs {
			v, ok := p[input.Name]
			if !ok {
				return nil, &failures.ParameterFormatError{
					Position: -1,
					Name:     input.Name,
					Type:     input.Type,
					Reason:   "missing named parameter",
				}
			}
			ordered[i] = v
		}
		return ordered, nil
	default:
		return nil, &failures.ParameterFormatError{Position: -1, Reason: "parameters must be an array or an object"}
	}
}

// DecodeResult converts the return data of f into its output form. Empty data yields nil and data for a function
// without outputs yields an empty array. A single output is returned unwrapped; several are returned as []any.
func DecodeResult(f *contractabi.Function, data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	method, err := f.Method()
	if err != nil {
		return nil, err
	}
	if len(method.Outputs) == 0 {
		return []any{}, nil
	}
	return decodeArguments(method.Outputs, data)
}

func decodeArguments(args abi.Arguments, data []byte) (any, error) {
	unpacked, err := args.Unpack(data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack return data")
	}
	if len(unpacked) != len(args) {
		return nil, errors.Errorf("expected %d return values, got %d", len(args), len(unpacked))
	}

	out := make([]any, len(args))
	for i, arg := range args {
		t, err := FromABIType(arg.Type)
		if err != nil {
			return nil, err
		}
		out[i], err = t.ToJSON(unpacked[i])
		if err != nil {
			return nil, errors.Wrapf(err, "return value %d (%s)", i, arg.Type.String())
		}
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}
