// Package codec converts between untyped JSON-like request values and typed ABI values.
//
// Conversions are driven by Type, a closed tagged variant derived from go-ethereum's parsed ABI types. Every
// conversion switches over Kind exhaustively; kinds that cannot be represented are rejected when the Type is built.
package codec

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Kind enumerates the supported ABI value kinds.
type Kind int

const (
	KindAddress Kind = iota
	KindUint
	KindInt
	KindBool
	KindString
	KindFixedBytes
	KindBytes
	KindArray
	KindFixedArray
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindAddress:
		return "address"
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindFixedBytes:
		return "bytesN"
	case KindBytes:
		return "bytes"
	case KindArray:
		return "array"
	case KindFixedArray:
		return "fixed array"
	case KindTuple:
		return "tuple"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is a declared ABI type.
type Type struct {
	Kind Kind
	// Size is the bit width for KindUint and KindInt, the byte length for KindFixedBytes and the element count for
	// KindFixedArray.
	Size int
	// Elem is the element type of KindArray and KindFixedArray.
	Elem *Type
	// Fields are the components of KindTuple, in order.
	Fields []Field

	abiType abi.Type
}

// Field is a named tuple component.
type Field struct {
	Name string
	Type *Type
}

// String returns the canonical ABI type name, e.g. "uint256" or "(address,bytes32)[]".
func (t *Type) String() string {
	return t.abiType.String()
}

// FromABIType builds a Type from a go-ethereum ABI type.
func FromABIType(t abi.Type) (*Type, error) {
	out := &Type{abiType: t}
	switch t.T {
	case abi.AddressTy:
		out.Kind = KindAddress
	case abi.UintTy:
		out.Kind, out.Size = KindUint, t.Size
	case abi.IntTy:
		out.Kind, out.Size = KindInt, t.Size
	case abi.BoolTy:
		out.Kind = KindBool
	case abi.StringTy:
		out.Kind = KindString
	case abi.FixedBytesTy:
		out.Kind, out.Size = KindFixedBytes, t.Size
	case abi.BytesTy:
		out.Kind = KindBytes
	case abi.SliceTy, abi.ArrayTy:
		elem, err := FromABIType(*t.Elem)
		if err != nil {
			return nil, err
		}
		out.Elem = elem
		out.Kind = KindArray
		if t.T == abi.ArrayTy {
			out.Kind, out.Size = KindFixedArray, t.Size
		}
	case abi.TupleTy:
		out.Kind = KindTuple
		out.Fields = make([]Field, len(t.TupleElems))
		for i, elemType := range t.TupleElems {
			elem, err := FromABIType(*elemType)
			if err != nil {
				return nil, err
			}
			name := ""
			if i < len(t.TupleRawNames) {
				name = t.TupleRawNames[i]
			}
			out.Fields[i] = Field{Name: name, Type: elem}
		}
	default:
		// fixed-point, function and hash types
		return nil, fmt.Errorf("unsupported ABI type %s", t.String())
	}
	return out, nil
}
