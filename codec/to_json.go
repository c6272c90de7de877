package codec

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ToJSON converts a value unpacked by go-ethereum into its output form: addresses become checksummed hex, integers
// become decimal strings, byte values become 0x hex, and arrays and tuples become []any.
func (t *Type) ToJSON(v any) (any, error) {
	switch t.Kind {
	case KindAddress:
		address, ok := v.(common.Address)
		if !ok {
			return nil, fmt.Errorf("expected an address value, got %T", v)
		}
		return address.Hex(), nil
	case KindUint, KindInt:
		return integerToJSON(v)
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected a boolean value, got %T", v)
		}
		return b, nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string value, got %T", v)
		}
		return s, nil
	case KindBytes:
		b, ok := v.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected a byte slice, got %T", v)
		}
		return hexutil.Encode(b), nil
	case KindFixedBytes:
		reflected := reflect.ValueOf(v)
		if reflected.Kind() != reflect.Array || reflected.Type().Elem().Kind() != reflect.Uint8 {
			return nil, fmt.Errorf("expected a byte array, got %T", v)
		}
		b := make([]byte, reflected.Len())
		reflect.Copy(reflect.ValueOf(b), reflected)
		return hexutil.Encode(b), nil
	case KindArray, KindFixedArray:
		reflected := reflect.ValueOf(v)
		if reflected.Kind() != reflect.Slice && reflected.Kind() != reflect.Array {
			return nil, fmt.Errorf("expected an array value, got %T", v)
		}
		out := make([]any, reflected.Len())
		for i := range out {
			item, err := t.Elem.ToJSON(reflected.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("element [%d]: %v", i, err)
			}
			out[i] = item
		}
		return out, nil
	case KindTuple:
		reflected := reflect.Indirect(reflect.ValueOf(v))
		if reflected.Kind() != reflect.Struct || reflected.NumField() != len(t.Fields) {
			return nil, fmt.Errorf("expected a tuple value, got %T", v)
		}
		out := make([]any, len(t.Fields))
		for i, f := range t.Fields {
			item, err := f.Type.ToJSON(reflected.Field(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("component '%s': %v", f.Name, err)
			}
			out[i] = item
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported kind %s", t.Kind)
	}
}

func integerToJSON(v any) (any, error) {
	switch n := v.(type) {
	case *big.Int:
		return n.String(), nil
	case uint8, uint16, uint32, uint64, int8, int16, int32, int64:
		return fmt.Sprintf("%d", n), nil
	default:
		return nil, fmt.Errorf("expected an integer value, got %T", v)
	}
}
