package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/crytic/contractops/utils"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// maxSafeFloat is the largest integer a float64 represents exactly.
const maxSafeFloat = 1 << 53

// FromJSON converts an untyped value into the Go value go-ethereum packs for t. Integers accept JSON numbers,
// decimal strings and 0x-prefixed hex strings.
func (t *Type) FromJSON(v any) (any, error) {
	switch t.Kind {
	case KindAddress:
		return addressFromJSON(v)
	case KindUint, KindInt:
		return t.integerFromJSON(v)
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("expected a boolean, got %s", describe(v))
		}
		return b, nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string, got %s", describe(v))
		}
		return s, nil
	case KindBytes:
		return bytesFromJSON(v)
	case KindFixedBytes:
		return t.fixedBytesFromJSON(v)
	case KindArray, KindFixedArray:
		return t.arrayFromJSON(v)
	case KindTuple:
		return t.tupleFromJSON(v)
	default:
		return nil, fmt.Errorf("unsupported kind %s", t.Kind)
	}
}

func addressFromJSON(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected a hex address string, got %s", describe(v))
	}
	address, err := utils.ValidateAddress(s)
	if err != nil {
		return nil, err
	}
	return address, nil
}

func (t *Type) integerFromJSON(v any) (any, error) {
	n, err := toBigInt(v)
	if err != nil {
		return nil, err
	}
	signed := t.Kind == KindInt
	if !utils.IntegerFitsBitLength(n, signed, t.Size) {
		return nil, fmt.Errorf("value %s is out of range for %s", n.String(), t.String())
	}

	// go-ethereum packs integers up to 64 bits from the matching primitive type
	switch {
	case !signed && t.Size == 8:
		return uint8(n.Uint64()), nil
	case !signed && t.Size == 16:
		return uint16(n.Uint64()), nil
	case !signed && t.Size == 32:
		return uint32(n.Uint64()), nil
	case !signed && t.Size == 64:
		return n.Uint64(), nil
	case signed && t.Size == 8:
		return int8(n.Int64()), nil
	case signed && t.Size == 16:
		return int16(n.Int64()), nil
	case signed && t.Size == 32:
		return int32(n.Int64()), nil
	case signed && t.Size == 64:
		return n.Int64(), nil
	default:
		return n, nil
	}
}

func toBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case json.Number:
		return numberToBigInt(string(n))
	case string:
		parsed, ok := utils.ParseBigInt(n)
		if !ok {
			return nil, fmt.Errorf("'%s' is not a decimal or 0x-prefixed hex integer", n)
		}
		return parsed, nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("%v is not an integer", n)
		}
		if math.Abs(n) > maxSafeFloat {
			return nil, fmt.Errorf("%v exceeds the exactly representable number range; pass it as a string", n)
		}
		return big.NewInt(int64(n)), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case *big.Int:
		if n == nil {
			return nil, fmt.Errorf("expected an integer, got null")
		}
		return new(big.Int).Set(n), nil
	default:
		return nil, fmt.Errorf("expected an integer, got %s", describe(v))
	}
}

// numberToBigInt parses a JSON number literal, allowing exponent notation when the result is integral.
func numberToBigInt(s string) (*big.Int, error) {
	if !strings.ContainsAny(s, ".eE") {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return nil, fmt.Errorf("'%s' is not an integer", s)
		}
		return n, nil
	}
	f, _, err := big.ParseFloat(s, 10, 512, big.ToNearestEven)
	if err != nil {
		return nil, fmt.Errorf("'%s' is not a number", s)
	}
	n, accuracy := f.Int(nil)
	if accuracy != big.Exact {
		return nil, fmt.Errorf("%s is not an integer", s)
	}
	return n, nil
}

func decodeHex(v any) ([]byte, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("expected a 0x-prefixed hex string, got %s", describe(v))
	}
	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("'%s' is not valid 0x-prefixed hex: %v", s, err)
	}
	return b, nil
}

func bytesFromJSON(v any) (any, error) {
	return decodeHex(v)
}

// fixedBytesFromJSON right-pads short input with zeros and truncates long input to the declared size.
func (t *Type) fixedBytesFromJSON(v any) (any, error) {
	b, err := decodeHex(v)
	if err != nil {
		return nil, err
	}
	array := reflect.New(t.abiType.GetType()).Elem()
	reflect.Copy(array, reflect.ValueOf(b))
	return array.Interface(), nil
}

func (t *Type) arrayFromJSON(v any) (any, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array, got %s", describe(v))
	}
	if t.Kind == KindFixedArray && len(items) != t.Size {
		return nil, fmt.Errorf("expected exactly %d elements, got %d", t.Size, len(items))
	}

	var container reflect.Value
	if t.Kind == KindFixedArray {
		container = reflect.New(t.abiType.GetType()).Elem()
	} else {
		container = reflect.MakeSlice(t.abiType.GetType(), len(items), len(items))
	}
	for i, item := range items {
		converted, err := t.Elem.FromJSON(item)
		if err != nil {
			return nil, fmt.Errorf("element [%d]: %v", i, err)
		}
		container.Index(i).Set(reflect.ValueOf(converted))
	}
	return container.Interface(), nil
}

// tupleFromJSON accepts components positionally as an array or by name as an object.
func (t *Type) tupleFromJSON(v any) (any, error) {
	values := make([]any, len(t.Fields))
	switch raw := v.(type) {
	case []any:
		if len(raw) != len(t.Fields) {
			return nil, fmt.Errorf("expected %d tuple components, got %d", len(t.Fields), len(raw))
		}
		copy(values, raw)
	case map[string]any:
		for i, f := range t.Fields {
			item, ok := raw[f.Name]
			if !ok {
				return nil, fmt.Errorf("missing tuple component '%s'", f.Name)
			}
			values[i] = item
		}
	default:
		return nil, fmt.Errorf("expected a tuple as an array or object, got %s", describe(v))
	}

	tuple := reflect.New(t.abiType.GetType()).Elem()
	for i, f := range t.Fields {
		converted, err := f.Type.FromJSON(values[i])
		if err != nil {
			return nil, fmt.Errorf("component '%s': %v", f.Name, err)
		}
		tuple.Field(i).Set(reflect.ValueOf(converted))
	}
	return tuple.Interface(), nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "a boolean"
	case string:
		return "a string"
	case json.Number, float64, int, int64, uint64:
		return "a number"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
