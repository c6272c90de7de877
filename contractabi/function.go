package contractabi

import (
	"strings"
	"sync"

	"github.com/crytic/contractops/failures"
	"github.com/crytic/contractops/utils"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/pkg/errors"
)

// Function is one callable entry of a Description.
type Function struct {
	Name            string
	Inputs          []Param
	Outputs         []Param
	StateMutability string

	constant   bool
	methodOnce sync.Once
	method     *abi.Method
	methodErr  error
}

func newFunction(entry Entry) *Function {
	return &Function{
		Name:            entry.Name,
		Inputs:          entry.Inputs,
		Outputs:         entry.Outputs,
		StateMutability: entry.StateMutability,
		constant:        entry.Constant,
	}
}

// Signature returns the canonical signature, e.g. "transfer(address,uint256)".
func (f *Function) Signature() string {
	types := make([]string, len(f.Inputs))
	for i, p := range f.Inputs {
		types[i] = canonicalType(p)
	}
	return f.Name + "(" + strings.Join(types, ",") + ")"
}

// ReadOnly reports whether the function is declared view or pure.
func (f *Function) ReadOnly() bool {
	return f.StateMutability == "view" || f.StateMutability == "pure" || f.constant
}

// Method returns the go-ethereum method for this function. The result is built once; types that go-ethereum cannot
// represent produce an error.
func (f *Function) Method() (*abi.Method, error) {
	f.methodOnce.Do(func() {
		inputs, err := toArguments(f.Inputs)
		if err != nil {
			f.methodErr = errors.Wrapf(err, "function '%s' inputs", f.Name)
			return
		}
		outputs, err := toArguments(f.Outputs)
		if err != nil {
			f.methodErr = errors.Wrapf(err, "function '%s' outputs", f.Name)
			return
		}
		mutability := f.StateMutability
		if mutability == "" && f.constant {
			mutability = "view"
		}
		method := abi.NewMethod(f.Name, f.Name, abi.Function, mutability, f.constant, mutability == "payable", inputs, outputs)
		f.method = &method
	})
	return f.method, f.methodErr
}

// ArgumentShape describes how the caller supplied parameters, for overload selection.
type ArgumentShape struct {
	// Positional is true for an array of values and for no parameters at all.
	Positional bool
	Count      int
	Names      []string
}

// ShapeOf describes params, which is the untyped request value: nil, an array or an object.
func ShapeOf(params any) (ArgumentShape, bool) {
	switch p := params.(type) {
	case nil:
		return ArgumentShape{Positional: true}, true
	case []any:
		return ArgumentShape{Positional: true, Count: len(p)}, true
	case map[string]any:
		names := make([]string, 0, len(p))
		for k := range p {
			names = append(names, k)
		}
		return ArgumentShape{Count: len(p), Names: names}, true
	default:
		return ArgumentShape{}, false
	}
}

func (s ArgumentShape) accepts(f *Function) bool {
	if s.Positional {
		return len(f.Inputs) == s.Count
	}
	if len(f.Inputs) != s.Count {
		return false
	}
	provided := make(map[string]bool, len(s.Names))
	for _, n := range s.Names {
		provided[n] = true
	}
	for _, in := range f.Inputs {
		if !provided[in.Name] {
			return false
		}
	}
	return true
}

// SelectFunction finds the function named by ref, which is a bare name or a full signature.
//
// A signature must match exactly. A bare name that matches a single function selects it regardless of shape; the
// codec reports any parameter mismatch. A bare name matching several overloads is narrowed by shape, and must end
// with exactly one candidate or an AmbiguousFunctionError is returned.
func (d *Description) SelectFunction(ref string, shape ArgumentShape) (*Function, error) {
	if _, isSignature := utils.SplitSignature(ref); isSignature {
		wanted := normalizeSignature(ref)
		for _, f := range d.functions {
			if f.Signature() == wanted {
				return f, nil
			}
		}
		return nil, &failures.FunctionNotFoundError{Name: ref, Available: d.signatures()}
	}

	var candidates []*Function
	for _, f := range d.functions {
		if f.Name == ref {
			candidates = append(candidates, f)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, &failures.FunctionNotFoundError{Name: ref, Available: d.FunctionNames()}
	case 1:
		return candidates[0], nil
	}

	var matching []*Function
	for _, f := range candidates {
		if shape.accepts(f) {
			matching = append(matching, f)
		}
	}
	if len(matching) == 1 {
		return matching[0], nil
	}

	signatures := make([]string, len(candidates))
	for i, f := range candidates {
		signatures[i] = f.Signature()
	}
	return nil, &failures.AmbiguousFunctionError{Name: ref, Candidates: signatures}
}

func (d *Description) signatures() []string {
	out := make([]string, len(d.functions))
	for i, f := range d.functions {
		out[i] = f.Signature()
	}
	return out
}

// normalizeSignature removes whitespace and expands uint/int aliases in a caller-supplied signature.
func normalizeSignature(ref string) string {
	ref = strings.Join(strings.Fields(ref), "")
	open := strings.IndexByte(ref, '(')
	name, args := ref[:open], ref[open:]

	var sb strings.Builder
	sb.WriteString(name)
	token := strings.Builder{}
	flush := func() {
		if token.Len() > 0 {
			sb.WriteString(normalizeTypeName(token.String()))
			token.Reset()
		}
	}
	for _, c := range args {
		switch c {
		case '(', ')', ',':
			flush()
			sb.WriteRune(c)
		default:
			token.WriteRune(c)
		}
	}
	flush()
	return sb.String()
}
