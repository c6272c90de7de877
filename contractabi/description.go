// Package contractabi models contract interface descriptions and resolves them through a tiered cache backed by a
// remote block explorer lookup.
package contractabi

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Param is one typed input or output of an ABI entry.
type Param struct {
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	InternalType string  `json:"internalType,omitempty"`
	Components   []Param `json:"components,omitempty"`
	Indexed      bool    `json:"indexed,omitempty"`
}

// Entry is one element of a JSON ABI document.
type Entry struct {
	Type            string  `json:"type"`
	Name            string  `json:"name,omitempty"`
	Inputs          []Param `json:"inputs,omitempty"`
	Outputs         []Param `json:"outputs,omitempty"`
	StateMutability string  `json:"stateMutability,omitempty"`
	Anonymous       bool    `json:"anonymous,omitempty"`
	Constant        bool    `json:"constant,omitempty"`
	Payable         bool    `json:"payable,omitempty"`
}

// Description is an immutable, ordered interface description. Functions and events keep declaration order, and
// overloaded functions remain distinct entries.
type Description struct {
	raw       []json.RawMessage
	entries   []Entry
	functions []*Function
	events    []*Event
	errors    []abi.Error
}

// Parse builds a Description from a JSON ABI array. Entries without a type are treated as functions.
func Parse(data []byte) (*Description, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("interface description must be a JSON array")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse interface description")
	}
	entries := make([]Entry, len(raw))
	for i, r := range raw {
		if err := json.Unmarshal(r, &entries[i]); err != nil {
			return nil, errors.Wrapf(err, "failed to parse interface description entry %d", i)
		}
	}
	d, err := NewDescription(entries)
	if err != nil {
		return nil, err
	}
	d.raw = raw
	return d, nil
}

// NewDescription builds a Description from already-decoded entries.
func NewDescription(entries []Entry) (*Description, error) {
	d := &Description{entries: make([]Entry, len(entries))}
	copy(d.entries, entries)

	for i := range d.entries {
		entry := &d.entries[i]
		if entry.Type == "" {
			entry.Type = "function"
		}
		switch entry.Type {
		case "function":
			if entry.Name == "" {
				return nil, errors.Errorf("function entry %d has no name", i)
			}
			d.functions = append(d.functions, newFunction(*entry))
		case "event":
			event, err := newEvent(*entry)
			if err != nil {
				return nil, err
			}
			d.events = append(d.events, event)
		case "error":
			customErr, err := newCustomError(*entry)
			if err != nil {
				return nil, err
			}
			d.errors = append(d.errors, customErr)
		case "constructor", "fallback", "receive":
		default:
			return nil, errors.Errorf("unknown ABI entry type '%s'", entry.Type)
		}
	}
	return d, nil
}

// MarshalJSON renders the description back into a JSON ABI array. Parsed descriptions render their original entries.
func (d *Description) MarshalJSON() ([]byte, error) {
	if d == nil || d.entries == nil {
		return []byte("[]"), nil
	}
	if d.raw != nil {
		return json.Marshal(d.raw)
	}
	return json.Marshal(d.entries)
}

// Entries returns a copy of the raw entries in declaration order.
func (d *Description) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Functions returns the function entries in declaration order.
func (d *Description) Functions() []*Function {
	return d.functions
}

// Events returns the event entries in declaration order.
func (d *Description) Events() []*Event {
	return d.events
}

// Errors returns the custom error definitions, for revert decoding.
func (d *Description) Errors() []abi.Error {
	return d.errors
}

// FunctionNames returns each distinct function name once, in declaration order.
func (d *Description) FunctionNames() []string {
	seen := make(map[string]bool, len(d.functions))
	names := make([]string, 0, len(d.functions))
	for _, f := range d.functions {
		if !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	return names
}

// EventByTopic returns the non-anonymous event whose signature hash equals topic.
func (d *Description) EventByTopic(topic common.Hash) (*Event, bool) {
	for _, e := range d.events {
		if !e.Anonymous && e.ID == topic {
			return e, true
		}
	}
	return nil, false
}

// Event is an event entry with its signature hash.
type Event struct {
	Name      string
	Inputs    []Param
	Anonymous bool
	ID        common.Hash
}

func newEvent(entry Entry) (*Event, error) {
	args, err := toArguments(entry.Inputs)
	if err != nil {
		return nil, errors.Wrapf(err, "event '%s'", entry.Name)
	}
	ev := abi.NewEvent(entry.Name, entry.Name, entry.Anonymous, args)
	return &Event{Name: entry.Name, Inputs: entry.Inputs, Anonymous: entry.Anonymous, ID: ev.ID}, nil
}

func newCustomError(entry Entry) (abi.Error, error) {
	args, err := toArguments(entry.Inputs)
	if err != nil {
		return abi.Error{}, errors.Wrapf(err, "error '%s'", entry.Name)
	}
	return abi.NewError(entry.Name, args), nil
}

// toArguments converts params to go-ethereum arguments, which own ABI packing.
func toArguments(params []Param) (abi.Arguments, error) {
	args := make(abi.Arguments, len(params))
	for i, p := range params {
		t, err := abi.NewType(p.Type, p.InternalType, toMarshaling(p.Components))
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d (%s)", i, p.Type)
		}
		args[i] = abi.Argument{Name: p.Name, Type: t, Indexed: p.Indexed}
	}
	return args, nil
}

func toMarshaling(components []Param) []abi.ArgumentMarshaling {
	if len(components) == 0 {
		return nil
	}
	out := make([]abi.ArgumentMarshaling, len(components))
	for i, c := range components {
		out[i] = abi.ArgumentMarshaling{
			Name:         c.Name,
			Type:         c.Type,
			InternalType: c.InternalType,
			Components:   toMarshaling(c.Components),
			Indexed:      c.Indexed,
		}
	}
	return out
}

// canonicalType renders a param's type as it appears in a function signature, expanding tuples.
func canonicalType(p Param) string {
	if !strings.HasPrefix(p.Type, "tuple") {
		return normalizeTypeName(p.Type)
	}
	parts := make([]string, len(p.Components))
	for i, c := range p.Components {
		parts[i] = canonicalType(c)
	}
	return "(" + strings.Join(parts, ",") + ")" + strings.TrimPrefix(p.Type, "tuple")
}

// normalizeTypeName expands the uint/int aliases to their 256-bit forms, including inside array suffixes.
func normalizeTypeName(t string) string {
	base, suffix := t, ""
	if i := strings.IndexByte(t, '['); i >= 0 {
		base, suffix = t[:i], t[i:]
	}
	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	}
	return base + suffix
}
