// Package ron reads and writes the subset of Rusty Object Notation used by
// savegame files: structs (named or anonymous), tuples, lists, maps, bare
// identifiers (unit enum variants), strings, numbers and booleans.
package ron

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the syntactic shape of a Value.
type Kind uint8

const (
	KindIdent Kind = iota
	KindString
	KindNumber
	KindBool
	KindStruct
	KindTuple
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindIdent:
		return "ident"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindStruct:
		return "struct"
	case KindTuple:
		return "tuple"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Field is a named struct member.
type Field struct {
	Name  string
	Value Value
}

// Entry is one key/value pair of a map.
type Entry struct {
	Key   Value
	Value Value
}

// Value is a parsed RON node. Name holds the identifier for KindIdent and the
// optional type name for KindStruct/KindTuple; Text holds the literal for
// strings and numbers.
type Value struct {
	Kind    Kind
	Name    string
	Text    string
	Bool    bool
	Fields  []Field
	Items   []Value
	Entries []Entry
}

func Ident(name string) Value { return Value{Kind: KindIdent, Name: name} }
func String(s string) Value   { return Value{Kind: KindString, Text: s} }
func Bool(b bool) Value       { return Value{Kind: KindBool, Bool: b} }
func Uint(n uint64) Value     { return Value{Kind: KindNumber, Text: strconv.FormatUint(n, 10)} }
func Int(n int64) Value       { return Value{Kind: KindNumber, Text: strconv.FormatInt(n, 10)} }

// Float always carries a decimal point so it reads back as a float in RON.
func Float(f float64) Value {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEIN") {
		s += ".0"
	}
	return Value{Kind: KindNumber, Text: s}
}

func Struct(name string, fields ...Field) Value {
	return Value{Kind: KindStruct, Name: name, Fields: fields}
}
func Tuple(items ...Value) Value { return Value{Kind: KindTuple, Items: items} }
func List(items ...Value) Value  { return Value{Kind: KindList, Items: items} }
func Map(entries ...Entry) Value { return Value{Kind: KindMap, Entries: entries} }

func F(name string, v Value) Field { return Field{Name: name, Value: v} }

// Field returns the struct member called name.
func (v Value) Field(name string) (Value, error) {
	if v.Kind != KindStruct {
		return Value{}, fmt.Errorf("field %q: not a struct but %s", name, v.Kind)
	}
	for _, f := range v.Fields {
		if f.Name == name {
			return f.Value, nil
		}
	}
	return Value{}, fmt.Errorf("missing field %q", name)
}

func (v Value) AsUint() (uint64, error) {
	if v.Kind != KindNumber {
		return 0, fmt.Errorf("want number, got %s", v.Kind)
	}
	n, err := strconv.ParseUint(v.Text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unsigned integer: %w", err)
	}
	return n, nil
}

func (v Value) AsInt() (int64, error) {
	if v.Kind != KindNumber {
		return 0, fmt.Errorf("want number, got %s", v.Kind)
	}
	n, err := strconv.ParseInt(v.Text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("integer: %w", err)
	}
	return n, nil
}

func (v Value) AsFloat() (float64, error) {
	if v.Kind != KindNumber {
		return 0, fmt.Errorf("want number, got %s", v.Kind)
	}
	f, err := strconv.ParseFloat(v.Text, 64)
	if err != nil {
		return 0, fmt.Errorf("float: %w", err)
	}
	return f, nil
}

func (v Value) AsString() (string, error) {
	if v.Kind != KindString {
		return "", fmt.Errorf("want string, got %s", v.Kind)
	}
	return v.Text, nil
}

func (v Value) AsIdent() (string, error) {
	if v.Kind != KindIdent {
		return "", fmt.Errorf("want identifier, got %s", v.Kind)
	}
	return v.Name, nil
}
