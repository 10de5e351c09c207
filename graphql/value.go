// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package graphql implements a GraphQL execution pipeline — ingest,
// parse, validate, cache probe, execute, mask, serialize — plus
// subscriptions over ws.Hub and persisted queries. It is built in the
// idiom the rest of corehttp establishes: functional options,
// arena-aware where data must survive per-request scope, and
// rivaas.dev/corehttp/errors for stable codes.
package graphql

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ValueKind tags the variant held by a Value: one of null, int, float,
// string, bool, list, object, enum.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindList
	KindObject
	KindEnum
)

// Value is the sum type resolvers return and the executor builds result
// trees from. Object field order is preserved via Keys, since JSON
// serialization (and many GraphQL clients) are order-sensitive.
type Value struct {
	Kind ValueKind

	Int    int64
	Float  float64
	Str    string
	Bool   bool
	List   []Value
	Object map[string]Value
	Keys   []string // field order for Object; nil for other kinds
	Enum   string
}

// Null is the canonical null Value.
func Null() Value { return Value{Kind: KindNull} }

// IntValue wraps an int64.
func IntValue(n int64) Value { return Value{Kind: KindInt, Int: n} }

// FloatValue wraps a float64.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// StringValue wraps a string.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// BoolValue wraps a bool.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// EnumValue wraps an enum member name.
func EnumValue(name string) Value { return Value{Kind: KindEnum, Enum: name} }

// ListValue wraps a slice of Values.
func ListValue(items []Value) Value { return Value{Kind: KindList, List: items} }

// NewObject starts an empty object Value; Set appends in insertion order.
func NewObject() Value {
	return Value{Kind: KindObject, Object: map[string]Value{}}
}

// Set stores field on an object Value, recording first-seen order. Panics
// if v is not KindObject — a resolver bug, not a runtime condition.
func (v *Value) Set(field string, val Value) {
	if v.Kind != KindObject {
		panic("graphql: Set called on a non-object Value")
	}
	if _, exists := v.Object[field]; !exists {
		v.Keys = append(v.Keys, field)
	}
	v.Object[field] = val
}

// IsNull reports whether v is the null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// MarshalJSON renders v as JSON, preserving object field order via Keys —
// encoding/json's map handling would otherwise sort fields alphabetically,
// which GraphQL clients generally don't expect from a selection-ordered
// response.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindInt:
		return json.Marshal(v.Int)
	case KindFloat:
		return json.Marshal(v.Float)
	case KindString:
		return json.Marshal(v.Str)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindEnum:
		return json.Marshal(v.Enum)
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.List {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range v.Keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			val, err := v.Object[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON rebuilds a Value from its wire form, walking tokens
// manually (rather than through a map[string]any) so object field order
// survives a round trip. The response cache replays a stored operation
// result byte-identically, which only holds if decoding preserves field
// order.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	val, err := decodeJSONValue(dec)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

func decodeJSONValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeJSONToken(dec, tok)
}

func decodeJSONToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return BoolValue(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return IntValue(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return FloatValue(f), nil
	case string:
		return StringValue(t), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				item, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return Value{}, err
			}
			return ListValue(items), nil
		case '{':
			obj := NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, _ := keyTok.(string)
				val, err := decodeJSONValue(dec)
				if err != nil {
					return Value{}, err
				}
				obj.Set(key, val)
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return Value{}, err
			}
			return obj, nil
		}
	}
	return Value{}, fmt.Errorf("graphql: unexpected JSON token %v", tok)
}
