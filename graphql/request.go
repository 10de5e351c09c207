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

package graphql

import "encoding/json"

// RawRequest is the wire shape of one GraphQL request body:
// {query, variables?, operationName?,
// extensions?: {persistedQuery?: {version, sha256Hash}}}.
type RawRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
	Extensions    *RawExtensions `json:"extensions,omitempty"`
}

// RawExtensions carries the persisted-query descriptor, when present.
type RawExtensions struct {
	PersistedQuery *PersistedQueryRef `json:"persistedQuery,omitempty"`
}

// PersistedQueryRef identifies a previously-registered query by its
// sha256 hash rather than sending the text.
type PersistedQueryRef struct {
	Version    int    `json:"version"`
	Sha256Hash string `json:"sha256Hash"`
}

// decodeVariables converts the raw JSON variables map into graphql.Value,
// for uniform handling alongside literal argument values during
// execution.
func decodeVariables(raw map[string]any) map[string]Value {
	out := make(map[string]Value, len(raw))
	for k, v := range raw {
		out[k] = fromJSON(v)
	}
	return out
}

func fromJSON(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return BoolValue(t)
	case float64:
		if t == float64(int64(t)) {
			return IntValue(int64(t))
		}
		return FloatValue(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return IntValue(n)
		}
		f, _ := t.Float64()
		return FloatValue(f)
	case string:
		return StringValue(t)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = fromJSON(item)
		}
		return ListValue(items)
	case map[string]any:
		obj := NewObject()
		for k, item := range t {
			obj.Set(k, fromJSON(item))
		}
		return obj
	default:
		return Null()
	}
}

// RequestBatch decodes a request body that may be a single RawRequest
// object or a JSON array of them.
func RequestBatch(body []byte) ([]*RawRequest, bool, error) {
	trimmed := trimLeadingSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var batch []*RawRequest
		if err := json.Unmarshal(body, &batch); err != nil {
			return nil, true, err
		}
		return batch, true, nil
	}
	var single RawRequest
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, false, err
	}
	return []*RawRequest{&single}, false, nil
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\n', '\r':
			i++
			continue
		}
		break
	}
	return b[i:]
}
