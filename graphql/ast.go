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

// OperationKind is the three GraphQL root operation kinds.
type OperationKind int

const (
	OperationQuery OperationKind = iota
	OperationMutation
	OperationSubscription
)

// Location is a 1-based line/column in the original query text, carried
// through to error reporting.
type Location struct {
	Line   int
	Column int
}

// Operation is the parsed, single top-level operation this implementation
// supports per request. Fragments and directives are not part of this
// subset.
type Operation struct {
	Kind      OperationKind
	Name      string
	Selection []*FieldSelection
	Loc       Location
}

// ArgValue is a parsed argument literal or a variable reference resolved
// against the request's variables map at execution time.
type ArgValue struct {
	IsVariable bool
	VarName    string
	Literal    Value
}

// FieldSelection is one field within a selection set: its response key
// (alias or name), the underlying field name, arguments, and nested
// selection (empty for scalar/enum leaf fields).
type FieldSelection struct {
	Alias     string
	Name      string
	Args      map[string]ArgValue
	Selection []*FieldSelection
	Loc       Location
}

// ResponseKey is the alias if present, else Name — the key this field's
// result is keyed under in the response object (GraphQL aliasing).
func (f *FieldSelection) ResponseKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// isIntrospectionField reports whether name is one of the two meta-fields
// gated by enable_introspection. __typename is deliberately not included;
// it identifies a concrete type on an already-resolved value rather than
// exposing schema structure.
func isIntrospectionField(name string) bool {
	return name == "__schema" || name == "__type"
}
