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

// ResolveFunc produces the Value for one field, given an opaque request
// context, the already-resolved parent value, and the field's arguments.
// Returning an error contributes a
// collected, path-annotated entry to the response's errors list rather
// than aborting the whole operation.
type ResolveFunc func(ctx *ResolveContext, parent Value, args map[string]Value) (Value, error)

// Field describes one field of an ObjectType: its declared return type
// name (for list_multiplier lookup during complexity validation), whether
// it returns a list, and its resolver.
type Field struct {
	Name     string
	TypeName string
	IsList   bool
	Resolve  ResolveFunc

	// Complexity overrides default_field_complexity for this field
	// specifically (e.g. a field backed by an expensive aggregation).
	// Zero means "use the validator's configured default".
	Complexity int
}

// ObjectType fields reference other types by name (string) rather than
// by pointer; names are resolved through the schema's type table at
// validation time. This sidesteps pointer cycles for self-referential
// schemas like `User { friends: [User] }` entirely.
type ObjectType struct {
	Name   string
	Fields map[string]*Field
}

// Schema is the root type table plus the three root operation types.
type Schema struct {
	Types        map[string]*ObjectType
	QueryType    string
	MutationType string
	SubscrType   string
}

// NewSchema constructs an empty Schema rooted at the given operation type
// names (mutation/subscription may be "" if unsupported).
func NewSchema(queryType, mutationType, subscriptionType string) *Schema {
	return &Schema{
		Types:        map[string]*ObjectType{},
		QueryType:    queryType,
		MutationType: mutationType,
		SubscrType:   subscriptionType,
	}
}

// AddType registers t, indexed by its Name.
func (s *Schema) AddType(t *ObjectType) {
	s.Types[t.Name] = t
}

// rootTypeName resolves the object type name for an operation kind.
func (s *Schema) rootTypeName(op OperationKind) string {
	switch op {
	case OperationQuery:
		return s.QueryType
	case OperationMutation:
		return s.MutationType
	case OperationSubscription:
		return s.SubscrType
	default:
		return ""
	}
}

// ResolveContext is the opaque, request-scoped pointer passed to every
// resolver. AppData is caller-supplied — a database
// handle, the authenticated session loaded by corehttp/session, whatever
// the application needs.
type ResolveContext struct {
	AppData any
	Vars    map[string]Value
}
