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

import "rivaas.dev/corehttp/errors"

// validate runs the static checks in order: introspection gate, depth,
// complexity. It returns a single *ResponseError on the first
// violation; no resolver runs for an invalid operation.
//
// A deployment locked to persisted queries rejects introspection even
// when EnableIntrospection is set: the whole point of the lock is that
// no unregistered operation shape reaches the executor, and __schema is
// the most revealing one.
func validate(schema *Schema, op *Operation, cfg *Config) *ResponseError {
	if !cfg.EnableIntrospection || cfg.PersistedQueriesOnly {
		if err := checkIntrospection(op.Selection); err != nil {
			return err
		}
	}

	skipIntrospection := cfg.IgnoreIntrospectionDepth
	if depth := maxDepth(op.Selection, skipIntrospection); depth > cfg.MaxDepth {
		return &ResponseError{
			Message: "selection exceeds maximum depth",
			Code:    errors.CodeDepthLimitExceeded,
			Path:    nil,
		}
	}

	rootType := schema.rootTypeName(op.Kind)
	complexity := fieldSetComplexity(schema, rootType, op.Selection, cfg)
	if complexity > cfg.MaxComplexity {
		return &ResponseError{
			Message: "selection exceeds maximum complexity",
			Code:    errors.CodeComplexityLimitExceeded,
			Path:    nil,
		}
	}

	return nil
}

func checkIntrospection(fields []*FieldSelection) *ResponseError {
	for _, f := range fields {
		if isIntrospectionField(f.Name) {
			return &ResponseError{
				Message: "introspection is disabled",
				Code:    errors.CodeIntrospectionDisabled,
				Path:    []string{f.ResponseKey()},
			}
		}
		if err := checkIntrospection(f.Selection); err != nil {
			return err
		}
	}
	return nil
}

// maxDepth returns the deepest nesting level of fields below the root
// selection set (a single top-level field with no sub-selection has
// depth 1). When skipIntrospection is true, __schema/__type subtrees do
// not contribute to the count.
func maxDepth(fields []*FieldSelection, skipIntrospection bool) int {
	best := 0
	for _, f := range fields {
		if skipIntrospection && isIntrospectionField(f.Name) {
			continue
		}
		d := 1
		if len(f.Selection) > 0 {
			d += maxDepth(f.Selection, skipIntrospection)
		}
		if d > best {
			best = d
		}
	}
	return best
}

// fieldSetComplexity sums each field's contribution:
// default_field_complexity, multiplied by list_multiplier for list
// fields, summed recursively.
func fieldSetComplexity(schema *Schema, typeName string, fields []*FieldSelection, cfg *Config) int {
	total := 0
	t := schema.Types[typeName]

	for _, f := range fields {
		if isIntrospectionField(f.Name) {
			continue
		}

		var fieldDef *Field
		if t != nil {
			fieldDef = t.Fields[f.Name]
		}

		own := cfg.DefaultFieldComplexity
		if fieldDef != nil && fieldDef.Complexity > 0 {
			own = fieldDef.Complexity
		}

		if len(f.Selection) > 0 {
			childType := ""
			if fieldDef != nil {
				childType = fieldDef.TypeName
			}
			own += fieldSetComplexity(schema, childType, f.Selection, cfg)
		}

		if fieldDef != nil && fieldDef.IsList {
			own *= cfg.ListMultiplier
		}

		total += own
	}

	return total
}
