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

import "strconv"

// execution carries the mutable state threaded through one operation's
// walk: the resolver context and the accumulated error list.
type execution struct {
	schema *Schema
	rctx   *ResolveContext
	errs   []*ResponseError
}

// Execute walks op against schema, invoking each field's resolver in
// turn. Partial data is preserved: a field that fails resolves to null in
// the result object and its error is collected in errs. The root result
// is always an object, even when every root field fails.
func Execute(schema *Schema, op *Operation, rctx *ResolveContext) (Value, []*ResponseError) {
	ex := &execution{schema: schema, rctx: rctx}
	rootType := schema.rootTypeName(op.Kind)
	result := ex.executeSelectionSet(rootType, Null(), op.Selection, nil)
	return result, ex.errs
}

func (ex *execution) executeSelectionSet(typeName string, parent Value, fields []*FieldSelection, path []string) Value {
	t := ex.schema.Types[typeName]
	out := NewObject()

	for _, f := range fields {
		fieldPath := append(append([]string{}, path...), f.ResponseKey())

		if f.Name == "__typename" {
			out.Set(f.ResponseKey(), StringValue(typeName))
			continue
		}

		var fieldDef *Field
		if t != nil {
			fieldDef = t.Fields[f.Name]
		}
		if fieldDef == nil || fieldDef.Resolve == nil {
			ex.errs = append(ex.errs, newFieldError(
				"unknown field \""+f.Name+"\"", "FIELD_NOT_FOUND", f.Loc, fieldPath))
			out.Set(f.ResponseKey(), Null())
			continue
		}

		args := ex.resolveArgs(f.Args)
		val, err := fieldDef.Resolve(ex.rctx, parent, args)
		if err != nil {
			ex.errs = append(ex.errs, newFieldError(err.Error(), "RESOLVER_ERROR", f.Loc, fieldPath))
			out.Set(f.ResponseKey(), Null())
			continue
		}

		if len(f.Selection) > 0 {
			val = ex.executeNested(fieldDef.TypeName, val, f.Selection, fieldPath)
		}

		out.Set(f.ResponseKey(), val)
	}

	return out
}

// executeNested walks the sub-selection of a field whose resolved value
// is either a single object or a list of objects.
func (ex *execution) executeNested(typeName string, val Value, fields []*FieldSelection, path []string) Value {
	switch val.Kind {
	case KindNull:
		return val
	case KindList:
		items := make([]Value, len(val.List))
		for i, item := range val.List {
			idxPath := append(append([]string{}, path...), strconv.Itoa(i))
			items[i] = ex.executeNested(typeName, item, fields, idxPath)
		}
		return ListValue(items)
	default:
		return ex.executeSelectionSet(typeName, val, fields, path)
	}
}

func (ex *execution) resolveArgs(args map[string]ArgValue) map[string]Value {
	out := make(map[string]Value, len(args))
	for name, a := range args {
		if a.IsVariable {
			if v, ok := ex.rctx.Vars[a.VarName]; ok {
				out[name] = v
			} else {
				out[name] = Null()
			}
			continue
		}
		out[name] = a.Literal
	}
	return out
}
