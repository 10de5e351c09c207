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

// ResponseError is one entry of the response's top-level "errors" array:
// {message, locations?, path?, extensions?}. Path segments are
// either field names or list indices, recorded as strings for uniform
// JSON encoding (an index renders as its decimal form, same as a GraphQL
// reference implementation would emit).
type ResponseError struct {
	Message string
	Code    string
	Loc     Location
	Path    []string
}

func newFieldError(message, code string, loc Location, path []string) *ResponseError {
	p := make([]string, len(path))
	copy(p, path)
	return &ResponseError{Message: message, Code: code, Loc: loc, Path: p}
}

// mask replaces e's message with cfg's generic message when mask_errors
// is enabled, preserving the stable code and path unless
// include_error_codes is false.
func (e *ResponseError) mask(cfg *Config) *ResponseError {
	if !cfg.MaskErrors {
		return e
	}
	masked := &ResponseError{Message: cfg.MaskedMessage, Loc: e.Loc}
	if cfg.IncludeErrorCodes {
		masked.Code = e.Code
		masked.Path = e.Path
	}
	return masked
}

type wireLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

type wireError struct {
	Message    string         `json:"message"`
	Locations  []wireLocation `json:"locations,omitempty"`
	Path       []string       `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e *ResponseError) toWire() wireError {
	w := wireError{Message: e.Message, Path: e.Path}
	if e.Loc != (Location{}) {
		w.Locations = []wireLocation{{Line: e.Loc.Line, Column: e.Loc.Column}}
	}
	if e.Code != "" {
		w.Extensions = map[string]any{"code": e.Code}
	}
	return w
}
