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

// Package errors defines the module-wide error-kind taxonomy and the
// pluggable Simple/RFC9457 response formatters over it.
package errors

import "net/http"

// Kind is a semantic error category. It is not a Go
// error type hierarchy — it's a classification tag carried alongside a
// normal error value.
type Kind string

const (
	KindClientProtocol Kind = "CLIENT_PROTOCOL"
	KindRouting        Kind = "ROUTING"
	KindValidation     Kind = "VALIDATION"
	KindAuth           Kind = "AUTH"
	KindRateLimit      Kind = "RATE_LIMIT"
	KindUpstream       Kind = "UPSTREAM"
	KindTransport      Kind = "TRANSPORT"
	KindInternal       Kind = "INTERNAL"
)

// defaultStatus maps each kind to its HTTP status, absent a more
// specific code on the Error itself.
var defaultStatus = map[Kind]int{
	KindClientProtocol: http.StatusBadRequest,
	KindRouting:        http.StatusNotFound,
	KindValidation:     http.StatusUnprocessableEntity,
	KindAuth:           http.StatusUnauthorized,
	KindRateLimit:      http.StatusTooManyRequests,
	KindUpstream:       http.StatusBadGateway,
	KindTransport:      0, // terminal for the connection; no response is sent
	KindInternal:       http.StatusInternalServerError,
}

// Error is a structured, user-facing error: a stable machine-readable Code,
// a human message, the semantic Kind it belongs to, and an optional status
// override.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Status  int // 0 = use defaultStatus[Kind]
	Cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind) + ": " + e.Code
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus resolves the status code to surface for e.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return defaultStatus[e.Kind]
}

// New constructs an *Error with the given kind, stable code, and message.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap attaches kind/code/message to an underlying cause, preserving it for
// errors.Unwrap/errors.Is chains.
func Wrap(cause error, kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

// Well-known stable codes referenced elsewhere in the framework (router,
// cache, GraphQL validator, session CSRF).
const (
	CodeHeaderTooLarge           = "HEADER_TOO_LARGE"
	CodeBodyTooLarge             = "BODY_TOO_LARGE"
	CodeBindFailed               = "BIND_FAILED"
	CodeRouteConflict            = "ROUTE_CONFLICT"
	CodeNotFound                 = "NOT_FOUND"
	CodeMethodNotAllowed         = "METHOD_NOT_ALLOWED"
	CodeDepthLimitExceeded       = "DEPTH_LIMIT_EXCEEDED"
	CodeComplexityLimitExceeded  = "COMPLEXITY_LIMIT_EXCEEDED"
	CodeIntrospectionDisabled    = "INTROSPECTION_DISABLED"
	CodePersistedQueryNotFound   = "PERSISTED_QUERY_NOT_FOUND"
	CodePersistedQueryNotAllowed = "PERSISTED_QUERY_NOT_ALLOWED"
	CodeCSRFInvalid              = "CSRF_INVALID"
	CodeSessionInvalid           = "SESSION_INVALID"
	CodeWebSocketUpgradeFailed   = "WEBSOCKET_UPGRADE_FAILED"
)
