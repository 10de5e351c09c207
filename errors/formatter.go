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

package errors

import (
	stderrors "errors"
	"net/http"
)

// Response is the formatted representation of an error, ready to be
// written to the wire by a caller that owns the http.ResponseWriter (or,
// in corehttp's case, the router.Context).
type Response struct {
	Status      int
	ContentType string
	Body        map[string]any
}

// Formatter converts an error into a Response body. Two implementations
// are provided: Simple (default, {error: code, message}) and RFC9457
// (problem+json), mirroring rivaas.dev/errors.
type Formatter interface {
	Format(err error) Response
}

// Simple formats errors as {"error": code, "message": string}, the
// default body shape.
type Simple struct {
	// Mask, when true, replaces Message with a generic string for any Kind
	// other than Validation, preserving Code. Enable in production.
	Mask bool
}

func (f Simple) Format(err error) Response {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		appErr = &Error{Kind: KindInternal, Code: "INTERNAL", Message: err.Error()}
	}

	message := appErr.Message
	if f.Mask && appErr.Kind != KindValidation {
		message = "an internal error occurred"
	}

	status := appErr.HTTPStatus()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return Response{
		Status:      status,
		ContentType: "application/json",
		Body: map[string]any{
			"error":   appErr.Code,
			"message": message,
		},
	}
}

// RFC9457 formats errors as RFC 9457 Problem Details
// (Content-Type: application/problem+json).
type RFC9457 struct {
	BaseURL string
	Mask    bool
}

func (f RFC9457) Format(err error) Response {
	var appErr *Error
	if !stderrors.As(err, &appErr) {
		appErr = &Error{Kind: KindInternal, Code: "INTERNAL", Message: err.Error()}
	}

	detail := appErr.Message
	if f.Mask && appErr.Kind != KindValidation {
		detail = "an internal error occurred"
	}

	status := appErr.HTTPStatus()
	if status == 0 {
		status = http.StatusInternalServerError
	}

	typeURI := f.BaseURL + "/" + string(appErr.Kind)
	return Response{
		Status:      status,
		ContentType: "application/problem+json",
		Body: map[string]any{
			"type":   typeURI,
			"title":  http.StatusText(status),
			"status": status,
			"detail": detail,
			"code":   appErr.Code,
		},
	}
}
