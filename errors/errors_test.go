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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStatusByKind(t *testing.T) {
	e := New(KindRouting, CodeNotFound, "no route")
	assert.Equal(t, http.StatusNotFound, e.HTTPStatus())
}

func TestStatusOverride(t *testing.T) {
	e := New(KindValidation, CodeDepthLimitExceeded, "too deep")
	e.Status = http.StatusBadRequest
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus())
}

func TestSimpleFormatterMasksMessage(t *testing.T) {
	e := New(KindInternal, "INTERNAL", "db connection string leaked: postgres://...")
	resp := Simple{Mask: true}.Format(e)
	assert.Equal(t, "an internal error occurred", resp.Body["message"])
	assert.Equal(t, "INTERNAL", resp.Body["error"])
}

func TestSimpleFormatterNeverMasksValidation(t *testing.T) {
	e := New(KindValidation, CodeDepthLimitExceeded, "max depth 15 exceeded")
	resp := Simple{Mask: true}.Format(e)
	assert.Equal(t, "max depth 15 exceeded", resp.Body["message"])
}

func TestRFC9457Shape(t *testing.T) {
	e := New(KindAuth, "BAD_TOKEN", "token expired")
	resp := RFC9457{BaseURL: "https://example.com/problems"}.Format(e)
	assert.Equal(t, "application/problem+json", resp.ContentType)
	assert.Equal(t, "https://example.com/problems/AUTH", resp.Body["type"])
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := assertErr{"boom"}
	wrapped := Wrap(cause, KindUpstream, "RESOLVER_FAILED", "resolver failed")
	assert.ErrorIs(t, wrapped, cause)
}

type assertErr struct{ s string }

func (e assertErr) Error() string { return e.s }
