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

package auth

import (
	"rivaas.dev/corehttp/errors"
	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
	"rivaas.dev/corehttp/session"
)

// CSRFOption configures the CSRF middleware.
type CSRFOption func(*csrfConfig)

type csrfConfig struct {
	errorHandler func(c *router.Context, err *errors.Error)
}

func defaultCSRFConfig() *csrfConfig {
	return &csrfConfig{errorHandler: defaultCSRFError}
}

func defaultCSRFError(c *router.Context, err *errors.Error) {
	_ = c.JSON(err.HTTPStatus(), map[string]string{
		"error":   err.Code,
		"message": err.Message,
	})
}

// WithCSRFErrorHandler overrides the default 403 JSON body.
func WithCSRFErrorHandler(fn func(c *router.Context, err *errors.Error)) CSRFOption {
	return func(cfg *csrfConfig) { cfg.errorHandler = fn }
}

// CSRF returns a middleware validating the double-submit token carried in
// mgr's configured header (falling back to a query parameter of the same
// name as mgr's CSRFField, since request bodies are not form-decoded by
// this framework) against the session's stored token. Any method RFC 9110
// does not classify as safe must carry a token matching the one bound to
// the session. Safe methods
// (GET, HEAD, OPTIONS, TRACE) are never checked, and mgr's session-loading
// middleware must run earlier in the chain.
func CSRF(mgr *session.Manager, headerName, fieldName string, opts ...CSRFOption) router.HandlerFunc {
	cfg := defaultCSRFConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if c.Request.Method.Safe() {
			c.Next()
			return
		}

		sess := session.FromContext(c)
		if sess == nil {
			sess = mgr.Load(c)
		}

		candidate := c.Request.Header.Get(headerName)
		if candidate == "" {
			candidate = c.Request.QueryParam(fieldName)
		}

		if !sess.ValidateCSRF(candidate) {
			csrfErr := errors.New(errors.KindAuth, errors.CodeCSRFInvalid,
				"missing or invalid CSRF token")
			csrfErr.Status = protocol.StatusForbidden
			cfg.errorHandler(c, csrfErr)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireSession returns a middleware that rejects requests carrying no
// pre-existing session (IsNew true means no valid cookie was presented or
// it had expired) with 401, for routes that must not silently mint a fresh
// anonymous session. mgr's session-loading middleware must run earlier.
func RequireSession(mgr *session.Manager) router.HandlerFunc {
	return func(c *router.Context) {
		sess := session.FromContext(c)
		if sess == nil {
			sess = mgr.Load(c)
		}
		if sess.IsNew() {
			_ = c.JSON(protocol.StatusUnauthorized, map[string]string{
				"error":   errors.CodeSessionInvalid,
				"message": "no active session",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
