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

package app

import (
	"net/http"
	"net/http/httptest"

	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

// metricsHandler bridges the net/http-shaped promhttp.Handler the metrics
// package returns onto corehttp's own Context/Response, since corehttp's
// router doesn't speak net/http. ServeHTTP is run against an in-memory
// recorder and the result copied onto c.Response — the scrape payload is
// small and infrequent enough that the extra copy is immaterial.
func (a *App) metricsHandler() router.HandlerFunc {
	handler := a.metrics.Handler()
	return func(c *router.Context) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		contentType := rec.Header().Get("Content-Type")
		if contentType == "" {
			contentType = "text/plain; version=0.0.4"
		}
		status := rec.Code
		if status == 0 {
			status = protocol.StatusOK
		}
		c.Response.Bytes(status, contentType, rec.Body.Bytes())
	}
}
