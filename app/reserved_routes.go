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
	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

// registerReservedRoutes wires the reserved route set, honoring
// config.Config.DisableReservedRoutes (checked by the caller before this
// is invoked). OpenAPI document generation and the interactive IDE pages
// live outside this module; these handlers stand in the documented
// paths with a minimal, honest body instead of silently 404ing, so a
// client probing for them gets a clear signal rather than confusing it
// with "route not registered at all".
func (a *App) registerReservedRoutes() {
	_ = a.router.GET("/health", a.healthHandler())
	_ = a.router.GET("/openapi.json", notImplemented("OpenAPI document generation is not part of this build"))
	_ = a.router.GET("/docs", notImplementedHTML("Swagger UI"))
	_ = a.router.GET("/redoc", notImplementedHTML("ReDoc"))

	if a.graphqlEng != nil {
		for _, path := range []string{
			"/graphql/playground",
			"/graphql/graphiql",
			"/graphql/sandbox",
			"/graphql/altair",
			"/graphql/voyager",
		} {
			_ = a.router.GET(path, notImplementedHTML("GraphQL IDE"))
		}
	}
}

// healthHandler reports liveness. corehttp has no readiness-gate
// subsystem (no dependency health checks are wired anywhere in this
// module), so /health always reports ok once the process is serving
// requests at all.
func (a *App) healthHandler() router.HandlerFunc {
	return func(c *router.Context) {
		_ = c.JSON(protocol.StatusOK, map[string]string{"status": "ok"})
	}
}

func notImplemented(message string) router.HandlerFunc {
	return func(c *router.Context) {
		_ = c.JSON(protocol.StatusNotImplemented, map[string]string{"error": message})
	}
}

func notImplementedHTML(what string) router.HandlerFunc {
	body := []byte("<!doctype html><title>" + what + "</title><body>" + what + " is not part of this build.</body>")
	return func(c *router.Context) {
		c.Response.Bytes(protocol.StatusNotImplemented, "text/html; charset=utf-8", body)
	}
}
