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

import (
	"context"
	"encoding/json"
	"time"

	"rivaas.dev/corehttp/cache"
	"rivaas.dev/corehttp/errors"
	"rivaas.dev/corehttp/protocol"
	"rivaas.dev/corehttp/router"
)

// Engine ties a Schema, Config, optional response Cache, and optional
// PersistedQueryStore together behind one HTTP entry point.
type Engine struct {
	Schema     *Schema
	Config     *Config
	Cache      *cache.Cache // nil disables the cache probe stage
	Persisted  *PersistedQueryStore
	AppDataFor func(c *router.Context) any
}

// wireResponse is the serialized shape of one GraphQL result.
type wireResponse struct {
	Data       *Value         `json:"data,omitempty"`
	Errors     []wireError    `json:"errors,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Handler returns a router.HandlerFunc implementing the POST /graphql
// endpoint, including batched array bodies.
func (e *Engine) Handler() router.HandlerFunc {
	return func(c *router.Context) {
		requests, isBatch, err := RequestBatch(c.Request.Body)
		if err != nil {
			writeTopLevelError(c, errors.New(errors.KindClientProtocol, "GRAPHQL_BAD_REQUEST", "malformed request body"))
			return
		}

		if isBatch && len(requests) > e.Config.MaxBatchSize {
			writeTopLevelError(c, errors.New(errors.KindValidation, "BATCH_TOO_LARGE", "batch exceeds max_batch_size"))
			return
		}

		var appData any
		if e.AppDataFor != nil {
			appData = e.AppDataFor(c)
		}

		results := make([]wireResponse, len(requests))
		for i, raw := range requests {
			results[i] = e.run(context.Background(), raw, appData)
		}

		if !isBatch {
			_ = c.JSON(protocol.StatusOK, results[0])
			return
		}
		_ = c.JSON(protocol.StatusOK, results)
	}
}

// run executes the full pipeline for one operation: ingest, parse,
// validate, cache probe, execute, mask, serialize — each stage able to
// short-circuit.
func (e *Engine) run(ctx context.Context, raw *RawRequest, appData any) wireResponse {
	tr := newTracingRecorder(ctx, e.Config.TracingEnabled)

	query, topErr := e.resolveQueryText(raw)
	if topErr != nil {
		return errorResponse(topErr)
	}

	var op *Operation
	var parseErr error
	tr.stage("parse", func() {
		op, parseErr = Parse(query)
	})
	if parseErr != nil {
		return errorResponse(toParseError(parseErr))
	}

	var valErr *ResponseError
	tr.stage("validate", func() {
		valErr = validate(e.Schema, op, e.Config)
	})
	if valErr != nil {
		return wireResponse{Errors: []wireError{valErr.toWire()}, Extensions: tr.extensions()}
	}

	rctx := &ResolveContext{AppData: appData, Vars: decodeVariables(raw.Variables)}

	execute := func() wireResponse {
		var data Value
		var execErrs []*ResponseError
		tr.stage("execute", func() {
			data, execErrs = Execute(e.Schema, op, rctx)
		})

		wireErrs := make([]wireError, 0, len(execErrs))
		for _, fe := range execErrs {
			wireErrs = append(wireErrs, fe.mask(e.Config).toWire())
		}

		resp := wireResponse{Data: &data, Extensions: tr.extensions()}
		if len(wireErrs) > 0 {
			resp.Errors = wireErrs
		}
		return resp
	}

	if e.Cache == nil || !e.Config.CacheEnabled || op.Kind != OperationQuery {
		return execute()
	}

	// Probe and populate through the cache's single-flight group:
	// concurrent identical queries on a miss run the resolver chain
	// exactly once, with every waiter replaying the builder's artifact.
	fingerprint := fingerprintOperation(query, raw.Variables, raw.OperationName)
	var built *wireResponse
	entry, cacheErr := e.Cache.GetOrBuild(fingerprint, func() ([]byte, int, map[string][]string, time.Duration, error) {
		r := execute()
		built = &r
		if len(r.Errors) > 0 {
			// Failed executions are never memoized; the builder keeps
			// its own response, waiters re-execute.
			return nil, 0, nil, 0, cache.ErrUncacheable
		}
		body, err := json.Marshal(r)
		if err != nil {
			return nil, 0, nil, 0, err
		}
		return body, 200, nil, e.Config.CacheTTL, nil
	})
	if built != nil {
		return *built // this request was the builder; its result stands
	}
	if cacheErr == nil && entry != nil {
		var cached wireResponse
		if json.Unmarshal(entry.Body, &cached) == nil {
			return cached
		}
	}
	// Waiter observed a failed or undecodable build: execute fresh.
	return execute()
}

// resolveQueryText returns the operation text: either the request
// carries it literally, or — when persisted queries are in play —
// it is looked up by its extensions.persistedQuery.sha256Hash.
func (e *Engine) resolveQueryText(raw *RawRequest) (string, *errors.Error) {
	var hash string
	if raw.Extensions != nil && raw.Extensions.PersistedQuery != nil {
		hash = raw.Extensions.PersistedQuery.Sha256Hash
	}

	if hash == "" {
		if e.Config.PersistedQueriesOnly {
			return "", errors.New(errors.KindValidation, errors.CodePersistedQueryNotAllowed,
				"this endpoint only accepts persisted queries")
		}
		return raw.Query, nil
	}

	if e.Persisted == nil {
		return "", errors.New(errors.KindValidation, errors.CodePersistedQueryNotFound,
			"persisted queries are not configured")
	}

	if stored, ok := e.Persisted.Lookup(hash); ok {
		return stored, nil
	}

	if raw.Query != "" {
		if Sha256Hex(raw.Query) != hash {
			return "", errors.New(errors.KindValidation, errors.CodePersistedQueryNotFound,
				"provided query does not match sha256Hash")
		}
		e.Persisted.Register(raw.Query)
		return raw.Query, nil
	}

	return "", errors.New(errors.KindValidation, errors.CodePersistedQueryNotFound,
		"persisted query not found; resend with full query text to register it")
}

func errorResponse(err *errors.Error) wireResponse {
	return wireResponse{Errors: []wireError{{
		Message:    err.Message,
		Extensions: map[string]any{"code": err.Code},
	}}}
}

func writeTopLevelError(c *router.Context, err *errors.Error) {
	_ = c.JSON(err.HTTPStatus(), errorResponse(err))
}

// fingerprintOperation derives the cache key from the operation text,
// variables, and operation name.
func fingerprintOperation(query string, variables map[string]any, operationName string) string {
	payload, _ := json.Marshal(struct {
		Q  string         `json:"q"`
		V  map[string]any `json:"v"`
		Op string         `json:"op"`
	}{Q: query, V: variables, Op: operationName})
	return "gql:" + Sha256Hex(string(payload))
}
