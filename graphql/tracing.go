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
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the package-wide otel Tracer, named after the module so spans
// are attributable when multiple libraries report to the same exporter.
var tracer = otel.Tracer("rivaas.dev/corehttp/graphql")

// stageTiming is one entry of the response's extensions.tracing array,
// recording one pipeline stage's duration.
type stageTiming struct {
	Name       string `json:"name"`
	DurationNs int64  `json:"durationNs"`
}

// tracingRecorder accumulates stage durations for one operation and, when
// enabled, opens an otel span per stage so the same data reaches a
// distributed trace backend in addition to the inline response
// extension.
type tracingRecorder struct {
	enabled bool
	ctx     context.Context
	stages  []stageTiming
}

func newTracingRecorder(ctx context.Context, enabled bool) *tracingRecorder {
	if ctx == nil {
		ctx = context.Background()
	}
	return &tracingRecorder{enabled: enabled, ctx: ctx}
}

// stage runs fn as a named pipeline stage. When tracing is enabled it
// times fn, records the duration and wraps fn in an otel span; otherwise
// fn just runs and nothing is recorded.
func (r *tracingRecorder) stage(name string, fn func()) {
	if !r.enabled {
		fn()
		return
	}

	var span trace.Span
	_, span = tracer.Start(r.ctx, "graphql."+name)
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	span.End()

	r.stages = append(r.stages, stageTiming{Name: name, DurationNs: elapsed.Nanoseconds()})
}

func (r *tracingRecorder) extensions() map[string]any {
	if !r.enabled || len(r.stages) == 0 {
		return nil
	}
	return map[string]any{"tracing": r.stages}
}
