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

// Package metrics exposes the cache, WebSocket hub, and server's internal
// counters as Prometheus metrics. It is deliberately narrower than
// rivaas.dev/metrics: corehttp has no OTLP pipeline, so this package talks
// directly to github.com/prometheus/client_golang rather than routing
// through an OpenTelemetry meter provider.
package metrics

import (
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rivaas.dev/corehttp/cache"
	"rivaas.dev/corehttp/server"
	"rivaas.dev/corehttp/ws"
)

// Collector implements promclient.Collector, polling the cache, hub, and
// server for their current counters on every scrape rather than
// maintaining its own duplicate counters.
type Collector struct {
	cache  *cache.Cache
	hub    *ws.Hub
	server *server.Server

	cacheHits      *promclient.Desc
	cacheMisses    *promclient.Desc
	cacheEvictions *promclient.Desc
	cacheEntries   *promclient.Desc
	wsConnections  *promclient.Desc
	activeConns    *promclient.Desc
	requestTotal   *promclient.Desc
}

// Option configures a Collector.
type Option func(*Collector)

// WithCache attaches a cache.Cache whose Stats() are scraped as
// corehttp_cache_hits_total, corehttp_cache_misses_total, and
// corehttp_cache_evictions_total.
func WithCache(c *cache.Cache) Option {
	return func(col *Collector) { col.cache = c }
}

// WithHub attaches a ws.Hub whose Count() is scraped as
// corehttp_websocket_connections.
func WithHub(h *ws.Hub) Option {
	return func(col *Collector) { col.hub = h }
}

// WithServer attaches a server.Server whose ActiveConnections() and
// RequestCount() are scraped as corehttp_active_connections and
// corehttp_requests_total.
func WithServer(s *server.Server) Option {
	return func(col *Collector) { col.server = s }
}

// NewCollector constructs a Collector. Any combination of WithCache,
// WithHub, and WithServer may be omitted; the corresponding metrics are
// simply not emitted.
func NewCollector(opts ...Option) *Collector {
	col := &Collector{
		cacheHits:      promclient.NewDesc("corehttp_cache_hits_total", "Total response cache hits.", nil, nil),
		cacheMisses:    promclient.NewDesc("corehttp_cache_misses_total", "Total response cache misses.", nil, nil),
		cacheEvictions: promclient.NewDesc("corehttp_cache_evictions_total", "Total response cache evictions.", nil, nil),
		cacheEntries:   promclient.NewDesc("corehttp_cache_entries", "Current number of entries held in the response cache.", nil, nil),
		wsConnections:  promclient.NewDesc("corehttp_websocket_connections", "Current number of open WebSocket connections.", nil, nil),
		activeConns:    promclient.NewDesc("corehttp_active_connections", "Current number of open server connections.", nil, nil),
		requestTotal:   promclient.NewDesc("corehttp_requests_total", "Total requests accepted by the server.", nil, nil),
	}
	for _, opt := range opts {
		opt(col)
	}
	return col
}

// Describe implements promclient.Collector.
func (c *Collector) Describe(ch chan<- *promclient.Desc) {
	if c.cache != nil {
		ch <- c.cacheHits
		ch <- c.cacheMisses
		ch <- c.cacheEvictions
		ch <- c.cacheEntries
	}
	if c.hub != nil {
		ch <- c.wsConnections
	}
	if c.server != nil {
		ch <- c.activeConns
		ch <- c.requestTotal
	}
}

// Collect implements promclient.Collector, sampling each attached
// component's current counters.
func (c *Collector) Collect(ch chan<- promclient.Metric) {
	if c.cache != nil {
		stats := c.cache.Stats()
		ch <- promclient.MustNewConstMetric(c.cacheHits, promclient.CounterValue, float64(stats.Hits))
		ch <- promclient.MustNewConstMetric(c.cacheMisses, promclient.CounterValue, float64(stats.Misses))
		ch <- promclient.MustNewConstMetric(c.cacheEvictions, promclient.CounterValue, float64(stats.Evictions))
		ch <- promclient.MustNewConstMetric(c.cacheEntries, promclient.GaugeValue, float64(c.cache.Count()))
	}
	if c.hub != nil {
		ch <- promclient.MustNewConstMetric(c.wsConnections, promclient.GaugeValue, float64(c.hub.Count()))
	}
	if c.server != nil {
		ch <- promclient.MustNewConstMetric(c.activeConns, promclient.GaugeValue, float64(c.server.ActiveConnections()))
		ch <- promclient.MustNewConstMetric(c.requestTotal, promclient.CounterValue, float64(c.server.RequestCount()))
	}
}

// Handler registers c against a fresh, private Prometheus registry (to
// avoid colliding with anything registered against the global default
// registry elsewhere in the process) and returns the scrape endpoint for
// it.
func (c *Collector) Handler() http.Handler {
	registry := promclient.NewRegistry()
	registry.MustRegister(c)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
