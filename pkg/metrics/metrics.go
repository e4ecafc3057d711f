// Copyright 2025 walteh LLC
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

// Package metrics provides Prometheus metrics for the synchronization engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// svn invocation metrics
	invocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "svnsync_invocations_total",
			Help: "Total svn invocations",
		},
		[]string{"command", "result"},
	)

	invocationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "svnsync_invocation_duration_seconds",
			Help:    "svn invocation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	// Refresh metrics
	refreshCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "svnsync_refresh_cycles_total",
			Help: "Total status refresh cycles",
		},
		[]string{"scope", "result"},
	)

	queueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "svnsync_queue_depth",
			Help: "Paths waiting in the status request queues",
		},
		[]string{"scope"},
	)

	// Cache metrics
	cacheRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "svnsync_cache_records",
			Help: "Number of records in the status cache",
		},
	)

	// Watcher metrics
	watchEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "svnsync_watch_events_total",
			Help: "Total file system events handled by the watcher",
		},
		[]string{"op"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordInvocation records one svn invocation. result is "ok", "aborted" or an error kind.
func RecordInvocation(command, result string, duration time.Duration) {
	invocationsTotal.WithLabelValues(command, result).Inc()
	invocationDuration.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordRefresh records a completed status cycle for scope.
func RecordRefresh(scope string, success bool) {
	result := "ok"
	if !success {
		result = "failed"
	}
	refreshCyclesTotal.WithLabelValues(scope, result).Inc()
}

// SetQueueDepth updates the request queue gauges.
func SetQueueDepth(local, remote int) {
	queueDepth.WithLabelValues("local").Set(float64(local))
	queueDepth.WithLabelValues("remote").Set(float64(remote))
}

// SetCacheRecords updates the cache size gauge.
func SetCacheRecords(n int) {
	cacheRecords.Set(float64(n))
}

// RecordWatchEvent records a watcher event by operation name.
func RecordWatchEvent(op string) {
	watchEventsTotal.WithLabelValues(op).Inc()
}
