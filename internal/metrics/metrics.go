// Copyright 2025 Alexander Alten (novatechflow), NovaTechflow (novatechflow.com).
// This project is supported and financed by Scalytics, Inc. (www.scalytics.io).
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

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "timeline"

var (
	PagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Total pages served by result.",
		},
		[]string{"result"},
	)
	PageLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_latency_seconds",
			Help:      "Time to assemble one page.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	StoreOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Segment store operations by op and result.",
		},
		[]string{"op", "result"},
	)
	StoreOpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_latency_seconds",
			Help:      "Segment store operation latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	SegmentsPurgedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_purged_total",
			Help:      "Undecodable segments removed, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		PagesTotal,
		PageLatency,
		StoreOpsTotal,
		StoreOpLatency,
		SegmentsPurgedTotal,
	)
}

// ObservePage records a served page.
func ObservePage(page, events int, latency time.Duration) {
	result := "ok"
	if events == 0 {
		result = "empty"
	}
	PagesTotal.WithLabelValues(result).Inc()
	PageLatency.Observe(latency.Seconds())
}

// ObserveStoreOp records one segment store operation.
func ObserveStoreOp(op string, latency time.Duration, err error) {
	StoreOpsTotal.WithLabelValues(op, resultLabel(err)).Inc()
	StoreOpLatency.WithLabelValues(op).Observe(latency.Seconds())
}

// ObservePurge records one attempt to remove an undecodable segment.
func ObservePurge(_ string, err error) {
	SegmentsPurgedTotal.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
