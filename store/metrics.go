// Copyright 2026 Vireo Labs, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vireolabs/objectio/errors"
)

var (
	metricOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "objectio_ops_total",
		Help: "Operations dispatched through an operator, by operation.",
	}, []string{"op"})

	metricOpErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "objectio_op_errors_total",
		Help: "Failed operations, by operation and error kind.",
	}, []string{"op", "kind"})

	metricOpRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "objectio_op_retries_total",
		Help: "Retry attempts made by the retry layer, by operation.",
	}, []string{"op"})

	metricOpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "objectio_op_duration_seconds",
		Help:    "Operation latency as observed by the operator, by operation.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
	}, []string{"op"})
)

func countOp(op string)    { metricOps.WithLabelValues(op).Inc() }
func countRetry(op string) { metricOpRetries.WithLabelValues(op).Inc() }

func observeOp(op string, sec float64) { metricOpDuration.WithLabelValues(op).Observe(sec) }

func countError(op string, err error) {
	if err == nil {
		return
	}
	kind := errors.Unexpected
	if e := errors.Recover(err); e != nil {
		kind = e.Kind
	}
	metricOpErrors.WithLabelValues(op, kind.String()).Inc()
}
