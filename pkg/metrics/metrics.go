// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-smartwallet.
//
// go-smartwallet is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for wallet operations.
// It exposes operation counters, latency histograms, and rejection/fault
// counters to monitor wallet health.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all smartwallet metrics
	Namespace = "smartwallet"

	// Label names
	LabelOperation  = "operation"
	LabelStatus     = "status"
	LabelOutcome    = "outcome"
	LabelMethod     = "method"
	LabelStatusCode = "status_code"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation outcomes
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFault    = "fault"

	// Operation names
	OpRegister = "register"
	OpDeposit  = "deposit"
	OpPayment  = "payment"
	OpVerify   = "verify"
	OpBalance  = "balance"
)

var (
	// OperationsTotal tracks wallet operations by type and outcome.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of wallet operations by type and outcome",
		},
		[]string{LabelOperation, LabelOutcome},
	)

	// OperationDuration tracks the duration of wallet operations in seconds.
	// Buckets are sized for signature verification plus storage round trips.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of wallet operations in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{LabelOperation},
	)

	// VerificationFaultsTotal tracks assertion verification faults by code.
	VerificationFaultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "verification_faults_total",
			Help:      "Total number of assertion verification faults by fault code",
		},
		[]string{"fault_code"},
	)

	// HTTPRequestsTotal tracks HTTP requests by method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	// HTTPRequestDuration tracks HTTP request duration in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)

	// enabled controls whether metrics are recorded (1) or skipped (0)
	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// Enable turns metric recording on.
func Enable() {
	enabled.Store(true)
}

// Disable turns metric recording off. Useful in tests and minimal deployments.
func Disable() {
	enabled.Store(false)
}

// IsEnabled reports whether metric recording is on.
func IsEnabled() bool {
	return enabled.Load()
}

// RecordOperation records a completed wallet operation with its outcome.
func RecordOperation(operation, outcome string, duration time.Duration) {
	if !IsEnabled() {
		return
	}
	OperationsTotal.WithLabelValues(operation, outcome).Inc()
	OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordVerificationFault records an assertion verification fault by code.
func RecordVerificationFault(faultCode string) {
	if !IsEnabled() {
		return
	}
	VerificationFaultsTotal.WithLabelValues(faultCode).Inc()
}

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, statusCode string, duration float64) {
	if !IsEnabled() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration)
}
