// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and instrumentation for the
// tutor service.
//
// # Description
//
// This package implements Prometheus metrics for monitoring the
// equation pipeline. Metrics include:
//   - Equation counters (by type and outcome)
//   - Parse error counters (by error code)
//   - Solve latency histograms
//   - Step validation counters (correct/incorrect)
//   - Cache lookup counters (hit/miss)
//
// # Integration
//
// Metrics are exposed via the /metrics endpoint. Use with Prometheus +
// Grafana for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for tutor metrics
const tutorSubsystem = "algebra"

// TutorMetrics holds all Prometheus metrics for the equation pipeline.
// Initialize once at startup via InitMetrics().
type TutorMetrics struct {
	// EquationsTotal counts processed equations.
	// Labels: equation_type (basic, standard, distributive, complex,
	// fractional), status (solved, parse_error, solve_error)
	EquationsTotal *prometheus.CounterVec

	// ParseErrorsTotal counts parse errors by machine-readable code.
	// Labels: code (syntax_error, invalid_character, ...)
	ParseErrorsTotal *prometheus.CounterVec

	// PipelineDurationSeconds measures the parse+solve+steps pipeline.
	// Labels: equation_type
	PipelineDurationSeconds *prometheus.HistogramVec

	// StepValidationsTotal counts student step validations.
	// Labels: result (correct, incorrect)
	StepValidationsTotal *prometheus.CounterVec

	// CacheLookupsTotal counts equation cache lookups.
	// Labels: result (hit, miss)
	CacheLookupsTotal *prometheus.CounterVec
}

var (
	initOnce sync.Once
	metrics  *TutorMetrics
)

// InitMetrics registers and returns the tutor metrics. Safe to call
// more than once; registration happens only on the first call.
func InitMetrics() *TutorMetrics {
	initOnce.Do(func() {
		metrics = &TutorMetrics{
			EquationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: tutorSubsystem,
					Name:      "equations_total",
					Help:      "Total equations processed by type and outcome.",
				},
				[]string{"equation_type", "status"},
			),
			ParseErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: tutorSubsystem,
					Name:      "parse_errors_total",
					Help:      "Total parse errors by error code.",
				},
				[]string{"code"},
			),
			PipelineDurationSeconds: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: tutorSubsystem,
					Name:      "pipeline_duration_seconds",
					Help:      "Duration of the parse+solve+steps pipeline.",
					Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
				},
				[]string{"equation_type"},
			),
			StepValidationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: tutorSubsystem,
					Name:      "step_validations_total",
					Help:      "Total student step validations by result.",
				},
				[]string{"result"},
			),
			CacheLookupsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: tutorSubsystem,
					Name:      "cache_lookups_total",
					Help:      "Total equation cache lookups by result.",
				},
				[]string{"result"},
			),
		}
	})
	return metrics
}

// RecordEquation records one processed equation.
func (m *TutorMetrics) RecordEquation(equationType, status string) {
	m.EquationsTotal.WithLabelValues(equationType, status).Inc()
}

// RecordParseError records one parse error by code.
func (m *TutorMetrics) RecordParseError(code string) {
	m.ParseErrorsTotal.WithLabelValues(code).Inc()
}

// RecordPipelineDuration records the elapsed pipeline time in seconds.
func (m *TutorMetrics) RecordPipelineDuration(equationType string, seconds float64) {
	m.PipelineDurationSeconds.WithLabelValues(equationType).Observe(seconds)
}

// RecordStepValidation records one step validation outcome.
func (m *TutorMetrics) RecordStepValidation(correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.StepValidationsTotal.WithLabelValues(result).Inc()
}

// RecordCacheLookup records one cache lookup outcome.
func (m *TutorMetrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}
