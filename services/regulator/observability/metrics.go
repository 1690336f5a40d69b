// Copyright (C) 2025 AtlasReg AI (contact@atlasreg.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the regulator
// service.
//
// Metrics cover the chat surfaces (synchronous and websocket), pipeline
// runs and streaming state. All operations are thread-safe via Prometheus's
// internal locking.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "atlasreg"

const chatSubsystem = "chat"

// ChatMetrics holds all Prometheus metrics for chat operations.
type ChatMetrics struct {
	// RequestsTotal counts chat requests by endpoint and status.
	// Labels: endpoint (chat, websocket, documents), status (success, error)
	RequestsTotal *prometheus.CounterVec

	// PipelineDurationSeconds measures capability pipeline duration.
	// Labels: mode (single, chained), status (success, error)
	PipelineDurationSeconds *prometheus.HistogramVec

	// ReasoningStepsTotal counts streamed reasoning steps by origin.
	// Labels: source (extracted, fallback)
	ReasoningStepsTotal *prometheus.CounterVec

	// ActiveWebsockets tracks currently open websocket connections.
	ActiveWebsockets prometheus.Gauge

	// ErrorsTotal counts errors by endpoint and type.
	// Labels: endpoint, error_code
	ErrorsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of ChatMetrics.
// Initialized by InitMetrics; nil when metrics are disabled.
var DefaultMetrics *ChatMetrics

var initOnce sync.Once

// InitMetrics initializes the default metrics instance. Safe to call more
// than once; registration happens only on the first call.
func InitMetrics() *ChatMetrics {
	initOnce.Do(func() {
		DefaultMetrics = &ChatMetrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "requests_total",
					Help:      "Total number of chat requests by endpoint and status",
				},
				[]string{"endpoint", "status"},
			),

			PipelineDurationSeconds: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "pipeline_duration_seconds",
					Help:      "Capability pipeline duration in seconds",
					Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
				},
				[]string{"mode", "status"},
			),

			ReasoningStepsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "reasoning_steps_total",
					Help:      "Total reasoning steps streamed to clients by origin",
				},
				[]string{"source"},
			),

			ActiveWebsockets: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "active_websockets",
					Help:      "Number of currently open websocket connections",
				},
			),

			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: metricsNamespace,
					Subsystem: chatSubsystem,
					Name:      "errors_total",
					Help:      "Total chat errors by endpoint and type",
				},
				[]string{"endpoint", "error_code"},
			),
		}
	})

	return DefaultMetrics
}

// ErrorCode represents a categorized error type for metrics.
type ErrorCode string

const (
	// ErrorCodeValidation indicates request validation failure.
	ErrorCodeValidation ErrorCode = "validation"

	// ErrorCodeUnavailable indicates a capability that was never initialized.
	ErrorCodeUnavailable ErrorCode = "capability_unavailable"

	// ErrorCodeLLMError indicates an agent or LLM API failure.
	ErrorCodeLLMError ErrorCode = "llm_error"

	// ErrorCodeIngest indicates a document ingestion failure.
	ErrorCodeIngest ErrorCode = "ingest_error"

	// ErrorCodeInternal indicates an internal server error.
	ErrorCodeInternal ErrorCode = "internal"
)

// Endpoint represents a chat surface for metrics labeling.
type Endpoint string

const (
	EndpointChat      Endpoint = "chat"
	EndpointWebsocket Endpoint = "websocket"
	EndpointDocuments Endpoint = "documents"
)

// RecordRequest records a completed request.
func (m *ChatMetrics) RecordRequest(endpoint Endpoint, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(string(endpoint), status).Inc()
}

// RecordError records a categorized error.
func (m *ChatMetrics) RecordError(endpoint Endpoint, code ErrorCode) {
	m.ErrorsTotal.WithLabelValues(string(endpoint), string(code)).Inc()
}

// RecordPipeline records a pipeline run duration.
func (m *ChatMetrics) RecordPipeline(mode string, seconds float64, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.PipelineDurationSeconds.WithLabelValues(mode, status).Observe(seconds)
}

// RecordSteps records streamed reasoning steps.
func (m *ChatMetrics) RecordSteps(source string, count int) {
	m.ReasoningStepsTotal.WithLabelValues(source).Add(float64(count))
}

// SocketOpened increments the active websocket gauge.
func (m *ChatMetrics) SocketOpened() {
	m.ActiveWebsockets.Inc()
}

// SocketClosed decrements the active websocket gauge.
func (m *ChatMetrics) SocketClosed() {
	m.ActiveWebsockets.Dec()
}
