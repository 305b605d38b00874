// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analytics provides the event recording collaborator.
//
// Recording is fire-and-observe: the service layer emits events
// asynchronously and never lets a recording failure block or fail the
// primary operation. Events are at-least-once and may be observed out
// of issue order.
package analytics

import (
	"context"
	"sync"
	"time"

	"log/slog"
)

// Event types emitted by the tutor service.
const (
	EventEquationCreated  = "equation_created"
	EventEquationViewed   = "equation_viewed"
	EventStepValidated    = "step_validated"
	EventSimilarGenerated = "similar_generated"
	EventParseFailed      = "parse_failed"
	EventSolveFailed      = "solve_failed"
	EventErrorOccurred    = "error_occurred"
)

// Event is a single analytics record. Payload values are strings so the
// event shape stays explicit at the boundary.
type Event struct {
	Type       string            `json:"type"`
	EquationID string            `json:"equation_id,omitempty"`
	OwnerID    string            `json:"owner_id,omitempty"`
	At         time.Time         `json:"at"`
	Payload    map[string]string `json:"payload,omitempty"`
}

// Recorder receives events. Implementations must be safe for concurrent
// use and should return quickly; the caller does not retry.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// =============================================================================
// In-Memory Recorder
// =============================================================================

// MemoryRecorder keeps the most recent events in a bounded ring.
// Intended for tests and the lightweight single-process deployment.
type MemoryRecorder struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewMemoryRecorder creates a recorder holding at most limit events
// (oldest dropped first). A non-positive limit defaults to 1024.
func NewMemoryRecorder(limit int) *MemoryRecorder {
	if limit <= 0 {
		limit = 1024
	}
	return &MemoryRecorder{limit: limit}
}

// Record appends the event, evicting the oldest when full.
func (r *MemoryRecorder) Record(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) >= r.limit {
		r.events = r.events[1:]
	}
	r.events = append(r.events, event)
	return nil
}

// Events returns a snapshot of the recorded events in arrival order.
func (r *MemoryRecorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// CountByType returns how many recorded events have the given type.
func (r *MemoryRecorder) CountByType(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.events {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

// =============================================================================
// Log Recorder
// =============================================================================

// LogRecorder writes events to a structured logger. Used in the server
// deployment where log aggregation is the analytics sink.
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder creates a recorder writing to logger, or slog.Default
// when logger is nil.
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRecorder{logger: logger}
}

// Record logs the event at info level.
func (r *LogRecorder) Record(ctx context.Context, event Event) error {
	r.logger.InfoContext(ctx, "analytics event",
		"event_type", event.Type,
		"equation_id", event.EquationID,
		"owner_id", event.OwnerID,
		"payload", event.Payload,
	)
	return nil
}
