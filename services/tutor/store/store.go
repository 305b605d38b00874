// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store provides the persistence collaborator for the tutor
// service. The Store interface abstracts record storage so the engine
// and service layer never touch a concrete database: the in-memory
// implementation serves tests and lightweight deployments, and the
// BadgerDB implementation provides durable embedded storage.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/AleutianAI/AleutianAlgebra/services/tutor/engine"
)

// ErrNotFound is returned when no record exists for the requested id.
// Callers must keep this distinct from authorization failures.
var ErrNotFound = errors.New("equation record not found")

// Record is the persisted unit: one parsed equation together with its
// derived solution and step sequence, keyed by the equation id.
// IsOptimal and EstimatedTime describe the stored step sequence.
type Record struct {
	ID            string                `json:"id"`
	OwnerID       string                `json:"owner_id"`
	OriginalInput string                `json:"original_input"`
	AST           *engine.EquationAST   `json:"ast"`
	Solution      *engine.Solution      `json:"solution,omitempty"`
	Steps         []engine.Step         `json:"steps,omitempty"`
	Warnings      []engine.ParseWarning `json:"warnings,omitempty"`
	IsOptimal     bool                  `json:"is_optimal"`
	EstimatedTime float64               `json:"estimated_time_seconds"`
	SolveError    string                `json:"solve_error,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// Store is the persistence contract.
//
// Implementations must be safe for concurrent use. Save overwrites any
// existing record with the same id.
type Store interface {
	Save(ctx context.Context, record *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, ownerID string) ([]*Record, error)
	Close() error
}
