// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package service orchestrates the equation engine with its
// collaborators: persistence, caching, and analytics.
//
// # Description
//
// The Service sequences tokenize -> parse -> solve -> generate-steps,
// persists the resulting record, caches it under a normalized input
// hash, and emits analytics events. All collaborators are injected via
// Config, so a real database or cache can be substituted without
// touching engine code.
//
// # Concurrency
//
// The engine is pure; the Service's only shared state is the injected
// collaborators (which must be concurrency-safe) and the random source
// used for similar-equation generation, which is mutex-guarded.
// Analytics emission is fire-and-observe: events are recorded on a
// separate goroutine and recording failures never fail the primary
// operation.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/AleutianAI/AleutianAlgebra/services/tutor/analytics"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/cache"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/engine"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/store"
)

// Service-level sentinels. ErrForbidden is deliberately distinct from
// store.ErrNotFound so handlers can answer 403 vs 404 correctly.
var (
	ErrForbidden   = errors.New("requester does not have access to this equation")
	ErrParseFailed = errors.New("equation could not be parsed")
)

// Config wires the Service's collaborators.
type Config struct {
	// Store is required.
	Store store.Store

	// Cache is optional; nil disables caching.
	Cache cache.Cache

	// Recorder is optional; nil disables analytics.
	Recorder analytics.Recorder

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// CacheTTL defaults to cache.DefaultTTL.
	CacheTTL time.Duration

	// RandomSeed fixes the similar-equation random source; 0 seeds from
	// the clock.
	RandomSeed int64
}

// Service is the equation orchestrator.
type Service struct {
	store    store.Store
	cache    cache.Cache
	recorder analytics.Recorder
	logger   *slog.Logger
	cacheTTL time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand

	events sync.WaitGroup
}

// New validates the config and builds a Service.
func New(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		store:    cfg.Store,
		cache:    cfg.Cache,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
		cacheTTL: cfg.CacheTTL,
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Drain blocks until all in-flight analytics events are recorded.
// Intended for shutdown and tests.
func (s *Service) Drain() {
	s.events.Wait()
}

// emit records an analytics event without blocking the caller and
// without letting a recording failure surface.
func (s *Service) emit(ctx context.Context, event analytics.Event) {
	if s.recorder == nil {
		return
	}
	event.At = time.Now().UTC()
	detached := context.WithoutCancel(ctx)
	s.events.Add(1)
	go func() {
		defer s.events.Done()
		if err := s.recorder.Record(detached, event); err != nil {
			s.logger.Warn("analytics recording failed", "event_type", event.Type, "error", err)
		}
	}()
}

// emitError records an error_occurred event alongside the primary
// event stream.
func (s *Service) emitError(ctx context.Context, operation, ownerID string, err error) {
	s.emit(ctx, analytics.Event{
		Type:    analytics.EventErrorOccurred,
		OwnerID: ownerID,
		Payload: map[string]string{"operation": operation, "error": err.Error()},
	})
}

// =============================================================================
// Create
// =============================================================================

// CreateResult is the outcome of Create. Parse always carries the
// structured error and warning lists; Record is nil when parsing failed.
type CreateResult struct {
	Record   *store.Record
	Parse    engine.ParseResult
	Sequence engine.StepSequence
	CacheHit bool
}

// Create runs the full pipeline for a raw equation string.
//
// Cache hits skip the engine entirely. A hit produced by a different
// owner is re-keyed: the computed artifacts are shared but the persisted
// record belongs to the requester. Parse failures return ErrParseFailed
// with the structured errors on the result; solve failures (no solution,
// infinite solutions, unsupported shape) persist the parsed record
// without a solution and surface the engine error.
func (s *Service) Create(ctx context.Context, ownerID, rawInput string) (*CreateResult, error) {
	key := cache.Key(rawInput)
	if cached := s.cacheLookup(ctx, key, ownerID); cached != nil {
		s.emit(ctx, analytics.Event{
			Type:       analytics.EventEquationCreated,
			EquationID: cached.Record.ID,
			OwnerID:    ownerID,
			Payload:    map[string]string{"cache_hit": "true"},
		})
		return cached, nil
	}

	result := &CreateResult{Parse: engine.ParseEquation(rawInput)}
	if result.Parse.AST == nil {
		s.emit(ctx, analytics.Event{
			Type:    analytics.EventParseFailed,
			OwnerID: ownerID,
			Payload: map[string]string{"input": rawInput, "errors": fmt.Sprint(len(result.Parse.Errors))},
		})
		s.emitError(ctx, "create", ownerID, ErrParseFailed)
		return result, ErrParseFailed
	}

	ast := result.Parse.AST
	result.Sequence = engine.GenerateSteps(ast)

	record := &store.Record{
		ID:            ast.Metadata.ID,
		OwnerID:       ownerID,
		OriginalInput: rawInput,
		AST:           ast,
		Steps:         result.Sequence.Steps,
		Warnings:      result.Parse.Warnings,
		IsOptimal:     result.Sequence.IsOptimal,
		EstimatedTime: result.Sequence.EstimatedTime,
		CreatedAt:     time.Now().UTC(),
	}

	solution, solveErr := engine.Solve(ast)
	if solveErr == nil {
		solution.Steps = result.Sequence.Steps
		record.Solution = solution
	} else {
		record.SolveError = solveErr.Error()
	}

	if err := s.store.Save(ctx, record); err != nil {
		s.emitError(ctx, "create", ownerID, err)
		return result, fmt.Errorf("persist equation %s: %w", record.ID, err)
	}
	result.Record = record

	if solveErr != nil {
		s.emit(ctx, analytics.Event{
			Type:       analytics.EventSolveFailed,
			EquationID: record.ID,
			OwnerID:    ownerID,
			Payload:    map[string]string{"reason": solveErr.Error()},
		})
		s.emitError(ctx, "create", ownerID, solveErr)
		return result, fmt.Errorf("solve equation %s: %w", record.ID, solveErr)
	}

	s.cacheStore(key, record)
	s.emit(ctx, analytics.Event{
		Type:       analytics.EventEquationCreated,
		EquationID: record.ID,
		OwnerID:    ownerID,
		Payload:    map[string]string{"equation_type": string(ast.Type)},
	})
	return result, nil
}

// cacheLookup returns a CreateResult rebuilt from the cache, or nil on
// a miss. A hit owned by someone else is cloned under a fresh id for
// the requester and persisted. Parse warnings are restored from the
// record so a hit answers the same as the original miss.
func (s *Service) cacheLookup(ctx context.Context, key, ownerID string) *CreateResult {
	if s.cache == nil {
		return nil
	}
	data, found := s.cache.Get(key)
	if !found {
		return nil
	}
	var record store.Record
	if err := json.Unmarshal(data, &record); err != nil {
		s.logger.Warn("dropping corrupt cache entry", "key", key, "error", err)
		_ = s.cache.Delete(key)
		return nil
	}
	if record.OwnerID != ownerID {
		record.ID = uuid.NewString()
		record.OwnerID = ownerID
		record.CreatedAt = time.Now().UTC()
		if err := s.store.Save(ctx, &record); err != nil {
			s.logger.Warn("failed to persist re-keyed cache hit", "error", err)
			return nil
		}
	}
	return &CreateResult{
		Record:   &record,
		Parse:    engine.ParseResult{Warnings: record.Warnings},
		CacheHit: true,
	}
}

func (s *Service) cacheStore(key string, record *store.Record) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn("failed to encode record for cache", "id", record.ID, "error", err)
		return
	}
	if err := s.cache.Set(key, data, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", "id", record.ID, "error", err)
	}
}

// =============================================================================
// Get / List
// =============================================================================

// Get loads a record, enforcing that the requester owns it. A missing
// record is store.ErrNotFound; an existing record owned by someone else
// is ErrForbidden.
func (s *Service) Get(ctx context.Context, id, requesterID string) (*store.Record, error) {
	record, err := s.authorize(ctx, id, requesterID, "get")
	if err != nil {
		return nil, err
	}
	s.emit(ctx, analytics.Event{
		Type:       analytics.EventEquationViewed,
		EquationID: id,
		OwnerID:    requesterID,
	})
	return record, nil
}

// List returns all records owned by the requester.
func (s *Service) List(ctx context.Context, requesterID string) ([]*store.Record, error) {
	return s.store.List(ctx, requesterID)
}

func (s *Service) authorize(ctx context.Context, id, requesterID, operation string) (*store.Record, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.emitError(ctx, operation, requesterID, err)
		}
		return nil, err
	}
	if record.OwnerID != requesterID {
		s.emitError(ctx, operation, requesterID, ErrForbidden)
		return nil, ErrForbidden
	}
	return record, nil
}

// =============================================================================
// Student Step Validation
// =============================================================================

// StepCheck is the outcome of validating one student step.
type StepCheck struct {
	Result    engine.ValidationResult `json:"result"`
	IsCorrect bool                    `json:"is_correct"`
	NextHint  string                  `json:"next_hint,omitempty"`
	Progress  float64                 `json:"progress"`
}

// ValidateStudentStep checks a submitted step against the stored
// expected sequence. Progress is (stepIndex + 1 if correct) divided by
// the expected step count, clamped to [0, 1].
func (s *Service) ValidateStudentStep(ctx context.Context, id, requesterID string, attempted engine.Step, stepIndex int) (*StepCheck, error) {
	record, err := s.authorize(ctx, id, requesterID, "validate_step")
	if err != nil {
		return nil, err
	}
	if len(record.Steps) == 0 {
		return nil, fmt.Errorf("equation %s has no expected steps to validate against", id)
	}

	check := &StepCheck{Result: engine.ValidateStep(record.AST, attempted, record.Steps)}
	check.IsCorrect = check.Result.IsValid

	total := len(record.Steps)
	credit := stepIndex
	if check.IsCorrect {
		credit++
	}
	check.Progress = float64(credit) / float64(total)
	if check.Progress < 0 {
		check.Progress = 0
	}
	if check.Progress > 1 {
		check.Progress = 1
	}

	if next := stepIndex + 1; next < total && len(record.Steps[next].Hints) > 0 {
		check.NextHint = record.Steps[next].Hints[0]
	}

	s.emit(ctx, analytics.Event{
		Type:       analytics.EventStepValidated,
		EquationID: id,
		OwnerID:    requesterID,
		Payload: map[string]string{
			"correct":    fmt.Sprintf("%t", check.IsCorrect),
			"step_index": fmt.Sprintf("%d", stepIndex),
		},
	})
	return check, nil
}
