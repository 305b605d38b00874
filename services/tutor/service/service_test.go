// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianAlgebra/services/tutor/analytics"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/cache"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/engine"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/store"
)

type fixture struct {
	service  *Service
	store    *store.MemoryStore
	cache    *cache.MemoryCache
	recorder *analytics.MemoryRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    store.NewMemoryStore(),
		cache:    cache.NewMemoryCache(time.Minute, time.Minute),
		recorder: analytics.NewMemoryRecorder(0),
	}
	svc, err := New(Config{
		Store:      f.store,
		Cache:      f.cache,
		Recorder:   f.recorder,
		RandomSeed: 1206,
	})
	require.NoError(t, err)
	f.service = svc
	return f
}

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestCreate_FullPipeline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.Create(ctx, "student-1", "2x + 3 = x + 8")
	require.NoError(t, err)
	require.NotNil(t, result.Record)

	assert.False(t, result.CacheHit)
	assert.Equal(t, "student-1", result.Record.OwnerID)
	assert.Equal(t, "2x + 3 = x + 8", result.Record.OriginalInput)
	require.NotNil(t, result.Record.Solution)
	assert.InDelta(t, 5.0, result.Record.Solution.Value, 1e-9)
	assert.NotEmpty(t, result.Record.Steps)
	assert.Equal(t, result.Record.Steps, result.Sequence.Steps)

	stored, err := f.store.Get(ctx, result.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Record.ID, stored.ID)

	f.service.Drain()
	assert.Equal(t, 1, f.recorder.CountByType(analytics.EventEquationCreated))
}

func TestCreate_CacheHitSkipsEngine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, "student-1", "x + 5 = 10")
	require.NoError(t, err)

	// Same equation modulo whitespace and case hits the same cache key.
	second, err := f.service.Create(ctx, "student-1", "X+5=10")
	require.NoError(t, err)

	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Record.ID, second.Record.ID)
}

func TestCreate_CacheHitPreservesWarnings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, "student-1", "X + 5 = 10")
	require.NoError(t, err)
	require.NotEmpty(t, first.Parse.Warnings)
	assert.Equal(t, "unusual_variable", first.Parse.Warnings[0].Code)

	second, err := f.service.Create(ctx, "student-1", "X + 5 = 10")
	require.NoError(t, err)

	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Parse.Warnings, second.Parse.Warnings)
	assert.Equal(t, first.Parse.Warnings, second.Record.Warnings)
}

func TestCreate_CacheHitForOtherOwnerIsReKeyed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, "student-1", "x + 5 = 10")
	require.NoError(t, err)

	second, err := f.service.Create(ctx, "student-2", "x + 5 = 10")
	require.NoError(t, err)

	assert.True(t, second.CacheHit)
	assert.NotEqual(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, "student-2", second.Record.OwnerID)
	require.NotNil(t, second.Record.Solution)
	assert.InDelta(t, first.Record.Solution.Value, second.Record.Solution.Value, 1e-9)

	stored, err := f.store.Get(ctx, second.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, "student-2", stored.OwnerID)
}

func TestCreate_ParseFailure(t *testing.T) {
	f := newFixture(t)

	result, err := f.service.Create(context.Background(), "student-1", "2x + 3")
	require.ErrorIs(t, err, ErrParseFailed)
	assert.Nil(t, result.Record)
	assert.NotEmpty(t, result.Parse.Errors)

	f.service.Drain()
	assert.Equal(t, 1, f.recorder.CountByType(analytics.EventParseFailed))
	assert.Equal(t, 1, f.recorder.CountByType(analytics.EventErrorOccurred))
}

func TestCreate_SolveFailurePersistsRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.Create(ctx, "student-1", "x + 1 = x + 2")
	require.ErrorIs(t, err, engine.ErrNoSolution)
	require.NotNil(t, result.Record)
	assert.Nil(t, result.Record.Solution)

	stored, storeErr := f.store.Get(ctx, result.Record.ID)
	require.NoError(t, storeErr)
	assert.Nil(t, stored.Solution)

	f.service.Drain()
	assert.Equal(t, 1, f.recorder.CountByType(analytics.EventSolveFailed))
}

func TestGet_EnforcesOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, "student-1", "3x = 9")
	require.NoError(t, err)

	t.Run("owner can read", func(t *testing.T) {
		record, err := f.service.Get(ctx, created.Record.ID, "student-1")
		require.NoError(t, err)
		assert.Equal(t, created.Record.ID, record.ID)
	})

	t.Run("other requester is forbidden", func(t *testing.T) {
		_, err := f.service.Get(ctx, created.Record.ID, "student-2")
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing record is not found", func(t *testing.T) {
		_, err := f.service.Get(ctx, "no-such-id", "student-1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestList_ReturnsOnlyOwnRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, "student-1", "x + 1 = 2")
	require.NoError(t, err)
	_, err = f.service.Create(ctx, "student-2", "x + 2 = 4")
	require.NoError(t, err)

	records, err := f.service.List(ctx, "student-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "student-1", records[0].OwnerID)
}

func TestValidateStudentStep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, "student-1", "2x + 3 = x + 8")
	require.NoError(t, err)
	require.Greater(t, len(created.Record.Steps), 1)

	t.Run("matching first step is correct", func(t *testing.T) {
		attempted := created.Record.Steps[0]
		check, err := f.service.ValidateStudentStep(ctx, created.Record.ID, "student-1", attempted, 0)
		require.NoError(t, err)

		assert.True(t, check.IsCorrect)
		expected := 1.0 / float64(len(created.Record.Steps))
		assert.InDelta(t, expected, check.Progress, 1e-9)
		require.NotEmpty(t, created.Record.Steps[1].Hints)
		assert.Equal(t, created.Record.Steps[1].Hints[0], check.NextHint)
	})

	t.Run("wrong result is incorrect with no credit", func(t *testing.T) {
		attempted := created.Record.Steps[0]
		attempted.To = engine.EquationState{
			Left:  engine.NewExpression(engine.NewVariableTerm(1, "x", 1)),
			Right: engine.NewExpression(engine.NewConstant(99)),
		}
		check, err := f.service.ValidateStudentStep(ctx, created.Record.ID, "student-1", attempted, 0)
		require.NoError(t, err)

		assert.False(t, check.IsCorrect)
		assert.Zero(t, check.Progress)
		assert.NotEmpty(t, check.Result.Errors)
	})

	t.Run("final correct step completes progress", func(t *testing.T) {
		last := len(created.Record.Steps) - 1
		check, err := f.service.ValidateStudentStep(ctx, created.Record.ID, "student-1", created.Record.Steps[last], last)
		require.NoError(t, err)

		assert.True(t, check.IsCorrect)
		assert.InDelta(t, 1.0, check.Progress, 1e-9)
		assert.Empty(t, check.NextHint)
	})

	t.Run("other requester is forbidden", func(t *testing.T) {
		_, err := f.service.ValidateStudentStep(ctx, created.Record.ID, "student-2", created.Record.Steps[0], 0)
		require.ErrorIs(t, err, ErrForbidden)
	})
}

func TestGenerateSimilar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.service.Create(ctx, "student-1", "2x + 3 = x + 8")
	require.NoError(t, err)

	t.Run("produces a solvable equation per difficulty", func(t *testing.T) {
		for _, difficulty := range []string{DifficultyEasier, DifficultySame, DifficultyHarder} {
			similar, err := f.service.GenerateSimilar(ctx, created.Record.ID, "student-1", difficulty)
			require.NoError(t, err, "difficulty %s", difficulty)

			assert.Equal(t, difficulty, similar.Difficulty)
			require.NotNil(t, similar.Created.Record)
			require.NotNil(t, similar.Created.Record.Solution, "difficulty %s should yield a solvable equation", difficulty)
			assert.NotEqual(t, created.Record.ID, similar.Created.Record.ID)
		}
	})

	t.Run("unknown difficulty is rejected", func(t *testing.T) {
		_, err := f.service.GenerateSimilar(ctx, created.Record.ID, "student-1", "impossible")
		require.ErrorIs(t, err, ErrUnknownDifficulty)
	})

	t.Run("other requester is forbidden", func(t *testing.T) {
		_, err := f.service.GenerateSimilar(ctx, created.Record.ID, "student-2", DifficultySame)
		require.ErrorIs(t, err, ErrForbidden)
	})
}

func TestCreate_WorksWithoutOptionalCollaborators(t *testing.T) {
	svc, err := New(Config{Store: store.NewMemoryStore()})
	require.NoError(t, err)

	result, err := svc.Create(context.Background(), "student-1", "x = 4")
	require.NoError(t, err)
	require.NotNil(t, result.Record)
	assert.False(t, result.CacheHit)

	var notFound error = store.ErrNotFound
	_, err = svc.Get(context.Background(), "missing", "student-1")
	assert.True(t, errors.Is(err, notFound))
}
