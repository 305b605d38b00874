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
	"fmt"
	"math"

	"github.com/AleutianAI/AleutianAlgebra/services/tutor/analytics"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/engine"
)

// Difficulty targets for similar-equation generation.
const (
	DifficultyEasier = "easier"
	DifficultySame   = "same"
	DifficultyHarder = "harder"
)

// ErrUnknownDifficulty rejects difficulty strings outside the known set.
var ErrUnknownDifficulty = errors.New("difficulty must be one of: easier, same, harder")

// Coefficient multiplier ranges per difficulty target.
var difficultyRanges = map[string][2]float64{
	DifficultyEasier: {0.5, 0.8},
	DifficultySame:   {0.8, 1.2},
	DifficultyHarder: {1.2, 2.0},
}

// candidateAttempts bounds how many scaled variants we try before
// giving up. Rounding can collapse a variant into a degenerate shape
// (e.g. equal variable coefficients on both sides), so one draw is not
// always enough.
const candidateAttempts = 5

// SimilarResult is the outcome of GenerateSimilar. Created is the full
// pipeline result for the generated equation.
type SimilarResult struct {
	Equation   string
	Difficulty string
	Created    *CreateResult
}

// GenerateSimilar derives a structurally similar equation from an
// existing record by rescaling its coefficients, then runs the new
// equation through the full Create pipeline under the requester's
// ownership.
func (s *Service) GenerateSimilar(ctx context.Context, id, requesterID, difficulty string) (*SimilarResult, error) {
	bounds, ok := difficultyRanges[difficulty]
	if !ok {
		return nil, ErrUnknownDifficulty
	}

	record, err := s.authorize(ctx, id, requesterID, "generate_similar")
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < candidateAttempts; attempt++ {
		equation := s.buildCandidate(record.AST, bounds[0], bounds[1])

		created, createErr := s.Create(ctx, requesterID, equation)
		if createErr != nil {
			lastErr = createErr
			continue
		}

		s.emit(ctx, analytics.Event{
			Type:       analytics.EventSimilarGenerated,
			EquationID: created.Record.ID,
			OwnerID:    requesterID,
			Payload: map[string]string{
				"source_id":  id,
				"difficulty": difficulty,
			},
		})
		return &SimilarResult{
			Equation:   equation,
			Difficulty: difficulty,
			Created:    created,
		}, nil
	}
	return nil, fmt.Errorf("no solvable similar equation after %d attempts: %w", candidateAttempts, lastErr)
}

func (s *Service) randomInRange(low, high float64) float64 {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return low + s.rng.Float64()*(high-low)
}

// buildCandidate rescales every coefficient of both sides, each by its
// own multiplier drawn from [low, high], rounding to the nearest
// non-zero integer, and renders the result back to equation text. The
// combined (simplified) sides are used so the output is a clean,
// freshly parseable equation.
func (s *Service) buildCandidate(ast *engine.EquationAST, low, high float64) string {
	left := s.rescaleExpression(ast.Left, low, high)
	right := s.rescaleExpression(ast.Right, low, high)
	repairVariableCancellation(&left, &right)
	return left.String() + " = " + right.String()
}

func (s *Service) rescaleExpression(expr engine.Expression, low, high float64) engine.Expression {
	scaled := expr.Clone()
	for i := range scaled.Terms {
		multiplier := s.randomInRange(low, high)
		scaled.Terms[i].Coefficient = roundNonZero(scaled.Terms[i].Coefficient * multiplier)
	}
	return scaled.Combine()
}

// repairVariableCancellation nudges one variable coefficient when
// rounding has made the variable terms cancel across the equals sign,
// which would turn a solvable source into a no-solution candidate.
func repairVariableCancellation(left, right *engine.Expression) {
	difference := left.Subtract(*right).Combine()
	for _, term := range difference.VariableTerms() {
		if math.Abs(term.Coefficient) >= engine.Epsilon {
			return
		}
	}
	for _, side := range []*engine.Expression{left, right} {
		for i := range side.Terms {
			if side.Terms[i].IsConstant {
				continue
			}
			if side.Terms[i].Coefficient >= 0 {
				side.Terms[i].Coefficient++
			} else {
				side.Terms[i].Coefficient--
			}
			return
		}
	}
}

// roundNonZero rounds to the nearest integer but never returns zero:
// a coefficient that would vanish keeps its sign at magnitude one, so
// the generated equation preserves the source's term structure.
func roundNonZero(value float64) float64 {
	rounded := math.Round(value)
	if rounded != 0 {
		return rounded
	}
	if value < 0 {
		return -1
	}
	return 1
}
