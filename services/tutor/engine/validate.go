// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"fmt"
	"math"
	"math/rand"
)

// equivalenceTolerance is the per-sample agreement requirement when
// comparing expressions numerically.
const equivalenceTolerance = 1e-10

// ValidationResult reports whether a student-submitted step is valid.
type ValidationResult struct {
	IsValid     bool              `json:"is_valid"`
	Errors      []ValidationIssue `json:"errors,omitempty"`
	Warnings    []ValidationIssue `json:"warnings,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// ValidateStep compares a student-submitted step against the expected
// step sequence.
//
// # Description
//
// A step is valid when an expected step of the same type produces an
// algebraically equivalent result. Equivalence is checked numerically:
// both resulting equation states are evaluated at five sample values per
// variable (0, 1, -1 plus two seeded pseudo-random points) and must agree
// at every sample within 1e-10, up to a consistent nonzero scaling (any
// legal move may rescale the whole equation).
//
// When no expected step shares the attempted type, the step is still
// accepted with a low-severity suboptimal warning provided it is
// self-consistent: its own from/to states must be equivalent under the
// same numeric check. Otherwise the result carries a step-type-mismatch
// error.
//
// # Thread Safety
//
// Pure function; sample points are derived from a fixed seed, so results
// are deterministic.
func ValidateStep(ast *EquationAST, attempted Step, expected []Step) ValidationResult {
	result := ValidationResult{}

	variables := []string{}
	if ast != nil {
		variables = ast.Variables
	}

	var typeMatches []Step
	for _, step := range expected {
		if step.Type == attempted.Type {
			typeMatches = append(typeMatches, step)
		}
	}

	if len(typeMatches) == 0 {
		if statesEquivalent(attempted.From, attempted.To, variables) {
			result.IsValid = true
			result.Warnings = append(result.Warnings, ValidationIssue{
				Code:    IssueStepSuboptimal,
				Message: fmt.Sprintf("a %s step is not part of the expected path, but the transformation is mathematically sound", attempted.Type),
			})
			if len(expected) > 0 {
				result.Suggestions = append(result.Suggestions,
					fmt.Sprintf("the expected next move is a %s step", expected[0].Type))
			}
			return result
		}
		result.Errors = append(result.Errors, ValidationIssue{
			Code:    IssueStepTypeMismatch,
			Message: fmt.Sprintf("no expected step has type %s and the attempted transformation does not preserve the equation", attempted.Type),
		})
		return result
	}

	for _, match := range typeMatches {
		if statesEquivalent(attempted.To, match.To, variables) {
			result.IsValid = true
			return result
		}
	}

	result.Errors = append(result.Errors, ValidationIssue{
		Code:    IssueNonEquivalentExpression,
		Message: fmt.Sprintf("the result of the %s step does not match the expected outcome", attempted.Type),
	})
	result.Suggestions = append(result.Suggestions,
		fmt.Sprintf("after this step the equation should read %q", typeMatches[0].To.String()))
	return result
}

// statesEquivalent reports whether two equation states have the same
// solution set. Each state is reduced to d(x) = left - right; the states
// are equivalent when d2 is a consistent nonzero multiple of d1 across
// all sample points (legal algebraic moves preserve roots up to scaling).
func statesEquivalent(a, b EquationState, variables []string) bool {
	da := a.Left.Subtract(a.Right).Combine()
	db := b.Left.Subtract(b.Right).Combine()

	if len(variables) == 0 {
		return proportional(
			[]float64{da.EvaluateAt(nil)},
			[]float64{db.EvaluateAt(nil)},
		)
	}

	// One assignment per sample value, applied to every variable. The
	// engine's scope is single-variable, so this is exhaustive in
	// practice.
	samples := samplePoints()
	va := make([]float64, len(samples))
	vb := make([]float64, len(samples))
	for i, x := range samples {
		assignment := make(map[string]float64, len(variables))
		for _, v := range variables {
			assignment[v] = x
		}
		va[i] = da.EvaluateAt(assignment)
		vb[i] = db.EvaluateAt(assignment)
	}
	return proportional(va, vb)
}

// proportional checks vb == k*va for one consistent k != 0.
func proportional(va, vb []float64) bool {
	k := 0.0
	found := false
	for i := range va {
		aZero := math.Abs(va[i]) < equivalenceTolerance
		bZero := math.Abs(vb[i]) < equivalenceTolerance
		if aZero != bZero {
			return false
		}
		if aZero {
			continue
		}
		ratio := vb[i] / va[i]
		if !found {
			k = ratio
			found = true
			continue
		}
		if math.Abs(ratio-k) > 1e-8*math.Max(1, math.Abs(k)) {
			return false
		}
	}
	return true
}

// samplePoints returns the fixed evaluation grid: 0, 1, -1 plus two
// pseudo-random points from a fixed seed.
func samplePoints() []float64 {
	rng := rand.New(rand.NewSource(1206))
	points := []float64{0, 1, -1}
	for len(points) < 5 {
		points = append(points, rng.Float64()*20-10)
	}
	return points
}
