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
)

// =============================================================================
// Solution Types
// =============================================================================

// VerificationStep records one substitution check of a computed value.
type VerificationStep struct {
	Substitution    string  `json:"substitution"`
	LeftSideResult  float64 `json:"left_side_result"`
	RightSideResult float64 `json:"right_side_result"`
	IsValid         bool    `json:"is_valid"`
}

// Solution is the computed result for one equation. It is derived once
// per solve call and read-only afterward; the service layer attaches the
// pedagogical steps before persisting.
type Solution struct {
	Variable          string             `json:"variable"`
	Value             float64            `json:"value"`
	Steps             []Step             `json:"steps"`
	VerificationSteps []VerificationStep `json:"verification_steps"`
	SolutionMethod    string             `json:"solution_method"`
	Confidence        float64            `json:"confidence"`
}

// =============================================================================
// Solve
// =============================================================================

// Solve reduces the equation to coefficient*x + constant = 0 and
// computes x = -constant / coefficient.
//
// # Description
//
// The right side's contributions are subtracted from the left side's,
// accumulating a single variable coefficient and a single constant.
// Precondition: the AST has exactly one variable, all of degree one;
// otherwise ErrNoVariable or ErrUnsupportedShape is returned.
//
// When the variable coefficient vanishes the equation is degenerate:
// ErrInfiniteSolutions if the constant also vanishes, ErrNoSolution
// otherwise. The degenerate case is always an explicit error, never a
// silent x = 0.
//
// The value is rounded to three decimal places. Verification substitutes
// the computed value into both original sides; a disagreement above the
// engine tolerance forces Confidence to zero.
func Solve(ast *EquationAST) (*Solution, error) {
	if ast == nil || len(ast.Variables) == 0 {
		return nil, ErrNoVariable
	}
	if len(ast.Variables) > 1 {
		return nil, fmt.Errorf("%w: %d variables present", ErrUnsupportedShape, len(ast.Variables))
	}
	if ast.Left.Degree() > 1 || ast.Right.Degree() > 1 {
		return nil, fmt.Errorf("%w: degree above one", ErrUnsupportedShape)
	}

	variable := ast.Variables[0]
	coefficient := 0.0
	constant := 0.0
	for _, t := range ast.Left.Terms {
		if t.IsConstant {
			constant += t.Coefficient
		} else {
			coefficient += t.Coefficient
		}
	}
	for _, t := range ast.Right.Terms {
		if t.IsConstant {
			constant -= t.Coefficient
		} else {
			coefficient -= t.Coefficient
		}
	}

	if math.Abs(coefficient) < Epsilon {
		if math.Abs(constant) < Epsilon {
			return nil, ErrInfiniteSolutions
		}
		return nil, ErrNoSolution
	}

	value := math.Round(-constant/coefficient*1000) / 1000

	solution := &Solution{
		Variable:       variable,
		Value:          value,
		SolutionMethod: string(ast.Type),
	}
	verification := verify(ast, variable, value)
	solution.VerificationSteps = []VerificationStep{verification}
	solution.Confidence = confidenceScore(ast.Type, verification.IsValid)
	return solution, nil
}

// verify substitutes value into both original sides.
func verify(ast *EquationAST, variable string, value float64) VerificationStep {
	assignment := map[string]float64{variable: value}
	left := ast.Left.EvaluateAt(assignment)
	right := ast.Right.EvaluateAt(assignment)
	// Strict tolerance: a value whose three-decimal rounding loses
	// precision (x = 1/3) fails verification and zeroes the confidence.
	return VerificationStep{
		Substitution:    fmt.Sprintf("%s = %s", variable, formatCoefficient(value)),
		LeftSideResult:  left,
		RightSideResult: right,
		IsValid:         math.Abs(left-right) < Epsilon,
	}
}

// confidenceScore is 0.8 plus a method-keyed bonus capped at 1.0, and 0
// whenever verification failed.
func confidenceScore(equationType EquationType, verified bool) float64 {
	if !verified {
		return 0
	}
	bonus := 0.05
	switch equationType {
	case TypeBasic:
		bonus = 0.2
	case TypeStandard:
		bonus = 0.15
	case TypeDistributive, TypeFractional:
		bonus = 0.1
	}
	confidence := 0.8 + bonus
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}
