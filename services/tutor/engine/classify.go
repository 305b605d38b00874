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

import "math"

// EquationType is the heuristic classification driving the step
// generation strategy.
type EquationType string

const (
	TypeBasic        EquationType = "basic"
	TypeStandard     EquationType = "standard"
	TypeDistributive EquationType = "distributive"
	TypeComplex      EquationType = "complex"
	TypeFractional   EquationType = "fractional"
)

// Classify assigns an equation category from the simplified term lists.
//
// # Description
//
// Rule chain, first match wins:
//
//  1. no variable terms anywhere          -> basic (degenerate)
//  2. any non-integer coefficient        -> fractional
//  3. one variable term, <=2 terms total -> basic
//  4. >1 variable term, <=4 terms total  -> standard
//  5. >=3 terms and a non-constant term
//     with |coefficient| > 1             -> distributive
//  6. >4 terms total                     -> complex
//  7. default                            -> standard
//
// This is a term-count heuristic, not a structural parse: parenthetical
// grouping is collapsed during term extraction, so "distributive" means
// the equation looks like it was produced by a distribution, not that a
// parenthesized product was observed. Deterministic: the same AST always
// classifies the same way.
func Classify(ast *EquationAST) EquationType {
	variableCount := len(ast.Left.VariableTerms()) + len(ast.Right.VariableTerms())
	totalTerms := len(ast.Left.Terms) + len(ast.Right.Terms)

	if variableCount == 0 {
		return TypeBasic
	}
	if hasFractionalCoefficient(ast.Left) || hasFractionalCoefficient(ast.Right) {
		return TypeFractional
	}
	if variableCount == 1 && totalTerms <= 2 {
		return TypeBasic
	}
	if variableCount > 1 && totalTerms <= 4 {
		return TypeStandard
	}
	if totalTerms >= 3 && hasLargeVariableCoefficient(ast.Left, ast.Right) {
		return TypeDistributive
	}
	if totalTerms > 4 {
		return TypeComplex
	}
	return TypeStandard
}

func hasFractionalCoefficient(e Expression) bool {
	for _, t := range e.Terms {
		if math.Abs(t.Coefficient-math.Round(t.Coefficient)) > Epsilon {
			return true
		}
	}
	return false
}

func hasLargeVariableCoefficient(sides ...Expression) bool {
	for _, e := range sides {
		for _, t := range e.VariableTerms() {
			if math.Abs(t.Coefficient) > 1+Epsilon {
				return true
			}
		}
	}
	return false
}
