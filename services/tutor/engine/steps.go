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

	"github.com/google/uuid"
)

// =============================================================================
// Step Types
// =============================================================================

// StepType identifies a pedagogical transformation.
type StepType string

const (
	StepTransposition  StepType = "transposition"
	StepCombination    StepType = "combination"
	StepDistribution   StepType = "distribution"
	StepIsolation      StepType = "isolation"
	StepMultiplication StepType = "multiplication"
	StepDivision       StepType = "division"
	StepAddition       StepType = "addition"
	StepSubtraction    StepType = "subtraction"
)

// EquationState is a snapshot of both sides of the equation at one point
// in a solution sequence.
type EquationState struct {
	Left  Expression `json:"left"`
	Right Expression `json:"right"`
}

// String renders the state as "left = right".
func (s EquationState) String() string {
	return s.Left.String() + " = " + s.Right.String()
}

// Step is one pedagogical transformation. Steps are immutable once
// generated. To is always derived by applying the step's operation to
// From, never filled from a template.
type Step struct {
	ID            string        `json:"id"`
	Type          StepType      `json:"type"`
	Description   string        `json:"description"`
	From          EquationState `json:"from_expression"`
	To            EquationState `json:"to_expression"`
	Justification string        `json:"justification"`
	Difficulty    int           `json:"difficulty"`
	Hints         []string      `json:"hints"`
}

// StepSequence is the ordered solution path for one equation.
type StepSequence struct {
	Steps             []Step  `json:"steps"`
	IsOptimal         bool    `json:"is_optimal"`
	EstimatedTime     float64 `json:"estimated_time_seconds"`
	AlternativeExists bool    `json:"alternative_exists"`
}

// =============================================================================
// Step Templates
// =============================================================================

// stepTemplate carries the static, type-keyed pedagogical text. Only the
// text is templated; the expressions on each Step are always computed.
type stepTemplate struct {
	description   string
	justification string
	hints         []string
	difficulty    int
	baseSeconds   float64
}

var stepTemplates = map[StepType]stepTemplate{
	StepTransposition: {
		description:   "Move terms across the equals sign so variable terms sit on the left and constants on the right",
		justification: "Adding or subtracting the same quantity on both sides preserves equality",
		hints: []string{
			"A term changes sign when it crosses the equals sign",
			"Do the same operation to both sides",
		},
		difficulty:  2,
		baseSeconds: 20,
	},
	StepCombination: {
		description:   "Combine like terms on each side",
		justification: "Terms with the same variable and exponent can be summed by adding their coefficients",
		hints: []string{
			"Group terms that share the same variable",
			"Constants combine with constants",
		},
		difficulty:  1,
		baseSeconds: 15,
	},
	StepDistribution: {
		description:   "Apply the distributive property to expand grouped terms",
		justification: "a(b + c) = ab + ac",
		hints: []string{
			"Multiply the factor into every term inside the parentheses",
			"Watch the signs when the factor is negative",
		},
		difficulty:  3,
		baseSeconds: 30,
	},
	StepIsolation: {
		description:   "Divide both sides by the variable's coefficient",
		justification: "Dividing both sides by the same nonzero quantity preserves equality",
		hints: []string{
			"The goal is a bare variable on the left",
			"Divide every term on both sides",
		},
		difficulty:  2,
		baseSeconds: 20,
	},
	StepMultiplication: {
		description:   "Multiply both sides to clear fractional coefficients",
		justification: "Multiplying both sides by the same nonzero quantity preserves equality",
		hints: []string{
			"Pick a multiplier that turns every coefficient into a whole number",
		},
		difficulty:  3,
		baseSeconds: 25,
	},
	StepDivision: {
		description:   "Divide both sides by the same quantity",
		justification: "Dividing both sides by the same nonzero quantity preserves equality",
		hints:         []string{"Divide every term on both sides"},
		difficulty:    2,
		baseSeconds:   20,
	},
	StepAddition: {
		description:   "Add the same quantity to both sides",
		justification: "Adding the same quantity to both sides preserves equality",
		hints:         []string{"Add to both sides, not just one"},
		difficulty:    1,
		baseSeconds:   15,
	},
	StepSubtraction: {
		description:   "Subtract the same quantity from both sides",
		justification: "Subtracting the same quantity from both sides preserves equality",
		hints:         []string{"Subtract from both sides, not just one"},
		difficulty:    1,
		baseSeconds:   15,
	},
}

// =============================================================================
// Apply Functions
// =============================================================================

// applyCombination collects like terms on both sides.
func applyCombination(s EquationState) EquationState {
	return EquationState{Left: s.Left.Combine(), Right: s.Right.Combine()}
}

// applyTransposeVariables subtracts the right side's variable terms from
// both sides, moving them to the left.
func applyTransposeVariables(s EquationState) EquationState {
	moved := NewExpression(s.Right.VariableTerms()...)
	return EquationState{
		Left:  s.Left.Subtract(moved).Combine(),
		Right: s.Right.Subtract(moved).Combine(),
	}
}

// applyTransposeConstants subtracts the left side's constant terms from
// both sides, moving them to the right.
func applyTransposeConstants(s EquationState) EquationState {
	moved := NewExpression(s.Left.ConstantTerms()...)
	return EquationState{
		Left:  s.Left.Subtract(moved).Combine(),
		Right: s.Right.Subtract(moved).Combine(),
	}
}

// applyIsolation divides both sides by the coefficient of the variable
// term on the left. Returns false when no usable coefficient exists.
func applyIsolation(s EquationState) (EquationState, bool) {
	vars := s.Left.VariableTerms()
	if len(vars) != 1 {
		return s, false
	}
	coefficient := vars[0].Coefficient
	if math.Abs(coefficient) < Epsilon {
		return s, false
	}
	return EquationState{
		Left:  s.Left.Scale(1 / coefficient).Combine(),
		Right: s.Right.Scale(1 / coefficient).Combine(),
	}, true
}

// applyClearFractions multiplies both sides by the smallest power of ten
// (up to 1000) that makes every coefficient integral. Returns the
// multiplier used; 1 means nothing needed clearing.
func applyClearFractions(s EquationState) (EquationState, float64) {
	multiplier := 1.0
	for multiplier <= 1000 {
		if statesIntegral(s, multiplier) {
			break
		}
		multiplier *= 10
	}
	if multiplier == 1 || multiplier > 1000 {
		return s, 1
	}
	return EquationState{
		Left:  s.Left.Scale(multiplier).Combine(),
		Right: s.Right.Scale(multiplier).Combine(),
	}, multiplier
}

func statesIntegral(s EquationState, multiplier float64) bool {
	for _, t := range append(s.Left.Terms, s.Right.Terms...) {
		scaled := t.Coefficient * multiplier
		if math.Abs(scaled-math.Round(scaled)) > 1e-6 {
			return false
		}
	}
	return true
}

// =============================================================================
// Step Generation
// =============================================================================

// GenerateSteps produces the ordered pedagogical step sequence for a
// classified AST.
//
// # Description
//
// Dispatches on the equation type:
//
//   - basic:        transposition (when needed), isolation
//   - standard:     combination (when a side has like terms),
//     variable transposition, constant transposition, isolation
//   - distributive/complex: distribution, then the standard sequence
//   - fractional:   clear-fractions multiplication, then standard
//
// Every To state is computed by applying the step's operation to its
// From state. Steps whose operation would not change the state are
// skipped, so the emitted sequence can be shorter than the nominal
// template for the type: a basic equation whose variable coefficient is
// already 1 ("x + 5 = 10") yields only a transposition, because an
// isolation dividing by 1 would be an identity and identities cannot be
// expressed as derived steps. GenerateSteps never fails: when no
// meaningful step can be produced (degenerate input) it returns a
// single-step fallback with IsOptimal=false.
func GenerateSteps(ast *EquationAST) StepSequence {
	if ast == nil {
		return fallbackSequence(EquationState{})
	}

	state := EquationState{Left: ast.LeftRaw.Clone(), Right: ast.RightRaw.Clone()}
	if len(state.Left.Terms) == 0 && len(state.Right.Terms) == 0 {
		state = EquationState{Left: ast.Left.Clone(), Right: ast.Right.Clone()}
	}

	var steps []Step

	appendStep := func(stepType StepType, next EquationState) {
		steps = append(steps, newStep(stepType, state, next))
		state = next
	}

	switch ast.Type {
	case TypeDistributive, TypeComplex:
		if next := applyCombination(state); !statesIdentical(state, next) {
			appendStep(StepDistribution, next)
		}
	case TypeFractional:
		if next, multiplier := applyClearFractions(state); multiplier != 1 {
			appendStep(StepMultiplication, next)
		}
	}

	if next := applyCombination(state); !statesIdentical(state, next) {
		appendStep(StepCombination, next)
	}
	if next := applyTransposeVariables(state); !statesIdentical(state, next) {
		appendStep(StepTransposition, next)
	}
	if next := applyTransposeConstants(state); !statesIdentical(state, next) {
		appendStep(StepTransposition, next)
	}
	if next, ok := applyIsolation(state); ok && !statesIdentical(state, next) {
		appendStep(StepIsolation, next)
	}

	if len(steps) == 0 {
		return fallbackSequence(state)
	}

	return StepSequence{
		Steps:             steps,
		IsOptimal:         true,
		EstimatedTime:     estimateSeconds(steps),
		AlternativeExists: alternativeExists(ast.Type),
	}
}

// newStep builds an immutable Step from the type-keyed template with
// computed from/to states.
func newStep(stepType StepType, from, to EquationState) Step {
	tmpl := stepTemplates[stepType]
	return Step{
		ID:            uuid.NewString(),
		Type:          stepType,
		Description:   fmt.Sprintf("%s: %s becomes %s", tmpl.description, from.String(), to.String()),
		From:          from,
		To:            to,
		Justification: tmpl.justification,
		Difficulty:    tmpl.difficulty,
		Hints:         tmpl.hints,
	}
}

// fallbackSequence is the never-throw guarantee: a single advisory step
// with IsOptimal=false.
func fallbackSequence(state EquationState) StepSequence {
	tmpl := stepTemplates[StepCombination]
	step := Step{
		ID:            uuid.NewString(),
		Type:          StepCombination,
		Description:   "The equation is already in its simplest form",
		From:          state,
		To:            state,
		Justification: tmpl.justification,
		Difficulty:    1,
		Hints:         []string{"No further transformation is required"},
	}
	return StepSequence{
		Steps:         []Step{step},
		IsOptimal:     false,
		EstimatedTime: tmpl.baseSeconds,
	}
}

func estimateSeconds(steps []Step) float64 {
	total := 0.0
	for _, s := range steps {
		total += stepTemplates[s.Type].baseSeconds * float64(s.Difficulty)
	}
	return total
}

// alternativeExists is true for types whose solution path is not the
// only reasonable one.
func alternativeExists(equationType EquationType) bool {
	switch equationType {
	case TypeDistributive, TypeComplex, TypeFractional:
		return true
	default:
		return false
	}
}

// statesIdentical compares two states term-for-term within Epsilon.
// The comparison is literal (no combining first), so a combination step
// whose only effect is collecting like terms still registers as a change.
func statesIdentical(a, b EquationState) bool {
	return expressionsIdentical(a.Left, b.Left) && expressionsIdentical(a.Right, b.Right)
}

func expressionsIdentical(a, b Expression) bool {
	if len(a.Terms) != len(b.Terms) {
		return false
	}
	for i := range a.Terms {
		if a.Terms[i].Key() != b.Terms[i].Key() {
			return false
		}
		if math.Abs(a.Terms[i].Coefficient-b.Terms[i].Coefficient) > Epsilon {
			return false
		}
	}
	return true
}
