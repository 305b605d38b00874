// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine implements the linear equation engine: tokenizer, parser,
// term model, type classifier, step generator, solver, and student-step
// validator.
//
// # Description
//
// The engine operates on single-variable linear equations built from
// + - * / ^ ( ), integer and decimal coefficients, and single-letter
// variables. An equation is represented as two term lists (Expressions)
// joined by equality; solving reduces them to coefficient*x + constant = 0.
//
// # Thread Safety
//
// Every exported operation is a deterministic, side-effect-free function
// of its inputs (aside from id/timestamp generation). There is no shared
// mutable state; all operations are safe for concurrent use.
package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Epsilon is the tolerance below which a coefficient is treated as zero.
// Terms whose coefficient magnitude falls below Epsilon are dropped
// during simplification.
const Epsilon = 1e-10

// =============================================================================
// Term
// =============================================================================

// Term is a single coefficient-variable(-exponent) unit, or a constant.
//
// Invariant: IsConstant == (Variable == ""). Use NewConstant and
// NewVariableTerm to preserve it. Exponent is meaningful only for
// non-constant terms and defaults to 1.
type Term struct {
	Coefficient float64 `json:"coefficient"`
	Variable    string  `json:"variable,omitempty"`
	Exponent    int     `json:"exponent,omitempty"`
	IsConstant  bool    `json:"is_constant"`
}

// NewConstant returns a constant term with the given value.
func NewConstant(value float64) Term {
	return Term{Coefficient: value, IsConstant: true}
}

// NewVariableTerm returns a variable term. An exponent below 1 is
// normalized to 1.
func NewVariableTerm(coefficient float64, variable string, exponent int) Term {
	if exponent < 1 {
		exponent = 1
	}
	return Term{Coefficient: coefficient, Variable: variable, Exponent: exponent}
}

// Key returns the like-term grouping key: constants share one key, and
// variable terms group by variable and exponent.
func (t Term) Key() string {
	if t.IsConstant {
		return "const"
	}
	return fmt.Sprintf("%s^%d", t.Variable, t.Exponent)
}

// Like reports whether two terms are combinable by summing coefficients.
func (t Term) Like(other Term) bool {
	return t.Key() == other.Key()
}

// Negate returns the term with its coefficient sign flipped.
func (t Term) Negate() Term {
	t.Coefficient = -t.Coefficient
	return t
}

// Scale returns the term with its coefficient multiplied by factor.
func (t Term) Scale(factor float64) Term {
	t.Coefficient *= factor
	return t
}

// EvaluateAt computes the term's numeric value under the given variable
// assignment. Unassigned variables evaluate as zero.
func (t Term) EvaluateAt(values map[string]float64) float64 {
	if t.IsConstant {
		return t.Coefficient
	}
	return t.Coefficient * math.Pow(values[t.Variable], float64(t.Exponent))
}

// Differentiate returns d/d(variable) of the term and whether the result
// is nonzero. Constants and terms in other variables differentiate to zero.
func (t Term) Differentiate(variable string) (Term, bool) {
	if t.IsConstant || t.Variable != variable {
		return Term{}, false
	}
	if t.Exponent == 1 {
		return NewConstant(t.Coefficient), true
	}
	return NewVariableTerm(t.Coefficient*float64(t.Exponent), t.Variable, t.Exponent-1), true
}

// String renders the term in canonical form: "3", "x", "-2x", "4x^2".
func (t Term) String() string {
	if t.IsConstant {
		return formatCoefficient(t.Coefficient)
	}
	var b strings.Builder
	switch {
	case nearlyEqual(t.Coefficient, 1):
		// bare variable
	case nearlyEqual(t.Coefficient, -1):
		b.WriteByte('-')
	default:
		b.WriteString(formatCoefficient(t.Coefficient))
	}
	b.WriteString(t.Variable)
	if t.Exponent > 1 {
		b.WriteString("^")
		b.WriteString(strconv.Itoa(t.Exponent))
	}
	return b.String()
}

// formatCoefficient renders a float without trailing zeros ("2", "2.5").
func formatCoefficient(v float64) string {
	if nearlyEqual(v, math.Round(v)) {
		return strconv.FormatFloat(math.Round(v), 'f', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// =============================================================================
// Expression
// =============================================================================

// Expression is an ordered sum of terms: one side of an equation.
//
// Invariant: when Simplified is true, no two terms in the list are like
// terms of each other.
type Expression struct {
	Terms      []Term `json:"terms"`
	Simplified bool   `json:"simplified"`
}

// NewExpression builds an unsimplified expression from the given terms.
func NewExpression(terms ...Term) Expression {
	copied := make([]Term, len(terms))
	copy(copied, terms)
	return Expression{Terms: copied}
}

// Clone returns a deep copy of the expression.
func (e Expression) Clone() Expression {
	out := Expression{Terms: make([]Term, len(e.Terms)), Simplified: e.Simplified}
	copy(out.Terms, e.Terms)
	return out
}

// Combine collects like terms, summing coefficients per grouping key and
// dropping results with magnitude below Epsilon. Term order follows the
// first appearance of each key, so combination is order-insensitive up
// to that deterministic ordering. Combining an already-simplified
// expression is a no-op.
func (e Expression) Combine() Expression {
	sums := make(map[string]Term)
	var order []string
	for _, t := range e.Terms {
		key := t.Key()
		if existing, ok := sums[key]; ok {
			existing.Coefficient += t.Coefficient
			sums[key] = existing
		} else {
			sums[key] = t
			order = append(order, key)
		}
	}

	out := Expression{Simplified: true}
	for _, key := range order {
		t := sums[key]
		if math.Abs(t.Coefficient) < Epsilon {
			continue
		}
		out.Terms = append(out.Terms, t)
	}
	return out
}

// Add returns the term-wise sum of two expressions, unsimplified.
func (e Expression) Add(other Expression) Expression {
	out := Expression{Terms: make([]Term, 0, len(e.Terms)+len(other.Terms))}
	out.Terms = append(out.Terms, e.Terms...)
	out.Terms = append(out.Terms, other.Terms...)
	return out
}

// Subtract returns e minus other, unsimplified.
func (e Expression) Subtract(other Expression) Expression {
	return e.Add(other.Negate())
}

// Negate flips the sign of every term.
func (e Expression) Negate() Expression {
	out := e.Clone()
	for i := range out.Terms {
		out.Terms[i] = out.Terms[i].Negate()
	}
	return out
}

// Scale multiplies every coefficient by factor.
func (e Expression) Scale(factor float64) Expression {
	out := e.Clone()
	for i := range out.Terms {
		out.Terms[i] = out.Terms[i].Scale(factor)
	}
	out.Simplified = false
	return out
}

// Differentiate returns d/d(variable) of the expression, simplified.
func (e Expression) Differentiate(variable string) Expression {
	var out Expression
	for _, t := range e.Terms {
		if d, ok := t.Differentiate(variable); ok {
			out.Terms = append(out.Terms, d)
		}
	}
	return out.Combine()
}

// EvaluateAt computes the expression's numeric value under the given
// variable assignment.
func (e Expression) EvaluateAt(values map[string]float64) float64 {
	total := 0.0
	for _, t := range e.Terms {
		total += t.EvaluateAt(values)
	}
	return total
}

// Variables returns the distinct variable symbols in first-seen order.
func (e Expression) Variables() []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range e.Terms {
		if t.IsConstant || seen[t.Variable] {
			continue
		}
		seen[t.Variable] = true
		out = append(out, t.Variable)
	}
	return out
}

// VariableTerms returns the non-constant terms.
func (e Expression) VariableTerms() []Term {
	var out []Term
	for _, t := range e.Terms {
		if !t.IsConstant {
			out = append(out, t)
		}
	}
	return out
}

// ConstantTerms returns the constant terms.
func (e Expression) ConstantTerms() []Term {
	var out []Term
	for _, t := range e.Terms {
		if t.IsConstant {
			out = append(out, t)
		}
	}
	return out
}

// Degree returns the highest exponent among variable terms, or 0 for a
// constant expression.
func (e Expression) Degree() int {
	degree := 0
	for _, t := range e.Terms {
		if !t.IsConstant && t.Exponent > degree {
			degree = t.Exponent
		}
	}
	return degree
}

// IsZero reports whether the expression simplifies to zero.
func (e Expression) IsZero() bool {
	return len(e.Combine().Terms) == 0
}

// String renders the expression as "2x + 3" / "-x + 5" / "0".
func (e Expression) String() string {
	if len(e.Terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range e.Terms {
		if i == 0 {
			b.WriteString(t.String())
			continue
		}
		if t.Coefficient < 0 {
			b.WriteString(" - ")
			b.WriteString(t.Negate().String())
		} else {
			b.WriteString(" + ")
			b.WriteString(t.String())
		}
	}
	return b.String()
}
