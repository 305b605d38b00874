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
	"strconv"
	"time"

	"github.com/google/uuid"
)

// maxComplexity caps the complexity heuristic. The score is a UI and
// analytics hint only; it plays no part in solving.
const maxComplexity = 10

// =============================================================================
// AST Types
// =============================================================================

// EquationMetadata is created once at parse time and never mutated.
type EquationMetadata struct {
	ID                 string     `json:"id"`
	OriginalInput      string     `json:"original_input"`
	CreatedAt          time.Time  `json:"created_at"`
	DifficultyLevel    int        `json:"difficulty_level"`
	EstimatedSteps     int        `json:"estimated_steps"`
	RequiredOperations []StepType `json:"required_operations"`
}

// EquationAST is the root value object for a parsed equation.
//
// Left and Right are the simplified (like-terms collected) sides.
// LeftRaw and RightRaw preserve the term lists as extracted from the
// token stream, before collection; the step generator uses them so a
// combination step can show the uncombined starting point.
type EquationAST struct {
	Metadata   EquationMetadata `json:"metadata"`
	Left       Expression       `json:"left"`
	Right      Expression       `json:"right"`
	LeftRaw    Expression       `json:"left_raw"`
	RightRaw   Expression       `json:"right_raw"`
	Type       EquationType     `json:"equation_type"`
	Variables  []string         `json:"variables"`
	Complexity int              `json:"complexity"`
}

// ParseResult carries the outcome of a parse pass. AST is nil whenever
// Errors is non-empty: partial or best-effort ASTs are never returned.
type ParseResult struct {
	AST       *EquationAST   `json:"ast,omitempty"`
	Errors    []ParseError   `json:"errors,omitempty"`
	Warnings  []ParseWarning `json:"warnings,omitempty"`
	ParseTime time.Duration  `json:"parse_time"`
}

// =============================================================================
// ParseEquation
// =============================================================================

// ParseEquation tokenizes and parses an equation string into an AST.
//
// # Description
//
// Pipeline: tokenize, locate the equals sign, parse each side into a
// term list, collect like terms, classify, and assemble metadata.
//
// Failure policy: any parse error yields a nil AST together with the
// collected error list. Exactly one "=" is required; zero or multiple
// equals signs are rejected with a syntax_error (the multi-equals case
// is rejected explicitly rather than picking an arbitrary split).
//
// # Outputs
//
//   - ParseResult with a non-nil AST iff no errors were collected.
//
// # Thread Safety
//
// Safe for concurrent use; the only non-determinism is the generated
// id and timestamp on the metadata.
func ParseEquation(input string) ParseResult {
	started := time.Now()
	result := ParseResult{}

	tokens, errs := Tokenize(input)
	result.Errors = append(result.Errors, errs...)

	if len(tokens) == 0 {
		result.Errors = append(result.Errors, ParseError{
			Code:     CodeEmptyExpression,
			Message:  "input contains no tokens",
			Severity: SeverityCritical,
			Position: -1,
		})
		result.ParseTime = time.Since(started)
		return result
	}

	equalsIdx := -1
	equalsCount := 0
	for i, tok := range tokens {
		if tok.Kind == TokenEquals {
			equalsCount++
			if equalsIdx < 0 {
				equalsIdx = i
			}
		}
	}
	switch {
	case equalsCount == 0:
		result.Errors = append(result.Errors, ParseError{
			Code:     CodeSyntaxError,
			Message:  "equation is missing an equals sign",
			Severity: SeverityCritical,
			Position: -1,
		})
	case equalsCount > 1:
		result.Errors = append(result.Errors, ParseError{
			Code:     CodeSyntaxError,
			Message:  "equation contains more than one equals sign",
			Severity: SeverityCritical,
			Position: -1,
		})
	}
	if len(result.Errors) > 0 {
		result.ParseTime = time.Since(started)
		return result
	}

	leftTokens := tokens[:equalsIdx]
	rightTokens := tokens[equalsIdx+1:]
	if len(leftTokens) == 0 || len(rightTokens) == 0 {
		result.Errors = append(result.Errors, ParseError{
			Code:     CodeEmptyExpression,
			Message:  "one side of the equation is empty",
			Severity: SeverityCritical,
			Position: tokens[equalsIdx].Start,
		})
		result.ParseTime = time.Since(started)
		return result
	}

	leftTerms, leftErrs := parseTerms(leftTokens)
	rightTerms, rightErrs := parseTerms(rightTokens)
	result.Errors = append(result.Errors, leftErrs...)
	result.Errors = append(result.Errors, rightErrs...)
	if len(result.Errors) > 0 {
		result.ParseTime = time.Since(started)
		return result
	}

	leftRaw := NewExpression(leftTerms...)
	rightRaw := NewExpression(rightTerms...)
	ast := &EquationAST{
		Left:     leftRaw.Combine(),
		Right:    rightRaw.Combine(),
		LeftRaw:  leftRaw,
		RightRaw: rightRaw,
	}

	ast.Variables = unionVariables(ast.Left, ast.Right)
	ast.Type = Classify(ast)
	ast.Complexity = complexityScore(ast)
	ast.Metadata = buildMetadata(input, ast)

	if len(ast.Variables) == 0 {
		result.Warnings = append(result.Warnings, ParseWarning{
			Code:    "degenerate_equation",
			Message: "equation contains no variables",
		})
	}
	if len(ast.Variables) > 1 {
		result.Warnings = append(result.Warnings, ParseWarning{
			Code:    "multiple_variables",
			Message: fmt.Sprintf("equation contains %d variables; solving targets %q", len(ast.Variables), ast.Variables[0]),
		})
	}
	for _, v := range ast.Variables {
		if v[0] >= 'A' && v[0] <= 'Z' {
			result.Warnings = append(result.Warnings, ParseWarning{
				Code:    "unusual_variable",
				Message: fmt.Sprintf("uppercase variable %q is unusual; lowercase is conventional", v),
			})
		}
	}

	result.AST = ast
	result.ParseTime = time.Since(started)
	return result
}

// =============================================================================
// Term Extraction
// =============================================================================

// parseTerms walks a token sublist (one side of the equation) and
// extracts a flat term list. Parenthesized groups are parsed recursively
// and collapsed by distributing any pending multiplier over the inner
// terms; tree structure is not preserved.
func parseTerms(tokens []Token) ([]Term, []ParseError) {
	var (
		terms []Term
		errs  []ParseError
	)

	pos := 0
	for pos < len(tokens) {
		signStart := pos
		sign := 1.0
		sawSign := false
		for pos < len(tokens) && tokens[pos].Kind == TokenOperator &&
			(tokens[pos].Text == "+" || tokens[pos].Text == "-") {
			if tokens[pos].Text == "-" {
				sign = -sign
			}
			sawSign = true
			pos++
		}
		if pos >= len(tokens) {
			if sawSign {
				errs = append(errs, ParseError{
					Code:     CodeSyntaxError,
					Message:  "dangling sign with no operand",
					Severity: SeverityHigh,
					Position: tokens[signStart].Start,
				})
			}
			break
		}

		tok := tokens[pos]
		switch tok.Kind {
		case TokenNumber:
			value, err := strconv.ParseFloat(tok.Text, 64)
			if err != nil {
				errs = append(errs, ParseError{
					Code:     CodeSyntaxError,
					Message:  fmt.Sprintf("malformed number %q", tok.Text),
					Severity: SeverityHigh,
					Position: tok.Start,
				})
				pos++
				continue
			}
			pos++
			coefficient := sign * value

			// explicit multiplication: "2*x", "2*(x+1)"
			if pos < len(tokens) && tokens[pos].Kind == TokenOperator && tokens[pos].Text == "*" {
				pos++
				if pos >= len(tokens) {
					errs = append(errs, ParseError{
						Code:     CodeMissingOperator,
						Message:  "multiplication is missing its right operand",
						Severity: SeverityHigh,
						Position: tok.End,
					})
					break
				}
			}

			switch {
			case pos < len(tokens) && tokens[pos].Kind == TokenVariable:
				name := tokens[pos].Text
				pos++
				if multiErr := rejectAdjacentLetter(tokens, pos); multiErr != nil {
					errs = append(errs, *multiErr)
					pos++
					continue
				}
				exponent, next, expErrs := parseExponent(tokens, pos)
				errs = append(errs, expErrs...)
				pos = next
				coefficient, pos, errs = applyDivisor(tokens, pos, coefficient, errs)
				terms = append(terms, NewVariableTerm(coefficient, name, exponent))

			case pos < len(tokens) && tokens[pos].Kind == TokenLeftParen:
				inner, next, parenErrs := splitParenGroup(tokens, pos)
				errs = append(errs, parenErrs...)
				pos = next
				sub, subErrs := parseTerms(inner)
				errs = append(errs, subErrs...)
				for _, t := range sub {
					terms = append(terms, t.Scale(coefficient))
				}

			case pos < len(tokens) && tokens[pos].Kind == TokenNumber:
				errs = append(errs, ParseError{
					Code:     CodeMissingOperator,
					Message:  "two numbers with no operator between them",
					Severity: SeverityHigh,
					Position: tokens[pos].Start,
				})
				pos++

			default:
				coefficient, pos, errs = applyDivisor(tokens, pos, coefficient, errs)
				terms = append(terms, NewConstant(coefficient))
			}

		case TokenVariable:
			name := tok.Text
			pos++
			if multiErr := rejectAdjacentLetter(tokens, pos); multiErr != nil {
				errs = append(errs, *multiErr)
				pos++
				continue
			}
			exponent, next, expErrs := parseExponent(tokens, pos)
			errs = append(errs, expErrs...)
			pos = next
			coefficient := sign
			coefficient, pos, errs = applyDivisor(tokens, pos, coefficient, errs)
			terms = append(terms, NewVariableTerm(coefficient, name, exponent))

		case TokenLeftParen:
			inner, next, parenErrs := splitParenGroup(tokens, pos)
			errs = append(errs, parenErrs...)
			pos = next
			sub, subErrs := parseTerms(inner)
			errs = append(errs, subErrs...)
			for _, t := range sub {
				terms = append(terms, t.Scale(sign))
			}

		case TokenRightParen:
			errs = append(errs, ParseError{
				Code:     CodeMismatchedParentheses,
				Message:  "closing parenthesis with no matching opening parenthesis",
				Severity: SeverityHigh,
				Position: tok.Start,
			})
			pos++

		default:
			// Stray operator ("*" or "/" with no left operand, "^" out of
			// place). Treated as implicit zero-coefficient padding per the
			// grammar's leniency rule; skipped without an error.
			pos++
		}
	}

	return terms, errs
}

// rejectAdjacentLetter reports an invalid_variable error when a variable
// letter is immediately followed by another letter ("xy"): multi-letter
// identifiers are not variables in this grammar.
func rejectAdjacentLetter(tokens []Token, pos int) *ParseError {
	if pos < len(tokens) && tokens[pos].Kind == TokenVariable &&
		pos > 0 && tokens[pos-1].End == tokens[pos].Start {
		return &ParseError{
			Code:     CodeInvalidVariable,
			Message:  "multi-letter identifiers are not valid variables",
			Severity: SeverityHigh,
			Position: tokens[pos].Start,
		}
	}
	return nil
}

// parseExponent consumes "^ NUMBER" at pos if present. Defaults to 1.
func parseExponent(tokens []Token, pos int) (int, int, []ParseError) {
	if pos+1 < len(tokens) && tokens[pos].Kind == TokenOperator && tokens[pos].Text == "^" &&
		tokens[pos+1].Kind == TokenNumber {
		value, err := strconv.ParseFloat(tokens[pos+1].Text, 64)
		if err != nil || value != math.Trunc(value) || value < 1 {
			return 1, pos + 2, []ParseError{{
				Code:     CodeSyntaxError,
				Message:  fmt.Sprintf("exponent %q must be a positive integer", tokens[pos+1].Text),
				Severity: SeverityHigh,
				Position: tokens[pos+1].Start,
			}}
		}
		return int(value), pos + 2, nil
	}
	if pos < len(tokens) && tokens[pos].Kind == TokenOperator && tokens[pos].Text == "^" {
		return 1, pos + 1, []ParseError{{
			Code:     CodeSyntaxError,
			Message:  "exponent operator with no numeric exponent",
			Severity: SeverityHigh,
			Position: tokens[pos].Start,
		}}
	}
	return 1, pos, nil
}

// applyDivisor consumes "/ NUMBER" at pos if present and divides the
// running coefficient. Division by zero is a syntax error.
func applyDivisor(tokens []Token, pos int, coefficient float64, errs []ParseError) (float64, int, []ParseError) {
	if pos+1 < len(tokens) && tokens[pos].Kind == TokenOperator && tokens[pos].Text == "/" &&
		tokens[pos+1].Kind == TokenNumber {
		value, err := strconv.ParseFloat(tokens[pos+1].Text, 64)
		if err != nil || math.Abs(value) < Epsilon {
			errs = append(errs, ParseError{
				Code:     CodeSyntaxError,
				Message:  "division by zero",
				Severity: SeverityHigh,
				Position: tokens[pos+1].Start,
			})
			return coefficient, pos + 2, errs
		}
		return coefficient / value, pos + 2, errs
	}
	return coefficient, pos, errs
}

// splitParenGroup returns the tokens inside the group opened at openIdx
// and the position just past the matching closing parenthesis. A missing
// closer is a mismatched_parentheses error; the rest of the sublist is
// treated as the group body so extraction can continue.
func splitParenGroup(tokens []Token, openIdx int) ([]Token, int, []ParseError) {
	depth := 0
	for i := openIdx; i < len(tokens); i++ {
		switch tokens[i].Kind {
		case TokenLeftParen:
			depth++
		case TokenRightParen:
			depth--
			if depth == 0 {
				return tokens[openIdx+1 : i], i + 1, nil
			}
		}
	}
	return tokens[openIdx+1:], len(tokens), []ParseError{{
		Code:     CodeMismatchedParentheses,
		Message:  "opening parenthesis is never closed",
		Severity: SeverityHigh,
		Position: tokens[openIdx].Start,
	}}
}

// =============================================================================
// AST Assembly
// =============================================================================

func unionVariables(left, right Expression) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range append(left.Variables(), right.Variables()...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// complexityScore is a bounded heuristic: term count, plus bonuses for
// extra variables, degree above one, and large coefficients. Capped at
// maxComplexity; UI and analytics hint only.
func complexityScore(ast *EquationAST) int {
	score := len(ast.Left.Terms) + len(ast.Right.Terms)
	if len(ast.Variables) > 1 {
		score += 2
	}
	if ast.Left.Degree() > 1 || ast.Right.Degree() > 1 {
		score += 2
	}
	for _, t := range append(ast.Left.Terms, ast.Right.Terms...) {
		if math.Abs(t.Coefficient) >= 10 {
			score++
			break
		}
	}
	if score < 1 {
		score = 1
	}
	if score > maxComplexity {
		score = maxComplexity
	}
	return score
}

func buildMetadata(input string, ast *EquationAST) EquationMetadata {
	difficulty := (ast.Complexity + 1) / 2
	if difficulty < 1 {
		difficulty = 1
	}
	if difficulty > 5 {
		difficulty = 5
	}
	return EquationMetadata{
		ID:                 uuid.NewString(),
		OriginalInput:      input,
		CreatedAt:          time.Now().UTC(),
		DifficultyLevel:    difficulty,
		EstimatedSteps:     estimatedSteps(ast.Type),
		RequiredOperations: requiredOperations(ast.Type),
	}
}

func estimatedSteps(equationType EquationType) int {
	switch equationType {
	case TypeBasic:
		return 2
	case TypeStandard:
		return 4
	case TypeDistributive, TypeFractional:
		return 5
	case TypeComplex:
		return 6
	default:
		return 4
	}
}

func requiredOperations(equationType EquationType) []StepType {
	switch equationType {
	case TypeBasic:
		return []StepType{StepTransposition, StepIsolation}
	case TypeStandard:
		return []StepType{StepCombination, StepTransposition, StepIsolation}
	case TypeDistributive, TypeComplex:
		return []StepType{StepDistribution, StepCombination, StepTransposition, StepIsolation}
	case TypeFractional:
		return []StepType{StepMultiplication, StepCombination, StepTransposition, StepIsolation}
	default:
		return []StepType{StepTransposition, StepIsolation}
	}
}
