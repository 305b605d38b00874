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
	"errors"
	"fmt"
)

// =============================================================================
// Parse Errors
// =============================================================================

// Severity classifies how disruptive a parse problem is.
//
// Low-severity problems are advisory; high and critical severities prevent
// an AST from being produced.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// ParseErrorCode identifies the category of a parse failure.
type ParseErrorCode string

const (
	CodeSyntaxError           ParseErrorCode = "syntax_error"
	CodeInvalidCharacter      ParseErrorCode = "invalid_character"
	CodeMissingOperator       ParseErrorCode = "missing_operator"
	CodeMismatchedParentheses ParseErrorCode = "mismatched_parentheses"
	CodeEmptyExpression       ParseErrorCode = "empty_expression"
	CodeInvalidVariable       ParseErrorCode = "invalid_variable"
)

// ParseError is a structured, collectable parse failure.
//
// The tokenizer and parser never panic and never abort on the first
// problem: every ParseError encountered during a pass is collected and
// returned on the ParseResult. Position is a byte offset into the
// original input, or -1 when the error is not tied to a location.
type ParseError struct {
	Code     ParseErrorCode `json:"code"`
	Message  string         `json:"message"`
	Severity Severity       `json:"severity"`
	Position int            `json:"position"`
}

func (e ParseError) Error() string {
	if e.Position >= 0 {
		return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// ParseWarning is an informational annotation on a successful parse.
// Warnings never block success.
type ParseWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// Solve Errors
// =============================================================================

// Solver sentinels. These are returned (wrapped) by Solve and converted
// into user-facing messages by the service layer.
var (
	// ErrNoSolution indicates the variable terms cancel and the remaining
	// constants disagree (e.g. "x + 1 = x + 2").
	ErrNoSolution = errors.New("equation has no solution")

	// ErrInfiniteSolutions indicates both the variable terms and the
	// constants cancel (e.g. "2x = 2x").
	ErrInfiniteSolutions = errors.New("equation has infinitely many solutions")

	// ErrNoVariable indicates the equation contains no variable to solve for.
	ErrNoVariable = errors.New("equation contains no variable to solve for")

	// ErrUnsupportedShape indicates the equation is not a single-variable
	// linear equation (multiple variables, or a degree above one).
	ErrUnsupportedShape = errors.New("unsupported equation shape")
)

// =============================================================================
// Validation Issues
// =============================================================================

// Validation issue codes used by the step validator.
const (
	IssueStepTypeMismatch        = "step-type-mismatch"
	IssueNonEquivalentExpression = "non-equivalent-expression"
	IssueStepSuboptimal          = "step-suboptimal"
)

// ValidationIssue is a single problem or annotation found while checking
// a student-submitted step.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
