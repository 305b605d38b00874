// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides request and response structures for the
// tutor service HTTP API.
//
// This file contains the equation lifecycle types: create, read, step
// validation, and similar-equation generation. All request types carry
// go-playground/validator tags plus a Validate method that applies them
// together with the custom equation-input validator.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/AleutianAlgebra/pkg/validation"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/engine"
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// equationValidate is the validator instance for tutor datatypes.
// Initialized in init() with custom validators.
var equationValidate *validator.Validate

func init() {
	equationValidate = validator.New()

	// Register custom validator for raw equation input (charset + size).
	_ = equationValidate.RegisterValidation("equationinput", validateEquationInput)
}

// validateEquationInput validates that a string field is an acceptable
// raw equation: non-empty, bounded size, tokenizer charset only. The
// detailed character-position diagnostics come later from the parser;
// this gate only keeps oversized or binary payloads out.
func validateEquationInput(fl validator.FieldLevel) bool {
	return validation.ValidateEquationInput(fl.Field().String()) == nil
}

// =============================================================================
// Create Equation
// =============================================================================

// CreateEquationRequest is the body of POST /v1/equations.
//
// # Fields
//
//   - Equation: Required. The raw single-variable linear equation, e.g.
//     "2x + 3 = x + 8". At most validation.MaxEquationLength bytes and
//     restricted to the tokenizer's character set.
//
// # Validation
//
// Uses go-playground/validator:
//   - Equation: required, custom equationinput validator
type CreateEquationRequest struct {
	Equation string `json:"equation" validate:"required,equationinput"`
}

// Validate validates the CreateEquationRequest fields. Call after
// binding the JSON body.
func (r *CreateEquationRequest) Validate() error {
	return equationValidate.Struct(r)
}

// SolutionPayload is the wire rendering of an engine Solution.
type SolutionPayload struct {
	Variable          string                    `json:"variable"`
	Value             float64                   `json:"value"`
	SolutionMethod    string                    `json:"solution_method"`
	Confidence        float64                   `json:"confidence"`
	VerificationSteps []engine.VerificationStep `json:"verification_steps"`
}

// EquationResponse is the full rendering of a stored equation record.
// Returned by POST /v1/equations (201) and GET /v1/equations/:id (200).
//
// Solution is nil when the equation parsed but could not be solved
// (no solution, infinitely many, or an unsupported shape); in that case
// SolveError carries the reason.
type EquationResponse struct {
	ID             string                `json:"id"`
	Equation       string                `json:"equation"`
	EquationType   string                `json:"equation_type"`
	Variables      []string              `json:"variables"`
	Complexity     int                   `json:"complexity"`
	EstimatedSteps int                   `json:"estimated_steps"`
	Solution       *SolutionPayload      `json:"solution,omitempty"`
	SolveError     string                `json:"solve_error,omitempty"`
	Steps          []engine.Step         `json:"steps"`
	IsOptimal      bool                  `json:"is_optimal"`
	EstimatedTime  float64               `json:"estimated_time_seconds"`
	Warnings       []engine.ParseWarning `json:"warnings,omitempty"`
	CacheHit       bool                  `json:"cache_hit"`
	CreatedAt      time.Time             `json:"created_at"`
}

// ParseFailureResponse is the 422 body when an equation cannot be
// parsed. Errors carry positions and machine-readable codes so a client
// can highlight the offending characters.
type ParseFailureResponse struct {
	Error    string                `json:"error"`
	Errors   []engine.ParseError   `json:"errors"`
	Warnings []engine.ParseWarning `json:"warnings,omitempty"`
}

// ErrorResponse is the generic error body for non-parse failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// =============================================================================
// Step Validation
// =============================================================================

// ValidateStepRequest is the body of POST /v1/equations/:id/steps/validate.
//
// From and To are full equation states written as equation text (for
// example "2x + 3 = x + 8"); the server parses them into structured
// states before validation. StepType names the transformation the
// student believes they applied.
//
// # Validation
//
//   - StepIndex: >= 0
//   - StepType: required, one of the engine step types
//   - From, To: required, custom equationinput validator
type ValidateStepRequest struct {
	StepIndex int    `json:"step_index" validate:"gte=0"`
	StepType  string `json:"step_type" validate:"required,oneof=transposition combination distribution isolation multiplication division addition subtraction"`
	From      string `json:"from_expression" validate:"required,equationinput"`
	To        string `json:"to_expression" validate:"required,equationinput"`
}

// Validate validates the ValidateStepRequest fields.
func (r *ValidateStepRequest) Validate() error {
	return equationValidate.Struct(r)
}

// ValidateStepResponse is the outcome of a step validation.
type ValidateStepResponse struct {
	IsCorrect   bool                     `json:"is_correct"`
	Errors      []engine.ValidationIssue `json:"errors,omitempty"`
	Warnings    []engine.ValidationIssue `json:"warnings,omitempty"`
	Suggestions []string                 `json:"suggestions,omitempty"`
	NextHint    string                   `json:"next_hint,omitempty"`
	Progress    float64                  `json:"progress"`
}

// =============================================================================
// Similar Equation Generation
// =============================================================================

// GenerateSimilarRequest is the body of POST /v1/equations/:id/similar.
type GenerateSimilarRequest struct {
	Difficulty string `json:"difficulty" validate:"required,oneof=easier same harder"`
}

// Validate validates the GenerateSimilarRequest fields.
func (r *GenerateSimilarRequest) Validate() error {
	return equationValidate.Struct(r)
}

// GenerateSimilarResponse wraps the generated equation's full record.
type GenerateSimilarResponse struct {
	SourceID   string           `json:"source_id"`
	Difficulty string           `json:"difficulty"`
	Equation   EquationResponse `json:"equation"`
}

// =============================================================================
// Listing
// =============================================================================

// EquationSummary is the compact listing entry for GET /v1/equations.
type EquationSummary struct {
	ID           string    `json:"id"`
	Equation     string    `json:"equation"`
	EquationType string    `json:"equation_type"`
	Solved       bool      `json:"solved"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListEquationsResponse is the body of GET /v1/equations.
type ListEquationsResponse struct {
	Equations []EquationSummary `json:"equations"`
	Count     int               `json:"count"`
}
