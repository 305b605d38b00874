// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers provides the Gin handlers for the tutor service.
//
// Status codes: 400 for request validation failures, 422 for equations
// that cannot be parsed (structured error list in the body) or cannot
// be handled by the linear solver, 409 for equations with no solution
// or infinitely many, 403/404 for ownership and existence, 500 for
// collaborator failures.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianAlgebra/services/tutor/datatypes"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/engine"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/middleware"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/observability"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/service"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/store"
)

// requesterID resolves the caller identity set by the auth middleware.
// Handlers are always mounted behind it; the fallback only matters in
// stripped-down tests.
func requesterID(c *gin.Context) string {
	if info := middleware.GetAuthInfo(c); info != nil {
		return info.UserID
	}
	return "local-user"
}

// equationResponse renders a stored record for the wire.
func equationResponse(record *store.Record, warnings []engine.ParseWarning, cacheHit bool) datatypes.EquationResponse {
	resp := datatypes.EquationResponse{
		ID:             record.ID,
		Equation:       record.OriginalInput,
		EquationType:   string(record.AST.Type),
		Variables:      record.AST.Variables,
		Complexity:     record.AST.Complexity,
		EstimatedSteps: record.AST.Metadata.EstimatedSteps,
		SolveError:     record.SolveError,
		Steps:          record.Steps,
		IsOptimal:      record.IsOptimal,
		EstimatedTime:  record.EstimatedTime,
		Warnings:       warnings,
		CacheHit:       cacheHit,
		CreatedAt:      record.CreatedAt,
	}
	if record.Solution != nil {
		resp.Solution = &datatypes.SolutionPayload{
			Variable:          record.Solution.Variable,
			Value:             record.Solution.Value,
			SolutionMethod:    record.Solution.SolutionMethod,
			Confidence:        record.Solution.Confidence,
			VerificationSteps: record.Solution.VerificationSteps,
		}
	}
	return resp
}

// CreateEquation handles POST /v1/equations.
func CreateEquation(svc *service.Service, metrics *observability.TutorMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.CreateEquationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		owner := requesterID(c)
		started := time.Now()
		result, err := svc.Create(c.Request.Context(), owner, req.Equation)
		elapsed := time.Since(started).Seconds()
		if err != nil {
			metrics.RecordPipelineDuration(createEquationType(result, err), elapsed)
			respondCreateError(c, metrics, result, err)
			return
		}

		metrics.RecordPipelineDuration(string(result.Record.AST.Type), elapsed)
		metrics.RecordEquation(string(result.Record.AST.Type), "solved")
		metrics.RecordCacheLookup(result.CacheHit)
		c.JSON(http.StatusCreated, equationResponse(result.Record, result.Parse.Warnings, result.CacheHit))
	}
}

// createEquationType resolves the latency label for a failed create.
// Parse failures have no record, so the type is unknown.
func createEquationType(result *service.CreateResult, err error) string {
	if errors.Is(err, service.ErrParseFailed) || result == nil || result.Record == nil {
		return "unknown"
	}
	return string(result.Record.AST.Type)
}

// respondCreateError maps pipeline failures onto status codes. Parse
// failures carry the full structured error list; no-solution and
// infinite-solutions equations still return the stored record so the
// client can show the parsed structure alongside the failure.
func respondCreateError(c *gin.Context, metrics *observability.TutorMetrics, result *service.CreateResult, err error) {
	switch {
	case errors.Is(err, service.ErrParseFailed):
		metrics.RecordEquation("unknown", "parse_error")
		for _, parseErr := range result.Parse.Errors {
			metrics.RecordParseError(string(parseErr.Code))
		}
		c.JSON(http.StatusUnprocessableEntity, datatypes.ParseFailureResponse{
			Error:    "equation could not be parsed",
			Errors:   result.Parse.Errors,
			Warnings: result.Parse.Warnings,
		})
	case errors.Is(err, engine.ErrNoSolution), errors.Is(err, engine.ErrInfiniteSolutions):
		metrics.RecordEquation(string(result.Record.AST.Type), "solve_error")
		c.JSON(http.StatusConflict, equationResponse(result.Record, result.Parse.Warnings, false))
	case errors.Is(err, engine.ErrNoVariable), errors.Is(err, engine.ErrUnsupportedShape):
		metrics.RecordEquation(string(result.Record.AST.Type), "solve_error")
		c.JSON(http.StatusUnprocessableEntity, datatypes.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("equation pipeline failed", "error", err)
		c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: "internal error"})
	}
}

// GetEquation handles GET /v1/equations/:id.
func GetEquation(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		record, err := svc.Get(c.Request.Context(), id, requesterID(c))
		if err != nil {
			respondAccessError(c, err)
			return
		}
		c.JSON(http.StatusOK, equationResponse(record, record.Warnings, false))
	}
}

// ListEquations handles GET /v1/equations.
func ListEquations(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := svc.List(c.Request.Context(), requesterID(c))
		if err != nil {
			slog.Error("failed to list equations", "error", err)
			c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: "internal error"})
			return
		}

		resp := datatypes.ListEquationsResponse{
			Equations: make([]datatypes.EquationSummary, 0, len(records)),
		}
		for _, record := range records {
			resp.Equations = append(resp.Equations, datatypes.EquationSummary{
				ID:           record.ID,
				Equation:     record.OriginalInput,
				EquationType: string(record.AST.Type),
				Solved:       record.Solution != nil,
				CreatedAt:    record.CreatedAt,
			})
		}
		resp.Count = len(resp.Equations)
		c.JSON(http.StatusOK, resp)
	}
}

// ValidateStep handles POST /v1/equations/:id/steps/validate.
//
// The request carries the attempted step's before and after states as
// equation text; both are parsed into structured states before the
// engine validates the transformation.
func ValidateStep(svc *service.Service, metrics *observability.TutorMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ValidateStepRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		from, ok := parseState(c, "from_expression", req.From)
		if !ok {
			return
		}
		to, ok := parseState(c, "to_expression", req.To)
		if !ok {
			return
		}

		attempted := engine.Step{
			Type: engine.StepType(req.StepType),
			From: from,
			To:   to,
		}

		check, err := svc.ValidateStudentStep(c.Request.Context(), c.Param("id"), requesterID(c), attempted, req.StepIndex)
		if err != nil {
			respondAccessError(c, err)
			return
		}

		metrics.RecordStepValidation(check.IsCorrect)
		c.JSON(http.StatusOK, datatypes.ValidateStepResponse{
			IsCorrect:   check.IsCorrect,
			Errors:      check.Result.Errors,
			Warnings:    check.Result.Warnings,
			Suggestions: check.Result.Suggestions,
			NextHint:    check.NextHint,
			Progress:    check.Progress,
		})
	}
}

// parseState parses one equation-state field; on failure it writes the
// 422 response and reports false.
func parseState(c *gin.Context, field, text string) (engine.EquationState, bool) {
	parsed := engine.ParseEquation(text)
	if parsed.AST == nil {
		c.JSON(http.StatusUnprocessableEntity, datatypes.ParseFailureResponse{
			Error:  "could not parse " + field,
			Errors: parsed.Errors,
		})
		return engine.EquationState{}, false
	}
	return engine.EquationState{Left: parsed.AST.Left, Right: parsed.AST.Right}, true
}

// GenerateSimilar handles POST /v1/equations/:id/similar.
func GenerateSimilar(svc *service.Service, metrics *observability.TutorMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.GenerateSimilarRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		sourceID := c.Param("id")
		similar, err := svc.GenerateSimilar(c.Request.Context(), sourceID, requesterID(c), req.Difficulty)
		if err != nil {
			if errors.Is(err, service.ErrUnknownDifficulty) {
				c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
				return
			}
			respondAccessError(c, err)
			return
		}

		metrics.RecordEquation(string(similar.Created.Record.AST.Type), "solved")
		c.JSON(http.StatusCreated, datatypes.GenerateSimilarResponse{
			SourceID:   sourceID,
			Difficulty: similar.Difficulty,
			Equation:   equationResponse(similar.Created.Record, similar.Created.Parse.Warnings, similar.Created.CacheHit),
		})
	}
}

// respondAccessError maps ownership and existence failures; anything
// else is a 500.
func respondAccessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, datatypes.ErrorResponse{Error: "equation not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, datatypes.ErrorResponse{Error: "access denied"})
	default:
		slog.Error("equation access failed", "error", err)
		c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: "internal error"})
	}
}
