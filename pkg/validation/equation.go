// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs before they reach
// the equation engine or persistence layer. Using these validators bounds
// request sizes and rejects characters the tokenizer would never accept,
// keeping obviously hostile payloads out of the pipeline.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// MaxEquationLength is the maximum accepted length, in bytes, of a raw
// equation string. Single-variable linear equations are short; anything
// near this limit is noise or abuse.
const MaxEquationLength = 512

// equationPattern matches the full character set the tokenizer accepts:
// digits, letters, the arithmetic operators, parentheses, decimal
// points, the equals sign, and whitespace.
var equationPattern = regexp.MustCompile(`^[0-9a-zA-Z+\-*/^=().\s]+$`)

// ValidateEquationInput checks a raw equation string before parsing.
//
// Valid inputs:
//   - non-empty after trimming whitespace
//   - at most MaxEquationLength bytes
//   - only characters from the tokenizer's alphabet
//
// The tokenizer performs its own character-level diagnostics with
// positions; this validator exists to reject oversized or binary
// payloads at the HTTP boundary before any engine work happens.
//
// Example:
//
//	if err := validation.ValidateEquationInput(req.Equation); err != nil {
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	    return
//	}
func ValidateEquationInput(input string) error {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fmt.Errorf("equation cannot be empty")
	}

	if len(input) > MaxEquationLength {
		return fmt.Errorf("equation exceeds maximum length of %d bytes", MaxEquationLength)
	}

	if !equationPattern.MatchString(trimmed) {
		return fmt.Errorf("equation contains unsupported characters (allowed: digits, letters, + - * / ^ = ( ) .)")
	}

	return nil
}

// SanitizeEquationInput normalizes and validates a raw equation string.
// Returns the trimmed input if valid, or an error if invalid.
//
// Use this at handler boundaries where both validation and trimming are
// wanted:
//
//	safe, err := validation.SanitizeEquationInput(userInput)
//	if err != nil {
//	    return err
//	}
func SanitizeEquationInput(input string) (string, error) {
	normalized := strings.TrimSpace(input)
	if err := ValidateEquationInput(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
