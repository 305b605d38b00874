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

import "fmt"

// Tokenize converts an equation string into a flat token sequence.
//
// # Description
//
// Single left-to-right scan over the input bytes. Whitespace is skipped.
// A digit starts a maximal number run (at most one decimal point). A
// letter becomes a single-letter VARIABLE token; multi-letter identifiers
// are not part of this grammar and are reported via invalid_variable by
// the parser. The characters + - * / ^ = ( ) map to their token kinds.
//
// Tokenize never returns a Go error and never aborts: an unrecognized
// character produces an invalid_character ParseError and the scan
// continues with the next byte.
//
// # Outputs
//
//   - []Token: tokens in input order
//   - []ParseError: one entry per unrecognized character, possibly empty
//
// # Thread Safety
//
// Pure function, safe for concurrent use.
func Tokenize(input string) ([]Token, []ParseError) {
	var (
		tokens []Token
		errs   []ParseError
	)

	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c >= '0' && c <= '9':
			start := i
			sawDot := false
			for i < len(input) {
				b := input[i]
				if b >= '0' && b <= '9' {
					i++
					continue
				}
				if b == '.' && !sawDot {
					sawDot = true
					i++
					continue
				}
				break
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Text: input[start:i], Start: start, End: i})

		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			tokens = append(tokens, Token{Kind: TokenVariable, Text: string(c), Start: i, End: i + 1})
			i++

		case c == '+' || c == '-' || c == '*' || c == '/' || c == '^':
			tokens = append(tokens, Token{Kind: TokenOperator, Text: string(c), Start: i, End: i + 1})
			i++

		case c == '=':
			tokens = append(tokens, Token{Kind: TokenEquals, Text: "=", Start: i, End: i + 1})
			i++

		case c == '(':
			tokens = append(tokens, Token{Kind: TokenLeftParen, Text: "(", Start: i, End: i + 1})
			i++

		case c == ')':
			tokens = append(tokens, Token{Kind: TokenRightParen, Text: ")", Start: i, End: i + 1})
			i++

		default:
			errs = append(errs, ParseError{
				Code:     CodeInvalidCharacter,
				Message:  fmt.Sprintf("unrecognized character %q", string(c)),
				Severity: SeverityHigh,
				Position: i,
			})
			i++
		}
	}

	return tokens, errs
}
