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

// TokenKind classifies a lexical token in an equation string.
type TokenKind int

const (
	TokenNumber TokenKind = iota
	TokenVariable
	TokenOperator
	TokenEquals
	TokenLeftParen
	TokenRightParen
)

// String returns the human-readable name of the kind.
func (k TokenKind) String() string {
	switch k {
	case TokenNumber:
		return "NUMBER"
	case TokenVariable:
		return "VARIABLE"
	case TokenOperator:
		return "OPERATOR"
	case TokenEquals:
		return "EQUALS"
	case TokenLeftParen:
		return "LPAREN"
	case TokenRightParen:
		return "RPAREN"
	default:
		return "UNKNOWN"
	}
}

// Token is a single lexical unit produced by Tokenize.
//
// Tokens are immutable value types. Start and End are byte offsets into
// the original input (End is exclusive), kept so parse errors can point
// back at the source text.
type Token struct {
	Kind  TokenKind `json:"kind"`
	Text  string    `json:"text"`
	Start int       `json:"start"`
	End   int       `json:"end"`
}
