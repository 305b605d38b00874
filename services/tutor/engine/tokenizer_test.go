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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_BasicEquation(t *testing.T) {
	tokens, errs := Tokenize("2x + 3 = x + 8")
	require.Empty(t, errs)
	require.Len(t, tokens, 8)

	wantKinds := []TokenKind{
		TokenNumber, TokenVariable, TokenOperator, TokenNumber,
		TokenEquals, TokenVariable, TokenOperator, TokenNumber,
	}
	wantText := []string{"2", "x", "+", "3", "=", "x", "+", "8"}
	for i, tok := range tokens {
		assert.Equal(t, wantKinds[i], tok.Kind, "token %d kind", i)
		assert.Equal(t, wantText[i], tok.Text, "token %d text", i)
	}
}

func TestTokenize_Spans(t *testing.T) {
	tokens, errs := Tokenize("  10x")
	require.Empty(t, errs)
	require.Len(t, tokens, 2)
	assert.Equal(t, 2, tokens[0].Start)
	assert.Equal(t, 4, tokens[0].End)
	assert.Equal(t, "10", tokens[0].Text)
	assert.Equal(t, 4, tokens[1].Start)
	assert.Equal(t, 5, tokens[1].End)
}

func TestTokenize_Decimals(t *testing.T) {
	tokens, errs := Tokenize("2.5x = 1.25")
	require.Empty(t, errs)
	require.Len(t, tokens, 4)
	assert.Equal(t, "2.5", tokens[0].Text)
	assert.Equal(t, "1.25", tokens[3].Text)
}

func TestTokenize_SecondDecimalPointEndsNumber(t *testing.T) {
	tokens, errs := Tokenize("1.2.3")
	// the number run stops at the second dot; the stray dot is reported
	require.Len(t, errs, 1)
	assert.Equal(t, CodeInvalidCharacter, errs[0].Code)
	require.Len(t, tokens, 2)
	assert.Equal(t, "1.2", tokens[0].Text)
	assert.Equal(t, "3", tokens[1].Text)
}

func TestTokenize_InvalidCharacterContinuesScan(t *testing.T) {
	tokens, errs := Tokenize("2x $ + 3")
	require.Len(t, errs, 1)
	assert.Equal(t, CodeInvalidCharacter, errs[0].Code)
	assert.Equal(t, 3, errs[0].Position)
	// scan continued past the bad character
	require.Len(t, tokens, 4)
	assert.Equal(t, "3", tokens[3].Text)
}

func TestTokenize_AllOperators(t *testing.T) {
	tokens, errs := Tokenize("+-*/^=()")
	require.Empty(t, errs)
	require.Len(t, tokens, 8)
	assert.Equal(t, TokenEquals, tokens[5].Kind)
	assert.Equal(t, TokenLeftParen, tokens[6].Kind)
	assert.Equal(t, TokenRightParen, tokens[7].Kind)
}

func TestTokenize_Empty(t *testing.T) {
	tokens, errs := Tokenize("")
	assert.Empty(t, tokens)
	assert.Empty(t, errs)
}
