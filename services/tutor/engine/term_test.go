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

func TestTerm_Invariant(t *testing.T) {
	constant := NewConstant(3)
	assert.True(t, constant.IsConstant)
	assert.Empty(t, constant.Variable)

	variable := NewVariableTerm(2, "x", 0)
	assert.False(t, variable.IsConstant)
	assert.Equal(t, 1, variable.Exponent, "exponent below 1 normalizes to 1")
}

func TestTerm_LikeTerms(t *testing.T) {
	assert.True(t, NewConstant(1).Like(NewConstant(-5)))
	assert.True(t, NewVariableTerm(3, "x", 1).Like(NewVariableTerm(-2, "x", 1)))
	assert.False(t, NewVariableTerm(3, "x", 1).Like(NewVariableTerm(3, "y", 1)))
	assert.False(t, NewVariableTerm(3, "x", 1).Like(NewVariableTerm(3, "x", 2)))
	assert.False(t, NewConstant(3).Like(NewVariableTerm(3, "x", 1)))
}

func TestTerm_String(t *testing.T) {
	cases := []struct {
		term Term
		want string
	}{
		{NewConstant(3), "3"},
		{NewConstant(-2.5), "-2.5"},
		{NewVariableTerm(1, "x", 1), "x"},
		{NewVariableTerm(-1, "x", 1), "-x"},
		{NewVariableTerm(2, "x", 1), "2x"},
		{NewVariableTerm(4, "x", 2), "4x^2"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.term.String())
	}
}

func TestExpression_CombineCollectsLikeTerms(t *testing.T) {
	e := NewExpression(
		NewVariableTerm(3, "x", 1),
		NewConstant(-1),
		NewVariableTerm(2, "x", 1),
	)
	combined := e.Combine()
	require.Len(t, combined.Terms, 2)
	assert.True(t, combined.Simplified)
	assert.InDelta(t, 5, combined.Terms[0].Coefficient, Epsilon)
	assert.Equal(t, "x", combined.Terms[0].Variable)
	assert.InDelta(t, -1, combined.Terms[1].Coefficient, Epsilon)
}

func TestExpression_CombineIsCommutative(t *testing.T) {
	a := NewExpression(NewVariableTerm(3, "x", 1), NewConstant(-1), NewVariableTerm(2, "x", 1)).Combine()
	b := NewExpression(NewVariableTerm(2, "x", 1), NewVariableTerm(3, "x", 1), NewConstant(-1)).Combine()

	require.Len(t, a.Terms, 2)
	require.Len(t, b.Terms, 2)
	sum := func(e Expression, key string) float64 {
		total := 0.0
		for _, term := range e.Terms {
			if term.Key() == key {
				total += term.Coefficient
			}
		}
		return total
	}
	assert.InDelta(t, sum(a, "x^1"), sum(b, "x^1"), Epsilon)
	assert.InDelta(t, sum(a, "const"), sum(b, "const"), Epsilon)
}

func TestExpression_CombineIsIdempotent(t *testing.T) {
	e := NewExpression(
		NewVariableTerm(2, "x", 1),
		NewVariableTerm(1, "x", 1),
		NewConstant(4),
	)
	once := e.Combine()
	twice := once.Combine()
	require.Len(t, twice.Terms, len(once.Terms))
	for i := range once.Terms {
		assert.Equal(t, once.Terms[i].Key(), twice.Terms[i].Key())
		assert.InDelta(t, once.Terms[i].Coefficient, twice.Terms[i].Coefficient, Epsilon)
	}
}

func TestExpression_CombineDropsNearZero(t *testing.T) {
	e := NewExpression(
		NewVariableTerm(2, "x", 1),
		NewVariableTerm(-2, "x", 1),
		NewConstant(7),
	)
	combined := e.Combine()
	require.Len(t, combined.Terms, 1)
	assert.True(t, combined.Terms[0].IsConstant)
}

func TestExpression_Operations(t *testing.T) {
	e := NewExpression(NewVariableTerm(2, "x", 1), NewConstant(3))

	t.Run("negate", func(t *testing.T) {
		n := e.Negate()
		assert.InDelta(t, -2, n.Terms[0].Coefficient, Epsilon)
		assert.InDelta(t, -3, n.Terms[1].Coefficient, Epsilon)
	})

	t.Run("scale", func(t *testing.T) {
		s := e.Scale(2)
		assert.InDelta(t, 4, s.Terms[0].Coefficient, Epsilon)
		assert.InDelta(t, 6, s.Terms[1].Coefficient, Epsilon)
	})

	t.Run("subtract", func(t *testing.T) {
		d := e.Subtract(NewExpression(NewVariableTerm(1, "x", 1))).Combine()
		require.Len(t, d.Terms, 2)
		assert.InDelta(t, 1, d.Terms[0].Coefficient, Epsilon)
	})

	t.Run("evaluate", func(t *testing.T) {
		assert.InDelta(t, 13, e.EvaluateAt(map[string]float64{"x": 5}), Epsilon)
		assert.InDelta(t, 3, e.EvaluateAt(nil), Epsilon)
	})
}

func TestExpression_Differentiate(t *testing.T) {
	e := NewExpression(
		NewVariableTerm(3, "x", 2),
		NewVariableTerm(2, "x", 1),
		NewConstant(7),
	)
	d := e.Differentiate("x")
	require.Len(t, d.Terms, 2)
	assert.InDelta(t, 6, d.Terms[0].Coefficient, Epsilon)
	assert.Equal(t, 1, d.Terms[0].Exponent)
	assert.InDelta(t, 2, d.Terms[1].Coefficient, Epsilon)
	assert.True(t, d.Terms[1].IsConstant)

	assert.Empty(t, e.Differentiate("y").Terms)
}

func TestExpression_String(t *testing.T) {
	e := NewExpression(NewVariableTerm(2, "x", 1), NewConstant(-3))
	assert.Equal(t, "2x - 3", e.String())
	assert.Equal(t, "0", Expression{}.String())
}
