// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianAlgebra/services/tutor/engine"
)

func runCommand(t *testing.T, cmdArgs ...string) (string, error) {
	t.Helper()
	cmd := solveCmd()
	if cmdArgs[0] == "steps" {
		cmd = stepsCmd()
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(cmdArgs[1:])
	err := cmd.Execute()
	return out.String(), err
}

func TestSolveCommand(t *testing.T) {
	t.Run("solves and prints steps", func(t *testing.T) {
		out, err := runCommand(t, "solve", "2x + 3 = x + 8")
		require.NoError(t, err)

		assert.Contains(t, out, "x = 5")
		assert.Contains(t, out, "standard")
		assert.Contains(t, out, "Steps:")
	})

	t.Run("json output decodes to a solution", func(t *testing.T) {
		out, err := runCommand(t, "solve", "2x = 10", "--json")
		require.NoError(t, err)

		var solution engine.Solution
		require.NoError(t, json.Unmarshal([]byte(out), &solution))
		assert.InDelta(t, 5.0, solution.Value, 1e-9)
		assert.Equal(t, "x", solution.Variable)
	})

	t.Run("verification output", func(t *testing.T) {
		out, err := runCommand(t, "solve", "x + 5 = 10", "--verify")
		require.NoError(t, err)
		assert.Contains(t, out, "Verification:")
		assert.Contains(t, out, "(ok)")
	})

	t.Run("unparseable equation fails", func(t *testing.T) {
		_, err := runCommand(t, "solve", "2x + 3")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "could not parse")
	})

	t.Run("no-solution equation fails", func(t *testing.T) {
		_, err := runCommand(t, "solve", "x + 1 = x + 2")
		require.Error(t, err)
	})

	t.Run("rejects forbidden characters", func(t *testing.T) {
		_, err := runCommand(t, "solve", "x = $(whoami)")
		require.Error(t, err)
	})
}

func TestStepsCommand(t *testing.T) {
	t.Run("prints the plan", func(t *testing.T) {
		out, err := runCommand(t, "steps", "2x + 3 = x + 8")
		require.NoError(t, err)

		assert.Contains(t, out, "Estimated time:")
		assert.Contains(t, out, "1. [")
	})

	t.Run("hints are opt-in", func(t *testing.T) {
		plain, err := runCommand(t, "steps", "2x + 3 = x + 8")
		require.NoError(t, err)
		assert.False(t, strings.Contains(plain, "hint:"))

		hinted, err := runCommand(t, "steps", "2x + 3 = x + 8", "--hints")
		require.NoError(t, err)
		assert.Contains(t, hinted, "hint:")
	})
}
