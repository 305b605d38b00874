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
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianAlgebra/pkg/validation"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/engine"
)

// solveCmd builds the "algebra solve" command: one-shot parse, solve,
// and explain straight to the terminal.
func solveCmd() *cobra.Command {
	var asJSON bool
	var showVerification bool

	cmd := &cobra.Command{
		Use:   "solve <equation>",
		Short: "Solve a linear equation and show the work",
		Example: `  algebra solve "2x + 3 = x + 8"
  algebra solve "2(x + 3) = 10" --verify
  algebra solve "0.5x + 1 = 2" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := validation.SanitizeEquationInput(strings.Join(args, " "))
			if err != nil {
				return err
			}

			parsed := engine.ParseEquation(input)
			if parsed.AST == nil {
				printParseErrors(parsed.Errors)
				return fmt.Errorf("could not parse %q", input)
			}

			sequence := engine.GenerateSteps(parsed.AST)
			solution, solveErr := engine.Solve(parsed.AST)
			if solveErr != nil {
				return fmt.Errorf("cannot solve %q: %w", input, solveErr)
			}
			solution.Steps = sequence.Steps

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(solution)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Equation:   %s\n", input)
			fmt.Fprintf(out, "Type:       %s\n", parsed.AST.Type)
			fmt.Fprintf(out, "Solution:   %s = %g\n", solution.Variable, solution.Value)
			fmt.Fprintf(out, "Confidence: %.2f\n", solution.Confidence)

			fmt.Fprintln(out, "\nSteps:")
			for i, step := range sequence.Steps {
				fmt.Fprintf(out, "  %d. [%s] %s -> %s\n", i+1, step.Type, step.From.String(), step.To.String())
				fmt.Fprintf(out, "     %s\n", step.Justification)
			}

			if showVerification {
				fmt.Fprintln(out, "\nVerification:")
				for _, v := range solution.VerificationSteps {
					status := "ok"
					if !v.IsValid {
						status = "FAILED"
					}
					fmt.Fprintf(out, "  %s: left=%g right=%g (%s)\n",
						v.Substitution, v.LeftSideResult, v.RightSideResult, status)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the solution as JSON")
	cmd.Flags().BoolVar(&showVerification, "verify", false, "print substitution checks")
	return cmd
}

// stepsCmd builds the "algebra steps" command: show the tutoring plan
// with hints, without the final answer spoiled up front.
func stepsCmd() *cobra.Command {
	var withHints bool

	cmd := &cobra.Command{
		Use:   "steps <equation>",
		Short: "Show the tutoring step plan for an equation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := validation.SanitizeEquationInput(strings.Join(args, " "))
			if err != nil {
				return err
			}

			parsed := engine.ParseEquation(input)
			if parsed.AST == nil {
				printParseErrors(parsed.Errors)
				return fmt.Errorf("could not parse %q", input)
			}

			sequence := engine.GenerateSteps(parsed.AST)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Equation: %s (%s)\n", input, parsed.AST.Type)
			fmt.Fprintf(out, "Estimated time: %.0f seconds\n\n", sequence.EstimatedTime)
			for i, step := range sequence.Steps {
				fmt.Fprintf(out, "%d. [%s] %s\n", i+1, step.Type, step.Description)
				if withHints {
					for _, hint := range step.Hints {
						fmt.Fprintf(out, "   hint: %s\n", hint)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&withHints, "hints", false, "include hints for each step")
	return cmd
}

func printParseErrors(errs []engine.ParseError) {
	for _, parseErr := range errs {
		fmt.Fprintf(os.Stderr, "parse error at %d: %s (%s)\n",
			parseErr.Position, parseErr.Message, parseErr.Code)
	}
}
