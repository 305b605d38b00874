// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command algebra is the CLI for the equation tutor: solve equations
// with worked steps from the terminal, or run the tutor HTTP service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AleutianAI/AleutianAlgebra/pkg/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "algebra",
		Short: "Step-by-step linear equation tutor",
		Long: `algebra parses single-variable linear equations, solves them, and
explains the work as ordered tutoring steps.

Run "algebra solve '2x + 3 = x + 8'" for a one-shot solution, or
"algebra serve" to start the HTTP tutor service.`,
		PersistentPreRunE: initConfig,
	}

	logger *logging.Logger
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.algebra.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("data-dir", "", "BadgerDB data directory (empty: in-memory store)")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))

	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(stepsCmd())
	rootCmd.AddCommand(serveCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()
	if logger != nil {
		_ = logger.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(_ *cobra.Command, _ []string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".algebra")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ALGEBRA")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine; flags and env cover everything.
	}

	logger = logging.New(logging.Config{
		Level:   logging.ParseLevel(viper.GetString("log_level")),
		Service: "cli",
	})
	return nil
}
