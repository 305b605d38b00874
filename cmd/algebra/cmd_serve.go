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
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AleutianAI/AleutianAlgebra/services/tutor/analytics"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/cache"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/middleware"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/observability"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/routes"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/service"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/store"
)

// serveCmd builds the "algebra serve" command: the tutor HTTP service
// in-process, with the store backend chosen by configuration.
func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the tutor HTTP service",
		Long: `Starts the equation tutor API. With --data-dir (or ALGEBRA_DATA_DIR)
records persist in BadgerDB; without it they live in memory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			port := viper.GetString("port")
			if port == "" {
				port = "12220"
			}

			var equationStore store.Store
			dataDir := viper.GetString("data_dir")
			if dataDir == "" {
				logger.Info("no data dir configured, using in-memory store")
				equationStore = store.NewMemoryStore()
			} else {
				cfg := store.DefaultBadgerConfig(dataDir)
				cfg.Logger = logger.Slog()
				logger.Info("opening BadgerDB store", "path", dataDir)
				badgerStore, err := store.OpenBadger(cfg)
				if err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				equationStore = badgerStore
			}
			defer func() {
				if err := equationStore.Close(); err != nil {
					logger.Error("failed to close store", "error", err)
				}
			}()

			svc, err := service.New(service.Config{
				Store:    equationStore,
				Cache:    cache.NewMemoryCache(cache.DefaultTTL, cache.DefaultTTL),
				Recorder: analytics.NewLogRecorder(logger.Slog()),
				Logger:   logger.Slog(),
			})
			if err != nil {
				return fmt.Errorf("build service: %w", err)
			}
			defer svc.Drain()

			router := gin.Default()
			routes.SetupRoutes(router, routes.Options{
				Service:     svc,
				Metrics:     observability.InitMetrics(),
				Auth:        &middleware.LocalProvider{},
				RateLimiter: middleware.NewRateLimiter(0, 0),
			})

			logger.Info("starting tutor server", "port", port)
			return router.Run(":" + port)
		},
	}

	cmd.Flags().String("port", "12220", "listen port")
	_ = viper.BindPFlag("port", cmd.Flags().Lookup("port"))
	return cmd
}
