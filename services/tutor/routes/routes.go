// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianAlgebra/services/tutor/handlers"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/middleware"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/observability"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/service"
)

// Options carries the collaborators the route tree needs.
type Options struct {
	Service     *service.Service
	Metrics     *observability.TutorMetrics
	Auth        middleware.Provider
	RateLimiter *middleware.RateLimiter
}

// SetupRoutes mounts the tutor API onto the router. Auth and rate
// limiting wrap the /v1 group; health and metrics stay open.
func SetupRoutes(router *gin.Engine, opts Options) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(opts.Auth))
	if opts.RateLimiter != nil {
		v1.Use(middleware.RateLimitMiddleware(opts.RateLimiter))
	}
	{
		equations := v1.Group("/equations")
		{
			equations.POST("", handlers.CreateEquation(opts.Service, opts.Metrics))
			equations.GET("", handlers.ListEquations(opts.Service))
			equations.GET("/:id", handlers.GetEquation(opts.Service))
			equations.POST("/:id/steps/validate", handlers.ValidateStep(opts.Service, opts.Metrics))
			equations.POST("/:id/similar", handlers.GenerateSimilar(opts.Service, opts.Metrics))
		}
	}
}
