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
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/AleutianAlgebra/services/tutor/analytics"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/cache"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/middleware"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/observability"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/routes"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/service"
	"github.com/AleutianAI/AleutianAlgebra/services/tutor/store"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

const serviceName = "algebra-tutor-service"

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "aleutian-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// openStore picks the persistence backend. A configured data directory
// means durable BadgerDB storage; otherwise records live in memory and
// vanish on restart.
func openStore(logger *slog.Logger) (store.Store, error) {
	dataDir := os.Getenv("TUTOR_DATA_DIR")
	if dataDir == "" {
		logger.Info("TUTOR_DATA_DIR not set, using in-memory equation store")
		return store.NewMemoryStore(), nil
	}

	cfg := store.DefaultBadgerConfig(dataDir)
	cfg.Logger = logger
	logger.Info("opening BadgerDB equation store", "path", dataDir)
	return store.OpenBadger(cfg)
}

func cacheTTL() time.Duration {
	raw := os.Getenv("TUTOR_CACHE_TTL_SECONDS")
	if raw == "" {
		return cache.DefaultTTL
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		slog.Warn("invalid TUTOR_CACHE_TTL_SECONDS, using default", "value", raw)
		return cache.DefaultTTL
	}
	return time.Duration(seconds) * time.Second
}

func main() {
	port := os.Getenv("TUTOR_PORT")
	if port == "" {
		port = "12220"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// --- Init the tracer ---
	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	equationStore, err := openStore(logger)
	if err != nil {
		log.Fatalf("failed to open equation store: %v", err)
	}
	defer func() {
		if err := equationStore.Close(); err != nil {
			slog.Error("failed to close equation store", "error", err)
		}
	}()

	ttl := cacheTTL()
	svc, err := service.New(service.Config{
		Store:    equationStore,
		Cache:    cache.NewMemoryCache(ttl, ttl),
		Recorder: analytics.NewLogRecorder(logger),
		Logger:   logger,
		CacheTTL: ttl,
	})
	if err != nil {
		log.Fatalf("failed to build tutor service: %v", err)
	}
	defer svc.Drain()

	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))

	routes.SetupRoutes(router, routes.Options{
		Service:     svc,
		Metrics:     observability.InitMetrics(),
		Auth:        &middleware.LocalProvider{},
		RateLimiter: middleware.NewRateLimiter(0, 0),
	})

	log.Println("Starting the tutor server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
