// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Rate limiting defaults. Equation parsing is cheap but unauthenticated
// local deployments still want a ceiling per client.
const (
	DefaultRequestsPerSecond = 10
	DefaultBurst             = 20

	// staleClientAge is how long an idle client's limiter is kept
	// before the next sweep drops it.
	staleClientAge = 10 * time.Minute
)

// clientLimiter pairs a token bucket with its last activity time.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter tracks one token bucket per client identity.
//
// # Thread Safety
//
// Safe for concurrent use. The per-client map is mutex-guarded; the
// token buckets themselves are concurrency-safe.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int

	lastSweep time.Time
}

// NewRateLimiter builds a RateLimiter allowing rps sustained requests
// per second with the given burst per client. Non-positive arguments
// fall back to the defaults.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &RateLimiter{
		clients:   make(map[string]*clientLimiter),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

// Allow reports whether the client identified by key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.sweepLocked(now)

	client, ok := rl.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter.Allow()
}

// sweepLocked drops limiters for clients idle longer than
// staleClientAge. Runs at most once per staleClientAge so the map
// cannot grow without bound on long-running servers.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	if now.Sub(rl.lastSweep) < staleClientAge {
		return
	}
	rl.lastSweep = now
	for key, client := range rl.clients {
		if now.Sub(client.lastSeen) > staleClientAge {
			delete(rl.clients, key)
		}
	}
}

// RateLimitMiddleware creates a Gin middleware that enforces the
// per-client limit. Clients are keyed by authenticated user id when the
// auth middleware has run, falling back to the remote IP.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if info := GetAuthInfo(c); info != nil {
			key = info.UserID
		}

		if !rl.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}
