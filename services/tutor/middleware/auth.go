// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package middleware provides Gin middleware for the tutor service:
// request authentication and per-client rate limiting.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrUnauthorized is returned by providers when a token is invalid.
var ErrUnauthorized = errors.New("unauthorized")

// authInfoKey is the Gin context key for AuthInfo.
const authInfoKey = "tutor_auth_info"

// AuthInfo describes the authenticated caller.
//
// # Fields
//
//   - UserID: Stable identifier used as the owner of created equations.
//   - Method: How the caller authenticated ("local", "token").
type AuthInfo struct {
	UserID string
	Method string
}

// Provider validates bearer tokens into AuthInfo. Implementations must
// be safe for concurrent use.
type Provider interface {
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// LocalProvider is the single-machine provider: it never rejects. An
// empty token maps to DefaultUser, a non-empty token is treated as an
// opaque user identifier. There is no account system in local
// deployments, so the token only partitions ownership.
type LocalProvider struct {
	// DefaultUser is the identity for requests with no token.
	// Defaults to "local-user".
	DefaultUser string
}

// Validate implements Provider.
func (p *LocalProvider) Validate(_ context.Context, token string) (*AuthInfo, error) {
	if token == "" {
		user := p.DefaultUser
		if user == "" {
			user = "local-user"
		}
		return &AuthInfo{UserID: user, Method: "local"}, nil
	}
	return &AuthInfo{UserID: token, Method: "token"}, nil
}

// SetAuthInfo stores auth info in the Gin context for downstream handlers.
func SetAuthInfo(c *gin.Context, info *AuthInfo) {
	c.Set(authInfoKey, info)
}

// GetAuthInfo retrieves auth info from the Gin context, or nil when the
// auth middleware has not run.
func GetAuthInfo(c *gin.Context) *AuthInfo {
	if info, exists := c.Get(authInfoKey); exists {
		if authInfo, ok := info.(*AuthInfo); ok {
			return authInfo
		}
	}
	return nil
}

// AuthMiddleware creates a Gin middleware that authenticates requests.
//
// # Description
//
// Extracts the bearer token from the Authorization header, validates it
// using the provided Provider, and stores the resulting AuthInfo in the
// context for downstream handlers. A missing or malformed header yields
// an empty token; LocalProvider accepts this and assigns the default
// identity.
//
// # Examples
//
//	v1 := router.Group("/v1")
//	v1.Use(middleware.AuthMiddleware(&middleware.LocalProvider{}))
func AuthMiddleware(provider Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)

		authInfo, err := provider.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
			})
			return
		}

		SetAuthInfo(c, authInfo)
		c.Next()
	}
}

// extractBearerToken extracts the token from the Authorization header.
// Expected format is "Bearer <token>"; the prefix is case-insensitive
// per RFC 7235. Returns empty string if the header is missing or
// malformed.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
