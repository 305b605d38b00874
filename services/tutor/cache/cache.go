// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache provides the caching collaborator for the tutor service.
// Keys are derived from a normalized hash of the raw equation input so
// that formatting differences ("2x+3=8" vs "2x + 3 = 8") hit the same
// entry.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// DefaultTTL is the cache lifetime for equation results.
const DefaultTTL = 3600 * time.Second

// Cache is the caching contract. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key from an equation string: whitespace is
// stripped, case is folded, and the result is hashed.
func Key(input string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(input), ""))
	hash := sha256.Sum256([]byte(normalized))
	return "algebra:v1:" + hex.EncodeToString(hash[:])
}
