// Package cache provides the render cache used by the CLI and server.
//
// Rendering a large tree to SVG (and especially rasterizing it) is the
// expensive step, so generated artifacts are cached keyed by a hash of the
// input bytes plus the render options. Three backends are available:
//   - FileCache: directory-backed, for CLI usage
//   - RedisCache: shared cache for server deployments
//   - NullCache: disables caching
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache stores rendered artifacts by key.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// RenderKey builds a cache key for a rendered artifact from the input
// bytes and the options that influence the output. Any change to input or
// options yields a different key.
func RenderKey(input []byte, opts any) string {
	optData, _ := json.Marshal(opts)
	h := sha256.New()
	h.Write(input)
	h.Write([]byte{0})
	h.Write(optData)
	return "render:" + hex.EncodeToString(h.Sum(nil))
}
