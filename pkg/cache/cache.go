// Package cache stores analysis results between runs.
//
// # Backends
//
// All backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// # Keys
//
// A [Keyer] derives keys from the content hash of a netlist plus the
// options that change the result, so an edited netlist or a different
// precision never hits a stale entry. [ScopedKeyer] prefixes every key to
// keep several tenants apart in one Redis database.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// A miss is reported as (nil, false, nil), not as an error.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default lifetimes.
const (
	TTLReport   = 7 * 24 * time.Hour  // solved analysis reports
	TTLArtifact = 30 * 24 * time.Hour // rendered drawings
)

// NullCache never stores anything.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }
