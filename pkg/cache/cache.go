// Package cache provides the byte-level cache used for fetched data bundles
// and HTTP responses.
//
// # Backends
//
//   - [FileCache]: one JSON file per key, used by the CLI
//   - [RedisCache]: shared cache for `vitalsgrid serve` deployments
//   - [NullCache]: disables caching
//
// # Keys
//
// Keys are built by a [Keyer] so that every component agrees on the layout
// of the key space:
//
//	k := cache.NewDefaultKeyer()
//	key := k.VitalsKey("memory", "1W", window)
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache stores opaque byte values with an optional time-to-live.
type Cache interface {
	// Get returns the value for key. The boolean is false on a miss or an
	// expired entry; err is reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero keeps the entry forever.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey is the key for a cached HTTP response body.
	HTTPKey(namespace, key string) string

	// VitalsKey is the key for a data bundle fetched from source for a
	// time range. bucket pins the key to a time window so bundles age out
	// as the window slides.
	VitalsKey(source, timeRange string, bucket time.Time) string

	// SnapshotKey is the key for a rendered layout snapshot.
	SnapshotKey(layoutHash, format string) string
}

// DefaultKeyer is the standard key layout.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard key layout.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return fmt.Sprintf("http:%s:%s", namespace, key)
}

// VitalsKey hashes the source, range and bucket start.
func (DefaultKeyer) VitalsKey(source, timeRange string, bucket time.Time) string {
	return hashKey("vitals", source, timeRange, bucket.UTC().Unix())
}

// SnapshotKey hashes the layout hash and output format.
func (DefaultKeyer) SnapshotKey(layoutHash, format string) string {
	return hashKey("snapshot", layoutHash, format)
}

// ScopedKeyer prefixes every key of an inner Keyer, for example to keep
// several dashboards apart in one shared Redis.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) VitalsKey(source, timeRange string, bucket time.Time) string {
	return k.prefix + k.inner.VitalsKey(source, timeRange, bucket)
}

func (k *ScopedKeyer) SnapshotKey(layoutHash, format string) string {
	return k.prefix + k.inner.SnapshotKey(layoutHash, format)
}

// Hash returns the hex SHA-256 of data. Snapshot keys use it to name a
// layout document; FileCache uses it to name entry files.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "<prefix>:<sha256 of the JSON-encoded parts>".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}
