// Package cache stores aggregation results keyed by profile and method.
//
// Exact Kemeny solvers are exponential in the number of candidates, so a
// result that took seconds to prove optimal is worth keeping. The runner in
// [github.com/matzehuels/kemeny/pkg/pipeline] consults a [Cache] before
// running a method and stores the JSON-encoded result afterwards.
//
// Three backends are provided:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (HTTP API deployments)
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer]; [ScopedKeyer] adds a namespace prefix.
package cache

import (
	"context"
	"time"
)

// DefaultTTL is how long results are kept when the caller does not say.
// Results are pure functions of their key, so entries only expire to bound
// disk and memory use.
const DefaultTTL = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Keyer builds cache keys.
type Keyer interface {
	// ResultKey identifies the result of running method on the profile with
	// the given content hash.
	ResultKey(profileHash, method string, opts ResultKeyOpts) string
}

// ResultKeyOpts are the method options that change a result. Options that
// only affect speed (worker counts) must not be included.
type ResultKeyOpts struct {
	Seed         uint64 `json:"seed,omitempty"`
	Restarts     int    `json:"restarts,omitempty"`
	MaxNoImprove int    `json:"max_no_improve,omitempty"`
}

// DefaultKeyer produces keys of the form "result:v1:<method>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(profileHash, method string, opts ResultKeyOpts) string {
	return resultKey(profileHash, method, opts)
}
