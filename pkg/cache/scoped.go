package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments (or API
// tenants) can share one Redis without colliding.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "kemeny:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer selects
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey generates a prefixed result key.
func (k *ScopedKeyer) ResultKey(profileHash, method string, opts ResultKeyOpts) string {
	return k.prefix + k.inner.ResultKey(profileHash, method, opts)
}
