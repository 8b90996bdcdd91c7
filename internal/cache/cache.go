// Package cache provides small in-process caches for values that never
// change once written, such as the username behind a user id.
package cache

// Cache defines a generic cache interface
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, data V)
	// CleanExpired drops expired entries and returns how many were removed.
	CleanExpired() int
	Size() int
}

var _ Cache[int64, string] = (*LRUCache[int64, string])(nil)
