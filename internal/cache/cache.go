// Package cache memoizes expensive preview work, such as converter output,
// keyed by a fingerprint of the source.
//
// A Fingerprint names the source (Locator), describes its current state
// (Signal, e.g. mtime and size for a local file) and names the converter that
// produced the value. An entry is served only while all three match; a changed
// Signal evicts the entry and triggers a recompute.
//
// Concurrent requests for the same fingerprint share a single computation.
// A caller that stops waiting does not cancel the computation, so its result
// still lands in the cache for the next request.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Fingerprint identifies one cacheable computation.
type Fingerprint struct {
	Locator   string // canonical source identity: absolute path, URL, or data hash
	Signal    string // freshness signal; empty for immutable sources
	Converter string // converter identity; empty when no conversion was needed
}

// Slot is the cache slot of the fingerprint: one per source and converter.
func (f Fingerprint) Slot() string {
	return f.Converter + "\x00" + f.Locator
}

// Key is the full fingerprint identity.
func (f Fingerprint) Key() string {
	return f.Slot() + "\x00" + f.Signal
}

type entry[V any] struct {
	signal string
	value  V
}

// Cache is a concurrency-safe map from fingerprint to value.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	group   singleflight.Group
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: make(map[string]entry[V])}
}

// GetOrCompute returns the cached value for fp, or runs compute and caches its
// result. Only successful results are cached. At most one compute runs per
// fingerprint at a time; callers arriving while it runs wait for its result.
//
// compute receives a context that is not cancelled when ctx is. If ctx ends
// first, GetOrCompute returns ctx.Err() while compute keeps running.
func (c *Cache[V]) GetOrCompute(ctx context.Context, fp Fingerprint, compute func(context.Context) (V, error)) (V, error) {
	if v, ok := c.lookup(fp); ok {
		return v, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fp.Key(), func() (any, error) {
		// A concurrent flight may have stored the value between lookup and here.
		if v, ok := c.lookup(fp); ok {
			return v, nil
		}
		v, err := compute(detached)
		if err != nil {
			return v, err
		}
		c.store(fp, v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero V
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// lookup returns the entry for fp's slot when its signal is current, and
// evicts it when the signal is stale.
func (c *Cache[V]) lookup(fp Fingerprint) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[fp.Slot()]
	if !ok {
		var zero V
		return zero, false
	}
	if e.signal != fp.Signal {
		delete(c.entries, fp.Slot())
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) store(fp Fingerprint, v V) {
	c.mu.Lock()
	c.entries[fp.Slot()] = entry[V]{signal: fp.Signal, value: v}
	c.mu.Unlock()
}

// Invalidate drops every entry for locator, whatever converter produced it.
func (c *Cache[V]) Invalidate(locator string) int {
	suffix := "\x00" + locator
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for slot := range c.entries {
		if len(slot) >= len(suffix) && slot[len(slot)-len(suffix):] == suffix {
			delete(c.entries, slot)
			n++
		}
	}
	return n
}

// Clear drops all entries and returns how many there were.
func (c *Cache[V]) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]entry[V])
	return n
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
