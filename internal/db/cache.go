package db

import (
	"context"
	"sync"
)

type unit struct{}

// Cache memoizes a tracked computation keyed on K (typically a project or
// file id), further gated by a Fingerprint of the inputs that
// computation read. Two Gets for the same key and an unchanged
// fingerprint return the identical cached value — no recomputation, and
// (since V is expected to be a pointer or an arc-like wrapper) pointer-
// equal.
//
// The coordination primitive is a direct generalization of
// gopls/internal/cache/future.go's futureCache: concurrent Gets for the
// same key join a single in-flight computation; if that computation's
// context is cancelled, the next caller reassigns the work to itself
// rather than everyone failing.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
}

type entry[V any] struct {
	fp Fingerprint

	// refs counts goroutines currently awaiting or computing this entry.
	refs int

	done    chan unit
	acquire chan unit

	ready bool
	v     V
	err   error
}

// NewCache returns an empty Cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]*entry[V])}
}

// Compute produces a value for a key whose inputs have some Fingerprint.
// It must check ctx.Done() periodically for long-running work.
type Compute[V any] func(ctx context.Context) (V, error)

// Get returns the cached value for (key, fp) if present and ready; else
// it joins (or starts) a computation for that exact fingerprint. If the
// cached entry for key carries a different (stale) fingerprint, it is
// discarded and a fresh computation replaces it — this is the DB's
// invalidation rule: a tracked function is memoized only as long as its
// recorded Fingerprint matches what the caller computed from current
// inputs.
func (c *Cache[K, V]) Get(ctx context.Context, key K, fp Fingerprint, compute Compute[V]) (V, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok || e.fp != fp {
		e = &entry[V]{
			fp:      fp,
			done:    make(chan unit),
			acquire: make(chan unit, 1),
		}
		e.acquire <- unit{}
		c.entries[key] = e
	}
	e.refs++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		e.refs--
		// Drop a fully-abandoned, never-completed entry so a later Get
		// doesn't join a dead computation forever.
		if e.refs == 0 && !e.ready && c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}()

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-e.done:
		return e.v, e.err
	case <-e.acquire:
	}

	v, err := compute(ctx)
	if cerr := ctx.Err(); cerr != nil {
		e.acquire <- unit{} // hand the work off to the next requester
		return zero, cerr
	}

	c.mu.Lock()
	e.v, e.err, e.ready = v, err, true
	c.mu.Unlock()
	close(e.done)
	return v, err
}

// Invalidate drops any cached entry for key outright, regardless of
// fingerprint. Used when a key's input is retired (e.g. a file deleted)
// rather than merely edited.
func (c *Cache[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
