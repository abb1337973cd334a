// Package taskpool bounds concurrent IDE-request work and cancels a
// request's computation the moment a newer edit supersedes the
// generation it started against, rather than letting it race a fresher
// answer to the client.
package taskpool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// GenerationSource supplies a context cancelled the moment a newer input
// supersedes the generation the caller started against. *db.DB satisfies
// this through its own WithCancel method; taskpool depends only on the
// interface so it never has to import db directly.
type GenerationSource interface {
	WithCancel(ctx context.Context) (context.Context, context.CancelFunc)
}

// Pool runs IDE-request workers under a concurrency limit and a
// cancellation guard keyed on the incremental database's generation.
type Pool struct {
	sem *semaphore.Weighted
	gen GenerationSource
}

// New returns a Pool allowing at most concurrency workers to run at
// once. concurrency <= 0 is treated as 1.
func New(concurrency int64, gen GenerationSource) *Pool {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pool{sem: semaphore.NewWeighted(concurrency), gen: gen}
}

// Run acquires a worker slot and calls fn with a context that unwinds
// both on ctx's own cancellation and on a newer generation superseding
// the one fn started under. A caller observing the returned error maps
// it to a cancelled-request response; taskpool itself carries no opinion
// on wire-level error codes.
func (p *Pool) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	genCtx, cancel := p.gen.WithCancel(ctx)
	defer cancel()

	if err := p.sem.Acquire(genCtx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	return fn(genCtx)
}
