// Package revstore tracks per-scope revision counters. A scope is a logical
// slice of server state (usually one entity type). Mutating operations bump
// the scope's revision; prefetched entries remember the revision they were
// fetched under and are treated as stale once it moves.
package revstore

import (
	"context"
	"time"
)

// RevStore abstracts where revisions live.
// Use Local (default) for in-process revisions, or Redis for revisions shared
// across console replicas.
type RevStore interface {
	// Snapshot returns the current revision; missing => 0.
	Snapshot(ctx context.Context, scope string) (uint64, error)
	// Bump atomically increments and returns the new revision.
	Bump(ctx context.Context, scope string) (uint64, error)
	// Cleanup prunes old metadata if applicable (no-op for Redis).
	Cleanup(retention time.Duration)
	// Close releases resources (no-op ok).
	Close(context.Context) error
}
