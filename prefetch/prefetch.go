// Package prefetch implements a route-keyed speculative fetch cache. A
// navigational control schedules a prefetch on pointer-enter; if the pointer
// dwells past the delay, the exact fetch the navigation will need is issued
// and the result is parked in a byte Provider. The page consults the store at
// mount time to paint its first frame without waiting on the network.
//
// Guarantees:
//   - at most one fetch in flight per route key (cached or pending => no-op)
//   - Cancel before the dwell elapses suppresses the fetch entirely;
//     cancellation is a precondition check before commit, so a fire racing a
//     cancel never fetches
//   - a dispatched fetch runs to completion; Cancel does not abort it
//
// Entries have no TTL by default: a prefetched payload stays until it is
// invalidated, the scope revision moves, or the provider evicts it. That
// staleness window is accepted product behavior; set Options.TTL to bound it.
package prefetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/unkn0wn-root/optisync"
	"github.com/unkn0wn-root/optisync/codec"
	"github.com/unkn0wn-root/optisync/internal/util"
	"github.com/unkn0wn-root/optisync/internal/wire"
	pr "github.com/unkn0wn-root/optisync/provider"
	"github.com/unkn0wn-root/optisync/revstore"
)

const (
	defaultDwell = 200 * time.Millisecond

	// provider keys beyond this length are replaced by a hashed form
	maxStorageKeyLen = 120
)

// ErrNoRevStore is returned by InvalidateScope when no revision store was
// configured.
var ErrNoRevStore = errors.New("prefetch: no revision store configured")

// FetchFunc issues the real request for a route key. It is called off the
// scheduling goroutine after the dwell delay elapses.
type FetchFunc[V any] func(ctx context.Context, routeKey string) (V, error)

// Options tune the behavior of a prefetch Store.
// Namespace, Provider, Codec and Fetch are required.
type Options[V any] struct {
	// Required. Logical route family, e.g. "products", "orders".
	Namespace string
	Provider  pr.Provider
	Codec     codec.Codec[V]
	Fetch     FetchFunc[V]

	Logger optisync.Logger // if nil, NopLogger is used
	Hooks  optisync.Hooks  // if nil, NopHooks is used

	DwellDelay time.Duration // hover dwell before the fetch fires; 0 => 200ms
	TTL        time.Duration // entry lifetime; 0 => no expiry

	// Optional. When set, entries record the scope revision observed before
	// the fetch; Consume rejects entries whose revision has moved, and
	// InvalidateScope bumps it after a mutation.
	Revisions revstore.RevStore

	Disabled bool // default false (enabled)
}

// Store is a speculative fetch cache for one route family. Safe for
// concurrent use.
type Store[V any] struct {
	ns    string
	prov  pr.Provider
	codec codec.Codec[V]
	fetch FetchFunc[V]
	log   optisync.Logger
	hooks optisync.Hooks
	dwell time.Duration
	ttl   time.Duration
	revs  revstore.RevStore

	enabled bool

	mu      sync.Mutex
	pending map[string]*task

	now func() time.Time // test seam
}

type task struct {
	timer     *time.Timer
	cancelled bool
	inFlight  bool
}

func New[V any](opts Options[V]) (*Store[V], error) {
	if opts.Namespace == "" {
		return nil, fmt.Errorf("prefetch: namespace is required")
	}
	if opts.Provider == nil {
		return nil, fmt.Errorf("prefetch: provider is required")
	}
	if opts.Codec == nil {
		return nil, fmt.Errorf("prefetch: codec is required")
	}
	if opts.Fetch == nil {
		return nil, fmt.Errorf("prefetch: fetch func is required")
	}

	s := &Store[V]{
		ns:      opts.Namespace,
		prov:    opts.Provider,
		codec:   opts.Codec,
		fetch:   opts.Fetch,
		log:     optisync.Coalesce[optisync.Logger](opts.Logger, optisync.NopLogger{}),
		hooks:   optisync.Coalesce[optisync.Hooks](opts.Hooks, optisync.NopHooks{}),
		dwell:   optisync.Coalesce[time.Duration](opts.DwellDelay, defaultDwell),
		ttl:     opts.TTL,
		revs:    opts.Revisions,
		enabled: !opts.Disabled,
		pending: make(map[string]*task),
		now:     time.Now,
	}
	return s, nil
}

func (s *Store[V]) Enabled() bool { return s.enabled }

// Close cancels all pending prefetches and closes the provider. Revisions are
// closed first (best effort).
func (s *Store[V]) Close(ctx context.Context) error {
	s.mu.Lock()
	for k, t := range s.pending {
		t.cancelled = true
		if t.timer != nil {
			t.timer.Stop()
		}
		delete(s.pending, k)
	}
	s.mu.Unlock()

	if s.revs != nil {
		_ = s.revs.Close(ctx)
	}
	return s.prov.Close(ctx)
}

// Schedule arms a prefetch for routeKey, firing after the dwell delay. A
// no-op when a prefetch for the key is already armed or in flight. The
// context must outlive the dwell; pass the application context, not a
// per-event one.
func (s *Store[V]) Schedule(ctx context.Context, routeKey string) {
	if !s.enabled {
		return
	}
	s.mu.Lock()
	if _, exists := s.pending[routeKey]; exists {
		s.mu.Unlock()
		return
	}
	t := &task{}
	t.timer = time.AfterFunc(s.dwell, func() { s.fire(ctx, routeKey) })
	s.pending[routeKey] = t
	s.mu.Unlock()
}

// Cancel disarms a pending prefetch (pointer-leave before the dwell). A fetch
// already dispatched runs to completion; its result is kept.
func (s *Store[V]) Cancel(routeKey string) {
	s.mu.Lock()
	if t, ok := s.pending[routeKey]; ok && !t.inFlight {
		t.cancelled = true
		t.timer.Stop()
		delete(s.pending, routeKey)
	}
	s.mu.Unlock()
}

// fire runs on the timer goroutine after the dwell elapsed.
func (s *Store[V]) fire(ctx context.Context, routeKey string) {
	s.mu.Lock()
	t, ok := s.pending[routeKey]
	if !ok || t.cancelled {
		// lost the race with Cancel; nothing committed
		s.mu.Unlock()
		return
	}
	t.inFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.pending, routeKey)
		s.mu.Unlock()
	}()

	// already cached => the dedup rule says no-op
	if _, hit, _ := s.Consume(ctx, routeKey); hit {
		return
	}

	obs := s.snapshotRev(ctx)

	v, err := s.fetch(ctx, routeKey)
	if err != nil {
		// speculative work: a failed prefetch is dropped, never retried; the
		// mount-time fetch will surface the error if it persists
		s.log.Debug("prefetch fetch failed", optisync.Fields{"route": routeKey, "err": err})
		return
	}

	// revision moved while the request was in flight; skip the stale commit
	if s.revs != nil && s.snapshotRev(ctx) != obs {
		s.log.Debug("prefetch commit skipped (rev moved)", optisync.Fields{"route": routeKey})
		return
	}

	payload, err := s.codec.Encode(v)
	if err != nil {
		s.log.Warn("prefetch encode failed", optisync.Fields{"route": routeKey, "err": err})
		return
	}

	k := s.storageKey(routeKey)
	raw := wire.EncodeEntry(obs, s.now().UnixNano(), payload)
	stored, err := s.prov.Set(ctx, k, raw, int64(len(raw)), s.ttl)
	if err != nil {
		s.log.Warn("prefetch store failed", optisync.Fields{"route": routeKey, "err": err})
		return
	}
	if !stored {
		s.hooks.PrefetchSetRejected(k)
	}
}

// Consume returns the prefetched value for routeKey if present and still
// valid. Corrupt, expired, or revision-stale entries are deleted (self-heal)
// and reported as a miss. The entry itself stays cached on a hit; callers
// that want consume-once semantics follow up with Invalidate.
func (s *Store[V]) Consume(ctx context.Context, routeKey string) (V, bool, error) {
	var zero V
	if !s.enabled {
		return zero, false, nil
	}
	k := s.storageKey(routeKey)
	raw, ok, err := s.prov.Get(ctx, k)
	if err != nil || !ok {
		return zero, false, err
	}

	rev, fetchedAt, payload, err := wire.DecodeEntry(raw)
	if err != nil {
		s.heal(ctx, k, "corrupt")
		return zero, false, nil
	}
	if s.ttl > 0 && s.now().Sub(time.Unix(0, fetchedAt)) > s.ttl {
		s.heal(ctx, k, "expired")
		return zero, false, nil
	}
	if s.revs != nil {
		cur, err := s.revs.Snapshot(ctx, s.ns)
		if err != nil {
			// conservative: keep the entry, report a miss
			s.hooks.RevSnapshotError(k, err)
			return zero, false, nil
		}
		if cur != rev {
			s.heal(ctx, k, "rev_mismatch")
			return zero, false, nil
		}
	}

	v, err := s.codec.Decode(payload)
	if err != nil {
		s.heal(ctx, k, "value_decode")
		return zero, false, nil
	}
	return v, true, nil
}

// Invalidate drops the entry for a single route key (best-effort).
func (s *Store[V]) Invalidate(ctx context.Context, routeKey string) error {
	return s.prov.Del(ctx, s.storageKey(routeKey))
}

// InvalidateScope bumps the scope revision, making every entry fetched under
// the old revision stale at once. Call after a mutation to the underlying
// entity type. Requires Options.Revisions.
func (s *Store[V]) InvalidateScope(ctx context.Context) error {
	if s.revs == nil {
		return ErrNoRevStore
	}
	if _, err := s.revs.Bump(ctx, s.ns); err != nil {
		s.hooks.RevBumpError(s.ns, err)
		return err
	}
	return nil
}

func (s *Store[V]) heal(ctx context.Context, storageKey, reason string) {
	_ = s.prov.Del(ctx, storageKey)
	s.hooks.PrefetchSelfHeal(storageKey, reason)
}

func (s *Store[V]) snapshotRev(ctx context.Context) uint64 {
	if s.revs == nil {
		return 0
	}
	r, err := s.revs.Snapshot(ctx, s.ns)
	if err != nil {
		// treat as 0; a later rev check will reject the commit if it moved
		s.hooks.RevSnapshotError(s.ns, err)
		return 0
	}
	return r
}

func (s *Store[V]) storageKey(routeKey string) string {
	k := "route:" + s.ns + ":" + routeKey
	if len(k) <= maxStorageKeyLen {
		return k
	}
	return util.HashedKey("route:"+s.ns, routeKey)
}
