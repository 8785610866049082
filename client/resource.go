// Package client is the typed CRUD surface the console's views call: one
// Resource per entity type, combining the HTTP gateway with the optimistic
// collection. Mutations write through the collection before the server
// confirms; subscribers repaint immediately and the entry is reconciled or
// rolled back when the response lands.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/optisync"
	"github.com/unkn0wn-root/optisync/entity"
	"github.com/unkn0wn-root/optisync/gateway"
	"github.com/unkn0wn-root/optisync/prefetch"
)

const placeholderPrefix = "tmp-"

// PlaceholderID returns a synthetic id for an optimistically inserted record,
// distinguishable from any server-assigned id.
func PlaceholderID() string { return placeholderPrefix + uuid.NewString() }

// IsPlaceholder reports whether id was produced by PlaceholderID.
func IsPlaceholder(id string) bool { return strings.HasPrefix(id, placeholderPrefix) }

// Record is the constraint for resource entities: identifiable, and able to
// produce a copy of itself under a different id (for placeholder swap).
type Record[V any] interface {
	optisync.Entity
	WithID(id string) V
}

// Options tune a Resource. Gateway, Collection and Path are required.
type Options[V Record[V]] struct {
	Gateway    *gateway.Client
	Collection *optisync.Collection[V]

	// Collection endpoint, e.g. "/products".
	Path string

	Logger optisync.Logger // nil => NopLogger

	// Optional. Consulted by List before fetching, so a hover-prefetched
	// page paints without a round trip; bumped on every mutation when its
	// revision store is configured.
	Prefetch *prefetch.Store[[]V]
}

// Resource is the typed CRUD hook for one entity type.
type Resource[V Record[V]] struct {
	gw   *gateway.Client
	col  *optisync.Collection[V]
	path string
	log  optisync.Logger
	pf   *prefetch.Store[[]V]
}

func NewResource[V Record[V]](opts Options[V]) (*Resource[V], error) {
	if opts.Gateway == nil {
		return nil, fmt.Errorf("client: gateway is required")
	}
	if opts.Collection == nil {
		return nil, fmt.Errorf("client: collection is required")
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("client: path is required")
	}
	return &Resource[V]{
		gw:   opts.Gateway,
		col:  opts.Collection,
		path: "/" + strings.Trim(opts.Path, "/"),
		log:  optisync.Coalesce[optisync.Logger](opts.Logger, optisync.NopLogger{}),
		pf:   opts.Prefetch,
	}, nil
}

// Collection exposes the underlying store for subscriptions.
func (r *Resource[V]) Collection() *optisync.Collection[V] { return r.col }

// List loads the full collection. A valid prefetched payload short-circuits
// the fetch for this call; otherwise a normal fetch proceeds and the result
// replaces the collection wholesale.
func (r *Resource[V]) List(ctx context.Context) ([]V, error) {
	if r.pf != nil {
		if items, ok, _ := r.pf.Consume(ctx, r.path); ok {
			r.log.Debug("list served from prefetch", optisync.Fields{"path": r.path})
			if err := r.col.Replace(items); err == nil {
				return r.col.Items(), nil
			}
			// duplicate ids in a stale prefetched payload: fall through to a
			// fresh fetch
		}
	}
	return r.Refresh(ctx)
}

// Refresh always fetches fresh, replaces the collection, and drops any
// prefetched copy of this route. Exposed to views as the manual refresh
// action.
func (r *Resource[V]) Refresh(ctx context.Context) ([]V, error) {
	var items []V
	if err := r.gw.Get(ctx, r.path, nil, &items); err != nil {
		return nil, err
	}
	if err := r.col.Replace(items); err != nil {
		return nil, err
	}
	if r.pf != nil {
		_ = r.pf.Invalidate(ctx, r.path)
	}
	return r.col.Items(), nil
}

// Search queries the collection endpoint with a search term and replaces the
// collection with the filtered result. Pair with a Debouncer to coalesce
// keystrokes; note that an already-dispatched request is not cancelled, so
// the last response to arrive wins.
func (r *Resource[V]) Search(ctx context.Context, term string) ([]V, error) {
	var items []V
	q := url.Values{"search": {term}}
	if err := r.gw.Get(ctx, r.path, q, &items); err != nil {
		return nil, err
	}
	if err := r.col.Replace(items); err != nil {
		return nil, err
	}
	return r.col.Items(), nil
}

// Create posts draft and optimistically inserts it at the head of the
// collection under a placeholder id. On confirmation the placeholder is
// swapped for the server record; on failure it is removed and the error
// returned unchanged.
func (r *Resource[V]) Create(ctx context.Context, draft V) (V, error) {
	var zero V

	ph := draft.WithID(PlaceholderID())
	phID := ph.EntityID()
	r.col.Add(ph)

	var created V
	if err := r.gw.Post(ctx, r.path, draft, &created); err != nil {
		r.col.Remove(phID)
		return zero, err
	}

	// swap placeholder for the confirmed record, keeping head position
	if uerr := r.col.Update(phID, func(V) V { return created }); uerr != nil {
		// placeholder vanished (refetch raced the create); just insert
		r.col.Add(created)
	}
	r.bumpScope(ctx)
	return created, nil
}

// Update optimistically replaces the item in the collection with next, then
// reconciles with the server-confirmed record. On failure the previous value
// is restored in place.
func (r *Resource[V]) Update(ctx context.Context, id string, next V) (V, error) {
	var zero V

	prev, had := r.col.Lookup(id)
	_ = r.col.Update(id, func(V) V { return next.WithID(id) })

	var confirmed V
	if err := r.gw.Put(ctx, r.path+"/"+id, next, &confirmed); err != nil {
		if had {
			_ = r.col.Update(id, func(V) V { return prev })
		}
		return zero, err
	}

	_ = r.col.Update(id, func(V) V { return confirmed })
	r.bumpScope(ctx)
	return confirmed, nil
}

// Delete optimistically removes the item, restoring it on failure. The
// restored item surfaces at the head of the list; original position is not
// tracked.
func (r *Resource[V]) Delete(ctx context.Context, id string) error {
	prev, had := r.col.Lookup(id)
	r.col.Remove(id)

	if err := r.gw.Delete(ctx, r.path+"/"+id, nil); err != nil {
		if had {
			r.col.Add(prev)
		}
		return err
	}
	r.bumpScope(ctx)
	return nil
}

func (r *Resource[V]) bumpScope(ctx context.Context) {
	if r.pf == nil {
		return
	}
	if err := r.pf.InvalidateScope(ctx); err != nil && !errors.Is(err, prefetch.ErrNoRevStore) {
		r.log.Warn("prefetch scope bump failed", optisync.Fields{"path": r.path, "err": err})
	}
}

// FetchDashboard loads the landing-page aggregate. Read-only; no collection
// involved.
func FetchDashboard(ctx context.Context, gw *gateway.Client) (entity.DashboardSummary, error) {
	var s entity.DashboardSummary
	err := gw.Get(ctx, "/dashboard", nil, &s)
	return s, err
}
