package optisync

import (
	"fmt"
	"sync"
)

// Subscriber receives the collection's items after every effective mutation.
// The slice is a fresh snapshot shared by all subscribers of that notification;
// treat it as read-only.
type Subscriber[V Entity] func(items []V)

// Options tune a Collection. Only Namespace is required.
type Options[V Entity] struct {
	// Required. Logical entity key, e.g. "products", "orders".
	Namespace string

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

// Collection is an ordered, id-unique list store for one entity type. It is
// the single source of truth for in-flight optimistic state: mutation code
// writes through it, render code subscribes to it. Safe for concurrent use.
//
// Subscribers are invoked synchronously on the mutating call's stack, outside
// the collection lock. A subscriber that mutates the same collection recurses;
// no recursion guard is provided.
type Collection[V Entity] struct {
	ns    string
	log   Logger
	hooks Hooks

	mu      sync.RWMutex
	items   []V
	subs    map[uint64]Subscriber[V]
	nextSub uint64
}

// New constructs a Collection. Construct one per entity type per application
// root and inject it; tests get isolated instances for free.
func New[V Entity](opts Options[V]) (*Collection[V], error) {
	if opts.Namespace == "" {
		return nil, fmt.Errorf("optisync: namespace is required")
	}
	return &Collection[V]{
		ns:    opts.Namespace,
		log:   Coalesce[Logger](opts.Logger, NopLogger{}),
		hooks: Coalesce[Hooks](opts.Hooks, NopHooks{}),
		subs:  make(map[uint64]Subscriber[V]),
	}, nil
}

// Namespace returns the entity key this collection was constructed with.
func (c *Collection[V]) Namespace() string { return c.ns }

// Items returns a snapshot copy of the stored sequence. Never nil for an
// empty collection; always safe to retain.
func (c *Collection[V]) Items() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]V, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the current item count.
func (c *Collection[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Lookup returns the item with the given id, if present.
func (c *Collection[V]) Lookup(id string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, it := range c.items {
		if it.EntityID() == id {
			return it, true
		}
	}
	var zero V
	return zero, false
}

// Replace swaps the stored sequence wholesale, preserving the given order.
// Used after a successful full refetch. Rejects lists with duplicate ids and
// leaves the collection unchanged; notifies subscribers on success.
func (c *Collection[V]) Replace(items []V) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		id := it.EntityID()
		if _, dup := seen[id]; dup {
			c.hooks.ReplaceRejected(c.ns, id)
			return &DuplicateIDError{Namespace: c.ns, ID: id}
		}
		seen[id] = struct{}{}
	}

	next := make([]V, len(items))
	copy(next, items)

	c.mu.Lock()
	c.items = next
	snap, subs := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap, subs)
	return nil
}

// Add inserts item at the head of the sequence iff no existing item shares
// its id. Reports whether an insertion occurred; a duplicate is a silent
// no-op (idempotent optimistic insert).
func (c *Collection[V]) Add(item V) bool {
	id := item.EntityID()

	c.mu.Lock()
	for _, it := range c.items {
		if it.EntityID() == id {
			c.mu.Unlock()
			c.hooks.DuplicateAdd(c.ns, id)
			return false
		}
	}
	// newest-first: optimistic inserts surface at the top of the list
	c.items = append([]V{item}, c.items...)
	snap, subs := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap, subs)
	return true
}

// Update applies fn to the item with the given id, in place. Returns a
// *MissError (wrapping ErrNoSuchEntity) when no item matches; subscribers are
// notified only on an effective update.
func (c *Collection[V]) Update(id string, fn func(V) V) error {
	c.mu.Lock()
	for i, it := range c.items {
		if it.EntityID() == id {
			c.items[i] = fn(it)
			snap, subs := c.snapshotLocked()
			c.mu.Unlock()
			c.notify(snap, subs)
			return nil
		}
	}
	c.mu.Unlock()

	c.hooks.UpdateMiss(c.ns, id)
	return &MissError{Namespace: c.ns, ID: id}
}

// Remove filters out the item with the given id and reports whether anything
// was removed. Subscribers are notified unconditionally, even on a no-op
// match; re-renders are idempotent, so the extra pass is harmless.
func (c *Collection[V]) Remove(id string) bool {
	removed := false

	c.mu.Lock()
	kept := c.items[:0]
	for _, it := range c.items {
		if it.EntityID() == id {
			removed = true
			continue
		}
		kept = append(kept, it)
	}
	c.items = kept
	snap, subs := c.snapshotLocked()
	c.mu.Unlock()

	if !removed {
		c.hooks.RemoveMiss(c.ns, id)
	}
	c.notify(snap, subs)
	return removed
}

// Subscribe registers cb and returns a detach function. Multiple
// subscriptions are permitted; no invocation order is guaranteed across
// callbacks. The detach function is idempotent.
func (c *Collection[V]) Subscribe(cb Subscriber[V]) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = cb
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// snapshotLocked copies items and the subscriber set. Caller must hold mu.
func (c *Collection[V]) snapshotLocked() ([]V, []Subscriber[V]) {
	snap := make([]V, len(c.items))
	copy(snap, c.items)
	subs := make([]Subscriber[V], 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	return snap, subs
}

func (c *Collection[V]) notify(snap []V, subs []Subscriber[V]) {
	for _, s := range subs {
		s(snap)
	}
}
