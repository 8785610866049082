package optisync

import (
	"errors"
	"sync"
	"testing"
)

type product struct {
	ID    string
	Name  string
	Price float64
}

func (p product) EntityID() string { return p.ID }

// recorderHooks counts anomaly events for assertions.
type recorderHooks struct {
	NopHooks
	mu         sync.Mutex
	dupAdds    int
	updateMiss int
	removeMiss int
	replaceRej int
}

func (h *recorderHooks) DuplicateAdd(string, string) {
	h.mu.Lock()
	h.dupAdds++
	h.mu.Unlock()
}
func (h *recorderHooks) UpdateMiss(string, string) {
	h.mu.Lock()
	h.updateMiss++
	h.mu.Unlock()
}
func (h *recorderHooks) RemoveMiss(string, string) {
	h.mu.Lock()
	h.removeMiss++
	h.mu.Unlock()
}
func (h *recorderHooks) ReplaceRejected(string, string) {
	h.mu.Lock()
	h.replaceRej++
	h.mu.Unlock()
}

func newTestCollection(t *testing.T, hooks Hooks) *Collection[product] {
	t.Helper()
	opts := Options[product]{Namespace: "products"}
	if hooks != nil {
		opts.Hooks = hooks
	}
	c, err := New[product](opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRequiresNamespace(t *testing.T) {
	if _, err := New[product](Options[product]{}); err == nil {
		t.Fatalf("expected error for missing namespace")
	}
}

// TestAddIdempotent verifies that inserting the same id twice yields exactly
// one copy, with the anomaly visible through hooks only.
func TestAddIdempotent(t *testing.T) {
	h := &recorderHooks{}
	c := newTestCollection(t, h)

	p := product{ID: "1", Name: "Mouse"}
	if !c.Add(p) {
		t.Fatalf("first Add should insert")
	}
	if c.Add(p) {
		t.Fatalf("second Add should be a no-op")
	}

	items := c.Items()
	if len(items) != 1 || items[0] != p {
		t.Fatalf("expected exactly one copy, got %v", items)
	}
	if h.dupAdds != 1 {
		t.Fatalf("expected 1 DuplicateAdd hook, got %d", h.dupAdds)
	}
}

func TestAddInsertsAtHead(t *testing.T) {
	c := newTestCollection(t, nil)
	c.Add(product{ID: "1"})
	c.Add(product{ID: "2"})

	items := c.Items()
	if items[0].ID != "2" || items[1].ID != "1" {
		t.Fatalf("expected newest-first order, got %v", items)
	}
}

// TestRemoveIsTotal verifies that after Remove no item with the id remains,
// whether or not it existed beforehand.
func TestRemoveIsTotal(t *testing.T) {
	h := &recorderHooks{}
	c := newTestCollection(t, h)
	c.Add(product{ID: "1"})
	c.Add(product{ID: "2"})

	if !c.Remove("1") {
		t.Fatalf("Remove of present id should report true")
	}
	if _, ok := c.Lookup("1"); ok {
		t.Fatalf("id 1 still present after Remove")
	}

	// Removing an absent id is a no-op match but still total.
	if c.Remove("1") {
		t.Fatalf("Remove of absent id should report false")
	}
	if h.removeMiss != 1 {
		t.Fatalf("expected 1 RemoveMiss hook, got %d", h.removeMiss)
	}
}

// TestRemoveNotifiesUnconditionally: even a no-op Remove triggers a
// notification pass (re-render is idempotent downstream).
func TestRemoveNotifiesUnconditionally(t *testing.T) {
	c := newTestCollection(t, nil)

	var calls int
	cancel := c.Subscribe(func([]product) { calls++ })
	defer cancel()

	c.Remove("ghost")
	if calls != 1 {
		t.Fatalf("expected notification on no-op Remove, got %d calls", calls)
	}
}

// TestSubscriberNotification: a single Add invokes the callback exactly once
// with the new item at index 0.
func TestSubscriberNotification(t *testing.T) {
	c := newTestCollection(t, nil)
	c.Add(product{ID: "0", Name: "existing"})

	var got [][]product
	cancel := c.Subscribe(func(items []product) {
		got = append(got, items)
	})
	defer cancel()

	c.Add(product{ID: "1", Name: "Order"})

	if len(got) != 1 {
		t.Fatalf("expected exactly one callback, got %d", len(got))
	}
	if got[0][0].ID != "1" {
		t.Fatalf("expected new item at index 0, got %v", got[0])
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	c := newTestCollection(t, nil)

	calls := 0
	cancel := c.Subscribe(func([]product) { calls++ })
	c.Add(product{ID: "1"})
	cancel()
	cancel() // idempotent
	c.Add(product{ID: "2"})

	if calls != 1 {
		t.Fatalf("expected 1 call before unsubscribe, got %d", calls)
	}
}

func TestUpdateAppliesInPlace(t *testing.T) {
	c := newTestCollection(t, nil)
	c.Add(product{ID: "1", Price: 10})
	c.Add(product{ID: "2", Price: 20})

	err := c.Update("1", func(p product) product {
		p.Price = 15
		return p
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, ok := c.Lookup("1")
	if !ok || got.Price != 15 {
		t.Fatalf("expected price 15, got %v ok=%v", got, ok)
	}
	// position preserved: "1" was added first, so it sits at index 1
	if items := c.Items(); items[1].ID != "1" {
		t.Fatalf("Update must not reorder, got %v", items)
	}
}

func TestUpdateMissReturnsTaggedError(t *testing.T) {
	h := &recorderHooks{}
	c := newTestCollection(t, h)

	notified := 0
	cancel := c.Subscribe(func([]product) { notified++ })
	defer cancel()

	err := c.Update("missing", func(p product) product { return p })
	if !errors.Is(err, ErrNoSuchEntity) {
		t.Fatalf("expected ErrNoSuchEntity, got %v", err)
	}
	var miss *MissError
	if !errors.As(err, &miss) || miss.ID != "missing" || miss.Namespace != "products" {
		t.Fatalf("expected MissError with id/namespace, got %#v", err)
	}
	if notified != 0 {
		t.Fatalf("update miss must not notify, got %d calls", notified)
	}
	if h.updateMiss != 1 {
		t.Fatalf("expected 1 UpdateMiss hook, got %d", h.updateMiss)
	}
}

func TestReplaceWholesale(t *testing.T) {
	c := newTestCollection(t, nil)
	c.Add(product{ID: "1"})

	next := []product{{ID: "7"}, {ID: "8"}}
	if err := c.Replace(next); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	items := c.Items()
	if len(items) != 2 || items[0].ID != "7" || items[1].ID != "8" {
		t.Fatalf("expected wholesale replacement in order, got %v", items)
	}

	// mutating the input afterwards must not affect the collection
	next[0].ID = "mutated"
	if c.Items()[0].ID != "7" {
		t.Fatalf("Replace must copy its input")
	}
}

func TestReplaceRejectsDuplicateIDs(t *testing.T) {
	h := &recorderHooks{}
	c := newTestCollection(t, h)
	c.Add(product{ID: "keep"})

	err := c.Replace([]product{{ID: "a"}, {ID: "a"}})
	var dup *DuplicateIDError
	if !errors.As(err, &dup) || dup.ID != "a" {
		t.Fatalf("expected DuplicateIDError for %q, got %v", "a", err)
	}
	// collection unchanged on rejection
	if items := c.Items(); len(items) != 1 || items[0].ID != "keep" {
		t.Fatalf("collection must be unchanged after rejected Replace, got %v", items)
	}
	if h.replaceRej != 1 {
		t.Fatalf("expected 1 ReplaceRejected hook, got %d", h.replaceRej)
	}
}

// TestLaterReplaceWinsOverOptimisticAdd documents the no-ordering-guarantee
// contract: a wholesale refetch landing after an optimistic add simply wins.
func TestLaterReplaceWinsOverOptimisticAdd(t *testing.T) {
	c := newTestCollection(t, nil)
	c.Add(product{ID: "optimistic"})

	if err := c.Replace([]product{{ID: "server-1"}, {ID: "server-2"}}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if _, ok := c.Lookup("optimistic"); ok {
		t.Fatalf("later Replace should have dropped the optimistic item")
	}
}

func TestItemsSnapshotIsolated(t *testing.T) {
	c := newTestCollection(t, nil)
	c.Add(product{ID: "1", Name: "orig"})

	snap := c.Items()
	snap[0].Name = "mutated"

	got, _ := c.Lookup("1")
	if got.Name != "orig" {
		t.Fatalf("Items must return an isolated copy")
	}
}

func TestConcurrentAddsKeepIDsUnique(t *testing.T) {
	c := newTestCollection(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				c.Add(product{ID: "shared"})
			}
		}()
	}
	wg.Wait()

	if c.Len() != 1 {
		t.Fatalf("expected single copy under concurrent duplicate adds, got %d", c.Len())
	}
}
