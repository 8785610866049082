// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/optisync"
//	"github.com/unkn0wn-root/optisync/hooks/async"
//	"github.com/unkn0wn-root/optisync/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SelfHealEvery:     10, // sample logs: ~every 10th self-heal
//	    DuplicateAddEvery: 1,  // log every duplicate add
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	products, _ := optisync.New[Product](optisync.Options[Product]{
//	    Namespace: "products",
//	    Hooks:     hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/optisync"
)

type Hooks struct {
	inner optisync.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ optisync.Hooks = (*Hooks)(nil)

func New(inner optisync.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) DuplicateAdd(ns, id string)    { h.try(func() { h.inner.DuplicateAdd(ns, id) }) }
func (h *Hooks) UpdateMiss(ns, id string)      { h.try(func() { h.inner.UpdateMiss(ns, id) }) }
func (h *Hooks) RemoveMiss(ns, id string)      { h.try(func() { h.inner.RemoveMiss(ns, id) }) }
func (h *Hooks) ReplaceRejected(ns, id string) { h.try(func() { h.inner.ReplaceRejected(ns, id) }) }
func (h *Hooks) PrefetchSelfHeal(k, r string)  { h.try(func() { h.inner.PrefetchSelfHeal(k, r) }) }
func (h *Hooks) PrefetchSetRejected(k string)  { h.try(func() { h.inner.PrefetchSetRejected(k) }) }
func (h *Hooks) RevSnapshotError(k string, err error) {
	h.try(func() { h.inner.RevSnapshotError(k, err) })
}
func (h *Hooks) RevBumpError(k string, err error) {
	h.try(func() { h.inner.RevBumpError(k, err) })
}
