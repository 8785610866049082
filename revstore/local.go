package revstore

import (
	"context"
	"sync"
	"time"
)

type localRevEntry struct {
	Rev       uint64
	UpdatedAt time.Time
}

// Local keeps revisions in-process (default). Optional cleanup loop prunes
// long-inactive scopes.
type Local struct {
	mu     sync.RWMutex
	revs   map[string]localRevEntry
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup

	retention time.Duration
}

var _ RevStore = (*Local)(nil)

func NewLocal(cleanupInterval, retention time.Duration) *Local {
	s := &Local{
		revs:      make(map[string]localRevEntry),
		retention: retention,
	}
	if cleanupInterval > 0 && retention > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup(retention)
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Local) Snapshot(_ context.Context, scope string) (uint64, error) {
	s.mu.RLock()
	e, ok := s.revs[scope]
	s.mu.RUnlock()
	if !ok {
		return 0, nil
	}
	return e.Rev, nil
}

func (s *Local) Bump(_ context.Context, scope string) (uint64, error) {
	now := time.Now()
	s.mu.Lock()
	e := s.revs[scope]
	e.Rev++
	e.UpdatedAt = now
	s.revs[scope] = e
	s.mu.Unlock()
	return e.Rev, nil
}

func (s *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	s.mu.Lock()
	for k, e := range s.revs {
		if !e.UpdatedAt.IsZero() && e.UpdatedAt.Before(cutoff) {
			delete(s.revs, k)
		}
	}
	s.mu.Unlock()
}

func (s *Local) Close(_ context.Context) error {
	if s.stopCh != nil {
		close(s.stopCh)
		s.ticker.Stop() // stop ticker before waiting
		s.wg.Wait()
	}
	return nil
}
