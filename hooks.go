package optisync

// Hooks lightweight callbacks for high-signal events. Collection and prefetch
// anomalies are swallowed on the caller-facing path (a stale view beats a
// broken one); hooks make them observable anyway. Implementations MUST be
// cheap and non-blocking: these fire on hot paths, sometimes under callers'
// render loops.
type Hooks interface {
	// Add was a no-op because an item with the same id is already present.
	DuplicateAdd(namespace, id string)

	// Update targeted an id not present in the collection.
	UpdateMiss(namespace, id string)

	// Remove matched nothing. Subscribers are still notified.
	RemoveMiss(namespace, id string)

	// Replace was rejected because the incoming list carried a duplicate id.
	ReplaceRejected(namespace, id string)

	// A prefetch entry was deleted by the store on read.
	// reason is one of "corrupt", "expired", "rev_mismatch", "value_decode".
	PrefetchSelfHeal(storageKey, reason string)

	// Provider returned ok=false on a prefetch Set (backpressure/eviction).
	PrefetchSetRejected(storageKey string)

	// RevStore errors (snapshot or bump).
	RevSnapshotError(storageKey string, err error)
	RevBumpError(storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) DuplicateAdd(string, string)       {}
func (NopHooks) UpdateMiss(string, string)         {}
func (NopHooks) RemoveMiss(string, string)         {}
func (NopHooks) ReplaceRejected(string, string)    {}
func (NopHooks) PrefetchSelfHeal(string, string)   {}
func (NopHooks) PrefetchSetRejected(string)        {}
func (NopHooks) RevSnapshotError(string, error)    {}
func (NopHooks) RevBumpError(string, error)        {}
