package optisync

// Entity is any record addressable by an opaque identifier. Collections key
// membership, updates, and removals on EntityID.
type Entity interface {
	EntityID() string
}
