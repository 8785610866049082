// Package optisync implements the client-side data synchronization layer of a
// REST-backed admin console: per-entity-type collections with optimistic
// mutation and subscriber notification, plus the shared Logger and Hooks
// contracts used across subpackages.
//
// Components:
//   - Collection[V]: ordered, id-unique list store per entity type with
//     add/update/remove/replace and synchronous subscriber callbacks. Used to
//     apply optimistic updates ahead of server confirmation.
//   - prefetch.Store[V]: route-keyed speculative fetch cache over a byte
//     Provider (Ristretto, BigCache, Redis) with hover-dwell scheduling and
//     at-most-one in-flight fetch per route key.
//   - gateway.Client: HTTP gateway that decodes heterogeneous response
//     envelopes once at the boundary and maps status codes to a small error
//     taxonomy.
//   - session.Manager: explicit session state machine (anonymous ->
//     authenticating -> authenticated) with a static role-to-permission table.
//   - client.Resource[V]: typed CRUD surface combining gateway and collection,
//     with placeholder-id optimistic create and rollback on failure.
//
// Instances are constructed explicitly and injected; there is no package-level
// shared state. Collection mutations notify subscribers synchronously on the
// mutating call's stack:
//
//	products, _ := optisync.New[Product](optisync.Options[Product]{Namespace: "products"})
//	cancel := products.Subscribe(func(items []Product) { render(items) })
//	defer cancel()
//	products.Add(p) // subscriber runs before Add returns
package optisync
