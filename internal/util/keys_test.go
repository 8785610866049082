package util

import (
	"net/url"
	"testing"
)

func TestCanonicalRouteSortsParams(t *testing.T) {
	a := CanonicalRoute("/products", url.Values{"sort": {"name"}, "page": {"2"}})
	b := CanonicalRoute("/products", url.Values{"page": {"2"}, "sort": {"name"}})
	if a != b {
		t.Fatalf("same query in different order produced %q vs %q", a, b)
	}
	if a != "/products?page=2&sort=name" {
		t.Fatalf("unexpected canonical form %q", a)
	}
}

func TestCanonicalRouteNoQuery(t *testing.T) {
	if got := CanonicalRoute("/orders", nil); got != "/orders" {
		t.Fatalf("got %q", got)
	}
}

func TestHashedKeyBounded(t *testing.T) {
	long := CanonicalRoute("/products", url.Values{"search": {string(make([]byte, 4096))}})
	k := HashedKey("route:products", long)
	if len(k) != len("route:products")+1+16 {
		t.Fatalf("unexpected key length %d (%q)", len(k), k)
	}
	if k != HashedKey("route:products", long) {
		t.Fatalf("hashing must be deterministic")
	}
}
