package util

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// CanonicalRoute returns a deterministic route key for a path plus query:
// query parameters are sorted by name (values keep their order), so
// "/products?page=2&sort=name" and the same query written in another order
// map to one key.
func CanonicalRoute(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	names := make([]string, 0, len(query))
	for n := range query {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(path)
	sep := byte('?')
	for _, n := range names {
		for _, v := range query[n] {
			b.WriteByte(sep)
			sep = '&'
			b.WriteString(url.QueryEscape(n))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// HashedKey compresses a long route key under a prefix with a short hash,
// keeping provider keys bounded regardless of query size.
func HashedKey(prefix, routeKey string) string {
	sum := sha256.Sum256([]byte(routeKey))
	return fmt.Sprintf("%s:%x", prefix, sum)[:len(prefix)+1+16] // prefix + ":" + first 16 hex chars
}
