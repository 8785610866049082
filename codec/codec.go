// Package codec defines the serialization boundary used by the prefetch store
// and session storage: values V to/from []byte.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
