package codec

import "encoding/json"

// JSON is the default codec. Matches the wire shape the REST backend speaks,
// so prefetched payloads can be stored without transcoding.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
