package gateway

import (
	"encoding/json"
	"testing"
)

func TestDecodeEnvelopeSuccessShape(t *testing.T) {
	got := DecodeEnvelope([]byte(`{"success":true,"data":[{"id":1}]}`))
	if string(got) != `[{"id":1}]` {
		t.Fatalf("got %s", got)
	}
}

func TestDecodeEnvelopeStatusShape(t *testing.T) {
	got := DecodeEnvelope([]byte(`{"status":"ok","data":{"id":7}}`))
	if string(got) != `{"id":7}` {
		t.Fatalf("got %s", got)
	}
}

func TestDecodeEnvelopeBareArray(t *testing.T) {
	raw := []byte(`  [1,2,3]`)
	got := DecodeEnvelope(raw)
	if string(got) != string(raw) {
		t.Fatalf("bare array must pass through, got %s", got)
	}
}

// Idempotence on the canonical shape: unwrapping {"data":X} yields X, and
// unwrapping X again leaves it alone.
func TestDecodeEnvelopeIdempotent(t *testing.T) {
	once := DecodeEnvelope([]byte(`{"data":{"id":"9","name":"x"}}`))
	twice := DecodeEnvelope(once)
	if string(once) != `{"id":"9","name":"x"}` || string(twice) != string(once) {
		t.Fatalf("once=%s twice=%s", once, twice)
	}
}

func TestDecodeEnvelopePassthrough(t *testing.T) {
	cases := []string{
		`{"message":"no data field"}`,
		`{"success":false,"data":{"id":1}}`, // explicit failure flag, not unwrapped
		`"bare string"`,
		`42`,
		``,
		`not json at all`,
	}
	for _, raw := range cases {
		if got := DecodeEnvelope([]byte(raw)); string(got) != raw {
			t.Fatalf("passthrough %q came back as %q", raw, got)
		}
	}
}

func TestDecodeEnvelopeResultIsValidJSON(t *testing.T) {
	got := DecodeEnvelope([]byte(`{"success":true,"data":{"nested":{"deep":true}}}`))
	var v map[string]any
	if err := json.Unmarshal(got, &v); err != nil {
		t.Fatalf("unwrapped payload not valid JSON: %v", err)
	}
}
