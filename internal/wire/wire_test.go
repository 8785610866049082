package wire

import (
	"bytes"
	"testing"
)

func TestEntryRoundTrip(t *testing.T) {
	payload := []byte(`[{"id":"1"}]`)
	b := EncodeEntry(7, 1234567890, payload)

	rev, at, got, err := DecodeEntry(b)
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if rev != 7 || at != 1234567890 || !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: rev=%d at=%d payload=%q", rev, at, got)
	}
}

func TestEntryEmptyPayload(t *testing.T) {
	b := EncodeEntry(0, 0, nil)
	_, _, got, err := DecodeEntry(b)
	if err != nil {
		t.Fatalf("DecodeEntry: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty payload, got %q", got)
	}
}

func TestDecodeRejectsCorrupt(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte("short"),
		[]byte("XXXX------------------------"),
		append(EncodeEntry(1, 1, []byte("x")), 0xFF), // trailing byte
	}
	for i, b := range cases {
		if _, _, _, err := DecodeEntry(b); err != ErrCorrupt {
			t.Fatalf("case %d: expected ErrCorrupt, got %v", i, err)
		}
	}
}

func TestDecodeRejectsWrongKind(t *testing.T) {
	b := EncodeEntry(1, 1, []byte("x"))
	b[5] = 99
	if _, _, _, err := DecodeEntry(b); err != ErrCorrupt {
		t.Fatalf("expected ErrCorrupt for unknown kind, got %v", err)
	}
}
