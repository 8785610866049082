package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version   byte = 1
	kindEntry byte = 1
)

var (
	ErrCorrupt = errors.New("optisync: corrupt prefetch entry")
	magic4     = [...]byte{'O', 'S', 'Y', 'N'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Entry: magic(4) | ver(1) | kind(1=entry) | rev(u64 be) | fetchedAt unix-nano(u64 be) | vlen(u32 be) | payload(vlen)
//
// rev is the scope revision observed when the fetch was issued (0 when
// revision tracking is off). fetchedAt drives the optional TTL check.
func EncodeEntry(rev uint64, fetchedAtUnixNano int64, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + 1 + 1 + 8 + 8 + 4 + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindEntry)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], rev)
	buf.Write(u8[:])

	binary.BigEndian.PutUint64(u8[:], uint64(fetchedAtUnixNano))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

func DecodeEntry(b []byte) (rev uint64, fetchedAtUnixNano int64, payload []byte, err error) {
	const hdr = 4 + 1 + 1 + 8 + 8 + 4
	if len(b) < hdr || !hasMagic(b) || b[4] != version || b[5] != kindEntry {
		return 0, 0, nil, ErrCorrupt
	}

	off := 6

	rev = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	fetchedAtUnixNano = int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen < 0 || vlen != len(b)-off { // exact-length check rejects trailing bytes
		return 0, 0, nil, ErrCorrupt
	}

	return rev, fetchedAtUnixNano, b[off : off+vlen], nil
}
