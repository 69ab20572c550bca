package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	version    byte = 1
	kindRecord byte = 1

	recordHeader = 4 + 1 + 1 + 8 + 4
)

var (
	ErrCorrupt = errors.New("throughcache: corrupt record")
	magic4     = [...]byte{'T', 'C', 'R', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Record is one stored value as written by repository.KV.
type Record struct {
	Written time.Time // UTC, nanosecond precision
	Payload []byte
}

// EncodeRecord frames payload for a byte store:
//
//	magic(4) | ver(1) | kind(1=record) | written(i64 be, unix nanos) | vlen(u32 be) | payload(vlen)
func EncodeRecord(written time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(recordHeader + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindRecord)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], uint64(written.UnixNano()))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeRecord is the inverse of EncodeRecord. Payload aliases b.
// Anything that is not exactly one well-formed record is ErrCorrupt.
func DecodeRecord(b []byte) (Record, error) {
	if len(b) < recordHeader || !hasMagic(b) || b[4] != version || b[5] != kindRecord {
		return Record{}, ErrCorrupt
	}
	off := 6

	nanos := int64(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if vlen != len(b)-off { // short or trailing bytes
		return Record{}, ErrCorrupt
	}

	return Record{
		Written: time.Unix(0, nanos).UTC(),
		Payload: b[off : off+vlen],
	}, nil
}
