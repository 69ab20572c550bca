package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"time"
)

func mustDecodeRecord(t *testing.T, b []byte) Record {
	t.Helper()
	r, err := DecodeRecord(b)
	if err != nil {
		t.Fatalf("DecodeRecord error: %v", err)
	}
	return r
}

func TestRecordRTEmptyAndNonEmpty(t *testing.T) {
	at := time.Date(2024, 3, 9, 10, 11, 12, 13, time.UTC)
	cases := [][]byte{nil, []byte("hello"), {0, 1, 2, 3, 4}}
	for _, payload := range cases {
		r := mustDecodeRecord(t, EncodeRecord(at, payload))
		if !r.Written.Equal(at) {
			t.Fatalf("written mismatch: got %v want %v", r.Written, at)
		}
		if !bytes.Equal(r.Payload, payload) {
			t.Fatalf("payload mismatch: got %x want %x", r.Payload, payload)
		}
	}
}

func TestRecordWrittenIsUTC(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	at := time.Date(2024, 3, 9, 10, 0, 0, 0, loc)
	r := mustDecodeRecord(t, EncodeRecord(at, nil))
	if r.Written.Location() != time.UTC || !r.Written.Equal(at) {
		t.Fatalf("written=%v want %v in UTC", r.Written, at)
	}
}

func TestRecordRejectsTrailingBytes(t *testing.T) {
	enc := EncodeRecord(time.Now(), []byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, err := DecodeRecord(enc); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt on trailing bytes, got %v", err)
	}
}

func TestRecordCorruptHeadersAndLengths(t *testing.T) {
	enc := EncodeRecord(time.Unix(1, 0), []byte("abc"))

	mutate := func(f func(b []byte) []byte) []byte {
		return f(append([]byte(nil), enc...))
	}
	cases := map[string][]byte{
		"bad magic":     mutate(func(b []byte) []byte { b[0] = 'X'; return b }),
		"bad version":   mutate(func(b []byte) []byte { b[4] = version + 1; return b }),
		"bad kind":      mutate(func(b []byte) []byte { b[5] = kindRecord + 1; return b }),
		"short":         mutate(func(b []byte) []byte { return b[:len(b)-1] }),
		"header only":   mutate(func(b []byte) []byte { return b[:recordHeader-1] }),
		"vlen overflow": mutate(func(b []byte) []byte { binary.BigEndian.PutUint32(b[14:18], 0xFFFFFFFF); return b }),
		"foreign json":  []byte(`{"id":"1","title":"Dune"}`),
		"empty":         nil,
	}
	for name, b := range cases {
		if _, err := DecodeRecord(b); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("%s: expected ErrCorrupt, got %v", name, err)
		}
	}
}

func TestRecordPayloadAliasesInput(t *testing.T) {
	enc := EncodeRecord(time.Unix(0, 0), []byte("abc"))
	r := mustDecodeRecord(t, enc)
	enc[len(enc)-1] = 'z'
	if string(r.Payload) != "abz" {
		t.Fatalf("payload should alias the encoded buffer, got %q", r.Payload)
	}
}
