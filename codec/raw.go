package codec

import "bytes"

// Bytes stores []byte values as they are. Decode returns a copy because
// providers may hand out buffers they reuse.
type Bytes struct{}

func (Bytes) Encode(b []byte) ([]byte, error) { return b, nil }
func (Bytes) Decode(b []byte) ([]byte, error) { return bytes.Clone(b), nil }

// String keeps strings as raw UTF-8. Invalid sequences pass through untouched.
type String struct{}

func (String) Encode(s string) ([]byte, error) { return []byte(s), nil }
func (String) Decode(b []byte) (string, error) { return string(b), nil }
