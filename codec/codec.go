// Package codec turns repository values into bytes and back. repository.KV
// frames whatever a Codec produces in its own record envelope, so codecs never
// see or emit framing.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
