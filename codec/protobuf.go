package codec

import (
	"errors"

	"google.golang.org/protobuf/proto"
)

var errNilMessage = errors.New("codec: nil protobuf message")

// Protobuf stores proto messages in their binary wire form.
type Protobuf[T proto.Message] struct {
	new func() T // constructor for a concrete message (e.g., func() *mypb.Book { return &mypb.Book{} })
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	if !v.ProtoReflect().IsValid() {
		return nil, errNilMessage
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(v)
}

func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
