// Package protomsg adapts protocol-buffer messages to the Encoder and
// Decoder interfaces the channel package uses to serialize and
// deserialize payloads, the way the original C++ implementation
// templated its Channel over Google's protocol buffer C++ API.
package protomsg

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Encoder wraps a proto.Message so it can be framed directly: the
// message's serialized size is queried once and reused to size the
// frame before serializing, mirroring proto.Message.ByteSizeLong()
// followed by SerializeWithCachedSizesToArray() in the C++ source.
type Encoder struct {
	msg proto.Message

	marshaled bool
	cached    []byte
	err       error
}

// NewEncoder returns an Encoder for msg.
func NewEncoder(msg proto.Message) *Encoder {
	return &Encoder{msg: msg}
}

func (e *Encoder) marshal() {
	if !e.marshaled {
		e.cached, e.err = proto.Marshal(e.msg)
		e.marshaled = true
	}
}

// ByteLength returns the marshaled size of the wrapped message,
// marshaling and caching it on first call so a subsequent
// SerializeInto does not marshal twice.
func (e *Encoder) ByteLength() int {
	e.marshal()
	return len(e.cached)
}

// SerializeInto copies the cached marshaled form of the message into
// buf. Callers are expected to call ByteLength first, as
// EncodeFrameMessage does, so the cache is always warm here.
func (e *Encoder) SerializeInto(buf []byte) (int, error) {
	e.marshal()
	if e.err != nil {
		return 0, fmt.Errorf("protomsg: marshal failed: %w", e.err)
	}
	return copy(buf, e.cached), nil
}

// Decoder deserializes bytes into a fresh instance of a proto.Message
// type New produces. It is generic over the concrete message type so
// callers get a typed result back instead of having to type-assert a
// proto.Message.
type Decoder[M proto.Message] struct {
	New func() M
}

// NewDecoder returns a Decoder that produces fresh messages with
// newMessage.
func NewDecoder[M proto.Message](newMessage func() M) *Decoder[M] {
	return &Decoder[M]{New: newMessage}
}

// TryDeserialize unmarshals payload into a freshly constructed message.
// A malformed payload is reported as an error, never a panic — the
// channel translates it into its own invalid-message error.
func (d *Decoder[M]) TryDeserialize(payload []byte) (M, error) {
	msg := d.New()
	if err := proto.Unmarshal(payload, msg); err != nil {
		var zero M
		return zero, fmt.Errorf("protomsg: unmarshal failed: %w", err)
	}
	return msg, nil
}
