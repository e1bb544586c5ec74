package commsprotobuf

import "github.com/tidewise/drivers-comms-protobuf/protocol"

// Encoder is anything Channel.Write can frame directly: a message that
// can report its own serialized length and serialize itself into a
// caller-supplied buffer. protomsg.Encoder satisfies this for any
// proto.Message; it is a type alias of protocol.EncodableMessage so
// callers never need to import protocol just to name the interface.
type Encoder = protocol.EncodableMessage

// Decoder deserializes a validated frame payload into a message of
// type M. protomsg.Decoder[M] satisfies this for any proto.Message
// type. It is intentionally structural (not exported as a concrete
// interface embedding) so any hand-written adapter can implement it
// without importing this package.
type Decoder[M any] interface {
	TryDeserialize(payload []byte) (M, error)
}
