// Package commsprotobuf implements a point-to-point framed message
// channel for carrying pre-serialized structured messages (protocol
// buffers, in the default binding) over an unreliable byte-oriented
// transport such as a serial line, pipe or socket.
//
// A Channel composes the protocol package's frame codec with an
// optional AES-256-GCM authenticated-encryption envelope over a
// transport.Transport. On write it serializes a message, optionally
// encrypts it, frames it, and hands the bytes to the transport. On read
// it pulls exactly one frame from the transport, optionally decrypts
// it, and deserializes the result.
//
//	tr := transport.NewStreamTransport(conn, protocol.MaxPayloadSize, logger)
//	ch, err := commsprotobuf.NewChannel(tr, protocol.MaxPayloadSize)
//	if err != nil {
//		// handle
//	}
//	enc := protomsg.NewEncoder(msg)
//	if err := ch.Write(enc); err != nil {
//		// handle
//	}
//
// See protocol for the wire format and cipher construction, and
// protomsg for the protocol-buffer Encoder/Decoder adapter.
package commsprotobuf
