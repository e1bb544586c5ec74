// Package transport defines the byte-oriented stream contract the
// channel package reads and writes framed packets through, along with
// a concrete implementation over any io.ReadWriter that supports read
// deadlines (net.Conn, most notably).
//
// The transport is treated as an external collaborator by the framing
// and cipher packages: it is the thing that actually moves bytes across
// a serial line, pipe or socket and knows about timeouts, while
// protocol.ExtractPacket tells it, byte-buffer in hand, whether it has
// accumulated a complete frame yet.
package transport

import (
	"errors"
	"time"
)

// Transport is the interface the channel package drives to move framed
// bytes across an unreliable byte stream. Implementations use
// protocol.ExtractPacket as the acceptance oracle for ReadPacket:
// negative returns discard bytes and resynchronize, zero means "keep
// reading", and a positive return is a complete, CRC-validated frame.
type Transport interface {
	// ReadPacket blocks until a complete frame is available, timeout
	// elapses, or firstByteTimeout elapses without any byte arriving.
	// It returns the number of bytes written into buf.
	ReadPacket(buf []byte, timeout, firstByteTimeout time.Duration) (int, error)

	// WritePacket blocks until every byte of buf has been handed to
	// the underlying stream.
	WritePacket(buf []byte) error
}

var (
	// ErrTimeout is returned when no byte arrives within
	// firstByteTimeout of starting a read.
	ErrTimeout = errors.New("transport: timed out waiting for first byte")

	// ErrPacketTimeout is returned when a partial packet has been
	// observed but does not complete before timeout elapses. Bytes
	// already accumulated are retained for the next ReadPacket call.
	ErrPacketTimeout = errors.New("transport: timed out waiting for packet completion")

	// ErrClosed is returned by ReadPacket/WritePacket once the
	// transport has been closed.
	ErrClosed = errors.New("transport: closed")
)
