// Copyright (c) 2025 Tulir Asokan
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package transport

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/tidewise/drivers-comms-protobuf/log"
	"github.com/tidewise/drivers-comms-protobuf/protocol"
)

// Conn is the subset of net.Conn a StreamTransport needs: a byte
// stream with a settable read deadline. Any pipe, socket or serial
// port wrapper satisfying this interface can back a StreamTransport.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadDeadline(t time.Time) error
}

// readChunkSize is how much StreamTransport asks the underlying Conn
// for on each Read call while accumulating a packet.
const readChunkSize = 4096

// StreamTransport implements Transport over a Conn, using
// protocol.ExtractPacket as the acceptance oracle for accumulated
// bytes, in the same accumulate-then-scan style as the teacher's
// FrameSocket.processData, adapted from a length-prefixed push model to
// a pull model driven by ReadPacket's deadlines.
type StreamTransport struct {
	conn           Conn
	maxPayloadSize int
	log            log.Logger

	mu     sync.Mutex
	accum  []byte
	closed bool
}

// NewStreamTransport wraps conn as a Transport. maxPayloadSize bounds
// the payload length ExtractPacket will accept; it should match the
// owning Channel's max message size. A nil logger defaults to
// log.Noop.
func NewStreamTransport(conn Conn, maxPayloadSize int, logger log.Logger) *StreamTransport {
	if logger == nil {
		logger = log.Noop
	}
	return &StreamTransport{
		conn:           conn,
		maxPayloadSize: maxPayloadSize,
		log:            logger.Sub("transport"),
	}
}

// ReadPacket implements Transport.
func (t *StreamTransport) ReadPacket(buf []byte, timeout, firstByteTimeout time.Duration) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}

	deadline := time.Now().Add(timeout)
	firstByteDeadline := time.Now().Add(firstByteTimeout)
	haveFirstByte := len(t.accum) > 0
	chunk := make([]byte, readChunkSize)

	for {
		n := protocol.ExtractPacket(t.accum, t.maxPayloadSize)
		switch {
		case n > 0:
			copied := copy(buf, t.accum[:n])
			t.slide(n)
			return copied, nil
		case n < 0:
			t.log.Debugf("discarding %d bytes while resynchronizing", -n)
			t.slide(-n)
			continue
		}

		now := time.Now()
		if !haveFirstByte && !now.Before(firstByteDeadline) {
			return 0, ErrTimeout
		}
		if !now.Before(deadline) {
			return 0, ErrPacketTimeout
		}

		readDeadline := deadline
		if !haveFirstByte && firstByteDeadline.Before(readDeadline) {
			readDeadline = firstByteDeadline
		}
		if err := t.conn.SetReadDeadline(readDeadline); err != nil {
			return 0, err
		}

		rn, err := t.conn.Read(chunk)
		if rn > 0 {
			t.accum = append(t.accum, chunk[:rn]...)
			haveFirstByte = true
		}
		if err != nil {
			if isTimeoutErr(err) {
				continue
			}
			return 0, err
		}
	}
}

// WritePacket implements Transport, looping until every byte of buf
// has been accepted by the underlying Conn.
func (t *StreamTransport) WritePacket(buf []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrClosed
	}

	for len(buf) > 0 {
		n, err := t.conn.Write(buf)
		if err != nil {
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// Close marks the transport closed; subsequent ReadPacket/WritePacket
// calls fail with ErrClosed. It does not close the underlying Conn,
// which the caller owns.
func (t *StreamTransport) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
}

// slide discards the first n bytes of the accumulation buffer.
func (t *StreamTransport) slide(n int) {
	if n >= len(t.accum) {
		t.accum = t.accum[:0]
		return
	}
	t.accum = append(t.accum[:0], t.accum[n:]...)
}

func isTimeoutErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
