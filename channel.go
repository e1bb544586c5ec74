package commsprotobuf

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tidewise/drivers-comms-protobuf/log"
	"github.com/tidewise/drivers-comms-protobuf/protocol"
	"github.com/tidewise/drivers-comms-protobuf/transport"
)

// Channel composes protocol's frame codec with an optional AES-256-GCM
// envelope over a transport.Transport. Reads and writes share one io
// buffer, matching the reference design's single io_buffer. Write, the
// Read functions and SetEncryptionKey all hold the same mutex for their
// whole duration, so calls on one Channel never interleave: a Read
// waiting on the transport holds off a concurrent Write until it
// returns.
type Channel struct {
	id        uuid.UUID
	transport transport.Transport
	log       log.Logger

	maxMessageSize int

	timeout          time.Duration
	firstByteTimeout time.Duration

	// pendingKey holds a WithEncryptionKey option's PSK until NewChannel
	// can apply it after the buffers below exist.
	pendingKey []byte

	// pendingErr carries a failure from an option that cannot report an
	// error directly, such as WithLogFile failing to open its file.
	pendingErr error

	mu     sync.Mutex
	ioBuf  []byte
	cipher *protocol.CipherContext

	plaintextBuf  []byte
	ciphertextBuf []byte
}

// NewChannel constructs a Channel over transport, accepting messages
// (and their optionally-encrypted encoding) up to maxMessageSize bytes.
// It allocates the io buffer sized per protocol.BufferSizeFor before
// applying any options, so WithEncryptionKey can resize it immediately.
func NewChannel(t transport.Transport, maxMessageSize int, opts ...Option) (*Channel, error) {
	ioBuf, err := protocol.BufferSizeFor(maxMessageSize)
	if err != nil {
		return nil, fmt.Errorf("commsprotobuf: sizing io buffer: %w", err)
	}

	c := &Channel{
		id:               uuid.New(),
		transport:        t,
		log:              log.Noop,
		maxMessageSize:   maxMessageSize,
		timeout:          defaultTimeout,
		firstByteTimeout: defaultFirstByteTimeout,
		ioBuf:            make([]byte, ioBuf),
	}

	for _, opt := range opts {
		opt(c)
	}
	if c.pendingErr != nil {
		return nil, fmt.Errorf("commsprotobuf: %w", c.pendingErr)
	}
	c.log = c.log.Sub(c.id.String())

	if c.pendingKey != nil {
		if err := c.SetEncryptionKey(c.pendingKey); err != nil {
			return nil, err
		}
		c.pendingKey = nil
	}

	return c, nil
}

// SetEncryptionKey derives a fresh AES-256-GCM cipher context from psk
// and resizes the channel's buffers to accommodate the ciphertext
// overhead, replacing any cipher context set by a prior call. Passing
// nil disables encryption and shrinks the buffers back to their
// plaintext sizing.
func (c *Channel) SetEncryptionKey(psk []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if psk == nil {
		c.cipher = nil
		c.plaintextBuf = nil
		c.ciphertextBuf = nil
		ioBuf, err := protocol.BufferSizeFor(c.maxMessageSize)
		if err != nil {
			return fmt.Errorf("commsprotobuf: sizing io buffer: %w", err)
		}
		c.ioBuf = make([]byte, ioBuf)
		return nil
	}

	cipher, err := protocol.NewCipherContext(psk)
	if err != nil {
		return fmt.Errorf("commsprotobuf: %w", err)
	}

	ciphertextBound := c.maxMessageSize + protocol.MaxCiphertextOverhead
	ioBuf, err := protocol.BufferSizeFor(ciphertextBound)
	if err != nil {
		return fmt.Errorf("commsprotobuf: sizing io buffer: %w", err)
	}
	plaintextBuf, err := protocol.BufferSizeFor(c.maxMessageSize)
	if err != nil {
		return fmt.Errorf("commsprotobuf: sizing plaintext buffer: %w", err)
	}

	c.cipher = cipher
	c.ioBuf = make([]byte, ioBuf)
	c.plaintextBuf = make([]byte, plaintextBuf)
	c.ciphertextBuf = make([]byte, ciphertextBound)
	return nil
}

// Write serializes msg, optionally encrypts it, frames the result, and
// blocks until the transport has accepted every byte.
func (c *Channel) Write(msg Encoder) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	msgLen := msg.ByteLength()
	if msgLen > c.maxMessageSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrMessageTooLarge, msgLen, c.maxMessageSize)
	}

	if c.cipher == nil {
		n, err := protocol.EncodeFrameMessage(c.ioBuf, msg)
		if err != nil {
			return err
		}
		return c.transport.WritePacket(c.ioBuf[:n])
	}

	n, err := msg.SerializeInto(c.plaintextBuf)
	if err != nil {
		return fmt.Errorf("commsprotobuf: serializing message: %w", err)
	}

	const tagSize = protocol.TagSize
	ciphertextLen, tag, err := c.cipher.Encrypt(c.ciphertextBuf[tagSize:], c.plaintextBuf[:n])
	if err != nil {
		return err
	}
	copy(c.ciphertextBuf[:tagSize], tag[:])
	payload := c.ciphertextBuf[:tagSize+ciphertextLen]

	frameLen, err := protocol.EncodeFrame(c.ioBuf, payload)
	if err != nil {
		return err
	}
	return c.transport.WritePacket(c.ioBuf[:frameLen])
}

// readFrame pulls exactly one frame from the transport and returns its
// payload, decrypted if a cipher context is set. The returned slice
// aliases channel-owned buffers and is only valid until the next
// Read/Write call.
func (c *Channel) readFrame(timeout, firstByteTimeout time.Duration) ([]byte, error) {
	n, err := c.transport.ReadPacket(c.ioBuf, timeout, firstByteTimeout)
	if err != nil {
		return nil, err
	}

	payload, err := protocol.GetPayload(c.ioBuf[:n])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if c.cipher == nil {
		return payload, nil
	}

	if len(payload) < protocol.TagSize {
		return nil, fmt.Errorf("%w: encrypted payload shorter than tag size", protocol.ErrDecryptionFailed)
	}
	var tag protocol.Tag
	copy(tag[:], payload[:protocol.TagSize])
	ciphertext := payload[protocol.TagSize:]

	plaintextLen, err := c.cipher.Decrypt(c.plaintextBuf, ciphertext, tag)
	if err != nil {
		return nil, err
	}
	return c.plaintextBuf[:plaintextLen], nil
}

// Read pulls one frame using the channel's configured timeout and
// first-byte timeout, and deserializes it with dec.
func Read[M any](c *Channel, dec Decoder[M]) (M, error) {
	return ReadDeadlines(c, dec, c.timeout, c.firstByteTimeout)
}

// ReadTimeout is like Read but overrides the total wall-clock bound for
// this call only, keeping the channel's configured first-byte timeout.
func ReadTimeout[M any](c *Channel, dec Decoder[M], timeout time.Duration) (M, error) {
	return ReadDeadlines(c, dec, timeout, c.firstByteTimeout)
}

// ReadDeadlines is like Read but overrides both the total wall-clock
// bound and the first-byte bound for this call only.
//
// A frame that fails deserialization raises ErrInvalidMessage
// immediately: the frame's CRC (and, if encryption is enabled, its GCM
// tag) already guarantees byte integrity, so retrying the same bytes
// would only reproduce the same failure.
func ReadDeadlines[M any](c *Channel, dec Decoder[M], timeout, firstByteTimeout time.Duration) (M, error) {
	var zero M

	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.readFrame(timeout, firstByteTimeout)
	if err != nil {
		return zero, err
	}

	msg, err := dec.TryDeserialize(payload)
	if err != nil {
		c.log.Warnf("dropping unparseable message: %v", err)
		return zero, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	return msg, nil
}

// BufferSizeFor is Channel's convenience mirror of
// protocol.BufferSizeFor, letting a caller size its own transport
// buffers without constructing a Channel first.
func BufferSizeFor(messageSize int) (int, error) {
	return protocol.BufferSizeFor(messageSize)
}
