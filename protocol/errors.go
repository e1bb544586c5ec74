package protocol

import "errors"

// Error kinds surfaced by the framing and cipher primitives. FrameReject
// is deliberately absent here: ExtractPacket expresses frame rejection
// as a negative return value, never as an error, so the transport can
// resynchronize without allocating.
var (
	// ErrBufferTooSmall is returned by EncodeFrame, EncodeLength and
	// ValidateEncodingBufferSize when the caller-supplied space cannot
	// hold the encoded result.
	ErrBufferTooSmall = errors.New("protocol: buffer too small")

	// ErrLengthDomain is returned when a length value would need more
	// than 8 varint groups to encode.
	ErrLengthDomain = errors.New("protocol: length exceeds encodable domain")

	// ErrPayloadTooLarge is returned by GetPayload when the frame's
	// declared payload runs past the end of the supplied buffer.
	ErrPayloadTooLarge = errors.New("protocol: payload extends past buffer end")

	// ErrEncryptionFailed is returned when the AES-GCM encrypt
	// operation itself fails (as opposed to a bad key).
	ErrEncryptionFailed = errors.New("protocol: encryption failed")

	// ErrDecryptionFailed is returned on GCM tag mismatch, truncated
	// ciphertext, or any other decrypt-time failure. The caller must
	// treat the frame as unusable and drop it.
	ErrDecryptionFailed = errors.New("protocol: decryption failed")

	// ErrKeyDerivation is a fatal construction error: the PSK-to-key
	// derivation did not yield the expected key material.
	ErrKeyDerivation = errors.New("protocol: key derivation failed")

	// ErrInternal marks a protocol-level invariant violation, such as
	// a frame-boundary arithmetic disagreement between EncodeFrame and
	// GetPayload. It indicates a bug in this package, not bad input.
	ErrInternal = errors.New("protocol: internal invariant violated")
)
