// Package protocol implements the wire framing and authenticated-encryption
// primitives shared by the drivers-comms-protobuf channel: CRC-CCITT
// checksums, a base-128 varint length codec, the sync/length/payload/CRC
// frame codec, and the AES-256-GCM cipher context derived from a
// pre-shared key.
package protocol

const (
	// SYNC0 and SYNC1 are the two-byte prologue that marks a possible
	// frame start.
	SYNC0 = 0xB5
	SYNC1 = 0x62

	// PacketMinSize is the smallest possible framed packet: two sync
	// bytes, a one-byte length field, an empty payload and a two-byte
	// CRC.
	PacketMinSize = 5

	// PacketMinOverhead accounts for two sync bytes, one length byte
	// and two CRC bytes.
	PacketMinOverhead = 5

	// PacketMaxOverhead accounts for two sync bytes, three length
	// bytes and two CRC bytes.
	PacketMaxOverhead = 7

	// MaxPayloadLengthFieldSize is the canonical profile's cap on the
	// varint length field, in bytes.
	MaxPayloadLengthFieldSize = 3

	// MaxPayloadSize is the canonical profile's payload cap, 7*7*7
	// bytes. It is a profile limit, not a field-width limit: 343
	// encodes in two varint groups, while MaxPayloadLengthFieldSize
	// groups can carry values up to 2^21-1.
	MaxPayloadSize = 7 * 7 * 7

	// maxVarintBytes bounds the permissive varint primitive: values
	// that would need more than 8 groups to encode are a domain error.
	maxVarintBytes = 8

	// KeySize is the AES-256-GCM key length, in bytes.
	KeySize = 32

	// IVSize is the size of the fixed, session-lifetime nonce derived
	// alongside the key. AES-GCM ordinarily uses a 96-bit nonce; this
	// implementation uses cipher.NewGCMWithNonceSize to honor the
	// wider nonce the original derivation produces.
	IVSize = 32

	// TagSize is the AES-GCM authentication tag length, in bytes.
	TagSize = 16

	// kdfRounds is the iteration count for the PSK-to-key derivation.
	kdfRounds = 1000000
)
