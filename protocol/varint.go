package protocol

import "fmt"

// EncodedSize returns the number of 7-bit groups needed to encode
// length in the base-128 little-endian varint format. It fails with
// ErrLengthDomain if length would require more than 8 groups.
func EncodedSize(length uint64) (int, error) {
	size := 0
	for l := length; l != 0; l >>= 7 {
		size++
	}
	if size == 0 {
		size = 1
	}
	if size > maxVarintBytes {
		return 0, fmt.Errorf("%w: %d needs more than %d varint groups", ErrLengthDomain, length, maxVarintBytes)
	}
	return size, nil
}

// EncodeLength writes length into buf as a base-128 little-endian
// varint, every group but the last carrying the high continuation bit,
// and returns the number of bytes written. It fails with
// ErrBufferTooSmall if buf is not large enough, or ErrLengthDomain if
// length cannot be encoded within 8 groups.
func EncodeLength(buf []byte, length uint64) (int, error) {
	size, err := EncodedSize(length)
	if err != nil {
		return 0, err
	}
	if len(buf) < size {
		return 0, fmt.Errorf("%w: need %d bytes to encode %d, have %d", ErrBufferTooSmall, size, length, len(buf))
	}

	remaining := length
	for i := 0; i < size; i++ {
		b := byte(remaining & 0x7F)
		remaining >>= 7
		if i < size-1 {
			b |= 0x80
		}
		buf[i] = b
	}
	return size, nil
}

// ParseLength decodes a base-128 little-endian varint from the front of
// buf, consuming at most 8 bytes. It returns the decoded value and the
// number of bytes consumed. ok is false when the terminating byte (high
// bit clear) was not found within the allowed window — either because
// buf ended first (an incomplete stream, possibly still growing) or
// because 8 groups were consumed without termination (a domain error).
// n is 0 whenever ok is false, so callers distinguish the two cases by
// comparing len(buf) to 8 (or to a narrower window of their own, as
// ExtractPacket does).
func ParseLength(buf []byte) (value uint64, n int, ok bool) {
	maxLen := len(buf)
	if maxLen > maxVarintBytes {
		maxLen = maxVarintBytes
	}
	for i := 0; i < maxLen; i++ {
		b := buf[i]
		value |= uint64(b&0x7F) << (7 * uint(i))
		if b&0x80 == 0 {
			return value, i + 1, true
		}
	}
	return 0, 0, false
}
