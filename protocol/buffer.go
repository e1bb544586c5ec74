package protocol

// bufferSizeFactor is the policy multiplier applied on top of the
// worst-case single-frame size: headroom to absorb accumulated
// desynchronization garbage between valid frames without forcing the
// transport to discard an in-flight packet. It is policy, not protocol.
const bufferSizeFactor = 10

// BufferSizeFor returns the transport-level buffer size a Channel (or
// any equivalent driver) should allocate to safely hold one frame
// carrying a payload of up to messageSize bytes, plus the policy
// headroom factor.
func BufferSizeFor(messageSize int) (int, error) {
	encodedSize, err := EncodedSize(uint64(messageSize))
	if err != nil {
		return 0, err
	}
	return bufferSizeFactor * (PacketMinOverhead + encodedSize + messageSize), nil
}
