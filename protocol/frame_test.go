package protocol

import (
	"bytes"
	"testing"
)

func TestExtractPacketCompleteFrame(t *testing.T) {
	buf := []byte{0xB5, 0x62, 0x05, 1, 2, 3, 4, 5, 0x37, 0xF0}
	n := ExtractPacket(buf, 100)
	if n != 10 {
		t.Fatalf("ExtractPacket = %d, want 10", n)
	}
	payload, err := GetPayload(buf[:n])
	if err != nil {
		t.Fatalf("GetPayload: %v", err)
	}
	if !bytes.Equal(payload, []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("GetPayload = %v, want [1 2 3 4 5]", payload)
	}
}

func TestExtractPacketNoSync(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 0xB5}
	if n := ExtractPacket(buf, 100); n != -5 {
		t.Fatalf("ExtractPacket = %d, want -5", n)
	}
}

func TestExtractPacketNoSyncAtAll(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	if n := ExtractPacket(buf, 100); n != -4 {
		t.Fatalf("ExtractPacket = %d, want -4", n)
	}
}

func TestExtractPacketBadCRC(t *testing.T) {
	buf := []byte{0xB5, 0x62, 0x05, 1, 2, 3, 4, 5, 0x38, 0xF0}
	if n := ExtractPacket(buf, 100); n != -1 {
		t.Fatalf("ExtractPacket = %d, want -1", n)
	}
}

func TestExtractPacketOverlongVarint(t *testing.T) {
	buf := []byte{0xB5, 0x62, 0x80, 0x80, 0x80}
	if n := ExtractPacket(buf, 100); n != -1 {
		t.Fatalf("ExtractPacket = %d, want -1", n)
	}
}

func TestExtractPacketIncompletePrefix(t *testing.T) {
	full := []byte{0xB5, 0x62, 0x05, 1, 2, 3, 4, 5, 0x37, 0xF0}
	for i := 0; i < len(full); i++ {
		if n := ExtractPacket(full[:i], 100); n != 0 {
			t.Fatalf("ExtractPacket(prefix %d) = %d, want 0", i, n)
		}
	}
}

func TestExtractPacketBadSecondSync(t *testing.T) {
	buf := []byte{0xB5, 0x00, 0x05, 1, 2, 3, 4, 5, 0x37, 0xF0}
	if n := ExtractPacket(buf, 100); n != -1 {
		t.Fatalf("ExtractPacket = %d, want -1", n)
	}
}

func TestExtractPacketPayloadExceedsMax(t *testing.T) {
	buf := make([]byte, PacketMinSize+2)
	n, err := EncodeFrame(buf, []byte{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := ExtractPacket(buf[:n], 1); got != -1 {
		t.Fatalf("ExtractPacket with payload over max = %d, want -1", got)
	}
}

func TestExtractPacketSingleBitFlipRejected(t *testing.T) {
	base := []byte{0xB5, 0x62, 0x05, 1, 2, 3, 4, 5, 0x37, 0xF0}
	// Flip every bit of the payload and CRC. The length byte is left
	// alone: a flip there can declare a frame longer than the buffer,
	// which ExtractPacket answers with 0 as for any incomplete frame.
	for i := 3; i < len(base); i++ {
		for bit := 0; bit < 8; bit++ {
			flipped := append([]byte(nil), base...)
			flipped[i] ^= 1 << bit
			if bytes.Equal(flipped, base) {
				continue
			}
			if got := ExtractPacket(flipped, 100); got != -1 {
				t.Errorf("byte %d bit %d: ExtractPacket = %d, want -1", i, bit, got)
			}
		}
	}
}

func TestEncodeFrameRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x42},
		bytes.Repeat([]byte{0xAB}, 200),
		bytes.Repeat([]byte{0x01}, MaxPayloadSize),
	}
	for _, payload := range payloads {
		buf := make([]byte, PacketMaxOverhead+len(payload))
		n, err := EncodeFrame(buf, payload)
		if err != nil {
			t.Fatalf("EncodeFrame(%d bytes): %v", len(payload), err)
		}
		extracted := ExtractPacket(buf[:n], MaxPayloadSize)
		if extracted != n {
			t.Fatalf("ExtractPacket after encode = %d, want %d", extracted, n)
		}
		got, err := GetPayload(buf[:n])
		if err != nil {
			t.Fatalf("GetPayload: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("GetPayload round trip mismatch for %d-byte payload", len(payload))
		}
	}
}

func TestEncodeFrameBufferTooSmall(t *testing.T) {
	buf := make([]byte, 3)
	if _, err := EncodeFrame(buf, []byte{1, 2, 3, 4}); err == nil {
		t.Fatal("expected buffer-too-small error")
	}
}

func TestEncodeFrameNeverWritesPastBufferOnFailure(t *testing.T) {
	buf := bytes.Repeat([]byte{0xFF}, 4)
	sentinel := append([]byte(nil), buf...)
	if _, err := EncodeFrame(buf, []byte{1, 2, 3, 4, 5}); err == nil {
		t.Fatal("expected error")
	}
	if !bytes.Equal(buf, sentinel) {
		t.Fatal("EncodeFrame wrote to buffer despite failing size validation")
	}
}

func TestConcatenatedFramesResync(t *testing.T) {
	buf1 := make([]byte, PacketMaxOverhead+3)
	n1, _ := EncodeFrame(buf1, []byte{1, 2, 3})
	buf2 := make([]byte, PacketMaxOverhead+2)
	n2, _ := EncodeFrame(buf2, []byte{9, 9})

	combined := append(append([]byte{0xDE, 0xAD}, buf1[:n1]...), buf2[:n2]...)

	// Garbage prefix triggers a resync skip.
	if got := ExtractPacket(combined, MaxPayloadSize); got != -2 {
		t.Fatalf("ExtractPacket garbage prefix = %d, want -2", got)
	}
	rest := combined[2:]
	if got := ExtractPacket(rest, MaxPayloadSize); got != n1 {
		t.Fatalf("ExtractPacket first frame = %d, want %d", got, n1)
	}
	rest = rest[n1:]
	if got := ExtractPacket(rest, MaxPayloadSize); got != n2 {
		t.Fatalf("ExtractPacket second frame = %d, want %d", got, n2)
	}
}
