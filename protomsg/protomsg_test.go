package protomsg

import (
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func TestEncoderDecoderRoundTrip(t *testing.T) {
	msg := wrapperspb.Int32(10)
	enc := NewEncoder(msg)

	size := enc.ByteLength()
	buf := make([]byte, size)
	n, err := enc.SerializeInto(buf)
	if err != nil {
		t.Fatalf("SerializeInto: %v", err)
	}
	if n != size {
		t.Fatalf("SerializeInto wrote %d bytes, ByteLength reported %d", n, size)
	}

	dec := NewDecoder(func() *wrapperspb.Int32Value { return &wrapperspb.Int32Value{} })
	got, err := dec.TryDeserialize(buf[:n])
	if err != nil {
		t.Fatalf("TryDeserialize: %v", err)
	}
	if got.GetValue() != 10 {
		t.Fatalf("got value %d, want 10", got.GetValue())
	}
}

func TestDecoderRejectsGarbage(t *testing.T) {
	dec := NewDecoder(func() *wrapperspb.Int32Value { return &wrapperspb.Int32Value{} })
	// Every byte carries the varint continuation bit, so the field tag
	// never terminates and proto.Unmarshal must reject the input.
	garbage := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	if _, err := dec.TryDeserialize(garbage); err == nil {
		t.Fatal("expected TryDeserialize to reject malformed input")
	}
}

func TestEncoderByteLengthMatchesProtoSize(t *testing.T) {
	msg := wrapperspb.String("hello, channel")
	enc := NewEncoder(msg)
	if got, want := enc.ByteLength(), proto.Size(msg); got != want {
		t.Fatalf("ByteLength = %d, want proto.Size = %d", got, want)
	}
}
