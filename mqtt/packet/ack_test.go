package packet

import "testing"

func TestEncodeDecodeAckRoundTrip(t *testing.T) {
	for _, packetType := range []byte{Puback, Pubrec, Pubrel, Pubcomp} {
		buf := make([]byte, 8)
		n, err := EncodeAck(buf, packetType, 0x1234)
		if err != nil {
			t.Fatalf("EncodeAck(%d): %v", packetType, err)
		}
		if n != 4 {
			t.Fatalf("EncodeAck(%d) wrote %d bytes, want 4", packetType, n)
		}
		if Type(buf[0]) != packetType {
			t.Fatalf("decoded type = %d, want %d", Type(buf[0]), packetType)
		}
		id, err := DecodeAck(buf[2:n])
		if err != nil {
			t.Fatalf("DecodeAck: %v", err)
		}
		if id != 0x1234 {
			t.Fatalf("PacketID = 0x%x, want 0x1234", id)
		}
	}
}

func TestEncodeAckPubrelSetsReservedBit(t *testing.T) {
	buf := make([]byte, 8)
	if _, err := EncodeAck(buf, Pubrel, 1); err != nil {
		t.Fatalf("EncodeAck: %v", err)
	}
	if Flags(buf[0]) != pubrelReserved {
		t.Fatalf("PUBREL flags = 0x%x, want 0x%x", Flags(buf[0]), pubrelReserved)
	}
}

func TestEncodeAckBufferTooSmall(t *testing.T) {
	buf := make([]byte, 3)
	if _, err := EncodeAck(buf, Puback, 1); err != ErrBufferTooSmall {
		t.Fatalf("expected ErrBufferTooSmall, got %v", err)
	}
}

func TestDecodeAckMalformed(t *testing.T) {
	if _, err := DecodeAck([]byte{0}); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if _, err := DecodeAck([]byte{0, 1, 2}); err != ErrMalformed {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
