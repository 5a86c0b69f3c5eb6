package ratp

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

func TestControlFlagBits(t *testing.T) {
	s := Build(SYN|ACK|FIN|RST|SN|AN|EOR|SO, 0, nil)
	b := s.Serialize()
	if b[1] != 0xff {
		t.Fatalf("actual %02x", b[1])
	}
	s = Build(SYN, 255, nil)
	b = s.Serialize()
	if !bytes.Equal(b, []byte{0x01, 0x80, 0xff, 0x80}) {
		t.Fatalf("actual %x", b)
	}
	f := ControlFlag(0).WithSn(1).WithAn(3)
	if f.Sn() != 1 || f.An() != 1 {
		t.Fatalf("actual %s", f.String())
	}
	if f.WithSn(2).Sn() != 0 {
		t.Fatalf("actual %s", f.WithSn(2).String())
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	for n := 1; n <= MaxDataLength; n++ {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte(i * 7)
		}
		wire := Build(ACK|EOR, 0, data).Serialize()
		if len(wire) != HeaderLength+n+ChecksumLength {
			t.Fatalf("len=%d actual wire length %d", n, len(wire))
		}
		h, err := DecodeHeader(wire)
		if err != nil {
			t.Fatal(err)
		}
		if int(h.Length) != n {
			t.Fatalf("actual length %d", h.Length)
		}
		payload, err := DecodePayload(wire[HeaderLength:], h.Length)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(payload, data) {
			t.Fatalf("len=%d payload mismatch", n)
		}
	}
}

func TestEmptySegment(t *testing.T) {
	wire := Build(ACK, 0, nil).Serialize()
	if len(wire) != HeaderLength {
		t.Fatalf("actual %d", len(wire))
	}
	seg, err := New(wire)
	if err != nil {
		t.Fatal(err)
	}
	if seg.Header.HasData() || seg.Payload() != nil {
		t.Fatalf("actual %v", seg)
	}
}

func TestHeaderBitFlip(t *testing.T) {
	for control := 0; control < 256; control += 17 {
		for length := 0; length < 256; length += 13 {
			wire := Build(ControlFlag(control), uint8(length), nil).Serialize()[:HeaderLength]
			if _, err := DecodeHeader(wire); err != nil {
				t.Fatalf("control=%02x length=%d: %v", control, length, err)
			}
			for bit := 0; bit < 32; bit++ {
				flipped := make([]byte, HeaderLength)
				copy(flipped, wire)
				flipped[bit/8] ^= 1 << uint(bit%8)
				_, err := DecodeHeader(flipped)
				if errors.Cause(err) != ErrInvalidHeader {
					t.Fatalf("control=%02x length=%d bit=%d: actual %v", control, length, bit, err)
				}
			}
		}
	}
}

func TestCorruptedPayload(t *testing.T) {
	wire := Build(ACK, 0, []byte("hello ratp")).Serialize()
	wire[HeaderLength+3] ^= 0x20
	_, err := New(wire)
	if errors.Cause(err) != ErrInvalidPayload {
		t.Fatalf("actual %v", err)
	}
}

func TestSoSegment(t *testing.T) {
	wire := Build(ACK|SO|EOR, 'x', nil).Serialize()
	if len(wire) != HeaderLength {
		t.Fatalf("actual %d", len(wire))
	}
	seg, err := New(wire)
	if err != nil {
		t.Fatal(err)
	}
	if !seg.Header.HasData() || !bytes.Equal(seg.Payload(), []byte("x")) {
		t.Fatalf("actual %v", seg.Payload())
	}
	if !seg.Occupied() {
		t.Fatalf("so segment has to be acknowledged")
	}
}

func TestSynCarriesNoPayload(t *testing.T) {
	seg := Build(SYN|ACK, 255, nil)
	if seg.Header.HasPayload() || seg.Header.HasData() {
		t.Fatalf("actual %v", seg)
	}
	if !seg.Occupied() {
		t.Fatalf("syn has to be acknowledged")
	}
	if Build(ACK, 0, nil).Occupied() {
		t.Fatalf("bare ack must not be retransmitted")
	}
}

func TestBuildOversized(t *testing.T) {
	s := Build(ACK, 0, bytes.Repeat([]byte{0xaa}, MaxDataLength))
	if s.Header.Length != 255 || len(s.Serialize()) != HeaderLength+255+ChecksumLength {
		t.Fatalf("actual %s", s)
	}
	defer func() {
		if recover() == nil {
			t.Fatal("256 bytes of data are accepted")
		}
	}()
	Build(ACK, 0, make([]byte, MaxDataLength+1))
}
