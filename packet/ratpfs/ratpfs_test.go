package ratpfs

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestPacket(t *testing.T) {
	p := Build(OPEN_CALL, (&OpenCall{Flags: O_RDWR | O_CREAT, Path: "/boot/zImage"}).Encode())
	wire := p.Serialize()
	if !bytes.Equal(wire[:5], []byte{0x07, 0x00, 0x00, 0x00, 0x42}) {
		t.Fatalf("actual % x", wire[:5])
	}
	actual, err := New(wire)
	if err != nil {
		t.Fatal(err)
	}
	if actual.Op != OPEN_CALL {
		t.Fatalf("actual %s", actual.Op)
	}
	call, err := DecodeOpenCall(actual.Payload)
	if err != nil {
		t.Fatal(err)
	}
	if call.Path != "/boot/zImage" || call.Flags != 0102 {
		t.Fatalf("actual %+v", call)
	}
	if _, err := New(nil); errors.Cause(err) != ErrShortPacket {
		t.Fatalf("actual %v", err)
	}
}

func TestReturnOp(t *testing.T) {
	if READ_CALL.Return() != READ_RETURN || TRUNCATE_CALL.Return() != TRUNCATE_RETURN {
		t.Fatalf("actual %s %s", READ_CALL.Return(), TRUNCATE_CALL.Return())
	}
	if READ_RETURN.Return() != INVALID || INVALID.Return() != INVALID {
		t.Fatal("return of a return must be invalid")
	}
}

func TestCalls(t *testing.T) {
	read, err := DecodeReadCall((&ReadCall{Handle: 1, Pos: 4096, Size: 512}).Encode())
	if err != nil || !reflect.DeepEqual(read, &ReadCall{Handle: 1, Pos: 4096, Size: 512}) {
		t.Fatalf("actual %+v %v", read, err)
	}
	write, err := DecodeWriteCall((&WriteCall{Handle: 2, Pos: 8, Data: []byte("abc")}).Encode())
	if err != nil || write.Handle != 2 || write.Pos != 8 || string(write.Data) != "abc" {
		t.Fatalf("actual %+v %v", write, err)
	}
	trunc, err := DecodeTruncateCall((&TruncateCall{Handle: 3, Size: 10}).Encode())
	if err != nil || trunc.Handle != 3 || trunc.Size != 10 {
		t.Fatalf("actual %+v %v", trunc, err)
	}
	cl, err := DecodeCloseCall((&CloseCall{Handle: 9}).Encode())
	if err != nil || cl.Handle != 9 {
		t.Fatalf("actual %+v %v", cl, err)
	}
	if _, err := DecodeReadCall([]byte{0, 0, 0, 1}); errors.Cause(err) != ErrShortPacket {
		t.Fatalf("actual %v", err)
	}
}

func TestStatReturn(t *testing.T) {
	b := (&StatReturn{Kind: DIR, Size: 4096}).Encode()
	if !bytes.Equal(b, []byte{0x02, 0x00, 0x00, 0x10, 0x00}) {
		t.Fatalf("actual % x", b)
	}
	s, err := DecodeStatReturn(b)
	if err != nil || s.Kind != DIR || s.Size != 4096 {
		t.Fatalf("actual %+v %v", s, err)
	}
}

func TestNames(t *testing.T) {
	b := EncodeNames([]string{"a", "bc"})
	if !bytes.Equal(b, []byte{'a', 0, 'b', 'c', 0}) {
		t.Fatalf("actual % x", b)
	}
	if names := DecodeNames(b); !reflect.DeepEqual(names, []string{"a", "bc"}) {
		t.Fatalf("actual %v", names)
	}
}
