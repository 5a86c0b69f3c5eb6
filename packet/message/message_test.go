package message

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestSerializeEnvelope(t *testing.T) {
	b := Serialize(&Command{Cmd: "version"})
	if !bytes.Equal(b, append([]byte{0x00, 0x01, 0x00, 0x00}, "version"...)) {
		t.Fatalf("actual % x", b)
	}
	b = Serialize(&Pong{})
	if !bytes.Equal(b, []byte{0x00, 0x05, 0x00, 0x01}) {
		t.Fatalf("actual % x", b)
	}
}

func TestMdLayout(t *testing.T) {
	b := Serialize(&Md{Path: "/dev/mem", Addr: 0x100, Size: 16})
	want := []byte{
		0x00, 0x0a, 0x00, 0x00,
		0x00, 0x0e,
		0x01, 0x00,
		0x00, 0x10,
		0x00, 0x08, 0x00, 0x00,
		'/', 'd', 'e', 'v', '/', 'm', 'e', 'm',
	}
	if !bytes.Equal(b, want) {
		t.Fatalf("actual % x", b)
	}
}

func TestI2cReadLayout(t *testing.T) {
	b := Serialize(&I2cRead{Bus: 1, Addr: 0x50, Reg: 0x10, Mode: I2C_WIDE_ADDRESS, Size: 4})
	want := []byte{
		0x00, 0x0f, 0x00, 0x00,
		0x00, 0x0d,
		0x01, 0x50,
		0x00, 0x10,
		0x01,
		0x00, 0x04,
	}
	if !bytes.Equal(b, want) {
		t.Fatalf("actual % x", b)
	}
}

func TestUnpack(t *testing.T) {
	for _, m := range []Message{
		&Command{Cmd: "ls /"},
		&CommandReturn{Errno: 2},
		&ConsoleMsg{Text: []byte("barebox\n")},
		&Ping{},
		&Pong{},
		&Getenv{Name: "global.version"},
		&GetenvReturn{Value: "2024.01"},
		&Fs{Payload: []byte{0x01}},
		&FsReturn{Payload: []byte{0x02}},
		&Md{Path: "/dev/mem", Addr: 0x20, Size: 8},
		&MdReturn{Errno: 0, Data: []byte{1, 2, 3, 4}},
		&Mw{Path: "/dev/mem", Addr: 0x20, Data: []byte{5, 6}},
		&MwReturn{Errno: 0, Written: 2},
		&Reset{Force: true},
		&I2cRead{Bus: 0, Addr: 0x50, Reg: 0x1234, Mode: I2C_WIDE_ADDRESS, Size: 2},
		&I2cReadReturn{Errno: 0, Data: []byte{0xde, 0xad}},
		&I2cWrite{Bus: 2, Addr: 0x51, Reg: 0, Data: []byte{0xbe, 0xef}},
		&I2cWriteReturn{Errno: 5, Written: 0},
		&GpioGetValue{Gpio: 42},
		&GpioGetValueReturn{Value: 1},
		&GpioSetValue{Gpio: 42, Value: 1},
		&GpioSetValueReturn{},
		&GpioSetDirection{Gpio: 7, Direction: GPIO_OUTPUT, Value: 1},
		&GpioSetDirectionReturn{Errno: 0},
	} {
		actual, err := Unpack(Serialize(m))
		if err != nil {
			t.Fatalf("%s: %v", m, err)
		}
		if !reflect.DeepEqual(actual, m) {
			t.Fatalf("actual %s, want %s", actual, m)
		}
	}
}

func TestUnpackUnknown(t *testing.T) {
	m, err := Unpack([]byte{0x00, 0x63, 0x00, 0x02, 0xff})
	if err != nil {
		t.Fatal(err)
	}
	p, ok := m.(*Packet)
	if !ok || p.Type() != Type(99) || !p.Flags().Indication() || !bytes.Equal(p.Payload, []byte{0xff}) {
		t.Fatalf("actual %s", m)
	}
}

func TestUnpackShort(t *testing.T) {
	if _, err := Unpack([]byte{0x00}); errors.Cause(err) != ErrShortMessage {
		t.Fatalf("actual %v", err)
	}
	if _, err := Unpack([]byte{0x00, 0x02, 0x00, 0x01, 0x00}); errors.Cause(err) != ErrShortMessage {
		t.Fatalf("actual %v", err)
	}
}

func TestTypeString(t *testing.T) {
	if GPIO_SET_DIRECTION_RETURN.String() != "gpio_set_direction_return" {
		t.Fatalf("actual %s", GPIO_SET_DIRECTION_RETURN)
	}
	if Type(0).String() != "unknown(0)" {
		t.Fatalf("actual %s", Type(0))
	}
}
