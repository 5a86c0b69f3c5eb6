package message

import (
	"encoding/binary"
	"fmt"

	"github.com/pkg/errors"
)

const envelopeLength = 4

var (
	ErrShortMessage     = errors.New("short message")
	ErrBufferOutOfRange = errors.New("buffer out of range")
)

type Type uint16

const (
	COMMAND                   Type = 1
	COMMAND_RETURN            Type = 2
	CONSOLEMSG                Type = 3
	PING                      Type = 4
	PONG                      Type = 5
	GETENV                    Type = 6
	GETENV_RETURN             Type = 7
	FS                        Type = 8
	FS_RETURN                 Type = 9
	MD                        Type = 10
	MD_RETURN                 Type = 11
	MW                        Type = 12
	MW_RETURN                 Type = 13
	RESET                     Type = 14
	I2C_READ                  Type = 15
	I2C_READ_RETURN           Type = 16
	I2C_WRITE                 Type = 17
	I2C_WRITE_RETURN          Type = 18
	GPIO_GET_VALUE            Type = 19
	GPIO_GET_VALUE_RETURN     Type = 20
	GPIO_SET_VALUE            Type = 21
	GPIO_SET_VALUE_RETURN     Type = 22
	GPIO_SET_DIRECTION        Type = 23
	GPIO_SET_DIRECTION_RETURN Type = 24
)

var typeNames = map[Type]string{
	COMMAND:                   "command",
	COMMAND_RETURN:            "command_return",
	CONSOLEMSG:                "consolemsg",
	PING:                      "ping",
	PONG:                      "pong",
	GETENV:                    "getenv",
	GETENV_RETURN:             "getenv_return",
	FS:                        "fs",
	FS_RETURN:                 "fs_return",
	MD:                        "md",
	MD_RETURN:                 "md_return",
	MW:                        "mw",
	MW_RETURN:                 "mw_return",
	RESET:                     "reset",
	I2C_READ:                  "i2c_read",
	I2C_READ_RETURN:           "i2c_read_return",
	I2C_WRITE:                 "i2c_write",
	I2C_WRITE_RETURN:          "i2c_write_return",
	GPIO_GET_VALUE:            "gpio_get_value",
	GPIO_GET_VALUE_RETURN:     "gpio_get_value_return",
	GPIO_SET_VALUE:            "gpio_set_value",
	GPIO_SET_VALUE_RETURN:     "gpio_set_value_return",
	GPIO_SET_DIRECTION:        "gpio_set_direction",
	GPIO_SET_DIRECTION_RETURN: "gpio_set_direction_return",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint16(t))
}

type Flag uint16

const (
	RESPONSE   Flag = 1 << 0
	INDICATION Flag = 1 << 1
)

func (f Flag) Response() bool {
	return f&RESPONSE != 0
}

func (f Flag) Indication() bool {
	return f&INDICATION != 0
}

// Message is the payload of one RATP message: a type, flags and a typed body.
type Message interface {
	Type() Type
	Flags() Flag
	String() string
	encode() []byte
	decode([]byte) error
}

// Serialize prepends the envelope to the encoded body of m.
func Serialize(m Message) []byte {
	body := m.encode()
	buf := make([]byte, envelopeLength, envelopeLength+len(body))
	binary.BigEndian.PutUint16(buf[0:2], uint16(m.Type()))
	binary.BigEndian.PutUint16(buf[2:4], uint16(m.Flags()))
	return append(buf, body...)
}

// Unpack decodes a message. Unknown types come back as *Packet.
func Unpack(data []byte) (Message, error) {
	if len(data) < envelopeLength {
		return nil, errors.Wrapf(ErrShortMessage, "%d bytes", len(data))
	}
	t := Type(binary.BigEndian.Uint16(data[0:2]))
	flags := Flag(binary.BigEndian.Uint16(data[2:4]))
	m := newMessage(t)
	if m == nil {
		payload := make([]byte, len(data)-envelopeLength)
		copy(payload, data[envelopeLength:])
		return &Packet{Kind: t, Flag: flags, Payload: payload}, nil
	}
	if err := m.decode(data[envelopeLength:]); err != nil {
		return nil, errors.Wrapf(err, "decode %s", t)
	}
	return m, nil
}

func newMessage(t Type) Message {
	switch t {
	case COMMAND:
		return &Command{}
	case COMMAND_RETURN:
		return &CommandReturn{}
	case CONSOLEMSG:
		return &ConsoleMsg{}
	case PING:
		return &Ping{}
	case PONG:
		return &Pong{}
	case GETENV:
		return &Getenv{}
	case GETENV_RETURN:
		return &GetenvReturn{}
	case FS:
		return &Fs{}
	case FS_RETURN:
		return &FsReturn{}
	case MD:
		return &Md{}
	case MD_RETURN:
		return &MdReturn{}
	case MW:
		return &Mw{}
	case MW_RETURN:
		return &MwReturn{}
	case RESET:
		return &Reset{}
	case I2C_READ:
		return &I2cRead{}
	case I2C_READ_RETURN:
		return &I2cReadReturn{}
	case I2C_WRITE:
		return &I2cWrite{}
	case I2C_WRITE_RETURN:
		return &I2cWriteReturn{}
	case GPIO_GET_VALUE:
		return &GpioGetValue{}
	case GPIO_GET_VALUE_RETURN:
		return &GpioGetValueReturn{}
	case GPIO_SET_VALUE:
		return &GpioSetValue{}
	case GPIO_SET_VALUE_RETURN:
		return &GpioSetValueReturn{}
	case GPIO_SET_DIRECTION:
		return &GpioSetDirection{}
	case GPIO_SET_DIRECTION_RETURN:
		return &GpioSetDirectionReturn{}
	default:
		return nil
	}
}

// Packet is a message of a type this package does not know.
type Packet struct {
	Kind    Type
	Flag    Flag
	Payload []byte
}

func (p *Packet) Type() Type  { return p.Kind }
func (p *Packet) Flags() Flag { return p.Flag }

func (p *Packet) String() string {
	return fmt.Sprintf("BBPacket(%s, flags=%d, %d bytes)", p.Kind, p.Flag, len(p.Payload))
}

func (p *Packet) encode() []byte {
	return p.Payload
}

func (p *Packet) decode(b []byte) error {
	p.Payload = b
	return nil
}
