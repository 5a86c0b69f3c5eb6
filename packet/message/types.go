package message

import (
	"fmt"
)

type Command struct {
	Cmd string
}

func (m *Command) Type() Type { return COMMAND }
func (m *Command) Flags() Flag { return 0 }
func (m *Command) String() string { return fmt.Sprintf("BBPacketCommand(cmd=%q)", m.Cmd) }
func (m *Command) encode() []byte { return []byte(m.Cmd) }
func (m *Command) decode(b []byte) error {
	m.Cmd = string(b)
	return nil
}

type CommandReturn struct {
	Errno uint32
}

func (m *CommandReturn) Type() Type { return COMMAND_RETURN }
func (m *CommandReturn) Flags() Flag { return RESPONSE }
func (m *CommandReturn) String() string { return fmt.Sprintf("BBPacketCommandReturn(exit_code=%d)", m.Errno) }

func (m *CommandReturn) encode() []byte {
	e := newEncoder()
	e.putUint32(m.Errno)
	return e.bytes()
}

func (m *CommandReturn) decode(b []byte) error {
	d := newDecoder(b)
	m.Errno = d.getUint32()
	return d.err
}

// ConsoleMsg carries console text in either direction.
type ConsoleMsg struct {
	Text []byte
}

func (m *ConsoleMsg) Type() Type { return CONSOLEMSG }
func (m *ConsoleMsg) Flags() Flag { return INDICATION }
func (m *ConsoleMsg) String() string { return fmt.Sprintf("BBPacketConsoleMsg(text=%q)", m.Text) }
func (m *ConsoleMsg) encode() []byte { return m.Text }

func (m *ConsoleMsg) decode(b []byte) error {
	m.Text = append([]byte(nil), b...)
	return nil
}

type Ping struct{}

func (m *Ping) Type() Type { return PING }
func (m *Ping) Flags() Flag { return 0 }
func (m *Ping) String() string { return "BBPacketPing()" }
func (m *Ping) encode() []byte { return nil }
func (m *Ping) decode([]byte) error { return nil }

type Pong struct{}

func (m *Pong) Type() Type { return PONG }
func (m *Pong) Flags() Flag { return RESPONSE }
func (m *Pong) String() string { return "BBPacketPong()" }
func (m *Pong) encode() []byte { return nil }
func (m *Pong) decode([]byte) error { return nil }

type Getenv struct {
	Name string
}

func (m *Getenv) Type() Type { return GETENV }
func (m *Getenv) Flags() Flag { return 0 }
func (m *Getenv) String() string { return fmt.Sprintf("BBPacketGetenv(varname=%q)", m.Name) }
func (m *Getenv) encode() []byte { return []byte(m.Name) }
func (m *Getenv) decode(b []byte) error {
	m.Name = string(b)
	return nil
}

type GetenvReturn struct {
	Value string
}

func (m *GetenvReturn) Type() Type { return GETENV_RETURN }
func (m *GetenvReturn) Flags() Flag { return RESPONSE }
func (m *GetenvReturn) String() string { return fmt.Sprintf("BBPacketGetenvReturn(value=%q)", m.Value) }
func (m *GetenvReturn) encode() []byte { return []byte(m.Value) }
func (m *GetenvReturn) decode(b []byte) error {
	m.Value = string(b)
	return nil
}

// Fs is a filesystem call from the target. Payload is a ratpfs packet.
type Fs struct {
	Payload []byte
}

func (m *Fs) Type() Type { return FS }
func (m *Fs) Flags() Flag { return 0 }
func (m *Fs) String() string { return fmt.Sprintf("BBPacketFS(%d bytes)", len(m.Payload)) }
func (m *Fs) encode() []byte { return m.Payload }

func (m *Fs) decode(b []byte) error {
	m.Payload = append([]byte(nil), b...)
	return nil
}

type FsReturn struct {
	Payload []byte
}

func (m *FsReturn) Type() Type { return FS_RETURN }
func (m *FsReturn) Flags() Flag { return RESPONSE }
func (m *FsReturn) String() string { return fmt.Sprintf("BBPacketFSReturn(%d bytes)", len(m.Payload)) }
func (m *FsReturn) encode() []byte { return m.Payload }

func (m *FsReturn) decode(b []byte) error {
	m.Payload = append([]byte(nil), b...)
	return nil
}

// Md reads Size bytes at Addr of the device at Path.
type Md struct {
	Path string
	Addr uint16
	Size uint16
}

func (m *Md) Type() Type { return MD }
func (m *Md) Flags() Flag { return 0 }

func (m *Md) String() string {
	return fmt.Sprintf("BBPacketMd(path=%q, addr=0x%x, size=%d)", m.Path, m.Addr, m.Size)
}

func (m *Md) encode() []byte {
	e := newBufferEncoder(10)
	e.putUint16(m.Addr)
	e.putUint16(m.Size)
	e.putBytes([]byte(m.Path))
	return e.bytes()
}

func (m *Md) decode(b []byte) error {
	d := newBufferDecoder(b)
	m.Addr = d.getUint16()
	m.Size = d.getUint16()
	m.Path = string(d.getBytes())
	return d.err
}

type MdReturn struct {
	Errno uint32
	Data  []byte
}

func (m *MdReturn) Type() Type { return MD_RETURN }
func (m *MdReturn) Flags() Flag { return RESPONSE }

func (m *MdReturn) String() string {
	return fmt.Sprintf("BBPacketMdReturn(exit_code=%d, %d bytes)", m.Errno, len(m.Data))
}

func (m *MdReturn) encode() []byte {
	e := newBufferEncoder(10)
	e.putUint32(m.Errno)
	e.putBytes(m.Data)
	return e.bytes()
}

func (m *MdReturn) decode(b []byte) error {
	d := newBufferDecoder(b)
	m.Errno = d.getUint32()
	m.Data = d.getBytes()
	return d.err
}

// Mw writes Data at Addr of the device at Path.
type Mw struct {
	Path string
	Addr uint16
	Data []byte
}

func (m *Mw) Type() Type { return MW }
func (m *Mw) Flags() Flag { return 0 }

func (m *Mw) String() string {
	return fmt.Sprintf("BBPacketMw(path=%q, addr=0x%x, %d bytes)", m.Path, m.Addr, len(m.Data))
}

func (m *Mw) encode() []byte {
	e := newBufferEncoder(12)
	e.putUint16(m.Addr)
	e.putBytes([]byte(m.Path))
	e.putBytes(m.Data)
	return e.bytes()
}

func (m *Mw) decode(b []byte) error {
	d := newBufferDecoder(b)
	m.Addr = d.getUint16()
	m.Path = string(d.getBytes())
	m.Data = d.getBytes()
	return d.err
}

type MwReturn struct {
	Errno   uint32
	Written uint16
}

func (m *MwReturn) Type() Type { return MW_RETURN }
func (m *MwReturn) Flags() Flag { return RESPONSE }

func (m *MwReturn) String() string {
	return fmt.Sprintf("BBPacketMwReturn(exit_code=%d, written=%d)", m.Errno, m.Written)
}

func (m *MwReturn) encode() []byte {
	e := newBufferEncoder(8)
	e.putUint32(m.Errno)
	e.putUint16(m.Written)
	return e.bytes()
}

func (m *MwReturn) decode(b []byte) error {
	d := newBufferDecoder(b)
	m.Errno = d.getUint32()
	m.Written = d.getUint16()
	return d.err
}

// Reset has no return. Force skips the shutdown of drivers on the target.
type Reset struct {
	Force bool
}

func (m *Reset) Type() Type { return RESET }
func (m *Reset) Flags() Flag { return 0 }
func (m *Reset) String() string { return fmt.Sprintf("BBPacketReset(force=%t)", m.Force) }

func (m *Reset) encode() []byte {
	e := newEncoder()
	if m.Force {
		e.putUint8(1)
	} else {
		e.putUint8(0)
	}
	return e.bytes()
}

func (m *Reset) decode(b []byte) error {
	d := newDecoder(b)
	m.Force = d.getUint8() != 0
	return d.err
}

type I2cFlag uint8

const (
	I2C_WIDE_ADDRESS I2cFlag = 1 << 0
	I2C_MASTER_MODE  I2cFlag = 1 << 1
)

type I2cRead struct {
	Bus  uint8
	Addr uint8
	Reg  uint16
	Mode I2cFlag
	Size uint16
}

func (m *I2cRead) Type() Type { return I2C_READ }
func (m *I2cRead) Flags() Flag { return 0 }

func (m *I2cRead) String() string {
	return fmt.Sprintf("BBPacketI2cRead(bus=%d, addr=0x%02x, reg=0x%x, mode=%d, size=%d)", m.Bus, m.Addr, m.Reg, m.Mode, m.Size)
}

func (m *I2cRead) encode() []byte {
	e := newBufferEncoder(9)
	e.putUint8(m.Bus)
	e.putUint8(m.Addr)
	e.putUint16(m.Reg)
	e.putUint8(uint8(m.Mode))
	e.putUint16(m.Size)
	return e.bytes()
}

func (m *I2cRead) decode(b []byte) error {
	d := newBufferDecoder(b)
	m.Bus = d.getUint8()
	m.Addr = d.getUint8()
	m.Reg = d.getUint16()
	m.Mode = I2cFlag(d.getUint8())
	m.Size = d.getUint16()
	return d.err
}

type I2cReadReturn struct {
	Errno uint32
	Data  []byte
}

func (m *I2cReadReturn) Type() Type { return I2C_READ_RETURN }
func (m *I2cReadReturn) Flags() Flag { return RESPONSE }

func (m *I2cReadReturn) String() string {
	return fmt.Sprintf("BBPacketI2cReadReturn(exit_code=%d, %d bytes)", m.Errno, len(m.Data))
}

func (m *I2cReadReturn) encode() []byte {
	e := newBufferEncoder(10)
	e.putUint32(m.Errno)
	e.putBytes(m.Data)
	return e.bytes()
}

func (m *I2cReadReturn) decode(b []byte) error {
	d := newBufferDecoder(b)
	m.Errno = d.getUint32()
	m.Data = d.getBytes()
	return d.err
}

type I2cWrite struct {
	Bus  uint8
	Addr uint8
	Reg  uint16
	Mode I2cFlag
	Data []byte
}

func (m *I2cWrite) Type() Type { return I2C_WRITE }
func (m *I2cWrite) Flags() Flag { return 0 }

func (m *I2cWrite) String() string {
	return fmt.Sprintf("BBPacketI2cWrite(bus=%d, addr=0x%02x, reg=0x%x, mode=%d, %d bytes)", m.Bus, m.Addr, m.Reg, m.Mode, len(m.Data))
}

func (m *I2cWrite) encode() []byte {
	e := newBufferEncoder(11)
	e.putUint8(m.Bus)
	e.putUint8(m.Addr)
	e.putUint16(m.Reg)
	e.putUint8(uint8(m.Mode))
	e.putBytes(m.Data)
	return e.bytes()
}

func (m *I2cWrite) decode(b []byte) error {
	d := newBufferDecoder(b)
	m.Bus = d.getUint8()
	m.Addr = d.getUint8()
	m.Reg = d.getUint16()
	m.Mode = I2cFlag(d.getUint8())
	m.Data = d.getBytes()
	return d.err
}

type I2cWriteReturn struct {
	Errno   uint32
	Written uint16
}

func (m *I2cWriteReturn) Type() Type { return I2C_WRITE_RETURN }
func (m *I2cWriteReturn) Flags() Flag { return RESPONSE }

func (m *I2cWriteReturn) String() string {
	return fmt.Sprintf("BBPacketI2cWriteReturn(exit_code=%d, written=%d)", m.Errno, m.Written)
}

func (m *I2cWriteReturn) encode() []byte {
	e := newBufferEncoder(8)
	e.putUint32(m.Errno)
	e.putUint16(m.Written)
	return e.bytes()
}

func (m *I2cWriteReturn) decode(b []byte) error {
	d := newBufferDecoder(b)
	m.Errno = d.getUint32()
	m.Written = d.getUint16()
	return d.err
}

type GpioGetValue struct {
	Gpio uint32
}

func (m *GpioGetValue) Type() Type { return GPIO_GET_VALUE }
func (m *GpioGetValue) Flags() Flag { return 0 }
func (m *GpioGetValue) String() string { return fmt.Sprintf("BBPacketGpioGetValue(gpio=%d)", m.Gpio) }

func (m *GpioGetValue) encode() []byte {
	e := newEncoder()
	e.putUint32(m.Gpio)
	return e.bytes()
}

func (m *GpioGetValue) decode(b []byte) error {
	d := newDecoder(b)
	m.Gpio = d.getUint32()
	return d.err
}

type GpioGetValueReturn struct {
	Value uint8
}

func (m *GpioGetValueReturn) Type() Type { return GPIO_GET_VALUE_RETURN }
func (m *GpioGetValueReturn) Flags() Flag { return RESPONSE }

func (m *GpioGetValueReturn) String() string {
	return fmt.Sprintf("BBPacketGpioGetValueReturn(value=%d)", m.Value)
}

func (m *GpioGetValueReturn) encode() []byte {
	return []byte{m.Value}
}

func (m *GpioGetValueReturn) decode(b []byte) error {
	d := newDecoder(b)
	m.Value = d.getUint8()
	return d.err
}

type GpioSetValue struct {
	Gpio  uint32
	Value uint8
}

func (m *GpioSetValue) Type() Type { return GPIO_SET_VALUE }
func (m *GpioSetValue) Flags() Flag { return 0 }

func (m *GpioSetValue) String() string {
	return fmt.Sprintf("BBPacketGpioSetValue(gpio=%d, value=%d)", m.Gpio, m.Value)
}

func (m *GpioSetValue) encode() []byte {
	e := newEncoder()
	e.putUint32(m.Gpio)
	e.putUint8(m.Value)
	return e.bytes()
}

func (m *GpioSetValue) decode(b []byte) error {
	d := newDecoder(b)
	m.Gpio = d.getUint32()
	m.Value = d.getUint8()
	return d.err
}

type GpioSetValueReturn struct{}

func (m *GpioSetValueReturn) Type() Type { return GPIO_SET_VALUE_RETURN }
func (m *GpioSetValueReturn) Flags() Flag { return RESPONSE }
func (m *GpioSetValueReturn) String() string { return "BBPacketGpioSetValueReturn()" }
func (m *GpioSetValueReturn) encode() []byte { return nil }
func (m *GpioSetValueReturn) decode([]byte) error { return nil }

type GpioDirection uint8

const (
	GPIO_INPUT  GpioDirection = 0
	GPIO_OUTPUT GpioDirection = 1
)

func (d GpioDirection) String() string {
	if d == GPIO_OUTPUT {
		return "out"
	}
	return "in"
}

// GpioSetDirection configures a GPIO. Value is the initial level of an output.
type GpioSetDirection struct {
	Gpio      uint32
	Direction GpioDirection
	Value     uint8
}

func (m *GpioSetDirection) Type() Type { return GPIO_SET_DIRECTION }
func (m *GpioSetDirection) Flags() Flag { return 0 }

func (m *GpioSetDirection) String() string {
	return fmt.Sprintf("BBPacketGpioSetDirection(gpio=%d, direction=%s, value=%d)", m.Gpio, m.Direction, m.Value)
}

func (m *GpioSetDirection) encode() []byte {
	e := newEncoder()
	e.putUint32(m.Gpio)
	e.putUint8(uint8(m.Direction))
	e.putUint8(m.Value)
	return e.bytes()
}

func (m *GpioSetDirection) decode(b []byte) error {
	d := newDecoder(b)
	m.Gpio = d.getUint32()
	m.Direction = GpioDirection(d.getUint8())
	m.Value = d.getUint8()
	return d.err
}

type GpioSetDirectionReturn struct {
	Errno uint32
}

func (m *GpioSetDirectionReturn) Type() Type { return GPIO_SET_DIRECTION_RETURN }
func (m *GpioSetDirectionReturn) Flags() Flag { return RESPONSE }

func (m *GpioSetDirectionReturn) String() string {
	return fmt.Sprintf("BBPacketGpioSetDirectionReturn(exit_code=%d)", m.Errno)
}

func (m *GpioSetDirectionReturn) encode() []byte {
	e := newEncoder()
	e.putUint32(m.Errno)
	return e.bytes()
}

func (m *GpioSetDirectionReturn) decode(b []byte) error {
	d := newDecoder(b)
	m.Errno = d.getUint32()
	return d.err
}
