package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/pterm/pterm"
	"github.com/terassyi/goratp/packet/message"
)

type i2cFlags struct {
	Bus  uint
	Addr string
	Reg  string
	Wide bool
}

func (i *i2cFlags) SetFlags(f *flag.FlagSet) {
	f.UintVar(&i.Bus, "bus", 0, "i2c bus")
	f.StringVar(&i.Addr, "addr", "0", "device address")
	f.StringVar(&i.Reg, "reg", "0", "register")
	f.BoolVar(&i.Wide, "wide", false, "16 bit register address")
}

func (i *i2cFlags) parse() (addr uint8, reg uint16, mode message.I2cFlag, err error) {
	a, err := parseUint(i.Addr, 8)
	if err != nil {
		return 0, 0, 0, err
	}
	r, err := parseUint(i.Reg, 16)
	if err != nil {
		return 0, 0, 0, err
	}
	if i.Wide {
		mode |= message.I2C_WIDE_ADDRESS
	}
	return uint8(a), uint16(r), mode, nil
}

type I2cReadCommand struct {
	link linkFlags
	i2c  i2cFlags
	Size uint
}

func (c *I2cReadCommand) Name() string {
	return "i2c-read"
}

func (c *I2cReadCommand) Synopsis() string {
	return "read from an i2c device of the target"
}

func (c *I2cReadCommand) Usage() string {
	return `goratp i2c-read -port <port> -bus <bus> -addr <address> -reg <register> -size <bytes>:
	read registers of an i2c device
`
}

func (c *I2cReadCommand) SetFlags(f *flag.FlagSet) {
	c.link.SetFlags(f)
	c.i2c.SetFlags(f)
	f.UintVar(&c.Size, "size", 1, "number of bytes")
}

func (c *I2cReadCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	addr, reg, mode, err := c.i2c.parse()
	if err != nil {
		return fail(c.Name(), err)
	}
	s, err := c.link.connect(c.Name())
	if err != nil {
		return fail(c.Name(), err)
	}
	defer s.Close()
	data, err := s.I2cRead(uint8(c.i2c.Bus), addr, reg, mode, uint16(c.Size))
	if err != nil {
		return fail(c.Name(), err)
	}
	if err := renderHex(uint64(reg), data); err != nil {
		return fail(c.Name(), err)
	}
	return subcommands.ExitSuccess
}

type I2cWriteCommand struct {
	link linkFlags
	i2c  i2cFlags
}

func (c *I2cWriteCommand) Name() string {
	return "i2c-write"
}

func (c *I2cWriteCommand) Synopsis() string {
	return "write to an i2c device of the target"
}

func (c *I2cWriteCommand) Usage() string {
	return `goratp i2c-write -port <port> -bus <bus> -addr <address> -reg <register> <byte...>:
	write registers of an i2c device
`
}

func (c *I2cWriteCommand) SetFlags(f *flag.FlagSet) {
	c.link.SetFlags(f)
	c.i2c.SetFlags(f)
}

func (c *I2cWriteCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usage(c.Name(), f)
	}
	addr, reg, mode, err := c.i2c.parse()
	if err != nil {
		return fail(c.Name(), err)
	}
	data, err := parseBytes(f.Args())
	if err != nil {
		return fail(c.Name(), err)
	}
	s, err := c.link.connect(c.Name())
	if err != nil {
		return fail(c.Name(), err)
	}
	defer s.Close()
	written, err := s.I2cWrite(uint8(c.i2c.Bus), addr, reg, mode, data)
	if err != nil {
		return fail(c.Name(), err)
	}
	pterm.Success.Printfln("%d bytes written", written)
	return subcommands.ExitSuccess
}
