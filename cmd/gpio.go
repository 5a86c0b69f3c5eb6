package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
	"github.com/terassyi/goratp/packet/message"
)

type GpioGetCommand struct {
	link linkFlags
}

func (g *GpioGetCommand) Name() string {
	return "gpio-get"
}

func (g *GpioGetCommand) Synopsis() string {
	return "read a gpio of the target"
}

func (g *GpioGetCommand) Usage() string {
	return `goratp gpio-get -port <port> <gpio>:
	print the value of a gpio
`
}

func (g *GpioGetCommand) SetFlags(f *flag.FlagSet) {
	g.link.SetFlags(f)
}

func (g *GpioGetCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(g.Name(), f)
	}
	gpio, err := parseUint(f.Arg(0), 32)
	if err != nil {
		return fail(g.Name(), err)
	}
	s, err := g.link.connect(g.Name())
	if err != nil {
		return fail(g.Name(), err)
	}
	defer s.Close()
	value, err := s.GpioGetValue(uint32(gpio))
	if err != nil {
		return fail(g.Name(), err)
	}
	fmt.Println(value)
	return subcommands.ExitSuccess
}

type GpioSetCommand struct {
	link linkFlags
}

func (g *GpioSetCommand) Name() string {
	return "gpio-set"
}

func (g *GpioSetCommand) Synopsis() string {
	return "set a gpio of the target"
}

func (g *GpioSetCommand) Usage() string {
	return `goratp gpio-set -port <port> <gpio> <value>:
	set the value of an output gpio
`
}

func (g *GpioSetCommand) SetFlags(f *flag.FlagSet) {
	g.link.SetFlags(f)
}

func (g *GpioSetCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		return usage(g.Name(), f)
	}
	gpio, err := parseUint(f.Arg(0), 32)
	if err != nil {
		return fail(g.Name(), err)
	}
	value, err := parseUint(f.Arg(1), 8)
	if err != nil {
		return fail(g.Name(), err)
	}
	s, err := g.link.connect(g.Name())
	if err != nil {
		return fail(g.Name(), err)
	}
	defer s.Close()
	if err := s.GpioSetValue(uint32(gpio), uint8(value)); err != nil {
		return fail(g.Name(), err)
	}
	return subcommands.ExitSuccess
}

type GpioDirCommand struct {
	link linkFlags
}

func (g *GpioDirCommand) Name() string {
	return "gpio-dir"
}

func (g *GpioDirCommand) Synopsis() string {
	return "configure the direction of a gpio of the target"
}

func (g *GpioDirCommand) Usage() string {
	return `goratp gpio-dir -port <port> <gpio> in|out [value]:
	make a gpio an input, or an output driving value
`
}

func (g *GpioDirCommand) SetFlags(f *flag.FlagSet) {
	g.link.SetFlags(f)
}

func (g *GpioDirCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 || f.NArg() > 3 {
		return usage(g.Name(), f)
	}
	gpio, err := parseUint(f.Arg(0), 32)
	if err != nil {
		return fail(g.Name(), err)
	}
	var direction message.GpioDirection
	switch f.Arg(1) {
	case "in":
		direction = message.GPIO_INPUT
	case "out":
		direction = message.GPIO_OUTPUT
	default:
		return fail(g.Name(), errors.Errorf("invalid direction %q", f.Arg(1)))
	}
	var value uint64
	if f.NArg() == 3 {
		if value, err = parseUint(f.Arg(2), 8); err != nil {
			return fail(g.Name(), err)
		}
	}
	s, err := g.link.connect(g.Name())
	if err != nil {
		return fail(g.Name(), err)
	}
	defer s.Close()
	if err := s.GpioSetDirection(uint32(gpio), direction, uint8(value)); err != nil {
		return fail(g.Name(), err)
	}
	return subcommands.ExitSuccess
}
