package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
	"github.com/pterm/pterm"
)

type MdCommand struct {
	link linkFlags
	Path string
	Addr string
	Size string
}

func (m *MdCommand) Name() string {
	return "md"
}

func (m *MdCommand) Synopsis() string {
	return "display memory of the target"
}

func (m *MdCommand) Usage() string {
	return `goratp md -port <port> [-path /dev/mem] -addr <address> -size <bytes>:
	read memory through a barebox device file
`
}

func (m *MdCommand) SetFlags(f *flag.FlagSet) {
	m.link.SetFlags(f)
	f.StringVar(&m.Path, "path", "/dev/mem", "device file")
	f.StringVar(&m.Addr, "addr", "0", "address")
	f.StringVar(&m.Size, "size", "16", "number of bytes")
}

func (m *MdCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	addr, err := parseUint(m.Addr, 16)
	if err != nil {
		return fail(m.Name(), err)
	}
	size, err := parseUint(m.Size, 16)
	if err != nil {
		return fail(m.Name(), err)
	}
	s, err := m.link.connect(m.Name())
	if err != nil {
		return fail(m.Name(), err)
	}
	defer s.Close()
	data, err := s.Md(m.Path, uint16(addr), uint16(size))
	if err != nil {
		return fail(m.Name(), err)
	}
	if err := renderHex(addr, data); err != nil {
		return fail(m.Name(), err)
	}
	return subcommands.ExitSuccess
}

type MwCommand struct {
	link linkFlags
	Path string
	Addr string
}

func (m *MwCommand) Name() string {
	return "mw"
}

func (m *MwCommand) Synopsis() string {
	return "write memory of the target"
}

func (m *MwCommand) Usage() string {
	return `goratp mw -port <port> [-path /dev/mem] -addr <address> <byte...>:
	write bytes through a barebox device file
`
}

func (m *MwCommand) SetFlags(f *flag.FlagSet) {
	m.link.SetFlags(f)
	f.StringVar(&m.Path, "path", "/dev/mem", "device file")
	f.StringVar(&m.Addr, "addr", "0", "address")
}

func (m *MwCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usage(m.Name(), f)
	}
	addr, err := parseUint(m.Addr, 16)
	if err != nil {
		return fail(m.Name(), err)
	}
	data, err := parseBytes(f.Args())
	if err != nil {
		return fail(m.Name(), err)
	}
	s, err := m.link.connect(m.Name())
	if err != nil {
		return fail(m.Name(), err)
	}
	defer s.Close()
	written, err := s.Mw(m.Path, uint16(addr), data)
	if err != nil {
		return fail(m.Name(), err)
	}
	pterm.Success.Printfln("%d bytes written", written)
	return subcommands.ExitSuccess
}

func parseBytes(args []string) ([]byte, error) {
	data := make([]byte, 0, len(args))
	for _, a := range args {
		v, err := parseUint(a, 8)
		if err != nil {
			return nil, err
		}
		data = append(data, uint8(v))
	}
	return data, nil
}
