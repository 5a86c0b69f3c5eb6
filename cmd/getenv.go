package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type GetenvCommand struct {
	link linkFlags
}

func (g *GetenvCommand) Name() string {
	return "getenv"
}

func (g *GetenvCommand) Synopsis() string {
	return "read an environment variable of the target"
}

func (g *GetenvCommand) Usage() string {
	return `goratp getenv -port <port> <name>:
	print the value of a barebox variable
`
}

func (g *GetenvCommand) SetFlags(f *flag.FlagSet) {
	g.link.SetFlags(f)
}

func (g *GetenvCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage(g.Name(), f)
	}
	s, err := g.link.connect(g.Name())
	if err != nil {
		return fail(g.Name(), err)
	}
	defer s.Close()
	value, err := s.Getenv(f.Arg(0))
	if err != nil {
		return fail(g.Name(), err)
	}
	fmt.Println(value)
	return subcommands.ExitSuccess
}
