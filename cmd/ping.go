package cmd

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"
	"github.com/pterm/pterm"
)

type PingCommand struct {
	link  linkFlags
	Count int
	Stats bool
}

func (p *PingCommand) Name() string {
	return "ping"
}

func (p *PingCommand) Synopsis() string {
	return "ping the target"
}

func (p *PingCommand) Usage() string {
	return `goratp ping -port <port> [-count n] [-stats]:
	send ping messages and wait for pong
`
}

func (p *PingCommand) SetFlags(f *flag.FlagSet) {
	p.link.SetFlags(f)
	f.IntVar(&p.Count, "count", 1, "number of pings")
	f.BoolVar(&p.Stats, "stats", false, "show link statistics")
}

func (p *PingCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := p.link.connect(p.Name())
	if err != nil {
		return fail(p.Name(), err)
	}
	defer s.Close()
	for i := 0; i < p.Count; i++ {
		start := time.Now()
		if err := s.Ping(); err != nil {
			return fail(p.Name(), err)
		}
		pterm.Success.Printfln("pong %d: %s", i+1, time.Since(start))
	}
	if p.Stats {
		if err := renderStats(s.Stats()); err != nil {
			return fail(p.Name(), err)
		}
	}
	return subcommands.ExitSuccess
}
