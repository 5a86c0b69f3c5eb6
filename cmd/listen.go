package cmd

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/google/subcommands"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
)

type ListenCommand struct {
	link linkFlags
}

func (l *ListenCommand) Name() string {
	return "listen"
}

func (l *ListenCommand) Synopsis() string {
	return "attach to the console of the target"
}

func (l *ListenCommand) Usage() string {
	return `goratp listen -port <port> [-export <dir>]:
	forward stdin to the barebox console and print its output until interrupted
`
}

func (l *ListenCommand) SetFlags(f *flag.FlagSet) {
	l.link.SetFlags(f)
}

func (l *ListenCommand) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := l.link.connect(l.Name())
	if err != nil {
		return fail(l.Name(), err)
	}
	defer s.Close()
	events, err := s.Start()
	if err != nil {
		return fail(l.Name(), err)
	}
	pterm.Info.Println("attached, press ctrl-c to leave")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	input := make(chan []byte)
	go func() {
		reader := bufio.NewReader(os.Stdin)
		for {
			line, err := reader.ReadBytes('\n')
			if len(line) > 0 {
				input <- line
			}
			if err != nil {
				close(input)
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			if err := s.Stop(); err != nil {
				return fail(l.Name(), err)
			}
			return subcommands.ExitSuccess
		case line, ok := <-input:
			if !ok {
				input = nil
				continue
			}
			if err := s.SendAsyncConsole(line); err != nil {
				return fail(l.Name(), err)
			}
		case ev, ok := <-events:
			if !ok {
				if err := s.Stop(); err != nil {
					return fail(l.Name(), err)
				}
				return subcommands.ExitSuccess
			}
			if ev.Err != nil {
				return fail(l.Name(), ev.Err)
			}
			os.Stdout.Write(ev.Text)
			logrus.WithFields(logrus.Fields{
				"command": l.Name(),
			}).Debugf("%d bytes of console output", len(ev.Text))
		}
	}
}
