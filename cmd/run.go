package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type RunCommand struct {
	link linkFlags
}

func (r *RunCommand) Name() string {
	return "run"
}

func (r *RunCommand) Synopsis() string {
	return "run a shell command on the target"
}

func (r *RunCommand) Usage() string {
	return `goratp run -port <port> <command...>:
	run a command in the barebox shell and exit with its exit code
`
}

func (r *RunCommand) SetFlags(f *flag.FlagSet) {
	r.link.SetFlags(f)
}

func (r *RunCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usage(r.Name(), f)
	}
	s, err := r.link.connect(r.Name())
	if err != nil {
		return fail(r.Name(), err)
	}
	defer s.Close()
	code, err := s.Command(strings.Join(f.Args(), " "))
	if err != nil {
		return fail(r.Name(), err)
	}
	if code != 0 {
		logrus.WithFields(logrus.Fields{
			"command": r.Name(),
		}).Warnf("exit code %d", code)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
