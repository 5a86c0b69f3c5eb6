package cmd

import (
	"context"
	"flag"

	"github.com/google/subcommands"
)

type ResetCommand struct {
	link  linkFlags
	Force bool
}

func (r *ResetCommand) Name() string {
	return "reset"
}

func (r *ResetCommand) Synopsis() string {
	return "reset the target"
}

func (r *ResetCommand) Usage() string {
	return `goratp reset -port <port> [-force]:
	restart the target
`
}

func (r *ResetCommand) SetFlags(f *flag.FlagSet) {
	r.link.SetFlags(f)
	f.BoolVar(&r.Force, "force", false, "skip driver shutdown")
}

func (r *ResetCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	s, err := r.link.connect(r.Name())
	if err != nil {
		return fail(r.Name(), err)
	}
	// the target is gone after a reset, closing the connection would only time out
	defer s.iface.Close()
	if err := s.Reset(r.Force); err != nil {
		return fail(r.Name(), err)
	}
	return subcommands.ExitSuccess
}
