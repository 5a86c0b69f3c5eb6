package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/terassyi/goratp/cmd"
)

func main() {
	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&cmd.PingCommand{}, "")
	subcommands.Register(&cmd.RunCommand{}, "")
	subcommands.Register(&cmd.GetenvCommand{}, "")
	subcommands.Register(&cmd.ListenCommand{}, "")
	subcommands.Register(&cmd.ResetCommand{}, "")
	subcommands.Register(&cmd.MdCommand{}, "memory")
	subcommands.Register(&cmd.MwCommand{}, "memory")
	subcommands.Register(&cmd.I2cReadCommand{}, "i2c")
	subcommands.Register(&cmd.I2cWriteCommand{}, "i2c")
	subcommands.Register(&cmd.GpioGetCommand{}, "gpio")
	subcommands.Register(&cmd.GpioSetCommand{}, "gpio")
	subcommands.Register(&cmd.GpioDirCommand{}, "gpio")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(subcommands.Execute(ctx)))
}
