package cmd

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/google/subcommands"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/terassyi/goratp/config"
	"github.com/terassyi/goratp/interfaces"
	"github.com/terassyi/goratp/proto/controller"
	"github.com/terassyi/goratp/proto/ratp"
)

// linkFlags are shared by every command talking to a target.
type linkFlags struct {
	Config   string
	Port     string
	Baudrate int
	Export   string
	Debug    bool
}

func (l *linkFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&l.Config, "config", "", "configuration file (toml)")
	f.StringVar(&l.Port, "port", "", "serial device or tcp://host:port")
	f.IntVar(&l.Baudrate, "baudrate", 0, "serial baudrate")
	f.StringVar(&l.Export, "export", "", "directory exported to the target")
	f.BoolVar(&l.Debug, "debug", false, "output debug message")
}

func (l *linkFlags) load() (config.Config, error) {
	cfg := config.Default()
	if l.Config != "" {
		var err error
		if cfg, err = config.Load(l.Config); err != nil {
			return cfg, err
		}
	}
	if l.Port != "" {
		cfg.Port = l.Port
	}
	if l.Baudrate != 0 {
		cfg.Baudrate = l.Baudrate
	}
	if l.Export != "" {
		cfg.Export = l.Export
	}
	if l.Debug {
		cfg.Debug = true
		logrus.SetLevel(logrus.DebugLevel)
	}
	return cfg, cfg.Validate()
}

type session struct {
	*controller.Controller
	iface interfaces.Iface
}

func (l *linkFlags) connect(command string) (*session, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	iface, err := interfaces.New(cfg.Port, cfg.Baudrate, cfg.ReadTimeout)
	if err != nil {
		return nil, err
	}
	conn := ratp.New(iface, cfg.RATP())
	if err := conn.Connect(cfg.ConnectTimeout); err != nil {
		iface.Close()
		return nil, errors.Wrapf(err, "connect to %s", cfg.Port)
	}
	logrus.WithFields(logrus.Fields{
		"command": command,
		"port":    cfg.Port,
	}).Debug("connected")
	ctrl := controller.New(conn, os.Stdout, cfg.Debug)
	if cfg.Export != "" {
		if err := ctrl.Export(cfg.Export); err != nil {
			ctrl.Close(cfg.ConnectTimeout)
			iface.Close()
			return nil, err
		}
	}
	return &session{Controller: ctrl, iface: iface}, nil
}

func (s *session) Close() {
	if err := s.Controller.Close(time.Second); err != nil {
		logrus.Debug(err)
	}
	s.iface.Close()
}

func fail(command string, err error) subcommands.ExitStatus {
	logrus.WithFields(logrus.Fields{
		"command": command,
	}).Error(err)
	return subcommands.ExitFailure
}

func usage(command string, f *flag.FlagSet) subcommands.ExitStatus {
	logrus.WithFields(logrus.Fields{
		"command": command,
	}).Errorf("invalid arguments: %v", f.Args())
	return subcommands.ExitUsageError
}

func parseUint(s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	return v, errors.Wrapf(err, "parse %q", s)
}
