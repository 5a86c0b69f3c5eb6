package config

import (
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/terassyi/goratp/proto/ratp"
)

type Config struct {
	Port           string
	Baudrate       int
	ReadTimeout    time.Duration
	ConnectTimeout time.Duration
	RtoMin         time.Duration
	RtoMax         time.Duration
	SrttInitial    time.Duration
	RttAlpha       float64
	RttBeta        float64
	MaxRetransmits int
	Export         string
	Debug          bool
}

type fileConfig struct {
	Port           string  `toml:"port"`
	Baudrate       int     `toml:"baudrate"`
	ReadTimeout    string  `toml:"read_timeout"`
	ConnectTimeout string  `toml:"connect_timeout"`
	RtoMin         string  `toml:"rto_min"`
	RtoMax         string  `toml:"rto_max"`
	SrttInitial    string  `toml:"srtt_initial"`
	RttAlpha       float64 `toml:"rtt_alpha"`
	RttBeta        float64 `toml:"rtt_beta"`
	MaxRetransmits int     `toml:"max_retransmits"`
	Export         string  `toml:"export"`
	Debug          bool    `toml:"debug"`
}

func Default() Config {
	r := ratp.DefaultConfig()
	return Config{
		Port:           "/dev/ttyUSB0",
		Baudrate:       115200,
		ReadTimeout:    10 * time.Millisecond,
		ConnectTimeout: 5 * time.Second,
		RtoMin:         r.RtoMin,
		RtoMax:         r.RtoMax,
		SrttInitial:    r.SrttInitial,
		RttAlpha:       r.Alpha,
		RttBeta:        r.Beta,
		MaxRetransmits: r.MaxRetransmits,
	}
}

// Load overlays the keys present in the TOML file at path on the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, errors.Wrap(err, "load config")
	}

	if meta.IsDefined("port") {
		cfg.Port = strings.TrimSpace(raw.Port)
	}
	if meta.IsDefined("baudrate") {
		cfg.Baudrate = raw.Baudrate
	}
	for _, d := range []struct {
		key   string
		value string
		out   *time.Duration
	}{
		{"read_timeout", raw.ReadTimeout, &cfg.ReadTimeout},
		{"connect_timeout", raw.ConnectTimeout, &cfg.ConnectTimeout},
		{"rto_min", raw.RtoMin, &cfg.RtoMin},
		{"rto_max", raw.RtoMax, &cfg.RtoMax},
		{"srtt_initial", raw.SrttInitial, &cfg.SrttInitial},
	} {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.value))
		if err != nil {
			return Config{}, errors.Wrapf(err, "parse %s", d.key)
		}
		*d.out = v
	}
	if meta.IsDefined("rtt_alpha") {
		cfg.RttAlpha = raw.RttAlpha
	}
	if meta.IsDefined("rtt_beta") {
		cfg.RttBeta = raw.RttBeta
	}
	if meta.IsDefined("max_retransmits") {
		cfg.MaxRetransmits = raw.MaxRetransmits
	}
	if meta.IsDefined("export") {
		cfg.Export = strings.TrimSpace(raw.Export)
	}
	if meta.IsDefined("debug") {
		cfg.Debug = raw.Debug
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.Port == "":
		return errors.New("port is empty")
	case c.Baudrate <= 0:
		return errors.Errorf("invalid baudrate %d", c.Baudrate)
	case c.RtoMin <= 0 || c.RtoMax < c.RtoMin:
		return errors.Errorf("invalid rto range [%s, %s]", c.RtoMin, c.RtoMax)
	case c.RttAlpha < 0 || c.RttAlpha > 1:
		return errors.Errorf("rtt_alpha %v out of [0, 1]", c.RttAlpha)
	case c.MaxRetransmits < 0:
		return errors.Errorf("invalid max_retransmits %d", c.MaxRetransmits)
	}
	return nil
}

func (c Config) RATP() ratp.Config {
	return ratp.Config{
		RtoMin:         c.RtoMin,
		RtoMax:         c.RtoMax,
		SrttInitial:    c.SrttInitial,
		Alpha:          c.RttAlpha,
		Beta:           c.RttBeta,
		MaxRetransmits: c.MaxRetransmits,
		Debug:          c.Debug,
	}
}
