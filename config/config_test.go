package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func write(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "goratp.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(write(t, `
port = "tcp://localhost:4444"
rto_min = "50ms"
max_retransmits = 3
export = " /srv/boot "
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "tcp://localhost:4444" || cfg.Export != "/srv/boot" {
		t.Fatalf("actual %+v", cfg)
	}
	if cfg.RtoMin != 50*time.Millisecond || cfg.MaxRetransmits != 3 {
		t.Fatalf("actual %+v", cfg)
	}
	// untouched keys keep their defaults
	if cfg.Baudrate != 115200 || cfg.RtoMax != time.Second || cfg.RttAlpha != 0.8 {
		t.Fatalf("actual %+v", cfg)
	}
	r := cfg.RATP()
	if r.RtoMin != 50*time.Millisecond || r.MaxRetransmits != 3 || r.Beta != 2.0 {
		t.Fatalf("actual %+v", r)
	}
}

func TestLoadInvalid(t *testing.T) {
	for _, content := range []string{
		`read_timeout = "soon"`,
		`rto_min = "2s"`,
		`baudrate = 0`,
		`port = `,
	} {
		if _, err := Load(write(t, content)); err == nil {
			t.Fatalf("%q is accepted", content)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("missing file is accepted")
	}
}

func TestDefault(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
}
