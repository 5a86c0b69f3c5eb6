package interfaces

import (
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

type serialPort struct {
	port serial.Port
	name string
}

func newSerialPort(name string, baudrate int, timeout time.Duration) (*serialPort, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baudrate})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", name)
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, errors.Wrapf(err, "set read timeout on %s", name)
	}
	// stale console output
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, errors.Wrapf(err, "flush %s", name)
	}
	return &serialPort{
		port: port,
		name: name,
	}, nil
}

func (s *serialPort) Name() string {
	return s.name
}

func (s *serialPort) Recv(buf []byte) (int, error) {
	return s.port.Read(buf)
}

func (s *serialPort) Send(buf []byte) (int, error) {
	return s.port.Write(buf)
}

func (s *serialPort) Close() error {
	return s.port.Close()
}
