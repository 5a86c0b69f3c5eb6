package interfaces

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Iface is a byte stream to the peer. Recv returns 0, nil when nothing
// arrived within the read timeout and io.EOF once the link is gone.
type Iface interface {
	Name() string
	Recv([]byte) (int, error)
	Send([]byte) (int, error)
	Close() error
}

// New opens name as a serial device, or as a TCP stream when it has the
// form tcp://host:port.
func New(name string, baudrate int, timeout time.Duration) (Iface, error) {
	switch {
	case name == "":
		return nil, errors.New("empty port name")
	case strings.HasPrefix(name, tcpScheme):
		return newTcpStream(strings.TrimPrefix(name, tcpScheme), timeout)
	default:
		return newSerialPort(name, baudrate, timeout)
	}
}
