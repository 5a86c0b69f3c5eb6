package interfaces

import (
	"net"
	"time"

	"github.com/pkg/errors"
)

const tcpScheme = "tcp://"

// tcpStream carries the link over a TCP connection, e.g. a ser2net bridge or an emulator.
type tcpStream struct {
	conn    net.Conn
	name    string
	timeout time.Duration
}

func newTcpStream(addr string, timeout time.Duration) (*tcpStream, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", addr)
	}
	return &tcpStream{
		conn:    conn,
		name:    tcpScheme + addr,
		timeout: timeout,
	}, nil
}

func (t *tcpStream) Name() string {
	return t.name
}

func (t *tcpStream) Recv(buf []byte) (int, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.timeout)); err != nil {
		return 0, err
	}
	n, err := t.conn.Read(buf)
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return n, nil
	}
	return n, err
}

func (t *tcpStream) Send(buf []byte) (int, error) {
	return t.conn.Write(buf)
}

func (t *tcpStream) Close() error {
	return t.conn.Close()
}
