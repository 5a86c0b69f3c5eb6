package interfaces

import (
	"io"
	"sync"
	"time"
)

// Pipe is one end of an in-memory link. Every Send is passed through the
// filter of the sending end, which may drop (return nil) or alter the bytes.
type Pipe struct {
	name    string
	in      *stream
	out     *stream
	timeout time.Duration
	mutex   sync.Mutex
	filter  func([]byte) []byte
}

type stream struct {
	mutex  sync.Mutex
	buf    []byte
	closed bool
	notify chan struct{}
}

func newStream() *stream {
	return &stream{notify: make(chan struct{}, 1)}
}

// NewPipe returns two connected ends whose Recv gives up after timeout.
func NewPipe(timeout time.Duration) (*Pipe, *Pipe) {
	a, b := newStream(), newStream()
	return &Pipe{name: "pipe0", in: a, out: b, timeout: timeout},
		&Pipe{name: "pipe1", in: b, out: a, timeout: timeout}
}

func (p *Pipe) SetFilter(f func([]byte) []byte) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.filter = f
}

func (p *Pipe) Name() string {
	return p.name
}

func (p *Pipe) Recv(buf []byte) (int, error) {
	return p.in.read(buf, p.timeout)
}

func (p *Pipe) Send(buf []byte) (int, error) {
	p.mutex.Lock()
	f := p.filter
	p.mutex.Unlock()
	data := make([]byte, len(buf))
	copy(data, buf)
	if f != nil {
		data = f(data)
	}
	if err := p.out.write(data); err != nil {
		return 0, err
	}
	return len(buf), nil
}

func (p *Pipe) Close() error {
	p.in.close()
	p.out.close()
	return nil
}

func (s *stream) read(buf []byte, timeout time.Duration) (int, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		s.mutex.Lock()
		if len(s.buf) > 0 {
			n := copy(buf, s.buf)
			s.buf = s.buf[n:]
			s.mutex.Unlock()
			return n, nil
		}
		closed := s.closed
		s.mutex.Unlock()
		if closed {
			return 0, io.EOF
		}
		select {
		case <-s.notify:
		case <-timer.C:
			return 0, nil
		}
	}
}

func (s *stream) write(data []byte) error {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return io.ErrClosedPipe
	}
	s.buf = append(s.buf, data...)
	s.mutex.Unlock()
	s.wake()
	return nil
}

func (s *stream) close() {
	s.mutex.Lock()
	s.closed = true
	s.mutex.Unlock()
	s.wake()
}

func (s *stream) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
