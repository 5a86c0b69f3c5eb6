package ratp

import (
	"io"
	"sync"
	"time"

	pool "github.com/libp2p/go-buffer-pool"
	"github.com/pkg/errors"
	"github.com/terassyi/goratp/interfaces"
	"github.com/terassyi/goratp/logger"
	"github.com/terassyi/goratp/packet/ratp"
	"golang.org/x/time/rate"
)

const readChunk = 512

// Conn is one end of a RATP connection over a link.
// Its methods must be called from a single goroutine; Pending may be
// called from any goroutine.
type Conn struct {
	*controlBlock
	iface   interfaces.Iface
	config  Config
	logger  *logger.Logger
	input   []byte
	rxBuf   []byte
	rxQueue *messageQueue
	stats   Stats
	spam    *rate.Limiter
}

// Stats are the link quality counters of a connection.
type Stats struct {
	Retransmits    int
	ChecksumErrors int
	Srtt           time.Duration
	Rto            time.Duration
}

type messageQueue struct {
	mutex    sync.Mutex
	messages [][]byte
}

func (q *messageQueue) push(msg []byte) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.messages = append(q.messages, msg)
}

func (q *messageQueue) pop() ([]byte, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if len(q.messages) == 0 {
		return nil, false
	}
	msg := q.messages[0]
	q.messages = q.messages[1:]
	return msg, true
}

func (q *messageQueue) len() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.messages)
}

func New(iface interfaces.Iface, config Config) *Conn {
	return &Conn{
		controlBlock: newControlBlock(config.SrttInitial),
		iface:        iface,
		config:       config,
		logger:       logger.New(config.Debug, "ratp").With("link", iface.Name()),
		rxQueue:      &messageQueue{},
		spam:         rate.NewLimiter(rate.Limit(1), 5),
	}
}

func (c *Conn) Status() State {
	return c.getState()
}

func (c *Conn) Stats() Stats {
	s := c.stats
	s.Srtt = c.srtt
	s.Rto = c.rto()
	return s
}

// Pending returns the number of reassembled messages not yet received.
func (c *Conn) Pending() int {
	return c.rxQueue.len()
}

// Listen makes the connection wait passively for a SYN.
func (c *Conn) Listen() {
	c.passive = true
	c.retrans = nil
	c.LISTEN()
}

// Accept listens and polls the link until a peer has opened the connection.
// A zero timeout waits forever.
func (c *Conn) Accept(timeout time.Duration) error {
	c.Listen()
	if err := c.waitFor(deadline(timeout), func() bool { return c.getState() == ESTABLISHED }); err != nil {
		return err
	}
	if c.getState() != ESTABLISHED {
		return errors.Wrap(ErrTimeout, "accept")
	}
	return nil
}

// Connect performs an active open.
func (c *Conn) Connect(timeout time.Duration) error {
	c.passive = false
	c.retrans = nil
	c.rxBuf = nil
	if err := c.write(ratp.Build(ratp.SYN, c.sMDL, nil)); err != nil {
		return err
	}
	c.SYN_SENT()
	done := func() bool {
		s := c.getState()
		return s == ESTABLISHED || s == CLOSED
	}
	if err := c.waitFor(deadline(timeout), done); err != nil {
		return err
	}
	switch c.getState() {
	case ESTABLISHED:
		c.logger.Info("connection established")
		return nil
	case CLOSED:
		return ErrConnectionRefused
	default:
		c.CLOSED()
		return errors.Wrap(ErrTimeout, "connect")
	}
}

// Send transmits data as one message, fragmented into segments of at most
// 255 bytes. Each fragment is acknowledged before the next one is sent.
func (c *Conn) Send(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyMessage
	}
	for len(data) > ratp.MaxDataLength {
		if err := c.sendOne(data[:ratp.MaxDataLength], false); err != nil {
			return err
		}
		data = data[ratp.MaxDataLength:]
	}
	return c.sendOne(data, true)
}

func (c *Conn) sendOne(data []byte, eor bool) error {
	if c.getState() != ESTABLISHED {
		return ErrNotEstablished
	}
	if c.retrans != nil {
		return ErrBusy
	}
	control := ratp.ACK.WithSn(c.sSN + 1).WithAn(c.rSN + 1)
	if eor {
		control |= ratp.EOR
	}
	var seg *ratp.Segment
	if len(data) == 1 {
		seg = ratp.Build(control|ratp.SO, data[0], nil)
	} else {
		seg = ratp.Build(control, 0, data)
	}
	if err := c.write(seg); err != nil {
		return err
	}
	if err := c.waitFor(time.Time{}, func() bool { return c.retrans == nil }); err != nil {
		return err
	}
	if c.getState() != ESTABLISHED {
		return errors.Wrapf(ErrConnectionReset, "%s", c.getState())
	}
	return nil
}

// Recv returns the next complete message. It returns nil without an error
// when no message arrived within timeout.
func (c *Conn) Recv(timeout time.Duration) ([]byte, error) {
	if msg, ok := c.rxQueue.pop(); ok {
		return msg, nil
	}
	if c.getState() != ESTABLISHED {
		return nil, ErrNotEstablished
	}
	if err := c.waitFor(deadline(timeout), func() bool { return c.rxQueue.len() > 0 }); err != nil {
		return nil, err
	}
	msg, _ := c.rxQueue.pop()
	return msg, nil
}

// Poll reads and handles at most one segment and runs the timers.
func (c *Conn) Poll() error {
	seg, err := c.read()
	if err != nil {
		return err
	}
	if seg != nil {
		if err := c.handle(seg); err != nil {
			return err
		}
	}
	if err := c.checkRetransmission(); err != nil {
		return err
	}
	c.checkTimeWait()
	return nil
}

// Close sends a FIN and waits for the closing handshake, then drains TIME_WAIT.
func (c *Conn) Close(timeout time.Duration) error {
	switch c.getState() {
	case CLOSED:
		return nil
	case LISTEN, SYN_SENT:
		c.CLOSED()
		return nil
	case ESTABLISHED, SYN_RECEIVED:
		if c.retrans != nil {
			c.logger.Warnf("%s: unacknowledged segment discarded by close", c.retrans.segment)
		}
		fin := ratp.Build((ratp.FIN|ratp.ACK).WithSn(c.sSN+1).WithAn(c.rSN+1), 0, nil)
		if err := c.write(fin); err != nil {
			return err
		}
		c.FIN_WAIT()
	}
	done := func() bool {
		s := c.getState()
		return s == TIME_WAIT || s == CLOSED
	}
	if err := c.waitFor(deadline(timeout), done); err != nil {
		return err
	}
	if c.getState() == TIME_WAIT {
		if err := c.waitFor(time.Time{}, func() bool { return c.getState() != TIME_WAIT }); err != nil {
			return err
		}
	}
	if s := c.getState(); s != CLOSED {
		return errors.Wrapf(ErrTimeout, "close in %s", s)
	}
	c.logger.Info("connection closed")
	return nil
}

func deadline(timeout time.Duration) time.Time {
	if timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(timeout)
}

// waitFor polls until done holds or the deadline passes. A zero deadline never expires.
func (c *Conn) waitFor(deadline time.Time, done func() bool) error {
	for !done() {
		if !deadline.IsZero() && !time.Now().Before(deadline) {
			return nil
		}
		if err := c.Poll(); err != nil {
			return err
		}
	}
	return nil
}

// write sends seg. Segments that need an acknowledgement take the
// retransmission slot. A RST is never acknowledged and only advances SN.
func (c *Conn) write(seg *ratp.Segment) error {
	if seg.Occupied() {
		c.sSN = seg.Header.Control.Sn()
		if !seg.Header.Control.Rst() {
			c.occupy(seg)
		}
	}
	return c.transmit(seg)
}

func (c *Conn) transmit(seg *ratp.Segment) error {
	c.logger.Debugf("%s: send %s", c.getState(), seg)
	if _, err := c.iface.Send(seg.Serialize()); err != nil {
		if err == io.EOF || err == io.ErrClosedPipe {
			return errors.Wrap(ErrLinkClosed, err.Error())
		}
		return errors.Wrap(err, "send segment")
	}
	return nil
}

// fill reads from the link until the input holds n bytes or the link times out.
func (c *Conn) fill(n int) error {
	if len(c.input) >= n {
		return nil
	}
	buf := pool.Get(readChunk)
	defer pool.Put(buf)
	k, err := c.iface.Recv(buf)
	if k > 0 {
		c.input = append(c.input, buf[:k]...)
	}
	if err != nil {
		if err == io.EOF {
			return errors.Wrap(ErrLinkClosed, c.iface.Name())
		}
		return errors.Wrap(err, "recv")
	}
	return nil
}

// read returns the next valid segment, or nil when none is complete yet.
// Bytes preceding a valid header are skipped one at a time.
func (c *Conn) read() (*ratp.Segment, error) {
	if err := c.fill(ratp.HeaderLength); err != nil {
		return nil, err
	}
	if len(c.input) < ratp.HeaderLength {
		return nil, nil
	}
	h, err := ratp.DecodeHeader(c.input)
	if err != nil {
		c.input = c.input[1:]
		return nil, nil
	}
	if !h.HasPayload() {
		c.input = c.input[ratp.HeaderLength:]
		return &ratp.Segment{Header: *h}, nil
	}
	total := ratp.HeaderLength + int(h.Length) + ratp.ChecksumLength
	if err := c.fill(total); err != nil {
		return nil, err
	}
	if len(c.input) < total {
		return nil, nil
	}
	payload, err := ratp.DecodePayload(c.input[ratp.HeaderLength:total], h.Length)
	c.input = c.input[total:]
	if err != nil {
		c.stats.ChecksumErrors++
		if c.spam.Allow() {
			c.logger.Warnf("%v (%d checksum errors)", err, c.stats.ChecksumErrors)
		}
		return nil, nil
	}
	return &ratp.Segment{Header: *h, Data: payload}, nil
}
