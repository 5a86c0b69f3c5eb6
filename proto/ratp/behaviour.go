package ratp

import (
	"github.com/pkg/errors"
	"github.com/terassyi/goratp/packet/ratp"
)

// A guard inspects an incoming segment. It returns true to pass the segment
// to the next guard of the current state, false when the segment is consumed.
// A non-nil error is surfaced to the caller of the blocking operation.
type guard func(c *Conn, seg *ratp.Segment) (bool, error)

// behaviours lists the guards applied in each state, in order.
var behaviours = map[State][]guard{
	LISTEN:       {(*Conn).behaviourA},
	SYN_SENT:     {(*Conn).behaviourB},
	SYN_RECEIVED: {(*Conn).behaviourC1, (*Conn).behaviourD1, (*Conn).behaviourE, (*Conn).behaviourF1, (*Conn).behaviourH1},
	ESTABLISHED:  {(*Conn).behaviourC2, (*Conn).behaviourD2, (*Conn).behaviourE, (*Conn).behaviourF2, (*Conn).behaviourH2, (*Conn).behaviourI1},
	FIN_WAIT:     {(*Conn).behaviourC2, (*Conn).behaviourD2, (*Conn).behaviourE, (*Conn).behaviourF3, (*Conn).behaviourH3},
	LAST_ACK:     {(*Conn).behaviourC2, (*Conn).behaviourD3, (*Conn).behaviourE, (*Conn).behaviourF3, (*Conn).behaviourH4},
	CLOSING:      {(*Conn).behaviourC2, (*Conn).behaviourD3, (*Conn).behaviourE, (*Conn).behaviourF3, (*Conn).behaviourH5},
	TIME_WAIT:    {(*Conn).behaviourD3, (*Conn).behaviourE, (*Conn).behaviourF3, (*Conn).behaviourH6},
	CLOSED:       {(*Conn).behaviourG},
}

func (c *Conn) handle(seg *ratp.Segment) error {
	state := c.getState()
	c.logger.Debugf("%s: recv %s", state, seg)
	defer func() {
		if s := c.getState(); s != state {
			c.logger.Debugf("%s -> %s", state, s)
		}
	}()
	for _, g := range behaviours[state] {
		next, err := g(c, seg)
		if err != nil {
			return err
		}
		if !next {
			return nil
		}
	}
	return nil
}

// reply to seg with the given flags, SN taken from its AN and AN from its SN.
func (c *Conn) reply(seg *ratp.Segment, control ratp.ControlFlag) error {
	f := seg.Header.Control
	return c.write(ratp.Build(control.WithSn(f.An()).WithAn(f.Sn()+1), 0, nil))
}

func (c *Conn) sendSynAck(seg *ratp.Segment) error {
	control := (ratp.SYN | ratp.ACK).WithSn(0).WithAn(seg.Header.Control.Sn() + 1)
	return c.write(ratp.Build(control, c.sMDL, nil))
}

// listen
func (c *Conn) behaviourA(seg *ratp.Segment) (bool, error) {
	f := seg.Header.Control
	switch {
	case f.Rst():
		return false, nil
	case f.Ack():
		return false, c.write(ratp.Build(ratp.RST.WithSn(f.An()), 0, nil))
	case f.Syn():
		c.rMDL = seg.Header.Length
		c.rSN = f.Sn()
		if err := c.sendSynAck(seg); err != nil {
			return false, err
		}
		c.SYN_RECEIVED()
	}
	return false, nil
}

// syn sent
func (c *Conn) behaviourB(seg *ratp.Segment) (bool, error) {
	f := seg.Header.Control
	if f.Ack() && !c.anExpected(seg) {
		if f.Rst() {
			return false, nil
		}
		return false, c.write(ratp.Build(ratp.RST.WithSn(f.An()), 0, nil))
	}
	if f.Rst() {
		if !f.Ack() {
			return false, nil
		}
		c.CLOSED()
		return false, ErrConnectionRefused
	}
	if !f.Syn() {
		return false, nil
	}
	c.rMDL = seg.Header.Length
	c.rSN = f.Sn()
	if f.Ack() {
		c.acknowledged()
		if err := c.reply(seg, ratp.ACK); err != nil {
			return false, err
		}
		c.ESTABLISHED()
		return false, nil
	}
	// simultaneous open
	c.retrans = nil
	if err := c.sendSynAck(seg); err != nil {
		return false, err
	}
	c.SYN_RECEIVED()
	return false, nil
}

// duplicate detection while the connection is being opened
func (c *Conn) behaviourC1(seg *ratp.Segment) (bool, error) {
	if c.snExpected(seg) {
		return true, nil
	}
	f := seg.Header.Control
	if f.Rst() || f.Fin() {
		return false, nil
	}
	c.logger.Debugf("duplicate %s", seg)
	return false, c.reply(seg, ratp.ACK)
}

// duplicate detection on an open connection
func (c *Conn) behaviourC2(seg *ratp.Segment) (bool, error) {
	if c.snExpected(seg) {
		return true, nil
	}
	f := seg.Header.Control
	if f.Rst() || f.Fin() {
		return false, nil
	}
	if f.Syn() {
		if err := c.reply(seg, ratp.RST|ratp.ACK); err != nil {
			return false, err
		}
		c.CLOSED()
		return false, errors.Wrap(ErrConnectionReset, "duplicate syn")
	}
	c.logger.Debugf("duplicate %s", seg)
	return false, c.reply(seg, ratp.ACK)
}

func (c *Conn) behaviourD1(seg *ratp.Segment) (bool, error) {
	if !seg.Header.Control.Rst() {
		return true, nil
	}
	c.retrans = nil
	if c.passive {
		c.LISTEN()
		return false, nil
	}
	c.CLOSED()
	return false, ErrConnectionRefused
}

func (c *Conn) behaviourD2(seg *ratp.Segment) (bool, error) {
	if !seg.Header.Control.Rst() {
		return true, nil
	}
	c.CLOSED()
	return false, ErrConnectionReset
}

func (c *Conn) behaviourD3(seg *ratp.Segment) (bool, error) {
	if !seg.Header.Control.Rst() {
		return true, nil
	}
	c.CLOSED()
	return false, nil
}

// unexpected syn
func (c *Conn) behaviourE(seg *ratp.Segment) (bool, error) {
	f := seg.Header.Control
	if !f.Syn() {
		return true, nil
	}
	c.retrans = nil
	var sn uint8
	if f.Ack() {
		sn = f.An()
	}
	if err := c.write(ratp.Build(ratp.RST.WithSn(sn), 0, nil)); err != nil {
		return false, err
	}
	c.CLOSED()
	return false, errors.Wrap(ErrConnectionReset, "unexpected syn")
}

func (c *Conn) behaviourF1(seg *ratp.Segment) (bool, error) {
	f := seg.Header.Control
	if !f.Ack() {
		return false, nil
	}
	if c.anExpected(seg) {
		c.acknowledged()
		return true, nil
	}
	if err := c.write(ratp.Build(ratp.RST.WithSn(f.An()), 0, nil)); err != nil {
		return false, err
	}
	c.retrans = nil
	if c.passive {
		c.LISTEN()
		return false, nil
	}
	c.CLOSED()
	return false, ErrConnectionRefused
}

func (c *Conn) behaviourF2(seg *ratp.Segment) (bool, error) {
	if !seg.Header.Control.Ack() {
		return false, nil
	}
	if c.anExpected(seg) {
		c.acknowledged()
	}
	return true, nil
}

func (c *Conn) behaviourF3(seg *ratp.Segment) (bool, error) {
	return seg.Header.Control.Ack(), nil
}

// closed
func (c *Conn) behaviourG(seg *ratp.Segment) (bool, error) {
	f := seg.Header.Control
	if f.Rst() {
		return false, nil
	}
	if f.Ack() {
		return false, c.write(ratp.Build(ratp.RST.WithSn(f.An()), 0, nil))
	}
	return false, c.write(ratp.Build((ratp.RST|ratp.ACK).WithSn(f.An()).WithAn(f.Sn()+1), 0, nil))
}

func (c *Conn) behaviourH1(seg *ratp.Segment) (bool, error) {
	c.ESTABLISHED()
	return c.behaviourI1(seg)
}

// remote close
func (c *Conn) behaviourH2(seg *ratp.Segment) (bool, error) {
	f := seg.Header.Control
	if !f.Fin() {
		return true, nil
	}
	if c.retrans != nil {
		c.logger.Warnf("%s: unacknowledged data discarded by remote close", c.retrans.segment)
		c.retrans = nil
	}
	// the ACK answering our FIN carries the sequence number following this FIN
	c.rSN = f.Sn()
	if err := c.reply(seg, ratp.FIN|ratp.ACK); err != nil {
		return false, err
	}
	c.LAST_ACK()
	return false, ErrClosedByRemote
}

func (c *Conn) behaviourH3(seg *ratp.Segment) (bool, error) {
	f := seg.Header.Control
	if !f.Fin() {
		// our FIN got lost, wait for the retransmission
		return false, nil
	}
	if seg.Header.HasData() {
		if err := c.reply(seg, ratp.RST|ratp.ACK); err != nil {
			return false, err
		}
		c.CLOSED()
		return false, errors.Wrap(ErrConnectionReset, "data after fin")
	}
	if c.anExpected(seg) {
		c.retrans = nil
		if err := c.reply(seg, ratp.ACK); err != nil {
			return false, err
		}
		c.TIME_WAIT(c.rto())
		return false, nil
	}
	// simultaneous close, our FIN stays in the slot until acknowledged
	if err := c.reply(seg, ratp.ACK); err != nil {
		return false, err
	}
	c.CLOSING()
	return false, nil
}

func (c *Conn) behaviourH4(seg *ratp.Segment) (bool, error) {
	if c.anExpected(seg) {
		c.retrans = nil
		c.TIME_WAIT(c.rto())
	}
	return false, nil
}

func (c *Conn) behaviourH5(seg *ratp.Segment) (bool, error) {
	if c.anExpected(seg) {
		c.retrans = nil
		c.TIME_WAIT(c.rto())
	}
	return false, nil
}

// time wait: answer a retransmitted FIN and restart the timer
func (c *Conn) behaviourH6(seg *ratp.Segment) (bool, error) {
	f := seg.Header.Control
	if !f.Ack() || !f.Fin() {
		return false, nil
	}
	c.retrans = nil
	if err := c.reply(seg, ratp.ACK); err != nil {
		return false, err
	}
	c.TIME_WAIT(c.rto())
	return false, nil
}

// data delivery
func (c *Conn) behaviourI1(seg *ratp.Segment) (bool, error) {
	if !seg.Header.HasData() {
		return false, nil
	}
	c.rSN = seg.Header.Control.Sn()
	c.rxBuf = append(c.rxBuf, seg.Payload()...)
	if seg.Header.Control.Eor() {
		msg := c.rxBuf
		c.rxBuf = nil
		c.rxQueue.push(msg)
		c.logger.Debugf("message of %d bytes queued", len(msg))
	}
	return false, c.reply(seg, ratp.ACK)
}
