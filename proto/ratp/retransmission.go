package ratp

import (
	"time"

	"github.com/pkg/errors"
	"github.com/terassyi/goratp/packet/ratp"
)

// retransmission is the single slot holding the segment awaiting an ACK.
type retransmission struct {
	segment  *ratp.Segment
	count    int
	sentAt   time.Time
	deadline time.Time
}

func (c *Conn) rto() time.Duration {
	rto := time.Duration(c.config.Beta * float64(c.srtt))
	if rto < c.config.RtoMin {
		return c.config.RtoMin
	}
	if rto > c.config.RtoMax {
		return c.config.RtoMax
	}
	return rto
}

// occupy replaces the slot. The counter starts over for a new segment.
func (c *Conn) occupy(seg *ratp.Segment) {
	now := time.Now()
	c.retrans = &retransmission{
		segment:  seg,
		sentAt:   now,
		deadline: now.Add(c.rto()),
	}
}

// acknowledged clears the slot. Only segments sent exactly once give an RTT sample.
func (c *Conn) acknowledged() {
	if c.retrans == nil {
		return
	}
	if c.retrans.count == 0 {
		c.updateSrtt(time.Since(c.retrans.sentAt))
	}
	c.retrans = nil
}

func (c *Conn) updateSrtt(rtt time.Duration) {
	c.srtt = time.Duration(c.config.Alpha*float64(c.srtt) + (1-c.config.Alpha)*float64(rtt))
	c.logger.Debugf("srtt=%s rto=%s", c.srtt, c.rto())
}

func (c *Conn) checkRetransmission() error {
	r := c.retrans
	if r == nil || time.Now().Before(r.deadline) {
		return nil
	}
	if r.count >= c.config.MaxRetransmits {
		c.logger.Warnf("%s: giving up after %d retransmits", r.segment, r.count)
		c.CLOSED()
		return errors.Wrapf(ErrRetransmitExceeded, "%s", r.segment)
	}
	r.count++
	c.stats.Retransmits++
	r.deadline = time.Now().Add(c.rto())
	c.logger.Debugf("retransmit %s (%d)", r.segment, r.count)
	return c.transmit(r.segment)
}

func (c *Conn) checkTimeWait() {
	if c.getState() != TIME_WAIT || time.Now().Before(c.timeWaitDeadline) {
		return
	}
	c.logger.Debug("time wait expired")
	c.CLOSED()
}
