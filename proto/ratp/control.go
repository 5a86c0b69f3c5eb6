package ratp

import (
	"sync"
	"time"

	"github.com/terassyi/goratp/packet/ratp"
)

type State int

// controlBlock holds the connection state shared by the guards.
type controlBlock struct {
	state   State
	passive bool
	sSN     uint8 // SN of the last occupied segment we sent
	rSN     uint8 // SN of the last accepted segment
	sMDL    uint8
	rMDL    uint8
	retrans *retransmission
	srtt    time.Duration

	timeWaitDeadline time.Time
	mutex            *sync.RWMutex
}

func newControlBlock(srtt time.Duration) *controlBlock {
	return &controlBlock{
		state: CLOSED,
		sMDL:  mdl,
		srtt:  srtt,
		mutex: &sync.RWMutex{},
	}
}

func (s State) String() string {
	switch s {
	case CLOSED:
		return "CLOSED"
	case LISTEN:
		return "LISTEN"
	case SYN_SENT:
		return "SYN_SENT"
	case SYN_RECEIVED:
		return "SYN_RECEIVED"
	case ESTABLISHED:
		return "ESTABLISHED"
	case FIN_WAIT:
		return "FIN_WAIT"
	case LAST_ACK:
		return "LAST_ACK"
	case CLOSING:
		return "CLOSING"
	case TIME_WAIT:
		return "TIME_WAIT"
	default:
		return "UNKNOWN"
	}
}

func (cb *controlBlock) setState(s State) {
	cb.mutex.Lock()
	defer cb.mutex.Unlock()
	cb.state = s
}

func (cb *controlBlock) getState() State {
	cb.mutex.RLock()
	defer cb.mutex.RUnlock()
	return cb.state
}

func (cb *controlBlock) CLOSED() {
	cb.retrans = nil
	cb.setState(CLOSED)
}

func (cb *controlBlock) LISTEN() {
	cb.setState(LISTEN)
}

func (cb *controlBlock) SYN_SENT() {
	cb.setState(SYN_SENT)
}

func (cb *controlBlock) SYN_RECEIVED() {
	cb.setState(SYN_RECEIVED)
}

func (cb *controlBlock) ESTABLISHED() {
	cb.setState(ESTABLISHED)
}

func (cb *controlBlock) FIN_WAIT() {
	cb.setState(FIN_WAIT)
}

func (cb *controlBlock) LAST_ACK() {
	cb.setState(LAST_ACK)
}

func (cb *controlBlock) CLOSING() {
	cb.setState(CLOSING)
}

func (cb *controlBlock) TIME_WAIT(rto time.Duration) {
	cb.timeWaitDeadline = time.Now().Add(rto)
	cb.setState(TIME_WAIT)
}

// snExpected reports whether seg carries the next sequence number.
func (cb *controlBlock) snExpected(seg *ratp.Segment) bool {
	return seg.Header.Control.Sn() != cb.rSN
}

// anExpected reports whether seg acknowledges our last occupied segment.
func (cb *controlBlock) anExpected(seg *ratp.Segment) bool {
	return seg.Header.Control.An() == (cb.sSN+1)%2
}
