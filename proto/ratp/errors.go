package ratp

import "github.com/pkg/errors"

var (
	ErrConnectionReset    = errors.New("connection reset")
	ErrConnectionRefused  = errors.New("connection refused")
	ErrClosedByRemote     = errors.New("connection closed by remote")
	ErrRetransmitExceeded = errors.New("maximum retransmit count exceeded")
	ErrNotEstablished     = errors.New("connection is not established")
	ErrBusy               = errors.New("previous segment is not acknowledged")
	ErrEmptyMessage       = errors.New("empty message")
	ErrTimeout            = errors.New("timeout")
	ErrLinkClosed         = errors.New("link closed")
)

// IsFatal reports whether err leaves the connection unusable.
func IsFatal(err error) bool {
	switch errors.Cause(err) {
	case ErrConnectionReset, ErrConnectionRefused, ErrClosedByRemote, ErrRetransmitExceeded, ErrLinkClosed:
		return true
	default:
		return false
	}
}
