package ratp

import "time"

// Config holds the timing parameters of a connection.
type Config struct {
	RtoMin         time.Duration
	RtoMax         time.Duration
	SrttInitial    time.Duration
	Alpha          float64 // weight of the previous SRTT
	Beta           float64 // RTO = Beta * SRTT before clamping
	MaxRetransmits int
	Debug          bool
}

func DefaultConfig() Config {
	return Config{
		RtoMin:         200 * time.Millisecond,
		RtoMax:         time.Second,
		SrttInitial:    200 * time.Millisecond,
		Alpha:          0.8,
		Beta:           2.0,
		MaxRetransmits: 10,
	}
}
