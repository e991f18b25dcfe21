package cat

import "time"

// Transport is the byte channel to the radio. Errors should wrap ErrIO or ErrTimeout.
type Transport interface {
	Open() error
	Close() error
	Flush() error
	Write([]byte) error
	// ReadUntil reads up to and including the delimiter within the given time.
	ReadUntil(delimiter byte, timeout time.Duration) ([]byte, error)
}

// Timing holds the settle delays the radio needs.
type Timing struct {
	CommandDelay time.Duration
	OpenDelay    time.Duration
	CloseDelay   time.Duration
	ReadTimeout  time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		CommandDelay: 11 * time.Millisecond,
		OpenDelay:    2 * time.Second,
		CloseDelay:   2 * time.Second,
		ReadTimeout:  1 * time.Second,
	}
}
