package cat

import "errors"

type Class int

const (
	ReportOnly Class = iota
	Recoverable
)

func (c Class) String() string {
	if c == Recoverable {
		return "recoverable"
	}
	return "report only"
}

// Classify tells if an error leaves the transport in a state that needs a reconnect.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ReportOnly
	case errors.Is(err, ErrTimeout), errors.Is(err, ErrProtocol), errors.Is(err, ErrIO):
		return Recoverable
	default:
		return ReportOnly
	}
}

// recoverFrom reconnects the transport and runs the recover sequence. Failures of the
// recover sequence are only traced, they never start another recovery.
func (l *Link) recoverFrom(tr Tracer, err error) {
	if l.recovering || Classify(err) != Recoverable {
		return
	}
	l.recovering = true
	defer func() { l.recovering = false }()
	l.recoveries++

	tr = tr.Enter("recover")
	if closeErr := l.transport.Close(); closeErr != nil {
		tr.Printf("close failed: %v", closeErr)
	}
	l.Settle(l.timing.CloseDelay)
	if openErr := l.transport.Open(); openErr != nil {
		tr.Printf("reopen failed: %v", openErr)
		return
	}
	l.lastErr = nil
	l.state = Idle

	if l.recover == nil {
		return
	}
	if recoverErr := l.Execute(tr, l.recover); recoverErr != nil {
		tr.Printf("recover sequence failed: %v", recoverErr)
	}
}
