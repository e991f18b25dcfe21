package cat

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type State int

const (
	Idle State = iota
	Sending
	WaitingResult
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case WaitingResult:
		return "waiting for result"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// OpRunner implements the callback definitions of a backend.
type OpRunner interface {
	RunOp(tr Tracer, op OpID) error
}

// Link executes command sequences on a transport. It holds exactly one command in flight
// and must not be used concurrently.
type Link struct {
	transport Transport
	timing    Timing
	ops       OpRunner
	recover   *Sequence
	sleep     func(time.Duration)
	now       func() time.Time

	state       State
	lastCommand string
	lastResult  string
	lastErr     error
	recovering  bool
	recoveries  int
}

// NewLink creates a link on the given transport. The recover sequence may be nil.
func NewLink(transport Transport, ops OpRunner, recover *Sequence, timing Timing) *Link {
	return &Link{
		transport: transport,
		timing:    timing,
		ops:       ops,
		recover:   recover,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

func (l *Link) Timing() Timing {
	return l.timing
}

func (l *Link) State() State {
	return l.state
}

func (l *Link) LastCommand() string {
	return l.lastCommand
}

func (l *Link) LastResult() string {
	return l.lastResult
}

func (l *Link) LastError() error {
	return l.lastErr
}

// Recoveries counts the reconnects done so far.
func (l *Link) Recoveries() int {
	return l.recoveries
}

// Reply is the value part of the last result.
func (l *Link) Reply() string {
	_, value := Decode([]byte(l.lastResult))
	return value
}

func (l *Link) Connect() error {
	err := l.transport.Open()
	if err != nil {
		return asClassified(err)
	}
	l.state = Idle
	return nil
}

// Disconnect closes the transport and releases the in-flight command and result.
func (l *Link) Disconnect() error {
	l.lastCommand = ""
	l.lastResult = ""
	l.state = Idle
	err := l.transport.Close()
	if err != nil {
		return asClassified(err)
	}
	return nil
}

// Settle waits for the given delay.
func (l *Link) Settle(d time.Duration) {
	if d > 0 {
		l.sleep(d)
	}
}

// Execute runs all definitions of the sequence in order and stops at the first failure.
// A failure triggers the error recovery once, the failure itself is returned anyway.
func (l *Link) Execute(tr Tracer, seq *Sequence) error {
	tr = tr.Enter(seq.Name())
	for _, def := range seq.defs {
		err := l.run(tr, def)
		l.Settle(l.timing.CommandDelay)
		if err != nil {
			l.state = Failed
			l.lastErr = err
			tr.Printf("%s failed: %v", def.name, err)
			l.recoverFrom(tr, err)
			return fmt.Errorf("%s: %w", def.name, err)
		}
	}
	l.lastErr = nil
	return nil
}

func (l *Link) run(tr Tracer, def *Definition) error {
	switch action := def.action.(type) {
	case Callback:
		if l.ops == nil {
			return fmt.Errorf("%w: no handler for %s", ErrNotAvailable, def.name)
		}
		return l.ops.RunOp(tr.Enter(def.name), OpID(action))
	case Literals:
		for _, command := range action {
			err := l.Transact(tr, def.kind, command)
			if err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s has no action", ErrInvalidArgument, def.name)
	}
}

// Transact fills the template with the parameters, sends the command and reads the result
// if the kind asks for it. A result must echo the command and carry a value.
func (l *Link) Transact(tr Tracer, kind Kind, template string, params ...interface{}) error {
	raw := Encode(template, params...)
	command := string(raw[:len(raw)-1])
	l.lastCommand = command
	l.state = Sending
	tr.Printf("-> %q", command)

	if err := l.transport.Flush(); err != nil {
		return l.fail(command, err)
	}
	if err := l.transport.Write(raw); err != nil {
		return l.fail(command, err)
	}
	if kind != WithResult {
		l.state = Done
		return nil
	}

	l.state = WaitingResult
	frame, err := l.readMarkedFrame(tr)
	if err != nil {
		return l.fail(command, err)
	}
	tr.Printf("<- %q", frame)
	echo, value := Decode(frame)
	if echo != mnemonic(command) {
		return l.fail(command, fmt.Errorf("%w: reply %q does not answer %q", ErrProtocol, frame, command))
	}
	if value == "" {
		return l.fail(command, fmt.Errorf("%w: reply %q has no value", ErrProtocol, frame))
	}
	l.lastResult = string(frame)
	l.state = Done
	return nil
}

// mnemonic is the part of a command the radio echoes, without the parameters of a set command.
func mnemonic(command string) string {
	result, _, _ := strings.Cut(command, ":")
	return result
}

func (l *Link) readMarkedFrame(tr Tracer) ([]byte, error) {
	deadline := l.now().Add(l.timing.ReadTimeout)
	for {
		remaining := deadline.Sub(l.now())
		if remaining < 0 {
			remaining = 0
		}
		frame, err := l.transport.ReadUntil(EndOfLine, remaining)
		if err != nil {
			return nil, err
		}
		if HasBeginMarker(frame) {
			return frame, nil
		}
		tr.Printf("dropped unmarked frame %q", frame)
		if !l.now().Before(deadline) {
			return nil, fmt.Errorf("%w: no marked frame within %v", ErrTimeout, l.timing.ReadTimeout)
		}
	}
}

func (l *Link) fail(command string, err error) error {
	l.state = Failed
	err = &CommandError{Command: command, Err: asClassified(err)}
	l.lastErr = err
	return err
}

var taxonomy = []error{ErrInvalidArgument, ErrProtocol, ErrTimeout, ErrIO, ErrOutOfMemory, ErrNotAvailable}

// asClassified treats transport errors outside the taxonomy as I/O errors.
func asClassified(err error) error {
	for _, known := range taxonomy {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrIO, err)
}
