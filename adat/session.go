// Package adat controls the ADAT ADT-200A transceiver through its CAT command set.
//
// A Session owns the transport to the radio and the last known operational state. Every
// get and set runs one command sequence through a cat.Link. A Session must not be used
// from more than one goroutine at a time.
package adat

import (
	"errors"
	"fmt"
	"strings"

	hamlib "github.com/ftl/rigproxy/pkg/client"

	"github.com/ftl/adatadapter/caps"
	"github.com/ftl/adatadapter/cat"
)

var (
	ErrNotOpen     = errors.New("session not open")
	ErrAlreadyOpen = errors.New("session already open")
)

type Lifecycle int

const (
	Uninit Lifecycle = iota
	Open
	Closed
)

func (l Lifecycle) String() string {
	switch l {
	case Uninit:
		return "uninitialized"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("lifecycle(%d)", int(l))
	}
}

// Identity holds the identification strings the radio reports when the session is opened.
type Identity struct {
	SerialNumber    string
	FirmwareVersion string
	HardwareVersion string
	GUIVersion      string
	IDCode          string
	Options         string
	Callsign        string
}

type Session struct {
	link         *cat.Link
	capabilities *caps.Capabilities
	trace        cat.Tracer
	lifecycle    Lifecycle

	frequency float64
	mode      hamlib.Mode
	width     int
	vfo       hamlib.VFO
	ptt       PTT
	identity  Identity
}

// New creates a session on the given transport. The transport is opened by Open.
// Without capabilities the built-in ADT-200A capabilities are used.
func New(transport cat.Transport, capabilities *caps.Capabilities, timing cat.Timing, trace cat.Tracer) *Session {
	if capabilities == nil {
		capabilities = caps.Default()
	}
	result := &Session{
		capabilities: capabilities,
		trace:        trace,
		mode:         hamlib.ModeUSB,
		width:        capabilities.NormalPassband(string(hamlib.ModeUSB)),
		vfo:          hamlib.VFOA,
		ptt:          PTTOff,
	}
	result.link = cat.NewLink(transport, operations{result}, recoverSequence, timing)
	return result
}

func (s *Session) State() Lifecycle {
	return s.lifecycle
}

func (s *Session) Capabilities() *caps.Capabilities {
	return s.capabilities
}

// Open connects the transport, silences the display and reads the identification.
func (s *Session) Open() error {
	if s.lifecycle == Open {
		return ErrAlreadyOpen
	}
	tr := s.trace.Enter("open")

	err := s.link.Connect()
	if err != nil {
		return fmt.Errorf("cannot open transport: %w", err)
	}
	s.link.Settle(s.link.Timing().OpenDelay)

	err = s.link.Execute(tr, openSequence)
	if err != nil {
		if disconnectErr := s.link.Disconnect(); disconnectErr != nil {
			tr.Printf("cannot close transport: %v", disconnectErr)
		}
		return fmt.Errorf("cannot open %s: %w", s.capabilities.Model, err)
	}
	s.lifecycle = Open
	tr.Printf("%s open, serial number %q", s.capabilities.Model, s.identity.SerialNumber)
	return nil
}

// Close gives the display back to the user and closes the transport.
func (s *Session) Close() error {
	if s.lifecycle != Open {
		return ErrNotOpen
	}
	tr := s.trace.Enter("close")

	err := s.link.Execute(tr, closeSequence)
	disconnectErr := s.link.Disconnect()
	s.lifecycle = Closed
	if err != nil {
		return fmt.Errorf("cannot close %s: %w", s.capabilities.Model, err)
	}
	if disconnectErr != nil {
		return fmt.Errorf("cannot close transport: %w", disconnectErr)
	}
	return nil
}

func (s *Session) execute(name string, seq *cat.Sequence) error {
	if s.lifecycle != Open {
		return fmt.Errorf("%s: %w", name, ErrNotOpen)
	}
	err := s.link.Execute(s.trace.Enter(name), seq)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (s *Session) Frequency() (float64, error) {
	err := s.execute("get_freq", getFrequencySequence)
	if err != nil {
		return 0, err
	}
	return s.frequency, nil
}

func (s *Session) SetFrequency(hz float64) error {
	if s.lifecycle != Open {
		return fmt.Errorf("set_freq: %w", ErrNotOpen)
	}
	if !s.capabilities.CanReceive(hz) {
		return fmt.Errorf("set_freq: %w: %.0f Hz is out of range", cat.ErrInvalidArgument, hz)
	}
	s.frequency = hz
	return s.execute("set_freq", setFrequencySequence)
}

// Mode returns the current mode and its passband width in Hz.
func (s *Session) Mode() (hamlib.Mode, int, error) {
	err := s.execute("get_mode", getModeSequence)
	if err != nil {
		return "", 0, err
	}
	return s.mode, s.width, nil
}

// SetMode switches the mode. A width <= 0 selects the normal passband of the mode.
func (s *Session) SetMode(mode hamlib.Mode, width int) error {
	if s.lifecycle != Open {
		return fmt.Errorf("set_mode: %w", ErrNotOpen)
	}
	if _, err := Modes.ByValue(mode); err != nil {
		return fmt.Errorf("set_mode: %w", err)
	}
	if !s.capabilities.HasMode(string(mode)) {
		return fmt.Errorf("set_mode: %w: %s does not support %s", cat.ErrNotAvailable, s.capabilities.Model, mode)
	}
	if width <= 0 {
		width = s.capabilities.NormalPassband(string(mode))
	}
	s.mode = mode
	s.width = width
	return s.execute("set_mode", setModeSequence)
}

func (s *Session) VFO() (hamlib.VFO, error) {
	err := s.execute("get_vfo", getVFOSequence)
	if err != nil {
		return "", err
	}
	return s.vfo, nil
}

func (s *Session) SetVFO(vfo hamlib.VFO) error {
	if s.lifecycle != Open {
		return fmt.Errorf("set_vfo: %w", ErrNotOpen)
	}
	if _, err := VFOs.ByValue(vfo); err != nil {
		return fmt.Errorf("set_vfo: %w", err)
	}
	s.vfo = vfo
	return s.execute("set_vfo", setVFOSequence)
}

func (s *Session) PTT() (bool, error) {
	err := s.execute("get_ptt", getPTTSequence)
	if err != nil {
		return false, err
	}
	return s.ptt.On(), nil
}

func (s *Session) SetPTT(on bool) error {
	if s.lifecycle != Open {
		return fmt.Errorf("set_ptt: %w", ErrNotOpen)
	}
	s.ptt = PTTFromBool(on)
	return s.execute("set_ptt", setPTTSequence)
}

func (s *Session) Callsign() (string, error) {
	err := s.execute("get_callsign", getCallsignSequence)
	if err != nil {
		return "", err
	}
	return s.identity.Callsign, nil
}

func (s *Session) SetCallsign(callsign string) error {
	if s.lifecycle != Open {
		return fmt.Errorf("set_callsign: %w", ErrNotOpen)
	}
	callsign = strings.ToUpper(strings.TrimSpace(callsign))
	if !validCallsign(callsign) {
		return fmt.Errorf("set_callsign: %w: %q", cat.ErrInvalidArgument, callsign)
	}
	s.identity.Callsign = callsign
	return s.execute("set_callsign", setCallsignSequence)
}

func validCallsign(callsign string) bool {
	if len(callsign) == 0 || len(callsign) > 10 {
		return false
	}
	for _, r := range callsign {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '/':
		default:
			return false
		}
	}
	return true
}

// Identity returns the identification read when the session was opened.
func (s *Session) Identity() (Identity, error) {
	if s.lifecycle != Open {
		return Identity{}, ErrNotOpen
	}
	return s.identity, nil
}

// Info reads the identification again and returns it as one line.
func (s *Session) Info() (string, error) {
	err := s.execute("get_info", infoSequence)
	if err != nil {
		return "", err
	}
	id := s.identity
	return fmt.Sprintf("%s SN:%s FW:%s HW:%s GUI:%s OPT:%s CALL:%s",
		s.capabilities.Model, id.SerialNumber, id.FirmwareVersion, id.HardwareVersion, id.GUIVersion, id.Options, id.Callsign), nil
}
