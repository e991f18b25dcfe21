// Package sim simulates an ADAT ADT-200A on the CAT level. It implements cat.Transport
// and is used for tests and to run the adapter without a radio.
package sim

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ftl/adatadapter/cat"
)

type Radio struct {
	mu      sync.Mutex
	open    bool
	pending []byte

	Frequency       float64
	VFO             int
	Mode            int
	PTT             int
	Display         bool
	Callsign        string
	SerialNumber    string
	FirmwareVersion string
	HardwareVersion string
	GUIVersion      string
	IDCode          string
	Options         string

	// InactiveVFO makes the radio report VFO index 0 with the frequency.
	InactiveVFO bool
	// LeadingNUL prefixes every reply with a NUL byte.
	LeadingNUL bool
	// Noise is sent as unmarked frames before the next reply.
	Noise []string
	// Silent suppresses all replies.
	Silent bool
	// SilentOnce suppresses the next n replies.
	SilentOnce int
	// FailWrites lets the next n writes fail with an I/O error.
	FailWrites int
	// FailOpen lets Open fail.
	FailOpen bool
	// Unanswered are commands the radio does not reply to.
	Unanswered map[string]bool
	// WrongEcho lets the radio answer a command with the echo of another one.
	WrongEcho map[string]string
	// NoValue lets the radio answer a command with its echo only.
	NoValue map[string]bool

	Received []string
	Opens    int
	Closes   int
}

func New() *Radio {
	return &Radio{
		Frequency:       7074000,
		VFO:             1,
		Mode:            3,
		Display:         true,
		Callsign:        "HB9XYZ",
		SerialNumber:    "A200-0815",
		FirmwareVersion: "1.40",
		HardwareVersion: "2.1",
		GUIVersion:      "1.37",
		IDCode:          "ADT-200A",
		Options:         "DSP2",
		Unanswered:      make(map[string]bool),
		WrongEcho:       make(map[string]string),
		NoValue:         make(map[string]bool),
	}
}

func (r *Radio) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Opens++
	if r.FailOpen {
		return fmt.Errorf("%w: cannot open simulated port", cat.ErrIO)
	}
	r.open = true
	r.pending = nil
	return nil
}

func (r *Radio) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Closes++
	r.open = false
	r.pending = nil
	return nil
}

func (r *Radio) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return fmt.Errorf("%w: port closed", cat.ErrIO)
	}
	r.pending = nil
	return nil
}

func (r *Radio) Write(b []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return fmt.Errorf("%w: port closed", cat.ErrIO)
	}
	if r.FailWrites > 0 {
		r.FailWrites--
		return fmt.Errorf("%w: simulated write failure", cat.ErrIO)
	}
	for _, command := range strings.Split(string(b), string(cat.EndOfMessage)) {
		if command == "" {
			continue
		}
		r.Received = append(r.Received, command)
		r.handle(command)
	}
	return nil
}

func (r *Radio) ReadUntil(delimiter byte, timeout time.Duration) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.open {
		return nil, fmt.Errorf("%w: port closed", cat.ErrIO)
	}
	i := bytes.IndexByte(r.pending, delimiter)
	if i == -1 {
		r.pending = nil
		return nil, fmt.Errorf("%w: no reply within %v", cat.ErrTimeout, timeout)
	}
	result := append([]byte{}, r.pending[:i+1]...)
	r.pending = r.pending[i+1:]
	return result, nil
}

// Commands returns a copy of all commands received so far.
func (r *Radio) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.Received...)
}

func (r *Radio) handle(command string) {
	switch {
	case command == "$VRU>":
		r.Display = false
	case command == "$VRU<":
		r.Display = true
	case command == "$CIS?":
		r.reply(command, r.SerialNumber)
	case command == "$CIF?":
		r.reply(command, r.FirmwareVersion)
	case command == "$CIH?":
		r.reply(command, r.HardwareVersion)
	case command == "$CIG?":
		r.reply(command, r.GUIVersion)
	case command == "$CID?":
		r.reply(command, r.IDCode)
	case command == "$CIO?":
		r.reply(command, r.Options)
	case command == "$CAL?":
		r.reply(command, r.Callsign)
	case strings.HasPrefix(command, "$CAL:"):
		r.Callsign = strings.TrimPrefix(command, "$CAL:")
	case command == "$FRA?":
		vfo := r.VFO
		if r.InactiveVFO {
			vfo = 0
		}
		r.reply(command, fmt.Sprintf("%d %s", vfo, strconv.FormatFloat(r.Frequency, 'f', 0, 64)+" Hz"))
	case strings.HasPrefix(command, "$FR"):
		r.setFrequency(strings.TrimPrefix(command, "$FR"))
	case command == "$MOD?":
		r.reply(command, strconv.Itoa(r.Mode))
	case strings.HasPrefix(command, "$MOD:"):
		r.setInt(&r.Mode, strings.TrimPrefix(command, "$MOD:"))
	case command == "$VFO?":
		r.reply(command, strconv.Itoa(r.VFO))
	case strings.HasPrefix(command, "$VFO:"):
		r.setInt(&r.VFO, strings.TrimPrefix(command, "$VFO:"))
	case command == "$MOX?":
		r.reply(command, strconv.Itoa(r.PTT))
	case strings.HasPrefix(command, "$MOX:"):
		r.setInt(&r.PTT, strings.TrimPrefix(command, "$MOX:"))
	}
}

func (r *Radio) setFrequency(args string) {
	vfo, value, found := strings.Cut(args, ":")
	if !found {
		return
	}
	index, err := strconv.Atoi(vfo)
	if err != nil || index != r.VFO {
		return
	}
	hz, _, err := cat.ParseFrequency(&value, cat.WithoutVFO)
	if err != nil {
		return
	}
	r.Frequency = hz
}

func (r *Radio) setInt(field *int, value string) {
	i, err := strconv.Atoi(value)
	if err != nil {
		return
	}
	*field = i
}

func (r *Radio) reply(command string, value string) {
	if r.Silent || r.Unanswered[command] {
		return
	}
	if r.SilentOnce > 0 {
		r.SilentOnce--
		return
	}
	for _, noise := range r.Noise {
		r.pending = append(r.pending, noise...)
		r.pending = append(r.pending, '\r', '\n')
	}
	r.Noise = nil
	if r.LeadingNUL {
		r.pending = append(r.pending, 0)
	}
	echo := command
	if other, ok := r.WrongEcho[command]; ok {
		echo = other
	}
	r.pending = append(r.pending, echo...)
	if !r.NoValue[command] {
		r.pending = append(r.pending, ' ')
		r.pending = append(r.pending, value...)
	}
	r.pending = append(r.pending, '\r', '\n')
}
