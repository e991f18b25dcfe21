package adat

import (
	"errors"
	"fmt"

	"github.com/ftl/adatadapter/cat"
)

// operations implements the callback definitions on the fields of a session.
type operations struct {
	s *Session
}

func (o operations) RunOp(tr cat.Tracer, op cat.OpID) error {
	s := o.s
	switch op {
	case opGetSerialNumber:
		return s.queryIdentity(tr, cmdGetSerialNumber, &s.identity.SerialNumber)
	case opGetFirmwareVersion:
		return s.queryIdentity(tr, cmdGetFirmwareVersion, &s.identity.FirmwareVersion)
	case opGetHardwareVersion:
		return s.queryIdentity(tr, cmdGetHardwareVersion, &s.identity.HardwareVersion)
	case opGetGUIVersion:
		return s.queryIdentity(tr, cmdGetGUIVersion, &s.identity.GUIVersion)
	case opGetIDCode:
		return s.queryIdentity(tr, cmdGetIDCode, &s.identity.IDCode)
	case opGetOptions:
		return s.queryIdentity(tr, cmdGetOptions, &s.identity.Options)
	case opCheckCallsign:
		return s.queryIdentity(tr, cmdGetCallsign, &s.identity.Callsign)
	case opGetCallsign:
		return s.query(tr, cmdGetCallsign, func(value string) error {
			s.identity.Callsign = value
			return nil
		})
	case opSetCallsign:
		return s.command(tr, cmdSetCallsign, s.identity.Callsign)
	case opGetFrequency:
		return s.query(tr, cmdGetFrequency, s.parseFrequency(tr))
	case opSetFrequency:
		vfo, err := VFOs.ByValue(s.vfo)
		if err != nil {
			return err
		}
		return s.command(tr, cmdSetFrequency, vfo.Code, cat.FormatFrequency(s.frequency))
	case opGetMode:
		return s.query(tr, cmdGetMode, func(value string) error {
			mode, err := ParseModeCode(value)
			if err != nil {
				return err
			}
			if mode != s.mode {
				s.width = s.capabilities.NormalPassband(string(mode))
			}
			s.mode = mode
			return nil
		})
	case opSetMode:
		mode, err := Modes.ByValue(s.mode)
		if err != nil {
			return err
		}
		return s.command(tr, cmdSetMode, mode.Code)
	case opGetVFO:
		return s.query(tr, cmdGetVFO, func(value string) error {
			vfo, err := ParseVFO(value)
			if err != nil {
				return err
			}
			s.vfo = vfo
			return nil
		})
	case opSetVFO:
		vfo, err := VFOs.ByValue(s.vfo)
		if err != nil {
			return err
		}
		return s.command(tr, cmdSetVFO, vfo.Code)
	case opGetPTT:
		return s.query(tr, cmdGetPTT, func(value string) error {
			ptt, err := ParsePTT(value)
			if err != nil {
				return err
			}
			s.ptt = ptt
			return nil
		})
	case opSetPTT:
		code, err := PTTCode(s.ptt)
		if err != nil {
			return err
		}
		return s.command(tr, cmdSetPTT, code)
	default:
		return fmt.Errorf("%w: operation %d", cat.ErrNotAvailable, op)
	}
}

func (s *Session) query(tr cat.Tracer, command string, apply func(string) error) error {
	err := s.link.Transact(tr, cat.WithResult, command)
	if err != nil {
		return err
	}
	return apply(s.link.Reply())
}

func (s *Session) command(tr cat.Tracer, template string, params ...interface{}) error {
	return s.link.Transact(tr, cat.WithoutResult, template, params...)
}

// queryIdentity reads one identification string. Only I/O errors are reported, a radio
// that does not answer a single query is still usable.
func (s *Session) queryIdentity(tr cat.Tracer, command string, field *string) error {
	err := s.query(tr, command, func(value string) error {
		*field = value
		return nil
	})
	if errors.Is(err, cat.ErrIO) {
		return err
	}
	if err != nil {
		tr.Printf("ignored: %v", err)
	}
	return nil
}

// parseFrequency applies a "$FRA?" reply. The radio reports VFO index 0 for a VFO that is
// not active, the frequency is ignored then and the last known value stays.
func (s *Session) parseFrequency(tr cat.Tracer) func(string) error {
	return func(value string) error {
		hz, vfo, err := cat.ParseFrequency(&value, cat.WithVFO)
		if err != nil {
			return err
		}
		if vfo == 0 {
			tr.Printf("VFO not active, ignoring %.0f Hz", hz)
			return nil
		}
		s.frequency = hz
		return nil
	}
}
