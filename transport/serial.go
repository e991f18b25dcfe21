// Package transport provides the byte channels to the radio: a local serial port and a
// serial port bridged over TCP.
package transport

import (
	"bytes"
	"fmt"
	"time"

	"go.bug.st/serial"

	"github.com/ftl/adatadapter/cat"
)

const DefaultBaudRate = 115200

// Port is the subset of serial.Port the transport uses.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	ResetInputBuffer() error
	ResetOutputBuffer() error
	SetReadTimeout(t time.Duration) error
	Close() error
}

type Serial struct {
	name     string
	mode     *serial.Mode
	openPort func(string, *serial.Mode) (Port, error)
	port     Port
	buffer   []byte
}

func NewSerial(name string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	return &Serial{
		name: name,
		mode: &serial.Mode{
			BaudRate: baudRate,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		openPort: func(name string, mode *serial.Mode) (Port, error) {
			return serial.Open(name, mode)
		},
	}
}

// Ports lists the serial ports of this machine.
func Ports() ([]string, error) {
	result, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot list serial ports: %v", cat.ErrIO, err)
	}
	return result, nil
}

func (s *Serial) String() string {
	return fmt.Sprintf("%s@%d", s.name, s.mode.BaudRate)
}

func (s *Serial) Open() error {
	if s.port != nil {
		return nil
	}
	port, err := s.openPort(s.name, s.mode)
	if err != nil {
		return fmt.Errorf("%w: cannot open %s: %v", cat.ErrIO, s.name, err)
	}
	s.port = port
	s.buffer = nil
	return nil
}

func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.buffer = nil
	if err != nil {
		return fmt.Errorf("%w: cannot close %s: %v", cat.ErrIO, s.name, err)
	}
	return nil
}

func (s *Serial) Flush() error {
	if s.port == nil {
		return errClosed(s.name)
	}
	s.buffer = nil
	if err := s.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("%w: %v", cat.ErrIO, err)
	}
	if err := s.port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("%w: %v", cat.ErrIO, err)
	}
	return nil
}

func (s *Serial) Write(b []byte) error {
	if s.port == nil {
		return errClosed(s.name)
	}
	return writeAll(s.port, b)
}

func (s *Serial) ReadUntil(delimiter byte, timeout time.Duration) ([]byte, error) {
	if s.port == nil {
		return nil, errClosed(s.name)
	}
	deadline := time.Now().Add(timeout)
	chunk := make([]byte, 256)
	for {
		if frame, ok := cutFrame(&s.buffer, delimiter); ok {
			return frame, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("%w: no reply from %s within %v", cat.ErrTimeout, s.name, timeout)
		}
		if err := s.port.SetReadTimeout(remaining); err != nil {
			return nil, fmt.Errorf("%w: %v", cat.ErrIO, err)
		}
		n, err := s.port.Read(chunk)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cat.ErrIO, err)
		}
		s.buffer = append(s.buffer, chunk[:n]...)
	}
}

func errClosed(name string) error {
	return fmt.Errorf("%w: %s is not open", cat.ErrIO, name)
}

type writer interface {
	Write(p []byte) (int, error)
}

func writeAll(w writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return fmt.Errorf("%w: %v", cat.ErrIO, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: short write", cat.ErrIO)
		}
		b = b[n:]
	}
	return nil
}

// cutFrame removes the first frame up to and including the delimiter from the buffer.
func cutFrame(buffer *[]byte, delimiter byte) ([]byte, bool) {
	i := bytes.IndexByte(*buffer, delimiter)
	if i == -1 {
		return nil, false
	}
	frame := append([]byte{}, (*buffer)[:i+1]...)
	*buffer = (*buffer)[i+1:]
	return frame, true
}
