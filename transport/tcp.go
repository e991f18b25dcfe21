package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ftl/adatadapter/cat"
)

// TCP reaches the radio through a serial-to-network bridge like ser2net.
type TCP struct {
	address     string
	dialTimeout time.Duration
	flushBudget time.Duration
	conn        net.Conn
	buffer      []byte
}

func NewTCP(address string) *TCP {
	return &TCP{address: address, dialTimeout: 5 * time.Second, flushBudget: 100 * time.Millisecond}
}

func (t *TCP) String() string {
	return "tcp://" + t.address
}

func (t *TCP) Open() error {
	if t.conn != nil {
		return nil
	}
	conn, err := net.DialTimeout("tcp", t.address, t.dialTimeout)
	if err != nil {
		return fmt.Errorf("%w: cannot connect to %s: %v", cat.ErrIO, t.address, err)
	}
	t.conn = conn
	t.buffer = nil
	return nil
}

func (t *TCP) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.buffer = nil
	if err != nil {
		return fmt.Errorf("%w: %v", cat.ErrIO, err)
	}
	return nil
}

// Flush drops everything the bridge has already delivered. It gives up after the flush
// budget if the bridge keeps sending.
func (t *TCP) Flush() error {
	if t.conn == nil {
		return errClosed(t.address)
	}
	t.buffer = nil
	chunk := make([]byte, 256)
	deadline := time.Now().Add(t.flushBudget)
	for time.Now().Before(deadline) {
		if err := t.conn.SetReadDeadline(time.Now().Add(time.Millisecond)); err != nil {
			return fmt.Errorf("%w: %v", cat.ErrIO, err)
		}
		_, err := t.conn.Read(chunk)
		if isTimeout(err) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", cat.ErrIO, err)
		}
	}
	return nil
}

func (t *TCP) Write(b []byte) error {
	if t.conn == nil {
		return errClosed(t.address)
	}
	return writeAll(t.conn, b)
}

func (t *TCP) ReadUntil(delimiter byte, timeout time.Duration) ([]byte, error) {
	if t.conn == nil {
		return nil, errClosed(t.address)
	}
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("%w: %v", cat.ErrIO, err)
	}
	chunk := make([]byte, 256)
	for {
		if frame, ok := cutFrame(&t.buffer, delimiter); ok {
			return frame, nil
		}
		n, err := t.conn.Read(chunk)
		t.buffer = append(t.buffer, chunk[:n]...)
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: no reply from %s within %v", cat.ErrTimeout, t.address, timeout)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", cat.ErrIO, err)
		}
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
