package transport

import (
	"bufio"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"github.com/ftl/adatadapter/cat"
)

type fakePort struct {
	chunks   [][]byte
	written  []byte
	readErr  error
	resets   int
	timeouts []time.Duration
	closed   bool
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.chunks) == 0 {
		return 0, nil
	}
	n := copy(b, p.chunks[0])
	p.chunks = p.chunks[1:]
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) ResetInputBuffer() error  { p.resets++; return nil }
func (p *fakePort) ResetOutputBuffer() error { p.resets++; return nil }

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.timeouts = append(p.timeouts, t)
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func newFakeSerial(port *fakePort) *Serial {
	result := NewSerial("/dev/ttyFAKE", 0)
	result.openPort = func(string, *serial.Mode) (Port, error) {
		return port, nil
	}
	return result
}

func TestSerial_Mode(t *testing.T) {
	s := NewSerial("/dev/ttyUSB0", 0)
	assert.Equal(t, DefaultBaudRate, s.mode.BaudRate)
	assert.Equal(t, 8, s.mode.DataBits)
	assert.Equal(t, serial.NoParity, s.mode.Parity)
	assert.Equal(t, serial.OneStopBit, s.mode.StopBits)
	assert.Equal(t, "/dev/ttyUSB0@115200", s.String())
}

func TestSerial_ReadUntilAssemblesFrames(t *testing.T) {
	port := &fakePort{chunks: [][]byte{[]byte("$CIS? A2"), []byte("00\r\n$MOD"), []byte("? 3\r\n")}}
	s := newFakeSerial(port)
	require.NoError(t, s.Open())

	frame, err := s.ReadUntil('\n', time.Second)
	require.NoError(t, err)
	assert.Equal(t, "$CIS? A200\r\n", string(frame))

	frame, err = s.ReadUntil('\n', time.Second)
	require.NoError(t, err)
	assert.Equal(t, "$MOD? 3\r\n", string(frame))
}

func TestSerial_ReadUntilTimeout(t *testing.T) {
	port := &fakePort{}
	s := newFakeSerial(port)
	require.NoError(t, s.Open())

	_, err := s.ReadUntil('\n', 5*time.Millisecond)
	assert.ErrorIs(t, err, cat.ErrTimeout)
	assert.NotEmpty(t, port.timeouts)
}

func TestSerial_ReadError(t *testing.T) {
	port := &fakePort{readErr: errors.New("device gone")}
	s := newFakeSerial(port)
	require.NoError(t, s.Open())

	_, err := s.ReadUntil('\n', time.Second)
	assert.ErrorIs(t, err, cat.ErrIO)
}

func TestSerial_FlushDropsBufferedBytes(t *testing.T) {
	port := &fakePort{chunks: [][]byte{[]byte("stale\r\npartial")}}
	s := newFakeSerial(port)
	require.NoError(t, s.Open())
	_, err := s.ReadUntil('\n', time.Second)
	require.NoError(t, err)

	require.NoError(t, s.Flush())
	assert.Empty(t, s.buffer)
	assert.Equal(t, 2, port.resets)
}

func TestSerial_WriteAndClose(t *testing.T) {
	port := &fakePort{}
	s := newFakeSerial(port)

	assert.ErrorIs(t, s.Write([]byte("$CIS?\r")), cat.ErrIO)

	require.NoError(t, s.Open())
	require.NoError(t, s.Write([]byte("$CIS?\r")))
	assert.Equal(t, "$CIS?\r", string(port.written))

	require.NoError(t, s.Close())
	assert.True(t, port.closed)
	assert.ErrorIs(t, s.Flush(), cat.ErrIO)
	assert.NoError(t, s.Close())
}

func TestSerial_OpenFailure(t *testing.T) {
	s := NewSerial("/dev/ttyFAKE", 9600)
	s.openPort = func(string, *serial.Mode) (Port, error) {
		return nil, errors.New("no such device")
	}
	assert.ErrorIs(t, s.Open(), cat.ErrIO)
}

func TestTCP(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	received := make(chan string, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, err := bufio.NewReader(conn).ReadString('\r')
		if err != nil {
			return
		}
		received <- line
		conn.Write([]byte("$CIS? A200-0815\r\n"))
		time.Sleep(200 * time.Millisecond)
	}()

	tcp := NewTCP(listener.Addr().String())
	require.NoError(t, tcp.Open())
	defer tcp.Close()

	require.NoError(t, tcp.Flush())
	require.NoError(t, tcp.Write([]byte("$CIS?\r")))
	assert.Equal(t, "$CIS?\r", <-received)

	frame, err := tcp.ReadUntil('\n', time.Second)
	require.NoError(t, err)
	assert.Equal(t, "$CIS? A200-0815\r\n", string(frame))

	_, err = tcp.ReadUntil('\n', 20*time.Millisecond)
	assert.ErrorIs(t, err, cat.ErrTimeout)
}

func TestTCP_FlushIsBounded(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if _, err := conn.Write([]byte("$SMT? 42\r\n")); err != nil {
				return
			}
		}
	}()

	tcp := NewTCP(listener.Addr().String())
	tcp.flushBudget = 20 * time.Millisecond
	require.NoError(t, tcp.Open())
	defer tcp.Close()

	start := time.Now()
	assert.NoError(t, tcp.Flush())
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, tcp.buffer)
}

func TestTCP_NotConnected(t *testing.T) {
	tcp := NewTCP("127.0.0.1:1")
	_, err := tcp.ReadUntil('\n', time.Millisecond)
	assert.ErrorIs(t, err, cat.ErrIO)
	assert.NoError(t, tcp.Close())
}
