// Package adapter serves the rigctld network protocol in front of a radio session.
package adapter

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"strconv"
	"strings"

	hamlib "github.com/ftl/rigproxy/pkg/client"
	"github.com/ftl/rigproxy/pkg/protocol"

	"github.com/ftl/adatadapter/adat"
	"github.com/ftl/adatadapter/caps"
	"github.com/ftl/adatadapter/cat"
)

// Rig is the radio behind the adapter. *adat.Session implements it.
type Rig interface {
	Capabilities() *caps.Capabilities
	Frequency() (float64, error)
	SetFrequency(hz float64) error
	Mode() (hamlib.Mode, int, error)
	SetMode(mode hamlib.Mode, width int) error
	VFO() (hamlib.VFO, error)
	SetVFO(vfo hamlib.VFO) error
	PTT() (bool, error)
	SetPTT(on bool) error
	Info() (string, error)
}

func Listen(localAddress string, rig Rig, done <-chan struct{}, traceHamlib bool, version string) (*Adapter, error) {
	listener, err := net.Listen("tcp", localAddress)
	if err != nil {
		return nil, fmt.Errorf("cannot open local port %s: %w", localAddress, err)
	}

	result := &Adapter{
		listener:    listener,
		rig:         newRigData(rig),
		closed:      make(chan struct{}),
		traceHamlib: traceHamlib,
		version:     version,
	}

	go result.run()
	go func() {
		select {
		case <-done:
		case <-result.closed:
		}
		listener.Close()
		result.Close()
	}()

	return result, nil
}

type Adapter struct {
	listener    net.Listener
	rig         *rigData
	closed      chan struct{}
	traceHamlib bool
	version     string
}

// Addr returns the address the adapter listens on.
func (a *Adapter) Addr() net.Addr {
	return a.listener.Addr()
}

func (a *Adapter) run() {
	for {
		c, err := a.listener.Accept()
		select {
		case <-a.closed:
			if c != nil {
				c.Close()
			}
			return
		default:
		}
		if err != nil {
			log.Print(err)
			a.Close()
			return
		}
		if a.traceHamlib {
			log.Printf("new connection from %s", c.RemoteAddr())
		}

		conn := newInboundConnection(c, a.rig, a.traceHamlib, a.version)
		go conn.run()
		go func() {
			select {
			case <-a.closed:
				conn.Close()
			case <-conn.closed:
			}
			c.Close()
		}()
	}
}

func (a *Adapter) Close() {
	select {
	case <-a.closed:
	default:
		close(a.closed)
	}
}

func (a *Adapter) Wait() {
	<-a.closed
}

type inboundConnection struct {
	conn       io.ReadWriteCloser
	rig        *rigData
	closed     chan struct{}
	trace      bool
	version    string
	modeLocked bool
}

func newInboundConnection(conn io.ReadWriteCloser, rig *rigData, trace bool, version string) *inboundConnection {
	return &inboundConnection{
		conn:    conn,
		rig:     rig,
		closed:  make(chan struct{}),
		trace:   trace,
		version: version,
	}
}

func (c *inboundConnection) run() {
	defer c.conn.Close()
	defer c.Close()
	r := protocol.NewRequestReader(c.conn)
	for {
		req, err := r.ReadRequest()
		if err == io.EOF {
			if c.trace {
				log.Print("connection EOF")
			}
			return
		}
		if err != nil {
			log.Printf("connection: %v", err)
			return
		}

		resp, err := c.handleRequest(req)
		if err != nil {
			log.Printf("request failed: %v", err)
			resp = errorResponse(req.Key(), err)
		}

		var response string
		if req.ExtendedSeparator != "" {
			response = resp.ExtendedFormat(req.ExtendedSeparator)
		} else {
			response = resp.Format()
		}
		if c.trace {
			log.Printf("> %s", response)
		}
		if _, err := fmt.Fprintln(c.conn, response); err != nil {
			log.Printf("connection: %v", err)
			return
		}
	}
}

func (c *inboundConnection) handleRequest(req protocol.Request) (protocol.Response, error) {
	key := strings.ToLower(string(req.Key()))
	if c.trace {
		log.Printf("< %s (%s)", req.LongFormat(), key)
	}
	switch key {
	case "chk_vfo":
		return protocol.ChkVFOResponse, nil
	case "dump_state":
		return protocol.DumpStateResponse, nil
	case "dump_caps":
		return dumpCapsResponse(c.rig.Capabilities(), c.version), nil
	case "get_freq":
		frequency, err := c.rig.Frequency()
		if err != nil {
			return protocol.NoResponse, fmt.Errorf("get_freq: %w", err)
		}
		return protocol.GetFreqResponse(int(frequency)), nil
	case "set_freq":
		if len(req.Args) < 1 {
			return protocol.NoResponse, fmt.Errorf("set_freq: %w: no arguments", cat.ErrInvalidArgument)
		}
		frequency, err := strconv.ParseFloat(req.Args[0], 64)
		if err != nil {
			return protocol.NoResponse, fmt.Errorf("set_freq: %w: invalid frequency %q", cat.ErrInvalidArgument, req.Args[0])
		}
		err = c.rig.SetFrequency(frequency)
		if err != nil {
			return protocol.NoResponse, fmt.Errorf("set_freq: %w", err)
		}
		return protocol.OKResponse(req.Key()), nil
	case "get_vfo":
		vfo, err := c.rig.VFO()
		if err != nil {
			return protocol.NoResponse, fmt.Errorf("get_vfo: %w", err)
		}
		return protocol.GetVFOResponse(string(vfo)), nil
	case "set_vfo":
		if len(req.Args) < 1 {
			return protocol.NoResponse, fmt.Errorf("set_vfo: %w: no arguments", cat.ErrInvalidArgument)
		}
		vfo, ok := hamlibVFOs[hamlib.VFO(req.Args[0])]
		if !ok {
			return protocol.NoResponse, fmt.Errorf("set_vfo: %w: unknown VFO %s", cat.ErrInvalidArgument, req.Args[0])
		}
		err := c.rig.SetVFO(vfo)
		if err != nil {
			return protocol.NoResponse, fmt.Errorf("set_vfo: %w", err)
		}
		return protocol.OKResponse(req.Key()), nil
	case "get_mode":
		mode, passband, err := c.rig.Mode()
		if err != nil {
			return protocol.NoResponse, fmt.Errorf("get_mode: %w", err)
		}
		return protocol.GetModeResponse(string(mode), passband), nil
	case "set_mode":
		if len(req.Args) < 1 {
			return protocol.NoResponse, fmt.Errorf("set_mode: %w: no arguments", cat.ErrInvalidArgument)
		}
		if c.modeLocked {
			return protocol.OKResponse(req.Key()), nil
		}
		passband := 0
		if len(req.Args) > 1 {
			var err error
			passband, err = strconv.Atoi(req.Args[1])
			if err != nil {
				return protocol.NoResponse, fmt.Errorf("set_mode: %w: invalid passband %q", cat.ErrInvalidArgument, req.Args[1])
			}
		}
		err := c.rig.SetMode(hamlib.Mode(req.Args[0]), passband)
		if err != nil {
			return protocol.NoResponse, fmt.Errorf("set_mode: %w", err)
		}
		return protocol.OKResponse(req.Key()), nil
	case "get_split_vfo":
		return protocol.GetSplitVFOResponse(false, string(hamlib.VFOA)), nil
	case "set_split_vfo":
		if len(req.Args) < 1 {
			return protocol.NoResponse, fmt.Errorf("set_split_vfo: %w: no arguments", cat.ErrInvalidArgument)
		}
		if req.Args[0] != "0" {
			return protocol.NoResponse, fmt.Errorf("set_split_vfo: %w: split operation", cat.ErrNotAvailable)
		}
		return protocol.OKResponse(req.Key()), nil
	case "get_ptt":
		ptt, err := c.rig.PTT()
		if err != nil {
			return protocol.NoResponse, fmt.Errorf("get_ptt: %w", err)
		}
		return protocol.GetPTTResponse(ptt), nil
	case "set_ptt":
		if len(req.Args) < 1 {
			return protocol.NoResponse, fmt.Errorf("set_ptt: %w: no arguments", cat.ErrInvalidArgument)
		}
		var enabled bool
		switch req.Args[0] {
		case "0":
			enabled = false
		case "1", "2", "3":
			enabled = true
		default:
			return protocol.NoResponse, fmt.Errorf("set_ptt: %w: invalid PTT %q", cat.ErrInvalidArgument, req.Args[0])
		}
		err := c.rig.SetPTT(enabled)
		if err != nil {
			return protocol.NoResponse, fmt.Errorf("set_ptt: %w", err)
		}
		return protocol.OKResponse(req.Key()), nil
	case "get_info":
		info, err := c.rig.Info()
		if err != nil {
			return protocol.NoResponse, fmt.Errorf("get_info: %w", err)
		}
		return protocol.Response{
			Command: req.Key(),
			Data:    []string{info},
			Keys:    []string{"Info"},
			Result:  "0",
		}, nil
	case "set_lock_mode":
		if len(req.Args) < 1 {
			return protocol.NoResponse, fmt.Errorf("set_lock_mode: %w: no arguments", cat.ErrInvalidArgument)
		}
		c.modeLocked = (req.Args[0] == "1")
		return protocol.OKResponse(req.Key()), nil
	case "get_lock_mode":
		return protocol.GetPTTResponse(c.modeLocked), nil
	default:
		log.Printf("unsupported request: %v", req.LongFormat())
		return notImplementedResponse(req.Key()), nil
	}
}

func (c *inboundConnection) Close() {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}
}

// hamlibVFOs maps the VFO names a client may send to the VFOs of the radio.
var hamlibVFOs = map[hamlib.VFO]hamlib.VFO{
	hamlib.VFOA:    hamlib.VFOA,
	hamlib.VFOB:    hamlib.VFOB,
	adat.VFOC:      adat.VFOC,
	hamlib.MainVFO: hamlib.VFOA,
	hamlib.SubVFO:  hamlib.VFOB,
}

// Hamlib result codes
const (
	resultInvalidArgument = "-1"
	resultOutOfMemory     = "-3"
	resultNotImplemented  = "-4"
	resultTimeout         = "-5"
	resultIO              = "-6"
	resultInternal        = "-7"
	resultProtocol        = "-8"
	resultRejected        = "-9"
	resultNotAvailable    = "-11"
)

func resultCode(err error) string {
	switch {
	case errors.Is(err, adat.ErrNotOpen):
		return resultRejected
	case errors.Is(err, cat.ErrInvalidArgument):
		return resultInvalidArgument
	case errors.Is(err, cat.ErrOutOfMemory):
		return resultOutOfMemory
	case errors.Is(err, cat.ErrTimeout):
		return resultTimeout
	case errors.Is(err, cat.ErrIO):
		return resultIO
	case errors.Is(err, cat.ErrProtocol):
		return resultProtocol
	case errors.Is(err, cat.ErrNotAvailable):
		return resultNotAvailable
	default:
		return resultInternal
	}
}

func errorResponse(cmd protocol.CommandKey, err error) protocol.Response {
	return protocol.Response{Command: cmd, Result: resultCode(err)}
}

func notImplementedResponse(cmd protocol.CommandKey) protocol.Response {
	return protocol.Response{Command: cmd, Result: resultNotImplemented}
}
