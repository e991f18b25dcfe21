package adat

import (
	"bytes"
	"log"
	"testing"
	"time"

	hamlib "github.com/ftl/rigproxy/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/adatadapter/caps"
	"github.com/ftl/adatadapter/cat"
	"github.com/ftl/adatadapter/sim"
)

func testTiming() cat.Timing {
	return cat.Timing{ReadTimeout: 100 * time.Millisecond}
}

func openSession(t *testing.T) (*Session, *sim.Radio) {
	t.Helper()
	radio := sim.New()
	session := New(radio, nil, testTiming(), cat.Tracer{})
	require.NoError(t, session.Open())
	return session, radio
}

func TestOpen(t *testing.T) {
	session, radio := openSession(t)

	assert.Equal(t, Open, session.State())
	assert.False(t, radio.Display)
	assert.Equal(t, []string{"$VRU>", "$CIS?", "$CIF?", "$CIH?", "$CIG?", "$CID?", "$CIO?", "$CAL?"}, radio.Commands())

	identity, err := session.Identity()
	require.NoError(t, err)
	assert.Equal(t, Identity{
		SerialNumber:    "A200-0815",
		FirmwareVersion: "1.40",
		HardwareVersion: "2.1",
		GUIVersion:      "1.37",
		IDCode:          "ADT-200A",
		Options:         "DSP2",
		Callsign:        "HB9XYZ",
	}, identity)
}

func TestOpen_Tracing(t *testing.T) {
	buffer := new(bytes.Buffer)
	session := New(sim.New(), nil, testTiming(), cat.NewTracer(log.New(buffer, "", 0)))

	require.NoError(t, session.Open())

	assert.Contains(t, buffer.String(), "> open\n")
	assert.Contains(t, buffer.String(), "    -> \"$VRU>\"\n")
	assert.Contains(t, buffer.String(), "<- \"$CIS? A200-0815\\r\\n\"")
}

func TestOpen_IdentificationFailureIsTolerated(t *testing.T) {
	radio := sim.New()
	radio.Unanswered["$CIG?"] = true
	radio.Unanswered["$CAL?"] = true
	session := New(radio, nil, testTiming(), cat.Tracer{})

	require.NoError(t, session.Open())

	identity, err := session.Identity()
	require.NoError(t, err)
	assert.Equal(t, "A200-0815", identity.SerialNumber)
	assert.Empty(t, identity.GUIVersion)
	assert.Empty(t, identity.Callsign)
	assert.Equal(t, "DSP2", identity.Options)
	assert.Equal(t, 0, radio.Closes)
}

func TestOpen_IOErrorAborts(t *testing.T) {
	radio := sim.New()
	radio.FailWrites = 1
	session := New(radio, nil, testTiming(), cat.Tracer{})

	err := session.Open()

	assert.ErrorIs(t, err, cat.ErrIO)
	assert.Equal(t, Uninit, session.State())
	assert.Equal(t, 1, session.link.Recoveries())
	assert.Equal(t, 2, radio.Closes, "closed by the recovery and by the failed open")
}

func TestOpen_TransportFailure(t *testing.T) {
	radio := sim.New()
	radio.FailOpen = true
	session := New(radio, nil, testTiming(), cat.Tracer{})

	err := session.Open()

	assert.ErrorIs(t, err, cat.ErrIO)
	assert.Equal(t, Uninit, session.State())
	assert.Empty(t, radio.Commands())
}

func TestOpen_Twice(t *testing.T) {
	session, _ := openSession(t)
	assert.ErrorIs(t, session.Open(), ErrAlreadyOpen)
}

func TestClose(t *testing.T) {
	session, radio := openSession(t)

	require.NoError(t, session.Close())

	assert.Equal(t, Closed, session.State())
	assert.True(t, radio.Display)
	assert.Equal(t, 1, radio.Closes)
	assert.Empty(t, session.link.LastCommand())
	assert.Empty(t, session.link.LastResult())

	assert.ErrorIs(t, session.Close(), ErrNotOpen)

	require.NoError(t, session.Open(), "a closed session can be opened again")
	assert.Equal(t, Open, session.State())
}

func TestRejectedOutsideOpen(t *testing.T) {
	radio := sim.New()
	session := New(radio, nil, testTiming(), cat.Tracer{})

	_, err := session.Frequency()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, session.SetFrequency(14074000), ErrNotOpen)
	_, _, err = session.Mode()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, session.SetMode(hamlib.ModeUSB, 0), ErrNotOpen)
	_, err = session.VFO()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, session.SetVFO(hamlib.VFOB), ErrNotOpen)
	_, err = session.PTT()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, session.SetPTT(true), ErrNotOpen)
	_, err = session.Callsign()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, session.SetCallsign("DL1ABC"), ErrNotOpen)
	_, err = session.Identity()
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = session.Info()
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, session.Close(), ErrNotOpen)

	assert.Empty(t, radio.Commands())
	assert.Zero(t, radio.Opens)
}

func TestFrequency_RoundTrip(t *testing.T) {
	session, radio := openSession(t)

	require.NoError(t, session.SetFrequency(14074000.0))
	assert.Equal(t, 14074000.0, radio.Frequency)
	assert.Contains(t, radio.Commands(), "$FR1:14074000Hz")

	frequency, err := session.Frequency()
	require.NoError(t, err)
	assert.Equal(t, 14074000.0, frequency)
}

func TestFrequency_Read(t *testing.T) {
	session, radio := openSession(t)
	radio.Frequency = 3573000

	frequency, err := session.Frequency()

	require.NoError(t, err)
	assert.Equal(t, 3573000.0, frequency)
	commands := radio.Commands()
	assert.Equal(t, []string{"$VRU>", "$FRA?"}, commands[len(commands)-2:])
}

func TestFrequency_InactiveVFOKeepsLastValue(t *testing.T) {
	session, radio := openSession(t)
	_, err := session.Frequency()
	require.NoError(t, err)

	radio.InactiveVFO = true
	radio.Frequency = 3500000
	frequency, err := session.Frequency()

	require.NoError(t, err)
	assert.Equal(t, 7074000.0, frequency)
}

func TestFrequency_SkipsUnmarkedFrames(t *testing.T) {
	session, radio := openSession(t)
	radio.Noise = []string{"", "garbage"}
	radio.LeadingNUL = true

	frequency, err := session.Frequency()

	require.NoError(t, err)
	assert.Equal(t, 7074000.0, frequency)
}

func TestFrequency_TimeoutRecovers(t *testing.T) {
	session, radio := openSession(t)
	radio.SilentOnce = 1
	before := len(radio.Commands())

	_, err := session.Frequency()

	assert.ErrorIs(t, err, cat.ErrTimeout)
	assert.Equal(t, 1, session.link.Recoveries())
	assert.Equal(t, 1, radio.Closes)
	assert.Equal(t, 2, radio.Opens)
	assert.Equal(t, []string{"$VRU>", "$FRA?", "$VRU>"}, radio.Commands()[before:])
	assert.Equal(t, Open, session.State())

	frequency, err := session.Frequency()
	require.NoError(t, err, "the session is usable after the recovery")
	assert.Equal(t, 7074000.0, frequency)
}

func TestSetFrequency_OutOfRange(t *testing.T) {
	session, radio := openSession(t)
	before := len(radio.Commands())

	err := session.SetFrequency(145000000)

	assert.ErrorIs(t, err, cat.ErrInvalidArgument)
	assert.Len(t, radio.Commands(), before)
}

func TestMode(t *testing.T) {
	session, radio := openSession(t)
	radio.Mode = 2

	mode, width, err := session.Mode()
	require.NoError(t, err)
	assert.Equal(t, hamlib.ModeLSB, mode)
	assert.Equal(t, 2400, width)

	require.NoError(t, session.SetMode(hamlib.ModeCW, 0))
	assert.Equal(t, 1, radio.Mode)
	mode, width, err = session.Mode()
	require.NoError(t, err)
	assert.Equal(t, hamlib.ModeCW, mode)
	assert.Equal(t, 500, width)

	require.NoError(t, session.SetMode(hamlib.ModeCW, 250))
	_, width, err = session.Mode()
	require.NoError(t, err)
	assert.Equal(t, 250, width)
}

func TestMode_Invalid(t *testing.T) {
	session, radio := openSession(t)

	assert.ErrorIs(t, session.SetMode(hamlib.ModeWFM, 0), cat.ErrInvalidArgument)

	radio.Mode = 4
	_, _, err := session.Mode()
	assert.ErrorIs(t, err, cat.ErrInvalidArgument)
	assert.Equal(t, 0, session.link.Recoveries())
}

func TestMode_ReplyToOtherCommandRecovers(t *testing.T) {
	session, radio := openSession(t)
	radio.Mode = 1
	radio.WrongEcho["$MOD?"] = "$VFO?"

	_, _, err := session.Mode()

	assert.ErrorIs(t, err, cat.ErrProtocol)
	assert.Equal(t, 1, session.link.Recoveries())
	assert.Equal(t, 1, radio.Closes)

	delete(radio.WrongEcho, "$MOD?")
	mode, width, err := session.Mode()
	require.NoError(t, err)
	assert.Equal(t, hamlib.ModeCW, mode)
	assert.Equal(t, 500, width)
}

func TestMode_ReplyWithoutValueRecovers(t *testing.T) {
	session, radio := openSession(t)
	radio.NoValue["$MOD?"] = true

	_, _, err := session.Mode()

	assert.ErrorIs(t, err, cat.ErrProtocol)
	assert.NotErrorIs(t, err, cat.ErrInvalidArgument)
	assert.Equal(t, 1, session.link.Recoveries())
}

func TestOpen_ProtocolErrorInIdentificationIsTolerated(t *testing.T) {
	radio := sim.New()
	radio.WrongEcho["$CIH?"] = "$CIS?"
	session := New(radio, nil, testTiming(), cat.Tracer{})

	require.NoError(t, session.Open())

	identity, err := session.Identity()
	require.NoError(t, err)
	assert.Empty(t, identity.HardwareVersion)
	assert.Equal(t, "1.37", identity.GUIVersion)
}

func TestMode_NotInCapabilities(t *testing.T) {
	capabilities, err := caps.Parse([]byte("model: Test\nmodes: [USB, LSB]\nrx_ranges: [{from: 100000, to: 30000000}]\n"))
	require.NoError(t, err)
	session := New(sim.New(), capabilities, testTiming(), cat.Tracer{})
	require.NoError(t, session.Open())

	assert.ErrorIs(t, session.SetMode(hamlib.ModeCW, 0), cat.ErrNotAvailable)
	require.NoError(t, session.SetMode(hamlib.ModeLSB, 0))
}

func TestVFO(t *testing.T) {
	session, radio := openSession(t)
	radio.VFO = 2

	vfo, err := session.VFO()
	require.NoError(t, err)
	assert.Equal(t, hamlib.VFOB, vfo)

	require.NoError(t, session.SetVFO(VFOC))
	assert.Equal(t, 3, radio.VFO)

	require.NoError(t, session.SetFrequency(10120000))
	assert.Contains(t, radio.Commands(), "$FR3:10120000Hz")

	assert.ErrorIs(t, session.SetVFO(hamlib.VFO("VFOX")), cat.ErrInvalidArgument)
	vfo, err = session.VFO()
	require.NoError(t, err)
	assert.Equal(t, VFOC, vfo)
}

func TestPTT_Session(t *testing.T) {
	session, radio := openSession(t)

	ptt, err := session.PTT()
	require.NoError(t, err)
	assert.False(t, ptt)

	require.NoError(t, session.SetPTT(true))
	assert.Equal(t, 1, radio.PTT)
	ptt, err = session.PTT()
	require.NoError(t, err)
	assert.True(t, ptt)

	radio.PTT = 7
	_, err = session.PTT()
	assert.ErrorIs(t, err, cat.ErrInvalidArgument)
}

func TestCallsign(t *testing.T) {
	session, radio := openSession(t)
	radio.Callsign = "HB9ABC"

	callsign, err := session.Callsign()
	require.NoError(t, err)
	assert.Equal(t, "HB9ABC", callsign)

	require.NoError(t, session.SetCallsign(" dl1abc/p "))
	assert.Equal(t, "DL1ABC/P", radio.Callsign)

	for _, invalid := range []string{"", "WAYTOOLONGCALL", "DL 1ABC", "DL1ÄBC"} {
		assert.ErrorIs(t, session.SetCallsign(invalid), cat.ErrInvalidArgument, invalid)
	}
}

func TestCallsign_NoReply(t *testing.T) {
	session, radio := openSession(t)
	radio.Unanswered["$CAL?"] = true

	_, err := session.Callsign()

	assert.ErrorIs(t, err, cat.ErrTimeout, "an explicit query reports what the open sequence tolerates")
}

func TestInfo(t *testing.T) {
	session, radio := openSession(t)
	radio.FirmwareVersion = "1.41"

	info, err := session.Info()

	require.NoError(t, err)
	assert.Equal(t, "ADT-200A SN:A200-0815 FW:1.41 HW:2.1 GUI:1.37 OPT:DSP2 CALL:HB9XYZ", info)
}
