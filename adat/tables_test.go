package adat

import (
	"testing"

	hamlib "github.com/ftl/rigproxy/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/adatadapter/cat"
)

func TestModes_RoundTrip(t *testing.T) {
	for _, e := range Modes.Entries() {
		t.Run(e.Token, func(t *testing.T) {
			byToken, err := Modes.ByToken(e.Token)
			require.NoError(t, err)
			byValue, err := Modes.ByValue(byToken.Value)
			require.NoError(t, err)
			byCode, err := Modes.ByCode(byValue.Code)
			require.NoError(t, err)
			assert.Equal(t, e, byCode)
		})
	}
}

func TestVFOs_RoundTrip(t *testing.T) {
	for _, e := range VFOs.Entries() {
		byValue, err := VFOs.ByValue(e.Value)
		require.NoError(t, err)
		assert.Equal(t, e.Token, byValue.Token)
	}
}

func TestTables_Miss(t *testing.T) {
	_, err := Modes.ByCode(42)
	assert.ErrorIs(t, err, cat.ErrInvalidArgument)
	_, err = Modes.ByCode(4)
	assert.ErrorIs(t, err, cat.ErrInvalidArgument)
	_, err = Modes.ByToken("usb")
	assert.ErrorIs(t, err, cat.ErrInvalidArgument)
	_, err = Modes.ByValue(hamlib.ModeWFM)
	assert.ErrorIs(t, err, cat.ErrInvalidArgument)
	_, err = VFOs.ByValue(hamlib.MainVFO)
	assert.ErrorIs(t, err, cat.ErrInvalidArgument)
}

func TestTables_Entries(t *testing.T) {
	entries := Modes.Entries()
	entries[0].Token = "changed"
	assert.Equal(t, "CW-R", Modes.Entries()[0].Token)
}

func TestParseVFO(t *testing.T) {
	tt := []struct {
		value    string
		expected hamlib.VFO
	}{
		{"1", hamlib.VFOA},
		{"2", hamlib.VFOB},
		{" 3 ", VFOC},
		{"A", hamlib.VFOA},
		{"C", VFOC},
	}
	for _, tc := range tt {
		vfo, err := ParseVFO(tc.value)
		require.NoError(t, err, tc.value)
		assert.Equal(t, tc.expected, vfo, tc.value)
	}

	for _, value := range []string{"0", "9", "D", ""} {
		_, err := ParseVFO(value)
		assert.ErrorIs(t, err, cat.ErrInvalidArgument, value)
	}
}

func TestParseModeCode(t *testing.T) {
	mode, err := ParseModeCode("3")
	require.NoError(t, err)
	assert.Equal(t, hamlib.ModeUSB, mode)

	mode, err = ParseModeCode("6")
	require.NoError(t, err)
	assert.Equal(t, hamlib.ModeSAM, mode)

	_, err = ParseModeCode("USB")
	assert.ErrorIs(t, err, cat.ErrInvalidArgument)
	_, err = ParseModeCode("")
	assert.ErrorIs(t, err, cat.ErrInvalidArgument)
}

func TestPTT(t *testing.T) {
	ptt, err := ParsePTT("1")
	require.NoError(t, err)
	assert.Equal(t, PTTOn, ptt)
	assert.True(t, ptt.On())

	ptt, err = ParsePTT("0")
	require.NoError(t, err)
	assert.Equal(t, PTTOff, ptt)

	for _, value := range []string{"", "x", "2", "-1"} {
		_, err := ParsePTT(value)
		assert.ErrorIs(t, err, cat.ErrInvalidArgument, value)
	}

	code, err := PTTCode(PTTFromBool(true))
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	_, err = PTTCode(PTT(5))
	assert.ErrorIs(t, err, cat.ErrInvalidArgument)
}
