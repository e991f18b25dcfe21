package cat

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

const (
	BeginMarker  = '$'
	EndOfMessage = '\r'
	EndOfLine    = '\n'
)

// Encode fills the template with the given parameters and terminates it with CR.
func Encode(template string, params ...interface{}) []byte {
	command := template
	if len(params) > 0 {
		command = fmt.Sprintf(template, params...)
	}
	return append([]byte(command), EndOfMessage)
}

// Decode returns the echoed token and the trimmed value of an inbound frame.
func Decode(raw []byte) (string, string) {
	payload := trimFrame(raw)
	echo, value, found := strings.Cut(payload, " ")
	if !found {
		return strings.TrimSpace(echo), ""
	}
	return echo, strings.TrimSpace(value)
}

// HasBeginMarker reports if the frame payload starts with the begin marker.
func HasBeginMarker(raw []byte) bool {
	payload := skipNUL(raw)
	return len(payload) > 0 && payload[0] == BeginMarker
}

func skipNUL(raw []byte) []byte {
	if len(raw) > 0 && raw[0] == 0 {
		return raw[1:]
	}
	return raw
}

func trimFrame(raw []byte) string {
	payload := skipNUL(raw)
	if i := bytes.IndexAny(payload, "\r\n"); i >= 0 {
		payload = payload[:i]
	}
	if i := bytes.IndexByte(payload, 0); i >= 0 {
		payload = payload[:i]
	}
	return string(payload)
}

type ParseMode int

const (
	WithoutVFO ParseMode = iota
	WithVFO
)

var frequencyUnits = map[string]float64{
	"Hz":  1,
	"kHz": 1e3,
	"MHz": 1e6,
	"GHz": 1e9,
}

// ParseFrequency reads a decimal literal followed by a unit and returns the value in Hz.
// In WithVFO mode the literal is preceded by a VFO index; index 0 marks an inactive VFO,
// it is returned as is and the caller decides whether to use the frequency.
// A nil input yields zero values and no error.
func ParseFrequency(s *string, mode ParseMode) (float64, int, error) {
	if s == nil {
		return 0, 0, nil
	}
	rest := strings.TrimLeftFunc(*s, unicode.IsSpace)

	var vfo int
	if mode == WithVFO {
		end := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsDigit(r) })
		if end == -1 {
			end = len(rest)
		}
		if end == 0 {
			return 0, 0, invalidArgument("missing VFO index in %q", *s)
		}
		index, err := strconv.Atoi(rest[:end])
		if err != nil {
			return 0, 0, invalidArgument("invalid VFO index in %q", *s)
		}
		vfo = index
		rest = rest[end:]
	}

	split := strings.IndexFunc(rest, func(r rune) bool { return unicode.IsLetter(r) })
	if split == -1 {
		split = len(rest)
	}
	literal := strings.TrimSpace(rest[:split])
	rest = rest[split:]
	unitEnd := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsLetter(r) })
	if unitEnd == -1 {
		unitEnd = len(rest)
	}
	unit := rest[:unitEnd]

	factor, ok := frequencyUnits[unit]
	if !ok {
		return 0, vfo, invalidArgument("unknown frequency unit %q", unit)
	}
	value, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, vfo, invalidArgument("invalid frequency %q", literal)
	}
	return value * factor, vfo, nil
}

// FormatFrequency renders a frequency the way set commands expect it.
func FormatFrequency(hz float64) string {
	return strconv.FormatFloat(hz, 'f', 0, 64) + "Hz"
}
