package adat

import (
	"fmt"
	"strconv"
	"strings"

	hamlib "github.com/ftl/rigproxy/pkg/client"

	"github.com/ftl/adatadapter/cat"
)

// VFOC is the third VFO of the ADT-200A, Hamlib clients know it by this name.
const VFOC hamlib.VFO = "VFOC"

// Entry links the protocol token, the Hamlib value and the protocol code of one item.
type Entry[V comparable] struct {
	Token string
	Value V
	Code  int
}

// Table is a fixed translation table. Lookups scan linearly, the first match wins.
type Table[V comparable] struct {
	name    string
	entries []Entry[V]
}

func newTable[V comparable](name string, entries ...Entry[V]) Table[V] {
	return Table[V]{name: name, entries: entries}
}

func (t Table[V]) ByToken(token string) (Entry[V], error) {
	for _, e := range t.entries {
		if e.Token == token {
			return e, nil
		}
	}
	return Entry[V]{}, fmt.Errorf("%w: unknown %s token %q", cat.ErrInvalidArgument, t.name, token)
}

func (t Table[V]) ByValue(value V) (Entry[V], error) {
	for _, e := range t.entries {
		if e.Value == value {
			return e, nil
		}
	}
	return Entry[V]{}, fmt.Errorf("%w: unsupported %s %v", cat.ErrInvalidArgument, t.name, value)
}

func (t Table[V]) ByCode(code int) (Entry[V], error) {
	for _, e := range t.entries {
		if e.Code == code {
			return e, nil
		}
	}
	return Entry[V]{}, fmt.Errorf("%w: unknown %s code %d", cat.ErrInvalidArgument, t.name, code)
}

func (t Table[V]) Entries() []Entry[V] {
	result := make([]Entry[V], len(t.entries))
	copy(result, t.entries)
	return result
}

var Modes = newTable("mode",
	Entry[hamlib.Mode]{"CW-R", hamlib.ModeCWR, 0},
	Entry[hamlib.Mode]{"CW", hamlib.ModeCW, 1},
	Entry[hamlib.Mode]{"LSB", hamlib.ModeLSB, 2},
	Entry[hamlib.Mode]{"USB", hamlib.ModeUSB, 3},
	Entry[hamlib.Mode]{"AM", hamlib.ModeAM, 5},
	Entry[hamlib.Mode]{"AM-SYNC", hamlib.ModeSAM, 6},
	Entry[hamlib.Mode]{"FM", hamlib.ModeFM, 7},
	Entry[hamlib.Mode]{"AM-LSB", hamlib.ModeECSSLSB, 8},
	Entry[hamlib.Mode]{"AM-USB", hamlib.ModeECSSUSB, 9},
)

var VFOs = newTable("VFO",
	Entry[hamlib.VFO]{"A", hamlib.VFOA, 1},
	Entry[hamlib.VFO]{"B", hamlib.VFOB, 2},
	Entry[hamlib.VFO]{"C", VFOC, 3},
)

// ParseVFO resolves a VFO field that carries either the numeric code or the letter.
func ParseVFO(s string) (hamlib.VFO, error) {
	s = strings.TrimSpace(s)
	if code, err := strconv.Atoi(s); err == nil {
		e, err := VFOs.ByCode(code)
		return e.Value, err
	}
	e, err := VFOs.ByToken(s)
	return e.Value, err
}

// ParseModeCode resolves the numeric mode field of a reply.
func ParseModeCode(s string) (hamlib.Mode, error) {
	code, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: invalid mode code %q", cat.ErrInvalidArgument, s)
	}
	e, err := Modes.ByCode(code)
	return e.Value, err
}

type PTT int

const (
	PTTOff PTT = iota
	PTTOn
)

var ptts = []struct {
	code  int
	value PTT
}{
	{0, PTTOff},
	{1, PTTOn},
}

func PTTFromBool(on bool) PTT {
	if on {
		return PTTOn
	}
	return PTTOff
}

func (p PTT) On() bool {
	return p == PTTOn
}

func (p PTT) String() string {
	if p == PTTOn {
		return "on"
	}
	return "off"
}

// ParsePTT resolves a received PTT field. Missing or unknown values are rejected.
func ParsePTT(s string) (PTT, error) {
	code, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return PTTOff, fmt.Errorf("%w: invalid PTT %q", cat.ErrInvalidArgument, s)
	}
	for _, p := range ptts {
		if p.code == code {
			return p.value, nil
		}
	}
	return PTTOff, fmt.Errorf("%w: unknown PTT code %d", cat.ErrInvalidArgument, code)
}

func PTTCode(p PTT) (int, error) {
	for _, e := range ptts {
		if e.value == p {
			return e.code, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown PTT state %d", cat.ErrInvalidArgument, int(p))
}
