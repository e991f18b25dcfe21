package cat

import "strings"

type Kind int

const (
	WithoutResult Kind = iota
	WithResult
)

func (k Kind) String() string {
	if k == WithResult {
		return "with result"
	}
	return "without result"
}

// OpID identifies a structured operation implemented by the backend.
type OpID int

// Action is either Literals or Callback.
type Action interface {
	action()
}

// Literals are command strings sent in order.
type Literals []string

// Callback delegates the command to the OpRunner of the link.
type Callback OpID

func (Literals) action() {}
func (Callback) action() {}

// Definition describes one CAT command. It cannot be changed after construction.
type Definition struct {
	id     uint64
	name   string
	kind   Kind
	action Action
}

func NewLiteral(id uint64, name string, kind Kind, commands ...string) *Definition {
	literals := make(Literals, len(commands))
	copy(literals, commands)
	return &Definition{id: id, name: name, kind: kind, action: literals}
}

func NewCallback(id uint64, name string, op OpID) *Definition {
	return &Definition{id: id, name: name, kind: WithoutResult, action: Callback(op)}
}

func (d *Definition) ID() uint64 {
	return d.id
}

func (d *Definition) Name() string {
	return d.name
}

func (d *Definition) Kind() Kind {
	return d.kind
}

func (d *Definition) Action() Action {
	switch a := d.action.(type) {
	case Literals:
		result := make(Literals, len(a))
		copy(result, a)
		return result
	default:
		return a
	}
}

// Sequence is an ordered list of definitions forming one logical operation.
type Sequence struct {
	name string
	defs []*Definition
}

func NewSequence(name string, defs ...*Definition) *Sequence {
	result := &Sequence{name: name, defs: make([]*Definition, len(defs))}
	copy(result.defs, defs)
	return result
}

func (s *Sequence) Name() string {
	return s.name
}

func (s *Sequence) Len() int {
	return len(s.defs)
}

func (s *Sequence) At(i int) *Definition {
	return s.defs[i]
}

// Mask is the bitwise OR of all definition ids in the sequence.
func (s *Sequence) Mask() uint64 {
	var result uint64
	for _, d := range s.defs {
		result |= d.id
	}
	return result
}

func (s *Sequence) String() string {
	names := make([]string, len(s.defs))
	for i, d := range s.defs {
		names[i] = d.name
	}
	return s.name + "[" + strings.Join(names, ", ") + "]"
}
