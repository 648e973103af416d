package craft

import "fmt"

// NodeKind selects how the solver treats a node.
type NodeKind uint8

const (
	// Joint nodes are integrated and pushed around by rods.
	Joint NodeKind = iota
	// Fixed nodes are never moved by the solver.
	Fixed
)

var nodeKindNames = map[NodeKind]string{
	Joint: "joint",
	Fixed: "fixed",
}

// Valid reports whether k is a declared node kind.
func (k NodeKind) Valid() bool {
	_, ok := nodeKindNames[k]
	return ok
}

func (k NodeKind) String() string {
	if s, ok := nodeKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("NodeKind(%d)", uint8(k))
}

func (k NodeKind) MarshalText() ([]byte, error) {
	s, ok := nodeKindNames[k]
	if !ok {
		return nil, fmt.Errorf("%w: unknown node kind %d", ErrInvalidFormat, uint8(k))
	}
	return []byte(s), nil
}

func (k *NodeKind) UnmarshalText(text []byte) error {
	for kind, name := range nodeKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: unknown node kind %q", ErrInvalidFormat, text)
}

// RodKind selects the constraint a rod enforces.
type RodKind uint8

const (
	// Solid rods hold an exact length.
	Solid RodKind = iota
	// Rope rods resist stretching past their length only.
	Rope
	// Spring rods pull softly toward their rest length.
	Spring
	// Piston rods track a target length oscillating between MinLength and MaxLength.
	Piston
)

var rodKindNames = map[RodKind]string{
	Solid:  "solid",
	Rope:   "rope",
	Spring: "spring",
	Piston: "piston",
}

// RodKinds lists every rod kind in declaration order.
func RodKinds() []RodKind { return []RodKind{Solid, Rope, Spring, Piston} }

// Valid reports whether k is a declared rod kind.
func (k RodKind) Valid() bool {
	_, ok := rodKindNames[k]
	return ok
}

func (k RodKind) String() string {
	if s, ok := rodKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("RodKind(%d)", uint8(k))
}

func (k RodKind) MarshalText() ([]byte, error) {
	s, ok := rodKindNames[k]
	if !ok {
		return nil, fmt.Errorf("%w: unknown rod kind %d", ErrInvalidFormat, uint8(k))
	}
	return []byte(s), nil
}

func (k *RodKind) UnmarshalText(text []byte) error {
	for kind, name := range rodKindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: unknown rod kind %q", ErrInvalidFormat, text)
}

// ParseRodKind maps a name such as "rope" to its kind.
func ParseRodKind(name string) (RodKind, error) {
	var k RodKind
	err := k.UnmarshalText([]byte(name))
	return k, err
}
