package prop

import (
	"fmt"

	"github.com/biabductor/biabductor/internal/term"
)

// AtomOp distinguishes equality from disequality atoms.
type AtomOp int

const (
	Eq AtomOp = iota
	Neq
)

func (op AtomOp) String() string {
	if op == Eq {
		return "="
	}
	return "!="
}

// Atom is a pure fact: `e1 = e2` or `e1 != e2`. Attributes are encoded as
// a special disequality atom `e != Cattribute(a)`; AsAttr
// recognizes that encoding.
type Atom struct {
	Op          AtomOp
	Left, Right term.Expr
}

func (a Atom) String() string {
	return fmt.Sprintf("%s %s %s", a.Left, a.Op, a.Right)
}

// AttrAtom builds the pseudo-atom that attaches attribute a to expr.
func AttrAtom(expr term.Expr, a term.Attr) Atom {
	return Atom{Op: Neq, Left: expr, Right: term.Const(term.AttributeConst(a))}
}

// AsAttr recognizes the `e != Cattribute(a)` encoding and returns the
// expression and attribute it attaches, if this atom is of that shape.
func (a Atom) AsAttr() (term.Expr, term.Attr, bool) {
	if a.Op != Neq {
		return nil, nil, false
	}
	if c, ok := a.Right.(term.Const); ok && c.Kind == term.ConstAttribute {
		return a.Left, c.Attr, true
	}
	return nil, nil, false
}

// Apply rewrites both sides of the atom through a substitution.
func (a Atom) Apply(s *term.Sub) Atom {
	return Atom{Op: a.Op, Left: s.Apply(a.Left), Right: s.Apply(a.Right)}
}

// Equal is syntactic atom equality (used by normalization's dedup pass).
func (a Atom) Equal(b Atom) bool {
	return a.Op == b.Op && term.Equal(a.Left, a.Right) == term.Equal(b.Left, b.Right) &&
		term.Equal(a.Left, b.Left) && term.Equal(a.Right, b.Right)
}

// Negate returns the atom with the opposite operator, same operands —
// used by Prune when propagating the false-branch condition.
func (a Atom) Negate() Atom {
	if a.Op == Eq {
		return Atom{Op: Neq, Left: a.Left, Right: a.Right}
	}
	return Atom{Op: Eq, Left: a.Left, Right: a.Right}
}
