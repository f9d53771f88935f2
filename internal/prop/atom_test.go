package prop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biabductor/biabductor/internal/term"
)

func TestAtomOpStringRendersSymbol(t *testing.T) {
	assert.Equal(t, "=", Eq.String())
	assert.Equal(t, "!=", Neq.String())
}

func TestAttrAtomRoundTripsThroughAsAttr(t *testing.T) {
	expr := term.Var{Id: term.Ident{Kind: term.Normal, Name: "x"}}
	attr := term.Aretval{Callee: "foo"}

	atom := AttrAtom(expr, attr)
	gotExpr, gotAttr, ok := atom.AsAttr()
	require.True(t, ok)
	assert.Equal(t, expr, gotExpr)
	assert.Equal(t, attr, gotAttr)
}

func TestAsAttrRejectsOrdinaryEqualityAtom(t *testing.T) {
	atom := Atom{Op: Eq, Left: term.IntConst(1), Right: term.IntConst(1)}
	_, _, ok := atom.AsAttr()
	assert.False(t, ok)
}

func TestAsAttrRejectsNeqWithoutAttributeConst(t *testing.T) {
	atom := Atom{Op: Neq, Left: term.IntConst(1), Right: term.IntConst(2)}
	_, _, ok := atom.AsAttr()
	assert.False(t, ok)
}

func TestAtomApplySubstitutesBothSides(t *testing.T) {
	x := term.Ident{Kind: term.Normal, Name: "x"}
	sub := term.NewSub().Extend(x, term.IntConst(9))

	atom := Atom{Op: Eq, Left: term.Var{Id: x}, Right: term.IntConst(0)}
	got := atom.Apply(sub)

	assert.Equal(t, term.IntConst(9), got.Left)
	assert.Equal(t, term.IntConst(0), got.Right)
}

func TestAtomNegateFlipsOperatorKeepingOperands(t *testing.T) {
	atom := Atom{Op: Eq, Left: term.IntConst(1), Right: term.IntConst(2)}
	neg := atom.Negate()
	assert.Equal(t, Neq, neg.Op)
	assert.Equal(t, atom.Left, neg.Left)
	assert.Equal(t, atom.Right, neg.Right)

	assert.Equal(t, Eq, neg.Negate().Op)
}
