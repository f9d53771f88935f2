package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubExtendAndLookup(t *testing.T) {
	s := NewSub()
	id := Ident{Kind: Normal, Name: "x", Stamp: 1}
	s = s.Extend(id, IntConst(5))

	e, ok := s.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, IntConst(5), e)

	_, ok = s.Lookup(Ident{Kind: Normal, Name: "y", Stamp: 1})
	assert.False(t, ok)
}

func TestSubExtendNormalizesThroughExistingBindings(t *testing.T) {
	x := Ident{Kind: Normal, Name: "x", Stamp: 1}
	y := Ident{Kind: Normal, Name: "y", Stamp: 1}

	s := NewSub().Extend(x, IntConst(1))
	s = s.Extend(y, Var{Id: x})

	e, ok := s.Lookup(y)
	require.True(t, ok)
	assert.Equal(t, IntConst(1), e, "y should be normalized through x's binding at extend time")
}

func TestSubApplyRewritesVarsRecursively(t *testing.T) {
	x := Ident{Kind: Normal, Name: "x", Stamp: 1}
	s := NewSub().Extend(x, IntConst(7))

	expr := BinOp{Op: "+", Left: Var{Id: x}, Right: IntConst(1)}
	got := s.Apply(expr)

	bin, ok := got.(BinOp)
	require.True(t, ok)
	assert.Equal(t, IntConst(7), bin.Left)
}

func TestSubApplyLeavesUnboundVarsAlone(t *testing.T) {
	s := NewSub()
	v := Var{Id: Ident{Kind: Normal, Name: "z", Stamp: 1}}
	assert.Equal(t, v, s.Apply(v))
}

func TestSubDomainListsAllBoundIdents(t *testing.T) {
	x := Ident{Kind: Normal, Name: "x", Stamp: 1}
	y := Ident{Kind: Normal, Name: "y", Stamp: 1}
	s := NewSub().Extend(x, IntConst(1)).Extend(y, IntConst(2))

	assert.ElementsMatch(t, []Ident{x, y}, s.Domain())
}

func TestComposeAppliesFirstSubThenSecond(t *testing.T) {
	x := Ident{Kind: Normal, Name: "x", Stamp: 1}
	y := Ident{Kind: Normal, Name: "y", Stamp: 1}

	sub1 := NewSub().Extend(x, Var{Id: y})
	sub2 := NewSub().Extend(y, IntConst(3))

	composed := Compose(sub1, sub2)
	bound, ok := composed.Lookup(x)
	require.True(t, ok)
	assert.Equal(t, IntConst(3), bound)

	yBound, ok := composed.Lookup(y)
	require.True(t, ok)
	assert.Equal(t, IntConst(3), yBound)
}

func TestFreeVarsCollectsUniqueIdentsAcrossSubexpressions(t *testing.T) {
	x := Ident{Kind: Normal, Name: "x", Stamp: 1}
	y := Ident{Kind: Normal, Name: "y", Stamp: 1}

	expr := BinOp{
		Op:   "+",
		Left: Var{Id: x},
		Right: Lfield{
			Base:  Var{Id: y},
			Field: "f",
		},
	}
	// x appears again nested in a cast to check dedup.
	expr2 := BinOp{Op: "+", Left: expr, Right: Cast{Typ: NewPrimitive(Int), Expr: Var{Id: x}}}

	free := FreeVars(expr2)
	assert.ElementsMatch(t, []Ident{x, y}, free)
}
