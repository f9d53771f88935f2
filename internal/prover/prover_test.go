package prover

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

func xvar() term.Expr { return term.Var{Id: term.Ident{Kind: term.Normal, Name: "x"}} }
func yvar() term.Expr { return term.Var{Id: term.Ident{Kind: term.Normal, Name: "y"}} }

func TestCheckAtomProvesDirectEquality(t *testing.T) {
	pr := New(term.NewTypeEnv())
	p := prop.Empty().AddPi(prop.Atom{Op: prop.Eq, Left: xvar(), Right: term.IntConst(1)})

	assert.True(t, pr.CheckEqual(p, xvar(), term.IntConst(1)))
}

func TestCheckAtomProvesTransitiveEquality(t *testing.T) {
	pr := New(term.NewTypeEnv())
	p := prop.Empty().AddPi(
		prop.Atom{Op: prop.Eq, Left: xvar(), Right: yvar()},
		prop.Atom{Op: prop.Eq, Left: yvar(), Right: term.IntConst(3)},
	)
	assert.True(t, pr.CheckEqual(p, xvar(), term.IntConst(3)))
}

func TestCheckDisequalUsesRecordedDisequality(t *testing.T) {
	pr := New(term.NewTypeEnv())
	p := prop.Empty().AddPi(prop.Atom{Op: prop.Neq, Left: xvar(), Right: yvar()})
	assert.True(t, pr.CheckDisequal(p, xvar(), yvar()))
}

func TestCheckDisequalFromDistinctIntLiterals(t *testing.T) {
	pr := New(term.NewTypeEnv())
	p := prop.Empty()
	assert.True(t, pr.CheckDisequal(p, term.IntConst(1), term.IntConst(2)))
	assert.False(t, pr.CheckDisequal(p, term.IntConst(1), term.IntConst(1)))
}

func TestCheckZeroRecognizesIntLiteralZero(t *testing.T) {
	pr := New(term.NewTypeEnv())
	p := prop.Empty().AddPi(prop.Atom{Op: prop.Eq, Left: xvar(), Right: term.IntConst(0)})
	assert.True(t, pr.CheckZero(p, xvar()))
}

func TestCheckAllocatednessFindsRootInSigma(t *testing.T) {
	pr := New(term.NewTypeEnv())
	h := prop.Hpointsto{Lhs: xvar(), Se: prop.Eexp{Exp: term.IntConst(1)}, Texp: term.Sizeof{Typ: term.NewPrimitive(term.Int)}}
	p := prop.Empty().AddSigma(h)

	assert.True(t, pr.CheckAllocatedness(p, xvar()))
	assert.False(t, pr.CheckAllocatedness(p, yvar()))
}

func TestCheckTypeSizeLeqComparesPrimitives(t *testing.T) {
	pr := New(term.NewTypeEnv())
	assert.True(t, pr.CheckTypeSizeLeq(term.NewPrimitive(term.Bool), term.NewPrimitive(term.Int)))
	assert.False(t, pr.CheckTypeSizeLeq(term.NewPrimitive(term.Int), term.NewPrimitive(term.Bool)))
}

func TestCheckTypeSizeLeqResolvesStructLayout(t *testing.T) {
	env := term.NewTypeEnv()
	env.Define(&term.StructLayout{
		Name: "pair",
		Fields: []term.Field{
			{Name: "a", Type: term.NewPrimitive(term.Int)},
			{Name: "b", Type: term.NewPrimitive(term.Int)},
		},
	})
	pr := New(env)

	assert.True(t, pr.CheckTypeSizeLeq(term.NewPrimitive(term.Int), term.StructType{Name: "pair"}))
}

func TestCheckInconsistencyDetectsDirectContradiction(t *testing.T) {
	pr := New(term.NewTypeEnv())
	p := prop.Empty().AddPi(
		prop.Atom{Op: prop.Eq, Left: xvar(), Right: term.IntConst(1)},
		prop.Atom{Op: prop.Neq, Left: xvar(), Right: term.IntConst(1)},
	)
	assert.True(t, pr.CheckInconsistency(p))
}

func TestCheckInconsistencyDetectsZeroAllocated(t *testing.T) {
	pr := New(term.NewTypeEnv())
	h := prop.Hpointsto{Lhs: xvar(), Se: prop.Eexp{Exp: term.IntConst(1)}, Texp: term.Sizeof{Typ: term.NewPrimitive(term.Int)}}
	p := prop.Empty().AddSigma(h).AddPi(prop.Atom{Op: prop.Eq, Left: xvar(), Right: term.IntConst(0)})
	assert.True(t, pr.CheckInconsistency(p))
}

func TestCheckInconsistencyAcceptsConsistentState(t *testing.T) {
	pr := New(term.NewTypeEnv())
	p := prop.Empty().AddPi(prop.Atom{Op: prop.Eq, Left: xvar(), Right: term.IntConst(1)})
	assert.False(t, pr.CheckInconsistency(p))
}

func TestExpandHpredPointerFlattensSameTypeDoubleCast(t *testing.T) {
	pr := New(term.NewTypeEnv())
	inner := term.Cast{Typ: term.NewPrimitive(term.Int), Expr: xvar()}
	outer := term.Cast{Typ: term.NewPrimitive(term.Int), Expr: inner}
	h := prop.Hpointsto{Lhs: outer, Se: prop.Eexp{Exp: term.IntConst(1)}, Texp: term.Sizeof{Typ: term.NewPrimitive(term.Int)}}

	flattened := pr.ExpandHpredPointer(true, h).(prop.Hpointsto)
	assert.Equal(t, inner, flattened.Lhs, "one redundant same-type cast layer should be folded away")
}

func TestExpandHpredPointerKeepsCastWithoutRefactor(t *testing.T) {
	pr := New(term.NewTypeEnv())
	inner := term.Cast{Typ: term.NewPrimitive(term.Int), Expr: xvar()}
	outer := term.Cast{Typ: term.NewPrimitive(term.Int), Expr: inner}
	h := prop.Hpointsto{Lhs: outer, Se: prop.Eexp{Exp: term.IntConst(1)}, Texp: term.Sizeof{Typ: term.NewPrimitive(term.Int)}}

	same := pr.ExpandHpredPointer(false, h).(prop.Hpointsto)
	assert.Equal(t, outer, same.Lhs)
}
