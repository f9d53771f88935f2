package prop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biabductor/biabductor/internal/term"
)

func lvar(name string) term.Expr {
	return term.Lvar{Pvar: term.Pvar{Name: name, Kind: term.PvarLocal, Proc: "foo"}}
}

func TestEmptyPropHasIdentitySub(t *testing.T) {
	p := Empty()
	assert.Empty(t, p.Sigma)
	assert.Empty(t, p.Pi)
	assert.NotNil(t, p.Sub)
}

func TestCloneIsIndependentOfOriginal(t *testing.T) {
	p := Empty().AddPi(Atom{Op: Eq, Left: term.IntConst(1), Right: term.IntConst(1)})
	clone := p.Clone()
	clone.Pi[0] = Atom{Op: Neq, Left: term.IntConst(2), Right: term.IntConst(2)}

	assert.Equal(t, Eq, p.Pi[0].Op, "mutating the clone's slice must not affect the original")
}

func TestAddSigmaAppendsWithoutMutatingOriginal(t *testing.T) {
	h1 := Hpointsto{Lhs: lvar("x"), Se: Eexp{Exp: term.IntConst(1)}, Texp: term.Sizeof{Typ: term.NewPrimitive(term.Int)}}
	p := Empty()
	p2 := p.AddSigma(h1)

	assert.Empty(t, p.Sigma)
	assert.Len(t, p2.Sigma, 1)
}

func TestAddAttrReplacesSameFamilyOnSameExpr(t *testing.T) {
	expr := lvar("x")
	p := Empty().AddAttr(expr, term.Aretval{Callee: "a"})
	p = p.AddAttr(expr, term.Aretval{Callee: "b"})

	attr, ok := p.GetAttr(expr, (term.Aretval{}).Key())
	require.True(t, ok)
	assert.Equal(t, term.Aretval{Callee: "b"}, attr)

	count := 0
	for _, atom := range p.Pi {
		if _, _, ok := atom.AsAttr(); ok {
			count++
		}
	}
	assert.Equal(t, 1, count, "only one attribute of a given family should survive per expression")
}

func TestGetAttrMissesUnattachedExpr(t *testing.T) {
	p := Empty()
	_, ok := p.GetAttr(lvar("x"), (term.Aretval{}).Key())
	assert.False(t, ok)
}

func TestRemoveAttrDropsOnlyMatchingFamily(t *testing.T) {
	expr := lvar("x")
	p := Empty().AddAttr(expr, term.Aretval{Callee: "a"}).AddAttr(expr, term.Ataint{Source: "s"})
	p = p.RemoveAttr(expr, (term.Aretval{}).Key())

	_, ok := p.GetAttr(expr, (term.Aretval{}).Key())
	assert.False(t, ok)
	_, ok = p.GetAttr(expr, (term.Ataint{}).Key())
	assert.True(t, ok)
}

func TestApplyComposesSubstitutionAndRewritesHeap(t *testing.T) {
	x := term.Ident{Kind: term.Normal, Name: "x"}
	h := Hpointsto{Lhs: term.Var{Id: x}, Se: Eexp{Exp: term.IntConst(0)}, Texp: term.Sizeof{Typ: term.NewPrimitive(term.Int)}}
	p := Empty().AddSigma(h)

	sub := term.NewSub().Extend(x, term.IntConst(42))
	p2 := p.Apply(sub)

	hp, ok := p2.Sigma[0].(Hpointsto)
	require.True(t, ok)
	assert.Equal(t, term.IntConst(42), hp.Lhs)
}

func TestFreeVarsFPCollectsFromFootprintOnly(t *testing.T) {
	fpID := term.Ident{Kind: term.Footprint, Name: "fp"}
	p := Empty()
	p.PiFP = append(p.PiFP, Atom{Op: Eq, Left: term.Var{Id: fpID}, Right: term.IntConst(0)})

	free := p.FreeVarsFP()
	require.Len(t, free, 1)
	assert.Equal(t, fpID, free[0])
}

func TestCanonicalKeyIsOrderIndependent(t *testing.T) {
	a := Atom{Op: Eq, Left: term.IntConst(1), Right: term.IntConst(1)}
	b := Atom{Op: Eq, Left: term.IntConst(2), Right: term.IntConst(2)}

	p1 := Empty().AddPi(a, b)
	p2 := Empty().AddPi(b, a)

	assert.Equal(t, p1.CanonicalKey(), p2.CanonicalKey())
}
