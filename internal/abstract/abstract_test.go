package abstract

import (
	"testing"

	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/prover"
	"github.com/biabductor/biabductor/internal/term"
	"github.com/stretchr/testify/assert"
)

func node(name string, next term.Expr) prop.Hpointsto {
	return prop.Hpointsto{
		Lhs: term.Var{Id: term.Ident{Kind: term.Normal, Name: name}},
		Se: prop.Estruct{Fields: []prop.FldVal{
			{Field: "next", Val: prop.Eexp{Exp: next}},
			{Field: "tag", Val: prop.Eexp{Exp: term.Const(term.IntConst(1))}},
		}},
		Texp: term.Sizeof{Typ: term.PrimitiveType{Kind: term.Int}},
	}
}

func TestFoldListSegments(t *testing.T) {
	types := term.NewTypeEnv()
	a := New(prover.New(types), 0)

	mid := term.Var{Id: term.Ident{Kind: term.Primed, Name: "mid"}}
	tail := term.Var{Id: term.Ident{Kind: term.Normal, Name: "tail"}}

	h1 := node("head", mid)
	h2 := prop.Hpointsto{
		Lhs: mid,
		Se: prop.Estruct{Fields: []prop.FldVal{
			{Field: "next", Val: prop.Eexp{Exp: tail}},
			{Field: "tag", Val: prop.Eexp{Exp: term.Const(term.IntConst(1))}},
		}},
		Texp: term.Sizeof{Typ: term.PrimitiveType{Kind: term.Int}},
	}

	p := prop.Empty().AddSigma(h1, h2)
	result, changed := a.foldListSegments(p, nil)
	assert.True(t, changed, "two compatible cells should fold")
	assert.Len(t, result.Sigma, 1)

	seg, ok := result.Sigma[0].(prop.Hlseg)
	assert.True(t, ok, "folded hpred should be an Hlseg")
	assert.Equal(t, prop.LsegNE, seg.Kind)
	assert.True(t, term.Equal(seg.From, h1.Lhs))
	assert.True(t, term.Equal(seg.To, tail))
}

func TestGarbageCollectDropsUnreachablePrimedCell(t *testing.T) {
	types := term.NewTypeEnv()
	a := New(prover.New(types), 0)

	stackVar := term.Var{Id: term.Ident{Kind: term.Normal, Name: "x"}}
	live := node("x", term.Const(term.IntConst(0)))
	live.Lhs = stackVar

	orphanRoot := term.Var{Id: term.Ident{Kind: term.Primed, Name: "orphan"}}
	orphan := node("orphan", term.Const(term.IntConst(0)))
	orphan.Lhs = orphanRoot

	p := prop.Empty().AddSigma(live, orphan)
	result, changed := a.garbageCollect(p, []term.Expr{stackVar})
	assert.True(t, changed)
	assert.Len(t, result.Sigma, 1)
	assert.True(t, term.Equal(result.Sigma[0].Root(), stackVar))
}

func TestGarbageCollectKeepsReachableChain(t *testing.T) {
	types := term.NewTypeEnv()
	a := New(prover.New(types), 0)

	stackVar := term.Var{Id: term.Ident{Kind: term.Normal, Name: "x"}}
	next := term.Var{Id: term.Ident{Kind: term.Primed, Name: "n"}}

	head := node("x", next)
	head.Lhs = stackVar
	tailCell := node("n", term.Const(term.IntConst(0)))
	tailCell.Lhs = next

	p := prop.Empty().AddSigma(head, tailCell)
	result, changed := a.garbageCollect(p, []term.Expr{stackVar})
	assert.False(t, changed, "both cells are reachable through the chain")
	assert.Len(t, result.Sigma, 2)
}

func TestDedupAttributesRemovesDuplicateAtom(t *testing.T) {
	types := term.NewTypeEnv()
	a := New(prover.New(types), 0)

	x := term.Var{Id: term.Ident{Kind: term.Normal, Name: "x"}}
	p := prop.Empty().AddAttr(x, term.Adangling{})
	p = p.WithPi(append(p.Pi, p.Pi[0]))

	result, changed := a.dedupAttributes(p, nil)
	assert.True(t, changed)
	assert.Len(t, result.Pi, 1)
}

func TestAbstractReachesFixpointAndWeakens(t *testing.T) {
	types := term.NewTypeEnv()
	a := New(prover.New(types), 0)

	stackVar := term.Var{Id: term.Ident{Kind: term.Normal, Name: "x"}}
	mid := term.Var{Id: term.Ident{Kind: term.Primed, Name: "mid"}}
	tail := term.Var{Id: term.Ident{Kind: term.Normal, Name: "tail"}}

	h1 := node("head", mid)
	h1.Lhs = stackVar
	h2 := prop.Hpointsto{
		Lhs: mid,
		Se: prop.Estruct{Fields: []prop.FldVal{
			{Field: "next", Val: prop.Eexp{Exp: tail}},
			{Field: "tag", Val: prop.Eexp{Exp: term.Const(term.IntConst(1))}},
		}},
		Texp: term.Sizeof{Typ: term.PrimitiveType{Kind: term.Int}},
	}

	p := prop.Empty().AddSigma(h1, h2)
	result := a.Abstract(p, []term.Expr{stackVar})
	assert.Len(t, result.Sigma, 1, "the whole chain should fold into one segment")
}

func TestPathsetJoinKeepsCommonFactsOnly(t *testing.T) {
	x := term.Var{Id: term.Ident{Kind: term.Normal, Name: "x"}}
	zero := term.Const(term.IntConst(0))
	one := term.Const(term.IntConst(1))

	p1 := prop.Empty().AddPi(prop.Atom{Op: prop.Neq, Left: x, Right: zero}, prop.Atom{Op: prop.Eq, Left: x, Right: one})
	p2 := prop.Empty().AddPi(prop.Atom{Op: prop.Neq, Left: x, Right: zero})

	joined := PathsetJoin([]*prop.Prop{p1, p2})
	assert.Len(t, joined, 1, "identical (empty) shapes should join into one prop")
	assert.Len(t, joined[0].Pi, 1, "only the fact common to both branches survives")
}

func TestPathsetCollapseDropsSubsumedProp(t *testing.T) {
	x := term.Var{Id: term.Ident{Kind: term.Normal, Name: "x"}}
	zero := term.Const(term.IntConst(0))

	weak := prop.Empty()
	strong := prop.Empty().AddPi(prop.Atom{Op: prop.Neq, Left: x, Right: zero})

	result := PathsetCollapse([]*prop.Prop{weak, strong})
	assert.Len(t, result, 1)
	assert.Empty(t, result[0].Pi, "the weaker disjunct with no extra facts should survive")
}
