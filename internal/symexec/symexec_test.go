package symexec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biabductor/biabductor/internal/abstract"
	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/prover"
	"github.com/biabductor/biabductor/internal/rearrange"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/tabulation"
	"github.com/biabductor/biabductor/internal/term"
)

func newExecutor(types *term.TypeEnv, phase rearrange.Phase) *Executor {
	pr := prover.New(types)
	gen := term.NewGenerator()
	rr := rearrange.New(pr, types, gen)
	ab := abstract.New(pr, 0)
	tab := tabulation.New(pr, rr, gen, tabulation.Options{Phase: phase})
	log := errlog.NewLog(errlog.Censor{})
	return New(rr, ab, pr, tab, gen, log, types, "testProc", 1, phase)
}

func xVar() term.Lvar {
	return term.Lvar{Pvar: term.Pvar{Name: "x", Kind: term.PvarLocal}}
}

func TestExecLoadBindsStoredValue(t *testing.T) {
	types := term.NewTypeEnv()
	e := newExecutor(types, rearrange.PhaseFootprint)

	lvar := xVar()
	p := prop.Empty().AddSigma(prop.Hpointsto{
		Lhs:  lvar,
		Se:   prop.Eexp{Exp: term.Const(term.IntConst(42))},
		Texp: term.Sizeof{Typ: term.PrimitiveType{Kind: term.Int}},
	})

	dest := term.Ident{Kind: term.Normal, Name: "r"}
	instr := term.Load{Id: dest, Lexp: lvar, Typ: term.PrimitiveType{Kind: term.Int}, Loc: term.Loc{File: "a.c", Line: 1}}

	out, err := e.Transfer(PathProp{Prop: p, Path: summary.NewPath()}, instr, "n1")
	assert.NoError(t, err)
	assert.Len(t, out.Normal, 1)
	assert.Empty(t, out.Exceptional)

	found := false
	for _, atom := range out.Normal[0].Prop.Pi {
		if atom.Op == prop.Eq && term.Equal(atom.Left, term.Var{Id: dest}) && term.Equal(atom.Right, term.Const(term.IntConst(42))) {
			found = true
		}
	}
	assert.True(t, found, "load should bind %s = 42 in pi", dest)
}

func TestExecLoadOnNullPointerReportsIssue(t *testing.T) {
	types := term.NewTypeEnv()
	e := newExecutor(types, rearrange.PhaseFootprint)

	lvar := xVar()
	p := prop.Empty().AddPi(prop.Atom{Op: prop.Eq, Left: lvar, Right: term.Const(term.IntConst(0))})

	dest := term.Ident{Kind: term.Normal, Name: "r"}
	loc := term.Loc{File: "a.c", Line: 7}
	instr := term.Load{Id: dest, Lexp: lvar, Typ: term.PrimitiveType{Kind: term.Int}, Loc: loc}

	out, err := e.Transfer(PathProp{Prop: p, Path: summary.NewPath()}, instr, "n1")
	assert.NoError(t, err)
	assert.Empty(t, out.Normal)
	assert.Len(t, out.Exceptional, 1)

	kept := e.Log.Kept()
	assert.Len(t, kept, 1)
	assert.Equal(t, errlog.KindNullDereference.String(), kept[0].BugType)
}

func TestExecStoreUpdatesLeaf(t *testing.T) {
	types := term.NewTypeEnv()
	e := newExecutor(types, rearrange.PhaseFootprint)

	lvar := xVar()
	p := prop.Empty().AddSigma(prop.Hpointsto{
		Lhs:  lvar,
		Se:   prop.Eexp{Exp: term.Const(term.IntConst(1))},
		Texp: term.Sizeof{Typ: term.PrimitiveType{Kind: term.Int}},
	})

	rhs := term.Const(term.IntConst(99))
	instr := term.Store{Lexp: lvar, Typ: term.PrimitiveType{Kind: term.Int}, Rhs: rhs, Loc: term.Loc{File: "a.c", Line: 2}}

	out, err := e.Transfer(PathProp{Prop: p, Path: summary.NewPath()}, instr, "n2")
	assert.NoError(t, err)
	assert.Len(t, out.Normal, 1)

	h, ok := out.Normal[0].Prop.Sigma[0].(prop.Hpointsto)
	assert.True(t, ok)
	leaf, ok := h.Se.(prop.Eexp)
	assert.True(t, ok)
	assert.True(t, term.Equal(leaf.Exp, rhs))
}

func TestExecPruneDropsInconsistentBranch(t *testing.T) {
	types := term.NewTypeEnv()
	e := newExecutor(types, rearrange.PhaseFootprint)

	x := term.Var{Id: term.Ident{Kind: term.Normal, Name: "x"}}
	one := term.Const(term.IntConst(1))
	p := prop.Empty().AddPi(prop.Atom{Op: prop.Neq, Left: x, Right: one})

	instr := term.Prune{Cond: x, TrueBranch: true, Loc: term.Loc{File: "a.c", Line: 3}}

	out, err := e.Transfer(PathProp{Prop: p, Path: summary.NewPath()}, instr, "n3")
	assert.NoError(t, err)
	assert.Empty(t, out.Normal)
	assert.Empty(t, out.Exceptional)
}

func TestExecNullifyDropsStackCell(t *testing.T) {
	types := term.NewTypeEnv()
	e := newExecutor(types, rearrange.PhaseFootprint)

	lvar := xVar()
	p := prop.Empty().AddSigma(prop.Hpointsto{
		Lhs:  lvar,
		Se:   prop.Eexp{Exp: term.Const(term.IntConst(0))},
		Texp: term.Sizeof{Typ: term.PrimitiveType{Kind: term.Int}},
	})

	instr := term.Nullify{Pvar: lvar.Pvar, Loc: term.Loc{File: "a.c", Line: 4}}
	out, err := e.Transfer(PathProp{Prop: p, Path: summary.NewPath()}, instr, "n4")
	assert.NoError(t, err)
	assert.Len(t, out.Normal, 1)
	assert.Empty(t, out.Normal[0].Prop.Sigma)
}

type mapLookup map[string]tabulation.CalleeEntry

func (m mapLookup) Lookup(proc string) (tabulation.CalleeEntry, bool) {
	e, ok := m[proc]
	return e, ok
}

func TestExecCallOnUnmodeledCalleeHavocsReturn(t *testing.T) {
	types := term.NewTypeEnv()
	e := newExecutor(types, rearrange.PhaseFootprint)
	e.SpecLookup = mapLookup{}

	ret := term.Ident{Kind: term.Normal, Name: "r"}
	instr := term.Call{
		Rets: []term.RetBinding{{Id: ret}},
		Fexp: term.CfunConst("external_fn"),
		Loc:  term.Loc{File: "a.c", Line: 5},
	}

	out, err := e.Transfer(PathProp{Prop: prop.Empty(), Path: summary.NewPath()}, instr, "n5")
	assert.NoError(t, err)
	assert.Len(t, out.Normal, 1)

	attr, ok := out.Normal[0].Prop.GetAttr(term.Var{Id: ret}, (term.Aundef{}).Key())
	assert.True(t, ok)
	assert.Equal(t, "external_fn", attr.(term.Aundef).Fn)
}
