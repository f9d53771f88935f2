package rearrange

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/prover"
	"github.com/biabductor/biabductor/internal/term"
)

func rootVar() term.Expr { return term.Var{Id: term.Ident{Kind: term.Normal, Name: "p"}} }

func newRearranger() *Rearranger {
	return New(prover.New(term.NewTypeEnv()), term.NewTypeEnv(), term.NewGenerator())
}

func TestCheckDereferenceErrorReportsNull(t *testing.T) {
	r := newRearranger()
	p := prop.Empty().AddPi(prop.Atom{Op: prop.Eq, Left: rootVar(), Right: term.IntConst(0)})

	res := r.CheckDereferenceError(p, rootVar(), "")
	assert.Equal(t, DerefNull, res.Defect)
}

func TestCheckDereferenceErrorReportsDangling(t *testing.T) {
	r := newRearranger()
	p := prop.Empty().AddAttr(rootVar(), term.Adangling{})

	res := r.CheckDereferenceError(p, rootVar(), "")
	assert.Equal(t, DerefDangling, res.Defect)
}

func TestCheckDereferenceErrorReportsSkipOnUndef(t *testing.T) {
	r := newRearranger()
	p := prop.Empty().AddAttr(rootVar(), term.Aundef{Fn: "malloc"})

	res := r.CheckDereferenceError(p, rootVar(), "")
	assert.Equal(t, DerefSkip, res.Defect)
	assert.Equal(t, "malloc", res.Detail)
}

func TestCheckDereferenceErrorReportsUseAfterFree(t *testing.T) {
	r := newRearranger()
	p := prop.Empty().AddAttr(rootVar(), term.Aresource{Action: term.Rrelease, Pname: "free_it"})

	res := r.CheckDereferenceError(p, rootVar(), "")
	assert.Equal(t, DerefUseAfterFree, res.Defect)
	assert.Equal(t, "free_it", res.Detail)
}

func TestCheckDereferenceErrorReportsSentinelMinusOneAsDangling(t *testing.T) {
	r := newRearranger()
	p := prop.Empty().AddPi(prop.Atom{Op: prop.Eq, Left: rootVar(), Right: term.IntConst(-1)})

	res := r.CheckDereferenceError(p, rootVar(), "")
	assert.Equal(t, DerefDangling, res.Defect)
}

func TestCheckDereferenceErrorAcceptsOrdinaryPointer(t *testing.T) {
	r := newRearranger()
	h := prop.Hpointsto{Lhs: rootVar(), Se: prop.Eexp{Exp: term.IntConst(1)}, Texp: term.Sizeof{Typ: term.NewPrimitive(term.Int)}}
	p := prop.Empty().AddSigma(h)

	res := r.CheckDereferenceError(p, rootVar(), "")
	assert.Equal(t, DerefOK, res.Defect)
}
