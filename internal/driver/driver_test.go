package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/tabulation"
	"github.com/biabductor/biabductor/internal/term"
)

type noCallees struct{}

func (noCallees) Lookup(string) (tabulation.CalleeEntry, bool) { return tabulation.CalleeEntry{}, false }

// identityCFG builds `int identity(int x) { return x; }`: start -> load x,
// store into the return seed -> exit.
func identityCFG() (*cfgmodel.CFG, cfgmodel.ProcAttributes) {
	intType := term.PrimitiveType{Kind: term.Int}
	attrs := cfgmodel.ProcAttributes{
		ProcName:  "identity",
		Formals:   []cfgmodel.Formal{{Name: "x", Type: intType}},
		RetType:   intType,
		Loc:       term.Loc{File: "id.c", Line: 1},
		IsDefined: true,
	}
	xLvar := term.Lvar{Pvar: term.Pvar{Name: "x", Kind: term.PvarLocal, Proc: "identity"}}
	retVar := term.Lvar{Pvar: term.Pvar{Name: "return", Kind: term.PvarReturnSeed, Proc: "identity"}}
	r := term.Ident{Kind: term.Normal, Name: "r"}
	load := term.Load{Id: r, Lexp: xLvar, Typ: intType, Loc: term.Loc{File: "id.c", Line: 2}}
	store := term.Store{Lexp: retVar, Typ: intType, Rhs: term.Var{Id: r}, Loc: term.Loc{File: "id.c", Line: 2}}

	cfg := &cfgmodel.CFG{
		ProcName: "identity",
		StartID:  "start",
		ExitID:   "exit",
		Nodes: map[string]*cfgmodel.Node{
			"start": {ID: "start", Kind: cfgmodel.Start, Succs: []string{"s1"}},
			"s1":    {ID: "s1", Kind: cfgmodel.Stmt, Instrs: []term.Instr{load, store}, Succs: []string{"exit"}},
			"exit":  {ID: "exit", Kind: cfgmodel.Exit},
		},
	}
	return cfg, attrs
}

func newTestDriver(types *term.TypeEnv) *Driver {
	ctx := config.NewContext(config.LangC, config.DefaultFlags())
	log := errlog.NewLog(errlog.Censor{})
	return New(ctx, types, log, noCallees{})
}

func TestAnalyzeFootprintInfersIdentitySpec(t *testing.T) {
	types := term.NewTypeEnv()
	d := newTestDriver(types)
	cfg, attrs := identityCFG()

	sum, err := d.AnalyzeFootprint(cfg, attrs)
	assert.NoError(t, err)
	assert.Equal(t, Footprint.toSummary(), sum.Phase)
	assert.True(t, sum.HasSpecs())
	assert.Len(t, sum.Payload.Specs, 1)
	assert.NotEmpty(t, sum.Payload.Specs[0].Posts)
}

func TestAnalyzeReExecutionValidatesFootprintSpec(t *testing.T) {
	types := term.NewTypeEnv()
	d := newTestDriver(types)
	cfg, attrs := identityCFG()

	footprint, err := d.AnalyzeFootprint(cfg, attrs)
	assert.NoError(t, err)

	valid, err := d.AnalyzeReExecution(cfg, attrs, footprint)
	assert.NoError(t, err)
	assert.Equal(t, ReExecution.toSummary(), valid.Phase)
	assert.NotEmpty(t, valid.Payload.Specs, "the footprint-inferred spec should survive re-execution")
}

func TestAnalyzeFootprintBoundsRecursionDepth(t *testing.T) {
	types := term.NewTypeEnv()
	flags := config.DefaultFlags()
	flags.MaxRecursion = 0
	ctx := config.NewContext(config.LangC, flags)
	log := errlog.NewLog(errlog.Censor{})
	d := New(ctx, types, log, noCallees{})
	cfg, attrs := identityCFG()

	sum, err := d.AnalyzeFootprint(cfg, attrs)
	assert.Error(t, err)
	assert.True(t, sum.Stats.Timeout)
}

func TestCleanPostDropsLocalAndReportsEscape(t *testing.T) {
	types := term.NewTypeEnv()
	d := newTestDriver(types)
	attrs := cfgmodel.ProcAttributes{ProcName: "escaper", Loc: term.Loc{File: "e.c", Line: 1}}

	local := term.Lvar{Pvar: term.Pvar{Name: "buf", Kind: term.PvarLocal, Proc: "escaper"}}
	retVar := term.Lvar{Pvar: term.Pvar{Name: "return", Kind: term.PvarReturnSeed, Proc: "escaper"}}
	intType := term.PrimitiveType{Kind: term.Int}

	p := prop.Empty().
		AddSigma(prop.Hpointsto{Lhs: local, Se: prop.Eexp{Exp: term.Const(term.IntConst(0))}, Texp: term.Sizeof{Typ: intType}}).
		AddSigma(prop.Hpointsto{Lhs: retVar, Se: prop.Eexp{Exp: local}, Texp: term.Sizeof{Typ: term.PtrType{Elem: intType}}})

	cleaned := d.cleanPost(p, attrs)
	assert.Len(t, cleaned.Sigma, 1, "the local's own stack cell should be dropped")
	kept := d.Log.Kept()
	assert.Len(t, kept, 1)
	assert.Equal(t, errlog.KindStackVariableAddressEscape.String(), kept[0].BugType)
}
