// Package symexec implements the per-instruction transfer functions of
// : Load, Store, Prune, Nullify, Abstract, Call and Goto_node.
// Each transfer takes one (Prop, Path) pair and returns the pathset it
// branches into, reporting faults through errlog as it goes rather than
// aborting the whole node.
package symexec

import (
	"github.com/biabductor/biabductor/internal/abstract"
	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/prover"
	"github.com/biabductor/biabductor/internal/rearrange"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/tabulation"
	"github.com/biabductor/biabductor/internal/term"
)

// PathProp pairs a symbolic state with the provenance path that reached
// it, the unit the worklist's todo/visited sets carry.
type PathProp struct {
	Prop *prop.Prop
	Path *summary.Path
}

// Outcome is the result of transferring one instruction over one
// PathProp: the pathset it produced, split into normal and exceptional
// continuations.
type Outcome struct {
	Normal      []PathProp
	Exceptional []PathProp
}

// Executor bundles every collaborator a transfer function needs.
type Executor struct {
	Rearranger *rearrange.Rearranger
	Abstractor *abstract.Abstractor
	Prover     *prover.Prover
	Tabulator  *tabulation.Tabulator
	Gen        *term.Generator
	Log        *errlog.Log
	Types      *term.TypeEnv
	Phase      rearrange.Phase
	Proc       string
	ProcStart  int
	SpecLookup tabulation.SpecLookup
	Roots      func(*prop.Prop) []term.Expr // stack/global roots, for Abstract's leak GC
}

// New returns an Executor.
func New(rr *rearrange.Rearranger, ab *abstract.Abstractor, pr *prover.Prover, tab *tabulation.Tabulator, gen *term.Generator, log *errlog.Log, types *term.TypeEnv, proc string, procStart int, phase rearrange.Phase) *Executor {
	return &Executor{
		Rearranger: rr, Abstractor: ab, Prover: pr, Tabulator: tab, Gen: gen, Log: log, Types: types,
		Proc: proc, ProcStart: procStart, Phase: phase,
	}
}

// Transfer dispatches one instruction against one PathProp, the per-
// instruction half of step 3.
func (e *Executor) Transfer(pp PathProp, instr term.Instr, nodeID string) (Outcome, error) {
	pp.Path = pp.Path.Extend(nodeID, instr.At(), false)
	switch in := instr.(type) {
	case term.Load:
		return e.execLoad(pp, in)
	case term.Store:
		return e.execStore(pp, in)
	case term.Prune:
		return e.execPrune(pp, in)
	case term.Nullify:
		return e.execNullify(pp, in)
	case term.Abstract:
		return e.execAbstract(pp, in)
	case term.Call:
		return e.execCall(pp, in)
	case term.GotoNode:
		return Outcome{Normal: []PathProp{pp}}, nil
	default:
		return Outcome{}, config.NewFault(config.FaultInternal, "unrecognized instruction")
	}
}

// nullableField reports the @Nullable-annotated field name a location
// expression's leaf projection names, if any.
func (e *Executor) nullableField(lexp term.Expr) string {
	lf, ok := lexp.(term.Lfield)
	if !ok {
		return ""
	}
	st, ok := lf.Typ.(term.StructType)
	if !ok {
		return ""
	}
	if f, ok := e.Types.Field(st.Name, lf.Field); ok && f.HasAnnotation("Nullable") {
		return lf.Field
	}
	return ""
}

// reportDeref logs a dereference defect against the taxonomy of // and returns the Kind it maps to, for callers that also want to
// branch on it.
func (e *Executor) reportDeref(d rearrange.DerefResult, loc term.Loc) errlog.Kind {
	kind, sev := derefKind(d)
	issue := errlog.New(kind, e.Proc, e.ProcStart, loc.File, loc.Line, loc.Column).
		WithQualifier("dereference of %s pointer (%s)", derefName(d.Defect), d.Detail).
		WithSeverity(sev).
		Build()
	e.Log.Report(issue)
	return kind
}

func derefKind(d rearrange.DerefResult) (errlog.Kind, errlog.Severity) {
	switch d.Defect {
	case rearrange.DerefNull:
		return errlog.KindNullDereference, errlog.SeverityError
	case rearrange.DerefNullNullable:
		return errlog.KindFieldNotNullChecked, errlog.SeverityWarning
	case rearrange.DerefDangling:
		return errlog.KindDanglingPointerDereference, errlog.SeverityError
	case rearrange.DerefSkip:
		return errlog.KindSkipPointerDereference, errlog.SeverityWarning
	case rearrange.DerefUseAfterFree:
		return errlog.KindUseAfterFree, errlog.SeverityError
	default:
		return errlog.KindAssertionFailure, errlog.SeverityAdvice
	}
}

func derefName(d rearrange.DerefResult) string {
	switch d.Defect {
	case rearrange.DerefNull, rearrange.DerefNullNullable:
		return "null"
	case rearrange.DerefDangling:
		return "dangling"
	case rearrange.DerefSkip:
		return "skipped"
	case rearrange.DerefUseAfterFree:
		return "freed"
	default:
		return "unknown"
	}
}

// procAttrsToCalleeEntry adapts a front-end attribute-table entry plus
// specs into the shape tabulation.ExecuteCall needs.
func procAttrsToCalleeEntry(attrs cfgmodel.ProcAttributes, specs []*summary.Spec) tabulation.CalleeEntry {
	return tabulation.CalleeEntry{
		ProcName: attrs.ProcName,
		Formals:  attrs.Formals,
		Specs:    specs,
		Language: attrs.Language.String(),
	}
}
