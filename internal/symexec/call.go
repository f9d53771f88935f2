package symexec

import (
	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/tabulation"
	"github.com/biabductor/biabductor/internal/term"
)

// execCall implements Call transfer function: resolve the
// callee's current spec set and hand the call off to tabulation,
// turning each CallResult into a continuation and logging a
// PreconditionNotMet issue (NullDereference for a dereference failure)
// when tabulation cannot produce any usable result at all.
func (e *Executor) execCall(pp PathProp, in term.Call) (Outcome, error) {
	fn, ok := in.Fexp.(term.Const)
	if !ok || fn.Kind != term.ConstCfun {
		return e.execSkippedCall(pp, in)
	}

	if in.Flags.Virtual {
		// Dynamic dispatch: defers candidate-set resolution to
		// the front-end, which is expected to have already lowered a
		// virtual call into a concrete Fexp per receiver type by the time
		// it reaches the executor; nothing left to resolve here.
	}

	callee, found := e.SpecLookup.Lookup(fn.FuncName)
	if !found || len(callee.Specs) == 0 {
		return e.execSkippedCall(pp, in)
	}

	results, err := e.Tabulator.ExecuteCall(pp.Prop, pp.Path, in, e.Proc, callee)
	if err != nil {
		ce, ok := err.(*tabulation.CallError)
		if !ok {
			return Outcome{}, err
		}
		kind := errlog.KindPreconditionNotMet
		if ce.Kind == "dereference" {
			kind = errlog.KindNullDereference
		}
		issue := errlog.New(kind, e.Proc, e.ProcStart, in.Loc.File, in.Loc.Line, in.Loc.Column).
			WithQualifier("call to %s: %s", fn.FuncName, ce.Detail).
			Build()
		e.Log.Report(issue)
		return Outcome{Exceptional: []PathProp{pp}}, nil
	}

	var out Outcome
	for _, r := range results {
		next := PathProp{Prop: r.Prop, Path: r.Path}
		for _, t := range r.TaintFlags {
			issue := errlog.New(errlog.KindTaintedValueReachingSensitiveFunction, e.Proc, e.ProcStart, in.Loc.File, in.Loc.Line, in.Loc.Column).
				WithQualifier("tainted value from %s reaches sensitive sink %s", t.Source, t.Sink).
				Build()
			e.Log.Report(issue)
		}
		if r.Consistent {
			out.Normal = append(out.Normal, next)
		} else {
			out.Exceptional = append(out.Exceptional, next)
		}
	}
	return out, nil
}

// execSkippedCall models a call to a procedure with no body and no spec
// (an external/library function the front-end never compiled): the
// executor cannot reason about its effect, so it assigns each return
// identifier a fresh value tagged Aundef and continues.
func (e *Executor) execSkippedCall(pp PathProp, in term.Call) (Outcome, error) {
	next := pp.Prop
	calleeName := "<unknown>"
	if fn, ok := in.Fexp.(term.Const); ok && fn.Kind == term.ConstCfun {
		calleeName = fn.FuncName
	}
	for _, rb := range in.Rets {
		v := term.Var{Id: rb.Id}
		next = next.AddAttr(v, term.Aundef{Fn: calleeName})
	}
	return Outcome{Normal: []PathProp{{Prop: next, Path: pp.Path}}}, nil
}
