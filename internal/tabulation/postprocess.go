package tabulation

import (
	"github.com/biabductor/biabductor/internal/rearrange"
	"github.com/biabductor/biabductor/internal/term"
)

// postProcess implements exe_call_postprocess: pick
// the most informative error when nothing survived, decide what to do
// with outstanding missing pure assumptions, tag likely getters, and run
// the taint check.
func (t *Tabulator) postProcess(results []CallResult, derefErrs []rearrange.DerefResult, call term.Call, callee CalleeEntry) ([]CallResult, error) {
	consistent := filterConsistent(results)

	if len(consistent) == 0 {
		if len(derefErrs) > 0 {
			return nil, &CallError{Kind: "dereference", Detail: mostInformative(derefErrs).Detail}
		}
		if len(results) == 0 {
			return nil, &CallError{Kind: "precondition_not_met", Detail: "no consistent result for " + callee.ProcName}
		}
		// Every result is diverging/inconsistent: keep them so the exit
		// node can still report leaks along the diverging path.
		return results, nil
	}

	anyMissing := false
	for _, r := range consistent {
		if len(r.MissingPi) > 0 {
			anyMissing = true
			break
		}
	}
	if anyMissing {
		if t.Opts.Phase == rearrange.PhaseReExecution {
			kept := make([]CallResult, 0, len(results))
			for _, r := range results {
				if len(r.MissingPi) == 0 {
					kept = append(kept, r)
				}
			}
			if len(kept) == 0 {
				return nil, &CallError{Kind: "precondition_not_met", Detail: "missing assumptions not discharged in re-execution"}
			}
			results = kept
		}
		// In footprint phase, results with missing pi survive as-is, with
		// the missing atoms already conjoined into their Pi by combine; no
		// minimum pure cover is selected over them.
	}

	if t.isLikelyGetter(callee) {
		results = tagGetterResults(results, call, callee.ProcName)
	}

	if t.Opts.TaintEnabled {
		results = t.checkTaint(results, call, callee.ProcName)
	}

	return results, nil
}

func filterConsistent(results []CallResult) []CallResult {
	out := make([]CallResult, 0, len(results))
	for _, r := range results {
		if r.Consistent {
			out = append(out, r)
		}
	}
	return out
}

// mostInformative prefers a null-dereference explanation over any other
// kind, per step 8 ("prefer Deref_null").
func mostInformative(errs []rearrange.DerefResult) rearrange.DerefResult {
	for _, e := range errs {
		if e.Defect == rearrange.DerefNull {
			return e
		}
	}
	return errs[0]
}

// isLikelyGetter implements the getter heuristic of step 8: a Java
// callee with at most one formal (an implicit receiver) counts as a
// likely getter. There is no configured list of getters.
func (t *Tabulator) isLikelyGetter(callee CalleeEntry) bool {
	if callee.Language != "java" {
		return false
	}
	return len(callee.Formals) <= 1 // allow an implicit receiver-only formal
}

// tagGetterResults attaches Aretval(callee) to each result's return
// identifier so later calls can reason about idempotence.
func tagGetterResults(results []CallResult, call term.Call, callee string) []CallResult {
	if len(call.Rets) == 0 {
		return results
	}
	out := make([]CallResult, len(results))
	for i, r := range results {
		p := r.Prop
		for _, rb := range call.Rets {
			p = p.AddAttr(term.Var{Id: rb.Id}, term.Aretval{Callee: callee})
		}
		r.Prop = p
		out[i] = r
	}
	return out
}

// checkTaint implements step 9: if the callee is a configured
// sensitive sink, report any call argument carrying an Ataint attribute
// in the augmented actual pre.
func (t *Tabulator) checkTaint(results []CallResult, call term.Call, callee string) []CallResult {
	if !t.Opts.SensitiveSinks[callee] {
		return results
	}
	out := make([]CallResult, len(results))
	for i, r := range results {
		for _, arg := range call.Args {
			if a, ok := r.Prop.GetAttr(arg, (term.Ataint{}).Key()); ok {
				if taint, isTaint := a.(term.Ataint); isTaint {
					r.TaintFlags = append(r.TaintFlags, TaintFinding{Source: taint.Source, Sink: callee, Arg: arg})
				}
			}
		}
		out[i] = r
	}
	return out
}
