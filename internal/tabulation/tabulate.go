// Package tabulation implements interprocedural call handling:
// starring a callee's spec into the caller's current Prop via
// bi-abductive implication, splitting the result into consistent/
// diverging pathsets, and post-processing the combined posts into the
// set of results the symbolic executor resumes from after a Call
// instruction.
package tabulation

import (
	"fmt"

	"github.com/segmentio/ksuid"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/prover"
	"github.com/biabductor/biabductor/internal/rearrange"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/term"
)

// CalleeEntry is what a caller needs from a callee's summary to tabulate
// a call against it: its formals (for building actual_pre bindings) and
// its current spec list.
type CalleeEntry struct {
	ProcName string
	Formals  []cfgmodel.Formal
	Specs    []*summary.Spec
	Language string // for the getter heuristic
}

// SpecLookup resolves a callee name to its current CalleeEntry. Driver
// and orchestrate implement this over the spec table; tests implement it
// over a plain map.
type SpecLookup interface {
	Lookup(proc string) (CalleeEntry, bool)
}

// Options configures tabulation behavior that varies by run (flags) or
// by phase.
type Options struct {
	Phase          rearrange.Phase
	TaintEnabled   bool
	SensitiveSinks map[string]bool // callee names taint must not reach
}

// Tabulator bundles the prover/rearranger/generator tabulation needs.
type Tabulator struct {
	Prover     *prover.Prover
	Rearranger *rearrange.Rearranger
	Gen        *term.Generator
	Opts       Options
}

// New returns a Tabulator.
func New(pr *prover.Prover, rr *rearrange.Rearranger, gen *term.Generator, opts Options) *Tabulator {
	return &Tabulator{Prover: pr, Rearranger: rr, Gen: gen, Opts: opts}
}

// CallResult is one outcome of tabulating a call: a resulting caller-side
// Prop/Path, whether it is a consistent (vs. diverging) state, and the
// pure assumption set ("missing") still owed if this result is to be
// presented as part of a disjunctive spec.
type CallResult struct {
	Prop        *prop.Prop
	Path        *summary.Path
	Consistent  bool
	MissingPi   []prop.Atom
	TaintFlags  []TaintFinding
}

// TaintFinding records one tainted-value-reaches-sensitive-sink
// observation.
type TaintFinding struct {
	Source string
	Sink   string
	Arg    term.Expr
}

// CallError is returned when tabulation cannot produce any usable result:
// ImplFail, a caller-side dereference error, or (in re-execution phase)
// every result rejected for carrying missing pure assumptions.
type CallError struct {
	Kind   string // "prover_checks", "dereference", "precondition_not_met"
	Detail string
}

func (e *CallError) Error() string { return fmt.Sprintf("tabulation: %s: %s", e.Kind, e.Detail) }

// ExecuteCall tabulates one Call instruction against every spec of the
// resolved callee, returning the union of results across specs.
func (t *Tabulator) ExecuteCall(callerProp *prop.Prop, callerPath *summary.Path, call term.Call, callerProc string, callee CalleeEntry) ([]CallResult, error) {
	if len(callee.Specs) == 0 {
		return nil, &CallError{Kind: "precondition_not_met", Detail: "callee " + callee.ProcName + " has no spec"}
	}

	var allResults []CallResult
	var derefErrs []rearrange.DerefResult
	for _, spec := range callee.Specs {
		results, derefErr, err := t.executeOne(callerProp, callerPath, call, callerProc, callee, spec)
		if err != nil {
			var callErr *CallError
			if ce, ok := err.(*CallError); ok {
				callErr = ce
			}
			if callErr != nil && callErr.Kind == "dereference" {
				continue // collected via derefErr below; try the next spec
			}
			return nil, err
		}
		if derefErr != nil {
			derefErrs = append(derefErrs, *derefErr)
			continue
		}
		allResults = append(allResults, results...)
	}

	return t.postProcess(allResults, derefErrs, call, callee)
}

// executeOne runs steps 1-7 of against a single callee spec.
func (t *Tabulator) executeOne(callerProp *prop.Prop, callerPath *summary.Path, call term.Call, callerProc string, callee CalleeEntry, spec *summary.Spec) ([]CallResult, *rearrange.DerefResult, error) {
	// Step 1: rename.
	suffix := "__" + ksuid.New().String()[:12]
	fresh := spec.RenameSuffix(t.Gen, suffix)

	// Step 2: build actual_pre by starring formal_i |-> Eexp(actual_i).
	actualPre := callerProp.Clone()
	for i, formal := range callee.Formals {
		if i >= len(call.Args) {
			break
		}
		argType := term.Type(term.NewPrimitive(term.Void))
		if i < len(call.ArgTs) {
			argType = call.ArgTs[i]
		}
		formalAddr := term.Lvar{Pvar: term.Pvar{Name: formal.Name, Kind: term.PvarCalleeSeeded, Proc: callee.ProcName + suffix}}
		actualPre = actualPre.AddSigma(prop.Hpointsto{
			Lhs:  formalAddr,
			Se:   prop.Eexp{Exp: call.Args[i], Inst: prop.Inst{Kind: prop.InstNone}},
			Texp: term.Sizeof{Typ: argType},
		})
	}

	// Step 3: implication.
	specPre := fresh.Pre.P
	impl := t.Prover.CheckImplicationForFootprint(actualPre, specPre)
	if impl.Outcome == prover.ImplFail {
		return nil, nil, &CallError{Kind: "prover_checks", Detail: fmt.Sprintf("%d deferred check(s) failed", len(impl.Checks))}
	}

	// Step 4: process splitting — sub = sub1 compose sub2.
	sub := term.Compose(impl.Sub1, impl.Sub2)

	// Step 5: dereference check of spec_pre under the substitution.
	for _, h := range specPre.Sigma {
		root := sub.Apply(h.Root())
		if d := t.Rearranger.CheckDereferenceError(actualPre, root, ""); d.Defect != rearrange.DerefOK {
			return nil, &d, nil
		}
	}

	// Step 6: combine each post.
	var results []CallResult
	for _, post := range fresh.Posts {
		combined := t.combine(actualPre, post.Prop, sub, impl, call, callee.ProcName, call.Loc)
		consistent := !t.Prover.CheckInconsistency(combined)
		path := callerPath.AddCall(post.Path, "returned from "+callee.ProcName)
		results = append(results, CallResult{Prop: combined, Path: path, Consistent: consistent, MissingPi: applyAtoms(impl.MissingPi, sub)})
	}
	return results, nil, nil
}

// combine implements step 6: binding the return value, starring frame
// and missing pieces, and re-attributing Aresource facts to the call
// site.
func (t *Tabulator) combine(actualPre, post *prop.Prop, sub *term.Sub, impl *prover.ImplResult, call term.Call, callee string, loc term.Loc) *prop.Prop {
	sigma := append([]prop.Hpred(nil), actualPre.Sigma...)
	sigma = append(sigma, applyHpreds(post.Sigma, sub)...)
	sigma = append(sigma, applyHpreds(impl.Frame, sub)...)
	sigma = append(sigma, applyHpreds(impl.FrameFld, sub)...)

	pi := append([]prop.Atom(nil), actualPre.Pi...)
	pi = append(pi, applyAtoms(post.Pi, sub)...)
	pi = append(pi, applyAtoms(impl.MissingPi, sub)...)

	sigmaFP := append([]prop.Hpred(nil), actualPre.SigmaFP...)
	sigmaFP = append(sigmaFP, applyHpreds(impl.MissingSigma, sub)...)
	sigmaFP = append(sigmaFP, applyHpreds(impl.MissingFld, sub)...)

	result := &prop.Prop{Sigma: sigma, Pi: pi, SigmaFP: sigmaFP, PiFP: actualPre.PiFP, Sub: actualPre.Sub}
	result = bindReturn(result, post, call, sub)
	result = reattributeResources(result, callee, loc)
	return result
}

// bindReturn replaces the callee's "return" pseudo-variable points-to
// cell with a binding of the caller's requested return identifiers.
func bindReturn(p *prop.Prop, post *prop.Prop, call term.Call, sub *term.Sub) *prop.Prop {
	if len(call.Rets) == 0 {
		return p
	}
	for _, h := range post.Sigma {
		hp, ok := h.(prop.Hpointsto)
		if !ok {
			continue
		}
		lv, ok := hp.Lhs.(term.Lvar)
		if !ok || lv.Pvar.Kind != term.PvarReturnSeed {
			continue
		}
		leaf, ok := hp.Se.(prop.Eexp)
		if !ok {
			continue
		}
		retExpr := sub.Apply(leaf.Exp)
		for _, rb := range call.Rets {
			p = p.AddPi(prop.Atom{Op: prop.Eq, Left: term.Var{Id: rb.Id}, Right: retExpr})
		}
	}
	return p
}

// reattributeResources rewrites any Aresource attribute atom carried over
// from the callee's post to blame the call site instead of the callee's
// own internal location.
func reattributeResources(p *prop.Prop, callee string, loc term.Loc) *prop.Prop {
	pi := make([]prop.Atom, len(p.Pi))
	for i, a := range p.Pi {
		expr, attr, ok := a.AsAttr()
		if !ok {
			pi[i] = a
			continue
		}
		if res, isRes := attr.(term.Aresource); isRes {
			res.Pname = callee
			res.At = loc
			pi[i] = prop.AttrAtom(expr, res)
			continue
		}
		pi[i] = a
	}
	return p.WithPi(pi)
}

func applyAtoms(atoms []prop.Atom, sub *term.Sub) []prop.Atom {
	out := make([]prop.Atom, len(atoms))
	for i, a := range atoms {
		out[i] = a.Apply(sub)
	}
	return out
}

func applyHpreds(hs []prop.Hpred, sub *term.Sub) []prop.Hpred {
	out := make([]prop.Hpred, len(hs))
	for i, h := range hs {
		out[i] = prop.ApplyHpred(h, sub)
	}
	return out
}
