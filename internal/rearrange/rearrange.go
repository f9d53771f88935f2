// Package rearrange materializes heap predicates on demand: given a
// location expression, it reshapes the current Prop so that some hpred's
// root exactly matches that location, splitting cases over array indices
// and unrolling list/doubly-linked segments as needed.
package rearrange

import (
	"fmt"

	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/prover"
	"github.com/biabductor/biabductor/internal/term"
)

// Phase distinguishes footprint synthesis from re-execution verification;
// only the footprint phase may fabricate new Hpointsto cells for an
// access with no matching hpred.
type Phase int

const (
	PhaseFootprint Phase = iota
	PhaseReExecution
)

// IterResult pairs an offset path with the prop iterator it produced:
// each result iterator is one of a (possibly empty) list of
// (offset_path, prop_iter) pairs; an empty list means the current path
// is infeasible.
type IterResult struct {
	OffsetPath []term.Offset
	Iter       *prop.Iter
}

// Rearranger bundles the prover and type environment rearrangement needs
// to decide bounds/type-size/subtype questions while materializing cells.
type Rearranger struct {
	Prover *prover.Prover
	Types  *term.TypeEnv
	Gen    *term.Generator
}

// New returns a Rearranger.
func New(pr *prover.Prover, types *term.TypeEnv, gen *term.Generator) *Rearranger {
	return &Rearranger{Prover: pr, Types: types, Gen: gen}
}

// Rearrange is the entry point described by : it locates (or, in
// footprint phase, fabricates) the hpred rooted at lexp and extends it
// along lexp's offset path, producing one iterator per feasible case.
func (r *Rearranger) Rearrange(p *prop.Prop, lexp term.Expr, t term.Type, phase Phase) ([]IterResult, error) {
	root := term.Root(lexp)
	offsets := term.Offsets(lexp)

	it := prop.Find(p, prop.IsRoot(root))
	if it == nil {
		if phase == PhaseReExecution {
			return nil, config.SymexecMemoryError(fmt.Sprintf("no points-to fact for %s", root))
		}
		fresh := r.mkPtstoExpFootprint(root, t)
		p = p.AddSigmaFP(fresh).AddSigma(fresh)
		it = prop.Find(p, prop.IsRoot(root))
	}

	return r.extend(it, offsets, t, phase)
}

// mkPtstoExpFootprint synthesizes `root |-> freshvar : sizeof(t)` as a
// new footprint assumption.
func (r *Rearranger) mkPtstoExpFootprint(root term.Expr, t term.Type) prop.Hpred {
	fresh := r.Gen.Fresh(term.Footprint, "val")
	return prop.Hpointsto{
		Lhs:  root,
		Se:   prop.Eexp{Exp: term.Var{Id: fresh}},
		Texp: term.Sizeof{Typ: t},
	}
}

// extend walks offsets one step at a time, dispatching on the kind of
// hpred currently focused, producing a (possibly branching) set of
// iterator results.
func (r *Rearranger) extend(it *prop.Iter, offsets []term.Offset, t term.Type, phase Phase) ([]IterResult, error) {
	switch h := it.Curr.(type) {
	case prop.Hpointsto:
		return r.extendValues(it, h, offsets, t, phase)
	case prop.Hlseg:
		return r.unfoldLseg(it, h, reconstructLexp(h.Root(), offsets), t, phase)
	case prop.Hdllseg:
		return r.unfoldDllseg(it, h, reconstructLexp(h.Root(), offsets), t, phase)
	default:
		return nil, config.NewFault(config.FaultBadFootprint, "unrecognized hpred kind")
	}
}

// reconstructLexp rebuilds the location expression a given root plus a
// remaining offset path denotes, the inverse of term.Root+term.Offsets.
func reconstructLexp(base term.Expr, offsets []term.Offset) term.Expr {
	e := base
	for _, o := range offsets {
		switch v := o.(type) {
		case term.OffFld:
			e = term.Lfield{Base: e, Field: v.Field, Typ: v.Typ}
		case term.OffIndex:
			e = term.Lindex{Base: e, Index: v.Index}
		}
	}
	return e
}
