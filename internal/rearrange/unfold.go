package rearrange

import (
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// LsegKind mirrors prop.LsegKind; a thin alias keeps this file's literals
// readable without a qualified name at every use site.
type LsegKind = prop.LsegKind

// unfoldLseg unfolds a singly-linked segment focused by it. A non-empty
// (NE) segment unfolds to exactly one child case (one cell plus a fresh
// tail segment); a possibly-empty (PE) segment additionally offers the
// base case where e_from = e_to and the segment contributes nothing.
//
// lexp/t are the original access this unfold step is in service of; after
// rewriting sigma, both cases recurse through Rearrange on the same
// access so the freshly unfolded (or freshly removed) structure is
// searched from scratch, exactly as a second rearrangement pass would.
func (r *Rearranger) unfoldLseg(it *prop.Iter, h prop.Hlseg, lexp term.Expr, t term.Type, phase Phase) ([]IterResult, error) {
	var results []IterResult

	freshNext := r.Gen.Fresh(term.Primed, "next")
	cellBody := instantiateHpara(h.Para, h.From, term.Var{Id: freshNext})
	tail := prop.Hlseg{Kind: h.Kind, Para: h.Para, From: term.Var{Id: freshNext}, To: h.To, Shared: h.Shared}

	unfoldedSigma := append(append([]prop.Hpred(nil), it.Before...), cellBody...)
	unfoldedSigma = append(unfoldedSigma, tail)
	unfoldedSigma = append(unfoldedSigma, it.After...)
	unfoldedProp := &prop.Prop{Sigma: unfoldedSigma, Pi: it.Pi, SigmaFP: it.SigmaFP, PiFP: it.PiFP, Sub: it.Sub}

	sub, err := r.Rearrange(unfoldedProp, lexp, t, phase)
	if err != nil {
		if phase == PhaseReExecution {
			return nil, err
		}
	} else {
		results = append(results, sub...)
	}

	if h.Kind == prop.LsegPE {
		emptyProp := it.RemoveCurrThenToProp()
		emptyProp = emptyProp.AddPi(prop.Atom{Op: prop.Eq, Left: h.From, Right: h.To})
		sub, err := r.Rearrange(emptyProp, lexp, t, phase)
		if err == nil {
			results = append(results, sub...)
		}
	}

	return results, nil
}

// unfoldDllseg unfolds a doubly-linked segment from its iF endpoint only:
// one cell at iF (forward link to a fresh next cell, backward link to oB)
// followed by a tail segment starting at that next cell, plus, for a
// possibly-empty segment, the base case where the segment contributes
// nothing. Unfolding from the oB, oF or iB endpoint is not done.
func (r *Rearranger) unfoldDllseg(it *prop.Iter, h prop.Hdllseg, lexp term.Expr, t term.Type, phase Phase) ([]IterResult, error) {
	var results []IterResult
	freshNext := r.Gen.Fresh(term.Primed, "dll_next")

	cellBody := instantiateHparaDll(h.Para, h.IF, term.Var{Id: freshNext}, h.OB)
	tail := prop.Hdllseg{Kind: h.Kind, Para: h.Para, IF: term.Var{Id: freshNext}, OB: h.IF, OF: h.OF, IB: h.IB, Shared: h.Shared}

	unfoldedSigma := append(append([]prop.Hpred(nil), it.Before...), cellBody...)
	unfoldedSigma = append(unfoldedSigma, tail)
	unfoldedSigma = append(unfoldedSigma, it.After...)
	unfoldedProp := &prop.Prop{Sigma: unfoldedSigma, Pi: it.Pi, SigmaFP: it.SigmaFP, PiFP: it.PiFP, Sub: it.Sub}

	sub, err := r.Rearrange(unfoldedProp, lexp, t, phase)
	if err != nil {
		if phase == PhaseReExecution {
			return nil, err
		}
	} else {
		results = append(results, sub...)
	}

	if h.Kind == prop.LsegPE {
		emptyProp := it.RemoveCurrThenToProp()
		emptyProp = emptyProp.AddPi(
			prop.Atom{Op: prop.Eq, Left: h.IF, Right: h.OF},
			prop.Atom{Op: prop.Eq, Left: h.OB, Right: h.IB},
		)
		sub, err := r.Rearrange(emptyProp, lexp, t, phase)
		if err == nil {
			results = append(results, sub...)
		}
	}

	return results, nil
}

// instantiateHpara substitutes root/next actuals for an Hpara template's
// formal parameters, producing the one-cell unfolding's hpreds.
func instantiateHpara(para prop.Hpara, rootActual, nextActual term.Expr) []prop.Hpred {
	sub := term.NewSub().Extend(para.Params.Root, rootActual).Extend(para.Params.Next, nextActual)
	out := make([]prop.Hpred, len(para.Body))
	for i, h := range para.Body {
		out[i] = prop.ApplyHpred(h, sub)
	}
	return out
}

func instantiateHparaDll(para prop.HparaDll, iterActual, fwdActual, bwdActual term.Expr) []prop.Hpred {
	sub := term.NewSub().Extend(para.Params.Iter, iterActual).Extend(para.Params.Fwd, fwdActual).Extend(para.Params.Bwd, bwdActual)
	out := make([]prop.Hpred, len(para.Body))
	for i, h := range para.Body {
		out[i] = prop.ApplyHpred(h, sub)
	}
	return out
}
