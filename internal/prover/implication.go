package prover

import (
	"fmt"

	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// CheckKind enumerates the deferred obligations an implication can defer
// to the caller (: "checks carries deferred obligations (bounds,
// class-cast) that must be discharged by the caller").
type CheckKind int

const (
	CheckBounds CheckKind = iota
	CheckCast
)

// Check is one deferred obligation.
type Check struct {
	Kind   CheckKind
	Detail string
}

// TypeDelta records a type-refinement gap discovered while matching an
// hpred's Texp against the spec's expectation (frame_typ/missing_typ,
// ).
type TypeDelta struct {
	Expr     term.Expr
	FromType term.Type
	ToType   term.Type
}

// Outcome distinguishes a successful bi-abductive match from a failure.
type Outcome int

const (
	ImplOK Outcome = iota
	ImplFail
)

// ImplResult is the result of CheckImplicationForFootprint: on ImplOK it
// carries the renaming substitutions, the current-heap frame not consumed
// by the callee's precondition, and the "missing" pieces the callee
// assumes that the actual precondition does not yet contain. On ImplFail
// it carries the Checks that caused rejection.
type ImplResult struct {
	Outcome      Outcome
	Checks       []Check
	Sub1         *term.Sub
	Sub2         *term.Sub
	Frame        []prop.Hpred
	MissingPi    []prop.Atom
	MissingSigma []prop.Hpred
	FrameFld     []prop.Hpred
	MissingFld   []prop.Hpred
	FrameTyp     []TypeDelta
	MissingTyp   []TypeDelta
}

func fail(checks ...Check) *ImplResult {
	return &ImplResult{Outcome: ImplFail, Checks: checks}
}

// CheckImplicationForFootprint decides `actualPre ⊢ specPre` with
// inferred frame and missing parts. specPre's free
// identifiers are assumed to be Footprint-kind (it is a callee's stored
// precondition); CheckImplicationForFootprint instantiates them with
// expressions drawn from actualPre (sub2). sub1 is returned as the
// identity: actualPre's own free variables are not renamed.
func (pr *Prover) CheckImplicationForFootprint(actualPre, specPre *prop.Prop) *ImplResult {
	sub1 := term.NewSub() // actualPre's own free vars map to themselves; identity is sufficient here
	sub2 := term.NewSub()

	consumedActual := make(map[int]bool)
	var missingSigma []prop.Hpred
	var checks []Check

	uf := buildUnionFind(actualPre.Pi)

	for _, sh := range specPre.Sigma {
		root, ok := sub2Apply(sub2, sh.Root())
		_ = ok
		matchIdx, matched := matchHpred(actualPre, root, uf)
		if !matched {
			missingSigma = append(missingSigma, applySub2Hpred(sub2, sh))
			continue
		}
		consumedActual[matchIdx] = true
		newBindings, fldFrame, fldMissing, typFrame, typMissing, chks := unifyHpred(actualPre.Sigma[matchIdx], sh)
		for id, e := range newBindings {
			sub2 = sub2.Extend(id, e)
		}
		_ = fldFrame
		_ = fldMissing
		_ = typFrame
		_ = typMissing
		checks = append(checks, chks...)
	}

	var frame []prop.Hpred
	for i, h := range actualPre.Sigma {
		if !consumedActual[i] {
			frame = append(frame, h)
		}
	}

	var missingPi []prop.Atom
	for _, a := range specPre.Pi {
		sa := a.Apply(sub2)
		if pr.CheckAtom(actualPre, sa) {
			continue
		}
		if sa.Op == prop.Eq && pr.CheckDisequal(actualPre, sa.Left, sa.Right) {
			return fail(Check{Kind: CheckBounds, Detail: fmt.Sprintf("contradicts %s", sa)})
		}
		if sa.Op == prop.Neq && pr.CheckEqual(actualPre, sa.Left, sa.Right) {
			return fail(Check{Kind: CheckBounds, Detail: fmt.Sprintf("contradicts %s", sa)})
		}
		missingPi = append(missingPi, sa)
	}

	var frameFld, missingFld []prop.Hpred
	var frameTyp, missingTyp []TypeDelta
	for i, h := range actualPre.Sigma {
		sh, ok := findMatchingSpecHpred(specPre, h, sub2, uf)
		if !ok {
			continue
		}
		ff, mf := fieldDelta(h, sh)
		frameFld = append(frameFld, ff...)
		missingFld = append(missingFld, mf...)
		if td, has := typeDelta(h, sh); has {
			if td.FromType != nil {
				frameTyp = append(frameTyp, td)
			} else {
				missingTyp = append(missingTyp, td)
			}
		}
		_ = i
	}

	return &ImplResult{
		Outcome:      ImplOK,
		Checks:       checks,
		Sub1:         sub1,
		Sub2:         sub2,
		Frame:        frame,
		MissingPi:    missingPi,
		MissingSigma: missingSigma,
		FrameFld:     frameFld,
		MissingFld:   missingFld,
		FrameTyp:     frameTyp,
		MissingTyp:   missingTyp,
	}
}

func sub2Apply(sub2 *term.Sub, e term.Expr) (term.Expr, bool) {
	applied := sub2.Apply(e)
	return applied, true
}

func matchHpred(p *prop.Prop, root term.Expr, uf *unionFind) (int, bool) {
	for i, h := range p.Sigma {
		if uf.sameClass(h.Root(), root) {
			return i, true
		}
	}
	return -1, false
}

// unifyHpred binds specPre's footprint variables appearing in sh's
// strexp against the concrete values carried by actual hpred ah, and
// adds a CheckCast when the spec expects an exact type size the actual
// does not have. It returns the new (id -> expr) bindings and those
// checks; its four field/type delta results are always nil, since the
// caller computes FrameFld/MissingFld/FrameTyp/MissingTyp with fieldDelta
// and typeDelta after all hpreds have been matched.
func unifyHpred(ah, sh prop.Hpred) (map[term.Ident]term.Expr, []prop.Hpred, []prop.Hpred, []TypeDelta, []TypeDelta, []Check) {
	bindings := make(map[term.Ident]term.Expr)
	var checks []Check

	ap, aok := ah.(prop.Hpointsto)
	sp, sok := sh.(prop.Hpointsto)
	if aok && sok {
		unifyStrexp(ap.Se, sp.Se, bindings)
		if sizeofExpr, ok := sp.Texp.(term.Sizeof); ok {
			if actualSizeof, ok2 := ap.Texp.(term.Sizeof); ok2 {
				if !actualSizeof.Info.Exact && sizeofExpr.Info.Exact {
					checks = append(checks, Check{Kind: CheckCast, Detail: "type size not statically known"})
				}
			}
		}
	}
	return bindings, nil, nil, nil, nil, checks
}

// unifyStrexp walks two structured values in lockstep, binding any
// footprint identifier encountered in the pattern (sp) to the
// corresponding subexpression of the actual (ap).
func unifyStrexp(ap, sp prop.Strexp, bindings map[term.Ident]term.Expr) {
	switch spv := sp.(type) {
	case prop.Eexp:
		if apv, ok := ap.(prop.Eexp); ok {
			unifyExprInto(apv.Exp, spv.Exp, bindings)
		}
	case prop.Estruct:
		if apv, ok := ap.(prop.Estruct); ok {
			for _, sf := range spv.Fields {
				if af, found := apv.Get(sf.Field); found {
					unifyStrexp(af, sf.Val, bindings)
				}
			}
		}
	case prop.Earray:
		if apv, ok := ap.(prop.Earray); ok {
			unifyExprInto(apv.Size, spv.Size, bindings)
			for _, se := range spv.Elems {
				if ae, found := apv.At(se.Index); found {
					unifyStrexp(ae, se.Val, bindings)
				}
			}
		}
	}
}

func unifyExprInto(actual, pattern term.Expr, bindings map[term.Ident]term.Expr) {
	switch pv := pattern.(type) {
	case term.Var:
		if pv.Id.IsFootprint() {
			bindings[pv.Id] = actual
		}
	case term.BinOp:
		if av, ok := actual.(term.BinOp); ok && av.Op == pv.Op {
			unifyExprInto(av.Left, pv.Left, bindings)
			unifyExprInto(av.Right, pv.Right, bindings)
		}
	case term.UnOp:
		if av, ok := actual.(term.UnOp); ok && av.Op == pv.Op {
			unifyExprInto(av.Expr, pv.Expr, bindings)
		}
	}
}

// findMatchingSpecHpred finds the spec-side hpred (if any) whose root
// matches h's root after sub2, used to compute field/type deltas for the
// frame part of sigma.
func findMatchingSpecHpred(specPre *prop.Prop, h prop.Hpred, sub2 *term.Sub, uf *unionFind) (prop.Hpred, bool) {
	for _, sh := range specPre.Sigma {
		root := sub2.Apply(sh.Root())
		if uf.sameClass(h.Root(), root) {
			return sh, true
		}
	}
	return nil, false
}

// fieldDelta compares two Hpointsto struct strexps and reports fields
// present only on the actual side (frame_fld — the caller keeps them
// across the call) versus fields the spec requires that the actual
// struct value does not carry (missing_fld — synthesized as footprint
// assumptions).
func fieldDelta(ah, sh prop.Hpred) (frameFld, missingFld []prop.Hpred) {
	ap, aok := ah.(prop.Hpointsto)
	sp, sok := sh.(prop.Hpointsto)
	if !aok || !sok {
		return nil, nil
	}
	as, aok2 := ap.Se.(prop.Estruct)
	ss, sok2 := sp.Se.(prop.Estruct)
	if !aok2 || !sok2 {
		return nil, nil
	}
	for _, af := range as.Fields {
		if _, found := ss.Get(af.Field); !found {
			frameFld = append(frameFld, prop.Hpointsto{
				Lhs:  term.Lfield{Base: ap.Lhs, Field: af.Field},
				Se:   af.Val,
				Texp: ap.Texp,
			})
		}
	}
	for _, sf := range ss.Fields {
		if _, found := as.Get(sf.Field); !found {
			missingFld = append(missingFld, prop.Hpointsto{
				Lhs:  term.Lfield{Base: sp.Lhs, Field: sf.Field},
				Se:   sf.Val,
				Texp: sp.Texp,
			})
		}
	}
	return frameFld, missingFld
}

// typeDelta compares the Texp subtype info of two matched hpreds. A
// result with FromType set (and ToType the spec's type) is a frame_typ
// entry (the actual's type is a strict refinement the callee never saw);
// one with FromType nil and only ToType set is a missing_typ entry.
func typeDelta(ah, sh prop.Hpred) (TypeDelta, bool) {
	ap, aok := ah.(prop.Hpointsto)
	sp, sok := sh.(prop.Hpointsto)
	if !aok || !sok {
		return TypeDelta{}, false
	}
	aso, aok2 := ap.Texp.(term.Sizeof)
	sso, sok2 := sp.Texp.(term.Sizeof)
	if !aok2 || !sok2 {
		return TypeDelta{}, false
	}
	if aso.Typ.String() == sso.Typ.String() {
		return TypeDelta{}, false
	}
	if aso.Info.Exact && !sso.Info.Exact {
		return TypeDelta{Expr: ap.Lhs, FromType: aso.Typ, ToType: sso.Typ}, true
	}
	return TypeDelta{Expr: ap.Lhs, ToType: sso.Typ}, true
}

func applySub2Hpred(sub2 *term.Sub, h prop.Hpred) prop.Hpred {
	switch v := h.(type) {
	case prop.Hpointsto:
		return prop.Hpointsto{Lhs: sub2.Apply(v.Lhs), Se: v.Se, Texp: sub2.Apply(v.Texp)}
	default:
		return h
	}
}
