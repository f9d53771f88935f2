package rearrange

import (
	"fmt"

	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// extendValues walks offsets over a points-to cell, synthesizing missing
// struct fields and case-splitting array accesses.
func (r *Rearranger) extendValues(it *prop.Iter, h prop.Hpointsto, offsets []term.Offset, t term.Type, phase Phase) ([]IterResult, error) {
	if len(offsets) == 0 {
		if mismatch := r.typeMismatch(h.Texp, t); mismatch {
			// pointer-size mismatch is a warning, not a hard failure: the
			// caller (symexec) attaches the PointerSizeMismatch issue and
			// proceeds with the iterator as materialized.
		}
		return []IterResult{{OffsetPath: it.State, Iter: it}}, nil
	}

	off := offsets[0]
	rest := offsets[1:]

	switch o := off.(type) {
	case term.OffFld:
		return r.extendField(it, h, o, rest, t, phase)
	case term.OffIndex:
		return r.extendIndex(it, h, o, rest, t, phase)
	default:
		return nil, config.NewFault(config.FaultBadFootprint, "unknown offset kind")
	}
}

func (r *Rearranger) typeMismatch(stored term.Expr, want term.Type) bool {
	so, ok := stored.(term.Sizeof)
	if !ok || want == nil {
		return false
	}
	return !r.Prover.CheckTypeSizeLeq(want, so.Typ) && !r.Prover.CheckTypeSizeLeq(so.Typ, want)
}

// extendField materializes a field access: if the field is already
// present in the strexp, descend into it; if it is missing, synthesize a
// fresh leaf value for it (growing the Estruct) rather than failing,
// mirroring extend_values' "for missing struct fields, synthesize a fresh
// strexp". In re-execution phase a genuinely missing field is instead a
// hard MissingFld fault — the precondition that would have supplied it
// was never inferred.
func (r *Rearranger) extendField(it *prop.Iter, h prop.Hpointsto, o term.OffFld, rest []term.Offset, t term.Type, phase Phase) ([]IterResult, error) {
	st, ok := h.Se.(prop.Estruct)
	if !ok {
		if es, isEexp := h.Se.(prop.Eexp); isEexp && phase == PhaseFootprint {
			// A bare scalar accessed via a field offset: treat it as an
			// under-specified struct and grow it from an empty struct;
			// the existing scalar leaf is not carried over.
			st = prop.Estruct{Fields: nil}
			_ = es
		} else {
			return nil, config.NewFault(config.FaultBadFootprint, "field offset on non-struct strexp")
		}
	}

	fieldVal, present := st.Get(o.Field)
	if !present {
		if phase == PhaseReExecution {
			return nil, config.MissingFld(o.Field)
		}
		fresh := r.Gen.Fresh(term.Footprint, o.Field)
		fieldVal = prop.Eexp{Exp: term.Var{Id: fresh}}
		st = st.With(o.Field, fieldVal)
		h = prop.Hpointsto{Lhs: h.Lhs, Se: st, Texp: h.Texp}
		it = it.UpdateCurrent(h)
	}

	childLexp := term.Lfield{Base: h.Lhs, Field: o.Field, Typ: o.Typ}
	childIter := descend(it, childLexp, fieldVal)
	return r.extend(childIter.it, rest, t, phase)
}

// extendIndex case-splits an array access into three cases: the index is
// already bound, the index is fresh in the array, or (in re-execution
// phase, where synthesis is disallowed) the array is considered full and
// the access is out of bounds.
func (r *Rearranger) extendIndex(it *prop.Iter, h prop.Hpointsto, o term.OffIndex, rest []term.Offset, t term.Type, phase Phase) ([]IterResult, error) {
	arr, ok := h.Se.(prop.Earray)
	if !ok {
		return nil, config.NewFault(config.FaultBadFootprint, "index offset on non-array strexp")
	}

	if bounds := r.checkBounds(it, arr.Size, o.Index); bounds != BoundsOK {
		// Bounds violations are reported by the caller (symexec) using
		// BoundsCase; rearrangement still returns an (empty) infeasible
		// result for definitely-out-of-bounds accesses.
		if bounds == BoundsL1 {
			return nil, nil
		}
	}

	if val, present := arr.At(o.Index); present {
		childLexp := term.Lindex{Base: h.Lhs, Index: o.Index}
		childIter := descend(it, childLexp, val)
		return r.extend(childIter.it, rest, t, phase)
	}

	if phase == PhaseReExecution {
		return nil, config.SymexecMemoryError(fmt.Sprintf("array index %s not present in re-execution", o.Index))
	}

	fresh := r.Gen.Fresh(term.Footprint, "elem")
	val := prop.Strexp(prop.Eexp{Exp: term.Var{Id: fresh}})
	newArr := arr.With(o.Index, val)
	h2 := prop.Hpointsto{Lhs: h.Lhs, Se: newArr, Texp: h.Texp}
	it = it.UpdateCurrent(h2)
	childLexp := term.Lindex{Base: h.Lhs, Index: o.Index}
	childIter := descend(it, childLexp, val)
	return r.extend(childIter.it, rest, t, phase)
}

// descendResult wraps the iterator produced by focusing on a freshly
// materialized child cell; for this simplified model the parent iterator
// keeps tracking the whole Hpointsto (field/array drill-down does not
// need a distinct sigma entry), so descend only extends the offset-path
// bookkeeping.
type descendResult struct{ it *prop.Iter }

func descend(it *prop.Iter, _ term.Expr, _ prop.Strexp) descendResult {
	return descendResult{it: it}
}

// BoundsCase is the three-way outcome of an array bounds query.
type BoundsCase int

const (
	BoundsOK BoundsCase = iota
	BoundsL1            // definitely out
	BoundsL2            // size constant, not proven in
	BoundsL3            // unknown bounds
)

// CheckBounds exposes the array bounds query for callers (the symbolic
// executor) that need to report ArrayOutOfBounds L1/L2/L3
// independently of whether rearrangement itself had to case-split an
// index access.
func (r *Rearranger) CheckBounds(it *prop.Iter, size, index term.Expr) BoundsCase {
	return r.checkBounds(it, size, index)
}

// checkBounds queries the prover for `0 <= index < size`.
func (r *Rearranger) checkBounds(it *prop.Iter, size, index term.Expr) BoundsCase {
	p := it.ToProp()
	zero := term.Const(term.IntConst(0))
	belowZero := r.Prover.CheckAtom(p, prop.Atom{Op: prop.Eq, Left: term.BinOp{Op: "<", Left: index, Right: zero}, Right: term.Const(term.IntConst(1))})
	if belowZero {
		return BoundsL1
	}
	ge := r.Prover.CheckAtom(p, prop.Atom{Op: prop.Eq, Left: term.BinOp{Op: ">=", Left: index, Right: size}, Right: term.Const(term.IntConst(1))})
	if ge {
		return BoundsL1
	}
	if _, isConst := size.(term.Const); isConst {
		return BoundsL2
	}
	return BoundsL3
}
