package symexec

import (
	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/rearrange"
	"github.com/biabductor/biabductor/internal/term"
)

// execLoad implements Load transfer function: rearrange for
// the read location, check it for a dereference defect, then bind the
// destination identifier to the materialized leaf value.
func (e *Executor) execLoad(pp PathProp, in term.Load) (Outcome, error) {
	root := term.Root(in.Lexp)
	if d := e.Rearranger.CheckDereferenceError(pp.Prop, root, e.nullableField(in.Lexp)); d.Defect != rearrange.DerefOK {
		kind := e.reportDeref(d, in.Loc)
		if kind != errlog.KindFieldNotNullChecked {
			return Outcome{Exceptional: []PathProp{pp}}, nil
		}
	}

	results, err := e.Rearranger.Rearrange(pp.Prop, in.Lexp, in.Typ, e.Phase)
	if err != nil {
		return e.handleRearrangeFault(pp, in.Loc, err)
	}

	offsets := term.Offsets(in.Lexp)
	var out Outcome
	for _, r := range results {
		h, ok := r.Iter.Curr.(prop.Hpointsto)
		if !ok {
			continue
		}
		leaf, ok := navigate(h.Se, offsets)
		if !ok {
			continue
		}
		e.reportArrayBounds(r.Iter, h.Se, offsets, in.Loc)
		var val term.Expr
		if eexp, ok := leaf.(prop.Eexp); ok {
			val = eexp.Exp
		} else {
			val = term.Var{Id: freshTemp(e.Gen, "load")}
		}
		next := r.Iter.ToProp().AddPi(prop.Atom{Op: prop.Eq, Left: term.Var{Id: in.Id}, Right: val})
		out.Normal = append(out.Normal, PathProp{Prop: next, Path: pp.Path})
	}
	return out, nil
}

// execStore implements Store transfer function: rearrange for
// the write location, check it for a dereference defect, then replace the
// focused leaf with the assigned value tagged InstUpdate.
func (e *Executor) execStore(pp PathProp, in term.Store) (Outcome, error) {
	root := term.Root(in.Lexp)
	if d := e.Rearranger.CheckDereferenceError(pp.Prop, root, e.nullableField(in.Lexp)); d.Defect != rearrange.DerefOK {
		kind := e.reportDeref(d, in.Loc)
		if kind != errlog.KindFieldNotNullChecked {
			return Outcome{Exceptional: []PathProp{pp}}, nil
		}
	}

	results, err := e.Rearranger.Rearrange(pp.Prop, in.Lexp, in.Typ, e.Phase)
	if err != nil {
		return e.handleRearrangeFault(pp, in.Loc, err)
	}

	offsets := term.Offsets(in.Lexp)
	newLeaf := prop.Eexp{Exp: in.Rhs, Inst: prop.Inst{Kind: prop.InstUpdate, Loc: in.Loc}}
	var out Outcome
	for _, r := range results {
		h, ok := r.Iter.Curr.(prop.Hpointsto)
		if !ok {
			continue
		}
		e.reportArrayBounds(r.Iter, h.Se, offsets, in.Loc)
		updatedSe, ok := withLeaf(h.Se, offsets, newLeaf)
		if !ok {
			continue
		}
		updated := r.Iter.UpdateCurrent(prop.Hpointsto{Lhs: h.Lhs, Se: updatedSe, Texp: h.Texp})
		out.Normal = append(out.Normal, PathProp{Prop: updated.ToProp(), Path: pp.Path})
	}
	return out, nil
}

// handleRearrangeFault classifies a Rearrange error per : a
// recoverable fault (e.g. the synthesized MissingFld/SymexecMemory faults
// re-execution phase raises when a footprint cell never got inferred)
// becomes a logged issue and an exceptional continuation; anything else
// propagates so the caller (worklist) can abort the whole node.
func (e *Executor) handleRearrangeFault(pp PathProp, loc term.Loc, err error) (Outcome, error) {
	fault, ok := config.IsFault(err)
	if !ok || !fault.Recoverable() {
		return Outcome{}, err
	}
	kind := errlog.KindBadFootprint
	if fault.Kind == config.FaultPreconditionNotFound {
		kind = errlog.KindPreconditionNotMet
	}
	issue := errlog.New(kind, e.Proc, e.ProcStart, loc.File, loc.Line, loc.Column).
		WithQualifier("%s", fault.Message).
		Build()
	e.Log.Report(issue)
	return Outcome{Exceptional: []PathProp{pp}}, nil
}
