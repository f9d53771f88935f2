package rearrange

import (
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// DerefDefect classifies the outcome of CheckDereferenceError against the
// dereference-check table below.
type DerefDefect int

const (
	DerefOK DerefDefect = iota
	DerefNull
	DerefNullNullable
	DerefDangling
	DerefSkip
	DerefUseAfterFree
)

// DerefResult carries the defect plus whatever attribute/annotation
// justified it, for the error log to attach as the fault's bucket/source.
type DerefResult struct {
	Defect DerefDefect
	Detail string
}

// CheckDereferenceError implements the dereference-check table: given
// the root expression about to be dereferenced, decide which (if any)
// defect applies.
func (r *Rearranger) CheckDereferenceError(p *prop.Prop, root term.Expr, nullableField string) DerefResult {
	if r.Prover.CheckZero(p, root) {
		return DerefResult{Defect: DerefNull, Detail: "null"}
	}
	if nullableField != "" {
		if r.Prover.CheckEqual(p, root, root) && !r.Prover.CheckDisequal(p, root, term.Const(term.IntConst(0))) {
			// Root is not provably non-null and is sourced from an
			// @Nullable field/param: flag it, bucketed separately from a
			// hard null proof.
			return DerefResult{Defect: DerefNullNullable, Detail: nullableField}
		}
	}
	if _, ok := p.GetAttr(root, (term.Adangling{}).Key()); ok {
		return DerefResult{Defect: DerefDangling, Detail: "dangling"}
	}
	if a, ok := p.GetAttr(root, (term.Aundef{}).Key()); ok {
		if u, isUndef := a.(term.Aundef); isUndef {
			return DerefResult{Defect: DerefSkip, Detail: u.Fn}
		}
	}
	if a, ok := p.GetAttr(root, (term.Aresource{}).Key()); ok {
		if res, isRes := a.(term.Aresource); isRes && res.Action == term.Rrelease {
			return DerefResult{Defect: DerefUseAfterFree, Detail: res.Pname}
		}
	}
	if r.Prover.CheckEqual(p, root, term.Const(term.IntConst(-1))) {
		return DerefResult{Defect: DerefDangling, Detail: "sentinel -1"}
	}
	return DerefResult{Defect: DerefOK}
}
