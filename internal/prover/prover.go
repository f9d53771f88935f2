// Package prover implements the decision procedures describes:
// pure arithmetic/disequality, allocatedness, subtype checks, and the
// bi-abductive implication-with-inference that the tabulation engine
// calls on every procedure call.
//
// Invariant: every exported function here is referentially transparent —
// it reads its arguments and returns a result, never mutating the Prop or
// Hpred values passed to it.
package prover

import (
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// Prover bundles the one piece of state decision procedures need: the
// type environment, for subtype and type-size queries. It holds no
// mutable analysis state.
type Prover struct {
	Types *term.TypeEnv
}

// New returns a Prover bound to a type environment.
func New(types *term.TypeEnv) *Prover {
	return &Prover{Types: types}
}

// CheckAtom decides whether atom a follows from p.Pi by simple
// congruence-closure-style reasoning over equalities and disequalities.
// This is deliberately incomplete (no arbitrary linear-arithmetic
// solving) — per the Non-goals, soundness w.r.t. the concrete semantics
// is out of scope; the prover only needs to be useful, not complete.
func (pr *Prover) CheckAtom(p *prop.Prop, a prop.Atom) bool {
	uf := buildUnionFind(p.Pi)
	switch a.Op {
	case prop.Eq:
		return uf.sameClass(a.Left, a.Right)
	case prop.Neq:
		if uf.sameClass(a.Left, a.Right) {
			return false
		}
		return uf.knownDisequal(a.Left, a.Right, p.Pi)
	}
	return false
}

// CheckEqual and CheckDisequal are convenience wrappers over CheckAtom.
func (pr *Prover) CheckEqual(p *prop.Prop, a, b term.Expr) bool {
	return pr.CheckAtom(p, prop.Atom{Op: prop.Eq, Left: a, Right: b})
}

func (pr *Prover) CheckDisequal(p *prop.Prop, a, b term.Expr) bool {
	return pr.CheckAtom(p, prop.Atom{Op: prop.Neq, Left: a, Right: b})
}

// CheckZero decides whether e is provably equal to the integer literal
// zero under p.Pi.
func (pr *Prover) CheckZero(p *prop.Prop, e term.Expr) bool {
	return pr.CheckEqual(p, e, term.Const(term.IntConst(0)))
}

// CheckAllocatedness decides whether e is known to point into the
// current heap (i.e. some Hpointsto/Hlseg/Hdllseg in p.Sigma has e as its
// root, up to the equalities in p.Pi).
func (pr *Prover) CheckAllocatedness(p *prop.Prop, e term.Expr) bool {
	uf := buildUnionFind(p.Pi)
	for _, h := range p.Sigma {
		if uf.sameClass(h.Root(), e) {
			return true
		}
	}
	return false
}

// CheckTypeSizeLeq decides whether a's type size is less-than-or-equal
// to b's, consulting the type environment for struct layouts and falling
// back to "unknown" (false) for opaque named types neither side can
// refine — callers treat "false" as "could not prove it", matching the
// PointerSizeMismatch warning's conservative default.
func (pr *Prover) CheckTypeSizeLeq(a, b term.Type) bool {
	sa, sb := typeSize(pr.Types, a), typeSize(pr.Types, b)
	if sa < 0 || sb < 0 {
		return false
	}
	return sa <= sb
}

func typeSize(env *term.TypeEnv, t term.Type) int {
	switch v := t.(type) {
	case *term.PrimitiveType:
		switch v.Kind {
		case term.Bool:
			return 1
		case term.Int:
			return 8
		case term.Float:
			return 8
		default:
			return 0
		}
	case term.PtrType:
		return 8
	case term.ArrayType:
		if v.Size < 0 {
			return -1 // unknown
		}
		return v.Size * typeSize(env, v.Elem)
	case term.StructType:
		layout := env.Lookup(v.Name)
		if layout == nil {
			return -1
		}
		total := 0
		for _, f := range layout.Fields {
			total += typeSize(env, f.Type)
		}
		return total
	default:
		return -1
	}
}

// CheckInconsistency decides whether p has no model: some pair of atoms
// in p.Pi directly contradict (e=e' and e!=e' both provable, under the
// syntactic union-find), or the root of some sigma hpred is provably zero
// (a null address cannot be allocated).
func (pr *Prover) CheckInconsistency(p *prop.Prop) bool {
	uf := buildUnionFind(p.Pi)
	for _, a := range p.Pi {
		if a.Op != prop.Neq {
			continue
		}
		if _, _, isAttr := a.AsAttr(); isAttr {
			continue
		}
		if uf.sameClass(a.Left, a.Right) {
			return true
		}
	}
	// Zero cannot be simultaneously allocated: if e = 0 is provable and e
	// is also a root in sigma, the state is infeasible.
	for _, h := range p.Sigma {
		if pr.CheckZero(p, h.Root()) {
			return true
		}
	}
	return false
}

// ExpandHpredPointer normalizes pointer arithmetic inside an hpred's
// root/strexp (e.g. folding `Lindex(Lfield(p,"f"),0)` forms produced by
// front-ends that desugar `p->f[0]` differently than `(*p).f[0]`). The
// refactor flag additionally flattens nested casts of the same type.
func (pr *Prover) ExpandHpredPointer(refactor bool, h prop.Hpred) prop.Hpred {
	switch v := h.(type) {
	case prop.Hpointsto:
		lhs := expandExpr(v.Lhs, refactor)
		return prop.Hpointsto{Lhs: lhs, Se: v.Se, Texp: v.Texp}
	default:
		return h
	}
}

func expandExpr(e term.Expr, refactor bool) term.Expr {
	switch v := e.(type) {
	case term.Cast:
		if refactor {
			if inner, ok := v.Expr.(term.Cast); ok && sameType(inner.Typ, v.Typ) {
				return expandExpr(inner, refactor)
			}
		}
		return term.Cast{Typ: v.Typ, Expr: expandExpr(v.Expr, refactor)}
	case term.Lfield:
		return term.Lfield{Base: expandExpr(v.Base, refactor), Field: v.Field, Typ: v.Typ}
	case term.Lindex:
		return term.Lindex{Base: expandExpr(v.Base, refactor), Index: expandExpr(v.Index, refactor)}
	default:
		return e
	}
}

func sameType(a, b term.Type) bool { return a.String() == b.String() }
