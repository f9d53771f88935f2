package prop

import (
	"sort"

	"github.com/biabductor/biabductor/internal/term"
)

// Prop is a symbolic state: a current heap (Sigma/Pi) plus a footprint
// counterpart (SigmaFP/PiFP, the assumptions the caller must satisfy) and
// a substitution over normal identifiers.
//
// Invariants (checked by Normalize, relied on everywhere else):
//   - Sub is idempotent.
//   - No primed identifier is free in the footprint.
//   - Every atom/hpred is normalized with respect to Sub.
//   - Attribute atoms have at most one instance per (expression, family).
//   - Every free identifier of the footprint is Footprint-kind.
type Prop struct {
	Sigma   []Hpred
	Pi      []Atom
	SigmaFP []Hpred
	PiFP    []Atom
	Sub     *term.Sub
}

// Empty returns `emp` with the identity substitution.
func Empty() *Prop {
	return &Prop{Sub: term.NewSub()}
}

// Clone returns a deep-enough copy for the builder-style rewriting the
// engine uses throughout: each rewriting step returns a new Prop so that
// the original remains usable on other paths.
func (p *Prop) Clone() *Prop {
	out := &Prop{
		Sigma:   append([]Hpred(nil), p.Sigma...),
		Pi:      append([]Atom(nil), p.Pi...),
		SigmaFP: append([]Hpred(nil), p.SigmaFP...),
		PiFP:    append([]Atom(nil), p.PiFP...),
		Sub:     p.Sub,
	}
	return out
}

// WithSigma, WithPi etc. return a new Prop with one field replaced,
// continuing the builder-style-construction pattern.
func (p *Prop) WithSigma(sigma []Hpred) *Prop {
	q := p.Clone()
	q.Sigma = sigma
	return q
}

func (p *Prop) WithPi(pi []Atom) *Prop {
	q := p.Clone()
	q.Pi = pi
	return q
}

func (p *Prop) WithSigmaFP(sigma []Hpred) *Prop {
	q := p.Clone()
	q.SigmaFP = sigma
	return q
}

func (p *Prop) WithPiFP(pi []Atom) *Prop {
	q := p.Clone()
	q.PiFP = pi
	return q
}

func (p *Prop) WithSub(sub *term.Sub) *Prop {
	q := p.Clone()
	q.Sub = sub
	return q
}

// AddSigma appends one or more hpreds (★-conjunction onto the current
// heap).
func (p *Prop) AddSigma(hs ...Hpred) *Prop {
	return p.WithSigma(append(append([]Hpred(nil), p.Sigma...), hs...))
}

// AddPi conjoins one or more pure atoms.
func (p *Prop) AddPi(as ...Atom) *Prop {
	return p.WithPi(append(append([]Atom(nil), p.Pi...), as...))
}

// AddSigmaFP stars hpreds onto the footprint heap.
func (p *Prop) AddSigmaFP(hs ...Hpred) *Prop {
	return p.WithSigmaFP(append(append([]Hpred(nil), p.SigmaFP...), hs...))
}

// AddPiFP conjoins atoms onto the footprint pure part.
func (p *Prop) AddPiFP(as ...Atom) *Prop {
	return p.WithPiFP(append(append([]Atom(nil), p.PiFP...), as...))
}

// AddAttr attaches attribute a to expr, replacing any existing attribute
// of the same family on the same expression (the "at most one instance
// per expression" invariant).
func (p *Prop) AddAttr(expr term.Expr, a term.Attr) *Prop {
	family := a.Key()
	out := make([]Atom, 0, len(p.Pi)+1)
	for _, atom := range p.Pi {
		if e, existing, ok := atom.AsAttr(); ok && term.Equal(e, expr) && existing.Key() == family {
			continue
		}
		out = append(out, atom)
	}
	out = append(out, AttrAtom(expr, a))
	return p.WithPi(out)
}

// GetAttr returns the attribute of the given family attached to expr, if
// any.
func (p *Prop) GetAttr(expr term.Expr, family string) (term.Attr, bool) {
	for _, atom := range p.Pi {
		if e, a, ok := atom.AsAttr(); ok && term.Equal(e, expr) && a.Key() == family {
			return a, true
		}
	}
	return nil, false
}

// RemoveAttr drops any attribute of the given family attached to expr.
func (p *Prop) RemoveAttr(expr term.Expr, family string) *Prop {
	out := make([]Atom, 0, len(p.Pi))
	for _, atom := range p.Pi {
		if e, a, ok := atom.AsAttr(); ok && term.Equal(e, expr) && a.Key() == family {
			continue
		}
		out = append(out, atom)
	}
	return p.WithPi(out)
}

// Apply rewrites every hpred/atom through s, composing it with the
// existing substitution.
func (p *Prop) Apply(s *term.Sub) *Prop {
	composed := term.Compose(p.Sub, s)
	out := p.WithSub(composed)
	out.Sigma = applyHpreds(out.Sigma, s)
	out.Pi = applyAtoms(out.Pi, s)
	return out
}

func applyAtoms(atoms []Atom, s *term.Sub) []Atom {
	out := make([]Atom, len(atoms))
	for i, a := range atoms {
		out[i] = a.Apply(s)
	}
	return out
}

func applyHpreds(hs []Hpred, s *term.Sub) []Hpred {
	out := make([]Hpred, len(hs))
	for i, h := range hs {
		out[i] = applyHpred(h, s)
	}
	return out
}

func applyHpred(h Hpred, s *term.Sub) Hpred {
	switch v := h.(type) {
	case Hpointsto:
		return Hpointsto{Lhs: s.Apply(v.Lhs), Se: applyStrexp(v.Se, s), Texp: s.Apply(v.Texp)}
	case Hlseg:
		shared := make([]term.Expr, len(v.Shared))
		for i, e := range v.Shared {
			shared[i] = s.Apply(e)
		}
		return Hlseg{Kind: v.Kind, Para: v.Para, From: s.Apply(v.From), To: s.Apply(v.To), Shared: shared}
	case Hdllseg:
		shared := make([]term.Expr, len(v.Shared))
		for i, e := range v.Shared {
			shared[i] = s.Apply(e)
		}
		return Hdllseg{Kind: v.Kind, Para: v.Para, IF: s.Apply(v.IF), OB: s.Apply(v.OB), OF: s.Apply(v.OF), IB: s.Apply(v.IB), Shared: shared}
	default:
		return h
	}
}

func applyStrexp(se Strexp, s *term.Sub) Strexp {
	switch v := se.(type) {
	case Eexp:
		return Eexp{Exp: s.Apply(v.Exp), Inst: v.Inst}
	case Estruct:
		fields := make([]FldVal, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = FldVal{Field: f.Field, Val: applyStrexp(f.Val, s)}
		}
		return Estruct{Fields: fields, Inst: v.Inst}
	case Earray:
		elems := make([]IdxVal, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = IdxVal{Index: s.Apply(e.Index), Val: applyStrexp(e.Val, s)}
		}
		return Earray{Size: s.Apply(v.Size), Elems: elems, Inst: v.Inst}
	default:
		return se
	}
}

// FreeVarsFP returns the identifiers free in the footprint (SigmaFP ∪
// PiFP), the set the footprint-discipline invariant quantifies
// over.
func (p *Prop) FreeVarsFP() []term.Ident {
	seen := make(map[term.Ident]bool)
	var out []term.Ident
	add := func(ids []term.Ident) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	for _, h := range p.SigmaFP {
		add(hpredFreeVars(h))
	}
	for _, a := range p.PiFP {
		add(term.FreeVars(a.Left))
		add(term.FreeVars(a.Right))
	}
	return out
}

func hpredFreeVars(h Hpred) []term.Ident {
	switch v := h.(type) {
	case Hpointsto:
		out := term.FreeVars(v.Lhs)
		out = append(out, strexpFreeVars(v.Se)...)
		out = append(out, term.FreeVars(v.Texp)...)
		return out
	case Hlseg:
		out := term.FreeVars(v.From)
		out = append(out, term.FreeVars(v.To)...)
		for _, e := range v.Shared {
			out = append(out, term.FreeVars(e)...)
		}
		return out
	case Hdllseg:
		out := term.FreeVars(v.IF)
		out = append(out, term.FreeVars(v.OB)...)
		out = append(out, term.FreeVars(v.OF)...)
		out = append(out, term.FreeVars(v.IB)...)
		for _, e := range v.Shared {
			out = append(out, term.FreeVars(e)...)
		}
		return out
	default:
		return nil
	}
}

func strexpFreeVars(se Strexp) []term.Ident {
	switch v := se.(type) {
	case Eexp:
		return term.FreeVars(v.Exp)
	case Estruct:
		var out []term.Ident
		for _, f := range v.Fields {
			out = append(out, strexpFreeVars(f.Val)...)
		}
		return out
	case Earray:
		out := term.FreeVars(v.Size)
		for _, e := range v.Elems {
			out = append(out, term.FreeVars(e.Index)...)
			out = append(out, strexpFreeVars(e.Val)...)
		}
		return out
	default:
		return nil
	}
}

// CanonicalKey renders a Prop to a deterministic string used as the
// hashing/dedup key across abstraction, join and the worklist's pathsets.
// Canonical order is: sort Pi, then Sigma, lexicographically by
// String() — the cheapest total order that makes the rendering independent
// of insertion order.
func (p *Prop) CanonicalKey() string {
	pi := append([]Atom(nil), p.Pi...)
	sort.Slice(pi, func(i, j int) bool { return pi[i].String() < pi[j].String() })
	sigma := append([]Hpred(nil), p.Sigma...)
	sort.Slice(sigma, func(i, j int) bool { return sigma[i].String() < sigma[j].String() })
	key := ""
	for _, a := range pi {
		key += a.String() + ";"
	}
	key += "|"
	for _, h := range sigma {
		key += h.String() + ";"
	}
	return key
}
