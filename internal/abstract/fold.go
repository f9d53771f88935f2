package abstract

import (
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// foldListSegments looks for two adjacent Hpointsto cells connected
// through one "next" field and folds them into a single Hlseg(NE).
//
// This is intentionally the narrow two-cell case: the non-link fields of
// the folded cells must already be structurally identical (a constant
// value baked into the resulting Hpara body), not a fresh existential per
// cell. Folding a chain of three or more cells, or cells whose payload
// genuinely varies, is left undone rather than approximated unsoundly;
// the analysis simply keeps such chains as explicit Hpointsto cells,
// which only costs precision/scalability, not correctness (spec's
// Non-goals exclude soundness w.r.t. the concrete semantics anyway).
func (a *Abstractor) foldListSegments(p *prop.Prop, _ []term.Expr) (*prop.Prop, bool) {
	for i, hi := range p.Sigma {
		h1, ok := hi.(prop.Hpointsto)
		if !ok {
			continue
		}
		st1, ok := h1.Se.(prop.Estruct)
		if !ok {
			continue
		}
		for fi, f := range st1.Fields {
			fe, ok := f.Val.(prop.Eexp)
			if !ok {
				continue
			}
			nextVar, ok := fe.Exp.(term.Var)
			if !ok || !nextVar.Id.IsPrimed() {
				continue
			}
			for j, hj := range p.Sigma {
				if j == i {
					continue
				}
				h2, ok := hj.(prop.Hpointsto)
				if !ok {
					continue
				}
				rootVar, ok := h2.Lhs.(term.Var)
				if !ok || rootVar.Id != nextVar.Id {
					continue
				}
				st2, ok := h2.Se.(prop.Estruct)
				if !ok || !sameShape(st1, st2) {
					continue
				}
				if !nonLinkFieldsEqual(st1, st2, fi) {
					continue
				}
				nextField2, ok := st2.Fields[fi].Val.(prop.Eexp)
				if !ok {
					continue
				}
				para := buildHpara(st1, fi, h1.Texp)
				seg := prop.Hlseg{Kind: prop.LsegNE, Para: para, From: h1.Lhs, To: nextField2.Exp}
				out := make([]prop.Hpred, 0, len(p.Sigma)-1)
				for k, h := range p.Sigma {
					if k == i || k == j {
						continue
					}
					out = append(out, h)
				}
				out = append(out, seg)
				return p.WithSigma(out), true
			}
		}
	}
	return p, false
}

func sameShape(a, b prop.Estruct) bool {
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		if a.Fields[i].Field != b.Fields[i].Field {
			return false
		}
	}
	return true
}

func nonLinkFieldsEqual(a, b prop.Estruct, linkIdx int) bool {
	for i := range a.Fields {
		if i == linkIdx {
			continue
		}
		if !strexpEqual(a.Fields[i].Val, b.Fields[i].Val) {
			return false
		}
	}
	return true
}

func strexpEqual(a, b prop.Strexp) bool {
	switch av := a.(type) {
	case prop.Eexp:
		bv, ok := b.(prop.Eexp)
		return ok && term.Equal(av.Exp, bv.Exp)
	case prop.Estruct:
		bv, ok := b.(prop.Estruct)
		if !ok || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if av.Fields[i].Field != bv.Fields[i].Field || !strexpEqual(av.Fields[i].Val, bv.Fields[i].Val) {
				return false
			}
		}
		return true
	case prop.Earray:
		bv, ok := b.(prop.Earray)
		if !ok || !term.Equal(av.Size, bv.Size) || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !term.Equal(av.Elems[i].Index, bv.Elems[i].Index) || !strexpEqual(av.Elems[i].Val, bv.Elems[i].Val) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// buildHpara generalizes a struct cell into an Hpara template: fi becomes
// the Next formal, everything else is carried over verbatim as the
// shared body (see the foldListSegments doc comment for the limitation
// this implies).
func buildHpara(st prop.Estruct, fi int, texp term.Expr) prop.Hpara {
	rootId := term.Ident{Kind: term.Normal, Name: "hpara_root"}
	nextId := term.Ident{Kind: term.Normal, Name: "hpara_next"}
	fields := make([]prop.FldVal, len(st.Fields))
	copy(fields, st.Fields)
	fields[fi] = prop.FldVal{Field: st.Fields[fi].Field, Val: prop.Eexp{Exp: term.Var{Id: nextId}}}
	body := []prop.Hpred{
		prop.Hpointsto{Lhs: term.Var{Id: rootId}, Se: prop.Estruct{Fields: fields, Inst: st.Inst}, Texp: texp},
	}
	return prop.Hpara{Params: prop.HparaParam{Root: rootId, Next: nextId}, Body: body}
}

// collapsePredicates merges chains of adjacent, identically-shaped list
// segments (h1.To = h2.From) into one, the abs_level > 0 behavior // calls out as a coarser, cheaper-to-check abstraction than per-cell
// folding alone.
func (a *Abstractor) collapsePredicates(p *prop.Prop) (*prop.Prop, bool) {
	anyChange := false
	for {
		changed := false
		for i, hi := range p.Sigma {
			s1, ok := hi.(prop.Hlseg)
			if !ok {
				continue
			}
			for j, hj := range p.Sigma {
				if i == j {
					continue
				}
				s2, ok := hj.(prop.Hlseg)
				if !ok || !hparaEqual(s1.Para, s2.Para) || !term.Equal(s1.To, s2.From) {
					continue
				}
				kind := prop.LsegPE
				if s1.Kind == prop.LsegNE && s2.Kind == prop.LsegNE {
					kind = prop.LsegNE
				}
				merged := prop.Hlseg{Kind: kind, Para: s1.Para, From: s1.From, To: s2.To}
				out := make([]prop.Hpred, 0, len(p.Sigma)-1)
				for k, h := range p.Sigma {
					if k == i || k == j {
						continue
					}
					out = append(out, h)
				}
				out = append(out, merged)
				p = p.WithSigma(out)
				changed = true
				anyChange = true
				break
			}
			if changed {
				break
			}
		}
		if !changed {
			break
		}
	}
	return p, anyChange
}

func hparaEqual(a, b prop.Hpara) bool {
	if a.Params.Root != b.Params.Root || a.Params.Next != b.Params.Next {
		return false
	}
	if len(a.Params.Extra) != len(b.Params.Extra) {
		return false
	}
	for i := range a.Params.Extra {
		if a.Params.Extra[i] != b.Params.Extra[i] {
			return false
		}
	}
	if len(a.Body) != len(b.Body) {
		return false
	}
	for i := range a.Body {
		if a.Body[i].String() != b.Body[i].String() {
			return false
		}
	}
	return true
}
