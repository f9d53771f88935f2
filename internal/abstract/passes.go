package abstract

import (
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// UnreachableRoots reports the primed-rooted hpreds Abstract's garbage
// collection pass is about to drop, so the caller (symexec's Abstract
// instruction handler) can inspect their attributes for an un-released
// Aresource before the cell disappears — the hook Leak
// detection runs through ("any leaked hpred ... raises Leak").
func (a *Abstractor) UnreachableRoots(p *prop.Prop, roots []term.Expr) []prop.Hpred {
	reachable := reachableRoots(p, roots)
	var dropped []prop.Hpred
	for _, h := range p.Sigma {
		if v, ok := h.Root().(term.Var); ok && v.Id.IsPrimed() && !reachable[v.Id] {
			dropped = append(dropped, h)
		}
	}
	return dropped
}

// garbageCollect drops Hpointsto cells rooted at a Primed identifier that
// is not reachable (transitively, through any hpred's value positions)
// from roots or from a Normal/Footprint-rooted cell — a primed cell with
// nothing left pointing at it can never again be rearranged to, so
// keeping it only wastes prover cycles.
func (a *Abstractor) garbageCollect(p *prop.Prop, roots []term.Expr) (*prop.Prop, bool) {
	reachable := reachableRoots(p, roots)
	kept := make([]prop.Hpred, 0, len(p.Sigma))
	changed := false
	for _, h := range p.Sigma {
		root := h.Root()
		if v, ok := root.(term.Var); ok && v.Id.IsPrimed() && !reachable[v.Id] {
			changed = true
			continue
		}
		kept = append(kept, h)
	}
	if !changed {
		return p, false
	}
	return p.WithSigma(kept), true
}

// reachableRoots computes the fixpoint set of primed identifiers
// reachable from roots by following hpred value positions (the contents
// of a cell can themselves be pointers into the heap).
func reachableRoots(p *prop.Prop, roots []term.Expr) map[term.Ident]bool {
	live := make(map[term.Ident]bool)
	frontier := make([]term.Ident, 0, len(roots))
	for _, r := range roots {
		for _, id := range term.FreeVars(r) {
			if !live[id] {
				live[id] = true
				frontier = append(frontier, id)
			}
		}
	}
	byRoot := make(map[term.Ident]prop.Hpred)
	for _, h := range p.Sigma {
		if v, ok := h.Root().(term.Var); ok {
			byRoot[v.Id] = h
		}
	}
	for len(frontier) > 0 {
		id := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		h, ok := byRoot[id]
		if !ok {
			continue
		}
		for _, next := range hpredValueIdents(h) {
			if !live[next] {
				live[next] = true
				frontier = append(frontier, next)
			}
		}
	}
	return live
}

func hpredValueIdents(h prop.Hpred) []term.Ident {
	switch v := h.(type) {
	case prop.Hpointsto:
		return strexpIdents(v.Se)
	case prop.Hlseg:
		return term.FreeVars(v.To)
	case prop.Hdllseg:
		ids := term.FreeVars(v.OF)
		ids = append(ids, term.FreeVars(v.IB)...)
		return ids
	default:
		return nil
	}
}

func strexpIdents(se prop.Strexp) []term.Ident {
	switch v := se.(type) {
	case prop.Eexp:
		return term.FreeVars(v.Exp)
	case prop.Estruct:
		var out []term.Ident
		for _, f := range v.Fields {
			out = append(out, strexpIdents(f.Val)...)
		}
		return out
	case prop.Earray:
		var out []term.Ident
		for _, e := range v.Elems {
			out = append(out, strexpIdents(e.Val)...)
		}
		return out
	default:
		return nil
	}
}

// dedupAttributes removes duplicate `e != Cattribute(a)` atoms that
// survived a join or an unfold producing the same fact twice (Prop's
// normal form already forbids two attributes of the same family on the
// same expression, but plain structural duplicates of the identical atom
// can still arise from AddSigma-style concatenation and are cheap to
// collapse here).
func (a *Abstractor) dedupAttributes(p *prop.Prop, _ []term.Expr) (*prop.Prop, bool) {
	seen := make(map[string]bool, len(p.Pi))
	out := make([]prop.Atom, 0, len(p.Pi))
	changed := false
	for _, atom := range p.Pi {
		key := atom.String()
		if seen[key] {
			changed = true
			continue
		}
		seen[key] = true
		out = append(out, atom)
	}
	if !changed {
		return p, false
	}
	return p.WithPi(out), true
}
