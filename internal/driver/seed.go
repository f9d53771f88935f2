package driver

import (
	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// seedFootprint builds the Footprint phase's initial prop: one stack cell
// per formal holding a fresh footprint-kinded value. Rearrangement
// fabricates whatever further footprint cells a dereference through one
// of these formals needs (rearrange.go's mkPtstoExpFootprint), which is
// where the "add seed copies of formals/globals as footprint anchors"
// half of actually happens — there is nothing more to seed
// here up front than the formals' own stack slots.
func (d *Driver) seedFootprint(attrs cfgmodel.ProcAttributes) *prop.Prop {
	p := prop.Empty()
	gen := d.Ctx.Generator()
	for _, f := range attrs.Formals {
		root := term.Lvar{Pvar: term.Pvar{Name: f.Name, Kind: term.PvarLocal, Proc: attrs.ProcName}}
		fresh := gen.Fresh(term.Footprint, f.Name+"_val")
		p = p.AddSigma(prop.Hpointsto{
			Lhs:  root,
			Se:   prop.Eexp{Exp: term.Var{Id: fresh}},
			Texp: term.Sizeof{Typ: f.Type},
		})
	}
	return p
}

// freshenPre renames every footprint identifier free in an inferred
// precondition with a fresh one (: "build an initial prop from
// pre (fresh footprint ids)"), so that re-running the worklist from this
// precondition never collides with stamps the footprint pass already
// used. Mirrors summary.Spec.RenameSuffix's renaming step, applied to a
// bare precondition Prop rather than a whole Spec.
func (d *Driver) freshenPre(p *prop.Prop, suffix string) *prop.Prop {
	gen := d.Ctx.Generator()
	sub := term.NewSub()
	for _, id := range freeFootprintIdents(p) {
		fresh := gen.Fresh(term.Footprint, id.Name+suffix)
		sub = sub.Extend(id, term.Var{Id: fresh})
	}
	return p.Apply(sub)
}

// freeFootprintIdents collects the footprint-kinded identifiers free in
// p's Sigma and Pi. Mirrors prop.Prop.FreeVarsFP's walk (which only
// looks at SigmaFP/PiFP, the wrong fields for a precondition stored as
// an ordinary Prop) but is reimplemented here over the exported Hpred/
// Strexp shapes since prop's own hpredFreeVars/strexpFreeVars helpers are
// unexported.
func freeFootprintIdents(p *prop.Prop) []term.Ident {
	seen := make(map[term.Ident]bool)
	var out []term.Ident
	add := func(ids []term.Ident) {
		for _, id := range ids {
			if id.Kind == term.Footprint && !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	for _, h := range p.Sigma {
		add(hpredIdents(h))
	}
	for _, a := range p.Pi {
		add(term.FreeVars(a.Left))
		add(term.FreeVars(a.Right))
	}
	return out
}

func hpredIdents(h prop.Hpred) []term.Ident {
	switch v := h.(type) {
	case prop.Hpointsto:
		out := term.FreeVars(v.Lhs)
		out = append(out, strexpIdents(v.Se)...)
		out = append(out, term.FreeVars(v.Texp)...)
		return out
	case prop.Hlseg:
		out := term.FreeVars(v.From)
		out = append(out, term.FreeVars(v.To)...)
		for _, s := range v.Shared {
			out = append(out, term.FreeVars(s)...)
		}
		return out
	case prop.Hdllseg:
		out := term.FreeVars(v.IF)
		out = append(out, term.FreeVars(v.OB)...)
		out = append(out, term.FreeVars(v.OF)...)
		out = append(out, term.FreeVars(v.IB)...)
		for _, s := range v.Shared {
			out = append(out, term.FreeVars(s)...)
		}
		return out
	}
	return nil
}

func strexpIdents(se prop.Strexp) []term.Ident {
	switch v := se.(type) {
	case prop.Eexp:
		return term.FreeVars(v.Exp)
	case prop.Estruct:
		var out []term.Ident
		for _, fv := range v.Fields {
			out = append(out, strexpIdents(fv.Val)...)
		}
		return out
	case prop.Earray:
		out := term.FreeVars(v.Size)
		for _, e := range v.Elems {
			out = append(out, term.FreeVars(e.Index)...)
			out = append(out, strexpIdents(e.Val)...)
		}
		return out
	}
	return nil
}
