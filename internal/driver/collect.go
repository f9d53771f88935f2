package driver

import (
	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/term"
	"github.com/biabductor/biabductor/internal/worklist"
)

// collectFootprintSpecs implements collect_analysis_result
// for the Footprint phase: clean and abstract every post reaching exit,
// derive its inferred precondition from the footprint portion it
// accumulated, group posts sharing the same precondition shape, and
// return one Spec per group.
func (d *Driver) collectFootprintSpecs(result *worklist.Result, attrs cfgmodel.ProcAttributes) []*summary.Spec {
	type group struct {
		pre   *prop.Prop
		posts []summary.PostEntry
	}
	groups := make(map[string]*group)
	var order []string
	roots := formalRoots(attrs)

	for _, pp := range result.Posts {
		pre := &prop.Prop{
			Sigma: append([]prop.Hpred(nil), pp.Prop.SigmaFP...),
			Pi:    append([]prop.Atom(nil), pp.Prop.PiFP...),
		}
		key := pre.CanonicalKey()
		g, ok := groups[key]
		if !ok {
			g = &group{pre: pre}
			groups[key] = g
			order = append(order, key)
		}
		cleaned := d.cleanPost(pp.Prop, attrs)
		abstracted := d.Abstractor.Abstract(cleaned, roots)
		g.posts = append(g.posts, summary.PostEntry{Prop: abstracted, Path: pp.Path})
	}

	specs := make([]*summary.Spec, 0, len(order))
	for _, key := range order {
		g := groups[key]
		specs = append(specs, summary.NewSpec(summary.NewProp(g.pre), g.posts, result.Visited))
	}
	return specs
}

// cleanPost removes a post's local-variable stack cells before it is
// abstracted and saved into a spec: the caller never needs to know where
// a callee's locals lived, only what they connected together, and a
// local's stack slot has nothing on the other side of a call boundary.
// Before dropping a local's cell, every remaining cell's value positions
// are checked for a reference to that same local's address — finding one
// means the procedure handed out a pointer to a variable whose storage
// does not outlive the call, reported as a StackVariableAddressEscape
// issue rather than silently dropped.
func (d *Driver) cleanPost(p *prop.Prop, attrs cfgmodel.ProcAttributes) *prop.Prop {
	var keep []prop.Hpred
	var removed []term.Expr
	for _, h := range p.Sigma {
		if lv, ok := h.Root().(term.Lvar); ok && lv.Pvar.Kind == term.PvarLocal {
			removed = append(removed, h.Root())
			continue
		}
		keep = append(keep, h)
	}
	if len(removed) == 0 {
		return p
	}
	for _, h := range keep {
		for _, leaf := range leafExprs(h) {
			for _, r := range removed {
				if term.Equal(leaf, r) {
					d.reportStackEscape(attrs, r)
				}
			}
		}
	}
	return p.WithSigma(keep)
}

func (d *Driver) reportStackEscape(attrs cfgmodel.ProcAttributes, addr term.Expr) {
	issue := errlog.New(errlog.KindStackVariableAddressEscape, attrs.ProcName, attrs.Loc.Line, attrs.Loc.File, attrs.Loc.Line, attrs.Loc.Column).
		WithQualifier("address of a local variable (%s) escapes %s", addr, attrs.ProcName).
		Build()
	d.Log.Report(issue)
}

// leafExprs collects an hpred's value positions: the expressions that
// would need to reference an escaping address for that escape to be
// observable from outside the cell being removed.
func leafExprs(h prop.Hpred) []term.Expr {
	switch v := h.(type) {
	case prop.Hpointsto:
		return strexpLeaves(v.Se)
	case prop.Hlseg:
		out := []term.Expr{v.To}
		return append(out, v.Shared...)
	case prop.Hdllseg:
		out := []term.Expr{v.OB, v.OF, v.IB}
		return append(out, v.Shared...)
	}
	return nil
}

func strexpLeaves(se prop.Strexp) []term.Expr {
	switch v := se.(type) {
	case prop.Eexp:
		return []term.Expr{v.Exp}
	case prop.Estruct:
		var out []term.Expr
		for _, fv := range v.Fields {
			out = append(out, strexpLeaves(fv.Val)...)
		}
		return out
	case prop.Earray:
		var out []term.Expr
		for _, e := range v.Elems {
			out = append(out, strexpLeaves(e.Val)...)
		}
		return out
	}
	return nil
}
