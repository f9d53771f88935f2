package summary

import (
	"sort"

	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// JProp is the algebraic sum a Spec's precondition is expressed over: a
// bare Prop, or two join-accumulated Props recorded alongside the joined
// result (: "JProp = Prop(n, p) | Joined(n, p, jp, jp)"). Keeping
// both children lets error reporting walk back to whichever branch a
// counterexample actually came from instead of only seeing the widened
// shape, the same "keep the pre-join shape around" idea as
// internal/semantic's join-point diagnostics.
type JProp struct {
	N        int // node id the join happened at, 0 for a bare Prop
	P        *prop.Prop
	Lhs, Rhs *JProp // nil unless this is a Joined node
}

// NewProp wraps a bare Prop as a leaf JProp.
func NewProp(p *prop.Prop) JProp { return JProp{P: p} }

// NewJoined records a join-node accumulation of two prior JProps.
func NewJoined(n int, p *prop.Prop, lhs, rhs JProp) JProp {
	return JProp{N: n, P: p, Lhs: &lhs, Rhs: &rhs}
}

// IsJoined reports whether this JProp records a join (as opposed to a
// bare leaf Prop).
func (j JProp) IsJoined() bool { return j.Lhs != nil }

// VisitedKey is one entry of a Spec's visited set: a node id paired with
// the sorted line numbers reached while deriving this spec, used to
// report "dead path" diagnostics and to dedupe specs that differ only in
// irrelevant line bookkeeping.
type VisitedKey struct {
	NodeID string
	Lines  []int
}

// PostEntry is one (Prop, Path) pair recorded among a Spec's posts.
type PostEntry struct {
	Prop *prop.Prop
	Path *Path
}

// Spec is a single inferred precondition/postcondition pair for a
// procedure: "{pre: JProp, posts: list (Prop x Path), visited:
// set (node_id x list line)}".
type Spec struct {
	Pre     JProp
	Posts   []PostEntry
	Visited []VisitedKey
}

// NewSpec builds a Spec from a precondition, grouping the already-joined
// posts and recording the visited set observed while deriving it.
func NewSpec(pre JProp, posts []PostEntry, visited []VisitedKey) *Spec {
	s := &Spec{Pre: pre, Posts: append([]PostEntry(nil), posts...), Visited: append([]VisitedKey(nil), visited...)}
	sort.Slice(s.Visited, func(i, j int) bool { return s.Visited[i].NodeID < s.Visited[j].NodeID })
	return s
}

// VisitedNode reports whether a node id is present in the spec's visited
// set, used by collect_analysis_result to decide dead-code diagnostics.
func (s *Spec) VisitedNode(id string) bool {
	for _, v := range s.Visited {
		if v.NodeID == id {
			return true
		}
	}
	return false
}

// RenameSuffix gives every footprint identifier free in the footprint
// part (SigmaFP/PiFP) of the spec's posts and precondition a fresh
// footprint identifier named after it with the given suffix, and rewrites
// the current and footprint parts of every prop in the spec with that
// renaming; program variables are not renamed. This is the "freshen" step
// tabulation performs before starring a callee spec into the caller's
// prop. Grounded on
// internal/ast's WithX node-rewriting idiom, generalized here to an
// entire Spec tree.
func (s *Spec) RenameSuffix(gen *term.Generator, suffix string) *Spec {
	sub := term.NewSub()
	for _, post := range s.Posts {
		sub = extendFresh(sub, post.Prop, gen, suffix)
	}
	sub = extendFresh(sub, s.Pre.P, gen, suffix)
	rename := func(p *prop.Prop) *prop.Prop {
		q := p.Apply(sub)
		for i, h := range q.SigmaFP {
			q.SigmaFP[i] = prop.ApplyHpred(h, sub)
		}
		for i, a := range q.PiFP {
			q.PiFP[i] = a.Apply(sub)
		}
		return q
	}
	renamedPre := renameJProp(s.Pre, rename)
	posts := make([]PostEntry, len(s.Posts))
	for i, post := range s.Posts {
		posts[i] = PostEntry{Prop: rename(post.Prop), Path: post.Path}
	}
	return &Spec{Pre: renamedPre, Posts: posts, Visited: s.Visited}
}

func renameJProp(j JProp, rename func(*prop.Prop) *prop.Prop) JProp {
	out := JProp{N: j.N, P: rename(j.P)}
	if j.IsJoined() {
		l := renameJProp(*j.Lhs, rename)
		r := renameJProp(*j.Rhs, rename)
		out.Lhs, out.Rhs = &l, &r
	}
	return out
}

// extendFresh adds a binding id -> fresh-footprint-var for every
// footprint identifier free in p that sub does not already bind.
func extendFresh(sub *term.Sub, p *prop.Prop, gen *term.Generator, suffix string) *term.Sub {
	if p == nil {
		return sub
	}
	for _, id := range p.FreeVarsFP() {
		if _, ok := sub.Lookup(id); !ok {
			fresh := gen.Fresh(term.Footprint, id.Name+suffix)
			sub = sub.Extend(id, term.Var{Id: fresh})
		}
	}
	return sub
}
