// Package worklist drives one procedure's intraprocedural fixpoint: a
// priority-ordered todo queue over CFG nodes, a per-node
// accumulated incoming pathset ("visited"), and the join/collapse +
// differential re-enqueue rule that decides when a node's incoming state
// has genuinely changed enough to warrant re-processing.
package worklist

import (
	"sort"

	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/symexec"
)

// shapeKey groups path-carrying props by heap shape only, mirroring
// internal/abstract's PathsetJoin grouping but kept local
// here since this package also has to carry a Path alongside each Prop,
// which the shape-only abstract.PathsetJoin/Collapse helpers drop.
func shapeKey(p *prop.Prop) string {
	shapeOnly := &prop.Prop{Sigma: p.Sigma, Sub: p.Sub}
	return shapeOnly.CanonicalKey()
}

// joinPathSet merges same-shape entries, keeping only the pure facts
// common to the whole group and combining their provenance via
// summary.Join, the path-aware counterpart of abstract.PathsetJoin.
func joinPathSet(items []symexec.PathProp) []symexec.PathProp {
	groups := make(map[string][]symexec.PathProp)
	var order []string
	for _, it := range items {
		key := shapeKey(it.Prop)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], it)
	}
	out := make([]symexec.PathProp, 0, len(order))
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		out = append(out, joinGroup(group))
	}
	return out
}

func joinGroup(group []symexec.PathProp) symexec.PathProp {
	common := make([]prop.Atom, 0, len(group[0].Prop.Pi))
	for _, atom := range group[0].Prop.Pi {
		key := atom.String()
		inAll := true
		for _, other := range group[1:] {
			found := false
			for _, a2 := range other.Prop.Pi {
				if a2.String() == key {
					found = true
					break
				}
			}
			if !found {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, atom)
		}
	}
	path := group[0].Path
	for _, other := range group[1:] {
		path = summary.Join(path, other.Path)
	}
	return symexec.PathProp{Prop: group[0].Prop.WithPi(common), Path: path}
}

// collapsePathSet drops entries subsumed by a weaker same-shape sibling,
// the path-aware counterpart of abstract.PathsetCollapse.
func collapsePathSet(items []symexec.PathProp) []symexec.PathProp {
	out := make([]symexec.PathProp, 0, len(items))
	for i, it := range items {
		subsumed := false
		for j, other := range items {
			if i == j {
				continue
			}
			if shapeKey(it.Prop) == shapeKey(other.Prop) && piSubset(other.Prop.Pi, it.Prop.Pi) &&
				(len(other.Prop.Pi) < len(it.Prop.Pi) || (len(other.Prop.Pi) == len(it.Prop.Pi) && j < i)) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out = append(out, it)
		}
	}
	return out
}

func piSubset(small, big []prop.Atom) bool {
	for _, a := range small {
		found := false
		for _, b := range big {
			if a.String() == b.String() {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// sameSet decides whether two pathsets describe the same abstract state,
// the equality the differential re-enqueue rule is stated over: a node
// is re-enqueued only when its proposed incoming set's signature differs
// from what it was last processed with.
func sameSet(a, b []symexec.PathProp) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := signature(a), signature(b)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func signature(ps []symexec.PathProp) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Prop.CanonicalKey()
	}
	sort.Strings(out)
	return out
}
