package abstract

import "github.com/biabductor/biabductor/internal/prop"

// shapeKey groups props by their Sigma shape only (rendered with Pi
// dropped), the key PathsetJoin merges within: two props describing the
// same heap structure but different numeric facts are join candidates,
// two props with genuinely different shapes are not.
func shapeKey(p *prop.Prop) string {
	shapeOnly := &prop.Prop{Sigma: p.Sigma, Sub: p.Sub}
	return shapeOnly.CanonicalKey()
}

// PathsetJoin merges props that share a heap shape by keeping only the
// pure facts common to every member of the group.
func PathsetJoin(ps []*prop.Prop) []*prop.Prop {
	groups := make(map[string][]*prop.Prop)
	order := make([]string, 0)
	for _, p := range ps {
		key := shapeKey(p)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}
	out := make([]*prop.Prop, 0, len(order))
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

func joinGroup(group []*prop.Prop) *prop.Prop {
	common := make([]prop.Atom, 0, len(group[0].Pi))
	for _, atom := range group[0].Pi {
		key := atom.String()
		inAll := true
		for _, other := range group[1:] {
			found := false
			for _, a2 := range other.Pi {
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
	return group[0].WithPi(common)
}

// PathsetCollapse drops props subsumed by a weaker sibling already in the
// set: p2 is redundant once some p1 has the same shape and p1's Pi is a
// subset of p2's Pi, since any state p2 describes is already covered by
// the weaker p1.
func PathsetCollapse(ps []*prop.Prop) []*prop.Prop {
	out := make([]*prop.Prop, 0, len(ps))
	for i, p := range ps {
		subsumed := false
		for j, q := range ps {
			if i == j {
				continue
			}
			if shapeKey(p) == shapeKey(q) && piSubset(q.Pi, p.Pi) && (len(q.Pi) < len(p.Pi) || (len(q.Pi) == len(p.Pi) && j < i)) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			out = append(out, p)
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
