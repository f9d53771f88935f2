package prover

import "github.com/biabductor/biabductor/internal/prop"
import "github.com/biabductor/biabductor/internal/term"

// unionFind is a tiny syntactic congruence structure built fresh from a
// Pi for one query: equalities union expressions' string keys into the
// same class; disequalities are recorded separately since they are not
// transitive. This backs CheckAtom/CheckInconsistency without pulling in
// a full arithmetic decision procedure, matching the Non-goals ("soundness
// w.r.t. the concrete semantics" is explicitly out of scope).
type unionFind struct {
	parent map[string]string
	disequal map[string]map[string]bool
}

func buildUnionFind(pi []prop.Atom) *unionFind {
	uf := &unionFind{parent: make(map[string]string), disequal: make(map[string]map[string]bool)}
	for _, a := range pi {
		if a.Op == prop.Eq {
			uf.union(a.Left, a.Right)
		}
	}
	for _, a := range pi {
		if a.Op == prop.Neq {
			if _, _, isAttr := a.AsAttr(); isAttr {
				continue
			}
			uf.recordDisequal(a.Left, a.Right)
		}
	}
	return uf
}

func (uf *unionFind) find(key string) string {
	if _, ok := uf.parent[key]; !ok {
		uf.parent[key] = key
		return key
	}
	if uf.parent[key] != key {
		uf.parent[key] = uf.find(uf.parent[key])
	}
	return uf.parent[key]
}

func (uf *unionFind) union(a, b term.Expr) {
	ra, rb := uf.find(a.String()), uf.find(b.String())
	if ra != rb {
		uf.parent[ra] = rb
	}
}

func (uf *unionFind) sameClass(a, b term.Expr) bool {
	if term.Equal(a, b) {
		return true
	}
	return uf.find(a.String()) == uf.find(b.String())
}

func (uf *unionFind) recordDisequal(a, b term.Expr) {
	ra, rb := uf.find(a.String()), uf.find(b.String())
	if uf.disequal[ra] == nil {
		uf.disequal[ra] = make(map[string]bool)
	}
	uf.disequal[ra][rb] = true
	if uf.disequal[rb] == nil {
		uf.disequal[rb] = make(map[string]bool)
	}
	uf.disequal[rb][ra] = true
}

func (uf *unionFind) knownDisequal(a, b term.Expr, pi []prop.Atom) bool {
	ra, rb := uf.find(a.String()), uf.find(b.String())
	if uf.disequal[ra] != nil && uf.disequal[ra][rb] {
		return true
	}
	// Two distinct integer literals are disequal by construction.
	ac, aok := a.(term.Const)
	bc, bok := b.(term.Const)
	if aok && bok && ac.Kind == term.ConstInt && bc.Kind == term.ConstInt {
		return ac.IntVal != bc.IntVal
	}
	return false
}
