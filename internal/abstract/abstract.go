// Package abstract implements predicate abstraction, list-segment
// folding, garbage collection of unreachable cells, and pathset join/
// collapse. It follows internal/ir/optimizations.go's battery-of-passes
// shape (a fixed list of CFG rewrite passes run in order until none
// fire), generalized from CFG canonicalization to heap-shape
// canonicalization.
package abstract

import (
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/prover"
	"github.com/biabductor/biabductor/internal/term"
)

// Abstractor bundles the prover and the configured abstraction level
// (spec_abs_level, CLI flag --spec-abs-level).
type Abstractor struct {
	Prover   *prover.Prover
	AbsLevel int
}

// New returns an Abstractor at the given spec_abs_level.
func New(pr *prover.Prover, absLevel int) *Abstractor {
	return &Abstractor{Prover: pr, AbsLevel: absLevel}
}

// pass is one rewrite step of the canonicalization battery: it returns
// the rewritten prop and whether it changed anything.
type pass func(*Abstractor, *prop.Prop, []term.Expr) (*prop.Prop, bool)

var passes = []pass{
	(*Abstractor).foldListSegments,
	(*Abstractor).garbageCollect,
	(*Abstractor).dedupAttributes,
}

// Abstract canonicalizes sigma: folds points-to chains into list
// segments, removes hpreds unreachable from the stack/globals (primed
// cells with no remaining path to a root), and applies any configured
// collapse rules, running the pass battery to a fixpoint.
// Property: p ⊨ abstract(p) for all p (abstraction only weakens).
func (a *Abstractor) Abstract(p *prop.Prop, roots []term.Expr) *prop.Prop {
	current := p
	for {
		changed := false
		for _, ps := range passes {
			next, did := ps(a, current, roots)
			if did {
				current = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	if a.AbsLevel > 0 {
		current, _ = a.collapsePredicates(current)
	}
	return current
}

// AbstractNoSymop is the variant used during error reporting: it runs the
// garbage-collection and attribute-dedup passes once each (no list-segment
// folding, no fixpoint, no collapse) and never consults the prover's symop-consuming decision
// procedures, so it cannot exhaust the iteration budget while the
// analysis is merely explaining an already-found fault.
func (a *Abstractor) AbstractNoSymop(p *prop.Prop, roots []term.Expr) *prop.Prop {
	current := p
	for _, ps := range []pass{(*Abstractor).garbageCollect, (*Abstractor).dedupAttributes} {
		next, _ := ps(a, current, roots)
		current = next
	}
	return current
}
