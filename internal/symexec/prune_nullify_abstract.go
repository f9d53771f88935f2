package symexec

import (
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// execPrune implements Prune transfer function: star the
// branch condition (or its negation) into Pi and drop the path if that
// makes the state inconsistent — a Go rendering of the source analyzer's
// "prune_polarity" plus an immediate satisfiability check rather than
// deferring inconsistency detection to the next Abstract.
func (e *Executor) execPrune(pp PathProp, in term.Prune) (Outcome, error) {
	one := term.Const(term.IntConst(1))
	zero := term.Const(term.IntConst(0))
	var atom prop.Atom
	if in.TrueBranch {
		atom = prop.Atom{Op: prop.Eq, Left: in.Cond, Right: one}
	} else {
		atom = prop.Atom{Op: prop.Eq, Left: in.Cond, Right: zero}
	}
	next := pp.Prop.AddPi(atom)
	if e.Prover.CheckInconsistency(next) {
		return Outcome{}, nil
	}
	return Outcome{Normal: []PathProp{{Prop: next, Path: pp.Path}}}, nil
}

// execNullify implements Nullify transfer function: drop the
// stack cell for a pvar going out of scope, so a later Abstract's
// garbage-collection pass can reclaim whatever it pointed to if nothing
// else still roots it.
func (e *Executor) execNullify(pp PathProp, in term.Nullify) (Outcome, error) {
	root := term.Lvar{Pvar: in.Pvar}
	it := prop.Find(pp.Prop, prop.IsRoot(root))
	if it == nil {
		return Outcome{Normal: []PathProp{pp}}, nil
	}
	next := it.RemoveCurrThenToProp()
	return Outcome{Normal: []PathProp{{Prop: next, Path: pp.Path}}}, nil
}

// execAbstract implements Abstract transfer function:
// predicate abstraction (list-segment folding, unreachable-cell GC,
// attribute dedup), using the caller-supplied Roots function to know
// which expressions are still reachable from the stack/globals.
func (e *Executor) execAbstract(pp PathProp, in term.Abstract) (Outcome, error) {
	var roots []term.Expr
	if e.Roots != nil {
		roots = e.Roots(pp.Prop)
	}
	next := e.Abstractor.Abstract(pp.Prop, roots)
	return Outcome{Normal: []PathProp{{Prop: next, Path: pp.Path}}}, nil
}
