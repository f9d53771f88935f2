// Package summary implements the Spec/Summary/Path data model: the
// per-procedure specification the driver produces, the metadata
// envelope (Summary) the orchestrator persists, and the provenance Path
// every symbolic-execution error or post-condition carries back to its
// source. Grounded on internal/ir.BasicBlock (Predecessors/Successors
// bookkeeping reused for Path's node-sequence bookkeeping) and
// internal/semantic.ContextRegistry (per-run owned-state shape reused
// for SpecTable's per-procedure ownership discipline).
package summary

import (
	"github.com/segmentio/ksuid"

	"github.com/biabductor/biabductor/internal/term"
)

// PathStep is one entry of a Path's provenance trace: a node visited, or
// a call site descended into.
type PathStep struct {
	NodeID string
	Loc    term.Loc
	Descr  string // e.g. "returned from g", set by add_call/combine
	Exn    bool   // true if this step records an exception edge taken
}

// Path is the tree-shaped provenance trace describes: a node
// sequence plus calls, identified by a session id so that traces produced
// by parallel tabulation calls never collide when merged.
type Path struct {
	Session ksuid.KSUID
	Steps   []PathStep
	Calls   []*Path // nested call traces, recorded by AddCall
}

// NewPath starts a fresh path with a new session id.
func NewPath() *Path {
	return &Path{Session: ksuid.New()}
}

// Extend appends one node visit to the path, optionally flagging it as an
// exception edge.
func (p *Path) Extend(nodeID string, loc term.Loc, exn bool) *Path {
	next := &Path{Session: p.Session, Steps: append(append([]PathStep(nil), p.Steps...), PathStep{NodeID: nodeID, Loc: loc, Exn: exn}), Calls: p.Calls}
	return next
}

// AddCall records a nested call's path (: "Path ... supports
// extend(node, exn?, session), add_call, iter_longest_sequence, join").
func (p *Path) AddCall(callee *Path, descr string) *Path {
	tagged := &Path{Session: callee.Session, Steps: callee.Steps, Calls: callee.Calls}
	if len(tagged.Steps) > 0 {
		tagged.Steps[len(tagged.Steps)-1].Descr = descr
	}
	next := &Path{Session: p.Session, Steps: p.Steps, Calls: append(append([]*Path(nil), p.Calls...), tagged)}
	return next
}

// IterLongestSequence flattens the path into its single longest node
// sequence (depth-first, always descending into the last recorded call at
// each step), the sequence an error trace renders as `bug_trace`.
func (p *Path) IterLongestSequence() []PathStep {
	var out []PathStep
	out = append(out, p.Steps...)
	if len(p.Calls) > 0 {
		out = append(out, p.Calls[len(p.Calls)-1].IterLongestSequence()...)
	}
	return out
}

// Join merges two paths recorded for the same session into one by
// concatenating Steps/Calls observed so far; used when a join-node
// accumulator combines two path⊕prop pairs that share a prop shape.
func Join(a, b *Path) *Path {
	return &Path{
		Session: a.Session,
		Steps:   append(append([]PathStep(nil), a.Steps...), b.Steps...),
		Calls:   append(append([]*Path(nil), a.Calls...), b.Calls...),
	}
}
