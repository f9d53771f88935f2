// Package term implements the term layer: identifiers, expressions, types,
// instructions, substitutions and attributes that the rest of the engine
// builds symbolic state out of.
package term

import (
	"fmt"
	"sync/atomic"
)

// IdentKind distinguishes the four provenances an identifier can have.
type IdentKind int

const (
	// Normal is a program-originated temporary (bound by Load, a call
	// return, etc).
	Normal IdentKind = iota
	// Primed is a local existential introduced during symbolic execution.
	Primed
	// Footprint is universal over an unknown input; it may appear only in
	// a Prop's footprint.
	Footprint
	// Path is a provenance marker generated during rearrangement.
	Path
)

func (k IdentKind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Primed:
		return "primed"
	case Footprint:
		return "footprint"
	case Path:
		return "path"
	default:
		return "unknown"
	}
}

// Ident is an identifier in the symbolic heap. Two idents are equal iff
// their Kind, Name and Stamp all agree.
type Ident struct {
	Kind  IdentKind
	Name  string
	Stamp int
}

// String renders an identifier the way issue traces and debug dumps print
// it, e.g. "n$12", "x'7", "x^8", "#p3".
func (id Ident) String() string {
	switch id.Kind {
	case Normal:
		return fmt.Sprintf("%s$%d", id.Name, id.Stamp)
	case Primed:
		return fmt.Sprintf("%s'%d", id.Name, id.Stamp)
	case Footprint:
		return fmt.Sprintf("%s^%d", id.Name, id.Stamp)
	case Path:
		return fmt.Sprintf("#%s%d", id.Name, id.Stamp)
	default:
		return fmt.Sprintf("?%s%d", id.Name, id.Stamp)
	}
}

// IsPrimed, IsFootprint and IsNormal are the three classification
// predicates the footprint-discipline invariant is stated over.
func (id Ident) IsPrimed() bool    { return id.Kind == Primed }
func (id Ident) IsFootprint() bool { return id.Kind == Footprint }
func (id Ident) IsNormal() bool    { return id.Kind == Normal }
func (id Ident) IsPath() bool      { return id.Kind == Path }

// Generator hands out fresh, process-local identifiers; its stamp is
// read and updated atomically. Per ("The
// identifier generator is process-local"), one Generator belongs to
// exactly one analyzed procedure. On-demand re-entry snapshots and
// restores it (see internal/ondemand).
type Generator struct {
	stamp int64
}

// NewGenerator returns a generator starting from stamp zero.
func NewGenerator() *Generator {
	return &Generator{}
}

// Fresh returns a new identifier of the given kind with a strictly
// increasing stamp.
func (g *Generator) Fresh(kind IdentKind, baseName string) Ident {
	n := atomic.AddInt64(&g.stamp, 1)
	return Ident{Kind: kind, Name: baseName, Stamp: int(n)}
}

// Snapshot captures the generator's current stamp so it can later be
// restored by on-demand re-entry.
func (g *Generator) Snapshot() int64 {
	return atomic.LoadInt64(&g.stamp)
}

// Restore rewinds the generator to a previously captured snapshot.
func (g *Generator) Restore(snap int64) {
	atomic.StoreInt64(&g.stamp, snap)
}
