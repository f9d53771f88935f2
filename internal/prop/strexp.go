// Package prop implements the proposition layer: separation-logic
// propositions over a symbolic heap (sigma/pi, footprint counterparts,
// substitution), structured values (Strexp), heap predicates (Hpred) and
// the prop iterator used to focus rearrangement and symbolic execution on
// one heap cell at a time.
package prop

import (
	"fmt"
	"strings"

	"github.com/biabductor/biabductor/internal/term"
)

// InstKind tags the provenance an Strexp's Inst records.
type InstKind int

const (
	InstNone InstKind = iota
	InstAlloc
	InstUpdate
	InstRearrange
	InstReturnFromCall
)

// Inst carries provenance metadata for a structured value: how it came to
// exist, where, and (for InstReturnFromCall) whether it arose on a
// null-case branch — the flag the dereference-check explainer uses to
// report "was set to null by call to g()" instead of a bare null check.
type Inst struct {
	Kind      InstKind
	Loc       term.Loc
	Callee    string // only meaningful for InstReturnFromCall
	NullCase  bool
}

// Strexp is the structured value stored at a heap location.
type Strexp interface {
	isStrexp()
	String() string
}

// FldVal pairs a field name with its structured value, used by Estruct.
type FldVal struct {
	Field string
	Val   Strexp
}

// IdxVal pairs an array index expression with its structured value, used
// by Earray.
type IdxVal struct {
	Index term.Expr
	Val   Strexp
}

// Eexp is a plain scalar value.
type Eexp struct {
	Exp  term.Expr
	Inst Inst
}

func (Eexp) isStrexp() {}
func (e Eexp) String() string { return e.Exp.String() }

// Estruct is a struct value: an ordered list of (field, value) pairs.
type Estruct struct {
	Fields []FldVal
	Inst   Inst
}

func (Estruct) isStrexp() {}
func (e Estruct) String() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s:%s", f.Field, f.Val)
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// Get returns the value bound to a field, if present.
func (e Estruct) Get(field string) (Strexp, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Val, true
		}
	}
	return nil, false
}

// With returns a copy of e with field bound to val (replacing any
// existing binding), preserving field order the way Estruct-construction
// helpers preserve declaration order.
func (e Estruct) With(field string, val Strexp) Estruct {
	out := make([]FldVal, 0, len(e.Fields)+1)
	replaced := false
	for _, f := range e.Fields {
		if f.Field == field {
			out = append(out, FldVal{Field: field, Val: val})
			replaced = true
		} else {
			out = append(out, f)
		}
	}
	if !replaced {
		out = append(out, FldVal{Field: field, Val: val})
	}
	return Estruct{Fields: out, Inst: e.Inst}
}

// Earray is an array value: a symbolic size plus a sparse list of
// (index, value) pairs for indices the analysis has already materialized.
type Earray struct {
	Size   term.Expr
	Elems  []IdxVal
	Inst   Inst
}

func (Earray) isStrexp() {}
func (e Earray) String() string {
	parts := make([]string, len(e.Elems))
	for i, el := range e.Elems {
		parts[i] = fmt.Sprintf("%s:%s", el.Index, el.Val)
	}
	return fmt.Sprintf("[%s|%s]", e.Size, strings.Join(parts, "; "))
}

// At returns the value bound to index idx by syntactic match, if any.
func (e Earray) At(idx term.Expr) (Strexp, bool) {
	for _, el := range e.Elems {
		if term.Equal(el.Index, idx) {
			return el.Val, true
		}
	}
	return nil, false
}

// With returns a copy of e with idx bound to val.
func (e Earray) With(idx term.Expr, val Strexp) Earray {
	out := make([]IdxVal, 0, len(e.Elems)+1)
	replaced := false
	for _, el := range e.Elems {
		if term.Equal(el.Index, idx) {
			out = append(out, IdxVal{Index: idx, Val: val})
			replaced = true
		} else {
			out = append(out, el)
		}
	}
	if !replaced {
		out = append(out, IdxVal{Index: idx, Val: val})
	}
	return Earray{Size: e.Size, Elems: out, Inst: e.Inst}
}
