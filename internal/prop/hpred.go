package prop

import (
	"fmt"

	"github.com/biabductor/biabductor/internal/term"
)

// LsegKind distinguishes a non-empty list segment from a possibly-empty
// one.
type LsegKind int

const (
	LsegNE LsegKind = iota // non-empty
	LsegPE                 // possibly empty
)

func (k LsegKind) String() string {
	if k == LsegNE {
		return "lseg_ne"
	}
	return "lseg_pe"
}

// HparaParam names the formal parameters of an lseg body template: the
// segment head, the segment tail, and any extra shared parameters.
type HparaParam struct {
	Root  term.Ident
	Next  term.Ident
	Extra []term.Ident
}

// Hpara is an lseg body template: the one-cell unfolding that, chained,
// describes the whole segment. Body is itself a small Sigma (using Root
// and Next as its own free variables) so a single unfold step can be
// produced by substituting fresh actuals for Root/Next.
type Hpara struct {
	Params HparaParam
	Body   []Hpred
}

// HparaDllParam names the formal parameters of a dllseg body template.
type HparaDllParam struct {
	Iter  term.Ident // the cell currently being unfolded
	Fwd   term.Ident // forward-link formal
	Bwd   term.Ident // backward-link formal
	Extra []term.Ident
}

// HparaDll is a doubly-linked body template, analogous to Hpara.
type HparaDll struct {
	Params HparaDllParam
	Body   []Hpred
}

// Hpred is a heap predicate: one piece of the current (or footprint)
// heap.
type Hpred interface {
	isHpred()
	String() string
	// Root is the base location expression this predicate is anchored
	// at (is_root(p, base, lexp) in dispatches on this).
	Root() term.Expr
}

// Hpointsto is `lhs |-> strexp : texp`.
type Hpointsto struct {
	Lhs   term.Expr
	Se    Strexp
	Texp  term.Expr // a Sizeof, or a type-name constant
}

func (Hpointsto) isHpred()        {}
func (h Hpointsto) Root() term.Expr { return h.Lhs }
func (h Hpointsto) String() string {
	return fmt.Sprintf("%s |-> %s : %s", h.Lhs, h.Se, h.Texp)
}

// Hlseg is a singly-linked list segment from e_from to e_to.
type Hlseg struct {
	Kind   LsegKind
	Para   Hpara
	From   term.Expr
	To     term.Expr
	Shared []term.Expr
}

func (Hlseg) isHpred()        {}
func (h Hlseg) Root() term.Expr { return h.From }
func (h Hlseg) String() string {
	return fmt.Sprintf("%s(%s, %s)", h.Kind, h.From, h.To)
}

// Hdllseg is a doubly-linked segment with four endpoints: iF (forward
// iteration start), oB (outer backward link), oF (outer forward link),
// iB (backward iteration start).
type Hdllseg struct {
	Kind       LsegKind
	Para       HparaDll
	IF, OB, OF, IB term.Expr
	Shared     []term.Expr
}

func (Hdllseg) isHpred()        {}
func (h Hdllseg) Root() term.Expr { return h.IF }
func (h Hdllseg) String() string {
	return fmt.Sprintf("dllseg_%s(%s, %s, %s, %s)", h.Kind, h.IF, h.OB, h.OF, h.IB)
}
