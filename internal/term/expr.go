package term

import "fmt"

// Expr is the algebraic sum of symbolic expressions.
type Expr interface {
	isExpr()
	String() string
}

// Var wraps a symbolic identifier as an expression.
type Var struct{ Id Ident }

func (Var) isExpr()          {}
func (v Var) String() string { return v.Id.String() }

// UnOp applies a unary operator to an operand.
type UnOp struct {
	Op   string // "-", "!", "~"
	Expr Expr
	Typ  Type
}

func (UnOp) isExpr()          {}
func (u UnOp) String() string { return u.Op + u.Expr.String() }

// BinOp applies a binary operator to two operands.
type BinOp struct {
	Op          string // "+", "-", "*", "/", "%", "==", "!=", "<", "<=", ">", ">=", "&&", "||"
	Left, Right Expr
}

func (BinOp) isExpr() {}
func (b BinOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// Cast narrows or widens an expression to a target type.
type Cast struct {
	Typ  Type
	Expr Expr
}

func (Cast) isExpr()          {}
func (c Cast) String() string { return fmt.Sprintf("(%s)%s", c.Typ, c.Expr) }

// Lvar is a program variable treated as an expression (its address, for
// Store/Load targets before rearrangement resolves it to a heap cell).
type Lvar struct{ Pvar Pvar }

func (Lvar) isExpr()          {}
func (l Lvar) String() string { return "&" + l.Pvar.String() }

// Lfield projects a field off a base expression.
type Lfield struct {
	Base  Expr
	Field string
	Typ   Type // the struct type of Base
}

func (Lfield) isExpr()          {}
func (l Lfield) String() string { return fmt.Sprintf("%s.%s", l.Base, l.Field) }

// Lindex projects an array element off a base expression.
type Lindex struct {
	Base  Expr
	Index Expr
}

func (Lindex) isExpr()          {}
func (l Lindex) String() string { return fmt.Sprintf("%s[%s]", l.Base, l.Index) }

// SubtypeInfo refines a Sizeof expression the way the source analyzer
// tracks "exact size known" vs. "subtype unknown" for type-size checks
// (prover's CheckTypeSizeLeq) and class-cast checks.
type SubtypeInfo struct {
	Exact     bool // size/type is exactly known, not just an upper bound
	Dynamic   bool // size should be read from a dynamic-type tag, not Typ
}

// Sizeof denotes the byte size (or element count) of a type, with
// subtype refinement info carried alongside so implication can reason
// about type-size deltas (frame_typ/missing_typ).
type Sizeof struct {
	Typ  Type
	Info SubtypeInfo
}

func (Sizeof) isExpr()          {}
func (s Sizeof) String() string { return fmt.Sprintf("sizeof(%s)", s.Typ) }

// Offset is one step of a location-expression path: either a field
// projection or an array-index projection.
type Offset interface {
	isOffset()
	String() string
}

// OffFld projects field f of type t.
type OffFld struct {
	Field string
	Typ   Type
}

func (OffFld) isOffset()      {}
func (o OffFld) String() string { return "." + o.Field }

// OffIndex projects array index e.
type OffIndex struct{ Index Expr }

func (OffIndex) isOffset()      {}
func (o OffIndex) String() string { return fmt.Sprintf("[%s]", o.Index) }

// Root strips all offsets from a location expression, returning the base
// expression the offsets are applied to.
func Root(lexp Expr) Expr {
	for {
		switch e := lexp.(type) {
		case Lfield:
			lexp = e.Base
		case Lindex:
			lexp = e.Base
		default:
			return lexp
		}
	}
}

// Offsets returns the offset path of a location expression, root-to-leaf.
func Offsets(lexp Expr) []Offset {
	var rev []Offset
	for {
		switch e := lexp.(type) {
		case Lfield:
			rev = append(rev, OffFld{Field: e.Field, Typ: e.Typ})
			lexp = e.Base
		case Lindex:
			rev = append(rev, OffIndex{Index: e.Index})
			lexp = e.Base
		default:
			// reverse rev in place
			for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
				rev[i], rev[j] = rev[j], rev[i]
			}
			return rev
		}
	}
}

// Equal is syntactic (post-substitution) equality of two expressions.
// The prover decides *semantic* equality; this is the cheap structural
// check used by normalization to dedupe atoms/hpreds.
func Equal(a, b Expr) bool {
	return a.String() == b.String()
}
