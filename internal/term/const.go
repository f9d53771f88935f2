package term

import "fmt"

// ConstKind tags the variants of Const.
type ConstKind int

const (
	ConstInt ConstKind = iota
	ConstStr
	ConstFloat
	ConstCfun      // a function pointer/name constant
	ConstCclass    // a class/type literal constant
	ConstAttribute // wraps an Attr as a pseudo-value (see AttrAtom)
)

// Const is the algebraic-constant variant of Expr.
type Const struct {
	Kind      ConstKind
	IntVal    int64
	StrVal    string
	FloatVal  float64
	FuncName  string
	ClassName string
	Attr      Attr
}

func (Const) isExpr() {}

func (c Const) String() string {
	switch c.Kind {
	case ConstInt:
		return fmt.Sprintf("%d", c.IntVal)
	case ConstStr:
		return fmt.Sprintf("%q", c.StrVal)
	case ConstFloat:
		return fmt.Sprintf("%g", c.FloatVal)
	case ConstCfun:
		return "&" + c.FuncName
	case ConstCclass:
		return "class " + c.ClassName
	case ConstAttribute:
		return c.Attr.String()
	default:
		return "<const?>"
	}
}

// IntConst, StrConst and FloatConst are convenience constructors.
func IntConst(v int64) Const    { return Const{Kind: ConstInt, IntVal: v} }
func StrConst(v string) Const   { return Const{Kind: ConstStr, StrVal: v} }
func FloatConst(v float64) Const { return Const{Kind: ConstFloat, FloatVal: v} }
func CfunConst(name string) Const { return Const{Kind: ConstCfun, FuncName: name} }
func CclassConst(name string) Const { return Const{Kind: ConstCclass, ClassName: name} }
func AttributeConst(a Attr) Const { return Const{Kind: ConstAttribute, Attr: a} }

// IsZero reports whether this constant is the integer (or null-pointer)
// literal zero, used pervasively by the prover's null checks.
func (c Const) IsZero() bool {
	return c.Kind == ConstInt && c.IntVal == 0
}

// IsMinusOne reports whether this constant is -1, the sentinel used for
// a dangling-pointer marker in the dereference-check table.
func (c Const) IsMinusOne() bool {
	return c.Kind == ConstInt && c.IntVal == -1
}
