package specstore

import (
	"encoding/gob"

	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

// init registers every concrete implementor of the term/prop layer's
// closed interfaces (Expr, Type, Offset, Attr, Instr, Hpred, Strexp) with
// encoding/gob, the same way aclements-go-misc/gopool/pipechan.go's
// gob-based pipe transport registers concrete types behind
// a bare interface{} channel. Without this a Summary's Payload can't
// round-trip through gob.Encode/Decode at all: gob needs a registered
// concrete type for every value that reaches it through an interface
// field.
func init() {
	gob.Register(term.Var{})
	gob.Register(term.UnOp{})
	gob.Register(term.BinOp{})
	gob.Register(term.Cast{})
	gob.Register(term.Lvar{})
	gob.Register(term.Lfield{})
	gob.Register(term.Lindex{})
	gob.Register(term.Sizeof{})
	gob.Register(term.Const{})

	gob.Register(term.OffFld{})
	gob.Register(term.OffIndex{})

	gob.Register(term.PrimitiveType{})
	gob.Register(term.PtrType{})
	gob.Register(term.ArrayType{})
	gob.Register(term.StructType{})
	gob.Register(term.NamedType{})

	gob.Register(term.Aresource{})
	gob.Register(term.Adangling{})
	gob.Register(term.Aundef{})
	gob.Register(term.Ataint{})
	gob.Register(term.Auntaint{})
	gob.Register(term.Aretval{})
	gob.Register(term.Adiv0{})
	gob.Register(term.AobjcNull{})
	gob.Register(term.Nullable{})

	gob.Register(term.Load{})
	gob.Register(term.Store{})
	gob.Register(term.Prune{})
	gob.Register(term.Call{})
	gob.Register(term.Nullify{})
	gob.Register(term.Abstract{})
	gob.Register(term.GotoNode{})

	gob.Register(prop.Hpointsto{})
	gob.Register(prop.Hlseg{})
	gob.Register(prop.Hdllseg{})

	gob.Register(prop.Eexp{})
	gob.Register(prop.Estruct{})
	gob.Register(prop.Earray{})
}
