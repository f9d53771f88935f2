package cfgmodel

import "github.com/biabductor/biabductor/internal/term"

// The structs below are the participle grammar for the textual CFG
// fixture format. They deliberately
// cover a narrow slice of term.Expr/term.Instr — enough to write a hand
// edited test fixture exercising the driver end to end — not a general
// front-end; a real compiler front-end hands cfgmodel.Program to the core
// as Go structs directly and never touches this grammar.

// FileAST is the parse root: zero or more procedure declarations.
type FileAST struct {
	Procs []*ProcAST `@@*`
}

// ProcAST is one `proc "name"(formals) -> rettype { nodes }` declaration.
type ProcAST struct {
	Name    string        `"proc" @String`
	Formals []*FormalAST  `"(" (@@ ("," @@)*)? ")"`
	RetType *TypeRefAST   `("->" @@)?`
	Nodes   []*NodeAST    `"{" @@* "}"`
}

// FormalAST is one `name : type` formal parameter.
type FormalAST struct {
	Name string      `@Ident ":"`
	Type *TypeRefAST `@@`
}

// TypeRefAST is a type reference: a name plus an optional trailing `*`
// for pointer types and `[N]`/`[]` for array types.
type TypeRefAST struct {
	Name    string `@Ident`
	Ptr     bool   `( @"*"`
	ArrSize *int   `| "[" @Int? "]" )?`
}

// ToType converts a TypeRefAST into a term.Type.
func (t *TypeRefAST) ToType() term.Type {
	if t == nil {
		return term.NewPrimitive(term.Void)
	}
	var base term.Type
	switch t.Name {
	case "int", "float", "bool", "void", "string":
		base = term.NewPrimitive(term.Primitive(t.Name))
	default:
		base = term.NamedType{Name: t.Name}
	}
	if t.Ptr {
		return term.PtrType{Elem: base}
	}
	if t.ArrSize != nil {
		return term.ArrayType{Elem: base, Size: *t.ArrSize}
	}
	return base
}

// NodeAST is one `node id kind -> succ,succ exn -> exn,exn { instrs }`
// declaration.
type NodeAST struct {
	ID       string       `"node" @Ident`
	Kind     string       `@Ident`
	Succs    []string     `("->" @Ident ("," @Ident)*)?`
	ExnSuccs []string     `("exn" "->" @Ident ("," @Ident)*)?`
	Instrs   []*InstrAST  `("{" @@* "}")?`
}

// InstrAST is a tagged union over the instruction kinds the fixture
// grammar supports, distinguished by the leading keyword.
type InstrAST struct {
	Load     *LoadAST     `( "load" @@`
	Store    *StoreAST    `| "store" @@`
	Prune    *PruneAST    `| "prune" @@`
	Nullify  *NullifyAST  `| "nullify" @@`
	Abstract *AbstractAST `| "abstract" @@`
	Call     *CallAST     `| "call" @@ )`
	Semi     bool         `";"?`
}

// CallAST: `[ret,ret =] callee(args)`
type CallAST struct {
	Rets   []string   `( @Ident ("," @Ident)* "=" )?`
	Callee string     `@Ident`
	Args   []*ExprAST `"(" (@@ ("," @@)*)? ")"`
}

// LoadAST: `id = lexp : type`
type LoadAST struct {
	ID   string      `@Ident "="`
	Lexp *ExprAST    `@@ ":"`
	Type *TypeRefAST `@@`
}

// StoreAST: `lexp = rhs : type`
type StoreAST struct {
	Lexp *ExprAST    `@@ "="`
	Rhs  *ExprAST    `@@ ":"`
	Type *TypeRefAST `@@`
}

// PruneAST: `cond true|false` (true_branch literal)
type PruneAST struct {
	Cond   *ExprAST `@@`
	Branch string   `@Ident`
}

// NullifyAST: `name`
type NullifyAST struct {
	Name string `@Ident`
}

// AbstractAST carries no payload beyond the keyword.
type AbstractAST struct{}

// ExprAST is a small expression grammar: an identifier optionally
// followed by `.field` or `[index]` projections, or an integer/string
// literal.
type ExprAST struct {
	Int    *int64       `( @Int`
	Str    *string      `| @String`
	Ident  *string      `| @Ident )`
	Fields []*ProjAST   `@@*`
}

// ProjAST is one trailing `.field` or `[index]` projection.
type ProjAST struct {
	Field *string  `( "." @Ident`
	Index *ExprAST `| "[" @@ "]" )`
}

// ToExpr converts an ExprAST into a term.Expr, anchored at a given
// procedure name for Lvar construction.
func (e *ExprAST) ToExpr(proc string) term.Expr {
	var base term.Expr
	switch {
	case e.Int != nil:
		base = term.IntConst(*e.Int)
	case e.Str != nil:
		base = term.StrConst(*e.Str)
	case e.Ident != nil:
		base = term.Lvar{Pvar: term.Pvar{Name: *e.Ident, Kind: term.PvarLocal, Proc: proc}}
	default:
		base = term.IntConst(0)
	}
	for _, p := range e.Fields {
		if p.Field != nil {
			base = term.Lfield{Base: base, Field: *p.Field}
		} else if p.Index != nil {
			base = term.Lindex{Base: base, Index: p.Index.ToExpr(proc)}
		}
	}
	return base
}
