package symexec

import "github.com/biabductor/biabductor/internal/term"

// tempVarPrefix resolves Open Question on EDG temporary-
// variable naming: rather than supporting the source front-end's several
// historical prefixes (__T, __temp_var_N, ...), every synthesized
// temporary the executor introduces uses this one fixed prefix. A single
// prefix is all the hash-stability property needs, and the
// front-end's own lexer already normalizes whatever the compiler emitted
// before handing an IR to this package.
const tempVarPrefix = "__tmp"

// freshTemp mints a fresh Normal-kind identifier carrying the fixed
// temp-variable prefix, the name a synthesized Load/Call binding gets
// when the instruction stream did not name one.
func freshTemp(gen *term.Generator, hint string) term.Ident {
	if hint == "" {
		hint = "v"
	}
	return gen.Fresh(term.Normal, tempVarPrefix+"_"+hint)
}
