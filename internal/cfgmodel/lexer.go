package cfgmodel

import "github.com/alecthomas/participle/v2/lexer"

// FixtureLexer tokenizes the textual CFG/summary interchange format
// accepted by `--compilation-db-files` when front-end output is supplied
// as a debug text fixture rather than in-process structs.
// Grounded on internal/ast's grammar.KansoLexer stateful-rule shape,
// narrowed to the small vocabulary a CFG fixture needs.
var FixtureLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"String", `"(\\"|[^"])*"`, nil},
		{"Float", `[0-9]+\.[0-9]+`, nil},
		{"Int", `-?[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Arrow", `->`, nil},
		{"Punct", `[{}()\[\]:;,.*=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
