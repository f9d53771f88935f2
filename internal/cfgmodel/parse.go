package cfgmodel

import (
	"fmt"

	"github.com/alecthomas/participle/v2"

	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/term"
)

var fixtureParser = buildFixtureParser()

func buildFixtureParser() *participle.Parser[FileAST] {
	p, err := participle.Build[FileAST](
		participle.Lexer(FixtureLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.Unquote("String"),
		participle.UseLookahead(3),
	)
	if err != nil {
		panic(fmt.Errorf("cfgmodel: failed to build fixture parser: %w", err))
	}
	return p
}

// ParseFixture parses the textual CFG fixture format into a Program,
// grounded on internal/parser.ParseSource's entry-point shape.
func ParseFixture(sourceName, source string) (*Program, error) {
	ast, err := fixtureParser.ParseString(sourceName, source)
	if err != nil {
		return nil, fmt.Errorf("cfgmodel: parse %s: %w", sourceName, err)
	}
	return convert(ast), nil
}

func convert(ast *FileAST) *Program {
	prog := NewProgram()
	for _, p := range ast.Procs {
		cfg := &CFG{ProcName: p.Name, Nodes: make(map[string]*Node)}
		formals := make([]Formal, 0, len(p.Formals))
		for _, f := range p.Formals {
			formals = append(formals, Formal{Name: f.Name, Type: f.Type.ToType()})
		}
		prog.Attrs[p.Name] = ProcAttributes{
			ProcName:  p.Name,
			Formals:   formals,
			RetType:   p.RetType.ToType(),
			Language:  config.LangC,
			IsDefined: true,
		}
		for _, n := range p.Nodes {
			node := &Node{
				ID:       n.ID,
				Kind:     nodeKind(n.Kind),
				Succs:    n.Succs,
				ExnSuccs: n.ExnSuccs,
			}
			for _, in := range n.Instrs {
				if instr := convertInstr(p.Name, in); instr != nil {
					node.Instrs = append(node.Instrs, instr)
				}
			}
			cfg.Nodes[n.ID] = node
			switch node.Kind {
			case Start:
				cfg.StartID = n.ID
			case Exit:
				cfg.ExitID = n.ID
			}
		}
		prog.CFGs[p.Name] = cfg
	}
	return prog
}

func nodeKind(s string) NodeKind {
	switch s {
	case "start":
		return Start
	case "exit":
		return Exit
	case "prune_true":
		return PruneTrue
	case "prune_false":
		return PruneFalse
	case "join":
		return Join
	case "skip":
		return Skip
	default:
		return Stmt
	}
}

func convertInstr(proc string, in *InstrAST) term.Instr {
	loc := term.Loc{File: proc}
	switch {
	case in.Load != nil:
		return term.Load{
			Id:   term.Ident{Kind: term.Normal, Name: in.Load.ID},
			Lexp: in.Load.Lexp.ToExpr(proc),
			Typ:  in.Load.Type.ToType(),
			Loc:  loc,
		}
	case in.Store != nil:
		return term.Store{
			Lexp: in.Store.Lexp.ToExpr(proc),
			Typ:  in.Store.Type.ToType(),
			Rhs:  in.Store.Rhs.ToExpr(proc),
			Loc:  loc,
		}
	case in.Prune != nil:
		return term.Prune{
			Cond:       in.Prune.Cond.ToExpr(proc),
			TrueBranch: in.Prune.Branch == "true",
			Loc:        loc,
		}
	case in.Nullify != nil:
		return term.Nullify{
			Pvar: term.Pvar{Name: in.Nullify.Name, Kind: term.PvarLocal, Proc: proc},
			Loc:  loc,
		}
	case in.Abstract != nil:
		return term.Abstract{Loc: loc}
	case in.Call != nil:
		args := make([]term.Expr, 0, len(in.Call.Args))
		argTs := make([]term.Type, 0, len(in.Call.Args))
		for _, a := range in.Call.Args {
			args = append(args, a.ToExpr(proc))
			argTs = append(argTs, term.NewPrimitive(term.Int))
		}
		rets := make([]term.RetBinding, 0, len(in.Call.Rets))
		for _, r := range in.Call.Rets {
			rets = append(rets, term.RetBinding{Id: term.Ident{Kind: term.Normal, Name: r}})
		}
		return term.Call{
			Rets:  rets,
			Fexp:  term.CfunConst(in.Call.Callee),
			Args:  args,
			ArgTs: argTs,
			Loc:   loc,
		}
	default:
		return nil
	}
}
