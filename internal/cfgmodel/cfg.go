// Package cfgmodel is the front-end contract: the shape of the
// CFG, attribute table and type environment the core consumes from a
// collaborator front-end. No front-end is implemented here — only the Go
// interface/struct shapes plus an optional textual debug-fixture parser
// (grammar.go) for feeding the core without a real compiler front-end
// attached, grounded on internal/ir/types.go's CFG types
// (ControlFlowGraph/FunctionCFG/BasicBlock).
package cfgmodel

import (
	"fmt"

	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/term"
)

// NodeKind is the closed set of CFG node kinds names.
type NodeKind int

const (
	Start NodeKind = iota
	Exit
	Stmt
	PruneTrue
	PruneFalse
	Join
	Skip
)

func (k NodeKind) String() string {
	switch k {
	case Start:
		return "start"
	case Exit:
		return "exit"
	case Stmt:
		return "stmt"
	case PruneTrue:
		return "prune_true"
	case PruneFalse:
		return "prune_false"
	case Join:
		return "join"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}

// Node is one CFG node: a kind, an ordered instruction list, and its
// normal/exceptional successor node ids.
type Node struct {
	ID       string
	Kind     NodeKind
	Instrs   []term.Instr
	Succs    []string
	ExnSuccs []string
}

// Formal is one formal parameter of a procedure.
type Formal struct {
	Name string
	Type term.Type
}

// Access is a procedure's declared access level, used by the leak/error
// bucketing heuristics that differ for public API vs. private helpers.
type Access int

const (
	AccessDefault Access = iota
	AccessPublic
	AccessPrivate
	AccessProtected
)

// ProcAttributes is the attribute-table entry describes:
// "attribute table mapping procedure names to {formals, ret_type, access,
// loc, language, is_defined, captured}".
type ProcAttributes struct {
	ProcName  string
	Formals   []Formal
	RetType   term.Type
	Access    Access
	Loc       term.Loc
	Language  config.Language
	IsDefined bool
	Captured  []string // captured variable names, for block/lambda procedures
}

// CFG is one procedure's control-flow graph: a node map plus the
// designated start/exit node ids.
type CFG struct {
	ProcName string
	Nodes    map[string]*Node
	StartID  string
	ExitID   string
}

// Node looks up a node by id, or nil.
func (g *CFG) Node(id string) *Node { return g.Nodes[id] }

// Successors returns the normal-flow successor nodes of id.
func (g *CFG) Successors(id string) []*Node {
	n := g.Node(id)
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.Succs))
	for _, s := range n.Succs {
		if sn := g.Node(s); sn != nil {
			out = append(out, sn)
		}
	}
	return out
}

// ExnSuccessors returns the exception-flow successor nodes of id.
func (g *CFG) ExnSuccessors(id string) []*Node {
	n := g.Node(id)
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.ExnSuccs))
	for _, s := range n.ExnSuccs {
		if sn := g.Node(s); sn != nil {
			out = append(out, sn)
		}
	}
	return out
}

// Validate checks the minimal shape invariants the driver/worklist rely
// on: a designated start and exit node, both present in Nodes, and every
// successor id resolvable.
func (g *CFG) Validate() error {
	if _, ok := g.Nodes[g.StartID]; !ok {
		return fmt.Errorf("cfgmodel: %s: start node %q not found", g.ProcName, g.StartID)
	}
	if _, ok := g.Nodes[g.ExitID]; !ok {
		return fmt.Errorf("cfgmodel: %s: exit node %q not found", g.ProcName, g.ExitID)
	}
	for id, n := range g.Nodes {
		for _, s := range n.Succs {
			if _, ok := g.Nodes[s]; !ok {
				return fmt.Errorf("cfgmodel: %s: node %s has unresolved successor %s", g.ProcName, id, s)
			}
		}
		for _, s := range n.ExnSuccs {
			if _, ok := g.Nodes[s]; !ok {
				return fmt.Errorf("cfgmodel: %s: node %s has unresolved exn successor %s", g.ProcName, id, s)
			}
		}
	}
	return nil
}

// Program bundles every CFG the front-end produced for one analysis run
// plus the shared attribute table and type environment.
type Program struct {
	CFGs  map[string]*CFG
	Attrs map[string]ProcAttributes
	Types *term.TypeEnv
}

// NewProgram returns an empty Program.
func NewProgram() *Program {
	return &Program{
		CFGs:  make(map[string]*CFG),
		Attrs: make(map[string]ProcAttributes),
		Types: term.NewTypeEnv(),
	}
}
