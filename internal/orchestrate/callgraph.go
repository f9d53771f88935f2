package orchestrate

import (
	"sort"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/term"
)

// CallGraph is the directed graph asks the orchestrator to
// build "by scanning procedures": an edge proc -> callee for every
// direct, statically-named call site found in proc's CFG. Virtual calls
// (term.CallFlags.Virtual) are not resolved here; the front-end is
// expected to have already lowered them to concrete call sites by the
// time a CFG reaches this layer (mirrors internal/symexec/call.go's own
// assumption).
type CallGraph struct {
	Procs map[string]bool
	Edges map[string][]string // proc -> callees, deduplicated, sorted
}

// BuildCallGraph scans every CFG in prog for term.Call instructions whose
// Fexp is a statically-named function constant and records an edge to
// that callee, whether or not the callee itself has a CFG in this
// program (an edge to an undefined/external procedure is still a real
// edge: it just never advances past Footprint).
func BuildCallGraph(prog *cfgmodel.Program) *CallGraph {
	g := &CallGraph{
		Procs: make(map[string]bool, len(prog.CFGs)),
		Edges: make(map[string][]string, len(prog.CFGs)),
	}
	for proc := range prog.CFGs {
		g.Procs[proc] = true
	}

	for proc, cfg := range prog.CFGs {
		seen := make(map[string]bool)
		for _, node := range cfg.Nodes {
			for _, instr := range node.Instrs {
				call, ok := instr.(term.Call)
				if !ok {
					continue
				}
				fn, ok := call.Fexp.(term.Const)
				if !ok || fn.Kind != term.ConstCfun {
					continue
				}
				if fn.FuncName == proc || seen[fn.FuncName] {
					continue
				}
				seen[fn.FuncName] = true
				g.Edges[proc] = append(g.Edges[proc], fn.FuncName)
			}
		}
		sort.Strings(g.Edges[proc])
	}
	return g
}

// Callees returns proc's direct callees, or nil.
func (g *CallGraph) Callees(proc string) []string { return g.Edges[proc] }

// sccState is Tarjan's algorithm's per-node bookkeeping.
type sccState struct {
	graph   *CallGraph
	index   map[string]int
	low     map[string]int
	onStack map[string]bool
	stack   []string
	next    int
	sccs    [][]string
}

// SCCs returns proc's strongly-connected components via Tarjan's
// algorithm, each component internally sorted, and the component list
// itself in the order Tarjan completes them (reverse topological:
// a component appears after every component it calls into). Nodes that
// are only ever callees (present in Edges but never a key in Procs) are
// included as trivial singleton components so every name the graph
// mentions gets exactly one slot in the ordering.
func (g *CallGraph) SCCs() [][]string {
	names := make(map[string]bool)
	for proc := range g.Procs {
		names[proc] = true
	}
	for _, callees := range g.Edges {
		for _, c := range callees {
			names[c] = true
		}
	}
	ordered := make([]string, 0, len(names))
	for n := range names {
		ordered = append(ordered, n)
	}
	sort.Strings(ordered)

	st := &sccState{
		graph:   g,
		index:   make(map[string]int),
		low:     make(map[string]int),
		onStack: make(map[string]bool),
	}
	for _, n := range ordered {
		if _, visited := st.index[n]; !visited {
			st.strongConnect(n)
		}
	}
	return st.sccs
}

func (st *sccState) strongConnect(v string) {
	st.index[v] = st.next
	st.low[v] = st.next
	st.next++
	st.stack = append(st.stack, v)
	st.onStack[v] = true

	for _, w := range st.graph.Edges[v] {
		if _, visited := st.index[w]; !visited {
			st.strongConnect(w)
			if st.low[w] < st.low[v] {
				st.low[v] = st.low[w]
			}
		} else if st.onStack[w] {
			if st.index[w] < st.low[v] {
				st.low[v] = st.index[w]
			}
		}
	}

	if st.low[v] == st.index[v] {
		var comp []string
		for {
			n := len(st.stack) - 1
			w := st.stack[n]
			st.stack = st.stack[:n]
			st.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		sort.Strings(comp)
		st.sccs = append(st.sccs, comp)
	}
}

// BottomUp returns the SCCs in callee-before-caller order. Tarjan's own
// discovery order is already reverse-topological (a component is only
// closed off after every component it reaches has been), so this simply
// documents that order at the call site rather than re-deriving it.
func (g *CallGraph) BottomUp() [][]string { return g.SCCs() }
