package worklist

import (
	"container/heap"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/symexec"
)

// Result is what one procedure's fixpoint run produced: the pathset
// reaching Exit along a normal edge (the candidate post-conditions),
// the pathset reaching Exit (or falling off an unmodeled exception edge)
// abnormally, and the set of nodes actually visited (for Spec.Visited,
// ).
type Result struct {
	Posts   []symexec.PathProp
	Errors  []symexec.PathProp
	Visited []summary.VisitedKey
}

// Engine runs the 5-step loop of over one procedure's CFG:
// pop the highest-priority todo node, take its accumulated incoming
// pathset, transfer every instruction across it, partition the result
// into normal/exceptional, and differentially re-enqueue successors
// whose incoming state actually changed.
type Engine struct {
	CFG  *cfgmodel.CFG
	Exec *symexec.Executor

	// SymopBudget caps the number of per-PathProp instruction transfers
	// this run may perform before it raises a Timeout fault. Zero means unbounded.
	SymopBudget int

	ranks    map[string]int
	visited  map[string][]symexec.PathProp
	inQueue  map[string]bool
	pq       priorityQueue
	seq      int
	symopUse int
}

// New returns an Engine for one procedure's CFG, with node ranks computed
// once via a breadth-first pass from the start node.
func New(cfg *cfgmodel.CFG, exec *symexec.Executor, symopBudget int) *Engine {
	e := &Engine{
		CFG:         cfg,
		Exec:        exec,
		SymopBudget: symopBudget,
		visited:     make(map[string][]symexec.PathProp),
		inQueue:     make(map[string]bool),
	}
	e.ranks = rankNodes(cfg)
	return e
}

// rankNodes assigns each reachable node a breadth-first order number from
// the CFG's start node over both normal and exception edges, the
// priority the todo queue orders on; a node the BFS never reaches has no
// rank, and rankOf places every such node after all ranked ones, in
// arrival order.
func rankNodes(cfg *cfgmodel.CFG) map[string]int {
	ranks := make(map[string]int)
	if cfg.StartID == "" {
		return ranks
	}
	queue := []string{cfg.StartID}
	ranks[cfg.StartID] = 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		node := cfg.Nodes[id]
		if node == nil {
			continue
		}
		for _, succSet := range [][]string{node.Succs, node.ExnSuccs} {
			for _, s := range succSet {
				if _, seen := ranks[s]; seen {
					continue
				}
				ranks[s] = len(ranks)
				queue = append(queue, s)
			}
		}
	}
	return ranks
}

func (e *Engine) rankOf(nodeID string) int {
	if r, ok := e.ranks[nodeID]; ok {
		return r
	}
	return len(e.ranks) + 1
}

// Run seeds the start node with entry and drives the fixpoint to
// completion, returning the procedure's posts/errors/visited-node set.
func (e *Engine) Run(entry []symexec.PathProp) (*Result, error) {
	heap.Init(&e.pq)
	e.propose(e.CFG.StartID, entry)

	result := &Result{}
	seenNodes := make(map[string]bool)

	for e.pq.Len() > 0 {
		item := heap.Pop(&e.pq).(*queueItem)
		e.inQueue[item.nodeID] = false

		node := e.CFG.Nodes[item.nodeID]
		if node == nil {
			continue
		}
		if !seenNodes[item.nodeID] {
			seenNodes[item.nodeID] = true
			result.Visited = append(result.Visited, summary.VisitedKey{NodeID: item.nodeID})
		}

		incoming := e.visited[item.nodeID]
		if node.Kind == cfgmodel.Exit {
			result.Posts = append(result.Posts, incoming...)
			continue
		}

		state := incoming
		var exnAccum []symexec.PathProp
		for _, instr := range node.Instrs {
			var next []symexec.PathProp
			for _, pp := range state {
				if e.SymopBudget > 0 {
					e.symopUse++
					if e.symopUse > e.SymopBudget {
						return nil, config.Timeout(config.BudgetSymop, "symop budget exceeded")
					}
				}
				outcome, err := e.Exec.Transfer(pp, instr, item.nodeID)
				if err != nil {
					return nil, err
				}
				next = append(next, outcome.Normal...)
				exnAccum = append(exnAccum, outcome.Exceptional...)
			}
			state = next
			if len(state) == 0 {
				break
			}
		}

		for _, succ := range node.Succs {
			e.propose(succ, state)
		}
		if len(node.ExnSuccs) > 0 {
			for _, succ := range node.ExnSuccs {
				e.propose(succ, exnAccum)
			}
		} else {
			result.Errors = append(result.Errors, exnAccum...)
		}
	}

	return result, nil
}

// propose merges newly produced contributions into a node's accumulated
// incoming pathset and re-enqueues it only if the joined+collapsed result
// differs from what it last held — the differential fixpoint rule
// ("re-enqueue iff the successor's incoming abstract
// state actually changed").
func (e *Engine) propose(nodeID string, contributions []symexec.PathProp) {
	if nodeID == "" || len(contributions) == 0 {
		return
	}
	merged := append(append([]symexec.PathProp(nil), e.visited[nodeID]...), contributions...)
	joined := collapsePathSet(joinPathSet(merged))
	if sameSet(e.visited[nodeID], joined) {
		return
	}
	e.visited[nodeID] = joined
	e.enqueue(nodeID)
}

func (e *Engine) enqueue(nodeID string) {
	if e.inQueue[nodeID] {
		return
	}
	e.inQueue[nodeID] = true
	e.seq++
	heap.Push(&e.pq, &queueItem{nodeID: nodeID, rank: e.rankOf(nodeID), seq: e.seq})
}
