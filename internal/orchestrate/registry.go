package orchestrate

import (
	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/lockutil"
	"github.com/biabductor/biabductor/internal/summary"
)

// Registry is the in-memory spec table an Orchestrator's workers share
// while a run is in flight: read-only access to the front-end's CFGs and
// attribute table, plus a mutex-guarded map of each procedure's current
// Summary. Implements both ondemand.Registry (for nested on-demand
// invocations) and, via an adapter built per caller, tabulation.
// SpecLookup. internal/specstore persists the same shape to disk between
// runs; this type is the live, in-process view calls "the one
// durable shared resource ... accessed under a discipline where each
// procedure owns its own summary entry."
type Registry struct {
	Program *cfgmodel.Program

	mu   lockutil.Mutex
	sums map[string]*summary.Summary
}

// NewRegistry returns a Registry backed by prog's CFGs/attribute table,
// optionally seeded with summaries carried over from a prior run (e.g.
// loaded from internal/specstore); seed may be nil.
func NewRegistry(prog *cfgmodel.Program, seed map[string]*summary.Summary) *Registry {
	sums := make(map[string]*summary.Summary, len(seed))
	for k, v := range seed {
		sums[k] = v
	}
	return &Registry{Program: prog, sums: sums}
}

// CFG implements ondemand.Registry.
func (r *Registry) CFG(proc string) (*cfgmodel.CFG, bool) {
	c, ok := r.Program.CFGs[proc]
	return c, ok
}

// Attrs implements ondemand.Registry.
func (r *Registry) Attrs(proc string) (cfgmodel.ProcAttributes, bool) {
	a, ok := r.Program.Attrs[proc]
	return a, ok
}

// Summary implements ondemand.Registry.
func (r *Registry) Summary(proc string) (*summary.Summary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sums[proc]
	return s, ok
}

// Put implements ondemand.Registry.
func (r *Registry) Put(proc string, sum *summary.Summary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sums[proc] = sum
}

// SameFile implements ondemand.Registry: both procedures must have known
// attributes naming the same source file.
func (r *Registry) SameFile(caller, callee string) bool {
	a, aok := r.Program.Attrs[caller]
	b, bok := r.Program.Attrs[callee]
	return aok && bok && a.Loc.File == b.Loc.File
}

// Snapshot returns a shallow copy of every summary currently held, for
// internal/specstore to persist or for a --write-html report to render.
func (r *Registry) Snapshot() map[string]*summary.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*summary.Summary, len(r.sums))
	for k, v := range r.sums {
		out[k] = v
	}
	return out
}

// ProcedureNames implements telemetry.ProcedureStateProvider: every
// procedure name known to the front-end, regardless of whether it has
// been analyzed yet.
func (r *Registry) ProcedureNames() []string {
	names := make([]string, 0, len(r.Program.CFGs))
	for name := range r.Program.CFGs {
		names = append(names, name)
	}
	return names
}
