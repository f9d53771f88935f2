// Package driver implements the per-procedure, two-phase bi-abductive
// analysis: a Footprint pass that infers candidate preconditions by
// running the worklist from an empty heap seeded with the procedure's
// formals, followed by a RE_EXECUTION pass that re-runs the worklist
// from each inferred precondition and keeps only the specs that survive
// without a re-execution fault. Grounded on cmd/kanso-cli/main.go's
// top-level orchestration (driving internal/semantic's analyzer, which
// resets per-function state and then collects errors), generalized from
// "one compiler pass over one function" to "two symbolic-execution
// passes over one procedure."
package driver

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/biabductor/biabductor/internal/abstract"
	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/prover"
	"github.com/biabductor/biabductor/internal/rearrange"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/symexec"
	"github.com/biabductor/biabductor/internal/tabulation"
	"github.com/biabductor/biabductor/internal/term"
	"github.com/biabductor/biabductor/internal/worklist"
)

// Driver bundles the per-process, per-run dependencies shared across
// every procedure it analyzes: a prover/rearranger/abstractor triple
// built once over the shared type environment, the issue log, and the
// spec table lookup tabulation needs to resolve callees.
type Driver struct {
	Ctx        *config.Context
	Types      *term.TypeEnv
	Prover     *prover.Prover
	Rearranger *rearrange.Rearranger
	Abstractor *abstract.Abstractor
	Log        *errlog.Log
	Lookup     tabulation.SpecLookup

	// SensitiveSinks configures tabulation's taint check; nil falls back to a small built-in default set.
	SensitiveSinks map[string]bool

	tsCounter int64
}

// New returns a Driver for one analysis run.
func New(ctx *config.Context, types *term.TypeEnv, log *errlog.Log, lookup tabulation.SpecLookup) *Driver {
	pr := prover.New(types)
	rr := rearrange.New(pr, types, ctx.Generator())
	ab := abstract.New(pr, ctx.Flags().SpecAbsLevel)
	return &Driver{
		Ctx:        ctx,
		Types:      types,
		Prover:     pr,
		Rearranger: rr,
		Abstractor: ab,
		Log:        log,
		Lookup:     lookup,
	}
}

func defaultSensitiveSinks() map[string]bool {
	return map[string]bool{"system": true, "exec": true, "popen": true}
}

func (d *Driver) sinks() map[string]bool {
	if d.SensitiveSinks != nil {
		return d.SensitiveSinks
	}
	return defaultSensitiveSinks()
}

// tsCounter is shared by every Driver in the process, so summary
// timestamps keep increasing across the per-procedure Drivers the
// orchestrator creates.
var tsCounter int64

func (d *Driver) nextTimestamp() int64 {
	return atomic.AddInt64(&tsCounter, 1)
}

func nodeIDs(cfg *cfgmodel.CFG) []string {
	ids := make([]string, 0, len(cfg.Nodes))
	for id := range cfg.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func formalRoots(attrs cfgmodel.ProcAttributes) []term.Expr {
	roots := make([]term.Expr, len(attrs.Formals))
	for i, f := range attrs.Formals {
		roots[i] = term.Lvar{Pvar: term.Pvar{Name: f.Name, Kind: term.PvarLocal, Proc: attrs.ProcName}}
	}
	return roots
}

// newExecutor builds one symbolic executor + tabulator pair scoped to a
// single procedure and phase; every AnalyzeFootprint/AnalyzeReExecution
// run gets its own so no node/path state leaks between runs.
func (d *Driver) newExecutor(attrs cfgmodel.ProcAttributes, phase Phase) *symexec.Executor {
	gen := d.Ctx.Generator()
	tab := tabulation.New(d.Prover, d.Rearranger, gen, tabulation.Options{
		Phase:          phase.toRearrange(),
		TaintEnabled:   true,
		SensitiveSinks: d.sinks(),
	})
	exec := symexec.New(d.Rearranger, d.Abstractor, d.Prover, tab, gen, d.Log, d.Types, attrs.ProcName, attrs.Loc.Line, phase.toRearrange())
	exec.SpecLookup = d.Lookup
	roots := formalRoots(attrs)
	exec.Roots = func(*prop.Prop) []term.Expr { return roots }
	return exec
}

// recursionGuard enters proc's recursion count and reports a TORecursion
// fault if it now exceeds max_recursion. EnterRecursion always
// increments, so ExitRecursion must pair with it regardless of outcome:
// on failure the guard undoes its own increment, and on success the
// caller must defer d.Ctx.ExitRecursion(proc).
func (d *Driver) recursionGuard(proc string) error {
	if d.Ctx.EnterRecursion(proc, d.Ctx.Flags().MaxRecursion) {
		d.Ctx.ExitRecursion(proc)
		return config.Timeout(config.BudgetRecursion, "max_recursion exceeded for "+proc)
	}
	return nil
}

// AnalyzeFootprint runs Footprint phase: start from prop_emp
// seeded with the procedure's formals, run the worklist to a fixpoint,
// and group the posts reaching exit into (precondition, posts, visited)
// specs via collect_analysis_result. The returned Summary's Phase is
// Footprint; callers (internal/orchestrate) decide when the call graph
// permits advancing a procedure to RE_EXECUTION.
func (d *Driver) AnalyzeFootprint(cfg *cfgmodel.CFG, attrs cfgmodel.ProcAttributes) (*summary.Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sum := summary.NewSummary(attrs)
	sum.Nodes = nodeIDs(cfg)
	sum.Activate()

	if err := d.recursionGuard(attrs.ProcName); err != nil {
		sum.Stats.Timeout = true
		sum.Deactivate(d.nextTimestamp())
		return sum, err
	}
	defer d.Ctx.ExitRecursion(attrs.ProcName)

	var specs []*summary.Spec
	err := d.Ctx.ScopedPhase(Footprint.toConfig(), func() error {
		exec := d.newExecutor(attrs, Footprint)
		eng := worklist.New(cfg, exec, d.Ctx.Flags().SymopBudget)
		entry := []symexec.PathProp{{Prop: d.seedFootprint(attrs), Path: summary.NewPath()}}
		result, runErr := eng.Run(entry)
		if runErr != nil {
			return runErr
		}
		specs = d.collectFootprintSpecs(result, attrs)
		return nil
	})

	sum.Phase = Footprint.toSummary()
	sum.Payload.Specs = specs
	sum.Stats.NumPreposts = len(specs)
	sum.Stats.NumVisitNodes = visitCount(specs)
	sum.Stats.NumErrors = len(d.Log.Kept())

	if err != nil {
		if fault, ok := config.IsFault(err); ok && !fault.Recoverable() {
			sum.Stats.Timeout = fault.Kind == config.FaultTimeout
			sum.Deactivate(d.nextTimestamp())
			return sum, err
		}
	}
	sum.Deactivate(d.nextTimestamp())
	return sum, nil
}

// AnalyzeReExecution runs Re-execution phase over the specs
// a prior AnalyzeFootprint call inferred: for each precondition, build a
// fresh initial prop from it and re-run the worklist; a spec survives
// only if that run completes without a re-execution fault. The returned
// Summary's Phase is RE_EXECUTION and its spec list is exactly the
// surviving (valid) specs — these become the canonical summary once the
// orchestrator persists it.
func (d *Driver) AnalyzeReExecution(cfg *cfgmodel.CFG, attrs cfgmodel.ProcAttributes, footprint *summary.Summary) (*summary.Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sum := summary.NewSummary(attrs)
	sum.Nodes = nodeIDs(cfg)
	sum.DependencyMap = footprint.DependencyMap
	sum.Activate()

	if err := d.recursionGuard(attrs.ProcName); err != nil {
		sum.Stats.Timeout = true
		sum.Deactivate(d.nextTimestamp())
		return sum, err
	}
	defer d.Ctx.ExitRecursion(attrs.ProcName)

	var valid []*summary.Spec
	err := d.Ctx.ScopedPhase(ReExecution.toConfig(), func() error {
		v, reErr := d.runReExecution(cfg, attrs, footprint.Payload.Specs)
		valid = v
		return reErr
	})

	sum.Phase = ReExecution.toSummary()
	sum.Payload.Specs = valid
	sum.Stats.NumPreposts = len(valid)
	sum.Stats.NumVisitNodes = visitCount(valid)
	sum.Stats.NumErrors = len(d.Log.Kept())

	if err != nil {
		if fault, ok := config.IsFault(err); ok && !fault.Recoverable() {
			sum.Stats.Timeout = fault.Kind == config.FaultTimeout
			sum.Deactivate(d.nextTimestamp())
			return sum, err
		}
	}
	sum.Deactivate(d.nextTimestamp())
	return sum, nil
}

// runReExecution re-runs the worklist once per inferred precondition,
// dropping any precondition whose run raised a recoverable re-execution
// fault and
// aborting the whole pass on a non-recoverable one.
func (d *Driver) runReExecution(cfg *cfgmodel.CFG, attrs cfgmodel.ProcAttributes, specs []*summary.Spec) ([]*summary.Spec, error) {
	var valid []*summary.Spec
	roots := formalRoots(attrs)
	for i, spec := range specs {
		// spec.Pre.P holds only the *missing* part bi-abduction inferred;
		// the formal's own stack cell (inst_formal) is an unconditional
		// assumption re-seeded the same way the Footprint phase seeded it,
		// not itself part of what was inferred.
		delta := d.freshenPre(spec.Pre.P, fmt.Sprintf("__reexec%d", i))
		initial := d.seedFootprint(attrs).AddSigma(delta.Sigma...).AddPi(delta.Pi...)

		exec := d.newExecutor(attrs, ReExecution)
		eng := worklist.New(cfg, exec, d.Ctx.Flags().SymopBudget)
		entry := []symexec.PathProp{{Prop: initial, Path: summary.NewPath()}}

		result, err := eng.Run(entry)
		if err != nil {
			if fault, ok := config.IsFault(err); ok && !fault.Recoverable() {
				return valid, err
			}
			continue
		}
		if len(result.Posts) == 0 {
			continue
		}

		posts := make([]summary.PostEntry, 0, len(result.Posts))
		for _, pp := range result.Posts {
			cleaned := d.cleanPost(pp.Prop, attrs)
			abstracted := d.Abstractor.Abstract(cleaned, roots)
			posts = append(posts, summary.PostEntry{Prop: abstracted, Path: pp.Path})
		}
		valid = append(valid, summary.NewSpec(summary.NewProp(delta), posts, result.Visited))
	}
	return valid, nil
}

func visitCount(specs []*summary.Spec) int {
	seen := make(map[string]bool)
	for _, s := range specs {
		for _, v := range s.Visited {
			seen[v.NodeID] = true
		}
	}
	return len(seen)
}
