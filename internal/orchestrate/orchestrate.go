// Package orchestrate implements interprocedural driver:
// build a call graph over the front-end's Program, walk its strongly
// connected components bottom-up (callee-first), fan out each
// component's procedures to a bounded pool of concurrent workers, and
// merge each worker's returned (summary, call_counts) back into the
// shared spec table before advancing to the next component. Grounded on
// aclements-go-misc/gopool/pool.go's worker-pool checkout/checkin
// pattern (a token-channel bound on concurrent Gomotes), adapted from a
// remote-buildlet client pool to an in-process
// golang.org/x/sync/errgroup+semaphore fan-out since this module has no
// remote coordinator to dial.
package orchestrate

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/errgroup"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/driver"
	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/ondemand"
	"github.com/biabductor/biabductor/internal/summary"
)

// Orchestrator runs one full interprocedural analysis pass over a
// Program and merges every procedure's result into a shared Registry.
type Orchestrator struct {
	Program  *cfgmodel.Program
	Flags    config.Flags
	Log      *errlog.Log
	Registry *Registry
	Policy   ondemand.Policy

	// ClusterID tags this run for --cluster NAME flag; empty
	// unless Flags.Cluster is set, in which case New stamps a
	// fresh one (the run groups results under one external run id even
	// though this process itself isn't actually clustered across
	// machines — the tag is what a --cluster-aware results consumer keys
	// on).
	ClusterID string

	zlog  *zap.Logger
	graph *CallGraph
}

// New returns an Orchestrator over prog. A nil zlog falls back to a
// no-op logger so callers that don't care about structured
// phase-transition/timeout logs don't have to construct one.
func New(prog *cfgmodel.Program, flags config.Flags, log *errlog.Log, policy ondemand.Policy, zlog *zap.Logger) *Orchestrator {
	if zlog == nil {
		zlog = zap.NewNop()
	}
	o := &Orchestrator{
		Program:  prog,
		Flags:    flags,
		Log:      log,
		Registry: NewRegistry(prog, nil),
		Policy:   policy,
		zlog:     zlog,
	}
	if flags.Cluster != "" {
		o.ClusterID = flags.Cluster + "-" + uuid.NewString()
	}
	return o
}

// Report summarizes one orchestrator run for the caller (cmd/biabductor,
// internal/telemetry).
type Report struct {
	ClusterID     string
	ProceduresRun int
	Passes        int
}

// Run builds the call graph, walks its SCCs bottom-up, and fans each one
// out across Flags.NumCores workers until every procedure (and every
// procedure newly discovered as stale through a dependency's later
// change) has a canonical summary or max-iteration cap is hit.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	o.graph = BuildCallGraph(o.Program)
	sccs := o.graph.BottomUp()

	report := &Report{ClusterID: o.ClusterID}
	for _, scc := range sccs {
		if err := o.runSCC(ctx, scc); err != nil {
			return report, err
		}
		report.ProceduresRun += len(scc)
	}

	passes, err := o.fixpoint(ctx)
	report.Passes = passes
	return report, err
}

// runSCC runs every procedure in one strongly-connected component: a
// Footprint pass for every member, then a RE_EXECUTION pass for
// every member once all Footprint passes in the component are done.
func (o *Orchestrator) runSCC(ctx context.Context, scc []string) error {
	footprints, err := o.fanOut(ctx, scc, func(d *driver.Driver, cfg *cfgmodel.CFG, attrs cfgmodel.ProcAttributes) (*summary.Summary, error) {
		return d.AnalyzeFootprint(cfg, attrs)
	})
	if err != nil {
		return err
	}
	for proc, sum := range footprints {
		o.Registry.Put(proc, sum)
	}

	canonical, err := o.fanOut(ctx, scc, func(d *driver.Driver, cfg *cfgmodel.CFG, attrs cfgmodel.ProcAttributes) (*summary.Summary, error) {
		footprint := footprints[attrs.ProcName]
		if footprint == nil || !footprint.HasSpecs() {
			return footprint, nil
		}
		return d.AnalyzeReExecution(cfg, attrs, footprint)
	})
	for proc, sum := range canonical {
		o.Registry.Put(proc, sum)
	}
	return err
}

type procResult struct {
	proc string
	sum  *summary.Summary
	err  error
}

// fanOut runs work once per procedure in procs, bounded to
// Flags.NumCores concurrent workers, each over its own config.Context
// and driver.Driver. Procedures with no
// CFG (declared but not defined in this translation unit) are skipped
// rather than failing the whole pass.
func (o *Orchestrator) fanOut(ctx context.Context, procs []string, work func(*driver.Driver, *cfgmodel.CFG, cfgmodel.ProcAttributes) (*summary.Summary, error)) (map[string]*summary.Summary, error) {
	limit := int64(o.Flags.NumCores)
	if limit < 1 {
		limit = 1
	}
	sem := semaphore.NewWeighted(limit)
	eg, egCtx := errgroup.WithContext(ctx)

	results := make(chan procResult, len(procs))
	for _, proc := range procs {
		proc := proc
		cfg, hasCFG := o.Program.CFGs[proc]
		attrs, hasAttrs := o.Program.Attrs[proc]
		if !hasCFG || !hasAttrs || !attrs.IsDefined {
			continue
		}

		if err := sem.Acquire(egCtx, 1); err != nil {
			return nil, err
		}
		eg.Go(func() error {
			defer sem.Release(1)
			sum, err := o.runOne(proc, cfg, attrs, work)
			results <- procResult{proc: proc, sum: sum, err: err}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	close(results)

	// A per-procedure fault (timeout, re-execution failure) never aborts
	// the whole pass: "inside the parent it abandons the
	// child's partial result and marks the summary with stats.timeout=
	// true" means the procedure's summary still gets recorded (with the
	// fault reflected in its Stats), not that the run as a whole fails.
	out := make(map[string]*summary.Summary, len(procs))
	for r := range results {
		if r.err != nil {
			o.zlog.Warn("procedure analysis faulted", zap.String("proc", r.proc), zap.Error(r.err))
		}
		if r.sum != nil {
			out[r.proc] = r.sum
		}
	}
	return out, nil
}

// runOne builds one procedure's private analysis environment, records
// its static call-count contribution, runs work, stamps its dependency
// map for the fixpoint check in fixpoint, and logs the phase it landed
// in.
func (o *Orchestrator) runOne(proc string, cfg *cfgmodel.CFG, attrs cfgmodel.ProcAttributes, work func(*driver.Driver, *cfgmodel.CFG, cfgmodel.ProcAttributes) (*summary.Summary, error)) (*summary.Summary, error) {
	actx := config.NewContext(attrs.Language, o.Flags)
	d := driver.New(actx, o.Program.Types, o.Log, nil)
	hook := ondemand.New(d, o.Registry, o.Policy)
	d.Lookup = &ondemand.LookupAdapter{Caller: proc, Hook: hook, Registry: o.Registry}

	sum, err := work(d, cfg, attrs)
	if sum == nil {
		if err != nil {
			return nil, fmt.Errorf("orchestrate: %s: %w", proc, err)
		}
		return nil, nil
	}

	callees := o.graph.Callees(proc)
	sum.CallStats = callCounts(callees)
	sum.DependencyMap = make(map[string]int64, len(callees))
	for _, callee := range callees {
		if cs, ok := o.Registry.Summary(callee); ok {
			sum.DependencyMap[callee] = cs.Timestamp
		}
	}

	o.zlog.Info("procedure analyzed",
		zap.String("proc", proc),
		zap.String("phase", sum.Phase.String()),
		zap.Bool("timeout", sum.Stats.Timeout),
		zap.Int("specs", len(sum.Payload.Specs)),
	)
	if err != nil {
		return sum, fmt.Errorf("orchestrate: %s: %w", proc, err)
	}
	return sum, nil
}

func callCounts(callees []string) *summary.CallStats {
	cs := summary.NewCallStats()
	for _, c := range callees {
		cs.Record(c)
	}
	return cs
}

// fixpoint implements "continues until a fixpoint over the
// call graph is reached or the max-timestamp cap is hit": a procedure
// whose DependencyMap disagrees with its callees' current timestamps saw
// one of its callees change since it was last analyzed, so it is
// re-run. Bounded by Flags.MaxIterations, the same cap calls the
// symop/iteration budget's sibling for the whole-graph loop.
func (o *Orchestrator) fixpoint(ctx context.Context) (int, error) {
	maxPasses := o.Flags.MaxIterations
	if maxPasses <= 0 {
		maxPasses = 1
	}
	pass := 0
	for ; pass < maxPasses; pass++ {
		stale := o.staleProcs()
		if len(stale) == 0 {
			return pass, nil
		}
		o.zlog.Info("fixpoint pass", zap.Int("pass", pass), zap.Int("stale", len(stale)))
		if err := o.runSCC(ctx, stale); err != nil {
			return pass, err
		}
	}
	return pass, nil
}

func (o *Orchestrator) staleProcs() []string {
	var stale []string
	for proc := range o.Program.CFGs {
		sum, ok := o.Registry.Summary(proc)
		if !ok {
			continue
		}
		for callee, ts := range sum.DependencyMap {
			if cs, ok := o.Registry.Summary(callee); ok && cs.Timestamp != ts {
				stale = append(stale, proc)
				break
			}
		}
	}
	return stale
}
