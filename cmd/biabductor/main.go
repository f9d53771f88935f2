// Package main is the single driver command: read front-end CFG
// output, run the interprocedural analysis, and write the Issues/Costs
// output streams under --results-dir. Flag-binding style grounded on
// ja7ad-consumption's cmd/consumption/main.go (cobra.Command +
// root.Flags().XVar(&field, ...)); fatal-message style grounded on
// cmd/kanso-cli/main.go (github.com/fatih/color banners).
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/ondemand"
	"github.com/biabductor/biabductor/internal/orchestrate"
	"github.com/biabductor/biabductor/internal/specstore"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/telemetry"
)

func main() {
	flags := config.DefaultFlags()
	var worklistMode int
	var footprint string

	root := &cobra.Command{
		Use:   "biabductor --results-dir DIR [files...]",
		Short: "interprocedural bi-abductive symbolic execution over a front-end CFG",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.CompilationDBFiles = append(flags.CompilationDBFiles, args...)
			flags.WorklistMode = config.WorklistMode(worklistMode)
			flags.FootprintOn = footprint != "off"
			return run(cmd.Context(), flags)
		},
		SilenceUsage: true,
	}

	fl := root.Flags()
	fl.StringVar(&flags.ResultsDir, "results-dir", "", "directory for persisted summaries and output streams (required)")
	fl.StringVar(&flags.Cluster, "cluster", "", "sub-job tag stamped onto this run's cluster id")
	fl.StringSliceVar(&flags.CompilationDBFiles, "compilation-db-files", nil, "front-end CFG text fixtures to analyze")
	fl.BoolVar(&flags.DeveloperMode, "developer-mode", false, "record backtraces, verbose logs")
	fl.BoolVar(&flags.OnlyFootprint, "only-footprint", false, "run the footprint phase only")
	fl.BoolVar(&flags.OnlyNospecs, "only-nospecs", false, "skip procedures that already have a usable summary")
	fl.BoolVar(&flags.OnlySkips, "only-skips", false, "report only procedures the driver skipped")
	fl.IntVar(&flags.NumCores, "num-cores", flags.NumCores, "worker pool size for SCC fan-out")
	fl.IntVar(&flags.MaxNumProc, "max-num-proc", flags.MaxNumProc, "cap on procedures analyzed (0 = unlimited)")
	fl.IntVar(&flags.MaxRecursion, "max-recursion", flags.MaxRecursion, "max on-demand nested-analysis depth")
	fl.IntVar(&worklistMode, "worklist-mode", int(flags.WorklistMode), "worklist node-selection policy {0,1,2}")
	fl.BoolVar(&flags.Reactive, "reactive", false, "watch --results-dir for externally-updated summaries and re-run the fixpoint")
	fl.StringVar(&footprint, "footprint", "on", "footprint phase {on,off}")
	fl.BoolVar(&flags.Ondemand, "ondemand", false, "allow nested analysis of unanalyzed callees")
	fl.BoolVar(&flags.PrintBuiltins, "print-builtins", false, "include builtin-modeled procedures in output")
	fl.BoolVar(&flags.WriteHTML, "write-html", false, "serve live per-procedure worklist state over a websocket")
	fl.IntVar(&flags.SpecAbsLevel, "spec-abs-level", flags.SpecAbsLevel, "spec abstraction aggressiveness")
	fl.BoolVar(&flags.UndoJoin, "undo-join", false, "disable join-node abstraction")
	fl.IntVar(&flags.MeetLevel, "meet-level", flags.MeetLevel, "meet-operator aggressiveness")
	fl.BoolVar(&flags.ShowBuckets, "show-buckets", false, "group issues output by bucket")
	fl.BoolVar(&flags.ReportNullableInconsistency, "report-nullable-inconsistency", false, "report nullable/non-null attribute conflicts")

	if err := root.Execute(); err != nil {
		color.Red("biabductor: %s", err)
		os.Exit(exitCodeFor(err))
	}
}

// exitCodeFor maps a fatal setup error to an "exit code 0 = success,
// non-zero = fatal setup error" contract.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

func run(ctx context.Context, flags config.Flags) error {
	if err := flags.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(flags.ResultsDir, 0o755); err != nil {
		return fmt.Errorf("biabductor: create results dir: %w", err)
	}

	zlog, err := telemetry.NewLogger(flags.DeveloperMode)
	if err != nil {
		return fmt.Errorf("biabductor: build logger: %w", err)
	}
	defer zlog.Sync() //nolint:errcheck

	prog, err := loadProgram(flags.CompilationDBFiles)
	if err != nil {
		return fmt.Errorf("biabductor: load front-end output: %w", err)
	}

	store, err := specstore.Open(filepath.Join(flags.ResultsDir, "summaries.db"))
	if err != nil {
		return fmt.Errorf("biabductor: open spec store: %w", err)
	}
	defer store.Close()

	seed, err := store.LoadAll(specstore.KindSpecs)
	if err != nil {
		return fmt.Errorf("biabductor: load prior summaries: %w", err)
	}

	log := errlog.NewLog(errlog.Censor{})

	var policy ondemand.Policy
	if flags.Ondemand {
		policy = ondemand.PolicyFunc(func(caller, callee string) bool { return true })
	}

	orch := orchestrate.New(prog, flags, log, policy, zlog)
	for proc, sum := range seed {
		orch.Registry.Put(proc, sum)
	}

	if flags.WriteHTML {
		ln, err := net.Listen("tcp", "localhost:0")
		if err != nil {
			return fmt.Errorf("biabductor: liveserver listen: %w", err)
		}
		ls := telemetry.NewLiveServer(orch.Registry, zlog)
		httpSrv := &http.Server{Handler: ls}
		go func() {
			if err := httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
				zlog.Warn("liveserver: exited", zap.Error(err))
			}
		}()
		defer httpSrv.Close()
		zlog.Info("liveserver: listening", zap.String("addr", ln.Addr().String()))
	}

	report, runErr := orch.Run(ctx)
	if runErr != nil {
		zlog.Error("orchestrator run failed", zap.Error(runErr))
	}

	for proc, sum := range orch.Registry.Snapshot() {
		if err := store.Put(proc, specstore.KindSpecs, sum); err != nil {
			zlog.Warn("failed to persist summary", zap.String("proc", proc), zap.Error(err))
		}
	}

	if err := writeOutputStreams(flags.ResultsDir, log, orch.Registry.Snapshot()); err != nil {
		return fmt.Errorf("biabductor: write output streams: %w", err)
	}

	if flags.Reactive {
		runReactive(ctx, orch, store, zlog)
	}

	color.Green("biabductor: analyzed %d procedures over %d passes (cluster=%s)", report.ProceduresRun, report.Passes, report.ClusterID)
	return runErr
}

func loadProgram(files []string) (*cfgmodel.Program, error) {
	prog := cfgmodel.NewProgram()
	for _, f := range files {
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		parsed, err := cfgmodel.ParseFixture(f, string(src))
		if err != nil {
			return nil, err
		}
		for name, cfg := range parsed.CFGs {
			prog.CFGs[name] = cfg
		}
		for name, attrs := range parsed.Attrs {
			prog.Attrs[name] = attrs
		}
	}
	return prog, nil
}

func writeOutputStreams(resultsDir string, log *errlog.Log, sums map[string]*summary.Summary) error {
	issuesPath := filepath.Join(resultsDir, "issues.json")
	issuesF, err := os.Create(issuesPath)
	if err != nil {
		return err
	}
	defer issuesF.Close()
	if err := log.WriteJSONStream(issuesF); err != nil {
		return err
	}

	costsPath := filepath.Join(resultsDir, "costs.json")
	costsF, err := os.Create(costsPath)
	if err != nil {
		return err
	}
	defer costsF.Close()
	entries := telemetry.CostsFromSummaries(sums)
	return telemetry.WriteCostsJSONStream(costsF, entries)
}

func runReactive(ctx context.Context, orch *orchestrate.Orchestrator, store *specstore.Store, zlog *zap.Logger) {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reload := func() (map[string]*summary.Summary, error) {
		return store.LoadAll(specstore.KindSpecs)
	}
	reactive, err := orchestrate.NewReactive(orch, orch.Flags.ResultsDir, 0, reload, zlog)
	if err != nil {
		zlog.Error("reactive: failed to start watcher", zap.Error(err))
		return
	}
	for res := range reactive.Run(ctx) {
		if res.Err != nil {
			zlog.Warn("reactive: cycle failed", zap.Error(res.Err))
			continue
		}
		zlog.Info("reactive: cycle complete", zap.Int("updated", res.Updated), zap.Int("passes", res.Passes))
	}
}
