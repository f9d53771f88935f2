package orchestrate

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/biabductor/biabductor/internal/summary"
)

// Reactive implements `--reactive` mode: watch `--results-dir`
// for summaries an external process (e.g. a companion incremental build
// running its own biabductor invocation over a sibling translation
// unit) writes there, and re-trigger perform_transition over this
// Orchestrator's Registry whenever one appears or changes. Grounded on
// internal/core/mangle_watcher.go's MangleWatcher, which watches a
// directory for externally-written .mg files and debounces rapid saves
// before triggering validation — generalized from "one mangle
// directory, trigger validation" to "the results directory,
// reload changed summaries, re-run the fixpoint."
type Reactive struct {
	watcher  *fsnotify.Watcher
	zlog     *zap.Logger
	debounce time.Duration
	orch     *Orchestrator

	// Reload reads whatever summaries changed on disk since the last
	// call and returns them keyed by procedure name; internal/specstore
	// supplies the real implementation, a test can supply a fake one.
	Reload func() (map[string]*summary.Summary, error)
}

// NewReactive opens an fsnotify watcher over resultsDir and returns a
// Reactive that drives orch. A nil zlog falls back to a no-op logger.
func NewReactive(orch *Orchestrator, resultsDir string, debounce time.Duration, reload func() (map[string]*summary.Summary, error), zlog *zap.Logger) (*Reactive, error) {
	if zlog == nil {
		zlog = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(resultsDir); err != nil {
		zlog.Warn("reactive: failed to watch results dir", zap.String("dir", resultsDir), zap.Error(err))
	}
	return &Reactive{
		watcher:  w,
		zlog:     zlog,
		debounce: debounce,
		orch:     orch,
		Reload:   reload,
	}, nil
}

// ReactiveResult is one triggered reload-and-transition cycle's outcome.
type ReactiveResult struct {
	Updated int
	Passes  int
	Err     error
}

// Run blocks, triggering one reload-and-perform_transition cycle per
// debounced burst of filesystem events in --results-dir, until ctx is
// cancelled. Results are sent on the returned channel, which is closed
// once ctx is done and the watcher is torn down.
func (r *Reactive) Run(ctx context.Context) <-chan ReactiveResult {
	out := make(chan ReactiveResult)
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	go func() {
		defer close(out)
		defer r.watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-r.watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				r.zlog.Debug("reactive: results dir event", zap.String("path", ev.Name), zap.String("op", ev.Op.String()))
				timer.Reset(r.debounce)
			case err, ok := <-r.watcher.Errors:
				if !ok {
					return
				}
				r.zlog.Warn("reactive: watcher error", zap.Error(err))
			case <-timer.C:
				out <- r.cycle(ctx)
			}
		}
	}()

	return out
}

// cycle reloads whatever summaries changed on disk, merges them into
// the orchestrator's Registry, and re-runs perform_transition over
// whichever in-memory procedures are now stale as a result.
func (r *Reactive) cycle(ctx context.Context) ReactiveResult {
	changed, err := r.Reload()
	if err != nil {
		return ReactiveResult{Err: err}
	}
	for proc, sum := range changed {
		r.orch.Registry.Put(proc, sum)
	}
	passes, err := r.orch.fixpoint(ctx)
	return ReactiveResult{Updated: len(changed), Passes: passes, Err: err}
}
