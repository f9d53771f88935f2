// Package ondemand implements optional nested-invocation
// mode: while analyzing a procedure P, a call to an unanalyzed callee Q
// can trigger a recursive analyzer run for Q instead of failing
// tabulation outright. Grounded on repl/repl.go's Start loop, which
// keeps a lexer/parser session alive across reads, generalized from
// "one REPL line's parse state" to "one nested analyzer invocation's
// generator state" — the thing being
// saved and restored around a recursive call is the same idea, just a
// different kind of session.
package ondemand

import (
	"fmt"
	"sync"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/driver"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/tabulation"
)

// Registry is what on-demand re-entry needs from the spec table and
// attribute store: enough to decide whether a callee qualifies for
// nested analysis and to run it. internal/orchestrate and
// internal/specstore implement this over the durable spec table; tests
// implement it over a plain map.
type Registry interface {
	CFG(proc string) (*cfgmodel.CFG, bool)
	Attrs(proc string) (cfgmodel.ProcAttributes, bool)
	Summary(proc string) (*summary.Summary, bool)
	Put(proc string, sum *summary.Summary)
	SameFile(caller, callee string) bool
}

// Policy decides whether on-demand analysis may cross a file boundary
//.
type Policy interface {
	AllowCrossFile(caller, callee string) bool
}

// PolicyFunc adapts a plain function to Policy.
type PolicyFunc func(caller, callee string) bool

// AllowCrossFile implements Policy.
func (f PolicyFunc) AllowCrossFile(caller, callee string) bool { return f(caller, callee) }

// DenyCrossFile is the conservative default: on-demand re-entry never
// crosses a file boundary unless a Policy explicitly allows it.
var DenyCrossFile Policy = PolicyFunc(func(string, string) bool { return false })

// Hook is the nested-invocation entry point wired into a procedure's
// tabulation step. It owns the cycle breaker (which callees are
// currently being analyzed on the current call stack) that one of the
// four eligibility checks consults.
type Hook struct {
	Driver   *driver.Driver
	Registry Registry
	Policy   Policy

	mu     sync.Mutex
	active map[string]bool
}

// New returns a Hook; a nil policy falls back to DenyCrossFile.
func New(d *driver.Driver, reg Registry, policy Policy) *Hook {
	if policy == nil {
		policy = DenyCrossFile
	}
	return &Hook{Driver: d, Registry: reg, Policy: policy, active: make(map[string]bool)}
}

// Eligible reports whether callee qualifies for a nested on-demand
// invocation triggered while analyzing caller, per four
// guards: a defined body, not already active (cycle breaker), no
// existing summary (timestamp = 0), and same-file or policy-permitted
// cross-file analysis.
func (h *Hook) Eligible(caller, callee string) bool {
	attrs, ok := h.Registry.Attrs(callee)
	if !ok || !attrs.IsDefined {
		return false
	}
	if h.isActive(callee) {
		return false
	}
	if sum, ok := h.Registry.Summary(callee); ok && sum.Timestamp > 0 {
		return false
	}
	if !h.Registry.SameFile(caller, callee) && !h.Policy.AllowCrossFile(caller, callee) {
		return false
	}
	return true
}

func (h *Hook) isActive(proc string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active[proc]
}

func (h *Hook) enter(proc string) {
	h.mu.Lock()
	h.active[proc] = true
	h.mu.Unlock()
}

func (h *Hook) exit(proc string) {
	h.mu.Lock()
	delete(h.active, proc)
	h.mu.Unlock()
}

// Analyze runs a nested Footprint pass for callee, and a RE_EXECUTION
// pass on top of it if the Footprint pass produced any specs, saving
// and restoring the shared identifier generator's stamp around the
// recursive call so the caller's own fresh-id stream
// resumes exactly where it left off once the nested call returns.
// Failures inside the nested call are wrapped and returned, not
// swallowed, so the caller of the on-demand hook sees them.
func (h *Hook) Analyze(caller, callee string) (*summary.Summary, error) {
	if !h.Eligible(caller, callee) {
		return nil, fmt.Errorf("ondemand: %s is not eligible for nested analysis from %s", callee, caller)
	}

	cfg, ok := h.Registry.CFG(callee)
	if !ok {
		return nil, fmt.Errorf("ondemand: no CFG for %s", callee)
	}
	attrs, _ := h.Registry.Attrs(callee)

	gen := h.Driver.Ctx.Generator()
	snap := gen.Snapshot()
	h.enter(callee)
	defer func() {
		h.exit(callee)
		gen.Restore(snap)
	}()

	footprint, err := h.Driver.AnalyzeFootprint(cfg, attrs)
	if err != nil {
		return nil, fmt.Errorf("ondemand: footprint analysis of %s (called from %s): %w", callee, caller, err)
	}
	h.Registry.Put(callee, footprint)
	if !footprint.HasSpecs() {
		return footprint, nil
	}

	reexec, err := h.Driver.AnalyzeReExecution(cfg, attrs, footprint)
	if err != nil {
		return nil, fmt.Errorf("ondemand: re-execution analysis of %s (called from %s): %w", callee, caller, err)
	}
	h.Registry.Put(callee, reexec)
	return reexec, nil
}

// LookupAdapter implements tabulation.SpecLookup for one caller's
// analysis run: it consults the registry's current spec table first,
// and only falls back to a nested on-demand invocation when the callee
// is eligible but has no usable specs yet. A fresh LookupAdapter is
// built per analyzed procedure (it captures the caller's name), and
// wired into driver.Driver.Lookup before calling AnalyzeFootprint or
// AnalyzeReExecution for that procedure.
type LookupAdapter struct {
	Caller   string
	Hook     *Hook
	Registry Registry
}

// Lookup implements tabulation.SpecLookup.
func (a *LookupAdapter) Lookup(callee string) (tabulation.CalleeEntry, bool) {
	sum, ok := a.Registry.Summary(callee)
	if (!ok || !sum.HasSpecs()) && a.Hook != nil && a.Hook.Eligible(a.Caller, callee) {
		if triggered, err := a.Hook.Analyze(a.Caller, callee); err == nil && triggered.HasSpecs() {
			sum, ok = triggered, true
		}
	}
	if !ok || !sum.HasSpecs() {
		return tabulation.CalleeEntry{}, false
	}
	attrs, _ := a.Registry.Attrs(callee)
	return tabulation.CalleeEntry{
		ProcName: callee,
		Formals:  attrs.Formals,
		Specs:    sum.Payload.Specs,
		Language: attrs.Language.String(),
	}, true
}
