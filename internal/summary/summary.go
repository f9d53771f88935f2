package summary

import (
	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/term"
)

// Phase is a summary's lifecycle stage. Distinct from
// config.Phase: config.Phase scopes a single analyzer invocation's
// acquire/release toggle, while Phase here is the durable, persisted
// field of a procedure's summary. internal/driver converts between the
// two at its own boundary.
type Phase int

const (
	Footprint Phase = iota
	ReExecution
)

func (p Phase) String() string {
	if p == ReExecution {
		return "RE_EXECUTION"
	}
	return "FOOTPRINT"
}

// Status is whether a procedure's summary is still being worked on by its
// owning analyzer.
type Status int

const (
	Inactive Status = iota
	Active
)

func (s Status) String() string {
	if s == Active {
		return "ACTIVE"
	}
	return "INACTIVE"
}

// Stats is the free-form counters bag a summary carries: symop counts,
// timeout flags, path counts. Kept as a concrete struct (not map[string]
// any) since every field here is read by a specific consumer
// (orchestrator fixpoint detection, telemetry sink, --show-buckets).
type Stats struct {
	SymopsConsumed int
	Timeout        bool
	NumPreposts    int
	NumVisitNodes  int
	NumErrors      int
}

// CallStats records, for one summary, how many times each callee was
// invoked during its last analysis pass; the orchestrator uses this to
// decide when a caller's dependency_map entry should advance.
type CallStats struct {
	Counts map[string]int
}

// NewCallStats returns an empty CallStats.
func NewCallStats() *CallStats { return &CallStats{Counts: make(map[string]int)} }

// Record increments the call count for callee.
func (c *CallStats) Record(callee string) { c.Counts[callee]++ }

// TypeState is the alternative payload a summary can carry instead of a
// spec list, used by
// lightweight checkers that never run full bi-abduction but still
// publish a per-procedure fact (e.g. a purity/nullability summary). No
// such checker is wired in this engine yet; the variant exists so a
// payload switch is exhaustive from day one rather than needing a
// breaking change when one is added.
type TypeState struct {
	Facts map[string]string
}

// Payload is the sum type a Summary's payload slot holds.
type Payload struct {
	Specs     []*Spec
	TypeState *TypeState
}

// Summary is the per-procedure analysis result the driver produces and
// the orchestrator persists: "{proc_name, ret_type, formals,
// attributes, loc, nodes, phase, status, timestamp>=0, dependency_map,
// stats, payload, call_stats}". Lifecycle: created empty by the driver,
// mutated only by its own analyzer, persisted on completion. Grounded on
// internal/semantic.ModuleSummary's accumulate-then-freeze shape,
// generalized to the procedure-scoped payload this engine needs.
type Summary struct {
	ProcName       string
	RetType        term.Type
	Formals        []cfgmodel.Formal
	Attributes     cfgmodel.ProcAttributes
	Loc            term.Loc
	Nodes          []string // node ids of the procedure's CFG, for trace rendering
	Phase          Phase
	Status         Status
	Timestamp      int64
	DependencyMap  map[string]int64 // callee proc name -> timestamp last observed
	Stats          Stats
	Payload        Payload
	CallStats      *CallStats
}

// NewSummary creates an empty, Inactive, Footprint-phase summary for a
// procedure, as the driver does before handing it to an analyzer.
func NewSummary(attrs cfgmodel.ProcAttributes) *Summary {
	formals := append([]cfgmodel.Formal(nil), attrs.Formals...)
	return &Summary{
		ProcName:      attrs.ProcName,
		RetType:       attrs.RetType,
		Formals:       formals,
		Attributes:    attrs,
		Loc:           attrs.Loc,
		Phase:         Footprint,
		Status:        Inactive,
		DependencyMap: make(map[string]int64),
		CallStats:     NewCallStats(),
	}
}

// Activate marks a summary as currently owned by an in-progress analyzer
// invocation; the orchestrator refuses to hand the same procedure to a
// second worker while Active.
func (s *Summary) Activate() { s.Status = Active }

// Deactivate marks a summary as no longer owned, bumping its timestamp
// so dependents can observe a change happened.
func (s *Summary) Deactivate(newTimestamp int64) {
	s.Status = Inactive
	s.Timestamp = newTimestamp
}

// AdvancePhase flips a summary from Footprint to RE_EXECUTION, the
// transition the orchestrator gates on the callee's position in the
// call graph's reverse-topological order.
func (s *Summary) AdvancePhase() { s.Phase = ReExecution }

// HasSpecs reports whether the summary carries a non-empty spec list.
func (s *Summary) HasSpecs() bool { return len(s.Payload.Specs) > 0 }
