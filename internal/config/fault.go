package config

import (
	"fmt"

	"github.com/pkg/errors"
)

// FaultKind is the closed set of control-flow exceptions the source
// analyzer raised as purpose-built OCaml exceptions (Missing_fld,
// Bad_footprint, Precondition_not_found, Timeout_exe, ...), collapsed
// here into one AnalysisFault sum; each path boundary (worklist, driver,
// orchestrator) catches AnalysisFault and decides recover/log/abort
// based on its Kind and Recoverable().
type FaultKind int

const (
	FaultMissingFld FaultKind = iota
	FaultBadFootprint
	FaultPreconditionNotFound
	FaultSymexecMemory
	FaultTimeout
	FaultRecursion
	FaultProverChecks
	FaultInternal
)

func (k FaultKind) String() string {
	switch k {
	case FaultMissingFld:
		return "missing_fld"
	case FaultBadFootprint:
		return "bad_footprint"
	case FaultPreconditionNotFound:
		return "precondition_not_found"
	case FaultSymexecMemory:
		return "symexec_memory_error"
	case FaultTimeout:
		return "timeout"
	case FaultRecursion:
		return "recursion"
	case FaultProverChecks:
		return "prover_checks"
	case FaultInternal:
		return "internal_error"
	default:
		return "fault"
	}
}

// TimeoutBudget names which resource a Timeout fault exceeded.
type TimeoutBudget int

const (
	BudgetSymop TimeoutBudget = iota
	BudgetRecursion
	BudgetWallclock
)

// Fault is the single exception type every path boundary catches.
type Fault struct {
	Kind    FaultKind
	Field   string        // set for FaultMissingFld
	Budget  TimeoutBudget // set for FaultTimeout
	Message string
	cause   error
}

func (f *Fault) Error() string {
	if f.Message != "" {
		return fmt.Sprintf("%s: %s", f.Kind, f.Message)
	}
	return f.Kind.String()
}

func (f *Fault) Unwrap() error { return f.cause }

// NewFault builds a Fault and attaches a stack trace via pkg/errors, so
// --developer-mode backtraces have a frame at the fault site.
func NewFault(kind FaultKind, message string) *Fault {
	return &Fault{Kind: kind, Message: message, cause: errors.New(message)}
}

// MissingFld builds the fault rearrangement raises when an hpred's
// strexp is a struct missing a required field in re-execution phase
//.
func MissingFld(field string) *Fault {
	return &Fault{Kind: FaultMissingFld, Field: field, Message: "missing field " + field,
		cause: errors.Errorf("missing field %s", field)}
}

// SymexecMemoryError builds the fault rearrangement raises when no hpred
// matches during re-execution phase.
func SymexecMemoryError(detail string) *Fault {
	return &Fault{Kind: FaultSymexecMemory, Message: detail, cause: errors.New(detail)}
}

// Timeout builds a Timeout fault for the given budget.
func Timeout(budget TimeoutBudget, detail string) *Fault {
	return &Fault{Kind: FaultTimeout, Budget: budget, Message: detail, cause: errors.New(detail)}
}

// IsFault reports whether err is (or wraps) an *Fault, and returns it.
func IsFault(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Recoverable reports whether the path boundary should log-and-continue
// (true) or abort the whole procedure/worker (false), per // propagation policy: everything except Timeout and InternalError is
// recoverable at a per-path boundary.
func (f *Fault) Recoverable() bool {
	return f.Kind != FaultTimeout && f.Kind != FaultInternal
}
