// Package errlog implements the error taxonomy, the JSON issue record
// ("Issues output"), hash/key computation, and the per-issue censor
// rule.
// Grounded on the internal/errors package: CompilerError's shape and
// ErrorReporter's caret-rendering terminal output are generalized here
// from "one compiler diagnostic about a parse/type error" to "one
// analyzer issue about a symbolic-execution defect",
// gaining a JSON sink alongside the existing terminal one.
package errlog

import "github.com/biabductor/biabductor/internal/term"

// Kind is the closed error taxonomy a symbolic-execution run can report.
type Kind int

const (
	KindNullDereference Kind = iota
	KindParameterNotNullChecked
	KindFieldNotNullChecked
	KindUseAfterFree
	KindDanglingPointerDereference
	KindSkipPointerDereference
	KindLeakMemory
	KindLeakFile
	KindLeakLock
	KindLeakARC
	KindDeallocationMismatch
	KindDivideByZero
	KindArrayOutOfBoundsL1
	KindArrayOutOfBoundsL2
	KindArrayOutOfBoundsL3
	KindClassCastException
	KindPreconditionNotMet
	KindStackVariableAddressEscape
	KindRetainCycle
	KindTaintedValueReachingSensitiveFunction
	KindPointerSizeMismatch
	KindAssertionFailure
	KindWrongArgumentNumber
	KindBadFootprint
	KindInternalError
	KindTimeout
)

var kindNames = map[Kind]string{
	KindNullDereference:                       "NULL_DEREFERENCE",
	KindParameterNotNullChecked:                "PARAMETER_NOT_NULL_CHECKED",
	KindFieldNotNullChecked:                    "FIELD_NOT_NULL_CHECKED",
	KindUseAfterFree:                           "USE_AFTER_FREE",
	KindDanglingPointerDereference:             "DANGLING_POINTER_DEREFERENCE",
	KindSkipPointerDereference:                 "SKIP_POINTER_DEREFERENCE",
	KindLeakMemory:                             "MEMORY_LEAK",
	KindLeakFile:                               "RESOURCE_LEAK_FILE",
	KindLeakLock:                               "RESOURCE_LEAK_LOCK",
	KindLeakARC:                                "RETAIN_LEAK_ARC",
	KindDeallocationMismatch:                   "DEALLOCATION_MISMATCH",
	KindDivideByZero:                           "DIVIDE_BY_ZERO",
	KindArrayOutOfBoundsL1:                     "ARRAY_OUT_OF_BOUNDS_L1",
	KindArrayOutOfBoundsL2:                     "ARRAY_OUT_OF_BOUNDS_L2",
	KindArrayOutOfBoundsL3:                     "ARRAY_OUT_OF_BOUNDS_L3",
	KindClassCastException:                     "CLASS_CAST_EXCEPTION",
	KindPreconditionNotMet:                     "PRECONDITION_NOT_MET",
	KindStackVariableAddressEscape:             "STACK_VARIABLE_ADDRESS_ESCAPE",
	KindRetainCycle:                            "RETAIN_CYCLE",
	KindTaintedValueReachingSensitiveFunction:  "TAINTED_VALUE_REACHING_SENSITIVE_FUNCTION",
	KindPointerSizeMismatch:                    "POINTER_SIZE_MISMATCH",
	KindAssertionFailure:                       "ASSERTION_FAILURE",
	KindWrongArgumentNumber:                    "WRONG_ARGUMENT_NUMBER",
	KindBadFootprint:                           "BAD_FOOTPRINT",
	KindInternalError:                          "INTERNAL_ERROR",
	KindTimeout:                                "TIMEOUT",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN_ISSUE_KIND"
}

// Severity is the issue's reporting level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityAdvice
	SeverityWarning
	SeverityError
	SeverityLike
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "Info"
	case SeverityAdvice:
		return "Advice"
	case SeverityWarning:
		return "Warning"
	case SeverityError:
		return "Error"
	case SeverityLike:
		return "Like"
	default:
		return "Info"
	}
}

// DefaultSeverity is the taxonomy table's default severity per kind;
// callers may override (e.g. NullDereference downgrades to Warning
// for a ParameterNotNullChecked/FieldNotNullChecked bucket).
func DefaultSeverity(k Kind) Severity {
	switch k {
	case KindUseAfterFree, KindDanglingPointerDereference, KindDeallocationMismatch,
		KindDivideByZero, KindArrayOutOfBoundsL1, KindClassCastException,
		KindStackVariableAddressEscape, KindRetainCycle,
		KindTaintedValueReachingSensitiveFunction, KindInternalError, KindNullDereference:
		return SeverityError
	case KindSkipPointerDereference, KindLeakMemory, KindLeakFile, KindLeakLock, KindLeakARC,
		KindArrayOutOfBoundsL2, KindArrayOutOfBoundsL3, KindPreconditionNotMet,
		KindPointerSizeMismatch, KindParameterNotNullChecked, KindFieldNotNullChecked:
		return SeverityWarning
	case KindAssertionFailure, KindWrongArgumentNumber, KindBadFootprint, KindTimeout:
		return SeverityAdvice
	default:
		return SeverityWarning
	}
}

// BugTraceStep is one entry of an issue's bug_trace.
type BugTraceStep struct {
	Level       int
	File        string
	Line        int
	Column      int
	Description string
}

// Issue is the JSON issue record of : "{bug_type, qualifier,
// severity, file, line, column, procedure, procedure_start_line,
// bug_trace, key, hash, node_key?, dotty?, censored_reason?, access?,
// extras?}".
type Issue struct {
	BugType            string         `json:"bug_type"`
	Qualifier          string         `json:"qualifier"`
	Severity           Severity       `json:"severity"`
	File               string         `json:"file"`
	Line               int            `json:"line"`
	Column             int            `json:"column"`
	Procedure          string         `json:"procedure"`
	ProcedureStartLine int            `json:"procedure_start_line"`
	BugTrace           []BugTraceStep `json:"bug_trace"`
	Key                string         `json:"key"`
	Hash               string         `json:"hash"`
	NodeKey            string         `json:"node_key,omitempty"`
	Dotty              string         `json:"dotty,omitempty"`
	CensoredReason     string         `json:"censored_reason,omitempty"`
	Access             string         `json:"access,omitempty"`
	Extras             map[string]string `json:"extras,omitempty"`

	kind Kind
}

// Kind returns the taxonomy kind this issue was built from, used by the
// bucket/severity helpers and by tests asserting on a specific defect
// class rather than its string rendering.
func (i Issue) Kind() Kind { return i.kind }

// Loc is a convenience accessor bundling file/line/column as a term.Loc.
func (i Issue) Loc() term.Loc { return term.Loc{File: i.File, Line: i.Line, Column: i.Column} }
