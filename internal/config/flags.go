package config

// WorklistMode selects the worklist's node-selection policy.
type WorklistMode int

const (
	// WorklistPriority is the default: lowest visit_count first, ties
	// broken by shorter distance-to-exit, ties broken by higher node id.
	WorklistPriority WorklistMode = iota
	// WorklistByID selects purely by node id.
	WorklistByID
	// WorklistByDistance selects purely by distance-to-exit.
	WorklistByDistance
)

// Flags mirrors the CLI surface of : a single driver command with
// these flags bound by cmd/biabductor via cobra/pflag. Kept as a plain
// struct (rather than reading package-level globals) so tests can build
// an arbitrary Flags value without touching the process's real flag set.
type Flags struct {
	ResultsDir            string // --results-dir DIR (required)
	Cluster                string // --cluster NAME
	CompilationDBFiles      []string // --compilation-db-files F...
	DeveloperMode           bool // --developer-mode
	OnlyFootprint           bool // --only-footprint
	OnlyNospecs             bool // --only-nospecs
	OnlySkips               bool // --only-skips
	NumCores                int  // --num-cores N
	MaxNumProc              int  // --max-num-proc N
	MaxRecursion            int  // --max-recursion N
	WorklistMode            WorklistMode // --worklist-mode {0,1,2}
	Reactive                bool // --reactive
	FootprintOn             bool // --footprint {on,off}
	Ondemand                bool // --ondemand
	PrintBuiltins           bool // --print-builtins
	WriteHTML               bool // --write-html
	SpecAbsLevel            int  // --spec-abs-level N
	UndoJoin                bool // --undo-join
	MeetLevel               int  // --meet-level N
	ShowBuckets             bool // --show-buckets
	ReportNullableInconsistency bool // --report-nullable-inconsistency

	// Iteration/recursion/symop bounds referenced by but
	// not named as their own flag in ; exposed with sane defaults
	// so the worklist and driver have something concrete to enforce.
	MaxIterations int
	SymopBudget   int
}

// DefaultFlags returns the flag defaults a bare `biabductor --results-dir
// DIR` invocation would run with.
func DefaultFlags() Flags {
	return Flags{
		NumCores:      1,
		MaxNumProc:    0, // 0 = unlimited
		MaxRecursion:  3,
		WorklistMode:  WorklistPriority,
		FootprintOn:   true,
		SpecAbsLevel:  1,
		MeetLevel:     0,
		MaxIterations: 1000,
		SymopBudget:   1000000,
	}
}

// Validate reports the "missing results-dir" fatal setup error // names explicitly ("Missing results-dir prints usage and exits
// non-zero").
func (f Flags) Validate() error {
	if f.ResultsDir == "" {
		return NewFault(FaultInternal, "missing required --results-dir")
	}
	return nil
}
