package driver

import (
	"github.com/biabductor/biabductor/internal/config"
	"github.com/biabductor/biabductor/internal/rearrange"
	"github.com/biabductor/biabductor/internal/summary"
)

// Phase is the driver's own view of the two-phase per-procedure analysis
//. Distinct from config.Phase (a scoped, acquire/release
// toggle on the shared AnalysisContext) and summary.Phase (the durable
// field persisted on a procedure's Summary): the driver converts to each
// at the boundary where that package's notion of phase is actually
// needed, rather than letting one enum leak across all three.
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

func (p Phase) toConfig() config.Phase {
	if p == ReExecution {
		return config.PhaseReExecution
	}
	return config.PhaseFootprint
}

func (p Phase) toRearrange() rearrange.Phase {
	if p == ReExecution {
		return rearrange.PhaseReExecution
	}
	return rearrange.PhaseFootprint
}

func (p Phase) toSummary() summary.Phase {
	if p == ReExecution {
		return summary.ReExecution
	}
	return summary.Footprint
}
