package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/term"
)

func attrs(proc string) cfgmodel.ProcAttributes {
	return cfgmodel.ProcAttributes{
		ProcName: proc,
		RetType:  term.NewPrimitive(term.Int),
		Loc:      term.Loc{File: "a.c", Line: 3},
	}
}

func TestNewSummaryStartsInactiveFootprint(t *testing.T) {
	s := NewSummary(attrs("foo"))
	assert.Equal(t, Footprint, s.Phase)
	assert.Equal(t, Inactive, s.Status)
	assert.False(t, s.HasSpecs())
	assert.Equal(t, int64(0), s.Timestamp)
	assert.NotNil(t, s.DependencyMap)
	assert.NotNil(t, s.CallStats)
}

func TestActivateDeactivateBumpsTimestamp(t *testing.T) {
	s := NewSummary(attrs("foo"))
	s.Activate()
	assert.Equal(t, Active, s.Status)
	s.Deactivate(5)
	assert.Equal(t, Inactive, s.Status)
	assert.EqualValues(t, 5, s.Timestamp)
}

func TestAdvancePhaseMovesToReExecution(t *testing.T) {
	s := NewSummary(attrs("foo"))
	s.AdvancePhase()
	assert.Equal(t, ReExecution, s.Phase)
	assert.Equal(t, "RE_EXECUTION", s.Phase.String())
}

func TestPhaseAndStatusStringsDefaultCorrectly(t *testing.T) {
	var p Phase
	var st Status
	assert.Equal(t, "FOOTPRINT", p.String())
	assert.Equal(t, "INACTIVE", st.String())
}

func TestCallStatsRecordsPerCallee(t *testing.T) {
	cs := NewCallStats()
	cs.Record("bar")
	cs.Record("bar")
	cs.Record("baz")
	assert.Equal(t, 2, cs.Counts["bar"])
	assert.Equal(t, 1, cs.Counts["baz"])
}

func TestHasSpecsReflectsPayload(t *testing.T) {
	s := NewSummary(attrs("foo"))
	assert.False(t, s.HasSpecs())
	s.Payload.Specs = append(s.Payload.Specs, &Spec{})
	assert.True(t, s.HasSpecs())
}
