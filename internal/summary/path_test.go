package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biabductor/biabductor/internal/term"
)

func TestExtendAppendsStepsImmutably(t *testing.T) {
	p := NewPath()
	p1 := p.Extend("n1", term.Loc{File: "a.c", Line: 1}, false)
	p2 := p1.Extend("n2", term.Loc{File: "a.c", Line: 2}, true)

	require.Len(t, p.Steps, 0, "original path must be untouched")
	require.Len(t, p1.Steps, 1)
	require.Len(t, p2.Steps, 2)
	assert.Equal(t, "n2", p2.Steps[1].NodeID)
	assert.True(t, p2.Steps[1].Exn)
	assert.Equal(t, p.Session, p2.Session)
}

func TestAddCallTagsLastStepWithDescription(t *testing.T) {
	caller := NewPath()
	callee := NewPath().Extend("callee_n1", term.Loc{File: "b.c", Line: 5}, false)

	combined := caller.AddCall(callee, "returned from g")
	require.Len(t, combined.Calls, 1)
	assert.Equal(t, "returned from g", combined.Calls[0].Steps[len(combined.Calls[0].Steps)-1].Descr)
}

func TestIterLongestSequenceDescendsIntoLastCall(t *testing.T) {
	caller := NewPath().Extend("n1", term.Loc{File: "a.c", Line: 1}, false)
	nested := NewPath().Extend("n2", term.Loc{File: "b.c", Line: 2}, false)

	withCall := caller.AddCall(nested, "call g")
	seq := withCall.IterLongestSequence()

	require.Len(t, seq, 2)
	assert.Equal(t, "n1", seq[0].NodeID)
	assert.Equal(t, "n2", seq[1].NodeID)
}

func TestJoinConcatenatesStepsAndCalls(t *testing.T) {
	a := NewPath().Extend("n1", term.Loc{File: "a.c", Line: 1}, false)
	b := &Path{Session: a.Session}
	b = b.Extend("n2", term.Loc{File: "a.c", Line: 2}, false)

	joined := Join(a, b)
	require.Len(t, joined.Steps, 2)
	assert.Equal(t, "n1", joined.Steps[0].NodeID)
	assert.Equal(t, "n2", joined.Steps[1].NodeID)
}
