package summary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/term"
)

func TestNewSpecSortsVisitedByNodeID(t *testing.T) {
	pre := NewProp(prop.Empty())
	visited := []VisitedKey{
		{NodeID: "n2", Lines: []int{2}},
		{NodeID: "n1", Lines: []int{1}},
	}
	s := NewSpec(pre, nil, visited)
	require.Len(t, s.Visited, 2)
	assert.Equal(t, "n1", s.Visited[0].NodeID)
	assert.Equal(t, "n2", s.Visited[1].NodeID)
}

func TestVisitedNodeReportsMembership(t *testing.T) {
	s := NewSpec(NewProp(prop.Empty()), nil, []VisitedKey{{NodeID: "n1"}})
	assert.True(t, s.VisitedNode("n1"))
	assert.False(t, s.VisitedNode("n2"))
}

func TestNewJoinedMarksIsJoined(t *testing.T) {
	leaf := NewProp(prop.Empty())
	assert.False(t, leaf.IsJoined())

	joined := NewJoined(3, prop.Empty(), leaf, leaf)
	assert.True(t, joined.IsJoined())
	assert.Equal(t, 3, joined.N)
}

func TestRenameSuffixFreshensFootprintVars(t *testing.T) {
	gen := term.NewGenerator()

	id := term.Ident{Kind: term.Footprint, Name: "x"}
	pre := prop.Empty()
	pre.PiFP = append(pre.PiFP, prop.Atom{
		Op:    prop.Eq,
		Left:  term.Var{Id: id},
		Right: term.IntConst(0),
	})

	s := NewSpec(NewProp(pre), nil, nil)
	renamed := s.RenameSuffix(gen, "_1")

	free := renamed.Pre.P.FreeVarsFP()
	for _, f := range free {
		assert.NotEqual(t, "x", f.Name, "original footprint var should have been substituted")
	}
}
