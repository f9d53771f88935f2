package cfgmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoNodeCFG() *CFG {
	return &CFG{
		ProcName: "foo",
		StartID:  "n0",
		ExitID:   "n1",
		Nodes: map[string]*Node{
			"n0": {ID: "n0", Kind: Start, Succs: []string{"n1"}},
			"n1": {ID: "n1", Kind: Exit},
		},
	}
}

func TestSuccessorsResolvesNodes(t *testing.T) {
	g := twoNodeCFG()
	succs := g.Successors("n0")
	require.Len(t, succs, 1)
	assert.Equal(t, "n1", succs[0].ID)
}

func TestSuccessorsOfUnknownNodeIsEmpty(t *testing.T) {
	g := twoNodeCFG()
	assert.Empty(t, g.Successors("missing"))
}

func TestExnSuccessorsResolvesNodes(t *testing.T) {
	g := twoNodeCFG()
	g.Nodes["n0"].ExnSuccs = []string{"n1"}
	succs := g.ExnSuccessors("n0")
	require.Len(t, succs, 1)
	assert.Equal(t, "n1", succs[0].ID)
}

func TestValidateAcceptsWellFormedGraph(t *testing.T) {
	g := twoNodeCFG()
	assert.NoError(t, g.Validate())
}

func TestValidateRejectsMissingStart(t *testing.T) {
	g := twoNodeCFG()
	g.StartID = "missing"
	assert.Error(t, g.Validate())
}

func TestValidateRejectsUnresolvedSuccessor(t *testing.T) {
	g := twoNodeCFG()
	g.Nodes["n1"].Succs = []string{"ghost"}
	assert.Error(t, g.Validate())
}

func TestNodeKindStringRoundTrips(t *testing.T) {
	cases := map[NodeKind]string{
		Start:      "start",
		Exit:       "exit",
		Stmt:       "stmt",
		PruneTrue:  "prune_true",
		PruneFalse: "prune_false",
		Join:       "join",
		Skip:       "skip",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestNewProgramStartsEmpty(t *testing.T) {
	p := NewProgram()
	assert.Empty(t, p.CFGs)
	assert.Empty(t, p.Attrs)
	assert.NotNil(t, p.Types)
}
