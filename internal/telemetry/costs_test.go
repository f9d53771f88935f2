package telemetry

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/term"
)

func TestCostsFromSummariesBuildsOneEntryPerProcedure(t *testing.T) {
	sums := map[string]*summary.Summary{
		"foo": summary.NewSummary(cfgmodel.ProcAttributes{ProcName: "foo", Loc: term.Loc{File: "a.c", Line: 3}}),
		"bar": summary.NewSummary(cfgmodel.ProcAttributes{ProcName: "bar", Loc: term.Loc{File: "b.c", Line: 9}}),
	}
	entries := CostsFromSummaries(sums)
	assert.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotEmpty(t, e.Hash)
		assert.Equal(t, "O(1)", e.ExecCost.Hum.BigO)
	}
}

func TestWriteCostsJSONStreamEmitsOneObjectPerLine(t *testing.T) {
	entries := []CostEntry{
		{Hash: "h1", ProcedureName: "foo"},
		{Hash: "h2", ProcedureName: "bar"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCostsJSONStream(&buf, entries))

	dec := json.NewDecoder(&buf)
	var got []CostEntry
	for dec.More() {
		var e CostEntry
		require.NoError(t, dec.Decode(&e))
		got = append(got, e)
	}
	assert.Len(t, got, 2)
	assert.Equal(t, "foo", got[0].ProcedureName)
}
