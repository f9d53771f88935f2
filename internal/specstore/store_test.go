package specstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/term"
)

func sampleSummary(proc string) *summary.Summary {
	attrs := cfgmodel.ProcAttributes{
		ProcName: proc,
		RetType:  term.PrimitiveType{Kind: term.Int},
		Loc:      term.Loc{File: "a.c", Line: 1},
	}
	sum := summary.NewSummary(attrs)
	sum.Timestamp = 7
	sum.DependencyMap["callee"] = 3
	sum.AdvancePhase()

	pre := summary.NewProp(prop.Empty())
	post := prop.Empty()
	post.Sigma = append(post.Sigma, prop.Hpointsto{
		Lhs: term.Lvar{Pvar: term.Pvar{Name: "x", Kind: term.PvarLocal, Proc: proc}},
		Se:  prop.Eexp{Exp: term.Const{Kind: term.ConstInt, IntVal: 1}},
		Texp: term.Sizeof{Typ: term.PrimitiveType{Kind: term.Int}},
	})
	spec := summary.NewSpec(pre, []summary.PostEntry{{Prop: post}}, nil)
	sum.Payload.Specs = append(sum.Payload.Specs, spec)
	return sum
}

func TestPutThenGetRoundTrips(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	sum := sampleSummary("foo")
	require.NoError(t, s.Put("foo", KindSpecs, sum))

	got, ok, err := s.Get("foo", KindSpecs)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sum.Timestamp, got.Timestamp)
	assert.Equal(t, sum.DependencyMap, got.DependencyMap)
	require.Len(t, got.Payload.Specs, 1)
	require.Len(t, got.Payload.Specs[0].Posts, 1)
	hpts, ok := got.Payload.Specs[0].Posts[0].Prop.Sigma[0].(prop.Hpointsto)
	require.True(t, ok)
	assert.Equal(t, "x", hpts.Lhs.(term.Lvar).Pvar.Name)
}

func TestGetMissingIsAbsentNotError(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	got, ok, err := s.Get("nope", KindSpecs)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestGetRejectsFormatVersionMismatchAsAbsent(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	sum := sampleSummary("foo")
	require.NoError(t, s.Put("foo", KindSpecs, sum))

	_, err = s.db.Exec(`UPDATE summaries SET format_version = ? WHERE proc_name = ?`, FormatVersion+1, "foo")
	require.NoError(t, err)

	got, ok, err := s.Get("foo", KindSpecs)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestPutReplacesExistingRow(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	first := sampleSummary("foo")
	require.NoError(t, s.Put("foo", KindSpecs, first))

	second := sampleSummary("foo")
	second.Timestamp = 99
	require.NoError(t, s.Put("foo", KindSpecs, second))

	got, ok, err := s.Get("foo", KindSpecs)
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 99, got.Timestamp)
}

func TestLoadAllReturnsEveryStoredProcedure(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("foo", KindSpecs, sampleSummary("foo")))
	require.NoError(t, s.Put("bar", KindSpecs, sampleSummary("bar")))

	all, err := s.LoadAll(KindSpecs)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Contains(t, all, "foo")
	assert.Contains(t, all, "bar")
}

func TestDeleteRemovesStoredRow(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("foo", KindSpecs, sampleSummary("foo")))
	require.NoError(t, s.Delete("foo", KindSpecs))

	_, ok, err := s.Get("foo", KindSpecs)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKindsAreIndependent(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	specsSum := sampleSummary("foo")
	typestateSum := sampleSummary("foo")
	typestateSum.Timestamp = 123

	require.NoError(t, s.Put("foo", KindSpecs, specsSum))
	require.NoError(t, s.Put("foo", KindTypeState, typestateSum))

	got, ok, err := s.Get("foo", KindTypeState)
	require.NoError(t, err)
	require.True(t, ok)
	assert.EqualValues(t, 123, got.Timestamp)
}
