package tabulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/prop"
	"github.com/biabductor/biabductor/internal/rearrange"
	"github.com/biabductor/biabductor/internal/term"
)

func ret(name string) term.RetBinding {
	return term.RetBinding{Id: term.Ident{Kind: term.Normal, Name: name}}
}

func TestFilterConsistentDropsInconsistentResults(t *testing.T) {
	results := []CallResult{
		{Consistent: true},
		{Consistent: false},
		{Consistent: true},
	}
	kept := filterConsistent(results)
	assert.Len(t, kept, 2)
}

func TestMostInformativePrefersDerefNull(t *testing.T) {
	errs := []rearrange.DerefResult{
		{Defect: rearrange.DerefDangling, Detail: "dangling"},
		{Defect: rearrange.DerefNull, Detail: "null"},
	}
	assert.Equal(t, rearrange.DerefNull, mostInformative(errs).Defect)
}

func TestMostInformativeFallsBackToFirst(t *testing.T) {
	errs := []rearrange.DerefResult{
		{Defect: rearrange.DerefDangling, Detail: "dangling"},
	}
	assert.Equal(t, rearrange.DerefDangling, mostInformative(errs).Defect)
}

func TestPostProcessReturnsDereferenceErrorWhenNothingConsistent(t *testing.T) {
	tb := &Tabulator{}
	derefErrs := []rearrange.DerefResult{{Defect: rearrange.DerefNull, Detail: "null"}}

	_, err := tb.postProcess(nil, derefErrs, term.Call{}, CalleeEntry{ProcName: "foo"})
	require.Error(t, err)
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "dereference", callErr.Kind)
}

func TestPostProcessReturnsPreconditionNotMetWhenNoResultsAtAll(t *testing.T) {
	tb := &Tabulator{}
	_, err := tb.postProcess(nil, nil, term.Call{}, CalleeEntry{ProcName: "foo"})
	require.Error(t, err)
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "precondition_not_met", callErr.Kind)
}

func TestPostProcessKeepsDivergingResultsWhenNoneConsistent(t *testing.T) {
	tb := &Tabulator{}
	results := []CallResult{{Consistent: false}}
	out, err := tb.postProcess(results, nil, term.Call{}, CalleeEntry{ProcName: "foo"})
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestPostProcessDropsMissingResultsInReExecutionPhase(t *testing.T) {
	tb := &Tabulator{Opts: Options{Phase: rearrange.PhaseReExecution}}
	results := []CallResult{
		{Consistent: true, MissingPi: []prop.Atom{{Op: prop.Eq}}},
		{Consistent: true},
	}
	out, err := tb.postProcess(results, nil, term.Call{}, CalleeEntry{ProcName: "foo"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].MissingPi)
}

func TestPostProcessFailsWhenAllReExecutionResultsHaveMissingPi(t *testing.T) {
	tb := &Tabulator{Opts: Options{Phase: rearrange.PhaseReExecution}}
	results := []CallResult{
		{Consistent: true, MissingPi: []prop.Atom{{Op: prop.Eq}}},
	}
	_, err := tb.postProcess(results, nil, term.Call{}, CalleeEntry{ProcName: "foo"})
	require.Error(t, err)
	var callErr *CallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, "precondition_not_met", callErr.Kind)
}

func TestPostProcessKeepsMissingResultsInFootprintPhase(t *testing.T) {
	tb := &Tabulator{Opts: Options{Phase: rearrange.PhaseFootprint}}
	results := []CallResult{
		{Consistent: true, MissingPi: []prop.Atom{{Op: prop.Eq}}},
	}
	out, err := tb.postProcess(results, nil, term.Call{}, CalleeEntry{ProcName: "foo"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].MissingPi)
}

func TestIsLikelyGetterRequiresJavaAndAtMostOneFormal(t *testing.T) {
	tb := &Tabulator{}
	assert.False(t, tb.isLikelyGetter(CalleeEntry{Language: "c"}))
	assert.True(t, tb.isLikelyGetter(CalleeEntry{Language: "java"}))
	assert.True(t, tb.isLikelyGetter(CalleeEntry{Language: "java", Formals: make([]cfgmodel.Formal, 1)}))
	assert.False(t, tb.isLikelyGetter(CalleeEntry{Language: "java", Formals: make([]cfgmodel.Formal, 2)}))
}

func TestTagGetterResultsAttachesAretval(t *testing.T) {
	call := term.Call{Rets: []term.RetBinding{ret("r")}}
	results := []CallResult{{Prop: prop.Empty()}}
	out := tagGetterResults(results, call, "getX")

	attr, ok := out[0].Prop.GetAttr(term.Var{Id: ret("r").Id}, (term.Aretval{}).Key())
	require.True(t, ok)
	assert.Equal(t, term.Aretval{Callee: "getX"}, attr)
}

func TestTagGetterResultsNoOpWithoutRets(t *testing.T) {
	results := []CallResult{{Prop: prop.Empty()}}
	out := tagGetterResults(results, term.Call{}, "getX")
	assert.Same(t, results[0].Prop, out[0].Prop)
}

func TestCheckTaintIgnoresNonSensitiveSink(t *testing.T) {
	tb := &Tabulator{Opts: Options{SensitiveSinks: map[string]bool{"sink": true}}}
	results := []CallResult{{Prop: prop.Empty()}}
	out := tb.checkTaint(results, term.Call{}, "not_a_sink")
	assert.Empty(t, out[0].TaintFlags)
}

func TestCheckTaintFlagsTaintedArgumentReachingSink(t *testing.T) {
	arg := term.Var{Id: term.Ident{Kind: term.Normal, Name: "x"}}
	p := prop.Empty().AddAttr(arg, term.Ataint{Source: "user_input"})

	tb := &Tabulator{Opts: Options{SensitiveSinks: map[string]bool{"sink": true}}}
	results := []CallResult{{Prop: p}}
	out := tb.checkTaint(results, term.Call{Args: []term.Expr{arg}}, "sink")

	require.Len(t, out[0].TaintFlags, 1)
	assert.Equal(t, "user_input", out[0].TaintFlags[0].Source)
	assert.Equal(t, "sink", out[0].TaintFlags[0].Sink)
}

func TestCallErrorFormatsKindAndDetail(t *testing.T) {
	err := &CallError{Kind: "dereference", Detail: "null"}
	assert.Contains(t, err.Error(), "dereference")
	assert.Contains(t, err.Error(), "null")
}
