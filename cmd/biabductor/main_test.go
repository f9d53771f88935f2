package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biabductor/biabductor/internal/cfgmodel"
	"github.com/biabductor/biabductor/internal/errlog"
	"github.com/biabductor/biabductor/internal/summary"
	"github.com/biabductor/biabductor/internal/term"
)

const fixtureSrc = `
proc "foo"() -> int {
  node n0 start -> n1
  node n1 exit
}
`

func TestLoadProgramParsesEachFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.fixture")
	require.NoError(t, os.WriteFile(path, []byte(fixtureSrc), 0o644))

	prog, err := loadProgram([]string{path})
	require.NoError(t, err)
	assert.Contains(t, prog.CFGs, "foo")
	assert.Contains(t, prog.Attrs, "foo")
}

func TestLoadProgramPropagatesParseErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.fixture")
	require.NoError(t, os.WriteFile(path, []byte("not a valid fixture {{{"), 0o644))

	_, err := loadProgram([]string{path})
	assert.Error(t, err)
}

func TestWriteOutputStreamsWritesBothFiles(t *testing.T) {
	dir := t.TempDir()

	log := errlog.NewLog(errlog.Censor{})
	log.Report(errlog.Issue{Key: "k1", BugType: "NULL_DEREFERENCE", Procedure: "foo", File: "a.c"})

	sums := map[string]*summary.Summary{
		"foo": summary.NewSummary(cfgmodel.ProcAttributes{ProcName: "foo", Loc: term.Loc{File: "a.c", Line: 1}}),
	}

	require.NoError(t, writeOutputStreams(dir, log, sums))

	issues, err := os.ReadFile(filepath.Join(dir, "issues.json"))
	require.NoError(t, err)
	assert.Contains(t, string(issues), "NULL_DEREFERENCE")

	costs, err := os.ReadFile(filepath.Join(dir, "costs.json"))
	require.NoError(t, err)
	var entry map[string]interface{}
	require.NoError(t, json.NewDecoder(bytes.NewReader(costs)).Decode(&entry))
	assert.Equal(t, "foo", entry["procedure_name"])
}

func TestExitCodeFor(t *testing.T) {
	assert.Equal(t, 0, exitCodeFor(nil))
	assert.Equal(t, 1, exitCodeFor(assert.AnError))
}
