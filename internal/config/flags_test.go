package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFlagsSetsSaneDefaults(t *testing.T) {
	f := DefaultFlags()
	assert.Equal(t, 1, f.NumCores)
	assert.Equal(t, 0, f.MaxNumProc)
	assert.Equal(t, WorklistPriority, f.WorklistMode)
	assert.True(t, f.FootprintOn)
}

func TestValidateRequiresResultsDir(t *testing.T) {
	f := DefaultFlags()
	err := f.Validate()
	require.Error(t, err)

	fault, ok := IsFault(err)
	require.True(t, ok)
	assert.Equal(t, FaultInternal, fault.Kind)
}

func TestValidateAcceptsResultsDir(t *testing.T) {
	f := DefaultFlags()
	f.ResultsDir = "/tmp/out"
	assert.NoError(t, f.Validate())
}
