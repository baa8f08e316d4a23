package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportJobLifecycle(t *testing.T) {
	job := &ImportJob{Status: ImportJobStatusRunning}
	assert.False(t, job.IsTerminal())

	job.Succeed()
	assert.Equal(t, ImportJobStatusSucceeded, job.Status)
	assert.True(t, job.IsTerminal())
	require.NotNil(t, job.FinishedAt)
	assert.False(t, job.FinishedAt.IsZero())
}

func TestImportJobFail(t *testing.T) {
	job := &ImportJob{Status: ImportJobStatusRunning}

	job.Fail("no usable rows found")

	assert.Equal(t, ImportJobStatusFailed, job.Status)
	assert.Equal(t, "no usable rows found", job.Error)
	assert.True(t, job.IsTerminal())
	require.NotNil(t, job.FinishedAt)
}
