package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	Init()

	assert.NotNil(t, InfoLogger)
	assert.NotNil(t, WarnLogger)
	assert.NotNil(t, ErrorLogger)
	assert.NotNil(t, DebugLogger)
}

func TestLoggersUsableWithoutInit(t *testing.T) {
	// Package-level defaults cover code paths that log before main runs.
	assert.NotPanics(t, func() {
		Infof("probe %d", 1)
		Debug("probe")
		Warn("probe")
	})
}
