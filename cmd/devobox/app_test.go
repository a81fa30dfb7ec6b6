package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devobox/devobox/pkg/errdomain"
)

func TestFormatErrConfigError(t *testing.T) {
	err := errdomain.New(errdomain.ConfigError, "duplicate service name: cache")
	got := formatErr(err)
	assert.Contains(t, got, "ConfigError")
	assert.Contains(t, got, "duplicate service name: cache")
}

func TestFormatErrUserAbortUsesWarningGlyph(t *testing.T) {
	err := errdomain.New(errdomain.UserAbort, "interrupted")
	got := formatErr(err)
	assert.Contains(t, got, "UserAbort")
	assert.Contains(t, got, "interrupted")
}

func TestFormatErrPlainErrorFallsBack(t *testing.T) {
	got := formatErr(errors.New("boom"))
	assert.Contains(t, got, "boom")
}
