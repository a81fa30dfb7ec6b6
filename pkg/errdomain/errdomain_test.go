package errdomain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "ConfigError", ConfigError.String())
	assert.Equal(t, "EngineError", EngineError.String())
	assert.Equal(t, "StartupFailed", StartupFailed.String())
	assert.Equal(t, "UserAbort", UserAbort.String())
	assert.Equal(t, "MissingContainer", MissingContainer.String())
	assert.Equal(t, "UnknownError", Category(999).String())
}

func TestNewAndIs(t *testing.T) {
	err := New(StartupFailed, "pg did not become healthy")
	assert.True(t, Is(err, StartupFailed))
	assert.False(t, Is(err, ConfigError))
	assert.Contains(t, err.Error(), "pg did not become healthy")
}

func TestNewfFormatsMessage(t *testing.T) {
	err := Newf(EngineError, "starting %s: %v", "pg", errors.New("boom"))
	assert.Contains(t, err.Error(), "starting pg: boom")
}

func TestNewEngineCarriesKind(t *testing.T) {
	err := NewEngine(KindKey, "container already exists", "stderr text")
	assert.True(t, Is(err, EngineError))
	assert.True(t, HasKind(err, KindKey))
	assert.Contains(t, err.Error(), "stderr text")
}

const KindKey = "AlreadyExists"

func TestHasKindFalseForNonEngineError(t *testing.T) {
	err := New(ConfigError, "bad manifest")
	assert.False(t, HasKind(err, KindKey))
}

func TestIsFalseForPlainError(t *testing.T) {
	assert.False(t, Is(errors.New("plain"), ConfigError))
}

func TestWithStderrDoesNotMutateOriginal(t *testing.T) {
	original := NewEngine(KindKey, "boom", "")
	withStderr := original.WithStderr("details")

	assert.Equal(t, "", original.Stderr)
	assert.Equal(t, "details", withStderr.Stderr)
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil))
}

func TestWrapNonNilPreservesMessage(t *testing.T) {
	wrapped := Wrap(errors.New("underlying"))
	assert.Contains(t, fmt.Sprint(wrapped), "underlying")
}
