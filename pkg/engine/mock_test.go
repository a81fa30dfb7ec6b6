package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devobox/devobox/pkg/errdomain"
)

func TestMockRuntimeImplementsRuntime(t *testing.T) {
	var _ Runtime = (*MockRuntime)(nil)
}

func TestMockRuntimeCreateRejectsDuplicate(t *testing.T) {
	mock := &MockRuntime{}
	ctx := context.Background()

	require.NoError(t, mock.Create(ctx, ContainerSpec{Name: "pg"}))
	err := mock.Create(ctx, ContainerSpec{Name: "pg"})
	require.Error(t, err)
	assert.True(t, errdomain.HasKind(err, KindAlreadyExists))
}

func TestMockRuntimeStateDefaultsToNotCreated(t *testing.T) {
	mock := &MockRuntime{}
	state, err := mock.State(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, NotCreated, state)
}

func TestMockRuntimeStartMovesToRunning(t *testing.T) {
	mock := &MockRuntime{}
	ctx := context.Background()
	require.NoError(t, mock.Create(ctx, ContainerSpec{Name: "pg"}))
	require.NoError(t, mock.Start(ctx, "pg"))

	state, err := mock.State(ctx, "pg")
	require.NoError(t, err)
	assert.Equal(t, Running, state)
}

func TestMockRuntimeStopOnUnknownContainerIsNoOp(t *testing.T) {
	mock := &MockRuntime{}
	err := mock.Stop(context.Background(), "ghost")
	assert.NoError(t, err)
}

func TestMockRuntimeHealthDefaultsToNotApplicable(t *testing.T) {
	mock := &MockRuntime{}
	h, err := mock.Health(context.Background(), "redis")
	require.NoError(t, err)
	assert.Equal(t, NotApplicable, h)
}

func TestMockRuntimeHealthSequenceRepeatsLastValue(t *testing.T) {
	mock := &MockRuntime{HealthSequence: map[string][]ContainerHealth{
		"pg": {Starting, Healthy},
	}}
	ctx := context.Background()

	h1, _ := mock.Health(ctx, "pg")
	h2, _ := mock.Health(ctx, "pg")
	h3, _ := mock.Health(ctx, "pg")

	assert.Equal(t, Starting, h1)
	assert.Equal(t, Healthy, h2)
	assert.Equal(t, Healthy, h3, "sequence should repeat the last value once exhausted")
}

func TestMockRuntimeCallTracking(t *testing.T) {
	mock := &MockRuntime{}
	ctx := context.Background()

	_ = mock.Create(ctx, ContainerSpec{Name: "pg"})
	_ = mock.Start(ctx, "pg")
	_ = mock.Start(ctx, "pg")

	assert.Equal(t, 1, mock.CallCount("Create"))
	assert.Equal(t, 2, mock.CallCount("Start"))
	assert.Equal(t, 0, mock.CallCount("Remove"))
}

func TestMockRuntimeNukeSystemClearsModel(t *testing.T) {
	mock := &MockRuntime{}
	ctx := context.Background()
	require.NoError(t, mock.Create(ctx, ContainerSpec{Name: "pg"}))

	require.NoError(t, mock.NukeSystem(ctx))

	state, _ := mock.State(ctx, "pg")
	assert.Equal(t, NotCreated, state)
}

func TestMockRuntimeModeDefaultsToMock(t *testing.T) {
	mock := &MockRuntime{}
	assert.Equal(t, "mock", mock.Mode())
}

func TestMockRuntimeExecCaptureDefaultsToEmptyOutput(t *testing.T) {
	mock := &MockRuntime{}
	out, err := mock.ExecCapture(context.Background(), "devobox", "", "tmux", "list-sessions")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMockRuntimeExecCaptureUsesOverride(t *testing.T) {
	mock := &MockRuntime{
		ExecCaptureFunc: func(ctx context.Context, name, workdir string, command ...string) (string, error) {
			return "devobox\n", nil
		},
	}
	out, err := mock.ExecCapture(context.Background(), "devobox", "", "tmux", "list-sessions", "-F", "#S")
	require.NoError(t, err)
	assert.Equal(t, "devobox\n", out)
	assert.Equal(t, 1, mock.CallCount("ExecCapture"))
}
