package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devobox/devobox/pkg/engine"
	"github.com/devobox/devobox/pkg/errdomain"
)

func TestHubName(t *testing.T) {
	a := New(&engine.MockRuntime{}, "devobox")
	assert.Equal(t, "devobox", a.HubName())
}

func TestOpenOrAttachBuildsTmuxNewSessionCommand(t *testing.T) {
	mock := &engine.MockRuntime{}
	a := New(mock, "devobox")

	code, err := a.OpenOrAttach(context.Background(), "devobox-frontend", "/home/dev/code/frontend", "")
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	calls := mock.CallsOf("ExecShell")
	require.Len(t, calls, 1)
	assert.Equal(t, "devobox", calls[0][0])
	args := calls[0][2].([]string)
	assert.Equal(t, []string{"tmux", "new-session", "-A", "-s", "devobox-frontend", "-c", "/home/dev/code/frontend"}, args)
}

func TestOpenOrAttachAppendsStartupCommand(t *testing.T) {
	mock := &engine.MockRuntime{}
	a := New(mock, "devobox")

	_, err := a.OpenOrAttach(context.Background(), "devobox-frontend", "/home/dev/code/frontend", "npm run dev")
	require.NoError(t, err)

	calls := mock.CallsOf("ExecShell")
	args := calls[0][2].([]string)
	assert.Equal(t, "npm run dev", args[len(args)-1])
}

func TestOpenOrAttachOmitsWorkdirFlagWhenEmpty(t *testing.T) {
	mock := &engine.MockRuntime{}
	a := New(mock, "devobox")

	_, err := a.OpenOrAttach(context.Background(), "devobox", "", "")
	require.NoError(t, err)

	calls := mock.CallsOf("ExecShell")
	args := calls[0][2].([]string)
	assert.Equal(t, []string{"tmux", "new-session", "-A", "-s", "devobox"}, args)
}

func TestOpenOrAttachPropagatesExecError(t *testing.T) {
	boom := assert.AnError
	mock := &engine.MockRuntime{
		ExecShellFunc: func(ctx context.Context, name, workdir string, command ...string) (int, error) {
			return -1, boom
		},
	}
	a := New(mock, "devobox")

	code, err := a.OpenOrAttach(context.Background(), "devobox", "", "")
	assert.Equal(t, -1, code)
	assert.ErrorIs(t, err, boom)
}

func TestListParsesSessionNamesFromCapturedOutput(t *testing.T) {
	mock := &engine.MockRuntime{
		ExecCaptureFunc: func(ctx context.Context, name, workdir string, command ...string) (string, error) {
			return "devobox-frontend\ndevobox-backend\n", nil
		},
	}
	a := New(mock, "devobox")

	names, err := a.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"devobox-frontend", "devobox-backend"}, names)

	calls := mock.CallsOf("ExecCapture")
	require.Len(t, calls, 1)
	assert.Equal(t, "devobox", calls[0][0])
	args := calls[0][2].([]string)
	assert.Equal(t, []string{"tmux", "list-sessions", "-F", "#S"}, args)
}

func TestListSkipsBlankLines(t *testing.T) {
	mock := &engine.MockRuntime{
		ExecCaptureFunc: func(ctx context.Context, name, workdir string, command ...string) (string, error) {
			return "devobox\n\n", nil
		},
	}
	a := New(mock, "devobox")

	names, err := a.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"devobox"}, names)
}

func TestListReturnsEmptyWhenNoServerRunning(t *testing.T) {
	mock := &engine.MockRuntime{
		ExecCaptureFunc: func(ctx context.Context, name, workdir string, command ...string) (string, error) {
			return "", errdomain.NewEngine(engine.KindOther, "executing in devobox", "no server running on /tmp/tmux-0/default")
		},
	}
	a := New(mock, "devobox")

	names, err := a.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListPropagatesOtherErrors(t *testing.T) {
	boom := errdomain.NewEngine(engine.KindOther, "executing in devobox", "permission denied")
	mock := &engine.MockRuntime{
		ExecCaptureFunc: func(ctx context.Context, name, workdir string, command ...string) (string, error) {
			return "", boom
		},
	}
	a := New(mock, "devobox")

	_, err := a.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}
