package osexec

import (
	"os/exec"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCmd() *OSCommand {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return New(logrus.NewEntry(l))
}

func TestExecutableFromStringSplitsArgs(t *testing.T) {
	c := testCmd()
	cmd := c.ExecutableFromString("tmux new-session -A -s devobox")
	assert.Equal(t, []string{"tmux", "new-session", "-A", "-s", "devobox"}, cmd.Args)
}

func TestRunCommandWithOutputReturnsStdout(t *testing.T) {
	c := testCmd()
	out, err := c.RunCommandWithOutput("echo hello")
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out)
}

func TestRunCommandWithOutputReturnsStderrOnFailure(t *testing.T) {
	c := testCmd()
	_, err := c.RunCommandWithOutput("bash -c 'echo boom 1>&2; exit 1'")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestRunInteractivePropagatesExitCode(t *testing.T) {
	c := testCmd()
	cmd := exec.Command("bash", "-c", "exit 7")
	code, err := c.RunInteractive(cmd)
	require.NoError(t, err)
	assert.Equal(t, 7, code)
}

func TestRunInteractiveZeroOnSuccess(t *testing.T) {
	c := testCmd()
	cmd := exec.Command("true")
	code, err := c.RunInteractive(cmd)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestFileExists(t *testing.T) {
	c := testCmd()
	exists, err := c.FileExists("/")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.FileExists("/definitely/does/not/exist/devobox")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGetenvIndirectsThroughConfiguredFunc(t *testing.T) {
	c := testCmd()
	c.getenv = func(key string) string {
		if key == "FOO" {
			return "bar"
		}
		return ""
	}
	assert.Equal(t, "bar", c.Getenv("FOO"))
}
