// Package osexec wraps subprocess invocation, the same plumbing the teacher
// uses to drive docker-compose/podman-compose, reused here to drive tmux and
// the ssh tunnel helper.
package osexec

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/jesseduffield/kill"
	"github.com/mgutz/str"
	"github.com/sirupsen/logrus"
)

// Platform captures the handful of OS-specific command fragments devobox
// needs. Linux is the only supported host per the rootless-OCI-on-Linux
// scope, but the shell fields keep the teacher's cross-platform shape.
type Platform struct {
	shell    string
	shellArg string
}

func getPlatform() *Platform {
	if runtime.GOOS == "windows" {
		return &Platform{shell: "cmd", shellArg: "/c"}
	}
	return &Platform{shell: "bash", shellArg: "-c"}
}

// OSCommand is the subprocess-running primitive threaded through the engine
// and session adapters.
type OSCommand struct {
	Log     *logrus.Entry
	Platform *Platform
	command func(string, ...string) *exec.Cmd
	getenv  func(string) string
}

// New returns an OSCommand wired to the real exec.Command/os.Getenv.
func New(log *logrus.Entry) *OSCommand {
	return &OSCommand{
		Log:      log,
		Platform: getPlatform(),
		command:  exec.Command,
		getenv:   os.Getenv,
	}
}

// SetCommand overrides the command constructor function. Test-only.
func (c *OSCommand) SetCommand(cmd func(string, ...string) *exec.Cmd) {
	c.command = cmd
}

// NewCmd builds an *exec.Cmd inheriting the process environment.
func (c *OSCommand) NewCmd(cmdName string, args ...string) *exec.Cmd {
	cmd := c.command(cmdName, args...)
	cmd.Env = os.Environ()
	return cmd
}

// ExecutableFromString splits a shell-style command line via str.ToArgv and
// builds the corresponding *exec.Cmd, e.g. `tmux new-session -A -s hub`.
func (c *OSCommand) ExecutableFromString(commandStr string) *exec.Cmd {
	argv := str.ToArgv(commandStr)
	return c.NewCmd(argv[0], argv[1:]...)
}

// ExecutableFromStringContext is ExecutableFromString, cancellable.
func (c *OSCommand) ExecutableFromStringContext(ctx context.Context, commandStr string) *exec.Cmd {
	argv := str.ToArgv(commandStr)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = os.Environ()
	return cmd
}

// RunCommand runs a shell-style command line to completion, returning
// stderr as the error text on non-zero exit.
func (c *OSCommand) RunCommand(commandStr string) error {
	_, err := c.RunCommandWithOutput(commandStr)
	return err
}

// RunCommandWithOutput runs a shell-style command line and returns stdout.
func (c *OSCommand) RunCommandWithOutput(commandStr string) (string, error) {
	cmd := c.ExecutableFromString(commandStr)
	before := time.Now()
	output, err := sanitisedOutput(cmd.Output())
	c.Log.Debugf("%q: %s", commandStr, time.Since(before))
	return output, err
}

// RunExecutableWithOutput runs a pre-built *exec.Cmd to completion and
// returns its stdout, the argv-based counterpart to RunCommandWithOutput for
// callers (like the podman-exec capture path) that must not re-tokenize
// arguments through a shell string.
func (c *OSCommand) RunExecutableWithOutput(cmd *exec.Cmd) (string, error) {
	before := time.Now()
	output, err := sanitisedOutput(cmd.Output())
	c.Log.Debugf("%q: %s", cmd.String(), time.Since(before))
	return output, err
}

// RunInteractive runs cmd with the calling process's stdio attached,
// propagating the child's exit code. Used for exec_shell and session attach.
func (c *OSCommand) RunInteractive(cmd *exec.Cmd) (int, error) {
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	c.PrepareForChildren(cmd)
	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

func sanitisedOutput(output []byte, err error) (string, error) {
	out := string(output)
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if stderr == "" {
				stderr = err.Error()
			}
			return out, fmt.Errorf("%s", stderr)
		}
		return "", err
	}
	return out, nil
}

// FileExists reports whether a path exists.
func (c *OSCommand) FileExists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Kill kills a process, or its whole process group if PrepareForChildren was
// used when it was started.
func (c *OSCommand) Kill(cmd *exec.Cmd) error {
	return kill.Kill(cmd)
}

// PrepareForChildren sets Setpgid so the whole process group can be killed
// later, needed for ssh tunnels and tmux client processes that may spawn
// children of their own.
func (c *OSCommand) PrepareForChildren(cmd *exec.Cmd) {
	kill.PrepareForChildren(cmd)
}

// Getenv indirects through the configured getenv, for test overrides.
func (c *OSCommand) Getenv(key string) string {
	return c.getenv(key)
}
