// Package session is the capability wrapper around the terminal multiplexer
// hosted inside the hub: create-or-attach named sessions, list. Grounded on
// the teacher's subprocess-driving idiom in pkg/commands/os.go, the same
// pattern used there to drive docker-compose.
package session

import (
	"context"
	"strings"

	"golang.org/x/xerrors"

	"github.com/devobox/devobox/pkg/engine"
	"github.com/devobox/devobox/pkg/errdomain"
)

// Adapter drives tmux inside the hub container via the engine's ExecShell,
// since the multiplexer process lives in the hub's namespace, not the host's.
type Adapter struct {
	runtime engine.Runtime
	hub     string
}

// New returns a session adapter bound to the hub container name.
func New(runtime engine.Runtime, hubName string) *Adapter {
	return &Adapter{runtime: runtime, hub: hubName}
}

// HubName returns the hub container name sessions are hosted inside.
func (a *Adapter) HubName() string { return a.hub }

// OpenOrAttach attaches to an existing tmux session named name, or creates
// and attaches to a new one. tmux's `-A` flag natively implements
// "attach if exists, else create", collapsing the spec's two-branch
// description into one idempotent call. workdir, if set, becomes the
// session's initial directory; startupCommand, if set, is run in the
// session's first pane on creation.
func (a *Adapter) OpenOrAttach(ctx context.Context, name, workdir, startupCommand string) (int, error) {
	args := []string{"tmux", "new-session", "-A", "-s", name}
	if workdir != "" {
		args = append(args, "-c", workdir)
	}
	if startupCommand != "" {
		args = append(args, startupCommand)
	}
	return a.runtime.ExecShell(ctx, a.hub, "", args...)
}

// List returns the names of all tmux sessions currently hosted in the hub.
// It is a diagnostic affordance, not load-bearing for any spec.md workflow;
// the hub container must already be running. tmux exits non-zero with "no
// server running" when no session has ever been opened, which List reports
// as an empty list rather than an error.
func (a *Adapter) List(ctx context.Context) ([]string, error) {
	out, err := a.runtime.ExecCapture(ctx, a.hub, "", "tmux", "list-sessions", "-F", "#S")
	if err != nil {
		if isNoServerRunning(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

func isNoServerRunning(err error) bool {
	var de *errdomain.Error
	if !xerrors.As(err, &de) {
		return false
	}
	return strings.Contains(de.Stderr, "no server running")
}
