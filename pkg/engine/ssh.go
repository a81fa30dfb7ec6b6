package engine

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path"
	"time"

	"github.com/devobox/devobox/pkg/osexec"
)

const socketDialTimeout = 8 * time.Second

// TunnelHandle is the live ssh -L tunnel; closing it kills the ssh process
// group.
type TunnelHandle struct {
	SocketPath string // unix:// path of the local forwarded socket
	cmd        *exec.Cmd
	os         *osexec.OSCommand
}

func (t *TunnelHandle) Close() error {
	if t.cmd == nil {
		return nil
	}
	return t.os.Kill(t.cmd)
}

// ResolveHost inspects rawHost (the value of CONTAINER_HOST/DOCKER_HOST) and,
// if it is an ssh:// URL, tunnels a local unix socket over `ssh -L ... -N`
// and returns the tunneled unix:// path instead. A single developer
// workstation reaching one remote rootless Podman instance over ssh is not
// the multi-host orchestration spec.md excludes — it's one engine reached
// over a different transport. Grounded on pkg/commands/ssh/ssh.go.
func ResolveHost(ctx context.Context, rawHost string, osCmd *osexec.OSCommand) (string, *TunnelHandle, error) {
	u, err := url.Parse(rawHost)
	if err != nil || u.Scheme != "ssh" {
		return rawHost, nil, nil
	}

	tmpDir, err := os.MkdirTemp("", "devobox-sshtunnel-")
	if err != nil {
		return "", nil, err
	}
	localSocket := path.Join(tmpDir, "podman.sock")

	cmd := exec.CommandContext(ctx, "ssh", "-L", localSocket+":/run/podman/podman.sock", u.Host, "-N")
	osCmd.PrepareForChildren(cmd)
	if err := cmd.Start(); err != nil {
		return "", nil, fmt.Errorf("starting ssh tunnel: %w", err)
	}

	if err := retryDial(localSocket); err != nil {
		_ = osCmd.Kill(cmd)
		return "", nil, err
	}

	return "unix://" + localSocket, &TunnelHandle{SocketPath: localSocket, cmd: cmd, os: osCmd}, nil
}

func retryDial(socketPath string) error {
	deadline := time.Now().Add(socketDialTimeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		conn, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for ssh tunnel socket %s: %w", socketPath, err)
		}
		<-ticker.C
	}
}
