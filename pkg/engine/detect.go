package engine

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
)

// DetectSocket resolves the rootless Podman socket path in priority order,
// adapted from the teacher's detectPlatformCandidates: the CONTAINER_HOST env
// var first, then DOCKER_HOST (either is returned as-is, unchecked), then the
// socket files: the XDG runtime-dir convention, the numeric UID fallback,
// ~/.local/share/containers/podman/podman.sock, and the rootful default. Of
// the socket files it returns the first that exists on disk; dialing is left
// to the caller (NewSocketRuntime), matching the teacher's separation of
// "find a path" from "validate the socket".
func DetectSocket(log *logrus.Entry) (string, error) {
	if host := os.Getenv("CONTAINER_HOST"); host != "" {
		log.Debugf("using CONTAINER_HOST=%s", host)
		return host, nil
	}
	if host := os.Getenv("DOCKER_HOST"); host != "" {
		log.Debugf("using DOCKER_HOST=%s", host)
		return host, nil
	}

	for _, candidate := range socketCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			path := "unix://" + candidate
			log.Debugf("detected podman socket at %s", path)
			return path, nil
		}
	}

	return "", errEngineUnavailable()
}

func socketCandidates() []string {
	var candidates []string
	xdgRuntime := os.Getenv("XDG_RUNTIME_DIR")
	home, _ := os.UserHomeDir()
	uid := os.Getuid()

	if xdgRuntime != "" {
		candidates = append(candidates, filepath.Join(xdgRuntime, "podman", "podman.sock"))
	}
	candidates = append(candidates, filepath.Join("/run", "user", strconv.Itoa(uid), "podman", "podman.sock"))
	if home != "" {
		candidates = append(candidates, filepath.Join(home, ".local", "share", "containers", "podman", "podman.sock"))
	}
	candidates = append(candidates, "/run/podman/podman.sock")

	return candidates
}

func errEngineUnavailable() error {
	return &noSocketError{}
}

type noSocketError struct{}

func (e *noSocketError) Error() string {
	return "no working podman socket found: is `systemctl --user enable --now podman.socket` running?"
}
