// Package containersvc is the thin, state-aware lifecycle helper around the
// engine adapter the orchestrator composes into workflows. Grounded on
// spec.md §4.5.
package containersvc

import (
	"context"
	"os"
	"path/filepath"
	"reflect"

	"github.com/devobox/devobox/pkg/config"
	"github.com/devobox/devobox/pkg/engine"
	"github.com/devobox/devobox/pkg/errdomain"
)

// Service wraps a Runtime with the ensure-created/ensure-running/recreate
// primitives spec.md §4.5 names.
type Service struct {
	Runtime engine.Runtime
}

// New returns a containersvc.Service bound to runtime.
func New(runtime engine.Runtime) *Service {
	return &Service{Runtime: runtime}
}

// EnsureCreated creates spec if NotCreated. An existing container with a
// spec that happens to differ is left alone; callers that want to
// reconcile drift use Recreate explicitly.
func (s *Service) EnsureCreated(ctx context.Context, spec engine.ContainerSpec) error {
	state, err := s.Runtime.State(ctx, spec.Name)
	if err != nil {
		return err
	}
	if state == engine.NotCreated {
		return s.Runtime.Create(ctx, spec)
	}
	return nil
}

// EnsureRunning starts name if Stopped; fails with MissingContainer if
// NotCreated.
func (s *Service) EnsureRunning(ctx context.Context, name string) error {
	state, err := s.Runtime.State(ctx, name)
	if err != nil {
		return err
	}
	switch state {
	case engine.Running:
		return nil
	case engine.Stopped:
		return s.Runtime.Start(ctx, name)
	default:
		return errdomain.New(errdomain.MissingContainer, "container "+name+" does not exist; run `devobox build` or `devobox rebuild` first")
	}
}

// Recreate best-effort removes then creates spec, used by build/rebuild.
func (s *Service) Recreate(ctx context.Context, spec engine.ContainerSpec) error {
	_ = s.Runtime.Remove(ctx, spec.Name) // best-effort; NotFound is expected and ignored
	return s.Runtime.Create(ctx, spec)
}

// StopAll stops every named container; an individual failure does not stop
// the batch and is collected into the returned slice (graceful degradation
// per spec.md §7).
func (s *Service) StopAll(ctx context.Context, names []string) []error {
	var errs []error
	for _, name := range names {
		if err := s.Runtime.Stop(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// HubSpec builds the hub's ContainerSpec from the AppConfig with the fixed
// choices spec.md §4.5 names: host network, keep-id userns, a disabled
// SELinux label, the configured workdir, the code root and ssh-agent
// bind-mounts, and an interactive tty.
func HubSpec(cfg config.AppConfig, codeRoot string) engine.ContainerSpec {
	user := hubUser(cfg.Container.Workdir)

	volumes := []string{
		codeRoot + ":/home/" + user + "/code",
	}
	if home, err := os.UserHomeDir(); err == nil {
		sshDir := filepath.Join(home, ".ssh")
		if info, err := os.Stat(sshDir); err == nil && info.IsDir() {
			volumes = append(volumes, sshDir+":/home/"+user+"/.ssh:ro")
		}
	}
	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		volumes = append(volumes, sock+":"+sock)
	}

	return engine.ContainerSpec{
		Name:        cfg.Container.Name,
		Image:       cfg.Build.ImageName,
		Network:     "host",
		Userns:      "keep-id",
		SecurityOpt: "label=disable",
		Workdir:     cfg.Container.Workdir,
		Volumes:     volumes,
		ExtraArgs:   []string{"-it"},
		Labels: map[string]string{
			"devobox.managed": "true",
		},
	}
}

func hubUser(workdir string) string {
	// workdir is "/home/<user>[/...]"; default to "dev" if unparseable.
	const prefix = "/home/"
	if len(workdir) <= len(prefix) || workdir[:len(prefix)] != prefix {
		return "dev"
	}
	rest := workdir[len(prefix):]
	for i, r := range rest {
		if r == '/' {
			return rest[:i]
		}
	}
	return rest
}

// SpecsEqual reports whether two specs are identical, a helper kept for
// future drift-detection CLI affordances; EnsureCreated intentionally does
// not call this per spec.md §4.5 ("divergent spec is not automatically
// reconciled").
func SpecsEqual(a, b engine.ContainerSpec) bool {
	return reflect.DeepEqual(a, b)
}
