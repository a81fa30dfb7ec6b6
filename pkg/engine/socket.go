package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/containers/podman/v5/libpod/define"
	"github.com/containers/podman/v5/pkg/bindings"
	"github.com/containers/podman/v5/pkg/bindings/containers"
	"github.com/containers/podman/v5/pkg/bindings/images"
	"github.com/containers/podman/v5/pkg/bindings/system"
	"github.com/containers/podman/v5/pkg/bindings/volumes"
	"github.com/containers/podman/v5/pkg/domain/entities"
	"github.com/containers/podman/v5/pkg/specgen"
	ocispec "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/devobox/devobox/pkg/errdomain"
	"github.com/devobox/devobox/pkg/osexec"
)

// SocketRuntime implements Runtime over Podman's REST API bindings, the
// preferred mode on any host with `podman.socket` enabled. Grounded on
// pkg/commands/runtime_socket.go; Create/Build/ExecShell have no teacher
// analogue (lazydocker only observes containers docker-compose already
// created) and are built directly against the same bindings package family
// — see DESIGN.md.
type SocketRuntime struct {
	conn context.Context
	os   *osexec.OSCommand
	tunnel *TunnelHandle
}

// NewSocketRuntime dials socketPath ("unix://..." or, after ResolveHost,
// a tunneled local socket) and returns a ready Runtime.
func NewSocketRuntime(ctx context.Context, socketPath string, osCmd *osexec.OSCommand, tunnel *TunnelHandle) (*SocketRuntime, error) {
	conn, err := bindings.NewConnection(ctx, socketPath)
	if err != nil {
		return nil, errdomain.NewEngine(KindEngineUnavailable, "connecting to podman socket", err.Error())
	}
	return &SocketRuntime{conn: conn, os: osCmd, tunnel: tunnel}, nil
}

func (r *SocketRuntime) Mode() string { return "socket" }

func (r *SocketRuntime) Close() error {
	if r.tunnel != nil {
		return r.tunnel.Close()
	}
	return nil
}

func (r *SocketRuntime) Create(ctx context.Context, spec ContainerSpec) error {
	if exists, err := r.exists(spec.Name); err != nil {
		return err
	} else if exists {
		return errdomain.NewEngine(KindAlreadyExists, "container already exists: "+spec.Name, "")
	}

	s := specgen.NewSpecGenerator(spec.Image, false)
	s.Name = spec.Name
	s.Env = envMap(spec.Env)
	s.Labels = spec.Labels
	s.WorkDir = spec.Workdir
	s.Terminal = boolPtr(containsExtraArg(spec.ExtraArgs, "-it") || containsExtraArg(spec.ExtraArgs, "-t"))

	if spec.Network == "host" {
		s.NetNS = specgen.Namespace{NSMode: specgen.Host}
	}
	if spec.Userns != "" {
		s.UserNS = specgen.Namespace{NSMode: specgen.KeepID}
	}
	if spec.SecurityOpt != "" {
		s.SecurityOpt = []string{spec.SecurityOpt}
	}

	if spec.Network != "host" {
		portMappings, err := parsePortMappings(spec.Ports)
		if err != nil {
			return errdomain.NewEngine(KindOther, "creating container "+spec.Name, err.Error())
		}
		s.PortMappings = portMappings
	}

	binds, namedVolumes, err := parseVolumeMounts(spec.Volumes)
	if err != nil {
		return errdomain.NewEngine(KindOther, "creating container "+spec.Name, err.Error())
	}
	s.Mounts = binds
	s.Volumes = namedVolumes

	if spec.Healthcheck != nil && spec.Healthcheck.Command != "" {
		hc := &define.Schema2HealthConfig{
			Test:    append([]string{"CMD-SHELL"}, spec.Healthcheck.Command),
			Retries: spec.Healthcheck.Retries,
		}
		if d, err := time.ParseDuration(spec.Healthcheck.Interval); err == nil {
			hc.Interval = d
		}
		if d, err := time.ParseDuration(spec.Healthcheck.Timeout); err == nil {
			hc.Timeout = d
		}
		s.HealthConfig = hc
	}

	_, err = containers.CreateWithSpec(r.conn, s, nil)
	if err != nil {
		return errdomain.NewEngine(KindOther, "creating container "+spec.Name, err.Error())
	}
	return nil
}

func (r *SocketRuntime) Start(ctx context.Context, name string) error {
	state, err := r.State(ctx, name)
	if err != nil {
		return err
	}
	if state == Running {
		return nil
	}
	if err := containers.Start(r.conn, name, nil); err != nil {
		return errdomain.NewEngine(KindOther, "starting "+name, err.Error())
	}
	return nil
}

func (r *SocketRuntime) Stop(ctx context.Context, name string) error {
	state, err := r.State(ctx, name)
	if err != nil {
		return err
	}
	if state != Running {
		return nil
	}
	if err := containers.Stop(r.conn, name, nil); err != nil {
		return errdomain.NewEngine(KindOther, "stopping "+name, err.Error())
	}
	return nil
}

func (r *SocketRuntime) Remove(ctx context.Context, name string) error {
	force, removeVolumes := true, false
	_, err := containers.Remove(r.conn, name, &containers.RemoveOptions{Force: &force, Volumes: &removeVolumes})
	if err != nil {
		if isNotFound(err) {
			return errdomain.NewEngine(KindNotFound, "no such container: "+name, err.Error())
		}
		return errdomain.NewEngine(KindOther, "removing "+name, err.Error())
	}
	return nil
}

func (r *SocketRuntime) exists(name string) (bool, error) {
	_, err := containers.Inspect(r.conn, name, nil)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errdomain.NewEngine(KindOther, "inspecting "+name, err.Error())
	}
	return true, nil
}

func (r *SocketRuntime) State(ctx context.Context, name string) (ContainerState, error) {
	data, err := containers.Inspect(r.conn, name, nil)
	if err != nil {
		if isNotFound(err) {
			return NotCreated, nil
		}
		return "", errdomain.NewEngine(KindOther, "inspecting "+name, err.Error())
	}
	if data.State == nil {
		return Stopped, nil
	}
	if data.State.Running {
		return Running, nil
	}
	return Stopped, nil
}

func (r *SocketRuntime) Health(ctx context.Context, name string) (ContainerHealth, error) {
	data, err := containers.Inspect(r.conn, name, nil)
	if err != nil {
		if isNotFound(err) {
			return Unknown, nil
		}
		return "", errdomain.NewEngine(KindOther, "inspecting "+name, err.Error())
	}
	if data.State == nil || data.State.Health == nil || data.State.Health.Status == "" {
		return NotApplicable, nil
	}
	switch strings.ToLower(data.State.Health.Status) {
	case "healthy":
		return Healthy, nil
	case "unhealthy":
		return Unhealthy, nil
	case "starting":
		return Starting, nil
	default:
		return Unknown, nil
	}
}

// ExecShell drives `podman exec -it <name> <shell>` as a subprocess rather
// than the bindings' raw hijacked-connection exec API, because attaching the
// calling process's real stdio/terminal to a bindings exec session needs the
// same terminal-resize plumbing the podman CLI itself implements; shelling
// out to the already-installed podman client reuses that plumbing exactly
// the way the teacher shells out to docker-compose for compose-only verbs.
func (r *SocketRuntime) ExecShell(ctx context.Context, name, workdir string, command ...string) (int, error) {
	args := []string{"exec", "-it"}
	if workdir != "" {
		args = append(args, "-w", workdir)
	}
	args = append(args, name)
	if len(command) > 0 {
		args = append(args, command...)
	} else {
		args = append(args, "/bin/bash", "-l")
	}
	cmd := r.os.NewCmd("podman", args...)
	code, err := r.os.RunInteractive(cmd)
	if err != nil {
		return code, errdomain.NewEngine(KindOther, "executing shell in "+name, err.Error())
	}
	return code, nil
}

// ExecCapture drives `podman exec <name> <command>` (no -it) as a
// subprocess, the same shellout idiom ExecShell uses for its attached
// counterpart, but collecting stdout through osexec instead of attaching the
// calling process's terminal.
func (r *SocketRuntime) ExecCapture(ctx context.Context, name, workdir string, command ...string) (string, error) {
	args := []string{"exec"}
	if workdir != "" {
		args = append(args, "-w", workdir)
	}
	args = append(args, name)
	args = append(args, command...)
	cmd := r.os.NewCmd("podman", args...)
	out, err := r.os.RunExecutableWithOutput(cmd)
	if err != nil {
		return "", errdomain.NewEngine(KindOther, "executing in "+name, err.Error())
	}
	return strings.TrimSuffix(out, "\n"), nil
}

func (r *SocketRuntime) Build(ctx context.Context, tag, containerfile, buildContext string) error {
	report, err := images.Build(r.conn, []string{containerfile}, entities.BuildOptions{
		BuildOptions: define.BuildOptions{
			ContextDirectory: buildContext,
			Output:           tag,
		},
	})
	if err != nil {
		return errdomain.NewEngine(KindOther, "building "+tag, err.Error())
	}
	if report != nil && report.ID == "" {
		return errdomain.NewEngine(KindOther, "build produced no image ID", "")
	}
	return nil
}

func (r *SocketRuntime) PruneContainers(ctx context.Context) error {
	_, err := containers.Prune(r.conn, nil)
	return wrapPruneErr(err, "containers")
}

func (r *SocketRuntime) PruneImages(ctx context.Context) error {
	_, err := images.Prune(r.conn, nil)
	return wrapPruneErr(err, "images")
}

func (r *SocketRuntime) PruneVolumes(ctx context.Context) error {
	_, err := volumes.Prune(r.conn, nil)
	return wrapPruneErr(err, "volumes")
}

func (r *SocketRuntime) PruneBuildCache(ctx context.Context) error {
	_, err := system.Prune(r.conn, &system.PruneOptions{})
	return wrapPruneErr(err, "build cache")
}

func (r *SocketRuntime) NukeSystem(ctx context.Context) error {
	all := true
	_, err := system.Prune(r.conn, &system.PruneOptions{All: &all, Volumes: &all})
	return wrapPruneErr(err, "system")
}

func wrapPruneErr(err error, what string) error {
	if err == nil {
		return nil
	}
	return errdomain.NewEngine(KindOther, "pruning "+what, err.Error())
}

func isNotFound(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "no such")
}

func boolPtr(b bool) *bool { return &b }

func containsExtraArg(args []string, needle string) bool {
	for _, a := range args {
		if a == needle {
			return true
		}
	}
	return false
}

func envMap(env []string) map[string]string {
	m := map[string]string{}
	for _, kv := range env {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			m[parts[0]] = parts[1]
		}
	}
	return m
}

func parsePortMappings(ports []string) ([]specgen.PortMapping, error) {
	var out []specgen.PortMapping
	for _, p := range ports {
		hostPort, containerPort, proto, err := splitPortSpec(p)
		if err != nil {
			return nil, err
		}
		out = append(out, specgen.PortMapping{
			HostPort:      hostPort,
			ContainerPort: containerPort,
			Protocol:      proto,
		})
	}
	return out, nil
}

func splitPortSpec(spec string) (hostPort, containerPort uint16, proto string, err error) {
	proto = "tcp"
	if idx := strings.LastIndex(spec, "/"); idx != -1 {
		proto = spec[idx+1:]
		spec = spec[:idx]
	}
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return 0, 0, "", fmt.Errorf("invalid port mapping %q", spec)
	}
	h, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return 0, 0, "", fmt.Errorf("invalid host port in %q: %w", spec, err)
	}
	c, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return 0, 0, "", fmt.Errorf("invalid container port in %q: %w", spec, err)
	}
	return uint16(h), uint16(c), proto, nil
}

// parseVolumeMounts splits devobox's "[src:]dest[:opts]" volume strings into
// OCI bind mounts and Podman named volumes, mirroring the source-prefix
// discrimination specgen.GenVolumeMounts applies to `podman run -v`: a source
// starting with "/" or "." is a host path and becomes a bind mount on
// s.Mounts, everything else is treated as a named-volume name on s.Volumes.
// The hub's code-root and .ssh mounts (pkg/containersvc.HubSpec) are always
// absolute host paths, so they must land in the first bucket.
func parseVolumeMounts(volumeSpecs []string) ([]ocispec.Mount, []*specgen.NamedVolume, error) {
	var (
		binds  []ocispec.Mount
		volume []*specgen.NamedVolume
	)
	for _, v := range volumeSpecs {
		parts := strings.SplitN(v, ":", 3)
		if len(parts) < 2 {
			return nil, nil, fmt.Errorf("invalid volume mapping %q", v)
		}
		src, dest := parts[0], parts[1]
		var opts []string
		if len(parts) == 3 {
			opts = strings.Split(parts[2], ",")
		}
		if strings.HasPrefix(src, "/") || strings.HasPrefix(src, ".") {
			binds = append(binds, ocispec.Mount{
				Destination: dest,
				Type:        define.TypeBind,
				Source:      src,
				Options:     opts,
			})
			continue
		}
		volume = append(volume, &specgen.NamedVolume{
			Name:    src,
			Dest:    dest,
			Options: opts,
		})
	}
	return binds, volume, nil
}
